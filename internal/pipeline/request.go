// Copyright (c) 2025 Snapcourier
// Licensed under the MIT License. See LICENSE file in the project root for details.

package pipeline

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
)

type retriedKey struct{}

// MarkRetried returns a context flagging its request as already replayed
// after a renewal. Such requests are never renewed again.
func MarkRetried(ctx context.Context) context.Context {
	return context.WithValue(ctx, retriedKey{}, true)
}

// Retried reports whether ctx carries the retry marker.
func Retried(ctx context.Context) bool {
	v, _ := ctx.Value(retriedKey{}).(bool)
	return v
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header, case-insensitively. Returns "" when absent or malformed.
func BearerToken(h http.Header) string {
	v := strings.TrimSpace(h.Get("Authorization"))
	if len(v) < 7 || !strings.EqualFold(v[:6], "bearer") || v[6] != ' ' {
		return ""
	}
	return strings.TrimSpace(v[7:])
}

// rewindable makes sure req can produce its body twice. Bodies without a
// GetBody are read into memory.
func rewindable(req *http.Request) error {
	if req.Body == nil || req.Body == http.NoBody || req.GetBody != nil {
		return nil
	}
	b, err := io.ReadAll(req.Body)
	_ = req.Body.Close()
	if err != nil {
		return err
	}
	req.Body = io.NopCloser(bytes.NewReader(b))
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(b)), nil
	}
	req.ContentLength = int64(len(b))
	return nil
}
