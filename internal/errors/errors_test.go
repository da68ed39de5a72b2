package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	base := stderrors.New("connection reset")

	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "plain error", err: base, want: ""},
		{name: "typed", err: New(Unauthorized, "token rejected"), want: Unauthorized},
		{name: "wrapped by fmt", err: fmt.Errorf("user-info: %w", WithStatus(BadStatus, 503, "unavailable")), want: BadStatus},
		{name: "nil", err: nil, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestErrorsIsMatchesKind(t *testing.T) {
	err := fmt.Errorf("login: %w", WithStatus(Unauthorized, 401, "bad credentials"))
	require.True(t, stderrors.Is(err, New(Unauthorized, "")))
	require.False(t, stderrors.Is(err, New(BadStatus, "")))
}

func TestWrapUnwraps(t *testing.T) {
	base := stderrors.New("dial tcp: refused")
	err := Wrap(RenewalFailed, "refresh-token", base)

	require.ErrorIs(t, err, base)
	require.Equal(t, "renewal_failed: refresh-token: dial tcp: refused", err.Error())
}
