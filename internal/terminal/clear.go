// Package terminal provides small terminal helpers for interactive prompts:
// reading a line or a hidden secret, and clearing what the prompt printed.
package terminal

import (
	"fmt"
	"io"
	"math"
	"os"

	"golang.org/x/term"
)

// ClearPreviousLines clears text from the terminal that was previously printed.
// It calculates how many lines were used by the provided text based on the current
// terminal width, then moves up and clears each line.
//
// Parameters:
//   - textLength: The total number of characters in the text to clear (prompt + user input)
//
// After Enter the cursor sits on a fresh line, so one extra line is cleared.
func ClearPreviousLines(textLength int) {
	clearLines(os.Stdout, width(), textLength)
}

func width() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return 80
}

// clearLines writes the escape sequences that wipe textLength characters
// wrapped at termWidth.
func clearLines(w io.Writer, termWidth, textLength int) {
	totalLines := int(math.Ceil(float64(textLength) / float64(termWidth)))
	if totalLines < 1 {
		totalLines = 1
	}
	linesToClear := totalLines + 1

	for i := 0; i < linesToClear; i++ {
		fmt.Fprint(w, "\r\x1b[2K") // start of line, clear it
		if i < linesToClear-1 {
			fmt.Fprint(w, "\x1b[1A") // up one
		}
	}
}
