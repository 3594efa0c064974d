package utils

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
)

// RenderDiff highlights a unified-style diff with chroma and writes it to w.
// Added and removed lines get plain green/red when the theme is "none".
func RenderDiff(ctx context.Context, w io.Writer, diff string, theme string) error {
	lines := strings.Split(strings.TrimRight(diff, "\n"), "\n")

	for i, line := range lines {
		// Check for cancellation every few lines so long previews stay interruptible
		if i%5 == 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
		}

		if theme == "none" {
			fmt.Fprintln(w, colorDiffLine(line))
			continue
		}

		var buf bytes.Buffer
		if err := quick.Highlight(&buf, line+"\n", "diff", "terminal256", theme); err != nil {
			return err
		}
		if _, err := w.Write(buf.Bytes()); err != nil {
			return err
		}
	}

	return nil
}

func colorDiffLine(line string) string {
	switch {
	case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
		return line
	case strings.HasPrefix(line, "+"):
		return "\x1b[92m" + line + "\x1b[0m"
	case strings.HasPrefix(line, "-"):
		return "\x1b[91m" + line + "\x1b[0m"
	default:
		return line
	}
}
