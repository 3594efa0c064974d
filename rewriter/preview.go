package rewriter

import (
	"fmt"
	"strings"
)

// Preview returns a unified-style diff of the lines a rewrite changes.
// Substitutions never add or remove newlines, so lines are compared
// pairwise. An unchanged result yields an empty string.
func Preview(result *Result) string {
	if result == nil || !result.Changed {
		return ""
	}

	before := strings.Split(result.Original, "\n")
	after := strings.Split(result.Updated, "\n")

	var b strings.Builder
	fmt.Fprintf(&b, "--- %s\n", result.Path)
	fmt.Fprintf(&b, "+++ %s\n", result.Path)

	for i := 0; i < len(before) && i < len(after); i++ {
		if before[i] == after[i] {
			continue
		}
		fmt.Fprintf(&b, "@@ -%d +%d @@\n", i+1, i+1)
		fmt.Fprintf(&b, "-%s\n", before[i])
		fmt.Fprintf(&b, "+%s\n", after[i])
	}
	return b.String()
}
