package analyze

import (
	"fmt"
	"strings"

	"github.com/jyothiv-codes/HackSprint/internal/scan"
)

// BuildTask renders the tab inventory and the operator's instruction into
// the single task string handed to the agent. Each tab becomes a 1-based
// numbered "title - url" line; the instruction is appended verbatim.
func BuildTask(records []scan.TabRecord, instruction string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "I have %d browser tabs saved. Here's the list:\n\n", len(records))
	for i, r := range records {
		fmt.Fprintf(&b, "%d. %s - %s\n", i+1, r.Title, r.URL)
	}
	b.WriteString("\n")
	b.WriteString(instruction)
	return b.String()
}
