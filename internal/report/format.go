// Package report renders a provisioning run for the terminal, in the
// style of "terraform apply" output.
package report

import (
	"fmt"
	"strings"

	"github.com/dimbot/lexctl/internal/engine"
	"github.com/dimbot/lexctl/internal/reconcile"
)

// Format renders every step of res followed by a count line. runErr, when
// set, is printed after the steps that completed before it.
func Format(res *engine.Result, catalogHash string, runErr error) string {
	var b strings.Builder

	fmt.Fprintf(&b, "  # lexctl run %s\n", res.RunID)
	if catalogHash != "" {
		fmt.Fprintf(&b, "  # catalog_hash: %s\n", truncateHash(catalogHash))
	}
	b.WriteString("\n")

	for _, s := range res.Steps {
		fmt.Fprintf(&b, "    %s %s\n", outcomeSymbol(s.Outcome), s.Key)
	}
	if len(res.Steps) > 0 {
		b.WriteString("\n")
	}

	if runErr != nil {
		fmt.Fprintf(&b, "  Error: %v\n\n", runErr)
	}
	b.WriteString("  " + Summary(res) + "\n")
	return b.String()
}

// Summary returns the one-line count of created and pre-existing
// resources. Conceded resources count as pre-existing.
func Summary(res *engine.Result) string {
	var created, existed int
	for _, s := range res.Steps {
		switch s.Outcome {
		case reconcile.Created:
			created++
		case reconcile.Exists, reconcile.Conceded:
			existed++
		}
	}
	return fmt.Sprintf("%d created, %d already existed.", created, existed)
}

func outcomeSymbol(o reconcile.Outcome) string {
	switch o {
	case reconcile.Created:
		return "+"
	case reconcile.Exists:
		return "="
	case reconcile.Conceded:
		return "~"
	default:
		return "?"
	}
}

// truncateHash shortens "sha256:<64 hex>" to "sha256:<8 hex>".
func truncateHash(h string) string {
	const prefix = "sha256:"
	hex, ok := strings.CutPrefix(h, prefix)
	if !ok {
		return h
	}
	if len(hex) > 8 {
		hex = hex[:8]
	}
	return prefix + hex
}
