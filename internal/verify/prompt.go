package verify

import (
	"fmt"
	"strings"
)

const verificationSystemPrompt = `You are a meticulous legal fact-checker. You compare a case summary ` +
	`against the source documents it was built from and flag every claim the sources do not support.`

func buildVerificationPrompt(summary string, sources []sourceDoc, focus []string) string {
	var b strings.Builder

	b.WriteString("Check the case summary below against the source documents.\n\n")
	if len(focus) > 0 {
		fmt.Fprintf(&b, "Focus areas: %s.\n\n", strings.Join(focus, ", "))
	}
	b.WriteString(`For each problem found, report:
- the claim in the summary
- whether it is UNSUPPORTED (no source mentions it) or CONTRADICTED (a source says otherwise)
- the source document and what it actually says

If every claim checks out, respond with exactly: VERIFIED: NO ISSUES

`)
	b.WriteString("=== CASE SUMMARY ===\n")
	b.WriteString(summary)
	b.WriteString("\n\n=== SOURCE DOCUMENTS ===\n")
	for _, doc := range sources {
		fmt.Fprintf(&b, "\n--- Source: %s ---\n", doc.Name)
		b.WriteString(doc.Text)
		b.WriteString("\n")
	}
	return b.String()
}
