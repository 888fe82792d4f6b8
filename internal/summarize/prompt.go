package summarize

import (
	"fmt"
	"strings"

	"github.com/akolanti/lexintake/internal/domain/docModel"
)

const summarySystemPrompt = `You are a legal document analyst. You read one document from a case file ` +
	`and produce a structured summary for the attorney preparing the case. ` +
	`Report only what the document states. Respond with JSON only, no prose before or after.`

func buildSummaryPrompt(filename, docTypeHint, text, userNotes string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Document: %s\n", filename)
	fmt.Fprintf(&b, "Filename-based category hint: %s\n\n", docTypeHint)
	if userNotes != "" {
		fmt.Fprintf(&b, "Client's notes about this document:\n%s\n\n", userNotes)
	}

	b.WriteString("Summarize the document below as JSON with exactly this shape:\n\n")
	b.WriteString(`{
  "document_summary": {
    "executive_summary": "2-4 sentence overview of what this document is and why it matters",
    "document_type": "one of: ` + strings.Join(docModel.DocumentTypes, ", ") + `",
    "key_parties": ["every person or entity named, with role if stated"],
    "main_arguments": ["each argument or claim the document advances"],
    "important_dates": ["every date mentioned, with what happened on it"],
    "jurisdiction": "court, venue or governing law if identifiable, else empty string",
    "authorities": ["statutes, regulations and cases cited"],
    "critical_facts": ["facts an attorney must not miss"],
    "requested_relief": "what the document asks for, else empty string"
  }
}`)
	b.WriteString("\n\nUse empty strings and empty arrays for fields the document does not support. ")
	b.WriteString("Never invent parties, dates or citations.\n\n")
	b.WriteString("--- DOCUMENT TEXT ---\n")
	b.WriteString(text)

	return b.String()
}
