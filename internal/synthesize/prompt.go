package synthesize

import (
	"encoding/json"
	"fmt"
	"strings"
)

const synthesisSystemPrompt = `You are a senior legal analyst assembling a case overview from ` +
	`individual document summaries and client interview material. You write clear, well-organized ` +
	`markdown for the attorney who will run this case.`

const synthesisInstructions = `Write a single markdown document titled "Case Summary and Timeline".

Source prioritization, highest first:
1. Court orders and rulings
2. Filed pleadings and motions
3. Evidence documents (exhibits, affidavits, transcripts, records)
4. Client interview statements
5. Client research and notes

When sources disagree, state the higher-priority account and mark the disagreement inline as
[Conflict: <one-line description of the conflicting accounts>].

Required sections, in this order:
## Case Overview
## Parties
## Timeline of Events
## Key Facts
## Claims and Arguments
## Legal Authorities
## Outstanding Issues
## Document Inventory

Rules:
- The timeline lists every dated event from any source, chronologically, each with its source document.
- Attribute every fact to its source document by name.
- Do not invent facts, parties, dates or citations that appear in no source.
- The document inventory lists every summarized document with its type and one-line description.`

func buildSynthesisPrompt(inputs Inputs) string {
	var b strings.Builder

	b.WriteString(synthesisInstructions)
	b.WriteString("\n\n=== DOCUMENT SUMMARIES ===\n")
	for _, doc := range inputs.Summaries {
		fmt.Fprintf(&b, "\n--- Document: %s ---\n", doc.Name)
		data, err := json.MarshalIndent(doc.Summary, "", "  ")
		if err != nil {
			continue
		}
		b.Write(data)
		b.WriteString("\n")
		if doc.UserNotes != "" {
			fmt.Fprintf(&b, "Client's notes on this document: %s\n", doc.UserNotes)
		}
	}

	if strings.TrimSpace(inputs.UserSummary) != "" {
		b.WriteString("\n=== CLIENT INTERVIEW SUMMARY ===\n")
		b.WriteString(inputs.UserSummary)
		b.WriteString("\n")
	}
	if strings.TrimSpace(inputs.PartiesJSON) != "" {
		b.WriteString("\n=== IDENTIFIED PARTIES ===\n")
		b.WriteString(inputs.PartiesJSON)
		b.WriteString("\n")
	}
	return b.String()
}
