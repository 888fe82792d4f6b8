package intake

import "strings"

// documentTypePatterns is checked in order; the first hit wins. Filename
// classification is only a hint for prompts and folder labels, the summary
// LLM call makes the real determination.
var documentTypePatterns = []struct {
	label    string
	keywords []string
}{
	{"Motion", []string{"motion", "mtn"}},
	{"Response", []string{"response", "opposition", "reply", "answer"}},
	{"Complaint", []string{"complaint", "petition"}},
	{"Order", []string{"order", "ruling", "judgment", "judgement", "decree"}},
	{"Notice", []string{"notice", "summons", "subpoena"}},
	{"Evidence", []string{"exhibit", "evidence", "affidavit", "declaration", "transcript", "receipt", "invoice", "statement"}},
	{"Research", []string{"research", "memo", "brief", "analysis", "notes"}},
}

// ClassifyDocumentType guesses a document category from its filename.
func ClassifyDocumentType(filename string) string {
	lower := strings.ToLower(filename)
	for _, p := range documentTypePatterns {
		for _, kw := range p.keywords {
			if strings.Contains(lower, kw) {
				return p.label
			}
		}
	}
	return "Document"
}
