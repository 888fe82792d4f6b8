package docModel

import "time"

// FileType is the closed set of intake categories. Routing dispatches on it
// exhaustively; anything not in the extension table is Unsupported.
type FileType string

const (
	FileTypeDocument    FileType = "document"
	FileTypeImage       FileType = "image"
	FileTypeAudio       FileType = "audio"
	FileTypeTabular     FileType = "tabular"
	FileTypePlaintext   FileType = "plaintext"
	FileTypeUnsupported FileType = "unsupported"
)

// Expected artifact names. Phase resumability scans the document tree for
// these; keep them here and nowhere else.
const (
	FullTextFileName   = "full_text_extraction.txt"
	SummaryFileName    = "document_summary.json"
	MetadataFileName   = ".document_metadata.json"
	CentralizedDirName = "full_text_extractions"
	ProcessingLogName  = "processing_log.txt"
	DocumentsDirName   = "documents"

	CaseSummaryRelPath = "step_1_interview/1.4_fact_gathering/Case_Summary_and_Timeline.md"
	InterviewRelPath   = "step_1_interview/1.1_client_interview/user_summary.md"
	PartiesRelPath     = "step_1_interview/1.2_party_identification/parties.json"

	// Literal marker the synthesis post-check scans for.
	ConflictMarker = "[Conflict:"
)

// IntakeFile is a discovered file after the router has moved it into its
// document folder.
type IntakeFile struct {
	Path             string // current path (inside DocFolder)
	OriginalFilename string // name as dropped into the intake folder
	DocFolder        string
	FileType         FileType
}

// DocumentRecord is the unit of work after extraction. The summary phase
// fills in SummaryPath; the record is not touched again once both phases
// succeed.
type DocumentRecord struct {
	FilePath         string             `json:"file_path"`
	DocFolder        string             `json:"doc_folder"`
	DocType          string             `json:"doc_type"`
	FileType         FileType           `json:"file_type"`
	ExtractionMethod string             `json:"extraction_method"`
	Success          bool               `json:"success"`
	Error            string             `json:"error,omitempty"`
	TextExtracted    bool               `json:"text_extracted"`
	CentralizedCopy  string             `json:"centralized_copy,omitempty"`
	SummaryPath      string             `json:"summary_path,omitempty"`
	Metadata         ExtractionMetadata `json:"metadata"`
}

type ExtractionMetadata struct {
	PageCount      int    `json:"page_count,omitempty"`
	CharacterCount int    `json:"character_count,omitempty"`
	SheetCount     int    `json:"sheet_count,omitempty"`
	Rows           int    `json:"rows,omitempty"`
	Columns        int    `json:"columns,omitempty"`
	Model          string `json:"model,omitempty"`
	Language       string `json:"language,omitempty"`
	OCRUsed        bool   `json:"ocr_used,omitempty"`
}

// SummaryEnvelope is the exact JSON shape the summary LLM call must emit.
type SummaryEnvelope struct {
	DocumentSummary DocumentSummary `json:"document_summary"`
}

type DocumentSummary struct {
	ExecutiveSummary string   `json:"executive_summary"`
	DocumentType     string   `json:"document_type"`
	KeyParties       []string `json:"key_parties"`
	MainArguments    []string `json:"main_arguments"`
	ImportantDates   []string `json:"important_dates"`
	Jurisdiction     string   `json:"jurisdiction"`
	Authorities      []string `json:"authorities"`
	CriticalFacts    []string `json:"critical_facts"`
	RequestedRelief  string   `json:"requested_relief"`
}

// DocumentTypes is the classification enum the summary prompt offers.
var DocumentTypes = []string{
	"Motion", "Response", "Complaint", "Order", "Notice", "Evidence", "Research",
}

// Phase names as used by the CLI and the controller.
type Phase string

const (
	PhaseExtract    Phase = "extract"
	PhaseSummarize  Phase = "summarize"
	PhaseSynthesize Phase = "synthesize"
)

// PhaseStatus is the observability record written after each phase. File
// presence in the document tree, not this record, drives resumability.
type PhaseStatus struct {
	Phase       Phase     `json:"phase"`
	Successful  int       `json:"successful"`
	Failed      int       `json:"failed"`
	ElapsedSecs float64   `json:"elapsed_seconds"`
	CompletedAt time.Time `json:"completed_at"`
}

type RunStatus struct {
	RunID      string        `json:"run_id"`
	CaseFolder string        `json:"case_folder"`
	StartedAt  time.Time     `json:"started_at"`
	Phases     []PhaseStatus `json:"phases"`
	TokenUsage TokenUsage    `json:"token_usage,omitempty"`
}

type TokenUsage struct {
	Calls        int   `json:"calls"`
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
}

func (u *TokenUsage) Add(other TokenUsage) {
	u.Calls += other.Calls
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
}
