package synthesize

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/akolanti/lexintake/internal/config"
	"github.com/akolanti/lexintake/internal/domain/docModel"
	"github.com/akolanti/lexintake/internal/llm"
	"github.com/akolanti/lexintake/internal/metrics"
	"github.com/akolanti/lexintake/pkg/logger_i"
)

var log = logger_i.NewLogger("synthesize")

// DocumentSummaryInput pairs a document folder with its parsed summary and
// any notes the client attached during the annotation checkpoint.
type DocumentSummaryInput struct {
	Name      string
	Summary   docModel.DocumentSummary
	UserNotes string
}

// Inputs is everything the case synthesis sees: the per-document summaries
// plus whatever earlier interview artifacts exist in the case folder.
type Inputs struct {
	Summaries   []DocumentSummaryInput
	UserSummary string
	PartiesJSON string
}

// Result carries the written artifact and whether the model flagged
// conflicting accounts.
type Result struct {
	OutputPath   string
	HasConflicts bool
	Usage        docModel.TokenUsage
}

type Synthesizer interface {
	Synthesize(ctx context.Context, caseFolder string, inputs Inputs) (*Result, error)
}

type synthesizer struct {
	provider    llm.Provider
	model       string
	temperature float32
}

func NewSynthesizer(provider llm.Provider, model string, temperature float32) Synthesizer {
	return &synthesizer{
		provider:    provider,
		model:       model,
		temperature: temperature,
	}
}

// CollectInputs gathers the synthesis inputs from the case folder. Missing
// interview artifacts are tolerated; missing summaries are not, the caller
// checks for an empty slice.
func CollectInputs(caseFolder string) (Inputs, error) {
	var inputs Inputs

	documentsDir := filepath.Join(caseFolder, docModel.DocumentsDirName)
	entries, err := os.ReadDir(documentsDir)
	if err != nil {
		return inputs, fmt.Errorf("reading documents folder: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() || entry.Name() == docModel.CentralizedDirName {
			continue
		}
		data, err := os.ReadFile(filepath.Join(documentsDir, entry.Name(), docModel.SummaryFileName))
		if err != nil {
			continue
		}
		var envelope docModel.SummaryEnvelope
		if err := json.Unmarshal(data, &envelope); err != nil {
			log.Warn("skipping unparseable summary", "folder", entry.Name(), "error", err)
			continue
		}
		inputs.Summaries = append(inputs.Summaries, DocumentSummaryInput{
			Name:      entry.Name(),
			Summary:   envelope.DocumentSummary,
			UserNotes: loadUserNotes(filepath.Join(documentsDir, entry.Name())),
		})
	}
	sort.Slice(inputs.Summaries, func(i, j int) bool {
		return inputs.Summaries[i].Name < inputs.Summaries[j].Name
	})

	if data, err := os.ReadFile(filepath.Join(caseFolder, docModel.InterviewRelPath)); err == nil {
		inputs.UserSummary = string(data)
	}
	if data, err := os.ReadFile(filepath.Join(caseFolder, docModel.PartiesRelPath)); err == nil {
		inputs.PartiesJSON = string(data)
	}
	return inputs, nil
}

// loadUserNotes reads the notes the client attached to a document during the
// annotation checkpoint, if any.
func loadUserNotes(docFolder string) string {
	data, err := os.ReadFile(filepath.Join(docFolder, docModel.MetadataFileName))
	if err != nil {
		return ""
	}
	var meta struct {
		UserNotes struct {
			Notes string `json:"notes"`
		} `json:"user_notes"`
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return ""
	}
	return strings.TrimSpace(meta.UserNotes.Notes)
}

// Synthesize makes the single big-model call and writes the case summary
// artifact. Unlike the batch phases, any failure here is fatal to the run.
func (s *synthesizer) Synthesize(ctx context.Context, caseFolder string, inputs Inputs) (*Result, error) {
	if len(inputs.Summaries) == 0 {
		return nil, fmt.Errorf("no document summaries available for synthesis")
	}

	prompt := buildSynthesisPrompt(inputs)

	callCtx, cancel := context.WithTimeout(ctx, config.SynthesisTimeout)
	defer cancel()

	start := time.Now()
	resp, err := s.provider.Generate(callCtx, llm.Request{
		Model:       s.model,
		System:      synthesisSystemPrompt,
		Prompt:      prompt,
		Temperature: s.temperature,
	})
	metrics.LLMCallDuration.WithLabelValues("synthesis", s.provider.Name()).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("synthesis call: %w", err)
	}
	metrics.ObserveUsage(resp.Usage.InputTokens, resp.Usage.OutputTokens)

	outputPath := filepath.Join(caseFolder, docModel.CaseSummaryRelPath)
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return nil, fmt.Errorf("creating fact gathering folder: %w", err)
	}
	if err := os.WriteFile(outputPath, []byte(resp.Text), 0644); err != nil {
		return nil, fmt.Errorf("writing case summary: %w", err)
	}

	result := &Result{
		OutputPath:   outputPath,
		HasConflicts: strings.Contains(resp.Text, docModel.ConflictMarker),
		Usage:        resp.Usage,
	}
	if result.HasConflicts {
		log.Warn("case summary contains conflict markers, review before relying on it",
			"path", outputPath)
	}
	log.Info("case summary written", "path", outputPath, "documents", len(inputs.Summaries))
	return result, nil
}
