package summarize

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/akolanti/lexintake/internal/domain/docModel"
	"github.com/akolanti/lexintake/internal/llm"
	"github.com/akolanti/lexintake/internal/metrics"
	"github.com/akolanti/lexintake/pkg/logger_i"
)

var log = logger_i.NewLogger("summarize")

// Outcome is the per-document result of the summary phase.
type Outcome struct {
	DocFolder   string
	SummaryPath string
	Success     bool
	Error       string
	Usage       docModel.TokenUsage
}

// Summarizer produces one document_summary.json per extracted document. A
// single shared rate limiter throttles the pool's LLM calls.
type Summarizer interface {
	Summarize(ctx context.Context, record *docModel.DocumentRecord) *Outcome
}

type summarizer struct {
	provider    llm.Provider
	limiter     *rate.Limiter
	model       string
	temperature float32
	timeout     time.Duration
	retry       RetryPolicy
}

func NewSummarizer(provider llm.Provider, limiter *rate.Limiter, model string, temperature float32, timeout time.Duration, retry RetryPolicy) Summarizer {
	return &summarizer{
		provider:    provider,
		limiter:     limiter,
		model:       model,
		temperature: temperature,
		timeout:     timeout,
		retry:       retry,
	}
}

func (s *summarizer) Summarize(ctx context.Context, record *docModel.DocumentRecord) *Outcome {
	outcome := &Outcome{DocFolder: record.DocFolder}

	text, err := s.loadSourceText(record)
	if err != nil {
		outcome.Error = err.Error()
		metrics.SummariesTotal.WithLabelValues("failure").Inc()
		log.Error("summary skipped", "folder", filepath.Base(record.DocFolder), "error", err)
		return outcome
	}

	userNotes := loadUserNotes(record.DocFolder)
	prompt := buildSummaryPrompt(filepath.Base(record.FilePath), record.DocType, text, userNotes)

	envelope, usage, err := s.generateSummary(ctx, prompt)
	outcome.Usage = usage
	if err != nil {
		outcome.Error = err.Error()
		metrics.SummariesTotal.WithLabelValues("failure").Inc()
		log.Error("summary failed", "folder", filepath.Base(record.DocFolder), "error", err)
		return outcome
	}

	summaryPath := filepath.Join(record.DocFolder, docModel.SummaryFileName)
	data, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		outcome.Error = fmt.Sprintf("encoding summary: %v", err)
		metrics.SummariesTotal.WithLabelValues("failure").Inc()
		return outcome
	}
	if err := os.WriteFile(summaryPath, data, 0644); err != nil {
		outcome.Error = fmt.Sprintf("writing summary: %v", err)
		metrics.SummariesTotal.WithLabelValues("failure").Inc()
		return outcome
	}

	outcome.Success = true
	outcome.SummaryPath = summaryPath
	metrics.SummariesTotal.WithLabelValues("success").Inc()
	log.Info("summarized", "folder", filepath.Base(record.DocFolder), "type", envelope.DocumentSummary.DocumentType)
	return outcome
}

func (s *summarizer) generateSummary(ctx context.Context, prompt string) (*docModel.SummaryEnvelope, docModel.TokenUsage, error) {
	var usage docModel.TokenUsage

	envelope, err := withRetry(ctx, s.retry, func(ctx context.Context) (*docModel.SummaryEnvelope, error) {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		callCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		start := time.Now()
		resp, err := s.provider.Generate(callCtx, llm.Request{
			Model:       s.model,
			System:      summarySystemPrompt,
			Prompt:      prompt,
			Temperature: s.temperature,
		})
		metrics.LLMCallDuration.WithLabelValues("summary", s.provider.Name()).Observe(time.Since(start).Seconds())
		if err != nil {
			return nil, err
		}
		usage.Add(resp.Usage)
		metrics.ObserveUsage(resp.Usage.InputTokens, resp.Usage.OutputTokens)

		return parseSummary(resp.Text)
	})
	return envelope, usage, err
}

// parseSummary decodes the model output into the summary envelope and
// rejects structurally empty results.
func parseSummary(raw string) (*docModel.SummaryEnvelope, error) {
	cleaned := StripCodeFences(raw)

	var envelope docModel.SummaryEnvelope
	if err := json.Unmarshal([]byte(cleaned), &envelope); err != nil {
		return nil, fmt.Errorf("summary is not valid JSON: %w", err)
	}
	if strings.TrimSpace(envelope.DocumentSummary.ExecutiveSummary) == "" {
		return nil, fmt.Errorf("summary missing executive_summary")
	}
	return &envelope, nil
}

// loadSourceText resolves the text the summary prompt is built from: the
// extraction artifact when one exists, otherwise the plaintext original.
func (s *summarizer) loadSourceText(record *docModel.DocumentRecord) (string, error) {
	artifact := filepath.Join(record.DocFolder, docModel.FullTextFileName)
	if data, err := os.ReadFile(artifact); err == nil {
		return string(data), nil
	}

	if record.FileType == docModel.FileTypePlaintext {
		data, err := os.ReadFile(record.FilePath)
		if err != nil {
			return "", fmt.Errorf("reading plaintext source: %w", err)
		}
		return string(data), nil
	}
	return "", fmt.Errorf("no extracted text found in %s", record.DocFolder)
}

// loadUserNotes pulls the notes the client attached to a document at upload
// time, if any.
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
