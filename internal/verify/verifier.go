package verify

import (
	"context"
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

var log = logger_i.NewLogger("verify")

// Verdict is the tri-state outcome of a verification pass.
type Verdict int

const (
	VerdictClean Verdict = iota
	VerdictIssues
	VerdictFailed
)

func (v Verdict) String() string {
	switch v {
	case VerdictClean:
		return "clean"
	case VerdictIssues:
		return "issues"
	default:
		return "failed"
	}
}

type Report struct {
	Verdict Verdict
	Details string
	Usage   docModel.TokenUsage
}

type Verifier interface {
	VerifyCaseSummary(ctx context.Context, caseFolder string) (*Report, error)
}

type verifier struct {
	provider llm.Provider
	model    string
	settings config.VerificationSettings
}

func NewVerifier(provider llm.Provider, model string, settings config.VerificationSettings) Verifier {
	return &verifier{
		provider: provider,
		model:    model,
		settings: settings,
	}
}

// VerifyCaseSummary cross-checks the synthesized case summary against the
// extracted source texts and reports unsupported or contradicted claims.
func (v *verifier) VerifyCaseSummary(ctx context.Context, caseFolder string) (*Report, error) {
	summaryPath := filepath.Join(caseFolder, docModel.CaseSummaryRelPath)
	summary, err := os.ReadFile(summaryPath)
	if err != nil {
		return nil, fmt.Errorf("reading case summary: %w", err)
	}

	sources, origin, err := v.resolveSources(caseFolder)
	if err != nil {
		return nil, err
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("no source documents found for verification")
	}
	log.Info("verifying case summary", "sources", len(sources), "origin", origin,
		"focus", strings.Join(v.settings.VerificationFocus, ","))

	prompt := buildVerificationPrompt(string(summary), sources, v.settings.VerificationFocus)

	callCtx, cancel := context.WithTimeout(ctx, config.VerificationTimeout)
	defer cancel()

	start := time.Now()
	resp, err := v.provider.Generate(callCtx, llm.Request{
		Model:  v.model,
		System: verificationSystemPrompt,
		Prompt: prompt,
	})
	metrics.LLMCallDuration.WithLabelValues("verification", v.provider.Name()).Observe(time.Since(start).Seconds())
	if err != nil {
		return &Report{Verdict: VerdictFailed, Details: err.Error()}, nil
	}
	metrics.ObserveUsage(resp.Usage.InputTokens, resp.Usage.OutputTokens)

	report := &Report{Details: resp.Text, Usage: resp.Usage}
	if strings.Contains(strings.ToUpper(resp.Text), "VERIFIED: NO ISSUES") {
		report.Verdict = VerdictClean
	} else {
		report.Verdict = VerdictIssues
	}
	return report, nil
}

// sourceDoc is one source text fed to the verification prompt.
type sourceDoc struct {
	Name string
	Text string
}

// resolveSources picks the verification corpus by priority: an explicit
// sources_dir, then a source_glob, then the centralized extraction folder,
// then a scan for per-document extraction artifacts.
func (v *verifier) resolveSources(caseFolder string) ([]sourceDoc, string, error) {
	if dir := v.settings.SourcesDir; dir != "" {
		docs, err := readSourceDir(dir)
		if err != nil {
			return nil, "", fmt.Errorf("sources_dir %s: %w", dir, err)
		}
		return docs, "sources_dir", nil
	}

	if pattern := v.settings.SourceGlob; pattern != "" {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, "", fmt.Errorf("source_glob %q: %w", pattern, err)
		}
		sort.Strings(matches)
		var docs []sourceDoc
		for _, m := range matches {
			if doc, ok := readSourceFile(m); ok {
				docs = append(docs, doc)
			}
		}
		return docs, "source_glob", nil
	}

	centralized := filepath.Join(caseFolder, docModel.DocumentsDirName, docModel.CentralizedDirName)
	if docs, err := readSourceDir(centralized); err == nil && len(docs) > 0 {
		return docs, "centralized", nil
	}

	docs, err := scanExtractionArtifacts(filepath.Join(caseFolder, docModel.DocumentsDirName))
	if err != nil {
		return nil, "", err
	}
	return docs, "per_document", nil
}

func readSourceDir(dir string) ([]sourceDoc, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var docs []sourceDoc
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if doc, ok := readSourceFile(filepath.Join(dir, entry.Name())); ok {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

func readSourceFile(path string) (sourceDoc, bool) {
	data, err := os.ReadFile(path)
	if err != nil || strings.TrimSpace(string(data)) == "" {
		return sourceDoc{}, false
	}
	return sourceDoc{Name: filepath.Base(path), Text: string(data)}, true
}

func scanExtractionArtifacts(documentsDir string) ([]sourceDoc, error) {
	entries, err := os.ReadDir(documentsDir)
	if err != nil {
		return nil, fmt.Errorf("reading documents folder: %w", err)
	}
	var docs []sourceDoc
	for _, entry := range entries {
		if !entry.IsDir() || entry.Name() == docModel.CentralizedDirName {
			continue
		}
		path := filepath.Join(documentsDir, entry.Name(), docModel.FullTextFileName)
		if doc, ok := readSourceFile(path); ok {
			doc.Name = entry.Name()
			docs = append(docs, doc)
		}
	}
	return docs, nil
}
