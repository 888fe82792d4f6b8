package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/akolanti/lexintake/internal/config"
	"github.com/akolanti/lexintake/internal/data/runstore"
	"github.com/akolanti/lexintake/internal/domain/docModel"
	"github.com/akolanti/lexintake/internal/extract"
	"github.com/akolanti/lexintake/internal/intake"
	"github.com/akolanti/lexintake/internal/metrics"
	"github.com/akolanti/lexintake/internal/summarize"
	"github.com/akolanti/lexintake/internal/synthesize"
	"github.com/akolanti/lexintake/internal/verify"
	"github.com/akolanti/lexintake/pkg/logger_i"
)

var log = logger_i.NewLogger("pipeline")

// Options selects which phases a run executes.
type Options struct {
	Phase      docModel.Phase // single phase; empty means the default flow
	ResumeFrom docModel.Phase // summarize or synthesize
	AllPhases  bool
}

// Controller drives the pipeline phases over one case folder.
type Controller struct {
	caseFolder   string
	intakeDir    string
	documentsDir string

	extractor   extract.Extractor
	summarizer  summarize.Summarizer
	synthesizer synthesize.Synthesizer
	verifier    verify.Verifier

	settings *config.Settings
	store    runstore.Store
	run      *docModel.RunStatus
}

func NewController(caseFolder, intakeDir string, extractor extract.Extractor, summarizer summarize.Summarizer,
	synthesizer synthesize.Synthesizer, verifier verify.Verifier, settings *config.Settings, store runstore.Store) *Controller {
	return &Controller{
		caseFolder:   caseFolder,
		intakeDir:    intakeDir,
		documentsDir: filepath.Join(caseFolder, docModel.DocumentsDirName),
		extractor:    extractor,
		summarizer:   summarizer,
		synthesizer:  synthesizer,
		verifier:     verifier,
		settings:     settings,
		store:        store,
		run: &docModel.RunStatus{
			RunID:      uuid.NewString(),
			CaseFolder: caseFolder,
			StartedAt:  time.Now(),
		},
	}
}

func (c *Controller) RunID() string { return c.run.RunID }

// Run executes the phases selected by opts. The default flow pauses after
// summarization so the client can annotate documents before synthesis.
func (c *Controller) Run(ctx context.Context, opts Options) error {
	switch {
	case opts.Phase == docModel.PhaseExtract:
		_, err := c.runExtract(ctx)
		return err

	case opts.Phase == docModel.PhaseSummarize:
		records, err := c.loadExtractedDocuments()
		if err != nil {
			return err
		}
		return c.runSummarize(ctx, records)

	case opts.Phase == docModel.PhaseSynthesize:
		return c.runSynthesize(ctx, false)

	case opts.ResumeFrom == docModel.PhaseSummarize:
		records, err := c.loadExtractedDocuments()
		if err != nil {
			return err
		}
		if err := c.runSummarize(ctx, records); err != nil {
			return err
		}
		return c.runSynthesize(ctx, false)

	case opts.ResumeFrom == docModel.PhaseSynthesize:
		return c.runSynthesize(ctx, false)

	case opts.AllPhases:
		records, err := c.runExtract(ctx)
		if err != nil {
			return err
		}
		if err := c.runSummarize(ctx, records); err != nil {
			return err
		}
		return c.runSynthesize(ctx, true)

	default:
		// Default flow pauses before synthesis so the client can annotate
		// documents; --all-phases skips the gate.
		records, err := c.runExtract(ctx)
		if err != nil {
			return err
		}
		if err := c.runSummarize(ctx, records); err != nil {
			return err
		}
		c.annotationCheckpoint()
		return nil
	}
}

// runExtract routes every intake file into its document folder and runs the
// extraction pool over them.
func (c *Controller) runExtract(ctx context.Context) ([]*docModel.DocumentRecord, error) {
	log.Info("=== PHASE 1: DOCUMENT EXTRACTION ===")
	start := time.Now()

	paths, err := intake.DiscoverFiles(c.intakeDir)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no files found in intake folder %s", c.intakeDir)
	}
	log.Info("intake discovered", "files", len(paths))

	var files []*docModel.IntakeFile
	for _, path := range paths {
		file, err := intake.RouteFile(path, c.documentsDir)
		if err != nil {
			return nil, fmt.Errorf("routing %s: %w", filepath.Base(path), err)
		}
		files = append(files, file)
	}

	records := RunBatch(ctx, files, PoolSize(len(files)),
		func(ctx context.Context, f *docModel.IntakeFile) *docModel.DocumentRecord {
			return c.extractor.Extract(ctx, f)
		})

	successful := 0
	for _, r := range records {
		if r.Success {
			successful++
		}
	}
	c.recordPhase(ctx, docModel.PhaseExtract, successful, len(records)-successful, time.Since(start))

	if successful == 0 {
		return nil, fmt.Errorf("extraction produced no usable documents (%d failed)", len(records))
	}
	return records, nil
}

// runSummarize fans the summary pool over every successfully extracted
// document that still lacks a summary.
func (c *Controller) runSummarize(ctx context.Context, records []*docModel.DocumentRecord) error {
	log.Info("=== PHASE 2: DOCUMENT SUMMARIZATION ===")
	start := time.Now()

	var pending []*docModel.DocumentRecord
	for _, r := range records {
		if !r.Success || !r.TextExtracted {
			continue
		}
		if _, err := os.Stat(filepath.Join(r.DocFolder, docModel.SummaryFileName)); err == nil {
			log.Debug("summary already present, skipping", "folder", filepath.Base(r.DocFolder))
			continue
		}
		pending = append(pending, r)
	}
	if len(pending) == 0 {
		log.Info("nothing to summarize, all documents already have summaries")
		return nil
	}

	outcomes := RunBatch(ctx, pending, PoolSize(len(pending)),
		func(ctx context.Context, r *docModel.DocumentRecord) *summarize.Outcome {
			return c.summarizer.Summarize(ctx, r)
		})

	successful := 0
	for _, o := range outcomes {
		if o.Success {
			successful++
		}
		if c.settings.LLM.EnableTokenTracking {
			c.run.TokenUsage.Add(o.Usage)
		}
	}
	c.recordPhase(ctx, docModel.PhaseSummarize, successful, len(outcomes)-successful, time.Since(start))

	if successful == 0 {
		return fmt.Errorf("summarization produced no summaries (%d failed)", len(outcomes))
	}
	return nil
}

// runSynthesize makes the single synthesis call, then verifies the result
// when verification is enabled. fullPipeline marks an uninterrupted
// all-phases flow, which is the only flow post_phase timing applies to.
func (c *Controller) runSynthesize(ctx context.Context, fullPipeline bool) error {
	log.Info("=== PHASE 3: CASE SYNTHESIS ===")
	start := time.Now()

	inputs, err := synthesize.CollectInputs(c.caseFolder)
	if err != nil {
		return err
	}

	result, err := c.synthesizer.Synthesize(ctx, c.caseFolder, inputs)
	if err != nil {
		c.recordPhase(ctx, docModel.PhaseSynthesize, 0, 1, time.Since(start))
		return err
	}
	if c.settings.LLM.EnableTokenTracking {
		c.run.TokenUsage.Add(result.Usage)
	}
	c.recordPhase(ctx, docModel.PhaseSynthesize, 1, 0, time.Since(start))

	if c.shouldVerify(fullPipeline) {
		c.runVerification(ctx)
	}
	return nil
}

// shouldVerify applies the verification timing setting: immediate verifies
// after every synthesis, post_phase only at the end of an all-phases run,
// off never.
func (c *Controller) shouldVerify(fullPipeline bool) bool {
	if c.verifier == nil || !c.settings.DocumentVerification.AutoVerifyCaseSummary {
		return false
	}
	switch c.settings.DocumentVerification.VerificationTiming {
	case "immediate":
		return true
	case "post_phase":
		return fullPipeline
	default:
		return false
	}
}

// runVerification is advisory: a failed or adverse verification never fails
// the run, it tells the attorney where to look.
func (c *Controller) runVerification(ctx context.Context) {
	log.Info("=== VERIFICATION: CASE SUMMARY ===")

	report, err := c.verifier.VerifyCaseSummary(ctx, c.caseFolder)
	if err != nil {
		log.Warn("verification could not run", "error", err)
		return
	}
	if c.settings.LLM.EnableTokenTracking {
		c.run.TokenUsage.Add(report.Usage)
	}

	switch report.Verdict {
	case verify.VerdictClean:
		log.Info("verification passed, no issues found")
	case verify.VerdictIssues:
		log.Warn("verification found issues in the case summary, review before relying on it")
		log.Info(report.Details)
	default:
		log.Warn("verification failed to complete", "error", report.Details)
	}
}

// loadExtractedDocuments rebuilds document records from the filesystem so
// summarize and later phases can run in a fresh process. A folder counts as
// extracted when it has the extraction artifact, or when it holds a
// plaintext original, which never gets one.
func (c *Controller) loadExtractedDocuments() ([]*docModel.DocumentRecord, error) {
	entries, err := os.ReadDir(c.documentsDir)
	if err != nil {
		return nil, fmt.Errorf("reading documents folder: %w", err)
	}

	var records []*docModel.DocumentRecord
	for _, entry := range entries {
		if !entry.IsDir() || entry.Name() == docModel.CentralizedDirName {
			continue
		}
		folder := filepath.Join(c.documentsDir, entry.Name())

		original := findOriginalFile(folder)
		fileType := docModel.FileTypeUnsupported
		if original != "" {
			fileType = intake.DetectFileType(original)
		}

		hasArtifact := false
		if _, err := os.Stat(filepath.Join(folder, docModel.FullTextFileName)); err == nil {
			hasArtifact = true
		}

		// Plaintext originals never get a per-document artifact; anything
		// else without one was never extracted.
		if !hasArtifact && fileType != docModel.FileTypePlaintext {
			continue
		}
		if hasArtifact && fileType == docModel.FileTypeUnsupported {
			fileType = docModel.FileTypeDocument
		}

		record := &docModel.DocumentRecord{
			FilePath:      original,
			DocFolder:     folder,
			FileType:      fileType,
			Success:       true,
			TextExtracted: true,
		}
		if original != "" {
			record.DocType = intake.ClassifyDocumentType(filepath.Base(original))
		}
		records = append(records, record)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("no extracted documents found under %s, run the extract phase first", c.documentsDir)
	}
	log.Info("loaded extracted documents", "count", len(records))
	return records, nil
}

// findOriginalFile locates the routed intake file inside a document folder,
// skipping the artifacts the pipeline wrote next to it.
func findOriginalFile(folder string) string {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return ""
	}
	for _, entry := range entries {
		switch {
		case entry.IsDir():
		case entry.Name() == docModel.FullTextFileName:
		case entry.Name() == docModel.SummaryFileName:
		case entry.Name() == docModel.MetadataFileName:
		default:
			return filepath.Join(folder, entry.Name())
		}
	}
	return ""
}

func (c *Controller) recordPhase(ctx context.Context, phase docModel.Phase, successful, failed int, elapsed time.Duration) {
	log.Info("phase complete", "phase", phase,
		"successful", successful, "failed", failed, "elapsed", elapsed.Round(time.Millisecond))
	metrics.PhaseDuration.WithLabelValues(string(phase)).Observe(elapsed.Seconds())

	c.run.Phases = append(c.run.Phases, docModel.PhaseStatus{
		Phase:       phase,
		Successful:  successful,
		Failed:      failed,
		ElapsedSecs: elapsed.Seconds(),
		CompletedAt: time.Now(),
	})
	if err := c.store.SaveRun(ctx, c.run); err != nil {
		log.Warn("could not persist run record", "error", err)
	}
}

func (c *Controller) annotationCheckpoint() {
	log.Info("annotation checkpoint reached")
	log.Info("review the summaries under " + c.documentsDir)
	log.Info("add notes for any document in its " + docModel.MetadataFileName + " file before continuing")
	log.Info("then resume with: --resume-from synthesize")
}
