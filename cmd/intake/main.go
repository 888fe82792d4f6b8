package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"golang.org/x/time/rate"

	"github.com/akolanti/lexintake/internal/config"
	"github.com/akolanti/lexintake/internal/data/runstore"
	"github.com/akolanti/lexintake/internal/domain/docModel"
	"github.com/akolanti/lexintake/internal/extract"
	"github.com/akolanti/lexintake/internal/intake"
	"github.com/akolanti/lexintake/internal/llm"
	"github.com/akolanti/lexintake/internal/ocr"
	"github.com/akolanti/lexintake/internal/pipeline"
	"github.com/akolanti/lexintake/internal/server"
	"github.com/akolanti/lexintake/internal/summarize"
	"github.com/akolanti/lexintake/internal/synthesize"
	"github.com/akolanti/lexintake/internal/verify"
	"github.com/akolanti/lexintake/pkg/logger_i"
)

func main() {
	os.Exit(run())
}

func run() int {
	phase := flag.String("phase", "", "run a single phase: extract, summarize or synthesize")
	resumeFrom := flag.String("resume-from", "", "resume the pipeline at a phase: summarize or synthesize")
	allPhases := flag.Bool("all-phases", false, "run extraction, summarization and synthesis without stopping")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	statusAddr := flag.String("status-addr", "", "serve run status and metrics on this address, e.g. :9090")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: intake [flags] <intake-folder>")
		flag.PrintDefaults()
		return 1
	}
	intakeDir := flag.Arg(0)

	opts, err := parseOptions(*phase, *resumeFrom, *allPhases)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	info, err := os.Stat(intakeDir)
	if err != nil || !info.IsDir() {
		fmt.Fprintf(os.Stderr, "intake folder %s does not exist or is not a directory\n", intakeDir)
		return 1
	}

	caseFolder, err := intake.FindCaseFolder(intakeDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if err := logger_i.SetLogFile(filepath.Join(caseFolder, docModel.ProcessingLogName)); err != nil {
		fmt.Fprintf(os.Stderr, "warning: processing log unavailable: %v\n", err)
	}
	logger_i.Init(*verbose)
	log := logger_i.NewLogger("main")

	settings, loaded := config.LoadSettings(filepath.Join(caseFolder, "settings.json"))
	if !loaded {
		settings, loaded = config.LoadSettings("settings.json")
	}
	if !loaded {
		log.Info("no settings.json found, using defaults")
	}
	log.Info("pipeline starting", "case_folder", caseFolder, "backend", settings.LLM.Backend,
		"model", settings.LLM.Model)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	provider, err := buildProvider(ctx, settings)
	if err != nil {
		log.Error("backend unavailable", "error", err)
		return 1
	}

	ocrKey := os.Getenv(config.OCRAPIKeyEnv)
	if ocrKey == "" && needsExtraction(opts) {
		log.Error("missing API key", "env", config.OCRAPIKeyEnv)
		return 1
	}

	documentsDir := filepath.Join(caseFolder, docModel.DocumentsDirName)
	centralizedDir := filepath.Join(documentsDir, docModel.CentralizedDirName)
	extractor := extract.NewExtractor(
		ocr.NewClient(ocrKey),
		provider,
		settings.LLM.Model,
		intake.NewRegistry(centralizedDir),
		centralizedDir,
	)

	limiter := rate.NewLimiter(rate.Limit(config.LLM_CALLS_PER_SECOND), config.BURST_LLM_CALLS_PER_SECOND)
	summarizer := summarize.NewSummarizer(provider, limiter, settings.LLM.Model,
		settings.LLM.Temperature, settings.LLMTimeout(), summarize.DefaultRetryPolicy(settings.LLM.MaxRetries))
	synthesizer := synthesize.NewSynthesizer(provider, settings.LLM.SynthesisModel, settings.LLM.Temperature)

	var verifier verify.Verifier
	if settings.DocumentVerification.AutoVerifyCaseSummary {
		verifier = verify.NewVerifier(provider, settings.LLM.SynthesisModel, settings.DocumentVerification)
	}

	store := runstore.NewStore(caseFolder)
	controller := pipeline.NewController(caseFolder, intakeDir,
		extractor, summarizer, synthesizer, verifier, settings, store)

	if *statusAddr != "" {
		srv := server.New(*statusAddr, store)
		srv.Start()
		defer srv.Shutdown()
		log.Info("run status available", "run_id", controller.RunID(), "addr", *statusAddr)
	}

	if err := controller.Run(ctx, opts); err != nil {
		if ctx.Err() != nil {
			log.Warn("run interrupted, completed work is preserved on disk")
			log.Warn("resume with --resume-from summarize or --resume-from synthesize")
		} else {
			log.Error("pipeline failed", "error", err)
		}
		return 1
	}

	log.Info("pipeline finished", "run_id", controller.RunID())
	return 0
}

func parseOptions(phase, resumeFrom string, allPhases bool) (pipeline.Options, error) {
	var opts pipeline.Options

	switch phase {
	case "":
	case "extract", "summarize", "synthesize":
		opts.Phase = docModel.Phase(phase)
	default:
		return opts, fmt.Errorf("invalid --phase %q, want extract, summarize or synthesize", phase)
	}

	switch resumeFrom {
	case "":
	case "summarize", "synthesize":
		opts.ResumeFrom = docModel.Phase(resumeFrom)
	default:
		return opts, fmt.Errorf("invalid --resume-from %q, want summarize or synthesize", resumeFrom)
	}

	if opts.Phase != "" && opts.ResumeFrom != "" {
		return opts, fmt.Errorf("--phase and --resume-from are mutually exclusive")
	}
	if allPhases && (opts.Phase != "" || opts.ResumeFrom != "") {
		return opts, fmt.Errorf("--all-phases cannot be combined with --phase or --resume-from")
	}
	opts.AllPhases = allPhases
	return opts, nil
}

// needsExtraction reports whether the selected phases reach the OCR
// provider at all.
func needsExtraction(opts pipeline.Options) bool {
	if opts.ResumeFrom != "" {
		return false
	}
	return opts.Phase == "" || opts.Phase == docModel.PhaseExtract || opts.AllPhases
}

func buildProvider(ctx context.Context, settings *config.Settings) (llm.Provider, error) {
	switch settings.LLM.Backend {
	case "openai":
		key := os.Getenv(config.OpenAIAPIKeyEnv)
		if key == "" {
			return nil, fmt.Errorf("missing %s", config.OpenAIAPIKeyEnv)
		}
		return llm.NewOpenAIProvider(key), nil
	case "gemini", "":
		key := os.Getenv(config.GeminiAPIKeyEnv)
		if key == "" {
			return nil, fmt.Errorf("missing %s", config.GeminiAPIKeyEnv)
		}
		return llm.NewGeminiProvider(ctx, key)
	default:
		return nil, fmt.Errorf("unknown llm backend %q", settings.LLM.Backend)
	}
}
