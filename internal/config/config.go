package config

import "time"

const (
	// Worker pools for the two batch phases. Effective size per batch is
	// min(MaxWorkerCount, NumCPU, item count).
	MaxWorkerCount = 10

	// LLM call budget shared across the summary pool.
	LLM_CALLS_PER_SECOND       = 1
	BURST_LLM_CALLS_PER_SECOND = 2

	// Per-call timeouts against external services.
	UploadTimeout        = 120 * time.Second
	OCRTimeout           = 320 * time.Second
	TranscriptionTimeout = 320 * time.Second
	VisionTimeout        = 60 * time.Second
	SynthesisTimeout     = 300 * time.Second
	VerificationTimeout  = 300 * time.Second

	// OCR/transcription provider.
	OCRBaseURL         = "https://api.mistral.ai/v1"
	OCRModelName       = "mistral-ocr-latest"
	TranscriptionModel = "voxtral-mini-latest"
	OCRAPIKeyEnv       = "MISTRAL_API_KEY"
	GeminiAPIKeyEnv    = "GEMINI_API_KEY"
	OpenAIAPIKeyEnv    = "OPENAI_API_KEY"
	RedisAddrEnv       = "REDIS_ADDR"

	// Connection pooling for the OCR provider client.
	MaxIdleConns        = 50
	MaxIdleConnsPerHost = 25
	IdleConnTimeout     = 60 * time.Second

	// Status server timeouts.
	ReadTimeout            = 5 * time.Second
	WriteTimeout           = 10 * time.Second
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	// Run status records kept in Redis when available.
	RedisRunStoreDB  = 0
	RedisRunStoreTTL = 24 * time.Hour

	// Centralized registry filename limits.
	SanitizedNameMaxLen = 200
)
