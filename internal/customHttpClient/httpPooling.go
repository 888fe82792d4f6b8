package customHttpClient

import (
	"net/http"
	"sync"
	"time"

	"github.com/akolanti/lexintake/internal/config"
)

var (
	once      sync.Once
	transport *http.Transport
)

// PooledClient returns an http.Client sharing one pooled transport across
// the whole process. Upload, OCR and transcription calls each pass their own
// timeout; the connection pool is common.
func PooledClient(timeout time.Duration) *http.Client {
	once.Do(func() {
		transport = &http.Transport{
			MaxIdleConns:        config.MaxIdleConns,
			MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
			IdleConnTimeout:     config.IdleConnTimeout,
		}
	})
	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}
