package runstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/redis/go-redis/v9"

	"github.com/akolanti/lexintake/internal/config"
	"github.com/akolanti/lexintake/internal/data/redisStore"
	"github.com/akolanti/lexintake/internal/domain/docModel"
	"github.com/akolanti/lexintake/pkg/logger_i"
)

var (
	log = logger_i.NewLogger("runstore")

	ErrRunNotFound = errors.New("run not found")
)

// Store persists run status records for the status server and post-mortem
// inspection. Persistence is best effort; a failed save never stops a run.
type Store interface {
	SaveRun(ctx context.Context, run *docModel.RunStatus) error
	GetRun(ctx context.Context, runID string) (*docModel.RunStatus, error)
}

// NewStore prefers Redis when configured and reachable, otherwise keeps the
// record as a JSON file inside the case's documents folder.
func NewStore(caseFolder string) Store {
	if client := redisStore.GetClient(); client != nil {
		log.Info("run records stored in redis")
		return NewRedisStore(client)
	}
	return NewFileStore(filepath.Join(caseFolder, docModel.DocumentsDirName))
}

type redisRunStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) Store {
	return &redisRunStore{client: client}
}

func runKey(runID string) string {
	return "intake:run:" + runID
}

func (s *redisRunStore) SaveRun(ctx context.Context, run *docModel.RunStatus) error {
	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("encoding run record: %w", err)
	}
	if err := s.client.Set(ctx, runKey(run.RunID), data, config.RedisRunStoreTTL).Err(); err != nil {
		return fmt.Errorf("saving run record: %w", err)
	}
	return nil
}

func (s *redisRunStore) GetRun(ctx context.Context, runID string) (*docModel.RunStatus, error) {
	data, err := s.client.Get(ctx, runKey(runID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading run record: %w", err)
	}
	var run docModel.RunStatus
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("decoding run record: %w", err)
	}
	return &run, nil
}

type fileRunStore struct {
	dir string
}

func NewFileStore(dir string) Store {
	return &fileRunStore{dir: dir}
}

func (s *fileRunStore) path(runID string) string {
	return filepath.Join(s.dir, ".run_"+runID+".json")
}

func (s *fileRunStore) SaveRun(ctx context.Context, run *docModel.RunStatus) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding run record: %w", err)
	}
	return os.WriteFile(s.path(run.RunID), data, 0644)
}

func (s *fileRunStore) GetRun(ctx context.Context, runID string) (*docModel.RunStatus, error) {
	data, err := os.ReadFile(s.path(runID))
	if os.IsNotExist(err) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, err
	}
	var run docModel.RunStatus
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("decoding run record: %w", err)
	}
	return &run, nil
}
