package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"eggcelent-store/internal/logger"

	"go.uber.org/zap"
)

// FileStore keeps every key in one JSON document on disk. Each Apply rewrites
// the document through a temp file and rename, so a crash leaves either the
// old or the new document.
type FileStore struct {
	path string

	mu     sync.RWMutex
	values map[string]string
}

// OpenFileStore loads path, creating its directory when needed. A document
// that does not parse is moved aside and the store starts empty.
func OpenFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}

	s := &FileStore{path: path, values: make(map[string]string)}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read store file: %w", err)
	}

	if len(data) > 0 {
		if err := json.Unmarshal(data, &s.values); err != nil {
			aside := fmt.Sprintf("%s.corrupt-%d", path, time.Now().Unix())
			logger.L().Warn("store file is corrupt, starting empty",
				zap.String("path", path),
				zap.String("moved_to", aside),
				zap.Error(err),
			)
			if err := os.Rename(path, aside); err != nil {
				return nil, fmt.Errorf("move corrupt store file: %w", err)
			}
			s.values = make(map[string]string)
		}
	}

	return s, nil
}

func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[key]
	return v, ok, nil
}

func (s *FileStore) Apply(ctx context.Context, batch *Batch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(map[string]string, len(s.values)+batch.Len())
	for k, v := range s.values {
		next[k] = v
	}
	for _, op := range batch.Ops() {
		if op.Delete {
			delete(next, op.Key)
			continue
		}
		next[op.Key] = op.Value
	}

	if err := s.write(ctx, next); err != nil {
		return err
	}
	s.values = next
	return nil
}

func (s *FileStore) write(ctx context.Context, values map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("encode store file: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp store file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp store file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp store file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp store file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace store file: %w", err)
	}
	return nil
}
