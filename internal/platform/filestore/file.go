package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/taskdesk/taskdesk-api/internal/store"
)

// jsonFile guards a JSON array of records stored at path.
type jsonFile[T any] struct {
	path string
	mu   sync.Mutex
}

func newJSONFile[T any](path string) (*jsonFile[T], error) {
	if path == "" {
		return nil, errors.New("file path cannot be empty")
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &jsonFile[T]{path: path}, nil
}

// read loads every record. A missing or empty file is an empty list.
func (f *jsonFile[T]) read() ([]T, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []T{}, nil
	}
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return []T{}, nil
	}

	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(f.path), err)
	}
	if records == nil {
		records = []T{}
	}
	return records, nil
}

// write replaces the file contents atomically.
func (f *jsonFile[T]) write(records []T) (err error) {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), "."+filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), f.path)
}

// view runs fn over the current records without writing.
func (f *jsonFile[T]) view(ctx context.Context, fn func([]T) error) error {
	if err := ctx.Err(); err != nil {
		return ctxError(err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	records, err := f.read()
	if err != nil {
		return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}
	return fn(records)
}

// update runs fn over the current records and persists the returned slice.
// When fn returns an error nothing is written.
func (f *jsonFile[T]) update(ctx context.Context, fn func([]T) ([]T, error)) error {
	if err := ctx.Err(); err != nil {
		return ctxError(err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	records, err := f.read()
	if err != nil {
		return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}
	next, err := fn(records)
	if err != nil {
		return err
	}
	if err := f.write(next); err != nil {
		return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}
	return nil
}

// ping checks that the data directory is reachable.
func (f *jsonFile[T]) ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return ctxError(err)
	}
	if _, err := os.Stat(filepath.Dir(f.path)); err != nil {
		return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}
	return nil
}

func ctxError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", store.ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
}
