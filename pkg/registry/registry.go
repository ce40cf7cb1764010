// Package registry provides name-keyed lookup for descriptor.Descriptor
// values — the "PDU descriptor catalog" a consuming SMSC process would
// use to resolve an inbound command ID to the descriptor that decodes
// it. Two Store implementations are provided: an in-memory map for
// ephemeral/test use, and a JSON-file-backed store for persistence
// across process restarts.
package registry

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/oarkflow/smpp-codec/internal/errorrecovery"
	"github.com/oarkflow/smpp-codec/internal/obslog"
	"github.com/oarkflow/smpp-codec/pkg/descriptor"
)

// Store resolves descriptor names to descriptors and back.
type Store interface {
	Put(ctx context.Context, name string, d descriptor.Descriptor) error
	Get(ctx context.Context, name string) (descriptor.Descriptor, error)
	Delete(ctx context.Context, name string) error
	List(ctx context.Context) ([]string, error)
}

// MemoryStore is a mutex-protected in-memory Store.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]descriptor.Descriptor
	logger  obslog.Logger
}

// NewMemoryStore builds an empty MemoryStore. A nil logger is replaced
// with a no-op.
func NewMemoryStore(logger obslog.Logger) *MemoryStore {
	if logger == nil {
		logger = obslog.NoOp{}
	}
	return &MemoryStore{entries: make(map[string]descriptor.Descriptor), logger: logger}
}

func (s *MemoryStore) Put(_ context.Context, name string, d descriptor.Descriptor) error {
	if name == "" {
		return fmt.Errorf("registry: name cannot be empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[name] = d
	s.logger.Debug("descriptor registered", "name", name)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, name string) (descriptor.Descriptor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.entries[name]
	if !ok {
		return nil, fmt.Errorf("registry: descriptor %q not found", name)
	}
	return d, nil
}

func (s *MemoryStore) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[name]; !ok {
		return fmt.Errorf("registry: descriptor %q not found", name)
	}
	delete(s.entries, name)
	return nil
}

func (s *MemoryStore) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.entries))
	for name := range s.entries {
		names = append(names, name)
	}
	return names, nil
}

// FileStore is a JSON-file-backed Store: one file per descriptor under
// dataDir, loaded eagerly at construction and rewritten on every Put.
type FileStore struct {
	mu          sync.RWMutex
	dataDir     string
	entries     map[string]descriptor.Descriptor
	logger      obslog.Logger
	retryConfig errorrecovery.RetryConfig
	breakers    *errorrecovery.BreakerRegistry
}

// NewFileStore builds a FileStore rooted at dataDir, creating it if
// necessary and loading any descriptors already persisted there. Writes
// and deletes are retried with backoff against transient filesystem
// errors using errorrecovery.DefaultRetryConfig, and each descriptor
// name gets its own circuit breaker: a descriptor file that keeps
// failing with a transient error (see errorrecovery.IsRetryableError)
// trips only that name's breaker, so repeated failures writing one
// descriptor stop retrying into a wedged path while every other
// descriptor's Put/Delete is unaffected. Permanent errors are returned
// without moving any breaker.
func NewFileStore(dataDir string, logger obslog.Logger) (*FileStore, error) {
	if logger == nil {
		logger = obslog.NoOp{}
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("registry: create data directory: %w", err)
	}
	fs := &FileStore{
		dataDir:     dataDir,
		entries:     make(map[string]descriptor.Descriptor),
		logger:      logger,
		retryConfig: errorrecovery.DefaultRetryConfig(),
		breakers:    errorrecovery.NewBreakerRegistry(errorrecovery.DefaultCircuitBreakerConfig()),
	}
	if err := fs.loadAll(); err != nil {
		return nil, fmt.Errorf("registry: load descriptors: %w", err)
	}
	return fs, nil
}

func (fs *FileStore) path(name string) string {
	return filepath.Join(fs.dataDir, name+".json")
}

func (fs *FileStore) Put(ctx context.Context, name string, d descriptor.Descriptor) error {
	if name == "" {
		return fmt.Errorf("registry: name cannot be empty")
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()

	data, err := marshalDescriptor(d)
	if err != nil {
		return fmt.Errorf("registry: encode descriptor %q: %w", name, err)
	}

	var attempts int
	breakerErr := fs.breakers.Call(name, func() error {
		result := errorrecovery.Retry(ctx, fs.retryConfig, func() error {
			return os.WriteFile(fs.path(name), data, 0o644)
		})
		attempts = result.Attempts
		return result.Error
	})
	if breakerErr != nil {
		return fmt.Errorf("registry: write descriptor %q: %w", name, breakerErr)
	}
	fs.entries[name] = d
	fs.logger.Debug("descriptor persisted", "name", name, "attempts", attempts)
	return nil
}

func (fs *FileStore) Get(_ context.Context, name string) (descriptor.Descriptor, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	d, ok := fs.entries[name]
	if !ok {
		return nil, fmt.Errorf("registry: descriptor %q not found", name)
	}
	return d, nil
}

func (fs *FileStore) Delete(ctx context.Context, name string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if _, ok := fs.entries[name]; !ok {
		return fmt.Errorf("registry: descriptor %q not found", name)
	}
	breakerErr := fs.breakers.Call(name, func() error {
		result := errorrecovery.Retry(ctx, fs.retryConfig, func() error {
			if err := os.Remove(fs.path(name)); err != nil && !os.IsNotExist(err) {
				return err
			}
			return nil
		})
		return result.Error
	})
	if breakerErr != nil {
		return fmt.Errorf("registry: remove descriptor %q: %w", name, breakerErr)
	}
	delete(fs.entries, name)
	return nil
}

func (fs *FileStore) List(_ context.Context) ([]string, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	names := make([]string, 0, len(fs.entries))
	for name := range fs.entries {
		names = append(names, name)
	}
	return names, nil
}

func (fs *FileStore) loadAll() error {
	entries, err := os.ReadDir(fs.dataDir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(fs.dataDir, entry.Name()))
		if err != nil {
			return fmt.Errorf("read %s: %w", entry.Name(), err)
		}
		d, err := unmarshalDescriptor(data)
		if err != nil {
			return fmt.Errorf("parse %s: %w", entry.Name(), err)
		}
		name := entry.Name()[:len(entry.Name())-len(".json")]
		fs.entries[name] = d
	}
	return nil
}
