package store

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/Sourabsb/tbi-hackathon/internal/job"
	"github.com/Sourabsb/tbi-hackathon/internal/record"
)

// CachedStore layers a best-effort in-memory status cache over a DiskStore.
// The disk documents stay authoritative: writes go through and refresh the
// cache, listings always read disk, and an fsnotify watcher evicts entries
// whose files change out-of-band.
type CachedStore struct {
	disk   *DiskStore
	logger *slog.Logger

	mu    sync.RWMutex
	cache map[string]*job.Document

	watcher *fsnotify.Watcher
	done    chan struct{}
}

func NewCachedStore(disk *DiskStore, watchFiles bool, logger *slog.Logger) (*CachedStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &CachedStore{
		disk:   disk,
		logger: logger,
		cache:  make(map[string]*job.Document),
		done:   make(chan struct{}),
	}
	if !watchFiles {
		return s, nil
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(disk.JobsDir()); err != nil {
		_ = w.Close()
		return nil, err
	}
	s.watcher = w
	go s.watch()
	return s, nil
}

func (s *CachedStore) watch() {
	for {
		select {
		case <-s.done:
			return
		case e, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if e.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			name := filepath.Base(e.Name)
			if !strings.HasSuffix(name, ".json") {
				continue
			}
			id := strings.TrimSuffix(name, ".json")
			s.mu.Lock()
			delete(s.cache, id)
			s.mu.Unlock()
			s.logger.Debug("store.cache.evicted", "job_id", id, "op", e.Op.String())
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("store.cache.watch_error", "error", err)
		}
	}
}

// Close stops the watcher goroutine.
func (s *CachedStore) Close() error {
	close(s.done)
	if s.watcher != nil {
		return s.watcher.Close()
	}
	return nil
}

func (s *CachedStore) SaveStatus(ctx context.Context, doc *job.Document) error {
	if err := s.disk.SaveStatus(ctx, doc); err != nil {
		return err
	}
	cp := *doc
	s.mu.Lock()
	s.cache[doc.JobID] = &cp
	s.mu.Unlock()
	return nil
}

func (s *CachedStore) LoadStatus(ctx context.Context, jobID string) (*job.Document, error) {
	s.mu.RLock()
	doc, ok := s.cache[jobID]
	s.mu.RUnlock()
	if ok {
		cp := *doc
		return &cp, nil
	}

	doc, err := s.disk.LoadStatus(ctx, jobID)
	if err != nil {
		return nil, err
	}
	cp := *doc
	s.mu.Lock()
	s.cache[jobID] = &cp
	s.mu.Unlock()
	return doc, nil
}

func (s *CachedStore) ListStatuses(ctx context.Context) ([]*job.Document, error) {
	// Listings never trust the cache; disk ordering is authoritative.
	return s.disk.ListStatuses(ctx)
}

func (s *CachedStore) SaveResult(ctx context.Context, jobID string, table []record.Record) error {
	return s.disk.SaveResult(ctx, jobID, table)
}

func (s *CachedStore) LoadResult(ctx context.Context, jobID string) (*job.ResultPayload, error) {
	return s.disk.LoadResult(ctx, jobID)
}

func (s *CachedStore) RepairResultCSV(ctx context.Context, jobID string, table []record.Record) error {
	return s.disk.RepairResultCSV(ctx, jobID, table)
}
