package badgerstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/phrazzld/styleai-api/internal/domain"
	"github.com/phrazzld/styleai-api/internal/task"
)

const (
	keyPrefix        = "task/"
	maxConflictRetry = 10
	valueLogGCRatio  = 0.7
	valueLogGCEvery  = 2 * time.Minute
	// maxRecordBytes leaves room for a payload carrying a full size inline
	// image plus data URL results.
	maxRecordBytes = 64 << 20

	memTableSize   = 16 << 20
	valueThreshold = 256 << 10
	valueLogSize   = 128 << 20
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("badgerstore: database is closed")

// record is the persisted form of a task. Unlike the API form it keeps
// empty result lists and raw payload bytes intact.
type record struct {
	ID        string                  `json:"id"`
	Type      string                  `json:"type"`
	Payload   []byte                  `json:"payload"`
	Status    domain.TaskStatus       `json:"status"`
	Progress  int                     `json:"progress"`
	Results   []domain.GeneratedImage `json:"results"`
	Error     string                  `json:"error"`
	Message   string                  `json:"message"`
	CreatedAt time.Time               `json:"created_at"`
	UpdatedAt time.Time               `json:"updated_at"`
}

func toRecord(t *domain.Task) record {
	return record{
		ID:        t.ID,
		Type:      t.Type,
		Payload:   t.Payload,
		Status:    t.Status,
		Progress:  t.Progress,
		Results:   t.Results,
		Error:     t.Error,
		Message:   t.Message,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func (r record) task() *domain.Task {
	return &domain.Task{
		ID:        r.ID,
		Type:      r.Type,
		Payload:   r.Payload,
		Status:    r.Status,
		Progress:  r.Progress,
		Results:   r.Results,
		Error:     r.Error,
		Message:   r.Message,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// Options configures Open.
type Options struct {
	// Path is the data directory. Ignored when InMemory is set.
	Path string
	// InMemory keeps everything in memory; used by tests.
	InMemory bool
	Logger   *slog.Logger
}

// Store is a task.Store backed by BadgerDB.
type Store struct {
	db     *badger.DB
	logger *slog.Logger
	now    func() time.Time

	mu       sync.RWMutex
	closed   bool
	cancelGC context.CancelFunc
	gcDone   chan struct{}
}

var _ task.Store = (*Store)(nil)

// Open opens (or creates) the database and starts value log garbage
// collection.
func Open(opts Options) (*Store, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "badger_store")

	var bopts badger.Options
	if opts.InMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if opts.Path == "" {
			return nil, errors.New("badgerstore: path is required")
		}
		bopts = badger.DefaultOptions(opts.Path)
		bopts.ValueLogFileSize = valueLogSize
		bopts.CompactL0OnClose = true
	}
	// The value threshold must stay below badger's batch limit of 15% of
	// the memtable. Larger values go to the value log.
	bopts.MemTableSize = memTableSize
	bopts.NumMemtables = 2
	bopts.ValueThreshold = valueThreshold
	bopts.Logger = badgerLogger{logger}

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("badgerstore: open %q: %w", opts.Path, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Store{
		db:       db,
		logger:   logger,
		now:      time.Now,
		cancelGC: cancel,
		gcDone:   make(chan struct{}),
	}
	if opts.InMemory {
		close(s.gcDone)
	} else {
		go s.valueLogGC(ctx)
	}

	logger.Info("badger task store opened", "path", opts.Path, "in_memory", opts.InMemory)
	return s, nil
}

// Close stops garbage collection and closes the database.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.cancelGC()
	<-s.gcDone
	return s.db.Close()
}

func (s *Store) valueLogGC(ctx context.Context) {
	defer close(s.gcDone)

	ticker := time.NewTicker(valueLogGCEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			err := s.db.RunValueLogGC(valueLogGCRatio)
			if err != nil && !errors.Is(err, badger.ErrNoRewrite) && !errors.Is(err, badger.ErrRejected) {
				s.logger.Warn("value log gc failed", "error", err)
			}
		}
	}
}

// guard fails fast on a cancelled context or a closed store and returns
// the function that releases the read lock.
func (s *Store) guard(ctx context.Context) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return nil, ErrClosed
	}
	return s.mu.RUnlock, nil
}

func key(id string) []byte {
	return []byte(keyPrefix + id)
}

func encode(t *domain.Task) ([]byte, error) {
	data, err := json.Marshal(toRecord(t))
	if err != nil {
		return nil, fmt.Errorf("badgerstore: encode task %s: %w", t.ID, err)
	}
	if len(data) > maxRecordBytes {
		return nil, fmt.Errorf("badgerstore: task %s too large: %d bytes", t.ID, len(data))
	}
	return data, nil
}

func decode(item *badger.Item) (*domain.Task, error) {
	var rec record
	err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &rec)
	})
	if err != nil {
		return nil, fmt.Errorf("badgerstore: decode %s: %w", item.Key(), err)
	}
	return rec.task(), nil
}

// Create implements task.Store.
func (s *Store) Create(ctx context.Context, t *domain.Task) error {
	release, err := s.guard(ctx)
	if err != nil {
		return err
	}
	defer release()

	if t == nil || t.ID == "" {
		return domain.ErrEmptyTaskID
	}
	data, err := encode(t)
	if err != nil {
		return err
	}

	return s.retry(func() error {
		return s.db.Update(func(txn *badger.Txn) error {
			_, err := txn.Get(key(t.ID))
			switch {
			case err == nil:
				return task.ErrDuplicateTask
			case !errors.Is(err, badger.ErrKeyNotFound):
				return err
			}
			return txn.Set(key(t.ID), data)
		})
	})
}

// Get implements task.Store.
func (s *Store) Get(ctx context.Context, id string) (*domain.Task, error) {
	release, err := s.guard(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	var out *domain.Task
	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(id))
		if err != nil {
			return err
		}
		out, err = decode(item)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, task.ErrTaskNotFound
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Update implements task.Store.
func (s *Store) Update(ctx context.Context, id string, update domain.TaskUpdate) (*domain.Task, error) {
	release, err := s.guard(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	var out *domain.Task
	err = s.retry(func() error {
		return s.db.Update(func(txn *badger.Txn) error {
			item, err := txn.Get(key(id))
			if err != nil {
				return err
			}
			current, err := decode(item)
			if err != nil {
				return err
			}
			if err := current.Apply(update, s.now()); err != nil {
				return err
			}
			data, err := encode(current)
			if err != nil {
				return err
			}
			out = current
			return txn.Set(key(id), data)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, task.ErrTaskNotFound
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListUnfinished implements task.Store.
func (s *Store) ListUnfinished(ctx context.Context) ([]*domain.Task, error) {
	release, err := s.guard(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	out := make([]*domain.Task, 0)
	err = s.scan(func(t *domain.Task) {
		if !t.Status.IsTerminal() {
			out = append(out, t)
		}
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// DeleteFinishedBefore implements task.Store.
func (s *Store) DeleteFinishedBefore(ctx context.Context, cutoff time.Time) (int, error) {
	release, err := s.guard(ctx)
	if err != nil {
		return 0, err
	}
	defer release()

	var ids []string
	err = s.scan(func(t *domain.Task) {
		if t.Status.IsTerminal() && t.UpdatedAt.Before(cutoff) {
			ids = append(ids, t.ID)
		}
	})
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	for _, id := range ids {
		if err := wb.Delete(key(id)); err != nil {
			return 0, fmt.Errorf("badgerstore: delete %s: %w", id, err)
		}
	}
	if err := wb.Flush(); err != nil {
		return 0, fmt.Errorf("badgerstore: flush deletes: %w", err)
	}
	return len(ids), nil
}

func (s *Store) scan(fn func(*domain.Task)) error {
	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(keyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			t, err := decode(it.Item())
			if err != nil {
				return err
			}
			fn(t)
		}
		return nil
	})
}

// retry reruns fn while it loses transaction conflicts.
func (s *Store) retry(fn func() error) error {
	var err error
	for attempt := 0; attempt < maxConflictRetry; attempt++ {
		err = fn()
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
		s.logger.Debug("transaction conflict, retrying", "attempt", attempt+1)
	}
	return fmt.Errorf("badgerstore: too many conflicts: %w", err)
}

// badgerLogger routes badger's internal logging through slog.
type badgerLogger struct {
	logger *slog.Logger
}

func (l badgerLogger) Errorf(format string, args ...any) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l badgerLogger) Warningf(format string, args ...any) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l badgerLogger) Infof(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l badgerLogger) Debugf(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
