package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/rackaudit/internal/client/models"
	"github.com/dmitrijs2005/rackaudit/internal/client/photo"
	"github.com/dmitrijs2005/rackaudit/internal/client/remote/objectstore"
	"github.com/dmitrijs2005/rackaudit/internal/client/repositories/localstore"
	"github.com/dmitrijs2005/rackaudit/internal/common"
	"github.com/dmitrijs2005/rackaudit/internal/logging"
	"github.com/sethvargo/go-retry"
)

const (
	stageRead    = "read"
	stagePhoto   = "photo"
	stageUpload  = "upload"
	stagePersist = "persist"
	stageInsert  = "insert"
	stageRemove  = "remove"
)

// RecordInserter is the part of the remote relational store the drain needs.
type RecordInserter interface {
	InsertDamageRecord(ctx context.Context, rec *models.DamageRecord) error
}

type SyncOptions struct {
	PhotoPathPrefix string
	// EntryTimeout bounds one entry (photo upload plus insert); zero disables it.
	EntryTimeout time.Duration
	// UploadRetries is the number of extra upload attempts within one entry.
	UploadRetries uint64
	RetryBase     time.Duration
}

// Report summarizes one drain.
type Report struct {
	Attempted      int
	Synced         int
	Failed         int
	PhotosUploaded int
}

// SyncService drains the local queue into the remote stores. At most one
// drain runs at a time; overlapping requests are dropped, not queued.
type SyncService struct {
	store   localstore.Repository
	objects objectstore.Store
	records RecordInserter
	keys    *models.KeyGenerator
	log     logging.Logger
	opts    SyncOptions

	busy atomic.Bool

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func NewSyncService(
	store localstore.Repository,
	objects objectstore.Store,
	records RecordInserter,
	keys *models.KeyGenerator,
	log logging.Logger,
	opts SyncOptions,
) *SyncService {
	if opts.RetryBase <= 0 {
		opts.RetryBase = 200 * time.Millisecond
	}
	return &SyncService{
		store:   store,
		objects: objects,
		records: records,
		keys:    keys,
		log:     log,
		opts:    opts,
	}
}

// Syncing reports whether a drain is in flight.
func (s *SyncService) Syncing() bool {
	return s.busy.Load()
}

// TriggerSync starts a drain in the background and reports whether it did;
// false means one was already running or the service is closed.
func (s *SyncService) TriggerSync(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		s.log.Debug(ctx, "sync service closed, trigger dropped")
		return false
	}
	if !s.busy.CompareAndSwap(false, true) {
		s.log.Debug(ctx, "sync already in progress, trigger dropped")
		return false
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.busy.Store(false)
		if _, err := s.drain(ctx); err != nil {
			s.log.Error(ctx, "drain aborted", "error", err)
		}
	}()
	return true
}

// Wait blocks until background drains started by TriggerSync finish.
// Triggers that race with Wait must be ruled out by the caller; use Close
// when shutting down.
func (s *SyncService) Wait() {
	s.wg.Wait()
}

// Close stops TriggerSync from starting new drains and waits for the
// running one. Drain stays usable.
func (s *SyncService) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.wg.Wait()
}

// Drain runs one pass over the queue in the caller's goroutine. It returns
// common.ErrSyncInProgress when another drain holds the busy flag. Per-entry
// failures are logged and counted, never returned.
func (s *SyncService) Drain(ctx context.Context) (Report, error) {
	if !s.busy.CompareAndSwap(false, true) {
		return Report{}, common.ErrSyncInProgress
	}
	defer s.busy.Store(false)
	return s.drain(ctx)
}

func (s *SyncService) drain(ctx context.Context) (Report, error) {
	var report Report

	keys, err := s.store.ListKeys(ctx, common.RecordKeyPrefix)
	if err != nil {
		return report, fmt.Errorf("error listing queue: %w", err)
	}

	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		report.Attempted++
		uploaded, stage, err := s.syncEntry(ctx, key)
		if uploaded {
			report.PhotosUploaded++
		}
		if err != nil {
			report.Failed++
			s.log.Error(ctx, "sync entry failed", "key", key, "stage", stage, "error", err)
			continue
		}
		report.Synced++
	}

	if report.Attempted > 0 {
		s.log.Info(ctx, "drain finished",
			"attempted", report.Attempted,
			"synced", report.Synced,
			"failed", report.Failed,
			"photos", report.PhotosUploaded)
	}
	return report, nil
}

// syncEntry pushes one record. The local entry is removed only after the
// remote insert succeeded.
func (s *SyncService) syncEntry(ctx context.Context, key string) (uploaded bool, stage string, err error) {
	if s.opts.EntryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.EntryTimeout)
		defer cancel()
	}

	rec, err := loadRecord(ctx, s.store, key)
	if err != nil {
		return false, stageRead, err
	}

	if rec.HasLocalPhoto() {
		uploaded, stage, err = s.syncPhoto(ctx, key, rec)
		if err != nil {
			return uploaded, stage, err
		}
	}

	if err := s.records.InsertDamageRecord(ctx, rec); err != nil {
		return uploaded, stageInsert, err
	}

	if err := s.store.Remove(ctx, key); err != nil {
		return uploaded, stageRemove, err
	}

	return uploaded, "", nil
}

// syncPhoto uploads the pending photo of rec and rewrites its reference to
// the public URL. The rewritten record and the photo removal are committed
// together, so a later insert failure does not cause a second upload.
func (s *SyncService) syncPhoto(ctx context.Context, key string, rec *models.DamageRecord) (bool, string, error) {
	photoKey := *rec.PhotoRef

	raw, err := s.store.Get(ctx, photoKey)
	if errors.Is(err, common.ErrNotFound) {
		s.log.Warn(ctx, "pending photo missing, syncing record without it", "key", key, "photo", photoKey)
		rec.PhotoRef = nil
		return false, "", nil
	}
	if err != nil {
		return false, stagePhoto, err
	}

	var pending models.PendingPhoto
	if err := json.Unmarshal(raw, &pending); err != nil {
		return false, stagePhoto, fmt.Errorf("%w: %v", common.ErrCorruptPhoto, err)
	}
	data, err := photo.Decode(&pending)
	if err != nil {
		return false, stagePhoto, err
	}

	path := objectstore.ObjectPath(s.opts.PhotoPathPrefix, s.keys.ObjectName(pending.Extension()))
	backoff := retry.WithMaxRetries(s.opts.UploadRetries, retry.NewExponential(s.opts.RetryBase))

	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := s.objects.Upload(ctx, path, data, pending.MimeType); err != nil {
			s.log.Debug(ctx, "upload attempt failed", "key", key, "path", path, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return false, stageUpload, err
	}

	url := s.objects.PublicURL(path)
	rec.PhotoRef = &url

	payload, err := json.Marshal(rec)
	if err != nil {
		return true, stagePersist, fmt.Errorf("error encoding record: %w", err)
	}

	var shared []string
	err = s.store.Atomically(ctx, func(ctx context.Context, tx localstore.Repository) error {
		if err := tx.Set(ctx, key, payload); err != nil {
			return err
		}
		// Records written by another process may hold the same photo.
		holders, err := photoHolders(ctx, tx, photoKey, key)
		if err != nil {
			return err
		}
		for _, other := range holders {
			if err := rewritePhotoRef(ctx, tx, other, url); err != nil {
				return err
			}
		}
		shared = holders
		return tx.Remove(ctx, photoKey)
	})
	if err != nil {
		return true, stagePersist, err
	}
	if len(shared) > 0 {
		s.log.Info(ctx, "uploaded photo shared with other records", "photo", photoKey, "records", shared)
	}

	s.log.Info(ctx, "photo uploaded", "key", key, "photo", photoKey, "url", url)
	return true, "", nil
}

func rewritePhotoRef(ctx context.Context, store localstore.Repository, key, url string) error {
	rec, err := loadRecord(ctx, store, key)
	if err != nil {
		return err
	}
	rec.PhotoRef = &url
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("error encoding record: %w", err)
	}
	return store.Set(ctx, key, payload)
}
