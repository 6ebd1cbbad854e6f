// Package services contains the application services of the field client:
// the queue manager that records findings offline and the sync engine that
// drains them to the remote stores.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/rackaudit/internal/client/models"
	"github.com/dmitrijs2005/rackaudit/internal/client/photo"
	"github.com/dmitrijs2005/rackaudit/internal/client/repositories/localstore"
	"github.com/dmitrijs2005/rackaudit/internal/common"
	"github.com/dmitrijs2005/rackaudit/internal/logging"
)

const maxKeyAttempts = 64

// QueueService writes findings and photos into the local store. None of its
// methods touch the network, so they all succeed offline.
type QueueService struct {
	store localstore.Repository
	keys  *models.KeyGenerator
	log   logging.Logger
}

func NewQueueService(store localstore.Repository, keys *models.KeyGenerator, log logging.Logger) *QueueService {
	return &QueueService{store: store, keys: keys, log: log}
}

// Enqueue finalizes rec (status forced to pending) and stores it under a
// fresh record key, which is returned.
func (q *QueueService) Enqueue(ctx context.Context, rec *models.DamageRecord) (string, error) {
	if rec == nil {
		return "", common.ErrMissingAuditID
	}
	if err := rec.Finalize(); err != nil {
		return "", err
	}

	if rec.HasLocalPhoto() {
		photoKey := *rec.PhotoRef
		if _, err := q.store.Get(ctx, photoKey); err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return "", fmt.Errorf("%w: %s", common.ErrDanglingPhotoRef, photoKey)
			}
			return "", fmt.Errorf("error checking photo: %w", err)
		}
		holders, err := photoHolders(ctx, q.store, photoKey, "")
		if err != nil {
			return "", fmt.Errorf("error checking photo: %w", err)
		}
		if len(holders) > 0 {
			return "", fmt.Errorf("%w: %s held by %s", common.ErrPhotoRefInUse, photoKey, holders[0])
		}
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("error encoding record: %w", err)
	}

	key, err := q.create(ctx, q.keys.RecordKey, payload)
	if err != nil {
		return "", err
	}

	q.log.Info(ctx, "record queued", "key", key, "audit_id", rec.AuditID, "damage_type", rec.DamageType)
	return key, nil
}

// CapturePhoto validates and encodes an image, stores it as a pending photo
// and returns the key to embed as a record's photo reference.
func (q *QueueService) CapturePhoto(ctx context.Context, data []byte, mimeType, filename string) (string, error) {
	p, err := photo.Encode(data, mimeType, filename)
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("error encoding photo: %w", err)
	}

	key, err := q.create(ctx, q.keys.PhotoKey, payload)
	if err != nil {
		return "", err
	}

	q.log.Info(ctx, "photo captured", "key", key, "name", filename, "bytes", len(data))
	return key, nil
}

// Pending returns the queued records in key (enqueue) order. Entries that
// cannot be decoded are skipped with a warning.
func (q *QueueService) Pending(ctx context.Context) ([]models.QueuedRecord, error) {
	keys, err := q.store.ListKeys(ctx, common.RecordKeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("error listing queue: %w", err)
	}

	result := make([]models.QueuedRecord, 0, len(keys))
	for _, key := range keys {
		rec, err := loadRecord(ctx, q.store, key)
		if err != nil {
			q.log.Warn(ctx, "skipping unreadable queue entry", "key", key, "error", err)
			continue
		}
		result = append(result, models.QueuedRecord{Key: key, Record: rec})
	}
	return result, nil
}

// PendingCount returns the number of queued records.
func (q *QueueService) PendingCount(ctx context.Context) (int, error) {
	keys, err := q.store.ListKeys(ctx, common.RecordKeyPrefix)
	if err != nil {
		return 0, fmt.Errorf("error listing queue: %w", err)
	}
	return len(keys), nil
}

// create stores payload under a key that no other entry holds. Another
// process on the same file may have taken a key first; the next one is tried.
func (q *QueueService) create(ctx context.Context, nextKey func() string, payload []byte) (string, error) {
	for range maxKeyAttempts {
		key := nextKey()
		err := q.store.Create(ctx, key, payload)
		if err == nil {
			return key, nil
		}
		if !errors.Is(err, common.ErrKeyExists) {
			return "", fmt.Errorf("saving error: %w", err)
		}
		q.log.Debug(ctx, "queue key taken, trying the next one", "key", key)
	}
	return "", fmt.Errorf("saving error: no free key after %d attempts: %w", maxKeyAttempts, common.ErrKeyExists)
}

// photoHolders returns the queued records other than except whose photo
// reference is photoKey. Unreadable entries are ignored.
func photoHolders(ctx context.Context, store localstore.Repository, photoKey, except string) ([]string, error) {
	keys, err := store.ListKeys(ctx, common.RecordKeyPrefix)
	if err != nil {
		return nil, err
	}
	var holders []string
	for _, key := range keys {
		if key == except {
			continue
		}
		rec, err := loadRecord(ctx, store, key)
		if err != nil {
			continue
		}
		if rec.PhotoRef != nil && *rec.PhotoRef == photoKey {
			holders = append(holders, key)
		}
	}
	return holders, nil
}

func loadRecord(ctx context.Context, store localstore.Repository, key string) (*models.DamageRecord, error) {
	raw, err := store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	var rec models.DamageRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("error decoding record: %w", err)
	}
	return &rec, nil
}
