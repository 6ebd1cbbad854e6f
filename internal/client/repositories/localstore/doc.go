// Package localstore is the device-resident durable key/value store that
// holds the pending queue: damage records under "audit-" keys and photo
// payloads under "photo-" keys.
//
// The store has no network dependency and survives process restarts; it is
// backed by a single SQLite table (see internal/client/migrations).
//
// Typical Usage
//
//	repo := localstore.NewSQLiteRepository(db)
//	_ = repo.Set(ctx, "audit-1700000000000", payload)
//	keys, _ := repo.ListKeys(ctx, "audit-")
//	err := repo.Atomically(ctx, func(ctx context.Context, tx localstore.Repository) error {
//	    if err := tx.Set(ctx, recordKey, rewritten); err != nil {
//	        return err
//	    }
//	    return tx.Remove(ctx, photoKey)
//	})
package localstore
