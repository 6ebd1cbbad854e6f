package localstore

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/rackaudit/internal/client/localdb"
	"github.com/dmitrijs2005/rackaudit/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDB(t *testing.T) (*sql.DB, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "field.db")
	db, err := localdb.Open(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, path
}

func TestSetAndGet(t *testing.T) {
	db, _ := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "audit-1", []byte(`{"a":1}`)))

	v, err := r.Get(ctx, "audit-1")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"a":1}`), v)

	require.NoError(t, r.Set(ctx, "audit-1", []byte(`{"a":2}`)))
	v, err = r.Get(ctx, "audit-1")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"a":2}`), v)
}

func TestCreate_NeverOverwrites(t *testing.T) {
	db, _ := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, "audit-1", []byte("first")))

	err := r.Create(ctx, "audit-1", []byte("second"))
	require.ErrorIs(t, err, common.ErrKeyExists)

	v, err := r.Get(ctx, "audit-1")
	require.NoError(t, err)
	assert.Equal(t, []byte("first"), v)
}

func TestGet_Absent_ReturnsNotFound(t *testing.T) {
	db, _ := setupDB(t)
	r := NewSQLiteRepository(db)

	_, err := r.Get(context.Background(), "audit-404")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestRemove_IsIdempotent(t *testing.T) {
	db, _ := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "photo-1", []byte("x")))
	require.NoError(t, r.Remove(ctx, "photo-1"))
	require.NoError(t, r.Remove(ctx, "photo-1"))

	_, err := r.Get(ctx, "photo-1")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestListKeys_PartitionsByPrefix(t *testing.T) {
	db, _ := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	for _, k := range []string{"audit-3", "photo-2", "audit-1", "photo-1", "other"} {
		require.NoError(t, r.Set(ctx, k, []byte("v")))
	}

	audits, err := r.ListKeys(ctx, common.RecordKeyPrefix)
	require.NoError(t, err)
	assert.Equal(t, []string{"audit-1", "audit-3"}, audits)

	photos, err := r.ListKeys(ctx, common.PhotoKeyPrefix)
	require.NoError(t, err)
	assert.Equal(t, []string{"photo-1", "photo-2"}, photos)

	all, err := r.ListKeys(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestListKeys_PrefixIsLiteral(t *testing.T) {
	db, _ := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "audit_1", []byte("v")))
	require.NoError(t, r.Set(ctx, "audit%2", []byte("v")))

	keys, err := r.ListKeys(ctx, "audit%")
	require.NoError(t, err)
	assert.Equal(t, []string{"audit%2"}, keys)
}

func TestAtomically_CommitsAndRollsBack(t *testing.T) {
	db, _ := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "audit-1", []byte("old")))
	require.NoError(t, r.Set(ctx, "photo-1", []byte("img")))

	boom := errors.New("boom")
	err := r.Atomically(ctx, func(ctx context.Context, tx Repository) error {
		require.NoError(t, tx.Set(ctx, "audit-1", []byte("new")))
		require.NoError(t, tx.Remove(ctx, "photo-1"))
		return boom
	})
	require.ErrorIs(t, err, boom)

	v, err := r.Get(ctx, "audit-1")
	require.NoError(t, err)
	assert.Equal(t, []byte("old"), v)
	_, err = r.Get(ctx, "photo-1")
	require.NoError(t, err)

	err = r.Atomically(ctx, func(ctx context.Context, tx Repository) error {
		if err := tx.Set(ctx, "audit-1", []byte("new")); err != nil {
			return err
		}
		return tx.Remove(ctx, "photo-1")
	})
	require.NoError(t, err)

	v, err = r.Get(ctx, "audit-1")
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), v)
	_, err = r.Get(ctx, "photo-1")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestDurability_SurvivesReopen(t *testing.T) {
	db, path := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "audit-42", []byte("queued")))
	require.NoError(t, db.Close())

	db2, err := localdb.Open(ctx, path)
	require.NoError(t, err)
	defer db2.Close()

	v, err := NewSQLiteRepository(db2).Get(ctx, "audit-42")
	require.NoError(t, err)
	assert.Equal(t, []byte("queued"), v)
}
