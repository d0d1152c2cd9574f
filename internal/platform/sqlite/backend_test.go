package sqlite_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/phrazzld/kanji-trainer/internal/domain"
	"github.com/phrazzld/kanji-trainer/internal/platform/migrations"
	"github.com/phrazzld/kanji-trainer/internal/platform/sqlite"
	"github.com/phrazzld/kanji-trainer/internal/store"
	"github.com/phrazzld/kanji-trainer/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openBackend(t *testing.T, path string) *sqlite.Backend {
	t.Helper()
	b, err := sqlite.Open(context.Background(), path, testutils.DiscardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestBackendGetPut(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	b := openBackend(t, filepath.Join(t.TempDir(), "kanji.db"))

	_, err := b.Get(ctx, store.SlotInventory)
	assert.ErrorIs(t, err, store.ErrSlotNotFound)
	assert.True(t, store.IsNotFoundError(err))

	require.NoError(t, b.Put(ctx, store.SlotInventory, []byte(`{"apple":1}`)))
	require.NoError(t, b.Put(ctx, store.SlotInventory, []byte(`{"apple":2}`)))

	got, err := b.Get(ctx, store.SlotInventory)
	require.NoError(t, err)
	assert.JSONEq(t, `{"apple":2}`, string(got))
}

func TestBackendUpdate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	b := openBackend(t, filepath.Join(t.TempDir(), "kanji.db"))

	err := b.Update(ctx, store.SlotHistory, func(current []byte) ([]byte, error) {
		assert.Nil(t, current)
		return []byte(`[]`), nil
	})
	require.NoError(t, err)

	t.Run("failed update leaves the slot unchanged", func(t *testing.T) {
		boom := errors.New("boom")
		err := b.Update(ctx, store.SlotHistory, func(current []byte) ([]byte, error) {
			return nil, boom
		})
		assert.ErrorIs(t, err, boom)

		got, err := b.Get(ctx, store.SlotHistory)
		require.NoError(t, err)
		assert.Equal(t, `[]`, string(got))
	})
}

func TestSlotsPersistAcrossReopen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "kanji.db")

	first, err := sqlite.Open(ctx, path, testutils.DiscardLogger())
	require.NoError(t, err)
	slots := store.NewSlots(first, store.Defaults{Rewards: []string{"movie"}}, testutils.DiscardLogger())

	record := domain.NewCollectedCharacter("fox", testutils.DefaultTime)
	_, err = slots.UpdateCollected(ctx, func(records []domain.CollectedCharacter) ([]domain.CollectedCharacter, error) {
		return append(records, record), nil
	})
	require.NoError(t, err)
	_, err = slots.UpdateInventory(ctx, func(inv domain.Inventory) (domain.Inventory, error) {
		return inv.Granted("apple"), nil
	})
	require.NoError(t, err)
	require.NoError(t, slots.Close())

	// Reopening applies no migration twice.
	second := openBackend(t, path)
	slots = store.NewSlots(second, store.Defaults{}, testutils.DiscardLogger())

	collected, err := slots.Collected(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.CollectedCharacter{record}, collected)

	inv, err := slots.Inventory(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, inv["apple"])
}

func TestSlotsUpdateNoChange(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	b := openBackend(t, filepath.Join(t.TempDir(), "kanji.db"))
	slots := store.NewSlots(b, store.Defaults{}, testutils.DiscardLogger())

	_, err := slots.UpdateInventory(ctx, func(inv domain.Inventory) (domain.Inventory, error) {
		return inv.Granted("apple"), nil
	})
	require.NoError(t, err)

	got, err := slots.UpdateInventory(ctx, func(inv domain.Inventory) (domain.Inventory, error) {
		return nil, store.ErrNoChange
	})
	require.NoError(t, err)
	assert.Equal(t, 1, got.Count("apple"))

	raw, err := b.Get(ctx, store.SlotInventory)
	require.NoError(t, err)
	assert.JSONEq(t, `{"apple":1}`, string(raw))
}

func TestRunInTransaction(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db, err := sqlite.OpenDB(ctx, filepath.Join(t.TempDir(), "tx.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, migrations.Up(ctx, db, migrations.DialectSQLite, sqlite.Migrations(), testutils.DiscardLogger()))
	b := sqlite.New(db, testutils.DiscardLogger())

	insert := func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO slots (slot_key, document) VALUES ('tx', '1')`)
		return err
	}

	t.Run("error rolls back", func(t *testing.T) {
		boom := errors.New("boom")
		err := store.RunInTransaction(ctx, db, nil, func(ctx context.Context, tx *sql.Tx) error {
			require.NoError(t, insert(ctx, tx))
			return boom
		})
		assert.ErrorIs(t, err, boom)
		_, err = b.Get(ctx, "tx")
		assert.ErrorIs(t, err, store.ErrSlotNotFound)
	})

	t.Run("panic rolls back and propagates", func(t *testing.T) {
		assert.PanicsWithValue(t, "kaboom", func() {
			_ = store.RunInTransaction(ctx, db, nil, func(ctx context.Context, tx *sql.Tx) error {
				require.NoError(t, insert(ctx, tx))
				panic("kaboom")
			})
		})
		_, err := b.Get(ctx, "tx")
		assert.ErrorIs(t, err, store.ErrSlotNotFound)
	})

	t.Run("success commits", func(t *testing.T) {
		require.NoError(t, store.RunInTransaction(ctx, db, nil, insert))
		got, err := b.Get(ctx, "tx")
		require.NoError(t, err)
		assert.Equal(t, "1", string(got))
	})
}

func TestMigrationCommands(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db, err := sqlite.OpenDB(ctx, filepath.Join(t.TempDir(), "migrate.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	log := testutils.DiscardLogger()

	for _, command := range []string{"up", "status", "version", "down", "up"} {
		require.NoError(t, migrations.Run(ctx, db, migrations.DialectSQLite, sqlite.Migrations(), command, log), command)
	}

	err = migrations.Run(ctx, db, migrations.DialectSQLite, sqlite.Migrations(), "sideways", log)
	assert.ErrorIs(t, err, migrations.ErrUnknownCommand)
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	t.Parallel()
	_, err := sqlite.Open(context.Background(), "  ", nil)
	assert.Error(t, err)
}
