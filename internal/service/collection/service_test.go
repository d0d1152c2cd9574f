package collection_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/phrazzld/kanji-trainer/internal/domain"
	"github.com/phrazzld/kanji-trainer/internal/domain/progression"
	"github.com/phrazzld/kanji-trainer/internal/service/collection"
	"github.com/phrazzld/kanji-trainer/internal/store"
	"github.com/phrazzld/kanji-trainer/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	ledger collection.Ledger
	slots  *store.Slots
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	slots := testutils.NewMemorySlots(t, store.Defaults{})
	c := testutils.NewTestContent(t)
	ledger := collection.NewLedger(
		slots,
		c.Roster,
		progression.NewDefaultService(),
		testutils.FixedClock{T: testutils.DefaultTime},
		testutils.DiscardLogger(),
	)
	return fixture{ledger: ledger, slots: slots}
}

func seed(t *testing.T, slots *store.Slots, records ...domain.CollectedCharacter) {
	t.Helper()
	_, err := slots.UpdateCollected(context.Background(),
		func([]domain.CollectedCharacter) ([]domain.CollectedCharacter, error) {
			return records, nil
		})
	require.NoError(t, err)
}

func record(id string, level domain.EvolutionStage, count int) domain.CollectedCharacter {
	return domain.CollectedCharacter{
		CharacterID:    id,
		CollectedAt:    testutils.DefaultTime,
		EvolutionLevel: level,
		TrainingCount:  count,
	}
}

func TestAcquire(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("round trip through unique view", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		got, err := f.ledger.Acquire(ctx, "fox")
		require.NoError(t, err)
		assert.Equal(t, record("fox", domain.StageInitial, 0), got)

		unique, err := f.ledger.UniqueByLineage(ctx)
		require.NoError(t, err)
		require.Len(t, unique, 1)
		assert.Equal(t, "fox", unique[0].CharacterID)
		assert.Equal(t, domain.StageInitial, unique[0].EvolutionLevel)
	})

	tests := []struct {
		name    string
		id      string
		owned   []domain.CollectedCharacter
		wantErr error
	}{
		{name: "unknown id", id: "dragon", wantErr: domain.ErrUnknownCharacter},
		{name: "non initial form", id: "fox-2", wantErr: domain.ErrNotInitialStage},
		{
			name:    "lineage already owned at later form",
			id:      "fox",
			owned:   []domain.CollectedCharacter{record("fox-3", domain.StageFinal, 2)},
			wantErr: domain.ErrLineageOwned,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t)
			seed(t, f.slots, tt.owned...)

			_, err := f.ledger.Acquire(ctx, tt.id)
			assert.ErrorIs(t, err, tt.wantErr)

			records, err := f.ledger.Records(ctx)
			require.NoError(t, err)
			assert.Len(t, records, len(tt.owned))
		})
	}
}

func TestIsLineageMember_ExactForm(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	seed(t, f.slots, record("fox-2", domain.StageSecond, 1))

	for id, want := range map[string]bool{"fox": false, "fox-2": true, "fox-3": false, "owl": false} {
		got, err := f.ledger.IsLineageMember(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, want, got, id)
	}
}

func TestUniqueByLineage_KeepsHighestLevel(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	seed(t, f.slots,
		record("owl", domain.StageInitial, 0),
		record("fox", domain.StageInitial, 0),
		record("fox-3", domain.StageFinal, 2),
		record("owl-2", domain.StageSecond, 1),
	)

	unique, err := f.ledger.UniqueByLineage(context.Background())
	require.NoError(t, err)
	require.Len(t, unique, 2)
	assert.Equal(t, "owl-2", unique[0].CharacterID)
	assert.Equal(t, "fox-3", unique[1].CharacterID)
}

func TestEvolve(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("advances one level", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		seed(t, f.slots, record("fox-2", domain.StageSecond, 4))

		evo, err := f.ledger.Evolve(ctx, "fox-2")
		require.NoError(t, err)
		assert.Equal(t, "fox-2", evo.From.ID)
		assert.Equal(t, "fox-3", evo.To.ID)
		assert.Equal(t, record("fox-3", domain.StageFinal, 5), evo.Record)

		records, err := f.ledger.Records(ctx)
		require.NoError(t, err)
		assert.Equal(t, []domain.CollectedCharacter{evo.Record}, records)
	})

	tests := []struct {
		name    string
		owned   domain.CollectedCharacter
		id      string
		wantErr error
	}{
		{
			name:    "already max evolved",
			owned:   record("fox-3", domain.StageFinal, 2),
			id:      "fox-3",
			wantErr: domain.ErrAlreadyMaxEvolved,
		},
		{
			name:    "short lineage has no next form",
			owned:   record("owl-2", domain.StageSecond, 1),
			id:      "owl-2",
			wantErr: domain.ErrNoEvolutionPath,
		},
		{
			name:    "single form lineage",
			owned:   record("egg", domain.StageInitial, 0),
			id:      "egg",
			wantErr: domain.ErrNoEvolutionPath,
		},
		{
			name:    "not owned",
			owned:   record("owl", domain.StageInitial, 0),
			id:      "fox",
			wantErr: domain.ErrCharacterNotOwned,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t)
			seed(t, f.slots, tt.owned)

			_, err := f.ledger.Evolve(ctx, tt.id)
			assert.ErrorIs(t, err, tt.wantErr)

			records, err := f.ledger.Records(ctx)
			require.NoError(t, err)
			assert.Equal(t, []domain.CollectedCharacter{tt.owned}, records)
		})
	}
}

func TestView(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	seed(t, f.slots, record("fox-2", domain.StageSecond, 1))

	view, err := f.ledger.View(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, view.Total)
	assert.Equal(t, 1, view.Owned)
	require.Len(t, view.Lineages, 3)

	fox := view.Lineages[0]
	assert.Equal(t, "fox", fox.LineageID)
	require.Len(t, fox.Forms, 3)
	assert.False(t, fox.Forms[0].Owned)
	assert.True(t, fox.Forms[1].Owned)
	assert.False(t, fox.Forms[2].Owned)
	require.NotNil(t, fox.Record)
	assert.Equal(t, "fox-2", fox.Record.CharacterID)

	assert.Nil(t, view.Lineages[1].Record)
	assert.Len(t, view.Lineages[2].Forms, 1)
}

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) Collected(ctx context.Context) ([]domain.CollectedCharacter, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CollectedCharacter), args.Error(1)
}

func (m *mockRepository) UpdateCollected(
	ctx context.Context,
	fn func([]domain.CollectedCharacter) ([]domain.CollectedCharacter, error),
) ([]domain.CollectedCharacter, error) {
	args := m.Called(ctx, fn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CollectedCharacter), args.Error(1)
}

func TestLedger_StoreErrors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	storeErr := store.NewStoreError(store.SlotCollected, "load", "failed to read slot", errors.New("disk gone"))

	repo := new(mockRepository)
	repo.On("Collected", mock.Anything).Return(nil, storeErr)
	repo.On("UpdateCollected", mock.Anything, mock.Anything).Return(nil, storeErr)

	ledger := collection.NewLedger(
		repo,
		testutils.NewTestContent(t).Roster,
		progression.NewDefaultService(),
		testutils.FixedClock{T: time.Now()},
		nil,
	)

	_, err := ledger.UniqueByLineage(ctx)
	var se *store.StoreError
	assert.ErrorAs(t, err, &se)

	_, err = ledger.Acquire(ctx, "fox")
	assert.ErrorAs(t, err, &se)

	_, err = ledger.Evolve(ctx, "fox")
	assert.ErrorAs(t, err, &se)

	repo.AssertExpectations(t)
}

func TestNewLedger_PanicsOnNilDeps(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() {
		collection.NewLedger(nil, nil, nil, nil, nil)
	})
}
