package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/phrazzld/kanji-trainer/internal/domain"
)

// Slot keys of the persisted store.
const (
	SlotCollected       = "collected-characters"
	SlotHistory         = "history"
	SlotActiveQuestions = "active-question-ids"
	SlotRewardPool      = "reward-pool"
	SlotInventory       = "inventory"
)

// Defaults are the values returned for slots that have never been written.
type Defaults struct {
	ActiveQuestionIDs []string
	Rewards           []string
}

// Slots provides typed access to the named slots of a Backend. Every update
// is a read-modify-write performed under one lock, and Batch groups several
// updates so no other caller observes the state between them.
type Slots struct {
	backend  Backend
	defaults Defaults
	logger   *slog.Logger
	mu       sync.Mutex
}

// NewSlots creates typed slot accessors over backend.
func NewSlots(backend Backend, defaults Defaults, logger *slog.Logger) *Slots {
	if backend == nil {
		panic("backend cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Slots{
		backend:  backend,
		defaults: defaults,
		logger:   logger.With(slog.String("component", "store")),
	}
}

type batchKey struct{}

// Batch runs fn while holding the store lock. Slot calls made with the
// context passed to fn join the batch instead of locking again. Nested
// batches run inline.
func (s *Slots) Batch(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.inBatch(ctx) {
		return fn(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(context.WithValue(ctx, batchKey{}, s))
}

func (s *Slots) inBatch(ctx context.Context) bool {
	owner, _ := ctx.Value(batchKey{}).(*Slots)
	return owner == s
}

func (s *Slots) lock(ctx context.Context) func() {
	if s.inBatch(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// Close closes the underlying backend.
func (s *Slots) Close() error {
	return s.backend.Close()
}

// slot describes how one key is decoded and what it holds when empty.
// decode reports whether the stored document needed migrating.
type slot[T any] struct {
	key    string
	empty  func() T
	decode func(raw []byte) (T, bool, error)
}

func jsonDecode[T any](raw []byte) (T, bool, error) {
	var v T
	err := json.Unmarshal(raw, &v)
	return v, false, err
}

func (sl slot[T]) read(raw []byte) (T, bool, error) {
	if raw == nil {
		return sl.empty(), false, nil
	}
	v, migrated, err := sl.decode(raw)
	if err != nil {
		var zero T
		return zero, false, NewStoreError(sl.key, "load", "failed to decode slot",
			fmt.Errorf("%w: %v", ErrInvalidEntity, err))
	}
	return v, migrated, nil
}

func (s *Slots) getRaw(ctx context.Context, key string) ([]byte, error) {
	raw, err := s.backend.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, NewStoreError(key, "load", "failed to read slot", err)
	}
	return raw, nil
}

func (s *Slots) putRaw(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return NewStoreError(key, "save", "failed to encode slot", err)
	}
	if err := s.backend.Put(ctx, key, data); err != nil {
		return NewStoreError(key, "save", "failed to write slot", err)
	}
	return nil
}

func load[T any](ctx context.Context, s *Slots, sl slot[T]) (T, error) {
	unlock := s.lock(ctx)
	defer unlock()

	raw, err := s.getRaw(ctx, sl.key)
	if err != nil {
		var zero T
		return zero, err
	}
	v, migrated, err := sl.read(raw)
	if err != nil {
		return v, err
	}
	if migrated {
		if err := s.putRaw(ctx, sl.key, v); err != nil {
			return v, err
		}
		s.logger.Info("migrated slot", slog.String("slot", sl.key))
	}
	return v, nil
}

func update[T any](ctx context.Context, s *Slots, sl slot[T], fn func(T) (T, error)) (T, error) {
	unlock := s.lock(ctx)
	defer unlock()

	var (
		result    T
		unchanged bool
	)
	apply := func(current []byte) ([]byte, error) {
		v, _, err := sl.read(current)
		if err != nil {
			return nil, err
		}
		next, err := fn(v)
		if errors.Is(err, ErrNoChange) {
			result, unchanged = v, true
			return nil, err
		}
		if err != nil {
			return nil, err
		}
		data, err := json.Marshal(next)
		if err != nil {
			return nil, NewStoreError(sl.key, "save", "failed to encode slot", err)
		}
		result = next
		return data, nil
	}

	if u, ok := s.backend.(Updater); ok {
		if err := u.Update(ctx, sl.key, apply); err != nil {
			if unchanged && errors.Is(err, ErrNoChange) {
				return result, nil
			}
			var zero T
			return zero, err
		}
		return result, nil
	}

	raw, err := s.getRaw(ctx, sl.key)
	if err != nil {
		var zero T
		return zero, err
	}
	data, err := apply(raw)
	if unchanged {
		return result, nil
	}
	if err != nil {
		var zero T
		return zero, err
	}
	if err := s.backend.Put(ctx, sl.key, data); err != nil {
		var zero T
		return zero, NewStoreError(sl.key, "save", "failed to write slot", err)
	}
	s.logger.Debug("slot updated", slog.String("slot", sl.key))
	return result, nil
}

func (s *Slots) collectedSlot() slot[[]domain.CollectedCharacter] {
	return slot[[]domain.CollectedCharacter]{
		key:    SlotCollected,
		empty:  func() []domain.CollectedCharacter { return []domain.CollectedCharacter{} },
		decode: migrateCollected,
	}
}

func (s *Slots) historySlot() slot[[]domain.HistoryEntry] {
	return slot[[]domain.HistoryEntry]{
		key:   SlotHistory,
		empty: func() []domain.HistoryEntry { return []domain.HistoryEntry{} },
		decode: func(raw []byte) ([]domain.HistoryEntry, bool, error) {
			h, _, err := jsonDecode[[]domain.HistoryEntry](raw)
			if h == nil {
				h = []domain.HistoryEntry{}
			}
			if len(h) > domain.MaxHistoryEntries {
				h = h[:domain.MaxHistoryEntries]
			}
			return h, false, err
		},
	}
}

func (s *Slots) activeSlot() slot[[]string] {
	return slot[[]string]{
		key:   SlotActiveQuestions,
		empty: func() []string { return slices.Clone(s.defaults.ActiveQuestionIDs) },
		decode: func(raw []byte) ([]string, bool, error) {
			ids, _, err := jsonDecode[[]string](raw)
			if ids == nil {
				ids = []string{}
			}
			return ids, false, err
		},
	}
}

func (s *Slots) rewardSlot() slot[domain.RewardPool] {
	return slot[domain.RewardPool]{
		key:   SlotRewardPool,
		empty: func() domain.RewardPool { return domain.NewRewardPool(s.defaults.Rewards) },
		decode: func(raw []byte) (domain.RewardPool, bool, error) {
			p, _, err := jsonDecode[domain.RewardPool](raw)
			if p.Rewards == nil {
				p.Rewards = []string{}
			}
			if p.UsedRewards == nil {
				p.UsedRewards = []string{}
			}
			return p, false, err
		},
	}
}

func (s *Slots) inventorySlot() slot[domain.Inventory] {
	return slot[domain.Inventory]{
		key:   SlotInventory,
		empty: func() domain.Inventory { return domain.Inventory{} },
		decode: func(raw []byte) (domain.Inventory, bool, error) {
			inv, _, err := jsonDecode[domain.Inventory](raw)
			if inv == nil {
				inv = domain.Inventory{}
			}
			for id, n := range inv {
				if n < 0 {
					inv[id] = 0
				}
			}
			return inv, false, err
		},
	}
}

// Collected returns the collected character records, backfilling and
// saving any records written before evolution tracking existed.
func (s *Slots) Collected(ctx context.Context) ([]domain.CollectedCharacter, error) {
	return load(ctx, s, s.collectedSlot())
}

// UpdateCollected atomically replaces the collected records with fn's result.
func (s *Slots) UpdateCollected(
	ctx context.Context,
	fn func([]domain.CollectedCharacter) ([]domain.CollectedCharacter, error),
) ([]domain.CollectedCharacter, error) {
	return update(ctx, s, s.collectedSlot(), fn)
}

// MigrateCollected runs the collected-record migration once and reports how
// many records were backfilled.
func (s *Slots) MigrateCollected(ctx context.Context) (int, error) {
	unlock := s.lock(ctx)
	defer unlock()

	raw, err := s.getRaw(ctx, SlotCollected)
	if err != nil || raw == nil {
		return 0, err
	}
	n, err := countLegacyRecords(raw)
	if err != nil {
		return 0, NewStoreError(SlotCollected, "migrate", "failed to decode slot",
			fmt.Errorf("%w: %v", ErrInvalidEntity, err))
	}
	if n == 0 {
		return 0, nil
	}
	_, err = load(context.WithValue(ctx, batchKey{}, s), s, s.collectedSlot())
	return n, err
}

// History returns the answer history, most recent first.
func (s *Slots) History(ctx context.Context) ([]domain.HistoryEntry, error) {
	return load(ctx, s, s.historySlot())
}

// UpdateHistory atomically replaces the history with fn's result.
func (s *Slots) UpdateHistory(
	ctx context.Context,
	fn func([]domain.HistoryEntry) ([]domain.HistoryEntry, error),
) ([]domain.HistoryEntry, error) {
	return update(ctx, s, s.historySlot(), fn)
}

// ActiveQuestionIDs returns the ids of the questions the learner has enabled.
func (s *Slots) ActiveQuestionIDs(ctx context.Context) ([]string, error) {
	return load(ctx, s, s.activeSlot())
}

// UpdateActiveQuestionIDs atomically replaces the active ids with fn's result.
func (s *Slots) UpdateActiveQuestionIDs(
	ctx context.Context,
	fn func([]string) ([]string, error),
) ([]string, error) {
	return update(ctx, s, s.activeSlot(), fn)
}

// RewardPool returns the reward pool state.
func (s *Slots) RewardPool(ctx context.Context) (domain.RewardPool, error) {
	return load(ctx, s, s.rewardSlot())
}

// UpdateRewardPool atomically replaces the reward pool with fn's result.
func (s *Slots) UpdateRewardPool(
	ctx context.Context,
	fn func(domain.RewardPool) (domain.RewardPool, error),
) (domain.RewardPool, error) {
	return update(ctx, s, s.rewardSlot(), fn)
}

// Inventory returns the food inventory.
func (s *Slots) Inventory(ctx context.Context) (domain.Inventory, error) {
	return load(ctx, s, s.inventorySlot())
}

// UpdateInventory atomically replaces the inventory with fn's result.
func (s *Slots) UpdateInventory(
	ctx context.Context,
	fn func(domain.Inventory) (domain.Inventory, error),
) (domain.Inventory, error) {
	return update(ctx, s, s.inventorySlot(), fn)
}
