package collection

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/phrazzld/kanji-trainer/internal/domain"
	"github.com/phrazzld/kanji-trainer/internal/domain/progression"
	"github.com/phrazzld/kanji-trainer/internal/platform/logger"
)

// Verify interface compliance at compile time
var _ Ledger = (*ledgerImpl)(nil)

type ledgerImpl struct {
	repo        Repository
	roster      Roster
	progression progression.Service
	clock       Clock
	logger      *slog.Logger
}

// NewLedger creates a Ledger over the collected slot.
func NewLedger(
	repo Repository,
	roster Roster,
	prog progression.Service,
	clock Clock,
	logger *slog.Logger,
) Ledger {
	if repo == nil {
		panic("repo cannot be nil")
	}
	if roster == nil {
		panic("roster cannot be nil")
	}
	if prog == nil {
		panic("progression service cannot be nil")
	}
	if clock == nil {
		panic("clock cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ledgerImpl{
		repo:        repo,
		roster:      roster,
		progression: prog,
		clock:       clock,
		logger:      logger.With(slog.String("component", "collection_ledger")),
	}
}

// lineageOf returns the lineage a record belongs to. Records whose id has
// left the roster are treated as their own lineage.
func (l *ledgerImpl) lineageOf(record domain.CollectedCharacter) string {
	if def, ok := l.roster.Get(record.CharacterID); ok {
		return def.LineageID
	}
	return record.CharacterID
}

func (l *ledgerImpl) Records(ctx context.Context) ([]domain.CollectedCharacter, error) {
	records, err := l.repo.Collected(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load collection: %w", err)
	}
	return records, nil
}

func (l *ledgerImpl) IsLineageMember(ctx context.Context, characterID string) (bool, error) {
	records, err := l.Records(ctx)
	if err != nil {
		return false, err
	}
	return holds(records, characterID), nil
}

func holds(records []domain.CollectedCharacter, characterID string) bool {
	return slices.ContainsFunc(records, func(r domain.CollectedCharacter) bool {
		return r.CharacterID == characterID
	})
}

func (l *ledgerImpl) UniqueByLineage(ctx context.Context) ([]domain.CollectedCharacter, error) {
	records, err := l.Records(ctx)
	if err != nil {
		return nil, err
	}
	return l.uniqueByLineage(records), nil
}

func (l *ledgerImpl) uniqueByLineage(records []domain.CollectedCharacter) []domain.CollectedCharacter {
	index := make(map[string]int, len(records))
	out := make([]domain.CollectedCharacter, 0, len(records))
	for _, r := range records {
		lineage := l.lineageOf(r)
		i, seen := index[lineage]
		if !seen {
			index[lineage] = len(out)
			out = append(out, r)
			continue
		}
		if r.EvolutionLevel > out[i].EvolutionLevel {
			out[i] = r
		}
	}
	return out
}

func (l *ledgerImpl) Acquire(ctx context.Context, characterID string) (domain.CollectedCharacter, error) {
	log := logger.FromContextOrDefault(ctx, l.logger)

	def, ok := l.roster.Get(characterID)
	if !ok {
		return domain.CollectedCharacter{}, fmt.Errorf("%w: %q", domain.ErrUnknownCharacter, characterID)
	}
	if !def.IsInitial() {
		return domain.CollectedCharacter{}, fmt.Errorf("%w: %q", domain.ErrNotInitialStage, characterID)
	}

	record := domain.NewCollectedCharacter(characterID, l.clock.Now())
	_, err := l.repo.UpdateCollected(ctx, func(current []domain.CollectedCharacter) ([]domain.CollectedCharacter, error) {
		for _, r := range current {
			if l.lineageOf(r) == def.LineageID {
				return nil, fmt.Errorf("%w: %q", domain.ErrLineageOwned, def.LineageID)
			}
		}
		return append(slices.Clone(current), record), nil
	})
	if err != nil {
		return domain.CollectedCharacter{}, fmt.Errorf("failed to acquire character: %w", err)
	}

	log.Info("character acquired",
		slog.String("character_id", characterID),
		slog.String("lineage_id", def.LineageID))
	return record, nil
}

func (l *ledgerImpl) Evolve(ctx context.Context, characterID string) (Evolution, error) {
	log := logger.FromContextOrDefault(ctx, l.logger)

	var result Evolution
	_, err := l.repo.UpdateCollected(ctx, func(current []domain.CollectedCharacter) ([]domain.CollectedCharacter, error) {
		i := slices.IndexFunc(current, func(r domain.CollectedCharacter) bool {
			return r.CharacterID == characterID
		})
		if i < 0 {
			return nil, fmt.Errorf("%w: %q", domain.ErrCharacterNotOwned, characterID)
		}
		from, ok := l.roster.Get(characterID)
		if !ok {
			from = domain.CharacterDefinition{ID: characterID}
		}
		evolved, err := l.progression.Evolve(current[i], from)
		if err != nil {
			return nil, err
		}
		to, ok := l.roster.Get(evolved.CharacterID)
		if !ok {
			return nil, domain.ErrNoEvolutionPath
		}

		next := slices.Clone(current)
		next[i] = evolved
		result = Evolution{From: from, To: to, Record: evolved}
		return next, nil
	})
	if err != nil {
		log.Debug("evolution rejected",
			slog.String("character_id", characterID),
			slog.String("error", err.Error()))
		return Evolution{}, fmt.Errorf("failed to evolve character: %w", err)
	}

	log.Info("character evolved",
		slog.String("from", result.From.ID),
		slog.String("to", result.To.ID),
		slog.Int("level", int(result.Record.EvolutionLevel)))
	return result, nil
}

func (l *ledgerImpl) View(ctx context.Context) (View, error) {
	records, err := l.Records(ctx)
	if err != nil {
		return View{}, err
	}
	unique := l.uniqueByLineage(records)
	byLineage := make(map[string]domain.CollectedCharacter, len(unique))
	for _, r := range unique {
		byLineage[l.lineageOf(r)] = r
	}

	lineages := l.roster.Lineages()
	view := View{
		Total:    len(lineages),
		Owned:    len(unique),
		Lineages: make([]LineageView, 0, len(lineages)),
	}
	for _, id := range lineages {
		chain := l.roster.LineageChain(id)
		lv := LineageView{LineageID: id, Forms: make([]FormView, len(chain))}
		for i, def := range chain {
			lv.Forms[i] = FormView{Character: def, Owned: holds(records, def.ID)}
		}
		if r, ok := byLineage[id]; ok {
			lv.Record = &r
		}
		view.Lineages = append(view.Lineages, lv)
	}
	return view, nil
}
