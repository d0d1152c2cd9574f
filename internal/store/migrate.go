package store

import (
	"encoding/json"
	"time"

	"github.com/phrazzld/kanji-trainer/internal/domain"
)

// legacyCollected accepts records written before evolution tracking, where
// evolutionLevel and trainingCount may be absent.
type legacyCollected struct {
	CharacterID    string                 `json:"characterId"`
	CollectedAt    time.Time              `json:"collectedAt"`
	EvolutionLevel *domain.EvolutionStage `json:"evolutionLevel"`
	TrainingCount  *int                   `json:"trainingCount"`
}

func (l legacyCollected) needsBackfill() bool {
	return l.EvolutionLevel == nil || l.TrainingCount == nil
}

// migrateCollected decodes collected records and backfills a missing
// evolutionLevel or trainingCount with zero, keeping whichever field is
// present. The boolean reports whether any record was backfilled.
func migrateCollected(raw []byte) ([]domain.CollectedCharacter, bool, error) {
	var legacy []legacyCollected
	if err := json.Unmarshal(raw, &legacy); err != nil {
		return nil, false, err
	}

	out := make([]domain.CollectedCharacter, 0, len(legacy))
	migrated := false
	for _, l := range legacy {
		rec := domain.CollectedCharacter{
			CharacterID: l.CharacterID,
			CollectedAt: l.CollectedAt,
		}
		if l.needsBackfill() {
			migrated = true
		}
		if l.EvolutionLevel != nil {
			rec.EvolutionLevel = *l.EvolutionLevel
		}
		if l.TrainingCount != nil {
			rec.TrainingCount = *l.TrainingCount
		}
		out = append(out, rec)
	}
	return out, migrated, nil
}

func countLegacyRecords(raw []byte) (int, error) {
	var legacy []legacyCollected
	if err := json.Unmarshal(raw, &legacy); err != nil {
		return 0, err
	}
	n := 0
	for _, l := range legacy {
		if l.needsBackfill() {
			n++
		}
	}
	return n, nil
}
