// Package collection implements the collection ledger: which characters the
// learner owns, at what evolution level, and the views derived from that.
package collection

import (
	"context"
	"time"

	"github.com/phrazzld/kanji-trainer/internal/domain"
)

// Repository is the persisted slot holding the collected records.
type Repository interface {
	Collected(ctx context.Context) ([]domain.CollectedCharacter, error)
	UpdateCollected(
		ctx context.Context,
		fn func([]domain.CollectedCharacter) ([]domain.CollectedCharacter, error),
	) ([]domain.CollectedCharacter, error)
}

// Roster is the read-only character graph the ledger resolves ids against.
type Roster interface {
	Get(id string) (domain.CharacterDefinition, bool)
	Lineages() []string
	LineageChain(lineageID string) []domain.CharacterDefinition
}

// Clock supplies acquisition timestamps.
type Clock interface {
	Now() time.Time
}

// Evolution is the result of a successful evolve: both forms for display and
// the updated record.
type Evolution struct {
	From   domain.CharacterDefinition `json:"from"`
	To     domain.CharacterDefinition `json:"to"`
	Record domain.CollectedCharacter  `json:"record"`
}

// FormView is one lineage form with its exact-form ownership flag.
type FormView struct {
	Character domain.CharacterDefinition `json:"character"`
	Owned     bool                       `json:"owned"`
}

// LineageView is one lineage of the roster as shown in the collection.
type LineageView struct {
	LineageID string                     `json:"lineage_id"`
	Forms     []FormView                 `json:"forms"`
	Record    *domain.CollectedCharacter `json:"record,omitempty"`
}

// View is the collection screen data.
type View struct {
	Total    int           `json:"total"`
	Owned    int           `json:"owned"`
	Lineages []LineageView `json:"lineages"`
}

// Ledger tracks owned characters.
type Ledger interface {
	// Records returns every collected record in acquisition order.
	Records(ctx context.Context) ([]domain.CollectedCharacter, error)

	// IsLineageMember reports whether some record currently holds exactly
	// characterID. Owning another form of the same lineage does not count.
	IsLineageMember(ctx context.Context, characterID string) (bool, error)

	// UniqueByLineage returns, per lineage, the owned record with the
	// highest evolution level, in acquisition order.
	UniqueByLineage(ctx context.Context) ([]domain.CollectedCharacter, error)

	// Acquire records a new initial-form character at level 0.
	//
	// Returns:
	//   - domain.ErrUnknownCharacter if the id is not in the roster
	//   - domain.ErrNotInitialStage if the id is not a stage-0 form
	//   - domain.ErrLineageOwned if any form of the lineage is already owned
	Acquire(ctx context.Context, characterID string) (domain.CollectedCharacter, error)

	// Evolve advances the record currently holding characterID to the next
	// form. On failure the record is left unchanged.
	//
	// Returns:
	//   - domain.ErrCharacterNotOwned if no record holds the id
	//   - domain.ErrAlreadyMaxEvolved if the record is at the final level
	//   - domain.ErrNoEvolutionPath if the roster has no next form
	Evolve(ctx context.Context, characterID string) (Evolution, error)

	// View builds the collection screen data for every roster lineage.
	View(ctx context.Context) (View, error)
}
