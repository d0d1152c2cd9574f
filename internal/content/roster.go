package content

import (
	"fmt"
	"slices"

	"github.com/phrazzld/kanji-trainer/internal/domain"
	"github.com/phrazzld/kanji-trainer/internal/random"
)

// FormEntry is one form of a lineage in the roster table.
type FormEntry struct {
	Name        string `yaml:"name"`
	Emoji       string `yaml:"emoji"`
	Description string `yaml:"description"`
}

// LineageEntry is one lineage in the roster table. Forms are listed from
// the initial stage upward.
type LineageEntry struct {
	ID           string                  `yaml:"id"`
	FavoriteFood []string                `yaml:"favorite_food"`
	Profile      domain.CharacterProfile `yaml:"profile"`
	Forms        []FormEntry             `yaml:"forms"`
}

type characterFile struct {
	Lineages []LineageEntry `yaml:"lineages"`
}

// FormID returns the character id of a lineage form. The initial form uses
// the lineage id itself.
func FormID(lineageID string, stage domain.EvolutionStage) string {
	if stage == domain.StageInitial {
		return lineageID
	}
	return fmt.Sprintf("%s-%d", lineageID, int(stage)+1)
}

// Roster is the read-only character roster and its lineage graph.
type Roster struct {
	defs     map[string]domain.CharacterDefinition
	chains   map[string][]string
	lineages []string
	rng      *random.Source
}

// NewRoster builds linked definitions from the lineage table.
func NewRoster(entries []LineageEntry, rng *random.Source) (*Roster, error) {
	r := &Roster{
		defs:   make(map[string]domain.CharacterDefinition),
		chains: make(map[string][]string, len(entries)),
		rng:    rng,
	}
	for _, e := range entries {
		if _, dup := r.chains[e.ID]; dup {
			return nil, fmt.Errorf("duplicate lineage %q", e.ID)
		}
		if len(e.Forms) == 0 || len(e.Forms) > int(domain.StageFinal)+1 {
			return nil, fmt.Errorf("lineage %q must have between 1 and 3 forms", e.ID)
		}

		chain := make([]string, len(e.Forms))
		for i := range e.Forms {
			chain[i] = FormID(e.ID, domain.EvolutionStage(i))
		}
		for i, f := range e.Forms {
			def := domain.CharacterDefinition{
				ID:              chain[i],
				LineageID:       e.ID,
				Name:            f.Name,
				Emoji:           f.Emoji,
				Description:     f.Description,
				Stage:           domain.EvolutionStage(i),
				EligibleFoodIDs: slices.Clone(e.FavoriteFood),
				Profile:         e.Profile,
			}
			if i > 0 {
				def.PrevEvolutionID = chain[i-1]
			}
			if i < len(chain)-1 {
				def.NextEvolutionID = chain[i+1]
			}
			if err := def.Validate(); err != nil {
				return nil, fmt.Errorf("invalid character %q: %w", def.ID, err)
			}
			r.defs[def.ID] = def
		}
		r.chains[e.ID] = chain
		r.lineages = append(r.lineages, e.ID)
	}
	return r, nil
}

func (r *Roster) checkFoods(foods *Foods) error {
	for _, def := range r.defs {
		for _, id := range def.EligibleFoodIDs {
			if _, ok := foods.Get(id); !ok {
				return fmt.Errorf("character %q: %w: %q", def.ID, domain.ErrUnknownFood, id)
			}
		}
	}
	return nil
}

// Get returns the definition of a character id.
func (r *Roster) Get(id string) (domain.CharacterDefinition, bool) {
	def, ok := r.defs[id]
	return def, ok
}

// Lineages returns every lineage id in table order.
func (r *Roster) Lineages() []string {
	return slices.Clone(r.lineages)
}

// LineageCount returns the number of lineages in the roster.
func (r *Roster) LineageCount() int {
	return len(r.lineages)
}

// LineageChain returns the forms of a lineage from the initial stage upward.
func (r *Roster) LineageChain(lineageID string) []domain.CharacterDefinition {
	ids := r.chains[lineageID]
	out := make([]domain.CharacterDefinition, len(ids))
	for i, id := range ids {
		out[i] = r.defs[id]
	}
	return out
}

// NextEvolutionOf returns the next form of a character, if any.
func (r *Roster) NextEvolutionOf(id string) (domain.CharacterDefinition, bool) {
	def, ok := r.defs[id]
	if !ok || def.NextEvolutionID == "" {
		return domain.CharacterDefinition{}, false
	}
	return r.Get(def.NextEvolutionID)
}

// CanEvolve reports whether the character has a next form.
func (r *Roster) CanEvolve(id string) bool {
	_, ok := r.NextEvolutionOf(id)
	return ok
}

// RandomUnownedLineageMember picks uniformly among the initial forms of
// lineages with no member in ownedIDs. It returns false when every lineage
// is owned.
func (r *Roster) RandomUnownedLineageMember(ownedIDs []string) (domain.CharacterDefinition, bool) {
	owned := make(map[string]struct{}, len(ownedIDs))
	for _, id := range ownedIDs {
		if def, ok := r.defs[id]; ok {
			owned[def.LineageID] = struct{}{}
		}
	}

	var candidates []string
	for _, lineage := range r.lineages {
		if _, ok := owned[lineage]; !ok {
			candidates = append(candidates, r.chains[lineage][0])
		}
	}
	id, ok := random.Pick(r.rng, candidates)
	if !ok {
		return domain.CharacterDefinition{}, false
	}
	return r.defs[id], true
}
