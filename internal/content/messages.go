package content

import (
	"strings"

	"github.com/phrazzld/kanji-trainer/internal/random"
)

type messageFile struct {
	Praise        []string `yaml:"praise"`
	Encouragement []string `yaml:"encouragement"`
	Feeding       []string `yaml:"feeding"`
}

// Messages picks display messages shown after answers and feeding.
type Messages struct {
	praise        []string
	encouragement []string
	feeding       []string
	rng           *random.Source
}

// NewMessages creates a message picker over the given lists.
func NewMessages(praise, encouragement, feeding []string, rng *random.Source) *Messages {
	return &Messages{praise: praise, encouragement: encouragement, feeding: feeding, rng: rng}
}

// Praise returns a message for a correct answer.
func (m *Messages) Praise() string {
	s, _ := random.Pick(m.rng, m.praise)
	return s
}

// Encouragement returns a message for an incorrect answer.
func (m *Messages) Encouragement() string {
	s, _ := random.Pick(m.rng, m.encouragement)
	return s
}

// Feeding returns a message for feeding food to a character.
func (m *Messages) Feeding(character, food string) string {
	s, _ := random.Pick(m.rng, m.feeding)
	return strings.NewReplacer("{character}", character, "{food}", food).Replace(s)
}
