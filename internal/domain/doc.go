// Package domain contains the core entities, value objects and rules of the
// kanji trainer: study questions, the character roster and its evolution
// lineages, the learner's collection, history, reward pool and food
// inventory. It is independent of any storage or delivery mechanism.
package domain
