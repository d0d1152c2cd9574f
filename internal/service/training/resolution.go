package training

import (
	"context"
	"errors"
	"log/slog"

	"github.com/phrazzld/kanji-trainer/internal/domain"
	"github.com/phrazzld/kanji-trainer/internal/events"
	"github.com/phrazzld/kanji-trainer/internal/platform/logger"
	"github.com/phrazzld/kanji-trainer/internal/service/collection"
)

// evolutionRules are the ledger errors that abort an evolve with a notice.
var evolutionRules = []error{
	domain.ErrAlreadyMaxEvolved,
	domain.ErrNoEvolutionPath,
	domain.ErrCharacterNotOwned,
}

func evolutionRule(err error) (error, bool) {
	for _, rule := range evolutionRules {
		if errors.Is(err, rule) {
			return rule, true
		}
	}
	return nil, false
}

// resolve converts a finished queue into its reward. Food is granted in
// both branches before anything else happens.
func (m *Machine) resolve(ctx context.Context) {
	food := m.deps.Foods.RandomFood()
	switch m.sess.mode.Goal {
	case GoalGetNew:
		m.resolveGetNew(ctx, food)
	case GoalEvolve:
		m.resolveEvolve(ctx, food)
	}
}

func (m *Machine) grant(ctx context.Context, food domain.FoodItem) error {
	if _, err := m.deps.Inventory.Grant(ctx, food.ID); err != nil {
		return err
	}
	m.record(events.TypeFoodGranted, map[string]string{"food_id": food.ID})
	return nil
}

func (m *Machine) resolveGetNew(ctx context.Context, food domain.FoodItem) {
	var (
		offer domain.CharacterDefinition
		found bool
	)
	err := m.deps.Store.Batch(ctx, func(ctx context.Context) error {
		records, err := m.deps.Ledger.Records(ctx)
		if err != nil {
			return err
		}
		owned := make([]string, len(records))
		for i, r := range records {
			owned[i] = r.CharacterID
		}
		offer, found = m.deps.Roster.RandomUnownedLineageMember(owned)
		return m.grant(ctx, food)
	})
	if err != nil {
		m.storageFailed(ctx, "resolve get new", err)
		return
	}

	res := &Resolution{Food: food}
	if found {
		res.Character = &offer
	}
	m.sess.resolution = res
	m.setPhase(PhaseResolution)
	if !found {
		m.raise(ctx, newNotice(NoticeCollectionComplete, domain.ErrCollectionComplete))
	}
}

func (m *Machine) resolveEvolve(ctx context.Context, food domain.FoodItem) {
	log := logger.FromContextOrDefault(ctx, m.logger)
	target := m.sess.target

	var (
		evo      collection.Evolution
		ruleErr  error
		rejected bool
	)
	err := m.deps.Store.Batch(ctx, func(ctx context.Context) error {
		if err := m.grant(ctx, food); err != nil {
			return err
		}
		var err error
		evo, err = m.deps.Ledger.Evolve(ctx, target.CharacterID)
		if ruleErr, rejected = evolutionRule(err); rejected {
			return nil
		}
		return err
	})
	if err != nil {
		m.storageFailed(ctx, "resolve evolve", err)
		return
	}

	if rejected {
		log.Warn("evolution rejected",
			slog.String("character_id", target.CharacterID),
			slog.String("reason", ruleErr.Error()))
		m.reset()
		m.raise(ctx, newNotice(NoticeEvolutionFailed, ruleErr))
		m.stagePopup(Popup{Kind: PopupFood, Food: &food}, m.cfg.Timing.FoodAfterExit)
		return
	}

	m.record(events.TypeCharacterEvolved, map[string]any{
		"from":  evo.From.ID,
		"to":    evo.To.ID,
		"level": evo.Record.EvolutionLevel,
	})
	m.startEvolution(evo, food)
}

// Reveal opens the mystery character and adds it to the collection. When
// the unique lineage count lands on a milestone a reward is drawn. The food
// popup and any reward popup appear after their delays. A store failure
// ends the session with a notice; the granted food is still shown.
func (m *Machine) Reveal(ctx context.Context) (Snapshot, error) {
	return m.do(ctx, func(ctx context.Context) error {
		if m.phase != PhaseResolution || m.sess.resolution.Revealed {
			return invalidTransition("reveal", m.phase)
		}
		res := m.sess.resolution

		var (
			reward string
			drawn  bool
		)
		if res.Character != nil {
			err := m.deps.Store.Batch(ctx, func(ctx context.Context) error {
				record, err := m.deps.Ledger.Acquire(ctx, res.Character.ID)
				if err != nil {
					return err
				}
				unique, err := m.deps.Ledger.UniqueByLineage(ctx)
				if err != nil {
					return err
				}
				m.record(events.TypeCharacterAcquired, map[string]any{
					"character_id": record.CharacterID,
					"unique_count": len(unique),
				})
				if !m.deps.Progression.IsMilestone(len(unique)) {
					return nil
				}
				res.Milestone = true
				reward, drawn, err = m.deps.Rewards.Draw(ctx)
				return err
			})
			if err != nil {
				// The acquire may already be stored, so the resolution
				// cannot be revealed again.
				m.storageFailed(ctx, "reveal", err)
				m.stagePopup(Popup{Kind: PopupFood, Food: &res.Food}, m.cfg.Timing.FoodAfterExit)
				return nil
			}
		}

		res.Revealed = true
		m.stagePopup(Popup{Kind: PopupFood, Food: &res.Food}, m.cfg.Timing.FoodPopup)
		if drawn {
			m.record(events.TypeRewardDrawn, map[string]string{"reward": reward})
			m.stagePopup(Popup{Kind: PopupReward, Reward: reward}, m.cfg.Timing.RewardPopup)
		}
		return nil
	})
}

// Finish leaves a revealed resolution or a completed evolution for idle.
// Leaving an evolution shows the granted food shortly afterwards.
func (m *Machine) Finish(ctx context.Context) (Snapshot, error) {
	return m.do(ctx, func(ctx context.Context) error {
		switch {
		case m.phase == PhaseResolution && m.sess.resolution.Revealed:
			m.finished()
			m.reset()
			return nil
		case m.phase == PhaseEvolution && m.sess.evolution.Step == StepComplete:
			food := m.sess.evolution.Food
			m.finished()
			m.reset()
			m.stagePopup(Popup{Kind: PopupFood, Food: &food}, m.cfg.Timing.FoodAfterExit)
			return nil
		}
		return invalidTransition("finish", m.phase)
	})
}

func (m *Machine) finished() {
	s := m.sess
	m.record(events.TypeSessionFinished, map[string]any{
		"activity": s.mode.Activity,
		"goal":     s.mode.Goal,
		"correct":  s.correct,
		"total":    len(s.queue),
	})
	m.logger.Info("session finished",
		slog.String("goal", string(s.mode.Goal)),
		slog.Int("correct", s.correct),
		slog.Int("total", len(s.queue)))
}
