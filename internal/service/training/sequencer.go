package training

import (
	"context"
	"log/slog"
	"time"

	"github.com/phrazzld/kanji-trainer/internal/domain"
	"github.com/phrazzld/kanji-trainer/internal/events"
	"github.com/phrazzld/kanji-trainer/internal/service/collection"
)

type timedStep struct {
	step EvolutionStep
	at   time.Duration
}

// evolutionSchedule lists the steps that follow flash, with their offsets
// from entering the sequence.
func evolutionSchedule(t Timing) []timedStep {
	return []timedStep{
		{step: StepTransform, at: t.Transform},
		{step: StepReveal, at: t.Reveal},
		{step: StepComplete, at: t.Complete},
	}
}

// startEvolution enters the evolution sequence at flash and schedules the
// remaining steps. They need no input; Finish is accepted once complete.
func (m *Machine) startEvolution(evo collection.Evolution, food domain.FoodItem) {
	m.sess.evolution = &Evolution{
		Step:   StepFlash,
		From:   evo.From,
		To:     evo.To,
		Food:   food,
		Record: evo.Record,
	}
	m.setPhase(PhaseEvolution)
	m.stepped(StepFlash)

	for _, ts := range evolutionSchedule(m.cfg.Timing) {
		m.after(ts.at, "evolution:"+string(ts.step), func(context.Context) {
			m.stepEvolution(ts.step)
		})
	}
}

func (m *Machine) stepEvolution(step EvolutionStep) {
	if m.phase != PhaseEvolution || m.sess == nil || m.sess.evolution == nil {
		return
	}
	m.sess.evolution.Step = step
	m.stepped(step)
}

func (m *Machine) stepped(step EvolutionStep) {
	m.logger.Debug("evolution step",
		slog.String("step", string(step)),
		slog.Uint64("generation", m.gen))
	m.record(events.TypeEvolutionStep, map[string]string{"step": string(step)})
}
