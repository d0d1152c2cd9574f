package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/phrazzld/kanji-trainer/internal/api"
	"github.com/phrazzld/kanji-trainer/internal/config"
	"github.com/phrazzld/kanji-trainer/internal/content"
	"github.com/phrazzld/kanji-trainer/internal/domain/progression"
	"github.com/phrazzld/kanji-trainer/internal/events"
	"github.com/phrazzld/kanji-trainer/internal/random"
	"github.com/phrazzld/kanji-trainer/internal/schedule"
	"github.com/phrazzld/kanji-trainer/internal/service/collection"
	"github.com/phrazzld/kanji-trainer/internal/service/feeding"
	"github.com/phrazzld/kanji-trainer/internal/service/history"
	"github.com/phrazzld/kanji-trainer/internal/service/inventory"
	"github.com/phrazzld/kanji-trainer/internal/service/rewards"
	"github.com/phrazzld/kanji-trainer/internal/service/settings"
	"github.com/phrazzld/kanji-trainer/internal/service/training"
	"github.com/phrazzld/kanji-trainer/internal/store"
)

// recentEvents is how many domain events GET /api/events can return.
const recentEvents = 500

// application holds the shared dependencies of the serve command and
// releases them on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	slots    *store.Slots
	machine  *training.Machine
	recorder *events.Recorder
	router   http.Handler
}

// newApplication opens storage and wires every service behind the router.
// sched is the wall clock in production.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	sched schedule.Scheduler,
) (*application, error) {
	rng, err := random.New(cfg.Random.Seed)
	if err != nil {
		return nil, fmt.Errorf("failed to seed random source: %w", err)
	}
	logger.Debug("random source seeded", slog.Int64("seed", rng.Seed()))

	c, err := content.Load(rng)
	if err != nil {
		return nil, fmt.Errorf("failed to load content: %w", err)
	}

	backend, err := openBackend(ctx, cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", cfg.Storage.Engine, err)
	}
	slots := store.NewSlots(backend, store.Defaults{
		ActiveQuestionIDs: c.Bank.IDs(),
		Rewards:           cfg.Rewards.Seed,
	}, logger)

	migrated, err := slots.MigrateCollected(ctx)
	if err != nil {
		_ = slots.Close()
		return nil, fmt.Errorf("failed to migrate collected characters: %w", err)
	}
	if migrated > 0 {
		logger.Info("collected characters migrated", slog.Int("records", migrated))
	}

	sessionCfg, err := training.NewConfig(cfg.Session)
	if err != nil {
		_ = slots.Close()
		return nil, fmt.Errorf("invalid session config: %w", err)
	}

	recorder := events.NewRecorder(recentEvents)
	emitter := events.NewInMemoryEventEmitter(logger)
	emitter.RegisterHandler(events.NewLoggingHandler(logger))
	emitter.RegisterHandler(recorder)

	prog := progression.NewServiceWithParams(progression.NewParams(cfg.Session.MilestoneInterval))
	ledger := collection.NewLedger(slots, c.Roster, prog, sched, logger)
	inv := inventory.NewManager(slots, logger)
	rw := rewards.NewManager(slots, rng, logger)
	hist := history.NewLog(slots, sched, logger)
	active := settings.NewService(slots, c.Bank, logger)
	feed := feeding.NewService(ledger, inv, c.Roster, c.Foods, c.Messages, emitter, logger)

	machine := training.New(training.Deps{
		Questions:   c.Bank,
		Active:      active,
		Ledger:      ledger,
		Roster:      c.Roster,
		Foods:       c.Foods,
		Inventory:   inv,
		Rewards:     rw,
		History:     hist,
		Messages:    c.Messages,
		Store:       slots,
		Progression: prog,
		Scheduler:   sched,
		Emitter:     emitter,
		Logger:      logger,
	}, sessionCfg)

	router := api.NewRouter(api.Handlers{
		Session:    api.NewSessionHandler(machine, logger),
		Collection: api.NewCollectionHandler(ledger, hist, inv, feed, c.Foods, logger),
		Settings:   api.NewSettingsHandler(active, logger),
		Rewards:    api.NewRewardHandler(rw, logger),
		Events:     api.NewEventHandler(recorder),
	}, logger)

	logger.Info("application initialized",
		slog.String("storage_engine", cfg.Storage.Engine),
		slog.String("phase_policy", string(sessionCfg.Policy)),
		slog.Int("question_count", sessionCfg.QuestionCount),
		slog.Int("lineages", c.Roster.LineageCount()))

	return &application{
		config:   cfg,
		logger:   logger,
		slots:    slots,
		machine:  machine,
		recorder: recorder,
		router:   router,
	}, nil
}

// cleanup closes storage.
func (app *application) cleanup() {
	if err := app.slots.Close(); err != nil {
		app.logger.Error("failed to close storage", slog.String("error", err.Error()))
	}
}
