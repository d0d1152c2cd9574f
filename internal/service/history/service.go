// Package history records answered questions and groups them for the
// history and calendar views.
package history

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/kanji-trainer/internal/domain"
	"github.com/phrazzld/kanji-trainer/internal/platform/logger"
)

// Repository is the persisted history slot.
type Repository interface {
	History(ctx context.Context) ([]domain.HistoryEntry, error)
	UpdateHistory(
		ctx context.Context,
		fn func([]domain.HistoryEntry) ([]domain.HistoryEntry, error),
	) ([]domain.HistoryEntry, error)
}

// Clock supplies entry dates.
type Clock interface {
	Now() time.Time
}

// Day is every answer recorded on one date.
type Day struct {
	Date         string                `json:"date"`
	Entries      []domain.HistoryEntry `json:"entries"`
	CorrectCount int                   `json:"correct_count"`
	TotalCount   int                   `json:"total_count"`
}

// Log is the answer history.
type Log interface {
	// Append records an answer as the newest entry. The log keeps at most
	// domain.MaxHistoryEntries entries.
	Append(ctx context.Context, questionID string, correct bool) (domain.HistoryEntry, error)

	// List returns every entry, most recent first.
	List(ctx context.Context) ([]domain.HistoryEntry, error)

	// GroupByDate buckets the entries by date, most recent date first.
	GroupByDate(ctx context.Context) ([]Day, error)
}

var _ Log = (*historyLog)(nil)

type historyLog struct {
	repo   Repository
	clock  Clock
	logger *slog.Logger
}

// NewLog creates a Log over the history slot.
func NewLog(repo Repository, clock Clock, logger *slog.Logger) Log {
	if repo == nil {
		panic("repo cannot be nil")
	}
	if clock == nil {
		panic("clock cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &historyLog{
		repo:   repo,
		clock:  clock,
		logger: logger.With(slog.String("component", "history")),
	}
}

func (h *historyLog) Append(ctx context.Context, questionID string, correct bool) (domain.HistoryEntry, error) {
	entry := domain.NewHistoryEntry(questionID, correct, h.clock.Now())
	all, err := h.repo.UpdateHistory(ctx, func(current []domain.HistoryEntry) ([]domain.HistoryEntry, error) {
		return domain.PrependHistory(current, entry), nil
	})
	if err != nil {
		return domain.HistoryEntry{}, fmt.Errorf("failed to append history: %w", err)
	}
	logger.FromContextOrDefault(ctx, h.logger).Debug("answer recorded",
		slog.String("question_id", questionID),
		slog.String("outcome", string(entry.Outcome)),
		slog.Int("entries", len(all)))
	return entry, nil
}

func (h *historyLog) List(ctx context.Context) ([]domain.HistoryEntry, error) {
	entries, err := h.repo.History(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	return entries, nil
}

func (h *historyLog) GroupByDate(ctx context.Context) ([]Day, error) {
	entries, err := h.List(ctx)
	if err != nil {
		return nil, err
	}
	return groupByDate(entries), nil
}

// groupByDate buckets entries by date in first-seen order.
func groupByDate(entries []domain.HistoryEntry) []Day {
	index := make(map[string]int)
	var days []Day
	for _, e := range entries {
		i, ok := index[e.Date]
		if !ok {
			i = len(days)
			index[e.Date] = i
			days = append(days, Day{Date: e.Date})
		}
		d := &days[i]
		d.Entries = append(d.Entries, e)
		d.TotalCount++
		if e.Outcome == domain.OutcomeCorrect {
			d.CorrectCount++
		}
	}
	if days == nil {
		days = []Day{}
	}
	return days
}
