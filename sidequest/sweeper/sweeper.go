// Package sweeper force-fails participations whose quest deadline passed.
// It scans the store directly, independent of the bus and the cache.
package sweeper

import (
	"context"
	"log/slog"
	"time"

	"github.com/GenshikenITB/SideQuestGST/sidequest/sheetstore"
	"github.com/GenshikenITB/SideQuestGST/sidequest/utils"
)

type Sweeper struct {
	store sheetstore.Store
	now   func() time.Time
}

func New(store sheetstore.Store) *Sweeper {
	return &Sweeper{
		store: store,
		now:   time.Now,
	}
}

// Run sweeps on the given interval until the context is canceled. One
// initial sweep runs immediately so restarts don't wait a full interval.
func (s *Sweeper) Run(ctx context.Context, interval time.Duration) {
	if err := s.Sweep(ctx); err != nil {
		slog.Error("Deadline sweep failed", slog.Any("error", err))
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.Sweep(ctx); err != nil {
				slog.Error("Deadline sweep failed", slog.Any("error", err))
			}
		case <-ctx.Done():
			return
		}
	}
}

// Sweep reads both tables fully and flips every ON_PROGRESS participation
// whose quest deadline is strictly in the past to FAILED. Rows are
// processed independently; a failed update is logged and the sweep
// continues.
func (s *Sweeper) Sweep(ctx context.Context) error {
	questRows, err := s.store.Get(ctx, sheetstore.RangeQuests)
	if err != nil {
		return err
	}
	partRows, err := s.store.Get(ctx, sheetstore.RangeParticipants)
	if err != nil {
		return err
	}

	deadlines := make(map[string]int64, len(questRows))
	for i := 1; i < len(questRows); i++ {
		quest := sheetstore.ParseQuestRow(questRows[i])
		if deadline := utils.ParseEpoch(quest.Deadline); deadline > 0 {
			deadlines[quest.QuestID] = deadline
		}
	}

	now := s.now().Unix()
	failed := 0
	for i := 1; i < len(partRows); i++ {
		part := sheetstore.ParseParticipationRow(partRows[i])
		if part.Status != sheetstore.StatusOnProgress {
			continue
		}
		deadline, ok := deadlines[part.QuestID]
		if !ok || now <= deadline {
			continue
		}

		if err := s.store.Update(ctx, sheetstore.StatusCellRange(i), [][]string{{sheetstore.StatusFailed}}); err != nil {
			slog.Error("Failed to mark participation FAILED",
				slog.String("quest_id", part.QuestID),
				slog.String("user_id", part.UserID),
				slog.Any("error", err))
			continue
		}
		failed++
	}

	if failed > 0 {
		slog.Info("Deadline sweep finished",
			slog.Int("expired", failed))
	}
	return nil
}
