// Package ledger holds the single serialized writer that drains the event
// topic into the spreadsheet. One event is applied at a time, in receive
// order; the consumer loop is the only serialization the store gets.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/GenshikenITB/SideQuestGST/sidequest/event"
	"github.com/GenshikenITB/SideQuestGST/sidequest/sheetstore"
)

var (
	ErrQuestNotFound         = errors.New("quest row not found")
	ErrParticipationNotFound = errors.New("participation row not found")
)

type Writer struct {
	store sheetstore.Store
	now   func() time.Time
}

func NewWriter(store sheetstore.Store) *Writer {
	return &Writer{
		store: store,
		now:   time.Now,
	}
}

// Apply runs one decoded envelope against the store. Every failure mode is
// non-fatal: malformed payloads, missing rows and store errors are all
// reported back for logging, and the event counts as processed either way.
func (w *Writer) Apply(ctx context.Context, env event.Envelope) error {
	switch env.EventType {
	case event.TypeCreateQuest:
		var payload event.QuestPayload
		if err := env.Decode(&payload); err != nil {
			return err
		}
		return w.applyCreateQuest(ctx, payload)

	case event.TypeEditQuest:
		var payload event.EditPayload
		if err := env.Decode(&payload); err != nil {
			return err
		}
		return w.applyEditQuest(ctx, payload)

	case event.TypeDeleteQuest:
		var payload event.DeletePayload
		if err := env.Decode(&payload); err != nil {
			return err
		}
		return w.applyDeleteQuest(ctx, payload.QuestID)

	case event.TypeTakeQuest:
		var payload event.RegistrationPayload
		if err := env.Decode(&payload); err != nil {
			return err
		}
		return w.applyTakeQuest(ctx, payload)

	case event.TypeDropQuest:
		var payload event.RegistrationPayload
		if err := env.Decode(&payload); err != nil {
			return err
		}
		return w.setParticipationStatus(ctx, payload.QuestID, payload.UserID, sheetstore.StatusDropped)

	case event.TypeSubmitProof:
		var payload event.ProofPayload
		if err := env.Decode(&payload); err != nil {
			return err
		}
		return w.applySubmitProof(ctx, payload)

	case event.TypeRegisterCommunity:
		var payload event.NewCommunityPayload
		if err := env.Decode(&payload); err != nil {
			return err
		}
		return w.applyRegisterCommunity(ctx, payload)

	default:
		slog.Warn("Unknown event type, ignoring",
			slog.String("type", "bus"),
			slog.String("event", env.EventType))
		return nil
	}
}

// applyCreateQuest appends the quest row with a server-assigned created_at.
// There is no existence check; id uniqueness rests on producer-side UUIDs.
func (w *Writer) applyCreateQuest(ctx context.Context, payload event.QuestPayload) error {
	row := sheetstore.QuestRow{
		QuestID:       payload.QuestID,
		Title:         payload.Title,
		Category:      payload.Category,
		Slots:         payload.Slots,
		OrganizerName: payload.OrganizerName,
		Schedule:      payload.Schedule,
		Platform:      payload.Platform,
		Description:   payload.Description,
		Deadline:      payload.Deadline,
		CreatedAt:     w.now().UTC().Format(time.RFC3339),
	}
	return w.store.Append(ctx, sheetstore.RangeQuests, [][]string{row.Values()})
}

// applyEditQuest is a full read-modify-write: the whole row is read,
// exactly the payload's fields are overlaid, and the whole row is written
// back. A partial-column patch would let the API client null-clobber the
// columns it omits.
func (w *Writer) applyEditQuest(ctx context.Context, payload event.EditPayload) error {
	rows, err := w.store.Get(ctx, sheetstore.RangeQuests)
	if err != nil {
		return fmt.Errorf("edit quest read: %w", err)
	}

	index := findQuestRow(rows, payload.QuestID)
	if index < 0 {
		slog.Warn("EDIT_QUEST target missing, dropping event",
			slog.String("type", "bus"),
			slog.String("quest_id", payload.QuestID))
		return nil
	}

	row := make([]string, sheetstore.QuestColCount)
	copy(row, rows[index])

	row[sheetstore.QuestColTitle] = payload.Title
	row[sheetstore.QuestColSlots] = fmt.Sprintf("%d", payload.Slots)
	row[sheetstore.QuestColSchedule] = payload.Schedule
	row[sheetstore.QuestColPlatform] = payload.Platform
	row[sheetstore.QuestColDescription] = payload.Description
	row[sheetstore.QuestColDeadline] = payload.Deadline

	return w.store.Update(ctx, sheetstore.QuestRowRange(index), [][]string{row})
}

// applyDeleteQuest removes the quest and every participation row that
// references it in one atomic store batch. Participation indices are
// deleted in descending order: the store applies structural deletions with
// the row indices of submission time, so ascending order would shift and
// delete the wrong rows after the first one.
func (w *Writer) applyDeleteQuest(ctx context.Context, questID string) error {
	questRows, err := w.store.Get(ctx, sheetstore.RangeQuests)
	if err != nil {
		return fmt.Errorf("cascade delete quest read: %w", err)
	}

	questIndex := findQuestRow(questRows, questID)
	if questIndex < 0 {
		return fmt.Errorf("%w: %s", ErrQuestNotFound, questID)
	}

	partRows, err := w.store.Get(ctx, sheetstore.RangeParticipants)
	if err != nil {
		return fmt.Errorf("cascade delete participation read: %w", err)
	}

	var deletes []sheetstore.RowDelete
	for i := len(partRows) - 1; i >= 1; i-- {
		if len(partRows[i]) > 0 && partRows[i][sheetstore.PartColQuestID] == questID {
			deletes = append(deletes, sheetstore.RowDelete{
				Sheet: sheetstore.SheetParticipants,
				Row:   i,
			})
		}
	}
	deletes = append(deletes, sheetstore.RowDelete{
		Sheet: sheetstore.SheetQuests,
		Row:   questIndex,
	})

	if err := w.store.DeleteRows(ctx, deletes); err != nil {
		return fmt.Errorf("cascade delete batch: %w", err)
	}

	slog.Info("Cascading delete applied",
		slog.String("type", "bus"),
		slog.String("quest_id", questID),
		slog.Int("rows_removed", len(deletes)))
	return nil
}

// applyTakeQuest appends unconditionally; admission control already ran at
// the producer and duplicate deliveries are allowed to duplicate the row.
func (w *Writer) applyTakeQuest(ctx context.Context, payload event.RegistrationPayload) error {
	row := sheetstore.ParticipationRow{
		QuestID: payload.QuestID,
		UserID:  payload.UserID,
		UserTag: payload.UserTag,
		Status:  sheetstore.StatusOnProgress,
		TakenAt: w.now().UTC().Format(time.RFC3339),
	}
	return w.store.Append(ctx, sheetstore.RangeParticipants, [][]string{row.Values()})
}

func (w *Writer) applySubmitProof(ctx context.Context, payload event.ProofPayload) error {
	row := sheetstore.SubmissionRow{
		QuestID:     payload.QuestID,
		UserID:      payload.UserID,
		ProofURL:    payload.ProofURL,
		SubmittedAt: w.now().UTC().Format(time.RFC3339),
	}
	if err := w.store.Append(ctx, sheetstore.RangeSubmissions, [][]string{row.Values()}); err != nil {
		return fmt.Errorf("submission append: %w", err)
	}
	return w.setParticipationStatus(ctx, payload.QuestID, payload.UserID, sheetstore.StatusCompleted)
}

func (w *Writer) applyRegisterCommunity(ctx context.Context, payload event.NewCommunityPayload) error {
	row := sheetstore.CommunityRow{
		CommunityName: payload.CommunityName,
		LeaderID:      payload.LeaderID,
		RegisteredAt:  w.now().UTC().Format(time.RFC3339),
	}
	return w.store.Append(ctx, sheetstore.RangeCommunities, [][]string{row.Values()})
}

// setParticipationStatus overwrites the status cell of the last
// participation row matching (quest, user). Rows append in take order, so
// the last match is the current participation when a user dropped and
// retook. A missing row is a logged no-op, not an error: the referencing
// event may have raced a cascading delete.
func (w *Writer) setParticipationStatus(ctx context.Context, questID, userID, newStatus string) error {
	rows, err := w.store.Get(ctx, sheetstore.RangeParticipants)
	if err != nil {
		return fmt.Errorf("participation read: %w", err)
	}

	for i := len(rows) - 1; i >= 1; i-- {
		row := rows[i]
		if len(row) <= sheetstore.PartColUserID {
			continue
		}
		if row[sheetstore.PartColQuestID] == questID && row[sheetstore.PartColUserID] == userID {
			return w.store.Update(ctx, sheetstore.StatusCellRange(i), [][]string{{newStatus}})
		}
	}

	slog.Warn("Participation row missing, dropping status update",
		slog.String("type", "bus"),
		slog.String("quest_id", questID),
		slog.String("user_id", userID),
		slog.String("status", newStatus))
	return nil
}

func findQuestRow(rows [][]string, questID string) int {
	for i := 1; i < len(rows); i++ {
		if len(rows[i]) > 0 && rows[i][sheetstore.QuestColID] == questID {
			return i
		}
	}
	return -1
}
