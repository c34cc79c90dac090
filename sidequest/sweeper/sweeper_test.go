package sweeper

import (
	"context"
	"testing"
	"time"

	"github.com/GenshikenITB/SideQuestGST/sidequest/sheetstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedQuest(t *testing.T, store *sheetstore.Memory, id, deadline string) {
	t.Helper()
	row := sheetstore.QuestRow{
		QuestID:  id,
		Title:    "quest " + id,
		Slots:    5,
		Schedule: "2025-11-25T19:00:00+07:00",
		Deadline: deadline,
	}
	require.NoError(t, store.Append(context.Background(), sheetstore.RangeQuests, [][]string{row.Values()}))
}

func seedParticipation(t *testing.T, store *sheetstore.Memory, questID, userID, pstatus string) {
	t.Helper()
	row := sheetstore.ParticipationRow{
		QuestID: questID,
		UserID:  userID,
		UserTag: "user#" + userID,
		Status:  pstatus,
		TakenAt: "2025-11-25T18:00:00+07:00",
	}
	require.NoError(t, store.Append(context.Background(), sheetstore.RangeParticipants, [][]string{row.Values()}))
}

func TestSweepFailsExpiredParticipations(t *testing.T) {
	store := sheetstore.NewMemory()
	seedQuest(t, store, "q-past", "2025-11-25T21:00:00+07:00")
	seedQuest(t, store, "q-future", "2025-12-25T21:00:00+07:00")
	seedParticipation(t, store, "q-past", "10", sheetstore.StatusOnProgress)
	seedParticipation(t, store, "q-future", "11", sheetstore.StatusOnProgress)
	seedParticipation(t, store, "q-past", "12", sheetstore.StatusCompleted)

	s := New(store)
	s.now = func() time.Time { return time.Date(2025, 11, 26, 0, 0, 0, 0, time.UTC) }

	require.NoError(t, s.Sweep(context.Background()))

	rows := store.Rows(sheetstore.SheetParticipants)
	assert.Equal(t, sheetstore.StatusFailed, rows[1][sheetstore.PartColStatus])
	// Still within deadline: untouched.
	assert.Equal(t, sheetstore.StatusOnProgress, rows[2][sheetstore.PartColStatus])
	// Not ON_PROGRESS: untouched even though the deadline passed.
	assert.Equal(t, sheetstore.StatusCompleted, rows[3][sheetstore.PartColStatus])
}

func TestSweepDeadlineBoundaryIsExclusive(t *testing.T) {
	store := sheetstore.NewMemory()
	deadline := time.Date(2025, 11, 25, 14, 0, 0, 0, time.UTC)
	seedQuest(t, store, "q-1", deadline.Format(time.RFC3339))
	seedParticipation(t, store, "q-1", "10", sheetstore.StatusOnProgress)

	s := New(store)
	s.now = func() time.Time { return deadline }

	require.NoError(t, s.Sweep(context.Background()))

	rows := store.Rows(sheetstore.SheetParticipants)
	// "strictly in the past": now == deadline does not fail the row.
	assert.Equal(t, sheetstore.StatusOnProgress, rows[1][sheetstore.PartColStatus])
}

func TestSweepQuestWithoutDeadlineIsSkipped(t *testing.T) {
	store := sheetstore.NewMemory()
	seedQuest(t, store, "q-1", "")
	seedParticipation(t, store, "q-1", "10", sheetstore.StatusOnProgress)

	s := New(store)
	s.now = func() time.Time { return time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC) }

	require.NoError(t, s.Sweep(context.Background()))

	rows := store.Rows(sheetstore.SheetParticipants)
	assert.Equal(t, sheetstore.StatusOnProgress, rows[1][sheetstore.PartColStatus])
}

func TestSweepOrphanParticipationIsSkipped(t *testing.T) {
	store := sheetstore.NewMemory()
	seedParticipation(t, store, "ghost", "10", sheetstore.StatusOnProgress)

	s := New(store)
	s.now = func() time.Time { return time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC) }

	require.NoError(t, s.Sweep(context.Background()))

	rows := store.Rows(sheetstore.SheetParticipants)
	assert.Equal(t, sheetstore.StatusOnProgress, rows[1][sheetstore.PartColStatus])
}
