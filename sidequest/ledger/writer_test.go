package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/GenshikenITB/SideQuestGST/sidequest/event"
	"github.com/GenshikenITB/SideQuestGST/sidequest/sheetstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWriter(t *testing.T) (*Writer, *sheetstore.Memory) {
	t.Helper()
	store := sheetstore.NewMemory()
	w := NewWriter(store)
	w.now = func() time.Time { return time.Date(2025, 11, 25, 12, 0, 0, 0, time.UTC) }
	return w, store
}

func mustApply(t *testing.T, w *Writer, eventType string, payload any) {
	t.Helper()
	data, err := event.Marshal(eventType, payload)
	require.NoError(t, err)
	env, err := event.Unmarshal(data)
	require.NoError(t, err)
	require.NoError(t, w.Apply(context.Background(), env))
}

func createQuest(t *testing.T, w *Writer, id, title string) {
	t.Helper()
	mustApply(t, w, event.TypeCreateQuest, event.QuestPayload{
		QuestID:       id,
		Title:         title,
		Category:      "Community",
		Slots:         5,
		OrganizerName: "KSICK",
		Schedule:      "2025-11-25T19:00:00+07:00",
		Platform:      "Voice Channel 1",
		Description:   "desc",
		Deadline:      "2025-11-25T21:00:00+07:00",
		CreatorID:     "1",
	})
}

func takeQuest(t *testing.T, w *Writer, questID, userID string) {
	t.Helper()
	mustApply(t, w, event.TypeTakeQuest, event.RegistrationPayload{
		QuestID: questID,
		UserID:  userID,
		UserTag: "user#" + userID,
	})
}

func TestApplyCreateQuest(t *testing.T) {
	w, store := newTestWriter(t)
	createQuest(t, w, "q-1", "First Quest")

	rows := store.Rows(sheetstore.SheetQuests)
	require.Len(t, rows, 2) // header + quest

	quest := sheetstore.ParseQuestRow(rows[1])
	assert.Equal(t, "q-1", quest.QuestID)
	assert.Equal(t, "First Quest", quest.Title)
	assert.Equal(t, 5, quest.Slots)
	assert.Equal(t, "2025-11-25T12:00:00Z", quest.CreatedAt)
}

func TestApplyEditQuestPreservesUntouchedColumns(t *testing.T) {
	w, store := newTestWriter(t)
	createQuest(t, w, "q-1", "First Quest")
	createQuest(t, w, "q-2", "Second Quest")

	before := store.Rows(sheetstore.SheetQuests)

	mustApply(t, w, event.TypeEditQuest, event.EditPayload{
		QuestID:     "q-1",
		Title:       "Renamed Quest",
		Description: "new desc",
		Slots:       9,
		Schedule:    "2025-11-26T19:00:00+07:00",
		Deadline:    "2025-11-26T21:00:00+07:00",
		Platform:    "Stage",
	})

	after := store.Rows(sheetstore.SheetQuests)
	edited := sheetstore.ParseQuestRow(after[1])

	assert.Equal(t, "Renamed Quest", edited.Title)
	assert.Equal(t, "new desc", edited.Description)
	assert.Equal(t, 9, edited.Slots)
	assert.Equal(t, "Stage", edited.Platform)

	// Columns not carried by the payload are byte-identical.
	assert.Equal(t, before[1][sheetstore.QuestColID], after[1][sheetstore.QuestColID])
	assert.Equal(t, before[1][sheetstore.QuestColCategory], after[1][sheetstore.QuestColCategory])
	assert.Equal(t, before[1][sheetstore.QuestColOrganizer], after[1][sheetstore.QuestColOrganizer])
	assert.Equal(t, before[1][sheetstore.QuestColCreatedAt], after[1][sheetstore.QuestColCreatedAt])

	// The other quest row is untouched entirely.
	assert.Equal(t, before[2], after[2])
}

func TestApplyEditQuestMissingTargetIsDropped(t *testing.T) {
	w, store := newTestWriter(t)
	createQuest(t, w, "q-1", "First Quest")
	before := store.Rows(sheetstore.SheetQuests)

	mustApply(t, w, event.TypeEditQuest, event.EditPayload{QuestID: "nope", Title: "x"})

	assert.Equal(t, before, store.Rows(sheetstore.SheetQuests))
}

func TestCascadingDelete(t *testing.T) {
	w, store := newTestWriter(t)
	createQuest(t, w, "q-1", "Doomed Quest")
	createQuest(t, w, "q-2", "Survivor Quest")
	takeQuest(t, w, "q-1", "10")
	takeQuest(t, w, "q-2", "11")
	takeQuest(t, w, "q-1", "12")
	takeQuest(t, w, "q-1", "13")

	mustApply(t, w, event.TypeDeleteQuest, event.DeletePayload{QuestID: "q-1"})

	questRows := store.Rows(sheetstore.SheetQuests)
	require.Len(t, questRows, 2)
	assert.Equal(t, "q-2", questRows[1][sheetstore.QuestColID])

	// Exactly the three q-1 participations are gone; the q-2 row survives
	// at its relative position.
	partRows := store.Rows(sheetstore.SheetParticipants)
	require.Len(t, partRows, 2)
	part := sheetstore.ParseParticipationRow(partRows[1])
	assert.Equal(t, "q-2", part.QuestID)
	assert.Equal(t, "11", part.UserID)
}

func TestCascadingDeleteUnknownQuestHasNoEffect(t *testing.T) {
	w, store := newTestWriter(t)
	createQuest(t, w, "q-1", "First Quest")
	takeQuest(t, w, "q-1", "10")

	data, err := event.Marshal(event.TypeDeleteQuest, event.DeletePayload{QuestID: "ghost"})
	require.NoError(t, err)
	env, err := event.Unmarshal(data)
	require.NoError(t, err)

	err = w.Apply(context.Background(), env)
	assert.ErrorIs(t, err, ErrQuestNotFound)
	assert.Len(t, store.Rows(sheetstore.SheetQuests), 2)
	assert.Len(t, store.Rows(sheetstore.SheetParticipants), 2)
}

func TestDuplicateTakeAppendsTwoRows(t *testing.T) {
	w, store := newTestWriter(t)
	createQuest(t, w, "q-1", "First Quest")

	// At-least-once delivery: the same event applied twice appends twice.
	// The append path has no dedupe; this is the documented behavior.
	takeQuest(t, w, "q-1", "10")
	takeQuest(t, w, "q-1", "10")

	partRows := store.Rows(sheetstore.SheetParticipants)
	assert.Len(t, partRows, 3)
}

func TestApplyDropQuest(t *testing.T) {
	w, store := newTestWriter(t)
	createQuest(t, w, "q-1", "First Quest")
	takeQuest(t, w, "q-1", "10")
	takeQuest(t, w, "q-1", "11")

	mustApply(t, w, event.TypeDropQuest, event.RegistrationPayload{QuestID: "q-1", UserID: "10"})

	partRows := store.Rows(sheetstore.SheetParticipants)
	assert.Equal(t, sheetstore.StatusDropped, partRows[1][sheetstore.PartColStatus])
	assert.Equal(t, sheetstore.StatusOnProgress, partRows[2][sheetstore.PartColStatus])
}

func TestStatusUpdateTargetsLatestParticipation(t *testing.T) {
	w, store := newTestWriter(t)
	createQuest(t, w, "q-1", "First Quest")

	// Take, drop, retake: two rows for the same user, the older one DROPPED.
	takeQuest(t, w, "q-1", "10")
	mustApply(t, w, event.TypeDropQuest, event.RegistrationPayload{QuestID: "q-1", UserID: "10"})
	takeQuest(t, w, "q-1", "10")

	mustApply(t, w, event.TypeSubmitProof, event.ProofPayload{
		QuestID:  "q-1",
		UserID:   "10",
		ProofURL: "https://cdn.example/proof.png",
	})

	partRows := store.Rows(sheetstore.SheetParticipants)
	require.Len(t, partRows, 3)
	assert.Equal(t, sheetstore.StatusDropped, partRows[1][sheetstore.PartColStatus])
	assert.Equal(t, sheetstore.StatusCompleted, partRows[2][sheetstore.PartColStatus])
}

func TestApplyDropQuestMissingRowIsNoOp(t *testing.T) {
	w, store := newTestWriter(t)
	createQuest(t, w, "q-1", "First Quest")

	mustApply(t, w, event.TypeDropQuest, event.RegistrationPayload{QuestID: "q-1", UserID: "404"})

	assert.Len(t, store.Rows(sheetstore.SheetParticipants), 1)
}

func TestApplySubmitProof(t *testing.T) {
	w, store := newTestWriter(t)
	createQuest(t, w, "q-1", "First Quest")
	takeQuest(t, w, "q-1", "10")

	mustApply(t, w, event.TypeSubmitProof, event.ProofPayload{
		QuestID:  "q-1",
		UserID:   "10",
		ProofURL: "https://cdn.example/proof.png",
	})

	subRows := store.Rows(sheetstore.SheetSubmissions)
	require.Len(t, subRows, 2)
	assert.Equal(t, "https://cdn.example/proof.png", subRows[1][2])

	partRows := store.Rows(sheetstore.SheetParticipants)
	assert.Equal(t, sheetstore.StatusCompleted, partRows[1][sheetstore.PartColStatus])
}

func TestApplyRegisterCommunity(t *testing.T) {
	w, store := newTestWriter(t)

	mustApply(t, w, event.TypeRegisterCommunity, event.NewCommunityPayload{
		CommunityName: "KSICK",
		LeaderID:      "99",
	})

	rows := store.Rows(sheetstore.SheetCommunities)
	require.Len(t, rows, 2)
	community := sheetstore.ParseCommunityRow(rows[1])
	assert.Equal(t, "KSICK", community.CommunityName)
	assert.Equal(t, "99", community.LeaderID)
	assert.Equal(t, "2025-11-25T12:00:00Z", community.RegisteredAt)
}

func TestApplyUnknownEventTypeIsIgnored(t *testing.T) {
	w, _ := newTestWriter(t)
	err := w.Apply(context.Background(), event.Envelope{EventType: "NOT_A_THING", Payload: "{}"})
	assert.NoError(t, err)
}

func TestApplyMalformedPayloadIsDropped(t *testing.T) {
	w, store := newTestWriter(t)
	err := w.Apply(context.Background(), event.Envelope{EventType: event.TypeCreateQuest, Payload: "{broken"})
	assert.Error(t, err)
	assert.Len(t, store.Rows(sheetstore.SheetQuests), 1)
}

// failingStore injects store-call failures to exercise the logged-and-
// dropped contract: the writer reports the error, nothing retries, and the
// caller advances anyway.
type failingStore struct {
	sheetstore.Store
	failAppend bool
	failGet    bool
}

var errStoreDown = errors.New("store unavailable")

func (f *failingStore) Append(ctx context.Context, rng string, rows [][]string) error {
	if f.failAppend {
		return errStoreDown
	}
	return f.Store.Append(ctx, rng, rows)
}

func (f *failingStore) Get(ctx context.Context, rng string) ([][]string, error) {
	if f.failGet {
		return nil, errStoreDown
	}
	return f.Store.Get(ctx, rng)
}

func TestApplyStoreFailureSurfacesError(t *testing.T) {
	mem := sheetstore.NewMemory()
	w := NewWriter(&failingStore{Store: mem, failAppend: true})

	data, err := event.Marshal(event.TypeTakeQuest, event.RegistrationPayload{QuestID: "q-1", UserID: "10"})
	require.NoError(t, err)
	env, err := event.Unmarshal(data)
	require.NoError(t, err)

	err = w.Apply(context.Background(), env)
	assert.ErrorIs(t, err, errStoreDown)
	// The mutation is lost, the store untouched: no retry, no quarantine.
	assert.Len(t, mem.Rows(sheetstore.SheetParticipants), 1)
}

func TestApplyStoreReadFailureDuringEdit(t *testing.T) {
	mem := sheetstore.NewMemory()
	w := NewWriter(&failingStore{Store: mem, failGet: true})

	data, err := event.Marshal(event.TypeEditQuest, event.EditPayload{QuestID: "q-1"})
	require.NoError(t, err)
	env, err := event.Unmarshal(data)
	require.NoError(t, err)

	assert.ErrorIs(t, w.Apply(context.Background(), env), errStoreDown)
}
