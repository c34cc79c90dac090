package producer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/GenshikenITB/SideQuestGST/sidequest/event"
	"github.com/GenshikenITB/SideQuestGST/sidequest/qcache"
	"github.com/GenshikenITB/SideQuestGST/sidequest/sheetstore"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBus struct {
	messages []kafka.Message
	err      error
}

func (f *fakeBus) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, msgs...)
	return nil
}

type stubSource struct {
	snap *qcache.Snapshot
	err  error
}

func (s *stubSource) Snapshot(context.Context) (*qcache.Snapshot, error) {
	return s.snap, s.err
}

func questRow(id, title string, slots int, schedule, deadline string) []string {
	return sheetstore.QuestRow{
		QuestID:  id,
		Title:    title,
		Slots:    slots,
		Schedule: schedule,
		Deadline: deadline,
	}.Values()
}

func partRow(questID, userID, pstatus string) []string {
	return sheetstore.ParticipationRow{
		QuestID: questID,
		UserID:  userID,
		UserTag: "user#" + userID,
		Status:  pstatus,
	}.Values()
}

var header = []string{"h"}

func newTestProducer(snap *qcache.Snapshot) (*Producer, *fakeBus) {
	bus := &fakeBus{}
	p := New(bus, &stubSource{snap: snap})
	// Fixed clock: 2025-11-25 12:00 UTC.
	p.now = func() time.Time { return time.Date(2025, 11, 25, 12, 0, 0, 0, time.UTC) }
	return p, bus
}

// openSnapshot has one upcoming quest with room for two more takers.
func openSnapshot() *qcache.Snapshot {
	return &qcache.Snapshot{
		QuestRows: [][]string{
			header,
			questRow("q-1", "Open Quest", 3, "2025-11-25T19:00:00+07:00", "2025-11-25T21:00:00+07:00"),
		},
		ParticipantRows: [][]string{
			header,
			partRow("q-1", "50", sheetstore.StatusOnProgress),
		},
		CommunityRows: [][]string{header},
	}
}

func decodeLast(t *testing.T, bus *fakeBus) event.Envelope {
	t.Helper()
	require.NotEmpty(t, bus.messages)
	env, err := event.Unmarshal(bus.messages[len(bus.messages)-1].Value)
	require.NoError(t, err)
	return env
}

func TestCreateQuestAssignsID(t *testing.T) {
	p, bus := newTestProducer(openSnapshot())

	payload, err := p.CreateQuest(context.Background(), CreateQuestInput{
		Title:         "New Quest",
		Category:      "CreativeArts",
		Slots:         5,
		OrganizerName: "Illust",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, payload.QuestID)

	env := decodeLast(t, bus)
	assert.Equal(t, event.TypeCreateQuest, env.EventType)
	assert.Equal(t, event.TypeCreateQuest, string(bus.messages[0].Key))

	var decoded event.QuestPayload
	require.NoError(t, env.Decode(&decoded))
	assert.Equal(t, payload.QuestID, decoded.QuestID)
}

func TestCreateQuestFromWebUsesSentinelKey(t *testing.T) {
	p, bus := newTestProducer(openSnapshot())

	_, err := p.CreateQuestFromWeb(context.Background(), "Web Quest", "from the form")
	require.NoError(t, err)

	assert.Equal(t, WebSubmissionKey, string(bus.messages[0].Key))
	env := decodeLast(t, bus)
	assert.Equal(t, event.TypeCreateQuest, env.EventType)
}

func TestTakeQuestPublishes(t *testing.T) {
	p, bus := newTestProducer(openSnapshot())

	result, err := p.TakeQuest(context.Background(), "q-1", "60", "user#60")
	require.NoError(t, err)
	assert.Equal(t, "Open Quest", result.Quest.Title)
	assert.Equal(t, 2, result.Active)

	env := decodeLast(t, bus)
	assert.Equal(t, event.TypeTakeQuest, env.EventType)
}

func TestTakeQuestRejectsDuplicate(t *testing.T) {
	p, bus := newTestProducer(openSnapshot())

	_, err := p.TakeQuest(context.Background(), "q-1", "50", "user#50")
	assert.ErrorIs(t, err, ErrAlreadyTaken)
	assert.Empty(t, bus.messages)
}

func TestTakeQuestAllowsRetakeAfterDrop(t *testing.T) {
	snap := openSnapshot()
	snap.ParticipantRows[1] = partRow("q-1", "50", sheetstore.StatusDropped)
	p, bus := newTestProducer(snap)

	_, err := p.TakeQuest(context.Background(), "q-1", "50", "user#50")
	require.NoError(t, err)
	assert.Len(t, bus.messages, 1)
}

func TestTakeQuestRejectsFullQuest(t *testing.T) {
	snap := openSnapshot()
	snap.ParticipantRows = append(snap.ParticipantRows,
		partRow("q-1", "51", sheetstore.StatusOnProgress),
		partRow("q-1", "52", sheetstore.StatusCompleted),
	)
	p, bus := newTestProducer(snap)

	_, err := p.TakeQuest(context.Background(), "q-1", "60", "user#60")
	assert.ErrorIs(t, err, ErrQuestFull)

	var admission *AdmissionError
	require.ErrorAs(t, err, &admission)
	assert.Equal(t, 3, admission.Active)
	assert.Empty(t, bus.messages)
}

func TestTakeQuestRejectsStartedAndEnded(t *testing.T) {
	tests := []struct {
		name     string
		schedule string
		deadline string
		want     error
	}{
		{
			name:     "already started",
			schedule: "2025-11-25T10:00:00Z",
			deadline: "2025-11-25T23:00:00Z",
			want:     ErrQuestStarted,
		},
		{
			name:     "already ended",
			schedule: "2025-11-25T08:00:00Z",
			deadline: "2025-11-25T09:00:00Z",
			want:     ErrQuestEnded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := &qcache.Snapshot{
				QuestRows: [][]string{
					header,
					questRow("q-1", "Closed Quest", 5, tt.schedule, tt.deadline),
				},
				ParticipantRows: [][]string{header},
				CommunityRows:   [][]string{header},
			}
			p, bus := newTestProducer(snap)

			_, err := p.TakeQuest(context.Background(), "q-1", "60", "user#60")
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, bus.messages)
		})
	}
}

func TestTakeQuestUnknownQuest(t *testing.T) {
	p, bus := newTestProducer(openSnapshot())

	_, err := p.TakeQuest(context.Background(), "ghost", "60", "user#60")
	assert.ErrorIs(t, err, ErrQuestNotFound)
	assert.Empty(t, bus.messages)
}

func TestDropQuestRequiresOnProgress(t *testing.T) {
	snap := openSnapshot()
	snap.ParticipantRows[1] = partRow("q-1", "50", sheetstore.StatusCompleted)
	p, bus := newTestProducer(snap)

	_, err := p.DropQuest(context.Background(), "q-1", "50", "user#50")
	assert.ErrorIs(t, err, ErrNotOnProgress)
	assert.Empty(t, bus.messages)
}

func TestDropQuestRejectsStartedQuest(t *testing.T) {
	snap := &qcache.Snapshot{
		QuestRows: [][]string{
			header,
			questRow("q-1", "Started Quest", 3, "2025-11-25T10:00:00Z", "2025-11-25T23:00:00Z"),
		},
		ParticipantRows: [][]string{header, partRow("q-1", "50", sheetstore.StatusOnProgress)},
		CommunityRows:   [][]string{header},
	}
	p, bus := newTestProducer(snap)

	_, err := p.DropQuest(context.Background(), "q-1", "50", "user#50")
	assert.ErrorIs(t, err, ErrQuestStarted)
	assert.Empty(t, bus.messages)
}

func TestDropQuestPublishes(t *testing.T) {
	p, bus := newTestProducer(openSnapshot())

	quest, err := p.DropQuest(context.Background(), "q-1", "50", "user#50")
	require.NoError(t, err)
	assert.Equal(t, "Open Quest", quest.Title)

	env := decodeLast(t, bus)
	assert.Equal(t, event.TypeDropQuest, env.EventType)
}

func TestRegisterCommunityRejectsNormalizedDuplicate(t *testing.T) {
	snap := openSnapshot()
	snap.CommunityRows = append(snap.CommunityRows,
		sheetstore.CommunityRow{CommunityName: "KSICK", LeaderID: "1"}.Values())
	p, bus := newTestProducer(snap)

	err := p.RegisterCommunity(context.Background(), "  ksick ", "2")
	assert.ErrorIs(t, err, ErrCommunityExists)
	assert.Empty(t, bus.messages)
}

func TestRegisterCommunityPublishes(t *testing.T) {
	p, bus := newTestProducer(openSnapshot())

	require.NoError(t, p.RegisterCommunity(context.Background(), "New Circle", "2"))
	env := decodeLast(t, bus)
	assert.Equal(t, event.TypeRegisterCommunity, env.EventType)
}

func TestPublishFailureSurfaces(t *testing.T) {
	bus := &fakeBus{err: errors.New("broker down")}
	p := New(bus, &stubSource{snap: openSnapshot()})

	err := p.SubmitProof(context.Background(), "q-1", "50", "https://cdn.example/p.png")
	assert.Error(t, err)
}

func TestDeleteQuestChecksExistence(t *testing.T) {
	p, bus := newTestProducer(openSnapshot())

	assert.ErrorIs(t, p.DeleteQuest(context.Background(), "ghost"), ErrQuestNotFound)
	assert.Empty(t, bus.messages)

	require.NoError(t, p.DeleteQuest(context.Background(), "q-1"))
	env := decodeLast(t, bus)
	assert.Equal(t, event.TypeDeleteQuest, env.EventType)
}
