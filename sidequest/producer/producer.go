// Package producer turns validated user intents into bus events. Admission
// checks run here against the cached snapshot, which can be up to a minute
// stale; they are advisory UX guards, not correctness guarantees, and the
// ledger writer does not re-validate them.
package producer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/GenshikenITB/SideQuestGST/sidequest/event"
	"github.com/GenshikenITB/SideQuestGST/sidequest/qcache"
	"github.com/GenshikenITB/SideQuestGST/sidequest/sheetstore"
	"github.com/GenshikenITB/SideQuestGST/sidequest/status"
	"github.com/GenshikenITB/SideQuestGST/sidequest/utils"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// WebSubmissionKey is the sentinel bus key for quests submitted through
// the HTTP endpoint instead of a slash command.
const WebSubmissionKey = "WEB_SUBMISSION"

const publishTimeout = 5 * time.Second

// Bus is the producing side of the event topic. *kafka.Writer satisfies it.
type Bus interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// SnapshotSource provides the cached table snapshot for admission checks.
type SnapshotSource interface {
	Snapshot(ctx context.Context) (*qcache.Snapshot, error)
}

var (
	ErrQuestNotFound   = errors.New("quest not found")
	ErrAlreadyTaken    = errors.New("quest already taken")
	ErrQuestFull       = errors.New("quest is full")
	ErrQuestEnded      = errors.New("quest has ended")
	ErrQuestStarted    = errors.New("quest has already started")
	ErrNotOnProgress   = errors.New("no participation in progress")
	ErrCommunityExists = errors.New("community already registered")
)

// AdmissionError carries the quest context of a rejected intent so the
// command surface can build a useful reply.
type AdmissionError struct {
	Reason error
	Quest  sheetstore.QuestRow
	Active int
}

func (e *AdmissionError) Error() string {
	if e.Quest.QuestID != "" {
		return fmt.Sprintf("%s: %s", e.Reason, e.Quest.QuestID)
	}
	return e.Reason.Error()
}

func (e *AdmissionError) Unwrap() error { return e.Reason }

type Producer struct {
	bus       Bus
	snapshots SnapshotSource
	now       func() time.Time
}

func New(bus Bus, snapshots SnapshotSource) *Producer {
	return &Producer{
		bus:       bus,
		snapshots: snapshots,
		now:       time.Now,
	}
}

// publish wraps the payload in an envelope and writes it with a bounded
// timeout. The bus key is the event type, not the quest id, so the bus
// gives no per-quest ordering; the single consumer group is the only
// serialization in the pipeline.
func (p *Producer) publish(ctx context.Context, eventType, busKey string, payload any) error {
	data, err := event.Marshal(eventType, payload)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := p.bus.WriteMessages(ctx, kafka.Message{
		Key:   []byte(busKey),
		Value: data,
	}); err != nil {
		return fmt.Errorf("failed to publish %s: %w", eventType, err)
	}
	return nil
}

type CreateQuestInput struct {
	Title         string
	Description   string
	Category      string
	Slots         int
	OrganizerName string
	Schedule      string
	Platform      string
	Deadline      string
	CreatorID     string
}

// CreateQuest assigns a fresh quest id and publishes the creation event.
// The id is generated here so it is stable before the ledger ever sees the
// quest; uniqueness rests on the UUID, not on the store.
func (p *Producer) CreateQuest(ctx context.Context, in CreateQuestInput) (event.QuestPayload, error) {
	payload := event.QuestPayload{
		QuestID:       uuid.NewString(),
		Title:         in.Title,
		Description:   in.Description,
		Category:      in.Category,
		Slots:         in.Slots,
		OrganizerName: in.OrganizerName,
		Schedule:      in.Schedule,
		Platform:      in.Platform,
		Deadline:      in.Deadline,
		CreatorID:     in.CreatorID,
	}
	if err := p.publish(ctx, event.TypeCreateQuest, event.TypeCreateQuest, payload); err != nil {
		return event.QuestPayload{}, err
	}
	return payload, nil
}

// CreateQuestFromWeb publishes a CREATE_QUEST-shaped event built from the
// HTTP submission form, keyed with the web sentinel.
func (p *Producer) CreateQuestFromWeb(ctx context.Context, title, description string) (event.QuestPayload, error) {
	payload := event.QuestPayload{
		QuestID:     uuid.NewString(),
		Title:       title,
		Description: description,
		Category:    "Community",
		CreatorID:   "web",
	}
	if err := p.publish(ctx, event.TypeCreateQuest, WebSubmissionKey, payload); err != nil {
		return event.QuestPayload{}, err
	}
	return payload, nil
}

func (p *Producer) EditQuest(ctx context.Context, payload event.EditPayload) error {
	return p.publish(ctx, event.TypeEditQuest, event.TypeEditQuest, payload)
}

// DeleteQuest verifies the quest exists in the snapshot before publishing;
// the writer re-checks against live rows and aborts the cascade cleanly if
// the quest vanished in between.
func (p *Producer) DeleteQuest(ctx context.Context, questID string) error {
	snap, err := p.snapshots.Snapshot(ctx)
	if err != nil {
		return err
	}
	if _, ok := snap.FindQuest(questID); !ok {
		return &AdmissionError{Reason: ErrQuestNotFound}
	}
	return p.publish(ctx, event.TypeDeleteQuest, event.TypeDeleteQuest, event.DeletePayload{QuestID: questID})
}

type TakeResult struct {
	Quest  sheetstore.QuestRow
	Active int
}

// TakeQuest runs admission control against the cached snapshot and
// publishes on success. Two users can both pass the capacity check within
// one TTL window; the resulting over-capacity rows are an accepted
// trade-off of the eventually consistent read path.
func (p *Producer) TakeQuest(ctx context.Context, questID, userID, userTag string) (*TakeResult, error) {
	snap, err := p.snapshots.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	quest, ok := snap.FindQuest(questID)
	if !ok {
		return nil, &AdmissionError{Reason: ErrQuestNotFound}
	}

	if part, ok := snap.Participation(questID, userID); ok && part.Status == sheetstore.StatusOnProgress {
		return nil, &AdmissionError{Reason: ErrAlreadyTaken, Quest: quest}
	}

	active := snap.ActiveParticipants(questID)
	if active >= quest.Slots {
		return nil, &AdmissionError{Reason: ErrQuestFull, Quest: quest, Active: active}
	}

	switch status.Calculate(p.now().Unix(), utils.ParseEpoch(quest.Schedule), utils.ParseEpoch(quest.Deadline)) {
	case status.Ended:
		return nil, &AdmissionError{Reason: ErrQuestEnded, Quest: quest}
	case status.Ongoing:
		return nil, &AdmissionError{Reason: ErrQuestStarted, Quest: quest}
	}

	payload := event.RegistrationPayload{QuestID: questID, UserID: userID, UserTag: userTag}
	if err := p.publish(ctx, event.TypeTakeQuest, event.TypeTakeQuest, payload); err != nil {
		return nil, err
	}
	return &TakeResult{Quest: quest, Active: active + 1}, nil
}

// DropQuest refuses drops once the quest started; otherwise it requires an
// ON_PROGRESS participation in the snapshot.
func (p *Producer) DropQuest(ctx context.Context, questID, userID, userTag string) (*sheetstore.QuestRow, error) {
	snap, err := p.snapshots.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	quest, ok := snap.FindQuest(questID)
	if !ok {
		return nil, &AdmissionError{Reason: ErrQuestNotFound}
	}

	if start := utils.ParseEpoch(quest.Schedule); start > 0 && p.now().Unix() >= start {
		return nil, &AdmissionError{Reason: ErrQuestStarted, Quest: quest}
	}

	part, ok := snap.Participation(questID, userID)
	if !ok || part.Status != sheetstore.StatusOnProgress {
		return nil, &AdmissionError{Reason: ErrNotOnProgress, Quest: quest}
	}

	payload := event.RegistrationPayload{QuestID: questID, UserID: userID, UserTag: userTag}
	if err := p.publish(ctx, event.TypeDropQuest, event.TypeDropQuest, payload); err != nil {
		return nil, err
	}
	return &quest, nil
}

func (p *Producer) SubmitProof(ctx context.Context, questID, userID, proofURL string) error {
	payload := event.ProofPayload{QuestID: questID, UserID: userID, ProofURL: proofURL}
	return p.publish(ctx, event.TypeSubmitProof, event.TypeSubmitProof, payload)
}

// RegisterCommunity rejects names that normalize to an already registered
// community before publishing. The writer appends without any duplicate
// check of its own.
func (p *Producer) RegisterCommunity(ctx context.Context, name, leaderID string) error {
	snap, err := p.snapshots.Snapshot(ctx)
	if err != nil {
		return err
	}

	normalized := utils.NormalizeName(name)
	for _, c := range snap.Communities() {
		if utils.NormalizeName(c.CommunityName) == normalized {
			return &AdmissionError{Reason: ErrCommunityExists}
		}
	}

	payload := event.NewCommunityPayload{CommunityName: name, LeaderID: leaderID}
	return p.publish(ctx, event.TypeRegisterCommunity, event.TypeRegisterCommunity, payload)
}
