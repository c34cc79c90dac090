package sheetstore

import (
	"fmt"
	"strconv"
)

// Participation lifecycle statuses. ON_PROGRESS is the only state the
// ledger writer creates; the rest overwrite it in place.
const (
	StatusOnProgress = "ON_PROGRESS"
	StatusCompleted  = "COMPLETED"
	StatusVerified   = "VERIFIED"
	StatusFailed     = "FAILED"
	StatusDropped    = "DROPPED"
)

// Quest sheet columns (zero-based).
const (
	QuestColID = iota
	QuestColTitle
	QuestColCategory
	QuestColSlots
	QuestColOrganizer
	QuestColSchedule
	QuestColPlatform
	QuestColDescription
	QuestColDeadline
	QuestColCreatedAt
	QuestColCount
)

// Participation sheet columns (zero-based).
const (
	PartColQuestID = iota
	PartColUserID
	PartColUserTag
	PartColStatus
	PartColTakenAt
	PartColCount
)

// StatusCellRange addresses the status cell of the participation row at the
// given zero-based index.
func StatusCellRange(rowIndex int) string {
	return fmt.Sprintf("%s!D%d", SheetParticipants, rowIndex+1)
}

// QuestRowRange addresses the full quest row at the given zero-based index.
func QuestRowRange(rowIndex int) string {
	return fmt.Sprintf("%s!A%d:J%d", SheetQuests, rowIndex+1, rowIndex+1)
}

type QuestRow struct {
	QuestID       string
	Title         string
	Category      string
	Slots         int
	OrganizerName string
	Schedule      string
	Platform      string
	Description   string
	Deadline      string
	CreatedAt     string
}

// ParseQuestRow reads a quest row, tolerating short rows the way the sheet
// API returns them (trailing empty cells omitted).
func ParseQuestRow(row []string) QuestRow {
	row = pad(row, QuestColCount)
	slots, _ := strconv.Atoi(row[QuestColSlots])
	return QuestRow{
		QuestID:       row[QuestColID],
		Title:         row[QuestColTitle],
		Category:      row[QuestColCategory],
		Slots:         slots,
		OrganizerName: row[QuestColOrganizer],
		Schedule:      row[QuestColSchedule],
		Platform:      row[QuestColPlatform],
		Description:   row[QuestColDescription],
		Deadline:      row[QuestColDeadline],
		CreatedAt:     row[QuestColCreatedAt],
	}
}

func (q QuestRow) Values() []string {
	return []string{
		q.QuestID,
		q.Title,
		q.Category,
		strconv.Itoa(q.Slots),
		q.OrganizerName,
		q.Schedule,
		q.Platform,
		q.Description,
		q.Deadline,
		q.CreatedAt,
	}
}

type ParticipationRow struct {
	QuestID string
	UserID  string
	UserTag string
	Status  string
	TakenAt string
}

func ParseParticipationRow(row []string) ParticipationRow {
	row = pad(row, PartColCount)
	return ParticipationRow{
		QuestID: row[PartColQuestID],
		UserID:  row[PartColUserID],
		UserTag: row[PartColUserTag],
		Status:  row[PartColStatus],
		TakenAt: row[PartColTakenAt],
	}
}

func (p ParticipationRow) Values() []string {
	return []string{p.QuestID, p.UserID, p.UserTag, p.Status, p.TakenAt}
}

type CommunityRow struct {
	CommunityName string
	LeaderID      string
	RegisteredAt  string
}

func ParseCommunityRow(row []string) CommunityRow {
	row = pad(row, 3)
	return CommunityRow{
		CommunityName: row[0],
		LeaderID:      row[1],
		RegisteredAt:  row[2],
	}
}

func (c CommunityRow) Values() []string {
	return []string{c.CommunityName, c.LeaderID, c.RegisteredAt}
}

type SubmissionRow struct {
	QuestID     string
	UserID      string
	ProofURL    string
	SubmittedAt string
}

func (s SubmissionRow) Values() []string {
	return []string{s.QuestID, s.UserID, s.ProofURL, s.SubmittedAt}
}

func pad(row []string, n int) []string {
	if len(row) >= n {
		return row
	}
	padded := make([]string, n)
	copy(padded, row)
	return padded
}
