package qcache

import "github.com/GenshikenITB/SideQuestGST/sidequest/sheetstore"

// Snapshot holds the raw rows of the three read-heavy tables, headers
// included, exactly as the store returned them. The JSON field names match
// the cache payload the previous revision of the system stored, so a warm
// cache survives a redeploy.
type Snapshot struct {
	QuestRows       [][]string `json:"q_rows"`
	ParticipantRows [][]string `json:"p_rows"`
	CommunityRows   [][]string `json:"c_rows"`
}

// Quests returns all quest rows parsed, header skipped.
func (s *Snapshot) Quests() []sheetstore.QuestRow {
	if len(s.QuestRows) <= 1 {
		return nil
	}
	quests := make([]sheetstore.QuestRow, 0, len(s.QuestRows)-1)
	for _, row := range s.QuestRows[1:] {
		quests = append(quests, sheetstore.ParseQuestRow(row))
	}
	return quests
}

// FindQuest linearly scans for the first quest with the given id.
func (s *Snapshot) FindQuest(questID string) (sheetstore.QuestRow, bool) {
	for i, row := range s.QuestRows {
		if i == 0 {
			continue
		}
		if len(row) > 0 && row[sheetstore.QuestColID] == questID {
			return sheetstore.ParseQuestRow(row), true
		}
	}
	return sheetstore.QuestRow{}, false
}

// ActiveParticipants counts the participations currently occupying a slot
// of the quest. Dropped and failed rows free their slot.
func (s *Snapshot) ActiveParticipants(questID string) int {
	count := 0
	for i, row := range s.ParticipantRows {
		if i == 0 {
			continue
		}
		p := sheetstore.ParseParticipationRow(row)
		if p.QuestID != questID {
			continue
		}
		switch p.Status {
		case sheetstore.StatusOnProgress, sheetstore.StatusCompleted, sheetstore.StatusVerified:
			count++
		}
	}
	return count
}

// Participation returns the user's latest participation row for the quest,
// if any. Rows append in take order, so the last match reflects the current
// state after a drop and retake.
func (s *Snapshot) Participation(questID, userID string) (sheetstore.ParticipationRow, bool) {
	for i := len(s.ParticipantRows) - 1; i >= 1; i-- {
		p := sheetstore.ParseParticipationRow(s.ParticipantRows[i])
		if p.QuestID == questID && p.UserID == userID {
			return p, true
		}
	}
	return sheetstore.ParticipationRow{}, false
}

// UserParticipations returns every participation row of the user.
func (s *Snapshot) UserParticipations(userID string) []sheetstore.ParticipationRow {
	var out []sheetstore.ParticipationRow
	for i, row := range s.ParticipantRows {
		if i == 0 {
			continue
		}
		p := sheetstore.ParseParticipationRow(row)
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out
}

// Communities returns all registered communities, header skipped.
func (s *Snapshot) Communities() []sheetstore.CommunityRow {
	if len(s.CommunityRows) <= 1 {
		return nil
	}
	out := make([]sheetstore.CommunityRow, 0, len(s.CommunityRows)-1)
	for _, row := range s.CommunityRows[1:] {
		out = append(out, sheetstore.ParseCommunityRow(row))
	}
	return out
}
