package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/GenshikenITB/SideQuestGST/sidequest/producer"
	"github.com/GenshikenITB/SideQuestGST/sidequest/sheetstore"
	"github.com/GenshikenITB/SideQuestGST/sidequest/status"
	"github.com/GenshikenITB/SideQuestGST/sidequest/utils"
	"github.com/disgoorg/disgo/discord"
)

// isAdmission reports whether err is an admission rejection with the given
// reason. Bus or cache failures are not admission errors.
func isAdmission(err, reason error) bool {
	var admission *producer.AdmissionError
	return errors.As(err, &admission) && errors.Is(err, reason)
}

func statusLabel(s status.Status) string {
	switch s {
	case status.Ended:
		return "🔴 Ended"
	case status.Ongoing:
		return "🟢 Ongoing"
	case status.Upcoming:
		return "🟡 Upcoming"
	default:
		return "⚪ TBA"
	}
}

// timestampOrDash renders a stored RFC3339 time as a Discord timestamp so
// every reader sees it in their own zone.
func timestampOrDash(iso string) string {
	epoch := utils.ParseEpoch(iso)
	if epoch == 0 {
		return "—"
	}
	return fmt.Sprintf("<t:%d:f>", epoch)
}

// questDetailEmbed is the one quest card used by announcements, /take
// replies and the paginated list.
func questDetailEmbed(quest sheetstore.QuestRow, active int) discord.Embed {
	s := status.Calculate(time.Now().Unix(),
		utils.ParseEpoch(quest.Schedule), utils.ParseEpoch(quest.Deadline))

	fields := []discord.EmbedField{
		inlineField("Category", quest.Category),
		inlineField("Status", statusLabel(s)),
		inlineField("Slots", fmt.Sprintf("%d/%d", active, quest.Slots)),
		inlineField("Organizer", quest.OrganizerName),
		inlineField("Platform", quest.Platform),
		inlineField("Quest ID", fmt.Sprintf("`%s`", quest.QuestID)),
		wideField("Start", timestampOrDash(quest.Schedule)),
		wideField("Deadline", timestampOrDash(quest.Deadline)),
	}

	return questEmbed(quest.Title, quest.Description, fields, utils.QuestColor)
}
