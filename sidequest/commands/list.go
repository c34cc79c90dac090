package commands

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/GenshikenITB/SideQuestGST/sidequest"
	"github.com/GenshikenITB/SideQuestGST/sidequest/qcache"
	"github.com/GenshikenITB/SideQuestGST/sidequest/sheetstore"
	"github.com/GenshikenITB/SideQuestGST/sidequest/status"
	"github.com/GenshikenITB/SideQuestGST/sidequest/utils"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/paginator"
	"github.com/sahilm/fuzzy"
)

var List = discord.SlashCommandCreate{
	Name:        "list",
	Description: "Browse the quest board",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionString{
			Name:        "status",
			Description: "Only show quests in this state",
			Choices: []discord.ApplicationCommandOptionChoiceString{
				{Name: "Upcoming", Value: "upcoming"},
				{Name: "Ongoing", Value: "ongoing"},
				{Name: "Ended", Value: "ended"},
				{Name: "TBA", Value: "tba"},
			},
		},
		discord.ApplicationCommandOptionString{
			Name:        "search",
			Description: "Fuzzy match on quest titles",
		},
	},
}

type questTitles []sheetstore.QuestRow

func (q questTitles) String(i int) string { return q[i].Title }
func (q questTitles) Len() int            { return len(q) }

func filterQuests(snap *qcache.Snapshot, statusFilter, query string) []sheetstore.QuestRow {
	quests := snap.Quests()

	if statusFilter != "" {
		now := time.Now().Unix()
		filtered := quests[:0]
		for _, q := range quests {
			s := status.Calculate(now, utils.ParseEpoch(q.Schedule), utils.ParseEpoch(q.Deadline))
			if strings.EqualFold(s.String(), statusFilter) {
				filtered = append(filtered, q)
			}
		}
		quests = filtered
	}

	if query != "" {
		matches := fuzzy.FindFrom(query, questTitles(quests))
		ranked := make([]sheetstore.QuestRow, 0, len(matches))
		for _, m := range matches {
			ranked = append(ranked, quests[m.Index])
		}
		quests = ranked
	}

	return quests
}

func ListHandler(b *sidequest.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		if !checkGuild(b, e) {
			return nil
		}

		data := e.SlashCommandInteractionData()
		statusFilter := data.String("status")
		query := data.String("search")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		snap, err := b.Cache.Snapshot(ctx)
		if err != nil {
			return ephemeralError(e, "Failed to load the quest board, please try again later.")
		}

		quests := filterQuests(snap, statusFilter, query)
		if len(quests) == 0 {
			return ephemeralError(e, "No quests match.")
		}

		totalPages := int(math.Ceil(float64(len(quests)) / float64(utils.QuestsPerPage)))

		return b.Paginator.Create(e.Respond, paginator.Pages{
			ID:      e.ID().String(),
			Creator: e.User().ID,
			PageFunc: func(page int, embed *discord.EmbedBuilder) {
				startIdx := page * utils.QuestsPerPage
				endIdx := min(startIdx+utils.QuestsPerPage, len(quests))
				now := time.Now().Unix()

				var description strings.Builder
				if query != "" {
					description.WriteString(fmt.Sprintf("🔍 `%s`\n\n", query))
				}

				for _, q := range quests[startIdx:endIdx] {
					s := status.Calculate(now, utils.ParseEpoch(q.Schedule), utils.ParseEpoch(q.Deadline))
					active := snap.ActiveParticipants(q.QuestID)
					description.WriteString(fmt.Sprintf("%s **%s** · %d/%d slots · %s\n`%s`\n\n",
						statusLabel(s), q.Title, active, q.Slots, q.OrganizerName, q.QuestID))
				}

				embed.
					SetTitle("📜 Quest Board").
					SetDescription(description.String()).
					SetColor(utils.QuestColor).
					SetFooter(fmt.Sprintf("Page %d/%d • %d quests", page+1, totalPages, len(quests)), "")
			},
			Pages:      totalPages,
			ExpireMode: paginator.ExpireModeAfterLastUsage,
		}, false)
	}
}
