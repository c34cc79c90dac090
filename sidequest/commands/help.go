package commands

import (
	"github.com/GenshikenITB/SideQuestGST/sidequest"
	"github.com/GenshikenITB/SideQuestGST/sidequest/utils"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
)

var Help = discord.SlashCommandCreate{
	Name:        "help",
	Description: "How the quest board works",
}

func HelpHandler(b *sidequest.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		fields := []discord.EmbedField{
			wideField("📜 /list", "Browse the quest board, filter by status or search by title."),
			wideField("🗡️ /take", "Take a quest. You keep the slot until you drop, finish or miss the deadline."),
			wideField("📸 /submit", "Submit an image as proof before the deadline to complete a quest."),
			wideField("🏳️ /drop", "Drop a quest before it starts; the slot opens up again."),
			wideField("📊 /stats", "Your quest record, or someone else's."),
			wideField("✨ /quest", "Quest givers: create, edit and delete quests."),
			wideField("🏘️ /community", "Admins: register communities that organize quests."),
		}

		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{{
				Title:       "SideQuest " + b.Version,
				Description: "Take quests, finish them before the deadline, earn your place on the board.",
				Fields:      fields,
				Color:       utils.InfoColor,
			}},
			Flags: discord.MessageFlagEphemeral,
		})
	}
}
