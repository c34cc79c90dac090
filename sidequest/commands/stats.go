package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/GenshikenITB/SideQuestGST/sidequest"
	"github.com/GenshikenITB/SideQuestGST/sidequest/sheetstore"
	"github.com/GenshikenITB/SideQuestGST/sidequest/utils"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
)

var Stats = discord.SlashCommandCreate{
	Name:        "stats",
	Description: "Show quest statistics for a member",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionUser{
			Name:        "member",
			Description: "Member to look up (defaults to you)",
		},
	},
}

func StatsHandler(b *sidequest.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		if !checkGuild(b, e) {
			return nil
		}

		user := e.User()
		if target, ok := e.SlashCommandInteractionData().OptUser("member"); ok {
			user = target
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		snap, err := b.Cache.Snapshot(ctx)
		if err != nil {
			return ephemeralError(e, "Failed to load the quest board, please try again later.")
		}

		var inProgress, completed, verified, failed, dropped int
		for _, p := range snap.UserParticipations(user.ID.String()) {
			switch p.Status {
			case sheetstore.StatusOnProgress:
				inProgress++
			case sheetstore.StatusCompleted:
				completed++
			case sheetstore.StatusVerified:
				verified++
			case sheetstore.StatusFailed:
				failed++
			case sheetstore.StatusDropped:
				dropped++
			}
		}

		total := inProgress + completed + verified + failed + dropped
		if total == 0 {
			return ephemeralError(e, fmt.Sprintf("%s hasn't taken any quests yet.", user.EffectiveName()))
		}

		fields := []discord.EmbedField{
			inlineField("In progress", fmt.Sprintf("%d", inProgress)),
			inlineField("Completed", fmt.Sprintf("%d", completed)),
			inlineField("Verified", fmt.Sprintf("%d", verified)),
			inlineField("Failed", fmt.Sprintf("%d", failed)),
			inlineField("Dropped", fmt.Sprintf("%d", dropped)),
			inlineField("Total", fmt.Sprintf("%d", total)),
		}

		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{{
				Title:  fmt.Sprintf("📊 Quest stats for %s", user.EffectiveName()),
				Fields: fields,
				Color:  utils.InfoColor,
			}},
		})
	}
}
