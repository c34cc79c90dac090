package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/GenshikenITB/SideQuestGST/sidequest"
	"github.com/GenshikenITB/SideQuestGST/sidequest/producer"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
)

var Take = discord.SlashCommandCreate{
	Name:        "take",
	Description: "Take a quest from the board",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionString{
			Name:        "quest_id",
			Description: "ID of the quest to take",
			Required:    true,
		},
	},
}

func TakeHandler(b *sidequest.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		if !checkGuild(b, e) {
			return nil
		}

		questID := e.SlashCommandInteractionData().String("quest_id")
		user := e.User()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		result, err := b.Producer.TakeQuest(ctx, questID, user.ID.String(), user.Tag())
		if err != nil {
			switch {
			case isAdmission(err, producer.ErrQuestNotFound):
				return ephemeralError(e, fmt.Sprintf("No quest with ID `%s`.", questID))
			case isAdmission(err, producer.ErrAlreadyTaken):
				return ephemeralError(e, "You already took this quest.")
			case isAdmission(err, producer.ErrQuestFull):
				return ephemeralError(e, "This quest is already full.")
			case isAdmission(err, producer.ErrQuestStarted):
				return ephemeralError(e, "This quest has already started.")
			case isAdmission(err, producer.ErrQuestEnded):
				return ephemeralError(e, "This quest has already ended.")
			default:
				return ephemeralError(e, "Failed to take the quest, please try again later.")
			}
		}

		// Role grant is best effort; a failed grant never fails the take.
		if roleID := b.Cfg.Bot.ParticipantRoleID; roleID != 0 {
			if err := b.Client.Rest().AddMemberRole(*e.GuildID(), user.ID, roleID); err != nil {
				slog.Warn("Failed to grant participant role",
					slog.String("user_id", user.ID.String()),
					slog.Any("error", err))
			}
		}

		return e.CreateMessage(discord.MessageCreate{
			Content: fmt.Sprintf("🗡️ %s took **%s**!", user.Mention(), result.Quest.Title),
			Embeds:  []discord.Embed{questDetailEmbed(result.Quest, result.Active)},
		})
	}
}
