package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/GenshikenITB/SideQuestGST/sidequest"
	"github.com/GenshikenITB/SideQuestGST/sidequest/producer"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
)

var Drop = discord.SlashCommandCreate{
	Name:        "drop",
	Description: "Drop a quest you took, freeing the slot",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionString{
			Name:        "quest_id",
			Description: "ID of the quest to drop",
			Required:    true,
		},
	},
}

func DropHandler(b *sidequest.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		if !checkGuild(b, e) {
			return nil
		}

		questID := e.SlashCommandInteractionData().String("quest_id")
		user := e.User()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		quest, err := b.Producer.DropQuest(ctx, questID, user.ID.String(), user.Tag())
		if err != nil {
			switch {
			case isAdmission(err, producer.ErrQuestNotFound):
				return ephemeralError(e, fmt.Sprintf("No quest with ID `%s`.", questID))
			case isAdmission(err, producer.ErrQuestStarted):
				return ephemeralError(e, "The quest already started, you can't drop it anymore.")
			case isAdmission(err, producer.ErrNotOnProgress):
				return ephemeralError(e, "You don't have this quest in progress.")
			default:
				return ephemeralError(e, "Failed to drop the quest, please try again later.")
			}
		}

		return ephemeralSuccess(e, fmt.Sprintf("You dropped **%s**. The slot opens up within a minute.", quest.Title))
	}
}
