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

var Community = discord.SlashCommandCreate{
	Name:        "community",
	Description: "Manage registered communities",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionSubCommand{
			Name:        "register",
			Description: "Register a community so it can organize quests",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionString{
					Name:        "name",
					Description: "Community name",
					Required:    true,
				},
				discord.ApplicationCommandOptionUser{
					Name:        "leader",
					Description: "Community leader",
					Required:    true,
				},
			},
		},
	},
}

func CommunityRegisterHandler(b *sidequest.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		if !checkGuild(b, e) || !checkAdmin(e) {
			return nil
		}

		data := e.SlashCommandInteractionData()
		name := data.String("name")
		leader := data.User("leader")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := b.Producer.RegisterCommunity(ctx, name, leader.ID.String()); err != nil {
			if isAdmission(err, producer.ErrCommunityExists) {
				return ephemeralError(e, fmt.Sprintf("**%s** is already registered.", name))
			}
			return ephemeralError(e, "Failed to register the community, please try again later.")
		}

		return ephemeralSuccess(e, fmt.Sprintf("Community **%s** registered with %s as leader.", name, leader.Mention()))
	}
}
