package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/GenshikenITB/SideQuestGST/sidequest"
	"github.com/GenshikenITB/SideQuestGST/sidequest/qcache"
	"github.com/GenshikenITB/SideQuestGST/sidequest/utils"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/snowflake/v2"
)

var Config = discord.SlashCommandCreate{
	Name:        "config",
	Description: "Configure the quest board for this server",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionSubCommand{
			Name:        "set-channel",
			Description: "Set a channel used by the quest board",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionString{
					Name:        "kind",
					Description: "Which channel to set",
					Required:    true,
					Choices:     channelKindChoices,
				},
				discord.ApplicationCommandOptionChannel{
					Name:        "channel",
					Description: "The channel",
					Required:    true,
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "set-role",
			Description: "Set a role used by the quest board",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionString{
					Name:        "kind",
					Description: "Which role to set",
					Required:    true,
					Choices:     roleKindChoices,
				},
				discord.ApplicationCommandOptionRole{
					Name:        "role",
					Description: "The role",
					Required:    true,
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "clear-channel",
			Description: "Clear a configured channel",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionString{
					Name:        "kind",
					Description: "Which channel to clear",
					Required:    true,
					Choices:     channelKindChoices,
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "clear-role",
			Description: "Clear a configured role",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionString{
					Name:        "kind",
					Description: "Which role to clear",
					Required:    true,
					Choices:     roleKindChoices,
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "view",
			Description: "Show the current configuration",
		},
	},
}

var channelKindChoices = []discord.ApplicationCommandOptionChoiceString{
	{Name: "Announcements", Value: "announcement"},
	{Name: "Proof submissions", Value: "proof"},
	{Name: "Logs", Value: "log"},
}

var roleKindChoices = []discord.ApplicationCommandOptionChoiceString{
	{Name: "Quest ping", Value: "ping"},
	{Name: "Quest giver", Value: "quest_giver"},
	{Name: "Verifier", Value: "verifier"},
}

func channelSlot(cfg *qcache.GuildConfig, kind string) **snowflake.ID {
	switch kind {
	case "announcement":
		return &cfg.AnnouncementChannelID
	case "proof":
		return &cfg.ProofChannelID
	case "log":
		return &cfg.LogChannelID
	}
	return nil
}

func roleSlot(cfg *qcache.GuildConfig, kind string) **snowflake.ID {
	switch kind {
	case "ping":
		return &cfg.PingRoleID
	case "quest_giver":
		return &cfg.QuestGiverRoleID
	case "verifier":
		return &cfg.VerifierRoleID
	}
	return nil
}

// updateGuildConfig runs a read-modify-write on the guild config. Config
// writes are rare and admin-only, so the race window is acceptable.
func updateGuildConfig(b *sidequest.Bot, e *handler.CommandEvent, apply func(*qcache.GuildConfig) error) error {
	if !checkGuild(b, e) || !checkAdmin(e) {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cfg, err := b.Cache.GuildConfig(ctx, *e.GuildID())
	if err != nil {
		return ephemeralError(e, "Failed to load the configuration, please try again later.")
	}

	if err := apply(&cfg); err != nil {
		return ephemeralError(e, err.Error())
	}

	if err := b.Cache.SetGuildConfig(ctx, *e.GuildID(), cfg); err != nil {
		return ephemeralError(e, "Failed to save the configuration, please try again later.")
	}
	return ephemeralSuccess(e, "Configuration updated.")
}

func ConfigSetChannelHandler(b *sidequest.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		data := e.SlashCommandInteractionData()
		kind := data.String("kind")
		channel := data.Channel("channel")

		return updateGuildConfig(b, e, func(cfg *qcache.GuildConfig) error {
			slot := channelSlot(cfg, kind)
			if slot == nil {
				return fmt.Errorf("unknown channel kind %q", kind)
			}
			id := channel.ID
			*slot = &id
			return nil
		})
	}
}

func ConfigSetRoleHandler(b *sidequest.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		data := e.SlashCommandInteractionData()
		kind := data.String("kind")
		role := data.Role("role")

		return updateGuildConfig(b, e, func(cfg *qcache.GuildConfig) error {
			slot := roleSlot(cfg, kind)
			if slot == nil {
				return fmt.Errorf("unknown role kind %q", kind)
			}
			id := role.ID
			*slot = &id
			return nil
		})
	}
}

func ConfigClearChannelHandler(b *sidequest.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		kind := e.SlashCommandInteractionData().String("kind")

		return updateGuildConfig(b, e, func(cfg *qcache.GuildConfig) error {
			slot := channelSlot(cfg, kind)
			if slot == nil {
				return fmt.Errorf("unknown channel kind %q", kind)
			}
			*slot = nil
			return nil
		})
	}
}

func ConfigClearRoleHandler(b *sidequest.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		kind := e.SlashCommandInteractionData().String("kind")

		return updateGuildConfig(b, e, func(cfg *qcache.GuildConfig) error {
			slot := roleSlot(cfg, kind)
			if slot == nil {
				return fmt.Errorf("unknown role kind %q", kind)
			}
			*slot = nil
			return nil
		})
	}
}

func ConfigViewHandler(b *sidequest.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		if !checkGuild(b, e) || !checkAdmin(e) {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		cfg, err := b.Cache.GuildConfig(ctx, *e.GuildID())
		if err != nil {
			return ephemeralError(e, "Failed to load the configuration, please try again later.")
		}

		channel := func(id *snowflake.ID) string {
			if id == nil {
				return "—"
			}
			return fmt.Sprintf("<#%s>", *id)
		}
		role := func(id *snowflake.ID) string {
			if id == nil {
				return "—"
			}
			return fmt.Sprintf("<@&%s>", *id)
		}

		fields := []discord.EmbedField{
			inlineField("Announcements", channel(cfg.AnnouncementChannelID)),
			inlineField("Proof submissions", channel(cfg.ProofChannelID)),
			inlineField("Logs", channel(cfg.LogChannelID)),
			inlineField("Quest ping", role(cfg.PingRoleID)),
			inlineField("Quest giver", role(cfg.QuestGiverRoleID)),
			inlineField("Verifier", role(cfg.VerifierRoleID)),
		}

		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{{
				Title:  "⚙️ Quest board configuration",
				Fields: fields,
				Color:  utils.InfoColor,
			}},
			Flags: discord.MessageFlagEphemeral,
		})
	}
}
