package commands

import (
	"context"
	"log/slog"
	"slices"

	"github.com/GenshikenITB/SideQuestGST/sidequest"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
)

func ephemeralError(e *handler.CommandEvent, msg string) error {
	return e.CreateMessage(discord.MessageCreate{
		Content: "❌ " + msg,
		Flags:   discord.MessageFlagEphemeral,
	})
}

func ephemeralSuccess(e *handler.CommandEvent, msg string) error {
	return e.CreateMessage(discord.MessageCreate{
		Content: "✅ " + msg,
		Flags:   discord.MessageFlagEphemeral,
	})
}

// checkGuild rejects DMs and foreign guilds; the bot serves exactly one
// community server.
func checkGuild(b *sidequest.Bot, e *handler.CommandEvent) bool {
	guildID := e.GuildID()
	if guildID == nil {
		_ = ephemeralError(e, "This command doesn't work in DMs.")
		return false
	}
	if *guildID != b.Cfg.Bot.GuildID {
		_ = ephemeralError(e, "Access denied: this command only works on the GST server.")
		return false
	}
	return true
}

func checkAdmin(e *handler.CommandEvent) bool {
	member := e.Member()
	if member == nil || !member.Permissions.Has(discord.PermissionAdministrator) {
		_ = ephemeralError(e, "You don't have admin access.")
		return false
	}
	return true
}

// checkQuestGiver allows admins and holders of the quest giver role. The
// guild config override wins over the config-file default.
func checkQuestGiver(b *sidequest.Bot, e *handler.CommandEvent) bool {
	if !checkGuild(b, e) {
		return false
	}

	member := e.Member()
	if member == nil {
		return false
	}
	if member.Permissions.Has(discord.PermissionAdministrator) {
		return true
	}

	roleID := b.Cfg.Bot.QuestGiverRoleID
	if cfg, err := b.Cache.GuildConfig(context.Background(), *e.GuildID()); err == nil && cfg.QuestGiverRoleID != nil {
		roleID = *cfg.QuestGiverRoleID
	} else if err != nil {
		slog.Warn("Guild config lookup failed, using config default",
			slog.Any("error", err))
	}

	if !slices.Contains(member.RoleIDs, roleID) {
		_ = ephemeralError(e, "You need the Quest Giver role to do that.")
		return false
	}
	return true
}

func questEmbed(title, description string, fields []discord.EmbedField, color int) discord.Embed {
	return discord.Embed{
		Title:       title,
		Description: description,
		Fields:      fields,
		Color:       color,
		Footer: &discord.EmbedFooter{
			Text: "Use /take <id> to take the quest",
		},
	}
}

func inlineField(name, value string) discord.EmbedField {
	inline := true
	return discord.EmbedField{Name: name, Value: value, Inline: &inline}
}

func wideField(name, value string) discord.EmbedField {
	return discord.EmbedField{Name: name, Value: value}
}
