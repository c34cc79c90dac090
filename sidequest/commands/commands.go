// Package commands is the slash command surface of the quest board. Every
// state change goes through the event producer; commands only read the
// cached snapshot and publish intents.
package commands

import (
	"time"

	"github.com/GenshikenITB/SideQuestGST/sidequest"
	"github.com/GenshikenITB/SideQuestGST/sidequest/logger"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
)

var Commands = []discord.ApplicationCommandCreate{
	Quest,
	Take,
	Drop,
	Submit,
	List,
	Stats,
	Config,
	Community,
	Help,
}

// withLogging times a command handler and records its outcome.
func withLogging(name string, next handler.CommandHandler) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		start := time.Now()
		err := next(e)
		logger.LogCommand(name, time.Since(start), err)
		return err
	}
}

// Register wires every command and modal handler onto the mux.
func Register(b *sidequest.Bot, h *handler.Mux) {
	h.Command("/quest/create", withLogging("quest create", QuestCreateHandler(b)))
	h.Modal("/quest-create/{category}/{organizer}", QuestCreateModalHandler(b))
	h.Command("/quest/edit", withLogging("quest edit", QuestEditHandler(b)))
	h.Modal("/quest-edit/{quest_id}", QuestEditModalHandler(b))
	h.Command("/quest/delete", withLogging("quest delete", QuestDeleteHandler(b)))

	h.Command("/take", withLogging("take", TakeHandler(b)))
	h.Command("/drop", withLogging("drop", DropHandler(b)))
	h.Command("/submit", withLogging("submit", SubmitHandler(b)))

	h.Command("/list", withLogging("list", ListHandler(b)))
	h.Command("/stats", withLogging("stats", StatsHandler(b)))

	h.Command("/config/set-channel", withLogging("config set-channel", ConfigSetChannelHandler(b)))
	h.Command("/config/set-role", withLogging("config set-role", ConfigSetRoleHandler(b)))
	h.Command("/config/clear-channel", withLogging("config clear-channel", ConfigClearChannelHandler(b)))
	h.Command("/config/clear-role", withLogging("config clear-role", ConfigClearRoleHandler(b)))
	h.Command("/config/view", withLogging("config view", ConfigViewHandler(b)))

	h.Command("/community/register", withLogging("community register", CommunityRegisterHandler(b)))
	h.Command("/help", withLogging("help", HelpHandler(b)))
}
