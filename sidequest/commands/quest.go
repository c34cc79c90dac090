package commands

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/GenshikenITB/SideQuestGST/sidequest"
	"github.com/GenshikenITB/SideQuestGST/sidequest/event"
	"github.com/GenshikenITB/SideQuestGST/sidequest/logger"
	"github.com/GenshikenITB/SideQuestGST/sidequest/producer"
	"github.com/GenshikenITB/SideQuestGST/sidequest/sheetstore"
	"github.com/GenshikenITB/SideQuestGST/sidequest/utils"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
)

var Quest = discord.SlashCommandCreate{
	Name:        "quest",
	Description: "Manage quests on the board",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionSubCommand{
			Name:        "create",
			Description: "Post a new quest",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionString{
					Name:        "category",
					Description: "Quest category",
					Required:    true,
					Choices: []discord.ApplicationCommandOptionChoiceString{
						{Name: "Community", Value: "Community"},
						{Name: "Creative Arts", Value: "CreativeArts"},
						{Name: "Game Night", Value: "GameNight"},
						{Name: "Academic", Value: "Academic"},
						{Name: "Sports", Value: "Sports"},
					},
				},
				discord.ApplicationCommandOptionString{
					Name:        "organizer",
					Description: "Name of the organizing division or community",
					Required:    true,
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "edit",
			Description: "Edit an existing quest",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionString{
					Name:        "quest_id",
					Description: "ID of the quest to edit",
					Required:    true,
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "delete",
			Description: "Delete a quest and all its participations",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionString{
					Name:        "quest_id",
					Description: "ID of the quest to delete",
					Required:    true,
				},
			},
		},
	},
}

// QuestCreateHandler opens the quest form. Category and organizer ride in
// the modal custom id; the organizer is base64 encoded because names may
// contain the path separator.
func QuestCreateHandler(b *sidequest.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		if !checkQuestGiver(b, e) {
			return nil
		}

		data := e.SlashCommandInteractionData()
		category := data.String("category")
		organizer := base64.RawURLEncoding.EncodeToString([]byte(data.String("organizer")))

		return e.Modal(discord.ModalCreate{
			CustomID: fmt.Sprintf("/quest-create/%s/%s", category, organizer),
			Title:    "Create Quest",
			Components: []discord.ContainerComponent{
				discord.NewActionRow(
					discord.NewShortTextInput("title", "Title").
						WithRequired(true).
						WithMaxLength(100),
				),
				discord.NewActionRow(
					discord.NewParagraphTextInput("details", "Platform and description").
						WithRequired(true).
						WithPlaceholder("First line: platform (e.g. Discord VC). Rest: description."),
				),
				discord.NewActionRow(
					discord.NewShortTextInput("slots", "Slots").
						WithRequired(true).
						WithPlaceholder("5"),
				),
				discord.NewActionRow(
					discord.NewShortTextInput("schedule", "Start (WIB)").
						WithPlaceholder("2025-11-25 19:30"),
				),
				discord.NewActionRow(
					discord.NewShortTextInput("deadline", "Deadline (WIB)").
						WithPlaceholder("2025-11-25 21:30"),
				),
			},
		})
	}
}

func QuestCreateModalHandler(b *sidequest.Bot) handler.ModalHandler {
	return func(e *handler.ModalEvent) error {
		organizerRaw, err := base64.RawURLEncoding.DecodeString(e.Vars["organizer"])
		if err != nil {
			return modalError(e, "Malformed form data, please run /quest create again.")
		}

		in := producer.CreateQuestInput{
			Title:         e.Data.Text("title"),
			Category:      e.Vars["category"],
			OrganizerName: string(organizerRaw),
			CreatorID:     e.User().ID.String(),
		}

		platform, description, ok := strings.Cut(strings.TrimSpace(e.Data.Text("details")), "\n")
		if !ok || strings.TrimSpace(description) == "" {
			return modalError(e, "Put the platform on the first line and the description below it.")
		}
		in.Platform = strings.TrimSpace(platform)
		in.Description = strings.TrimSpace(description)

		in.Slots, err = strconv.Atoi(strings.TrimSpace(e.Data.Text("slots")))
		if err != nil || in.Slots <= 0 {
			return modalError(e, "Slots must be a positive number.")
		}

		if raw := strings.TrimSpace(e.Data.Text("schedule")); raw != "" {
			if in.Schedule, err = utils.ParseWIB(raw); err != nil {
				return modalError(e, err.Error())
			}
		}
		if raw := strings.TrimSpace(e.Data.Text("deadline")); raw != "" {
			if in.Deadline, err = utils.ParseWIB(raw); err != nil {
				return modalError(e, err.Error())
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		payload, err := b.Producer.CreateQuest(ctx, in)
		if err != nil {
			return modalError(e, "Failed to post the quest, please try again later.")
		}

		announceQuest(b, e, payload)

		return e.CreateMessage(discord.MessageCreate{
			Content: fmt.Sprintf("✅ Quest **%s** posted! ID: `%s`", payload.Title, payload.QuestID),
			Flags:   discord.MessageFlagEphemeral,
		})
	}
}

// announceQuest posts the public embed to the configured announcement
// channel. A missing channel config or a failed send never fails the
// creation itself.
func announceQuest(b *sidequest.Bot, e *handler.ModalEvent, payload event.QuestPayload) {
	guildID := e.GuildID()
	if guildID == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cfg, err := b.Cache.GuildConfig(ctx, *guildID)
	if err != nil || cfg.AnnouncementChannelID == nil {
		return
	}

	content := ""
	if cfg.PingRoleID != nil {
		content = fmt.Sprintf("<@&%s>", *cfg.PingRoleID)
	}

	quest := sheetstore.QuestRow{
		QuestID:       payload.QuestID,
		Title:         payload.Title,
		Category:      payload.Category,
		Slots:         payload.Slots,
		OrganizerName: payload.OrganizerName,
		Schedule:      payload.Schedule,
		Platform:      payload.Platform,
		Description:   payload.Description,
		Deadline:      payload.Deadline,
	}

	// The quest is already on the bus; the announcement is best effort.
	if _, err := b.Client.Rest().CreateMessage(*cfg.AnnouncementChannelID, discord.MessageCreate{
		Content: content,
		Embeds:  []discord.Embed{questDetailEmbed(quest, 0)},
	}); err != nil {
		logger.LogError("Failed to announce quest", err,
			slog.String("quest_id", payload.QuestID))
	}
}

func QuestEditHandler(b *sidequest.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		if !checkQuestGiver(b, e) {
			return nil
		}

		questID := e.SlashCommandInteractionData().String("quest_id")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		snap, err := b.Cache.Snapshot(ctx)
		if err != nil {
			return ephemeralError(e, "Failed to load the quest board, please try again later.")
		}

		quest, ok := snap.FindQuest(questID)
		if !ok {
			return ephemeralError(e, fmt.Sprintf("No quest with ID `%s`.", questID))
		}

		details := quest.Platform
		if quest.Description != "" {
			details += "\n" + quest.Description
		}

		return e.Modal(discord.ModalCreate{
			CustomID: "/quest-edit/" + questID,
			Title:    "Edit Quest",
			Components: []discord.ContainerComponent{
				discord.NewActionRow(
					discord.NewShortTextInput("title", "Title").
						WithRequired(true).
						WithMaxLength(100).
						WithValue(quest.Title),
				),
				discord.NewActionRow(
					discord.NewParagraphTextInput("details", "Platform and description").
						WithRequired(true).
						WithValue(details),
				),
				discord.NewActionRow(
					discord.NewShortTextInput("slots", "Slots").
						WithRequired(true).
						WithValue(strconv.Itoa(quest.Slots)),
				),
				discord.NewActionRow(
					discord.NewShortTextInput("schedule", "Start (WIB)").
						WithPlaceholder("2025-11-25 19:30").
						WithValue(utils.FormatWIB(quest.Schedule)),
				),
				discord.NewActionRow(
					discord.NewShortTextInput("deadline", "Deadline (WIB)").
						WithPlaceholder("2025-11-25 21:30").
						WithValue(utils.FormatWIB(quest.Deadline)),
				),
			},
		})
	}
}

// QuestEditModalHandler publishes the full edited field set. Emptied
// schedule or deadline inputs clear the stored value, matching what the
// form showed the editor.
func QuestEditModalHandler(b *sidequest.Bot) handler.ModalHandler {
	return func(e *handler.ModalEvent) error {
		payload := event.EditPayload{
			QuestID: e.Vars["quest_id"],
			Title:   e.Data.Text("title"),
		}

		platform, description, ok := strings.Cut(strings.TrimSpace(e.Data.Text("details")), "\n")
		if !ok || strings.TrimSpace(description) == "" {
			return modalError(e, "Put the platform on the first line and the description below it.")
		}
		payload.Platform = strings.TrimSpace(platform)
		payload.Description = strings.TrimSpace(description)

		slots, err := strconv.Atoi(strings.TrimSpace(e.Data.Text("slots")))
		if err != nil || slots <= 0 {
			return modalError(e, "Slots must be a positive number.")
		}
		payload.Slots = slots

		if raw := strings.TrimSpace(e.Data.Text("schedule")); raw != "" {
			if payload.Schedule, err = utils.ParseWIB(raw); err != nil {
				return modalError(e, err.Error())
			}
		}
		if raw := strings.TrimSpace(e.Data.Text("deadline")); raw != "" {
			if payload.Deadline, err = utils.ParseWIB(raw); err != nil {
				return modalError(e, err.Error())
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := b.Producer.EditQuest(ctx, payload); err != nil {
			return modalError(e, "Failed to submit the edit, please try again later.")
		}

		return e.CreateMessage(discord.MessageCreate{
			Content: fmt.Sprintf("✅ Edit for `%s` submitted. The board updates within a minute.", payload.QuestID),
			Flags:   discord.MessageFlagEphemeral,
		})
	}
}

func QuestDeleteHandler(b *sidequest.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		if !checkQuestGiver(b, e) {
			return nil
		}

		questID := e.SlashCommandInteractionData().String("quest_id")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := b.Producer.DeleteQuest(ctx, questID); err != nil {
			if isAdmission(err, producer.ErrQuestNotFound) {
				return ephemeralError(e, fmt.Sprintf("No quest with ID `%s`.", questID))
			}
			return ephemeralError(e, "Failed to delete the quest, please try again later.")
		}

		return ephemeralSuccess(e, fmt.Sprintf("Quest `%s` and all its participations are being removed.", questID))
	}
}

func modalError(e *handler.ModalEvent, msg string) error {
	return e.CreateMessage(discord.MessageCreate{
		Content: "❌ " + msg,
		Flags:   discord.MessageFlagEphemeral,
	})
}
