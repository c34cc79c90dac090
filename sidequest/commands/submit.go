package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/GenshikenITB/SideQuestGST/sidequest"
	"github.com/GenshikenITB/SideQuestGST/sidequest/sheetstore"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
)

var Submit = discord.SlashCommandCreate{
	Name:        "submit",
	Description: "Submit proof that you finished a quest",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionString{
			Name:        "quest_id",
			Description: "ID of the quest you finished",
			Required:    true,
		},
		discord.ApplicationCommandOptionAttachment{
			Name:        "proof",
			Description: "Screenshot or photo of the result",
			Required:    true,
		},
	},
}

// SubmitHandler publishes the proof and marks the run completed. The
// in-progress check runs against the snapshot only; a submission racing a
// sweep can still land, verifiers sort that out.
func SubmitHandler(b *sidequest.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		if !checkGuild(b, e) {
			return nil
		}

		data := e.SlashCommandInteractionData()
		questID := data.String("quest_id")
		proof := data.Attachment("proof")

		if proof.ContentType == nil || !strings.HasPrefix(*proof.ContentType, "image/") {
			return ephemeralError(e, "The proof has to be an image.")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		snap, err := b.Cache.Snapshot(ctx)
		if err != nil {
			return ephemeralError(e, "Failed to load the quest board, please try again later.")
		}

		userID := e.User().ID.String()
		part, ok := snap.Participation(questID, userID)
		if !ok || part.Status != sheetstore.StatusOnProgress {
			return ephemeralError(e, "You don't have this quest in progress.")
		}

		if err := b.Producer.SubmitProof(ctx, questID, userID, proof.URL); err != nil {
			return ephemeralError(e, "Failed to submit the proof, please try again later.")
		}

		quest, _ := snap.FindQuest(questID)
		return e.CreateMessage(discord.MessageCreate{
			Content: fmt.Sprintf("📸 %s submitted proof for **%s**! Waiting for verification.", e.User().Mention(), quest.Title),
		})
	}
}
