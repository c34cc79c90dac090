// Package api is the small HTTP surface of the quest board: a public quest
// submission form endpoint and the cache invalidation hook the sheet
// editors' Apps Script trigger calls after a manual edit.
package api

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/GenshikenITB/SideQuestGST/sidequest/logger"
	"github.com/GenshikenITB/SideQuestGST/sidequest/producer"
	"github.com/GenshikenITB/SideQuestGST/sidequest/qcache"
)

const requestTimeout = 10 * time.Second

type Server struct {
	app      *fiber.App
	producer *producer.Producer
	cache    *qcache.Cache
}

func New(p *producer.Producer, cache *qcache.Cache) *Server {
	s := &Server{
		app: fiber.New(fiber.Config{
			AppName:               "SideQuest API",
			DisableStartupMessage: true,
			ReadTimeout:           requestTimeout,
			WriteTimeout:          requestTimeout,
		}),
		producer: p,
		cache:    cache,
	}

	s.app.Use(recover.New())
	s.app.Use(cors.New())

	s.app.Get("/api/health", s.handleHealth)
	s.app.Post("/api/submit", s.handleSubmit)
	s.app.Post("/api/cache/invalidate", s.handleInvalidate)

	return s
}

// Listen blocks until the listener fails or Shutdown is called.
func (s *Server) Listen(addr string) error {
	logger.LogSystem("API server listening", slog.String("addr", addr))
	return s.app.Listen(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

type submitRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// handleSubmit publishes a web quest submission. It lands on the bus with
// the web sentinel key and flows through the same pipeline as slash
// command quests.
func (s *Server) handleSubmit(c *fiber.Ctx) error {
	var req submitRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	if req.Title == "" || req.Description == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "title and description are required",
		})
	}

	ctx, cancel := context.WithTimeout(c.Context(), requestTimeout)
	defer cancel()

	payload, err := s.producer.CreateQuestFromWeb(ctx, req.Title, req.Description)
	if err != nil {
		slog.Error("Web submission failed", slog.Any("error", err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to submit quest",
		})
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"quest_id": payload.QuestID,
	})
}

// handleInvalidate drops the snapshot cache so the next read sees manual
// sheet edits immediately instead of after the TTL.
func (s *Server) handleInvalidate(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), requestTimeout)
	defer cancel()

	if err := s.cache.Invalidate(ctx); err != nil {
		slog.Error("Cache invalidation failed", slog.Any("error", err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to invalidate cache",
		})
	}

	return c.JSON(fiber.Map{"status": "invalidated"})
}
