package harmonyHandler

import (
	harmonyService "StorySignGolang/internal/api/harmony/service"
	"StorySignGolang/internal/middleware"
	"StorySignGolang/pkg/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
)

type HarmonyHandler struct {
	log            *logrus.Logger
	validator      *validator.Validate
	middleware     middleware.Middleware
	harmonyService harmonyService.IHarmonyService
	utils          utils.IUtils
}

func New(
	log *logrus.Logger,
	validator *validator.Validate,
	middleware middleware.Middleware,
	hs harmonyService.IHarmonyService,
	utils utils.IUtils,
) *HarmonyHandler {
	return &HarmonyHandler{
		log:            log,
		validator:      validator,
		middleware:     middleware,
		harmonyService: hs,
		utils:          utils,
	}
}

func (h *HarmonyHandler) Start(srv fiber.Router) {
	wsMiddleware := func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}

	harmonyGroup := srv.Group("/harmony")

	harmonyGroup.Use("/ws", wsMiddleware)
	harmonyGroup.Get("/ws", websocket.New(h.handleFrameWebSocket))

	harmonyGroup.Post("/sessions", h.middleware.NewRateLimiter, h.CreateSession)
	harmonyGroup.Post("/sessions/:id/frames", h.middleware.NewRateLimiter, h.ProcessFrame)
	harmonyGroup.Put("/sessions/:id/finalize", h.FinalizeSession)
	harmonyGroup.Get("/sessions/:id", h.GetSession)
	harmonyGroup.Delete("/sessions/:id", h.DeleteSession)

	harmonyGroup.Get("/statistics", h.middleware.NewTokenMiddleware, h.GetStatistics)
}
