package harmonyHandler

import (
	"StorySignGolang/internal/api/harmony"
	contextPkg "StorySignGolang/pkg/context"
	"StorySignGolang/pkg/handlerUtil"
	jwtPkg "StorySignGolang/pkg/jwt"
	"StorySignGolang/pkg/log"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/net/context"
	"time"
)

func (h *HarmonyHandler) CreateSession(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 5*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	var req harmony.CreateSessionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "parse_request_body")
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	resp, err := h.harmonyService.CreateSession(c, req)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "create_session")
	}

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"session_id": resp.SessionID,
		"path":       ctx.Path(),
	}).Info("Emotion session created")

	return errHandler.HandleSuccess(ctx, fiber.StatusCreated, resp)
}

func (h *HarmonyHandler) FinalizeSession(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)
	sessionID := ctx.Params("id")

	var req harmony.FinalizeSessionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "parse_request_body")
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	snapshot, err := h.harmonyService.FinalizeSession(c, sessionID, req)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "finalize_session")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, snapshot)
	}
}

func (h *HarmonyHandler) GetSession(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 5*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)
	sessionID := ctx.Params("id")

	snapshot, err := h.harmonyService.GetSessionSnapshot(c, sessionID)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "get_session")
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, snapshot)
}

func (h *HarmonyHandler) DeleteSession(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 5*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)
	sessionID := ctx.Params("id")

	deleted := h.harmonyService.DeleteSession(c, sessionID)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"session_id": sessionID,
		"deleted":    deleted,
	}).Info("Emotion session delete requested")

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, harmony.DeleteSessionResponse{
		SessionID: sessionID,
		Deleted:   deleted,
	})
}

func (h *HarmonyHandler) GetStatistics(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 5*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	userID := ctx.Query("user_id")
	if userID == "" {
		if user, err := jwtPkg.GetUserLoginData(ctx); err == nil {
			userID = user.ID
		}
	}

	stats := h.harmonyService.GetUserStatistics(c, userID)

	h.log.WithFields(log.Fields{
		"request_id":     requestID,
		"user_id":        userID,
		"total_sessions": stats.TotalSessions,
	}).Debug("User statistics computed")

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, stats)
}
