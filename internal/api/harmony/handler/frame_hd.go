package harmonyHandler

import (
	"StorySignGolang/internal/api/harmony"
	contextPkg "StorySignGolang/pkg/context"
	"StorySignGolang/pkg/handlerUtil"
	"StorySignGolang/pkg/log"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"golang.org/x/net/context"
	"time"
)

// ProcessFrame accepts either a multipart image upload or a JSON body with a
// base64 frame_data payload.
func (h *HarmonyHandler) ProcessFrame(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)
	sessionID := ctx.Params("id")

	var frameData string

	file, err := ctx.FormFile("frame")
	if err == nil {
		if err := h.utils.ValidateImageFile(file); err != nil {
			return errHandler.Handle(ctx, requestID, err, ctx.Path(), "validate_image_file")
		}

		fileContent, err := file.Open()
		if err != nil {
			return errHandler.Handle(ctx, requestID, err, ctx.Path(), "open_file")
		}
		defer fileContent.Close()

		frameData, err = h.utils.ConvertFileToBase64(fileContent)
		if err != nil {
			return errHandler.Handle(ctx, requestID, err, ctx.Path(), "convert_to_base64")
		}
	} else {
		var req harmony.ProcessFrameRequest
		if err := ctx.BodyParser(&req); err != nil {
			return errHandler.Handle(ctx, requestID, err, ctx.Path(), "parse_request_body")
		}
		frameData = req.FrameData
	}

	result := h.harmonyService.ProcessFrame(c, sessionID, frameData)

	if !result.Success {
		h.log.WithFields(log.Fields{
			"request_id": requestID,
			"session_id": sessionID,
			"error":      result.Error,
		}).Debug("Frame processing failed")
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, result)
}

// handleFrameWebSocket is the live practice stream: the client sends JSON
// {session_id, frame_data} messages and receives one FrameResult per frame.
func (h *HarmonyHandler) handleFrameWebSocket(c *websocket.Conn) {
	h.log.Info("Harmony practice WebSocket client connected")
	defer h.log.Info("Harmony practice WebSocket client disconnected")

	c.SetPingHandler(func(data string) error {
		if err := c.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(5*time.Second)); err != nil {
			h.log.Errorf("Error sending pong: %v", err)
		}
		return nil
	})

	maxReadTimeout := 60 * time.Second

	for {
		if err := c.SetReadDeadline(time.Now().Add(maxReadTimeout)); err != nil {
			h.log.Errorf("Error setting read deadline: %v", err)
			break
		}

		var msg harmony.WSFrameMessage
		if err := c.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.log.Errorf("Harmony WebSocket error: %v", err)
			} else {
				h.log.Info("Harmony WebSocket connection closed")
			}
			break
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		result := h.harmonyService.ProcessFrame(ctx, msg.SessionID, msg.FrameData)
		cancel()

		if err := c.SetWriteDeadline(time.Now().Add(10 * time.Second)); err != nil {
			h.log.Errorf("Error setting write deadline: %v", err)
			break
		}

		if err := c.WriteJSON(result); err != nil {
			h.log.Errorf("Error writing frame result: %v", err)
			break
		}

		if err := c.SetWriteDeadline(time.Time{}); err != nil {
			h.log.Errorf("Error resetting write deadline: %v", err)
			break
		}
	}
}
