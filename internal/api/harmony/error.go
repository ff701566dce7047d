package harmony

import (
	"StorySignGolang/pkg/response"
	"errors"
	"net/http"
)

var (
	ErrInternalServerError = response.NewError(http.StatusInternalServerError, "internal server error")
	ErrBadRequest          = response.NewError(http.StatusBadRequest, "bad request")

	ErrSessionNotFound      = errors.New("emotion session not found")
	ErrInvalidTargetEmotion = errors.New("invalid target emotion")
	ErrInvalidDifficulty    = errors.New("invalid difficulty level")
	ErrFinalizeMismatch     = errors.New("detected emotions and confidence scores length mismatch")
)
