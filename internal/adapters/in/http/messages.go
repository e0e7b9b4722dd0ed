package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// SendMessageRequest is the body of POST /api/v1/messages.
type SendMessageRequest struct {
	RecipientID string `json:"recipientId"`
	Message     string `json:"message"`
}

// SendMessage handles POST /api/v1/messages. The message is relayed to
// subscribers of the conversation and not stored.
func (s *Server) SendMessage(ctx echo.Context) error {
	var req SendMessageRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	event, err := s.notifier.PublishMessage(actorOf(ctx).ID().String(), req.RecipientID, req.Message)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusAccepted, event)
}
