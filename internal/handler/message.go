package handler

import (
	"net/http"

	"gowa-relay/internal/service"

	"github.com/labstack/echo/v4"
)

type SendMessageRequest struct {
	To      string                 `json:"to"`
	Message string                 `json:"message"`
	Options map[string]interface{} `json:"options,omitempty"`
}

type SendBulkRequest struct {
	Messages []service.BulkMessage `json:"messages"`
}

type SendMediaRequest struct {
	To          string `json:"to"`
	ImageURL    string `json:"imageUrl,omitempty"`
	ImageBase64 string `json:"imageBase64,omitempty"`
	Caption     string `json:"caption,omitempty"`
}

// POST /messages/send
func (h *Handler) SendMessage(c echo.Context) error {
	var req SendMessageRequest
	if err := c.Bind(&req); err != nil {
		return ErrorResponse(c, http.StatusBadRequest,
			"Invalid request body", "INVALID_INPUT", err.Error())
	}

	if req.To == "" || req.Message == "" {
		return ErrorResponse(c, http.StatusBadRequest,
			"Field 'to' and 'message' are required", "INVALID_INPUT", "")
	}

	out, err := h.Dispatcher.Send(c.Request().Context(), sessionID(c), req.To, req.Message, req.Options)
	if err != nil {
		return dispatchError(c, err)
	}

	return SuccessResponse(c, http.StatusOK, "Message sent successfully", map[string]interface{}{
		"messageId": out.MessageID,
		"timestamp": out.Timestamp.Unix(),
		"to":        out.To,
	})
}

// POST /messages/bulk
func (h *Handler) SendBulk(c echo.Context) error {
	var req SendBulkRequest
	if err := c.Bind(&req); err != nil {
		return ErrorResponse(c, http.StatusBadRequest,
			"Invalid request body", "INVALID_INPUT", err.Error())
	}

	results, err := h.Dispatcher.SendBulk(c.Request().Context(), sessionID(c), req.Messages)
	if err != nil {
		return dispatchError(c, err)
	}

	success := 0
	for _, r := range results {
		if r.Success {
			success++
		}
	}

	return SuccessResponse(c, http.StatusOK, "Bulk send processed", map[string]interface{}{
		"results": results,
		"summary": map[string]int{
			"total":   len(results),
			"success": success,
			"failed":  len(results) - success,
		},
	})
}

// POST /messages/media
func (h *Handler) SendMedia(c echo.Context) error {
	var req SendMediaRequest
	if err := c.Bind(&req); err != nil {
		return ErrorResponse(c, http.StatusBadRequest,
			"Invalid request body", "INVALID_INPUT", err.Error())
	}

	if req.To == "" {
		return ErrorResponse(c, http.StatusBadRequest,
			"Field 'to' is required", "INVALID_INPUT", "")
	}

	out, err := h.Dispatcher.SendImage(c.Request().Context(), sessionID(c),
		req.To, req.ImageURL, req.ImageBase64, req.Caption)
	if err != nil {
		return dispatchError(c, err)
	}

	return SuccessResponse(c, http.StatusOK, "Media sent successfully", map[string]interface{}{
		"messageId": out.MessageID,
		"timestamp": out.Timestamp.Unix(),
		"to":        out.To,
	})
}

// dispatchError maps dispatcher errors to the response envelope.
func dispatchError(c echo.Context, err error) error {
	status := service.HTTPStatus(err)
	code := service.ErrorCode(err)

	message := "Failed to send message"
	switch code {
	case "INVALID_RECIPIENT":
		message = "Invalid phone number"
	case "INVALID_INPUT":
		message = "Invalid request"
	case "NOT_CONNECTED":
		message = "Session is not connected"
	case "RATE_LIMIT_EXCEEDED":
		message = "Daily send limit reached"
	}

	return ErrorResponse(c, status, message, code, err.Error())
}
