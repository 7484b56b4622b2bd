package handler

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
)

type WebhookConfigRequest struct {
	URL    string `json:"url"`
	Secret string `json:"secret,omitempty"`
}

// POST /webhook/config
func (h *Handler) SetWebhookConfig(c echo.Context) error {
	var req WebhookConfigRequest
	if err := c.Bind(&req); err != nil {
		return ErrorResponse(c, http.StatusBadRequest,
			"Invalid request body", "INVALID_INPUT", err.Error())
	}

	// URL kosong berarti matikan webhook untuk tenant ini.
	if req.URL != "" {
		parsed, err := url.Parse(req.URL)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
			return ErrorResponse(c, http.StatusBadRequest,
				"Webhook URL must be a valid http(s) URL", "INVALID_INPUT", req.URL)
		}
	}

	id := sessionID(c)
	if err := h.Instances.Ensure(id); err != nil {
		return ErrorResponse(c, http.StatusInternalServerError,
			"Failed to save webhook config", "INTERNAL_ERROR", err.Error())
	}
	if err := h.Instances.SetWebhook(id, req.URL, req.Secret); err != nil {
		return ErrorResponse(c, http.StatusInternalServerError,
			"Failed to save webhook config", "INTERNAL_ERROR", err.Error())
	}

	return SuccessResponse(c, http.StatusOK, "Webhook config saved", map[string]interface{}{
		"url": req.URL,
	})
}
