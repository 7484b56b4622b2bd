package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// GET /contacts/check/:phoneNumber
func (h *Handler) CheckNumber(c echo.Context) error {
	phone := c.Param("phoneNumber")
	if phone == "" {
		return ErrorResponse(c, http.StatusBadRequest,
			"Path parameter 'phoneNumber' is required", "INVALID_INPUT", "")
	}

	out, err := h.Dispatcher.CheckNumber(c.Request().Context(), sessionID(c), phone)
	if err != nil {
		return dispatchError(c, err)
	}

	return SuccessResponse(c, http.StatusOK, "Number checked", out)
}
