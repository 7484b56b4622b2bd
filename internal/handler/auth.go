package handler

import (
	"errors"
	"net/http"

	"gowa-relay/internal/model"
	"gowa-relay/internal/service"

	"github.com/labstack/echo/v4"
)

// GET /auth/qr
// Membuat session kalau belum ada dan mengembalikan pairing challenge yang
// sedang aktif. qrCode null selama belum ada challenge (mis. masih
// connecting, atau sudah connected).
func (h *Handler) GetQR(c echo.Context) error {
	id := sessionID(c)

	s, err := h.Manager.GetOrCreate(id)
	if err != nil {
		return ErrorResponse(c, http.StatusInternalServerError,
			"Failed to create session", "CREATE_SESSION_FAILED", err.Error())
	}

	var qrCode interface{}
	if code := s.QR(); code != "" {
		qrCode = code
	}

	return SuccessResponse(c, http.StatusOK, "QR challenge retrieved", map[string]interface{}{
		"qrCode": qrCode,
		"status": s.Status(),
	})
}

// GET /auth/status
func (h *Handler) GetStatus(c echo.Context) error {
	id := sessionID(c)

	snap, ok := h.Manager.Status(id)
	if !ok {
		// Belum pernah dipakai: laporkan snapshot kosong, jangan buat session.
		return SuccessResponse(c, http.StatusOK, "Status retrieved", service.StatusSnapshot{
			SessionID:  id,
			Status:     model.StatusDisconnected,
			DailyLimit: h.Manager.DailyLimit(id),
		})
	}

	return SuccessResponse(c, http.StatusOK, "Status retrieved", snap)
}

// POST /auth/logout
func (h *Handler) Logout(c echo.Context) error {
	id := sessionID(c)

	if err := h.Manager.Logout(id); err != nil {
		if errors.Is(err, service.ErrLogoutConflict) {
			return ErrorResponse(c, http.StatusBadRequest,
				"No active session", "LOGOUT_CONFLICT", err.Error())
		}
		return ErrorResponse(c, http.StatusInternalServerError,
			"Failed to logout", "LOGOUT_FAILED", err.Error())
	}

	return SuccessResponse(c, http.StatusOK, "Logged out successfully", map[string]interface{}{})
}
