package handler

import "github.com/labstack/echo/v4"

// Semua response sukses dibungkus {success, message, data}.
func SuccessResponse(c echo.Context, code int, message string, data interface{}) error {
	return c.JSON(code, map[string]interface{}{
		"success": true,
		"message": message,
		"data":    data,
	})
}

// Semua response gagal dibungkus {success, error:{message, code, details}}.
func ErrorResponse(c echo.Context, code int, message, errCode, details string) error {
	return c.JSON(code, map[string]interface{}{
		"success": false,
		"error": map[string]interface{}{
			"message": message,
			"code":    errCode,
			"details": details,
		},
	})
}
