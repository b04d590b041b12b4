package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/absensi/core"
)

type (
	SuccessResponse struct {
		Success string `json:"success"`
	}

	// WriteResponse reports whether the remote endpoint confirmed a write.
	WriteResponse struct {
		Delivery core.Delivery `json:"delivery"`
		Count    int           `json:"count,omitempty"`
	}

	SessionResponse struct {
		ID string `json:"id"`
	}
)

// writeResult answers 202 when the write was only sent, 200 when it was confirmed.
func writeResult(ctx echo.Context, res WriteResponse) error {
	code := http.StatusOK
	if res.Delivery == core.DeliveryUnconfirmed {
		code = http.StatusAccepted
	}
	return ctx.JSON(code, res)
}
