package echoapi

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	logsvc "github.com/trezcool/absensi/services/logger"
)

const requestIDKey = "request_id"

// requestIDMiddleware tags every request with an id, reusing the one sent by the client.
func requestIDMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			id := ctx.Request().Header.Get(echo.HeaderXRequestID)
			if id == "" {
				id = uuid.NewString()
			}
			ctx.Set(requestIDKey, id)
			ctx.Response().Header().Set(echo.HeaderXRequestID, id)
			return next(ctx)
		}
	}
}

func requestInfo(ctx echo.Context) logsvc.RequestInfo {
	id, _ := ctx.Get(requestIDKey).(string)
	return logsvc.RequestInfo{ID: id, Method: ctx.Request().Method, Path: ctx.Path()}
}
