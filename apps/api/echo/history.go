package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/absensi/core/attendance"
)

type historyApi struct {
	svc *attendance.Service
}

func registerHistoryAPI(g *echo.Group, svc *attendance.Service) {
	api := historyApi{svc: svc}

	hg := g.Group("/history")
	hg.GET("", api.query)
	hg.POST("/sessions", api.createSession)

	sg := hg.Group("/sessions/:id")
	sg.DELETE("", api.dropSession)
	sg.PUT("/edits", api.setEdit)
	sg.DELETE("/edits", api.discardEdits)
	sg.POST("/commit", api.commit)
}

func (api *historyApi) query(ctx echo.Context) error {
	var q attendance.HistoryQuery
	if err := ctx.Bind(&q); err != nil {
		return errors.Wrap(err, "binding to HistoryQuery")
	}
	view, err := api.svc.History(ctx.Request().Context(), q)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, view)
}

func (api *historyApi) createSession(ctx echo.Context) error {
	return ctx.JSON(http.StatusCreated, SessionResponse{ID: api.svc.Sessions().Create()})
}

func (api *historyApi) dropSession(ctx echo.Context) error {
	if err := api.svc.Sessions().Drop(ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *historyApi) setEdit(ctx echo.Context) error {
	var data attendance.EditRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to EditRequest")
	}
	pending, err := api.svc.SetEdit(ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, pending)
}

func (api *historyApi) discardEdits(ctx echo.Context) error {
	if err := api.svc.DiscardEdits(ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *historyApi) commit(ctx echo.Context) error {
	res, err := api.svc.Commit(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, res)
}
