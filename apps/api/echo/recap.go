package echoapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/absensi/core"
	"github.com/trezcool/absensi/core/attendance"
)

type recapApi struct {
	svc      *attendance.Service
	renderer attendance.Renderer
	mailer   core.EmailService
}

func registerRecapAPI(g *echo.Group, svc *attendance.Service, renderer attendance.Renderer, mailer core.EmailService) {
	api := recapApi{svc: svc, renderer: renderer, mailer: mailer}

	rg := g.Group("/recap")
	rg.GET("/graph", api.graph)
	rg.GET("/:period", api.recap)
	rg.GET("/:period/export", api.export)
	rg.POST("/:period/mail", api.mail)
}

func bindRecapQuery(ctx echo.Context) (attendance.RecapQuery, error) {
	var q attendance.RecapQuery
	if err := (&echo.DefaultBinder{}).BindPathParams(ctx, &q); err != nil {
		return q, errors.Wrap(err, "binding to RecapQuery")
	}
	if err := (&echo.DefaultBinder{}).BindQueryParams(ctx, &q); err != nil {
		return q, errors.Wrap(err, "binding to RecapQuery")
	}
	return q, nil
}

func (api *recapApi) recap(ctx echo.Context) error {
	q, err := bindRecapQuery(ctx)
	if err != nil {
		return err
	}
	view, err := api.svc.Recap(ctx.Request().Context(), q)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, view)
}

func (api *recapApi) graph(ctx echo.Context) error {
	var semester int
	if s := ctx.QueryParam("semester"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return core.NewValidationError(nil, core.FieldError{Field: "semester", Error: "semester must be 1 or 2"})
		}
		semester = n
	}
	series, err := api.svc.Chart(ctx.Request().Context(), ctx.QueryParam("kelas"), semester)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, series)
}

func (api *recapApi) export(ctx echo.Context) error {
	q, err := bindRecapQuery(ctx)
	if err != nil {
		return err
	}
	format := ctx.QueryParam("format")
	if format == "" {
		format = "xlsx"
	}
	if format != "xlsx" && format != "pdf" {
		return core.NewValidationError(nil, core.FieldError{Field: "format", Error: "format must be xlsx or pdf"})
	}

	report, err := api.svc.Report(ctx.Request().Context(), q)
	if err != nil {
		return err
	}

	var content []byte
	ct := attendance.ContentTypeXLSX
	if format == "pdf" {
		ct = attendance.ContentTypePDF
		content, err = api.renderer.RenderPDF(report)
	} else {
		content, err = api.renderer.RenderXLSX(report)
	}
	if err != nil {
		return errors.Wrapf(err, "rendering %s", format)
	}
	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", report.FileName(format)))
	return ctx.Blob(http.StatusOK, ct, content)
}

func (api *recapApi) mail(ctx echo.Context) error {
	q, err := bindRecapQuery(ctx)
	if err != nil {
		return err
	}
	var data attendance.MailRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to MailRequest")
	}
	if err = api.svc.MailReport(ctx.Request().Context(), q, data, api.renderer, api.mailer); err != nil {
		return err
	}
	return ctx.JSON(http.StatusAccepted, SuccessResponse{Success: "The recap will be sent shortly."})
}
