package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/absensi/core/attendance"
)

type attendanceApi struct {
	svc *attendance.Service
}

type clearRequest struct {
	SheetName string `json:"sheetName" query:"sheetName"`
}

func registerAttendanceAPI(g *echo.Group, svc *attendance.Service) {
	api := attendanceApi{svc: svc}

	g.GET("/school", api.school)
	g.GET("/classes", api.classes)
	g.DELETE("/data", api.deleteAllData)

	ag := g.Group("/attendance")
	ag.GET("/sheet", api.sheet)
	ag.PUT("/draft", api.saveDraft)
	ag.POST("", api.submit)
	ag.DELETE("", api.clear)
}

func (api *attendanceApi) school(ctx echo.Context) error {
	info, err := api.svc.School(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "getting school info")
	}
	return ctx.JSON(http.StatusOK, info)
}

func (api *attendanceApi) classes(ctx echo.Context) error {
	classes, err := api.svc.Classes(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, classes)
}

func (api *attendanceApi) sheet(ctx echo.Context) error {
	sheet, err := api.svc.Sheet(ctx.Request().Context(), ctx.QueryParam("tanggal"), ctx.QueryParam("kelas"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sheet)
}

func (api *attendanceApi) saveDraft(ctx echo.Context) error {
	var data attendance.Submission
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Submission")
	}
	if err := api.svc.SaveDraft(ctx.Request().Context(), data); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Draft saved."})
}

func (api *attendanceApi) submit(ctx echo.Context) error {
	var data attendance.Submission
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Submission")
	}
	dlv, err := api.svc.SubmitAttendance(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return writeResult(ctx, WriteResponse{Delivery: dlv, Count: len(data.Entries)})
}

func (api *attendanceApi) clear(ctx echo.Context) error {
	var data clearRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to clearRequest")
	}
	dlv, err := api.svc.ClearAttendance(ctx.Request().Context(), data.SheetName)
	if err != nil {
		return err
	}
	return writeResult(ctx, WriteResponse{Delivery: dlv})
}

func (api *attendanceApi) deleteAllData(ctx echo.Context) error {
	dlv, err := api.svc.DeleteAllData(ctx.Request().Context())
	if err != nil {
		return err
	}
	return writeResult(ctx, WriteResponse{Delivery: dlv})
}
