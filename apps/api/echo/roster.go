package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/absensi/core"
	"github.com/trezcool/absensi/core/roster"
	exportsvc "github.com/trezcool/absensi/services/export"
)

// maxImportSize caps the size of uploaded roster files.
const maxImportSize = 5 << 20

type rosterApi struct {
	svc      roster.ServiceInterface
	validate *validator.Validate
}

func registerRosterAPI(g *echo.Group, svc roster.ServiceInterface, validate *validator.Validate) {
	api := rosterApi{svc: svc, validate: validate}

	sg := g.Group("/students")
	sg.GET("", api.query)
	sg.POST("", api.create)
	sg.POST("/bulk", api.bulkCreate)
	sg.POST("/import", api.importFile)
	sg.GET("/:nisn", api.retrieve)
	sg.PUT("/:nisn", api.update)
	sg.DELETE("/:nisn", api.destroy)
}

func (api *rosterApi) query(ctx echo.Context) error {
	var filter roster.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	students, err := api.svc.Filter(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "filtering students")
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *rosterApi) retrieve(ctx echo.Context) error {
	s, err := api.svc.GetByNISN(ctx.Request().Context(), ctx.Param("nisn"))
	if err != nil {
		return errors.Wrap(err, "getting student")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *rosterApi) create(ctx echo.Context) error {
	var data roster.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	dlv, err := api.svc.Add(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return writeResult(ctx, WriteResponse{Delivery: dlv})
}

func (api *rosterApi) bulkCreate(ctx echo.Context) error {
	var data roster.BulkStudents
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to BulkStudents")
	}
	return api.bulkAdd(ctx, data)
}

func (api *rosterApi) bulkAdd(ctx echo.Context, data roster.BulkStudents) error {
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	n, dlv, err := api.svc.BulkAdd(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return writeResult(ctx, WriteResponse{Delivery: dlv, Count: n})
}

func (api *rosterApi) importFile(ctx echo.Context) error {
	fh, err := ctx.FormFile("file")
	if err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: "file", Error: "an xlsx file is required"})
	}
	if fh.Size > maxImportSize {
		return core.NewValidationError(nil, core.FieldError{Field: "file", Error: "the file is too large"})
	}
	f, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening uploaded file")
	}
	defer func() { _ = f.Close() }()

	data, err := exportsvc.ParseRoster(f, ctx.FormValue("kelas"))
	if err != nil {
		return err
	}
	return api.bulkAdd(ctx, data)
}

func (api *rosterApi) update(ctx echo.Context) error {
	var data roster.UpdateStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStudent")
	}
	data.OldNISN = ctx.Param("nisn")
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	dlv, err := api.svc.Update(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return writeResult(ctx, WriteResponse{Delivery: dlv})
}

func (api *rosterApi) destroy(ctx echo.Context) error {
	dlv, err := api.svc.Delete(ctx.Request().Context(), ctx.Param("nisn"))
	if err != nil {
		return err
	}
	return writeResult(ctx, WriteResponse{Delivery: dlv})
}
