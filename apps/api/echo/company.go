package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/company"
)

type companyApi struct {
	svc      *company.Service
	validate *validator.Validate
}

func registerCompanyAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := companyApi{
		svc:      opts.CompanySvc,
		validate: opts.Validate,
	}

	// company management is admin-only
	cg := g.Group("/companies", jwt, adminMiddleware(opts.UserSvc))
	cg.POST("", api.create)
	cg.GET("", api.query)

	dg := cg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
}

func (api *companyApi) create(ctx echo.Context) error {
	var data company.NewCompany
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCompany")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	co, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating company")
	}
	return ctx.JSON(http.StatusCreated, co)
}

func (api *companyApi) query(ctx echo.Context) error {
	companies, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying companies")
	}
	return ctx.JSON(http.StatusOK, companies)
}

func (api *companyApi) retrieve(ctx echo.Context) error {
	id, err := intPathParam(ctx, "id")
	if err != nil {
		return err
	}

	co, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "getting company")
	}
	return ctx.JSON(http.StatusOK, co)
}

func (api *companyApi) update(ctx echo.Context) error {
	id, err := intPathParam(ctx, "id")
	if err != nil {
		return err
	}

	var data company.UpdateCompany
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCompany")
	}

	co, err := api.svc.Update(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating company")
	}
	return ctx.JSON(http.StatusOK, co)
}

func (api *companyApi) destroy(ctx echo.Context) error {
	id, err := intPathParam(ctx, "id")
	if err != nil {
		return err
	}

	if err = api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting company")
	}
	return ctx.NoContent(http.StatusNoContent)
}
