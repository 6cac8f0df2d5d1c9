package echoapi

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/client"
	"github.com/trezcool/darasa/core/user"
)

type clientApi struct {
	svc      *client.Service
	userSvc  *user.Service
	validate *validator.Validate
}

func registerClientAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := clientApi{
		svc:      opts.ClientSvc,
		userSvc:  opts.UserSvc,
		validate: opts.Validate,
	}

	cg := g.Group("/clients", jwt)
	cg.POST("", api.create)
	cg.GET("", api.query)

	dg := cg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
}

func intPathParam(ctx echo.Context, name string) (int, error) {
	val, err := strconv.Atoi(ctx.Param(name))
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusUnprocessableEntity, name+" must be an integer")
	}
	return val, nil
}

func (api *clientApi) create(ctx echo.Context) error {
	if _, err := getContextUser(ctx, api.userSvc); err != nil {
		return err
	}

	var data client.NewClient
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewClient")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	cli, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating client")
	}
	return ctx.JSON(http.StatusCreated, cli)
}

func (api *clientApi) query(ctx echo.Context) error {
	if _, err := getContextUser(ctx, api.userSvc); err != nil {
		return err
	}

	clients, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying clients")
	}
	return ctx.JSON(http.StatusOK, clients)
}

func (api *clientApi) retrieve(ctx echo.Context) error {
	if _, err := getContextUser(ctx, api.userSvc); err != nil {
		return err
	}
	id, err := intPathParam(ctx, "id")
	if err != nil {
		return err
	}

	cli, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "getting client")
	}
	return ctx.JSON(http.StatusOK, cli)
}

func (api *clientApi) update(ctx echo.Context) error {
	if _, err := getContextUser(ctx, api.userSvc); err != nil {
		return err
	}
	id, err := intPathParam(ctx, "id")
	if err != nil {
		return err
	}

	var data client.UpdateClient
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateClient")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	cli, err := api.svc.Update(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating client")
	}
	return ctx.JSON(http.StatusOK, cli)
}

func (api *clientApi) destroy(ctx echo.Context) error {
	if _, err := getContextUser(ctx, api.userSvc); err != nil {
		return err
	}
	id, err := intPathParam(ctx, "id")
	if err != nil {
		return err
	}

	if err = api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting client")
	}
	return ctx.NoContent(http.StatusNoContent)
}
