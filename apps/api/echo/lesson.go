package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/lesson"
	"github.com/trezcool/darasa/core/user"
)

type lessonApi struct {
	svc      *lesson.Service
	userSvc  *user.Service
	validate *validator.Validate
}

func registerLessonAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := lessonApi{
		svc:      opts.LessonSvc,
		userSvc:  opts.UserSvc,
		validate: opts.Validate,
	}

	lg := g.Group("/lessons", jwt)
	lg.POST("", api.create)
	lg.GET("", api.query)
	lg.GET("/student/:id", api.queryForStudent)

	dg := lg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
	dg.POST("/eurus-space", api.createSpace)
}

func (api *lessonApi) create(ctx echo.Context) error {
	viewer, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return err
	}

	var data lesson.NewLesson
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewLesson")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	lsn, err := api.svc.Create(ctx.Request().Context(), viewer, data)
	if err != nil {
		return errors.Wrap(err, "creating lesson")
	}
	return ctx.JSON(http.StatusCreated, lsn)
}

func (api *lessonApi) query(ctx echo.Context) error {
	viewer, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return err
	}

	var filter lesson.QueryFilter
	if err = ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}

	lessons, err := api.svc.QueryForViewer(ctx.Request().Context(), viewer, &filter)
	if err != nil {
		return errors.Wrap(err, "querying lessons")
	}
	return ctx.JSON(http.StatusOK, lessons)
}

func (api *lessonApi) queryForStudent(ctx echo.Context) error {
	viewer, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return err
	}
	id, err := intPathParam(ctx, "id")
	if err != nil {
		return err
	}

	lessons, err := api.svc.QueryForStudent(ctx.Request().Context(), viewer, id)
	if err != nil {
		return errors.Wrap(err, "querying student lessons")
	}
	return ctx.JSON(http.StatusOK, lessons)
}

func (api *lessonApi) retrieve(ctx echo.Context) error {
	viewer, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return err
	}
	id, err := intPathParam(ctx, "id")
	if err != nil {
		return err
	}

	lsn, err := api.svc.GetForViewer(ctx.Request().Context(), viewer, id)
	if err != nil {
		return errors.Wrap(err, "getting lesson")
	}
	return ctx.JSON(http.StatusOK, lsn)
}

func (api *lessonApi) update(ctx echo.Context) error {
	viewer, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return err
	}
	id, err := intPathParam(ctx, "id")
	if err != nil {
		return err
	}

	var data lesson.UpdateLesson
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateLesson")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	lsn, err := api.svc.Update(ctx.Request().Context(), viewer, id, data)
	if err != nil {
		return errors.Wrap(err, "updating lesson")
	}
	return ctx.JSON(http.StatusOK, lsn)
}

func (api *lessonApi) destroy(ctx echo.Context) error {
	viewer, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return err
	}
	id, err := intPathParam(ctx, "id")
	if err != nil {
		return err
	}

	if err = api.svc.Delete(ctx.Request().Context(), viewer, id); err != nil {
		return errors.Wrap(err, "deleting lesson")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *lessonApi) createSpace(ctx echo.Context) error {
	viewer, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return err
	}
	id, err := intPathParam(ctx, "id")
	if err != nil {
		return err
	}

	space, err := api.svc.CreateSpace(ctx.Request().Context(), viewer, id)
	if err != nil {
		return errors.Wrap(err, "creating Eurus space")
	}
	return ctx.JSONBlob(http.StatusCreated, space)
}
