package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/student"
	"github.com/trezcool/darasa/core/user"
)

type studentApi struct {
	svc      *student.Service
	userSvc  *user.Service
	validate *validator.Validate
}

func registerStudentAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := studentApi{
		svc:      opts.StudentSvc,
		userSvc:  opts.UserSvc,
		validate: opts.Validate,
	}

	sg := g.Group("/students", jwt)
	sg.POST("", api.create)
	sg.GET("", api.query)

	dg := sg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)

	// tutor assignments are managed by admins
	tg := dg.Group("/tutors/:tutorID", adminMiddleware(opts.UserSvc))
	tg.POST("", api.assignTutor)
	tg.DELETE("", api.unassignTutor)
}

func (api *studentApi) create(ctx echo.Context) error {
	if _, err := getContextUser(ctx, api.userSvc); err != nil {
		return err
	}

	var data student.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	std, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating student")
	}
	return ctx.JSON(http.StatusCreated, std)
}

func (api *studentApi) query(ctx echo.Context) error {
	viewer, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return err
	}

	var filter student.QueryFilter
	if err = ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}

	students, err := api.svc.QueryForViewer(ctx.Request().Context(), viewer, &filter)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *studentApi) retrieve(ctx echo.Context) error {
	viewer, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return err
	}
	id, err := intPathParam(ctx, "id")
	if err != nil {
		return err
	}

	std, err := api.svc.GetForViewer(ctx.Request().Context(), viewer, id)
	if err != nil {
		return errors.Wrap(err, "getting student")
	}
	return ctx.JSON(http.StatusOK, std)
}

func (api *studentApi) update(ctx echo.Context) error {
	if _, err := getContextUser(ctx, api.userSvc); err != nil {
		return err
	}
	id, err := intPathParam(ctx, "id")
	if err != nil {
		return err
	}

	var data student.UpdateStudent
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStudent")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	std, err := api.svc.Update(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating student")
	}
	return ctx.JSON(http.StatusOK, std)
}

func (api *studentApi) destroy(ctx echo.Context) error {
	if _, err := getContextUser(ctx, api.userSvc); err != nil {
		return err
	}
	id, err := intPathParam(ctx, "id")
	if err != nil {
		return err
	}

	if err = api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting student")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *studentApi) assignTutor(ctx echo.Context) error {
	id, err := intPathParam(ctx, "id")
	if err != nil {
		return err
	}
	tutorID, err := intPathParam(ctx, "tutorID")
	if err != nil {
		return err
	}

	if err = api.svc.AssignTutor(ctx.Request().Context(), tutorID, id); err != nil {
		return errors.Wrap(err, "assigning tutor")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *studentApi) unassignTutor(ctx echo.Context) error {
	id, err := intPathParam(ctx, "id")
	if err != nil {
		return err
	}
	tutorID, err := intPathParam(ctx, "tutorID")
	if err != nil {
		return err
	}

	if err = api.svc.UnassignTutor(ctx.Request().Context(), tutorID, id); err != nil {
		return errors.Wrap(err, "unassigning tutor")
	}
	return ctx.NoContent(http.StatusNoContent)
}
