package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/nexuslms/nexus/core"
	"github.com/nexuslms/nexus/core/batch"
	"github.com/nexuslms/nexus/core/user"
)

type batchApi struct {
	deps *ServerDeps
}

func registerBatchAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *ServerDeps) {
	api := batchApi{deps: deps}

	bg := g.Group("/batches", jwt)
	bg.GET("", api.query)
	bg.GET("/:id", api.retrieve)

	// admin endpoints
	bg.POST("", api.create, roleMiddleware(user.RoleAdmin))
	bg.PUT("/:id", api.update, roleMiddleware(user.RoleAdmin))
	bg.DELETE("/:id", api.destroy, roleMiddleware(user.RoleAdmin))
}

// Handlers

// query lists the batches visible to the caller: all of them for an admin,
// the ones they run for an instructor, the ones they are enrolled in for a student.
func (api *batchApi) query(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var batches []batch.Batch
	switch {
	case claims.IsAdmin:
		batches, err = api.deps.BatchSvc.QueryAll(ctx.Request().Context())
	case claims.IsInstructor:
		batches, err = api.deps.BatchSvc.QueryByInstructor(ctx.Request().Context(), claims.Subject)
	default:
		batches, err = api.deps.BatchSvc.QueryByStudent(ctx.Request().Context(), claims.Subject)
	}
	if err != nil {
		return errors.Wrap(err, "querying batches")
	}
	if batches == nil {
		batches = []batch.Batch{}
	}
	return ctx.JSON(http.StatusOK, batches)
}

func (api *batchApi) retrieve(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	b, err := api.deps.BatchSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == core.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding batch by ID")
	}
	if !batchVisible(claims, b) {
		return errHttpNotFound
	}
	return ctx.JSON(http.StatusOK, b)
}

func (api *batchApi) create(ctx echo.Context) error {
	var data batch.NewBatch
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewBatch")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	b, err := api.deps.BatchSvc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating batch")
	}
	return ctx.JSON(http.StatusCreated, b)
}

func (api *batchApi) update(ctx echo.Context) error {
	var data batch.UpdateBatch
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateBatch")
	}

	orig, err := api.deps.BatchSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == core.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding batch by ID")
	}
	if err := data.Validate(orig, api.deps.Validate); err != nil {
		return err
	}

	b, err := api.deps.BatchSvc.Update(ctx.Request().Context(), orig.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating batch")
	}
	return ctx.JSON(http.StatusOK, b)
}

func (api *batchApi) destroy(ctx echo.Context) error {
	if err := api.deps.BatchSvc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting batch")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func batchVisible(claims Claims, b batch.Batch) bool {
	switch {
	case claims.IsAdmin:
		return true
	case claims.IsInstructor:
		return b.InstructorID.Valid && b.InstructorID.String == claims.Subject
	default:
		return b.HasStudent(claims.Subject)
	}
}
