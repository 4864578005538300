package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/nexuslms/nexus/core"
	"github.com/nexuslms/nexus/core/assignment"
	"github.com/nexuslms/nexus/core/user"
)

type assignmentApi struct {
	deps *ServerDeps
}

func registerAssignmentAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *ServerDeps) {
	api := assignmentApi{deps: deps}

	ag := g.Group("/assignments", jwt)
	ag.GET("", api.query)
	ag.GET("/:id", api.retrieve)

	// instructors author assignments for their own batches
	authorRoles := roleMiddleware(user.RoleAdmin, user.RoleInstructor)
	ag.POST("", api.create, authorRoles)
	ag.PUT("/:id", api.update, authorRoles)
	ag.DELETE("/:id", api.destroy, authorRoles)
}

// Handlers

// query lists assignments visible to the caller. Students only see published
// assignments of batches they are enrolled in.
func (api *assignmentApi) query(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var assigns []assignment.Assignment
	switch {
	case claims.IsAdmin:
		assigns, err = api.deps.AssignmentSvc.QueryAll(ctx.Request().Context())
	case claims.IsInstructor:
		assigns, err = api.deps.AssignmentSvc.QueryForInstructor(ctx.Request().Context(), claims.Subject)
	default:
		assigns, err = api.deps.AssignmentSvc.QueryForStudent(ctx.Request().Context(), claims.Subject)
	}
	if err != nil {
		return errors.Wrap(err, "querying assignments")
	}
	if assigns == nil {
		assigns = []assignment.Assignment{}
	}
	return ctx.JSON(http.StatusOK, assigns)
}

func (api *assignmentApi) retrieve(ctx echo.Context) error {
	assign, err := api.deps.AssignmentSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == core.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding assignment by ID")
	}
	return ctx.JSON(http.StatusOK, assign)
}

func (api *assignmentApi) create(ctx echo.Context) error {
	var data assignment.NewAssignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAssignment")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}
	if err := api.checkBatchOwnership(ctx, data.BatchID); err != nil {
		return err
	}

	assign, err := api.deps.AssignmentSvc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating assignment")
	}
	return ctx.JSON(http.StatusCreated, assign)
}

func (api *assignmentApi) update(ctx echo.Context) error {
	var data assignment.UpdateAssignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateAssignment")
	}

	orig, err := api.deps.AssignmentSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == core.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding assignment by ID")
	}
	if err := data.Validate(orig, api.deps.Validate); err != nil {
		return err
	}
	if err := api.checkBatchOwnership(ctx, orig.BatchID); err != nil {
		return err
	}

	assign, err := api.deps.AssignmentSvc.Update(ctx.Request().Context(), orig.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating assignment")
	}
	return ctx.JSON(http.StatusOK, assign)
}

func (api *assignmentApi) destroy(ctx echo.Context) error {
	assign, err := api.deps.AssignmentSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == core.ErrNotFound {
			return ctx.NoContent(http.StatusNoContent)
		}
		return errors.Wrap(err, "finding assignment by ID")
	}
	if err := api.checkBatchOwnership(ctx, assign.BatchID); err != nil {
		return err
	}

	if err := api.deps.AssignmentSvc.Delete(ctx.Request().Context(), assign.ID); err != nil {
		return errors.Wrap(err, "deleting assignment")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// checkBatchOwnership rejects instructors acting on a batch they do not run.
// Admins pass through.
func (api *assignmentApi) checkBatchOwnership(ctx echo.Context, batchID string) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	if claims.IsAdmin {
		return nil
	}

	b, err := api.deps.BatchSvc.GetByID(ctx.Request().Context(), batchID)
	if err != nil {
		if errors.Cause(err) == core.ErrNotFound {
			return core.NewValidationError(nil, core.FieldError{Field: "batch_id", Error: "batch not found"})
		}
		return errors.Wrap(err, "finding batch by ID")
	}
	if !b.InstructorID.Valid || b.InstructorID.String != claims.Subject {
		return errHttpForbidden
	}
	return nil
}
