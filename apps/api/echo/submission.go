package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/nexuslms/nexus/core"
	"github.com/nexuslms/nexus/core/submission"
	"github.com/nexuslms/nexus/core/user"
)

type submissionApi struct {
	deps *ServerDeps
}

func registerSubmissionAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *ServerDeps) {
	api := submissionApi{deps: deps}

	sg := g.Group("/submissions", jwt)
	sg.GET("", api.query)
	sg.GET("/:id", api.retrieve)

	sg.POST("", api.create, roleMiddleware(user.RoleStudent))

	// grading endpoints
	gg := sg.Group("/:id", roleMiddleware(user.RoleAdmin, user.RoleInstructor))
	gg.PUT("/grade", api.grade)
	gg.POST("/feedback", api.suggestFeedback)
}

// Handlers

func (api *submissionApi) create(ctx echo.Context) error {
	var data submission.NewSubmission
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubmission")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	sub, err := api.deps.SubmissionSvc.Submit(ctx.Request().Context(), claims.Subject, data)
	if err != nil {
		return errors.Wrap(err, "submitting")
	}
	return ctx.JSON(http.StatusCreated, sub)
}

// query lists submissions visible to the caller. Students only ever see their
// own; instructors and admins may filter by assignment.
func (api *submissionApi) query(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var subs []submission.Submission
	switch {
	case claims.IsStudent:
		subs, err = api.deps.SubmissionSvc.QueryByStudent(ctx.Request().Context(), claims.Subject)
	default:
		if assignID := ctx.QueryParam("assignment_id"); assignID != "" {
			if err := api.checkAssignmentOwnership(ctx, claims, assignID); err != nil {
				return err
			}
			subs, err = api.deps.SubmissionSvc.QueryByAssignment(ctx.Request().Context(), assignID)
		} else if claims.IsAdmin {
			subs, err = api.deps.SubmissionSvc.QueryAll(ctx.Request().Context())
		} else {
			subs, err = api.queryForInstructor(ctx, claims.Subject)
		}
	}
	if err != nil {
		return errors.Wrap(err, "querying submissions")
	}
	if subs == nil {
		subs = []submission.Submission{}
	}
	return ctx.JSON(http.StatusOK, subs)
}

func (api *submissionApi) retrieve(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	sub, err := api.deps.SubmissionSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == core.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding submission by ID")
	}

	if claims.IsStudent && sub.StudentID != claims.Subject {
		return errHttpNotFound
	}
	if claims.IsInstructor {
		if err := api.checkAssignmentOwnership(ctx, claims, sub.AssignmentID); err != nil {
			return err
		}
	}
	return ctx.JSON(http.StatusOK, sub)
}

func (api *submissionApi) grade(ctx echo.Context) error {
	var data submission.GradeSubmission
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to GradeSubmission")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	sub, err := api.deps.SubmissionSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == core.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding submission by ID")
	}
	if err := api.checkAssignmentOwnership(ctx, claims, sub.AssignmentID); err != nil {
		return err
	}

	sub, err = api.deps.SubmissionSvc.Grade(ctx.Request().Context(), sub.ID, data)
	if err != nil {
		return errors.Wrap(err, "grading submission")
	}
	return ctx.JSON(http.StatusOK, sub)
}

func (api *submissionApi) suggestFeedback(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	sub, err := api.deps.SubmissionSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == core.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding submission by ID")
	}
	if err := api.checkAssignmentOwnership(ctx, claims, sub.AssignmentID); err != nil {
		return err
	}

	suggestion, err := api.deps.SubmissionSvc.SuggestFeedback(ctx.Request().Context(), sub.ID)
	if err != nil {
		return errors.Wrap(err, "suggesting feedback")
	}
	return ctx.JSON(http.StatusOK, FeedbackResponse{Suggestion: suggestion})
}

func (api *submissionApi) queryForInstructor(ctx echo.Context, instructorID string) ([]submission.Submission, error) {
	assigns, err := api.deps.AssignmentSvc.QueryForInstructor(ctx.Request().Context(), instructorID)
	if err != nil {
		return nil, errors.Wrap(err, "querying instructor assignments")
	}

	var subs []submission.Submission
	for _, assign := range assigns {
		res, err := api.deps.SubmissionSvc.QueryByAssignment(ctx.Request().Context(), assign.ID)
		if err != nil {
			return nil, errors.Wrap(err, "querying submissions by assignment")
		}
		subs = append(subs, res...)
	}
	return subs, nil
}

// checkAssignmentOwnership rejects instructors acting on a submission whose
// assignment belongs to a batch they do not run. Admins pass through.
func (api *submissionApi) checkAssignmentOwnership(ctx echo.Context, claims Claims, assignmentID string) error {
	if claims.IsAdmin {
		return nil
	}

	assign, err := api.deps.AssignmentSvc.GetByID(ctx.Request().Context(), assignmentID)
	if err != nil {
		if errors.Cause(err) == core.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding assignment by ID")
	}
	b, err := api.deps.BatchSvc.GetByID(ctx.Request().Context(), assign.BatchID)
	if err != nil {
		if errors.Cause(err) == core.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding batch by ID")
	}
	if !b.InstructorID.Valid || b.InstructorID.String != claims.Subject {
		return errHttpForbidden
	}
	return nil
}

type FeedbackResponse struct {
	Suggestion string `json:"suggestion"`
}
