package submission

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/nexuslms/nexus/core"
)

// Statuses
const (
	StatusPending = "PENDING"
	StatusGraded  = "GRADED"
)

// Submission is a student's answer to an assignment. There is at most one
// per (assignment, student) pair: resubmitting replaces the content and
// resets any prior grade, preserving the original identifier.
type Submission struct {
	ID           string      `json:"id"`
	AssignmentID string      `json:"assignment_id"`
	StudentID    string      `json:"student_id"`
	Content      string      `json:"content"` // free text or a link
	SubmittedAt  time.Time   `json:"submitted_at"` // UTC
	Status       string      `json:"status"`
	Grade        null.Int    `json:"grade"`
	Feedback     null.String `json:"feedback"`
}

func (s *Submission) IsGraded() bool { return s.Status == StatusGraded }

// NewSubmission contains information needed to submit work for an assignment.
type NewSubmission struct {
	AssignmentID string `json:"assignment_id" validate:"required"`
	Content      string `json:"content" validate:"required"`
}

func (ns *NewSubmission) Validate(validate *validator.Validate) error {
	ns.Content = core.CleanString(ns.Content)
	return validate.Struct(ns)
}

// GradeSubmission defines the grading input. The ceiling against the
// assignment's max score is checked before any store mutation.
type GradeSubmission struct {
	Grade    *int   `json:"grade" validate:"required,gte=0"`
	Feedback string `json:"feedback"`
}

func (gs *GradeSubmission) Validate(validate *validator.Validate) error {
	return validate.Struct(gs)
}

// CheckMaxScore enforces the grade ceiling for the owning assignment.
func (gs *GradeSubmission) CheckMaxScore(maxScore int) error {
	if gs.Grade != nil && *gs.Grade > maxScore {
		return core.NewValidationError(nil, core.FieldError{
			Field: "grade",
			Error: fmt.Sprintf("grade cannot exceed max score of %d", maxScore),
		})
	}
	return nil
}
