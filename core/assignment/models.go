package assignment

import (
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/nexuslms/nexus/core"
)

// Statuses
const (
	StatusDraft     = "DRAFT"
	StatusPublished = "PUBLISHED"
)

// DefaultMaxScore is used when an assignment is created without one.
const DefaultMaxScore = 100

type Assignment struct {
	ID          string    `json:"id"`
	BatchID     string    `json:"batch_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DueDate     null.Time `json:"due_date"`
	MaxScore    int       `json:"max_score"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"` // UTC
}

func (a *Assignment) IsPublished() bool { return a.Status == StatusPublished }

// NewAssignment contains information needed to create a new Assignment.
type NewAssignment struct {
	BatchID     string `json:"batch_id" validate:"required"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	DueDate     string `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	MaxScore    int    `json:"max_score" validate:"omitempty,gt=0"`
	Status      string `json:"status" validate:"omitempty,oneof=DRAFT PUBLISHED"`
}

func (na *NewAssignment) Validate(validate *validator.Validate) error {
	na.Title = core.CleanString(na.Title)
	return validate.Struct(na)
}

// UpdateAssignment defines what information may be provided to modify an
// existing Assignment. The owning batch cannot be changed.
type UpdateAssignment struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     string `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	MaxScore    int    `json:"max_score" validate:"omitempty,gt=0"`
	Status      string `json:"status" validate:"omitempty,oneof=DRAFT PUBLISHED"`
}

func (ua *UpdateAssignment) Validate(origAssign Assignment, validate *validator.Validate) error {
	if title := core.CleanString(ua.Title); title != "" {
		ua.Title = title
	} else {
		ua.Title = origAssign.Title
	}
	if ua.Description == "" {
		ua.Description = origAssign.Description
	}
	if ua.MaxScore == 0 {
		ua.MaxScore = origAssign.MaxScore
	}
	if ua.Status == "" {
		ua.Status = origAssign.Status
	}
	return validate.Struct(ua)
}

// InitValidators registers this package's custom validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(newAssignmentStructValidation, NewAssignment{})
	validate.RegisterStructValidation(updateAssignmentStructValidation, UpdateAssignment{})
	core.RegisterCustomTranslation(validate, translator, pastDueTag, pastDueText)
}
