package batch

import (
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/nexuslms/nexus/core"
)

// Batch is a cohort of enrolled students taught by one instructor over a
// date range. InstructorID is cleared (not cascaded) when the instructor
// is deleted.
type Batch struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	InstructorID null.String `json:"instructor_id"`
	StudentIDs   []string    `json:"student_ids"`
	StartDate    time.Time   `json:"start_date"`
	EndDate      null.Time   `json:"end_date"`
}

func (b *Batch) HasStudent(studentID string) bool {
	for _, id := range b.StudentIDs {
		if id == studentID {
			return true
		}
	}
	return false
}

// NewBatch contains information needed to create a new Batch.
// Dates are calendar dates in core.DateLayout format.
type NewBatch struct {
	Name         string   `json:"name" validate:"required"`
	InstructorID string   `json:"instructor_id" validate:"required"`
	StudentIDs   []string `json:"student_ids"`
	StartDate    string   `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate      string   `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
}

func (nb *NewBatch) Validate(validate *validator.Validate) error {
	nb.Name = core.CleanString(nb.Name)
	return validate.Struct(nb)
}

// UpdateBatch defines what information may be provided to modify an existing
// Batch. Unlike NewBatch, the start date may lie in the past.
type UpdateBatch struct {
	Name         string   `json:"name"`
	InstructorID string   `json:"instructor_id"`
	StudentIDs   []string `json:"student_ids"`
	StartDate    string   `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate      string   `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
}

func (ub *UpdateBatch) Validate(origBatch Batch, validate *validator.Validate) error {
	if name := core.CleanString(ub.Name); name != "" {
		ub.Name = name
	} else {
		ub.Name = origBatch.Name
	}
	if ub.StartDate == "" {
		ub.StartDate = origBatch.StartDate.Format(core.DateLayout)
	}
	if ub.EndDate == "" && origBatch.EndDate.Valid {
		ub.EndDate = origBatch.EndDate.Time.Format(core.DateLayout)
	}
	return validate.Struct(ub)
}

// InitValidators registers this package's custom validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(newBatchStructValidation, NewBatch{})
	validate.RegisterStructValidation(updateBatchStructValidation, UpdateBatch{})
	core.RegisterCustomTranslation(validate, translator, dateOrderTag, dateOrderText)
	core.RegisterCustomTranslation(validate, translator, pastStartTag, pastStartText)
}
