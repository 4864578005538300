package assignment

import (
	"github.com/go-playground/validator/v10"

	"github.com/nexuslms/nexus/core"
)

var (
	pastDueTag  = "notpastdue"
	pastDueText = "due date cannot be in the past"
)

func checkDueDate(sl validator.StructLevel, dueStr string) {
	due, err := core.ParseDate(dueStr)
	if err != nil || due.IsZero() {
		return
	}
	if due.Before(core.Today()) {
		sl.ReportError(dueStr, "due_date", "DueDate", pastDueTag, "")
	}
}

func newAssignmentStructValidation(sl validator.StructLevel) {
	na := sl.Current().Interface().(NewAssignment)
	checkDueDate(sl, na.DueDate)
}

func updateAssignmentStructValidation(sl validator.StructLevel) {
	ua := sl.Current().Interface().(UpdateAssignment)
	checkDueDate(sl, ua.DueDate)
}
