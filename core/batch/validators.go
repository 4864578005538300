package batch

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/nexuslms/nexus/core"
)

var (
	dateOrderTag  = "dateorder"
	dateOrderText = "end date cannot be earlier than start date"

	pastStartTag  = "notpaststart"
	pastStartText = "start date cannot be in the past for new batches"
)

func checkDateOrder(sl validator.StructLevel, startStr, endStr string) (start time.Time, ok bool) {
	start, err := core.ParseDate(startStr)
	if err != nil || endStr == "" {
		return start, false
	}
	end, err := core.ParseDate(endStr)
	if err != nil {
		return start, false
	}
	if end.Before(start) {
		sl.ReportError(endStr, "end_date", "EndDate", dateOrderTag, "")
	}
	return start, true
}

func newBatchStructValidation(sl validator.StructLevel) {
	nb := sl.Current().Interface().(NewBatch)
	start, _ := checkDateOrder(sl, nb.StartDate, nb.EndDate)
	if !start.IsZero() && start.Before(core.Today()) {
		sl.ReportError(nb.StartDate, "start_date", "StartDate", pastStartTag, "")
	}
}

func updateBatchStructValidation(sl validator.StructLevel) {
	ub := sl.Current().Interface().(UpdateBatch)
	checkDateOrder(sl, ub.StartDate, ub.EndDate)
}
