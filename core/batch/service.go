package batch

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/nexuslms/nexus/core"
)

type (
	Repository interface {
		CreateBatch(ctx context.Context, b Batch) (Batch, error)
		QueryAllBatches(ctx context.Context) ([]Batch, error)
		GetBatchByID(ctx context.Context, id string) (Batch, error)
		QueryBatchesByInstructor(ctx context.Context, instructorID string) ([]Batch, error)
		QueryBatchesByStudent(ctx context.Context, studentID string) ([]Batch, error)
		UpdateBatch(ctx context.Context, b Batch) (Batch, error)
		DeleteBatch(ctx context.Context, id string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, nb NewBatch) (Batch, error) {
	start, err := core.ParseDate(nb.StartDate)
	if err != nil {
		return Batch{}, errors.Wrap(err, "parsing start date")
	}
	end, err := core.ParseDate(nb.EndDate)
	if err != nil {
		return Batch{}, errors.Wrap(err, "parsing end date")
	}

	studentIDs := nb.StudentIDs
	if studentIDs == nil {
		studentIDs = []string{}
	}
	b := Batch{
		ID:           uuid.New().String(),
		Name:         nb.Name,
		InstructorID: null.NewString(nb.InstructorID, nb.InstructorID != ""),
		StudentIDs:   studentIDs,
		StartDate:    start,
		EndDate:      null.NewTime(end, !end.IsZero()),
	}
	return svc.repo.CreateBatch(ctx, b)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Batch, error) {
	return svc.repo.QueryAllBatches(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Batch, error) {
	return svc.repo.GetBatchByID(ctx, id)
}

func (svc *Service) QueryByInstructor(ctx context.Context, instructorID string) ([]Batch, error) {
	return svc.repo.QueryBatchesByInstructor(ctx, instructorID)
}

func (svc *Service) QueryByStudent(ctx context.Context, studentID string) ([]Batch, error) {
	return svc.repo.QueryBatchesByStudent(ctx, studentID)
}

func (svc *Service) Update(ctx context.Context, id string, ub UpdateBatch) (Batch, error) {
	origBatch, err := svc.repo.GetBatchByID(ctx, id)
	if err != nil {
		return Batch{}, errors.Wrap(err, "finding batch by ID")
	}

	start, err := core.ParseDate(ub.StartDate)
	if err != nil {
		return Batch{}, errors.Wrap(err, "parsing start date")
	}
	end, err := core.ParseDate(ub.EndDate)
	if err != nil {
		return Batch{}, errors.Wrap(err, "parsing end date")
	}

	origBatch.Name = ub.Name
	if ub.InstructorID != "" {
		origBatch.InstructorID = null.StringFrom(ub.InstructorID)
	}
	if ub.StudentIDs != nil {
		origBatch.StudentIDs = ub.StudentIDs
	}
	origBatch.StartDate = start
	origBatch.EndDate = null.NewTime(end, !end.IsZero())
	return svc.repo.UpdateBatch(ctx, origBatch)
}

// Delete removes the batch; the store cascades to its assignments and
// their submissions.
func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteBatch(ctx, id)
}
