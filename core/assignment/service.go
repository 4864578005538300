package assignment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/nexuslms/nexus/core"
	"github.com/nexuslms/nexus/core/batch"
)

type (
	Repository interface {
		CreateAssignment(ctx context.Context, a Assignment) (Assignment, error)
		QueryAllAssignments(ctx context.Context) ([]Assignment, error)
		GetAssignmentByID(ctx context.Context, id string) (Assignment, error)
		QueryAssignmentsByBatch(ctx context.Context, batchID string) ([]Assignment, error)
		UpdateAssignment(ctx context.Context, a Assignment) (Assignment, error)
		DeleteAssignment(ctx context.Context, id string) error
	}

	Service struct {
		repo      Repository
		batchRepo batch.Repository
	}
)

func NewService(repo Repository, batchRepo batch.Repository) *Service {
	return &Service{repo: repo, batchRepo: batchRepo}
}

func (svc *Service) Create(ctx context.Context, na NewAssignment) (Assignment, error) {
	if _, err := svc.batchRepo.GetBatchByID(ctx, na.BatchID); err != nil {
		if err == core.ErrNotFound {
			return Assignment{}, core.NewValidationError(err, core.FieldError{Field: "batch_id", Error: "batch not found"})
		}
		return Assignment{}, errors.Wrap(err, "finding batch by ID")
	}

	due, err := core.ParseDate(na.DueDate)
	if err != nil {
		return Assignment{}, errors.Wrap(err, "parsing due date")
	}
	maxScore := na.MaxScore
	if maxScore == 0 {
		maxScore = DefaultMaxScore
	}
	status := na.Status
	if status == "" {
		status = StatusDraft
	}

	a := Assignment{
		ID:          uuid.New().String(),
		BatchID:     na.BatchID,
		Title:       na.Title,
		Description: na.Description,
		DueDate:     null.NewTime(due, !due.IsZero()),
		MaxScore:    maxScore,
		Status:      status,
		CreatedAt:   time.Now().UTC(),
	}
	return svc.repo.CreateAssignment(ctx, a)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Assignment, error) {
	return svc.repo.QueryAllAssignments(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Assignment, error) {
	return svc.repo.GetAssignmentByID(ctx, id)
}

func (svc *Service) QueryByBatch(ctx context.Context, batchID string) ([]Assignment, error) {
	return svc.repo.QueryAssignmentsByBatch(ctx, batchID)
}

// QueryForInstructor returns the assignments of every batch taught by the
// instructor.
func (svc *Service) QueryForInstructor(ctx context.Context, instructorID string) ([]Assignment, error) {
	batches, err := svc.batchRepo.QueryBatchesByInstructor(ctx, instructorID)
	if err != nil {
		return nil, errors.Wrap(err, "querying instructor batches")
	}
	return svc.queryForBatches(ctx, batches, false)
}

// QueryForStudent returns the published assignments of every batch the
// student is enrolled in.
func (svc *Service) QueryForStudent(ctx context.Context, studentID string) ([]Assignment, error) {
	batches, err := svc.batchRepo.QueryBatchesByStudent(ctx, studentID)
	if err != nil {
		return nil, errors.Wrap(err, "querying student batches")
	}
	return svc.queryForBatches(ctx, batches, true)
}

func (svc *Service) queryForBatches(ctx context.Context, batches []batch.Batch, publishedOnly bool) ([]Assignment, error) {
	assignments := make([]Assignment, 0)
	for _, b := range batches {
		batchAssignments, err := svc.repo.QueryAssignmentsByBatch(ctx, b.ID)
		if err != nil {
			return nil, errors.Wrap(err, "querying batch assignments")
		}
		for _, a := range batchAssignments {
			if publishedOnly && !a.IsPublished() {
				continue
			}
			assignments = append(assignments, a)
		}
	}
	return assignments, nil
}

func (svc *Service) Update(ctx context.Context, id string, ua UpdateAssignment) (Assignment, error) {
	origAssign, err := svc.repo.GetAssignmentByID(ctx, id)
	if err != nil {
		return Assignment{}, errors.Wrap(err, "finding assignment by ID")
	}

	due, err := core.ParseDate(ua.DueDate)
	if err != nil {
		return Assignment{}, errors.Wrap(err, "parsing due date")
	}

	origAssign.Title = ua.Title
	origAssign.Description = ua.Description
	if !due.IsZero() {
		origAssign.DueDate = null.TimeFrom(due)
	}
	origAssign.MaxScore = ua.MaxScore
	origAssign.Status = ua.Status
	return svc.repo.UpdateAssignment(ctx, origAssign)
}

// Delete removes the assignment; the store cascades to its submissions.
func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteAssignment(ctx, id)
}
