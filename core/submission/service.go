package submission

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/nexuslms/nexus/core"
	"github.com/nexuslms/nexus/core/assignment"
	"github.com/nexuslms/nexus/core/batch"
	"github.com/nexuslms/nexus/core/user"
)

type (
	Repository interface {
		// CreateSubmission upserts by (assignment, student): an existing
		// pair keeps its original identifier and is reset to PENDING.
		CreateSubmission(ctx context.Context, s Submission) (Submission, error)
		QueryAllSubmissions(ctx context.Context) ([]Submission, error)
		GetSubmissionByID(ctx context.Context, id string) (Submission, error)
		QuerySubmissionsByAssignment(ctx context.Context, assignmentID string) ([]Submission, error)
		QuerySubmissionsByStudent(ctx context.Context, studentID string) ([]Submission, error)
		GetSubmissionByAssignmentAndStudent(ctx context.Context, assignmentID, studentID string) (Submission, error)
		UpdateSubmission(ctx context.Context, s Submission) (Submission, error)
		DeleteSubmission(ctx context.Context, id string) error
	}

	Service struct {
		repo       Repository
		assignRepo assignment.Repository
		batchRepo  batch.Repository
		usrRepo    user.Repository
		mailSvc    core.EmailService
		fbSvc      core.FeedbackService
	}
)

func NewService(
	repo Repository,
	assignRepo assignment.Repository,
	batchRepo batch.Repository,
	usrRepo user.Repository,
	mailSvc core.EmailService,
	fbSvc core.FeedbackService,
) *Service {
	return &Service{
		repo:       repo,
		assignRepo: assignRepo,
		batchRepo:  batchRepo,
		usrRepo:    usrRepo,
		mailSvc:    mailSvc,
		fbSvc:      fbSvc,
	}
}

// Submit records the student's work. Only published assignments of
// batches the student is enrolled in are accepted. Resubmitting for the
// same assignment replaces the previous submission in place.
func (svc *Service) Submit(ctx context.Context, studentID string, ns NewSubmission) (Submission, error) {
	assign, err := svc.assignRepo.GetAssignmentByID(ctx, ns.AssignmentID)
	if err != nil {
		if err == core.ErrNotFound {
			return Submission{}, core.NewValidationError(err, core.FieldError{Field: "assignment_id", Error: "assignment not found"})
		}
		return Submission{}, errors.Wrap(err, "finding assignment by ID")
	}
	if !assign.IsPublished() {
		return Submission{}, core.NewValidationError(nil, core.FieldError{Field: "assignment_id", Error: "assignment is not published"})
	}
	b, err := svc.batchRepo.GetBatchByID(ctx, assign.BatchID)
	if err != nil {
		return Submission{}, errors.Wrap(err, "finding batch by ID")
	}
	if !b.HasStudent(studentID) {
		return Submission{}, core.NewValidationError(nil, core.FieldError{Field: "assignment_id", Error: "student is not enrolled in this batch"})
	}

	s := Submission{
		ID:           uuid.New().String(),
		AssignmentID: ns.AssignmentID,
		StudentID:    studentID,
		Content:      ns.Content,
		SubmittedAt:  time.Now().UTC(),
		Status:       StatusPending,
	}
	return svc.repo.CreateSubmission(ctx, s)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Submission, error) {
	return svc.repo.QueryAllSubmissions(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Submission, error) {
	return svc.repo.GetSubmissionByID(ctx, id)
}

func (svc *Service) QueryByAssignment(ctx context.Context, assignmentID string) ([]Submission, error) {
	return svc.repo.QuerySubmissionsByAssignment(ctx, assignmentID)
}

func (svc *Service) QueryByStudent(ctx context.Context, studentID string) ([]Submission, error) {
	return svc.repo.QuerySubmissionsByStudent(ctx, studentID)
}

// Grade validates the grading input against the assignment's max score,
// persists the graded submission and notifies the student. The ceiling
// check happens before any store mutation.
func (svc *Service) Grade(ctx context.Context, id string, gs GradeSubmission) (Submission, error) {
	sub, err := svc.repo.GetSubmissionByID(ctx, id)
	if err != nil {
		return Submission{}, errors.Wrap(err, "finding submission by ID")
	}
	assign, err := svc.assignRepo.GetAssignmentByID(ctx, sub.AssignmentID)
	if err != nil {
		return Submission{}, errors.Wrap(err, "finding assignment by ID")
	}
	if err := gs.CheckMaxScore(assign.MaxScore); err != nil {
		return Submission{}, err
	}

	sub.Grade = null.IntFrom(*gs.Grade)
	sub.Feedback = null.NewString(gs.Feedback, gs.Feedback != "")
	sub.Status = StatusGraded
	sub, err = svc.repo.UpdateSubmission(ctx, sub)
	if err != nil {
		return Submission{}, errors.Wrap(err, "updating submission")
	}

	svc.notifyGraded(ctx, sub, assign)
	return sub, nil
}

// SuggestFeedback drafts grading feedback for the submission via the
// feedback collaborator. It never fails: an unreachable or unconfigured
// service yields a placeholder suggestion.
func (svc *Service) SuggestFeedback(ctx context.Context, id string) (string, error) {
	sub, err := svc.repo.GetSubmissionByID(ctx, id)
	if err != nil {
		return "", errors.Wrap(err, "finding submission by ID")
	}
	assign, err := svc.assignRepo.GetAssignmentByID(ctx, sub.AssignmentID)
	if err != nil {
		return "", errors.Wrap(err, "finding assignment by ID")
	}
	return svc.fbSvc.GenerateFeedback(ctx, assign.Title, assign.Description, sub.Content), nil
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteSubmission(ctx, id)
}

func (svc *Service) notifyGraded(ctx context.Context, sub Submission, assign assignment.Assignment) {
	if svc.mailSvc == nil {
		return
	}
	student, err := svc.usrRepo.GetUserByID(ctx, sub.StudentID)
	if err != nil {
		return // the student may have been deleted; nothing to notify
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: student.Name, Address: student.Email}},
		Subject: fmt.Sprintf("Your submission for %q has been graded", assign.Title),
		Body: fmt.Sprintf(
			"Hi %s,\n\nYour submission for %q was graded: %d/%d.\n\n%s\n",
			student.Name, assign.Title, sub.Grade.Int, assign.MaxScore, sub.Feedback.String,
		),
	})
}
