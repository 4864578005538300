package store

import (
	"context"

	"github.com/volatiletech/null/v8"

	"github.com/nexuslms/nexus/core"
	"github.com/nexuslms/nexus/core/submission"
)

// CreateSubmission upserts by (assignment, student). When the pair
// already has a submission, the fresh one replaces its content and
// timestamp in place, keeping the original identifier; any prior grade
// and feedback are discarded and the status returns to PENDING.
func (s *Store) CreateSubmission(ctx context.Context, sub submission.Submission) (submission.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	submissions, err := s.loadSubmissions(ctx)
	if err != nil {
		return submission.Submission{}, err
	}
	for i := range submissions {
		if submissions[i].AssignmentID == sub.AssignmentID && submissions[i].StudentID == sub.StudentID {
			sub.ID = submissions[i].ID
			sub.Status = submission.StatusPending
			sub.Grade = null.Int{}
			sub.Feedback = null.String{}
			submissions[i] = sub
			return sub, s.save(ctx, submissionsKey, submissions)
		}
	}
	for _, existing := range submissions {
		if existing.ID == sub.ID {
			return submission.Submission{}, core.ErrDuplicateKey
		}
	}
	submissions = append(submissions, sub)
	return sub, s.save(ctx, submissionsKey, submissions)
}

func (s *Store) QueryAllSubmissions(ctx context.Context) ([]submission.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadSubmissions(ctx)
}

func (s *Store) GetSubmissionByID(ctx context.Context, id string) (submission.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	submissions, err := s.loadSubmissions(ctx)
	if err != nil {
		return submission.Submission{}, err
	}
	for _, sub := range submissions {
		if sub.ID == id {
			return sub, nil
		}
	}
	return submission.Submission{}, core.ErrNotFound
}

func (s *Store) QuerySubmissionsByAssignment(ctx context.Context, assignmentID string) ([]submission.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	submissions, err := s.loadSubmissions(ctx)
	if err != nil {
		return nil, err
	}
	matches := make([]submission.Submission, 0, len(submissions))
	for _, sub := range submissions {
		if sub.AssignmentID == assignmentID {
			matches = append(matches, sub)
		}
	}
	return matches, nil
}

func (s *Store) QuerySubmissionsByStudent(ctx context.Context, studentID string) ([]submission.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	submissions, err := s.loadSubmissions(ctx)
	if err != nil {
		return nil, err
	}
	matches := make([]submission.Submission, 0, len(submissions))
	for _, sub := range submissions {
		if sub.StudentID == studentID {
			matches = append(matches, sub)
		}
	}
	return matches, nil
}

func (s *Store) GetSubmissionByAssignmentAndStudent(ctx context.Context, assignmentID, studentID string) (submission.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	submissions, err := s.loadSubmissions(ctx)
	if err != nil {
		return submission.Submission{}, err
	}
	for _, sub := range submissions {
		if sub.AssignmentID == assignmentID && sub.StudentID == studentID {
			return sub, nil
		}
	}
	return submission.Submission{}, core.ErrNotFound
}

func (s *Store) UpdateSubmission(ctx context.Context, sub submission.Submission) (submission.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	submissions, err := s.loadSubmissions(ctx)
	if err != nil {
		return submission.Submission{}, err
	}
	for i := range submissions {
		if submissions[i].ID == sub.ID {
			submissions[i] = sub
			return sub, s.save(ctx, submissionsKey, submissions)
		}
	}
	return submission.Submission{}, core.ErrNotFound
}

// DeleteSubmission removes the submission; it is a terminal entity, so
// nothing cascades. Deleting an absent id is a no-op.
func (s *Store) DeleteSubmission(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	submissions, err := s.loadSubmissions(ctx)
	if err != nil {
		return err
	}
	for i := range submissions {
		if submissions[i].ID == id {
			submissions = append(submissions[:i], submissions[i+1:]...)
			return s.save(ctx, submissionsKey, submissions)
		}
	}
	return nil
}
