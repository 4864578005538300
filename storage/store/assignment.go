package store

import (
	"context"

	"github.com/nexuslms/nexus/core"
	"github.com/nexuslms/nexus/core/assignment"
	"github.com/nexuslms/nexus/core/submission"
)

func (s *Store) CreateAssignment(ctx context.Context, a assignment.Assignment) (assignment.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	assignments, err := s.loadAssignments(ctx)
	if err != nil {
		return assignment.Assignment{}, err
	}
	for _, existing := range assignments {
		if existing.ID == a.ID {
			return assignment.Assignment{}, core.ErrDuplicateKey
		}
	}
	assignments = append(assignments, a)
	return a, s.save(ctx, assignmentsKey, assignments)
}

func (s *Store) QueryAllAssignments(ctx context.Context) ([]assignment.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadAssignments(ctx)
}

func (s *Store) GetAssignmentByID(ctx context.Context, id string) (assignment.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	assignments, err := s.loadAssignments(ctx)
	if err != nil {
		return assignment.Assignment{}, err
	}
	for _, a := range assignments {
		if a.ID == id {
			return a, nil
		}
	}
	return assignment.Assignment{}, core.ErrNotFound
}

func (s *Store) QueryAssignmentsByBatch(ctx context.Context, batchID string) ([]assignment.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	assignments, err := s.loadAssignments(ctx)
	if err != nil {
		return nil, err
	}
	matches := make([]assignment.Assignment, 0, len(assignments))
	for _, a := range assignments {
		if a.BatchID == batchID {
			matches = append(matches, a)
		}
	}
	return matches, nil
}

func (s *Store) UpdateAssignment(ctx context.Context, a assignment.Assignment) (assignment.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	assignments, err := s.loadAssignments(ctx)
	if err != nil {
		return assignment.Assignment{}, err
	}
	for i := range assignments {
		if assignments[i].ID == a.ID {
			assignments[i] = a
			return a, s.save(ctx, assignmentsKey, assignments)
		}
	}
	return assignment.Assignment{}, core.ErrNotFound
}

// DeleteAssignment removes the assignment and cascades to its
// submissions; both collections are written as one unit.
// Deleting an absent id is a no-op.
func (s *Store) DeleteAssignment(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	assignments, err := s.loadAssignments(ctx)
	if err != nil {
		return err
	}
	idx := -1
	for i := range assignments {
		if assignments[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	assignments = append(assignments[:idx], assignments[idx+1:]...)

	submissions, err := s.loadSubmissions(ctx)
	if err != nil {
		return err
	}
	keptSubmissions := make([]submission.Submission, 0, len(submissions))
	for _, sub := range submissions {
		if sub.AssignmentID != id {
			keptSubmissions = append(keptSubmissions, sub)
		}
	}

	return s.saveAll(ctx, map[string]interface{}{
		submissionsKey: keptSubmissions,
		assignmentsKey: assignments,
	})
}
