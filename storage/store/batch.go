package store

import (
	"context"

	"github.com/nexuslms/nexus/core"
	"github.com/nexuslms/nexus/core/assignment"
	"github.com/nexuslms/nexus/core/batch"
	"github.com/nexuslms/nexus/core/submission"
)

func (s *Store) CreateBatch(ctx context.Context, b batch.Batch) (batch.Batch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	batches, err := s.loadBatches(ctx)
	if err != nil {
		return batch.Batch{}, err
	}
	for _, existing := range batches {
		if existing.ID == b.ID {
			return batch.Batch{}, core.ErrDuplicateKey
		}
	}
	batches = append(batches, b)
	return b, s.save(ctx, batchesKey, batches)
}

func (s *Store) QueryAllBatches(ctx context.Context) ([]batch.Batch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadBatches(ctx)
}

func (s *Store) GetBatchByID(ctx context.Context, id string) (batch.Batch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	batches, err := s.loadBatches(ctx)
	if err != nil {
		return batch.Batch{}, err
	}
	for _, b := range batches {
		if b.ID == id {
			return b, nil
		}
	}
	return batch.Batch{}, core.ErrNotFound
}

func (s *Store) QueryBatchesByInstructor(ctx context.Context, instructorID string) ([]batch.Batch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	batches, err := s.loadBatches(ctx)
	if err != nil {
		return nil, err
	}
	matches := make([]batch.Batch, 0, len(batches))
	for _, b := range batches {
		if b.InstructorID.Valid && b.InstructorID.String == instructorID {
			matches = append(matches, b)
		}
	}
	return matches, nil
}

func (s *Store) QueryBatchesByStudent(ctx context.Context, studentID string) ([]batch.Batch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	batches, err := s.loadBatches(ctx)
	if err != nil {
		return nil, err
	}
	matches := make([]batch.Batch, 0, len(batches))
	for _, b := range batches {
		if b.HasStudent(studentID) {
			matches = append(matches, b)
		}
	}
	return matches, nil
}

func (s *Store) UpdateBatch(ctx context.Context, b batch.Batch) (batch.Batch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	batches, err := s.loadBatches(ctx)
	if err != nil {
		return batch.Batch{}, err
	}
	for i := range batches {
		if batches[i].ID == b.ID {
			batches[i] = b
			return b, s.save(ctx, batchesKey, batches)
		}
	}
	return batch.Batch{}, core.ErrNotFound
}

// DeleteBatch removes the batch and cascades: every assignment of the
// batch goes, and every submission of those assignments goes with it.
// Deletions are collected per layer and applied bottom-up (submissions,
// then assignments, then the batch) in a single multi-key write, so a
// reader never observes a partial cascade.
func (s *Store) DeleteBatch(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	batches, err := s.loadBatches(ctx)
	if err != nil {
		return err
	}
	idx := -1
	for i := range batches {
		if batches[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	batches = append(batches[:idx], batches[idx+1:]...)

	assignments, err := s.loadAssignments(ctx)
	if err != nil {
		return err
	}
	doomed := make(map[string]bool)
	keptAssignments := make([]assignment.Assignment, 0, len(assignments))
	for _, a := range assignments {
		if a.BatchID == id {
			doomed[a.ID] = true
			continue
		}
		keptAssignments = append(keptAssignments, a)
	}

	submissions, err := s.loadSubmissions(ctx)
	if err != nil {
		return err
	}
	keptSubmissions := make([]submission.Submission, 0, len(submissions))
	for _, sub := range submissions {
		if !doomed[sub.AssignmentID] {
			keptSubmissions = append(keptSubmissions, sub)
		}
	}

	return s.saveAll(ctx, map[string]interface{}{
		submissionsKey: keptSubmissions,
		assignmentsKey: keptAssignments,
		batchesKey:     batches,
	})
}
