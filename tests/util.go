package testutil

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/volatiletech/null/v8"

	"github.com/nexuslms/nexus/core"
	"github.com/nexuslms/nexus/core/assignment"
	"github.com/nexuslms/nexus/core/batch"
	"github.com/nexuslms/nexus/core/submission"
	"github.com/nexuslms/nexus/core/user"
	inmemkv "github.com/nexuslms/nexus/storage/kv/inmem"
	"github.com/nexuslms/nexus/storage/store"
)

// PrepareStore returns a fresh Store over an in-memory backend. The first
// read of each collection lazily installs the seed dataset.
func PrepareStore(t *testing.T) *store.Store {
	t.Helper()
	return store.New(inmemkv.Open())
}

func CreateUser(t *testing.T, repo user.Repository, name, email, role string) user.User {
	t.Helper()
	usr, err := repo.CreateUser(context.Background(), user.User{
		ID:        uuid.New().String(),
		Name:      name,
		Email:     core.CleanString(email, true /* lower */),
		Role:      role,
		AvatarURL: user.DefaultAvatarURL(name),
	})
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateBatch(
	t *testing.T,
	repo batch.Repository,
	name, instructorID string,
	studentIDs []string,
	start time.Time,
	end ...time.Time,
) batch.Batch {
	t.Helper()
	b := batch.Batch{
		ID:         uuid.New().String(),
		Name:       name,
		StudentIDs: studentIDs,
		StartDate:  start,
	}
	if instructorID != "" {
		b.InstructorID = null.StringFrom(instructorID)
	}
	if b.StudentIDs == nil {
		b.StudentIDs = []string{}
	}
	if len(end) > 0 {
		b.EndDate = null.TimeFrom(end[0])
	}
	b, err := repo.CreateBatch(context.Background(), b)
	if err != nil {
		t.Fatalf("CreateBatch() failed: %v", err)
	}
	return b
}

func CreateAssignment(
	t *testing.T,
	repo assignment.Repository,
	batchID, title, status string,
	maxScore int,
) assignment.Assignment {
	t.Helper()
	assign, err := repo.CreateAssignment(context.Background(), assignment.Assignment{
		ID:        uuid.New().String(),
		BatchID:   batchID,
		Title:     title,
		MaxScore:  maxScore,
		Status:    status,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateAssignment() failed: %v", err)
	}
	return assign
}

func CreateSubmission(
	t *testing.T,
	repo submission.Repository,
	assignmentID, studentID, content string,
) submission.Submission {
	t.Helper()
	sub, err := repo.CreateSubmission(context.Background(), submission.Submission{
		ID:           uuid.New().String(),
		AssignmentID: assignmentID,
		StudentID:    studentID,
		Content:      content,
		SubmittedAt:  time.Now().UTC(),
		Status:       submission.StatusPending,
	})
	if err != nil {
		t.Fatalf("CreateSubmission() failed: %v", err)
	}
	return sub
}

// JSONDiff renders a unified diff of the JSON dumps of two values;
// empty when they are equal.
func JSONDiff(t *testing.T, want, got interface{}) string {
	t.Helper()
	wantData, err := json.MarshalIndent(want, "", "  ")
	if err != nil {
		t.Fatalf("JSONDiff() failed: %v", err)
	}
	gotData, err := json.MarshalIndent(got, "", "  ")
	if err != nil {
		t.Fatalf("JSONDiff() failed: %v", err)
	}
	if string(wantData) == string(gotData) {
		return ""
	}

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(wantData)),
		B:        difflib.SplitLines(string(gotData)),
		FromFile: "want",
		ToFile:   "got",
		Context:  3,
	})
	if err != nil {
		t.Fatalf("JSONDiff() failed: %v", err)
	}
	return diff
}
