package store_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/nexuslms/nexus/core"
	"github.com/nexuslms/nexus/core/assignment"
	"github.com/nexuslms/nexus/core/submission"
	"github.com/nexuslms/nexus/core/user"
	inmemkv "github.com/nexuslms/nexus/storage/kv/inmem"
	"github.com/nexuslms/nexus/storage/store"
	testutil "github.com/nexuslms/nexus/tests"
)

var ctx = context.Background()

func Test_Store_seedsOnFirstRead(t *testing.T) {
	db := testutil.PrepareStore(t)

	users, err := db.QueryAllUsers(ctx)
	if err != nil {
		t.Fatalf("QueryAllUsers() failed: %v", err)
	}
	if len(users) != 5 {
		t.Errorf("QueryAllUsers() len = %d; want 5", len(users))
	}
	if diff := testutil.JSONDiff(t, store.SeedUsers(), users); diff != "" {
		t.Errorf("seed users mismatch:\n%s", diff)
	}

	batches, err := db.QueryAllBatches(ctx)
	if err != nil {
		t.Fatalf("QueryAllBatches() failed: %v", err)
	}
	if len(batches) != 1 {
		t.Errorf("QueryAllBatches() len = %d; want 1", len(batches))
	}

	assignments, err := db.QueryAllAssignments(ctx)
	if err != nil {
		t.Fatalf("QueryAllAssignments() failed: %v", err)
	}
	if len(assignments) != 1 {
		t.Errorf("QueryAllAssignments() len = %d; want 1", len(assignments))
	}

	submissions, err := db.QueryAllSubmissions(ctx)
	if err != nil {
		t.Fatalf("QueryAllSubmissions() failed: %v", err)
	}
	if len(submissions) != 1 {
		t.Errorf("QueryAllSubmissions() len = %d; want 1", len(submissions))
	}
}

func Test_Store_Reset(t *testing.T) {
	db := testutil.PrepareStore(t)

	testutil.CreateUser(t, db, "Extra User", "extra@test.cd", user.RoleStudent)
	if err := db.DeleteBatch(ctx, "b1"); err != nil {
		t.Fatalf("DeleteBatch() failed: %v", err)
	}

	if err := db.Reset(ctx); err != nil {
		t.Fatalf("Reset() failed: %v", err)
	}

	users, _ := db.QueryAllUsers(ctx)
	batches, _ := db.QueryAllBatches(ctx)
	assignments, _ := db.QueryAllAssignments(ctx)
	submissions, _ := db.QueryAllSubmissions(ctx)
	if len(users) != 5 || len(batches) != 1 || len(assignments) != 1 || len(submissions) != 1 {
		t.Errorf("Reset() counts = %d/%d/%d/%d; want 5/1/1/1",
			len(users), len(batches), len(assignments), len(submissions))
	}
	if diff := testutil.JSONDiff(t, store.SeedSubmissions(), submissions); diff != "" {
		t.Errorf("seed submissions mismatch:\n%s", diff)
	}
}

func Test_Store_CreateUser_uniqueness(t *testing.T) {
	db := testutil.PrepareStore(t)

	if _, err := db.CreateUser(ctx, user.User{ID: "u1", Email: "new@test.cd"}); errors.Cause(err) != core.ErrDuplicateKey {
		t.Errorf("CreateUser() error = %v; want %v", err, core.ErrDuplicateKey)
	}
	if _, err := db.CreateUser(ctx, user.User{ID: "u99", Email: "admin@nexus.com"}); errors.Cause(err) != core.ErrDuplicateEmail {
		t.Errorf("CreateUser() error = %v; want %v", err, core.ErrDuplicateEmail)
	}

	usr := testutil.CreateUser(t, db, "New User", "new@test.cd", user.RoleStudent)
	got, err := db.GetUserByID(ctx, usr.ID)
	if err != nil {
		t.Fatalf("GetUserByID() failed: %v", err)
	}
	if got.Email != "new@test.cd" {
		t.Errorf("GetUserByID().Email = %q; want %q", got.Email, "new@test.cd")
	}
}

func Test_Store_CheckEmailUniqueness(t *testing.T) {
	db := testutil.PrepareStore(t)

	if err := db.CheckEmailUniqueness(ctx, "admin@nexus.com"); err != core.ErrDuplicateEmail {
		t.Errorf("CheckEmailUniqueness() error = %v; want %v", err, core.ErrDuplicateEmail)
	}
	if err := db.CheckEmailUniqueness(ctx, "free@test.cd"); err != nil {
		t.Errorf("CheckEmailUniqueness() error = %v; want nil", err)
	}

	// the user being updated does not conflict with itself
	admin, _ := db.GetUserByID(ctx, "u1")
	if err := db.CheckEmailUniqueness(ctx, "admin@nexus.com", admin); err != nil {
		t.Errorf("CheckEmailUniqueness(excluded) error = %v; want nil", err)
	}
}

func Test_Store_UpdateUser_notFound(t *testing.T) {
	db := testutil.PrepareStore(t)

	if _, err := db.UpdateUser(ctx, user.User{ID: "nope"}); errors.Cause(err) != core.ErrNotFound {
		t.Errorf("UpdateUser() error = %v; want %v", err, core.ErrNotFound)
	}
}

func Test_Store_DeleteUser_unlinksBatches(t *testing.T) {
	db := testutil.PrepareStore(t)

	// u3 is enrolled in b1; u2 runs it
	if err := db.DeleteUser(ctx, "u3"); err != nil {
		t.Fatalf("DeleteUser(u3) failed: %v", err)
	}
	b, err := db.GetBatchByID(ctx, "b1")
	if err != nil {
		t.Fatalf("GetBatchByID() failed: %v", err)
	}
	if b.HasStudent("u3") {
		t.Error("u3 still enrolled after deletion")
	}
	if len(b.StudentIDs) != 1 || b.StudentIDs[0] != "u4" {
		t.Errorf("StudentIDs = %v; want [u4]", b.StudentIDs)
	}

	if err := db.DeleteUser(ctx, "u2"); err != nil {
		t.Fatalf("DeleteUser(u2) failed: %v", err)
	}
	b, _ = db.GetBatchByID(ctx, "b1")
	if b.InstructorID.Valid {
		t.Errorf("InstructorID = %v; want cleared", b.InstructorID)
	}

	// the student's submission is untouched
	if _, err := db.GetSubmissionByID(ctx, "s1"); err != nil {
		t.Errorf("GetSubmissionByID(s1) error = %v; want nil", err)
	}

	// deleting an absent id is a no-op
	if err := db.DeleteUser(ctx, "nope"); err != nil {
		t.Errorf("DeleteUser(absent) error = %v; want nil", err)
	}
}

func Test_Store_DeleteBatch_cascades(t *testing.T) {
	db := testutil.PrepareStore(t)

	// extra data that must survive the cascade
	b2 := testutil.CreateBatch(t, db, "Go Fundamentals", "u2", []string{"u4"}, store.SeedBatches()[0].StartDate)
	a2 := testutil.CreateAssignment(t, db, b2.ID, "Hello World", assignment.StatusPublished, 100)
	testutil.CreateSubmission(t, db, a2.ID, "u4", "package main")

	if err := db.DeleteBatch(ctx, "b1"); err != nil {
		t.Fatalf("DeleteBatch() failed: %v", err)
	}

	if _, err := db.GetBatchByID(ctx, "b1"); errors.Cause(err) != core.ErrNotFound {
		t.Errorf("GetBatchByID(b1) error = %v; want %v", err, core.ErrNotFound)
	}
	if _, err := db.GetAssignmentByID(ctx, "a1"); errors.Cause(err) != core.ErrNotFound {
		t.Errorf("GetAssignmentByID(a1) error = %v; want %v", err, core.ErrNotFound)
	}
	if _, err := db.GetSubmissionByID(ctx, "s1"); errors.Cause(err) != core.ErrNotFound {
		t.Errorf("GetSubmissionByID(s1) error = %v; want %v", err, core.ErrNotFound)
	}

	assignments, _ := db.QueryAllAssignments(ctx)
	submissions, _ := db.QueryAllSubmissions(ctx)
	if len(assignments) != 1 || len(submissions) != 1 {
		t.Errorf("post-cascade counts = %d assignments, %d submissions; want 1, 1",
			len(assignments), len(submissions))
	}

	// users never cascade
	users, _ := db.QueryAllUsers(ctx)
	if len(users) != 5 {
		t.Errorf("users len = %d; want 5", len(users))
	}

	if err := db.DeleteBatch(ctx, "nope"); err != nil {
		t.Errorf("DeleteBatch(absent) error = %v; want nil", err)
	}
}

func Test_Store_DeleteAssignment_cascades(t *testing.T) {
	db := testutil.PrepareStore(t)

	if err := db.DeleteAssignment(ctx, "a1"); err != nil {
		t.Fatalf("DeleteAssignment() failed: %v", err)
	}
	if _, err := db.GetSubmissionByID(ctx, "s1"); errors.Cause(err) != core.ErrNotFound {
		t.Errorf("GetSubmissionByID(s1) error = %v; want %v", err, core.ErrNotFound)
	}

	// the batch stays
	if _, err := db.GetBatchByID(ctx, "b1"); err != nil {
		t.Errorf("GetBatchByID(b1) error = %v; want nil", err)
	}

	if err := db.DeleteAssignment(ctx, "nope"); err != nil {
		t.Errorf("DeleteAssignment(absent) error = %v; want nil", err)
	}
}

func Test_Store_CreateSubmission_upsertsByPair(t *testing.T) {
	db := testutil.PrepareStore(t)

	// grade the seed submission first
	sub, err := db.GetSubmissionByID(ctx, "s1")
	if err != nil {
		t.Fatalf("GetSubmissionByID() failed: %v", err)
	}
	sub.Status = submission.StatusGraded
	sub.Grade = null.IntFrom(85)
	sub.Feedback = null.StringFrom("Good work")
	if _, err = db.UpdateSubmission(ctx, sub); err != nil {
		t.Fatalf("UpdateSubmission() failed: %v", err)
	}

	// resubmitting for the same (assignment, student) pair replaces in place
	resub := testutil.CreateSubmission(t, db, "a1", "u3", "Updated: github.com/alice/button-v2")
	if resub.ID != "s1" {
		t.Errorf("resubmission ID = %q; want original %q", resub.ID, "s1")
	}
	if resub.Status != submission.StatusPending {
		t.Errorf("resubmission Status = %q; want %q", resub.Status, submission.StatusPending)
	}
	if resub.Grade.Valid || resub.Feedback.Valid {
		t.Errorf("resubmission grade/feedback = %v/%v; want cleared", resub.Grade, resub.Feedback)
	}

	submissions, _ := db.QueryAllSubmissions(ctx)
	if len(submissions) != 1 {
		t.Errorf("submissions len = %d; want 1", len(submissions))
	}

	// a different student on the same assignment gets a new record
	sub2 := testutil.CreateSubmission(t, db, "a1", "u4", "Here is mine")
	if sub2.ID == "s1" {
		t.Error("new pair reused an existing ID")
	}
	submissions, _ = db.QueryAllSubmissions(ctx)
	if len(submissions) != 2 {
		t.Errorf("submissions len = %d; want 2", len(submissions))
	}
}

func Test_Store_GetSubmissionByAssignmentAndStudent(t *testing.T) {
	db := testutil.PrepareStore(t)

	sub, err := db.GetSubmissionByAssignmentAndStudent(ctx, "a1", "u3")
	if err != nil {
		t.Fatalf("GetSubmissionByAssignmentAndStudent() failed: %v", err)
	}
	if sub.ID != "s1" {
		t.Errorf("ID = %q; want s1", sub.ID)
	}

	if _, err = db.GetSubmissionByAssignmentAndStudent(ctx, "a1", "u4"); errors.Cause(err) != core.ErrNotFound {
		t.Errorf("error = %v; want %v", err, core.ErrNotFound)
	}
}

func Test_Store_corruptedPayload(t *testing.T) {
	backend := inmemkv.Open()
	db := store.New(backend)

	if err := backend.Set(ctx, "users", []byte("{not json")); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}

	_, err := db.QueryAllUsers(ctx)
	if errors.Cause(err) != core.ErrStoreCorrupted {
		t.Errorf("QueryAllUsers() error = %v; want %v", err, core.ErrStoreCorrupted)
	}

	// other collections still seed and read fine
	if _, err := db.QueryAllBatches(ctx); err != nil {
		t.Errorf("QueryAllBatches() error = %v; want nil", err)
	}

	// Reset recovers from corruption
	if err := db.Reset(ctx); err != nil {
		t.Fatalf("Reset() failed: %v", err)
	}
	if _, err := db.QueryAllUsers(ctx); err != nil {
		t.Errorf("QueryAllUsers() after Reset error = %v; want nil", err)
	}
}

func Test_Store_ConcurrentCreateUsers(t *testing.T) {
	db := testutil.PrepareStore(t)

	const n = 50
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			usr := user.User{
				ID:    fmt.Sprintf("cu%d", i),
				Name:  fmt.Sprintf("Concurrent User %d", i),
				Email: fmt.Sprintf("concurrent%d@test.cd", i),
				Role:  user.RoleStudent,
			}
			if _, err := db.CreateUser(ctx, usr); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("CreateUser() failed: %v", err)
	}

	users, err := db.QueryAllUsers(ctx)
	if err != nil {
		t.Fatalf("QueryAllUsers() failed: %v", err)
	}
	if len(users) != 5+n {
		t.Errorf("QueryAllUsers() len = %d; want %d", len(users), 5+n)
	}
}

func Test_Store_ConcurrentCreateUsers_sameEmail(t *testing.T) {
	db := testutil.PrepareStore(t)

	const n = 20
	var wg sync.WaitGroup
	created := make(chan string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			usr := user.User{
				ID:    fmt.Sprintf("dup%d", i),
				Name:  "Dup Email",
				Email: "dup@test.cd",
				Role:  user.RoleStudent,
			}
			if _, err := db.CreateUser(ctx, usr); err == nil {
				created <- usr.ID
			} else if errors.Cause(err) != core.ErrDuplicateEmail {
				t.Errorf("CreateUser() error = %v; want %v", err, core.ErrDuplicateEmail)
			}
		}(i)
	}
	wg.Wait()
	close(created)

	var winners []string
	for id := range created {
		winners = append(winners, id)
	}
	if len(winners) != 1 {
		t.Errorf("successful creates = %d (%v); want exactly 1", len(winners), winners)
	}
}
