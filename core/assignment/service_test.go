package assignment_test

import (
	"context"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/nexuslms/nexus/core"
	"github.com/nexuslms/nexus/core/assignment"
	testutil "github.com/nexuslms/nexus/tests"
)

var ctx = context.Background()

func TestService_Create(t *testing.T) {
	db := testutil.PrepareStore(t)
	svc := assignment.NewService(db, db)

	assign, err := svc.Create(ctx, assignment.NewAssignment{BatchID: "b1", Title: "State & Props"})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if assign.MaxScore != assignment.DefaultMaxScore {
		t.Errorf("MaxScore = %d; want default %d", assign.MaxScore, assignment.DefaultMaxScore)
	}
	if assign.Status != assignment.StatusDraft {
		t.Errorf("Status = %q; want default %q", assign.Status, assignment.StatusDraft)
	}
	if assign.DueDate.Valid {
		t.Errorf("DueDate = %v; want unset", assign.DueDate)
	}
	if assign.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}
}

func TestService_Create_unknownBatch(t *testing.T) {
	db := testutil.PrepareStore(t)
	svc := assignment.NewService(db, db)

	_, err := svc.Create(ctx, assignment.NewAssignment{BatchID: "nope", Title: "T"})
	vErr, ok := errors.Cause(err).(*core.ValidationError)
	if !ok {
		t.Fatalf("Create() error = %v; want *core.ValidationError", err)
	}
	if len(vErr.Fields) != 1 || vErr.Fields[0].Field != "batch_id" {
		t.Errorf("Fields = %v; want batch_id error", vErr.Fields)
	}
}

func TestService_QueryForStudent_publishedOnly(t *testing.T) {
	db := testutil.PrepareStore(t)
	svc := assignment.NewService(db, db)

	testutil.CreateAssignment(t, db, "b1", "Draft Homework", assignment.StatusDraft, 100)

	assigns, err := svc.QueryForStudent(ctx, "u3")
	if err != nil {
		t.Fatalf("QueryForStudent() failed: %v", err)
	}
	if len(assigns) != 1 || assigns[0].ID != "a1" {
		t.Errorf("QueryForStudent() = %v; want only the published a1", assigns)
	}

	// the instructor sees drafts too
	assigns, err = svc.QueryForInstructor(ctx, "u2")
	if err != nil {
		t.Fatalf("QueryForInstructor() failed: %v", err)
	}
	if len(assigns) != 2 {
		t.Errorf("QueryForInstructor() len = %d; want 2", len(assigns))
	}

	// a student outside every batch sees nothing
	assigns, err = svc.QueryForStudent(ctx, "u5")
	if err != nil {
		t.Fatalf("QueryForStudent() failed: %v", err)
	}
	if len(assigns) != 0 {
		t.Errorf("QueryForStudent(u5) = %v; want empty", assigns)
	}
}

func TestService_Update_keepsBatch(t *testing.T) {
	db := testutil.PrepareStore(t)
	svc := assignment.NewService(db, db)

	assign, err := svc.Update(ctx, "a1", assignment.UpdateAssignment{
		Title:    "Component Basics v2",
		MaxScore: 50,
		Status:   assignment.StatusDraft,
	})
	if err != nil {
		t.Fatalf("Update() failed: %v", err)
	}
	if assign.BatchID != "b1" {
		t.Errorf("BatchID = %q; want immutable b1", assign.BatchID)
	}
	if assign.MaxScore != 50 || assign.Status != assignment.StatusDraft {
		t.Errorf("MaxScore/Status = %d/%q; want 50/%q", assign.MaxScore, assign.Status, assignment.StatusDraft)
	}
}

func TestUpdateAssignment_Validate_keepsUnsetFields(t *testing.T) {
	validate := validator.New()
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validate, translator)
	assignment.InitValidators(validate, translator)

	db := testutil.PrepareStore(t)
	svc := assignment.NewService(db, db)

	orig, err := svc.GetByID(ctx, "a1")
	if err != nil {
		t.Fatalf("GetByID() failed: %v", err)
	}

	data := assignment.UpdateAssignment{Status: assignment.StatusDraft}
	if err := data.Validate(orig, validate); err != nil {
		t.Fatalf("Validate() failed: %v", err)
	}
	assign, err := svc.Update(ctx, "a1", data)
	if err != nil {
		t.Fatalf("Update() failed: %v", err)
	}

	if assign.Title != orig.Title {
		t.Errorf("Title = %q; want kept %q", assign.Title, orig.Title)
	}
	if assign.Description != orig.Description {
		t.Errorf("Description = %q; want kept %q", assign.Description, orig.Description)
	}
	if assign.MaxScore != orig.MaxScore {
		t.Errorf("MaxScore = %d; want kept %d", assign.MaxScore, orig.MaxScore)
	}
	if assign.Status != assignment.StatusDraft {
		t.Errorf("Status = %q; want %q", assign.Status, assignment.StatusDraft)
	}
}
