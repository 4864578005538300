package tests

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/nexuslms/nexus/core"
	"github.com/nexuslms/nexus/core/batch"
	"github.com/nexuslms/nexus/storage/store"
)

func Test_batchApi_query(t *testing.T) {
	app := setup(t)

	tests := []httpTest{
		{name: "no token", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "admin sees all", token: getSeedToken(t, "u1"), wantCode: http.StatusOK, wantData: marchallObj(t, store.SeedBatches())},
		{name: "instructor sees own", token: getSeedToken(t, "u2"), wantCode: http.StatusOK, wantData: marchallObj(t, store.SeedBatches())},
		{name: "enrolled student sees own", token: getSeedToken(t, "u3"), wantCode: http.StatusOK, wantData: marchallObj(t, store.SeedBatches())},
		{name: "unenrolled student sees none", token: getSeedToken(t, "u5"), wantCode: http.StatusOK, wantData: []byte(`[]`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/v1/batches", tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_batchApi_retrieve(t *testing.T) {
	app := setup(t)

	tests := []httpTest{
		{name: "admin", path: "/v1/batches/b1", token: getSeedToken(t, "u1"), wantCode: http.StatusOK},
		{name: "enrolled student", path: "/v1/batches/b1", token: getSeedToken(t, "u4"), wantCode: http.StatusOK},
		{name: "unenrolled student", path: "/v1/batches/b1", token: getSeedToken(t, "u5"), wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound)},
		{name: "absent id", path: "/v1/batches/nope", token: getSeedToken(t, "u1"), wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_batchApi_create(t *testing.T) {
	app := setup(t)
	start := core.Today().AddDate(0, 0, 7).Format(core.DateLayout)
	end := core.Today().AddDate(0, 3, 0).Format(core.DateLayout)

	validBody := []byte(fmt.Sprintf(
		`{"name":"Go Fundamentals","instructor_id":"u2","student_ids":["u5"],"start_date":%q,"end_date":%q}`,
		start, end,
	))

	tests := []httpTest{
		{name: "student forbidden", token: getSeedToken(t, "u3"), body: validBody, wantCode: http.StatusForbidden},
		{name: "instructor forbidden", token: getSeedToken(t, "u2"), body: validBody, wantCode: http.StatusForbidden},
		{name: "missing instructor", token: getSeedToken(t, "u1"),
			body:     []byte(fmt.Sprintf(`{"name":"B","start_date":%q}`, start)),
			wantCode: http.StatusBadRequest},
		{name: "end before start", token: getSeedToken(t, "u1"),
			body:     []byte(fmt.Sprintf(`{"name":"B","instructor_id":"u2","start_date":%q,"end_date":"2000-01-01"}`, start)),
			wantCode: http.StatusBadRequest},
		{name: "start in the past", token: getSeedToken(t, "u1"),
			body:     []byte(`{"name":"B","instructor_id":"u2","start_date":"2000-01-01"}`),
			wantCode: http.StatusBadRequest},
		{name: "valid", token: getSeedToken(t, "u1"), body: validBody, wantCode: http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/batches", tt.token, tt.body)
			app.ServeHTTP(rec, req)

			checkCodeAndData(t, tt, rec)
			if tt.wantCode != http.StatusCreated {
				return
			}

			var b batch.Batch
			if err := json.Unmarshal(rec.Body.Bytes(), &b); err != nil {
				t.Fatalf("unmarshalling response: %v", err)
			}
			if b.ID == "" || !b.InstructorID.Valid {
				t.Errorf("created batch missing fields: %+v", b)
			}
			wantStart, _ := time.Parse(core.DateLayout, start)
			if !b.StartDate.Equal(wantStart) {
				t.Errorf("StartDate = %v; want %v", b.StartDate, wantStart)
			}
		})
	}
}

func Test_batchApi_destroy_cascades(t *testing.T) {
	app := setup(t)

	req, rec := newAuthRequest(http.MethodDelete, "/v1/batches/b1", getSeedToken(t, "u2"))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("instructor delete code = %d; want 403", rec.Code)
	}

	req, rec = newAuthRequest(http.MethodDelete, "/v1/batches/b1", getSeedToken(t, "u1"))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("admin delete code = %d; want 204 (%s)", rec.Code, rec.Body.String())
	}

	ctx := context.Background()
	if _, err := db.GetAssignmentByID(ctx, "a1"); err == nil {
		t.Error("assignment a1 survived the cascade")
	}
	if _, err := db.GetSubmissionByID(ctx, "s1"); err == nil {
		t.Error("submission s1 survived the cascade")
	}
	users, _ := db.QueryAllUsers(ctx)
	if len(users) != 5 {
		t.Errorf("users len = %d; want untouched 5", len(users))
	}
}
