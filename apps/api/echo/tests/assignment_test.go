package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/nexuslms/nexus/core/assignment"
)

func Test_assignmentApi_query(t *testing.T) {
	app := setup(t)

	// add a draft so student/instructor visibility differs
	testCreateAssignment(t, app, getSeedToken(t, "u2"), `{"batch_id":"b1","title":"Draft Homework"}`)

	tests := []httpTest{
		{name: "no token", wantCode: http.StatusUnauthorized, extra: -1},
		{name: "admin sees all", token: getSeedToken(t, "u1"), wantCode: http.StatusOK, extra: 2},
		{name: "instructor sees own incl drafts", token: getSeedToken(t, "u2"), wantCode: http.StatusOK, extra: 2},
		{name: "student sees published only", token: getSeedToken(t, "u3"), wantCode: http.StatusOK, extra: 1},
		{name: "unenrolled student sees none", token: getSeedToken(t, "u5"), wantCode: http.StatusOK, extra: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/v1/assignments", tt.token)
			app.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("code = %d; want %d (%s)", rec.Code, tt.wantCode, rec.Body.String())
			}
			if wantLen, ok := tt.extra.(int); ok && wantLen >= 0 {
				var assigns []assignment.Assignment
				if err := json.Unmarshal(rec.Body.Bytes(), &assigns); err != nil {
					t.Fatalf("unmarshalling response: %v", err)
				}
				if len(assigns) != wantLen {
					t.Errorf("len = %d; want %d", len(assigns), wantLen)
				}
			}
		})
	}
}

func Test_assignmentApi_create(t *testing.T) {
	app := setup(t)

	tests := []httpTest{
		{name: "student forbidden", token: getSeedToken(t, "u3"),
			body: []byte(`{"batch_id":"b1","title":"T"}`), wantCode: http.StatusForbidden},
		{name: "missing title", token: getSeedToken(t, "u2"),
			body: []byte(`{"batch_id":"b1"}`), wantCode: http.StatusBadRequest},
		{name: "unknown batch", token: getSeedToken(t, "u2"),
			body: []byte(`{"batch_id":"nope","title":"T"}`), wantCode: http.StatusBadRequest},
		{name: "instructor on own batch", token: getSeedToken(t, "u2"),
			body: []byte(`{"batch_id":"b1","title":"Hooks Deep Dive","status":"PUBLISHED"}`), wantCode: http.StatusCreated},
		{name: "admin on any batch", token: getSeedToken(t, "u1"),
			body: []byte(`{"batch_id":"b1","title":"Admin Special"}`), wantCode: http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/assignments", tt.token, tt.body)
			app.ServeHTTP(rec, req)

			checkCodeAndData(t, tt, rec)
			if tt.wantCode != http.StatusCreated {
				return
			}

			var assign assignment.Assignment
			if err := json.Unmarshal(rec.Body.Bytes(), &assign); err != nil {
				t.Fatalf("unmarshalling response: %v", err)
			}
			if assign.MaxScore != assignment.DefaultMaxScore {
				t.Errorf("MaxScore = %d; want default %d", assign.MaxScore, assignment.DefaultMaxScore)
			}
		})
	}
}

func Test_assignmentApi_foreignInstructor(t *testing.T) {
	app := setup(t)

	// a second instructor without batches cannot touch b1's assignments
	otherToken := testCreateInstructorToken(t, app, "Eve Instructor", "eve@nexus.com")

	req, rec := newAuthRequest(http.MethodPost, "/v1/assignments", otherToken, []byte(`{"batch_id":"b1","title":"T"}`))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("create code = %d; want 403", rec.Code)
	}

	req, rec = newAuthRequest(http.MethodDelete, "/v1/assignments/a1", otherToken)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("delete code = %d; want 403", rec.Code)
	}
}

func Test_assignmentApi_destroy_cascades(t *testing.T) {
	app := setup(t)

	req, rec := newAuthRequest(http.MethodDelete, "/v1/assignments/a1", getSeedToken(t, "u2"))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("code = %d; want 204 (%s)", rec.Code, rec.Body.String())
	}

	req, rec = newAuthRequest(http.MethodGet, "/v1/submissions/s1", getSeedToken(t, "u1"))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("submission code = %d; want 404 after cascade", rec.Code)
	}
}

func testCreateAssignment(t *testing.T, app http.Handler, token, body string) {
	t.Helper()
	req, rec := newAuthRequest(http.MethodPost, "/v1/assignments", token, []byte(body))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("creating assignment: code = %d (%s)", rec.Code, rec.Body.String())
	}
}

func testCreateInstructorToken(t *testing.T, app http.Handler, name, email string) string {
	t.Helper()
	body := marchallObj(t, map[string]string{"name": name, "email": email, "role": "INSTRUCTOR"})
	req, rec := newAuthRequest(http.MethodPost, "/v1/users", getSeedToken(t, "u1"), body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("creating instructor: code = %d (%s)", rec.Code, rec.Body.String())
	}

	req, rec = newRequest(http.MethodPost, "/v1/users/login", marchallObj(t, map[string]string{"email": email}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("logging in instructor: code = %d (%s)", rec.Code, rec.Body.String())
	}
	var res struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("unmarshalling login response: %v", err)
	}
	return res.Token
}
