package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	. "github.com/nexuslms/nexus/apps/api/echo"
	"github.com/nexuslms/nexus/core"
	"github.com/nexuslms/nexus/core/assignment"
	"github.com/nexuslms/nexus/core/batch"
	"github.com/nexuslms/nexus/core/submission"
	"github.com/nexuslms/nexus/core/user"
	emailsvc "github.com/nexuslms/nexus/services/email"
	feedbacksvc "github.com/nexuslms/nexus/services/feedback"
	"github.com/nexuslms/nexus/storage/store"
	testutil "github.com/nexuslms/nexus/tests"
)

var (
	conf *core.Config
	db   *store.Store

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errForbidden    = httpErr{Error: "permission denied"}
	errNotFound     = httpErr{Error: "not found"}
)

func setup(t *testing.T) Server {
	t.Helper()

	conf = &core.Config{
		TestMode:        true,
		AppName:         "Nexus",
		SecretKey:       "test-secret",
		DefaultFromName: "Nexus Academy",
		DefaultFromAddr: "noreply@nexus.com",
		Server:          core.ServerConfig{JWTExpirationDelta: time.Hour},
	}

	// set up store & services
	db = testutil.PrepareStore(t)
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	fbSvc := feedbacksvc.NewStaticService()

	usrSvc := user.NewService(db)
	batchSvc := batch.NewService(db)
	assignSvc := assignment.NewService(db, db)
	subSvc := submission.NewService(db, db, db, db, mailSvc, fbSvc)

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	batch.InitValidators(validate, translator)
	assignment.InitValidators(validate, translator)

	// set up server
	return NewServer(
		ServerDeps{
			Conf:           conf,
			Logger:         nopLogger{},
			Validate:       validate,
			Translator:     translator,
			UserSvc:        usrSvc,
			BatchSvc:       batchSvc,
			AssignmentSvc:  assignSvc,
			SubmissionSvc:  subSvc,
			Resetter:       db,
			DisableReqLogs: true,
		},
	)
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, usr user.User) string {
	claims := GetUserClaims(conf, usr)
	token, err := GenerateToken(conf, claims)
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func getSeedToken(t *testing.T, id string) string {
	t.Helper()
	for _, usr := range store.SeedUsers() {
		if usr.ID == id {
			return getToken(t, usr)
		}
	}
	t.Fatalf("getSeedToken(): unknown seed user %q", id)
	return ""
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
