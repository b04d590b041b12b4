package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	. "github.com/trezcool/absensi/apps/api/echo"
	"github.com/trezcool/absensi/core"
	"github.com/trezcool/absensi/core/attendance"
	"github.com/trezcool/absensi/core/roster"
	"github.com/trezcool/absensi/services/email"
	"github.com/trezcool/absensi/services/export"
	"github.com/trezcool/absensi/storage/database/inmem"
	"github.com/trezcool/absensi/storage/remote"
	"github.com/trezcool/absensi/tests"
)

type env struct {
	app      *Server
	endpoint *testutil.Endpoint
	mailer   *emailsvc.ConsoleServiceMock
	store    core.KeyValueStore
	sessions *attendance.Sessions
}

func setup(t *testing.T, confirmWrites bool) env {
	conf := &core.Config{
		AppName:          "Absensi",
		TestMode:         true,
		SchoolName:       "SD Negeri 1",
		DefaultFromEmail: "noreply@example.com",
	}
	logger := testutil.NopLogger{}

	ep := testutil.NewEndpoint(t)
	client := remote.NewClient(ep.Config(confirmWrites), logger)

	validate, translator := core.NewValidator()
	roster.InitValidators(validate, translator)

	bus := core.NewBus()
	store := inmemdb.NewLocalStore(inmemdb.Open())
	rosterSvc := roster.NewService(client, store, bus, logger, time.Minute)
	attSvc := attendance.NewService(attendance.Deps{
		Remote:     client,
		Students:   rosterSvc,
		Store:      store,
		Bus:        bus,
		Logger:     logger,
		Validate:   validate,
		Policy:     attendance.DefaultPolicy(),
		Location:   time.FixedZone("WIB", 7*60*60),
		SchoolName: conf.SchoolName,
	})
	t.Cleanup(func() {
		attSvc.Close()
		rosterSvc.Close()
	})

	mailer := emailsvc.NewConsoleServiceMock(conf, logger)
	app := NewServer(ServerDeps{
		Conf:       conf,
		Logger:     logger,
		Attendance: attSvc,
		Roster:     rosterSvc,
		Renderer:   exportsvc.NewRenderer(),
		Mailer:     mailer,
		Validate:   validate,
		Translator: translator,
	})
	return env{app: app, endpoint: ep, mailer: mailer, store: store, sessions: attSvc.Sessions()}
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	wantCode int
	wantData []byte
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	return req, rec
}

func (e env) do(method, path string, data ...[]byte) *httptest.ResponseRecorder {
	req, rec := newRequest(method, path, data...)
	e.app.ServeHTTP(rec, req)
	return rec
}

func marshallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj(): %v", err)
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
