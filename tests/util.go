package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/trezcool/absensi/core"
)

// SubmitAttendance is the key of the write that posts a bare array of daily entries.
const SubmitAttendance = "submitAttendance"

// NopLogger discards everything.
type NopLogger struct{}

var _ core.Logger = NopLogger{}

func (NopLogger) Debug(string, ...interface{}) {}
func (NopLogger) Info(string, ...interface{})  {}
func (NopLogger) Warn(string, ...interface{})  {}
func (NopLogger) Error(string, ...interface{}) {}
func (NopLogger) Fatal(string, ...interface{}) {}

type (
	// Post is a write received by the Endpoint.
	Post struct {
		Type        string
		ContentType string
		Body        []byte
	}

	reply struct {
		status int
		body   string
	}

	// Endpoint fakes the remote spreadsheet endpoint.
	// Reads are answered by `action` query param ("" lists the students), writes by payload type.
	Endpoint struct {
		Server *httptest.Server

		mu      sync.Mutex
		replies map[string][]reply
		posts   []Post
		gets    []string
	}
)

func NewEndpoint(t *testing.T) *Endpoint {
	e := &Endpoint{replies: make(map[string][]reply)}
	e.Server = httptest.NewServer(http.HandlerFunc(e.serve))
	t.Cleanup(e.Server.Close)
	return e
}

// Config returns a remote configuration pointing to the endpoint.
func (e *Endpoint) Config(confirmWrites bool) core.RemoteConfig {
	return core.RemoteConfig{
		BaseURL:       e.Server.URL,
		Timeout:       2 * time.Second,
		DeleteTimeout: 2 * time.Second,
		ConfirmWrites: confirmWrites,
	}
}

// Respond queues a reply for key. The last reply of a key is repeated once the others are used.
func (e *Endpoint) Respond(key string, status int, body string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.replies[key] = append(e.replies[key], reply{status, body})
}

// RespondData queues a successful envelope carrying data.
func (e *Endpoint) RespondData(key string, data interface{}) {
	e.Respond(key, http.StatusOK, Success(data))
}

func (e *Endpoint) Posts() []Post {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Post, len(e.posts))
	copy(out, e.posts)
	return out
}

// Gets returns the actions of the reads received, in order.
func (e *Endpoint) Gets() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, len(e.gets))
	copy(out, e.gets)
	return out
}

func (e *Endpoint) serve(w http.ResponseWriter, r *http.Request) {
	var key string
	switch r.Method {
	case http.MethodGet:
		key = r.URL.Query().Get("action")
		e.mu.Lock()
		e.gets = append(e.gets, key)
		e.mu.Unlock()
	case http.MethodPost:
		body, _ := io.ReadAll(r.Body)
		key = payloadType(body)
		e.mu.Lock()
		e.posts = append(e.posts, Post{Type: key, ContentType: r.Header.Get("Content-Type"), Body: body})
		e.mu.Unlock()
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	rep := e.next(key, r.Method)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(rep.status)
	_, _ = io.WriteString(w, rep.body)
}

func (e *Endpoint) next(key, method string) reply {
	e.mu.Lock()
	defer e.mu.Unlock()
	queue := e.replies[key]
	switch len(queue) {
	case 0:
		if method == http.MethodPost {
			return reply{http.StatusOK, `{"success":true}`}
		}
		return reply{http.StatusOK, Success([]interface{}{})}
	case 1:
		return queue[0]
	}
	e.replies[key] = queue[1:]
	return queue[0]
}

func payloadType(body []byte) string {
	body = bytes.TrimSpace(body)
	if len(body) > 0 && body[0] == '[' {
		return SubmitAttendance
	}
	var p struct {
		Type string `json:"type"`
	}
	_ = json.Unmarshal(body, &p)
	return p.Type
}

// Success returns a successful envelope carrying data.
func Success(data interface{}) string {
	b, err := json.Marshal(map[string]interface{}{"success": true, "data": data})
	if err != nil {
		panic(err)
	}
	return string(b)
}

// Failure returns a `success:false` envelope.
func Failure(message string) string {
	b, _ := json.Marshal(map[string]interface{}{"success": false, "message": message})
	return string(b)
}
