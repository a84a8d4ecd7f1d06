package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/supplychain-graph/server/internal/config"
	"github.com/supplychain-graph/server/internal/graph"
)

// fakeSession is an in-memory graph.SessionHandle for handler tests. It
// answers node creation, endpoint lookup, and merge statements and records
// whether it was released.
type fakeSession struct {
	rows    [][]map[string]any
	err     error
	calls   int
	cyphers []string
	closed  bool
}

func (f *fakeSession) Run(_ context.Context, cypher string, _ map[string]any) ([]map[string]any, error) {
	f.cyphers = append(f.cyphers, cypher)
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if strings.HasPrefix(strings.TrimSpace(cypher), "CREATE") {
		return []map[string]any{{"id": fmt.Sprintf("4:n:%d", f.calls), "props": map[string]any{}}}, nil
	}
	if f.calls-1 < len(f.rows) {
		return f.rows[f.calls-1], nil
	}
	return nil, nil
}

func (f *fakeSession) Close(context.Context) error {
	f.closed = true
	return nil
}

type fakeGraphStore struct {
	session *fakeSession
	pingErr error
}

func (f *fakeGraphStore) Session(context.Context) graph.SessionHandle {
	return f.session
}

func (f *fakeGraphStore) Ping(context.Context) error {
	return f.pingErr
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:           "127.0.0.1",
			Port:           8080,
			RequestTimeout: time.Minute,
		},
		Upload: config.UploadConfig{
			MaxFileSize: 1 << 20,
			Timeout:     time.Minute,
		},
		Logging: config.LoggingConfig{Level: "info", Format: "text"},
	}
}

func newTestServer(store *fakeGraphStore) *Server {
	return NewServer(store, nil, testConfig())
}

// multipartBody packages csvText as the "file" form field.
func multipartBody(t *testing.T, fileName, csvText string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		t.Fatalf("CreateFormFile() error = %v", err)
	}
	if _, err := fw.Write([]byte(csvText)); err != nil {
		t.Fatalf("writing form file: %v", err)
	}
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func TestUploadCSV_NoFile(t *testing.T) {
	srv := newTestServer(&fakeGraphStore{session: &fakeSession{}})

	body, contentType := func() (*bytes.Buffer, string) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		mw.WriteField("name", "products")
		mw.Close()
		return &buf, mw.FormDataContentType()
	}()

	req := httptest.NewRequest(http.MethodPost, "/Info/upload-csv", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestUploadCSV_NodeFile(t *testing.T) {
	session := &fakeSession{}
	srv := newTestServer(&fakeGraphStore{session: session})

	body, contentType := multipartBody(t, "products.csv", "ID,Type,Name\n1,Product,Widget\n2,Product,Gadget\n")
	req := httptest.NewRequest(http.MethodPost, "/Info/upload-csv", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if !strings.Contains(resp.Message, "imported 2 of 2 rows from products.csv") {
		t.Errorf("message = %q", resp.Message)
	}
	if session.calls != 2 {
		t.Errorf("store was called %d times, want 2", session.calls)
	}
	if !session.closed {
		t.Error("session was not closed")
	}
}

func TestUploadCSV_MalformedStream(t *testing.T) {
	session := &fakeSession{}
	srv := newTestServer(&fakeGraphStore{session: session})

	body, contentType := multipartBody(t, "products.csv", "ID,Type\n1,Product,extra\n")
	req := httptest.NewRequest(http.MethodPost, "/Info/upload-csv", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if !session.closed {
		t.Error("session was not closed on the error path")
	}
}

func TestImportHistory_DisabledLedger(t *testing.T) {
	srv := newTestServer(&fakeGraphStore{session: &fakeSession{}})

	req := httptest.NewRequest(http.MethodGet, "/Info/import-history", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Errorf("body = %q, want empty list", got)
	}
}

func TestListEntities(t *testing.T) {
	session := &fakeSession{rows: [][]map[string]any{{
		{"id": "4:n:1", "props": map[string]any{"ID": int64(7), "Name": "Widget"}},
	}}}
	srv := newTestServer(&fakeGraphStore{session: session})

	req := httptest.NewRequest(http.MethodGet, "/api/products/", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var records []struct {
		ID         string         `json:"id"`
		Properties map[string]any `json:"properties"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&records); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(records) != 1 || records[0].ID != "4:n:1" {
		t.Errorf("records = %+v", records)
	}
	if !session.closed {
		t.Error("session was not closed")
	}
}

func TestUnknownEntity(t *testing.T) {
	srv := newTestServer(&fakeGraphStore{session: &fakeSession{}})

	req := httptest.NewRequest(http.MethodGet, "/api/widgets/", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestGetEntity_NotFound(t *testing.T) {
	srv := newTestServer(&fakeGraphStore{session: &fakeSession{}})

	req := httptest.NewRequest(http.MethodGet, "/api/products/404", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestCreateEntity(t *testing.T) {
	session := &fakeSession{}
	srv := newTestServer(&fakeGraphStore{session: session})

	body := strings.NewReader(`{"ID": 7, "Name": "Widget"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/products/", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	// Result() reflects the headers as of WriteHeader, so this catches a
	// Content-Type set too late to reach the wire.
	if got := rec.Result().Header.Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", got)
	}
}

func TestCreateEntity_InvalidPropertyName(t *testing.T) {
	srv := newTestServer(&fakeGraphStore{session: &fakeSession{}})

	body := strings.NewReader(`{"bad-name": 7}`)
	req := httptest.NewRequest(http.MethodPost, "/api/products/", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestDeleteEntity(t *testing.T) {
	session := &fakeSession{rows: [][]map[string]any{{
		{"id": "4:n:1", "props": map[string]any{"ID": int64(7)}},
	}}}
	srv := newTestServer(&fakeGraphStore{session: session})

	req := httptest.NewRequest(http.MethodDelete, "/api/products/7", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestHealth(t *testing.T) {
	srv := newTestServer(&fakeGraphStore{session: &fakeSession{}})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestHealth_StoreUnreachable(t *testing.T) {
	srv := newTestServer(&fakeGraphStore{session: &fakeSession{}, pingErr: errors.New("refused")})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func TestSecurityHeaders(t *testing.T) {
	srv := newTestServer(&fakeGraphStore{session: &fakeSession{}})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q, want DENY", got)
	}
}

func TestRequestLogging(t *testing.T) {
	var buf bytes.Buffer
	orig := middleware.DefaultLogger
	middleware.DefaultLogger = middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger: log.New(&buf, "", 0),
	})
	defer func() { middleware.DefaultLogger = orig }()

	srv := newTestServer(&fakeGraphStore{session: &fakeSession{}})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if !strings.Contains(buf.String(), "/healthz") {
		t.Errorf("no access log line for the request, got %q", buf.String())
	}
}

func TestRateLimiter_Allow(t *testing.T) {
	rl := newRateLimiter(2, time.Minute)

	if !rl.allow("10.0.0.1") || !rl.allow("10.0.0.1") {
		t.Fatal("first two requests should be allowed")
	}
	if rl.allow("10.0.0.1") {
		t.Error("third request within the window should be denied")
	}
	if !rl.allow("10.0.0.2") {
		t.Error("a different IP should have its own bucket")
	}
}
