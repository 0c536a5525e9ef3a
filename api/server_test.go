package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/seenimoa/bizreport/internal/config"
)

// ════════════════════════════════════════════════════════════════════
// Test Helpers
// ════════════════════════════════════════════════════════════════════

const testReport = `<!DOCTYPE html><html><body><h1>Business Performance Report</h1></body></html>`

func testServer(t *testing.T, reportPath string) *Server {
	t.Helper()
	cfg := &config.Config{
		SMTP: config.SMTPConfig{Host: "smtp.gmail.com", Port: 465, Password: "super-secret-token"},
	}
	return NewServer(cfg, reportPath, zerolog.Nop())
}

func writeReport(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "report.html")
	if err := os.WriteFile(path, []byte(testReport), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp
}

func get(t *testing.T, srv *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

// ════════════════════════════════════════════════════════════════════
// Report
// ════════════════════════════════════════════════════════════════════

func TestHandleReportServesFile(t *testing.T) {
	srv := testServer(t, writeReport(t))

	rec := get(t, srv, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
	if rec.Body.String() != testReport {
		t.Errorf("body = %q, want report bytes", rec.Body.String())
	}
	if rec.Header().Get("Cache-Control") == "" {
		t.Error("expected Cache-Control header")
	}
}

func TestHandleReportPicksUpRebuild(t *testing.T) {
	path := writeReport(t)
	srv := testServer(t, path)
	get(t, srv, "/")

	updated := strings.Replace(testReport, "Business", "Quarterly", 1)
	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		t.Fatal(err)
	}
	if body := get(t, srv, "/").Body.String(); body != updated {
		t.Errorf("body = %q, want rebuilt report", body)
	}
}

func TestHandleReportMissingFile(t *testing.T) {
	srv := testServer(t, filepath.Join(t.TempDir(), "missing.html"))

	rec := get(t, srv, "/")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "No report has been generated yet") {
		t.Errorf("expected placeholder page, got %q", rec.Body.String())
	}
}

func TestHandleReportInfo(t *testing.T) {
	path := writeReport(t)
	srv := testServer(t, path)

	rec := get(t, srv, "/api/v1/report")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Success bool       `json:"success"`
		Data    ReportInfo `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if !body.Success || !body.Data.Exists || body.Data.Path != path {
		t.Errorf("unexpected info: %+v", body)
	}
	if body.Data.Size != int64(len(testReport)) {
		t.Errorf("size = %d, want %d", body.Data.Size, len(testReport))
	}
}

func TestHandleReportInfoMissing(t *testing.T) {
	srv := testServer(t, filepath.Join(t.TempDir(), "missing.html"))
	resp := decodeResponse(t, get(t, srv, "/api/v1/report"))
	data, ok := resp.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("data type = %T", resp.Data)
	}
	if data["exists"] != false {
		t.Errorf("exists = %v, want false", data["exists"])
	}
}

// ════════════════════════════════════════════════════════════════════
// Health / Config
// ════════════════════════════════════════════════════════════════════

func TestHandleHealth(t *testing.T) {
	srv := testServer(t, writeReport(t))
	for _, path := range []string{"/health", "/api/v1/health"} {
		rec := get(t, srv, path)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status = %d", path, rec.Code)
		}
		resp := decodeResponse(t, rec)
		if !resp.Success {
			t.Errorf("%s: success = false", path)
		}
		data := resp.Data.(map[string]interface{})
		if data["status"] != "ok" {
			t.Errorf("%s: status = %v", path, data["status"])
		}
	}
}

func TestHandleGetConfigHidesPassword(t *testing.T) {
	srv := testServer(t, writeReport(t))
	rec := get(t, srv, "/api/v1/config")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if strings.Contains(body, "super-secret-token") {
		t.Error("config response leaks the SMTP password")
	}
	if !strings.Contains(body, "smtp.gmail.com") {
		t.Errorf("config response missing SMTP host: %s", body)
	}
}

func TestHandleGetSecretsMasks(t *testing.T) {
	t.Setenv("BIZREPORT_SMTP_PASSWORD", "")
	srv := testServer(t, writeReport(t))
	body := get(t, srv, "/api/v1/config/secrets").Body.String()
	if strings.Contains(body, "super-secret-token") {
		t.Error("secrets response leaks the password")
	}
	if !strings.Contains(body, "sup...ken") {
		t.Errorf("expected masked password in %s", body)
	}
}

// ════════════════════════════════════════════════════════════════════
// Middleware
// ════════════════════════════════════════════════════════════════════

func TestCORSPreflight(t *testing.T) {
	srv := testServer(t, writeReport(t))
	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "GET")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got == "" {
		t.Error("expected Access-Control-Allow-Origin header")
	}
}

func TestRequestLoggerInjectsContextLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	var fromCtx *zerolog.Logger
	h := RequestLogger(&logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fromCtx = zerolog.Ctx(r.Context())
		fromCtx.Info().Msg("inside handler")
		w.WriteHeader(http.StatusTeapot)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/probe", nil))

	if fromCtx == nil || fromCtx.GetLevel() == zerolog.Disabled {
		t.Fatal("expected a request logger in the context")
	}
	out := buf.String()
	if !strings.Contains(out, `"path":"/probe"`) || !strings.Contains(out, "inside handler") {
		t.Errorf("log output missing request fields: %s", out)
	}
	if !strings.Contains(out, `"status":418`) {
		t.Errorf("log output missing status: %s", out)
	}
}

// ════════════════════════════════════════════════════════════════════
// Lifecycle
// ════════════════════════════════════════════════════════════════════

func TestServeShutsDownOnCancel(t *testing.T) {
	srv := testServer(t, writeReport(t))
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/")
	if err != nil {
		cancel()
		t.Fatalf("GET: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != testReport {
		t.Errorf("body = %q", body)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve returned %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestListenAndServeBadAddr(t *testing.T) {
	srv := testServer(t, writeReport(t))
	if err := srv.ListenAndServe(context.Background(), "256.0.0.1:bogus"); err == nil {
		t.Fatal("expected listen error")
	}
}
