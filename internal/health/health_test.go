package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) result {
	t.Helper()
	var body result
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}
	return body
}

func TestHealthz_AlwaysOK(t *testing.T) {
	s := New(0)
	rec := httptest.NewRecorder()
	s.Healthz(rec, httptest.NewRequest("GET", "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
	if got := decode(t, rec).Status; got != "ok" {
		t.Errorf("status = %q, want ok", got)
	}
}

func TestReadyz(t *testing.T) {
	pass := Checker{Name: "generation", Check: func(context.Context) error { return nil }}
	fail := Checker{Name: "translation", Check: func(context.Context) error { return errors.New("model missing") }}

	tests := []struct {
		name       string
		ready      bool
		checkers   []Checker
		wantStatus int
		wantBody   string
	}{
		{"not ready", false, []Checker{pass}, http.StatusServiceUnavailable, "not_ready"},
		{"ready no checkers", true, nil, http.StatusOK, "ok"},
		{"all pass", true, []Checker{pass}, http.StatusOK, "ok"},
		{"one fails", true, []Checker{pass, fail}, http.StatusServiceUnavailable, "fail"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(0, tt.checkers...)
			s.SetReady(tt.ready)

			rec := httptest.NewRecorder()
			s.Readyz(rec, httptest.NewRequest("GET", "/readyz", nil))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			body := decode(t, rec)
			if body.Status != tt.wantBody {
				t.Errorf("body status = %q, want %q", body.Status, tt.wantBody)
			}
			if tt.wantBody == "fail" && body.Checks["translation"] != "fail: model missing" {
				t.Errorf("checks = %v", body.Checks)
			}
		})
	}
}

func TestRegister_MountsMetrics(t *testing.T) {
	mux := http.NewServeMux()
	New(0).Register(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("/metrics status = %d, want 200", rec.Code)
	}
}
