package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveRequest(t *testing.T) {
	m := New()
	m.ObserveRequest("/api/quiz/:id", "GET", 200, 5*time.Millisecond)
	m.ObserveRequest("/api/quiz/:id", "GET", 200, 5*time.Millisecond)
	m.ObserveRequest("", "GET", 404, time.Millisecond)

	if got := testutil.ToFloat64(m.HTTPRequests.WithLabelValues("/api/quiz/:id", "GET", "200")); got != 2 {
		t.Errorf("requests = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.HTTPRequests.WithLabelValues("unmatched", "GET", "404")); got != 1 {
		t.Errorf("unmatched requests = %v, want 1", got)
	}
}

func TestObserveAttempt(t *testing.T) {
	m := New()
	m.ObserveAttempt("session", 80)
	m.ObserveAttempt("regrade", 40)

	if got := testutil.ToFloat64(m.Attempts.WithLabelValues("session")); got != 1 {
		t.Errorf("session attempts = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(m.AttemptScore); got != 1 {
		t.Errorf("score histogram series = %d, want 1", got)
	}
}

func TestHandler(t *testing.T) {
	m := New()
	m.QuizzesCreated.Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)

	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(string(body), "quizcraft_quizzes_created_total 1") {
		t.Errorf("metrics output missing counter:\n%s", body)
	}
}
