package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizcraft/internal/auth"
	"github.com/abhisek/quizcraft/internal/llm"
	"github.com/abhisek/quizcraft/internal/logging"
	"github.com/abhisek/quizcraft/internal/metrics"
	"github.com/abhisek/quizcraft/internal/questiongen"
	"github.com/abhisek/quizcraft/internal/service"
	"github.com/abhisek/quizcraft/internal/store"
)

type testEnv struct {
	srv      *Server
	signer   *auth.Signer
	provider *llm.MockProvider
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st, err := store.Open(filepath.Join(t.TempDir(), "quizcraft.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	signer, err := auth.NewSigner("test-secret", time.Hour)
	require.NoError(t, err)

	provider := llm.NewMockProvider()
	log := logging.Discard()
	svc := service.New(service.Deps{
		Quizzes:   st.Quizzes(),
		Attempts:  st.Attempts(),
		Generator: questiongen.New(provider, questiongen.DefaultConfig()),
		Log:       log,
	})
	srv := New(Options{
		Service:     svc,
		Signer:      signer,
		Metrics:     metrics.New(),
		Log:         log,
		CORSOrigins: []string{"http://localhost:3000"},
		Health:      st.Ping,
	})
	return &testEnv{srv: srv, signer: signer, provider: provider}
}

func (e *testEnv) token(t *testing.T, user string) string {
	t.Helper()
	tok, err := e.signer.Issue(user, "")
	require.NoError(t, err)
	return tok
}

// do sends a request as user ("" for anonymous) and decodes a JSON body
// into out when out is non-nil.
func (e *testEnv) do(t *testing.T, method, path, user string, body any, out any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("Authorization", "Bearer "+e.token(t, user))
	}
	rec := httptest.NewRecorder()
	e.srv.ServeHTTP(rec, req)
	if out != nil && rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
	}
	return rec
}

var capitalsBody = map[string]any{
	"title": "Capitals",
	"topic": "geography",
	"timer": 60,
	"questions": []map[string]any{
		{"question": "France?", "options": []string{"Berlin", "Madrid", "Paris", "Rome"}, "answer": "C"},
		{"question": "Spain?", "options": []string{"Berlin", "Madrid", "Paris", "Rome"}, "answer": "Answer: B"},
	},
}

type quizBody struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	User  string `json:"user"`
}

func (e *testEnv) createQuiz(t *testing.T, user string) string {
	t.Helper()
	var resp struct {
		Message string   `json:"message"`
		Quiz    quizBody `json:"quiz"`
	}
	rec := e.do(t, http.MethodPost, "/api/quiz/create", user, capitalsBody, &resp)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "Quiz created successfully", resp.Message)
	return resp.Quiz.ID
}

type submittedBody struct {
	Message string `json:"message"`
	Attempt struct {
		ID             string  `json:"id"`
		Score          float64 `json:"score"`
		CorrectAnswers int     `json:"correctAnswers"`
		TotalQuestions int     `json:"totalQuestions"`
		QuizTitle      string  `json:"quizTitle"`
	} `json:"attempt"`
	NextDifficulty string `json:"nextDifficulty"`
}

func TestQuizLifecycle(t *testing.T) {
	e := newTestEnv(t)
	id := e.createQuiz(t, "alice")

	var got quizBody
	rec := e.do(t, http.MethodGet, "/api/quiz/"+id, "", nil, &got)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Capitals", got.Title)
	assert.Equal(t, "alice", got.User)

	var mine []quizBody
	rec = e.do(t, http.MethodGet, "/api/quiz/myquizzes", "alice", nil, &mine)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, mine, 1)

	rec = e.do(t, http.MethodGet, "/api/quiz/myquizzes", "bob", nil, &mine)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, mine)

	rec = e.do(t, http.MethodDelete, "/api/quiz/"+id, "bob", nil, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = e.do(t, http.MethodDelete, "/api/quiz/"+id, "alice", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, http.MethodGet, "/api/quiz/"+id, "", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStatusCodes(t *testing.T) {
	e := newTestEnv(t)

	tests := []struct {
		name   string
		method string
		path   string
		user   string
		body   any
		code   int
	}{
		{"create without token", http.MethodPost, "/api/quiz/create", "", capitalsBody, http.StatusUnauthorized},
		{"create missing title", http.MethodPost, "/api/quiz/create", "alice", map[string]any{"topic": "x"}, http.StatusBadRequest},
		{"create malformed json", http.MethodPost, "/api/quiz/create", "alice", "{not json", http.StatusBadRequest},
		{"get missing quiz", http.MethodGet, "/api/quiz/nope", "", nil, http.StatusNotFound},
		{"attempt missing quiz id", http.MethodPost, "/api/quiz/attempt", "alice", map[string]any{"answers": []any{}}, http.StatusBadRequest},
		{"attempt unknown quiz", http.MethodPost, "/api/quiz/attempt", "alice", map[string]any{"quiz": "nope"}, http.StatusNotFound},
		{"analytics without token", http.MethodGet, "/api/analytics/me", "", nil, http.StatusUnauthorized},
		{"delete unknown attempt", http.MethodDelete, "/api/analytics/nope", "alice", nil, http.StatusNotFound},
		{"generate without topic", http.MethodPost, "/ai/generate", "", map[string]any{"numQuestions": 3}, http.StatusBadRequest},
		{"session without quiz", http.MethodPost, "/api/attempt/session", "alice", map[string]any{}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body map[string]any
			rec := e.do(t, tt.method, tt.path, tt.user, tt.body, &body)
			assert.Equal(t, tt.code, rec.Code, rec.Body.String())
			assert.NotEmpty(t, body["message"])
		})
	}
}

func TestAttemptQuizRegrades(t *testing.T) {
	e := newTestEnv(t)
	id := e.createQuiz(t, "alice")

	var resp submittedBody
	rec := e.do(t, http.MethodPost, "/api/quiz/attempt", "bob", map[string]any{
		"quiz": id,
		"answers": []map[string]any{
			{"questionIndex": 0, "selectedOption": " paris ", "timeSpentSeconds": 4},
			{"questionIndex": 1, "selectedOption": "Paris", "timeSpentSeconds": 3},
		},
		"score":            100,
		"totalTimeSeconds": 7,
	}, &resp)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "Attempt saved successfully!", resp.Message)
	assert.Equal(t, 50.0, resp.Attempt.Score, "client score is ignored")
	assert.Equal(t, 2, resp.Attempt.TotalQuestions)
	assert.Equal(t, "medium", resp.NextDifficulty)
	assert.Equal(t, "Capitals", resp.Attempt.QuizTitle)
}

func TestAttemptIndexDefaults(t *testing.T) {
	e := newTestEnv(t)
	id := e.createQuiz(t, "alice")

	tests := []struct {
		name    string
		path    string
		answers []map[string]any
	}{
		{"regrade with index", "/api/quiz/attempt", []map[string]any{
			{"index": 0, "selectedOption": "Paris"},
			{"index": 1, "selectedOption": "Madrid"},
		}},
		{"regrade by position", "/api/quiz/attempt", []map[string]any{
			{"selectedOption": "Paris"},
			{"selectedOption": "Madrid"},
		}},
		{"submit with index", "/api/attempt/submit", []map[string]any{
			{"index": 1, "selectedOption": "Madrid", "isCorrect": true},
			{"index": 0, "selectedOption": "Paris", "isCorrect": true},
		}},
		{"submit by position", "/api/attempt/submit", []map[string]any{
			{"selectedOption": "Paris", "isCorrect": true},
			{"selectedOption": "Madrid", "isCorrect": true},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resp submittedBody
			rec := e.do(t, http.MethodPost, tt.path, "bob", map[string]any{
				"quiz":    id,
				"quizId":  id,
				"answers": tt.answers,
			}, &resp)
			require.Less(t, rec.Code, 300, rec.Body.String())
			assert.Equal(t, 2, resp.Attempt.TotalQuestions)
			assert.Equal(t, 2, resp.Attempt.CorrectAnswers)
			assert.Equal(t, 100.0, resp.Attempt.Score)
		})
	}
}

func TestSubmitAttemptTrustsFlags(t *testing.T) {
	e := newTestEnv(t)
	id := e.createQuiz(t, "alice")

	var resp submittedBody
	rec := e.do(t, http.MethodPost, "/api/attempt/submit", "bob", map[string]any{
		"quizId": id,
		"answers": []map[string]any{
			{"question": "France?", "selectedOption": "Rome", "isCorrect": true, "difficulty": "easy"},
			{"question": "Spain?", "selectedOption": "Rome", "isCorrect": false},
		},
		"score":          2,
		"correctAnswers": 2,
	}, &resp)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Attempt saved", resp.Message)
	assert.Equal(t, 1, resp.Attempt.CorrectAnswers)
	assert.Equal(t, 50.0, resp.Attempt.Score)

	var report struct {
		TotalAttempts int     `json:"totalAttempts"`
		AvgScore      float64 `json:"avgScore"`
		Attempts      []struct {
			ID        string `json:"id"`
			QuizTitle string `json:"quizTitle"`
		} `json:"attempts"`
	}
	rec = e.do(t, http.MethodGet, "/api/analytics/me", "bob", nil, &report)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, report.TotalAttempts)
	assert.Equal(t, 50.0, report.AvgScore)
	require.Len(t, report.Attempts, 1)
	assert.Equal(t, "Capitals", report.Attempts[0].QuizTitle)

	rec = e.do(t, http.MethodDelete, "/api/analytics/"+resp.Attempt.ID, "alice", nil, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	var msg map[string]string
	rec = e.do(t, http.MethodDelete, "/api/analytics/"+resp.Attempt.ID, "bob", nil, &msg)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Analysis deleted successfully", msg["message"])
}

func TestEmptyAnalytics(t *testing.T) {
	e := newTestEnv(t)
	var report map[string]any
	rec := e.do(t, http.MethodGet, "/api/analytics/me", "nobody", nil, &report)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0.0, report["totalAttempts"])
	assert.Equal(t, 0.0, report["avgScore"])
	assert.Equal(t, []any{}, report["attempts"])
}

func TestSessionFlow(t *testing.T) {
	e := newTestEnv(t)
	id := e.createQuiz(t, "alice")

	var sess struct {
		ID       string `json:"id"`
		QuizID   string `json:"quizId"`
		Deadline string `json:"deadline"`
	}
	rec := e.do(t, http.MethodPost, "/api/attempt/session", "bob", map[string]any{"quizId": id}, &sess)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, id, sess.QuizID)
	assert.NotEmpty(t, sess.Deadline)

	path := "/api/attempt/session/" + sess.ID
	rec = e.do(t, http.MethodPut, path+"/answers", "bob", map[string]any{"questionIndex": 0, "selectedOption": "Paris"}, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = e.do(t, http.MethodPut, path+"/answers", "eve", map[string]any{"questionIndex": 0, "selectedOption": "Rome"}, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = e.do(t, http.MethodPut, path+"/answers", "bob", map[string]any{"questionIndex": 7, "selectedOption": "Rome"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = e.do(t, http.MethodPut, path+"/answers", "bob", map[string]any{"selectedOption": "Rome"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "an answer must name its question")
	rec = e.do(t, http.MethodPut, path+"/answers", "bob", map[string]any{"index": 1, "selectedOption": "Rome"}, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = e.do(t, http.MethodPut, path+"/answers", "bob", map[string]any{"index": 1, "selectedOption": "Madrid"}, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	var resp submittedBody
	rec = e.do(t, http.MethodPost, path+"/submit", "bob", nil, &resp)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 2, resp.Attempt.TotalQuestions)
	assert.Equal(t, 100.0, resp.Attempt.Score)
	assert.Equal(t, "hard", resp.NextDifficulty)

	rec = e.do(t, http.MethodPost, path+"/submit", "bob", nil, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestGenerate(t *testing.T) {
	e := newTestEnv(t)
	e.provider.AddResponse(llm.MockResponse{Text: "Q: What is 2 + 2?\nA) 3\nB) 4\nC) 5\nD) 6\nAnswer: B"})

	var resp struct {
		Questions []struct {
			Question string   `json:"question"`
			Options  []string `json:"options"`
			Answer   string   `json:"answer"`
		} `json:"questions"`
	}
	rec := e.do(t, http.MethodPost, "/ai/generate", "", map[string]any{"topic": "arithmetic", "numQuestions": 1}, &resp)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Len(t, resp.Questions, 1)
	assert.Equal(t, "What is 2 + 2?", resp.Questions[0].Question)
	assert.Equal(t, "B", resp.Questions[0].Answer)

	e.provider.AddResponse(llm.MockResponse{Text: "I cannot help with that."})
	var empty map[string]any
	rec = e.do(t, http.MethodPost, "/ai/generate", "", map[string]any{"topic": "arithmetic"}, &empty)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{}, empty["questions"])
}

func TestGenerateProviderError(t *testing.T) {
	e := newTestEnv(t)
	e.provider.AddResponse(llm.MockResponse{Err: &llm.ProviderError{
		Provider: "gemini", Kind: llm.KindRateLimit, StatusCode: 429, Detail: "quota exceeded",
	}})

	var body map[string]string
	rec := e.do(t, http.MethodPost, "/ai/generate", "", map[string]any{"topic": "history"}, &body)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "Failed to generate AI response", body["message"])
	assert.Equal(t, "quota exceeded", body["details"])
}

func TestHealthAndMetrics(t *testing.T) {
	e := newTestEnv(t)

	var health map[string]string
	rec := e.do(t, http.MethodGet, "/health", "", nil, &health)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", health["status"])

	e.do(t, http.MethodGet, "/api/quiz/nope", "", nil, nil)
	rec = e.do(t, http.MethodGet, "/metrics", "", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `quizcraft_http_requests_total{method="GET",route="/api/quiz/:id",status="404"} 1`), rec.Body.String())
}

func TestHealthUnavailable(t *testing.T) {
	gin.SetMode(gin.TestMode)
	signer, _ := auth.NewSigner("s", 0)
	srv := New(Options{
		Service: service.New(service.Deps{}),
		Signer:  signer,
		Log:     logging.Discard(),
		Health:  func(context.Context) error { return errors.New("db down") },
	})
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	e := newTestEnv(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/quiz/create", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	e.srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}
