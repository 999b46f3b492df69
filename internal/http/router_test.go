package http

import (
	"encoding/json"
	"fmt"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/algotutor/internal/admission"
	httpH "github.com/abhisek/algotutor/internal/http/handlers"
	"github.com/abhisek/algotutor/internal/llm"
	"github.com/abhisek/algotutor/internal/logger"
	"github.com/abhisek/algotutor/internal/session"
	"github.com/abhisek/algotutor/internal/store"
	"github.com/abhisek/algotutor/internal/store/storetest"
	"github.com/abhisek/algotutor/internal/topicgraph"
)

const bfs = "Breadth-First Search"

type testServer struct {
	engine *gin.Engine
	llm    *llm.MockProvider
	svc    *session.Service
}

func newTestServer(t *testing.T, gw store.Gateway, limit admission.Config) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	g, err := topicgraph.Default()
	require.NoError(t, err)
	mock := llm.NewMockProvider()
	svc := session.New(session.Deps{Gateway: gw, Graph: g, Provider: mock}, session.DefaultConfig())

	engine := NewRouter(RouterConfig{
		SessionHandler: httpH.NewSessionHandler(svc),
		TopicHandler:   httpH.NewTopicHandler(g),
		HealthHandler:  httpH.NewHealthHandler(svc.Mode),
		Limiter:        admission.NewMemoryLimiter(limit),
		Logger:         logger.Nop(),
	})
	return &testServer{engine: engine, llm: mock, svc: svc}
}

func (s *testServer) do(t *testing.T, method, path, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), "body: %s", rec.Body.String())
	return rec.Code, out
}

func errorCode(body map[string]any) string {
	e, _ := body["error"].(map[string]any)
	code, _ := e["code"].(string)
	return code
}

func quizJSON(n int) json.RawMessage {
	qs := make([]map[string]any, n)
	for i := range qs {
		qs[i] = map[string]any{
			"question": fmt.Sprintf("What does line %d of this BFS loop do?", i+1),
			"options":  map[string]any{"A": "pops the frontier", "B": "pushes the root", "C": "marks visited", "D": "returns"},
			"correct":  "A",
		}
	}
	b, _ := json.Marshal(map[string]any{"questions": qs})
	return b
}

var generous = admission.Config{Max: 100, Window: time.Minute}

func TestSessionFlow(t *testing.T) {
	s := newTestServer(t, storetest.Open(t), generous)

	status, body := s.do(t, nethttp.MethodPost, "/api/start-session",
		`{"userId":"s1","languageInput":"Python","topic":"Breadth-First Search"}`)
	require.Equal(t, nethttp.StatusOK, status)
	assert.Equal(t, "online", body["mode"])
	sessionID, _ := body["sessionId"].(string)
	require.NotEmpty(t, sessionID)

	s.llm.AddResponse(llm.TextResponse("A queue holds the frontier."))
	status, body = s.do(t, nethttp.MethodPost, "/api/chat", fmt.Sprintf(
		`{"sessionId":%q,"userId":"s1","topic":%q,"languageInput":"Python","messages":[{"role":"user","content":"What is BFS?"}]}`,
		sessionID, bfs))
	require.Equal(t, nethttp.StatusOK, status)
	assert.Equal(t, "A queue holds the frontier.", body["reply"])
	assert.Equal(t, "online", body["mode"])

	status, body = s.do(t, nethttp.MethodPost, "/api/load-session", `{"userId":"s1"}`)
	require.Equal(t, nethttp.StatusOK, status)
	assert.Equal(t, sessionID, body["sessionId"])
	assert.Equal(t, "Python", body["language"])
	assert.Equal(t, bfs, body["topic"])
	assert.Equal(t, []any{}, body["masteredTopics"])
	msgs, _ := body["messages"].([]any)
	require.Len(t, msgs, 2)
	assert.Equal(t, map[string]any{"role": "user", "content": "What is BFS?"}, msgs[0])
	assert.Equal(t, map[string]any{"role": "assistant", "content": "A queue holds the frontier."}, msgs[1])
}

func TestQuizFlowPromotes(t *testing.T) {
	s := newTestServer(t, storetest.Open(t), generous)

	s.llm.AddResponse(llm.MockResponse{Content: quizJSON(5)})
	status, body := s.do(t, nethttp.MethodPost, "/api/get-test",
		`{"topic":"Breadth-First Search","languageInput":"Python","userId":"s1"}`)
	require.Equal(t, nethttp.StatusOK, status)
	test, _ := body["test"].([]any)
	require.Len(t, test, 5)
	first := test[0].(map[string]any)
	assert.Equal(t, "A", first["correct"])
	assert.Len(t, first["options"], 4)

	answers := make([]string, 5)
	for i := range answers {
		answers[i] = `{"question":"q","selected":"A","correct":"A"}`
	}
	status, body = s.do(t, nethttp.MethodPost, "/api/submit-test",
		`{"userId":"s1","topic":"Breadth-First Search","answers":[`+strings.Join(answers, ",")+`]}`)
	require.Equal(t, nethttp.StatusOK, status)
	assert.Equal(t, "Passed", body["result"])
	assert.EqualValues(t, 5, body["correct"])
	assert.Equal(t, true, body["promoted"])

	_, body = s.do(t, nethttp.MethodPost, "/api/load-session", `{"userId":"s1"}`)
	assert.Equal(t, []any{bfs}, body["masteredTopics"])
}

func TestSubmitFailsOnOneWrongAnswer(t *testing.T) {
	s := newTestServer(t, storetest.Open(t), generous)

	answers := []string{
		`{"question":"q1","selected":"A","correct":"A"}`,
		`{"question":"q2","selected":"b","correct":"B"}`,
		`{"question":"q3","selected":"C","correct":"C"}`,
		`{"question":"q4","selected":"D","correct":"D"}`,
		`{"question":"q5","selected":"","correct":"A"}`,
	}
	status, body := s.do(t, nethttp.MethodPost, "/api/submit-test",
		`{"userId":"s1","topic":"Breadth-First Search","answers":[`+strings.Join(answers, ",")+`]}`)
	require.Equal(t, nethttp.StatusOK, status)
	assert.Equal(t, "Failed", body["result"])
	assert.EqualValues(t, 4, body["correct"])
	assert.Equal(t, false, body["promoted"])
}

func TestErrorMapping(t *testing.T) {
	s := newTestServer(t, storetest.Open(t), generous)

	tests := []struct {
		name       string
		path       string
		body       string
		setup      func()
		wantStatus int
		wantCode   string
	}{
		{"missing userId", "/api/start-session", `{"languageInput":"Go","topic":"Breadth-First Search"}`, nil,
			nethttp.StatusBadRequest, "validation_error"},
		{"unknown topic", "/api/start-session", `{"userId":"s1","languageInput":"Go","topic":"Quantum Search"}`, nil,
			nethttp.StatusBadRequest, "validation_error"},
		{"bad role", "/api/chat", `{"sessionId":"x","userId":"s1","topic":"Breadth-First Search","languageInput":"Go","messages":[{"role":"system","content":"hi"}]}`, nil,
			nethttp.StatusBadRequest, "validation_error"},
		{"no answers", "/api/submit-test", `{"userId":"s1","topic":"Breadth-First Search","answers":[]}`, nil,
			nethttp.StatusBadRequest, "validation_error"},
		{"malformed quiz", "/api/get-test", `{"topic":"Breadth-First Search","languageInput":"Go"}`,
			func() { s.llm.AddResponse(llm.MockResponse{Content: quizJSON(4)}) },
			nethttp.StatusBadGateway, "malformed_model_output"},
		{"model down", "/api/get-test", `{"topic":"Breadth-First Search","languageInput":"Go"}`, nil,
			nethttp.StatusBadGateway, "model_unavailable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setup != nil {
				tt.setup()
			}
			status, body := s.do(t, nethttp.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantCode, errorCode(body))
		})
	}
}

func TestChatModelFailureIsReply(t *testing.T) {
	s := newTestServer(t, storetest.Open(t), generous)

	status, body := s.do(t, nethttp.MethodPost, "/api/chat",
		`{"sessionId":"x","userId":"s1","topic":"Breadth-First Search","languageInput":"Go","messages":[{"role":"user","content":"hi"}]}`)
	require.Equal(t, nethttp.StatusOK, status)
	reply, _ := body["reply"].(string)
	assert.True(t, strings.HasPrefix(reply, "Model error: "), reply)
}

func TestOfflineDegradation(t *testing.T) {
	s := newTestServer(t, &storetest.FailingGateway{}, generous)

	status, body := s.do(t, nethttp.MethodPost, "/api/start-session",
		`{"userId":"s1","languageInput":"Go","topic":"Breadth-First Search"}`)
	require.Equal(t, nethttp.StatusOK, status)
	assert.Equal(t, "offline", body["mode"])
	assert.NotEmpty(t, body["sessionId"])

	status, body = s.do(t, nethttp.MethodPost, "/api/load-session", `{"userId":"s1"}`)
	require.Equal(t, nethttp.StatusOK, status)
	assert.Equal(t, "offline", body["mode"])
	assert.Equal(t, []any{}, body["messages"])

	status, body = s.do(t, nethttp.MethodPost, "/api/check-student-code", `{"studentCode":"ABC123"}`)
	assert.Equal(t, nethttp.StatusInternalServerError, status)
	assert.Equal(t, "persistence_unavailable", errorCode(body))

	_, body = s.do(t, nethttp.MethodGet, "/healthcheck", "")
	assert.Equal(t, "offline", body["mode"])
}

func TestCheckStudentCode(t *testing.T) {
	s := newTestServer(t, storetest.Open(t), generous)

	_, body := s.do(t, nethttp.MethodPost, "/api/check-student-code", `{"studentCode":"ABC123"}`)
	assert.Equal(t, false, body["exists"])
	_, body = s.do(t, nethttp.MethodPost, "/api/check-student-code", `{"studentCode":"ABC123"}`)
	assert.Equal(t, true, body["exists"])
}

func TestAdmissionGuardsModelRoutes(t *testing.T) {
	s := newTestServer(t, storetest.Open(t), admission.Config{Max: 1, Window: time.Minute})

	s.llm.AddResponse(llm.MockResponse{Content: quizJSON(5)})
	status, _ := s.do(t, nethttp.MethodPost, "/api/get-test",
		`{"topic":"Breadth-First Search","languageInput":"Go","userId":"s1"}`)
	require.Equal(t, nethttp.StatusOK, status)

	calls := s.llm.CallCount()
	status, body := s.do(t, nethttp.MethodPost, "/api/chat",
		`{"sessionId":"x","userId":"s1","topic":"Breadth-First Search","languageInput":"Go","messages":[{"role":"user","content":"hi"}]}`)
	assert.Equal(t, nethttp.StatusTooManyRequests, status)
	assert.Equal(t, "rate_limited", errorCode(body))
	assert.Equal(t, calls, s.llm.CallCount(), "rejected request must not reach the model")

	// Unguarded routes keep working.
	status, _ = s.do(t, nethttp.MethodPost, "/api/load-session", `{"userId":"s1"}`)
	assert.Equal(t, nethttp.StatusOK, status)
}

func TestTopicsAndHealth(t *testing.T) {
	s := newTestServer(t, storetest.Open(t), generous)

	status, body := s.do(t, nethttp.MethodGet, "/api/topics", "")
	require.Equal(t, nethttp.StatusOK, status)
	topics, _ := body["topics"].([]any)
	assert.Len(t, topics, s.svc.Graph().Len())

	status, body = s.do(t, nethttp.MethodGet, "/healthcheck", "")
	require.Equal(t, nethttp.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "online", body["mode"])
}
