package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/algotutor/internal/assessment"
	"github.com/abhisek/algotutor/internal/http/response"
	"github.com/abhisek/algotutor/internal/session"
)

// Sessions is the orchestrator surface the handlers call.
type Sessions interface {
	StartSession(ctx context.Context, in session.StartInput) (session.StartResult, error)
	Chat(ctx context.Context, in session.ChatInput) (session.ChatResult, error)
	LoadSession(ctx context.Context, studentID string) (session.LoadResult, error)
	GetTest(ctx context.Context, topic, language string) ([]assessment.Question, error)
	SubmitTest(ctx context.Context, in session.SubmitInput) (session.SubmitResult, error)
	CheckStudentCode(ctx context.Context, code string) (bool, error)
	Mode() session.Mode
}

type SessionHandler struct {
	sessions Sessions
}

func NewSessionHandler(sessions Sessions) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

type messageDTO struct {
	Role    string `json:"role" binding:"required"`
	Content string `json:"content"`
}

// POST /api/start-session
// body: { "userId": "...", "languageInput": "...", "topic": "..." }
func (h *SessionHandler) StartSession(c *gin.Context) {
	var req struct {
		UserID   string `json:"userId" binding:"required"`
		Language string `json:"languageInput" binding:"required"`
		Topic    string `json:"topic" binding:"required"`
	}
	if !bind(c, &req) {
		return
	}

	res, err := h.sessions.StartSession(c.Request.Context(), session.StartInput{
		StudentID: req.UserID,
		Language:  req.Language,
		Topic:     req.Topic,
	})
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"sessionId": res.SessionID, "mode": res.Mode})
}

// POST /api/load-session
// body: { "userId": "..." }
func (h *SessionHandler) LoadSession(c *gin.Context) {
	var req struct {
		UserID string `json:"userId" binding:"required"`
	}
	if !bind(c, &req) {
		return
	}

	res, err := h.sessions.LoadSession(c.Request.Context(), req.UserID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}

	msgs := make([]messageDTO, 0, len(res.Messages))
	for _, m := range res.Messages {
		msgs = append(msgs, messageDTO{Role: m.Role, Content: m.Content})
	}
	mastered := res.Mastered
	if mastered == nil {
		mastered = []string{}
	}
	response.RespondOK(c, gin.H{
		"messages":       msgs,
		"language":       res.Language,
		"topic":          res.Topic,
		"sessionId":      res.SessionID,
		"masteredTopics": mastered,
		"mode":           res.Mode,
	})
}

// POST /api/chat
// body: { "sessionId": "...", "userId": "...", "topic": "...",
//         "languageInput": "...", "messages": [{ "role": "user", "content": "..." }] }
func (h *SessionHandler) Chat(c *gin.Context) {
	var req struct {
		SessionID string       `json:"sessionId"`
		UserID    string       `json:"userId" binding:"required"`
		Topic     string       `json:"topic" binding:"required"`
		Language  string       `json:"languageInput" binding:"required"`
		Messages  []messageDTO `json:"messages" binding:"required,min=1,dive"`
	}
	if !bind(c, &req) {
		return
	}

	in := session.ChatInput{
		SessionID: req.SessionID,
		StudentID: req.UserID,
		Topic:     req.Topic,
		Language:  req.Language,
		Messages:  make([]session.Message, 0, len(req.Messages)),
	}
	for _, m := range req.Messages {
		in.Messages = append(in.Messages, session.Message{Role: m.Role, Content: m.Content})
	}

	res, err := h.sessions.Chat(c.Request.Context(), in)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"reply": res.Reply, "mode": res.Mode})
}

// POST /api/check-student-code
// body: { "studentCode": "..." }
func (h *SessionHandler) CheckStudentCode(c *gin.Context) {
	var req struct {
		Code string `json:"studentCode" binding:"required"`
	}
	if !bind(c, &req) {
		return
	}

	exists, err := h.sessions.CheckStudentCode(c.Request.Context(), req.Code)
	if err != nil {
		_ = c.Error(err)
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"exists": exists})
}
