package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/abhisek/algotutor/internal/assessment"
	"github.com/abhisek/algotutor/internal/http/response"
	"github.com/abhisek/algotutor/internal/session"
)

type questionDTO struct {
	Question string                      `json:"question"`
	Options  map[assessment.Label]string `json:"options"`
	Correct  assessment.Label            `json:"correct"`
}

// POST /api/get-test
// body: { "topic": "...", "languageInput": "...", "userId": "..." }
func (h *SessionHandler) GetTest(c *gin.Context) {
	var req struct {
		Topic    string `json:"topic" binding:"required"`
		Language string `json:"languageInput" binding:"required"`
	}
	if !bind(c, &req) {
		return
	}

	qs, err := h.sessions.GetTest(c.Request.Context(), req.Topic, req.Language)
	if err != nil {
		_ = c.Error(err)
		response.RespondServiceError(c, err)
		return
	}

	test := make([]questionDTO, 0, len(qs))
	for _, q := range qs {
		test = append(test, questionDTO{Question: q.Text, Options: q.Options, Correct: q.Correct})
	}
	response.RespondOK(c, gin.H{"test": test})
}

// POST /api/submit-test
// body: { "userId": "...", "topic": "...",
//         "answers": [{ "question": "...", "selected": "A", "correct": "B" }] }
func (h *SessionHandler) SubmitTest(c *gin.Context) {
	var req struct {
		UserID  string `json:"userId" binding:"required"`
		Topic   string `json:"topic" binding:"required"`
		Answers []struct {
			Question string `json:"question"`
			Selected string `json:"selected"`
			Correct  string `json:"correct" binding:"required"`
		} `json:"answers" binding:"required,min=1,dive"`
	}
	if !bind(c, &req) {
		return
	}

	in := session.SubmitInput{
		StudentID: req.UserID,
		Topic:     req.Topic,
		Answers:   make([]assessment.Answer, 0, len(req.Answers)),
	}
	for _, a := range req.Answers {
		in.Answers = append(in.Answers, assessment.Answer{
			Question: a.Question,
			Selected: assessment.Label(a.Selected),
			Correct:  assessment.Label(a.Correct),
		})
	}

	res, err := h.sessions.SubmitTest(c.Request.Context(), in)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"result":   res.Result.Verdict(),
		"correct":  res.Result.CorrectCount,
		"total":    res.Result.Total,
		"promoted": res.Promoted,
		"mode":     res.Mode,
	})
}
