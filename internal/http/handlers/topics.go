package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/abhisek/algotutor/internal/http/response"
	"github.com/abhisek/algotutor/internal/topicgraph"
)

type TopicHandler struct {
	graph *topicgraph.Graph
}

func NewTopicHandler(g *topicgraph.Graph) *TopicHandler {
	return &TopicHandler{graph: g}
}

type topicDTO struct {
	ID          string   `json:"id"`
	Category    string   `json:"category,omitempty"`
	Family      string   `json:"family,omitempty"`
	Description string   `json:"description,omitempty"`
	Related     []string `json:"related"`
}

// GET /api/topics
func (h *TopicHandler) ListTopics(c *gin.Context) {
	topics := h.graph.Topics()
	out := make([]topicDTO, 0, len(topics))
	for _, t := range topics {
		related := h.graph.Related(t.ID)
		if related == nil {
			related = []string{}
		}
		out = append(out, topicDTO{
			ID:          t.ID,
			Category:    string(t.Category),
			Family:      t.Family,
			Description: t.Description,
			Related:     related,
		})
	}
	response.RespondOK(c, gin.H{"topics": out})
}
