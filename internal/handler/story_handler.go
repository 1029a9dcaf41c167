package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prasobpai/internal/db"
	"github.com/prasobpai/internal/identity"
	"github.com/prasobpai/internal/service"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type storyRequest struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	AuthorAlias string `json:"author_alias"`
	Severity    int    `json:"severity"`
}

type storyResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	ContentHTML string    `json:"content_html"`
	AuthorAlias string    `json:"author_alias"`
	Severity    int       `json:"severity"`
	ViewCount   uint64    `json:"view_count"`
	CreatedAt   time.Time `json:"created_at"`
}

func toStoryResponse(story *db.Story) storyResponse {
	return storyResponse{
		ID:          story.ID,
		Title:       story.Title,
		ContentHTML: story.ContentHTML,
		AuthorAlias: story.AuthorAlias,
		Severity:    story.Severity,
		ViewCount:   story.ViewCount,
		CreatedAt:   story.CreatedAt,
	}
}

// CreateStory handles POST /api/stories.
func (a *API) CreateStory(c *gin.Context) {
	var req storyRequest
	if !bindJSON(c, &req, "invalid request body") {
		return
	}

	story, err := a.stories.Create(service.StoryInput{
		Title:       req.Title,
		Content:     req.Content,
		AuthorAlias: req.AuthorAlias,
		Severity:    req.Severity,
	})
	switch {
	case errors.Is(err, service.ErrTitleRequired),
		errors.Is(err, service.ErrContentRequired),
		errors.Is(err, service.ErrSeverityRange):
		respondError(c, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		a.logger.Error("create story failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Failed to create story")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"story": toStoryResponse(story)})
}

// GetStory handles GET /api/stories/:id. View counting is dispatched to the
// background recorder after the response payload is ready; its failure or
// latency never reaches the reader.
func (a *API) GetStory(c *gin.Context) {
	story, err := a.stories.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "Story not found")
			return
		}
		a.logger.Error("load story failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	if a.views != nil {
		a.views.Enqueue(story.ID, identity.Resolve(c.GetHeader("X-Forwarded-For")))
	}

	c.JSON(http.StatusOK, gin.H{"story": toStoryResponse(story)})
}
