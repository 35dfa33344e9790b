package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/frostyapps/cortex-demos/internal/cortex"
	"github.com/frostyapps/cortex-demos/internal/models"
	"github.com/frostyapps/cortex-demos/internal/recommender"
	"github.com/frostyapps/cortex-demos/internal/session"
	"github.com/frostyapps/cortex-demos/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// MovieChat is the recommender surface the movie endpoints drive.
type MovieChat interface {
	SearchServices(ctx context.Context) ([]cortex.SearchService, error)
	CreateSession(ctx context.Context, req models.SessionOptionsRequest) (*session.Session, error)
	GetSession(ctx context.Context, id string) (*session.Session, error)
	UpdateOptions(ctx context.Context, id string, req models.SessionOptionsRequest) (*session.Session, error)
	ClearConversation(ctx context.Context, id string) (*session.Session, error)
	Ask(ctx context.Context, sessionID, question string) (*recommender.Answer, error)
	Dislike(ctx context.Context, questionID string) error
}

type MoviesHandler struct {
	chat    MovieChat
	timeout time.Duration
	logger  *logrus.Logger
}

func NewMoviesHandler(chat MovieChat, timeout time.Duration, logger *logrus.Logger) *MoviesHandler {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &MoviesHandler{
		chat:    chat,
		timeout: timeout,
		logger:  logger,
	}
}

func (h *MoviesHandler) HandleListServices(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	services, err := h.chat.SearchServices(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list search services")
		utils.ErrorResponse(c, statusFor(err), "Failed to list search services", err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Search services retrieved", services)
}

func (h *MoviesHandler) HandleListModels(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, "Models retrieved", recommender.Models)
}

func (h *MoviesHandler) HandleCreateSession(c *gin.Context) {
	var req models.SessionOptionsRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
			return
		}
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	sess, err := h.chat.CreateSession(ctx, req)
	if err != nil {
		h.respondError(c, "Failed to create session", err)
		return
	}
	utils.SuccessResponse(c, http.StatusCreated, "Session created", sess)
}

func (h *MoviesHandler) HandleGetSession(c *gin.Context) {
	sess, err := h.chat.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, "Failed to load session", err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Session retrieved", sess)
}

func (h *MoviesHandler) HandleUpdateOptions(c *gin.Context) {
	var req models.SessionOptionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	sess, err := h.chat.UpdateOptions(ctx, c.Param("id"), req)
	if err != nil {
		h.respondError(c, "Failed to update options", err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Options updated", sess)
}

func (h *MoviesHandler) HandleClearConversation(c *gin.Context) {
	sess, err := h.chat.ClearConversation(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, "Failed to clear conversation", err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Conversation cleared", sess)
}

// HandleAsk answers one chat question within a session.
func (h *MoviesHandler) HandleAsk(c *gin.Context) {
	var req models.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	question := strings.TrimSpace(req.Question)
	if question == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "Question cannot be empty", nil)
		return
	}
	if len(question) > maxQuestionLength {
		utils.ErrorResponse(c, http.StatusBadRequest, "Question too long (max 2000 characters)", nil)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	answer, err := h.chat.Ask(ctx, c.Param("id"), question)
	if err != nil {
		h.respondError(c, "Failed to answer question", err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Question answered", answer)
}

// HandleFeedback records that the user disliked an answer.
func (h *MoviesHandler) HandleFeedback(c *gin.Context) {
	var req models.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid feedback format", err)
		return
	}

	if err := h.chat.Dislike(c.Request.Context(), req.QuestionID); err != nil {
		h.respondError(c, "Failed to record feedback", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Feedback recorded", gin.H{
		"question_id": req.QuestionID,
		"feedback":    models.FeedbackNegative,
	})
}

func (h *MoviesHandler) respondError(c *gin.Context, message string, err error) {
	status := statusFor(err)
	entry := h.logger.WithError(err).WithFields(logrus.Fields{
		"session_id": c.Param("id"),
		"status":     status,
	})
	if status >= http.StatusInternalServerError {
		entry.Error(message)
	} else {
		entry.Warn(message)
	}
	utils.ErrorResponse(c, status, message, err)
}
