package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/frostyapps/cortex-demos/internal/models"
	"github.com/frostyapps/cortex-demos/internal/tarot"
	"github.com/frostyapps/cortex-demos/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type TarotReader interface {
	Read(ctx context.Context, question string) (*tarot.Reading, error)
}

type TarotHandler struct {
	reader  TarotReader
	timeout time.Duration
	logger  *logrus.Logger
}

func NewTarotHandler(reader TarotReader, timeout time.Duration, logger *logrus.Logger) *TarotHandler {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &TarotHandler{
		reader:  reader,
		timeout: timeout,
		logger:  logger,
	}
}

// HandleReading draws three cards and returns the reading for the question.
func (h *TarotHandler) HandleReading(c *gin.Context) {
	var req models.TarotReadingRequest
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

	reading, err := h.reader.Read(ctx, question)
	if err != nil {
		h.logger.WithError(err).Error("Tarot reading failed")
		utils.ErrorResponse(c, statusFor(err), "Tarot reading failed", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Reading generated", reading)
}
