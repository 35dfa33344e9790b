package handlers

import (
	"errors"
	"net/http"

	"github.com/frostyapps/cortex-demos/internal/recommender"
	"github.com/frostyapps/cortex-demos/internal/repository"
	"github.com/frostyapps/cortex-demos/internal/tarot"
)

const maxQuestionLength = 2000

// statusFor maps service errors to HTTP status codes. Anything unrecognised
// is treated as an upstream failure.
func statusFor(err error) int {
	var validation *recommender.ValidationError
	switch {
	case errors.As(err, &validation),
		errors.Is(err, recommender.ErrEmptyQuestion),
		errors.Is(err, recommender.ErrInvalidQuestionID),
		errors.Is(err, recommender.ErrUnknownSearch):
		return http.StatusBadRequest
	case errors.Is(err, recommender.ErrSessionNotFound),
		errors.Is(err, repository.ErrAnswerNotFound):
		return http.StatusNotFound
	case errors.Is(err, recommender.ErrNoSearchService):
		return http.StatusConflict
	case errors.Is(err, tarot.ErrNotEnoughCards):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}
