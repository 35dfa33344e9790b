package recommender

import (
	"fmt"

	"github.com/frostyapps/cortex-demos/internal/models"
	"github.com/frostyapps/cortex-demos/internal/session"
)

// Models offered for answering and summarising.
var Models = []string{
	"mistral-large",
	"snowflake-arctic",
	"mistral-7b",
	"llama3-8b",
}

const (
	minChunks   = 1
	maxChunks   = 10
	minMessages = 1
	maxMessages = 10
)

func DefaultOptions() session.Options {
	return session.Options{
		Model:              Models[0],
		NumRetrievedChunks: 3,
		NumChatMessages:    5,
		UseChatHistory:     true,
		Debug:              false,
	}
}

// ValidationError reports an option value outside its allowed range.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ApplyOptions merges the non-nil fields of req into opts. Search service
// names are checked separately against the live service list.
func ApplyOptions(opts session.Options, req models.SessionOptionsRequest) (session.Options, error) {
	if req.Model != nil {
		if !isKnownModel(*req.Model) {
			return opts, &ValidationError{Field: "model", Reason: fmt.Sprintf("%q is not one of %v", *req.Model, Models)}
		}
		opts.Model = *req.Model
	}
	if req.NumRetrievedChunks != nil {
		n := *req.NumRetrievedChunks
		if n < minChunks || n > maxChunks {
			return opts, &ValidationError{Field: "num_retrieved_chunks", Reason: fmt.Sprintf("must be between %d and %d", minChunks, maxChunks)}
		}
		opts.NumRetrievedChunks = n
	}
	if req.NumChatMessages != nil {
		n := *req.NumChatMessages
		if n < minMessages || n > maxMessages {
			return opts, &ValidationError{Field: "num_chat_messages", Reason: fmt.Sprintf("must be between %d and %d", minMessages, maxMessages)}
		}
		opts.NumChatMessages = n
	}
	if req.UseChatHistory != nil {
		opts.UseChatHistory = *req.UseChatHistory
	}
	if req.Debug != nil {
		opts.Debug = *req.Debug
	}
	if req.SearchService != nil {
		opts.SearchService = *req.SearchService
	}
	return opts, nil
}

func isKnownModel(name string) bool {
	for _, m := range Models {
		if m == name {
			return true
		}
	}
	return false
}
