package recommender

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/frostyapps/cortex-demos/internal/cortex"
	"github.com/frostyapps/cortex-demos/internal/database"
	"github.com/frostyapps/cortex-demos/internal/models"
	"github.com/frostyapps/cortex-demos/internal/session"
	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
)

var (
	ErrSessionNotFound   = errors.New("chat session not found")
	ErrNoSearchService   = errors.New("no search service available")
	ErrUnknownSearch     = errors.New("unknown search service")
	ErrInvalidQuestionID = errors.New("invalid question id")
	ErrEmptyQuestion     = errors.New("question is empty")
)

const serviceMetadataCacheID = "search_services"

// Completer is the hosted completion endpoint.
type Completer interface {
	Complete(ctx context.Context, model, prompt string) (string, error)
}

// Searcher is the managed search service API.
type Searcher interface {
	Search(ctx context.Context, req cortex.SearchRequest) (*cortex.SearchResponse, error)
	ListSearchServices(ctx context.Context) ([]cortex.SearchService, error)
	DescribeSearchService(ctx context.Context, name string) (*cortex.SearchService, error)
}

// ResultCache stores search responses between identical requests.
type ResultCache interface {
	GetCachedSearchResults(ctx context.Context, key string, result interface{}) error
	CacheSearchResults(ctx context.Context, key string, results interface{}, expiration time.Duration) error
}

type Config struct {
	MetadataTTL    time.Duration
	SearchCacheTTL time.Duration
}

type DebugInfo struct {
	ContextDocuments string `json:"context_documents"`
	HistorySummary   string `json:"history_summary,omitempty"`
}

type Answer struct {
	SessionID    string      `json:"session_id"`
	QuestionID   string      `json:"question_id"`
	Question     string      `json:"question"`
	Answer       string      `json:"answer"`
	References   []Reference `json:"references"`
	Markdown     string      `json:"markdown"`
	ResponseTime float64     `json:"response_time"`
	Logged       bool        `json:"logged"`
	Debug        *DebugInfo  `json:"debug,omitempty"`
}

type Service struct {
	completer Completer
	searcher  Searcher
	sessions  session.Store
	answers   models.AnswerLogRepository
	results   ResultCache
	metadata  *gocache.Cache
	config    Config
	logger    *logrus.Logger
}

// NewService wires the chat flow. results may be nil to disable search caching.
func NewService(
	completer Completer,
	searcher Searcher,
	sessions session.Store,
	answers models.AnswerLogRepository,
	results ResultCache,
	config Config,
	logger *logrus.Logger,
) *Service {
	if config.MetadataTTL <= 0 {
		config.MetadataTTL = 10 * time.Minute
	}
	return &Service{
		completer: completer,
		searcher:  searcher,
		sessions:  sessions,
		answers:   answers,
		results:   results,
		metadata:  gocache.New(config.MetadataTTL, 2*config.MetadataTTL),
		config:    config,
		logger:    logger,
	}
}

// SearchServices lists the available search services with their search
// column. The list is cached in process for MetadataTTL.
func (s *Service) SearchServices(ctx context.Context) ([]cortex.SearchService, error) {
	if cached, ok := s.metadata.Get(serviceMetadataCacheID); ok {
		return cached.([]cortex.SearchService), nil
	}

	listed, err := s.searcher.ListSearchServices(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list search services: %w", err)
	}

	services := make([]cortex.SearchService, 0, len(listed))
	for _, svc := range listed {
		column := svc.SearchColumn
		if column == "" {
			described, err := s.searcher.DescribeSearchService(ctx, svc.Name)
			if err != nil {
				return nil, fmt.Errorf("failed to describe search service %s: %w", svc.Name, err)
			}
			column = described.SearchColumn
		}
		services = append(services, cortex.SearchService{Name: svc.Name, SearchColumn: column})
	}

	s.metadata.Set(serviceMetadataCacheID, services, gocache.DefaultExpiration)
	return services, nil
}

func (s *Service) CreateSession(ctx context.Context, req models.SessionOptionsRequest) (*session.Session, error) {
	opts, err := ApplyOptions(DefaultOptions(), req)
	if err != nil {
		return nil, err
	}
	resolved, err := s.resolveSearchService(ctx, opts.SearchService)
	switch {
	case errors.Is(err, ErrNoSearchService) && req.SearchService == nil:
		// the session can exist without a service, asking stays disabled
		s.logger.Warn("No search service available for new chat session")
	case err != nil:
		return nil, err
	default:
		opts.SearchService = resolved
	}

	sess := session.New(opts)
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"session_id":     sess.ID,
		"search_service": opts.SearchService,
		"model":          opts.Model,
	}).Info("Chat session created")
	return sess, nil
}

func (s *Service) GetSession(ctx context.Context, id string) (*session.Session, error) {
	sess, err := s.sessions.Get(ctx, id)
	if errors.Is(err, session.ErrNotFound) {
		return nil, ErrSessionNotFound
	}
	return sess, err
}

func (s *Service) UpdateOptions(ctx context.Context, id string, req models.SessionOptionsRequest) (*session.Session, error) {
	sess, err := s.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}

	opts, err := ApplyOptions(sess.Options, req)
	if err != nil {
		return nil, err
	}
	if req.SearchService != nil {
		if opts.SearchService, err = s.resolveSearchService(ctx, opts.SearchService); err != nil {
			return nil, err
		}
	}

	sess.Options = opts
	sess.UpdatedAt = time.Now()
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	return sess, nil
}

// ClearConversation empties the message list of a session.
func (s *Service) ClearConversation(ctx context.Context, id string) (*session.Session, error) {
	sess, err := s.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	sess.Clear()
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	return sess, nil
}

// Ask answers one question within a chat session and logs the answer.
func (s *Service) Ask(ctx context.Context, sessionID, question string) (*Answer, error) {
	if strings.TrimSpace(question) == "" {
		return nil, ErrEmptyQuestion
	}

	sess, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if sess.Options.SearchService == "" {
		if sess.Options.SearchService, err = s.resolveSearchService(ctx, ""); err != nil {
			return nil, err
		}
	}

	sess.Append(session.Message{Role: session.RoleUser, Content: question})
	question = strings.ReplaceAll(question, "'", "")

	prompt, results, debug, err := s.createPrompt(ctx, sess, question)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	generated, err := s.completer.Complete(ctx, sess.Options.Model, prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to generate answer: %w", err)
	}
	elapsed := time.Since(start)

	refs := References(results)
	answer := &Answer{
		SessionID:    sess.ID,
		QuestionID:   uuid.NewString(),
		Question:     question,
		Answer:       generated,
		References:   refs,
		Markdown:     EscapeDollars(generated) + "\n\n" + ReferencesTable(refs) + "\n\n",
		ResponseTime: elapsed.Seconds(),
	}
	if sess.Options.Debug {
		answer.Debug = debug
	}

	entry := &models.AnswerLog{
		QuestionID:   answer.QuestionID,
		Question:     CleanString(question),
		Answer:       CleanString(generated),
		Feedback:     models.FeedbackPositive,
		ResponseTime: elapsed.Seconds(),
		Timestamp:    time.Now(),
	}
	if err := s.answers.Create(entry); err != nil {
		s.logger.WithError(err).WithField("question_id", answer.QuestionID).Error("Failed to log answer")
	} else {
		answer.Logged = true
	}

	sess.Append(session.Message{Role: session.RoleAssistant, Content: generated, Question: question})
	sess.LastQuestionID = answer.QuestionID
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"session_id":    sess.ID,
		"question_id":   answer.QuestionID,
		"model":         sess.Options.Model,
		"references":    len(refs),
		"response_time": elapsed.Milliseconds(),
	}).Info("Question answered")

	return answer, nil
}

// Dislike records negative feedback for a logged answer.
func (s *Service) Dislike(ctx context.Context, questionID string) error {
	if _, err := uuid.Parse(questionID); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidQuestionID, questionID)
	}
	if err := s.answers.SetFeedback(questionID, models.FeedbackNegative); err != nil {
		return err
	}
	s.logger.WithField("question_id", questionID).Info("Negative feedback recorded")
	return nil
}

func (s *Service) createPrompt(ctx context.Context, sess *session.Session, question string) (string, []cortex.SearchResult, *DebugInfo, error) {
	opts := sess.Options
	debug := &DebugInfo{}

	var history []session.Message
	query := question

	if opts.UseChatHistory {
		history = HistoryWindow(sess.Messages, opts.NumChatMessages)
		if len(history) > 0 {
			summary, err := s.completer.Complete(ctx, opts.Model, SummaryPrompt(history, question))
			if err != nil {
				return "", nil, nil, fmt.Errorf("failed to summarise chat history: %w", err)
			}
			query = summary
			debug.HistorySummary = EscapeDollars(summary)
		}
	}

	results, err := s.search(ctx, opts.SearchService, query, opts.NumRetrievedChunks)
	if err != nil {
		return "", nil, nil, err
	}

	contextDocs := ContextString(results)
	debug.ContextDocuments = contextDocs

	return RAGPrompt(history, contextDocs, question), results, debug, nil
}

func (s *Service) search(ctx context.Context, service, query string, limit int) ([]cortex.SearchResult, error) {
	key := database.SearchKey(service, query, limit)

	if s.results != nil {
		var cached cortex.SearchResponse
		if err := s.results.GetCachedSearchResults(ctx, key, &cached); err == nil {
			s.logger.Debug("Search results served from cache")
			return cached.Results, nil
		}
	}

	resp, err := s.searcher.Search(ctx, cortex.SearchRequest{
		Service: service,
		Query:   query,
		Columns: searchColumns,
		Filter:  englishOnly(),
		Limit:   limit,
	})
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	if s.results != nil && s.config.SearchCacheTTL > 0 {
		if err := s.results.CacheSearchResults(ctx, key, resp, s.config.SearchCacheTTL); err != nil {
			s.logger.WithError(err).Warn("Failed to cache search results")
		}
	}
	return resp.Results, nil
}

// resolveSearchService validates name against the live list, or picks the
// first service when name is empty.
func (s *Service) resolveSearchService(ctx context.Context, name string) (string, error) {
	services, err := s.SearchServices(ctx)
	if err != nil {
		return "", err
	}
	if len(services) == 0 {
		return "", ErrNoSearchService
	}
	if name == "" {
		return services[0].Name, nil
	}
	for _, svc := range services {
		if svc.Name == name {
			return name, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownSearch, name)
}
