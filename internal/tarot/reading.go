package tarot

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const DefaultModel = "mistral-7b"

// Positions in the order cards are drawn.
var Positions = []string{"Past Card", "Present Card", "Future Card"}

const instructionsTemplate = `
You are a skilled tarot reader. A querent  has asked a question has drawn three cards representing the past, present, and future. Please provide a detailed tarot reading based on the cards below, interpreting each card in the context of the given question.
Past Card: %s [Describe the past card and its meaning]
Present Card: %s [Describe the present card and its meaning]
Future Card: %s [Describe the future card and its meaning]
Instructions:
Interpret each card individually in one phrase, explaining its significance in the context of the question.
Provide a very short cohesive narrative that links the past, present, and future interpretations together.
Conclude with a clear and short answer or advice for the querent regarding their questions to give correct answer.
`

// BuildPrompt appends the querent's question directly after the reader
// instructions for the three drawn cards.
func BuildPrompt(past, present, future, question string) string {
	return fmt.Sprintf(instructionsTemplate, past, present, future) + question
}

// Completer is the hosted completion endpoint.
type Completer interface {
	Complete(ctx context.Context, model, prompt string) (string, error)
}

type Card struct {
	Position string `json:"position"`
	File     string `json:"file"`
	Name     string `json:"name"`
	Image    string `json:"image"`
}

type Reading struct {
	Question       string        `json:"question"`
	Model          string        `json:"model"`
	Cards          []Card        `json:"cards"`
	Text           string        `json:"reading"`
	ResponseTime   time.Duration `json:"-"`
	ResponseTimeMs int64         `json:"response_time_ms"`
}

type Service struct {
	deck      Deck
	completer Completer
	shuffler  *Shuffler
	model     string
	logger    *logrus.Logger
}

func NewService(deck Deck, completer Completer, shuffler *Shuffler, model string, logger *logrus.Logger) *Service {
	if model == "" {
		model = DefaultModel
	}
	if shuffler == nil {
		shuffler = NewShuffler(0)
	}
	return &Service{
		deck:      deck,
		completer: completer,
		shuffler:  shuffler,
		model:     model,
		logger:    logger,
	}
}

// Draw picks a past, present and future card and loads their images.
func (s *Service) Draw(ctx context.Context) ([]Card, error) {
	names, err := s.deck.ListCards(ctx)
	if err != nil {
		return nil, err
	}

	picked, err := s.shuffler.Sample(names, len(Positions))
	if err != nil {
		return nil, err
	}

	cards := make([]Card, len(picked))
	g, gctx := errgroup.WithContext(ctx)
	for i, file := range picked {
		i, file := i, file
		name, err := FriendlyName(file)
		if err != nil {
			return nil, err
		}
		g.Go(func() error {
			content, err := s.deck.ReadCard(gctx, file)
			if err != nil {
				return err
			}
			cards[i] = Card{
				Position: Positions[i],
				File:     file,
				Name:     name,
				Image:    ImageDataURI(file, content),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return cards, nil
}

// Read draws three cards and asks the model for a reading of the question.
func (s *Service) Read(ctx context.Context, question string) (*Reading, error) {
	cards, err := s.Draw(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to draw cards: %w", err)
	}

	prompt := BuildPrompt(cards[0].Name, cards[1].Name, cards[2].Name, question)

	start := time.Now()
	text, err := s.completer.Complete(ctx, s.model, prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to generate reading: %w", err)
	}
	elapsed := time.Since(start)

	s.logger.WithFields(logrus.Fields{
		"past":          cards[0].Name,
		"present":       cards[1].Name,
		"future":        cards[2].Name,
		"model":         s.model,
		"response_time": elapsed.Milliseconds(),
	}).Info("Tarot reading generated")

	return &Reading{
		Question:       question,
		Model:          s.model,
		Cards:          cards,
		Text:           text,
		ResponseTime:   elapsed,
		ResponseTimeMs: elapsed.Milliseconds(),
	}, nil
}
