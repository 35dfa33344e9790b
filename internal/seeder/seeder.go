package seeder

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/gocolly/colly/v2/debug"
	"github.com/sirupsen/logrus"
)

// DefaultPages list the Rider-Waite deck with one picture per card.
var DefaultPages = []string{
	"https://en.wikipedia.org/wiki/Major_Arcana",
	"https://en.wikipedia.org/wiki/Minor_Arcana",
}

// CardStore is where card images end up.
type CardStore interface {
	ListCards(ctx context.Context) ([]string, error)
	PutCard(ctx context.Context, name string, content []byte) error
}

type Config struct {
	Pages       []string
	UserAgent   string
	Parallelism int
	Delay       time.Duration
	Limit       int // 0 = all cards
	DryRun      bool
	Verbose     bool
}

// Result summarises one seeding run.
type Result struct {
	Found    int
	Uploaded int
	Skipped  int
	Errors   []error
}

// DeckSeeder crawls card pictures with colly and uploads them into the deck.
type DeckSeeder struct {
	collector *colly.Collector
	store     CardStore
	processor *ImageProcessor
	config    Config
	logger    *logrus.Logger

	mu    sync.Mutex
	found map[string]CardImage
}

func NewDeckSeeder(config Config, store CardStore, logger *logrus.Logger) *DeckSeeder {
	if len(config.Pages) == 0 {
		config.Pages = DefaultPages
	}
	if config.UserAgent == "" {
		config.UserAgent = "FrostyFortunes-DeckSeeder/1.0"
	}
	if config.Parallelism <= 0 {
		config.Parallelism = 2
	}

	c := colly.NewCollector(
		colly.UserAgent(config.UserAgent),
	)
	if config.Verbose {
		c.SetDebugger(&debug.LogDebugger{})
	}
	c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: config.Parallelism,
		Delay:       config.Delay,
	})
	c.SetRequestTimeout(30 * time.Second)

	return &DeckSeeder{
		collector: c,
		store:     store,
		processor: NewImageProcessor(),
		config:    config,
		logger:    logger,
		found:     make(map[string]CardImage),
	}
}

// Seed collects card images from the configured pages and uploads the ones
// the store does not have yet.
func (s *DeckSeeder) Seed(ctx context.Context) (*Result, error) {
	cards, err := s.Discover()
	if err != nil {
		return nil, err
	}

	result := &Result{Found: len(cards)}
	if s.config.Limit > 0 && s.config.Limit < len(cards) {
		cards = cards[:s.config.Limit]
		s.logger.WithField("limit", s.config.Limit).Info("Limited cards to process")
	}

	existing := map[string]bool{}
	if !s.config.DryRun {
		names, err := s.store.ListCards(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list existing cards: %w", err)
		}
		for _, name := range names {
			existing[name] = true
		}
	}

	for i, card := range cards {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		entry := s.logger.WithFields(logrus.Fields{
			"card":     card.File,
			"progress": fmt.Sprintf("%d/%d", i+1, len(cards)),
		})

		if s.config.DryRun {
			entry.WithField("url", card.URL).Info("DRY RUN: Would upload card")
			continue
		}
		if existing[card.File] {
			entry.Debug("Card already stored")
			result.Skipped++
			continue
		}

		content, err := s.download(card.URL)
		if err != nil {
			entry.WithError(err).Error("Failed to download card")
			result.Errors = append(result.Errors, fmt.Errorf("failed to download %s: %w", card.File, err))
			continue
		}
		if err := s.store.PutCard(ctx, card.File, content); err != nil {
			entry.WithError(err).Error("Failed to upload card")
			result.Errors = append(result.Errors, fmt.Errorf("failed to upload %s: %w", card.File, err))
			continue
		}

		result.Uploaded++
		entry.WithField("bytes", len(content)).Info("Card uploaded")
	}

	s.logger.WithFields(logrus.Fields{
		"found":    result.Found,
		"uploaded": result.Uploaded,
		"skipped":  result.Skipped,
		"errors":   len(result.Errors),
	}).Info("Deck seeding completed")

	return result, nil
}

// Discover visits the pages and returns the card images sorted by file name.
func (s *DeckSeeder) Discover() ([]CardImage, error) {
	var visitErrs []error

	s.collector.OnHTML("img[src]", func(e *colly.HTMLElement) {
		card, ok := s.processor.CardFromSource(e.Request.AbsoluteURL(e.Attr("src")))
		if !ok {
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, seen := s.found[card.File]; !seen {
			s.found[card.File] = card
		}
	})

	s.collector.OnError(func(r *colly.Response, err error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		visitErrs = append(visitErrs, fmt.Errorf("%s: %w", r.Request.URL, err))
	})

	for _, page := range s.config.Pages {
		s.logger.WithField("page", page).Info("Crawling page")
		if err := s.collector.Visit(page); err != nil {
			visitErrs = append(visitErrs, fmt.Errorf("failed to visit %s: %w", page, err))
		}
	}
	s.collector.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.found) == 0 && len(visitErrs) > 0 {
		return nil, visitErrs[0]
	}
	for _, err := range visitErrs {
		s.logger.WithError(err).Warn("Page crawl error")
	}

	cards := make([]CardImage, 0, len(s.found))
	for _, card := range s.found {
		cards = append(cards, card)
	}
	sort.Slice(cards, func(i, j int) bool { return cards[i].File < cards[j].File })

	s.logger.WithField("cards", len(cards)).Info("Card images discovered")
	return cards, nil
}

func (s *DeckSeeder) download(imageURL string) ([]byte, error) {
	var body []byte
	var downloadErr error

	c := s.collector.Clone()
	c.OnResponse(func(r *colly.Response) {
		body = r.Body
	})
	c.OnError(func(r *colly.Response, err error) {
		downloadErr = err
	})

	if err := c.Visit(imageURL); err != nil {
		return nil, err
	}
	c.Wait()

	if downloadErr != nil {
		return nil, downloadErr
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("empty response")
	}
	return body, nil
}
