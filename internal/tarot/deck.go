package tarot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/sirupsen/logrus"
)

const cardExtension = ".jpg"

var ErrNotEnoughCards = errors.New("not enough cards in the deck")

// Deck gives access to the stored card images.
type Deck interface {
	ListCards(ctx context.Context) ([]string, error)
	ReadCard(ctx context.Context, name string) ([]byte, error)
}

type BucketConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

// BucketDeck keeps the card images in an S3 compatible bucket.
type BucketDeck struct {
	client *minio.Client
	bucket string
	region string
	logger *logrus.Logger
}

func NewBucketDeck(cfg BucketConfig, logger *logrus.Logger) (*BucketDeck, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	return &BucketDeck{
		client: client,
		bucket: cfg.Bucket,
		region: cfg.Region,
		logger: logger,
	}, nil
}

// EnsureBucket creates the card bucket when it does not exist yet.
func (d *BucketDeck) EnsureBucket(ctx context.Context) error {
	exists, err := d.client.BucketExists(ctx, d.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", d.bucket, err)
	}
	if exists {
		return nil
	}

	if err := d.client.MakeBucket(ctx, d.bucket, minio.MakeBucketOptions{Region: d.region}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", d.bucket, err)
	}
	d.logger.WithField("bucket", d.bucket).Info("Card bucket created")
	return nil
}

func (d *BucketDeck) ListCards(ctx context.Context) ([]string, error) {
	var names []string
	for object := range d.client.ListObjects(ctx, d.bucket, minio.ListObjectsOptions{Recursive: true}) {
		if object.Err != nil {
			return nil, fmt.Errorf("failed to list cards: %w", object.Err)
		}
		if strings.HasSuffix(object.Key, cardExtension) {
			names = append(names, object.Key)
		}
	}
	return names, nil
}

func (d *BucketDeck) ReadCard(ctx context.Context, name string) ([]byte, error) {
	object, err := d.client.GetObject(ctx, d.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to open card %s: %w", name, err)
	}
	defer object.Close()

	content, err := io.ReadAll(object)
	if err != nil {
		return nil, fmt.Errorf("failed to read card %s: %w", name, err)
	}
	return content, nil
}

// PutCard uploads one card image.
func (d *BucketDeck) PutCard(ctx context.Context, name string, content []byte) error {
	_, err := d.client.PutObject(ctx, d.bucket, name, bytes.NewReader(content), int64(len(content)),
		minio.PutObjectOptions{ContentType: "image/jpeg"})
	if err != nil {
		return fmt.Errorf("failed to upload card %s: %w", name, err)
	}
	return nil
}

func (d *BucketDeck) Ping(ctx context.Context) error {
	_, err := d.client.BucketExists(ctx, d.bucket)
	return err
}

// Shuffler picks cards at random. It is safe for concurrent use.
type Shuffler struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewShuffler(seed int64) *Shuffler {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Shuffler{rng: rand.New(rand.NewSource(seed))}
}

// Sample returns n distinct names drawn without replacement.
func (s *Shuffler) Sample(names []string, n int) ([]string, error) {
	if len(names) < n {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrNotEnoughCards, len(names), n)
	}

	s.mu.Lock()
	perm := s.rng.Perm(len(names))
	s.mu.Unlock()

	picked := make([]string, n)
	for i := 0; i < n; i++ {
		picked[i] = names[perm[i]]
	}
	return picked, nil
}
