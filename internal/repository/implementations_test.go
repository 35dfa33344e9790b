package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/frostyapps/cortex-demos/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.AnswerLog{}, &models.SystemHealth{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func TestAnswerLogRepository_CreateAndFeedback(t *testing.T) {
	repo := NewAnswerLogRepository(newTestDB(t))

	entry := &models.AnswerLog{
		QuestionID:   "6f1f5a0e-1111-4c1e-9b51-1a2b3c4d5e6f",
		Question:     "any heist movies",
		Answer:       "Try Heat.",
		Feedback:     models.FeedbackPositive,
		ResponseTime: 1.25,
		Timestamp:    time.Now(),
	}
	require.NoError(t, repo.Create(entry))

	stored, err := repo.GetByQuestionID(entry.QuestionID)
	require.NoError(t, err)
	assert.Equal(t, "Try Heat.", stored.Answer)
	assert.Equal(t, models.FeedbackPositive, stored.Feedback)

	require.NoError(t, repo.SetFeedback(entry.QuestionID, models.FeedbackNegative))

	stored, err = repo.GetByQuestionID(entry.QuestionID)
	require.NoError(t, err)
	assert.Equal(t, models.FeedbackNegative, stored.Feedback)
}

func TestAnswerLogRepository_Unknown(t *testing.T) {
	repo := NewAnswerLogRepository(newTestDB(t))

	_, err := repo.GetByQuestionID("missing")
	assert.True(t, errors.Is(err, ErrAnswerNotFound))

	err = repo.SetFeedback("missing", models.FeedbackNegative)
	assert.True(t, errors.Is(err, ErrAnswerNotFound))
}

func TestAnswerLogRepository_Validation(t *testing.T) {
	repo := NewAnswerLogRepository(newTestDB(t))

	assert.Error(t, repo.Create(&models.AnswerLog{Feedback: models.FeedbackPositive}))
	assert.Error(t, repo.Create(&models.AnswerLog{QuestionID: "q", Feedback: 7}))
}

func TestAnswerLogRepository_GetRecent(t *testing.T) {
	repo := NewAnswerLogRepository(newTestDB(t))
	base := time.Now()

	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, repo.Create(&models.AnswerLog{
			QuestionID: id,
			Feedback:   models.FeedbackPositive,
			Timestamp:  base.Add(time.Duration(i) * time.Minute),
		}))
	}

	recent, err := repo.GetRecent(2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "c", recent[0].QuestionID)
	assert.Equal(t, "b", recent[1].QuestionID)
}

func TestSystemHealthRepository(t *testing.T) {
	repo := NewSystemHealthRepository(newTestDB(t))

	require.NoError(t, repo.UpdateServiceHealth("redis", "unhealthy", 12, "refused"))
	require.NoError(t, repo.UpdateServiceHealth("redis", "healthy", 3, ""))
	assert.Error(t, repo.UpdateServiceHealth("redis", "sideways", 3, ""))

	latest, err := repo.GetServiceHealth("redis")
	require.NoError(t, err)
	assert.Equal(t, "healthy", latest.Status)
}
