package repository

import (
	"errors"
	"time"

	"github.com/frostyapps/cortex-demos/internal/models"
	"gorm.io/gorm"
)

var ErrAnswerNotFound = errors.New("answer not found")

// AnswerLogRepositoryImpl implements AnswerLogRepository
type AnswerLogRepositoryImpl struct {
	db *gorm.DB
}

func NewAnswerLogRepository(db *gorm.DB) models.AnswerLogRepository {
	return &AnswerLogRepositoryImpl{db: db}
}

func (r *AnswerLogRepositoryImpl) Create(entry *models.AnswerLog) error {
	return r.db.Create(entry).Error
}

func (r *AnswerLogRepositoryImpl) GetByQuestionID(questionID string) (*models.AnswerLog, error) {
	var entry models.AnswerLog
	err := r.db.Where("question_id = ?", questionID).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAnswerNotFound
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *AnswerLogRepositoryImpl) SetFeedback(questionID string, feedback int) error {
	result := r.db.Model(&models.AnswerLog{}).
		Where("question_id = ?", questionID).
		Update("feedback", feedback)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAnswerNotFound
	}
	return nil
}

func (r *AnswerLogRepositoryImpl) GetRecent(limit int) ([]models.AnswerLog, error) {
	var entries []models.AnswerLog
	err := r.db.Order(`"timestamp" DESC`).
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

// SystemHealthRepositoryImpl implements SystemHealthRepository
type SystemHealthRepositoryImpl struct {
	db *gorm.DB
}

func NewSystemHealthRepository(db *gorm.DB) models.SystemHealthRepository {
	return &SystemHealthRepositoryImpl{db: db}
}

func (r *SystemHealthRepositoryImpl) UpdateServiceHealth(serviceName, status string, responseTime int, errorMsg string) error {
	return r.db.Create(&models.SystemHealth{
		ServiceName:    serviceName,
		Status:         status,
		ResponseTimeMs: responseTime,
		ErrorMessage:   errorMsg,
		CheckedAt:      time.Now(),
	}).Error
}

func (r *SystemHealthRepositoryImpl) GetServiceHealth(serviceName string) (*models.SystemHealth, error) {
	var health models.SystemHealth
	err := r.db.Where("service_name = ?", serviceName).
		Order("checked_at DESC").
		First(&health).Error
	if err != nil {
		return nil, err
	}
	return &health, nil
}

// RepositoryManager bundles all repositories
type RepositoryManager struct {
	AnswerLog    models.AnswerLogRepository
	SystemHealth models.SystemHealthRepository
}

func NewRepositoryManager(db *gorm.DB) *RepositoryManager {
	return &RepositoryManager{
		AnswerLog:    NewAnswerLogRepository(db),
		SystemHealth: NewSystemHealthRepository(db),
	}
}
