package models

// GORM models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

const (
	FeedbackPositive = 1
	FeedbackNegative = 0
)

// AnswerLog is one answered question of the movie recommender.
type AnswerLog struct {
	ID           uint      `json:"-" gorm:"primaryKey"`
	QuestionID   string    `json:"question_id" gorm:"column:question_id;uniqueIndex;not null"`
	Question     string    `json:"question" gorm:"column:question;type:text"`
	Answer       string    `json:"answer" gorm:"column:answer;type:text"`
	Feedback     int       `json:"feedback" gorm:"column:feedback;not null"`
	ResponseTime float64   `json:"response_time" gorm:"column:response_time"`
	Timestamp    time.Time `json:"timestamp" gorm:"column:timestamp;index"`
}

// SystemHealth represents service health monitoring
type SystemHealth struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	ServiceName    string    `json:"service_name" gorm:"not null;index"`
	Status         string    `json:"status" gorm:"not null"`
	ResponseTimeMs int       `json:"response_time_ms"`
	ErrorMessage   string    `json:"error_message"`
	CheckedAt      time.Time `json:"checked_at"`
}

// Database interfaces for repository pattern
type AnswerLogRepository interface {
	Create(entry *AnswerLog) error
	GetByQuestionID(questionID string) (*AnswerLog, error)
	SetFeedback(questionID string, feedback int) error
	GetRecent(limit int) ([]AnswerLog, error)
}

type SystemHealthRepository interface {
	UpdateServiceHealth(serviceName, status string, responseTime int, errorMsg string) error
	GetServiceHealth(serviceName string) (*SystemHealth, error)
}

// TableName methods for custom table names
func (AnswerLog) TableName() string    { return "logging" }
func (SystemHealth) TableName() string { return "system_health" }

// Model validation methods
func (a *AnswerLog) Validate() error {
	if a.QuestionID == "" {
		return fmt.Errorf("question id is required")
	}
	if a.Feedback != FeedbackPositive && a.Feedback != FeedbackNegative {
		return fmt.Errorf("invalid feedback value: %d", a.Feedback)
	}
	if a.ResponseTime < 0 {
		return fmt.Errorf("response time cannot be negative")
	}
	return nil
}

func (h *SystemHealth) Validate() error {
	validStatuses := map[string]bool{
		"healthy":   true,
		"degraded":  true,
		"unhealthy": true,
	}
	if !validStatuses[h.Status] {
		return fmt.Errorf("invalid health status: %s", h.Status)
	}
	return nil
}

// GORM hooks
func (a *AnswerLog) BeforeCreate(tx *gorm.DB) error {
	return a.Validate()
}

func (h *SystemHealth) BeforeCreate(tx *gorm.DB) error {
	return h.Validate()
}
