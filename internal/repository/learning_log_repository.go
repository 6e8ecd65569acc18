package repository

import (
	"time"

	"learnpath_backend/internal/model"

	"gorm.io/gorm"
)

type LearningLogRepository struct {
	DB *gorm.DB
}

func NewLearningLogRepository(db *gorm.DB) *LearningLogRepository {
	return &LearningLogRepository{DB: db}
}

func (r *LearningLogRepository) Create(log *model.LearningLog) error {
	if log.LoggedAt.IsZero() {
		log.LoggedAt = time.Now()
	}
	return r.DB.Create(log).Error
}

func (r *LearningLogRepository) ListForUser(userID uint, courseID string, limit int) ([]model.LearningLog, error) {
	var logs []model.LearningLog
	query := r.DB.Where("user_id = ?", userID)
	if courseID != "" {
		query = query.Where("course_id = ?", courseID)
	}
	if limit <= 0 {
		limit = 50
	}
	err := query.Order("logged_at desc").Limit(limit).Find(&logs).Error
	return logs, err
}
