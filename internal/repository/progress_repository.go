package repository

import (
	"errors"

	"learnpath_backend/internal/engine"
	"learnpath_backend/internal/model"

	"gorm.io/gorm"
)

// ProgressRepository 进度存储的 gorm 实现，同时满足 engine.ProgressStore。
// 行首次写入时惰性创建，课程尝试期间不删除。
type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

// Read 实现 engine.ProgressStore：没有记录时返回 (nil, nil)
func (r *ProgressRepository) Read(learnerID uint, courseID, entryID string) (*engine.ProgressRecord, error) {
	var rec model.ProgressRecord
	err := r.DB.Where("user_id = ? AND course_id = ? AND entry_id = ?", learnerID, courseID, entryID).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &engine.ProgressRecord{
		Completed:        rec.Completed,
		Score:            rec.Score,
		Attempts:         rec.Attempts,
		TimeSpentSeconds: rec.TimeSpentSeconds,
	}, nil
}

// Write 实现 engine.ProgressStore：单事务内读改写，attempts 与耗时累加
func (r *ProgressRepository) Write(learnerID uint, courseID, entryID string, patch engine.ProgressPatch) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var rec model.ProgressRecord
		err := tx.Where("user_id = ? AND course_id = ? AND entry_id = ?", learnerID, courseID, entryID).
			First(&rec).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			rec = model.ProgressRecord{
				UserID:   learnerID,
				CourseID: courseID,
				EntryID:  entryID,
			}
		} else if err != nil {
			return err
		}

		// 完成态单调：失败的重考不回收已获得的完成
		if patch.Completed {
			rec.Completed = true
		}
		if patch.Score != nil {
			rec.Score = patch.Score
		}
		rec.Attempts += patch.AttemptsDelta
		rec.TimeSpentSeconds += patch.TimeSpentSeconds

		return tx.Save(&rec).Error
	})
}

// ListForCourse 返回学习者在某课程的全部进度记录
func (r *ProgressRepository) ListForCourse(learnerID uint, courseID string) ([]model.ProgressRecord, error) {
	var recs []model.ProgressRecord
	err := r.DB.Where("user_id = ? AND course_id = ?", learnerID, courseID).Find(&recs).Error
	return recs, err
}

// AddLearningTime 仅累加学习耗时，不动完成态与分数
func (r *ProgressRepository) AddLearningTime(learnerID uint, courseID, entryID string, seconds int) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var rec model.ProgressRecord
		err := tx.Where("user_id = ? AND course_id = ? AND entry_id = ?", learnerID, courseID, entryID).
			First(&rec).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			rec = model.ProgressRecord{
				UserID:   learnerID,
				CourseID: courseID,
				EntryID:  entryID,
			}
		} else if err != nil {
			return err
		}
		rec.TimeSpentSeconds += seconds
		return tx.Save(&rec).Error
	})
}
