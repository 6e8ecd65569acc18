package model

import "time"

// ProgressRecord 学习者在单个路径条目上的持久化掌握状态。
// 首次写入时惰性创建，课程尝试期间不删除；
// 会话从不直接改它，只有路径控制器在终态时写入一次。
// swagger:model ProgressRecord
type ProgressRecord struct {
	BaseModel
	UserID           uint     `gorm:"uniqueIndex:idx_user_course_entry;type:bigint unsigned" json:"userId"`
	CourseID         string   `gorm:"uniqueIndex:idx_user_course_entry;type:varchar(36)" json:"courseId"`
	EntryID          string   `gorm:"uniqueIndex:idx_user_course_entry;type:varchar(64)" json:"entryId"`
	Completed        bool     `gorm:"default:false" json:"completed"`
	Score            *float64 `json:"score"` // 0–100，未评分为 NULL
	Attempts         int      `gorm:"default:0" json:"attempts"`
	TimeSpentSeconds int      `gorm:"default:0" json:"timeSpentSeconds"`
}

func (ProgressRecord) TableName() string {
	return "progress_records"
}

// LearningLog 记录学习活动流水
type LearningLog struct {
	BaseModel
	UserID    uint      `gorm:"index;type:bigint unsigned" json:"userId"`
	CourseID  string    `gorm:"index;type:varchar(36)" json:"courseId"`
	EntryID   string    `gorm:"type:varchar(64)" json:"entryId"`
	Activity  string    `gorm:"size:50" json:"activity"` // lesson_complete, test_out_submit, quick_review_complete, learning_time
	Content   string    `gorm:"type:text" json:"content"`
	Duration  int       `gorm:"default:0" json:"duration"` // 秒
	Score     int       `gorm:"default:0" json:"score"`
	Completed bool      `gorm:"default:false" json:"completed"`
	LoggedAt  time.Time `json:"loggedAt"`
}

func (LearningLog) TableName() string {
	return "learning_logs"
}
