package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// StringList 以 JSON 存储的字符串数组列。nil 与 SQL NULL 互相对应，
// 用于课时的 learnerTypes：NULL 表示适用于所有学习者类型。
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal(l)
}

func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	}
	return errors.New("unsupported column type for StringList")
}

// swagger:model Course
type Course struct {
	UUIDBase
	Title       string         `gorm:"size:255;not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	CreatorID   uint           `gorm:"index;type:bigint unsigned" json:"creatorId"`
	IsPublished bool           `gorm:"default:false" json:"isPublished"`
	Modules     []CourseModule `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"modules"`
}

func (Course) TableName() string {
	return "courses"
}

// swagger:model CourseModule
type CourseModule struct {
	UUIDBase
	CourseID string    `gorm:"index;type:varchar(36);not null" json:"courseId"`
	Title    string    `gorm:"size:255;not null" json:"title"`
	Order    int       `gorm:"default:0" json:"order"`
	Chapters []Chapter `gorm:"foreignKey:ModuleID;constraint:OnDelete:CASCADE" json:"chapters"`
}

func (CourseModule) TableName() string {
	return "course_modules"
}

// swagger:model Chapter
type Chapter struct {
	UUIDBase
	ModuleID         string `gorm:"index;type:varchar(36);not null" json:"moduleId"`
	Title            string `gorm:"size:255;not null" json:"title"`
	Order            int    `gorm:"default:0" json:"order"`
	TestOutAvailable bool   `gorm:"default:false" json:"testOutAvailable"`
	// 测试跳级配置：限时与及格线按章节配置，不写死
	TestOutTimeLimit    int      `gorm:"default:0" json:"testOutTimeLimit"` // 分钟
	TestOutPassingScore int      `gorm:"default:70" json:"testOutPassingScore"`
	Lessons             []Lesson `gorm:"foreignKey:ChapterID;constraint:OnDelete:CASCADE" json:"lessons"`
}

func (Chapter) TableName() string {
	return "chapters"
}

type LessonType string

const (
	LessonVideo   LessonType = "video"
	LessonReading LessonType = "reading"
	LessonQuiz    LessonType = "quiz"
	LessonProject LessonType = "project"
)

// swagger:model Lesson
type Lesson struct {
	UUIDBase
	ChapterID       string     `gorm:"index;type:varchar(36);not null" json:"chapterId"`
	Title           string     `gorm:"size:255;not null" json:"title"`
	Type            LessonType `gorm:"type:enum('video','reading','quiz','project');default:'reading'" json:"type"`
	Order           int        `gorm:"default:0" json:"order"`
	Content         string     `gorm:"type:longtext" json:"content"`
	DurationMinutes int        `gorm:"default:0" json:"durationMinutes"`
	// NULL 表示适用于所有学习者类型
	LearnerTypes         StringList `gorm:"type:json" json:"learnerTypes"`
	QuickReviewAvailable bool       `gorm:"default:false" json:"quickReviewAvailable"`
	MediaURL             string     `gorm:"size:512" json:"mediaUrl"`
	ThumbnailURL         string     `gorm:"size:512" json:"thumbnailUrl"`
}

func (Lesson) TableName() string {
	return "lessons"
}
