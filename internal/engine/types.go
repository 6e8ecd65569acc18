// Package engine implements the adaptive learning path and assessment core:
// path building, progress contracts, adaptive suggestions and the session
// state machines. It is framework-free so the same engine can run headless
// in tests or inside any host.
package engine

// LearnerType 学习者类型，决定路径过滤和可用的替代路线
type LearnerType string

const (
	LearnerFirstTime LearnerType = "first-time"
	LearnerRefresher LearnerType = "refresher"
)

// LessonType 课时类型
type LessonType string

const (
	LessonVideo   LessonType = "video"
	LessonReading LessonType = "reading"
	LessonQuiz    LessonType = "quiz"
	LessonProject LessonType = "project"
)

// Course 课程层级的只读输入，由内容提供方装载，会话期间不可变
type Course struct {
	ID      string
	Title   string
	Modules []Module
}

type Module struct {
	ID       string
	Title    string
	Chapters []Chapter
}

type Chapter struct {
	ID               string
	Title            string
	TestOutAvailable bool
	// 测试跳级配置（仅 TestOutAvailable 时有意义）
	TestOutTimeLimitMinutes int
	TestOutPassingScore     int
	Lessons                 []Lesson
}

type Lesson struct {
	ID              string
	Title           string
	Type            LessonType
	DurationMinutes int
	// LearnerTypes 为 nil 表示适用于所有学习者类型
	LearnerTypes         []string
	QuickReviewAvailable bool
}

// AppliesTo reports whether the lesson is part of the path for the given
// learner type. nil means the lesson applies to everyone.
func (l *Lesson) AppliesTo(lt LearnerType) bool {
	if l.LearnerTypes == nil {
		return true
	}
	for _, t := range l.LearnerTypes {
		if LearnerType(t) == lt {
			return true
		}
	}
	return false
}

// EntryKind 路径条目种类
type EntryKind string

const (
	EntryLesson  EntryKind = "lesson"
	EntryTestOut EntryKind = "test-out"
)

// PathEntry 学习路径中的一个可寻址单元
type PathEntry struct {
	ID              string    `json:"id"`
	Kind            EntryKind `json:"kind"`
	SourceID        string    `json:"sourceId"` // 课时ID或章节ID
	ModuleID        string    `json:"moduleId"`
	ChapterID       string    `json:"chapterId"`
	Title           string    `json:"title"`
	DurationMinutes int       `json:"durationMinutes"`
}

// Question 测试跳级题目。Options 为空表示判断题或填空题。
type Question struct {
	ID            string
	Text          string
	Options       []string
	CorrectAnswer interface{} // 单选题为选项下标(int)，判断题为bool，填空题为string
}

// ConceptImportance 概念重要程度
type ConceptImportance string

const (
	ImportanceHigh   ConceptImportance = "high"
	ImportanceMedium ConceptImportance = "medium"
	ImportanceLow    ConceptImportance = "low"
)

// Concept 速览清单中的一个概念
type Concept struct {
	ID               string
	Title            string
	Importance       ConceptImportance
	EstimatedMinutes int
	Topics           []string
}
