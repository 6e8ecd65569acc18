package model

import "encoding/json"

const (
	QuestionSingleChoice = "single_choice"
	QuestionTrueFalse    = "true_false"
	QuestionFillBlank    = "fill_blank"
)

// TestOutQuestion 章节测试跳级题库中的一题
// swagger:model TestOutQuestion
type TestOutQuestion struct {
	UUIDBase
	ChapterID    string          `gorm:"index;type:varchar(36);not null" json:"chapterId"`
	QuestionType string          `gorm:"size:50;not null" json:"questionType"` // single_choice, true_false, fill_blank
	Content      string          `gorm:"type:text;not null" json:"content"`
	Options      json.RawMessage `gorm:"type:json" json:"options,omitempty"` // JSON: []string，选择题至少两项
	Answer       string          `gorm:"type:text" json:"answer"`            // 单选题存选项下标，判断题存 true/false
	Order        int             `gorm:"default:0" json:"order"`
	Explanation  string          `gorm:"type:text" json:"explanation"`
}

func (TestOutQuestion) TableName() string {
	return "test_out_questions"
}

type ConceptImportance string

const (
	ImportanceHigh   ConceptImportance = "high"
	ImportanceMedium ConceptImportance = "medium"
	ImportanceLow    ConceptImportance = "low"
)

// ReviewConcept 章节速览清单中的一个概念
// swagger:model ReviewConcept
type ReviewConcept struct {
	UUIDBase
	ChapterID        string            `gorm:"index;type:varchar(36);not null" json:"chapterId"`
	Title            string            `gorm:"size:255;not null" json:"title"`
	Importance       ConceptImportance `gorm:"type:enum('high','medium','low');default:'medium'" json:"importance"`
	EstimatedMinutes int               `gorm:"default:0" json:"estimatedMinutes"`
	Topics           StringList        `gorm:"type:json" json:"topics"`
	Order            int               `gorm:"default:0" json:"order"`
}

func (ReviewConcept) TableName() string {
	return "review_concepts"
}
