package engine

// SuggestionType 建议种类
type SuggestionType string

const (
	SuggestReview      SuggestionType = "review"
	SuggestPractice    SuggestionType = "practice"
	SuggestQuickReview SuggestionType = "quick-review"
)

// SuggestionPriority 建议优先级
type SuggestionPriority string

const (
	PriorityHigh   SuggestionPriority = "high"
	PriorityMedium SuggestionPriority = "medium"
	PriorityLow    SuggestionPriority = "low"
)

// Suggestion 针对某个课时的自适应学习建议
type Suggestion struct {
	Type     SuggestionType     `json:"type"`
	Priority SuggestionPriority `json:"priority"`
}

// 补考建议的分数阈值与刷题建议的次数阈值
const (
	ReviewScoreThreshold = 70
	PracticeAttemptsMin  = 3
)

// Suggest 根据进度记录给出有序建议列表。各规则独立判定，
// 同时满足时按 review、practice、quick-review 排列。
// record 为 nil 时按零值记录处理。无状态纯函数。
func Suggest(record *ProgressRecord, learnerType LearnerType, quickReviewAvailable bool) []Suggestion {
	if record == nil {
		record = &ProgressRecord{}
	}

	suggestions := []Suggestion{}

	if record.Score != nil && *record.Score < ReviewScoreThreshold {
		suggestions = append(suggestions, Suggestion{Type: SuggestReview, Priority: PriorityHigh})
	}

	if record.Attempts >= PracticeAttemptsMin {
		suggestions = append(suggestions, Suggestion{Type: SuggestPractice, Priority: PriorityMedium})
	}

	if learnerType == LearnerRefresher && quickReviewAvailable {
		suggestions = append(suggestions, Suggestion{Type: SuggestQuickReview, Priority: PriorityLow})
	}

	return suggestions
}
