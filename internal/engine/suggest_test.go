package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func floatPtr(v float64) *float64 { return &v }

func TestSuggestRules(t *testing.T) {
	tests := []struct {
		name        string
		record      *ProgressRecord
		learnerType LearnerType
		quickReview bool
		want        []Suggestion
	}{
		{
			name:   "low score yields review only",
			record: &ProgressRecord{Score: floatPtr(50), Attempts: 1},
			want:   []Suggestion{{Type: SuggestReview, Priority: PriorityHigh}},
		},
		{
			name:   "many attempts yields practice only",
			record: &ProgressRecord{Score: floatPtr(90), Attempts: 5},
			want:   []Suggestion{{Type: SuggestPractice, Priority: PriorityMedium}},
		},
		{
			name:   "low score and many attempts, review ordered first",
			record: &ProgressRecord{Score: floatPtr(50), Attempts: 5},
			want: []Suggestion{
				{Type: SuggestReview, Priority: PriorityHigh},
				{Type: SuggestPractice, Priority: PriorityMedium},
			},
		},
		{
			name:        "refresher with quick review available",
			record:      &ProgressRecord{Score: floatPtr(85), Attempts: 1},
			learnerType: LearnerRefresher,
			quickReview: true,
			want:        []Suggestion{{Type: SuggestQuickReview, Priority: PriorityLow}},
		},
		{
			name:        "all three in fixed order",
			record:      &ProgressRecord{Score: floatPtr(40), Attempts: 4},
			learnerType: LearnerRefresher,
			quickReview: true,
			want: []Suggestion{
				{Type: SuggestReview, Priority: PriorityHigh},
				{Type: SuggestPractice, Priority: PriorityMedium},
				{Type: SuggestQuickReview, Priority: PriorityLow},
			},
		},
		{
			name:   "nil score never triggers review",
			record: &ProgressRecord{Attempts: 1},
			want:   []Suggestion{},
		},
		{
			name:   "score at threshold does not trigger review",
			record: &ProgressRecord{Score: floatPtr(70)},
			want:   []Suggestion{},
		},
		{
			name:   "score just below threshold triggers review",
			record: &ProgressRecord{Score: floatPtr(69.9)},
			want:   []Suggestion{{Type: SuggestReview, Priority: PriorityHigh}},
		},
		{
			name:   "two attempts is not enough for practice",
			record: &ProgressRecord{Attempts: 2},
			want:   []Suggestion{},
		},
		{
			name:        "quick review needs refresher",
			record:      &ProgressRecord{},
			learnerType: LearnerFirstTime,
			quickReview: true,
			want:        []Suggestion{},
		},
		{
			name: "missing record treated as zero values",
			want: []Suggestion{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lt := tt.learnerType
			if lt == "" {
				lt = LearnerFirstTime
			}
			got := Suggest(tt.record, lt, tt.quickReview)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSuggestIsPure(t *testing.T) {
	record := &ProgressRecord{Score: floatPtr(50), Attempts: 5}
	first := Suggest(record, LearnerRefresher, true)
	second := Suggest(record, LearnerRefresher, true)
	assert.Equal(t, first, second)
	// 输入不被修改
	assert.Equal(t, 50.0, *record.Score)
	assert.Equal(t, 5, record.Attempts)
}
