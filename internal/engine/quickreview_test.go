package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleConcepts() []Concept {
	return []Concept{
		{ID: "c1", Title: "变量与作用域", Importance: ImportanceHigh, EstimatedMinutes: 3, Topics: []string{"declaration", "scope"}},
		{ID: "c2", Title: "类型转换", Importance: ImportanceMedium, EstimatedMinutes: 2},
		{ID: "c3", Title: "命名约定", Importance: ImportanceLow, EstimatedMinutes: 1},
	}
}

func TestQuickReviewActivatesOnConstruction(t *testing.T) {
	s := NewQuickReviewSession("qr-ch-1", sampleConcepts(), NewFakeClock(time.Unix(0, 0)))
	assert.Equal(t, ReviewActive, s.Status())
	assert.Equal(t, 0, s.ReviewedCount())
}

func TestQuickReviewMarksAreOneWay(t *testing.T) {
	s := NewQuickReviewSession("qr-ch-1", sampleConcepts(), NewFakeClock(time.Unix(0, 0)))

	require.NoError(t, s.MarkReviewed("c1"))
	assert.True(t, s.IsReviewed("c1"))

	// 重复标记是空操作
	require.NoError(t, s.MarkReviewed("c1"))
	assert.Equal(t, 1, s.ReviewedCount())

	assert.ErrorIs(t, s.MarkReviewed("nope"), ErrOutOfRange)
}

func TestQuickReviewPartialCompletionAllowed(t *testing.T) {
	clock := NewFakeClock(time.Unix(2000, 0))
	s := NewQuickReviewSession("qr-ch-1", sampleConcepts(), clock)

	require.NoError(t, s.MarkReviewed("c1"))
	clock.Advance(45 * time.Second)

	out := s.CompleteReview()
	require.NotNil(t, out)
	assert.Equal(t, 1, out.ReviewedCount)
	assert.Equal(t, 3, out.TotalConcepts)
	assert.Equal(t, 45, out.TimeSpentSeconds)
	assert.Equal(t, ReviewCompleted, s.Status())

	// 完成后不可再标记
	assert.ErrorIs(t, s.MarkReviewed("c2"), ErrInvalidState)
}

func TestQuickReviewCompleteIdempotent(t *testing.T) {
	s := NewQuickReviewSession("qr-ch-1", sampleConcepts(), NewFakeClock(time.Unix(0, 0)))

	first := s.CompleteReview()
	require.NotNil(t, first)
	assert.Nil(t, s.CompleteReview())
	assert.Same(t, first, s.Outcome())
}

func TestQuickReviewImmediateCompletion(t *testing.T) {
	// 零概念被复习也允许完成——跳过细节正是速览的快速通道
	s := NewQuickReviewSession("qr-ch-1", sampleConcepts(), NewFakeClock(time.Unix(0, 0)))
	out := s.CompleteReview()
	require.NotNil(t, out)
	assert.Equal(t, 0, out.ReviewedCount)
}
