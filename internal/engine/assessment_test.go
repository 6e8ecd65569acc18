package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fiveQuestions() []Question {
	return []Question{
		{ID: "q1", Text: "1+1=?", Options: []string{"1", "2", "3"}, CorrectAnswer: 1},
		{ID: "q2", Text: "指针保存地址", CorrectAnswer: true},
		{ID: "q3", Text: "数组下标从几开始", Options: []string{"0", "1"}, CorrectAnswer: 0},
		{ID: "q4", Text: "C的作者", CorrectAnswer: "ritchie"},
		{ID: "q5", Text: "int默认值", Options: []string{"0", "1", "未定义"}, CorrectAnswer: 2},
	}
}

func startedSession(t *testing.T, cfg AssessmentConfig, clock Clock) *AssessmentSession {
	t.Helper()
	s, err := NewAssessmentSession(TestOutEntryID("ch-1"), fiveQuestions(), cfg, clock)
	require.NoError(t, err)
	require.NoError(t, s.Start())
	return s
}

func TestAssessmentLifecycle(t *testing.T) {
	clock := NewFakeClock(time.Unix(1000, 0))
	s, err := NewAssessmentSession("e1", fiveQuestions(), AssessmentConfig{TimeLimitMinutes: 10, PassingScore: 60}, clock)
	require.NoError(t, err)

	assert.Equal(t, SessionNotStarted, s.Status())

	// 未启动时一切操作被拒绝，状态不被破坏
	assert.ErrorIs(t, s.SelectAnswer("q1", 1), ErrInvalidState)
	assert.ErrorIs(t, s.Navigate(2), ErrInvalidState)
	_, err = s.Submit()
	assert.ErrorIs(t, err, ErrInvalidState)

	require.NoError(t, s.Start())
	assert.Equal(t, SessionInProgress, s.Status())
	assert.Equal(t, 600, s.TimeRemaining())

	// 重复启动是状态错误
	assert.ErrorIs(t, s.Start(), ErrInvalidState)
}

func TestAssessmentScoring(t *testing.T) {
	clock := NewFakeClock(time.Unix(1000, 0))
	s := startedSession(t, AssessmentConfig{TimeLimitMinutes: 10, PassingScore: 60}, clock)

	// 5题答对3题：q4答错，q5未作答
	require.NoError(t, s.SelectAnswer("q1", 1))
	require.NoError(t, s.SelectAnswer("q2", true))
	require.NoError(t, s.SelectAnswer("q3", 0))
	require.NoError(t, s.SelectAnswer("q4", "kernighan"))

	clock.Advance(90 * time.Second)
	out, err := s.Submit()
	require.NoError(t, err)
	require.NotNil(t, out)

	assert.Equal(t, 60, out.Score)
	assert.Equal(t, 3, out.CorrectCount)
	assert.Equal(t, 5, out.TotalQuestions)
	assert.True(t, out.Passed, "score equal to threshold passes")
	assert.Equal(t, 90, out.TimeSpentSeconds)
	assert.False(t, out.TimedOut)
}

func TestAssessmentThresholdBoundary(t *testing.T) {
	clock := NewFakeClock(time.Unix(1000, 0))
	s := startedSession(t, AssessmentConfig{TimeLimitMinutes: 10, PassingScore: 61}, clock)

	require.NoError(t, s.SelectAnswer("q1", 1))
	require.NoError(t, s.SelectAnswer("q2", true))
	require.NoError(t, s.SelectAnswer("q3", 0))

	out, err := s.Submit()
	require.NoError(t, err)
	assert.Equal(t, 60, out.Score)
	assert.False(t, out.Passed, "60 fails a threshold of 61")
}

func TestAssessmentScoreRoundsHalfUp(t *testing.T) {
	// 8题对1题 = 12.5 → 13
	questions := make([]Question, 8)
	for i := range questions {
		questions[i] = Question{ID: string(rune('a' + i)), CorrectAnswer: true}
	}
	s, err := NewAssessmentSession("e1", questions, AssessmentConfig{TimeLimitMinutes: 5, PassingScore: 50}, NewFakeClock(time.Unix(0, 0)))
	require.NoError(t, err)
	require.NoError(t, s.Start())
	require.NoError(t, s.SelectAnswer("a", true))

	out, err := s.Submit()
	require.NoError(t, err)
	assert.Equal(t, 13, out.Score)
}

func TestAssessmentAnswersMutableUntilSubmit(t *testing.T) {
	s := startedSession(t, AssessmentConfig{TimeLimitMinutes: 5, PassingScore: 60}, NewFakeClock(time.Unix(0, 0)))

	require.NoError(t, s.SelectAnswer("q1", 0))
	require.NoError(t, s.Navigate(3))
	// 非线性导航后仍可改早先题目的答案
	require.NoError(t, s.SelectAnswer("q1", 1))

	v, ok := s.Answer("q1")
	require.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestAssessmentNavigateBounds(t *testing.T) {
	s := startedSession(t, AssessmentConfig{TimeLimitMinutes: 5, PassingScore: 60}, NewFakeClock(time.Unix(0, 0)))

	require.NoError(t, s.Navigate(4))
	assert.Equal(t, 4, s.CurrentIndex())

	assert.ErrorIs(t, s.Navigate(5), ErrOutOfRange)
	assert.ErrorIs(t, s.Navigate(-1), ErrOutOfRange)
	// 越界导航不破坏现有位置
	assert.Equal(t, 4, s.CurrentIndex())
}

func TestAssessmentSubmitIdempotent(t *testing.T) {
	s := startedSession(t, AssessmentConfig{TimeLimitMinutes: 5, PassingScore: 60}, NewFakeClock(time.Unix(0, 0)))

	first, err := s.Submit()
	require.NoError(t, err)
	require.NotNil(t, first)

	// 第二次提交是空操作：不报错，也不再产出结果
	second, err := s.Submit()
	require.NoError(t, err)
	assert.Nil(t, second)

	assert.Equal(t, SessionCompleted, s.Status())
	assert.Same(t, first, s.Outcome())

	// 完成后拒绝作答与导航
	assert.ErrorIs(t, s.SelectAnswer("q1", 1), ErrInvalidState)
	assert.ErrorIs(t, s.Navigate(0), ErrInvalidState)
}

func TestAssessmentTimeoutForcesSubmit(t *testing.T) {
	clock := NewFakeClock(time.Unix(1000, 0))
	s := startedSession(t, AssessmentConfig{TimeLimitMinutes: 0, PassingScore: 60}, clock)

	clock.Advance(time.Second)
	out := s.Tick()

	require.NotNil(t, out, "tick at zero remaining must force submission")
	assert.Equal(t, SessionCompleted, s.Status())
	assert.True(t, out.TimedOut)
	assert.Equal(t, 0, out.Score, "nothing answered counts as all incorrect")

	// 终态后的 tick 是空操作，不会重复产出结果
	assert.Nil(t, s.Tick())
}

func TestAssessmentCountdown(t *testing.T) {
	clock := NewFakeClock(time.Unix(1000, 0))
	s := startedSession(t, AssessmentConfig{TimeLimitMinutes: 1, PassingScore: 60}, clock)

	for i := 0; i < 59; i++ {
		clock.Advance(time.Second)
		require.Nil(t, s.Tick())
	}
	assert.Equal(t, 1, s.TimeRemaining())

	clock.Advance(time.Second)
	out := s.Tick()
	require.NotNil(t, out)
	assert.Equal(t, 60, out.TimeSpentSeconds)
}

func TestAssessmentChoiceQuestionValidation(t *testing.T) {
	_, err := NewAssessmentSession("e1", []Question{
		{ID: "bad", Text: "只有一个选项", Options: []string{"唯一"}, CorrectAnswer: 0},
	}, AssessmentConfig{TimeLimitMinutes: 5, PassingScore: 60}, nil)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAnswerMatches(t *testing.T) {
	tests := []struct {
		name    string
		correct interface{}
		given   interface{}
		want    bool
	}{
		{"index match", 2, 2, true},
		{"index mismatch", 2, 1, false},
		{"json number index", 2, float64(2), true},
		{"json number fractional", 2, 2.5, false},
		{"bool match", true, true, true},
		{"bool mismatch", true, false, false},
		{"bool vs string", true, "true", false},
		{"string match", "ritchie", "ritchie", true},
		{"string mismatch strict", "ritchie", "Ritchie", false},
		{"nil answer", 2, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, answerMatches(tt.correct, tt.given))
		})
	}
}
