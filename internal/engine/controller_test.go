package engine

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestController(course *Course, lt LearnerType) (*PathController, *MemoryProgressStore, *ManualScheduler) {
	store := NewMemoryProgressStore()
	sched := &ManualScheduler{}
	ctrl := NewPathController(7, "course-1", lt, course, store, sched)
	return ctrl, store, sched
}

func TestControllerFullPassFlow(t *testing.T) {
	// 1模块1章节（无测试跳级）2课时，first-time：路径恰好2个课时条目
	course := &Course{
		ID: "course-1",
		Modules: []Module{{
			ID: "m1",
			Chapters: []Chapter{{
				ID:    "ch1",
				Title: "唯一章节",
				Lessons: []Lesson{
					{ID: "l1", Title: "第一课", Type: LessonVideo, DurationMinutes: 10},
					{ID: "l2", Title: "第二课", Type: LessonReading, DurationMinutes: 5},
				},
			}},
		}},
	}

	ctrl, store, sched := newTestController(course, LearnerFirstTime)
	require.Len(t, ctrl.Path(), 2)
	for _, e := range ctrl.Path() {
		assert.Equal(t, EntryLesson, e.Kind)
	}

	_, err := ctrl.CompleteLesson("l1", floatPtr(95), 600)
	require.NoError(t, err)
	sched.Fire() // 自动前进
	cur, ok := ctrl.Current()
	require.True(t, ok)
	assert.Equal(t, "l2", cur.ID)

	_, err = ctrl.CompleteLesson("l2", floatPtr(88), 300)
	require.NoError(t, err)

	for _, id := range []string{"l1", "l2"} {
		rec, err := store.Read(7, "course-1", id)
		require.NoError(t, err)
		require.NotNil(t, rec)
		assert.True(t, rec.Completed)
		assert.Equal(t, 1, rec.Attempts)
	}
	assert.Equal(t, 2, store.WriteCount())
}

func TestControllerTestOutBypass(t *testing.T) {
	// 开放跳级的3课时章节，refresher，5题及格线80：
	// 答对4题(80分)通过，章节记完成，课时级不产生任何写入
	course := &Course{
		ID: "course-1",
		Modules: []Module{{
			ID: "m1",
			Chapters: []Chapter{{
				ID:                      "ch1",
				Title:                   "可跳级章节",
				TestOutAvailable:        true,
				TestOutTimeLimitMinutes: 10,
				TestOutPassingScore:     80,
				Lessons: []Lesson{
					{ID: "l1", Title: "一"}, {ID: "l2", Title: "二"}, {ID: "l3", Title: "三"},
				},
			}},
		}},
	}

	ctrl, store, sched := newTestController(course, LearnerRefresher)
	require.Len(t, ctrl.Path(), 4)

	clock := NewFakeClock(time.Unix(0, 0))
	entryID := TestOutEntryID("ch1")
	sess, err := NewAssessmentSession(entryID, fiveQuestions(), AssessmentConfig{TimeLimitMinutes: 10, PassingScore: 80}, clock)
	require.NoError(t, err)
	require.NoError(t, sess.Start())

	require.NoError(t, sess.SelectAnswer("q1", 1))
	require.NoError(t, sess.SelectAnswer("q2", true))
	require.NoError(t, sess.SelectAnswer("q3", 0))
	require.NoError(t, sess.SelectAnswer("q4", "ritchie"))

	out, err := sess.Submit()
	require.NoError(t, err)
	assert.Equal(t, 80, out.Score)
	assert.True(t, out.Passed)

	_, err = ctrl.ApplyAssessmentOutcome(out)
	require.NoError(t, err)

	rec, err := store.Read(7, "course-1", entryID)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.True(t, rec.Completed)
	assert.Equal(t, 80.0, *rec.Score)
	assert.Equal(t, 1, rec.Attempts)

	// 跳级学分覆盖逐课完成：没有课时级写入
	for _, id := range []string{"l1", "l2", "l3"} {
		rec, err := store.Read(7, "course-1", id)
		require.NoError(t, err)
		assert.Nil(t, rec)
	}
	assert.Equal(t, 1, store.WriteCount())

	// 通过后调度自动前进
	assert.Equal(t, 1, sched.PendingCount())
	sched.Fire()
	cur, _ := ctrl.Current()
	assert.Equal(t, "l1", cur.ID)
}

func TestControllerFailedTestOutAllowsRetake(t *testing.T) {
	course := sampleCourse()
	ctrl, store, sched := newTestController(course, LearnerRefresher)

	entryID := TestOutEntryID("ch-1")
	out := &AssessmentOutcome{EntryID: entryID, Score: 40, Passed: false, TotalQuestions: 5, TimeSpentSeconds: 120}

	_, err := ctrl.ApplyAssessmentOutcome(out)
	require.NoError(t, err)

	rec, _ := store.Read(7, "course-1", entryID)
	require.NotNil(t, rec)
	assert.False(t, rec.Completed)
	assert.Equal(t, 1, rec.Attempts)

	// 失败不调度自动前进，位置不变
	assert.Equal(t, 0, sched.PendingCount())
	cur, _ := ctrl.Current()
	assert.Equal(t, entryID, cur.ID)

	// 重考：新会话的结果再次落地，attempts 由控制器累加
	_, err = ctrl.ApplyAssessmentOutcome(&AssessmentOutcome{EntryID: entryID, Score: 90, Passed: true, TotalQuestions: 5})
	require.NoError(t, err)
	rec, _ = store.Read(7, "course-1", entryID)
	assert.True(t, rec.Completed)
	assert.Equal(t, 2, rec.Attempts)
}

func TestControllerQuickReviewOutcomeHasNoScore(t *testing.T) {
	ctrl, store, _ := newTestController(sampleCourse(), LearnerRefresher)

	out := &QuickReviewOutcome{EntryID: "l-2", ReviewedCount: 2, TotalConcepts: 3, TimeSpentSeconds: 40}
	_, err := ctrl.ApplyQuickReviewOutcome(out)
	require.NoError(t, err)

	rec, _ := store.Read(7, "course-1", "l-2")
	require.NotNil(t, rec)
	assert.True(t, rec.Completed)
	assert.Nil(t, rec.Score, "quick review is not graded")
	assert.Equal(t, 40, rec.TimeSpentSeconds)
}

func TestControllerSuggestionsComputedAgainstNextEntry(t *testing.T) {
	course := &Course{
		ID: "course-1",
		Modules: []Module{{
			ID: "m1",
			Chapters: []Chapter{{
				ID: "ch1",
				Lessons: []Lesson{
					{ID: "l1", Title: "一"},
					{ID: "l2", Title: "二", QuickReviewAvailable: true},
				},
			}},
		}},
	}
	ctrl, store, _ := newTestController(course, LearnerRefresher)

	// 预置下一课时的失败历史
	low := 50.0
	require.NoError(t, store.Write(7, "course-1", "l2", ProgressPatch{Score: &low, AttemptsDelta: 4}))

	suggestions, err := ctrl.CompleteLesson("l1", floatPtr(100), 60)
	require.NoError(t, err)

	// 建议针对 l2（尚未访问的内容），而不是刚完成的 l1
	assert.Equal(t, []Suggestion{
		{Type: SuggestReview, Priority: PriorityHigh},
		{Type: SuggestPractice, Priority: PriorityMedium},
		{Type: SuggestQuickReview, Priority: PriorityLow},
	}, suggestions)
}

func TestControllerAutoAdvanceCancellable(t *testing.T) {
	ctrl, _, sched := newTestController(sampleCourse(), LearnerFirstTime)

	_, err := ctrl.CompleteLesson("l-1", nil, 60)
	require.NoError(t, err)
	require.Equal(t, 1, sched.PendingCount())

	// 学习者离开：取消挂起的前进
	ctrl.CancelAutoAdvance()
	assert.Equal(t, 0, sched.PendingCount())

	sched.Fire()
	cur, _ := ctrl.Current()
	assert.Equal(t, "l-1", cur.ID, "cancelled advance must not move the position")
}

func TestControllerJumpToCancelsPendingAdvance(t *testing.T) {
	ctrl, _, sched := newTestController(sampleCourse(), LearnerFirstTime)

	_, err := ctrl.CompleteLesson("l-1", nil, 60)
	require.NoError(t, err)

	require.NoError(t, ctrl.JumpTo("l-4"))
	sched.Fire()
	cur, _ := ctrl.Current()
	assert.Equal(t, "l-4", cur.ID)

	assert.ErrorIs(t, ctrl.JumpTo("ghost"), ErrOutOfRange)
}

func TestControllerAbandonedSessionWritesNothing(t *testing.T) {
	_, store, _ := newTestController(sampleCourse(), LearnerRefresher)

	sess, err := NewAssessmentSession(TestOutEntryID("ch-1"), fiveQuestions(), AssessmentConfig{TimeLimitMinutes: 10, PassingScore: 80}, NewFakeClock(time.Unix(0, 0)))
	require.NoError(t, err)
	require.NoError(t, sess.Start())
	require.NoError(t, sess.SelectAnswer("q1", 1))

	// 中途离开＝非正常废弃：无结果，无写入，attempts 不变
	assert.Nil(t, sess.Outcome())
	assert.Equal(t, 0, store.WriteCount())

	rec, _ := store.Read(7, "course-1", TestOutEntryID("ch-1"))
	assert.Nil(t, rec)
}

// goroutineScheduler 在独立 goroutine 里立即触发回调，
// 复现真实定时器的并发语义（回调不经过调用方的串行化）。
type goroutineScheduler struct {
	wg sync.WaitGroup
}

func (s *goroutineScheduler) After(d time.Duration, fn func()) func() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		fn()
	}()
	return func() {}
}

func TestControllerTimerCallbackConcurrentWithReads(t *testing.T) {
	lessons := make([]Lesson, 32)
	for i := range lessons {
		lessons[i] = Lesson{ID: fmt.Sprintf("l%d", i), Title: fmt.Sprintf("课 %d", i)}
	}
	course := &Course{
		ID:      "course-1",
		Modules: []Module{{ID: "m1", Chapters: []Chapter{{ID: "ch1", Lessons: lessons}}}},
	}

	sched := &goroutineScheduler{}
	ctrl := NewPathController(7, "course-1", LearnerFirstTime, course, NewMemoryProgressStore(), sched)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 500; i++ {
			ctrl.Current()
			ctrl.CurrentIndex()
			ctrl.Next()
			ctrl.CancelAutoAdvance()
		}
	}()

	for i := range lessons {
		_, err := ctrl.CompleteLesson(lessons[i].ID, nil, 1)
		require.NoError(t, err)
	}

	sched.wg.Wait()
	<-done

	// 位置始终停留在路径范围内
	idx := ctrl.CurrentIndex()
	assert.GreaterOrEqual(t, idx, 0)
	assert.Less(t, idx, len(ctrl.Path()))
}

func TestControllerEmptyPath(t *testing.T) {
	ctrl, _, _ := newTestController(&Course{ID: "empty"}, LearnerFirstTime)

	assert.Empty(t, ctrl.Path())
	_, ok := ctrl.Current()
	assert.False(t, ok, "empty path means nothing to render, not an error")
	_, ok = ctrl.Next()
	assert.False(t, ok)
}
