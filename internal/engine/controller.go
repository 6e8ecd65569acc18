package engine

import (
	"sync"
	"time"
)

// AutoAdvanceDelay 完成确认展示窗口：条目完成后延迟这么久再前进。
// 这是体验上的让步而非正确性要求，学习者离开时必须可取消。
const AutoAdvanceDelay = 2 * time.Second

// PathController 编排学习路径导航：持有路径与当前位置，按条目种类
// 分派会话，在会话终态时对进度存储做且只做一次写入，并在前进之前
// 针对下一个条目重新评估建议。
//
// 学习者与课程始终是显式参数——引擎不读任何环境态。
type PathController struct {
	learnerID   uint
	courseID    string
	learnerType LearnerType
	path        []PathEntry
	lessons     map[string]*Lesson

	store     ProgressStore
	scheduler Scheduler

	// mu 保护位置与挂起的自动前进。定时器回调从调度器自己的
	// goroutine 进来，不经过外层调用方的串行化。
	mu            sync.Mutex
	currentIndex  int
	cancelAdvance func()
	advanceSeq    uint64
}

// NewPathController 从已构建的路径创建控制器。
// course 用于查课时元数据（建议评估需要 quickReviewAvailable）。
func NewPathController(learnerID uint, courseID string, learnerType LearnerType, course *Course, store ProgressStore, scheduler Scheduler) *PathController {
	if scheduler == nil {
		scheduler = RealScheduler()
	}

	lessons := make(map[string]*Lesson)
	if course != nil {
		for mi := range course.Modules {
			for ci := range course.Modules[mi].Chapters {
				ch := &course.Modules[mi].Chapters[ci]
				for li := range ch.Lessons {
					lessons[ch.Lessons[li].ID] = &ch.Lessons[li]
				}
			}
		}
	}

	return &PathController{
		learnerID:   learnerID,
		courseID:    courseID,
		learnerType: learnerType,
		path:        BuildPath(course, learnerType),
		lessons:     lessons,
		store:       store,
		scheduler:   scheduler,
	}
}

// Path 返回控制器持有的路径（构建后不可变）
func (c *PathController) Path() []PathEntry { return c.path }

// CurrentIndex 返回当前位置
func (c *PathController) CurrentIndex() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentIndex
}

// Current 返回当前条目；空路径时 ok 为 false（渲染为空，不是错误）
func (c *PathController) Current() (PathEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entryAt(c.currentIndex)
}

// Next 返回当前条目之后的条目
func (c *PathController) Next() (PathEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entryAt(c.currentIndex + 1)
}

func (c *PathController) entryAt(idx int) (PathEntry, bool) {
	if idx < 0 || idx >= len(c.path) {
		return PathEntry{}, false
	}
	return c.path[idx], true
}

// JumpTo 跳转到指定条目并取消挂起的自动前进
func (c *PathController) JumpTo(entryID string) error {
	idx := FindEntry(c.path, entryID)
	if idx < 0 {
		return outOfRangef("entry %s not in path", entryID)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelPendingLocked()
	c.currentIndex = idx
	return nil
}

// Advance 前进到下一条目；已到末尾时停在原地
func (c *PathController) Advance() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelPendingLocked()
	if c.currentIndex+1 < len(c.path) {
		c.currentIndex++
	}
}

// CancelAutoAdvance 取消挂起的自动前进（学习者离开时调用）
func (c *PathController) CancelAutoAdvance() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelPendingLocked()
}

// CompleteLesson 记录课时完成：一次进度写入，然后针对下一条目评估建议,
// 并调度可取消的自动前进。
func (c *PathController) CompleteLesson(entryID string, score *float64, timeSpentSeconds int) ([]Suggestion, error) {
	idx := FindEntry(c.path, entryID)
	if idx < 0 || c.path[idx].Kind != EntryLesson {
		return nil, outOfRangef("lesson entry %s not in path", entryID)
	}

	c.writeProgress(entryID, ProgressPatch{
		Completed:        true,
		Score:            score,
		AttemptsDelta:    1,
		TimeSpentSeconds: timeSpentSeconds,
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	suggestions := c.suggestionsForNextLocked()
	c.scheduleAdvanceLocked()
	return suggestions, nil
}

// ApplyAssessmentOutcome 落地测试跳级结果：attempts 在这里累加（会话不管
// 重考计数），通过即把章节对应的条目记为完成——无论其课时是否逐个访问过，
// 跳级学分覆盖逐课完成。失败不阻止重考，重考开新会话即可。
func (c *PathController) ApplyAssessmentOutcome(out *AssessmentOutcome) ([]Suggestion, error) {
	if out == nil {
		return nil, nil
	}
	idx := FindEntry(c.path, out.EntryID)
	if idx < 0 || c.path[idx].Kind != EntryTestOut {
		return nil, outOfRangef("test-out entry %s not in path", out.EntryID)
	}

	score := float64(out.Score)
	c.writeProgress(out.EntryID, ProgressPatch{
		Completed:        out.Passed,
		Score:            &score,
		AttemptsDelta:    1,
		TimeSpentSeconds: out.TimeSpentSeconds,
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	suggestions := c.suggestionsForNextLocked()
	if out.Passed {
		c.scheduleAdvanceLocked()
	}
	return suggestions, nil
}

// ApplyQuickReviewOutcome 落地速览结果：标记完成但不写分数
func (c *PathController) ApplyQuickReviewOutcome(out *QuickReviewOutcome) ([]Suggestion, error) {
	if out == nil {
		return nil, nil
	}

	c.writeProgress(out.EntryID, ProgressPatch{
		Completed:        true,
		AttemptsDelta:    1,
		TimeSpentSeconds: out.TimeSpentSeconds,
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	suggestions := c.suggestionsForNextLocked()
	c.scheduleAdvanceLocked()
	return suggestions, nil
}

// SuggestionsFor 针对任意路径条目评估建议。
// 只读不可变的路径与课时表，不碰位置，持锁与否均可调用。
func (c *PathController) SuggestionsFor(entryID string) []Suggestion {
	record, _ := c.store.Read(c.learnerID, c.courseID, entryID)

	quickReview := false
	if idx := FindEntry(c.path, entryID); idx >= 0 && c.path[idx].Kind == EntryLesson {
		if lesson, ok := c.lessons[c.path[idx].SourceID]; ok {
			quickReview = lesson.QuickReviewAvailable
		}
	}

	return Suggest(record, c.learnerType, quickReview)
}

// suggestionsForNextLocked 建议总是针对尚未访问的内容评估
func (c *PathController) suggestionsForNextLocked() []Suggestion {
	next, ok := c.entryAt(c.currentIndex + 1)
	if !ok {
		return []Suggestion{}
	}
	return c.SuggestionsFor(next.ID)
}

// writeProgress 写入对会话是 fire-and-forget：失败交由提供方重试或丢弃,
// 不改变会话已到达的终态。
func (c *PathController) writeProgress(entryID string, patch ProgressPatch) {
	_ = c.store.Write(c.learnerID, c.courseID, entryID, patch)
}

// cancelPendingLocked 作废挂起的自动前进。序号自增让已触发但还没
// 拿到锁的定时器回调失效（timer.Stop 抢不赢已经开跑的回调）。
func (c *PathController) cancelPendingLocked() {
	c.advanceSeq++
	if c.cancelAdvance != nil {
		c.cancelAdvance()
		c.cancelAdvance = nil
	}
}

func (c *PathController) scheduleAdvanceLocked() {
	c.cancelPendingLocked()
	seq := c.advanceSeq
	c.cancelAdvance = c.scheduler.After(AutoAdvanceDelay, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if seq != c.advanceSeq {
			return
		}
		c.cancelAdvance = nil
		if c.currentIndex+1 < len(c.path) {
			c.currentIndex++
		}
	})
}
