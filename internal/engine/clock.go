package engine

import "time"

// Clock 注入的时间源，让基于时间的转换在测试中可确定地复现
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// RealClock returns a Clock backed by the system time.
func RealClock() Clock { return realClock{} }

// FakeClock 测试用时钟，手动推进
type FakeClock struct {
	Current time.Time
}

func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{Current: start}
}

func (c *FakeClock) Now() time.Time { return c.Current }

func (c *FakeClock) Advance(d time.Duration) { c.Current = c.Current.Add(d) }

// Scheduler 调度一次性延迟回调并返回取消函数。
// 控制器用它实现可取消的自动前进，而不是自己持有定时器。
type Scheduler interface {
	After(d time.Duration, fn func()) (cancel func())
}

type timerScheduler struct{}

func (timerScheduler) After(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}

// RealScheduler returns a Scheduler backed by time.AfterFunc.
func RealScheduler() Scheduler { return timerScheduler{} }

// ManualScheduler 测试用调度器：回调挂起直到显式触发
type ManualScheduler struct {
	pending []*manualTask
}

type manualTask struct {
	fn        func()
	cancelled bool
}

func (s *ManualScheduler) After(d time.Duration, fn func()) func() {
	task := &manualTask{fn: fn}
	s.pending = append(s.pending, task)
	return func() { task.cancelled = true }
}

// Fire runs all pending, non-cancelled callbacks.
func (s *ManualScheduler) Fire() {
	tasks := s.pending
	s.pending = nil
	for _, t := range tasks {
		if !t.cancelled {
			t.fn()
		}
	}
}

// PendingCount 返回未取消的挂起任务数
func (s *ManualScheduler) PendingCount() int {
	n := 0
	for _, t := range s.pending {
		if !t.cancelled {
			n++
		}
	}
	return n
}
