package engine

import "time"

// ReviewStatus 速览会话状态。构造即激活，没有 NotStarted。
type ReviewStatus string

const (
	ReviewActive    ReviewStatus = "active"
	ReviewCompleted ReviewStatus = "completed"
)

// QuickReviewOutcome 速览结束时的唯一结果。速览不评分，不携带分数。
type QuickReviewOutcome struct {
	EntryID          string `json:"entryId"`
	ReviewedCount    int    `json:"reviewedCount"`
	TotalConcepts    int    `json:"totalConcepts"`
	TimeSpentSeconds int    `json:"timeSpentSeconds"`
}

// QuickReviewSession 章节关键概念的清单式快速通道。
// 概念标记单向：会话内已复习的概念不能取消。
type QuickReviewSession struct {
	entryID  string
	concepts []Concept
	clock    Clock

	reviewed  map[string]bool
	status    ReviewStatus
	startedAt time.Time

	outcome *QuickReviewOutcome
}

func NewQuickReviewSession(entryID string, concepts []Concept, clock Clock) *QuickReviewSession {
	if clock == nil {
		clock = RealClock()
	}
	return &QuickReviewSession{
		entryID:   entryID,
		concepts:  concepts,
		clock:     clock,
		reviewed:  make(map[string]bool),
		status:    ReviewActive,
		startedAt: clock.Now(),
	}
}

func (s *QuickReviewSession) EntryID() string { return s.entryID }

func (s *QuickReviewSession) Status() ReviewStatus { return s.status }

func (s *QuickReviewSession) Concepts() []Concept { return s.concepts }

// IsReviewed 返回概念是否已标记复习
func (s *QuickReviewSession) IsReviewed(conceptID string) bool { return s.reviewed[conceptID] }

// ReviewedCount 返回已复习概念数
func (s *QuickReviewSession) ReviewedCount() int { return len(s.reviewed) }

// Outcome 返回已完成会话的结果，未完成时为 nil
func (s *QuickReviewSession) Outcome() *QuickReviewOutcome { return s.outcome }

// MarkReviewed 标记概念为已复习。重复标记是空操作。
func (s *QuickReviewSession) MarkReviewed(conceptID string) error {
	if s.status != ReviewActive {
		return invalidStatef("markReviewed called in %s", s.status)
	}
	for i := range s.concepts {
		if s.concepts[i].ID == conceptID {
			s.reviewed[conceptID] = true
			return nil
		}
	}
	return outOfRangef("unknown concept %s", conceptID)
}

// CompleteReview 结束速览。允许在任意时刻调用，部分完成是刻意设计
// （跳过细节的快速通道）。重复调用返回 nil。
func (s *QuickReviewSession) CompleteReview() *QuickReviewOutcome {
	if s.status == ReviewCompleted {
		return nil
	}
	s.status = ReviewCompleted

	elapsed := int(s.clock.Now().Sub(s.startedAt).Seconds())
	if elapsed < 0 {
		elapsed = 0
	}

	s.outcome = &QuickReviewOutcome{
		EntryID:          s.entryID,
		ReviewedCount:    len(s.reviewed),
		TotalConcepts:    len(s.concepts),
		TimeSpentSeconds: elapsed,
	}
	return s.outcome
}
