package engine

import "fmt"

// ProgressRecord 单个学习者在单个路径条目上的持久化掌握状态。
// 首次写入时惰性创建，课程尝试期间不删除。
type ProgressRecord struct {
	Completed        bool     `json:"completed"`
	Score            *float64 `json:"score"` // 0–100，未评分为 nil
	Attempts         int      `json:"attempts"`
	TimeSpentSeconds int      `json:"timeSpentSeconds"`
}

// ProgressPatch 一次终态写入携带的增量。
// Score 为 nil 表示不改变已有分数（速览不评分）。
type ProgressPatch struct {
	Completed        bool
	Score            *float64
	AttemptsDelta    int
	TimeSpentSeconds int
}

// ProgressStore 进度持久化提供方的边界接口。
// 写入对会话而言是 fire-and-forget：写失败由提供方自行重试或丢弃，
// 不向 submit/completeReview 的调用方抛出。
type ProgressStore interface {
	Read(learnerID uint, courseID, entryID string) (*ProgressRecord, error)
	Write(learnerID uint, courseID, entryID string, patch ProgressPatch) error
}

// MemoryProgressStore 进程内实现，用于测试和无持久化宿主
type MemoryProgressStore struct {
	records map[string]*ProgressRecord
	writes  int
}

func NewMemoryProgressStore() *MemoryProgressStore {
	return &MemoryProgressStore{records: make(map[string]*ProgressRecord)}
}

func memKey(learnerID uint, courseID, entryID string) string {
	return fmt.Sprintf("%d|%s|%s", learnerID, courseID, entryID)
}

func (s *MemoryProgressStore) Read(learnerID uint, courseID, entryID string) (*ProgressRecord, error) {
	rec, ok := s.records[memKey(learnerID, courseID, entryID)]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (s *MemoryProgressStore) Write(learnerID uint, courseID, entryID string, patch ProgressPatch) error {
	key := memKey(learnerID, courseID, entryID)
	rec, ok := s.records[key]
	if !ok {
		rec = &ProgressRecord{}
		s.records[key] = rec
	}
	rec.Completed = patch.Completed
	if patch.Score != nil {
		rec.Score = patch.Score
	}
	rec.Attempts += patch.AttemptsDelta
	rec.TimeSpentSeconds += patch.TimeSpentSeconds
	s.writes++
	return nil
}

// WriteCount 返回累计写入次数，测试用
func (s *MemoryProgressStore) WriteCount() int { return s.writes }
