package service

import (
	"context"
	"fmt"
	"sync"

	"learnpath_backend/internal/engine"
	"learnpath_backend/internal/model"
	"learnpath_backend/internal/repository"
	"learnpath_backend/pkg/logger"
	"learnpath_backend/pkg/monitoring"

	"go.uber.org/zap"
)

// pathSession 把控制器和串行化锁绑在一起。引擎本身单学习者单线程，
// 并发的 HTTP 请求在这里排队。
type pathSession struct {
	mu   sync.Mutex
	ctrl *engine.PathController
}

// LearningPathService 持有每个 (学习者, 课程) 的路径控制器。
// 控制器是内存态，进度真相在存储里；重建时从第一个未完成条目恢复位置。
type LearningPathService struct {
	CourseSvc    *CourseService
	UserRepo     *repository.UserRepository
	ProgressRepo *repository.ProgressRepository
	LogRepo      *repository.LearningLogRepository

	mu       sync.Mutex
	sessions map[string]*pathSession
}

func NewLearningPathService(courseSvc *CourseService, userRepo *repository.UserRepository, progressRepo *repository.ProgressRepository, logRepo *repository.LearningLogRepository) *LearningPathService {
	return &LearningPathService{
		CourseSvc:    courseSvc,
		UserRepo:     userRepo,
		ProgressRepo: progressRepo,
		LogRepo:      logRepo,
		sessions:     make(map[string]*pathSession),
	}
}

func pathKey(userID uint, courseID string) string {
	return fmt.Sprintf("%d|%s", userID, courseID)
}

// sessionFor 返回已有控制器或新建一个
func (s *LearningPathService) sessionFor(ctx context.Context, userID uint, courseID string) (*pathSession, error) {
	key := pathKey(userID, courseID)

	s.mu.Lock()
	if ps, ok := s.sessions[key]; ok {
		s.mu.Unlock()
		return ps, nil
	}
	s.mu.Unlock()

	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}
	course, err := s.CourseSvc.EngineCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	ctrl := engine.NewPathController(userID, courseID, engine.LearnerType(user.LearnerType), course, s.ProgressRepo, nil)
	s.resumePosition(userID, courseID, ctrl)
	monitoring.PathBuilds.WithLabelValues(string(user.LearnerType)).Inc()

	s.mu.Lock()
	defer s.mu.Unlock()
	if ps, ok := s.sessions[key]; ok {
		return ps, nil
	}
	ps := &pathSession{ctrl: ctrl}
	s.sessions[key] = ps
	return ps, nil
}

// resumePosition 把位置恢复到第一个未完成条目
func (s *LearningPathService) resumePosition(userID uint, courseID string, ctrl *engine.PathController) {
	recs, err := s.ProgressRepo.ListForCourse(userID, courseID)
	if err != nil {
		logger.Log.Warn("resume position failed", zap.Uint("userId", userID), zap.Error(err))
		return
	}
	completed := make(map[string]bool, len(recs))
	for i := range recs {
		if recs[i].Completed {
			completed[recs[i].EntryID] = true
		}
	}
	for _, entry := range ctrl.Path() {
		if !completed[entry.ID] {
			_ = ctrl.JumpTo(entry.ID)
			return
		}
	}
}

// Invalidate 丢弃缓存的控制器（学习者类型变更、课程层级变更后调用）
func (s *LearningPathService) Invalidate(userID uint, courseID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ps, ok := s.sessions[pathKey(userID, courseID)]; ok {
		ps.mu.Lock()
		ps.ctrl.CancelAutoAdvance()
		ps.mu.Unlock()
		delete(s.sessions, pathKey(userID, courseID))
	}
}

// InvalidateUser 丢弃某学习者的全部控制器
func (s *LearningPathService) InvalidateUser(userID uint) {
	prefix := fmt.Sprintf("%d|", userID)
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, ps := range s.sessions {
		if len(key) > len(prefix) && key[:len(prefix)] == prefix {
			ps.mu.Lock()
			ps.ctrl.CancelAutoAdvance()
			ps.mu.Unlock()
			delete(s.sessions, key)
		}
	}
}

// PathEntryView 路径条目加上该学习者的进度
type PathEntryView struct {
	engine.PathEntry
	Completed        bool     `json:"completed"`
	Score            *float64 `json:"score,omitempty"`
	Attempts         int      `json:"attempts"`
	TimeSpentSeconds int      `json:"timeSpentSeconds"`
}

type PathView struct {
	CourseID       string          `json:"courseId"`
	LearnerType    string          `json:"learnerType"`
	Entries        []PathEntryView `json:"entries"`
	CurrentIndex   int             `json:"currentIndex"`
	CurrentEntryID string          `json:"currentEntryId,omitempty"`
	CompletedCount int             `json:"completedCount"`
	TotalMinutes   int             `json:"totalMinutes"`
}

// GetPath 返回学习者的个性化路径并合并进度
func (s *LearningPathService) GetPath(ctx context.Context, userID uint, courseID string) (*PathView, error) {
	ps, err := s.sessionFor(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}

	recs, err := s.ProgressRepo.ListForCourse(userID, courseID)
	if err != nil {
		return nil, err
	}
	byEntry := make(map[string]*model.ProgressRecord, len(recs))
	for i := range recs {
		byEntry[recs[i].EntryID] = &recs[i]
	}

	ps.mu.Lock()
	defer ps.mu.Unlock()

	view := &PathView{
		CourseID:     courseID,
		LearnerType:  string(user.LearnerType),
		Entries:      []PathEntryView{},
		CurrentIndex: ps.ctrl.CurrentIndex(),
	}
	for _, entry := range ps.ctrl.Path() {
		ev := PathEntryView{PathEntry: entry}
		if rec, ok := byEntry[entry.ID]; ok {
			ev.Completed = rec.Completed
			ev.Score = rec.Score
			ev.Attempts = rec.Attempts
			ev.TimeSpentSeconds = rec.TimeSpentSeconds
		}
		if ev.Completed {
			view.CompletedCount++
		}
		view.TotalMinutes += entry.DurationMinutes
		view.Entries = append(view.Entries, ev)
	}
	if cur, ok := ps.ctrl.Current(); ok {
		view.CurrentEntryID = cur.ID
	}
	return view, nil
}

// Current 返回当前条目与针对下一条目的建议
func (s *LearningPathService) Current(ctx context.Context, userID uint, courseID string) (*engine.PathEntry, []engine.Suggestion, error) {
	ps, err := s.sessionFor(ctx, userID, courseID)
	if err != nil {
		return nil, nil, err
	}
	ps.mu.Lock()
	defer ps.mu.Unlock()

	suggestions := []engine.Suggestion{}
	if next, ok := ps.ctrl.Next(); ok {
		suggestions = ps.ctrl.SuggestionsFor(next.ID)
	}
	if cur, ok := ps.ctrl.Current(); ok {
		return &cur, suggestions, nil
	}
	return nil, suggestions, nil
}

// ListProgress 返回学习者在某课程的全部进度记录
func (s *LearningPathService) ListProgress(userID uint, courseID string) ([]model.ProgressRecord, error) {
	return s.ProgressRepo.ListForCourse(userID, courseID)
}

// CompleteLesson 记录课时完成，返回针对下一条目的建议
func (s *LearningPathService) CompleteLesson(ctx context.Context, userID uint, courseID, entryID string, score *float64, timeSpentSeconds int) ([]engine.Suggestion, error) {
	ps, err := s.sessionFor(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}

	ps.mu.Lock()
	suggestions, err := ps.ctrl.CompleteLesson(entryID, score, timeSpentSeconds)
	ps.mu.Unlock()
	if err != nil {
		return nil, err
	}

	monitoring.LessonsCompleted.Inc()
	s.logActivity(userID, courseID, entryID, "lesson_complete", score, timeSpentSeconds, true)
	return suggestions, nil
}

// JumpTo 跳转到路径中的任意条目
func (s *LearningPathService) JumpTo(ctx context.Context, userID uint, courseID, entryID string) error {
	ps, err := s.sessionFor(ctx, userID, courseID)
	if err != nil {
		return err
	}
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return ps.ctrl.JumpTo(entryID)
}

// Advance 手动前进到下一条目
func (s *LearningPathService) Advance(ctx context.Context, userID uint, courseID string) (*engine.PathEntry, error) {
	ps, err := s.sessionFor(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.ctrl.Advance()
	if cur, ok := ps.ctrl.Current(); ok {
		return &cur, nil
	}
	return nil, nil
}

// CancelAutoAdvance 学习者离开当前页时取消挂起的自动前进
func (s *LearningPathService) CancelAutoAdvance(ctx context.Context, userID uint, courseID string) error {
	ps, err := s.sessionFor(ctx, userID, courseID)
	if err != nil {
		return err
	}
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.ctrl.CancelAutoAdvance()
	return nil
}

// SuggestionsFor 针对指定条目评估建议
func (s *LearningPathService) SuggestionsFor(ctx context.Context, userID uint, courseID, entryID string) ([]engine.Suggestion, error) {
	ps, err := s.sessionFor(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	ps.mu.Lock()
	defer ps.mu.Unlock()
	monitoring.SuggestionEvals.Inc()
	return ps.ctrl.SuggestionsFor(entryID), nil
}

// applyAssessmentOutcome 由测评服务在会话终态时调用
func (s *LearningPathService) applyAssessmentOutcome(ctx context.Context, userID uint, courseID string, out *engine.AssessmentOutcome) ([]engine.Suggestion, error) {
	ps, err := s.sessionFor(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	ps.mu.Lock()
	suggestions, err := ps.ctrl.ApplyAssessmentOutcome(out)
	ps.mu.Unlock()
	if err != nil {
		return nil, err
	}

	score := float64(out.Score)
	s.logActivity(userID, courseID, out.EntryID, "test_out_submit", &score, out.TimeSpentSeconds, out.Passed)
	return suggestions, nil
}

// applyQuickReviewOutcome 由速览服务在会话结束时调用
func (s *LearningPathService) applyQuickReviewOutcome(ctx context.Context, userID uint, courseID string, out *engine.QuickReviewOutcome) ([]engine.Suggestion, error) {
	ps, err := s.sessionFor(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	ps.mu.Lock()
	suggestions, err := ps.ctrl.ApplyQuickReviewOutcome(out)
	ps.mu.Unlock()
	if err != nil {
		return nil, err
	}

	s.logActivity(userID, courseID, out.EntryID, "quick_review_complete", nil, out.TimeSpentSeconds, true)
	return suggestions, nil
}

// RecordLearningTime 只累加学习耗时，不改完成态
func (s *LearningPathService) RecordLearningTime(userID uint, courseID, entryID string, seconds int) error {
	if err := s.ProgressRepo.AddLearningTime(userID, courseID, entryID, seconds); err != nil {
		return err
	}
	s.logActivity(userID, courseID, entryID, "learning_time", nil, seconds, false)
	return nil
}

func (s *LearningPathService) logActivity(userID uint, courseID, entryID, activity string, score *float64, duration int, completed bool) {
	log := &model.LearningLog{
		UserID:    userID,
		CourseID:  courseID,
		EntryID:   entryID,
		Activity:  activity,
		Duration:  duration,
		Completed: completed,
	}
	if score != nil {
		log.Score = int(*score)
	}
	if err := s.LogRepo.Create(log); err != nil {
		logger.Log.Warn("learning log write failed", zap.Uint("userId", userID), zap.String("activity", activity), zap.Error(err))
	}
}
