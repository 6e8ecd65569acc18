package service

import (
	"context"
	"errors"
	"sync"

	"learnpath_backend/internal/engine"
	"learnpath_backend/internal/model"
	"learnpath_backend/internal/repository"
	"learnpath_backend/pkg/monitoring"

	"github.com/google/uuid"
)

var (
	ErrReviewNotFound    = errors.New("quick review session not found")
	ErrReviewForbidden   = errors.New("quick review session belongs to another learner")
	ErrReviewUnavailable = errors.New("quick review is not available for this lesson")
	ErrNoReviewConcepts  = errors.New("chapter has no review concepts")
)

type reviewEntry struct {
	session  *engine.QuickReviewSession
	userID   uint
	courseID string
}

// QuickReviewService 管理速览会话。构造即激活，结束时不评分，
// 结果经路径控制器落为完成标记。
type QuickReviewService struct {
	Repo      *repository.AssessmentRepository
	CourseSvc *CourseService
	PathSvc   *LearningPathService

	mu       sync.Mutex
	sessions map[string]*reviewEntry
}

func NewQuickReviewService(repo *repository.AssessmentRepository, courseSvc *CourseService, pathSvc *LearningPathService) *QuickReviewService {
	return &QuickReviewService{
		Repo:      repo,
		CourseSvc: courseSvc,
		PathSvc:   pathSvc,
		sessions:  make(map[string]*reviewEntry),
	}
}

// ReviewView 速览会话的对外快照
type ReviewView struct {
	SessionID     string              `json:"sessionId"`
	EntryID       string              `json:"entryId"`
	Status        engine.ReviewStatus `json:"status"`
	Concepts      []ConceptView       `json:"concepts"`
	ReviewedCount int                 `json:"reviewedCount"`
}

type ConceptView struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	Importance       string   `json:"importance"`
	EstimatedMinutes int      `json:"estimatedMinutes"`
	Topics           []string `json:"topics,omitempty"`
	Reviewed         bool     `json:"reviewed"`
}

// Start 为某课时条目开启速览。概念清单按课时所在章节装载。
func (s *QuickReviewService) Start(ctx context.Context, userID uint, courseID, entryID string) (*ReviewView, error) {
	course, err := s.CourseSvc.EngineCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	var chapterID string
	var available bool
	for mi := range course.Modules {
		for ci := range course.Modules[mi].Chapters {
			ch := &course.Modules[mi].Chapters[ci]
			for li := range ch.Lessons {
				if ch.Lessons[li].ID == entryID {
					chapterID = ch.ID
					available = ch.Lessons[li].QuickReviewAvailable
				}
			}
		}
	}
	if chapterID == "" || !available {
		return nil, ErrReviewUnavailable
	}

	models, err := s.Repo.ListConcepts(chapterID)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, ErrNoReviewConcepts
	}

	session := engine.NewQuickReviewSession(entryID, toEngineConcepts(models), nil)
	sessionID := uuid.New().String()

	s.mu.Lock()
	s.sessions[sessionID] = &reviewEntry{session: session, userID: userID, courseID: courseID}
	s.mu.Unlock()

	monitoring.QuickReviewsStarted.Inc()
	return s.view(sessionID, session), nil
}

// Get 返回会话快照
func (s *QuickReviewService) Get(userID uint, sessionID string) (*ReviewView, error) {
	entry, err := s.lookup(userID, sessionID)
	if err != nil {
		return nil, err
	}
	return s.view(sessionID, entry.session), nil
}

// MarkReviewed 标记概念已复习（单向）
func (s *QuickReviewService) MarkReviewed(userID uint, sessionID, conceptID string) (*ReviewView, error) {
	entry, err := s.lookup(userID, sessionID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	err = entry.session.MarkReviewed(conceptID)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return s.view(sessionID, entry.session), nil
}

// Complete 结束速览并落完成标记。允许部分完成。
func (s *QuickReviewService) Complete(ctx context.Context, userID uint, sessionID string) (*engine.QuickReviewOutcome, []engine.Suggestion, error) {
	entry, err := s.lookup(userID, sessionID)
	if err != nil {
		return nil, nil, err
	}

	s.mu.Lock()
	outcome := entry.session.CompleteReview()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	if outcome == nil {
		return nil, nil, nil
	}

	monitoring.QuickReviewsCompleted.Inc()
	suggestions, err := s.PathSvc.applyQuickReviewOutcome(ctx, userID, entry.courseID, outcome)
	if err != nil {
		return nil, nil, err
	}
	return outcome, suggestions, nil
}

func (s *QuickReviewService) lookup(userID uint, sessionID string) (*reviewEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrReviewNotFound
	}
	if entry.userID != userID {
		return nil, ErrReviewForbidden
	}
	return entry, nil
}

func (s *QuickReviewService) view(sessionID string, session *engine.QuickReviewSession) *ReviewView {
	view := &ReviewView{
		SessionID:     sessionID,
		EntryID:       session.EntryID(),
		Status:        session.Status(),
		ReviewedCount: session.ReviewedCount(),
	}
	for _, c := range session.Concepts() {
		view.Concepts = append(view.Concepts, ConceptView{
			ID:               c.ID,
			Title:            c.Title,
			Importance:       string(c.Importance),
			EstimatedMinutes: c.EstimatedMinutes,
			Topics:           c.Topics,
			Reviewed:         session.IsReviewed(c.ID),
		})
	}
	return view
}

func toEngineConcepts(models []model.ReviewConcept) []engine.Concept {
	concepts := make([]engine.Concept, 0, len(models))
	for i := range models {
		concepts = append(concepts, engine.Concept{
			ID:               models[i].ID,
			Title:            models[i].Title,
			Importance:       engine.ConceptImportance(models[i].Importance),
			EstimatedMinutes: models[i].EstimatedMinutes,
			Topics:           models[i].Topics,
		})
	}
	return concepts
}

type ConceptRequest struct {
	ChapterID        string   `json:"chapterId" binding:"required"`
	Title            string   `json:"title" binding:"required"`
	Importance       string   `json:"importance"`
	EstimatedMinutes int      `json:"estimatedMinutes"`
	Topics           []string `json:"topics"`
	Order            int      `json:"order"`
}

// CreateConcept 教师端新增速览概念
func (s *QuickReviewService) CreateConcept(req ConceptRequest) (*model.ReviewConcept, error) {
	c := &model.ReviewConcept{
		ChapterID:        req.ChapterID,
		Title:            req.Title,
		EstimatedMinutes: req.EstimatedMinutes,
		Topics:           req.Topics,
		Order:            req.Order,
	}
	if req.Importance != "" {
		c.Importance = model.ConceptImportance(req.Importance)
	} else {
		c.Importance = model.ImportanceMedium
	}
	if err := s.Repo.CreateConcept(c); err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateConcept 教师端修改速览概念
func (s *QuickReviewService) UpdateConcept(id string, req ConceptRequest) (*model.ReviewConcept, error) {
	c, err := s.Repo.FindConceptByID(id)
	if err != nil {
		return nil, err
	}
	c.Title = req.Title
	c.EstimatedMinutes = req.EstimatedMinutes
	c.Topics = req.Topics
	c.Order = req.Order
	if req.Importance != "" {
		c.Importance = model.ConceptImportance(req.Importance)
	}
	if err := s.Repo.UpdateConcept(c); err != nil {
		return nil, err
	}
	return c, nil
}

// ListConcepts 按章节列出速览概念
func (s *QuickReviewService) ListConcepts(chapterID string) ([]model.ReviewConcept, error) {
	return s.Repo.ListConcepts(chapterID)
}

func (s *QuickReviewService) DeleteConcept(id string) error {
	return s.Repo.DeleteConcept(id)
}
