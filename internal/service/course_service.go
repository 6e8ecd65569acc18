package service

import (
	"context"
	"encoding/json"
	"time"

	"learnpath_backend/internal/engine"
	"learnpath_backend/internal/model"
	"learnpath_backend/internal/repository"
	"learnpath_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const hierarchyCacheTTL = 10 * time.Minute

// CourseService 负责课程层级的装载（带缓存）与教师端编写接口
type CourseService struct {
	Repo  *repository.CourseRepository
	Redis *redis.Client
}

func NewCourseService(repo *repository.CourseRepository, rdb *redis.Client) *CourseService {
	return &CourseService{Repo: repo, Redis: rdb}
}

func hierarchyCacheKey(courseID string) string {
	return "course:hierarchy:" + courseID
}

// GetHierarchy 返回课程完整层级。层级在一次课程装载后视为不可变，
// 用 Redis 缓存，编写端的任何变更都会使缓存失效。
func (s *CourseService) GetHierarchy(ctx context.Context, courseID string) (*model.Course, error) {
	if s.Redis != nil {
		if data, err := s.Redis.Get(ctx, hierarchyCacheKey(courseID)).Bytes(); err == nil {
			var c model.Course
			if err := json.Unmarshal(data, &c); err == nil {
				return &c, nil
			}
		}
	}

	course, err := s.Repo.FindHierarchy(courseID)
	if err != nil {
		return nil, err
	}

	if s.Redis != nil {
		if data, err := json.Marshal(course); err == nil {
			if err := s.Redis.Set(ctx, hierarchyCacheKey(courseID), data, hierarchyCacheTTL).Err(); err != nil {
				logger.Log.Warn("hierarchy cache set failed", zap.String("courseId", courseID), zap.Error(err))
			}
		}
	}

	return course, nil
}

func (s *CourseService) invalidateHierarchy(courseID string) {
	if s.Redis == nil || courseID == "" {
		return
	}
	if err := s.Redis.Del(context.Background(), hierarchyCacheKey(courseID)).Err(); err != nil {
		logger.Log.Warn("hierarchy cache invalidation failed", zap.String("courseId", courseID), zap.Error(err))
	}
}

// EngineCourse 把持久化层级映射为引擎的只读输入
func (s *CourseService) EngineCourse(ctx context.Context, courseID string) (*engine.Course, error) {
	course, err := s.GetHierarchy(ctx, courseID)
	if err != nil {
		return nil, err
	}
	return toEngineCourse(course), nil
}

func toEngineCourse(c *model.Course) *engine.Course {
	out := &engine.Course{ID: c.ID, Title: c.Title}
	for _, mod := range c.Modules {
		em := engine.Module{ID: mod.ID, Title: mod.Title}
		for _, ch := range mod.Chapters {
			ec := engine.Chapter{
				ID:                      ch.ID,
				Title:                   ch.Title,
				TestOutAvailable:        ch.TestOutAvailable,
				TestOutTimeLimitMinutes: ch.TestOutTimeLimit,
				TestOutPassingScore:     ch.TestOutPassingScore,
			}
			for _, lesson := range ch.Lessons {
				ec.Lessons = append(ec.Lessons, engine.Lesson{
					ID:                   lesson.ID,
					Title:                lesson.Title,
					Type:                 engine.LessonType(lesson.Type),
					DurationMinutes:      lesson.DurationMinutes,
					LearnerTypes:         lesson.LearnerTypes,
					QuickReviewAvailable: lesson.QuickReviewAvailable,
				})
			}
			em.Chapters = append(em.Chapters, ec)
		}
		out.Modules = append(out.Modules, em)
	}
	return out
}

type CourseRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	IsPublished *bool  `json:"isPublished"`
}

func (s *CourseService) CreateCourse(creatorID uint, req CourseRequest) (*model.Course, error) {
	course := &model.Course{
		Title:       req.Title,
		Description: req.Description,
		CreatorID:   creatorID,
	}
	if req.IsPublished != nil {
		course.IsPublished = *req.IsPublished
	}
	if err := s.Repo.Create(course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *CourseService) UpdateCourse(id string, req CourseRequest) (*model.Course, error) {
	course, err := s.Repo.FindByID(id)
	if err != nil {
		return nil, err
	}

	course.Title = req.Title
	course.Description = req.Description
	if req.IsPublished != nil {
		course.IsPublished = *req.IsPublished
	}

	if err := s.Repo.Update(course); err != nil {
		return nil, err
	}
	s.invalidateHierarchy(id)
	return course, nil
}

func (s *CourseService) ListCourses(page, limit int, publishedOnly bool) ([]model.Course, int64, error) {
	return s.Repo.List(page, limit, publishedOnly)
}

func (s *CourseService) DeleteCourse(id string) error {
	if err := s.Repo.Delete(id); err != nil {
		return err
	}
	s.invalidateHierarchy(id)
	return nil
}

type ModuleRequest struct {
	CourseID string `json:"courseId" binding:"required"`
	Title    string `json:"title" binding:"required"`
	Order    int    `json:"order"`
}

func (s *CourseService) CreateModule(req ModuleRequest) (*model.CourseModule, error) {
	m := &model.CourseModule{CourseID: req.CourseID, Title: req.Title, Order: req.Order}
	if err := s.Repo.CreateModule(m); err != nil {
		return nil, err
	}
	s.invalidateHierarchy(req.CourseID)
	return m, nil
}

func (s *CourseService) UpdateModule(id string, req ModuleRequest) (*model.CourseModule, error) {
	m, err := s.Repo.FindModuleByID(id)
	if err != nil {
		return nil, err
	}
	m.Title = req.Title
	m.Order = req.Order
	if err := s.Repo.UpdateModule(m); err != nil {
		return nil, err
	}
	s.invalidateHierarchy(m.CourseID)
	return m, nil
}

func (s *CourseService) DeleteModule(id string) error {
	m, err := s.Repo.FindModuleByID(id)
	if err != nil {
		return err
	}
	if err := s.Repo.DeleteModule(id); err != nil {
		return err
	}
	s.invalidateHierarchy(m.CourseID)
	return nil
}

type ChapterRequest struct {
	ModuleID            string `json:"moduleId" binding:"required"`
	Title               string `json:"title" binding:"required"`
	Order               int    `json:"order"`
	TestOutAvailable    bool   `json:"testOutAvailable"`
	TestOutTimeLimit    int    `json:"testOutTimeLimit"`
	TestOutPassingScore int    `json:"testOutPassingScore"`
}

func (s *CourseService) CreateChapter(req ChapterRequest) (*model.Chapter, error) {
	ch := &model.Chapter{
		ModuleID:            req.ModuleID,
		Title:               req.Title,
		Order:               req.Order,
		TestOutAvailable:    req.TestOutAvailable,
		TestOutTimeLimit:    req.TestOutTimeLimit,
		TestOutPassingScore: req.TestOutPassingScore,
	}
	if ch.TestOutPassingScore == 0 {
		ch.TestOutPassingScore = 70
	}
	if err := s.Repo.CreateChapter(ch); err != nil {
		return nil, err
	}
	s.invalidateForChapter(ch.ID)
	return ch, nil
}

func (s *CourseService) UpdateChapter(id string, req ChapterRequest) (*model.Chapter, error) {
	ch, err := s.Repo.FindChapterByID(id)
	if err != nil {
		return nil, err
	}
	ch.Title = req.Title
	ch.Order = req.Order
	ch.TestOutAvailable = req.TestOutAvailable
	ch.TestOutTimeLimit = req.TestOutTimeLimit
	if req.TestOutPassingScore > 0 {
		ch.TestOutPassingScore = req.TestOutPassingScore
	}
	if err := s.Repo.UpdateChapter(ch); err != nil {
		return nil, err
	}
	s.invalidateForChapter(id)
	return ch, nil
}

func (s *CourseService) DeleteChapter(id string) error {
	s.invalidateForChapter(id)
	return s.Repo.DeleteChapter(id)
}

type LessonRequest struct {
	ChapterID            string           `json:"chapterId" binding:"required"`
	Title                string           `json:"title" binding:"required"`
	Type                 model.LessonType `json:"type"`
	Order                int              `json:"order"`
	Content              string           `json:"content"`
	DurationMinutes      int              `json:"durationMinutes"`
	LearnerTypes         []string         `json:"learnerTypes"` // null 表示适用于所有学习者
	QuickReviewAvailable bool             `json:"quickReviewAvailable"`
}

func (s *CourseService) CreateLesson(req LessonRequest) (*model.Lesson, error) {
	l := &model.Lesson{
		ChapterID:            req.ChapterID,
		Title:                req.Title,
		Type:                 req.Type,
		Order:                req.Order,
		Content:              req.Content,
		DurationMinutes:      req.DurationMinutes,
		LearnerTypes:         req.LearnerTypes,
		QuickReviewAvailable: req.QuickReviewAvailable,
	}
	if l.Type == "" {
		l.Type = model.LessonReading
	}
	if err := s.Repo.CreateLesson(l); err != nil {
		return nil, err
	}
	s.invalidateForChapter(req.ChapterID)
	return l, nil
}

func (s *CourseService) UpdateLesson(id string, req LessonRequest) (*model.Lesson, error) {
	l, err := s.Repo.FindLessonByID(id)
	if err != nil {
		return nil, err
	}
	l.Title = req.Title
	if req.Type != "" {
		l.Type = req.Type
	}
	l.Order = req.Order
	l.Content = req.Content
	l.DurationMinutes = req.DurationMinutes
	l.LearnerTypes = req.LearnerTypes
	l.QuickReviewAvailable = req.QuickReviewAvailable
	if err := s.Repo.UpdateLesson(l); err != nil {
		return nil, err
	}
	s.invalidateForChapter(l.ChapterID)
	return l, nil
}

func (s *CourseService) GetLesson(id string) (*model.Lesson, error) {
	return s.Repo.FindLessonByID(id)
}

func (s *CourseService) UpdateLessonMedia(id, mediaURL, thumbnailURL string, durationMinutes int) error {
	l, err := s.Repo.FindLessonByID(id)
	if err != nil {
		return err
	}
	l.MediaURL = mediaURL
	l.ThumbnailURL = thumbnailURL
	if durationMinutes > 0 {
		l.DurationMinutes = durationMinutes
	}
	if err := s.Repo.UpdateLesson(l); err != nil {
		return err
	}
	s.invalidateForChapter(l.ChapterID)
	return nil
}

func (s *CourseService) DeleteLesson(id string) error {
	l, err := s.Repo.FindLessonByID(id)
	if err != nil {
		return err
	}
	if err := s.Repo.DeleteLesson(id); err != nil {
		return err
	}
	s.invalidateForChapter(l.ChapterID)
	return nil
}

func (s *CourseService) invalidateForChapter(chapterID string) {
	courseID, err := s.Repo.CourseIDForChapter(chapterID)
	if err != nil || courseID == "" {
		return
	}
	s.invalidateHierarchy(courseID)
}
