package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"time"

	"learnpath_backend/internal/engine"
	"learnpath_backend/internal/model"
	"learnpath_backend/internal/repository"
	"learnpath_backend/pkg/logger"
	"learnpath_backend/pkg/monitoring"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrSessionNotFound  = errors.New("assessment session not found")
	ErrSessionExists    = errors.New("an assessment session is already in progress for this chapter")
	ErrTestOutDisabled  = errors.New("test-out is not available for this chapter")
	ErrNoQuestions      = errors.New("chapter has no test-out questions")
	ErrSessionForbidden = errors.New("session belongs to another learner")
)

// assessmentEntry 注册表里的一条会话记录
type assessmentEntry struct {
	session   *engine.AssessmentSession
	userID    uint
	courseID  string
	chapterID string
	createdAt time.Time
}

// AssessmentService 管理测试跳级会话。会话是内存瞬态，带超时的倒计时
// 由后台 1Hz ticker 驱动；终态结果经路径控制器落进度存储。
type AssessmentService struct {
	Repo      *repository.AssessmentRepository
	CourseSvc *CourseService
	PathSvc   *LearningPathService

	mu       sync.Mutex
	sessions map[string]*assessmentEntry // sessionID → entry
	active   map[string]string           // userID|courseID|chapterID → sessionID

	stopTicker chan struct{}
	tickerOnce sync.Once
}

func NewAssessmentService(repo *repository.AssessmentRepository, courseSvc *CourseService, pathSvc *LearningPathService) *AssessmentService {
	return &AssessmentService{
		Repo:       repo,
		CourseSvc:  courseSvc,
		PathSvc:    pathSvc,
		sessions:   make(map[string]*assessmentEntry),
		active:     make(map[string]string),
		stopTicker: make(chan struct{}),
	}
}

// StartTicker 启动倒计时驱动。每秒给所有进行中的会话馈入一次 Tick，
// 超时强制提交的结果和正常提交走同一条落库路径。
func (s *AssessmentService) StartTicker() {
	s.tickerOnce.Do(func() {
		go func() {
			ticker := time.NewTicker(time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					s.tickAll()
				case <-s.stopTicker:
					return
				}
			}
		}()
	})
}

// StopTicker 停止倒计时驱动（优雅关停时调用）
func (s *AssessmentService) StopTicker() {
	close(s.stopTicker)
}

func (s *AssessmentService) tickAll() {
	type timedOut struct {
		entry   *assessmentEntry
		outcome *engine.AssessmentOutcome
	}
	var expired []timedOut

	s.mu.Lock()
	for id, entry := range s.sessions {
		if out := entry.session.Tick(); out != nil {
			expired = append(expired, timedOut{entry: entry, outcome: out})
			delete(s.active, activeKey(entry.userID, entry.courseID, entry.chapterID))
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, e := range expired {
		monitoring.AssessmentsCompleted.WithLabelValues("timed_out").Inc()
		if _, err := s.PathSvc.applyAssessmentOutcome(context.Background(), e.entry.userID, e.entry.courseID, e.outcome); err != nil {
			logger.Log.Error("timed-out assessment outcome not applied",
				zap.Uint("userId", e.entry.userID),
				zap.String("entryId", e.outcome.EntryID),
				zap.Error(err))
		}
	}
}

func activeKey(userID uint, courseID, chapterID string) string {
	return strconv.FormatUint(uint64(userID), 10) + "|" + courseID + "|" + chapterID
}

// SessionView 会话的对外快照，不暴露正确答案
type SessionView struct {
	SessionID     string               `json:"sessionId"`
	EntryID       string               `json:"entryId"`
	Status        engine.SessionStatus `json:"status"`
	Questions     []QuestionView       `json:"questions"`
	CurrentIndex  int                  `json:"currentIndex"`
	TimeRemaining int                  `json:"timeRemaining"`
	AnsweredCount int                  `json:"answeredCount"`
}

type QuestionView struct {
	ID       string      `json:"id"`
	Text     string      `json:"text"`
	Options  []string    `json:"options,omitempty"`
	Answered bool        `json:"answered"`
	Answer   interface{} `json:"answer,omitempty"`
}

// Start 为章节开启一次测试跳级会话。同一学习者同一章节同时只允许一场。
func (s *AssessmentService) Start(ctx context.Context, userID uint, courseID, chapterID string) (*SessionView, error) {
	course, err := s.CourseSvc.EngineCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	var chapter *engine.Chapter
	for mi := range course.Modules {
		for ci := range course.Modules[mi].Chapters {
			if course.Modules[mi].Chapters[ci].ID == chapterID {
				chapter = &course.Modules[mi].Chapters[ci]
			}
		}
	}
	if chapter == nil || !chapter.TestOutAvailable {
		return nil, ErrTestOutDisabled
	}

	models, err := s.Repo.ListQuestions(chapterID)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, ErrNoQuestions
	}
	questions, err := toEngineQuestions(models)
	if err != nil {
		return nil, err
	}

	cfg := engine.AssessmentConfig{
		TimeLimitMinutes: chapter.TestOutTimeLimitMinutes,
		PassingScore:     chapter.TestOutPassingScore,
	}
	session, err := engine.NewAssessmentSession(engine.TestOutEntryID(chapterID), questions, cfg, nil)
	if err != nil {
		return nil, err
	}
	if err := session.Start(); err != nil {
		return nil, err
	}

	key := activeKey(userID, courseID, chapterID)
	sessionID := uuid.New().String()

	s.mu.Lock()
	if _, ok := s.active[key]; ok {
		s.mu.Unlock()
		return nil, ErrSessionExists
	}
	s.active[key] = sessionID
	s.sessions[sessionID] = &assessmentEntry{
		session:   session,
		userID:    userID,
		courseID:  courseID,
		chapterID: chapterID,
		createdAt: time.Now(),
	}
	s.mu.Unlock()

	monitoring.AssessmentsStarted.Inc()
	return s.viewLocked(sessionID, session), nil
}

// Get 返回会话快照
func (s *AssessmentService) Get(userID uint, sessionID string) (*SessionView, error) {
	entry, err := s.lookup(userID, sessionID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked(sessionID, entry.session), nil
}

// SelectAnswer 记录某题答案，提交前可随时更改
func (s *AssessmentService) SelectAnswer(userID uint, sessionID, questionID string, value interface{}) (*SessionView, error) {
	entry, err := s.lookup(userID, sessionID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := entry.session.SelectAnswer(questionID, value); err != nil {
		return nil, err
	}
	return s.viewLocked(sessionID, entry.session), nil
}

// Navigate 跳转到任意题目
func (s *AssessmentService) Navigate(userID uint, sessionID string, index int) (*SessionView, error) {
	entry, err := s.lookup(userID, sessionID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := entry.session.Navigate(index); err != nil {
		return nil, err
	}
	return s.viewLocked(sessionID, entry.session), nil
}

// Submit 提交评分并把结果落进度存储，返回结果与针对下一条目的建议
func (s *AssessmentService) Submit(ctx context.Context, userID uint, sessionID string) (*engine.AssessmentOutcome, []engine.Suggestion, error) {
	entry, err := s.lookup(userID, sessionID)
	if err != nil {
		return nil, nil, err
	}

	s.mu.Lock()
	outcome, err := entry.session.Submit()
	if err == nil && outcome != nil {
		delete(s.active, activeKey(entry.userID, entry.courseID, entry.chapterID))
		delete(s.sessions, sessionID)
	}
	s.mu.Unlock()
	if err != nil {
		return nil, nil, err
	}
	if outcome == nil {
		// ticker 抢先超时提交，结果已落库
		return entry.session.Outcome(), nil, nil
	}

	result := "failed"
	if outcome.Passed {
		result = "passed"
	}
	monitoring.AssessmentsCompleted.WithLabelValues(result).Inc()

	suggestions, err := s.PathSvc.applyAssessmentOutcome(ctx, userID, entry.courseID, outcome)
	if err != nil {
		return nil, nil, err
	}
	return outcome, suggestions, nil
}

// Abandon 丢弃会话。放弃的会话不写进度，attempts 不变。
func (s *AssessmentService) Abandon(userID uint, sessionID string) error {
	entry, err := s.lookup(userID, sessionID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.active, activeKey(entry.userID, entry.courseID, entry.chapterID))
	delete(s.sessions, sessionID)
	monitoring.AssessmentsCompleted.WithLabelValues("abandoned").Inc()
	return nil
}

func (s *AssessmentService) lookup(userID uint, sessionID string) (*assessmentEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if entry.userID != userID {
		return nil, ErrSessionForbidden
	}
	return entry, nil
}

func (s *AssessmentService) viewLocked(sessionID string, session *engine.AssessmentSession) *SessionView {
	view := &SessionView{
		SessionID:     sessionID,
		EntryID:       session.EntryID(),
		Status:        session.Status(),
		CurrentIndex:  session.CurrentIndex(),
		TimeRemaining: session.TimeRemaining(),
		AnsweredCount: session.AnsweredCount(),
	}
	for _, q := range session.Questions() {
		qv := QuestionView{ID: q.ID, Text: q.Text, Options: q.Options}
		if ans, ok := session.Answer(q.ID); ok {
			qv.Answered = true
			qv.Answer = ans
		}
		view.Questions = append(view.Questions, qv)
	}
	return view
}

type QuestionRequest struct {
	ChapterID    string   `json:"chapterId" binding:"required"`
	QuestionType string   `json:"questionType" binding:"required"`
	Content      string   `json:"content" binding:"required"`
	Options      []string `json:"options"`
	Answer       string   `json:"answer" binding:"required"`
	Order        int      `json:"order"`
	Explanation  string   `json:"explanation"`
}

func validateQuestion(req QuestionRequest) error {
	switch req.QuestionType {
	case model.QuestionSingleChoice:
		if len(req.Options) < 2 {
			return errors.New("single choice question needs at least 2 options")
		}
		idx, err := strconv.Atoi(req.Answer)
		if err != nil || idx < 0 || idx >= len(req.Options) {
			return errors.New("answer must be a valid option index")
		}
	case model.QuestionTrueFalse:
		if req.Answer != "true" && req.Answer != "false" {
			return errors.New("answer must be true or false")
		}
	case model.QuestionFillBlank:
		if req.Answer == "" {
			return errors.New("fill-blank answer must not be empty")
		}
	default:
		return errors.New("unknown question type " + req.QuestionType)
	}
	return nil
}

// CreateQuestion 教师端新增题目
func (s *AssessmentService) CreateQuestion(req QuestionRequest) (*model.TestOutQuestion, error) {
	if err := validateQuestion(req); err != nil {
		return nil, err
	}
	q := &model.TestOutQuestion{
		ChapterID:    req.ChapterID,
		QuestionType: req.QuestionType,
		Content:      req.Content,
		Answer:       req.Answer,
		Order:        req.Order,
		Explanation:  req.Explanation,
	}
	if len(req.Options) > 0 {
		data, err := json.Marshal(req.Options)
		if err != nil {
			return nil, err
		}
		q.Options = data
	}
	if err := s.Repo.CreateQuestion(q); err != nil {
		return nil, err
	}
	return q, nil
}

// UpdateQuestion 教师端修改题目
func (s *AssessmentService) UpdateQuestion(id string, req QuestionRequest) (*model.TestOutQuestion, error) {
	if err := validateQuestion(req); err != nil {
		return nil, err
	}
	q, err := s.Repo.FindQuestionByID(id)
	if err != nil {
		return nil, err
	}
	q.QuestionType = req.QuestionType
	q.Content = req.Content
	q.Answer = req.Answer
	q.Order = req.Order
	q.Explanation = req.Explanation
	q.Options = nil
	if len(req.Options) > 0 {
		data, err := json.Marshal(req.Options)
		if err != nil {
			return nil, err
		}
		q.Options = data
	}
	if err := s.Repo.UpdateQuestion(q); err != nil {
		return nil, err
	}
	return q, nil
}

// ListQuestions 教师端按章节列出题目（含答案，勿暴露给学习者端）
func (s *AssessmentService) ListQuestions(chapterID string) ([]model.TestOutQuestion, error) {
	return s.Repo.ListQuestions(chapterID)
}

func (s *AssessmentService) DeleteQuestion(id string) error {
	return s.Repo.DeleteQuestion(id)
}

// toEngineQuestions 把题库行映射为引擎题目。答案列按题型解析：
// 单选题存选项下标，判断题存 true/false，填空题存原文。
func toEngineQuestions(models []model.TestOutQuestion) ([]engine.Question, error) {
	questions := make([]engine.Question, 0, len(models))
	for i := range models {
		q := engine.Question{ID: models[i].ID, Text: models[i].Content}
		if len(models[i].Options) > 0 {
			if err := json.Unmarshal(models[i].Options, &q.Options); err != nil {
				return nil, err
			}
		}
		switch models[i].QuestionType {
		case model.QuestionSingleChoice:
			idx, err := strconv.Atoi(models[i].Answer)
			if err != nil {
				return nil, errors.New("question " + models[i].ID + ": answer is not an option index")
			}
			q.CorrectAnswer = idx
		case model.QuestionTrueFalse:
			q.CorrectAnswer = models[i].Answer == "true"
		case model.QuestionFillBlank:
			q.CorrectAnswer = models[i].Answer
		default:
			return nil, errors.New("question " + models[i].ID + ": unknown type " + models[i].QuestionType)
		}
		questions = append(questions, q)
	}
	return questions, nil
}
