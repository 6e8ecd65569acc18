package engine

import (
	"math"
	"time"
)

// SessionStatus 测试跳级会话状态
type SessionStatus string

const (
	SessionNotStarted SessionStatus = "not_started"
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
)

// AssessmentConfig 单场测试的配置。PassingScore 按场配置，不写死。
type AssessmentConfig struct {
	TimeLimitMinutes int
	PassingScore     int
}

// AssessmentOutcome 会话终止时产出的唯一结果，由控制器写入进度存储一次
type AssessmentOutcome struct {
	EntryID          string `json:"entryId"`
	Score            int    `json:"score"`
	Passed           bool   `json:"passed"`
	CorrectCount     int    `json:"correctCount"`
	TotalQuestions   int    `json:"totalQuestions"`
	TimeSpentSeconds int    `json:"timeSpentSeconds"`
	TimedOut         bool   `json:"timedOut"`
}

// AssessmentSession 一次测试跳级尝试的瞬态会话。
//
// 状态机：NotStarted → InProgress → Completed，Completed 不可逆；
// 重考必须创建新会话（attempts 由控制器累加，不归会话管）。
// 倒计时由外部时钟通过 Tick 驱动，会话自身不持有定时器。
type AssessmentSession struct {
	entryID   string
	questions []Question
	config    AssessmentConfig
	clock     Clock

	answers       map[string]interface{}
	currentIndex  int
	remainingSecs int
	status        SessionStatus
	startedAt     time.Time

	outcome *AssessmentOutcome
}

// NewAssessmentSession 创建会话。选择题少于两个选项视为题库编写错误。
func NewAssessmentSession(entryID string, questions []Question, cfg AssessmentConfig, clock Clock) (*AssessmentSession, error) {
	if clock == nil {
		clock = RealClock()
	}
	for i := range questions {
		if _, ok := questions[i].CorrectAnswer.(int); ok && len(questions[i].Options) < 2 {
			return nil, validationf("question %s: choice question needs at least 2 options", questions[i].ID)
		}
	}
	return &AssessmentSession{
		entryID:   entryID,
		questions: questions,
		config:    cfg,
		clock:     clock,
		answers:   make(map[string]interface{}),
		status:    SessionNotStarted,
	}, nil
}

// EntryID 返回会话对应的路径条目
func (s *AssessmentSession) EntryID() string { return s.entryID }

// Status 返回当前状态
func (s *AssessmentSession) Status() SessionStatus { return s.status }

// Questions 返回题目列表（只读）
func (s *AssessmentSession) Questions() []Question { return s.questions }

// CurrentIndex 返回当前题目下标
func (s *AssessmentSession) CurrentIndex() int { return s.currentIndex }

// TimeRemaining 返回剩余秒数
func (s *AssessmentSession) TimeRemaining() int { return s.remainingSecs }

// Answer 返回某题已选答案
func (s *AssessmentSession) Answer(questionID string) (interface{}, bool) {
	v, ok := s.answers[questionID]
	return v, ok
}

// AnsweredCount 返回已作答题数
func (s *AssessmentSession) AnsweredCount() int { return len(s.answers) }

// Outcome 返回已完成会话的结果，未完成时为 nil
func (s *AssessmentSession) Outcome() *AssessmentOutcome { return s.outcome }

// Start 启动会话并初始化倒计时
func (s *AssessmentSession) Start() error {
	if s.status != SessionNotStarted {
		return invalidStatef("start called in %s", s.status)
	}
	s.status = SessionInProgress
	s.remainingSecs = s.config.TimeLimitMinutes * 60
	s.startedAt = s.clock.Now()
	return nil
}

// SelectAnswer 记录答案，覆盖同题的先前答案。答案形状在评分前不做校验；
// 允许作答任意已访问或未访问的题目，提交前答案始终可改。
func (s *AssessmentSession) SelectAnswer(questionID string, value interface{}) error {
	if s.status != SessionInProgress {
		return invalidStatef("selectAnswer called in %s", s.status)
	}
	s.answers[questionID] = value
	return nil
}

// Navigate 跳转到任意题目，不要求当前题已作答
func (s *AssessmentSession) Navigate(index int) error {
	if s.status != SessionInProgress {
		return invalidStatef("navigate called in %s", s.status)
	}
	if index < 0 || index >= len(s.questions) {
		return outOfRangef("navigate to %d of %d questions", index, len(s.questions))
	}
	s.currentIndex = index
	return nil
}

// Tick 从外部时钟馈入一秒。倒计时归零时强制提交——引擎中唯一的
// 非用户驱动转换。返回因超时产生的结果；常规流转返回 nil。
func (s *AssessmentSession) Tick() *AssessmentOutcome {
	if s.status != SessionInProgress {
		return nil
	}
	if s.remainingSecs > 0 {
		s.remainingSecs--
	}
	if s.remainingSecs <= 0 {
		return s.finish(true)
	}
	return nil
}

// Submit 提交并评分。已完成会话上重复调用是空操作并返回 nil，
// 保证终态结果只产出一次。
func (s *AssessmentSession) Submit() (*AssessmentOutcome, error) {
	if s.status == SessionCompleted {
		return nil, nil
	}
	if s.status != SessionInProgress {
		return nil, invalidStatef("submit called in %s", s.status)
	}
	return s.finish(false), nil
}

func (s *AssessmentSession) finish(timedOut bool) *AssessmentOutcome {
	s.status = SessionCompleted

	correct := 0
	for i := range s.questions {
		ans, ok := s.answers[s.questions[i].ID]
		if !ok {
			continue // 未作答计错
		}
		if answerMatches(s.questions[i].CorrectAnswer, ans) {
			correct++
		}
	}

	total := len(s.questions)
	score := 0
	if total > 0 {
		// 四舍五入，0.5 进位；恰好等于及格线判通过
		score = int(math.Floor(float64(correct)/float64(total)*100 + 0.5))
	}

	elapsed := int(s.clock.Now().Sub(s.startedAt).Seconds())
	if elapsed < 0 {
		elapsed = 0
	}

	s.outcome = &AssessmentOutcome{
		EntryID:          s.entryID,
		Score:            score,
		Passed:           score >= s.config.PassingScore,
		CorrectCount:     correct,
		TotalQuestions:   total,
		TimeSpentSeconds: elapsed,
		TimedOut:         timedOut,
	}
	return s.outcome
}

// answerMatches 严格相等比较：单选题比下标，判断题比布尔，填空题比原文
func answerMatches(correct, given interface{}) bool {
	switch want := correct.(type) {
	case int:
		switch got := given.(type) {
		case int:
			return got == want
		case float64: // JSON 解码出的数字
			return got == float64(want) && got == math.Trunc(got)
		}
		return false
	case bool:
		got, ok := given.(bool)
		return ok && got == want
	case string:
		got, ok := given.(string)
		return ok && got == want
	}
	return false
}
