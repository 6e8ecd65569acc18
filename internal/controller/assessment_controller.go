package controller

import (
	"errors"

	"learnpath_backend/internal/engine"
	"learnpath_backend/internal/service"
	"learnpath_backend/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AssessmentController struct {
	AssessmentService *service.AssessmentService
}

func NewAssessmentController(assessmentService *service.AssessmentService) *AssessmentController {
	return &AssessmentController{AssessmentService: assessmentService}
}

// swagger:model StartAssessmentRequest
type StartAssessmentRequest struct {
	CourseID  string `json:"courseId" binding:"required"`
	ChapterID string `json:"chapterId" binding:"required"`
}

// Start godoc
// @Summary 开始测试跳级
// @Description 为章节开启限时测试会话；同一章节同时只允许一场
// @Tags 测试跳级
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body StartAssessmentRequest true "课程与章节"
// @Success 201 {object} util.Response{data=service.SessionView}
// @Failure 400 {object} util.Response "章节未开启测试跳级或无题目"
// @Failure 409 {object} util.Response "已有进行中的会话"
// @Router /api/assessments [post]
func (c *AssessmentController) Start(ctx *gin.Context) {
	var req StartAssessmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	view, err := c.AssessmentService.Start(ctx.Request.Context(), claims.UserID, req.CourseID, req.ChapterID)
	if err != nil {
		c.writeError(ctx, err)
		return
	}
	util.Created(ctx, view)
}

// Get godoc
// @Summary 会话快照
// @Description 返回题目、已选答案、当前题与剩余时间
// @Tags 测试跳级
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "会话ID"
// @Success 200 {object} util.Response{data=service.SessionView}
// @Failure 404 {object} util.Response "会话不存在"
// @Router /api/assessments/{id} [get]
func (c *AssessmentController) Get(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	view, err := c.AssessmentService.Get(claims.UserID, ctx.Param("id"))
	if err != nil {
		c.writeError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// swagger:model SelectAnswerRequest
type SelectAnswerRequest struct {
	QuestionID string      `json:"questionId" binding:"required"`
	Answer     interface{} `json:"answer" binding:"required"`
}

// SelectAnswer godoc
// @Summary 作答
// @Description 记录答案，提交前可随时更改；单选题传选项下标，判断题传布尔，填空题传字符串
// @Tags 测试跳级
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "会话ID"
// @Param body body SelectAnswerRequest true "题目与答案"
// @Success 200 {object} util.Response{data=service.SessionView}
// @Failure 409 {object} util.Response "会话已结束"
// @Router /api/assessments/{id}/answers [post]
func (c *AssessmentController) SelectAnswer(ctx *gin.Context) {
	var req SelectAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	view, err := c.AssessmentService.SelectAnswer(claims.UserID, ctx.Param("id"), req.QuestionID, req.Answer)
	if err != nil {
		c.writeError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// swagger:model NavigateRequest
type NavigateRequest struct {
	Index *int `json:"index" binding:"required,min=0"`
}

// Navigate godoc
// @Summary 跳转题目
// @Tags 测试跳级
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "会话ID"
// @Param body body NavigateRequest true "目标题目下标"
// @Success 200 {object} util.Response{data=service.SessionView}
// @Failure 400 {object} util.Response "下标越界"
// @Router /api/assessments/{id}/navigate [post]
func (c *AssessmentController) Navigate(ctx *gin.Context) {
	var req NavigateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	view, err := c.AssessmentService.Navigate(claims.UserID, ctx.Param("id"), *req.Index)
	if err != nil {
		c.writeError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// Submit godoc
// @Summary 提交测试
// @Description 评分并落进度；通过即视为整章完成，失败可重考
// @Tags 测试跳级
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "会话ID"
// @Success 200 {object} util.Response{data=object}
// @Failure 404 {object} util.Response "会话不存在"
// @Router /api/assessments/{id}/submit [post]
func (c *AssessmentController) Submit(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	outcome, suggestions, err := c.AssessmentService.Submit(ctx.Request.Context(), claims.UserID, ctx.Param("id"))
	if err != nil {
		c.writeError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"outcome": outcome, "suggestions": suggestions})
}

// Abandon godoc
// @Summary 放弃测试
// @Description 丢弃会话，不写进度，attempts 不变
// @Tags 测试跳级
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "会话ID"
// @Success 200 {object} util.Response
// @Router /api/assessments/{id} [delete]
func (c *AssessmentController) Abandon(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if err := c.AssessmentService.Abandon(claims.UserID, ctx.Param("id")); err != nil {
		c.writeError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// ListQuestions godoc
// @Summary 章节题目列表（教师端）
// @Description 含正确答案与解析，仅教师可见
// @Tags 题库编写
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "章节ID"
// @Success 200 {object} util.Response{data=object}
// @Router /api/teacher/chapters/{id}/questions [get]
func (c *AssessmentController) ListQuestions(ctx *gin.Context) {
	questions, err := c.AssessmentService.ListQuestions(ctx.Param("id"))
	if err != nil {
		c.writeError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"questions": questions})
}

// CreateQuestion godoc
// @Summary 新建题目
// @Tags 题库编写
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.QuestionRequest true "题目信息"
// @Success 201 {object} util.Response{data=model.TestOutQuestion}
// @Failure 400 {object} util.Response "题目校验失败"
// @Router /api/teacher/questions [post]
func (c *AssessmentController) CreateQuestion(ctx *gin.Context) {
	var req service.QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	q, err := c.AssessmentService.CreateQuestion(req)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	util.Created(ctx, q)
}

// UpdateQuestion godoc
// @Summary 更新题目
// @Tags 题库编写
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "题目ID"
// @Param body body service.QuestionRequest true "题目信息"
// @Success 200 {object} util.Response{data=model.TestOutQuestion}
// @Router /api/teacher/questions/{id} [put]
func (c *AssessmentController) UpdateQuestion(ctx *gin.Context) {
	var req service.QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	q, err := c.AssessmentService.UpdateQuestion(ctx.Param("id"), req)
	if err != nil {
		c.writeError(ctx, err)
		return
	}
	util.Success(ctx, q)
}

// DeleteQuestion godoc
// @Summary 删除题目
// @Tags 题库编写
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "题目ID"
// @Success 200 {object} util.Response
// @Router /api/teacher/questions/{id} [delete]
func (c *AssessmentController) DeleteQuestion(ctx *gin.Context) {
	if err := c.AssessmentService.DeleteQuestion(ctx.Param("id")); err != nil {
		c.writeError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

func (c *AssessmentController) writeError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		util.NotFound(ctx)
	case errors.Is(err, service.ErrSessionForbidden):
		util.Forbidden(ctx)
	case errors.Is(err, service.ErrSessionExists):
		util.Conflict(ctx, err.Error())
	case errors.Is(err, service.ErrTestOutDisabled), errors.Is(err, service.ErrNoQuestions):
		util.BadRequest(ctx, err.Error())
	case errors.Is(err, engine.ErrOutOfRange), errors.Is(err, engine.ErrValidation):
		util.BadRequest(ctx, err.Error())
	case errors.Is(err, engine.ErrInvalidState):
		util.Conflict(ctx, err.Error())
	case errors.Is(err, gorm.ErrRecordNotFound):
		util.NotFound(ctx)
	default:
		util.LogInternalError(ctx, err)
	}
}
