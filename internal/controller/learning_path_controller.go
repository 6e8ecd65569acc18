package controller

import (
	"errors"

	"learnpath_backend/internal/engine"
	"learnpath_backend/internal/repository"
	"learnpath_backend/internal/service"
	"learnpath_backend/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type LearningPathController struct {
	PathService *service.LearningPathService
	LogRepo     *repository.LearningLogRepository
}

func NewLearningPathController(pathService *service.LearningPathService, logRepo *repository.LearningLogRepository) *LearningPathController {
	return &LearningPathController{PathService: pathService, LogRepo: logRepo}
}

// GetPath godoc
// @Summary 获取学习路径
// @Description 返回按学习者类型过滤的有序路径，合并进度与当前位置
// @Tags 学习路径
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path string true "课程ID"
// @Success 200 {object} util.Response{data=service.PathView}
// @Failure 404 {object} util.Response "课程不存在"
// @Router /api/learning-path/{courseId} [get]
func (c *LearningPathController) GetPath(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	view, err := c.PathService.GetPath(ctx.Request.Context(), claims.UserID, ctx.Param("courseId"))
	if err != nil {
		c.writeError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// Current godoc
// @Summary 当前位置
// @Description 返回当前条目与针对下一条目的建议
// @Tags 学习路径
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path string true "课程ID"
// @Success 200 {object} util.Response{data=object}
// @Router /api/learning-path/{courseId}/current [get]
func (c *LearningPathController) Current(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	entry, suggestions, err := c.PathService.Current(ctx.Request.Context(), claims.UserID, ctx.Param("courseId"))
	if err != nil {
		c.writeError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"current": entry, "suggestions": suggestions})
}

// Progress godoc
// @Summary 课程进度记录
// @Tags 学习路径
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path string true "课程ID"
// @Success 200 {object} util.Response{data=object}
// @Router /api/learning-path/{courseId}/progress [get]
func (c *LearningPathController) Progress(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	records, err := c.PathService.ListProgress(claims.UserID, ctx.Param("courseId"))
	if err != nil {
		c.writeError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"records": records})
}

// swagger:model CompleteLessonRequest
type CompleteLessonRequest struct {
	Score            *float64 `json:"score" binding:"omitempty,min=0,max=100"`
	TimeSpentSeconds int      `json:"timeSpentSeconds" binding:"min=0"`
}

// CompleteLesson godoc
// @Summary 记录课时完成
// @Description 写入一次进度并返回针对下一条目的自适应建议；2 秒后自动前进
// @Tags 学习路径
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path string true "课程ID"
// @Param entryId path string true "路径条目ID"
// @Param body body CompleteLessonRequest true "完成信息"
// @Success 200 {object} util.Response{data=object}
// @Failure 400 {object} util.Response "条目不在路径中"
// @Router /api/learning-path/{courseId}/entries/{entryId}/complete [post]
func (c *LearningPathController) CompleteLesson(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	var req CompleteLessonRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	suggestions, err := c.PathService.CompleteLesson(ctx.Request.Context(), claims.UserID, ctx.Param("courseId"), ctx.Param("entryId"), req.Score, req.TimeSpentSeconds)
	if err != nil {
		c.writeError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"suggestions": suggestions})
}

// JumpTo godoc
// @Summary 跳转到路径条目
// @Description 跳转并取消挂起的自动前进
// @Tags 学习路径
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path string true "课程ID"
// @Param entryId path string true "路径条目ID"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response "条目不在路径中"
// @Router /api/learning-path/{courseId}/entries/{entryId}/jump [post]
func (c *LearningPathController) JumpTo(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if err := c.PathService.JumpTo(ctx.Request.Context(), claims.UserID, ctx.Param("courseId"), ctx.Param("entryId")); err != nil {
		c.writeError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// Advance godoc
// @Summary 手动前进
// @Tags 学习路径
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path string true "课程ID"
// @Success 200 {object} util.Response{data=object}
// @Router /api/learning-path/{courseId}/advance [post]
func (c *LearningPathController) Advance(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	entry, err := c.PathService.Advance(ctx.Request.Context(), claims.UserID, ctx.Param("courseId"))
	if err != nil {
		c.writeError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"current": entry})
}

// CancelAutoAdvance godoc
// @Summary 取消自动前进
// @Description 学习者离开完成确认页时调用
// @Tags 学习路径
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path string true "课程ID"
// @Success 200 {object} util.Response
// @Router /api/learning-path/{courseId}/cancel-advance [post]
func (c *LearningPathController) CancelAutoAdvance(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if err := c.PathService.CancelAutoAdvance(ctx.Request.Context(), claims.UserID, ctx.Param("courseId")); err != nil {
		c.writeError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// Suggestions godoc
// @Summary 条目建议
// @Description 针对指定条目评估自适应建议
// @Tags 学习路径
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path string true "课程ID"
// @Param entryId path string true "路径条目ID"
// @Success 200 {object} util.Response{data=object}
// @Router /api/learning-path/{courseId}/entries/{entryId}/suggestions [get]
func (c *LearningPathController) Suggestions(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	suggestions, err := c.PathService.SuggestionsFor(ctx.Request.Context(), claims.UserID, ctx.Param("courseId"), ctx.Param("entryId"))
	if err != nil {
		c.writeError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"suggestions": suggestions})
}

// swagger:model LearningTimeRequest
type LearningTimeRequest struct {
	Seconds int `json:"seconds" binding:"required,min=1"`
}

// RecordTime godoc
// @Summary 上报学习耗时
// @Description 只累加耗时，不改完成态与分数
// @Tags 学习路径
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path string true "课程ID"
// @Param entryId path string true "路径条目ID"
// @Param body body LearningTimeRequest true "耗时秒数"
// @Success 200 {object} util.Response
// @Router /api/learning-path/{courseId}/entries/{entryId}/time [post]
func (c *LearningPathController) RecordTime(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	var req LearningTimeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.PathService.RecordLearningTime(claims.UserID, ctx.Param("courseId"), ctx.Param("entryId"), req.Seconds); err != nil {
		c.writeError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// Logs godoc
// @Summary 学习活动流水
// @Tags 学习路径
// @Produce json
// @Security ApiKeyAuth
// @Param courseId query string false "课程ID过滤"
// @Param limit query int false "数量上限" default(50)
// @Success 200 {object} util.Response{data=object}
// @Router /api/learning-logs [get]
func (c *LearningPathController) Logs(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	limit := util.ParsePositiveInt(ctx.Query("limit"), 50)

	logs, err := c.LogRepo.ListForUser(claims.UserID, ctx.Query("courseId"), limit)
	if err != nil {
		c.writeError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"logs": logs})
}

func (c *LearningPathController) writeError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		util.NotFound(ctx)
	case errors.Is(err, engine.ErrOutOfRange), errors.Is(err, engine.ErrValidation):
		util.BadRequest(ctx, err.Error())
	case errors.Is(err, engine.ErrInvalidState):
		util.Conflict(ctx, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}
