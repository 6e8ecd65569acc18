package controller

import (
	"errors"

	"learnpath_backend/internal/engine"
	"learnpath_backend/internal/service"
	"learnpath_backend/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type QuickReviewController struct {
	ReviewService *service.QuickReviewService
}

func NewQuickReviewController(reviewService *service.QuickReviewService) *QuickReviewController {
	return &QuickReviewController{ReviewService: reviewService}
}

// swagger:model StartReviewRequest
type StartReviewRequest struct {
	CourseID string `json:"courseId" binding:"required"`
	EntryID  string `json:"entryId" binding:"required"`
}

// Start godoc
// @Summary 开始速览
// @Description 为开启速览的课时创建概念清单会话，构造即激活
// @Tags 速览
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body StartReviewRequest true "课程与课时条目"
// @Success 201 {object} util.Response{data=service.ReviewView}
// @Failure 400 {object} util.Response "课时未开启速览或无概念"
// @Router /api/quick-reviews [post]
func (c *QuickReviewController) Start(ctx *gin.Context) {
	var req StartReviewRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	view, err := c.ReviewService.Start(ctx.Request.Context(), claims.UserID, req.CourseID, req.EntryID)
	if err != nil {
		c.writeError(ctx, err)
		return
	}
	util.Created(ctx, view)
}

// Get godoc
// @Summary 速览快照
// @Tags 速览
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "会话ID"
// @Success 200 {object} util.Response{data=service.ReviewView}
// @Failure 404 {object} util.Response "会话不存在"
// @Router /api/quick-reviews/{id} [get]
func (c *QuickReviewController) Get(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	view, err := c.ReviewService.Get(claims.UserID, ctx.Param("id"))
	if err != nil {
		c.writeError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// MarkReviewed godoc
// @Summary 标记概念已复习
// @Description 单向标记，会话内不可取消
// @Tags 速览
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "会话ID"
// @Param conceptId path string true "概念ID"
// @Success 200 {object} util.Response{data=service.ReviewView}
// @Failure 400 {object} util.Response "未知概念"
// @Router /api/quick-reviews/{id}/concepts/{conceptId} [post]
func (c *QuickReviewController) MarkReviewed(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	view, err := c.ReviewService.MarkReviewed(claims.UserID, ctx.Param("id"), ctx.Param("conceptId"))
	if err != nil {
		c.writeError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// Complete godoc
// @Summary 结束速览
// @Description 允许部分完成；落完成标记但不写分数
// @Tags 速览
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "会话ID"
// @Success 200 {object} util.Response{data=object}
// @Router /api/quick-reviews/{id}/complete [post]
func (c *QuickReviewController) Complete(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	outcome, suggestions, err := c.ReviewService.Complete(ctx.Request.Context(), claims.UserID, ctx.Param("id"))
	if err != nil {
		c.writeError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"outcome": outcome, "suggestions": suggestions})
}

// ListConcepts godoc
// @Summary 章节概念列表（教师端）
// @Tags 速览编写
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "章节ID"
// @Success 200 {object} util.Response{data=object}
// @Router /api/teacher/chapters/{id}/concepts [get]
func (c *QuickReviewController) ListConcepts(ctx *gin.Context) {
	concepts, err := c.ReviewService.ListConcepts(ctx.Param("id"))
	if err != nil {
		c.writeError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"concepts": concepts})
}

// CreateConcept godoc
// @Summary 新建速览概念
// @Tags 速览编写
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.ConceptRequest true "概念信息"
// @Success 201 {object} util.Response{data=model.ReviewConcept}
// @Router /api/teacher/concepts [post]
func (c *QuickReviewController) CreateConcept(ctx *gin.Context) {
	var req service.ConceptRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	concept, err := c.ReviewService.CreateConcept(req)
	if err != nil {
		c.writeError(ctx, err)
		return
	}
	util.Created(ctx, concept)
}

// UpdateConcept godoc
// @Summary 更新速览概念
// @Tags 速览编写
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "概念ID"
// @Param body body service.ConceptRequest true "概念信息"
// @Success 200 {object} util.Response{data=model.ReviewConcept}
// @Router /api/teacher/concepts/{id} [put]
func (c *QuickReviewController) UpdateConcept(ctx *gin.Context) {
	var req service.ConceptRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	concept, err := c.ReviewService.UpdateConcept(ctx.Param("id"), req)
	if err != nil {
		c.writeError(ctx, err)
		return
	}
	util.Success(ctx, concept)
}

// DeleteConcept godoc
// @Summary 删除速览概念
// @Tags 速览编写
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "概念ID"
// @Success 200 {object} util.Response
// @Router /api/teacher/concepts/{id} [delete]
func (c *QuickReviewController) DeleteConcept(ctx *gin.Context) {
	if err := c.ReviewService.DeleteConcept(ctx.Param("id")); err != nil {
		c.writeError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

func (c *QuickReviewController) writeError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrReviewNotFound):
		util.NotFound(ctx)
	case errors.Is(err, service.ErrReviewForbidden):
		util.Forbidden(ctx)
	case errors.Is(err, service.ErrReviewUnavailable), errors.Is(err, service.ErrNoReviewConcepts):
		util.BadRequest(ctx, err.Error())
	case errors.Is(err, engine.ErrOutOfRange):
		util.BadRequest(ctx, err.Error())
	case errors.Is(err, engine.ErrInvalidState):
		util.Conflict(ctx, err.Error())
	case errors.Is(err, gorm.ErrRecordNotFound):
		util.NotFound(ctx)
	default:
		util.LogInternalError(ctx, err)
	}
}
