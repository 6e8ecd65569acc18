package controller

import (
	"errors"

	"learnpath_backend/internal/service"
	"learnpath_backend/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CourseController struct {
	CourseService *service.CourseService
	MediaService  *service.MediaService
}

func NewCourseController(courseService *service.CourseService, mediaService *service.MediaService) *CourseController {
	return &CourseController{CourseService: courseService, MediaService: mediaService}
}

// ListCourses godoc
// @Summary 课程列表
// @Description 分页返回已发布课程
// @Tags 课程
// @Produce json
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(10)
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/courses [get]
func (c *CourseController) ListCourses(ctx *gin.Context) {
	page := util.ParsePositiveInt(ctx.Query("page"), 1)
	limit := util.ParsePositiveInt(ctx.Query("limit"), 10)

	publishedOnly := true
	if claims := util.GetUserFromContext(ctx); claims != nil && claims.Role != "student" {
		publishedOnly = false
	}

	courses, total, err := c.CourseService.ListCourses(page, limit, publishedOnly)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: courses, Total: total, Page: page, Limit: limit})
}

// GetHierarchy godoc
// @Summary 课程层级
// @Description 返回课程完整层级：模块、章节、课时
// @Tags 课程
// @Produce json
// @Param id path string true "课程ID"
// @Success 200 {object} util.Response{data=model.Course}
// @Failure 404 {object} util.Response "课程不存在"
// @Router /api/courses/{id} [get]
func (c *CourseController) GetHierarchy(ctx *gin.Context) {
	course, err := c.CourseService.GetHierarchy(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, course)
}

// CreateCourse godoc
// @Summary 新建课程
// @Tags 课程编写
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.CourseRequest true "课程信息"
// @Success 201 {object} util.Response{data=model.Course}
// @Router /api/teacher/courses [post]
func (c *CourseController) CreateCourse(ctx *gin.Context) {
	var req service.CourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	course, err := c.CourseService.CreateCourse(claims.UserID, req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, course)
}

// UpdateCourse godoc
// @Summary 更新课程
// @Tags 课程编写
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "课程ID"
// @Param body body service.CourseRequest true "课程信息"
// @Success 200 {object} util.Response{data=model.Course}
// @Router /api/teacher/courses/{id} [put]
func (c *CourseController) UpdateCourse(ctx *gin.Context) {
	var req service.CourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	course, err := c.CourseService.UpdateCourse(ctx.Param("id"), req)
	if err != nil {
		c.writeError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// DeleteCourse godoc
// @Summary 删除课程
// @Tags 课程编写
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "课程ID"
// @Success 200 {object} util.Response
// @Router /api/teacher/courses/{id} [delete]
func (c *CourseController) DeleteCourse(ctx *gin.Context) {
	if err := c.CourseService.DeleteCourse(ctx.Param("id")); err != nil {
		c.writeError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// CreateModule godoc
// @Summary 新建模块
// @Tags 课程编写
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.ModuleRequest true "模块信息"
// @Success 201 {object} util.Response{data=model.CourseModule}
// @Router /api/teacher/modules [post]
func (c *CourseController) CreateModule(ctx *gin.Context) {
	var req service.ModuleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	m, err := c.CourseService.CreateModule(req)
	if err != nil {
		c.writeError(ctx, err)
		return
	}
	util.Created(ctx, m)
}

// UpdateModule godoc
// @Summary 更新模块
// @Tags 课程编写
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "模块ID"
// @Param body body service.ModuleRequest true "模块信息"
// @Success 200 {object} util.Response{data=model.CourseModule}
// @Router /api/teacher/modules/{id} [put]
func (c *CourseController) UpdateModule(ctx *gin.Context) {
	var req service.ModuleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	m, err := c.CourseService.UpdateModule(ctx.Param("id"), req)
	if err != nil {
		c.writeError(ctx, err)
		return
	}
	util.Success(ctx, m)
}

// DeleteModule godoc
// @Summary 删除模块
// @Tags 课程编写
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "模块ID"
// @Success 200 {object} util.Response
// @Router /api/teacher/modules/{id} [delete]
func (c *CourseController) DeleteModule(ctx *gin.Context) {
	if err := c.CourseService.DeleteModule(ctx.Param("id")); err != nil {
		c.writeError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// CreateChapter godoc
// @Summary 新建章节
// @Description 章节可开启测试跳级并配置时限与及格线
// @Tags 课程编写
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.ChapterRequest true "章节信息"
// @Success 201 {object} util.Response{data=model.Chapter}
// @Router /api/teacher/chapters [post]
func (c *CourseController) CreateChapter(ctx *gin.Context) {
	var req service.ChapterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	ch, err := c.CourseService.CreateChapter(req)
	if err != nil {
		c.writeError(ctx, err)
		return
	}
	util.Created(ctx, ch)
}

// UpdateChapter godoc
// @Summary 更新章节
// @Tags 课程编写
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "章节ID"
// @Param body body service.ChapterRequest true "章节信息"
// @Success 200 {object} util.Response{data=model.Chapter}
// @Router /api/teacher/chapters/{id} [put]
func (c *CourseController) UpdateChapter(ctx *gin.Context) {
	var req service.ChapterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	ch, err := c.CourseService.UpdateChapter(ctx.Param("id"), req)
	if err != nil {
		c.writeError(ctx, err)
		return
	}
	util.Success(ctx, ch)
}

// DeleteChapter godoc
// @Summary 删除章节
// @Tags 课程编写
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "章节ID"
// @Success 200 {object} util.Response
// @Router /api/teacher/chapters/{id} [delete]
func (c *CourseController) DeleteChapter(ctx *gin.Context) {
	if err := c.CourseService.DeleteChapter(ctx.Param("id")); err != nil {
		c.writeError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// CreateLesson godoc
// @Summary 新建课时
// @Description learnerTypes 为空表示适用于所有学习者
// @Tags 课程编写
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.LessonRequest true "课时信息"
// @Success 201 {object} util.Response{data=model.Lesson}
// @Router /api/teacher/lessons [post]
func (c *CourseController) CreateLesson(ctx *gin.Context) {
	var req service.LessonRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	l, err := c.CourseService.CreateLesson(req)
	if err != nil {
		c.writeError(ctx, err)
		return
	}
	util.Created(ctx, l)
}

// UpdateLesson godoc
// @Summary 更新课时
// @Tags 课程编写
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "课时ID"
// @Param body body service.LessonRequest true "课时信息"
// @Success 200 {object} util.Response{data=model.Lesson}
// @Router /api/teacher/lessons/{id} [put]
func (c *CourseController) UpdateLesson(ctx *gin.Context) {
	var req service.LessonRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	l, err := c.CourseService.UpdateLesson(ctx.Param("id"), req)
	if err != nil {
		c.writeError(ctx, err)
		return
	}
	util.Success(ctx, l)
}

// DeleteLesson godoc
// @Summary 删除课时
// @Tags 课程编写
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "课时ID"
// @Success 200 {object} util.Response
// @Router /api/teacher/lessons/{id} [delete]
func (c *CourseController) DeleteLesson(ctx *gin.Context) {
	if err := c.CourseService.DeleteLesson(ctx.Param("id")); err != nil {
		c.writeError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// UploadLessonMedia godoc
// @Summary 上传课时媒体
// @Description 上传视频/图片/PDF；视频会探测时长回填 durationMinutes 并生成缩略图
// @Tags 课程编写
// @Accept multipart/form-data
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "课时ID"
// @Param file formData file true "媒体文件"
// @Success 200 {object} util.Response{data=service.MediaUploadResult}
// @Failure 400 {object} util.Response "文件类型不允许"
// @Router /api/teacher/lessons/{id}/media [post]
func (c *CourseController) UploadLessonMedia(ctx *gin.Context) {
	file, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "file is required")
		return
	}

	result, err := c.MediaService.UploadLessonMedia(ctx.Request.Context(), ctx.Param("id"), file)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.NotFound(ctx)
		} else {
			util.BadRequest(ctx, err.Error())
		}
		return
	}
	util.Success(ctx, result)
}

func (c *CourseController) writeError(ctx *gin.Context, err error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		util.NotFound(ctx)
		return
	}
	util.LogInternalError(ctx, err)
}
