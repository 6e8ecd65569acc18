package app

import (
	"learnpath_backend/docs"
	"learnpath_backend/internal/middleware"
	"learnpath_backend/internal/model"
	"learnpath_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(), middleware.ActivityMiddleware(repos.user))
	{
		// 学习者接口
		a.registerStudentRoutes(authGroup, c)

		// 教师端编写接口
		a.registerTeacherRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
		public.GET("/courses", c.course.ListCourses)
		public.GET("/courses/:id", c.course.GetHierarchy)
	}
}

func (a *App) registerStudentRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/profile", c.auth.GetProfile)
	rg.PUT("/profile", c.auth.UpdateProfile)
	rg.PUT("/profile/learner-type", c.auth.UpdateLearnerType)

	// 学习路径
	rg.GET("/learning-path/:courseId", c.learningPath.GetPath)
	rg.GET("/learning-path/:courseId/current", c.learningPath.Current)
	rg.GET("/learning-path/:courseId/progress", c.learningPath.Progress)
	rg.POST("/learning-path/:courseId/advance", c.learningPath.Advance)
	rg.POST("/learning-path/:courseId/cancel-advance", c.learningPath.CancelAutoAdvance)
	rg.POST("/learning-path/:courseId/entries/:entryId/complete", c.learningPath.CompleteLesson)
	rg.POST("/learning-path/:courseId/entries/:entryId/jump", c.learningPath.JumpTo)
	rg.GET("/learning-path/:courseId/entries/:entryId/suggestions", c.learningPath.Suggestions)
	rg.POST("/learning-path/:courseId/entries/:entryId/time", c.learningPath.RecordTime)
	rg.GET("/learning-logs", c.learningPath.Logs)

	// 测试跳级
	rg.POST("/assessments", c.assessment.Start)
	rg.GET("/assessments/:id", c.assessment.Get)
	rg.POST("/assessments/:id/answers", c.assessment.SelectAnswer)
	rg.POST("/assessments/:id/navigate", c.assessment.Navigate)
	rg.POST("/assessments/:id/submit", c.assessment.Submit)
	rg.DELETE("/assessments/:id", c.assessment.Abandon)

	// 速览
	rg.POST("/quick-reviews", c.quickReview.Start)
	rg.GET("/quick-reviews/:id", c.quickReview.Get)
	rg.POST("/quick-reviews/:id/concepts/:conceptId", c.quickReview.MarkReviewed)
	rg.POST("/quick-reviews/:id/complete", c.quickReview.Complete)
}

func (a *App) registerTeacherRoutes(rg *gin.RouterGroup, c *controllers) {
	teacher := rg.Group("/teacher")
	teacher.Use(middleware.RoleMiddleware(model.Teacher))
	{
		// 课程层级编写
		teacher.POST("/courses", c.course.CreateCourse)
		teacher.PUT("/courses/:id", c.course.UpdateCourse)
		teacher.DELETE("/courses/:id", c.course.DeleteCourse)
		teacher.POST("/modules", c.course.CreateModule)
		teacher.PUT("/modules/:id", c.course.UpdateModule)
		teacher.DELETE("/modules/:id", c.course.DeleteModule)
		teacher.POST("/chapters", c.course.CreateChapter)
		teacher.PUT("/chapters/:id", c.course.UpdateChapter)
		teacher.DELETE("/chapters/:id", c.course.DeleteChapter)
		teacher.POST("/lessons", c.course.CreateLesson)
		teacher.PUT("/lessons/:id", c.course.UpdateLesson)
		teacher.DELETE("/lessons/:id", c.course.DeleteLesson)
		teacher.POST("/lessons/:id/media", c.course.UploadLessonMedia)

		// 测试跳级题库
		teacher.GET("/chapters/:id/questions", c.assessment.ListQuestions)
		teacher.POST("/questions", c.assessment.CreateQuestion)
		teacher.PUT("/questions/:id", c.assessment.UpdateQuestion)
		teacher.DELETE("/questions/:id", c.assessment.DeleteQuestion)

		// 速览概念清单
		teacher.GET("/chapters/:id/concepts", c.quickReview.ListConcepts)
		teacher.POST("/concepts", c.quickReview.CreateConcept)
		teacher.PUT("/concepts/:id", c.quickReview.UpdateConcept)
		teacher.DELETE("/concepts/:id", c.quickReview.DeleteConcept)
	}
}
