package database

import (
	"fmt"
	"log"

	"learnpath_backend/internal/config"
	"learnpath_backend/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	err = db.AutoMigrate(
		&model.User{},
		&model.Course{},
		&model.CourseModule{},
		&model.Chapter{},
		&model.Lesson{},
		&model.TestOutQuestion{},
		&model.ReviewConcept{},
		&model.ProgressRecord{},
		&model.LearningLog{},
	)

	if err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	return db, nil
}

// SeedDemoCourse 写入一门演示课程：两个模块、带测试跳级的章节、
// 按学习者类型区分的课时和速览概念，方便本地联调。
func SeedDemoCourse(db *gorm.DB) error {
	var count int64
	db.Model(&model.Course{}).Count(&count)
	if count > 0 {
		return nil
	}

	course := &model.Course{Title: "Go 程序设计入门", Description: "从零开始的 Go 学习路径", IsPublished: true}
	if err := db.Create(course).Error; err != nil {
		return err
	}

	m1 := &model.CourseModule{CourseID: course.ID, Title: "语言基础", Order: 1}
	m2 := &model.CourseModule{CourseID: course.ID, Title: "并发编程", Order: 2}
	for _, m := range []*model.CourseModule{m1, m2} {
		if err := db.Create(m).Error; err != nil {
			return err
		}
	}

	ch1 := &model.Chapter{ModuleID: m1.ID, Title: "语法与类型", Order: 1, TestOutAvailable: true, TestOutTimeLimit: 15, TestOutPassingScore: 80}
	ch2 := &model.Chapter{ModuleID: m2.ID, Title: "goroutine 与 channel", Order: 1}
	for _, ch := range []*model.Chapter{ch1, ch2} {
		if err := db.Create(ch).Error; err != nil {
			return err
		}
	}

	lessons := []*model.Lesson{
		{ChapterID: ch1.ID, Title: "变量与常量", Type: model.LessonVideo, Order: 1, DurationMinutes: 12, QuickReviewAvailable: true},
		{ChapterID: ch1.ID, Title: "环境搭建", Type: model.LessonReading, Order: 2, DurationMinutes: 8, LearnerTypes: []string{"first-time"}},
		{ChapterID: ch1.ID, Title: "类型速查", Type: model.LessonReading, Order: 3, DurationMinutes: 5, LearnerTypes: []string{"refresher"}, QuickReviewAvailable: true},
		{ChapterID: ch2.ID, Title: "goroutine 基础", Type: model.LessonVideo, Order: 1, DurationMinutes: 18},
		{ChapterID: ch2.ID, Title: "channel 模式", Type: model.LessonProject, Order: 2, DurationMinutes: 30},
	}
	for _, l := range lessons {
		if err := db.Create(l).Error; err != nil {
			return err
		}
	}

	questions := []*model.TestOutQuestion{
		{ChapterID: ch1.ID, QuestionType: model.QuestionSingleChoice, Content: "以下哪个是合法的变量声明？", Options: []byte(`["var x int","int x","x := int","let x = 1"]`), Answer: "0", Order: 1},
		{ChapterID: ch1.ID, QuestionType: model.QuestionTrueFalse, Content: "Go 的常量可以在运行时修改。", Answer: "false", Order: 2},
		{ChapterID: ch1.ID, QuestionType: model.QuestionFillBlank, Content: "声明切片使用的内建函数是____。", Answer: "make", Order: 3},
	}
	for _, q := range questions {
		if err := db.Create(q).Error; err != nil {
			return err
		}
	}

	concepts := []*model.ReviewConcept{
		{ChapterID: ch1.ID, Title: "零值", Importance: model.ImportanceHigh, EstimatedMinutes: 2, Topics: []string{"types"}, Order: 1},
		{ChapterID: ch1.ID, Title: "短变量声明", Importance: model.ImportanceMedium, EstimatedMinutes: 1, Topics: []string{"syntax"}, Order: 2},
		{ChapterID: ch1.ID, Title: "iota 枚举", Importance: model.ImportanceLow, EstimatedMinutes: 3, Topics: []string{"constants"}, Order: 3},
	}
	for _, c := range concepts {
		if err := db.Create(c).Error; err != nil {
			return err
		}
	}

	log.Println("Demo course seeded")
	return nil
}
