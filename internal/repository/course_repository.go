package repository

import (
	"learnpath_backend/internal/model"

	"gorm.io/gorm"
)

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

func (r *CourseRepository) Create(course *model.Course) error {
	return r.DB.Create(course).Error
}

// FindByID 返回不带层级的课程行
func (r *CourseRepository) FindByID(id string) (*model.Course, error) {
	var c model.Course
	err := r.DB.Where("id = ?", id).First(&c).Error
	return &c, err
}

// FindHierarchy 按声明顺序预加载完整层级：模块→章节→课时
func (r *CourseRepository) FindHierarchy(id string) (*model.Course, error) {
	var c model.Course
	err := r.DB.
		Preload("Modules", func(db *gorm.DB) *gorm.DB {
			return db.Order("course_modules.`order` asc, course_modules.created_at asc")
		}).
		Preload("Modules.Chapters", func(db *gorm.DB) *gorm.DB {
			return db.Order("chapters.`order` asc, chapters.created_at asc")
		}).
		Preload("Modules.Chapters.Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Order("lessons.`order` asc, lessons.created_at asc")
		}).
		Where("id = ?", id).First(&c).Error
	return &c, err
}

func (r *CourseRepository) List(page, limit int, publishedOnly bool) ([]model.Course, int64, error) {
	var cs []model.Course
	var total int64
	query := r.DB.Model(&model.Course{})
	if publishedOnly {
		query = query.Where("is_published = ?", true)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&cs).Error
	return cs, total, err
}

func (r *CourseRepository) Update(course *model.Course) error {
	return r.DB.Save(course).Error
}

func (r *CourseRepository) Delete(id string) error {
	return r.DB.Where("id = ?", id).Delete(&model.Course{}).Error
}

func (r *CourseRepository) CreateModule(m *model.CourseModule) error {
	return r.DB.Create(m).Error
}

func (r *CourseRepository) FindModuleByID(id string) (*model.CourseModule, error) {
	var m model.CourseModule
	err := r.DB.Where("id = ?", id).First(&m).Error
	return &m, err
}

func (r *CourseRepository) UpdateModule(m *model.CourseModule) error {
	return r.DB.Save(m).Error
}

func (r *CourseRepository) DeleteModule(id string) error {
	return r.DB.Where("id = ?", id).Delete(&model.CourseModule{}).Error
}

func (r *CourseRepository) CreateChapter(ch *model.Chapter) error {
	return r.DB.Create(ch).Error
}

func (r *CourseRepository) FindChapterByID(id string) (*model.Chapter, error) {
	var ch model.Chapter
	err := r.DB.Where("id = ?", id).First(&ch).Error
	return &ch, err
}

func (r *CourseRepository) UpdateChapter(ch *model.Chapter) error {
	return r.DB.Save(ch).Error
}

func (r *CourseRepository) DeleteChapter(id string) error {
	return r.DB.Where("id = ?", id).Delete(&model.Chapter{}).Error
}

func (r *CourseRepository) CreateLesson(l *model.Lesson) error {
	return r.DB.Create(l).Error
}

func (r *CourseRepository) FindLessonByID(id string) (*model.Lesson, error) {
	var l model.Lesson
	err := r.DB.Where("id = ?", id).First(&l).Error
	return &l, err
}

func (r *CourseRepository) UpdateLesson(l *model.Lesson) error {
	return r.DB.Save(l).Error
}

func (r *CourseRepository) DeleteLesson(id string) error {
	return r.DB.Where("id = ?", id).Delete(&model.Lesson{}).Error
}

// CourseIDForChapter 反查章节所属课程
func (r *CourseRepository) CourseIDForChapter(chapterID string) (string, error) {
	var courseID string
	err := r.DB.Table("chapters").
		Select("course_modules.course_id").
		Joins("JOIN course_modules ON course_modules.id = chapters.module_id").
		Where("chapters.id = ?", chapterID).
		Scan(&courseID).Error
	return courseID, err
}
