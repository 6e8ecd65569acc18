package repository

import (
	"learnpath_backend/internal/model"

	"gorm.io/gorm"
)

type AssessmentRepository struct {
	DB *gorm.DB
}

func NewAssessmentRepository(db *gorm.DB) *AssessmentRepository {
	return &AssessmentRepository{DB: db}
}

func (r *AssessmentRepository) CreateQuestion(q *model.TestOutQuestion) error {
	return r.DB.Create(q).Error
}

func (r *AssessmentRepository) FindQuestionByID(id string) (*model.TestOutQuestion, error) {
	var q model.TestOutQuestion
	err := r.DB.Where("id = ?", id).First(&q).Error
	return &q, err
}

func (r *AssessmentRepository) ListQuestions(chapterID string) ([]model.TestOutQuestion, error) {
	var qs []model.TestOutQuestion
	err := r.DB.Where("chapter_id = ?", chapterID).
		Order("`order` asc, created_at asc").Find(&qs).Error
	return qs, err
}

func (r *AssessmentRepository) UpdateQuestion(q *model.TestOutQuestion) error {
	return r.DB.Save(q).Error
}

func (r *AssessmentRepository) DeleteQuestion(id string) error {
	return r.DB.Where("id = ?", id).Delete(&model.TestOutQuestion{}).Error
}

func (r *AssessmentRepository) CreateConcept(c *model.ReviewConcept) error {
	return r.DB.Create(c).Error
}

func (r *AssessmentRepository) FindConceptByID(id string) (*model.ReviewConcept, error) {
	var c model.ReviewConcept
	err := r.DB.Where("id = ?", id).First(&c).Error
	return &c, err
}

func (r *AssessmentRepository) ListConcepts(chapterID string) ([]model.ReviewConcept, error) {
	var cs []model.ReviewConcept
	err := r.DB.Where("chapter_id = ?", chapterID).
		Order("`order` asc, created_at asc").Find(&cs).Error
	return cs, err
}

func (r *AssessmentRepository) UpdateConcept(c *model.ReviewConcept) error {
	return r.DB.Save(c).Error
}

func (r *AssessmentRepository) DeleteConcept(id string) error {
	return r.DB.Where("id = ?", id).Delete(&model.ReviewConcept{}).Error
}
