package service

import (
	"testing"

	"learnpath_backend/internal/engine"
	"learnpath_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToEngineCourse(t *testing.T) {
	course := &model.Course{
		Title: "Go 入门",
		Modules: []model.CourseModule{
			{
				Title: "基础",
				Chapters: []model.Chapter{
					{
						Title:               "语法",
						TestOutAvailable:    true,
						TestOutTimeLimit:    15,
						TestOutPassingScore: 80,
						Lessons: []model.Lesson{
							{
								Title:           "变量",
								Type:            model.LessonVideo,
								DurationMinutes: 12,
								LearnerTypes:    model.StringList{"first-time"},
							},
							{
								Title:                "速览课时",
								Type:                 model.LessonReading,
								QuickReviewAvailable: true,
							},
						},
					},
				},
			},
		},
	}
	course.ID = "c1"
	course.Modules[0].ID = "m1"
	course.Modules[0].Chapters[0].ID = "ch1"
	course.Modules[0].Chapters[0].Lessons[0].ID = "l1"
	course.Modules[0].Chapters[0].Lessons[1].ID = "l2"

	got := toEngineCourse(course)

	assert.Equal(t, "c1", got.ID)
	require.Len(t, got.Modules, 1)
	require.Len(t, got.Modules[0].Chapters, 1)

	ch := got.Modules[0].Chapters[0]
	assert.True(t, ch.TestOutAvailable)
	assert.Equal(t, 15, ch.TestOutTimeLimitMinutes)
	assert.Equal(t, 80, ch.TestOutPassingScore)

	require.Len(t, ch.Lessons, 2)
	assert.Equal(t, engine.LessonVideo, ch.Lessons[0].Type)
	assert.Equal(t, 12, ch.Lessons[0].DurationMinutes)
	assert.Equal(t, []string{"first-time"}, ch.Lessons[0].LearnerTypes)
	assert.True(t, ch.Lessons[1].QuickReviewAvailable)
}

// learnerTypes 为 NULL 的课时对所有学习者可见，映射层必须保留 nil 语义
func TestToEngineCourseNilLearnerTypes(t *testing.T) {
	course := &model.Course{
		Modules: []model.CourseModule{
			{Chapters: []model.Chapter{
				{Lessons: []model.Lesson{{Title: "公共课时"}}},
			}},
		},
	}

	got := toEngineCourse(course)
	lesson := got.Modules[0].Chapters[0].Lessons[0]
	assert.Nil(t, lesson.LearnerTypes)
	assert.True(t, lesson.AppliesTo(engine.LearnerFirstTime))
	assert.True(t, lesson.AppliesTo(engine.LearnerRefresher))
}
