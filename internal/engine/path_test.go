package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCourse() *Course {
	return &Course{
		ID:    "course-1",
		Title: "C语言入门",
		Modules: []Module{
			{
				ID:    "mod-1",
				Title: "基础",
				Chapters: []Chapter{
					{
						ID:                      "ch-1",
						Title:                   "变量与类型",
						TestOutAvailable:        true,
						TestOutTimeLimitMinutes: 15,
						TestOutPassingScore:     80,
						Lessons: []Lesson{
							{ID: "l-1", Title: "变量", Type: LessonVideo, DurationMinutes: 10},
							{ID: "l-2", Title: "类型", Type: LessonReading, DurationMinutes: 8, QuickReviewAvailable: true},
							{ID: "l-3", Title: "入门练习", Type: LessonQuiz, DurationMinutes: 5,
								LearnerTypes: []string{"first-time"}},
						},
					},
					{
						ID:    "ch-2",
						Title: "控制流",
						Lessons: []Lesson{
							{ID: "l-4", Title: "条件分支", Type: LessonVideo, DurationMinutes: 12},
							{ID: "l-5", Title: "循环回顾", Type: LessonReading, DurationMinutes: 6,
								LearnerTypes: []string{"refresher"}},
						},
					},
				},
			},
			{
				ID:    "mod-2",
				Title: "进阶",
				Chapters: []Chapter{
					{
						ID:                      "ch-3",
						Title:                   "指针",
						TestOutAvailable:        true,
						TestOutTimeLimitMinutes: 20,
						TestOutPassingScore:     70,
						Lessons: []Lesson{
							{ID: "l-6", Title: "指针基础", Type: LessonVideo, DurationMinutes: 15},
						},
					},
				},
			},
		},
	}
}

func TestBuildPathFirstTime(t *testing.T) {
	path := BuildPath(sampleCourse(), LearnerFirstTime)

	ids := make([]string, len(path))
	for i, e := range path {
		ids[i] = e.ID
	}
	// first-time 不插入测试跳级条目，refresher 专属课时整体省略
	assert.Equal(t, []string{"l-1", "l-2", "l-3", "l-4", "l-6"}, ids)
	for _, e := range path {
		assert.Equal(t, EntryLesson, e.Kind)
	}
}

func TestBuildPathRefresher(t *testing.T) {
	path := BuildPath(sampleCourse(), LearnerRefresher)

	ids := make([]string, len(path))
	for i, e := range path {
		ids[i] = e.ID
	}
	assert.Equal(t, []string{
		TestOutEntryID("ch-1"), "l-1", "l-2",
		"l-4", "l-5",
		TestOutEntryID("ch-3"), "l-6",
	}, ids)

	require.Equal(t, EntryTestOut, path[0].Kind)
	assert.Equal(t, "ch-1", path[0].ChapterID)
	assert.Equal(t, 15, path[0].DurationMinutes)
}

func TestBuildPathDeterministic(t *testing.T) {
	course := sampleCourse()
	first := BuildPath(course, LearnerRefresher)
	second := BuildPath(course, LearnerRefresher)
	assert.Equal(t, first, second)
}

func TestBuildPathLearnerTypeFiltering(t *testing.T) {
	for _, lt := range []LearnerType{LearnerFirstTime, LearnerRefresher} {
		path := BuildPath(sampleCourse(), lt)
		course := sampleCourse()
		for _, e := range path {
			if e.Kind != EntryLesson {
				continue
			}
			for _, mod := range course.Modules {
				for _, ch := range mod.Chapters {
					for _, lesson := range ch.Lessons {
						if lesson.ID == e.SourceID {
							assert.True(t, lesson.AppliesTo(lt),
								"entry %s excludes learner type %s", e.ID, lt)
						}
					}
				}
			}
		}
	}
}

func TestBuildPathTestOutPrecedesChapterLessons(t *testing.T) {
	path := BuildPath(sampleCourse(), LearnerRefresher)

	for i, e := range path {
		if e.Kind != EntryTestOut {
			continue
		}
		for j, other := range path {
			if other.Kind == EntryLesson && other.ChapterID == e.ChapterID {
				assert.Less(t, i, j, "test-out for %s must precede its lessons", e.ChapterID)
			}
		}
	}
}

func TestBuildPathTestOutWithoutQualifyingLessons(t *testing.T) {
	// 测试跳级按章节给出，与适用课时数量无关
	course := &Course{
		ID: "course-x",
		Modules: []Module{{
			ID: "m",
			Chapters: []Chapter{{
				ID:               "ch",
				Title:            "仅限新学员的章节",
				TestOutAvailable: true,
				Lessons: []Lesson{
					{ID: "l", Title: "课时", LearnerTypes: []string{"first-time"}},
				},
			}},
		}},
	}

	path := BuildPath(course, LearnerRefresher)
	require.Len(t, path, 1)
	assert.Equal(t, EntryTestOut, path[0].Kind)
}

func TestBuildPathEmptyHierarchy(t *testing.T) {
	assert.Empty(t, BuildPath(&Course{ID: "empty"}, LearnerFirstTime))
	assert.Empty(t, BuildPath(nil, LearnerFirstTime))
}
