package engine

// BuildPath 将嵌套课程层级展平为按学习者类型过滤的有序学习路径。
//
// 按声明顺序遍历模块和章节；refresher 且章节开放测试跳级时，在该章节的
// 课时条目之前插入一个 test-out 条目；不适用于当前学习者类型的课时整体
// 省略。纯函数：相同输入产出相同路径，不读写进度。
func BuildPath(course *Course, learnerType LearnerType) []PathEntry {
	path := []PathEntry{}
	if course == nil {
		return path
	}

	for _, mod := range course.Modules {
		for _, ch := range mod.Chapters {
			// 测试跳级按章节给出，与该章节有多少适用课时无关
			if ch.TestOutAvailable && learnerType == LearnerRefresher {
				path = append(path, PathEntry{
					ID:              TestOutEntryID(ch.ID),
					Kind:            EntryTestOut,
					SourceID:        ch.ID,
					ModuleID:        mod.ID,
					ChapterID:       ch.ID,
					Title:           ch.Title,
					DurationMinutes: ch.TestOutTimeLimitMinutes,
				})
			}

			for _, lesson := range ch.Lessons {
				if !lesson.AppliesTo(learnerType) {
					continue
				}
				path = append(path, PathEntry{
					ID:              lesson.ID,
					Kind:            EntryLesson,
					SourceID:        lesson.ID,
					ModuleID:        mod.ID,
					ChapterID:       ch.ID,
					Title:           lesson.Title,
					DurationMinutes: lesson.DurationMinutes,
				})
			}
		}
	}

	return path
}

// TestOutEntryID 由章节ID确定性地派生测试跳级条目ID，
// 保证重复构建路径时条目ID稳定。
func TestOutEntryID(chapterID string) string {
	return "testout-" + chapterID
}

// FindEntry returns the index of the entry with the given ID, or -1.
func FindEntry(path []PathEntry, entryID string) int {
	for i := range path {
		if path[i].ID == entryID {
			return i
		}
	}
	return -1
}
