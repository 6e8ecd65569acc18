package service

import (
	"context"
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"learnpath_backend/internal/util"
	"learnpath_backend/pkg/logger"

	"go.uber.org/zap"
)

// MediaService 课时媒体上传：视频先落临时文件做 ffprobe 探测，
// 用探测出的时长回填课时 durationMinutes，再抓帧生成缩略图。
type MediaService struct {
	Storage   *StorageService
	CourseSvc *CourseService
}

func NewMediaService(storage *StorageService, courseSvc *CourseService) *MediaService {
	return &MediaService{Storage: storage, CourseSvc: courseSvc}
}

type MediaUploadResult struct {
	MediaURL        string `json:"mediaUrl"`
	ThumbnailURL    string `json:"thumbnailUrl,omitempty"`
	DurationMinutes int    `json:"durationMinutes,omitempty"`
}

// UploadLessonMedia 上传课时媒体文件并更新课时元数据
func (s *MediaService) UploadLessonMedia(ctx context.Context, lessonID string, file *multipart.FileHeader) (*MediaUploadResult, error) {
	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	mimeType, err := util.ValidateMimeType(src, []string{util.MimeVideo, util.MimeImage, util.MimePDF})
	if err != nil {
		return nil, err
	}
	if _, err := src.Seek(0, 0); err != nil {
		return nil, err
	}
	if util.IsVideo(mimeType) && !util.IsAllowedVideoExt(file.Filename) {
		return nil, fmt.Errorf("unsupported video extension: %s", filepath.Ext(file.Filename))
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	objectName := fmt.Sprintf("lessons/%s/%d%s", lessonID, time.Now().UnixNano(), ext)

	result := &MediaUploadResult{}

	if util.IsVideo(mimeType) {
		tmp, err := os.CreateTemp("", "lesson-media-*"+ext)
		if err != nil {
			return nil, err
		}
		defer os.Remove(tmp.Name())

		if _, err := tmp.ReadFrom(src); err != nil {
			tmp.Close()
			return nil, err
		}
		tmp.Close()

		if info, err := util.GetVideoInfo(tmp.Name()); err == nil {
			result.DurationMinutes = info.DurationMinutes()
		} else {
			logger.Log.Warn("video probe failed", zap.String("lessonId", lessonID), zap.Error(err))
		}

		thumbPath := tmp.Name() + ".jpg"
		if err := util.GenerateThumbnail(tmp.Name(), thumbPath, "00:00:01"); err == nil {
			defer os.Remove(thumbPath)
			thumbObject := fmt.Sprintf("lessons/%s/thumb_%d.jpg", lessonID, time.Now().UnixNano())
			if url, err := s.Storage.UploadFile(ctx, thumbObject, thumbPath, "image/jpeg"); err == nil {
				result.ThumbnailURL = url
			}
		} else {
			logger.Log.Warn("thumbnail generation failed", zap.String("lessonId", lessonID), zap.Error(err))
		}

		url, err := s.Storage.UploadFile(ctx, objectName, tmp.Name(), mimeType)
		if err != nil {
			return nil, err
		}
		result.MediaURL = url
	} else {
		url, err := s.Storage.Upload(ctx, objectName, src, file.Size, mimeType)
		if err != nil {
			return nil, err
		}
		result.MediaURL = url
	}

	if err := s.CourseSvc.UpdateLessonMedia(lessonID, result.MediaURL, result.ThumbnailURL, result.DurationMinutes); err != nil {
		return nil, err
	}
	return result, nil
}
