package util

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"
)

// ValidateMimeType 按内容前512字节嗅探 MIME 类型并对白名单校验，
// 不信任客户端声明的 Content-Type。
// allowed 支持前缀("video/")或完整类型("application/pdf")。
func ValidateMimeType(reader io.Reader, allowed []string) (string, error) {
	head := make([]byte, 512)
	n, err := reader.Read(head)
	if err != nil && err != io.EOF {
		return "", err
	}

	mimeType := http.DetectContentType(head[:n])
	if mimeType == MimeOctetStream {
		// 嗅探不出类型的内容一律拒绝，避免伪装上传
		return mimeType, errors.New("unrecognized file content")
	}

	for _, a := range allowed {
		if mimeType == a || strings.HasPrefix(mimeType, a) {
			return mimeType, nil
		}
	}
	return mimeType, errors.New("file type not allowed: " + mimeType)
}

// IsVideo 课时媒体里按视频处理的类型（含HLS清单）
func IsVideo(mimeType string) bool {
	return strings.HasPrefix(mimeType, MimeVideo) || mimeType == "application/x-mpegURL"
}

// IsAllowedVideoExt 视频扩展名白名单，内容嗅探之前的快速拒绝
func IsAllowedVideoExt(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, allowed := range AllowedVideoExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}
