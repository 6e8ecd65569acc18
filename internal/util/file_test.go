package util

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngHeader() []byte {
	return append([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, make([]byte, 64)...)
}

func TestValidateMimeTypeSniffsContent(t *testing.T) {
	mt, err := ValidateMimeType(bytes.NewReader(pngHeader()), []string{MimeImage})
	require.NoError(t, err)
	assert.Equal(t, "image/png", mt)

	// 完整类型匹配
	mt, err = ValidateMimeType(bytes.NewReader([]byte("%PDF-1.7 内容")), []string{MimePDF})
	require.NoError(t, err)
	assert.Equal(t, MimePDF, mt)
}

func TestValidateMimeTypeRejectsOutsideWhitelist(t *testing.T) {
	_, err := ValidateMimeType(bytes.NewReader(pngHeader()), []string{MimeVideo, MimePDF})
	assert.Error(t, err)
}

func TestValidateMimeTypeRejectsUnrecognizedContent(t *testing.T) {
	// 嗅探不出类型的字节流不允许冒充任何白名单类型
	blob := []byte{0x00, 0x01, 0x02, 0x03, 0xFF, 0xFE}
	_, err := ValidateMimeType(bytes.NewReader(blob), []string{MimeImage, MimeVideo, MimePDF})
	assert.Error(t, err)
}

func TestIsVideo(t *testing.T) {
	assert.True(t, IsVideo("video/mp4"))
	assert.True(t, IsVideo("application/x-mpegURL"))
	assert.False(t, IsVideo("image/png"))
	assert.False(t, IsVideo(MimeOctetStream))
}

func TestIsAllowedVideoExt(t *testing.T) {
	assert.True(t, IsAllowedVideoExt("lecture.MP4"))
	assert.True(t, IsAllowedVideoExt("media/clips/intro.webm"))
	assert.False(t, IsAllowedVideoExt("payload.exe"))
	assert.False(t, IsAllowedVideoExt("noextension"))
}
