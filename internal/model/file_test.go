package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStoragePath(t *testing.T) {
	at := time.UnixMilli(1700000000123)
	assert.Equal(t, "user_1/1700000000123_report.pdf", StoragePath("user_1", at, "report.pdf"))
}

func TestIsAllowedMimeType(t *testing.T) {
	for _, mt := range []string{"image/png", "application/pdf", "audio/wav", "text/csv"} {
		assert.True(t, IsAllowedMimeType(mt), mt)
	}
	for _, mt := range []string{"application/x-executable", "", "IMAGE/PNG", DefaultMimeType} {
		assert.False(t, IsAllowedMimeType(mt), mt)
	}
	assert.Len(t, AllowedMimeTypes, 12)
}

func TestMaxFileSize(t *testing.T) {
	assert.Equal(t, int64(10485760), MaxFileSize)
}
