// Package storage 保存与读取上传的证据文件（图片、视频、文档）。
package storage

import (
	"context"
	"errors"
	"io"
	"mime"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

// Kind 文件类别，对应存储根目录下的一级目录
type Kind string

const (
	KindImages Kind = "images"
	KindVideos Kind = "videos"
	KindDocs   Kind = "docs"
)

// ParseKind 解析 URL 中的文件类别
func ParseKind(s string) (Kind, bool) {
	switch Kind(s) {
	case KindImages, KindVideos, KindDocs:
		return Kind(s), true
	}
	return "", false
}

var (
	ErrNotFound    = errors.New("文件不存在")
	ErrInvalidName = errors.New("文件名无效")
)

// Object 读取到的文件
type Object struct {
	Body        io.ReadCloser
	Size        int64
	ContentType string
}

// Store 证据文件存储
// name 必须是不含路径的裸文件名
type Store interface {
	Save(ctx context.Context, kind Kind, name string, r io.Reader) error
	Exists(ctx context.Context, kind Kind, name string) (bool, error)
	Open(ctx context.Context, kind Kind, name string) (*Object, error)
}

var (
	unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)
	dotRuns     = regexp.MustCompile(`\.{2,}`)
)

// SanitizeFilename 将任意上传文件名规整为安全的裸文件名
// 路径分隔符视为空白，空白折叠为下划线，仅保留 ASCII 字母数字与 _ . -，
// 连续的 . 折叠为一个，去掉首尾的 . 和 _。结果可能为空串。
func SanitizeFilename(name string) string {
	name = strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' {
			return ' '
		}
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, name)
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeChars.ReplaceAllString(name, "")
	name = dotRuns.ReplaceAllString(name, ".")
	return strings.Trim(name, "._")
}

// ValidName 是否为可直接拼接到类别目录下的裸文件名
func ValidName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return false
	}
	return name == filepath.Base(name)
}

func contentTypeOf(name string) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
