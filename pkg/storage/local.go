package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// LocalStore 本地磁盘存储：<root>/<kind>/<name>
type LocalStore struct {
	root string
}

// NewLocalStore 创建本地存储并预建各类别目录
func NewLocalStore(root string) (*LocalStore, error) {
	for _, k := range []Kind{KindImages, KindVideos, KindDocs} {
		if err := os.MkdirAll(filepath.Join(root, string(k)), 0o755); err != nil {
			return nil, fmt.Errorf("创建上传目录失败: %w", err)
		}
	}
	return &LocalStore{root: root}, nil
}

func (s *LocalStore) path(kind Kind, name string) (string, error) {
	if _, ok := ParseKind(string(kind)); !ok || !ValidName(name) {
		return "", ErrInvalidName
	}
	return filepath.Join(s.root, string(kind), name), nil
}

// Save 写入文件，同名覆盖
func (s *LocalStore) Save(_ context.Context, kind Kind, name string, r io.Reader) error {
	p, err := s.path(kind, name)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("创建文件失败: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return fmt.Errorf("写入文件失败: %w", err)
	}
	return f.Close()
}

// Exists 文件是否存在（目录不算）
func (s *LocalStore) Exists(_ context.Context, kind Kind, name string) (bool, error) {
	p, err := s.path(kind, name)
	if err != nil {
		return false, nil
	}
	info, err := os.Stat(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

// Open 打开文件，调用方负责关闭 Body
func (s *LocalStore) Open(_ context.Context, kind Kind, name string) (*Object, error) {
	p, err := s.path(kind, name)
	if err != nil {
		return nil, ErrNotFound
	}
	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if !info.Mode().IsRegular() {
		f.Close()
		return nil, ErrNotFound
	}
	return &Object{Body: f, Size: info.Size(), ContentType: contentTypeOf(name)}, nil
}
