package service

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// spool 将上传内容写入临时文件，供识别与文本提取读取
// 调用方负责删除返回的文件
func spool(dir, prefix, name string, r io.Reader) (string, error) {
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("创建临时目录失败: %w", err)
		}
	}

	f, err := os.CreateTemp(dir, prefix+"*"+filepath.Ext(name))
	if err != nil {
		return "", fmt.Errorf("创建临时文件失败: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("写入临时文件失败: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}
