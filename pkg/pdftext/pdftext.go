// Package pdftext 从 PDF 中提取纯文本。
package pdftext

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrNoText PDF 中没有可提取的文本（例如纯扫描件）
var ErrNoText = errors.New("PDF 中没有可提取的文本")

// Extractor 基于 ledongthuc/pdf 的文本提取器
type Extractor struct{}

// NewExtractor 创建文本提取器
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract 逐页按行提取文本，每行以换行结尾
// 单页解析失败时跳过该页；全部页面都没有文本时返回 ErrNoText
func (e *Extractor) Extract(path string) (text string, err error) {
	// 解析库遇到损坏文件可能 panic
	defer func() {
		if rec := recover(); rec != nil {
			text, err = "", fmt.Errorf("解析 PDF 失败: %v", rec)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("打开 PDF 失败: %w", err)
	}
	defer f.Close()

	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText(&sb, page)
	}

	text = sb.String()
	if strings.TrimSpace(text) == "" {
		return "", ErrNoText
	}
	return text, nil
}

func pageText(sb *strings.Builder, page pdf.Page) {
	rows, err := page.GetTextByRow()
	if err == nil && len(rows) > 0 {
		for _, row := range rows {
			for _, word := range row.Content {
				sb.WriteString(word.S)
			}
			sb.WriteByte('\n')
		}
		return
	}

	plain, err := page.GetPlainText(nil)
	if err != nil {
		return
	}
	sb.WriteString(plain)
	sb.WriteByte('\n')
}
