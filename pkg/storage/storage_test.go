package storage

import (
	"bytes"
	"context"
	"io"
	"testing"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"pothole.jpg", "pothole.jpg"},
		{"My Photo 1.png", "My_Photo_1.png"},
		{"../../etc/passwd", "etc_passwd"},
		{`..\..\windows\win.ini`, "windows_win.ini"},
		{"1_road crack.JPG", "1_road_crack.JPG"},
		{"路面.jpg", "jpg"},
		{"...", ""},
		{"a$b%c.pdf", "abc.pdf"},
		{"1_../../My Road.jpg", "1_._._My_Road.jpg"},
		{"report..final.pdf", "report.final.pdf"},
	}
	for _, tt := range tests {
		if got := SanitizeFilename(tt.in); got != tt.want {
			t.Errorf("SanitizeFilename(%q) = %q，期望 %q", tt.in, got, tt.want)
		}
	}
}

func TestValidName(t *testing.T) {
	for _, ok := range []string{"a.jpg", "1_photo.png", "notice-01.pdf"} {
		if !ValidName(ok) {
			t.Errorf("%q 应为合法文件名", ok)
		}
	}
	for _, bad := range []string{"", ".", "..", "../a.jpg", "a/b.jpg", `a\b.jpg`, "a..b"} {
		if ValidName(bad) {
			t.Errorf("%q 不应为合法文件名", bad)
		}
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range []string{"images", "videos", "docs"} {
		if _, ok := ParseKind(k); !ok {
			t.Errorf("%s 应为合法类别", k)
		}
	}
	if _, ok := ParseKind("temp"); ok {
		t.Error("temp 不应为合法类别")
	}
}

func TestLocalStore_SaveExistsOpen(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore 失败: %v", err)
	}

	if err := s.Save(ctx, KindImages, "1_a.jpg", bytes.NewReader([]byte("jpeg-bytes"))); err != nil {
		t.Fatalf("Save 失败: %v", err)
	}

	ok, err := s.Exists(ctx, KindImages, "1_a.jpg")
	if err != nil || !ok {
		t.Fatalf("期望文件存在, ok=%v err=%v", ok, err)
	}
	ok, _ = s.Exists(ctx, KindDocs, "1_a.jpg")
	if ok {
		t.Error("其他类别下不应存在该文件")
	}

	obj, err := s.Open(ctx, KindImages, "1_a.jpg")
	if err != nil {
		t.Fatalf("Open 失败: %v", err)
	}
	defer obj.Body.Close()
	data, _ := io.ReadAll(obj.Body)
	if string(data) != "jpeg-bytes" {
		t.Errorf("内容不符: %q", data)
	}
	if obj.Size != int64(len("jpeg-bytes")) {
		t.Errorf("期望 Size=%d，实际=%d", len("jpeg-bytes"), obj.Size)
	}
	if obj.ContentType != "image/jpeg" {
		t.Errorf("期望 ContentType=image/jpeg，实际=%s", obj.ContentType)
	}
}

func TestLocalStore_RejectsTraversal(t *testing.T) {
	ctx := context.Background()
	s, _ := NewLocalStore(t.TempDir())

	if err := s.Save(ctx, KindImages, "../escape.jpg", bytes.NewReader(nil)); err != ErrInvalidName {
		t.Errorf("期望 ErrInvalidName，实际: %v", err)
	}
	if ok, _ := s.Exists(ctx, KindImages, "../images"); ok {
		t.Error("路径穿越不应判定为存在")
	}
	if _, err := s.Open(ctx, KindImages, "missing.jpg"); err != ErrNotFound {
		t.Errorf("期望 ErrNotFound，实际: %v", err)
	}
}
