package storage

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

type fakeS3 struct {
	objects map[string][]byte
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, _ := io.ReadAll(in.Body)
	f.objects[aws.ToString(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	if _, ok := f.objects[aws.ToString(in.Key)]; !ok {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(data)),
		ContentLength: aws.Int64(int64(len(data))),
	}, nil
}

func TestS3Store_RoundTrip(t *testing.T) {
	ctx := context.Background()
	fake := &fakeS3{objects: map[string][]byte{}}
	s := NewS3StoreWithClient(fake, "evidence", "uploads")

	if err := s.Save(ctx, KindDocs, "notice.pdf", strings.NewReader("%PDF-1.4")); err != nil {
		t.Fatalf("Save 失败: %v", err)
	}
	if _, ok := fake.objects["uploads/docs/notice.pdf"]; !ok {
		t.Fatalf("期望对象键 uploads/docs/notice.pdf，实际: %v", fake.objects)
	}

	ok, err := s.Exists(ctx, KindDocs, "notice.pdf")
	if err != nil || !ok {
		t.Fatalf("期望对象存在, ok=%v err=%v", ok, err)
	}
	ok, err = s.Exists(ctx, KindImages, "notice.pdf")
	if err != nil || ok {
		t.Fatalf("期望对象不存在, ok=%v err=%v", ok, err)
	}

	obj, err := s.Open(ctx, KindDocs, "notice.pdf")
	if err != nil {
		t.Fatalf("Open 失败: %v", err)
	}
	defer obj.Body.Close()
	if obj.Size != 8 {
		t.Errorf("期望 Size=8，实际=%d", obj.Size)
	}
	if obj.ContentType != "application/pdf" {
		t.Errorf("期望 ContentType=application/pdf，实际=%s", obj.ContentType)
	}

	if _, err := s.Open(ctx, KindDocs, "missing.pdf"); err != ErrNotFound {
		t.Errorf("期望 ErrNotFound，实际: %v", err)
	}
}
