package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"infrawatch/backend/config"
)

// S3API S3Store 用到的客户端方法子集
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Store S3 兼容对象存储：<prefix>/<kind>/<name>
type S3Store struct {
	client S3API
	bucket string
	prefix string
}

// NewS3Store 使用默认凭证链创建 S3 存储
// 配置 endpoint 时走 path-style，便于对接 LocalStack / MinIO
func NewS3Store(ctx context.Context, cfg *config.S3Config) (*S3Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("加载 AWS 配置失败: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewS3StoreWithClient(client, cfg.Bucket, cfg.Prefix), nil
}

// NewS3StoreWithClient 使用给定客户端创建 S3 存储
func NewS3StoreWithClient(client S3API, bucket, prefix string) *S3Store {
	return &S3Store{client: client, bucket: bucket, prefix: prefix}
}

func (s *S3Store) key(kind Kind, name string) (string, error) {
	if _, ok := ParseKind(string(kind)); !ok || !ValidName(name) {
		return "", ErrInvalidName
	}
	return path.Join(s.prefix, string(kind), name), nil
}

// Save 上传对象
func (s *S3Store) Save(ctx context.Context, kind Kind, name string, r io.Reader) error {
	key, err := s.key(kind, name)
	if err != nil {
		return err
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        r,
		ContentType: aws.String(contentTypeOf(name)),
	})
	if err != nil {
		return fmt.Errorf("上传对象失败 %s: %w", key, err)
	}
	return nil
}

// Exists 对象是否存在
func (s *S3Store) Exists(ctx context.Context, kind Kind, name string) (bool, error) {
	key, err := s.key(kind, name)
	if err != nil {
		return false, nil
	}
	_, err = s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("查询对象失败 %s: %w", key, err)
	}
	return true, nil
}

// Open 读取对象，调用方负责关闭 Body
func (s *S3Store) Open(ctx context.Context, kind Kind, name string) (*Object, error) {
	key, err := s.key(kind, name)
	if err != nil {
		return nil, ErrNotFound
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("读取对象失败 %s: %w", key, err)
	}

	ct := aws.ToString(out.ContentType)
	if ct == "" {
		ct = contentTypeOf(name)
	}
	size := int64(-1)
	if out.ContentLength != nil {
		size = *out.ContentLength
	}
	return &Object{Body: out.Body, Size: size, ContentType: ct}, nil
}

func isNotFound(err error) bool {
	var nf *types.NotFound
	var nsk *types.NoSuchKey
	return errors.As(err, &nf) || errors.As(err, &nsk)
}
