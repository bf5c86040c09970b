package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"infrawatch/backend/internal/model"
	"infrawatch/backend/internal/repository"
	"infrawatch/backend/pkg/storage"
)

// ── 文件访问业务错误 ──

var (
	ErrInvalidFileType  = errors.New("文件类型无效")
	ErrFileNotFound     = errors.New("文件不存在")
	ErrFileAccessDenied = errors.New("无权访问该文件")
)

// FileService 证据文件访问控制
type FileService interface {
	Open(ctx context.Context, fileType, filename, callerID, role string) (*storage.Object, error)
}

type fileService struct {
	repo   *repository.Repository
	store  storage.Store
	logger *zap.Logger
}

// NewFileService 创建 FileService 实例
func NewFileService(repo *repository.Repository, store storage.Store, logger *zap.Logger) FileService {
	return &fileService{repo: repo, store: store, logger: logger}
}

// Open 校验顺序：类型 → 文件存在 → 角色与归属
// 市民只能读取自己报告引用的文件，归属关系只看损伤报告
func (s *fileService) Open(ctx context.Context, fileType, filename, callerID, role string) (*storage.Object, error) {
	kind, ok := storage.ParseKind(fileType)
	if !ok {
		return nil, ErrInvalidFileType
	}
	if !storage.ValidName(filename) {
		return nil, ErrFileNotFound
	}

	exists, err := s.store.Exists(ctx, kind, filename)
	if err != nil {
		s.logger.Error("检查文件失败", zap.String("type", fileType), zap.String("filename", filename), zap.Error(err))
		return nil, err
	}
	if !exists {
		return nil, ErrFileNotFound
	}

	if err := s.authorize(ctx, filename, callerID, model.Role(role)); err != nil {
		return nil, err
	}

	obj, err := s.store.Open(ctx, kind, filename)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrFileNotFound
		}
		s.logger.Error("读取文件失败", zap.String("type", fileType), zap.String("filename", filename), zap.Error(err))
		return nil, err
	}
	return obj, nil
}

func (s *fileService) authorize(ctx context.Context, filename, callerID string, role model.Role) error {
	switch role {
	case model.RoleOfficial:
		return nil
	case model.RoleCitizen:
		report, err := s.repo.DamageReport.GetByImagePath(ctx, filename)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrFileAccessDenied
			}
			s.logger.Error("查询文件归属失败", zap.String("filename", filename), zap.Error(err))
			return err
		}
		if report.CitizenID != callerID {
			return ErrFileAccessDenied
		}
		return nil
	default:
		return ErrFileAccessDenied
	}
}
