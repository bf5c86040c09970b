package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"infrawatch/backend/internal/dto"
	"infrawatch/backend/internal/model"
	"infrawatch/backend/internal/repository"
	pkgerrors "infrawatch/backend/pkg/errors"
	"infrawatch/backend/pkg/storage"
)

// ── 施工通告模块业务错误 ──

var (
	ErrNoFile                = errors.New("缺少 PDF 文件")
	ErrExtractionFailed      = errors.New("无法从 PDF 中提取文本")
	ErrMissingFields         = errors.New("施工通告缺少必填字段")
	ErrDuplicateNotice       = errors.New("施工通告编号已存在")
	ErrWorkReportNotFound    = errors.New("施工通告不存在")
	ErrWorkReportFileMissing = errors.New("施工通告原件不存在")
)

// MissingFieldsError 携带缺失字段列表，errors.Is 可匹配 ErrMissingFields
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingFields.Error(), strings.Join(e.Fields, ", "))
}

func (e *MissingFieldsError) Is(target error) bool {
	return target == ErrMissingFields
}

// TextExtractor 从本地 PDF 文件提取文本
type TextExtractor interface {
	Extract(path string) (string, error)
}

// WorkReportService 施工通告业务接口
type WorkReportService interface {
	Upload(ctx context.Context, actorID, ip string, req *dto.UploadWorkNoticeRequest) (*dto.WorkReportResponse, error)
	List(ctx context.Context) ([]dto.WorkReportResponse, error)
	Download(ctx context.Context, id string) (*storage.Object, string, error)
}

type workReportService struct {
	repo      *repository.Repository
	store     storage.Store
	extractor TextExtractor
	audit     AuditService
	tempDir   string
	logger    *zap.Logger
}

// NewWorkReportService 创建 WorkReportService 实例
func NewWorkReportService(
	repo *repository.Repository,
	store storage.Store,
	extractor TextExtractor,
	audit AuditService,
	tempDir string,
	logger *zap.Logger,
) WorkReportService {
	return &workReportService{
		repo:      repo,
		store:     store,
		extractor: extractor,
		audit:     audit,
		tempDir:   tempDir,
		logger:    logger,
	}
}

// ────────────────────── Upload ──────────────────────

// Upload 解析成功后才保存原件并写库
func (s *workReportService) Upload(ctx context.Context, actorID, ip string, req *dto.UploadWorkNoticeRequest) (*dto.WorkReportResponse, error) {
	if req.PDF == nil {
		return nil, ErrNoFile
	}
	filename := storage.SanitizeFilename(req.PDF.Filename)
	if filename == "" {
		return nil, ErrEmptyFilename
	}

	path, err := spool(s.tempDir, "notice_", filename, req.PDF.Body)
	if err != nil {
		s.logger.Error("保存施工通告失败", zap.Error(err))
		return nil, err
	}
	defer os.Remove(path)

	text, err := s.extractor.Extract(path)
	if err != nil || strings.TrimSpace(text) == "" {
		s.logger.Warn("提取 PDF 文本失败", zap.String("filename", filename), zap.Error(err))
		return nil, ErrExtractionFailed
	}

	notice, missing := ParseNotice(text)
	if len(missing) > 0 {
		return nil, &MissingFieldsError{Fields: missing}
	}

	// 原件以记录 ID 为前缀保存，同名上传不会覆盖已入库通告的原件
	id := uuid.New().String()
	stored := id + "_" + filename
	if err := s.saveDocument(ctx, stored, path); err != nil {
		s.logger.Error("写入文档存储失败", zap.String("filename", stored), zap.Error(err))
		return nil, err
	}

	report := &model.WorkReport{
		ID:                id,
		NoticeID:          notice.NoticeID,
		Department:        notice.Department,
		WorkType:          notice.WorkType,
		Location:          notice.Location,
		ExecutingAgency:   notice.ExecutingAgency,
		ContractorContact: notice.ContractorContact,
		Status:            model.WorkStatusPending,
		PDFFilename:       stored,
	}
	if err := s.repo.WorkReport.Create(ctx, report); err != nil {
		if pkgerrors.IsUniqueViolation(err) {
			return nil, ErrDuplicateNotice
		}
		s.logger.Error("创建施工通告失败", zap.String("notice_id", notice.NoticeID), zap.Error(err))
		return nil, err
	}

	s.audit.Record(ctx, actorID, "UPLOAD_WORK_NOTICE "+report.NoticeID, ip)

	resp := toWorkReportResponse(report)
	return &resp, nil
}

func (s *workReportService) saveDocument(ctx context.Context, filename, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return s.store.Save(ctx, storage.KindDocs, filename, f)
}

// ────────────────────── List ──────────────────────

func (s *workReportService) List(ctx context.Context) ([]dto.WorkReportResponse, error) {
	reports, err := s.repo.WorkReport.List(ctx)
	if err != nil {
		s.logger.Error("列出施工通告失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.WorkReportResponse, 0, len(reports))
	for i := range reports {
		result = append(result, toWorkReportResponse(&reports[i]))
	}
	return result, nil
}

// ────────────────────── Download ──────────────────────

func (s *workReportService) Download(ctx context.Context, id string) (*storage.Object, string, error) {
	report, err := s.repo.WorkReport.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrWorkReportNotFound
		}
		s.logger.Error("查询施工通告失败", zap.String("id", id), zap.Error(err))
		return nil, "", err
	}

	obj, err := s.store.Open(ctx, storage.KindDocs, report.PDFFilename)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrInvalidName) {
			return nil, "", ErrWorkReportFileMissing
		}
		s.logger.Error("读取施工通告原件失败", zap.String("id", id), zap.Error(err))
		return nil, "", err
	}
	return obj, originalName(report.PDFFilename), nil
}

// originalName 去掉存储名中的 "<uuid>_" 前缀，作为下载文件名
func originalName(stored string) string {
	prefix, rest, ok := strings.Cut(stored, "_")
	if !ok || rest == "" {
		return stored
	}
	if _, err := uuid.Parse(prefix); err != nil {
		return stored
	}
	return rest
}

func toWorkReportResponse(r *model.WorkReport) dto.WorkReportResponse {
	return dto.WorkReportResponse{
		ID:                r.ID,
		NoticeID:          r.NoticeID,
		Department:        r.Department,
		WorkType:          r.WorkType,
		Location:          r.Location,
		ExecutingAgency:   r.ExecutingAgency,
		ContractorContact: r.ContractorContact,
		Status:            r.Status,
		PDFFilename:       originalName(r.PDFFilename),
		CreatedAt:         r.CreatedAt.UTC().Format(time.RFC3339),
	}
}
