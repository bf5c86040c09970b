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

	"infrawatch/backend/internal/detection"
	"infrawatch/backend/internal/dto"
	"infrawatch/backend/internal/model"
	"infrawatch/backend/internal/repository"
	"infrawatch/backend/pkg/storage"
)

// ── 损伤报告模块业务错误 ──

var (
	ErrNoImage        = errors.New("缺少图片")
	ErrEmptyFilename  = errors.New("文件名为空")
	ErrInvalidStatus  = errors.New("审核状态无效")
	ErrReportNotFound = errors.New("报告不存在")
)

// Notifier 报告状态变更推送
type Notifier interface {
	Publish(citizenID string, event interface{})
}

// ReportService 损伤报告业务接口
type ReportService interface {
	Detect(ctx context.Context, citizenID string, image *dto.FileUpload) (*detection.Result, error)
	Submit(ctx context.Context, citizenID, ip string, req *dto.SubmitReportRequest) (*dto.SubmitReportResponse, error)
	List(ctx context.Context) ([]dto.ReportResponse, error)
	ListByCitizen(ctx context.Context, citizenID string) ([]dto.ReportResponse, error)
	Get(ctx context.Context, id string) (*dto.ReportResponse, error)
	Verify(ctx context.Context, id, actorID, ip string, req *dto.VerifyReportRequest) (model.ReportStatus, error)
	Assign(ctx context.Context, id, actorID, ip string, req *dto.AssignWorkRequest) error
}

type reportService struct {
	repo     *repository.Repository
	store    storage.Store
	detector detection.Detector
	audit    AuditService
	notifier Notifier
	tempDir  string
	logger   *zap.Logger
}

// NewReportService 创建 ReportService 实例
// notifier 可为 nil
func NewReportService(
	repo *repository.Repository,
	store storage.Store,
	detector detection.Detector,
	audit AuditService,
	notifier Notifier,
	tempDir string,
	logger *zap.Logger,
) ReportService {
	return &reportService{
		repo:     repo,
		store:    store,
		detector: detector,
		audit:    audit,
		notifier: notifier,
		tempDir:  tempDir,
		logger:   logger,
	}
}

// ────────────────────── Detect ──────────────────────

func (s *reportService) Detect(ctx context.Context, citizenID string, image *dto.FileUpload) (*detection.Result, error) {
	if image == nil {
		return nil, ErrNoImage
	}

	prefix := storage.SanitizeFilename("preview_"+citizenID) + "_"
	path, err := spool(s.tempDir, prefix, image.Filename, image.Body)
	if err != nil {
		s.logger.Error("保存预览图片失败", zap.Error(err))
		return nil, err
	}
	defer os.Remove(path)

	result := s.detector.Detect(ctx, path)
	return &result, nil
}

// ────────────────────── Submit ──────────────────────

func (s *reportService) Submit(ctx context.Context, citizenID, ip string, req *dto.SubmitReportRequest) (*dto.SubmitReportResponse, error) {
	if req.Image == nil {
		return nil, ErrNoImage
	}
	if strings.TrimSpace(req.Image.Filename) == "" {
		return nil, ErrEmptyFilename
	}

	// 1. 规整文件名，只保留裸文件名
	filename := storage.SanitizeFilename(citizenID + "_" + req.Image.Filename)
	if filename == "" {
		return nil, ErrEmptyFilename
	}

	// 2. 落盘到临时文件，再写入证据存储
	path, err := spool(s.tempDir, "upload_", filename, req.Image.Body)
	if err != nil {
		s.logger.Error("保存上传图片失败", zap.Error(err))
		return nil, err
	}
	defer os.Remove(path)

	if err := s.saveImage(ctx, filename, path); err != nil {
		s.logger.Error("写入图片存储失败", zap.String("filename", filename), zap.Error(err))
		return nil, err
	}

	// 3. 同步识别并推导严重程度
	result := s.detector.Detect(ctx, path)

	report := &model.DamageReport{
		ID:                 uuid.New().String(),
		CitizenID:          citizenID,
		ImagePath:          filename,
		Location:           req.Location,
		Latitude:           req.Latitude,
		Longitude:          req.Longitude,
		DetectedDamageType: result.Label,
		ConfidenceScore:    result.Confidence,
		Severity:           model.SeverityFromConfidence(result.Confidence),
		Status:             model.StatusSubmitted,
	}

	// 4. 写库；失败时已保存的图片保留为孤儿文件
	if err := s.repo.DamageReport.Create(ctx, report); err != nil {
		s.logger.Error("创建损伤报告失败", zap.String("citizen_id", citizenID), zap.Error(err))
		return nil, err
	}

	s.audit.Record(ctx, citizenID, "SUBMIT_DAMAGE_REPORT "+report.ID, ip)

	return &dto.SubmitReportResponse{ReportID: report.ID}, nil
}

func (s *reportService) saveImage(ctx context.Context, filename, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return s.store.Save(ctx, storage.KindImages, filename, f)
}

// ────────────────────── List / Get ──────────────────────

func (s *reportService) List(ctx context.Context) ([]dto.ReportResponse, error) {
	reports, err := s.repo.DamageReport.List(ctx)
	if err != nil {
		s.logger.Error("列出损伤报告失败", zap.Error(err))
		return nil, err
	}
	return toReportResponses(reports), nil
}

func (s *reportService) ListByCitizen(ctx context.Context, citizenID string) ([]dto.ReportResponse, error) {
	reports, err := s.repo.DamageReport.ListByCitizen(ctx, citizenID)
	if err != nil {
		s.logger.Error("列出市民报告失败", zap.String("citizen_id", citizenID), zap.Error(err))
		return nil, err
	}
	return toReportResponses(reports), nil
}

func (s *reportService) Get(ctx context.Context, id string) (*dto.ReportResponse, error) {
	report, err := s.getReport(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toReportResponse(report)
	return &resp, nil
}

// ────────────────────── Verify ──────────────────────

func (s *reportService) Verify(ctx context.Context, id, actorID, ip string, req *dto.VerifyReportRequest) (model.ReportStatus, error) {
	status := model.ReportStatus(req.Status)
	if !status.IsVerdict() {
		return "", ErrInvalidStatus
	}

	report, err := s.getReport(ctx, id)
	if err != nil {
		return "", err
	}

	report.Status = status
	report.VerifiedBy = &actorID
	if err := s.repo.DamageReport.Update(ctx, report); err != nil {
		s.logger.Error("更新报告状态失败", zap.String("id", id), zap.Error(err))
		return "", err
	}

	s.audit.Record(ctx, actorID,
		fmt.Sprintf("VERIFY_REPORT %s %s | %s", strings.ToUpper(string(status)), id, req.Reason), ip)
	s.publish(report)

	return status, nil
}

// ────────────────────── Assign ──────────────────────

// Assign 派工不要求报告已通过审核
func (s *reportService) Assign(ctx context.Context, id, actorID, ip string, req *dto.AssignWorkRequest) error {
	report, err := s.getReport(ctx, id)
	if err != nil {
		return err
	}

	report.Status = model.StatusAssigned
	if req.ContractorID != "" {
		contractorID := req.ContractorID
		report.ContractorID = &contractorID
	}
	if err := s.repo.DamageReport.Update(ctx, report); err != nil {
		s.logger.Error("更新报告状态失败", zap.String("id", id), zap.Error(err))
		return err
	}

	s.audit.Record(ctx, actorID,
		fmt.Sprintf("ASSIGN_WORK report=%s contractor=%s", id, req.ContractorID), ip)
	s.publish(report)

	return nil
}

// ────────────────────── 内部方法 ──────────────────────

func (s *reportService) getReport(ctx context.Context, id string) (*model.DamageReport, error) {
	report, err := s.repo.DamageReport.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReportNotFound
		}
		s.logger.Error("查询损伤报告失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return report, nil
}

func (s *reportService) publish(report *model.DamageReport) {
	if s.notifier == nil {
		return
	}
	s.notifier.Publish(report.CitizenID, dto.StatusEvent{
		Type:     "report_status",
		ReportID: report.ID,
		Status:   string(report.Status),
	})
}

func toReportResponses(reports []model.DamageReport) []dto.ReportResponse {
	result := make([]dto.ReportResponse, 0, len(reports))
	for i := range reports {
		result = append(result, toReportResponse(&reports[i]))
	}
	return result
}

func toReportResponse(r *model.DamageReport) dto.ReportResponse {
	return dto.ReportResponse{
		ID:         r.ID,
		Location:   r.Location,
		Latitude:   r.Latitude,
		Longitude:  r.Longitude,
		DamageType: r.DetectedDamageType,
		Confidence: r.ConfidenceScore,
		Severity:   string(r.Severity),
		Status:     string(r.Status),
		CreatedAt:  r.CreatedAt.UTC().Format(time.RFC3339),
		ImageURL:   "/api/files/" + string(storage.KindImages) + "/" + r.ImagePath,
		ReportedBy: dto.ReportedByCitizen,
	}
}
