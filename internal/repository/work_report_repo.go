package repository

import (
	"context"

	"gorm.io/gorm"

	"infrawatch/backend/internal/model"
)

// WorkReportRepository 施工通告数据访问接口
type WorkReportRepository interface {
	Create(ctx context.Context, report *model.WorkReport) error
	GetByID(ctx context.Context, id string) (*model.WorkReport, error)
	List(ctx context.Context) ([]model.WorkReport, error)
}

type workReportRepo struct {
	db *gorm.DB
}

// NewWorkReportRepo 创建 WorkReportRepository 实例
func NewWorkReportRepo(db *gorm.DB) WorkReportRepository {
	return &workReportRepo{db: db}
}

// Create notice_id 重复时返回唯一约束错误，由调用方识别
func (r *workReportRepo) Create(ctx context.Context, report *model.WorkReport) error {
	return r.db.WithContext(ctx).Create(report).Error
}

func (r *workReportRepo) GetByID(ctx context.Context, id string) (*model.WorkReport, error) {
	var report model.WorkReport
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&report).Error
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *workReportRepo) List(ctx context.Context) ([]model.WorkReport, error) {
	var reports []model.WorkReport
	if err := r.db.WithContext(ctx).Order(newestFirst).Find(&reports).Error; err != nil {
		return nil, err
	}
	return reports, nil
}
