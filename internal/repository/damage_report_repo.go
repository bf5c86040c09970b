package repository

import (
	"context"

	"gorm.io/gorm"

	"infrawatch/backend/internal/model"
)

// DamageReportRepository 损伤报告数据访问接口
type DamageReportRepository interface {
	Create(ctx context.Context, report *model.DamageReport) error
	GetByID(ctx context.Context, id string) (*model.DamageReport, error)
	GetByImagePath(ctx context.Context, imagePath string) (*model.DamageReport, error)
	List(ctx context.Context) ([]model.DamageReport, error)
	ListByCitizen(ctx context.Context, citizenID string) ([]model.DamageReport, error)
	Update(ctx context.Context, report *model.DamageReport) error
}

type damageReportRepo struct {
	db *gorm.DB
}

// NewDamageReportRepo 创建 DamageReportRepository 实例
func NewDamageReportRepo(db *gorm.DB) DamageReportRepository {
	return &damageReportRepo{db: db}
}

// newestFirst 按创建时间倒序，时间相同按 ID 倒序，保证多次查询结果一致
const newestFirst = "created_at DESC, id DESC"

func (r *damageReportRepo) Create(ctx context.Context, report *model.DamageReport) error {
	return r.db.WithContext(ctx).Create(report).Error
}

func (r *damageReportRepo) GetByID(ctx context.Context, id string) (*model.DamageReport, error) {
	var report model.DamageReport
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&report).Error
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *damageReportRepo) GetByImagePath(ctx context.Context, imagePath string) (*model.DamageReport, error) {
	var report model.DamageReport
	err := r.db.WithContext(ctx).
		Where("image_path = ?", imagePath).
		Order(newestFirst).
		First(&report).Error
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *damageReportRepo) List(ctx context.Context) ([]model.DamageReport, error) {
	var reports []model.DamageReport
	if err := r.db.WithContext(ctx).Order(newestFirst).Find(&reports).Error; err != nil {
		return nil, err
	}
	return reports, nil
}

func (r *damageReportRepo) ListByCitizen(ctx context.Context, citizenID string) ([]model.DamageReport, error) {
	var reports []model.DamageReport
	err := r.db.WithContext(ctx).
		Where("citizen_id = ?", citizenID).
		Order(newestFirst).
		Find(&reports).Error
	if err != nil {
		return nil, err
	}
	return reports, nil
}

func (r *damageReportRepo) Update(ctx context.Context, report *model.DamageReport) error {
	return r.db.WithContext(ctx).Save(report).Error
}
