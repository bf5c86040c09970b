package repository

import "infrawatch/backend/pkg/database"

// Repository 所有 Repository 的聚合入口
// 每个 Repository 绑定到各自的存储，互相之间没有事务
type Repository struct {
	User         UserRepository
	DamageReport DamageReportRepository
	WorkReport   WorkReportRepository
	AuditLog     AuditLogRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(stores *database.Stores) *Repository {
	return &Repository{
		User:         NewUserRepo(stores.Auth),
		DamageReport: NewDamageReportRepo(stores.Damage),
		WorkReport:   NewWorkReportRepo(stores.Work),
		AuditLog:     NewAuditLogRepo(stores.Logs),
	}
}
