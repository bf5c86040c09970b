package model

import "time"

// AuditLog 操作审计表，对应 audit_logs（logs 存储），只追加
type AuditLog struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"     json:"id"`
	UserID    *string   `gorm:"type:varchar(36);index"       json:"user_id,omitempty"`
	Action    string    `gorm:"type:varchar(255);not null"   json:"action"`
	Timestamp time.Time `gorm:"not null;autoCreateTime;index" json:"timestamp"`
	IPAddress string    `gorm:"type:varchar(50)"             json:"ip_address"`
}

// TableName 指定表名
func (AuditLog) TableName() string { return "audit_logs" }
