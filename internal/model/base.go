package model

import "time"

// Timestamps 通用时间字段
// 四类记录分属不同存储，彼此之间只通过字符串 ID 引用，不建外键
type Timestamps struct {
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
