package model

import "time"

// Role 角色声明，封闭集合
type Role string

const (
	RoleCitizen  Role = "citizen"
	RoleOfficial Role = "official"
)

// Valid 是否为已知角色
func (r Role) Valid() bool {
	return r == RoleCitizen || r == RoleOfficial
}

// User 身份表，对应 users（auth 存储）
type User struct {
	ID           string    `gorm:"type:varchar(36);primaryKey"             json:"id"`
	Email        string    `gorm:"type:varchar(120);not null;uniqueIndex" json:"email"`
	PasswordHash string    `gorm:"type:varchar(256);not null"             json:"-"`
	Name         string    `gorm:"type:varchar(100);not null"             json:"name"`
	Role         Role      `gorm:"type:varchar(20);not null"              json:"role"`
	Department   *string   `gorm:"type:varchar(50)"                       json:"department,omitempty"`
	CreatedAt    time.Time `gorm:"not null;autoCreateTime"                json:"created_at"`
}

// TableName 指定表名
func (User) TableName() string { return "users" }
