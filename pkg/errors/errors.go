package errors

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// pgUniqueViolation PostgreSQL 唯一约束冲突错误码
const pgUniqueViolation = "23505"

// IsUniqueViolation 判断是否为唯一约束冲突
// 覆盖 gorm 翻译后的 ErrDuplicatedKey、PostgreSQL 原始错误与 SQLite 错误文本
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
