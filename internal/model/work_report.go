package model

import "time"

// WorkStatusPending 施工通告入库后的初始状态
const WorkStatusPending = "pending"

// WorkReport 施工通告表，对应 work_reports（work 存储）
// 仅由 PDF 解析成功后创建，notice_id 全局唯一
type WorkReport struct {
	ID                string    `gorm:"type:varchar(36);primaryKey"            json:"id"`
	NoticeID          string    `gorm:"type:varchar(50);not null;uniqueIndex" json:"notice_id"`
	Department        string    `gorm:"type:varchar(50);not null"             json:"department"`
	WorkType          string    `gorm:"type:varchar(100)"                     json:"work_type"`
	Location          string    `gorm:"type:varchar(255)"                     json:"location"`
	ExecutingAgency   string    `gorm:"type:varchar(100)"                     json:"executing_agency"`
	ContractorContact string    `gorm:"type:varchar(50)"                      json:"contractor_contact"`
	Status            string    `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	PDFFilename       string    `gorm:"type:varchar(255)"                     json:"pdf_filename"`
	CreatedAt         time.Time `gorm:"not null;autoCreateTime"               json:"created_at"`
}

// TableName 指定表名
func (WorkReport) TableName() string { return "work_reports" }
