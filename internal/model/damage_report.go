package model

// ReportStatus 损伤报告状态
//
//	submitted → approved | rejected
//	任意状态 → assigned
//
// resolved 仅作保留，目前没有操作会进入该状态。
type ReportStatus string

const (
	StatusSubmitted ReportStatus = "submitted"
	StatusApproved  ReportStatus = "approved"
	StatusRejected  ReportStatus = "rejected"
	StatusAssigned  ReportStatus = "assigned"
	StatusResolved  ReportStatus = "resolved"
)

// IsVerdict 是否为审核结论（approved / rejected）
func (s ReportStatus) IsVerdict() bool {
	return s == StatusApproved || s == StatusRejected
}

// Severity 严重程度，提交时由置信度一次性推导，之后不再重算
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// 严重程度阈值（闭区间下界）
const (
	HighSeverityThreshold   = 0.8
	MediumSeverityThreshold = 0.5
)

// SeverityFromConfidence 根据识别置信度推导严重程度
func SeverityFromConfidence(confidence float64) Severity {
	switch {
	case confidence >= HighSeverityThreshold:
		return SeverityHigh
	case confidence >= MediumSeverityThreshold:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// DamageReport 损伤报告表，对应 damage_reports（damage 存储）
// ImagePath 只保存文件名，读取时拼接到 images 目录下
type DamageReport struct {
	ID                 string       `gorm:"type:varchar(36);primaryKey"                json:"id"`
	CitizenID          string       `gorm:"type:varchar(36);not null;index"           json:"citizen_id"`
	ImagePath          string       `gorm:"type:varchar(255);not null;index"          json:"image_path"`
	Location           string       `gorm:"type:varchar(255)"                         json:"location"`
	Latitude           *float64     `json:"latitude"`
	Longitude          *float64     `json:"longitude"`
	DetectedDamageType string       `gorm:"type:varchar(50)"                          json:"detected_damage_type"`
	ConfidenceScore    float64      `gorm:"not null;default:0"                        json:"confidence_score"`
	Severity           Severity     `gorm:"type:varchar(20);not null"                 json:"severity"`
	Status             ReportStatus `gorm:"type:varchar(20);not null;default:'submitted'" json:"status"`
	VerifiedBy         *string      `gorm:"type:varchar(36)"                          json:"verified_by,omitempty"`
	ContractorID       *string      `gorm:"type:varchar(36)"                          json:"contractor_id,omitempty"`
	Timestamps
}

// TableName 指定表名
func (DamageReport) TableName() string { return "damage_reports" }
