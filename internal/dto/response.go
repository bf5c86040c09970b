package dto

// ReportedByCitizen 报告来源的展示文案，暂不关联用户表
const ReportedByCitizen = "Citizen"

// ReportResponse 损伤报告对外投影
// image_url 指向受文件访问控制保护的下载地址
type ReportResponse struct {
	ID         string   `json:"id"`
	Location   string   `json:"location"`
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
	DamageType string   `json:"damage_type"`
	Confidence float64  `json:"confidence"`
	Severity   string   `json:"severity"`
	Status     string   `json:"status"`
	CreatedAt  string   `json:"created_at"`
	ImageURL   string   `json:"image_url"`
	ReportedBy string   `json:"reported_by"`
}

// SubmitReportResponse 提交报告成功
type SubmitReportResponse struct {
	ReportID string `json:"report_id"`
}

// WorkReportResponse 施工通告
type WorkReportResponse struct {
	ID                string `json:"id"`
	NoticeID          string `json:"notice_id"`
	Department        string `json:"department"`
	WorkType          string `json:"work_type"`
	Location          string `json:"location"`
	ExecutingAgency   string `json:"executing_agency"`
	ContractorContact string `json:"contractor_contact"`
	Status            string `json:"status"`
	PDFFilename       string `json:"pdf_filename"`
	CreatedAt         string `json:"created_at"`
}

// StatusEvent 报告状态变更通知
type StatusEvent struct {
	Type     string `json:"type"`
	ReportID string `json:"report_id"`
	Status   string `json:"status"`
}
