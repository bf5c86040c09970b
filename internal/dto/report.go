package dto

import "io"

// ── 损伤报告模块 DTO ──

// FileUpload multipart 中的上传文件
type FileUpload struct {
	Filename string
	Body     io.Reader
}

// SubmitReportRequest 提交损伤报告
// Image 为 nil 表示请求中没有 image 字段
type SubmitReportRequest struct {
	Image     *FileUpload
	Location  string
	Latitude  *float64
	Longitude *float64
}

// VerifyReportRequest 审核报告
// status 的取值由 Service 校验，便于返回统一的 InvalidStatus 错误
type VerifyReportRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

// AssignWorkRequest 派工
type AssignWorkRequest struct {
	ContractorID string `json:"contractor_id"`
}

// UploadWorkNoticeRequest 上传施工通告 PDF
// PDF 为 nil 表示请求中没有 pdf 字段
type UploadWorkNoticeRequest struct {
	PDF *FileUpload
}
