package dto

// ── 承包商 / 片区 / 统计（固定数据） ──

// ContractorResponse 承包商
type ContractorResponse struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Specialization string  `json:"specialization"`
	Rating         float64 `json:"rating"`
}

// SectorResponse 片区
type SectorResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AnalyticsResponse 统计看板
type AnalyticsResponse struct {
	Summary     AnalyticsSummary    `json:"summary"`
	RepairTime  []SectorRepairTime  `json:"repair_time"`
	Contractors []ContractorScore   `json:"contractors"`
	HealthIndex []SectorHealthIndex `json:"health_index"`
}

// AnalyticsSummary 汇总指标
type AnalyticsSummary struct {
	TotalReports     int     `json:"total_reports"`
	CompletedRepairs int     `json:"completed_repairs"`
	AvgRepairTime    float64 `json:"avg_repair_time"`
	TotalSpent       string  `json:"total_spent"`
}

// SectorRepairTime 片区平均修复天数
type SectorRepairTime struct {
	Sector string  `json:"sector"`
	Days   float64 `json:"days"`
}

// ContractorScore 承包商评分
type ContractorScore struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// SectorHealthIndex 片区道路健康指数
type SectorHealthIndex struct {
	Sector string  `json:"sector"`
	Index  float64 `json:"index"`
	Status string  `json:"status"`
}
