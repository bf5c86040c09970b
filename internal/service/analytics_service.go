package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"infrawatch/backend/internal/dto"
	"infrawatch/backend/internal/model"
	"infrawatch/backend/internal/repository"
)

var ErrExportGenerateFail = errors.New("生成 Excel 文件失败")

// AnalyticsService 承包商、片区与统计看板
//
// 承包商、片区与看板数据目前是固定值，尚无对应的数据表；
// 导出则基于真实的损伤报告。
type AnalyticsService interface {
	Contractors(ctx context.Context) []dto.ContractorResponse
	Sectors(ctx context.Context) []dto.SectorResponse
	Analytics(ctx context.Context) *dto.AnalyticsResponse
	// ExportReports 导出全部损伤报告为 Excel，返回内容与建议文件名
	ExportReports(ctx context.Context) (*bytes.Buffer, string, error)
}

type analyticsService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewAnalyticsService 创建 AnalyticsService 实例
func NewAnalyticsService(repo *repository.Repository, logger *zap.Logger) AnalyticsService {
	return &analyticsService{repo: repo, logger: logger, now: time.Now}
}

func (s *analyticsService) Contractors(_ context.Context) []dto.ContractorResponse {
	return []dto.ContractorResponse{
		{ID: "C1", Name: "ABC Road Works", Specialization: "Potholes", Rating: 4.5},
		{ID: "C2", Name: "XYZ Infra", Specialization: "Resurfacing", Rating: 4.8},
		{ID: "C3", Name: "City Builders", Specialization: "General", Rating: 4.2},
	}
}

func (s *analyticsService) Sectors(_ context.Context) []dto.SectorResponse {
	return []dto.SectorResponse{
		{ID: "S1", Name: "Sector 1 (North)"},
		{ID: "S2", Name: "Sector 2 (South)"},
		{ID: "S3", Name: "Sector 3 (East)"},
		{ID: "S4", Name: "Sector 4 (West)"},
	}
}

func (s *analyticsService) Analytics(_ context.Context) *dto.AnalyticsResponse {
	return &dto.AnalyticsResponse{
		Summary: dto.AnalyticsSummary{
			TotalReports:     156,
			CompletedRepairs: 142,
			AvgRepairTime:    2.8,
			TotalSpent:       "2.4M",
		},
		RepairTime: []dto.SectorRepairTime{
			{Sector: "S1", Days: 3.2},
			{Sector: "S2", Days: 2.1},
			{Sector: "S3", Days: 4.5},
			{Sector: "S4", Days: 1.8},
		},
		Contractors: []dto.ContractorScore{
			{Name: "ABC Road Works", Score: 92},
			{Name: "XYZ Infra", Score: 88},
			{Name: "City Builders", Score: 75},
		},
		HealthIndex: []dto.SectorHealthIndex{
			{Sector: "S1", Index: 8.5, Status: "Good"},
			{Sector: "S2", Index: 6.0, Status: "Fair"},
			{Sector: "S3", Index: 4.5, Status: "Poor"},
			{Sector: "S4", Index: 9.0, Status: "Excellent"},
		},
	}
}

// ═══════════════════════════════════════════════════════════
// ExportReports 导出损伤报告
// ═══════════════════════════════════════════════════════════
//
// Sheet "Reports"：每行一条报告，按创建时间倒序
// Sheet "Summary"：按状态、严重程度计数

var reportHeaders = []string{
	"ID", "Created At", "Location", "Latitude", "Longitude",
	"Damage Type", "Confidence", "Severity", "Status", "Verified By", "Contractor",
}

func (s *analyticsService) ExportReports(ctx context.Context) (*bytes.Buffer, string, error) {
	reports, err := s.repo.DamageReport.List(ctx)
	if err != nil {
		s.logger.Error("查询损伤报告失败", zap.Error(err))
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Reports"
	f.SetSheetName("Sheet1", sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	for i, h := range reportHeaders {
		f.SetCellValue(sheet, cell(colName(i), 1), h)
	}
	f.SetCellStyle(sheet, "A1", cell(colName(len(reportHeaders)-1), 1), headerStyle)
	f.SetColWidth(sheet, "A", "A", 38)
	f.SetColWidth(sheet, "B", "C", 22)
	f.SetColWidth(sheet, "F", "F", 16)

	statusCount := make(map[model.ReportStatus]int)
	severityCount := make(map[model.Severity]int)

	for i, r := range reports {
		row := i + 2
		values := []interface{}{
			r.ID,
			r.CreatedAt.UTC().Format(time.RFC3339),
			r.Location,
			floatOrEmpty(r.Latitude),
			floatOrEmpty(r.Longitude),
			r.DetectedDamageType,
			r.ConfidenceScore,
			string(r.Severity),
			string(r.Status),
			stringOrEmpty(r.VerifiedBy),
			stringOrEmpty(r.ContractorID),
		}
		for j, v := range values {
			f.SetCellValue(sheet, cell(colName(j), row), v)
		}
		statusCount[r.Status]++
		severityCount[r.Severity]++
	}

	// 汇总
	const summary = "Summary"
	if _, err := f.NewSheet(summary); err != nil {
		s.logger.Error("创建汇总 Sheet 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	f.SetCellValue(summary, "A1", "Total Reports")
	f.SetCellValue(summary, "B1", len(reports))

	row := 3
	f.SetCellValue(summary, cell("A", row), "Status")
	f.SetCellValue(summary, cell("B", row), "Count")
	for _, st := range []model.ReportStatus{
		model.StatusSubmitted, model.StatusApproved, model.StatusRejected, model.StatusAssigned, model.StatusResolved,
	} {
		row++
		f.SetCellValue(summary, cell("A", row), string(st))
		f.SetCellValue(summary, cell("B", row), statusCount[st])
	}

	row += 2
	f.SetCellValue(summary, cell("A", row), "Severity")
	f.SetCellValue(summary, cell("B", row), "Count")
	for _, sv := range []model.Severity{model.SeverityHigh, model.SeverityMedium, model.SeverityLow} {
		row++
		f.SetCellValue(summary, cell("A", row), string(sv))
		f.SetCellValue(summary, cell("B", row), severityCount[sv])
	}
	f.SetColWidth(summary, "A", "A", 18)

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("damage_reports_%s.xlsx", s.now().Format("20060102"))
	return buf, filename, nil
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

func floatOrEmpty(v *float64) interface{} {
	if v == nil {
		return ""
	}
	return *v
}

func stringOrEmpty(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
