package model

import "testing"

func TestSeverityFromConfidence(t *testing.T) {
	tests := []struct {
		confidence float64
		want       Severity
	}{
		{1.0, SeverityHigh},
		{0.95, SeverityHigh},
		{0.8, SeverityHigh},
		{0.7999, SeverityMedium},
		{0.65, SeverityMedium},
		{0.5, SeverityMedium},
		{0.4999, SeverityLow},
		{0.1, SeverityLow},
		{0, SeverityLow},
	}
	for _, tt := range tests {
		if got := SeverityFromConfidence(tt.confidence); got != tt.want {
			t.Errorf("SeverityFromConfidence(%v) = %s，期望 %s", tt.confidence, got, tt.want)
		}
	}
}

func TestReportStatus_IsVerdict(t *testing.T) {
	for _, s := range []ReportStatus{StatusApproved, StatusRejected} {
		if !s.IsVerdict() {
			t.Errorf("%s 应为审核结论", s)
		}
	}
	for _, s := range []ReportStatus{StatusSubmitted, StatusAssigned, StatusResolved, "maybe", ""} {
		if s.IsVerdict() {
			t.Errorf("%q 不应为审核结论", s)
		}
	}
}

func TestRole_Valid(t *testing.T) {
	if !RoleCitizen.Valid() || !RoleOfficial.Valid() {
		t.Error("citizen/official 应为合法角色")
	}
	if Role("admin").Valid() {
		t.Error("admin 不应为合法角色")
	}
}
