package bizimpact

import (
	"strings"
	"testing"

	"mainframe-health/internal/adapters/rules"
	"mainframe-health/internal/domain/model"
)

func rv(sys, group string, level int) model.RuleValueRecord {
	return model.RuleValueRecord{SystemID: sys, RuleGroup: group, RuleLevel: level}
}

func TestRiskFor_Thresholds(t *testing.T) {
	// 阈值是严格下界：100 还是 HIGH，101 才是 CRITICAL。
	cases := []struct {
		total int
		want  string
	}{
		{0, RiskLow},
		{10, RiskLow},
		{11, RiskMedium},
		{50, RiskMedium},
		{51, RiskHigh},
		{100, RiskHigh},
		{101, RiskCritical},
	}
	for _, c := range cases {
		if got := RiskFor(c.total); got != c.want {
			t.Fatalf("RiskFor(%d)=%s, want %s", c.total, got, c.want)
		}
	}
}

func TestBuild_TranslationAndFallback(t *testing.T) {
	impact := rules.DefaultImpactBundle()

	rows := []model.RuleValueRecord{
		rv("SYS1", "DB2Z", 3),
		rv("SYS1", "DB2Z", 3),
		rv("SYS2", "UNMAPPED_GROUP", 2),
	}

	got := Build(rows, impact)
	exec := got.ExecutiveSummary
	if exec.TotalCriticalIssues != 2 || exec.TotalWarningIssues != 1 {
		t.Fatalf("totals critical=%d warnings=%d, want 2/1", exec.TotalCriticalIssues, exec.TotalWarningIssues)
	}
	if exec.SystemsAffected != 2 {
		t.Fatalf("systems_affected=%d, want 2", exec.SystemsAffected)
	}

	// DB2Z 有映射；未收录的 rule_group 回退到通用描述，display_name 用原名。
	var db2, unmapped *BusinessIssue
	for i := range got.BusinessIssues {
		switch got.BusinessIssues[i].RuleGroup {
		case "DB2Z":
			db2 = &got.BusinessIssues[i]
		case "UNMAPPED_GROUP":
			unmapped = &got.BusinessIssues[i]
		}
	}
	if db2 == nil || db2.DisplayName != "Database Performance" {
		t.Fatalf("DB2Z issue=%+v, want Database Performance", db2)
	}
	if unmapped == nil || unmapped.DisplayName != "UNMAPPED_GROUP" {
		t.Fatalf("unmapped issue=%+v, want display_name UNMAPPED_GROUP", unmapped)
	}
}

func TestBuild_IssueListCappedButTotalsComplete(t *testing.T) {
	impact := rules.DefaultImpactBundle()

	// 5 个 (系统, 规则组) 组合，展示列表只留 3 个，汇总覆盖全部。
	rows := []model.RuleValueRecord{
		rv("SYS1", "DB2Z", 3),
		rv("SYS2", "DASD", 3),
		rv("SYS3", "LPAR", 3),
		rv("SYS4", "CICS", 3),
		rv("SYS5", "MVS", 3),
	}

	got := Build(rows, impact)
	if len(got.BusinessIssues) != 3 {
		t.Fatalf("business_issues=%d, want 3", len(got.BusinessIssues))
	}
	if got.ExecutiveSummary.TotalCriticalIssues != 5 {
		t.Fatalf("total_critical=%d, want 5", got.ExecutiveSummary.TotalCriticalIssues)
	}
	if got.ExecutiveSummary.SystemsAffected != 5 {
		t.Fatalf("systems_affected=%d, want 5", got.ExecutiveSummary.SystemsAffected)
	}
}

func TestBuild_RecommendationsPerRisk(t *testing.T) {
	impact := rules.DefaultImpactBundle()

	// 无问题 -> LOW，给"继续例行监控"。
	low := Build(nil, impact)
	if low.ExecutiveSummary.RiskLevel != RiskLow {
		t.Fatalf("risk=%s, want LOW", low.ExecutiveSummary.RiskLevel)
	}
	if len(low.Recommendations) == 0 || !strings.Contains(low.Recommendations[0], "routine monitoring") {
		t.Fatalf("low recommendations=%v", low.Recommendations)
	}

	// 有展示问题时追加定向条目，带 display_name 和修复时长。
	rows := []model.RuleValueRecord{rv("SYS1", "DB2Z", 3)}
	withIssue := Build(rows, impact)
	last := withIssue.Recommendations[len(withIssue.Recommendations)-1]
	if !strings.Contains(last, "Database Performance") || !strings.Contains(last, "SYS1") {
		t.Fatalf("targeted recommendation=%q", last)
	}
}
