package healthapi

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"mainframe-health/internal/adapters/rules"
	"mainframe-health/internal/domain/model"
)

// fakeFetcher 是内存数据源，err 非空时所有查询统一失败。
type fakeFetcher struct {
	ruleValues []model.RuleValueRecord
	contexts   []model.ContextRow
	components []model.ComponentRecord
	parts      []model.ComponentPart
	objects    []model.ComponentObject
	probe      model.ProbeStatus
	err        error

	lastQuery model.RuleValueQuery
}

func (f *fakeFetcher) QueryRuleValues(_ context.Context, q model.RuleValueQuery) ([]model.RuleValueRecord, error) {
	f.lastQuery = q
	if f.err != nil {
		return nil, f.err
	}
	return f.ruleValues, nil
}

func (f *fakeFetcher) QueryContext(context.Context, int, int) ([]model.ContextRow, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.contexts, nil
}

func (f *fakeFetcher) QueryComponents(context.Context, string) ([]model.ComponentRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.components, nil
}

func (f *fakeFetcher) QueryComponentParts(context.Context, string) ([]model.ComponentPart, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.parts, nil
}

func (f *fakeFetcher) QueryComponentObjects(context.Context, string, string) ([]model.ComponentObject, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.objects, nil
}

func (f *fakeFetcher) Probe(context.Context) (model.ProbeStatus, error) {
	if f.err != nil {
		return model.ProbeStatus{}, f.err
	}
	return f.probe, nil
}

func newTestService(f *fakeFetcher) *Service {
	return NewService(f, &rules.LoadedBundles{
		Matrix:       rules.DefaultMatrixBundle(),
		MatrixSHA256: "builtin",
		Impact:       rules.DefaultImpactBundle(),
		ImpactSHA256: "builtin",
	})
}

func TestShowSystems_EnvelopeAndDefaults(t *testing.T) {
	fetch := &fakeFetcher{ruleValues: []model.RuleValueRecord{
		{SystemID: "SYS1", RuleGroup: "DB2Z", RuleLevel: 3},
		{SystemID: "SYS2", RuleGroup: "LPAR", RuleLevel: 1},
	}}
	api := newTestService(fetch)

	got := api.ShowSystems(context.Background(), 0)
	if !got.OK || got.Error != "" {
		t.Fatalf("envelope=%+v, want ok", got.Envelope)
	}
	if got.Days != DefaultHealthDays {
		t.Fatalf("days=%d, want default %d", got.Days, DefaultHealthDays)
	}
	if fetch.lastQuery.Days != DefaultHealthDays {
		t.Fatalf("fetch days=%d, want %d", fetch.lastQuery.Days, DefaultHealthDays)
	}
	if len(got.Systems) != 2 || got.TotalSystems != 2 || got.TotalRecords != 2 {
		t.Fatalf("systems=%d total_systems=%d total=%d", len(got.Systems), got.TotalSystems, got.TotalRecords)
	}
	// 每个系统给概览字段，SYS1 的严重问题计入 critical_issues。
	sys1 := got.Systems[0]
	if sys1.SystemID != "SYS1" || sys1.TotalRecords != 1 || sys1.CriticalIssues != 1 || sys1.Warnings != 0 {
		t.Fatalf("sys1 overview=%+v", sys1)
	}
}

func TestShowSystems_FetchErrorYieldsFailedEnvelope(t *testing.T) {
	api := newTestService(&fakeFetcher{err: errors.New("db locked")})

	got := api.ShowSystems(context.Background(), 7)
	if got.OK {
		t.Fatalf("ok=true, want false")
	}
	if got.Error != "db locked" {
		t.Fatalf("error=%q, want db locked", got.Error)
	}
	if len(got.Systems) != 0 {
		t.Fatalf("systems=%d, want 0 on failure", len(got.Systems))
	}
}

func TestShowSystems_DaysOutOfRange(t *testing.T) {
	api := newTestService(&fakeFetcher{})

	for _, days := range []int{-1, 366} {
		got := api.ShowSystems(context.Background(), days)
		if got.OK {
			t.Fatalf("days=%d: ok=true, want validation failure", days)
		}
	}
}

func TestSystemHealth_RequiresAndNormalizesSystemID(t *testing.T) {
	fetch := &fakeFetcher{}
	api := newTestService(fetch)

	missing := api.SystemHealth(context.Background(), "  ", 7)
	if missing.OK {
		t.Fatalf("ok=true for empty system_id")
	}

	got := api.SystemHealth(context.Background(), "sys1", 7)
	if !got.OK {
		t.Fatalf("envelope=%+v", got.Envelope)
	}
	if got.SystemID != "SYS1" || fetch.lastQuery.SystemID != "SYS1" {
		t.Fatalf("system_id=%s fetch=%s, want SYS1", got.SystemID, fetch.lastQuery.SystemID)
	}
}

func TestSystemHealth_SummaryPercentages(t *testing.T) {
	fetch := &fakeFetcher{ruleValues: []model.RuleValueRecord{
		{SystemID: "SYS1", RuleGroup: "DB2Z", RuleLevel: 3},
		{SystemID: "SYS1", RuleGroup: "DASD", RuleLevel: 2},
		{SystemID: "SYS1", RuleGroup: "LPAR", RuleLevel: 1},
		{SystemID: "SYS1", RuleGroup: "LPAR", RuleLevel: 1},
	}}
	api := newTestService(fetch)

	got := api.SystemHealth(context.Background(), "SYS1", 7)
	if got.Summary.Total != 4 || got.Summary.Critical != 1 {
		t.Fatalf("summary=%+v", got.Summary)
	}
	if got.Percentages.Critical != 25.0 || got.Percentages.Good != 50.0 {
		t.Fatalf("percentages=%+v", got.Percentages)
	}
}

func TestAllSystemsHealth_SummaryMapAndDetail(t *testing.T) {
	fetch := &fakeFetcher{ruleValues: []model.RuleValueRecord{
		{SystemID: "SYS1", RuleGroup: "DB2Z", RuleLevel: 3},
		{SystemID: "SYS1", RuleGroup: "DASD", RuleLevel: 2},
		{SystemID: "SYS2", RuleGroup: "LPAR", RuleLevel: 1},
	}}
	api := newTestService(fetch)

	got := api.AllSystemsHealth(context.Background(), 7, 0)
	if !got.OK {
		t.Fatalf("envelope=%+v", got.Envelope)
	}
	// 系统汇总是以 system_id 为键的映射，不是数组。
	if len(got.SystemsSummary) != 2 {
		t.Fatalf("systems_summary=%+v, want 2 entries", got.SystemsSummary)
	}
	sys1 := got.SystemsSummary["SYS1"]
	if sys1.Critical != 1 || sys1.Warning != 1 || sys1.Total != 2 {
		t.Fatalf("SYS1 rollup=%+v", sys1)
	}
	if len(got.DetailedData) != 3 {
		t.Fatalf("detailed_data=%d, want 3 (system, rule_group) pairs", len(got.DetailedData))
	}
	if got.MaxRows != DefaultAllSystemsMaxRows || fetch.lastQuery.MaxRows != DefaultAllSystemsMaxRows {
		t.Fatalf("max_rows=%d fetch=%d", got.MaxRows, fetch.lastQuery.MaxRows)
	}
}

func TestProblemAreas_PushesMinLevelDown(t *testing.T) {
	fetch := &fakeFetcher{}
	api := newTestService(fetch)

	got := api.ProblemAreas(context.Background(), 0, 0)
	if !got.OK {
		t.Fatalf("envelope=%+v", got.Envelope)
	}
	if fetch.lastQuery.MinLevel != 2 {
		t.Fatalf("min_level=%d, want 2", fetch.lastQuery.MinLevel)
	}
}

func TestManagementSummary_UsesImpactBundle(t *testing.T) {
	fetch := &fakeFetcher{ruleValues: []model.RuleValueRecord{
		{SystemID: "SYS1", RuleGroup: "DB2Z", RuleLevel: 3},
	}}
	api := newTestService(fetch)

	got := api.ManagementSummary(context.Background(), "", 0)
	if !got.OK {
		t.Fatalf("envelope=%+v", got.Envelope)
	}
	if got.ExecutiveSummary.RiskLevel != "LOW" {
		t.Fatalf("risk=%s, want LOW", got.ExecutiveSummary.RiskLevel)
	}
	if len(got.BusinessIssues) != 1 || got.BusinessIssues[0].DisplayName != "Database Performance" {
		t.Fatalf("business_issues=%+v", got.BusinessIssues)
	}
}

func TestDiscoverContext_GroupsBySystem(t *testing.T) {
	fetch := &fakeFetcher{contexts: []model.ContextRow{
		{SystemID: "SYS1", LPARName: "LP1", ProcessorType: "CP", Count: 4},
		{SystemID: "SYS1", LPARName: "LP2", ProcessorType: "CP", Count: 9},
	}}
	api := newTestService(fetch)

	got := api.DiscoverContext(context.Background(), 0, 0)
	if got.Days != DefaultDiscoverDays {
		t.Fatalf("days=%d, want %d", got.Days, DefaultDiscoverDays)
	}
	if len(got.Rows) != 2 || len(got.Systems) != 1 {
		t.Fatalf("rows=%d systems=%d", len(got.Rows), len(got.Systems))
	}
	if got.Systems[0].Configurations[0].LPARName != "LP2" {
		t.Fatalf("first config=%+v, want most active LP2", got.Systems[0].Configurations[0])
	}
}

func TestFindComponents_RecommendationsForMissingEssentials(t *testing.T) {
	fetch := &fakeFetcher{components: []model.ComponentRecord{
		{Name: "DB2", Status: "I"},
		{Name: "KPMDB2", Status: ""},
		{Name: "CP_DB2", Status: ""},
	}}
	api := newTestService(fetch)

	got := api.FindComponents(context.Background(), "DB2")
	if !got.OK {
		t.Fatalf("envelope=%+v", got.Envelope)
	}
	if got.Technology != "DB2" {
		t.Fatalf("technology=%s, want DB2", got.Technology)
	}
	// 切面分组按已装/未装拆开：装好的 DB2 不能混进未装视图。
	if len(got.InstalledByAspect["Core_Component"]) != 1 {
		t.Fatalf("installed_by_aspect=%+v", got.InstalledByAspect)
	}
	if len(got.NotInstalledByAspect["Performance_Monitoring"]) != 1 ||
		len(got.NotInstalledByAspect["Capacity_Planning"]) != 1 {
		t.Fatalf("not_installed_by_aspect=%+v", got.NotInstalledByAspect)
	}
	if len(got.NotInstalledByAspect["Core_Component"]) != 0 {
		t.Fatalf("installed DB2 leaked into not_installed_by_aspect: %+v", got.NotInstalledByAspect)
	}
	// KPMDB2 是 ESSENTIAL 且未安装 -> 建议；CP_DB2 只是 USEFUL -> 不建议。
	if len(got.Recommendations) != 1 || got.Recommendations[0].Component != "KPMDB2" {
		t.Fatalf("recommendations=%+v", got.Recommendations)
	}
	if got.Recommendations[0].Priority != "ESSENTIAL" {
		t.Fatalf("priority=%s, want ESSENTIAL", got.Recommendations[0].Priority)
	}
}

func TestFindComponents_SearchTermRequired(t *testing.T) {
	api := newTestService(&fakeFetcher{})
	if got := api.FindComponents(context.Background(), "  "); got.OK {
		t.Fatalf("ok=true for empty search term")
	}
}

func TestComponentRecommendations_DefaultFocus(t *testing.T) {
	api := newTestService(&fakeFetcher{})

	got := api.ComponentRecommendations(context.Background(), "")
	if !got.OK {
		t.Fatalf("envelope=%+v", got.Envelope)
	}
	if got.FocusArea != "performance" {
		t.Fatalf("focus_area=%s, want performance fallback", got.FocusArea)
	}
}

func TestComponentObjects_GroupedByPart(t *testing.T) {
	fetch := &fakeFetcher{objects: []model.ComponentObject{
		{ComponentName: "KPMDB2", PartName: "TABLES", ObjectName: "T1"},
		{ComponentName: "KPMDB2", PartName: "TABLES", ObjectName: "T2"},
		{ComponentName: "KPMDB2", PartName: "REPORTS", ObjectName: "R1"},
	}}
	api := newTestService(fetch)

	got := api.ComponentObjects(context.Background(), "KPMDB2", "")
	if !got.OK || got.Total != 3 {
		t.Fatalf("result=%+v", got)
	}
	if len(got.ByPart["TABLES"]) != 2 || len(got.ByPart["REPORTS"]) != 1 {
		t.Fatalf("by_part=%+v", got.ByPart)
	}

	if missing := api.ComponentObjects(context.Background(), "", ""); missing.OK {
		t.Fatalf("ok=true for empty component name")
	}
}

func TestStaticOperations(t *testing.T) {
	api := newTestService(&fakeFetcher{probe: model.ProbeStatus{CurrentDate: "2026-08-25", RuleValueCount: 7}})
	ctx := context.Background()

	hc := api.Healthcheck(ctx)
	if !hc.OK || hc.Status != "ok" || hc.RuleValues != 7 {
		t.Fatalf("healthcheck=%+v", hc)
	}

	manifest := api.SchemaManifest(ctx)
	if !manifest.OK || len(manifest.Tables) == 0 {
		t.Fatalf("manifest=%+v", manifest)
	}

	levels := api.ExplainHealthLevels(ctx)
	if !levels.OK || len(levels.Levels) != 5 {
		t.Fatalf("levels=%d, want 5", len(levels.Levels))
	}
	if levels.Levels[0].Level != 0 || levels.Levels[4].Level != 4 {
		t.Fatalf("level range=%+v", levels.Levels)
	}
}

// 下游客户端按字段名解析这些信封，序列化后的键名属于对外契约。
func TestEnvelopeFieldNames(t *testing.T) {
	fetch := &fakeFetcher{
		ruleValues: []model.RuleValueRecord{{SystemID: "SYS1", RuleGroup: "DB2Z", RuleLevel: 3}},
		components: []model.ComponentRecord{{Name: "DB2", Status: "I"}},
	}
	api := newTestService(fetch)
	ctx := context.Background()

	cases := []struct {
		name string
		v    any
		keys []string
	}{
		{"show_systems", api.ShowSystems(ctx, 7),
			[]string{`"total_systems"`, `"critical_issues"`, `"warnings"`}},
		{"all_systems_health", api.AllSystemsHealth(ctx, 7, 0),
			[]string{`"systems_summary":{"SYS1"`, `"detailed_data"`}},
		{"management_summary", api.ManagementSummary(ctx, "", 7),
			[]string{`"executive_summary"`, `"risk_level"`, `"business_issues"`}},
		{"find_components", api.FindComponents(ctx, "DB2"),
			[]string{`"installed_by_aspect"`, `"not_installed_by_aspect"`}},
	}
	for _, c := range cases {
		raw, err := json.Marshal(c.v)
		if err != nil {
			t.Fatalf("%s: marshal: %v", c.name, err)
		}
		for _, key := range c.keys {
			if !strings.Contains(string(raw), key) {
				t.Fatalf("%s: output %s missing %s", c.name, raw, key)
			}
		}
	}
}

func TestHealthcheck_DegradedOnProbeFailure(t *testing.T) {
	api := newTestService(&fakeFetcher{err: errors.New("io error")})

	got := api.Healthcheck(context.Background())
	if got.OK || got.Status != "degraded" {
		t.Fatalf("healthcheck=%+v, want degraded", got)
	}
}
