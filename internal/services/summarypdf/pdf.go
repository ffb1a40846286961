package summarypdf

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	sqliteadapter "mainframe-health/internal/adapters/store/sqlite"
	"mainframe-health/internal/platform/hash"
	"mainframe-health/internal/services/healthapi"

	"github.com/phpdave11/gofpdf"
)

// 管理层摘要 PDF：把管理层摘要和问题优先级两份报表固化成可归档的文件，
// 写盘后计算 SHA-256 并登记到 reports 表。
// 报表内容全部是 ASCII，内置 Helvetica 字体即可，不需要加载 UTF-8 字体。

type Options struct {
	DBPath   string
	Days     int
	SystemID string
}

type Result struct {
	ReportID    string `json:"report_id"`
	PDFPath     string `json:"pdf_path"`
	PDFSHA256   string `json:"pdf_sha256"`
	GeneratedAt int64  `json:"generated_at"`
}

const generatorVersion = "summarypdf-0.1.0"

// Generate 生成管理层摘要 PDF 并登记。摘要或问题报表失败时直接报错，不产出半成品文件。
func Generate(ctx context.Context, store *sqliteadapter.Store, api *healthapi.Service, opts Options) (*Result, error) {
	dbPath := strings.TrimSpace(opts.DBPath)
	if dbPath == "" {
		return nil, errors.New("db path is required")
	}

	summary := api.ManagementSummary(ctx, opts.SystemID, opts.Days)
	if !summary.OK {
		return nil, fmt.Errorf("management summary: %s", summary.Error)
	}
	problems := api.ProblemAreas(ctx, opts.Days, 0)
	if !problems.OK {
		return nil, fmt.Errorf("problem areas: %s", problems.Error)
	}

	now := time.Now().Unix()
	reportDir := filepath.Join(filepath.Dir(dbPath), "reports")
	if err := os.MkdirAll(reportDir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir reports: %w", err)
	}

	scope := "all-systems"
	if sysID := strings.TrimSpace(summary.SystemID); sysID != "" {
		scope = sysID
	}
	pdfPath := filepath.Join(reportDir, fmt.Sprintf("%s_summary_%d.pdf", scope, now))

	pdf := buildPDF(summary, problems, scope, now)
	if err := pdf.OutputFileAndClose(pdfPath); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}

	sum, _, err := hash.File(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("sha256 pdf: %w", err)
	}

	reportID, err := store.SaveReport(ctx, "management_summary_pdf", pdfPath, sum, generatorVersion)
	if err != nil {
		return nil, fmt.Errorf("save report: %w", err)
	}

	return &Result{
		ReportID:    reportID,
		PDFPath:     pdfPath,
		PDFSHA256:   sum,
		GeneratedAt: now,
	}, nil
}

func buildPDF(summary *healthapi.ManagementSummaryResult, problems *healthapi.ProblemAreasResult, scope string, generatedAt int64) *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(14, 14, 14)
	pdf.SetAutoPageBreak(true, 14)
	pdf.SetTitle("Mainframe Health - Management Summary", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 9, "Mainframe Health - Management Summary", "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(60, 60, 60)
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated at: %s", time.Unix(generatedAt, 0).Format("2006-01-02 15:04:05")), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Scope: %s, window: last %d days", scope, summary.Days), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	sectionTitle(pdf, "1. Risk Summary")
	exec := summary.ExecutiveSummary
	kv(pdf, "Risk Level", exec.RiskLevel)
	kv(pdf, "Critical Issues", fmt.Sprintf("%d", exec.TotalCriticalIssues))
	kv(pdf, "Warning Issues", fmt.Sprintf("%d", exec.TotalWarningIssues))
	kv(pdf, "Systems Affected", fmt.Sprintf("%d", exec.SystemsAffected))
	pdf.Ln(2)

	sectionTitle(pdf, "2. Business Issues")
	if len(summary.BusinessIssues) == 0 {
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(20, 20, 20)
		pdf.CellFormat(0, 5.2, "No business-impacting issues in the reporting window.", "", 1, "L", false, 0, "")
	}
	for _, issue := range summary.BusinessIssues {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetTextColor(30, 30, 30)
		pdf.CellFormat(0, 5.5, fmt.Sprintf("%s on %s (critical=%d, warnings=%d)", issue.DisplayName, issue.SystemID, issue.Critical, issue.Warnings), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(20, 20, 20)
		pdf.MultiCell(0, 4.5, fmt.Sprintf("Impact: %s. Urgency: %s. Resolution: %s.", issue.Impact, issue.Urgency, issue.ResolutionTime), "", "L", false)
		pdf.Ln(1)
	}
	pdf.Ln(1)

	sectionTitle(pdf, "3. Recommendations")
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(20, 20, 20)
	for _, rec := range summary.Recommendations {
		pdf.MultiCell(0, 4.5, "- "+rec, "", "L", false)
	}
	pdf.Ln(2)

	sectionTitle(pdf, "4. Problem Breakdown")
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetTextColor(30, 30, 30)
	pdf.CellFormat(34, 5.5, "System", "B", 0, "L", false, 0, "")
	pdf.CellFormat(60, 5.5, "Rule Group", "B", 0, "L", false, 0, "")
	pdf.CellFormat(24, 5.5, "Critical", "B", 0, "R", false, 0, "")
	pdf.CellFormat(24, 5.5, "Warnings", "B", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(20, 20, 20)
	for _, b := range problems.SystemBreakdown {
		pdf.CellFormat(34, 5, b.SystemID, "", 0, "L", false, 0, "")
		pdf.CellFormat(60, 5, b.RuleGroup, "", 0, "L", false, 0, "")
		pdf.CellFormat(24, 5, fmt.Sprintf("%d", b.Critical), "", 0, "R", false, 0, "")
		pdf.CellFormat(24, 5, fmt.Sprintf("%d", b.Warnings), "", 1, "R", false, 0, "")
	}
	pdf.Ln(2)

	sectionTitle(pdf, "5. Top Critical Issues")
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(20, 20, 20)
	if len(problems.TopCriticalIssues) == 0 {
		pdf.CellFormat(0, 5, "No critical issues in the reporting window.", "", 1, "L", false, 0, "")
	}
	for _, issue := range problems.TopCriticalIssues {
		desc := issue.Description
		if strings.TrimSpace(desc) == "" {
			desc = issue.RuleID
		}
		pdf.MultiCell(0, 4.5, fmt.Sprintf("- [%s] level %d on %s (%s): %s", issue.Date, issue.Level, issue.SystemID, issue.RuleGroup, desc), "", "L", false)
	}

	return pdf
}

func sectionTitle(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 7, title, "", 1, "L", false, 0, "")
	pdf.SetDrawColor(200, 200, 200)
	pdf.Line(pdf.GetX(), pdf.GetY(), 200, pdf.GetY())
	pdf.Ln(2)
}

func kv(pdf *gofpdf.Fpdf, key, value string) {
	if strings.TrimSpace(value) == "" {
		value = "-"
	}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetTextColor(30, 30, 30)
	pdf.CellFormat(36, 5.2, key+":", "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(20, 20, 20)
	pdf.MultiCell(0, 5.2, value, "", "L", false)
}
