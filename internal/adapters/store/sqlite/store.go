package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"mainframe-health/internal/domain/model"
	"mainframe-health/internal/platform/id"
)

// Store 封装与 SQLite 快照库的读写逻辑。
// 读路径服务于报表计算，写路径服务于快照导入与产物登记。
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// QueryRuleValues 按查询条件读取规则值记录，联查规则定义补齐描述。
// 时间窗口用 SQLite 的 date('now', '-N days') 表达，日期按字符串比较
// （存储格式固定为 YYYY-MM-DD，字典序即时间序）。
func (s *Store) QueryRuleValues(ctx context.Context, q model.RuleValueQuery) ([]model.RuleValueRecord, error) {
	if q.Days <= 0 {
		return nil, fmt.Errorf("query rule values: days must be positive, got %d", q.Days)
	}

	var sb strings.Builder
	sb.WriteString(`
		SELECT rv.system_id, rv.lpar_name, rv.processor_type,
		       rv.rule_id, rv.rule_group, rv.rule_level, rv.date,
		       COALESCE(r.description, '')
		FROM rule_values rv
		LEFT JOIN rules r ON r.rule_id = rv.rule_id
		WHERE rv.date >= date('now', ?)
	`)
	args := []any{fmt.Sprintf("-%d days", q.Days)}

	if q.SystemID != "" {
		sb.WriteString(" AND rv.system_id = ?")
		args = append(args, strings.ToUpper(q.SystemID))
	}
	if q.MinLevel != 0 {
		sb.WriteString(" AND rv.rule_level >= ?")
		args = append(args, q.MinLevel)
	}
	sb.WriteString(" ORDER BY rv.rule_level DESC, rv.date DESC, rv.system_id, rv.rule_id")
	if q.MaxRows > 0 {
		sb.WriteString(" LIMIT ?")
		args = append(args, q.MaxRows)
	}

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("query rule values: %w", err)
	}
	defer rows.Close()

	var out []model.RuleValueRecord
	for rows.Next() {
		var r model.RuleValueRecord
		if err := rows.Scan(&r.SystemID, &r.LPARName, &r.ProcessorType,
			&r.RuleID, &r.RuleGroup, &r.RuleLevel, &r.Date, &r.Description); err != nil {
			return nil, fmt.Errorf("scan rule value: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rule values: %w", err)
	}
	return out, nil
}

// QueryContext 读取发现场景的预聚合行：系统/LPAR/处理器类型组合及记录数。
func (s *Store) QueryContext(ctx context.Context, days, maxRows int) ([]model.ContextRow, error) {
	if days <= 0 {
		return nil, fmt.Errorf("query context: days must be positive, got %d", days)
	}

	query := `
		SELECT system_id, lpar_name, processor_type, COUNT(*)
		FROM rule_values
		WHERE date >= date('now', ?)
		GROUP BY system_id, lpar_name, processor_type
		ORDER BY system_id, lpar_name, processor_type
	`
	args := []any{fmt.Sprintf("-%d days", days)}
	if maxRows > 0 {
		query += " LIMIT ?"
		args = append(args, maxRows)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query context: %w", err)
	}
	defer rows.Close()

	var out []model.ContextRow
	for rows.Next() {
		var r model.ContextRow
		if err := rows.Scan(&r.SystemID, &r.LPARName, &r.ProcessorType, &r.Count); err != nil {
			return nil, fmt.Errorf("scan context row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate context rows: %w", err)
	}
	return out, nil
}

// QueryComponents 读取组件记录。pattern 为空返回全部；
// 非空时对组件名和描述做大小写不敏感的子串匹配。
func (s *Store) QueryComponents(ctx context.Context, pattern string) ([]model.ComponentRecord, error) {
	query := `
		SELECT component_name, status, description, installed_at, installed_by
		FROM components
	`
	var args []any
	if strings.TrimSpace(pattern) != "" {
		query += ` WHERE UPPER(component_name) LIKE ? OR UPPER(description) LIKE ?`
		like := "%" + strings.ToUpper(strings.TrimSpace(pattern)) + "%"
		args = append(args, like, like)
	}
	query += " ORDER BY component_name"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query components: %w", err)
	}
	defer rows.Close()

	var out []model.ComponentRecord
	for rows.Next() {
		var c model.ComponentRecord
		if err := rows.Scan(&c.Name, &c.Status, &c.Description, &c.InstalledAt, &c.InstalledBy); err != nil {
			return nil, fmt.Errorf("scan component: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate components: %w", err)
	}
	return out, nil
}

// QueryComponentParts 读取某组件下的部件记录，按部件名排序。
func (s *Store) QueryComponentParts(ctx context.Context, componentName string) ([]model.ComponentPart, error) {
	if strings.TrimSpace(componentName) == "" {
		return nil, fmt.Errorf("query component parts: component name is required")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT component_name, part_name, status, description
		FROM component_parts
		WHERE UPPER(component_name) = ?
		ORDER BY part_name
	`, strings.ToUpper(strings.TrimSpace(componentName)))
	if err != nil {
		return nil, fmt.Errorf("query component parts: %w", err)
	}
	defer rows.Close()

	var out []model.ComponentPart
	for rows.Next() {
		var p model.ComponentPart
		if err := rows.Scan(&p.ComponentName, &p.PartName, &p.Status, &p.Description); err != nil {
			return nil, fmt.Errorf("scan component part: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate component parts: %w", err)
	}
	return out, nil
}

// QueryComponentObjects 读取某组件（可选限定部件）下的对象记录。
func (s *Store) QueryComponentObjects(ctx context.Context, componentName, partName string) ([]model.ComponentObject, error) {
	if strings.TrimSpace(componentName) == "" {
		return nil, fmt.Errorf("query component objects: component name is required")
	}

	query := `
		SELECT component_name, part_name, object_name, status, description
		FROM component_objects
		WHERE UPPER(component_name) = ?
	`
	args := []any{strings.ToUpper(strings.TrimSpace(componentName))}
	if strings.TrimSpace(partName) != "" {
		query += " AND UPPER(part_name) = ?"
		args = append(args, strings.ToUpper(strings.TrimSpace(partName)))
	}
	query += " ORDER BY part_name, object_name"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query component objects: %w", err)
	}
	defer rows.Close()

	var out []model.ComponentObject
	for rows.Next() {
		var o model.ComponentObject
		if err := rows.Scan(&o.ComponentName, &o.PartName, &o.ObjectName, &o.Status, &o.Description); err != nil {
			return nil, fmt.Errorf("scan component object: %w", err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate component objects: %w", err)
	}
	return out, nil
}

// Probe 执行一次最小查询验证库可用，并顺带返回库端时间与数据量。
func (s *Store) Probe(ctx context.Context) (model.ProbeStatus, error) {
	var res model.ProbeStatus
	err := s.db.QueryRowContext(ctx, `
		SELECT datetime('now'), date('now'), (SELECT COUNT(*) FROM rule_values)
	`).Scan(&res.ServerTime, &res.CurrentDate, &res.RuleValueCount)
	if err != nil {
		return model.ProbeStatus{}, fmt.Errorf("probe store: %w", err)
	}
	return res, nil
}

// ImportRuleValues 批量写入规则值记录，使用事务保证原子性。
// 系统与规则组名在入库前统一转大写，避免后续匹配再做规整。
func (s *Store) ImportRuleValues(ctx context.Context, records []model.RuleValueRecord) (err error) {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx import rule values: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO rule_values(system_id, lpar_name, processor_type, rule_id, rule_group, rule_level, date)
		VALUES(?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert rule values: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		_, err = stmt.ExecContext(ctx,
			strings.ToUpper(r.SystemID),
			r.LPARName,
			r.ProcessorType,
			r.RuleID,
			strings.ToUpper(r.RuleGroup),
			r.RuleLevel,
			r.Date,
		)
		if err != nil {
			return fmt.Errorf("insert rule value %s/%s: %w", r.SystemID, r.RuleID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit import rule values: %w", err)
	}
	return nil
}

// ImportRules 批量写入规则定义，按 rule_id 覆盖旧值。
func (s *Store) ImportRules(ctx context.Context, defs []model.RuleDefinition) (err error) {
	if len(defs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx import rules: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO rules(rule_id, rule_group, description, uom)
		VALUES(?, ?, ?, ?)
		ON CONFLICT(rule_id) DO UPDATE SET
			rule_group=excluded.rule_group,
			description=excluded.description,
			uom=excluded.uom
	`)
	if err != nil {
		return fmt.Errorf("prepare insert rules: %w", err)
	}
	defer stmt.Close()

	for _, d := range defs {
		_, err = stmt.ExecContext(ctx, d.RuleID, strings.ToUpper(d.RuleGroup), d.Description, d.UOM)
		if err != nil {
			return fmt.Errorf("insert rule %s: %w", d.RuleID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit import rules: %w", err)
	}
	return nil
}

// ImportComponents 批量写入组件记录，按组件名覆盖旧值。
func (s *Store) ImportComponents(ctx context.Context, records []model.ComponentRecord) (err error) {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx import components: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO components(component_name, status, description, installed_at, installed_by)
		VALUES(?, ?, ?, ?, ?)
		ON CONFLICT(component_name) DO UPDATE SET
			status=excluded.status,
			description=excluded.description,
			installed_at=excluded.installed_at,
			installed_by=excluded.installed_by
	`)
	if err != nil {
		return fmt.Errorf("prepare insert components: %w", err)
	}
	defer stmt.Close()

	for _, c := range records {
		_, err = stmt.ExecContext(ctx, strings.ToUpper(c.Name), c.Status, c.Description, c.InstalledAt, c.InstalledBy)
		if err != nil {
			return fmt.Errorf("insert component %s: %w", c.Name, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit import components: %w", err)
	}
	return nil
}

// ImportComponentParts 批量写入部件记录。
func (s *Store) ImportComponentParts(ctx context.Context, parts []model.ComponentPart) (err error) {
	if len(parts) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx import parts: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO component_parts(component_name, part_name, status, description)
		VALUES(?, ?, ?, ?)
		ON CONFLICT(component_name, part_name) DO UPDATE SET
			status=excluded.status,
			description=excluded.description
	`)
	if err != nil {
		return fmt.Errorf("prepare insert parts: %w", err)
	}
	defer stmt.Close()

	for _, p := range parts {
		_, err = stmt.ExecContext(ctx, strings.ToUpper(p.ComponentName), p.PartName, p.Status, p.Description)
		if err != nil {
			return fmt.Errorf("insert part %s/%s: %w", p.ComponentName, p.PartName, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit import parts: %w", err)
	}
	return nil
}

// ImportComponentObjects 批量写入对象记录。
func (s *Store) ImportComponentObjects(ctx context.Context, objects []model.ComponentObject) (err error) {
	if len(objects) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx import objects: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO component_objects(component_name, part_name, object_name, status, description)
		VALUES(?, ?, ?, ?, ?)
		ON CONFLICT(component_name, part_name, object_name) DO UPDATE SET
			status=excluded.status,
			description=excluded.description
	`)
	if err != nil {
		return fmt.Errorf("prepare insert objects: %w", err)
	}
	defer stmt.Close()

	for _, o := range objects {
		_, err = stmt.ExecContext(ctx, strings.ToUpper(o.ComponentName), o.PartName, o.ObjectName, o.Status, o.Description)
		if err != nil {
			return fmt.Errorf("insert object %s/%s/%s: %w", o.ComponentName, o.PartName, o.ObjectName, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit import objects: %w", err)
	}
	return nil
}

// ImportCounts 记录一次导入各类记录的条数。
type ImportCounts struct {
	RuleValues int `json:"rule_values"`
	Rules      int `json:"rules"`
	Components int `json:"components"`
	Parts      int `json:"parts"`
	Objects    int `json:"objects"`
}

// SaveImportBatch 登记一次快照导入，返回批次 ID。
func (s *Store) SaveImportBatch(ctx context.Context, source string, counts ImportCounts) (string, error) {
	batchID := id.New("imp")
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO import_batches(batch_id, source, rule_values, rules, components, parts, objects, imported_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?)
	`, batchID, source, counts.RuleValues, counts.Rules, counts.Components, counts.Parts, counts.Objects, time.Now().Unix())
	if err != nil {
		return "", fmt.Errorf("save import batch: %w", err)
	}
	return batchID, nil
}

// SaveReport 登记一份生成的报告文件及其哈希，返回报告 ID。
func (s *Store) SaveReport(ctx context.Context, reportType, filePath, sha256Hex, generatorVersion string) (string, error) {
	reportID := id.New("rpt")
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reports(report_id, report_type, file_path, sha256, generated_at, generator_version, status)
		VALUES(?, ?, ?, ?, ?, ?, 'completed')
	`, reportID, reportType, filePath, sha256Hex, time.Now().Unix(), generatorVersion)
	if err != nil {
		return "", fmt.Errorf("save report: %w", err)
	}
	return reportID, nil
}
