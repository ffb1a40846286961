package healthapi

import (
	"context"
	"fmt"
	"strings"
	"time"

	"mainframe-health/internal/adapters/rules"
	"mainframe-health/internal/domain/model"
)

// 报表门面：所有操作遵循"总是返回信封"的约定——
// 不向调用方抛错误，失败时 ok=false 并把原因放进 error 字段，
// 成功与失败都带 ms 耗时。CLI 和 HTTP 层只做序列化，不做业务分支。

// 各操作的默认时间窗口与行数上限。
const (
	DefaultHealthDays   = 7
	DefaultDiscoverDays = 30
	MaxDays             = 365

	DefaultAllSystemsMaxRows = 100
	DefaultDiscoverMaxRows   = 200
	DefaultMaxIssues         = 10
)

// Fetcher 是报表计算需要的数据读取接口，由 SQLite 快照库实现。
type Fetcher interface {
	QueryRuleValues(ctx context.Context, q model.RuleValueQuery) ([]model.RuleValueRecord, error)
	QueryContext(ctx context.Context, days, maxRows int) ([]model.ContextRow, error)
	QueryComponents(ctx context.Context, pattern string) ([]model.ComponentRecord, error)
	QueryComponentParts(ctx context.Context, componentName string) ([]model.ComponentPart, error)
	QueryComponentObjects(ctx context.Context, componentName, partName string) ([]model.ComponentObject, error)
	Probe(ctx context.Context) (model.ProbeStatus, error)
}

// Envelope 是所有报表结果的公共外壳。
type Envelope struct {
	OK    bool   `json:"ok"`
	Days  int    `json:"days,omitempty"`
	Ms    int64  `json:"ms"`
	Error string `json:"error,omitempty"`
}

// Service 把数据读取、查找表和各个计算引擎组装成报表操作集。
type Service struct {
	fetch   Fetcher
	bundles *rules.LoadedBundles
}

func NewService(fetch Fetcher, bundles *rules.LoadedBundles) *Service {
	return &Service{fetch: fetch, bundles: bundles}
}

// done 构造成功信封。days 为 0 时不输出该字段（组件类操作无时间窗口）。
func done(start time.Time, days int) Envelope {
	return Envelope{OK: true, Days: days, Ms: time.Since(start).Milliseconds()}
}

// fail 构造失败信封。
func fail(start time.Time, days int, err error) Envelope {
	return Envelope{OK: false, Days: days, Ms: time.Since(start).Milliseconds(), Error: err.Error()}
}

// normalizeDays 校验时间窗口：0 取默认值，负数或超过一年报错。
func normalizeDays(days, def int) (int, error) {
	if days == 0 {
		return def, nil
	}
	if days < 0 || days > MaxDays {
		return 0, fmt.Errorf("days must be between 1 and %d, got %d", MaxDays, days)
	}
	return days, nil
}

// normalizeSystemID 规整系统标识：去空白并转大写。
func normalizeSystemID(systemID string) string {
	return strings.ToUpper(strings.TrimSpace(systemID))
}
