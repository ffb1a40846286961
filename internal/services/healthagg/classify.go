package healthagg

// Bucket 是规则级别归类出的健康分桶。
type Bucket int

const (
	BucketNotApplicable Bucket = iota
	BucketGood
	BucketWarning
	BucketCritical
)

// Classify 把数值健康级别映射到分桶：
// 0 -> 不适用，1 -> 正常，2 -> 告警，>=3 -> 严重。
// 宽容处理：超出 0-4 的级别同样按 >=3 规则归类，负值归入不适用，永不失败。
func Classify(level int) Bucket {
	switch {
	case level >= 3:
		return BucketCritical
	case level == 2:
		return BucketWarning
	case level == 1:
		return BucketGood
	default:
		return BucketNotApplicable
	}
}

func (b Bucket) String() string {
	switch b {
	case BucketCritical:
		return "critical"
	case BucketWarning:
		return "warning"
	case BucketGood:
		return "good"
	default:
		return "not_applicable"
	}
}
