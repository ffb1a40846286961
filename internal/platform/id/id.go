package id

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// New 生成带前缀的简易唯一 ID：prefix + 毫秒时间戳 + 随机后缀。
// 用作导入批次号与报告编号，单机场景下足够唯一且便于日志检索。
func New(prefix string) string {
	buf := make([]byte, 6)
	_, _ = rand.Read(buf)
	return fmt.Sprintf("%s_%d_%s", prefix, time.Now().UnixMilli(), hex.EncodeToString(buf))
}
