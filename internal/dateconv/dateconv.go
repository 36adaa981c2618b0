// Package dateconv 在 Tushare 紧凑日期（YYYYMMDD）与页面展示日期（YYYY-MM-DD）之间转换。
package dateconv

import (
	"time"

	"ipoTracker/internal/model"
)

const (
	compactLayout = "20060102"
	compactLen    = 8
)

// ToCompact 按本地时区格式化为 8 位紧凑日期，月日补零。
func ToCompact(t time.Time) string {
	return t.Format(compactLayout)
}

// CompactToDisplay 把紧凑日期切成 YYYY-MM-DD。空串或长度不足返回 待定，
// 不校验日历合法性（接口给什么切什么）。
func CompactToDisplay(s string) string {
	if len(s) < compactLen {
		return model.Pending
	}
	return s[0:4] + "-" + s[4:6] + "-" + s[6:8]
}
