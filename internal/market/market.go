// Package market 提供板块归类与申购市值门槛估算两个纯函数工具。
package market

import (
	"strings"

	"ipoTracker/internal/model"
)

// 板块标签
const (
	LabelStar         = "科创板"
	LabelShanghaiMain = "沪市主板"
	LabelChiNext      = "创业板"
	LabelShenzhenMain = "深市主板"
	LabelBeijing      = "北交所"
	LabelShanghai     = "上海"
	LabelShenzhen     = "深圳"
)

// 交易所后缀
const (
	suffixShanghai = "SH"
	suffixShenzhen = "SZ"
	suffixBeijing  = "BJ"
)

// Classify 按 (交易所后缀, 代码前缀) 规则表归类板块，首条命中生效。
// 纯函数且全定义：空串、畸形代码一律返回 未知，不报错。
func Classify(tsCode string) string {
	code := strings.TrimSpace(tsCode)
	if code == "" {
		return model.Unknown
	}
	digits := code
	suffix := ""
	if i := strings.IndexByte(code, '.'); i >= 0 {
		digits = code[:i]
		suffix = strings.ToUpper(code[i+1:])
	}
	switch suffix {
	case suffixShanghai:
		switch {
		case strings.HasPrefix(digits, "688"), strings.HasPrefix(digits, "689"):
			return LabelStar
		case strings.HasPrefix(digits, "60"):
			return LabelShanghaiMain
		default:
			return LabelShanghai
		}
	case suffixShenzhen:
		switch {
		case strings.HasPrefix(digits, "300"), strings.HasPrefix(digits, "301"):
			return LabelChiNext
		case strings.HasPrefix(digits, "00"):
			return LabelShenzhenMain
		default:
			return LabelShenzhen
		}
	case suffixBeijing:
		return LabelBeijing
	case "":
		// 无后缀时仅北交所代码（8/4 开头）可辨认
		if strings.HasPrefix(digits, "8") || strings.HasPrefix(digits, "4") {
			return LabelBeijing
		}
		return model.Unknown
	default:
		return model.Unknown
	}
}

// 市值门槛估算：沪市每 1000 股、深市每 500 股对应 1 万元持仓市值，向上取整。
const (
	shanghaiSharesPerWan = 1000
	shenzhenSharesPerWan = 500
	defaultSubscription  = 10000 // 上限缺失时代入的默认申购股数
	minQuotaWan          = 1
)

// EstimateQuota 由申购上限（股）粗估沪深两市的最低持仓市值门槛（万元）。
// 上限缺失或非正时代入默认股数后再算。注意这只是近似估算，
// 实际申购资格请以券商与交易所公布为准。
func EstimateQuota(maxSubscription int64) model.QuotaEstimate {
	qty := maxSubscription
	if qty <= 0 {
		qty = defaultSubscription
	}
	return model.QuotaEstimate{
		Shanghai: ceilDiv(qty, shanghaiSharesPerWan),
		Shenzhen: ceilDiv(qty, shenzhenSharesPerWan),
	}
}

func ceilDiv(n, d int64) int64 {
	v := (n + d - 1) / d
	if v < minQuotaWan {
		v = minQuotaWan
	}
	return v
}
