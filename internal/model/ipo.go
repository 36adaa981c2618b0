// Package model 定义新股申购记录、备份快照等数据结构与占位常量。
package model

import (
	"encoding/json"
	"sort"
)

// 占位值：来源缺字段时写入，页面与推送按原样展示。
const (
	Pending = "待定"
	Unknown = "未知"
)

// IPORecord 单只新股的归一化记录，字段顺序即页面数据字面量的键序。
type IPORecord struct {
	Name                string        `json:"name"`                // 股票名称，缺失为 未知
	Code                string        `json:"code"`                // 证券代码，已去掉交易所后缀
	Date                string        `json:"date"`                // 申购日 YYYY-MM-DD，缺失为 待定（入库前会被剔除）
	Market              string        `json:"market"`              // 市场板块，见 market.Classify
	Price               *float64      `json:"price"`               // 发行价（元），未定价为 null
	MaxSubscription     int64         `json:"maxSubscription"`     // 申购上限（股），缺失为 0
	RequiredMarketValue QuotaEstimate `json:"requiredMarketValue"` // 估算市值门槛（万元）
	Industry            string        `json:"industry"`            // 所属行业，接口未提供时为 待定
	PERatio             PendingNumber `json:"peRatio"`             // 发行市盈率
	ExpectedFundraise   string        `json:"expectedFundraise"`   // 预计募资，如 "12.5亿"
	ListingDate         string        `json:"listingDate"`         // 上市日 YYYY-MM-DD 或 待定
}

// QuotaEstimate 沪深两市各自的估算持仓市值门槛（万元）。仅供参考，以券商为准。
type QuotaEstimate struct {
	Shanghai int64 `json:"shanghai"`
	Shenzhen int64 `json:"shenzhen"`
}

// PendingNumber 可缺失数值：有值时序列化为数字，无值时序列化为 待定。
type PendingNumber struct {
	Value float64
	Valid bool
}

func NewPendingNumber(v float64) PendingNumber {
	return PendingNumber{Value: v, Valid: true}
}

func (p PendingNumber) MarshalJSON() ([]byte, error) {
	if !p.Valid {
		return json.Marshal(Pending)
	}
	return json.Marshal(p.Value)
}

func (p *PendingNumber) UnmarshalJSON(b []byte) error {
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		// 字符串占位（待定）按无值处理
		p.Value = 0
		p.Valid = false
		return nil
	}
	p.Value = v
	p.Valid = true
	return nil
}

// Snapshot 单次运行的备份快照，写成 data/ipo-YYYY-MM-DD.json，只增不改。
type Snapshot struct {
	UpdateTime string      `json:"updateTime"`
	Data       []IPORecord `json:"data"`
}

// SortByDate 按申购日升序原地排序。日期为 YYYY-MM-DD，字典序即时间序。
func SortByDate(recs []IPORecord) {
	sort.Slice(recs, func(i, j int) bool {
		return recs[i].Date < recs[j].Date
	})
}
