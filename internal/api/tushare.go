// Package api 封装 Tushare 新股申购接口：单次 POST 拉取未来 30 天窗口，
// gjson 解析响应，按位数组与键值对象两种行格式都支持。
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"ipoTracker/internal/dateconv"
	"ipoTracker/internal/market"
	"ipoTracker/internal/model"
	"ipoTracker/internal/trace"
)

// Tushare 接口地址与参数。走 http 规避部分环境的证书问题（沿用原线上行为）。
const (
	TushareURL      = "http://api.tushare.pro"
	apiNameNewShare = "new_share"
	newShareFields  = "ts_code,name,ipo_date,issue_date,amount,market,price,pe,limit_amount,funds,ballot"
)

// 请求窗口与超时。每次运行对外只请求一次，失败不重试，由下次调度兜底。
const (
	windowDays         = 30
	defaultHTTPTimeout = 15 * time.Second
	maxRespLogLen      = 1200
)

// limit_amount 单位是万股，归一化成股
const sharesPerWan = 10000

type Client struct {
	HTTPClient *http.Client
	URL        string
}

func NewClient() *Client {
	return &Client{
		HTTPClient: &http.Client{Timeout: defaultHTTPTimeout},
		URL:        TushareURL,
	}
}

type tushareRequest struct {
	APIName string            `json:"api_name"`
	Token   string            `json:"token"`
	Params  map[string]string `json:"params"`
	Fields  string            `json:"fields"`
}

// FetchUpcoming 拉取 [now, now+30天] 的新股申购记录并归一化。
// token 缺失返回错误（配置问题，调用方应让整次运行失败）；接口不可达或
// 响应异常则打日志并返回空列表（页面照常刷新为空，优于静默保留旧数据）。
func (c *Client) FetchUpcoming(ctx context.Context, token string, now time.Time) ([]model.IPORecord, error) {
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("api: tushare token 未配置")
	}
	start := dateconv.ToCompact(now)
	end := dateconv.ToCompact(now.AddDate(0, 0, windowDays))
	payload, err := json.Marshal(tushareRequest{
		APIName: apiNameNewShare,
		Token:   token,
		Params:  map[string]string{"start_date": start, "end_date": end},
		Fields:  newShareFields,
	})
	if err != nil {
		return nil, fmt.Errorf("api: marshal request: %w", err)
	}

	url := c.URL
	if url == "" {
		url = TushareURL
	}
	trace.Log(ctx, "api: FetchUpcoming window=%s..%s", start, end)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("api: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := c.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	resp, err := client.Do(req)
	if err != nil {
		trace.Log(ctx, "api: 请求失败，本次按空数据处理 err=%v", err)
		return []model.IPORecord{}, nil
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		trace.Log(ctx, "api: 读响应失败，本次按空数据处理 err=%v", err)
		return []model.IPORecord{}, nil
	}
	trace.Log(ctx, "api: resp status=%d len=%d body=%s", resp.StatusCode, len(body), truncateForLog(body))
	if resp.StatusCode != http.StatusOK {
		trace.Log(ctx, "api: http %d，本次按空数据处理", resp.StatusCode)
		return []model.IPORecord{}, nil
	}
	return parseNewShares(ctx, body), nil
}

// parseNewShares 解析 Tushare 响应。data.items 的每行可能是按位数组
//（需与 data.fields 对齐还原键值）也可能是键值对象，两种都归一化。
func parseNewShares(ctx context.Context, body []byte) []model.IPORecord {
	if code := gjson.GetBytes(body, "code"); code.Exists() && code.Int() != 0 {
		trace.Log(ctx, "api: tushare 返回错误 code=%d msg=%s",
			code.Int(), gjson.GetBytes(body, "msg").String())
		return []model.IPORecord{}
	}
	items := gjson.GetBytes(body, "data.items")
	if !items.Exists() || !items.IsArray() {
		trace.Log(ctx, "api: 响应缺少 data.items，本次按空数据处理")
		return []model.IPORecord{}
	}
	var fieldNames []string
	gjson.GetBytes(body, "data.fields").ForEach(func(_, v gjson.Result) bool {
		fieldNames = append(fieldNames, v.String())
		return true
	})

	rows := items.Array()
	out := make([]model.IPORecord, 0, len(rows))
	dropped := 0
	for _, item := range rows {
		rec, ok := normalize(zipRow(item, fieldNames))
		if !ok {
			dropped++
			continue
		}
		out = append(out, rec)
	}
	trace.Log(ctx, "api: 原始 %d 条，有效 %d 条，无申购日剔除 %d 条", len(rows), len(out), dropped)
	return out
}

// zipRow 把一行还原成 字段名 -> 值。按位数组依 data.fields 对齐，对象原样收集。
func zipRow(item gjson.Result, fieldNames []string) map[string]gjson.Result {
	row := make(map[string]gjson.Result, len(fieldNames))
	if item.IsArray() {
		values := item.Array()
		for i, name := range fieldNames {
			if i < len(values) {
				row[name] = values[i]
			}
		}
		return row
	}
	item.ForEach(func(k, v gjson.Result) bool {
		row[k.String()] = v
		return true
	})
	return row
}

// normalize 把原始行转成归一化记录。任何字段缺失都落到对应占位值，不报错；
// 唯一的剔除条件是申购日无法解析（页面不展示不可操作的记录）。
func normalize(row map[string]gjson.Result) (model.IPORecord, bool) {
	date := dateconv.CompactToDisplay(stringField(row, "ipo_date"))
	if date == model.Pending {
		return model.IPORecord{}, false
	}

	tsCode := stringField(row, "ts_code")
	code := tsCode
	if i := strings.IndexByte(tsCode, '.'); i >= 0 {
		code = tsCode[:i]
	}
	if code == "" {
		code = model.Unknown
	}
	name := stringField(row, "name")
	if name == "" {
		name = model.Unknown
	}

	rec := model.IPORecord{
		Name:              name,
		Code:              code,
		Date:              date,
		Market:            market.Classify(tsCode),
		Industry:          model.Pending,
		ExpectedFundraise: model.Pending,
		ListingDate:       dateconv.CompactToDisplay(stringField(row, "issue_date")),
	}
	if price, ok := numField(row, "price"); ok && price > 0 {
		rec.Price = &price
	}
	if limit, ok := numField(row, "limit_amount"); ok && limit > 0 {
		rec.MaxSubscription = int64(limit * sharesPerWan)
	}
	rec.RequiredMarketValue = market.EstimateQuota(rec.MaxSubscription)
	if pe, ok := numField(row, "pe"); ok && pe > 0 {
		rec.PERatio = model.NewPendingNumber(pe)
	}
	if funds := stringField(row, "funds"); funds != "" {
		rec.ExpectedFundraise = funds + "亿"
	}
	return rec, true
}

func stringField(row map[string]gjson.Result, key string) string {
	r, ok := row[key]
	if !ok || r.Type == gjson.Null {
		return ""
	}
	return strings.TrimSpace(r.String())
}

func numField(row map[string]gjson.Result, key string) (float64, bool) {
	r, ok := row[key]
	if !ok || r.Type == gjson.Null {
		return 0, false
	}
	if strings.TrimSpace(r.String()) == "" {
		return 0, false
	}
	return r.Float(), true
}

func truncateForLog(b []byte) string {
	s := string(b)
	if len(b) > maxRespLogLen {
		s = s[:maxRespLogLen] + "..."
	}
	return strings.ReplaceAll(strings.ReplaceAll(s, "\r", " "), "\n", " ")
}
