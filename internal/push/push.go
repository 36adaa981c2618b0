// Package push 通过 PushPlus 推送打新提醒。未配置 token 或无数据时静默跳过，
// 推送失败也只是打日志——页面此时已经更新完，提醒失败不应让整次运行失败。
package push

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"ipoTracker/internal/model"
	"ipoTracker/internal/trace"
)

const (
	DefaultEndpoint  = "http://www.pushplus.plus/send"
	templateMarkdown = "markdown"
	pushTimeout      = 10 * time.Second
	pushOKCode       = 200
)

const (
	timeFormatUpdated = "2006-01-02 15:04:05"
	dateFormatDay     = "2006-01-02"
)

type Notifier struct {
	client   *resty.Client
	Endpoint string
	Token    string
	Topic    string // PushPlus 群组编码，一对多推送
	SiteURL  string
}

func NewNotifier(token, topic, siteURL string) *Notifier {
	return &Notifier{
		client:   resty.New().SetTimeout(pushTimeout),
		Endpoint: DefaultEndpoint,
		Token:    token,
		Topic:    topic,
		SiteURL:  siteURL,
	}
}

type pushRequest struct {
	Token    string `json:"token"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	Template string `json:"template"`
	Topic    string `json:"topic"`
}

type pushResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// Send 组装 Markdown 清单并 POST 给 PushPlus，整次运行最多一次网络调用。
// 跳过条件（无 token、无数据）直接返回 nil；真正的发送失败返回错误，
// 由调用方决定只记日志。
func (n *Notifier) Send(ctx context.Context, recs []model.IPORecord, now time.Time) error {
	if n == nil || strings.TrimSpace(n.Token) == "" {
		trace.Log(ctx, "push: 未配置 PUSHPLUS_TOKEN，跳过推送")
		return nil
	}
	if len(recs) == 0 {
		trace.Log(ctx, "push: 无新股数据，跳过推送（周末无申购属正常）")
		return nil
	}

	title := fmt.Sprintf("【打新提醒】发现 %d 只新股申购", len(recs))
	content := buildMarkdown(recs, now, n.SiteURL)
	trace.Log(ctx, "push: 发送 topic=%s count=%d", n.Topic, len(recs))

	var result pushResponse
	resp, err := n.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(pushRequest{
			Token:    n.Token,
			Title:    title,
			Content:  content,
			Template: templateMarkdown,
			Topic:    n.Topic,
		}).
		SetResult(&result).
		Post(n.Endpoint)
	if err != nil {
		trace.Log(ctx, "push: 请求失败 err=%v", err)
		return fmt.Errorf("push: %w", err)
	}
	if resp.IsError() {
		trace.Log(ctx, "push: http %d body=%s", resp.StatusCode(), resp.String())
		return fmt.Errorf("push: http %d", resp.StatusCode())
	}
	if result.Code != pushOKCode {
		trace.Log(ctx, "push: 推送被拒 code=%d msg=%s", result.Code, result.Msg)
		return fmt.Errorf("push: code=%d msg=%s", result.Code, result.Msg)
	}
	trace.Log(ctx, "push: 推送成功 topic=%s", n.Topic)
	return nil
}

// buildMarkdown 生成推送正文：按申购日升序的表格，当天申购的行加 🔴 标记，
// 尾部带更新时间、网页链接与免责说明。
func buildMarkdown(recs []model.IPORecord, now time.Time, siteURL string) string {
	sorted := make([]model.IPORecord, len(recs))
	copy(sorted, recs)
	model.SortByDate(sorted)

	today := now.Format(dateFormatDay)
	var b strings.Builder
	b.WriteString("### 📅 未来30天新股申购清单\n\n")
	b.WriteString("| 申购日 | 名称 | 代码 | 价格 |\n")
	b.WriteString("| :--- | :--- | :--- | :--- |\n")
	for _, r := range sorted {
		price := model.Pending
		if r.Price != nil {
			price = strconv.FormatFloat(*r.Price, 'f', -1, 64) + "元"
		}
		name := "**" + r.Name + "**"
		if r.Date == today {
			name = "🔴 " + name
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", r.Date, name, r.Code, price)
	}
	fmt.Fprintf(&b, "\n> 更新时间: %s\n", now.Format(timeFormatUpdated))
	if strings.TrimSpace(siteURL) != "" {
		fmt.Fprintf(&b, "> [点击进入打新日历网页](%s)\n", siteURL)
	}
	b.WriteString("> *请以券商实际申购信息为准*")
	return b.String()
}
