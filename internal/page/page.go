// Package page 把最新打新数据写回静态页面。页面按文档解析，数据与更新时间
// 各有一个固定 id 的插入点，整体覆盖写入，不做增量合并。
package page

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"ipoTracker/internal/model"
	"ipoTracker/internal/trace"
)

// 页面插入点：数据字面量在 script#ipo-data 内，更新时间在 #last-updated 内。
const (
	dataSelector    = "script#ipo-data"
	updatedSelector = "#last-updated"
)

const (
	dataLiteralPrefix = "const mockIpoData = "
	jsonIndent        = "    "
	timeFormatUpdated = "2006-01-02 15:04:05"
	dateFormatBackup  = "2006-01-02"
	backupFilePattern = "ipo-%s.json"
	fileMode          = 0o644
	dirMode           = 0o755
)

// Updater 改写 Path 指向的页面；BackupDir 非空时顺带写当日备份快照。
type Updater struct {
	Path      string
	BackupDir string
}

// Apply 读取页面，替换数据字面量与更新时间后写回原路径。页面文件缺失或
// 插入点不存在都是部署前提被破坏，直接报错由调用方终止运行。
// 备份写入是尽力而为，出错只打日志，不影响页面更新结果。
func (u *Updater) Apply(ctx context.Context, recs []model.IPORecord, now time.Time) error {
	if recs == nil {
		recs = []model.IPORecord{}
	}
	raw, err := os.ReadFile(u.Path)
	if err != nil {
		return fmt.Errorf("page: 读取页面 %s: %w", u.Path, err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("page: 解析页面: %w", err)
	}

	payload, err := json.MarshalIndent(recs, "", jsonIndent)
	if err != nil {
		return fmt.Errorf("page: marshal 数据: %w", err)
	}
	script := doc.Find(dataSelector)
	if script.Length() == 0 {
		return fmt.Errorf("page: 页面缺少数据插入点 %s", dataSelector)
	}
	// script 元素内容必须按原文写入：SetText 会做实体转义，引号变成 &#34; 后
	// 字面量就不再是合法 JS，这里直接挂裸文本节点
	script.Empty()
	script.Get(0).AppendChild(&html.Node{
		Type: html.TextNode,
		Data: dataLiteralPrefix + string(payload) + ";",
	})

	updated := doc.Find(updatedSelector)
	if updated.Length() == 0 {
		return fmt.Errorf("page: 页面缺少更新时间插入点 %s", updatedSelector)
	}
	updated.SetText("更新时间：" + now.Format(timeFormatUpdated) + " (自动更新)")

	rendered, err := doc.Html()
	if err != nil {
		return fmt.Errorf("page: 渲染页面: %w", err)
	}
	if err := os.WriteFile(u.Path, []byte(rendered), fileMode); err != nil {
		return fmt.Errorf("page: 写回页面 %s: %w", u.Path, err)
	}
	trace.Log(ctx, "page: 已更新 %s，共 %d 条", u.Path, len(recs))

	u.writeBackup(ctx, recs, now)
	return nil
}

// writeBackup 写当日快照 {updateTime, data}，文件名带日期，只增不删。
func (u *Updater) writeBackup(ctx context.Context, recs []model.IPORecord, now time.Time) {
	if strings.TrimSpace(u.BackupDir) == "" {
		return
	}
	snap := model.Snapshot{
		UpdateTime: now.Format(timeFormatUpdated),
		Data:       recs,
	}
	b, err := json.MarshalIndent(snap, "", jsonIndent)
	if err != nil {
		trace.Log(ctx, "page: 备份序列化失败（忽略）err=%v", err)
		return
	}
	if err := os.MkdirAll(u.BackupDir, dirMode); err != nil {
		trace.Log(ctx, "page: 备份目录创建失败（忽略）err=%v", err)
		return
	}
	name := fmt.Sprintf(backupFilePattern, now.Format(dateFormatBackup))
	if err := os.WriteFile(filepath.Join(u.BackupDir, name), b, fileMode); err != nil {
		trace.Log(ctx, "page: 备份写入失败（忽略）err=%v", err)
		return
	}
	trace.Log(ctx, "page: 备份已写入 %s", name)
}
