// Package main 是打新日历流水线入口：拉取未来 30 天新股申购数据、写回静态页面、
// 可选微信群组推送。由外部调度（CI 定时任务）周期执行，单次运行即退出。
package main

import (
	"context"
	"log"
	"os"
	"time"

	"ipoTracker/internal/api"
	"ipoTracker/internal/config"
	"ipoTracker/internal/page"
	"ipoTracker/internal/push"
	"ipoTracker/internal/trace"
)

// 整次运行的兜底超时，正常一次跑完在几秒内
const runTimeout = 2 * time.Minute

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	os.Exit(run())
}

// run 串行执行 拉数据 -> 刷页面 -> 推送。拉数据（配置错误）与刷页面失败
// 是致命的（页面是核心交付物）；推送失败只记日志，内部已按尽力而为处理。
func run() int {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()
	ctx = trace.WithTraceID(ctx, trace.NewTraceID())
	trace.Log(ctx, "main: start")

	cfg, err := config.Load()
	if err != nil {
		trace.Log(ctx, "main: 加载配置失败 err=%v", err)
		return 1
	}
	if err := cfg.Validate(); err != nil {
		trace.Log(ctx, "main: %v", err)
		return 1
	}

	now := time.Now()
	recs, err := api.NewClient().FetchUpcoming(ctx, cfg.TushareToken, now)
	if err != nil {
		trace.Log(ctx, "main: 拉取新股数据失败 err=%v", err)
		return 1
	}
	trace.Log(ctx, "main: 有效打新数据 %d 条", len(recs))

	updater := &page.Updater{Path: cfg.PagePath, BackupDir: cfg.BackupDir}
	if err := updater.Apply(ctx, recs, now); err != nil {
		trace.Log(ctx, "main: 更新页面失败 err=%v", err)
		return 1
	}

	if cfg.PushEnabled() {
		notifier := push.NewNotifier(cfg.PushToken, cfg.PushTopic, cfg.SiteURL)
		if err := notifier.Send(ctx, recs, now); err != nil {
			trace.Log(ctx, "main: 推送失败（不影响页面更新）err=%v", err)
		}
	} else {
		trace.Log(ctx, "main: 未配置 %s，跳过推送", config.EnvPushToken)
	}

	trace.Log(ctx, "main: end")
	return 0
}
