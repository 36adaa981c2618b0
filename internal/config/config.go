// Package config 用 viper 加载运行配置：先读可选的 .env 文件，再由环境变量覆盖。
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/viper"
)

// 环境变量名
const (
	EnvTushareToken = "TUSHARE_TOKEN"
	EnvPushToken    = "PUSHPLUS_TOKEN"
	EnvPushTopic    = "PUSHPLUS_TOPIC"
	EnvPagePath     = "IPO_PAGE_PATH"
	EnvBackupDir    = "IPO_BACKUP_DIR"
	EnvSiteURL      = "IPO_SITE_URL"
)

// 默认值。推送群组编码原先写死在脚本里，现在可用 PUSHPLUS_TOPIC 覆盖。
const (
	envFile          = ".env"
	defaultPushTopic = "ipo_team"
	defaultPagePath  = "index.html"
	defaultBackupDir = "data"
	defaultSiteURL   = "https://raistlin1314-byte.github.io/A-stock-ipo-tracker/"
)

type Config struct {
	TushareToken string `mapstructure:"TUSHARE_TOKEN"`  // 必填，缺失时整次运行失败
	PushToken    string `mapstructure:"PUSHPLUS_TOKEN"` // 选填，缺失时不推送
	PushTopic    string `mapstructure:"PUSHPLUS_TOPIC"` // PushPlus 群组编码
	PagePath     string `mapstructure:"IPO_PAGE_PATH"`  // 待改写的静态页面
	BackupDir    string `mapstructure:"IPO_BACKUP_DIR"` // 备份目录，空串关闭备份
	SiteURL      string `mapstructure:"IPO_SITE_URL"`   // 推送正文里的网页链接
}

// Load 读取 .env（可选，仅本地开发用）并叠加环境变量。
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(envFile)
	v.SetConfigType("env")
	v.AutomaticEnv()
	// AutomaticEnv 只在键已注册时生效，逐个 BindEnv
	for _, key := range []string{
		EnvTushareToken, EnvPushToken, EnvPushTopic,
		EnvPagePath, EnvBackupDir, EnvSiteURL,
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("config: bind %s: %w", key, err)
		}
	}
	v.SetDefault(EnvPushTopic, defaultPushTopic)
	v.SetDefault(EnvPagePath, defaultPagePath)
	v.SetDefault(EnvBackupDir, defaultBackupDir)
	v.SetDefault(EnvSiteURL, defaultSiteURL)
	if err := v.ReadInConfig(); err != nil {
		// .env 不存在属正常（CI 只给环境变量），其他读取错误照常上报
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: 读取 %s: %w", envFile, err)
		}
	}
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	return cfg, nil
}

// Validate 校验必填项。Tushare token 缺失是配置错误，必须让本次运行失败，
// 不能静默降级成空数据刷页面。
func (c *Config) Validate() error {
	if strings.TrimSpace(c.TushareToken) == "" {
		return fmt.Errorf("config: 未配置 %s", EnvTushareToken)
	}
	return nil
}

// PushEnabled 是否配置了推送凭证。未配置时跳过推送属正常运行，不是错误。
func (c *Config) PushEnabled() bool {
	return strings.TrimSpace(c.PushToken) != ""
}
