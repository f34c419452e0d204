// Package config 从环境变量（可选 .env）加载服务配置。
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/ByLCY/keepsake/binding"
)

const (
	EnvPrefix = "KEEPSAKE"

	EnvAppEnv      = "KEEPSAKE_APP_ENV"
	EnvPort        = "KEEPSAKE_APP_PORT"
	EnvLogLevel    = "KEEPSAKE_LOG_LEVEL"
	EnvLogFormat   = "KEEPSAKE_LOG_FORMAT"
	EnvExportDPI   = "KEEPSAKE_EXPORT_DPI"
	EnvBorderMode  = "KEEPSAKE_EXPORT_BORDER_MODE"
	EnvAssetsDir   = "KEEPSAKE_ASSETS_DIR"
	EnvS3Bucket    = "KEEPSAKE_S3_BUCKET"
	EnvRedisURL    = "KEEPSAKE_REDIS_URL"
	EnvDBDriver    = "KEEPSAKE_DB_DRIVER"
	EnvDBDSN       = "KEEPSAKE_DB_DSN"
	EnvStripeKey   = "KEEPSAKE_STRIPE_SECRET_KEY"
	EnvStripeCurr  = "KEEPSAKE_STRIPE_CURRENCY"
	AppEnvDev      = "dev"
	AppEnvProd     = "prod"
	BorderOrnament = "ornament"
	BorderLegacy   = "legacy"
)

type Config struct {
	App    AppConfig
	Export ExportConfig
	Assets AssetsConfig
	Redis  RedisConfig
	DB     DBConfig
	Stripe StripeConfig
}

// Load 先尝试读取 .env（不存在时忽略），再解析环境变量。
func Load(envFiles ...string) (*Config, error) {
	_ = godotenv.Load(envFiles...)

	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Export.DPI <= 0 {
		return fmt.Errorf("%s 必须为正数", EnvExportDPI)
	}
	if c.Export.BleedInches < 0 {
		return fmt.Errorf("出血不能为负数")
	}
	switch c.Export.BorderMode {
	case BorderOrnament, BorderLegacy:
	default:
		return fmt.Errorf("%s 只能为 %s 或 %s", EnvBorderMode, BorderOrnament, BorderLegacy)
	}
	for _, pattern := range []string{c.Export.FilePattern, c.Export.PrintPattern} {
		for _, p := range binding.Placeholders(pattern) {
			if p != "timestamp" {
				return fmt.Errorf("文件名模板 %q 只支持 ${timestamp}", pattern)
			}
		}
	}
	switch strings.ToLower(c.DB.Driver) {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("%s 不支持 %q", EnvDBDriver, c.DB.Driver)
	}
	return nil
}

type AppConfig struct {
	Env       string `envconfig:"KEEPSAKE_APP_ENV" default:"dev"`
	Port      string `envconfig:"KEEPSAKE_APP_PORT" default:"8080"`
	LogLevel  string `envconfig:"KEEPSAKE_LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"KEEPSAKE_LOG_FORMAT" default:"json"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ExportConfig struct {
	DPI          float64 `envconfig:"KEEPSAKE_EXPORT_DPI" default:"300"`
	BleedInches  float64 `envconfig:"KEEPSAKE_EXPORT_BLEED_INCHES" default:"0.125"`
	FilePattern  string  `envconfig:"KEEPSAKE_EXPORT_FILE_PATTERN" default:"prayer-card-${timestamp}.pdf"`
	PrintPattern string  `envconfig:"KEEPSAKE_EXPORT_PRINT_PATTERN" default:"memorial-photo-${timestamp}.pdf"`
	BorderMode   string  `envconfig:"KEEPSAKE_EXPORT_BORDER_MODE" default:"ornament"`
	BackPage     bool    `envconfig:"KEEPSAKE_EXPORT_BACK_PAGE" default:"false"`
}

// LegacyBorder 报告导出是否使用“填充 + 回填”的旧边框画法。
func (e ExportConfig) LegacyBorder() bool {
	return e.BorderMode == BorderLegacy
}

type AssetsConfig struct {
	BaseDir       string `envconfig:"KEEPSAKE_ASSETS_DIR" default:"."`
	MaxUploadMB   int    `envconfig:"KEEPSAKE_MAX_UPLOAD_MB" default:"10"`
	S3Bucket      string `envconfig:"KEEPSAKE_S3_BUCKET"`
	S3Region      string `envconfig:"KEEPSAKE_S3_REGION" default:"us-east-1"`
	S3Endpoint    string `envconfig:"KEEPSAKE_S3_ENDPOINT"`
	S3AccessKey   string `envconfig:"KEEPSAKE_S3_ACCESS_KEY"`
	S3SecretKey   string `envconfig:"KEEPSAKE_S3_SECRET_KEY"`
	S3PublicURL   string `envconfig:"KEEPSAKE_S3_PUBLIC_URL"`
	S3UsePathMode bool   `envconfig:"KEEPSAKE_S3_USE_PATH_STYLE" default:"true"`
}

// S3Enabled 报告是否配置了对象存储。
func (a AssetsConfig) S3Enabled() bool {
	return a.S3Bucket != ""
}

type RedisConfig struct {
	URL           string        `envconfig:"KEEPSAKE_REDIS_URL"`
	DraftKey      string        `envconfig:"KEEPSAKE_REDIS_DRAFT_KEY" default:"keepsake:draft"`
	DraftTTL      time.Duration `envconfig:"KEEPSAKE_REDIS_DRAFT_TTL" default:"720h"`
	MaxDraftBytes int           `envconfig:"KEEPSAKE_REDIS_MAX_DRAFT_BYTES" default:"5242880"`
	DialTimeout   time.Duration `envconfig:"KEEPSAKE_REDIS_DIAL_TIMEOUT" default:"5s"`
}

type DBConfig struct {
	Driver          string        `envconfig:"KEEPSAKE_DB_DRIVER" default:"sqlite"`
	DSN             string        `envconfig:"KEEPSAKE_DB_DSN" default:"file:keepsake.db?cache=shared"`
	MaxOpenConns    int           `envconfig:"KEEPSAKE_DB_MAX_OPEN_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"KEEPSAKE_DB_CONN_MAX_LIFETIME" default:"1h"`
	AutoMigrate     bool          `envconfig:"KEEPSAKE_DB_AUTO_MIGRATE" default:"true"`
}

type StripeConfig struct {
	SecretKey string `envconfig:"KEEPSAKE_STRIPE_SECRET_KEY"`
	Currency  string `envconfig:"KEEPSAKE_STRIPE_CURRENCY" default:"usd"`
}

// Enabled 报告是否配置了支付密钥；未配置时结账返回依赖错误。
func (s StripeConfig) Enabled() bool {
	return strings.TrimSpace(s.SecretKey) != ""
}
