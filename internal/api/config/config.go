package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Cfg 全局可访问的配置实例
var Cfg *Config

var defaults = map[string]any{
	"server.port": 8080,

	"database.driver":       "mysql",
	"database.dsn":          "",
	"database.max_idle":     10,
	"database.max_open":     50,
	"database.max_lifetime": 30,
	"database.auto_migrate": true,

	"redis.addr":      "",
	"redis.password":  "",
	"redis.db":        0,
	"redis.pool_size": 20,

	"jwt.secret":       "",
	"jwt.expire_hours": 24,

	"storage.provider":               "none",
	"storage.credential_ttl_minutes": 60,
	"storage.signed_url_minutes":     60,
	"storage.local.root":             "./uploads",
	"storage.local.public_prefix":    "/uploads",
	"storage.local.max_size_mb":      50,

	"storage.firebase.project_id":       "",
	"storage.firebase.credentials_file": "",
	"storage.firebase.bucket":           "",
	"storage.firebase.api_key":          "",
	"storage.firebase.signer_email":     "",
	"storage.firebase.signer_key_file":  "",

	"storage.minio.internal_endpoint": "",
	"storage.minio.external_endpoint": "",
	"storage.minio.access_key":        "",
	"storage.minio.secret_key":        "",
	"storage.minio.bucket":            "",
	"storage.minio.region":            "us-east-1",
	"storage.minio.internal_use_ssl":  false,
	"storage.minio.external_use_ssl":  true,

	"kafka.enable":        false,
	"kafka.brokers":       []string{},
	"kafka.topic":         "mosaic.media.events",
	"kafka.sasl.enable":   false,
	"kafka.sasl.username": "",
	"kafka.sasl.password": "",

	"cron.orphan_cleanup":     "@hourly",
	"cron.orphan_grace_hours": 24,

	"logstash.address": "",
	"logstash.index":   "logstash-mosaic",
	"logstash.token":   "",
}

// LoadConfig 从文件与环境变量加载配置并填充到 Cfg
func LoadConfig() error {
	// 本地开发时允许使用 .env
	_ = godotenv.Load()

	cfg, err := Load("./configs")
	if err != nil {
		return err
	}
	Cfg = cfg
	return nil
}

// Load 读取指定目录下的 config.yaml，环境变量优先 (database.dsn -> DATABASE_DSN)
func Load(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.JWT.Secret == "" {
		return nil, errors.New("jwt.secret (JWT_SECRET) is required")
	}
	if cfg.DB.DSN == "" {
		return nil, errors.New("database.dsn (DATABASE_DSN) is required")
	}

	return &cfg, nil
}
