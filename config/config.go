package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const localConfigFile = "config.yaml"

// Duration 支持 "2s"、"500ms" 形式的时长配置值
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %v", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`

	Model struct {
		APIKey string `yaml:"api_key"`

		// 托管生成服务的API地址
		BaseURL string `yaml:"base_url"`

		// 对话使用的生成模型
		Name string `yaml:"name"`

		// 会话标题生成模型，为空时关闭标题生成
		TitleModel string `yaml:"title_model"`
	} `yaml:"model"`

	FileSearch struct {
		// 文档库的显示名称
		StoreDisplayName string `yaml:"store_display_name"`

		// 导入操作的轮询间隔与最大轮询次数
		PollInterval Duration `yaml:"poll_interval"`
		PollAttempts uint     `yaml:"poll_attempts"`
	} `yaml:"file_search"`

	MySQL struct {
		DSN string `yaml:"dsn"`
	} `yaml:"mysql"`

	Upload struct {
		Dir string `yaml:"dir"`
	} `yaml:"upload"`
}

var Cfg Config

func init() {
	// .env 仅用于本地开发，不存在时忽略
	_ = godotenv.Load()

	Cfg.Server.Port = envOrDefault("PORT", "3000")
	Cfg.Model.APIKey = os.Getenv("GEMINI_API_KEY")
	Cfg.Model.BaseURL = envOrDefault("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com")
	Cfg.Model.Name = envOrDefault("GEMINI_MODEL", "gemini-2.5-flash")
	Cfg.Model.TitleModel = os.Getenv("TITLE_MODEL")
	Cfg.FileSearch.StoreDisplayName = envOrDefault("STORE_DISPLAY_NAME", "gemini-rag-document-store")
	Cfg.FileSearch.PollInterval = Duration(2 * time.Second)
	Cfg.FileSearch.PollAttempts = 150
	Cfg.MySQL.DSN = os.Getenv("MYSQL_DSN")
	Cfg.Upload.Dir = envOrDefault("UPLOAD_DIR", "uploads")

	// 本地配置文件优先于环境变量
	data, err := os.ReadFile(localConfigFile)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Error("Failed to read local config file", "file", localConfigFile, "err", err)
		}
		return
	}

	if err := yaml.Unmarshal(data, &Cfg); err != nil {
		slog.Error("Failed to parse local config file", "file", localConfigFile, "err", err)
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
