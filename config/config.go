package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Cfg 全局配置
var Cfg Config

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	JWT       JWTConfig       `yaml:"jwt"`
	Provider  ProviderConfig  `yaml:"provider"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Audit     AuditConfig     `yaml:"audit"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

type JWTConfig struct {
	SecretKey string `yaml:"secret_key"`
}

// ProviderConfig 模型服务的默认配置，请求内的凭证优先于此处的默认值
type ProviderConfig struct {
	BaseURL        string `yaml:"base_url"`
	Model          string `yaml:"model"`
	EmbeddingModel string `yaml:"embedding_model"`

	// 单次模型调用的超时时间（秒）
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

type RetrievalConfig struct {
	// 分块窗口与重叠长度（字符数）
	ChunkWindow  int `yaml:"chunk_window"`
	ChunkOverlap int `yaml:"chunk_overlap"`

	EmbeddingDim int `yaml:"embedding_dim"`

	// 低于该余弦相似度的候选会被过滤
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
	TopK                int     `yaml:"top_k"`

	// 拼接上下文的最大字符预算
	ContextBudget int `yaml:"context_budget"`

	// 单条文本向量化的最大字符数，超出直接拒绝
	MaxEmbedChars int `yaml:"max_embed_chars"`

	EmbedBatchSize int `yaml:"embed_batch_size"`
	RetryAttempts  int `yaml:"retry_attempts"`
}

type AuditConfig struct {
	// 查询日志默认保留天数
	RetentionDays int `yaml:"retention_days"`
}

// Load 读取YAML配置，环境变量优先于文件内容
func Load(path string) error {
	// .env 不存在时忽略
	_ = godotenv.Load()

	Cfg = defaultConfig()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, &Cfg); err != nil {
			return fmt.Errorf("failed to parse config file %s: %v", path, err)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to read config file %s: %v", path, err)
	}

	applyEnvOverrides()

	if err := validate(); err != nil {
		return err
	}
	return nil
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: "8080",
		},
		Database: DatabaseConfig{
			Host:    "localhost",
			Port:    "5432",
			User:    "finreport",
			DBName:  "finreport",
			SSLMode: "disable",
		},
		Provider: ProviderConfig{
			BaseURL:        "https://api.openai.com/v1",
			Model:          "gpt-4o-mini",
			EmbeddingModel: "text-embedding-3-small",
			TimeoutSeconds: 60,
		},
		Retrieval: RetrievalConfig{
			ChunkWindow:         1000,
			ChunkOverlap:        200,
			EmbeddingDim:        1536,
			SimilarityThreshold: 0.7,
			TopK:                10,
			ContextBudget:       8000,
			MaxEmbedChars:       32000,
			EmbedBatchSize:      10,
			RetryAttempts:       3,
		},
		Audit: AuditConfig{
			RetentionDays: 90,
		},
	}
}

func applyEnvOverrides() {
	setString(&Cfg.Server.Host, "APP_HOST")
	setString(&Cfg.Server.Port, "APP_PORT")
	setString(&Cfg.Database.Host, "DB_HOST")
	setString(&Cfg.Database.Port, "DB_PORT")
	setString(&Cfg.Database.User, "DB_USER")
	setString(&Cfg.Database.Password, "DB_PASSWORD")
	setString(&Cfg.Database.DBName, "DB_NAME")
	setString(&Cfg.Database.SSLMode, "DB_SSLMODE")
	setString(&Cfg.JWT.SecretKey, "JWT_SECRET_KEY")
	setString(&Cfg.Provider.BaseURL, "PROVIDER_BASE_URL")
	setString(&Cfg.Provider.Model, "PROVIDER_MODEL")
	setString(&Cfg.Provider.EmbeddingModel, "PROVIDER_EMBEDDING_MODEL")
	setInt(&Cfg.Provider.TimeoutSeconds, "PROVIDER_TIMEOUT_SECONDS")
	setInt(&Cfg.Retrieval.ChunkWindow, "CHUNK_WINDOW")
	setInt(&Cfg.Retrieval.ChunkOverlap, "CHUNK_OVERLAP")
	setFloat(&Cfg.Retrieval.SimilarityThreshold, "SIMILARITY_THRESHOLD")
	setInt(&Cfg.Retrieval.TopK, "TOP_K")
	setInt(&Cfg.Audit.RetentionDays, "AUDIT_RETENTION_DAYS")
}

func validate() error {
	r := Cfg.Retrieval
	if r.ChunkWindow <= 0 || r.ChunkOverlap < 0 || r.ChunkOverlap >= r.ChunkWindow {
		return fmt.Errorf("invalid retrieval config: window=%d overlap=%d", r.ChunkWindow, r.ChunkOverlap)
	}
	if Cfg.JWT.SecretKey == "" {
		return fmt.Errorf("jwt secret key is required")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}
