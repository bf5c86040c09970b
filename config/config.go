package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 应用全局配置结构体
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"db"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Detector DetectorConfig `mapstructure:"detector"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Port        int             `mapstructure:"port"`
	MaxUploadMB int64           `mapstructure:"max_upload_mb"`
	CORS        CORSConfig      `mapstructure:"cors"`
	RateLimit   RateLimitConfig `mapstructure:"rate_limit"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// RateLimitConfig 登录与上传接口限流（依赖 Redis，未启用时放行）
type RateLimitConfig struct {
	Limit  int           `mapstructure:"limit"`
	Window time.Duration `mapstructure:"window"`
}

// MaxUploadBytes 上传请求体上限（字节）
func (c *ServerConfig) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}

// 数据库驱动
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DatabaseConfig 数据库配置
// sqlite 模式下四个存储各自一个文件；postgres 模式下共用一个连接
type DatabaseConfig struct {
	Driver       string `mapstructure:"driver"`
	SQLiteDir    string `mapstructure:"sqlite_dir"`
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Name         string `mapstructure:"name"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	SSLMode      string `mapstructure:"sslmode"`
	Timezone     string `mapstructure:"timezone"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

// DSN 生成 PostgreSQL 连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// 身份目录类型
const (
	DirectoryStatic   = "static"
	DirectoryDatabase = "database"
)

// AuthConfig JWT 与身份目录配置
//
// AccessTokenTTL 为全局默认有效期；LoginTokenTTL 为登录接口签发时使用的有效期。
// 两者不一致是沿用的既有行为，具体取值由部署方决定。
type AuthConfig struct {
	JWTSecret      string        `mapstructure:"jwt_secret"`
	Issuer         string        `mapstructure:"issuer"`
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`
	LoginTokenTTL  time.Duration `mapstructure:"login_token_ttl"`
	Directory      string        `mapstructure:"directory"`
	Users          []SeedUser    `mapstructure:"users"`
}

// SeedUser 静态目录中的账户
type SeedUser struct {
	ID         string `mapstructure:"id"`
	Email      string `mapstructure:"email"`
	Password   string `mapstructure:"password"`
	Name       string `mapstructure:"name"`
	Role       string `mapstructure:"role"`
	Department string `mapstructure:"department"`
}

// 证据文件存储驱动
const (
	StorageLocal = "local"
	StorageS3    = "s3"
)

// StorageConfig 上传文件存储配置
type StorageConfig struct {
	Driver  string   `mapstructure:"driver"`
	Root    string   `mapstructure:"root"`
	TempDir string   `mapstructure:"temp_dir"`
	S3      S3Config `mapstructure:"s3"`
}

// S3Config S3 兼容存储
type S3Config struct {
	Region   string `mapstructure:"region"`
	Bucket   string `mapstructure:"bucket"`
	Prefix   string `mapstructure:"prefix"`
	Endpoint string `mapstructure:"endpoint"` // 例如 http://localstack:4566
}

// DetectorConfig 损伤识别模型服务配置
type DetectorConfig struct {
	Endpoint  string        `mapstructure:"endpoint"`
	ModelPath string        `mapstructure:"model_path"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load 从 .env、配置文件与环境变量加载配置
// 优先级：环境变量 > 配置文件 > 默认值
func Load(path string) (*Config, error) {
	// .env 不存在时忽略
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("INFRA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.max_upload_mb", 16)
	v.SetDefault("server.cors.allow_origins", []string{"*"})
	v.SetDefault("server.rate_limit.limit", 20)
	v.SetDefault("server.rate_limit.window", "1m")

	v.SetDefault("db.driver", DriverSQLite)
	v.SetDefault("db.sqlite_dir", "./data")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "infrawatch")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 10)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.issuer", "infrawatch")
	v.SetDefault("auth.access_token_ttl", "1h")
	v.SetDefault("auth.login_token_ttl", "24h")
	v.SetDefault("auth.directory", DirectoryStatic)
	v.SetDefault("auth.users", []map[string]interface{}{
		{
			"id":       "1",
			"email":    "citizen@test.com",
			"password": "password_citizen",
			"name":     "Test Citizen",
			"role":     "citizen",
		},
		{
			"id":       "2",
			"email":    "official@test.com",
			"password": "password_official",
			"name":     "Test Official",
			"role":     "official",
		},
	})

	v.SetDefault("storage.driver", StorageLocal)
	v.SetDefault("storage.root", "./uploads")
	v.SetDefault("storage.temp_dir", "")
	v.SetDefault("storage.s3.region", "us-east-1")

	v.SetDefault("detector.endpoint", "")
	v.SetDefault("detector.model_path", "")
	v.SetDefault("detector.timeout", "30s")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Validate 校验关键配置项
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("配置校验失败: auth.jwt_secret 不能为空")
	}
	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("配置校验失败: auth.jwt_secret 长度不能少于 16 字符")
	}
	if c.Auth.AccessTokenTTL <= 0 {
		return fmt.Errorf("配置校验失败: auth.access_token_ttl 必须大于 0")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("配置校验失败: server.port 必须在 1-65535 之间")
	}
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("配置校验失败: 不支持的 db.driver %q", c.Database.Driver)
	}
	switch c.Auth.Directory {
	case DirectoryStatic, DirectoryDatabase:
	default:
		return fmt.Errorf("配置校验失败: 不支持的 auth.directory %q", c.Auth.Directory)
	}
	switch c.Storage.Driver {
	case StorageLocal:
		if c.Storage.Root == "" {
			return fmt.Errorf("配置校验失败: storage.root 不能为空")
		}
	case StorageS3:
		if c.Storage.S3.Bucket == "" {
			return fmt.Errorf("配置校验失败: storage.s3.bucket 不能为空")
		}
	default:
		return fmt.Errorf("配置校验失败: 不支持的 storage.driver %q", c.Storage.Driver)
	}
	return nil
}
