package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用全局配置结构体
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Store    StoreConfig    `mapstructure:"store"`
	Database DatabaseConfig `mapstructure:"db"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Log      LogConfig      `mapstructure:"log"`
	Quota    QuotaConfig    `mapstructure:"quota"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Port         int            `mapstructure:"port"`
	BaseURL      string         `mapstructure:"base_url"`
	MaxBodyBytes int64          `mapstructure:"max_body_bytes"` // 请求体上限，<=0 不限制
	CORS         CORSConfig     `mapstructure:"cors"`
	Security     SecurityConfig `mapstructure:"security"`
}

// CORSConfig 跨域配置
// AllowOrigins 含 "*" 时放行任意来源，但不再携带凭据
type CORSConfig struct {
	AllowOrigins []string      `mapstructure:"allow_origins"`
	MaxAge       time.Duration `mapstructure:"max_age"`
}

// SecurityConfig 安全响应头；留空的项不下发
type SecurityConfig struct {
	FrameOptions          string        `mapstructure:"frame_options"`
	ContentSecurityPolicy string        `mapstructure:"content_security_policy"`
	ReferrerPolicy        string        `mapstructure:"referrer_policy"`
	HSTSMaxAge            time.Duration `mapstructure:"hsts_max_age"` // 仅 HTTPS 请求下发，0 关闭
}

// 存储驱动
const (
	StoreDriverMemory   = "memory"
	StoreDriverRedis    = "redis"
	StoreDriverPostgres = "postgres"
	StoreDriverSQLite   = "sqlite"
)

// StoreConfig 集合存储配置
// 每个集合（users / departments / projects / zones / quotaRequests）以整块 JSON 数组存放在一个 key 下
type StoreConfig struct {
	Driver    string `mapstructure:"driver"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// DatabaseConfig 数据库配置（postgres / sqlite 驱动使用）
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"sslmode"`
	Timezone        string `mapstructure:"timezone"`
	SQLitePath      string `mapstructure:"sqlite_path"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`  // 连接最大生命周期（分钟）
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // 空闲连接最大存活时间（分钟）
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
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig JWT 认证配置
type AuthConfig struct {
	JWTSecret       string        `mapstructure:"jwt_secret"`
	AccessTokenTTL  time.Duration `mapstructure:"access_token_ttl"`
	RefreshTokenTTL time.Duration `mapstructure:"refresh_token_ttl"`
	LoginRateLimit  int           `mapstructure:"login_rate_limit"`  // 每个窗口内允许的登录次数
	LoginRateWindow time.Duration `mapstructure:"login_rate_window"` // 登录限流窗口
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// QuotaConfig 配额业务参数
type QuotaConfig struct {
	DefaultUserQuota    int64 `mapstructure:"default_user_quota"`    // 用户未设置额度时的默认值
	DefaultProjectQuota int64 `mapstructure:"default_project_quota"` // 新建项目未填写额度时的默认值
	LowBalanceThreshold int64 `mapstructure:"low_balance_threshold"` // 切换项目时提示余额不足的阈值
}

// Load 从配置文件与环境变量加载配置
// 优先级：环境变量 > 配置文件 > 默认值
func Load(path string) (*Config, error) {
	v := viper.New()

	// ── 默认值 ──
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.max_body_bytes", 1<<20)
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:5173"})
	v.SetDefault("server.cors.max_age", "12h")
	v.SetDefault("server.security.frame_options", "DENY")
	v.SetDefault("server.security.content_security_policy", "default-src 'none'; frame-ancestors 'none'")
	v.SetDefault("server.security.referrer_policy", "no-referrer")
	v.SetDefault("server.security.hsts_max_age", "0s")

	v.SetDefault("store.driver", StoreDriverMemory)
	v.SetDefault("store.key_prefix", "ai_platform_")

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "computing_platform")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "Asia/Shanghai")
	v.SetDefault("db.sqlite_path", "computing_platform.db")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime", 60)
	v.SetDefault("db.conn_max_idle_time", 30)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.access_token_ttl", "30m")
	v.SetDefault("auth.refresh_token_ttl", "24h")
	v.SetDefault("auth.login_rate_limit", 10)
	v.SetDefault("auth.login_rate_window", "1m")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("quota.default_user_quota", 1000000)
	v.SetDefault("quota.default_project_quota", 1000000)
	v.SetDefault("quota.low_balance_threshold", 100000)

	// ── 配置文件 ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// ── 环境变量 ──
	v.SetEnvPrefix("QUOTA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		// 配置文件不存在时仅依赖默认值和环境变量
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

// Validate 校验关键配置项
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("配置校验失败: auth.jwt_secret 不能为空")
	}
	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("配置校验失败: auth.jwt_secret 长度不能少于 16 字符")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("配置校验失败: server.port 必须在 1-65535 之间")
	}
	switch c.Store.Driver {
	case StoreDriverMemory, StoreDriverRedis, StoreDriverPostgres, StoreDriverSQLite:
	default:
		return fmt.Errorf("配置校验失败: 不支持的 store.driver %q", c.Store.Driver)
	}
	if c.Quota.DefaultUserQuota <= 0 {
		return fmt.Errorf("配置校验失败: quota.default_user_quota 必须为正数")
	}
	if c.Quota.DefaultProjectQuota <= 0 {
		return fmt.Errorf("配置校验失败: quota.default_project_quota 必须为正数")
	}
	return nil
}
