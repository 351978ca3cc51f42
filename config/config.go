package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultConfigPath 默认配置文件路径
const DefaultConfigPath = "config/config.yaml"

// Config 应用配置结构体
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Session   SessionConfig   `yaml:"session"`
	Log       LogConfig       `yaml:"log"`
	Redis     RedisConfig     `yaml:"redis"`
	TMDB      TMDBConfig      `yaml:"tmdb"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port         string        `yaml:"port"`         // 服务器监听端口
	Mode         string        `yaml:"mode"`         // gin运行模式：debug/release/test
	ReadTimeout  time.Duration `yaml:"readTimeout"`  // 读取超时时间
	WriteTimeout time.Duration `yaml:"writeTimeout"` // 写入超时时间
	IdleTimeout  time.Duration `yaml:"idleTimeout"`  // 空闲超时时间
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver   string `yaml:"driver"`   // 数据库驱动类型：mysql/postgres/sqlite
	Host     string `yaml:"host"`     // 数据库主机地址
	Port     int    `yaml:"port"`     // 数据库端口
	Username string `yaml:"username"` // 数据库用户名
	Password string `yaml:"password"` // 数据库密码
	Database string `yaml:"database"` // 数据库名称（sqlite时为文件路径）
	Charset  string `yaml:"charset"`  // 字符集（仅mysql）
	SSLMode  string `yaml:"sslMode"`  // SSL模式（仅postgres）
	MaxIdle  int    `yaml:"maxIdle"`  // 最大空闲连接数
	MaxOpen  int    `yaml:"maxOpen"`  // 最大打开连接数
	LogSQL   bool   `yaml:"logSQL"`   // 是否打印全部SQL
}

// SessionConfig 会话Cookie配置
type SessionConfig struct {
	CookieName string        `yaml:"cookieName"` // Cookie名称
	MaxAge     time.Duration `yaml:"maxAge"`     // Cookie有效期
	Secure     bool          `yaml:"secure"`     // 是否仅HTTPS传输
	Signed     bool          `yaml:"signed"`     // 是否使用签名令牌（false时Cookie值即用户ID）
	Secret     string        `yaml:"secret"`     // 签名密钥
	Issuer     string        `yaml:"issuer"`     // 签发者
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `yaml:"level"`      // 日志级别
	Filename   string `yaml:"filename"`   // 日志文件名
	MaxSize    int    `yaml:"maxSize"`    // 单个日志文件最大大小(MB)
	MaxBackups int    `yaml:"maxBackups"` // 最大备份文件数
	MaxAge     int    `yaml:"maxAge"`     // 最大保存天数
	Compress   bool   `yaml:"compress"`   // 是否压缩
	Console    bool   `yaml:"console"`    // 是否同时输出到标准输出
}

// RedisConfig Redis配置
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`  // 是否启用（未启用时计数直接查库）
	Host     string `yaml:"host"`     // Redis主机地址
	Port     int    `yaml:"port"`     // Redis端口
	Password string `yaml:"password"` // Redis密码
	DB       int    `yaml:"db"`       // Redis数据库编号
}

// TMDBConfig 电影目录API配置
type TMDBConfig struct {
	APIKey       string        `yaml:"apiKey"`       // API密钥
	BaseURL      string        `yaml:"baseURL"`      // API地址
	ImageBaseURL string        `yaml:"imageBaseURL"` // 图片地址
	Language     string        `yaml:"language"`     // 返回语言
	Timeout      time.Duration `yaml:"timeout"`      // 单次请求超时
	RateLimit    int           `yaml:"rateLimit"`    // 每个窗口允许的请求数
	RateWindow   time.Duration `yaml:"rateWindow"`   // 限流窗口
}

// WebSocketConfig WebSocket 心跳配置
type WebSocketConfig struct {
	PingInterval time.Duration `yaml:"pingInterval"` // 发送ping的间隔
	ReadTimeout  time.Duration `yaml:"readTimeout"`  // 读超时时间（未收到任何数据则断开）
}

// MetricsConfig 监控指标配置
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"` // 是否暴露 /metrics
	Path    string `yaml:"path"`    // 指标路径
}

// LoadConfig 加载配置（混合方式：.env + YAML文件 + 环境变量）
func LoadConfig() *Config {
	return LoadConfigFrom(DefaultConfigPath)
}

// LoadConfigFrom 从指定路径加载配置
func LoadConfigFrom(filePath string) *Config {
	// .env 不存在时忽略
	_ = godotenv.Load()

	config := loadFromYAML(filePath)

	// 环境变量优先级更高
	overrideWithEnvVars(config)

	return config
}

// loadFromYAML 从YAML文件加载配置，未填写的字段保留默认值
func loadFromYAML(filePath string) *Config {
	config := GetDefaultConfig()

	data, err := os.ReadFile(filePath)
	if err != nil {
		return config
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return GetDefaultConfig()
	}

	return config
}

// overrideWithEnvVars 用环境变量覆盖配置
func overrideWithEnvVars(config *Config) {
	// 服务器配置
	if port := getEnv("SERVER_PORT", ""); port != "" {
		config.Server.Port = port
	}
	if mode := getEnv("GIN_MODE", ""); mode != "" {
		config.Server.Mode = mode
	}
	if timeout := getEnvDuration("SERVER_READ_TIMEOUT", 0); timeout > 0 {
		config.Server.ReadTimeout = timeout
	}
	if timeout := getEnvDuration("SERVER_WRITE_TIMEOUT", 0); timeout > 0 {
		config.Server.WriteTimeout = timeout
	}
	if timeout := getEnvDuration("SERVER_IDLE_TIMEOUT", 0); timeout > 0 {
		config.Server.IdleTimeout = timeout
	}

	// 数据库配置
	if driver := getEnv("DB_DRIVER", ""); driver != "" {
		config.Database.Driver = driver
	}
	if host := getEnv("DB_HOST", ""); host != "" {
		config.Database.Host = host
	}
	if port := getEnvInt("DB_PORT", 0); port > 0 {
		config.Database.Port = port
	}
	if username := getEnv("DB_USERNAME", ""); username != "" {
		config.Database.Username = username
	}
	if password := getEnv("DB_PASSWORD", ""); password != "" {
		config.Database.Password = password
	}
	if database := getEnv("DB_DATABASE", ""); database != "" {
		config.Database.Database = database
	}
	if charset := getEnv("DB_CHARSET", ""); charset != "" {
		config.Database.Charset = charset
	}
	if sslMode := getEnv("DB_SSLMODE", ""); sslMode != "" {
		config.Database.SSLMode = sslMode
	}
	if maxIdle := getEnvInt("DB_MAX_IDLE", 0); maxIdle > 0 {
		config.Database.MaxIdle = maxIdle
	}
	if maxOpen := getEnvInt("DB_MAX_OPEN", 0); maxOpen > 0 {
		config.Database.MaxOpen = maxOpen
	}
	config.Database.LogSQL = getEnvBool("DB_LOG_SQL", config.Database.LogSQL)

	// 会话配置
	if name := getEnv("SESSION_COOKIE_NAME", ""); name != "" {
		config.Session.CookieName = name
	}
	if maxAge := getEnvDuration("SESSION_MAX_AGE", 0); maxAge > 0 {
		config.Session.MaxAge = maxAge
	}
	if secret := getEnv("SESSION_SECRET", ""); secret != "" {
		config.Session.Secret = secret
	}
	if issuer := getEnv("SESSION_ISSUER", ""); issuer != "" {
		config.Session.Issuer = issuer
	}
	config.Session.Secure = getEnvBool("SESSION_SECURE", config.Session.Secure)
	config.Session.Signed = getEnvBool("SESSION_SIGNED", config.Session.Signed)

	// 日志配置
	if level := getEnv("LOG_LEVEL", ""); level != "" {
		config.Log.Level = level
	}
	if filename := getEnv("LOG_FILENAME", ""); filename != "" {
		config.Log.Filename = filename
	}
	if maxSize := getEnvInt("LOG_MAX_SIZE", 0); maxSize > 0 {
		config.Log.MaxSize = maxSize
	}
	if maxBackups := getEnvInt("LOG_MAX_BACKUPS", 0); maxBackups > 0 {
		config.Log.MaxBackups = maxBackups
	}
	if maxAge := getEnvInt("LOG_MAX_AGE", 0); maxAge > 0 {
		config.Log.MaxAge = maxAge
	}
	config.Log.Console = getEnvBool("LOG_CONSOLE", config.Log.Console)

	// Redis配置
	config.Redis.Enabled = getEnvBool("REDIS_ENABLED", config.Redis.Enabled)
	if host := getEnv("REDIS_HOST", ""); host != "" {
		config.Redis.Host = host
	}
	if port := getEnvInt("REDIS_PORT", 0); port > 0 {
		config.Redis.Port = port
	}
	if password := getEnv("REDIS_PASSWORD", ""); password != "" {
		config.Redis.Password = password
	}
	if db := getEnvInt("REDIS_DB", -1); db >= 0 {
		config.Redis.DB = db
	}

	// TMDB配置
	if apiKey := getEnv("TMDB_API_KEY", ""); apiKey != "" {
		config.TMDB.APIKey = apiKey
	}
	if baseURL := getEnv("TMDB_BASE_URL", ""); baseURL != "" {
		config.TMDB.BaseURL = baseURL
	}
	if imageBaseURL := getEnv("TMDB_IMAGE_BASE_URL", ""); imageBaseURL != "" {
		config.TMDB.ImageBaseURL = imageBaseURL
	}
	if timeout := getEnvDuration("TMDB_TIMEOUT", 0); timeout > 0 {
		config.TMDB.Timeout = timeout
	}
	if limit := getEnvInt("TMDB_RATE_LIMIT", 0); limit > 0 {
		config.TMDB.RateLimit = limit
	}

	// WebSocket配置
	if d := getEnvDuration("WS_PING_INTERVAL", 0); d > 0 {
		config.WebSocket.PingInterval = d
	}
	if d := getEnvDuration("WS_READ_TIMEOUT", 0); d > 0 {
		config.WebSocket.ReadTimeout = d
	}

	// 监控配置
	config.Metrics.Enabled = getEnvBool("METRICS_ENABLED", config.Metrics.Enabled)
}

// GetDefaultConfig 获取默认配置
func GetDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         "8080",
			Mode:         "release",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:   "mysql",
			Host:     "localhost",
			Port:     3306,
			Username: "movie_tracker",
			Password: "",
			Database: "movie_tracker",
			Charset:  "utf8mb4",
			SSLMode:  "disable",
			MaxIdle:  10,
			MaxOpen:  100,
		},
		Session: SessionConfig{
			CookieName: "session_id",
			MaxAge:     7 * 24 * time.Hour,
			Secure:     false,
			Signed:     true,
			Secret:     "change-me-session-secret",
			Issuer:     "movie-tracker",
		},
		Log: LogConfig{
			Level:      "info",
			Filename:   "logs/app.log",
			MaxSize:    100,
			MaxBackups: 3,
			MaxAge:     7,
			Compress:   true,
			Console:    false,
		},
		Redis: RedisConfig{
			Enabled:  false,
			Host:     "localhost",
			Port:     6379,
			Password: "",
			DB:       0,
		},
		TMDB: TMDBConfig{
			BaseURL:      "https://api.themoviedb.org/3",
			ImageBaseURL: "https://image.tmdb.org/t/p",
			Language:     "en-US",
			Timeout:      10 * time.Second,
			RateLimit:    40,
			RateWindow:   10 * time.Second,
		},
		WebSocket: WebSocketConfig{
			PingInterval: 30 * time.Second,
			ReadTimeout:  90 * time.Second,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// 辅助函数：获取环境变量，如果不存在则返回默认值
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// 辅助函数：获取整数环境变量
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// 辅助函数：获取布尔环境变量
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// 辅助函数：获取时间环境变量
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
