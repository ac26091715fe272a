package config

import "time"

type ServerConfig struct {
	Host         string   `mapstructure:"host"`
	Port         string   `mapstructure:"port"`
	Mode         string   `mapstructure:"mode"`
	AllowedHosts []string `mapstructure:"allowed_hosts"`
	CORSOrigins  []string `mapstructure:"cors_origins"`
}

type GRPCConfig struct {
	Enabled          bool   `mapstructure:"enabled"`
	Port             string `mapstructure:"port"`
	EnableReflection bool   `mapstructure:"enable_reflection"`
}

type DatabaseConfig struct {
	Driver      string `mapstructure:"driver"` // "postgres" or "sqlite"
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	User        string `mapstructure:"user"`
	Password    string `mapstructure:"password"`
	Name        string `mapstructure:"name"`
	SSLMode     string `mapstructure:"sslmode"`
	Path        string `mapstructure:"path"` // sqlite file, ":memory:" allowed
	AutoMigrate bool   `mapstructure:"auto_migrate"`
	LogLevel    string `mapstructure:"log_level"`
	MaxConns    int    `mapstructure:"max_conns"`
}

type AuthConfig struct {
	SessionSecret    string        `mapstructure:"session_secret"`
	SessionDuration  time.Duration `mapstructure:"session_duration"`
	CookieSecure     bool          `mapstructure:"cookie_secure"`
	LockoutThreshold int           `mapstructure:"lockout_threshold"`
}

type SecurityConfig struct {
	CSRFEnabled bool `mapstructure:"csrf_enabled"`
}

type RateLimitConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
	IdleTTL       time.Duration `mapstructure:"idle_ttl"`
}

type LogConfig struct {
	Level         string `mapstructure:"level"`
	File          string `mapstructure:"file"`
	RotationHours int    `mapstructure:"rotation_hours"`
	MaxAgeDays    int    `mapstructure:"max_age_days"`
}

type ResponseConfig struct {
	CodesFile string `mapstructure:"codes_file"`
}

type BootstrapConfig struct {
	AdminUsername string `mapstructure:"admin_username"`
	AdminEmail    string `mapstructure:"admin_email"`
	AdminPassword string `mapstructure:"admin_password"`
}

type AppConfig struct {
	Server      ServerConfig        `mapstructure:"server"`
	GRPC        GRPCConfig          `mapstructure:"grpc"`
	Database    DatabaseConfig      `mapstructure:"database"`
	Auth        AuthConfig          `mapstructure:"auth"`
	Security    SecurityConfig      `mapstructure:"security"`
	RateLimit   RateLimitConfig     `mapstructure:"rate_limit"`
	Log         LogConfig           `mapstructure:"log"`
	Response    ResponseConfig      `mapstructure:"response"`
	Permissions map[string][]string `mapstructure:"permissions"`
	Bootstrap   BootstrapConfig     `mapstructure:"bootstrap"`
}
