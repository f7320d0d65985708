package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Cookie    CookieConfig
	Log       LogConfig
	Event     EventConfig
	HTTP      HTTPConfig
	Storage   StorageConfig
	Telemetry TelemetryConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// JWTConfig holds JWT settings
type JWTConfig struct {
	Secret                 string
	AccessTokenExpiration  time.Duration
	RefreshTokenExpiration time.Duration
	Issuer                 string
	RefreshSecret          string
	MaxRefreshCount        int
}

// CookieConfig holds cookie settings for the refresh token
type CookieConfig struct {
	Domain   string // empty = current domain
	Path     string
	Secure   bool   // must be true in production
	SameSite string // "strict", "lax", or "none"
}

// EventConfig holds outbox processor configuration
type EventConfig struct {
	ProcessorEnabled bool
	BatchSize        int
	PollInterval     time.Duration
	MaxRetries       int
	CleanupEnabled   bool
	CleanupRetention time.Duration
}

// HTTPConfig holds HTTP server configuration. The auth knobs apply a
// stricter rate limit on the login and refresh endpoints.
type HTTPConfig struct {
	ReadTimeout           time.Duration
	WriteTimeout          time.Duration
	IdleTimeout           time.Duration
	MaxHeaderBytes        int
	MaxBodySize           int64
	RateLimitEnabled      bool
	RateLimitRequests     int
	RateLimitWindow       time.Duration
	AuthRateLimitEnabled  bool
	AuthRateLimitRequests int
	AuthRateLimitWindow   time.Duration
	CORSAllowOrigins      []string
	CORSAllowMethods      []string
	CORSAllowHeaders      []string
	TrustedProxies        []string
}

// TelemetryConfig holds OpenTelemetry tracing settings
type TelemetryConfig struct {
	Enabled           bool
	CollectorEndpoint string
	SamplingRatio     float64
	Insecure          bool
	DBTracingEnabled  bool
	LogFullSQL        bool
}

// StorageConfig holds S3-compatible object storage settings.
// Used for indent item images and quotation attachments.
type StorageConfig struct {
	Endpoint          string
	Region            string
	Bucket            string
	AccessKey         string
	SecretKey         string
	UseSSL            bool
	UsePathStyle      bool
	PresignExpiration time.Duration
}

// Load reads configuration in priority order:
//  1. Environment variables with INDENT_ prefix (e.g. INDENT_DATABASE_PASSWORD)
//  2. config.toml
//  3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./backend")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		// a missing config file is fine, env vars and defaults cover it
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("INDENT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App:       loadApp(v),
		Database:  loadDatabase(v),
		Redis:     loadRedis(v),
		JWT:       loadJWT(v),
		Cookie:    loadCookie(v),
		Log:       loadLog(v),
		Event:     loadEvent(v),
		HTTP:      loadHTTP(v),
		Telemetry: loadTelemetry(v),
		Storage:   loadStorage(v),
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadApp(v *viper.Viper) AppConfig {
	return AppConfig{
		Name: v.GetString("app.name"),
		Env:  v.GetString("app.env"),
		Port: v.GetString("app.port"),
	}
}

func loadDatabase(v *viper.Viper) DatabaseConfig {
	return DatabaseConfig{
		Host:            v.GetString("database.host"),
		Port:            v.GetInt("database.port"),
		User:            v.GetString("database.user"),
		Password:        v.GetString("database.password"),
		DBName:          v.GetString("database.dbname"),
		SSLMode:         v.GetString("database.sslmode"),
		MaxOpenConns:    v.GetInt("database.max_open_conns"),
		MaxIdleConns:    v.GetInt("database.max_idle_conns"),
		ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
		ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
	}
}

func loadRedis(v *viper.Viper) RedisConfig {
	return RedisConfig{
		Host:     v.GetString("redis.host"),
		Port:     v.GetInt("redis.port"),
		Password: v.GetString("redis.password"),
		DB:       v.GetInt("redis.db"),
	}
}

func loadJWT(v *viper.Viper) JWTConfig {
	return JWTConfig{
		Secret:                 v.GetString("jwt.secret"),
		AccessTokenExpiration:  v.GetDuration("jwt.access_token_expiration"),
		RefreshTokenExpiration: v.GetDuration("jwt.refresh_token_expiration"),
		Issuer:                 v.GetString("jwt.issuer"),
		RefreshSecret:          v.GetString("jwt.refresh_secret"),
		MaxRefreshCount:        v.GetInt("jwt.max_refresh_count"),
	}
}

func loadCookie(v *viper.Viper) CookieConfig {
	return CookieConfig{
		Domain:   v.GetString("cookie.domain"),
		Path:     v.GetString("cookie.path"),
		Secure:   v.GetBool("cookie.secure"),
		SameSite: v.GetString("cookie.same_site"),
	}
}

func loadLog(v *viper.Viper) LogConfig {
	return LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
		Output: v.GetString("log.output"),
	}
}

func loadEvent(v *viper.Viper) EventConfig {
	return EventConfig{
		ProcessorEnabled: v.GetBool("event.processor_enabled"),
		BatchSize:        v.GetInt("event.batch_size"),
		PollInterval:     v.GetDuration("event.poll_interval"),
		MaxRetries:       v.GetInt("event.max_retries"),
		CleanupEnabled:   v.GetBool("event.cleanup_enabled"),
		CleanupRetention: v.GetDuration("event.cleanup_retention"),
	}
}

func loadHTTP(v *viper.Viper) HTTPConfig {
	return HTTPConfig{
		ReadTimeout:           v.GetDuration("http.read_timeout"),
		WriteTimeout:          v.GetDuration("http.write_timeout"),
		IdleTimeout:           v.GetDuration("http.idle_timeout"),
		MaxHeaderBytes:        v.GetInt("http.max_header_bytes"),
		MaxBodySize:           v.GetInt64("http.max_body_size"),
		RateLimitEnabled:      v.GetBool("http.rate_limit_enabled"),
		RateLimitRequests:     v.GetInt("http.rate_limit_requests"),
		RateLimitWindow:       v.GetDuration("http.rate_limit_window"),
		AuthRateLimitEnabled:  v.GetBool("http.auth_rate_limit_enabled"),
		AuthRateLimitRequests: v.GetInt("http.auth_rate_limit_requests"),
		AuthRateLimitWindow:   v.GetDuration("http.auth_rate_limit_window"),
		CORSAllowOrigins:      v.GetStringSlice("http.cors_allow_origins"),
		CORSAllowMethods:      v.GetStringSlice("http.cors_allow_methods"),
		CORSAllowHeaders:      v.GetStringSlice("http.cors_allow_headers"),
		TrustedProxies:        v.GetStringSlice("http.trusted_proxies"),
	}
}

func loadTelemetry(v *viper.Viper) TelemetryConfig {
	return TelemetryConfig{
		Enabled:           v.GetBool("telemetry.enabled"),
		CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
		SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
		Insecure:          v.GetBool("telemetry.insecure"),
		DBTracingEnabled:  v.GetBool("telemetry.db_tracing_enabled"),
		LogFullSQL:        v.GetBool("telemetry.log_full_sql"),
	}
}

func loadStorage(v *viper.Viper) StorageConfig {
	return StorageConfig{
		Endpoint:          v.GetString("storage.endpoint"),
		Region:            v.GetString("storage.region"),
		Bucket:            v.GetString("storage.bucket"),
		AccessKey:         v.GetString("storage.access_key"),
		SecretKey:         v.GetString("storage.secret_key"),
		UseSSL:            v.GetBool("storage.use_ssl"),
		UsePathStyle:      v.GetBool("storage.use_path_style"),
		PresignExpiration: v.GetDuration("storage.presign_expiration"),
	}
}

func defaultString(target *string, fallback string) {
	if *target == "" {
		*target = fallback
	}
}

func defaultInt(target *int, fallback int) {
	if *target == 0 {
		*target = fallback
	}
}

func defaultDuration(target *time.Duration, fallback time.Duration) {
	if *target == 0 {
		*target = fallback
	}
}

// applyDefaults fills every zero-valued field with its built-in default.
// Zero means "not set": a knob whose meaningful value could be zero must
// not rely on this.
func (c *Config) applyDefaults() {
	defaultString(&c.App.Name, "indentflow-backend")
	defaultString(&c.App.Env, "development")
	defaultString(&c.App.Port, "8080")

	defaultString(&c.Database.Host, "localhost")
	defaultInt(&c.Database.Port, 5432)
	defaultString(&c.Database.User, "postgres")
	defaultString(&c.Database.DBName, "indentflow")
	defaultString(&c.Database.SSLMode, "disable")
	defaultInt(&c.Database.MaxOpenConns, 25)
	defaultInt(&c.Database.MaxIdleConns, 5)
	defaultInt(&c.Database.ConnMaxLifetime, 60)
	defaultInt(&c.Database.ConnMaxIdleTime, 30)

	defaultString(&c.Redis.Host, "localhost")
	defaultInt(&c.Redis.Port, 6379)

	defaultDuration(&c.JWT.AccessTokenExpiration, 15*time.Minute)
	defaultDuration(&c.JWT.RefreshTokenExpiration, 168*time.Hour)
	defaultString(&c.JWT.Issuer, "indentflow-backend")
	defaultInt(&c.JWT.MaxRefreshCount, 10)

	defaultString(&c.Cookie.Path, "/")
	defaultString(&c.Cookie.SameSite, "lax")

	defaultString(&c.Log.Level, "info")
	defaultString(&c.Log.Format, "console")
	defaultString(&c.Log.Output, "stdout")

	defaultInt(&c.Event.BatchSize, 100)
	defaultDuration(&c.Event.PollInterval, 5*time.Second)
	defaultInt(&c.Event.MaxRetries, 5)
	defaultDuration(&c.Event.CleanupRetention, 168*time.Hour)

	defaultDuration(&c.HTTP.ReadTimeout, 15*time.Second)
	defaultDuration(&c.HTTP.WriteTimeout, 15*time.Second)
	defaultDuration(&c.HTTP.IdleTimeout, 60*time.Second)
	defaultInt(&c.HTTP.MaxHeaderBytes, 1<<20) // 1MB
	if c.HTTP.MaxBodySize == 0 {
		c.HTTP.MaxBodySize = 10 << 20 // 10MB
	}
	defaultInt(&c.HTTP.RateLimitRequests, 100)
	defaultDuration(&c.HTTP.RateLimitWindow, time.Minute)
	// login endpoints get a much tighter budget against brute force
	defaultInt(&c.HTTP.AuthRateLimitRequests, 5)
	defaultDuration(&c.HTTP.AuthRateLimitWindow, time.Minute)
	// CORS origins deliberately have no "*" fallback: an empty list means
	// no cross-origin requests until explicitly configured.
	if len(c.HTTP.CORSAllowMethods) == 0 {
		c.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"}
	}
	if len(c.HTTP.CORSAllowHeaders) == 0 {
		c.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID", "X-Tenant-ID"}
	}

	defaultString(&c.Telemetry.CollectorEndpoint, "localhost:4317")
	if c.Telemetry.SamplingRatio == 0 {
		c.Telemetry.SamplingRatio = 1.0
	}

	defaultString(&c.Storage.Endpoint, "http://localhost:9000")
	defaultString(&c.Storage.Region, "us-east-1")
	defaultString(&c.Storage.Bucket, "indent-attachments")
	defaultDuration(&c.Storage.PresignExpiration, 15*time.Minute)
}

func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	if c.App.Env == "production" {
		return c.validateProduction()
	}
	return nil
}

// validateProduction rejects configurations that would be insecure on a
// real deployment.
func (c *Config) validateProduction() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt.secret is required in production")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("jwt.secret must be at least 32 characters in production")
	}
	if c.Database.Password == "" {
		return fmt.Errorf("database.password is required in production")
	}
	if c.Database.SSLMode == "disable" {
		return fmt.Errorf("database.sslmode cannot be 'disable' in production")
	}
	if !c.Cookie.Secure {
		return fmt.Errorf("cookie.secure must be true in production (HTTPS required for secure cookies)")
	}
	if c.Cookie.SameSite == "none" && !c.Cookie.Secure {
		return fmt.Errorf("cookie.same_site=none requires cookie.secure=true")
	}
	for _, origin := range c.HTTP.CORSAllowOrigins {
		if origin == "*" {
			return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
		}
	}
	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
