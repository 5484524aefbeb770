package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config represents the application configuration structure.
// It contains settings for the environment, HTTP server, backing stores, the
// CMS, background workers, the blog/analytics services and the monitor.
type Config struct {
	// Environment specifies the current running environment (development, production, etc.)
	Environment string `env:"ENVIRONMENT" env-default:"development" yaml:"environment"`
	// LogLevel overrides the environment's default level when set (debug, info, warn, error).
	LogLevel string `env:"LOG_LEVEL" yaml:"logLevel"`

	// HTTP contains all HTTP server related configurations
	HTTP struct {
		// Addr is the address and port the HTTP server will listen on
		Addr string `env:"HTTP_ADDR" env-default:":8080" yaml:"addr"`
		// ReadTimeout is the maximum duration for reading the entire request, including the body
		ReadTimeout time.Duration `env:"HTTP_READ_TIMEOUT" env-default:"1m" yaml:"readTimeout"`
		// ReadHeaderTimeout is the amount of time allowed to read request headers
		ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" env-default:"10s" yaml:"readHeaderTimeout"`
		// WriteTimeout is the maximum duration before timing out writes of the response
		WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" env-default:"2m" yaml:"writeTimeout"`
		// IdleTimeout is the maximum amount of time to wait for the next request when keep-alives are enabled
		IdleTimeout time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"2m" yaml:"idleTimeout"`
		// RequestTimeout is the maximum time allowed for processing a single request
		RequestTimeout time.Duration `env:"HTTP_REQUEST_TIMEOUT" env-default:"10s" yaml:"requestTimeout"`
		// MaxHeaderBytes controls the maximum number of bytes the server will read parsing the request header
		MaxHeaderBytes int `env:"HTTP_MAX_HEADER_BYTES" env-default:"0" yaml:"maxHeaderBytes"`
		// MetricsPath defines the URL path where metrics are exposed
		MetricsPath string `env:"HTTP_METRICS_PATH" env-default:"/metrics" yaml:"metricsPath"`
		// SiteHost is the public host of the marketing site, used to spot internal referrers.
		SiteHost string `env:"HTTP_SITE_HOST" env-default:"www.aviatorstrainingcentre.in" yaml:"siteHost"`
		// TrustedOrigins may call the API with credentials, e.g. the admin UI.
		TrustedOrigins []string `env:"HTTP_TRUSTED_ORIGINS" env-separator:"," yaml:"trustedOrigins"`
		// TrustedProxies are the addresses or CIDRs of load balancers whose
		// X-Forwarded-For is believed. Empty trusts no proxy.
		TrustedProxies []string `env:"HTTP_TRUSTED_PROXIES" env-separator:"," yaml:"trustedProxies"`
	} `yaml:"http"`

	// Database contains all database connection related configurations
	Database struct {
		// Username for database authentication
		Username string `env:"DATABASE_USERNAME" env-default:"myuser" yaml:"username"`
		// Password for database authentication
		Password string `env:"DATABASE_PASSWORD" env-default:"mypassword" yaml:"password"`
		// Host is the database server hostname or IP address
		Host string `env:"DATABASE_HOST" env-default:"localhost" yaml:"host"`
		// Port is the database server port number
		Port int `env:"DATABASE_PORT" env-default:"5432" yaml:"port"`
		// SslMode defines the SSL mode for the database connection
		SslMode string `env:"DATABASE_SSL_MODE" env-default:"disable" yaml:"sslMode"`
		// DatabaseName is the name of the database to connect to
		DatabaseName string `env:"DATABASE_NAME" env-default:"aviators" yaml:"name"`
		// MaxOpenConnections limits the number of open connections to the database
		MaxOpenConnections int `env:"DATABASE_MAX_OPEN_CONNECTIONS" env-default:"10" yaml:"maxOpenConnections"`
		// MaxIdleConnections limits the number of connections in the idle connection pool
		MaxIdleConnections int `env:"DATABASE_MAX_IDLE_CONNECTIONS" env-default:"8" yaml:"maxIdleConnections"`
		// ConnMaxLifetime is the maximum amount of time a connection may be reused
		ConnMaxLifetime time.Duration `env:"DATABASE_CONNECTION_MAX_LIFETIME" env-default:"3m" yaml:"connMaxLifetime"`
		// ConnMaxIdleTime is the maximum amount of time a connection may be idle
		ConnMaxIdleTime time.Duration `env:"DATABASE_CONNECTION_MAX_IDLE_TIME" env-default:"3m" yaml:"connMaxIdleTime"`
		// StatementTimeout aborts queries running longer than this; zero disables it
		StatementTimeout time.Duration `env:"DATABASE_STATEMENT_TIMEOUT" env-default:"30s" yaml:"statementTimeout"`
	} `yaml:"database"`

	// Redis holds the post cache connection.
	Redis struct {
		Addr     string        `env:"REDIS_ADDR" env-default:"localhost:6379" yaml:"addr"`
		Password string        `env:"REDIS_PASSWORD" yaml:"password"`
		DB       int           `env:"REDIS_DB" env-default:"0" yaml:"db"`
		Prefix   string        `env:"REDIS_PREFIX" env-default:"aviators:post:" yaml:"prefix"`
		PostTTL  time.Duration `env:"REDIS_POST_TTL" env-default:"10m" yaml:"postTtl"`
	} `yaml:"redis"`

	// Mongo holds the analytics event store connection.
	Mongo struct {
		URI      string        `env:"MONGO_URI" env-default:"mongodb://localhost:27017" yaml:"uri"`
		Database string        `env:"MONGO_DATABASE" env-default:"aviators" yaml:"database"`
		Timeout  time.Duration `env:"MONGO_TIMEOUT" env-default:"10s" yaml:"timeout"`
	} `yaml:"mongo"`

	// ObjectStore is the S3-compatible bucket generated markdown is exported to.
	// An empty endpoint disables it.
	ObjectStore struct {
		Endpoint  string `env:"OBJECT_STORE_ENDPOINT" yaml:"endpoint"`
		AccessKey string `env:"OBJECT_STORE_ACCESS_KEY" yaml:"accessKey"`
		SecretKey string `env:"OBJECT_STORE_SECRET_KEY" yaml:"secretKey"`
		Bucket    string `env:"OBJECT_STORE_BUCKET" env-default:"blog-exports" yaml:"bucket"`
		Prefix    string `env:"OBJECT_STORE_PREFIX" env-default:"posts" yaml:"prefix"`
		UseSSL    bool   `env:"OBJECT_STORE_USE_SSL" env-default:"false" yaml:"useSsl"`
	} `yaml:"objectStore"`

	// CMS holds the Sanity project the public site reads posts from.
	CMS struct {
		ProjectID  string        `env:"CMS_PROJECT_ID" yaml:"projectId"`
		Dataset    string        `env:"CMS_DATASET" env-default:"production" yaml:"dataset"`
		Token      string        `env:"CMS_TOKEN" yaml:"token"`
		APIVersion string        `env:"CMS_API_VERSION" env-default:"v2021-06-07" yaml:"apiVersion"`
		Timeout    time.Duration `env:"CMS_TIMEOUT" env-default:"15s" yaml:"timeout"`
	} `yaml:"cms"`

	// JWT holds the RS256 key pair admin tokens are signed and verified with.
	JWT struct {
		PublicKey  string `env:"JWT_PUBLIC_KEY" yaml:"publicKey"`
		PrivateKey string `env:"JWT_PRIVATE_KEY" yaml:"privateKey"`
		// CookieName is the session cookie accepted in place of a bearer token.
		CookieName string `env:"JWT_COOKIE_NAME" env-default:"aviators_session" yaml:"cookieName"`
	} `yaml:"jwt"`

	// Worker configures the river job workers.
	Worker struct {
		PublishConcurrency int           `env:"WORKER_PUBLISH_CONCURRENCY" env-default:"2" yaml:"publishConcurrency"`
		ScoreConcurrency   int           `env:"WORKER_SCORE_CONCURRENCY" env-default:"4" yaml:"scoreConcurrency"`
		JobTimeout         time.Duration `env:"WORKER_JOB_TIMEOUT" env-default:"1m" yaml:"jobTimeout"`
		MaxAttempts        int           `env:"WORKER_MAX_ATTEMPTS" env-default:"5" yaml:"maxAttempts"`
	} `yaml:"worker"`

	// Blog configures the blog service.
	Blog struct {
		DeleteAttempts   int           `env:"BLOG_DELETE_ATTEMPTS" env-default:"3" yaml:"deleteAttempts"`
		DeleteRetryDelay time.Duration `env:"BLOG_DELETE_RETRY_DELAY" env-default:"1s" yaml:"deleteRetryDelay"`
		DefaultPageSize  uint          `env:"BLOG_DEFAULT_PAGE_SIZE" env-default:"12" yaml:"defaultPageSize"`
		MaxPageSize      uint          `env:"BLOG_MAX_PAGE_SIZE" env-default:"50" yaml:"maxPageSize"`
		// ExportDir is where the generate command writes markdown when no bucket is configured.
		ExportDir string `env:"BLOG_EXPORT_DIR" env-default:"generated-posts" yaml:"exportDir"`
		// ConflictWindow is how close two edits of one field must be to conflict.
		ConflictWindow time.Duration `env:"BLOG_CONFLICT_WINDOW" env-default:"5m" yaml:"conflictWindow"`
	} `yaml:"blog"`

	// Analytics configures event ingestion.
	Analytics struct {
		MaxBatch  int           `env:"ANALYTICS_MAX_BATCH" env-default:"50" yaml:"maxBatch"`
		MaxSkew   time.Duration `env:"ANALYTICS_MAX_SKEW" env-default:"5m" yaml:"maxSkew"`
		RateLimit float64       `env:"ANALYTICS_RATE_LIMIT" env-default:"5" yaml:"rateLimit"`
		RateBurst int           `env:"ANALYTICS_RATE_BURST" env-default:"20" yaml:"rateBurst"`
	} `yaml:"analytics"`

	// Monitor configures the health poller.
	Monitor struct {
		Interval         time.Duration `env:"MONITOR_INTERVAL" env-default:"30s" yaml:"interval"`
		CheckTimeout     time.Duration `env:"MONITOR_CHECK_TIMEOUT" env-default:"5s" yaml:"checkTimeout"`
		FailureThreshold int           `env:"MONITOR_FAILURE_THRESHOLD" env-default:"3" yaml:"failureThreshold"`
		CooldownTicks    int           `env:"MONITOR_COOLDOWN_TICKS" env-default:"4" yaml:"cooldownTicks"`
	} `yaml:"monitor"`

	// GracefulShutdownTimeout is the maximum duration to wait for ongoing requests to complete during shutdown
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_TIMEOUT" env-default:"10s" yaml:"gracefulShutdownTimeout"` //nolint: lll
}

// LoadDotEnv loads variables from the given .env files into the process
// environment without overriding variables that are already set. Missing
// files are ignored.
func LoadDotEnv(files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("could not load %s: %w", f, err)
		}
	}

	return nil
}

// Load receives the path for yaml config file and returns a filled Config struct.
func Load(configPath string) (*Config, error) {
	var cfg Config
	err := cleanenv.ReadConfig(configPath, &cfg)
	if err != nil {
		return nil, fmt.Errorf("could not read config: %w", err)
	}

	return &cfg, nil
}
