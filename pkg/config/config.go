package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Password PasswordConfig
	IMS       IMSConfig
	Images    ImagesConfig
	Features  FeatureFlagsConfig
	Bootstrap BootstrapConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"VMS_APP_ENV" required:"true"`
	Port         string `envconfig:"VMS_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"VMS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"VMS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"VMS_DB_DSN"`
	Driver string `envconfig:"VMS_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"VMS_DB_HOST"`
	LegacyPort     int    `envconfig:"VMS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"VMS_DB_USER"`
	LegacyPassword string `envconfig:"VMS_DB_PASSWORD"`
	LegacyName     string `envconfig:"VMS_DB_NAME"`
	LegacySSLMode  string `envconfig:"VMS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"VMS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"VMS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"VMS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"VMS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"VMS_REDIS_URL"`
	Address      string        `envconfig:"VMS_REDIS_ADDR"`
	Password     string        `envconfig:"VMS_REDIS_PASSWORD"`
	DB           int           `envconfig:"VMS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"VMS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"VMS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"VMS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"VMS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"VMS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"VMS_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"VMS_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"VMS_JWT_EXPIRATION_MINUTES" default:"30"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"VMS_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"VMS_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"VMS_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"VMS_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"VMS_ARGON_KEY_LEN" default:"32"`
}

// IMSConfig drives the outbound webhook client for the external
// inventory-management system.
type IMSConfig struct {
	BaseURL        string        `envconfig:"VMS_IMS_BASE_URL" required:"true"`
	RequestTimeout time.Duration `envconfig:"VMS_IMS_REQUEST_TIMEOUT" default:"15s"`
	MaxAttempts    int           `envconfig:"VMS_IMS_MAX_ATTEMPTS" default:"3"`
	RetryDelay     time.Duration `envconfig:"VMS_IMS_RETRY_DELAY" default:"2s"`
}

type ImagesConfig struct {
	Dir string `envconfig:"VMS_IMAGES_DIR" default:"images_upload"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"VMS_AUTO_MIGRATE" default:"false"`
}

// BootstrapConfig seeds the first admin account on an empty users table so a
// fresh deployment can log in and register the rest.
type BootstrapConfig struct {
	AdminUsername string `envconfig:"VMS_BOOTSTRAP_ADMIN_USERNAME" default:"admin"`
	AdminPassword string `envconfig:"VMS_BOOTSTRAP_ADMIN_PASSWORD" default:"admin123"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
