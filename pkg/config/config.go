package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/clubwash/clubwash-backend/pkg/enums"
	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Packages      PackagesConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Packages.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string   `envconfig:"CLUBWASH_APP_ENV" required:"true"`
	Port         string   `envconfig:"CLUBWASH_APP_PORT" default:"8080"`
	LogLevel     string   `envconfig:"CLUBWASH_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"CLUBWASH_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"CLUBWASH_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"CLUBWASH_DB_DSN"`
	Driver string `envconfig:"CLUBWASH_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"CLUBWASH_DB_HOST"`
	LegacyPort     int    `envconfig:"CLUBWASH_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CLUBWASH_DB_USER"`
	LegacyPassword string `envconfig:"CLUBWASH_DB_PASSWORD"`
	LegacyName     string `envconfig:"CLUBWASH_DB_NAME"`
	LegacySSLMode  string `envconfig:"CLUBWASH_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CLUBWASH_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CLUBWASH_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CLUBWASH_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CLUBWASH_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CLUBWASH_REDIS_URL"`
	Address      string        `envconfig:"CLUBWASH_REDIS_ADDR"`
	Password     string        `envconfig:"CLUBWASH_REDIS_PASSWORD"`
	DB           int           `envconfig:"CLUBWASH_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CLUBWASH_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CLUBWASH_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CLUBWASH_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CLUBWASH_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CLUBWASH_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"CLUBWASH_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"CLUBWASH_JWT_ISSUER" default:"clubwash"`
	ExpirationMinutes int    `envconfig:"CLUBWASH_JWT_EXPIRATION_MINUTES" default:"480"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"CLUBWASH_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"CLUBWASH_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"CLUBWASH_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"CLUBWASH_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"CLUBWASH_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"CLUBWASH_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit int           `envconfig:"CLUBWASH_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit    int           `envconfig:"CLUBWASH_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"CLUBWASH_AUTO_MIGRATE" default:"false"`
}

// PackagesConfig is the single owner of the package-tier table: every quota
// check and price lookup in the codebase goes through it.
type PackagesConfig struct {
	Quota299K int `envconfig:"CLUBWASH_PACKAGE_299K_QUOTA" default:"1"`
	Quota499K int `envconfig:"CLUBWASH_PACKAGE_499K_QUOTA" default:"2"`
	Quota669K int `envconfig:"CLUBWASH_PACKAGE_669K_QUOTA" default:"3"`

	Price299K string `envconfig:"CLUBWASH_PACKAGE_299K_PRICE" default:"299000"`
	Price499K string `envconfig:"CLUBWASH_PACKAGE_499K_PRICE" default:"499000"`
	Price669K string `envconfig:"CLUBWASH_PACKAGE_669K_PRICE" default:"669000"`
}

// VehicleQuota returns the vehicle allowance for a tier, zero for unknown tiers.
func (p PackagesConfig) VehicleQuota(tier enums.PackageTier) int {
	switch tier {
	case enums.PackageTier299K:
		return p.Quota299K
	case enums.PackageTier499K:
		return p.Quota499K
	case enums.PackageTier669K:
		return p.Quota669K
	}
	return 0
}

// MonthlyPrice returns the tier's monthly price in rupiah.
func (p PackagesConfig) MonthlyPrice(tier enums.PackageTier) decimal.Decimal {
	raw := ""
	switch tier {
	case enums.PackageTier299K:
		raw = p.Price299K
	case enums.PackageTier499K:
		raw = p.Price499K
	case enums.PackageTier669K:
		raw = p.Price669K
	}
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero
	}
	return price
}

func (p PackagesConfig) validate() error {
	for _, tier := range enums.PackageTiers() {
		if p.VehicleQuota(tier) <= 0 {
			return fmt.Errorf("package tier %s must have a positive vehicle quota", tier)
		}
	}
	for _, raw := range []string{p.Price299K, p.Price499K, p.Price669K} {
		if _, err := decimal.NewFromString(raw); err != nil {
			return fmt.Errorf("invalid package price %q: %w", raw, err)
		}
	}
	return nil
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
