package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"

	"github.com/jengamart/jengamart-backend/pkg/enums"
)

type Config struct {
	App         AppConfig
	Service     ServiceConfig
	DB          DBConfig
	Redis       RedisConfig
	JWT         JWTConfig
	Commission  CommissionConfig
	Shipping    ShippingConfig
	Payout      PayoutConfig
	MobileMoney MobileMoneyConfig
	GCP         GCPConfig
	PubSub      PubSubConfig
	Cron        CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if _, err := cfg.Commission.DefaultRate(); err != nil {
		return nil, err
	}
	if !cfg.Payout.Currency().IsValid() {
		return nil, fmt.Errorf("invalid payout currency %q", cfg.Payout.RawCurrency)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"JENGAMART_APP_ENV" required:"true"`
	Port         string `envconfig:"JENGAMART_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"JENGAMART_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"JENGAMART_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"JENGAMART_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"JENGAMART_DB_DSN"`
	Driver string `envconfig:"JENGAMART_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"JENGAMART_DB_HOST"`
	LegacyPort     int    `envconfig:"JENGAMART_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"JENGAMART_DB_USER"`
	LegacyPassword string `envconfig:"JENGAMART_DB_PASSWORD"`
	LegacyName     string `envconfig:"JENGAMART_DB_NAME"`
	LegacySSLMode  string `envconfig:"JENGAMART_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"JENGAMART_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"JENGAMART_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"JENGAMART_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"JENGAMART_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	AutoMigrate bool `envconfig:"JENGAMART_AUTO_MIGRATE" default:"false"`
}

type RedisConfig struct {
	URL          string        `envconfig:"JENGAMART_REDIS_URL"`
	Address      string        `envconfig:"JENGAMART_REDIS_ADDR"`
	Password     string        `envconfig:"JENGAMART_REDIS_PASSWORD"`
	DB           int           `envconfig:"JENGAMART_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"JENGAMART_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"JENGAMART_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"JENGAMART_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"JENGAMART_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"JENGAMART_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"JENGAMART_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"JENGAMART_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"JENGAMART_JWT_EXPIRATION_MINUTES" default:"60"`
}

// CommissionConfig controls the platform-wide commission defaults. Vendors may
// carry their own rate; the platform default applies when they do not.
type CommissionConfig struct {
	RawDefaultRate string `envconfig:"JENGAMART_COMMISSION_DEFAULT_RATE" default:"10"`
}

// DefaultRate returns the platform default commission percentage.
func (c CommissionConfig) DefaultRate() (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(strings.TrimSpace(c.RawDefaultRate))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid default commission rate %q: %w", c.RawDefaultRate, err)
	}
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(100)) {
		return decimal.Zero, fmt.Errorf("default commission rate %q out of range", c.RawDefaultRate)
	}
	return rate, nil
}

// ShippingConfig controls the per-vendor flat shipping rule used by the splitter.
type ShippingConfig struct {
	FlatFeeCents       int `envconfig:"JENGAMART_SHIPPING_FLAT_FEE_CENTS" default:"500"`
	FreeThresholdCents int `envconfig:"JENGAMART_SHIPPING_FREE_THRESHOLD_CENTS" default:"500000"`
}

type PayoutConfig struct {
	RawCurrency    string `envconfig:"JENGAMART_PAYOUT_CURRENCY" default:"KES"`
	MinAmountCents int    `envconfig:"JENGAMART_PAYOUT_MIN_AMOUNT_CENTS" default:"100"`
}

// Currency returns the configured payout currency.
func (p PayoutConfig) Currency() enums.Currency {
	return enums.Currency(strings.ToUpper(strings.TrimSpace(p.RawCurrency)))
}

type MobileMoneyConfig struct {
	BaseURL  string        `envconfig:"JENGAMART_MOBILE_MONEY_BASE_URL"`
	APIKey   string        `envconfig:"JENGAMART_MOBILE_MONEY_API_KEY"`
	Timeout  time.Duration `envconfig:"JENGAMART_MOBILE_MONEY_TIMEOUT" default:"30s"`
	Provider string        `envconfig:"JENGAMART_MOBILE_MONEY_DEFAULT_PROVIDER" default:"mpesa"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"JENGAMART_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	OrdersTopic        string `envconfig:"JENGAMART_PUBSUB_ORDERS_TOPIC" default:"jm-order-events"`
	OrdersSubscription string `envconfig:"JENGAMART_PUBSUB_ORDERS_SUBSCRIPTION"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"JENGAMART_CRON_INTERVAL" default:"1h"`
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
