package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/evrlink/evrlink-mirror/internal/domain"
)

// Ledger backends
const (
	LedgerBackendSimulated = "simulated"
	LedgerBackendEthereum  = "ethereum"
)

// Database drivers
const (
	DatabaseDriverPostgres = "postgres"
	DatabaseDriverSQLite   = "sqlite"
)

// BaseConfig holds base configuration
type BaseConfig struct {
	Debug     bool   `mapstructure:"debug"`
	SentryDSN string `mapstructure:"sentry_dsn"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // postgres or sqlite
	SQLitePath      string        `mapstructure:"sqlite_path"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadHost        string        `mapstructure:"read_host"`
	ReadPort        int           `mapstructure:"read_port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`     // Maximum number of open connections to the database
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`     // Maximum number of idle connections in the pool
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`  // Maximum amount of time a connection may be reused (e.g., "5m", "1h")
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"` // Maximum amount of time a connection may be idle (e.g., "10m", "30m")
}

// NATSConfig holds NATS JetStream configuration
type NATSConfig struct {
	URL            string        `mapstructure:"url"`
	StreamName     string        `mapstructure:"stream_name"`
	ConsumerName   string        `mapstructure:"consumer_name"`
	MaxReconnects  int           `mapstructure:"max_reconnects"`
	ReconnectWait  time.Duration `mapstructure:"reconnect_wait"`
	ConnectionName string        `mapstructure:"connection_name"`
	AckWait        time.Duration `mapstructure:"ack_wait"`
	MaxDeliver     int           `mapstructure:"max_deliver"`
	Workers        int           `mapstructure:"workers"`
}

// SplitConfig holds the payout split applied on purchases, in basis points
type SplitConfig struct {
	CreatorBps  uint16 `mapstructure:"creator_bps"`
	PlatformBps uint16 `mapstructure:"platform_bps"`
}

// LedgerConfig holds the ledger backend configuration
type LedgerConfig struct {
	Backend         string            `mapstructure:"backend"` // simulated or ethereum
	ChainID         domain.Chain      `mapstructure:"chain_id"`
	RPCURL          string            `mapstructure:"rpc_url"`
	WebSocketURL    string            `mapstructure:"websocket_url"`
	ContractAddress string            `mapstructure:"contract_address"`
	SigningKeys     map[string]string `mapstructure:"signing_keys"` // address -> hex private key
	PollInterval    time.Duration     `mapstructure:"poll_interval"`
	GasLimitBuffer  uint64            `mapstructure:"gas_limit_buffer"`
	StartBlock      uint64            `mapstructure:"start_block"`
	BlockHeadTTL    time.Duration     `mapstructure:"block_head_ttl"`

	// Simulated backend only
	PlatformAddress string      `mapstructure:"platform_address"`
	Split           SplitConfig `mapstructure:"split"`
	EnforceBalances bool        `mapstructure:"enforce_balances"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string   `mapstructure:"host"`
	Port         int      `mapstructure:"port"`
	ReadTimeout  int      `mapstructure:"read_timeout"`  // in seconds
	WriteTimeout int      `mapstructure:"write_timeout"` // in seconds
	IdleTimeout  int      `mapstructure:"idle_timeout"`  // in seconds
	CORSOrigins  []string `mapstructure:"cors_origins"`
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTPublicKey string   `mapstructure:"jwt_public_key"`
	APIKeys      []string `mapstructure:"api_keys"`
}

// ReconcilerConfig holds reconciliation service configuration
type ReconcilerConfig struct {
	ConfirmationTimeout time.Duration `mapstructure:"confirmation_timeout"`
}

// ReconcileSweeperConfig holds pending marker sweeper configuration
type ReconcileSweeperConfig struct {
	Interval             time.Duration `mapstructure:"interval"`
	GracePeriod          time.Duration `mapstructure:"grace_period"`
	BatchSize            int           `mapstructure:"batch_size"`
	WorkerPoolSize       int           `mapstructure:"worker_pool_size"`
	RetryMaxElapsed      time.Duration `mapstructure:"retry_max_elapsed"`
	RetryInitialInterval time.Duration `mapstructure:"retry_initial_interval"`
	CatchUpOnStart       bool          `mapstructure:"catch_up_on_start"`
}

// EmitterConfig holds cursor checkpoint configuration of the ledger event emitter
type EmitterConfig struct {
	CursorSaveFreq  uint64        `mapstructure:"cursor_save_freq"`
	CursorSaveDelay time.Duration `mapstructure:"cursor_save_delay"`
}

// MetricsConfig holds the standalone metrics endpoint configuration.
// The API binary serves /metrics on its own router.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
}

// Address returns the listen address of the metrics endpoint
func (c MetricsConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// APIConfig holds configuration for the API server
type APIConfig struct {
	BaseConfig `mapstructure:",squash"`
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Ledger     LedgerConfig     `mapstructure:"ledger"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Reconciler ReconcilerConfig `mapstructure:"reconciler"`
}

// LedgerEmitterConfig holds configuration for ledger-event-emitter
type LedgerEmitterConfig struct {
	BaseConfig `mapstructure:",squash"`
	Database   DatabaseConfig `mapstructure:"database"`
	NATS       NATSConfig     `mapstructure:"nats"`
	Ledger     LedgerConfig   `mapstructure:"ledger"`
	Emitter    EmitterConfig  `mapstructure:"emitter"`
	Metrics    MetricsConfig  `mapstructure:"metrics"`
}

// EventBridgeConfig holds configuration for event-bridge
type EventBridgeConfig struct {
	BaseConfig `mapstructure:",squash"`
	Database   DatabaseConfig `mapstructure:"database"`
	NATS       NATSConfig     `mapstructure:"nats"`
	Ledger     LedgerConfig   `mapstructure:"ledger"`
	Metrics    MetricsConfig  `mapstructure:"metrics"`
}

// SweeperConfig holds configuration for the sweeper program
type SweeperConfig struct {
	BaseConfig `mapstructure:",squash"`
	Database   DatabaseConfig         `mapstructure:"database"`
	Ledger     LedgerConfig           `mapstructure:"ledger"`
	Reconciler ReconcilerConfig       `mapstructure:"reconciler"`
	Sweeper    ReconcileSweeperConfig `mapstructure:"sweeper"`
	Metrics    MetricsConfig          `mapstructure:"metrics"`
}

// MirrorctlConfig holds configuration for the operator CLI
type MirrorctlConfig struct {
	BaseConfig `mapstructure:",squash"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Ledger     LedgerConfig     `mapstructure:"ledger"`
	Reconciler ReconcilerConfig `mapstructure:"reconciler"`
}

// LoadAPIConfig loads configuration for the API server
func LoadAPIConfig(configFile string, envPath string) (*APIConfig, error) {
	v := configureViper("api", configFile, envPath)

	setDatabaseDefaults(v)
	setLedgerDefaults(v)
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30)
	v.SetDefault("server.write_timeout", 150) // covers the ledger confirmation timeout
	v.SetDefault("server.idle_timeout", 120)
	v.SetDefault("reconciler.confirmation_timeout", "2m")

	var cfg APIConfig
	if err := load(v, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Database.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Ledger.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadLedgerEmitterConfig loads configuration for ledger-event-emitter
func LoadLedgerEmitterConfig(configFile string, envPath string) (*LedgerEmitterConfig, error) {
	v := configureViper("ledger-event-emitter", configFile, envPath)

	setDatabaseDefaults(v)
	setLedgerDefaults(v)
	setNATSDefaults(v)
	setMetricsDefaults(v, 9101)
	v.SetDefault("ledger.backend", LedgerBackendEthereum)
	v.SetDefault("emitter.cursor_save_freq", 10)
	v.SetDefault("emitter.cursor_save_delay", "5s")

	var cfg LedgerEmitterConfig
	if err := load(v, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Database.validate(); err != nil {
		return nil, err
	}
	if cfg.Ledger.Backend != LedgerBackendEthereum {
		return nil, fmt.Errorf("ledger-event-emitter requires the %s backend", LedgerBackendEthereum)
	}
	if err := cfg.Ledger.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadEventBridgeConfig loads configuration for event-bridge
func LoadEventBridgeConfig(configFile string, envPath string) (*EventBridgeConfig, error) {
	v := configureViper("event-bridge", configFile, envPath)

	setDatabaseDefaults(v)
	setLedgerDefaults(v)
	setNATSDefaults(v)
	setMetricsDefaults(v, 9102)
	v.SetDefault("nats.consumer_name", "event-bridge")
	v.SetDefault("nats.ack_wait", "30s")
	v.SetDefault("nats.max_deliver", 10)
	v.SetDefault("nats.workers", 8)

	var cfg EventBridgeConfig
	if err := load(v, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Database.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Ledger.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadSweeperConfig loads configuration for the sweeper program
func LoadSweeperConfig(configFile string, envPath string) (*SweeperConfig, error) {
	v := configureViper("sweeper", configFile, envPath)

	setDatabaseDefaults(v)
	setLedgerDefaults(v)
	setMetricsDefaults(v, 9103)
	v.SetDefault("database.max_open_conns", 5)
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("reconciler.confirmation_timeout", "2m")
	v.SetDefault("sweeper.interval", "30s")
	v.SetDefault("sweeper.grace_period", "5m")
	v.SetDefault("sweeper.batch_size", 100)
	v.SetDefault("sweeper.worker_pool_size", 10)
	v.SetDefault("sweeper.retry_max_elapsed", "1m")
	v.SetDefault("sweeper.retry_initial_interval", "1s")
	v.SetDefault("sweeper.catch_up_on_start", true)

	var cfg SweeperConfig
	if err := load(v, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Database.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Ledger.validate(); err != nil {
		return nil, err
	}
	// a marker younger than the confirmation timeout may still be owned by its request
	if cfg.Sweeper.GracePeriod <= cfg.Reconciler.ConfirmationTimeout {
		return nil, fmt.Errorf("sweeper.grace_period (%s) must be longer than reconciler.confirmation_timeout (%s)",
			cfg.Sweeper.GracePeriod, cfg.Reconciler.ConfirmationTimeout)
	}

	return &cfg, nil
}

// LoadMirrorctlConfig loads configuration for the operator CLI
func LoadMirrorctlConfig(configFile string, envPath string) (*MirrorctlConfig, error) {
	v := configureViper("mirrorctl", configFile, envPath)

	setDatabaseDefaults(v)
	setLedgerDefaults(v)
	v.SetDefault("database.max_open_conns", 2)
	v.SetDefault("reconciler.confirmation_timeout", "30s")

	var cfg MirrorctlConfig
	if err := load(v, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Database.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Ledger.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDatabaseDefaults(v *viper.Viper) {
	v.SetDefault("database.driver", DatabaseDriverPostgres)
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.conn_max_lifetime", "1h")
	v.SetDefault("database.conn_max_idle_time", "10m")
}

func setLedgerDefaults(v *viper.Viper) {
	v.SetDefault("ledger.backend", LedgerBackendSimulated)
	v.SetDefault("ledger.chain_id", string(domain.ChainEthereumMainnet))
	v.SetDefault("ledger.poll_interval", "2s")
	v.SetDefault("ledger.gas_limit_buffer", 20)
	v.SetDefault("ledger.block_head_ttl", "12s")
	v.SetDefault("ledger.split.creator_bps", 4000)
	v.SetDefault("ledger.split.platform_bps", 6000)
}

func setNATSDefaults(v *viper.Viper) {
	v.SetDefault("nats.max_reconnects", 10)
	v.SetDefault("nats.reconnect_wait", "2s")
	v.SetDefault("nats.stream_name", "LEDGER_EVENTS")
}

func setMetricsDefaults(v *viper.Viper, port int) {
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.host", "0.0.0.0")
	v.SetDefault("metrics.port", port)
}

// load reads the config file, tolerating a missing one, and unmarshals into out
func load(v *viper.Viper, out interface{}) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found, use environment variables
	}

	if err := v.Unmarshal(out); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return nil
}

func (c *DatabaseConfig) validate() error {
	switch c.Driver {
	case DatabaseDriverPostgres:
		if c.Host == "" {
			return errors.New("database.host is required")
		}
		if c.DBName == "" {
			return errors.New("database.dbname is required")
		}
	case DatabaseDriverSQLite:
		if c.SQLitePath == "" {
			return errors.New("database.sqlite_path is required")
		}
	default:
		return fmt.Errorf("unsupported database.driver: %s", c.Driver)
	}
	return nil
}

func (c *LedgerConfig) validate() error {
	if !domain.IsValidChain(c.ChainID) {
		return fmt.Errorf("unsupported ledger.chain_id: %s", c.ChainID)
	}

	switch c.Backend {
	case LedgerBackendSimulated:
		if int(c.Split.CreatorBps)+int(c.Split.PlatformBps) > 10000 {
			return errors.New("ledger.split shares exceed 10000 basis points")
		}
	case LedgerBackendEthereum:
		if c.RPCURL == "" {
			return errors.New("ledger.rpc_url is required")
		}
		if c.ContractAddress == "" {
			return errors.New("ledger.contract_address is required")
		}
	default:
		return fmt.Errorf("unsupported ledger.backend: %s", c.Backend)
	}
	return nil
}

// configureViper returns a viper instance with the config file and environment variables set
func configureViper(service string, configFile string, envPath string) *viper.Viper {
	v := viper.New()

	// Load environment variables
	loadEnv(envPath, service)

	// Set config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// Search for config.yaml in multiple locations:
		// 1. Current directory
		v.AddConfigPath(".")
		// 2. Service-specific directory (e.g., cmd/sweeper/, cmd/api/)
		v.AddConfigPath(fmt.Sprintf("cmd/%s/", service))
		// 3. Config directory
		v.AddConfigPath("config/")
	}

	// Set environment variables
	v.SetEnvPrefix("EVRLINK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Explicitly bind all environment variables
	bindAllEnvVars(v)
	return v
}

// bindAllEnvVars explicitly binds all possible environment variables
// This is required for viper to map env vars to config struct fields when no config file exists
func bindAllEnvVars(v *viper.Viper) {
	commonKeys := []string{
		"debug",
		"sentry_dsn",
		// Database
		"database.driver",
		"database.sqlite_path",
		"database.host",
		"database.port",
		"database.read_host",
		"database.read_port",
		"database.user",
		"database.password",
		"database.dbname",
		"database.sslmode",
		"database.max_open_conns",
		"database.max_idle_conns",
		"database.conn_max_lifetime",
		"database.conn_max_idle_time",
		// NATS
		"nats.url",
		"nats.stream_name",
		"nats.consumer_name",
		"nats.max_reconnects",
		"nats.reconnect_wait",
		"nats.connection_name",
		"nats.ack_wait",
		"nats.max_deliver",
		"nats.workers",
		// Ledger
		"ledger.backend",
		"ledger.chain_id",
		"ledger.rpc_url",
		"ledger.websocket_url",
		"ledger.contract_address",
		"ledger.poll_interval",
		"ledger.gas_limit_buffer",
		"ledger.start_block",
		"ledger.block_head_ttl",
		"ledger.platform_address",
		"ledger.split.creator_bps",
		"ledger.split.platform_bps",
		"ledger.enforce_balances",
		// Server
		"server.host",
		"server.port",
		"server.read_timeout",
		"server.write_timeout",
		"server.idle_timeout",
		"server.cors_origins",
		// Auth
		"auth.jwt_public_key",
		"auth.api_keys",
		// Reconciler
		"reconciler.confirmation_timeout",
		// Sweeper
		"sweeper.interval",
		"sweeper.grace_period",
		"sweeper.batch_size",
		"sweeper.worker_pool_size",
		"sweeper.retry_max_elapsed",
		"sweeper.retry_initial_interval",
		"sweeper.catch_up_on_start",
		// Emitter
		"emitter.cursor_save_freq",
		"emitter.cursor_save_delay",
		// Metrics
		"metrics.enabled",
		"metrics.host",
		"metrics.port",
	}

	for _, key := range commonKeys {
		_ = v.BindEnv(key)
	}
}

// loadEnv loads environment variables from the config directory
func loadEnv(envPath string, service string) {
	// Always try shared base first, then local, then optional per-service local.
	envFiles := []string{".env", ".env.local"}
	if service != "" {
		envFiles = append(envFiles, ".env."+service+".local")
	}

	// Default to config directory
	if envPath == "" {
		envPath = "config/"
	}

	for _, envFile := range envFiles {
		candidate := filepath.Join(envPath, envFile)
		_ = godotenv.Overload(candidate) // Overload lets later files override earlier ones
	}
}

// ChdirRepoRoot changes the current working directory to the repository root
func ChdirRepoRoot() {
	cwd, _ := os.Getwd()
	for range 5 {
		if _, err := os.Stat(filepath.Join(cwd, "config")); err == nil {
			_ = os.Chdir(cwd)
			return
		}
		cwd = filepath.Dir(cwd)
	}
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// ReadDSN returns the read-replica database connection string.
// If ReadPort is not configured, it falls back to Port.
func (c *DatabaseConfig) ReadDSN() string {
	port := c.ReadPort
	if port == 0 {
		port = c.Port
	}

	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.ReadHost, port, c.User, c.Password, c.DBName, c.SSLMode)
}
