package infra

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"stock_sim/internal/domain"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Supported backends.
const (
	QueueMemory = "memory"
	QueueRedis  = "redis"
	QueueKafka  = "kafka"

	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// KafkaMinDrainPolls is the drain floor for kafka, where an empty poll only
// means nothing arrived within the poll timeout.
const KafkaMinDrainPolls = 5

// StockConfig is one entry of the initial stock list.
type StockConfig struct {
	Name  string  `yaml:"name"`
	Price float64 `yaml:"price"`
}

// Config는 애플리케이션의 모든 설정을 담습니다.
// LoadConfig로 로드된 후에 환경 변수를 통해 민감 내용을 덮어씁니다.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Simulation struct {
		NumTraders              int     `yaml:"num_traders"`
		OrdersPerTrader         int     `yaml:"orders_per_trader"`
		FactorUpdateProbability float64 `yaml:"factor_update_probability"`
		DelayMinMS              int     `yaml:"delay_min_ms"`
		DelayMaxMS              int     `yaml:"delay_max_ms"`
		Seed                    uint64  `yaml:"seed"`
		InitialFactors          struct {
			UnemploymentRate float64 `yaml:"unemployment_rate"`
			GDPGrowth        float64 `yaml:"gdp_growth"`
		} `yaml:"initial_factors"`
		Stocks []StockConfig `yaml:"stocks"`
	} `yaml:"simulation"`

	Queue struct {
		Backend string `yaml:"backend"`
		Name    string `yaml:"name"`
		Redis   struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
		Kafka struct {
			Brokers       []string `yaml:"brokers"`
			GroupID       string   `yaml:"group_id"`
			PollTimeoutMS int      `yaml:"poll_timeout_ms"`
		} `yaml:"kafka"`
	} `yaml:"queue"`

	Broker struct {
		MinBackoffMS int    `yaml:"min_backoff_ms"`
		MaxBackoffMS int    `yaml:"max_backoff_ms"`
		DrainPolls   int    `yaml:"drain_polls"`
		DumpPath     string `yaml:"dump_path"`
	} `yaml:"broker"`

	Storage struct {
		Enabled  bool   `yaml:"enabled"`
		Driver   string `yaml:"driver"`
		Path     string `yaml:"path"`
		Postgres struct {
			Host     string `yaml:"host"`
			Port     int    `yaml:"port"`
			User     string `yaml:"user"`
			Password string `yaml:"password"`
			Database string `yaml:"database"`
			SSLMode  string `yaml:"sslmode"`
		} `yaml:"postgres"`
	} `yaml:"storage"`

	Feed struct {
		Enabled bool   `yaml:"enabled"`
		Addr    string `yaml:"addr"`
	} `yaml:"feed"`

	Report struct {
		ChartPath string `yaml:"chart_path"`
	} `yaml:"report"`

	Profiling struct {
		PyroscopeAddr string `yaml:"pyroscope_addr"`
		AppName       string `yaml:"app_name"`
	} `yaml:"profiling"`

	Logging struct {
		Level string `yaml:"level"`
		Dir   string `yaml:"dir"`
	} `yaml:"logging"`
}

// DefaultConfig returns the stock scenario: five traders, twenty orders each.
func DefaultConfig() *Config {
	var cfg Config
	cfg.App.Name = "stock-sim"
	cfg.App.Version = "0.1.0"

	cfg.Simulation.NumTraders = 5
	cfg.Simulation.OrdersPerTrader = 20
	cfg.Simulation.FactorUpdateProbability = 0.4
	cfg.Simulation.DelayMinMS = 100
	cfg.Simulation.DelayMaxMS = 500
	cfg.Simulation.InitialFactors.UnemploymentRate = 6.0
	cfg.Simulation.InitialFactors.GDPGrowth = 2.5
	cfg.Simulation.Stocks = []StockConfig{
		{Name: "NIKE", Price: 1500.0},
		{Name: "ADIDAS", Price: 2500.0},
		{Name: "PUMA", Price: 3300.0},
		{Name: "YONEX", Price: 3000.0},
		{Name: "LINING", Price: 4500.0},
	}

	cfg.Queue.Backend = QueueMemory
	cfg.Queue.Name = domain.OrderQueue
	cfg.Queue.Redis.Addr = "localhost:6379"
	cfg.Queue.Kafka.Brokers = []string{"localhost:9092"}
	cfg.Queue.Kafka.GroupID = "stock-sim-broker"
	cfg.Queue.Kafka.PollTimeoutMS = 50

	cfg.Broker.MinBackoffMS = 1
	cfg.Broker.MaxBackoffMS = 50
	cfg.Broker.DrainPolls = 1
	cfg.Broker.DumpPath = "panic_dump.json"

	cfg.Storage.Driver = DriverSQLite
	cfg.Storage.Path = "data/journal.db"

	cfg.Feed.Addr = "localhost:8080"
	cfg.Profiling.AppName = "stock-sim"

	cfg.Logging.Level = "info"
	cfg.Logging.Dir = "logs"
	return &cfg
}

// LoadConfig는 설정 파일을 읽고 파싱합니다.
// A missing file is not an error: the defaults are used.
func LoadConfig(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	// 환경 변수 오버라이드 지원
	overrideWithEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks configuration validity
func (c *Config) Validate() error {
	s := c.Simulation
	if s.NumTraders <= 0 {
		return &domain.ConfigError{Field: "simulation.num_traders", Err: errors.New("must be positive")}
	}
	if s.OrdersPerTrader <= 0 {
		return &domain.ConfigError{Field: "simulation.orders_per_trader", Err: errors.New("must be positive")}
	}
	if s.FactorUpdateProbability < 0 || s.FactorUpdateProbability > 1 {
		return &domain.ConfigError{Field: "simulation.factor_update_probability", Err: errors.New("must be within [0, 1]")}
	}
	if s.DelayMinMS < 0 || s.DelayMaxMS < s.DelayMinMS {
		return &domain.ConfigError{Field: "simulation.delay_max_ms", Err: errors.New("delay range is empty or negative")}
	}
	if len(s.Stocks) == 0 {
		return &domain.ConfigError{Field: "simulation.stocks", Err: errors.New("at least one stock is required")}
	}
	seen := make(map[string]bool, len(s.Stocks))
	for _, st := range s.Stocks {
		if st.Name == "" {
			return &domain.ConfigError{Field: "simulation.stocks", Err: errors.New("stock name is empty")}
		}
		if seen[st.Name] {
			return &domain.ConfigError{Field: "simulation.stocks", Err: fmt.Errorf("duplicate stock %s", st.Name)}
		}
		seen[st.Name] = true
	}

	switch c.Queue.Backend {
	case QueueMemory:
	case QueueRedis:
		if c.Queue.Redis.Addr == "" {
			return &domain.ConfigError{Field: "queue.redis.addr", Err: errors.New("required for redis backend")}
		}
	case QueueKafka:
		if len(c.Queue.Kafka.Brokers) == 0 {
			return &domain.ConfigError{Field: "queue.kafka.brokers", Err: errors.New("required for kafka backend")}
		}
	default:
		return &domain.ConfigError{Field: "queue.backend", Err: fmt.Errorf("%w: %s", domain.ErrUnknownBackend, c.Queue.Backend)}
	}
	if c.Queue.Name == "" {
		return &domain.ConfigError{Field: "queue.name", Err: errors.New("required")}
	}

	if c.Broker.MinBackoffMS <= 0 || c.Broker.MaxBackoffMS < c.Broker.MinBackoffMS {
		return &domain.ConfigError{Field: "broker.max_backoff_ms", Err: errors.New("backoff range is empty or non-positive")}
	}
	if c.Broker.DrainPolls < 1 {
		return &domain.ConfigError{Field: "broker.drain_polls", Err: errors.New("must be at least 1")}
	}

	if c.Storage.Enabled {
		switch c.Storage.Driver {
		case DriverSQLite:
			if c.Storage.Path == "" {
				return &domain.ConfigError{Field: "storage.path", Err: errors.New("required for sqlite")}
			}
		case DriverPostgres:
		default:
			return &domain.ConfigError{Field: "storage.driver", Err: fmt.Errorf("%w: %s", domain.ErrUnknownBackend, c.Storage.Driver)}
		}
	}

	if c.Feed.Enabled && c.Feed.Addr == "" {
		return &domain.ConfigError{Field: "feed.addr", Err: errors.New("required when feed is enabled")}
	}

	return nil
}

// Quota is the global order count that ends a run.
func (c *Config) Quota() int {
	return c.Simulation.NumTraders * c.Simulation.OrdersPerTrader
}

// DelayRange returns the trader pacing bounds.
func (c *Config) DelayRange() (time.Duration, time.Duration) {
	return time.Duration(c.Simulation.DelayMinMS) * time.Millisecond,
		time.Duration(c.Simulation.DelayMaxMS) * time.Millisecond
}

// BackoffRange returns the broker's empty-poll backoff bounds.
func (c *Config) BackoffRange() (time.Duration, time.Duration) {
	return time.Duration(c.Broker.MinBackoffMS) * time.Millisecond,
		time.Duration(c.Broker.MaxBackoffMS) * time.Millisecond
}

// DrainPolls is how many consecutive empty polls after stop end the broker.
// Kafka never goes below KafkaMinDrainPolls.
func (c *Config) DrainPolls() int {
	if c.Queue.Backend == QueueKafka && c.Broker.DrainPolls < KafkaMinDrainPolls {
		return KafkaMinDrainPolls
	}
	return c.Broker.DrainPolls
}

// InitialStocks converts the configured stock list.
func (c *Config) InitialStocks() []domain.Stock {
	stocks := make([]domain.Stock, 0, len(c.Simulation.Stocks))
	for _, s := range c.Simulation.Stocks {
		stocks = append(stocks, domain.NewStock(s.Name, s.Price))
	}
	return stocks
}

// InitialFactors returns the configured starting market factors.
func (c *Config) InitialFactors() domain.MarketFactors {
	f := c.Simulation.InitialFactors
	return domain.NewMarketFactors(f.UnemploymentRate, f.GDPGrowth)
}

// overrideWithEnv는 환경 변수가 존재할 경우 설정 값을 덮어씁니다.
func overrideWithEnv(cfg *Config) {
	if v := os.Getenv("STOCK_SIM_QUEUE_BACKEND"); v != "" {
		cfg.Queue.Backend = v
	}
	if v := os.Getenv("STOCK_SIM_REDIS_ADDR"); v != "" {
		cfg.Queue.Redis.Addr = v
	}
	if v := os.Getenv("STOCK_SIM_REDIS_PASSWORD"); v != "" {
		cfg.Queue.Redis.Password = v
	}
	if v := os.Getenv("STOCK_SIM_KAFKA_BROKERS"); v != "" {
		cfg.Queue.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("STOCK_SIM_POSTGRES_PASSWORD"); v != "" {
		cfg.Storage.Postgres.Password = v
	}
	if v := os.Getenv("STOCK_SIM_SEED"); v != "" {
		if seed, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.Simulation.Seed = seed
		}
	}
	if v := os.Getenv("STOCK_SIM_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("STOCK_SIM_PYROSCOPE_ADDR"); v != "" {
		cfg.Profiling.PyroscopeAddr = v
	}
}
