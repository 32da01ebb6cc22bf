package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Загрузка конфигурации из config.yaml через cleanenv

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Postgres  PostgresConfig  `yaml:"postgres"`
	SpotAPI   SpotAPIConfig   `yaml:"spot_api"`
	Telegram  TelegramConfig  `yaml:"telegram"`
	Logger    LoggerConfig    `yaml:"logger"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr" env-default:":8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env-default:"5s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env-default:"10s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env-default:"10s"`
}

type SchedulerConfig struct {
	Enabled  bool          `yaml:"enabled" env-default:"true"`
	Interval time.Duration `yaml:"interval" env-default:"15m"`
	// DailyCron - дополнительный прогон к моменту публикации завтрашних цен
	// (стандартный 5-польный cron в зоне рынка), пустая строка отключает
	DailyCron string `yaml:"daily_cron" env-default:"15 14 * * *"`
}

type LoggerConfig struct {
	Level  string `yaml:"level"  env-default:"info"` // debug|info|warn|error
	Format string `yaml:"format" env-default:"text"` // text|json
}

type PostgresConfig struct {
	Host            string        `yaml:"host" env:"POSTGRES_HOST" env-default:"localhost"`
	Port            int           `yaml:"port" env-default:"5432"`
	User            string        `yaml:"user" env-default:"postgres"`
	Password        string        `yaml:"password" env:"POSTGRES_PASSWORD" env-default:"postgres"`
	DBName          string        `yaml:"dbname" env-default:"spothinta"`
	SSLMode         string        `yaml:"sslmode" env-default:"disable"`
	Timeout         time.Duration `yaml:"timeout" env-default:"5s"`
	MaxConns        int32         `yaml:"max_conns" env-default:"10"`
	MinConns        int32         `yaml:"min_conns" env-default:"1"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime" env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env-default:"30m"`
	AutoMigrate     bool          `yaml:"auto_migrate" env-default:"true"`
}

// DSN собирает строку подключения, её используют и пул, и миграции
func (c *PostgresConfig) DSN() string {
	return fmt.Sprintf("user=%s password=%s host=%s port=%d dbname=%s sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

type SpotAPIConfig struct {
	BaseURL        string        `yaml:"base_url" env:"SPOT_API_BASE_URL" env-default:"https://api.spot-hinta.fi"`
	TodayPath      string        `yaml:"today_path" env-default:"/TodayAndDayForward"`
	WeekPath       string        `yaml:"week_path" env-default:"/LastSevenDays"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" env-default:"10s"`
	ReadTimeout    time.Duration `yaml:"read_timeout" env-default:"10s"`
	UserAgent      string        `yaml:"user_agent" env-default:"spothinta-service/1.0"`
	// Timezone - зона рынка: в ней считаются "текущий час" и границы суток
	Timezone string `yaml:"timezone" env-default:"Europe/Helsinki"`
	// Demo - синтетические цены вместо похода в сеть
	Demo      bool          `yaml:"demo" env:"SPOT_API_DEMO" env-default:"false"`
	DemoDelay time.Duration `yaml:"demo_delay" env-default:"300ms"`
}

type TelegramConfig struct {
	Enabled             bool          `yaml:"enabled" env-default:"false"`
	Token               string        `yaml:"token" env:"TELEGRAM_BOT_TOKEN"`
	PollTimeout         time.Duration `yaml:"poll_timeout" env-default:"10s"`
	DispatchPeriod      time.Duration `yaml:"dispatch_period" env-default:"1m"`
	DefaultAutoInterval int           `yaml:"default_auto_interval" env-default:"60"` // minutes
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}

	// Try to read from config file if specified
	configPath := fetchConfigPath()
	if configPath != "" {
		if err := cleanenv.ReadConfig(configPath, cfg); err != nil {
			return nil, err
		}
	}

	// Read from environment variables
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func fetchConfigPath() string {
	var res string
	flag.StringVar(&res, "c", "", "config file path")
	flag.Parse()
	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}
	return res
}
