package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	DB         DBConfig         `mapstructure:"db"`
	Cron       CronConfig       `mapstructure:"cron"`
	Calendar   CalendarConfig   `mapstructure:"calendar"`
	Sentiment  SentimentConfig  `mapstructure:"sentiment"`
	Collector  CollectorConfig  `mapstructure:"collector"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
	Notify     NotifyConfig     `mapstructure:"notify"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

type ServerConfig struct {
	HTTPAddr string `mapstructure:"http_addr"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

type DBConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Timezone        string        `mapstructure:"timezone"`
}

type CronConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Ingest       string `mapstructure:"ingest"`
	Analysis     string `mapstructure:"analysis"`
	HealthCheck  string `mapstructure:"health_check"`
	WeeklyReport string `mapstructure:"weekly_report"`
}

// CalendarConfig points at the external economic-calendar source.
type CalendarConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type SentimentConfig struct {
	// Threshold is the delta below which a forecast/actual move counts as noise.
	Threshold float64 `mapstructure:"threshold"`
	// TieBreak decides consolidation ties: "bearish" or "bullish".
	TieBreak string `mapstructure:"tie_break"`
}

type CollectorConfig struct {
	IntervalHours  int           `mapstructure:"interval_hours"`
	RetryLimit     int           `mapstructure:"retry_limit"`
	LookbackDays   int           `mapstructure:"lookback_days"`
	GraceBuffer    time.Duration `mapstructure:"grace_buffer"`
	RunTimeout     time.Duration `mapstructure:"run_timeout"`
	Workers        int           `mapstructure:"workers"`
	MatchWindow    time.Duration `mapstructure:"match_window"`
	MatchThreshold float64       `mapstructure:"match_threshold"`

	BreakerThreshold int           `mapstructure:"breaker_threshold"`
	BreakerCooldown  time.Duration `mapstructure:"breaker_cooldown"`
}

type MonitoringConfig struct {
	RunWindow            int           `mapstructure:"run_window"`
	AccuracyWindowDays   int           `mapstructure:"accuracy_window_days"`
	WarningCooldown      time.Duration `mapstructure:"warning_cooldown"`
	CriticalCooldown     time.Duration `mapstructure:"critical_cooldown"`
	StaleWarningAfter    time.Duration `mapstructure:"stale_warning_after"`
	StaleCriticalAfter   time.Duration `mapstructure:"stale_critical_after"`
	HealthySuccessRate   float64       `mapstructure:"healthy_success_rate"`
	CriticalSuccessRate  float64       `mapstructure:"critical_success_rate"`
	AccuracyAlertPercent float64       `mapstructure:"accuracy_alert_percent"`
}

type NotifyConfig struct {
	WebhookURL       string        `mapstructure:"webhook_url"`
	HealthWebhookURL string        `mapstructure:"health_webhook_url"`
	Timeout          time.Duration `mapstructure:"timeout"`
}

func Load(path string, envOnly bool) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("FX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()

	v.SetDefault("app.env", "dev")
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", "30m")
	v.SetDefault("db.conn_max_idle_time", "5m")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("cron.enabled", true)
	// Twice a day: the weekly page also carries mid-week forecast revisions.
	v.SetDefault("cron.ingest", "@every 12h")
	v.SetDefault("cron.analysis", "@every 1h")
	v.SetDefault("cron.health_check", "@every 30m")
	// Monday 06:00 UTC, after the prior week has fully closed.
	v.SetDefault("cron.weekly_report", "0 0 6 * * 1")
	v.SetDefault("calendar.base_url", "https://www.forexfactory.com")
	v.SetDefault("calendar.timeout", "30s")

	v.SetDefault("sentiment.threshold", 0.0)
	v.SetDefault("sentiment.tie_break", "bearish")

	v.SetDefault("collector.interval_hours", 4)
	v.SetDefault("collector.retry_limit", 3)
	v.SetDefault("collector.lookback_days", 7)
	v.SetDefault("collector.grace_buffer", "1h")
	v.SetDefault("collector.run_timeout", "30s")
	v.SetDefault("collector.workers", 4)
	v.SetDefault("collector.match_window", "24h")
	v.SetDefault("collector.match_threshold", 0.6)
	v.SetDefault("collector.breaker_threshold", 5)
	v.SetDefault("collector.breaker_cooldown", "15m")

	v.SetDefault("monitoring.run_window", 10)
	v.SetDefault("monitoring.accuracy_window_days", 7)
	v.SetDefault("monitoring.warning_cooldown", "4h")
	v.SetDefault("monitoring.critical_cooldown", "1h")
	v.SetDefault("monitoring.stale_warning_after", "24h")
	v.SetDefault("monitoring.stale_critical_after", "48h")
	v.SetDefault("monitoring.healthy_success_rate", 60)
	v.SetDefault("monitoring.critical_success_rate", 30)
	v.SetDefault("monitoring.accuracy_alert_percent", 40)

	v.SetDefault("notify.timeout", "10s")

	if !envOnly {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
