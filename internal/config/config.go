package config

import (
	"fmt"
	"os"
	"strings"

	decimal "github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"lotto-server/internal/lottery"
)

// Config 服务配置
// 注意：时间字段统一使用毫秒时间戳；奖级金额以字符串承载，加载时转 decimal

type Config struct {
	Server struct {
		Port     int    `yaml:"port" json:"port"`
		LogLevel string `yaml:"log_level" json:"log_level"`
	} `yaml:"server" json:"server"`

	Database struct {
		DSN                string `yaml:"dsn" json:"dsn"`
		MaxOpenConns       int    `yaml:"max_open_conns" json:"max_open_conns"`
		MaxIdleConns       int    `yaml:"max_idle_conns" json:"max_idle_conns"`
		ConnMaxLifetimeSec int    `yaml:"conn_max_lifetime_sec" json:"conn_max_lifetime_sec"`
	} `yaml:"database" json:"database"`

	Redis struct {
		Addr     string `yaml:"addr" json:"addr"`
		Password string `yaml:"password" json:"password"`
		DB       int    `yaml:"db" json:"db"`
	} `yaml:"redis" json:"redis"`

	RocketMQ struct {
		Endpoint      string `yaml:"endpoint" json:"endpoint"`
		ProducerGroup string `yaml:"producer_group" json:"producer_group"`
		ConsumerGroup string `yaml:"consumer_group" json:"consumer_group"`
		DrawFeedTopic string `yaml:"draw_feed_topic" json:"draw_feed_topic"` // 官方开奖号码源
		AccessKey     string `yaml:"access_key" json:"access_key"`
		SecretKey     string `yaml:"secret_key" json:"secret_key"`
	} `yaml:"rocketmq" json:"rocketmq"`

	Observability struct {
		EnableProm bool   `yaml:"enable_prom" json:"enable_prom"`
		PromAddr   string `yaml:"prom_addr" json:"prom_addr"`
	} `yaml:"observability" json:"observability"`

	Auth struct {
		JWT struct {
			Secret         string `yaml:"secret" json:"secret"`
			AccessTokenTTL int    `yaml:"access_token_ttl" json:"access_token_ttl"` // 秒
			Issuer         string `yaml:"issuer" json:"issuer"`
		} `yaml:"jwt" json:"jwt"`
		Admin struct {
			Enabled bool   `yaml:"enabled" json:"enabled"`
			Subject string `yaml:"subject" json:"subject"`
		} `yaml:"admin" json:"admin"`
	} `yaml:"auth" json:"auth"`

	RateLimit struct {
		Enabled bool `yaml:"enabled" json:"enabled"`
		Global  struct {
			RequestsPerSecond int `yaml:"requests_per_second" json:"requests_per_second"`
			Burst             int `yaml:"burst" json:"burst"`
		} `yaml:"global" json:"global"`
		ByIP struct {
			RequestsPerSecond int `yaml:"requests_per_second" json:"requests_per_second"`
			WindowSeconds     int `yaml:"window_seconds" json:"window_seconds"`
		} `yaml:"by_ip" json:"by_ip"`
		ByUser struct {
			RequestsPerSecond int `yaml:"requests_per_second" json:"requests_per_second"`
			WindowSeconds     int `yaml:"window_seconds" json:"window_seconds"`
		} `yaml:"by_user" json:"by_user"`
	} `yaml:"rate_limit" json:"rate_limit"`

	CORS struct {
		Enabled          bool     `yaml:"enabled" json:"enabled"`
		AllowedOrigins   []string `yaml:"allowed_origins" json:"allowed_origins"`
		AllowedMethods   []string `yaml:"allowed_methods" json:"allowed_methods"`
		AllowedHeaders   []string `yaml:"allowed_headers" json:"allowed_headers"`
		ExposedHeaders   []string `yaml:"exposed_headers" json:"exposed_headers"`
		AllowCredentials bool     `yaml:"allow_credentials" json:"allow_credentials"`
		MaxAge           int      `yaml:"max_age" json:"max_age"`
	} `yaml:"cors" json:"cors"`

	// Lottery 奖级与资金配置（可经配置中心热更）
	Lottery LotteryConfig `yaml:"lottery" json:"lottery"`

	// 功能开关与业务阈值
	FeatureFlags map[string]bool  `yaml:"feature_flags" json:"feature_flags"`
	Thresholds   map[string]int64 `yaml:"thresholds" json:"thresholds"`
}

// LotteryConfig 大乐透玩法配置
// 金额与比例用字符串：decimal 精确解析，避免 YAML float 污染
type LotteryConfig struct {
	JackpotRate      string            `yaml:"jackpot_rate" json:"jackpot_rate"`             // 一等奖奖池比例，默认 "0.75"
	SecondRate       string            `yaml:"second_rate" json:"second_rate"`               // 二等奖奖池比例，默认 "0.18"
	FixedAmounts     map[string]string `yaml:"fixed_amounts" json:"fixed_amounts"`           // 奖级(3..9) -> 固定奖金
	BaseJackpot      string            `yaml:"base_jackpot" json:"base_jackpot"`             // 起始奖池
	Increment        string            `yaml:"increment" json:"increment"`                   // 轮空滚存增量
	UnitPrice        string            `yaml:"unit_price" json:"unit_price"`                 // 单注价格，默认 "2"
	MaxMultiplier    int64             `yaml:"max_multiplier" json:"max_multiplier"`         // 最大倍数，默认 99
	MaxCombinations  uint64            `yaml:"max_combinations" json:"max_combinations"`     // 单张注单注数上限
	TargetProfitRate string            `yaml:"target_profit_rate" json:"target_profit_rate"` // 目标利润率（仅监控）
	SalesWindowSec   int64             `yaml:"sales_window_sec" json:"sales_window_sec"`     // 每期销售窗口
	DrawGapSec       int64             `yaml:"draw_gap_sec" json:"draw_gap_sec"`             // 封盘到开奖的间隔
}

// Load 从 CONFIG_FILE 指定的 YAML 文件加载配置（默认 ./conf/app.yaml）
func Load() (*Config, error) {
	path := strings.TrimSpace(os.Getenv("CONFIG_FILE"))
	if path == "" {
		path = "./conf/app.yaml"
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	applyDefaults(&cfg)
	// 启动期即校验奖级配置，缺配置直接失败而不是等到结算期
	if _, err := cfg.PrizeConfig(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 50
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 10
	}
	if cfg.Lottery.MaxMultiplier == 0 {
		cfg.Lottery.MaxMultiplier = 99
	}
	if cfg.Lottery.MaxCombinations == 0 {
		cfg.Lottery.MaxCombinations = 200000
	}
	if cfg.Lottery.SalesWindowSec == 0 {
		cfg.Lottery.SalesWindowSec = 3600 * 24 * 2
	}
	if cfg.Lottery.DrawGapSec == 0 {
		cfg.Lottery.DrawGapSec = 1800
	}
}

// PrizeConfig 将配置转换为引擎只读的 lottery.PrizeConfig
func (c *Config) PrizeConfig() (*lottery.PrizeConfig, error) {
	pc := lottery.DefaultPrizeConfig()

	var err error
	if pc.JackpotRate, err = overrideDec(c.Lottery.JackpotRate, pc.JackpotRate); err != nil {
		return nil, fmt.Errorf("lottery.jackpot_rate: %w", err)
	}
	if pc.SecondRate, err = overrideDec(c.Lottery.SecondRate, pc.SecondRate); err != nil {
		return nil, fmt.Errorf("lottery.second_rate: %w", err)
	}
	if pc.BaseJackpot, err = overrideDec(c.Lottery.BaseJackpot, pc.BaseJackpot); err != nil {
		return nil, fmt.Errorf("lottery.base_jackpot: %w", err)
	}
	if pc.Increment, err = overrideDec(c.Lottery.Increment, pc.Increment); err != nil {
		return nil, fmt.Errorf("lottery.increment: %w", err)
	}
	if pc.UnitPrice, err = overrideDec(c.Lottery.UnitPrice, pc.UnitPrice); err != nil {
		return nil, fmt.Errorf("lottery.unit_price: %w", err)
	}
	if pc.TargetProfitRate, err = overrideDec(c.Lottery.TargetProfitRate, pc.TargetProfitRate); err != nil {
		return nil, fmt.Errorf("lottery.target_profit_rate: %w", err)
	}
	for tierStr, amtStr := range c.Lottery.FixedAmounts {
		var tier int
		if _, err := fmt.Sscanf(tierStr, "%d", &tier); err != nil || tier < 3 || tier > lottery.TierCount {
			return nil, fmt.Errorf("lottery.fixed_amounts: bad tier %q", tierStr)
		}
		amt, err := decimal.NewFromString(amtStr)
		if err != nil {
			return nil, fmt.Errorf("lottery.fixed_amounts[%s]: %w", tierStr, err)
		}
		pc.FixedAmounts[tier] = amt
	}
	if c.Lottery.MaxMultiplier > 0 {
		pc.MaxMultiplier = c.Lottery.MaxMultiplier
	}
	if c.Lottery.MaxCombinations > 0 {
		pc.MaxCombinations = c.Lottery.MaxCombinations
	}
	if err := pc.Validate(); err != nil {
		return nil, err
	}
	return pc, nil
}

func overrideDec(s string, def decimal.Decimal) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, nil
	}
	return decimal.NewFromString(s)
}
