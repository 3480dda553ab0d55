package config

import (
	"sync/atomic"

	"lotto-server/internal/lottery"
)

// 原子存储当前生效的配置，供各业务读取
var current atomic.Value // *Config

// 奖级配置解析一次后缓存，结算与投注热路径直接读取
var currentPrize atomic.Value // *lottery.PrizeConfig

func SetCurrent(c *Config) {
	current.Store(c)
	if c != nil {
		if pc, err := c.PrizeConfig(); err == nil {
			currentPrize.Store(pc)
		}
	}
}

func GetCurrent() *Config {
	v := current.Load()
	if v == nil {
		return nil
	}
	return v.(*Config)
}

// GetPrizeConfig 返回当前生效的奖级配置（未初始化时回退内置默认值）
func GetPrizeConfig() *lottery.PrizeConfig {
	v := currentPrize.Load()
	if v == nil {
		return lottery.DefaultPrizeConfig()
	}
	return v.(*lottery.PrizeConfig)
}

// GetFeatureFlag 返回功能开关（默认 false）
func GetFeatureFlag(name string) bool {
	cfg := GetCurrent()
	if cfg == nil || cfg.FeatureFlags == nil {
		return false
	}
	return cfg.FeatureFlags[name]
}

// GetThreshold 返回业务阈值（支持默认值）
func GetThreshold(name string, def int64) int64 {
	cfg := GetCurrent()
	if cfg == nil || cfg.Thresholds == nil {
		return def
	}
	if v, ok := cfg.Thresholds[name]; ok {
		return v
	}
	return def
}
