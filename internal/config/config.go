// Package config assembles the application configuration from the layered
// YAML files plus environment overrides.
package config

import (
	"fmt"

	"gopkg.in/yaml.v3"

	pkgconfig "checklistapp/pkg/config"
)

type Config struct {
	Server    pkgconfig.ServerConfig    `yaml:"server"`
	DB        pkgconfig.DBConfig        `yaml:"db"`
	MQ        pkgconfig.MQConfig        `yaml:"mq"`
	Redis     pkgconfig.RedisConfig     `yaml:"redis"`
	JWT       pkgconfig.JWTConfig       `yaml:"jwt"`
	Inference pkgconfig.InferenceConfig `yaml:"inference"`
	Slack     pkgconfig.SlackConfig     `yaml:"slack"`
}

// Load reads the layered configuration for the current CONFIG_ENV and applies
// environment variable overrides on top.
func Load(configDir string) (*Config, error) {
	raw, err := pkgconfig.LoadConfig(pkgconfig.GetConfigEnv(), configDir)
	if err != nil {
		return nil, err
	}

	data, err := yaml.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to re-encode merged config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	pkgconfig.OverrideServerFromEnv(&cfg.Server)
	pkgconfig.OverrideDBFromEnv(&cfg.DB)
	pkgconfig.OverrideMQFromEnv(&cfg.MQ)
	pkgconfig.OverrideRedisFromEnv(&cfg.Redis)
	pkgconfig.OverrideJWTFromEnv(&cfg.JWT)
	pkgconfig.OverrideInferenceFromEnv(&cfg.Inference)
	pkgconfig.OverrideSlackFromEnv(&cfg.Slack)

	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("jwt secret is not configured")
	}

	return &cfg, nil
}
