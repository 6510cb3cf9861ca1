/**
 * @description
 * Configuration management for the account-service, read from environment
 * variables or a local .env file via Viper.
 *
 * @dependencies
 * - github.com/spf13/viper: For configuration management.
 */
package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config stores all configuration for the account-service.
type Config struct {
	DatabaseURL          string  `mapstructure:"DATABASE_URL"`
	RabbitMQURL          string  `mapstructure:"RABBITMQ_URL"`
	RedisAddr            string  `mapstructure:"REDIS_ADDR"`
	HolderAPIURL         string  `mapstructure:"HOLDER_API_URL"`
	ServerPort           string  `mapstructure:"SERVER_PORT"`
	DefaultBranch        string  `mapstructure:"DEFAULT_BRANCH"`
	// DailyWithdrawalLimit stays a string here; main parses it with
	// decimal.NewFromString so the amount is never routed through a float.
	DailyWithdrawalLimit string `mapstructure:"DAILY_WITHDRAWAL_LIMIT"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (*Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "8081")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("DEFAULT_BRANCH", "0001")
	viper.SetDefault("DAILY_WITHDRAWAL_LIMIT", "2000")

	// Bind envs explicitly so containers pick them up reliably
	_ = viper.BindEnv("DATABASE_URL")
	_ = viper.BindEnv("RABBITMQ_URL")
	_ = viper.BindEnv("REDIS_ADDR")
	_ = viper.BindEnv("HOLDER_API_URL")
	_ = viper.BindEnv("SERVER_PORT")
	_ = viper.BindEnv("DEFAULT_BRANCH")
	_ = viper.BindEnv("DAILY_WITHDRAWAL_LIMIT")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("Warning: Error reading config file: %s", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}
	return &config, nil
}
