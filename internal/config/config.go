package config

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env        string           `yaml:"env" env-default:"development"` // environment
	HTTPServer HTTPServerConfig `yaml:"http_server"`
	Database   DatabaseConfig   `yaml:"database"`
	JWT        JWTConfig        `yaml:"jwt"`
	Migrations MigrationsConfig `yaml:"migrations"`
	Pagination PaginationConfig `yaml:"pagination"`
	Payments   PaymentsConfig   `yaml:"payments"`
}

// HTTPServerConfig структура http сервера
type HTTPServerConfig struct {
	Address     string        `yaml:"address" env-default:"localhost:8080"`
	Timeout     time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// DatabaseConfig структура по работе с БД
type DatabaseConfig struct {
	Host         string `yaml:"host" env-default:"localhost"`
	Port         int    `yaml:"port" env-default:"5432"`
	User         string `yaml:"user" env-required:"true"`
	Password     string `yaml:"-" env:"DB_PASSWORD" env-required:"true"`
	Name         string `yaml:"name" env-required:"true"`
	SSLMode      string `yaml:"ssl_mode" env-default:"disable"`
	MaxOpenConns int    `yaml:"max_open_conns" env-default:"20"`
}

// JWTConfig настройка jwt
type JWTConfig struct {
	Secret   string `yaml:"-" env:"JWT_SECRET" env-required:"true"`
	TokenTTL int    `yaml:"token_ttl" env-default:"60"`
}

type MigrationsConfig struct {
	Path  string `yaml:"path" env-default:"./migrations"`
	Table string `yaml:"table" env-default:"migrations"`
}

// PaginationConfig размеры страниц. У ленты предела нет (0)
type PaginationConfig struct {
	DefaultLimit        int `yaml:"default_limit" env-default:"20"`
	MaxTransactionLimit int `yaml:"max_transaction_limit" env-default:"100"`
	MaxFeedLimit        int `yaml:"max_feed_limit" env-default:"0"`
}

// PaymentsConfig настройка платёжного провайдера (Stripe)
type PaymentsConfig struct {
	SecretKey       string `yaml:"-" env:"STRIPE_SECRET_KEY"`
	Currency        string `yaml:"currency" env-default:"usd"`
	WebhookMaxBytes int64  `yaml:"webhook_max_bytes" env-default:"65536"`
	// адреса, куда провайдер возвращает пользователя
	CheckoutSuccessURL string `yaml:"checkout_success_url" env-default:"http://localhost:3000/checkout/success"`
	CheckoutCancelURL  string `yaml:"checkout_cancel_url" env-default:"http://localhost:3000/checkout/cancel"`
	ConnectReturnURL   string `yaml:"connect_return_url" env-default:"http://localhost:3000/artist/dashboard"`
	ConnectRefreshURL  string `yaml:"connect_refresh_url" env-default:"http://localhost:3000/artist/connect"`
}

// Validate проверяет значения, которые нельзя выразить тегами cleanenv
func (c *Config) Validate() error {
	switch {
	case c.Pagination.DefaultLimit <= 0:
		return errors.New("pagination.default_limit must be positive")
	case c.Pagination.MaxTransactionLimit <= 0:
		return errors.New("pagination.max_transaction_limit must be positive")
	case c.Pagination.DefaultLimit > c.Pagination.MaxTransactionLimit:
		return errors.New("pagination.default_limit must not exceed max_transaction_limit")
	case c.Pagination.MaxFeedLimit < 0:
		return errors.New("pagination.max_feed_limit must not be negative, 0 means uncapped")
	case c.Payments.WebhookMaxBytes <= 0:
		return errors.New("payments.webhook_max_bytes must be positive")
	case len(c.Payments.Currency) != 3:
		return fmt.Errorf("payments.currency %q is not an ISO 4217 code", c.Payments.Currency)
	}
	return nil
}

// MustLoad - если не загружаем - паникуем
func MustLoad() *Config {
	configPath := fetchConfigPath()
	if configPath == "" {
		log.Fatal("CONFIG_PATH not exists")
	}
	return MustLoadByPath(configPath)
}

func fetchConfigPath() string {
	var path string

	flag.StringVar(&path, "config", "", "path to config file")
	flag.Parse()

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	return path
}

func MustLoadByPath(configPath string) *Config {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file not found: " + configPath)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("can't read config file %s: %v", configPath, err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config %s: %v", configPath, err)
	}
	cfg.Payments.Currency = strings.ToLower(cfg.Payments.Currency)

	return &cfg
}
