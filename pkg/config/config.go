package config

import (
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration tree for walletd / walletctl / migrate.
type Config struct {
	App         AppConfig         `mapstructure:"app"`
	DB          DBConfig          `mapstructure:"db"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Kafka       KafkaConfig       `mapstructure:"kafka"`
	Negotiation NegotiationConfig `mapstructure:"negotiation"`
	Node        NodeConfig        `mapstructure:"node"`
	Wallet      WalletConfig      `mapstructure:"wallet"`
}

// WalletConfig carries the seed material this instance derives coin secrets
// and the SBBS key from (nonce secrets come from random per-slot seeds). In
// production this is injected via environment variable, not a config file.
type WalletConfig struct {
	Mnemonic string `mapstructure:"mnemonic"`
}

type AppConfig struct {
	Env      string `mapstructure:"env"`
	HTTPPort string `mapstructure:"http_port"`
	GRPCPort string `mapstructure:"grpc_port"`
}

type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Transport string `mapstructure:"transport"` // not read: peer parameters always travel over Kafka
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// NegotiationConfig carries the policy inputs left to the wallet rather
// than the protocol: default lifetime, plus the SHOULD-level auto-accept
// ceilings for peer-initiated receives.
type NegotiationConfig struct {
	DefaultLifetime       uint64 `mapstructure:"default_lifetime"`
	MaxAutoAcceptAmount   uint64 `mapstructure:"max_auto_accept_amount"`
	MaxAutoAcceptFee      uint64 `mapstructure:"max_auto_accept_fee"`
	TipPollInterval       time.Duration `mapstructure:"tip_poll_interval"`
}

type NodeConfig struct {
	Endpoint string `mapstructure:"endpoint"`
}

var Global Config

func Init() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Printf("Warning: config file not found, using defaults and environment variables")
		} else {
			log.Fatalf("fatal error reading config file: %s", err)
		}
	}

	if err := viper.Unmarshal(&Global); err != nil {
		log.Fatalf("unable to decode config into struct: %v", err)
	}

	log.Printf("configuration loaded, env=%s", Global.App.Env)
}

func setDefaults() {
	viper.SetDefault("app.env", "development")
	viper.SetDefault("app.http_port", "8080")
	viper.SetDefault("app.grpc_port", "50051")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.user", "wallet_user")
	viper.SetDefault("db.password", "wallet_password")
	viper.SetDefault("db.name", "wallet_db")
	viper.SetDefault("db.sslmode", "disable")

	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.transport", "redis")

	viper.SetDefault("kafka.brokers", []string{"localhost:9092"})
	viper.SetDefault("kafka.topic", "tx-parameters")

	viper.SetDefault("negotiation.default_lifetime", uint64(1440))
	viper.SetDefault("negotiation.max_auto_accept_amount", uint64(0)) // 0 = no ceiling
	viper.SetDefault("negotiation.max_auto_accept_fee", uint64(0))
	viper.SetDefault("negotiation.tip_poll_interval", 15*time.Second)

	viper.SetDefault("node.endpoint", "localhost:9091")
}
