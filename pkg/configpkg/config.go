// Package configpkg provides parsing functionality for environment variables.
package configpkg

import (
	"time"

	"github.com/spf13/viper"
)

// Store drivers.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// Config stores all configuration of the application.
//
// The values are read by viper fron a config file or environement variables.
type Config struct {
	StoreDriver         string        `mapstructure:"STORE_DRIVER"`
	DBDriver            string        `mapstructure:"DB_DRIVER"`
	DBSource            string        `mapstructure:"DB_SOURCE"`
	ServerAddress       string        `mapstructure:"SERVER_ADDRESS"`
	TokenType           string        `mapstructure:"TOKEN_TYPE"`
	TokenSymmetricKey   string        `mapstructure:"TOKEN_SYMMETRIC_KEY"`
	AccessTokenDuration time.Duration `mapstructure:"ACCESS_TOKEN_DURATION"`
	Environement        string        `mapstructure:"GO_ENV"`

	MarketplaceEscrowAccount string `mapstructure:"MARKETPLACE_ESCROW_ACCOUNT"`
	TransferEscrowAccount    string `mapstructure:"TRANSFER_ESCROW_ACCOUNT"`
	GatewayAccount           string `mapstructure:"GATEWAY_ACCOUNT"`

	AdmissionServiceFee int64  `mapstructure:"ADMISSION_SERVICE_FEE"`
	PlatformFeeAccount  string `mapstructure:"PLATFORM_FEE_ACCOUNT"`
	AgentFeeAccount     string `mapstructure:"AGENT_FEE_ACCOUNT"`
	PlatformFeePercent  string `mapstructure:"PLATFORM_FEE_PERCENT"`

	AuditBufferSize int `mapstructure:"AUDIT_BUFFER_SIZE"`
}

// ReservedAccounts returns the pseudo-account identifiers mapped to their system labels.
func (c Config) ReservedAccounts() map[string]string {
	return map[string]string{
		c.MarketplaceEscrowAccount: "Marketplace Escrow",
		c.TransferEscrowAccount:    "Transfer Escrow",
		c.GatewayAccount:           "Payment Gateway",
		c.PlatformFeeAccount:       "Platform Revenue",
		c.AgentFeeAccount:          "Agent Revenue",
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("STORE_DRIVER", StoreMemory)
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("SERVER_ADDRESS", "0.0.0.0:8080")
	v.SetDefault("TOKEN_TYPE", "paseto")
	v.SetDefault("ACCESS_TOKEN_DURATION", 15*time.Minute)
	v.SetDefault("MARKETPLACE_ESCROW_ACCOUNT", "sys:escrow:marketplace")
	v.SetDefault("TRANSFER_ESCROW_ACCOUNT", "sys:escrow:transfer")
	v.SetDefault("GATEWAY_ACCOUNT", "sys:gateway")
	v.SetDefault("ADMISSION_SERVICE_FEE", 2000)
	v.SetDefault("PLATFORM_FEE_ACCOUNT", "sys:revenue:platform")
	v.SetDefault("AGENT_FEE_ACCOUNT", "sys:revenue:agent")
	v.SetDefault("PLATFORM_FEE_PERCENT", "25")
	v.SetDefault("AUDIT_BUFFER_SIZE", 256)
}

// Load read configuration from file or environment variables.
func Load(path string) (Config, error) {
	var c Config

	v := viper.New()
	setDefaults(v)

	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")

	v.AutomaticEnv()

	err := v.ReadInConfig()
	if err != nil {
		return c, err
	}

	err = v.Unmarshal(&c)
	if err != nil {
		return c, err
	}

	return c, nil
}
