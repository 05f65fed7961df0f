package core

import (
	"encoding/json"
	"log"
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// PlanConfig is a plan catalog entry as found in the configuration.
// Price is a decimal string so that exact price matching is not subject to float drift.
type PlanConfig struct {
	Code  string `json:"code" mapstructure:"code"`
	Label string `json:"label" mapstructure:"label"`
	Price string `json:"price" mapstructure:"price"`
}

var defaultPlans = []PlanConfig{
	{Code: "1_month", Label: "1 Month", Price: "2400000"},
	{Code: "3_months", Label: "3 Months", Price: "6600000"},
	{Code: "6_months", Label: "6 Months", Price: "12000000"},
	{Code: "12_months", Label: "12 Months", Price: "21600000"},
}

type (
	Config struct {
		Env            string
		Build          string
		Debug          bool
		TestMode       bool
		AppName        string
		SecretKey      string
		RollbarToken   string
		SendgridAPIKey string
		fromEmail      string

		Server   serverConfig
		Database databaseConfig
		Finance  financeConfig
	}

	serverConfig struct {
		Host            string
		Address         string
		DebugAddress    string
		JWTAudience     string
		ReadTimeout     time.Duration
		WriteTimeout    time.Duration
		ShutdownTimeout time.Duration
	}

	databaseConfig struct {
		Engine        string
		Host          string
		Port          string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	financeConfig struct {
		NotifyChannel    string
		NotifyDebounce   time.Duration
		RefreshSchedule  string
		ReportRecipients []string
		Plans            []PlanConfig
	}
)

func (c databaseConfig) Address() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// DefaultFromEmail parses the configured sender address; it falls back to a bare address on parse failure.
func (c *Config) DefaultFromEmail() mail.Address {
	addr, err := mail.ParseAddress(c.fromEmail)
	if err != nil {
		return mail.Address{Address: c.fromEmail}
	}
	return *addr
}

func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("build", "dev")
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("appName", "Masomo")
	v.SetDefault("secretKey", "poq5-wer)enb$+57=dz&uoxh2(h!x)#*c2(#yg4h^$cegm2emy")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("sendgridApiKey", "")
	v.SetDefault("defaultFromEmail", "Masomo <noreply@localhost>")

	v.SetDefault("server_host", "localhost")
	v.SetDefault("server_address", ":8000")
	v.SetDefault("server_debugAddress", ":4000")
	v.SetDefault("server_jwtAudience", "Academia")
	v.SetDefault("server_readTimeout", 5*time.Second)
	v.SetDefault("server_writeTimeout", 10*time.Second)
	v.SetDefault("server_shutdownTimeout", 5*time.Second)

	v.SetDefault("database_engine", "postgres")
	v.SetDefault("database_host", "localhost")
	v.SetDefault("database_port", "5432")
	v.SetDefault("database_name", "masomo")
	v.SetDefault("database_user", "masomo")
	v.SetDefault("database_password", "masomo")
	v.SetDefault("database_adminUser", "")
	v.SetDefault("database_adminPassword", "")
	v.SetDefault("database_disableTls", false)

	v.SetDefault("finance_notifyChannel", "finance_changes")
	v.SetDefault("finance_notifyDebounce", 500*time.Millisecond)
	v.SetDefault("finance_refreshSchedule", "@every 15m")
	v.SetDefault("finance_reportRecipients", "")
	v.SetDefault("finance_plans", "")

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	conf := &Config{
		Env:            env,
		Build:          v.GetString("build"),
		Debug:          v.GetBool("debug"),
		TestMode:       v.GetBool("testMode"),
		AppName:        v.GetString("appName"),
		SecretKey:      v.GetString("secretKey"),
		RollbarToken:   v.GetString("rollbarToken"),
		SendgridAPIKey: v.GetString("sendgridApiKey"),
		fromEmail:      v.GetString("defaultFromEmail"),
		Server: serverConfig{
			Host:            v.GetString("server_host"),
			Address:         v.GetString("server_address"),
			DebugAddress:    v.GetString("server_debugAddress"),
			JWTAudience:     v.GetString("server_jwtAudience"),
			ReadTimeout:     v.GetDuration("server_readTimeout"),
			WriteTimeout:    v.GetDuration("server_writeTimeout"),
			ShutdownTimeout: v.GetDuration("server_shutdownTimeout"),
		},
		Database: databaseConfig{
			Engine:        v.GetString("database_engine"),
			Host:          v.GetString("database_host"),
			Port:          v.GetString("database_port"),
			Name:          v.GetString("database_name"),
			User:          v.GetString("database_user"),
			Password:      v.GetString("database_password"),
			AdminUser:     v.GetString("database_adminUser"),
			AdminPassword: v.GetString("database_adminPassword"),
			DisableTLS:    v.GetBool("database_disableTls"),
		},
		Finance: financeConfig{
			NotifyChannel:    v.GetString("finance_notifyChannel"),
			NotifyDebounce:   v.GetDuration("finance_notifyDebounce"),
			RefreshSchedule:  v.GetString("finance_refreshSchedule"),
			ReportRecipients: splitList(v.GetString("finance_reportRecipients")),
			Plans:            parsePlans(v.GetString("finance_plans")),
		},
	}
	return conf
}

// parsePlans reads the plan catalog from its JSON form, e.g.
// [{"code":"1_month","label":"1 Month","price":"2400000"}].
func parsePlans(raw string) []PlanConfig {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return append([]PlanConfig(nil), defaultPlans...)
	}
	var plans []PlanConfig
	if err := json.Unmarshal([]byte(raw), &plans); err != nil {
		log.Fatalf("config.finance_plans: %v", err)
	}
	return plans
}

func splitList(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = CleanString(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
