package core

import (
	"fmt"
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

type (
	Config struct {
		AppName        string
		Env            string // DEV (local; default), TEST, QA, PROD
		Build          string
		Debug          bool
		TestMode       bool
		SecretKey      string
		FrontendURL    string
		RollbarToken   string
		SendgridApiKey string

		Server    ServerConfig
		Database  DatabaseConfig
		Mail      MailConfig
		Reminders RemindersConfig
		Remote    RemoteConfig
	}

	ServerConfig struct {
		Host               string
		Address            string
		DebugHost          string
		JWTExpirationDelta time.Duration
		ShutdownTimeout    time.Duration
		DisableReqLogs     bool
	}

	DatabaseConfig struct {
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

	MailConfig struct {
		DefaultFromName    string
		DefaultFromAddress string
		BursarAddress      string
	}

	RemindersConfig struct {
		PayLinkBaseURL   string // reminders embed <PayLinkBaseURL>/<invoice id>
		ChatDomain       string
		Currency         string
		DefaultDaysAhead int
		Schedule         string // cron spec; empty disables the scheduled batch
	}

	// RemoteConfig points to the hosted "send-reminders" function.
	RemoteConfig struct {
		SendRemindersURL string
		Key              string
		Timeout          time.Duration
	}
)

// Address returns the database "host:port".
func (dc DatabaseConfig) Address() string {
	return net.JoinHostPort(dc.Host, dc.Port)
}

func (c *Config) DefaultFromEmail() mail.Address {
	return mail.Address{Name: c.Mail.DefaultFromName, Address: c.Mail.DefaultFromAddress}
}

func (c *Config) BursarEmail() (mail.Address, bool) {
	if c.Mail.BursarAddress == "" {
		return mail.Address{}, false
	}
	return mail.Address{Name: "Bursar", Address: c.Mail.BursarAddress}, true
}

// NewConfig loads the configuration from defaults, an optional `config/.env.<env>` file and the environment.
// Environment variables are prefixed with the upper-cased env, e.g. `PROD_DATABASE_HOST`.
func NewConfig() *Config {
	conf := viper.New()
	conf.SetTypeByDefaultValue(true)

	// defaults
	conf.SetDefault("appName", "FeePortal")
	conf.SetDefault("build", "develop")
	conf.SetDefault("debug", true)
	conf.SetDefault("testMode", false)
	conf.SetDefault("secretKey", "x2u&k9!m4q-7zp(w$c8f3hd)t1#v0y6e5rj+gn^osb@ali")
	conf.SetDefault("frontendURL", "http://localhost:3000")
	conf.SetDefault("rollbarToken", "")
	conf.SetDefault("sendgridApiKey", "")

	conf.SetDefault("server.host", "localhost")
	conf.SetDefault("server.address", ":8000")
	conf.SetDefault("server.debugHost", ":4000")
	conf.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)
	conf.SetDefault("server.shutdownTimeout", 5*time.Second)
	conf.SetDefault("server.disableReqLogs", false)

	conf.SetDefault("database.engine", "postgres")
	conf.SetDefault("database.host", "localhost")
	conf.SetDefault("database.port", "5432")
	conf.SetDefault("database.name", "feeportal")
	conf.SetDefault("database.user", "feeportal")
	conf.SetDefault("database.password", "feeportal")
	conf.SetDefault("database.adminUser", "postgres")
	conf.SetDefault("database.adminPassword", "postgres")
	conf.SetDefault("database.disableTLS", true)

	conf.SetDefault("mail.defaultFromName", "FeePortal")
	conf.SetDefault("mail.defaultFromAddress", "noreply@localhost")
	conf.SetDefault("mail.bursarAddress", "")

	conf.SetDefault("reminders.payLinkBaseURL", "https://your-payment-link.com/pay")
	conf.SetDefault("reminders.chatDomain", "wa.me")
	conf.SetDefault("reminders.currency", "PKR")
	conf.SetDefault("reminders.defaultDaysAhead", 3)
	conf.SetDefault("reminders.schedule", "")

	conf.SetDefault("remote.sendRemindersURL", "")
	conf.SetDefault("remote.key", "")
	conf.SetDefault("remote.timeout", 30*time.Second)

	env := strings.ToUpper(os.Getenv("ENV"))
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		conf.SetDefault("testMode", true)
	case "QA", "PROD":
		conf.SetDefault("debug", false)
	}
	conf.SetEnvPrefix(env)
	conf.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	return &Config{
		AppName:        conf.GetString("appName"),
		Env:            env,
		Build:          conf.GetString("build"),
		Debug:          conf.GetBool("debug"),
		TestMode:       conf.GetBool("testMode"),
		SecretKey:      conf.GetString("secretKey"),
		FrontendURL:    conf.GetString("frontendURL"),
		RollbarToken:   conf.GetString("rollbarToken"),
		SendgridApiKey: conf.GetString("sendgridApiKey"),
		Server: ServerConfig{
			Host:               conf.GetString("server.host"),
			Address:            conf.GetString("server.address"),
			DebugHost:          conf.GetString("server.debugHost"),
			JWTExpirationDelta: conf.GetDuration("server.jwtExpirationDelta"),
			ShutdownTimeout:    conf.GetDuration("server.shutdownTimeout"),
			DisableReqLogs:     conf.GetBool("server.disableReqLogs"),
		},
		Database: DatabaseConfig{
			Engine:        conf.GetString("database.engine"),
			Host:          conf.GetString("database.host"),
			Port:          conf.GetString("database.port"),
			Name:          conf.GetString("database.name"),
			User:          conf.GetString("database.user"),
			Password:      conf.GetString("database.password"),
			AdminUser:     conf.GetString("database.adminUser"),
			AdminPassword: conf.GetString("database.adminPassword"),
			DisableTLS:    conf.GetBool("database.disableTLS"),
		},
		Mail: MailConfig{
			DefaultFromName:    conf.GetString("mail.defaultFromName"),
			DefaultFromAddress: conf.GetString("mail.defaultFromAddress"),
			BursarAddress:      conf.GetString("mail.bursarAddress"),
		},
		Reminders: RemindersConfig{
			PayLinkBaseURL:   strings.TrimRight(conf.GetString("reminders.payLinkBaseURL"), "/"),
			ChatDomain:       conf.GetString("reminders.chatDomain"),
			Currency:         conf.GetString("reminders.currency"),
			DefaultDaysAhead: conf.GetInt("reminders.defaultDaysAhead"),
			Schedule:         conf.GetString("reminders.schedule"),
		},
		Remote: RemoteConfig{
			SendRemindersURL: conf.GetString("remote.sendRemindersURL"),
			Key:              conf.GetString("remote.key"),
			Timeout:          conf.GetDuration("remote.timeout"),
		},
	}
}

// NewTestConfig returns the configuration used by package tests: defaults, TEST env, no external services.
func NewTestConfig() *Config {
	return &Config{
		AppName:   "FeePortal",
		Env:       "TEST",
		Build:     "test",
		TestMode:  true,
		SecretKey: "secret",
		Server: ServerConfig{
			Address:            ":0",
			JWTExpirationDelta: time.Hour,
			ShutdownTimeout:    time.Second,
			DisableReqLogs:     true,
		},
		Mail: MailConfig{
			DefaultFromName:    "FeePortal",
			DefaultFromAddress: "noreply@test.pk",
			BursarAddress:      "bursar@test.pk",
		},
		Reminders: RemindersConfig{
			PayLinkBaseURL:   "https://your-payment-link.com/pay",
			ChatDomain:       "wa.me",
			Currency:         "PKR",
			DefaultDaysAhead: 3,
		},
	}
}

func (c *Config) String() string {
	return fmt.Sprintf("%s (env=%s build=%s debug=%t)", c.AppName, c.Env, c.Build, c.Debug)
}
