package core

import (
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
		Env              string // DEV (local; default), TEST, QA, PROD
		Debug            bool
		TestMode         bool
		AppName          string
		Build            string
		SecretKey        string
		WorkDir          string
		FrontendBaseURL  string
		RollbarToken     string
		SendgridApiKey   string
		defaultFromEmail string

		Server     ServerConfig
		Database   DatabaseConfig
		Redis      RedisConfig
		Assessment AssessmentDefaults
	}

	ServerConfig struct {
		Host                      string
		DebugHost                 string
		ShutdownTimeout           time.Duration
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
		PasswordResetTimeoutDelta time.Duration
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

	RedisConfig struct {
		Enabled  bool
		Addr     string
		Password string
		DB       int
		CacheTTL time.Duration
	}

	// AssessmentDefaults are used whenever the settings table has no usable value for a key.
	AssessmentDefaults struct {
		PassThreshold          int
		QuestionsPerArea       int
		CooldownDays           int
		TrainingWeight         float64
		NeedsTrainingThreshold int
	}
)

func (dbc DatabaseConfig) Address() string {
	return net.JoinHostPort(dbc.Host, dbc.Port)
}

func (conf *Config) DefaultFromEmail() mail.Address {
	addr, err := mail.ParseAddress(conf.defaultFromEmail)
	if err != nil {
		return mail.Address{Name: conf.AppName, Address: "noreply@localhost"}
	}
	if addr.Name == "" {
		addr.Name = conf.AppName
	}
	return *addr
}

// NewConfig reads the app configuration from the environment (prefixed with $ENV) and the optional
// config/.env.<env> file.
func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("appName", "PlataformaAPA")
	v.SetDefault("build", "develop")
	v.SetDefault("secretKey", "k3v7-p#x2rd!9mz&w0ubq+4a(h8)jt=c5fs%n1yo6l*ge_ie")
	v.SetDefault("frontendBaseURL", "http://localhost:3000")
	v.SetDefault("defaultFromEmail", "PlataformaAPA <noreply@localhost>")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("sendgridApiKey", "")

	v.SetDefault("serverHost", ":8000")
	v.SetDefault("serverDebugHost", ":4000")
	v.SetDefault("serverShutdownTimeout", 5*time.Second)
	v.SetDefault("jwtExpirationDelta", 4*time.Hour)
	v.SetDefault("jwtRefreshExpirationDelta", 7*24*time.Hour)
	v.SetDefault("passwordResetTimeoutDelta", 3*24*time.Hour)

	v.SetDefault("dbEngine", "postgres")
	v.SetDefault("dbHost", "localhost")
	v.SetDefault("dbPort", "5432")
	v.SetDefault("dbName", "apa")
	v.SetDefault("dbUser", "apa")
	v.SetDefault("dbPassword", "apa")
	v.SetDefault("dbAdminUser", "postgres")
	v.SetDefault("dbAdminPassword", "")
	v.SetDefault("dbDisableTLS", true)

	v.SetDefault("redisEnabled", false)
	v.SetDefault("redisAddr", "localhost:6379")
	v.SetDefault("redisPassword", "")
	v.SetDefault("redisDB", 0)
	v.SetDefault("redisCacheTTL", 10*time.Minute)

	v.SetDefault("passThreshold", 70)
	v.SetDefault("questionsPerArea", 5)
	v.SetDefault("cooldownDays", 0)
	v.SetDefault("trainingWeight", 0.5)
	v.SetDefault("needsTrainingThreshold", 60)

	env := strings.ToUpper(os.Getenv("ENV"))
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)

	workDir := Getwd()

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(workDir, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	return &Config{
		Env:              env,
		Debug:            v.GetBool("debug"),
		TestMode:         v.GetBool("testMode"),
		AppName:          v.GetString("appName"),
		Build:            v.GetString("build"),
		SecretKey:        v.GetString("secretKey"),
		WorkDir:          workDir,
		FrontendBaseURL:  v.GetString("frontendBaseURL"),
		RollbarToken:     v.GetString("rollbarToken"),
		SendgridApiKey:   v.GetString("sendgridApiKey"),
		defaultFromEmail: v.GetString("defaultFromEmail"),
		Server: ServerConfig{
			Host:                      v.GetString("serverHost"),
			DebugHost:                 v.GetString("serverDebugHost"),
			ShutdownTimeout:           v.GetDuration("serverShutdownTimeout"),
			JWTExpirationDelta:        v.GetDuration("jwtExpirationDelta"),
			JWTRefreshExpirationDelta: v.GetDuration("jwtRefreshExpirationDelta"),
			PasswordResetTimeoutDelta: v.GetDuration("passwordResetTimeoutDelta"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("dbEngine"),
			Host:          v.GetString("dbHost"),
			Port:          v.GetString("dbPort"),
			Name:          v.GetString("dbName"),
			User:          v.GetString("dbUser"),
			Password:      v.GetString("dbPassword"),
			AdminUser:     v.GetString("dbAdminUser"),
			AdminPassword: v.GetString("dbAdminPassword"),
			DisableTLS:    v.GetBool("dbDisableTLS"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redisEnabled"),
			Addr:     v.GetString("redisAddr"),
			Password: v.GetString("redisPassword"),
			DB:       v.GetInt("redisDB"),
			CacheTTL: v.GetDuration("redisCacheTTL"),
		},
		Assessment: AssessmentDefaults{
			PassThreshold:          v.GetInt("passThreshold"),
			QuestionsPerArea:       v.GetInt("questionsPerArea"),
			CooldownDays:           v.GetInt("cooldownDays"),
			TrainingWeight:         v.GetFloat64("trainingWeight"),
			NeedsTrainingThreshold: v.GetInt("needsTrainingThreshold"),
		},
	}
}

// NewTestConfig returns the config used by tests: test mode on, no outbound services.
func NewTestConfig() *Config {
	conf := NewConfig()
	conf.Env = "TEST"
	conf.TestMode = true
	conf.RollbarToken = ""
	conf.SendgridApiKey = ""
	conf.Redis.Enabled = false
	return conf
}
