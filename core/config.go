package core

import (
	"log"
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
		Debug    bool
		TestMode bool
		Env      string // DEV (default), TEST, QA, PROD
		Build    string
		AppName  string
		WorkDir  string

		SecretKey        string
		FrontendBaseURL  string
		DefaultFromEmail mail.Address
		SendgridApiKey   string
		RollbarToken     string

		Server     ServerConfig
		Database   DatabaseConfig
		Cloudinary CloudinaryConfig
		Curriculum CurriculumConfig
	}

	ServerConfig struct {
		Host                      string
		Addr                      string
		DebugHost                 string
		ShutdownTimeout           time.Duration
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
	}

	DatabaseConfig struct {
		Engine        string
		Name          string
		Host          string
		Port          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	CloudinaryConfig struct {
		CloudName string
		ApiKey    string
		ApiSecret string
		Folder    string
	}

	// CurriculumConfig holds the defaults applied when an import payload
	// omits a hierarchy level name.
	CurriculumConfig struct {
		DefaultBoard   string
		DefaultClass   string
		DefaultSubject string
	}
)

func (c DatabaseConfig) Address() string {
	return c.Host + ":" + c.Port
}

// NewConfig loads the app configuration from the environment (and an optional
// `config/.env.<env>` file) into an explicit Config to be passed down;
// no package-level state is kept.
func NewConfig() *Config {
	conf := viper.New()
	conf.SetTypeByDefaultValue(true)

	// defaults
	conf.SetDefault("debug", true)
	conf.SetDefault("testMode", false)
	conf.SetDefault("build", "dev")
	conf.SetDefault("appName", "Paathshala")
	conf.SetDefault("secretKey", "x#2b)d7mz&yq$8e(1r!5^pn@0vgu+c4j9t_wk6a3fh%lso-i")
	conf.SetDefault("frontendBaseURL", "http://localhost:3000")
	conf.SetDefault("defaultFromEmail", "noreply@localhost")
	conf.SetDefault("sendgridApiKey", "")
	conf.SetDefault("rollbarToken", "")

	conf.SetDefault("serverHost", "localhost")
	conf.SetDefault("serverAddr", ":8000")
	conf.SetDefault("serverDebugHost", "localhost:4000")
	conf.SetDefault("shutdownTimeout", 5*time.Second)
	conf.SetDefault("jwtExpirationDelta", 30*24*time.Hour)
	conf.SetDefault("jwtRefreshExpirationDelta", 4*time.Hour)

	conf.SetDefault("databaseEngine", "postgres")
	conf.SetDefault("databaseName", "paathshala")
	conf.SetDefault("databaseHost", "localhost")
	conf.SetDefault("databasePort", "5432")
	conf.SetDefault("databaseUser", "")
	conf.SetDefault("databasePassword", "")
	conf.SetDefault("databaseAdminUser", "")
	conf.SetDefault("databaseAdminPassword", "")
	conf.SetDefault("databaseDisableTLS", true)

	conf.SetDefault("cloudinaryCloudName", "")
	conf.SetDefault("cloudinaryApiKey", "")
	conf.SetDefault("cloudinaryApiSecret", "")
	conf.SetDefault("cloudinaryFolder", "hoshiyaar")

	conf.SetDefault("defaultBoard", "CBSE")
	conf.SetDefault("defaultClass", "5")
	conf.SetDefault("defaultSubject", "Science")

	env := os.Getenv("ENV")
	if env == "" {
		env = "DEV"
	}
	env = strings.ToUpper(env)
	conf.SetEnvPrefix(env)

	wd := Getwd()

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err = godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	return &Config{
		Debug:    conf.GetBool("debug"),
		TestMode: env == "TEST" || conf.GetBool("testMode"),
		Env:      env,
		Build:    conf.GetString("build"),
		AppName:  conf.GetString("appName"),
		WorkDir:  wd,

		SecretKey:        conf.GetString("secretKey"),
		FrontendBaseURL:  conf.GetString("frontendBaseURL"),
		DefaultFromEmail: mail.Address{Name: conf.GetString("appName"), Address: conf.GetString("defaultFromEmail")},
		SendgridApiKey:   conf.GetString("sendgridApiKey"),
		RollbarToken:     conf.GetString("rollbarToken"),

		Server: ServerConfig{
			Host:                      conf.GetString("serverHost"),
			Addr:                      conf.GetString("serverAddr"),
			DebugHost:                 conf.GetString("serverDebugHost"),
			ShutdownTimeout:           conf.GetDuration("shutdownTimeout"),
			JWTExpirationDelta:        conf.GetDuration("jwtExpirationDelta"),
			JWTRefreshExpirationDelta: conf.GetDuration("jwtRefreshExpirationDelta"),
		},
		Database: DatabaseConfig{
			Engine:        conf.GetString("databaseEngine"),
			Name:          conf.GetString("databaseName"),
			Host:          conf.GetString("databaseHost"),
			Port:          conf.GetString("databasePort"),
			User:          conf.GetString("databaseUser"),
			Password:      conf.GetString("databasePassword"),
			AdminUser:     conf.GetString("databaseAdminUser"),
			AdminPassword: conf.GetString("databaseAdminPassword"),
			DisableTLS:    conf.GetBool("databaseDisableTLS"),
		},
		Cloudinary: CloudinaryConfig{
			CloudName: conf.GetString("cloudinaryCloudName"),
			ApiKey:    conf.GetString("cloudinaryApiKey"),
			ApiSecret: conf.GetString("cloudinaryApiSecret"),
			Folder:    conf.GetString("cloudinaryFolder"),
		},
		Curriculum: CurriculumConfig{
			DefaultBoard:   conf.GetString("defaultBoard"),
			DefaultClass:   conf.GetString("defaultClass"),
			DefaultSubject: conf.GetString("defaultSubject"),
		},
	}
}
