package core

import (
	"fmt"
	"log"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	ServerConfig struct {
		Host            string
		DebugHost       string
		ShutdownTimeout time.Duration
	}

	RemoteConfig struct {
		BaseURL       string
		Timeout       time.Duration
		DeleteTimeout time.Duration
		ConfirmWrites bool
		RosterTTL     time.Duration // how long a fetched roster is served before refetching
	}

	AttendanceConfig struct {
		// UnmarkedDefault is the status given to students without an entry on a date.
		// Empty or "none" means no default: unmarked entries stay unmarked.
		UnmarkedDefault string
		UTCOffset       int // hours
	}

	StoreConfig struct {
		Engine string // memory (default), postgres, redis
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
		Addr      string
		Password  string
		DB        int
		KeyPrefix string
	}

	Config struct {
		Env      string
		Build    string
		Debug    bool
		TestMode bool
		AppName  string

		Server     ServerConfig
		Remote     RemoteConfig
		Attendance AttendanceConfig
		Store      StoreConfig
		Database   DatabaseConfig
		Redis      RedisConfig

		RollbarToken     string
		SendgridApiKey   string
		DefaultFromEmail string
		SchoolName       string
	}
)

func (db DatabaseConfig) Address() string {
	return net.JoinHostPort(db.Host, db.Port)
}

// Location returns the fixed time zone attendance dates are recorded in.
func (ac AttendanceConfig) Location() *time.Location {
	return time.FixedZone(fmt.Sprintf("UTC%+d", ac.UTCOffset), ac.UTCOffset*60*60)
}

// NewConfig reads the configuration from defaults, the optional `config/.env.<env>` file
// and the environment (prefixed with the uppercase env name, e.g. DEV_REMOTE_BASEURL).
func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("build", "develop")
	v.SetDefault("appName", "Absensi")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("sendgridApiKey", "")
	v.SetDefault("schoolName", "")
	v.SetDefault("testMode", false)

	v.SetDefault("server.host", ":8000")
	v.SetDefault("server.debugHost", ":4000")
	v.SetDefault("server.shutdownTimeout", 5*time.Second)

	v.SetDefault("remote.baseURL", "")
	v.SetDefault("remote.timeout", 15*time.Second)
	v.SetDefault("remote.deleteTimeout", 30*time.Second)
	v.SetDefault("remote.confirmWrites", false)
	v.SetDefault("remote.rosterTTL", 10*time.Second)

	v.SetDefault("attendance.unmarkedDefault", "Hadir")
	v.SetDefault("attendance.utcOffset", 7) // WIB

	v.SetDefault("store.engine", "memory")

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.name", "absensi")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.adminUser", "")
	v.SetDefault("database.adminPassword", "")
	v.SetDefault("database.disableTLS", true)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.keyPrefix", "absensi:")

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)
	v.AllowEmptyEnv(true) // e.g. an empty attendance.unmarkedDefault
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	return &Config{
		Env:      env,
		Build:    v.GetString("build"),
		Debug:    v.GetBool("debug"),
		TestMode: v.GetBool("testMode"),
		AppName:  v.GetString("appName"),
		Server: ServerConfig{
			Host:            v.GetString("server.host"),
			DebugHost:       v.GetString("server.debugHost"),
			ShutdownTimeout: v.GetDuration("server.shutdownTimeout"),
		},
		Remote: RemoteConfig{
			BaseURL:       v.GetString("remote.baseURL"),
			Timeout:       v.GetDuration("remote.timeout"),
			DeleteTimeout: v.GetDuration("remote.deleteTimeout"),
			ConfirmWrites: v.GetBool("remote.confirmWrites"),
			RosterTTL:     v.GetDuration("remote.rosterTTL"),
		},
		Attendance: AttendanceConfig{
			UnmarkedDefault: v.GetString("attendance.unmarkedDefault"),
			UTCOffset:       v.GetInt("attendance.utcOffset"),
		},
		Store: StoreConfig{
			Engine: strings.ToLower(v.GetString("store.engine")),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("database.engine"),
			Host:          v.GetString("database.host"),
			Port:          v.GetString("database.port"),
			Name:          v.GetString("database.name"),
			User:          v.GetString("database.user"),
			Password:      v.GetString("database.password"),
			AdminUser:     v.GetString("database.adminUser"),
			AdminPassword: v.GetString("database.adminPassword"),
			DisableTLS:    v.GetBool("database.disableTLS"),
		},
		Redis: RedisConfig{
			Addr:      v.GetString("redis.addr"),
			Password:  v.GetString("redis.password"),
			DB:        v.GetInt("redis.db"),
			KeyPrefix: v.GetString("redis.keyPrefix"),
		},
		RollbarToken:     v.GetString("rollbarToken"),
		SendgridApiKey:   v.GetString("sendgridApiKey"),
		DefaultFromEmail: v.GetString("defaultFromEmail"),
		SchoolName:       v.GetString("schoolName"),
	}
}
