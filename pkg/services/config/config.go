package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/de-tools/medical-reports/pkg/models/domain"
	"github.com/de-tools/medical-reports/pkg/services/lifecycle"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

type Config struct {
	Env    string       `mapstructure:"env"`
	Server ServerConfig `mapstructure:"server"`
	CORS   CORSConfig   `mapstructure:"cors"`
	Report ReportConfig `mapstructure:"report"`
	Log    LogConfig    `mapstructure:"log"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	RateLimit       float64       `mapstructure:"rate_limit"`
	RateLimitBurst  int           `mapstructure:"rate_limit_burst"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type ReportConfig struct {
	Dir               string        `mapstructure:"dir"`
	Schedule          string        `mapstructure:"schedule"`
	GenerationTimeout time.Duration `mapstructure:"generation_timeout"`
	Timezone          string        `mapstructure:"timezone"`
	TimeLayout        string        `mapstructure:"time_layout"`
	ResumeSequence    bool          `mapstructure:"resume_sequence"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

var DefaultAllowedOrigins = []string{
	"https://medical-research-analysis.vercel.app",
	"http://localhost:5173",
	"http://localhost:3000",
}

// env aliases checked in order, on top of the automatic KEY_SUBKEY mapping
var envAliases = map[string][]string{
	"server.port": {"PORT", "SERVER_PORT"},
	"env":         {"APP_ENV", "NODE_ENV"},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", string(domain.EnvironmentDevelopment))

	v.SetDefault("server.host", "")
	v.SetDefault("server.port", 3001)
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.idle_timeout", 120*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.rate_limit", 100.0)
	v.SetDefault("server.rate_limit_burst", 200)

	v.SetDefault("cors.allowed_origins", DefaultAllowedOrigins)

	v.SetDefault("report.dir", "uploads")
	v.SetDefault("report.schedule", lifecycle.DefaultSchedule)
	v.SetDefault("report.generation_timeout", 30*time.Second)
	v.SetDefault("report.timezone", "UTC")
	v.SetDefault("report.time_layout", "02 Jan 2006 15:04:05 MST")
	v.SetDefault("report.resume_sequence", false)

	v.SetDefault("log.level", zerolog.InfoLevel.String())
}

// Load reads the configuration from defaults, the optional file at path and
// the environment, in increasing order of precedence.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, names := range envAliases {
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.CORS.AllowedOrigins = splitOrigins(cfg.CORS.AllowedOrigins)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDotEnv loads environment files, ignoring the ones that do not exist.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port out of range: %d", c.Server.Port))
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("server.shutdown_timeout must be positive"))
	}
	if c.Server.RateLimit <= 0 || c.Server.RateLimitBurst <= 0 {
		errs = append(errs, fmt.Errorf("server.rate_limit and server.rate_limit_burst must be positive"))
	}
	if strings.TrimSpace(c.Report.Dir) == "" {
		errs = append(errs, fmt.Errorf("report.dir is required"))
	}
	if strings.TrimSpace(c.Report.Schedule) == "" {
		errs = append(errs, fmt.Errorf("report.schedule is required"))
	} else if _, err := lifecycle.ParseSchedule(c.Report.Schedule); err != nil {
		errs = append(errs, fmt.Errorf("report.schedule: %w", err))
	}
	if c.Report.GenerationTimeout < 0 {
		errs = append(errs, fmt.Errorf("report.generation_timeout must not be negative"))
	}
	if _, err := time.LoadLocation(c.Report.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("report.timezone: %w", err))
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

func (c *Config) Environment() domain.Environment {
	return domain.ParseEnvironment(c.Env)
}

func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Report.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) LogLevel() zerolog.Level {
	level, err := zerolog.ParseLevel(c.Log.Level)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}

// splitOrigins accepts both list values and a single comma separated entry.
func splitOrigins(in []string) []string {
	var out []string
	for _, item := range in {
		for _, origin := range strings.Split(item, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				out = append(out, origin)
			}
		}
	}
	return out
}
