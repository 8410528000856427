package expbot

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/disgoorg/snowflake/v2"
	"github.com/impulse/expbot/expbot/config"
	"github.com/impulse/expbot/expbot/database"
	"github.com/impulse/expbot/expbot/progression"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const envPrefix = "EXPBOT_"

// Storage drivers.
const (
	DriverFile     = "file"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// LoadConfig reads a TOML or YAML file (chosen by extension), overlays EXPBOT_* environment
// variables and fills in defaults.
func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.NewDecoder(file).Decode(&cfg)
	default:
		err = toml.NewDecoder(file).Decode(&cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type Config struct {
	Log     LogConfig         `toml:"log" yaml:"log" envPrefix:"LOG_"`
	Bot     BotConfig         `toml:"bot" yaml:"bot" envPrefix:"BOT_"`
	Storage StorageConfig     `toml:"storage" yaml:"storage" envPrefix:"STORAGE_"`
	DB      database.DBConfig `toml:"db" yaml:"db" envPrefix:"DB_"`
	Exp     ExpConfig         `toml:"exp" yaml:"exp" envPrefix:"EXP_"`
}

type BotConfig struct {
	Token           string         `toml:"token" yaml:"token" env:"TOKEN"`
	DevGuilds       []snowflake.ID `toml:"dev_guilds" yaml:"dev_guilds" env:"DEV_GUILDS"`
	Admins          []snowflake.ID `toml:"admins" yaml:"admins" env:"ADMINS"`
	AnnounceChannel snowflake.ID   `toml:"announce_channel" yaml:"announce_channel" env:"ANNOUNCE_CHANNEL"`
}

type LogConfig struct {
	Level     slog.Level `toml:"level" yaml:"level" env:"LEVEL"`
	Format    string     `toml:"format" yaml:"format" env:"FORMAT"`
	AddSource bool       `toml:"add_source" yaml:"add_source" env:"ADD_SOURCE"`
}

type StorageConfig struct {
	Driver     string `toml:"driver" yaml:"driver" env:"DRIVER"`
	DataDir    string `toml:"data_dir" yaml:"data_dir" env:"DATA_DIR"`
	SQLitePath string `toml:"sqlite_path" yaml:"sqlite_path" env:"SQLITE_PATH"`
}

// ExpConfig tunes the progression engine. Zero values keep the built-in defaults.
type ExpConfig struct {
	MinLevelExp          int64   `toml:"min_level_exp" yaml:"min_level_exp" env:"MIN_LEVEL_EXP"`
	LevelMultiplier      float64 `toml:"level_multiplier" yaml:"level_multiplier" env:"LEVEL_MULTIPLIER"`
	CooldownSeconds      int     `toml:"cooldown_seconds" yaml:"cooldown_seconds" env:"COOLDOWN_SECONDS"`
	DoubleExpMultiplier  int64   `toml:"double_exp_multiplier" yaml:"double_exp_multiplier" env:"DOUBLE_EXP_MULTIPLIER"`
	MilestoneInterval    int     `toml:"milestone_interval" yaml:"milestone_interval" env:"MILESTONE_INTERVAL"`
	BonusMultiplier      int64   `toml:"bonus_multiplier" yaml:"bonus_multiplier" env:"BONUS_MULTIPLIER"`
	AnnouncementInterval int     `toml:"announcement_interval" yaml:"announcement_interval" env:"ANNOUNCEMENT_INTERVAL"`
	InactiveMinutes      int     `toml:"inactive_minutes" yaml:"inactive_minutes" env:"INACTIVE_MINUTES"`
	ActivityExp          int64   `toml:"activity_exp" yaml:"activity_exp" env:"ACTIVITY_EXP"`
	TickSeconds          int     `toml:"tick_seconds" yaml:"tick_seconds" env:"TICK_SECONDS"`
	LadderSize           int     `toml:"ladder_size" yaml:"ladder_size" env:"LADDER_SIZE"`
}

func (c *Config) applyEnv() error {
	opts := env.Options{
		Prefix: envPrefix,
		FuncMap: map[reflect.Type]env.ParserFunc{
			reflect.TypeOf(snowflake.ID(0)): func(v string) (interface{}, error) {
				return snowflake.Parse(v)
			},
		},
	}
	if err := env.ParseWithOptions(c, opts); err != nil {
		return fmt.Errorf("failed to apply environment overrides: %w", err)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = DriverFile
	}
	c.Storage.Driver = strings.ToLower(c.Storage.Driver)
	if c.Storage.DataDir == "" {
		c.Storage.DataDir = config.DefaultDataDir
	}
	if c.Storage.SQLitePath == "" {
		c.Storage.SQLitePath = config.DefaultSQLitePath
	}
	if c.DB.Port == 0 {
		c.DB.Port = 5432
	}
	if c.Exp.TickSeconds == 0 {
		c.Exp.TickSeconds = int(config.ActivityTickPeriod / time.Second)
	}
}

func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverFile, DriverSQLite:
	case DriverPostgres:
		if c.DB.Host == "" || c.DB.Database == "" {
			return fmt.Errorf("storage driver %q needs db.host and db.database", c.Storage.Driver)
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Exp.TickSeconds < 0 || c.Exp.CooldownSeconds < 0 || c.Exp.InactiveMinutes < 0 {
		return fmt.Errorf("exp durations must not be negative")
	}
	return nil
}

// TickPeriod is how often active users receive the activity grant.
func (c *Config) TickPeriod() time.Duration {
	return time.Duration(c.Exp.TickSeconds) * time.Second
}

// EngineOptions converts the exp section. Unset values fall back to engine defaults.
func (c *Config) EngineOptions() (progression.Options, error) {
	opts := progression.Options{
		Cooldown:             time.Duration(c.Exp.CooldownSeconds) * time.Second,
		DoubleExpFactor:      c.Exp.DoubleExpMultiplier,
		MilestoneInterval:    c.Exp.MilestoneInterval,
		BonusMultiplier:      c.Exp.BonusMultiplier,
		AnnouncementInterval: c.Exp.AnnouncementInterval,
		InactiveThreshold:    time.Duration(c.Exp.InactiveMinutes) * time.Minute,
		ActivityExp:          c.Exp.ActivityExp,
		LadderSize:           c.Exp.LadderSize,
	}

	if c.Exp.MinLevelExp != 0 || c.Exp.LevelMultiplier != 0 {
		minExp, mult := c.Exp.MinLevelExp, c.Exp.LevelMultiplier
		if minExp == 0 {
			minExp = config.MinLevelExp
		}
		if mult == 0 {
			mult = config.LevelMultiplier
		}
		curve, err := progression.NewCurve(minExp, mult)
		if err != nil {
			return progression.Options{}, err
		}
		opts.Curve = curve
	}
	return opts, nil
}

func (c *Config) IsAdmin(id snowflake.ID) bool {
	for _, admin := range c.Bot.Admins {
		if admin == id {
			return true
		}
	}
	return false
}
