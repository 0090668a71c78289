package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"chat-reply-engine/internal/engine"
	"chat-reply-engine/internal/fuzzy"
)

// ArchiveFile is the name of the transcript archive inside the data directory.
const ArchiveFile = "transcripts.db"

// Config holds application configuration
type Config struct {
	DataDir  string
	LogLevel string

	Scoring fuzzy.Config
	Engine  struct {
		Seed    uint64
		Workers int
	}
	Server struct {
		Addr        string
		RateLimit   float64 // requests per second, 0 disables
		Burst       int
		ReadTimeout time.Duration
	}
}

// SetDefaults registers every key with its default value.
func SetDefaults(v *viper.Viper) {
	def := fuzzy.DefaultConfig()
	v.SetDefault("data_dir", "data")
	v.SetDefault("log_level", "info")
	v.SetDefault("scoring.consecutive_bonus", def.ConsecutiveBonus)
	v.SetDefault("scoring.word_start_bonus", def.WordStartBonus)
	v.SetDefault("scoring.distance_penalty", def.DistancePenalty)
	v.SetDefault("engine.seed", 0)
	v.SetDefault("engine.workers", 1)
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.rate_limit", 0)
	v.SetDefault("server.burst", 10)
	v.SetDefault("server.read_timeout", "15s")
}

// Load reads a Config out of v and validates it.
func Load(v *viper.Viper) (Config, error) {
	SetDefaults(v)

	var c Config
	c.DataDir = v.GetString("data_dir")
	c.LogLevel = strings.ToLower(strings.TrimSpace(v.GetString("log_level")))
	c.Scoring = fuzzy.Config{
		ConsecutiveBonus: v.GetInt("scoring.consecutive_bonus"),
		WordStartBonus:   v.GetInt("scoring.word_start_bonus"),
		DistancePenalty:  v.GetInt("scoring.distance_penalty"),
	}
	c.Engine.Seed = v.GetUint64("engine.seed")
	c.Engine.Workers = v.GetInt("engine.workers")
	c.Server.Addr = v.GetString("server.addr")
	c.Server.RateLimit = v.GetFloat64("server.rate_limit")
	c.Server.Burst = v.GetInt("server.burst")
	c.Server.ReadTimeout = v.GetDuration("server.read_timeout")

	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) Validate() error {
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level %q: %w", c.LogLevel, err)
	}
	if c.Scoring.DistancePenalty < 0 {
		return fmt.Errorf("scoring.distance_penalty must not be negative, got %d", c.Scoring.DistancePenalty)
	}
	if c.Engine.Workers < 1 {
		return fmt.Errorf("engine.workers must be at least 1, got %d", c.Engine.Workers)
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("server.rate_limit must not be negative, got %v", c.Server.RateLimit)
	}
	if c.Server.RateLimit > 0 && c.Server.Burst < 1 {
		return fmt.Errorf("server.burst must be at least 1 when rate limiting, got %d", c.Server.Burst)
	}
	return nil
}

// ArchivePath is where imported transcripts are kept.
func (c Config) ArchivePath() string {
	return filepath.Join(c.DataDir, ArchiveFile)
}

// EngineConfig maps the scoring and engine sections onto engine.Config.
func (c Config) EngineConfig() engine.Config {
	return engine.Config{Scoring: c.Scoring, Workers: c.Engine.Workers}
}

// EngineOptions returns the options implied by configuration.
func (c Config) EngineOptions() []engine.Option {
	if c.Engine.Seed != 0 {
		return []engine.Option{engine.WithSeed(c.Engine.Seed)}
	}
	return nil
}
