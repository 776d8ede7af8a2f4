// Copyright (C) 2026 l3montree GmbH
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package config

import (
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const DefaultNVDBaseURL = "https://services.nvd.nist.gov/rest/json/cves/2.0"

type NVDConfig struct {
	BaseURL        string        `mapstructure:"NVD_API_BASE_URL" validate:"required,url"`
	APIKey         string        `mapstructure:"NVD_API_KEY"`
	RateLimitDelay time.Duration `mapstructure:"NVD_RATE_LIMIT_DELAY" validate:"min=0"`
	MaxRetries     int           `mapstructure:"NVD_MAX_RETRIES" validate:"min=0,max=10"`
	ResultsPerPage int           `mapstructure:"NVD_RESULTS_PER_PAGE" validate:"min=1,max=2000"`
	Timeout        time.Duration `mapstructure:"NVD_TIMEOUT" validate:"gt=0"`
	LookupCacheTTL time.Duration `mapstructure:"NVD_LOOKUP_CACHE_TTL" validate:"min=0"`
}

type SyncConfig struct {
	Enabled               bool          `mapstructure:"SYNC_ENABLED"`
	Interval              time.Duration `mapstructure:"SYNC_INTERVAL" validate:"gt=0"`
	BatchSize             int           `mapstructure:"SYNC_BATCH_SIZE" validate:"min=1,max=10000"`
	MaxConcurrentBatches  int           `mapstructure:"SYNC_MAX_CONCURRENT_BATCHES" validate:"min=1,max=32"`
	IncrementalFallback   time.Duration `mapstructure:"SYNC_INCREMENTAL_FALLBACK" validate:"gt=0"`
	HistoryRetention      time.Duration `mapstructure:"SYNC_HISTORY_RETENTION" validate:"gt=0"`
	StatisticsCacheTTL    time.Duration `mapstructure:"STATISTICS_CACHE_TTL" validate:"min=0"`
	DisableDaemons        bool          `mapstructure:"DISABLE_DAEMONS"`
	DisableAutoMigrations bool          `mapstructure:"DISABLE_AUTOMIGRATE"`
}

type ServerConfig struct {
	Host               string `mapstructure:"HOST"`
	Port               int    `mapstructure:"PORT" validate:"min=1,max=65535"`
	CORSAllowedOrigins string `mapstructure:"CORS_ALLOWED_ORIGINS"`
	Environment        string `mapstructure:"ENVIRONMENT"`
	ErrorTrackingDSN   string `mapstructure:"ERROR_TRACKING_DSN"`
}

type Config struct {
	NVD    NVDConfig    `mapstructure:",squash"`
	Sync   SyncConfig   `mapstructure:",squash"`
	Server ServerConfig `mapstructure:",squash"`
}

func (c ServerConfig) Address() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

func (c ServerConfig) AllowedOrigins() []string {
	origins := []string{}
	for o := range strings.SplitSeq(c.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("NVD_API_BASE_URL", DefaultNVDBaseURL)
	v.SetDefault("NVD_API_KEY", "")
	v.SetDefault("NVD_RATE_LIMIT_DELAY", "1s")
	v.SetDefault("NVD_MAX_RETRIES", 3)
	v.SetDefault("NVD_RESULTS_PER_PAGE", 2000)
	v.SetDefault("NVD_TIMEOUT", "30s")
	v.SetDefault("NVD_LOOKUP_CACHE_TTL", "5m")

	v.SetDefault("SYNC_ENABLED", true)
	v.SetDefault("SYNC_INTERVAL", "24h")
	v.SetDefault("SYNC_BATCH_SIZE", 1000)
	v.SetDefault("SYNC_MAX_CONCURRENT_BATCHES", 1)
	v.SetDefault("SYNC_INCREMENTAL_FALLBACK", "168h")
	v.SetDefault("SYNC_HISTORY_RETENTION", "720h")
	v.SetDefault("STATISTICS_CACHE_TTL", "1m")
	v.SetDefault("DISABLE_DAEMONS", false)
	v.SetDefault("DISABLE_AUTOMIGRATE", false)

	v.SetDefault("HOST", "0.0.0.0")
	v.SetDefault("PORT", 8080)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("ENVIRONMENT", "dev")
	v.SetDefault("ERROR_TRACKING_DSN", "")
}

// Load reads the configuration from the environment.
// Call shared.LoadConfig first to populate the environment from a .env file.
func Load() (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	var cfg Config
	// AutomaticEnv only resolves keys viper knows about, the defaults register all of them
	if err := v.Unmarshal(&cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))); err != nil {
		return Config{}, errors.Wrap(err, "could not decode configuration")
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, errors.Wrap(err, "invalid configuration")
	}
	return cfg, nil
}

// Default returns the configuration with every default applied and no environment lookups.
func Default() Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg, viper.DecodeHook(mapstructure.StringToTimeDurationHookFunc()))
	return cfg
}
