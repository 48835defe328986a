package config

import (
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

type Config struct {
	ListenAddr string `toml:"listen_addr"`
	CacheDir   string `toml:"cache_dir"`
	DebugProxy string `toml:"debug_proxy"`

	FFLogs struct {
		ClientID     string `toml:"client_id"`
		ClientSecret string `toml:"client_secret"`
		APIURL       string `toml:"api_url"`
	} `toml:"fflogs"`

	SentryDSN       string `toml:"sentry_dsn"`
	RecaptchaSecret string `toml:"recaptcha_secret"`

	Analysis struct {
		Workers       int   `toml:"workers"`
		DriftBuffer   int64 `toml:"drift_buffer_ms"`
		HistogramStep int64 `toml:"histogram_step_ms"`
		ModeDecimals  int   `toml:"mode_decimals"`
	} `toml:"analysis"`
}

func Default() *Config {
	cfg := &Config{
		ListenAddr: "127.0.0.1:5555",
		CacheDir:   "./_cachedata",
	}
	cfg.Analysis.Workers = 8
	cfg.Analysis.DriftBuffer = 1500
	cfg.Analysis.HistogramStep = 10
	cfg.Analysis.ModeDecimals = 2
	return cfg
}

// Load reads .env, then the toml file at path when given, then the
// environment. Later layers win.
func Load(path string) (*Config, error) {
	godotenv.Load(".env")

	cfg := Default()

	if path != "" {
		_, err := toml.DecodeFile(path, cfg)
		if err != nil {
			return nil, errors.Wrapf(err, "config %s", path)
		}
	}

	err := cfg.applyEnv(os.LookupEnv)
	if err != nil {
		return nil, err
	}

	return cfg, cfg.Validate()
}

func (cfg *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("LISTEN_ADDR", &cfg.ListenAddr)
	str("CACHE_DIR", &cfg.CacheDir)
	str("DEBUG_PROXY", &cfg.DebugProxy)
	str("FFLOGS_V2_OAUTH2_CLIENT_ID", &cfg.FFLogs.ClientID)
	str("FFLOGS_V2_OAUTH2_CLIENT_SECRET", &cfg.FFLogs.ClientSecret)
	str("FFLOGS_API_URL", &cfg.FFLogs.APIURL)
	str("SENTRY_DSN", &cfg.SentryDSN)
	str("GOOGLE_RECAPTCHA_V3_SECRET", &cfg.RecaptchaSecret)

	num := func(key string, dst *int64) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return errors.Wrapf(err, "%s", key)
		}
		*dst = n
		return nil
	}

	workers := int64(cfg.Analysis.Workers)
	if err := num("ANALYSIS_WORKERS", &workers); err != nil {
		return err
	}
	cfg.Analysis.Workers = int(workers)

	if err := num("DRIFT_BUFFER_MS", &cfg.Analysis.DriftBuffer); err != nil {
		return err
	}
	if err := num("HISTOGRAM_STEP_MS", &cfg.Analysis.HistogramStep); err != nil {
		return err
	}

	return nil
}

func (cfg *Config) Validate() error {
	switch {
	case cfg.Analysis.Workers <= 0:
		return errors.Errorf("analysis workers must be positive: %d", cfg.Analysis.Workers)
	case cfg.Analysis.HistogramStep <= 0:
		return errors.Errorf("histogram step must be positive: %d", cfg.Analysis.HistogramStep)
	case cfg.Analysis.DriftBuffer < 0:
		return errors.Errorf("drift buffer must not be negative: %d", cfg.Analysis.DriftBuffer)
	case cfg.Analysis.ModeDecimals < 0:
		return errors.Errorf("mode decimals must not be negative: %d", cfg.Analysis.ModeDecimals)
	case cfg.ListenAddr == "":
		return errors.New("listen address is empty")
	}
	return nil
}
