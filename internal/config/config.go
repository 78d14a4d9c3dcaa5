package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	TelegramBotToken string
	DatabaseURL      string
	RedisURL         string
	APIKey           string

	DataDir   string
	ConfigDir string
	ModelDir  string

	ScoreHourUTC    int
	ResolvePollSecs int

	CalibrateTimeoutSecs int
	CalibrateMinSamples  int
	CalibrateWindowDays  int

	TrainHourUTC    int
	TrainWindowDays int
	MinTrainSamples int
}

func Load() *Config {
	cfg := &Config{
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RedisURL:         os.Getenv("REDIS_URL"),
		APIKey:           os.Getenv("API_KEY"),
	}

	if cfg.TelegramBotToken == "" {
		log.Println("Warning: TELEGRAM_BOT_TOKEN not set")
	}
	if cfg.DatabaseURL == "" {
		log.Println("Warning: DATABASE_URL not set, history store disabled")
	}
	if cfg.RedisURL == "" {
		log.Println("Warning: REDIS_URL not set, recommendation cache disabled")
	}

	cfg.DataDir = strings.TrimSpace(os.Getenv("DATA_DIR"))
	if cfg.DataDir == "" {
		cfg.DataDir = "data"
	}

	cfg.ConfigDir = strings.TrimSpace(os.Getenv("CONFIG_DIR"))
	if cfg.ConfigDir == "" {
		cfg.ConfigDir = "config"
	}

	cfg.ModelDir = strings.TrimSpace(os.Getenv("MODEL_DIR"))
	if cfg.ModelDir == "" {
		cfg.ModelDir = "models"
	}

	cfg.ScoreHourUTC = 10
	if v := strings.TrimSpace(os.Getenv("SCORE_HOUR_UTC")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 && n <= 23 {
			cfg.ScoreHourUTC = n
		}
	}

	cfg.ResolvePollSecs = 1800
	if v := strings.TrimSpace(os.Getenv("RESOLVE_POLL_SECS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ResolvePollSecs = n
		}
	}

	cfg.CalibrateTimeoutSecs = 120
	if v := strings.TrimSpace(os.Getenv("CALIBRATE_TIMEOUT_SECS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.CalibrateTimeoutSecs = n
		}
	}

	cfg.CalibrateMinSamples = 15
	if v := strings.TrimSpace(os.Getenv("CALIBRATE_MIN_SAMPLES")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.CalibrateMinSamples = n
		}
	}

	cfg.CalibrateWindowDays = 120
	if v := strings.TrimSpace(os.Getenv("CALIBRATE_WINDOW_DAYS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.CalibrateWindowDays = n
		}
	}

	cfg.TrainHourUTC = 4
	if v := strings.TrimSpace(os.Getenv("TRAIN_HOUR_UTC")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 && n <= 23 {
			cfg.TrainHourUTC = n
		}
	}

	cfg.TrainWindowDays = 180
	if v := strings.TrimSpace(os.Getenv("TRAIN_WINDOW_DAYS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TrainWindowDays = n
		}
	}

	cfg.MinTrainSamples = 50
	if v := strings.TrimSpace(os.Getenv("TRAIN_MIN_SAMPLES")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MinTrainSamples = n
		}
	}

	return cfg
}
