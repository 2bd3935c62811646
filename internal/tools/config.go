package tools

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ztkent/opt3001/opt3001"
)

const (
	BACKEND_DEVFS  = "devfs"
	BACKEND_PERIPH = "periph"

	MODE_CONTINUOUS = "continuous"
	MODE_SINGLE     = "single"
	MODE_DEBUG      = "debug"
)

// Config holds the reader settings, taken from the environment.
type Config struct {
	Backend        string // "devfs" | "periph"
	Bus            string // i2c-dev node for devfs, bus name for periph
	Address        uint16
	Mode           string // "continuous" | "single" | "debug"
	ConversionTime byte
	Samples        int
	Interval       time.Duration
	Timeout        time.Duration // 0 keeps the driver default
	LogLevel       string
	LogFile        string
}

// LoadConfig reads the OPT3001_* and LOG_* environment variables.
func LoadConfig() (Config, error) {
	return loadConfig(os.Getenv)
}

func loadConfig(getenv func(string) string) (Config, error) {
	config := Config{
		Backend:        BACKEND_DEVFS,
		Address:        opt3001.OPT3001_ADDR,
		Mode:           MODE_CONTINUOUS,
		ConversionTime: opt3001.OPT3001_CONVERSIONTIME_800MS,
		Samples:        10,
		Interval:       time.Second,
		LogLevel:       getenv("LOG_LEVEL"),
		LogFile:        getenv("LOG_FILE"),
	}

	if backend := strings.ToLower(getenv("OPT3001_BACKEND")); backend != "" {
		if backend != BACKEND_DEVFS && backend != BACKEND_PERIPH {
			return Config{}, fmt.Errorf("OPT3001_BACKEND: unknown backend %q", backend)
		}
		config.Backend = backend
	}

	config.Bus = getenv("OPT3001_BUS")
	if config.Bus == "" && config.Backend == BACKEND_DEVFS {
		config.Bus = "/dev/i2c-1"
	}

	if addr := getenv("OPT3001_ADDR"); addr != "" {
		v, err := strconv.ParseUint(addr, 0, 7)
		if err != nil {
			return Config{}, fmt.Errorf("OPT3001_ADDR: %w", err)
		}
		config.Address = uint16(v)
	}

	if mode := strings.ToLower(getenv("OPT3001_MODE")); mode != "" {
		switch mode {
		case MODE_CONTINUOUS, MODE_SINGLE, MODE_DEBUG:
			config.Mode = mode
		default:
			return Config{}, fmt.Errorf("OPT3001_MODE: unknown mode %q", mode)
		}
	}

	switch ct := strings.ToLower(getenv("OPT3001_CONVERSION_TIME")); ct {
	case "":
	case "100ms":
		config.ConversionTime = opt3001.OPT3001_CONVERSIONTIME_100MS
	case "800ms":
		config.ConversionTime = opt3001.OPT3001_CONVERSIONTIME_800MS
	default:
		return Config{}, fmt.Errorf("OPT3001_CONVERSION_TIME: want 100ms or 800ms, got %q", ct)
	}

	if samples := getenv("OPT3001_SAMPLES"); samples != "" {
		n, err := strconv.Atoi(samples)
		if err != nil || n < 1 {
			return Config{}, fmt.Errorf("OPT3001_SAMPLES: want a positive integer, got %q", samples)
		}
		config.Samples = n
	}

	var err error
	if config.Interval, err = parseDuration(getenv, "OPT3001_INTERVAL", config.Interval); err != nil {
		return Config{}, err
	}
	if config.Timeout, err = parseDuration(getenv, "OPT3001_TIMEOUT", 0); err != nil {
		return Config{}, err
	}
	return config, nil
}

func parseDuration(getenv func(string) string, key string, fallback time.Duration) (time.Duration, error) {
	value := getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: negative duration %s", key, d)
	}
	return d, nil
}
