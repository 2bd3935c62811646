package main

import (
	"context"
	"errors"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/ztkent/opt3001/internal/tools"
	"github.com/ztkent/opt3001/opt3001"
)

/*
	Reader for an OPT3001 ambient light sensor.
	Configured from the environment, see internal/tools/config.go.
*/

type closingBus interface {
	opt3001.Bus
	io.Closer
}

func main() {
	config, err := tools.LoadConfig()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	l, logCloser, err := tools.NewLogger(config.LogLevel, config.LogFile)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logCloser.Close()
	opt3001.SetLogger(l)

	l.WithFields(logrus.Fields{
		"pid":     os.Getpid(),
		"backend": config.Backend,
		"bus":     config.Bus,
		"address": config.Address,
		"mode":    config.Mode,
	}).Info("OPT3001 reader")

	if err := run(l, config); err != nil {
		l.WithError(err).Error("OPT3001 reader failed")
		logCloser.Close()
		os.Exit(1)
	}
}

func run(l *logrus.Logger, config tools.Config) error {
	bus, err := openBus(config)
	if err != nil {
		return err
	}
	defer bus.Close()

	// connect to the lux sensor
	device, err := opt3001.NewOPT3001(bus, config.Address)
	if err != nil {
		return err
	}
	device.Timeout = config.Timeout

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch config.Mode {
	case tools.MODE_SINGLE:
		err = runSingleShot(ctx, l, device, config)
	case tools.MODE_DEBUG:
		err = runDebug(ctx, l, device, config)
	default:
		err = runContinuous(ctx, l, device, config)
	}

	// Always leave the sensor in low power mode
	if deinitErr := device.Deinit(); deinitErr != nil {
		err = errors.Join(err, deinitErr)
	} else {
		l.Info("Sensor is in shutdown mode")
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func openBus(config tools.Config) (closingBus, error) {
	if config.Backend == tools.BACKEND_PERIPH {
		bus, err := opt3001.OpenPeriphBus(config.Bus)
		if err != nil {
			return nil, err
		}
		return bus, nil
	}
	return opt3001.NewDevfsBus(config.Bus), nil
}

// Sleep for d, unless the context is cancelled first
func wait(ctx context.Context, device *opt3001.OPT3001, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-device.Clock.After(d):
		return nil
	}
}

func runContinuous(ctx context.Context, l *logrus.Logger, device *opt3001.OPT3001, config tools.Config) error {
	if err := device.Configure(opt3001.OPT3001_MODE_CONTINUOUS, config.ConversionTime, true); err != nil {
		return err
	}
	// Wait for the first conversion
	if err := wait(ctx, device, opt3001.ConversionDuration(config.ConversionTime)+50*time.Millisecond); err != nil {
		return err
	}

	for i := 0; i < config.Samples; i++ {
		exponent, mantissa, err := device.ReadRaw()
		if err != nil {
			return err
		}
		lux := opt3001.DecodeLux(exponent, mantissa)
		l.WithFields(logrus.Fields{
			"sample":      i + 1,
			"exponent":    exponent,
			"mantissa":    mantissa,
			"lux":         lux,
			"light_level": tools.DescribeLightLevel(lux),
		}).Info("Continuous reading")

		if err := wait(ctx, device, config.Interval); err != nil {
			return err
		}
	}
	return nil
}

func runSingleShot(ctx context.Context, l *logrus.Logger, device *opt3001.OPT3001, config tools.Config) error {
	// Single-shot reuses the conversion time of the last configuration
	if err := device.Configure(opt3001.OPT3001_MODE_SHUTDOWN, config.ConversionTime, true); err != nil {
		return err
	}

	for i := 0; i < config.Samples; i++ {
		start := time.Now()
		lux, err := device.SingleShot(ctx)
		if err != nil {
			return err
		}
		l.WithFields(logrus.Fields{
			"sample":      i + 1,
			"lux":         lux,
			"light_level": tools.DescribeLightLevel(lux),
			"elapsed":     time.Since(start).String(),
		}).Info("Single-shot reading")

		if err := wait(ctx, device, config.Interval); err != nil {
			return err
		}
	}
	return nil
}

func runDebug(ctx context.Context, l *logrus.Logger, device *opt3001.OPT3001, config tools.Config) error {
	manufacturer, id, err := device.ReadDeviceID()
	if err != nil {
		return err
	}
	l.WithFields(logrus.Fields{
		"manufacturer_id": manufacturer,
		"device_id":       id,
		"expected":        []uint16{opt3001.OPT3001_MANUFACTURER_ID, opt3001.OPT3001_DEVICE_ID},
	}).Info("Device identification")

	if err := device.Configure(opt3001.OPT3001_MODE_CONTINUOUS, config.ConversionTime, true); err != nil {
		return err
	}
	if err := wait(ctx, device, opt3001.ConversionDuration(config.ConversionTime)+50*time.Millisecond); err != nil {
		return err
	}

	cfg, err := device.ReadConfig()
	if err != nil {
		return err
	}
	l.WithFields(logrus.Fields{
		"range":            opt3001.RangeToString(cfg.Range),
		"conversion_time":  opt3001.ConversionTimeToString(cfg.ConversionTime),
		"mode":             opt3001.ModeToString(cfg.Mode),
		"conversion_ready": cfg.ConversionReady,
		"overflow":         cfg.Overflow,
		"flag_high":        cfg.FlagHigh,
		"flag_low":         cfg.FlagLow,
		"fault_count":      cfg.FaultCount,
	}).Info("Configuration register")

	low, err := device.ReadLowLimit()
	if err != nil {
		return err
	}
	high, err := device.ReadHighLimit()
	if err != nil {
		return err
	}
	l.WithFields(logrus.Fields{"low_lux": low, "high_lux": high}).Info("Interrupt limits")

	for i := 0; i < config.Samples; i++ {
		ready, err := device.IsConversionReady()
		if err != nil {
			return err
		}
		exponent, mantissa, err := device.ReadRaw()
		if err != nil {
			return err
		}
		l.WithFields(logrus.Fields{
			"sample":   i + 1,
			"ready":    ready,
			"raw":      opt3001.EncodeRaw(exponent, mantissa),
			"exponent": exponent,
			"mantissa": mantissa,
			"lux":      opt3001.DecodeLux(exponent, mantissa),
		}).Info("Result register")

		if err := wait(ctx, device, config.Interval); err != nil {
			return err
		}
	}
	return nil
}
