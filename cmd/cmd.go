package cmd

import (
	"context"
	"errors"
	"net/http"
	"time"

	paho_mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mattstasch/ffes-sauna-homeassistant/internal/pkg/config"
	"github.com/mattstasch/ffes-sauna-homeassistant/internal/pkg/handler"
	"github.com/mattstasch/ffes-sauna-homeassistant/internal/pkg/modbus"
	"github.com/mattstasch/ffes-sauna-homeassistant/internal/pkg/model"
	"github.com/mattstasch/ffes-sauna-homeassistant/internal/pkg/mqtt"
	"github.com/mattstasch/ffes-sauna-homeassistant/internal/pkg/publisher"
	"github.com/mattstasch/ffes-sauna-homeassistant/internal/pkg/resolver"
	"github.com/mattstasch/ffes-sauna-homeassistant/internal/pkg/sauna"
	"github.com/mattstasch/ffes-sauna-homeassistant/internal/pkg/schedule"
)

func SaunaCommand(ctx *cli.Context) error {
	cfg := &config.Config{
		SaunaCfg: &config.SaunaConfig{
			Host:             ctx.String("sauna-host"),
			Port:             ctx.Int("sauna-port"),
			UnitID:           uint8(ctx.Uint("sauna-unit-id")),
			PollInterval:     ctx.Duration("poll-interval"),
			FailureThreshold: ctx.Int("failure-threshold"),
		},
		MqttCfg: &config.MqttConfig{
			Host:     ctx.String("mqtt-host"),
			Username: ctx.String("mqtt-user"),
			Password: ctx.String("mqtt-pass"),
		},
		Preheat: &config.PreheatConfig{
			Cron:            ctx.String("preheat-cron"),
			Profile:         ctx.Int("preheat-profile"),
			Temperature:     ctx.Int("preheat-temperature"),
			SessionTime:     ctx.String("preheat-session-time"),
			VentilationTime: ctx.String("preheat-ventilation-time"),
			Aroma:           ctx.Int("preheat-aroma"),
			Humidity:        ctx.Int("preheat-humidity"),
		},
		HTTPAddr: ctx.String("http-addr"),
		LogLevel: ctx.String("log-level"),
	}
	cfg.SaunaCfg.Normalize()

	logCfg := zap.NewProductionConfig()
	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logCfg.Level = level
	logCfg.OutputPaths = []string{"stdout"}
	logCfg.ErrorOutputPaths = []string{"stdout"}
	logCfg.Sampling = nil
	logger := zap.Must(logCfg.Build(zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel)))
	defer func() {
		_ = logger.Sync() // flushes buffer, if any.
	}()
	zap.ReplaceGlobals(logger)

	errorChan := make(chan error, 1000)

	if cfg.MqttCfg.Host != "" {
		opts := paho_mqtt.NewClientOptions().
			AddBroker(cfg.MqttCfg.Host).
			SetUsername(cfg.MqttCfg.Username).
			SetPassword(cfg.MqttCfg.Password).
			SetClientID("ffes-controller").
			SetAutoReconnect(true)
		mqttSvc := mqtt.New(paho_mqtt.NewClient(opts))
		if err := mqttSvc.Connect(); err != nil {
			return err
		}
		if err := publisher.RegisterPublisher("mqtt", mqttSvc); err != nil {
			return err
		}
	}

	transport := modbus.New(cfg.SaunaCfg.UnitID, modbus.DefaultTimeout)
	defer transport.Close()

	saunaSvc := sauna.New(cfg.SaunaCfg, transport, resolver.New(), errorChan)

	return run(ctx.Context, cfg, saunaSvc, errorChan)
}

func run(ctx context.Context, cfg *config.Config, saunaSvc SaunaService, errorChan chan error) error {
	logger := zap.L()
	eg, ctx := errgroup.WithContext(ctx)

	device := saunaSvc.Device()
	if err := publisher.RegisterDevice(&device); err != nil {
		return err
	}

	var scheduler *schedule.Scheduler
	if cfg.Preheat != nil && cfg.Preheat.Cron != "" {
		scheduler = schedule.New(saunaSvc, errorChan)
		if err := scheduler.AddPreheat(cfg.Preheat.Cron, model.SessionParams{
			Profile:         model.Profile(cfg.Preheat.Profile),
			Temperature:     cfg.Preheat.Temperature,
			SessionTime:     cfg.Preheat.SessionTime,
			VentilationTime: cfg.Preheat.VentilationTime,
			Aroma:           cfg.Preheat.Aroma,
			Humidity:        cfg.Preheat.Humidity,
		}); err != nil {
			return err
		}
	}

	eg.Go(func() error {
		return saunaSvc.Run(ctx)
	})

	if scheduler != nil {
		eg.Go(func() error {
			return scheduler.Run(ctx)
		})
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/sauna-data", handler.SaunaData(saunaSvc))
	mux.HandleFunc("/sauna-control", handler.SaunaControl(saunaSvc))
	srv := &http.Server{
		Handler:      handler.LoggingMiddleware(mux),
		Addr:         cfg.HTTPAddr,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	eg.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	eg.Go(func() error {
		// handle any async errors from services
		for {
			select {
			case err := <-errorChan:
				logger.Error("service error", zap.Error(err))
			case <-ctx.Done():
				logger.Info("context done")
				return ctx.Err()
			}
		}
	})

	return eg.Wait()
}
