package main

import (
	"log"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/mattstasch/ffes-sauna-homeassistant/cmd"
)

func main() {
	app := &cli.App{
		Name:   "ffes-controller",
		Usage:  "controller for FFES sauna heaters",
		Action: cmd.SaunaCommand,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "sauna-host",
				EnvVars: []string{"SAUNA_HOST"},
				Value:   "ffes.local",
			},
			&cli.IntFlag{
				Name:    "sauna-port",
				EnvVars: []string{"SAUNA_PORT"},
				Value:   502,
			},
			&cli.UintFlag{
				Name:    "sauna-unit-id",
				EnvVars: []string{"SAUNA_UNIT_ID"},
				Value:   1,
			},
			&cli.DurationFlag{
				Name:    "poll-interval",
				EnvVars: []string{"POLL_INTERVAL"},
				Value:   15 * time.Second,
			},
			&cli.IntFlag{
				Name:    "failure-threshold",
				EnvVars: []string{"FAILURE_THRESHOLD"},
				Value:   3,
			},
			&cli.StringFlag{
				Name:    "mqtt-host",
				EnvVars: []string{"MQTT_HOST"},
				Value:   "",
			},
			&cli.StringFlag{
				Name:    "mqtt-user",
				EnvVars: []string{"MQTT_USER"},
				Value:   "",
			},
			&cli.StringFlag{
				Name:    "mqtt-pass",
				EnvVars: []string{"MQTT_PASS"},
				Value:   "",
			},
			&cli.StringFlag{
				Name:    "http-addr",
				EnvVars: []string{"HTTP_ADDR"},
				Value:   "0.0.0.0:8000",
			},
			&cli.StringFlag{
				Name:    "preheat-cron",
				EnvVars: []string{"PREHEAT_CRON"},
				Value:   "",
			},
			&cli.IntFlag{
				Name:    "preheat-profile",
				EnvVars: []string{"PREHEAT_PROFILE"},
				Value:   2,
			},
			&cli.IntFlag{
				Name:    "preheat-temperature",
				EnvVars: []string{"PREHEAT_TEMPERATURE"},
				Value:   80,
			},
			&cli.StringFlag{
				Name:    "preheat-session-time",
				EnvVars: []string{"PREHEAT_SESSION_TIME"},
				Value:   "01:00",
			},
			&cli.StringFlag{
				Name:    "preheat-ventilation-time",
				EnvVars: []string{"PREHEAT_VENTILATION_TIME"},
				Value:   "00:15",
			},
			&cli.IntFlag{
				Name:    "preheat-aroma",
				EnvVars: []string{"PREHEAT_AROMA"},
				Value:   0,
			},
			&cli.IntFlag{
				Name:    "preheat-humidity",
				EnvVars: []string{"PREHEAT_HUMIDITY"},
				Value:   0,
			},
			&cli.StringFlag{
				Name:    "log-level",
				EnvVars: []string{"LOG_LEVEL"},
				Value:   "INFO",
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
