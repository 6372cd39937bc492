package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/icodeforyou/spotprice-go/config"
	"github.com/icodeforyou/spotprice-go/database"
	"github.com/icodeforyou/spotprice-go/hours"
	"github.com/icodeforyou/spotprice-go/logging"
	"github.com/icodeforyou/spotprice-go/metrics"
	"github.com/icodeforyou/spotprice-go/publisher"
	"github.com/icodeforyou/spotprice-go/setup"
	"github.com/icodeforyou/spotprice-go/task"
	"github.com/icodeforyou/spotprice-go/www"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var Version = "?.?.?"

func main() {
	defer func() {
		if err := recover(); err != nil {
			exitWithError(slog.Default(), fmt.Errorf("application panicked: %v", err))
		} else {
			slog.Default().Info("application is shutting down...")
		}
	}()

	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	// A missing .env is fine, the environment may be set by other means
	_ = godotenv.Load()

	cnfg, err := config.Load(*configPath)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	loc, err := hours.LoadLocation(cnfg.GetTimezone())
	if err != nil {
		panic(fmt.Sprintf("failed to load timezone: %v", err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	consoleHandler := tint.NewHandler(os.Stdout, &tint.Options{
		Level:      cnfg.Logging.GetConsoleLevel(),
		TimeFormat: time.RFC3339,
	})
	slog.New(consoleHandler).Debug("spotprice is starting...", slog.String("version", Version))

	db, err := database.New(ctx, cnfg.Database.Path)
	if err != nil {
		panic(fmt.Sprintf("failed to connect to database: %v", err))
	}
	defer db.Close()

	logger := slog.New(logging.NewMultiHandler(
		consoleHandler,
		logging.NewSQLiteHandler(db, cnfg.Logging.GetDbLevel(), cnfg.Logging.GetDbAttrsFormat())))
	slog.SetDefault(logger)

	// Now we can use the logger to log database operations into the database itself
	db.SetLogger(logger.With("module", "database"))

	engine, err := setup.Engine(cnfg, loc)
	if err != nil {
		panic(fmt.Sprintf("failed to create pricing engine: %v", err))
	}
	engine.SetLogger(logger.With("module", "pricing"))
	engine.SetRecorder(metrics.New(prometheus.DefaultRegisterer))

	config.Watch(logger.With("module", "config"), func(c *config.AppConfig) {
		engine.UpdateSettings(setup.Settings(c))
	})

	var pub publisher.Publisher = publisher.Nop{}
	if cnfg.Mqtt.Enabled && !isDevMode() {
		mqttPub := publisher.NewMqtt(
			cnfg.Mqtt.Host,
			cnfg.Mqtt.Port,
			cnfg.Mqtt.Username,
			cnfg.Mqtt.Password,
			cnfg.Mqtt.GetTopic())
		if err := mqttPub.Connect(); err != nil {
			panic(fmt.Sprintf("mqtt connection error: %v", err))
		}
		pub = mqttPub
	} else {
		logger.Info("mqtt publishing disabled")
	}
	defer pub.Close()

	tasks := task.NewTasks(engine, pub, db, cnfg, loc)
	if isDevMode() {
		logger.Info("dev mode, skipping task scheduling")
	} else {
		tasks.Run()
		defer tasks.Stop()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-ctx.Done():
			logger.Info("main context done")
		case sig := <-sigCh:
			logger.Info("received signal", slog.Any("signal", sig))
			cancel()
		}
	}()

	server := www.NewServer(engine, db, promhttp.Handler(), cnfg.Api)
	server.Run(ctx)
}

func isDevMode() bool {
	return strings.EqualFold(os.Getenv("APP_ENV"), "development")
}

func exitWithError(logger *slog.Logger, err error) {
	if err != nil {
		logger.Error("application shutting down with error", slog.Any("error", err))
	}
	time.Sleep(2 * time.Second)
	os.Exit(1)
}
