package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/stridestats/stridestats/internal"
	"github.com/stridestats/stridestats/internal/config"
	"github.com/stridestats/stridestats/internal/logging"
	"github.com/stridestats/stridestats/pkg"
)

func main() {
	fmt.Println("starting ...")

	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path for the TOML config file")
	flag.Parse()

	log.Warnf("---->> running in [%s] environment", *env)

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		panic(err)
	}

	sentryDSN := os.Getenv("SENTRY_DSN")
	logging.Setup(logging.LoggerSetupParams{
		LogFileName:      cfg.LogsPath,
		LogToStdout:      cfg.LogToStdout,
		LogLevel:         cfg.LogLevel,
		LogFormatJSON:    false,
		Environment:      cfg.Environment,
		SentryEnabled:    cfg.SentryEnabled,
		SentryDSN:        sentryDSN,
		SentryServerName: "stridestats-service",
	})

	log.Debugf("using port: %d", cfg.Port)
	log.Debugf("using server logs path: [%s]", cfg.LogsPath)

	stravaClientID := os.Getenv("STRIDESTATS_STRAVA_CLIENT_ID")
	if stravaClientID == "" {
		log.Errorf("strava client id not set, use STRIDESTATS_STRAVA_CLIENT_ID env var to set it")
	}
	stravaClientSecret := os.Getenv("STRIDESTATS_STRAVA_CLIENT_SECRET")
	if stravaClientSecret == "" {
		log.Errorf("strava client secret not set, use STRIDESTATS_STRAVA_CLIENT_SECRET env var to set it")
	}
	stravaRefreshToken := os.Getenv("STRIDESTATS_STRAVA_REFRESH_TOKEN")
	if stravaRefreshToken == "" {
		log.Errorf("strava refresh token not set, use STRIDESTATS_STRAVA_REFRESH_TOKEN env var to set it")
	}

	redisPassword := os.Getenv("STRIDESTATS_REDIS_PASS")
	if redisPassword == "" {
		log.Warnf("redis password not set, use STRIDESTATS_REDIS_PASS env var to set it")
	}

	versionInfo, err := tryGetLastCommitHash()
	if err != nil {
		log.Tracef("failed to get last commit hash / version info: %s", err)
	} else {
		log.Tracef("running version: %s", versionInfo)
	}

	chOsInterrupt := make(chan os.Signal, 1)
	signal.Notify(chOsInterrupt, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())

	server, err := internal.NewServer(
		ctx,
		internal.NewServerParams{
			Config:             cfg,
			StravaClientID:     stravaClientID,
			StravaClientSecret: stravaClientSecret,
			StravaRefreshToken: stravaRefreshToken,
			RedisPassword:      redisPassword,
			VersionInfo:        versionInfo,
		},
	)
	if err != nil {
		log.Fatalf("new server: %s", err)
	}

	server.Serve(cfg.Host, cfg.Port)

	receivedSig := <-chOsInterrupt
	log.Warnf("signal [%s] received, killing everything ...", receivedSig)
	cancel()

	server.GracefulShutdown()
}

// tryGetLastCommitHash will try to get the last commit hash
// assumes that the built main executable is in project root
func tryGetLastCommitHash() (string, error) {
	cmd := exec.Command("/usr/bin/git", "rev-parse", "HEAD")
	stdout, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return pkg.BytesToString(stdout), nil
}
