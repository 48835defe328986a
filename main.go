package main

import (
	"flag"
	"fmt"
	"log"
	"path/filepath"

	"ffxiv_cadence/analysispool"
	"ffxiv_cadence/cache"
	"ffxiv_cadence/config"
	"ffxiv_cadence/ffxiv"
	"ffxiv_cadence/fflogs"
	"ffxiv_cadence/share"

	"github.com/dpapathanasiou/go-recaptcha"
	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "toml config file")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("%+v", err)
	}

	err = share.InitSentry(cfg.SentryDSN)
	if err != nil {
		fmt.Printf("%+v\n", err)
	}
	defer sentry.Flush(5e9)

	share.ConfigureHTTP(cfg.DebugProxy)

	if cfg.RecaptchaSecret != "" {
		recaptcha.Init(cfg.RecaptchaSecret)
	}

	client, err := fflogs.New(fflogs.Options{
		ClientID:     cfg.FFLogs.ClientID,
		ClientSecret: cfg.FFLogs.ClientSecret,
		APIURL:       cfg.FFLogs.APIURL,
		Pages:        cache.NewStorage(filepath.Join(cfg.CacheDir, "events"), 0),
	})
	if err != nil {
		log.Fatalf("%+v", err)
	}

	results := cache.NewStorage(filepath.Join(cfg.CacheDir, "results"), analysispool.ResultExpires)
	if cleared, err := results.InvalidateOn(ffxiv.Data()); err != nil {
		fmt.Printf("%+v\n", errors.WithStack(err))
	} else if cleared {
		log.Println("results cache cleared")
	}

	svc := analysispool.NewService(client, ffxiv.Default, analysispool.Options{
		Workers:       cfg.Analysis.Workers,
		DriftBuffer:   cfg.Analysis.DriftBuffer,
		HistogramStep: cfg.Analysis.HistogramStep,
		ModeDecimals:  cfg.Analysis.ModeDecimals,
		Results:       results,
	})

	srv := &server{
		svc:  svc,
		pool: analysispool.NewPool(svc),
	}
	if cfg.RecaptchaSecret != "" {
		srv.confirm = recaptcha.Confirm
	}

	g := gin.New()
	srv.Route(g)

	log.Printf("Listen: %s", cfg.ListenAddr)
	err = g.Run(cfg.ListenAddr)
	if err != nil {
		log.Fatalf("%+v", errors.WithStack(err))
	}
}
