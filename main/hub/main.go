package main

import (
	"context"
	"flag"

	log "github.com/sirupsen/logrus"

	dashboard "github.com/rushtonmd/waveshare-128-lcd-dashboard-espnow"
	"github.com/rushtonmd/waveshare-128-lcd-dashboard-espnow/diag"
	"github.com/rushtonmd/waveshare-128-lcd-dashboard-espnow/espnow"
)

var (
	linkConfig = flag.String("link", "link.toml", "link configuration file")
	diagConfig = flag.String("diag", "", "diagnostics configuration file (optional)")
	interval   = flag.Duration("interval", dashboard.DefaultBroadcasterConfig().Interval, "broadcast interval")
	statsEvery = flag.Duration("stats", dashboard.DefaultBroadcasterConfig().StatsWindow, "stats reporting window")
	verbose    = flag.Bool("v", false, "debug logging")
)

func main() {
	flag.Parse()
	log.SetLevel(log.InfoLevel)
	if *verbose {
		log.SetLevel(log.DebugLevel)
	}

	ctx := context.Background()

	link, err := espnow.NewLink(*linkConfig)
	if err != nil {
		log.Fatal("unable to load link configuration: ", err)
	}
	go func() {
		if err := dashboard.Retry(ctx, link); err != nil {
			log.Errorf("link done: %v", err)
		}
	}()

	broadcaster := dashboard.NewBroadcaster(
		dashboard.NewSimSource(),
		link,
		link.Peers(),
		dashboard.BroadcasterConfig{
			Interval:    *interval,
			StatsWindow: *statsEvery,
		})

	if *diagConfig != "" {
		publisher, err := diag.NewPublisher(*diagConfig)
		if err != nil {
			log.Fatal("unable to load diagnostics configuration: ", err)
		}
		broadcaster.SetReporter(publisher.Report)
		go func() {
			if err := dashboard.Retry(ctx, publisher); err != nil {
				log.Errorf("diagnostics done: %v", err)
			}
		}()
	}

	if err := broadcaster.Start(ctx); err != nil {
		log.Errorf("broadcaster done: %v", err)
	}
}
