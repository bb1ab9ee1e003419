package main

import (
	"context"
	"flag"

	log "github.com/sirupsen/logrus"

	dashboard "github.com/rushtonmd/waveshare-128-lcd-dashboard-espnow"
	"github.com/rushtonmd/waveshare-128-lcd-dashboard-espnow/display"
	"github.com/rushtonmd/waveshare-128-lcd-dashboard-espnow/espnow"
)

var (
	linkConfig = flag.String("link", "link.toml", "link configuration file")
	oled       = flag.Bool("oled", false, "drive an SSD1306 OLED instead of the in-memory canvas")
	verbose    = flag.Bool("v", false, "debug logging")
)

func main() {
	flag.Parse()
	log.SetLevel(log.InfoLevel)
	if *verbose {
		log.SetLevel(log.DebugLevel)
	}

	ctx := context.Background()

	slot := dashboard.NewSlot()
	receiver := dashboard.NewReceiver(slot, dashboard.DefaultPublishWait)

	// A dead link leaves the slot untouched and the panel renders
	// DISCONNECTED; the retry loop keeps trying in the background.
	link, err := espnow.NewLink(*linkConfig)
	if err != nil {
		log.Error("unable to load link configuration, running disconnected: ", err)
	} else {
		link.OnReceive(receiver.Handle)
		go func() {
			if err := dashboard.Retry(ctx, link); err != nil {
				log.Errorf("link done: %v", err)
			}
		}()
	}

	var surf display.Surface
	if *oled {
		dev, err := display.NewOLED()
		if err != nil {
			log.Fatal("unable to initialize OLED: ", err)
		}
		defer dev.Close()
		surf = dev
	} else {
		surf = display.NewCanvas(128, 128)
	}

	panel := display.NewPanel(slot, surf, receiver.Received, display.DefaultConfig())
	if err := panel.Run(ctx); err != nil {
		log.Errorf("panel done: %v", err)
	}
}
