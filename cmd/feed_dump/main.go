// feed_dump downloads the scraped market feed once and writes the raw
// records to a JSON file, pretty-printed. Handy for inspecting what keys
// the feed actually carries.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"borsa/internal/config"
	"borsa/internal/httpx"
	"borsa/internal/source/feed"
)

func main() {
	var (
		outPath    string
		cfgPath    string
		timeoutSec int
	)
	flag.StringVar(&outPath, "out", "borsa_feed.json", "output JSON file path")
	flag.StringVar(&cfgPath, "config", "", "path to config.json (optional)")
	flag.IntVar(&timeoutSec, "timeout", 20, "HTTP timeout seconds")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	hc := httpx.New(time.Duration(timeoutSec) * time.Second)
	hc.UserAgent = "Mozilla/5.0"
	src := feed.New(feed.Config{BaseURL: cfg.Source.FeedBaseURL}, hc)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeoutSec)*time.Second)
	defer cancel()

	records, err := src.FetchAll(ctx)
	if err != nil {
		log.Fatalf("fetch feed: %v", err)
	}
	log.Printf("records: %d", len(records))

	b, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		log.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(outPath, b, 0o644); err != nil {
		log.Fatalf("write out: %v", err)
	}
	log.Printf("done: wrote %s", outPath)
}
