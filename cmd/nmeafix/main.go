package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"nmeafix/internal/config"
	"nmeafix/internal/web"
)

func main() {
	var (
		configPath  string
		summaryPath string
		checkPath   string
		sentences   string
	)
	flag.StringVar(&configPath, "config", "./nmeafix.yaml", "Path to YAML config")
	flag.StringVar(&summaryPath, "summary", "", "Print a summary of a capture log and exit")
	flag.StringVar(&checkPath, "check", "", "Parse every sentence of a capture or raw NMEA file, print the resulting fix and exit")
	flag.StringVar(&sentences, "sentences", "", "Comma separated sentence types or bundles for -check (default all)")
	flag.Parse()

	if summaryPath != "" {
		if err := printLogSummary(os.Stdout, summaryPath); err != nil {
			log.Fatalf("summary failed: %v", err)
		}
		return
	}
	if checkPath != "" {
		ok, err := runCheck(os.Stdout, checkPath, sentences)
		if err != nil {
			log.Fatalf("check failed: %v", err)
		}
		if !ok {
			os.Exit(1)
		}
		return
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf(".env load failed: %v", err)
	}

	logs := web.NewLogBuffer(2000)
	log.SetOutput(io.MultiWriter(os.Stderr, logs))

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	rt, err := newRuntime(cfg, logs)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}

	log.Printf("nmeafix starting sentences=%s", cfg.NMEA.Capabilities)
	if err := rt.Run(ctx); err != nil {
		log.Fatalf("nmeafix stopped: %v", err)
	}
	log.Printf("nmeafix stopped")
}
