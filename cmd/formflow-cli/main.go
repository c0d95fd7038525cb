package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"golang.org/x/term"

	"github.com/goliatone/go-formflow"
	"github.com/goliatone/go-formflow/pkg/config"
	"github.com/goliatone/go-formflow/pkg/eventloop"
	"github.com/goliatone/go-formflow/pkg/logging"
	"github.com/goliatone/go-formflow/pkg/preview"
	"github.com/goliatone/go-formflow/pkg/prompt"
	"github.com/goliatone/go-formflow/pkg/renderers/text"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (defaults if empty)")
	output := flag.String("output", "", "results renderer: text, json, msgpack or html (config value if empty)")
	outPath := flag.String("out", "", "write results to this file instead of stdout")
	logLevel := flag.String("log-level", "", "debug, info, warn or error (config value if empty)")
	serve := flag.String("serve", "", "also serve a read-only HTTP preview on this address, e.g. 127.0.0.1:8080")
	flag.Parse()

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		log.Fatalf("formflow-cli needs an interactive terminal on stdin")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *output != "" {
		cfg.Output = *output
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}

	logger, err := logging.New(cfg.Log.Level, os.Stderr)
	if err != nil {
		log.Fatalf("Invalid log level: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	loop := eventloop.New(eventloop.WithLogger(logger))
	go func() {
		if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("event loop stopped", "error", err)
		}
	}()

	driver := prompt.NewSurveyDriver()
	app, err := formflow.New(loop,
		formflow.WithConfig(cfg),
		formflow.WithLogger(logger),
		formflow.WithConfirmer(prompt.AsConfirmer(driver)),
		formflow.WithTextOptions(text.WithMaxCellWidth(cellWidth())),
	)
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}

	if *serve != "" {
		srv := preview.New(app, preview.WithLogger(logger))
		go func() {
			if err := srv.Start(ctx, *serve); err != nil {
				logger.Error("preview stopped", "error", err)
			}
		}()
	}

	s := &session{
		app:     app,
		driver:  driver,
		output:  cfg.Output,
		outPath: *outPath,
		stdout:  os.Stdout,
	}
	if err := s.run(ctx); err != nil {
		log.Fatalf("Session failed: %v", err)
	}
	if err := app.Close(ctx); err != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "close: %v\n", err)
	}
}

// cellWidth sizes table cells so a three-column CSV fits the terminal.
func cellWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 32
	}
	return min(max(width/4, 8), 64)
}
