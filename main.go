package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/opsnotebook/es-driver/internal/config"
	"github.com/opsnotebook/es-driver/internal/controlserver"
	"github.com/opsnotebook/es-driver/internal/driver"
	"github.com/opsnotebook/es-driver/internal/watcher"
)

// ControlPortEnv names the required environment variable carrying the TCP
// port the control service binds on loopback.
const ControlPortEnv = "OPSNOTEBOOK_CONTROL_PORT"

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime)
	log.SetPrefix("[es-driver] ")

	var configPath string
	var verbose bool
	var showVersion bool

	// The host process appends its own flags to the driver invocation;
	// unknown flags must be tolerated, not rejected.
	fs := pflag.NewFlagSet("es-driver", pflag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.StringVar(&configPath, "config", config.DefaultPath(), "Path to configuration file")
	fs.BoolVar(&verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&showVersion, "version", false, "Show version information")
	_ = fs.Parse(os.Args[1:])

	if showVersion {
		log.Printf("es-driver version %s (commit: %s, built: %s)", version, commit, date)
		return
	}

	port, err := strconv.Atoi(os.Getenv(ControlPortEnv))
	if err != nil || port == 0 {
		log.Printf("Error: %s not set", ControlPortEnv)
		os.Exit(1)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config from %s: %v", configPath, err)
		os.Exit(1)
	}
	if verbose {
		cfg.Verbose = true
	}

	// Target flags are consumed at connect time; no validation here.
	args := driver.ParseArgs(os.Args[1:])

	d := driver.New(cfg, args)
	server := controlserver.New(port, d)

	credsWatcher, err := watcher.New(cfg.CredentialsFile)
	if err != nil {
		log.Printf("Warning: failed to watch credentials store: %v", err)
	} else {
		credsWatcher.Start()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	if err := server.Start(); err != nil {
		log.Printf("Failed to start control server: %v", err)
		os.Exit(1)
	}

	sig := <-sigChan
	log.Printf("Received signal %v, shutting down...", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if credsWatcher != nil {
		credsWatcher.Stop()
	}

	// Stop accepting control requests first, then release the tunnel.
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Error during server shutdown: %v", err)
	}
	d.Close()

	log.Println("Shutdown complete")
}
