// Command people-api serves the CNCF people document over HTTP, from an
// in-memory cache refreshed periodically from the upstream source.
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	logging "github.com/ipfs/go-log/v2"
	"github.com/nyan-lin-tun/CNCF-people-api/config"
	"github.com/nyan-lin-tun/CNCF-people-api/server"
	"github.com/nyan-lin-tun/CNCF-people-api/snapcache"
)

var log = logging.Logger("people-api")

const shutdownGrace = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	level, err := logging.LevelFromString(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("log level %q: %w", cfg.LogLevel, err)
	}
	logging.SetAllLoggers(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The local document is read once; its store is never updated again.
	localSnap, err := snapcache.LoadLocal(cfg.LocalPath)
	if err != nil {
		return err
	}
	localStore := snapcache.NewStore(localSnap)

	// Seed the remote store with the local snapshot so it is never empty.
	// Its empty upstream token makes the first fetch unconditional, and
	// /people serves local content until that fetch succeeds.
	remoteStore := snapcache.NewStore(localSnap)

	source, err := snapcache.NewHTTPSource(cfg.RemoteURL)
	if err != nil {
		return err
	}
	refresher, err := snapcache.NewRefresher(remoteStore, source,
		snapcache.WithRefreshInterval(cfg.RefreshInterval),
		snapcache.WithFetchTimeout(cfg.FetchTimeout),
	)
	if err != nil {
		return err
	}
	go refresher.Run(ctx)

	handler, err := server.New(localStore, remoteStore)
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		return err
	}
	log.Infow("Listening", "addr", ln.Addr(), "remote", cfg.RemoteURL, "refresh", cfg.RefreshInterval)
	if err = handler.Serve(ctx, ln, shutdownGrace); err != nil {
		return err
	}
	log.Infow("Stopped")
	return nil
}
