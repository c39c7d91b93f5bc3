package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mirrorlake/geobot/internal/config"
	"github.com/mirrorlake/geobot/internal/engine"
	"github.com/mirrorlake/geobot/internal/gateway"
	"github.com/mirrorlake/geobot/internal/geo"
	"github.com/mirrorlake/geobot/internal/irc"
	"github.com/mirrorlake/geobot/internal/shortlink"
	"github.com/mirrorlake/geobot/internal/store"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "geobot",
	Short: "IRC bot that answers who/where queries with geolocation data",
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Connect to the configured server and answer queries",
	RunE:  runBot,
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	RunE:  runInit,
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default "+config.ConfigPath()+")")
	rootCmd.AddCommand(runCmd, initCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func runBot(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	resolver, err := geo.Open(cfg.Geo.DBPath)
	if err != nil {
		return err
	}
	defer resolver.Close()

	st, err := store.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open sighting store: %w", err)
	}
	defer st.Close()

	eng := engine.New(cfg.Server, resolver, st, shortlink.New())
	connect := func() (gateway.Transport, error) {
		return irc.Dial(cfg.Server)
	}
	sup := gateway.New(connect, eng)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("[main] starting, server=%s nick=%s channels=%v",
		cfg.Server.Address, cfg.Server.Nick, cfg.Server.Channels)
	if err := sup.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	log.Printf("[main] shutting down")
	return nil
}

func runInit(cmd *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		path = config.ConfigPath()
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config already exists at %s", path)
	}
	cfg := config.DefaultConfig()
	cfg.Server.Channels = []string{}
	if err := config.Save(cfg, path); err != nil {
		return err
	}
	fmt.Printf("wrote %s — set server.address, server.nick and server.channels, then run 'geobot run'\n", path)
	return nil
}
