package main

import (
	"flag"

	"github.com/phuslu/log"

	"github.com/pevans/banknews/config"
	"github.com/pevans/banknews/history"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (APP_CONFIG_FILE)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	cfg.SetupLogging()

	runs, err := history.NewRunStore(cfg.History.DSN)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open run history")
	}
	defer runs.Close()

	server := history.NewAPIServer(runs)
	router := server.SetupRouter()

	log.Info().Str("addr", cfg.API.Addr).Msgf("starting run history API on http://%s/api/v1/runs", cfg.API.Addr)
	if err := router.Run(cfg.API.Addr); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}
