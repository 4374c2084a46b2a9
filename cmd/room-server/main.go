package main

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"card-duel/internal/config"
	"card-duel/internal/logging"
	"card-duel/internal/room"
	"card-duel/internal/ws"
)

func main() {
	logCfg, err := config.LoadLog()
	if err != nil {
		panic(err)
	}
	logging.Init(logCfg)

	cfg, err := config.LoadServer()
	if err != nil {
		log.Fatal().Err(err).Msg("load server config failed")
	}

	coord := room.NewCoordinator(room.Options{
		Stake:           cfg.StakeAmount,
		StartingBalance: cfg.StartingBalance,
	})
	wsServer := ws.NewServer(coord)
	r := newRouter(coord, wsServer)

	// no ReadTimeout here: it would cut long-lived websocket connections
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	log.Info().Str("addr", cfg.HTTPAddr).Str("room", cfg.RoomID).Int64("stake", cfg.StakeAmount).Msg("http listening")
	log.Fatal().Err(server.ListenAndServe()).Msg("server stopped")
}
