package config

import "github.com/caarlos0/env/v11"

type ServerConfig struct {
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`
	RoomID   string `env:"ROOM_ID" envDefault:"lobby"`

	StakeAmount     int64 `env:"STAKE_AMOUNT" envDefault:"25"`
	StartingBalance int64 `env:"STARTING_BALANCE" envDefault:"1000"`
}

func LoadServer() (ServerConfig, error) {
	var cfg ServerConfig
	err := env.Parse(&cfg)
	return cfg, err
}
