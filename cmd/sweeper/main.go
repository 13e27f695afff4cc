package main

import (
	"hotel/config"
	"hotel/di"
	"hotel/shared/logger"
)

func main() {
	cfg := config.Get()

	logger.InitLogger()

	logger.Configure(cfg)

	sweeper := di.InitializeSweeper()
	sweeper.Serve()
}
