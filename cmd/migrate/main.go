package main

import (
	"os"
	"strconv"

	"hotel/config"
	"hotel/helper"
	"hotel/shared/logger"

	"github.com/rs/zerolog/log"
)

const (
	argLength      = 2
	forceArgLength = 3
)

func main() {
	logger.InitLogger()

	if len(os.Args) < argLength {
		log.Fatal().Msg("Migration action is required: up, down, step-up, drop, version or force <version>")
	}

	cfg := config.Get()

	logger.Configure(cfg)

	if os.Args[1] == "force" {
		if len(os.Args) < forceArgLength {
			log.Fatal().Msg("force requires a version")
		}

		version, err := strconv.Atoi(os.Args[2])
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid version")
		}

		if err := helper.Force(cfg, version); err != nil {
			log.Fatal().Err(err).Msg("Failed to force migration version")
		}

		return
	}

	action, err := helper.ParseAction(os.Args[1])
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid migration action")
	}

	if err := helper.Run(cfg, action); err != nil {
		log.Fatal().Err(err).Msg("Migration failed")
	}
}
