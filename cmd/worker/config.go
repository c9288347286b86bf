package main

import (
	"log"
	"strconv"

	"medinfo-backend/internal/shared/utils"
)

// Config holds the worker-specific configuration.
type Config struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

func loadConfig() *Config {
	db, err := strconv.Atoi(utils.GetEnvVariable("REDIS_DB", "0"))
	if err != nil {
		db = 0
	}

	cfg := &Config{
		RedisAddr:     utils.GetEnvVariable("REDIS_HOST", "localhost:6379"),
		RedisPassword: utils.GetEnvVariable("REDIS_PASSWORD", ""),
		RedisDB:       db,
	}

	log.Printf("[Config] Redis: %s (db %d)", cfg.RedisAddr, cfg.RedisDB)

	return cfg
}
