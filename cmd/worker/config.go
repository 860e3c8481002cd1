package main

import (
	"img2pdf-backend/internal/config"
	"img2pdf-backend/pkg/container"
)

// Config cho worker process
type Config struct {
	RedisAddr string
	Jobs      config.JobConfig
}

func loadConfig(c *container.Container) *Config {
	return &Config{
		RedisAddr: c.Config.Redis.Host,
		Jobs:      c.Config.Jobs,
	}
}
