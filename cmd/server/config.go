package main

import "time"

type Config struct {
	Host                 string        `env:"HOST,default=localhost"`
	Port                 int           `env:"PORT,default=5555"`
	BadgerFilepath       string        `env:"BADGER_FILEPATH,required=true"`
	LogLevel             string        `env:"LOG_LEVEL,required=true"`
	BufferSize           int           `env:"BUFFER_SIZE,required=true"`
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,required=true"`
	ProfileCacheSize     int           `env:"PROFILE_CACHE_SIZE,default=256"`
	SinkTimeout          time.Duration `env:"SINK_TIMEOUT,required=true"`
	RestartInterval      time.Duration `env:"RESTART_INTERVAL,required=true"`
	HealthInterval       time.Duration `env:"HEALTH_INTERVAL,default=5s"`
	AuthTokenDuration    time.Duration `env:"AUTH_TOKEN_DURATION,default=24h"`
	JWTSecret            string        `env:"JWT_SECRET,required=true"`
	FrontendURLs         string        `env:"FRONTEND_URLS,default=http://localhost:5173"`
}
