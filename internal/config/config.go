package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds server configuration loaded from environment variables.
type Config struct {
	Addr           string
	WorldSeed      string
	WorldWidth     int
	WorldHeight    int
	Containers     int
	RockCount      int
	TickRate       int
	SendBuffer     int
	HeartbeatEvery time.Duration
	DisconnectIn   time.Duration
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	AllowedOrigins []string
	LogJSONPath    string
	LogColor       bool
	LogSeverity    string
}

// Load reads .env when present, then the process environment. Environment
// variables win over .env entries.
func Load() Config {
	godotenv.Load()

	return Config{
		Addr:           getEnv("ARENA_ADDR", ":8080"),
		WorldSeed:      getEnv("ARENA_SEED", ""),
		WorldWidth:     getInt("ARENA_WIDTH_TILES", 0),
		WorldHeight:    getInt("ARENA_HEIGHT_TILES", 0),
		Containers:     getInt("ARENA_CONTAINERS", 2),
		RockCount:      getInt("ARENA_ROCKS", 24),
		TickRate:       getInt("ARENA_TICK_RATE", 15),
		SendBuffer:     getInt("ARENA_SEND_BUFFER", 16),
		HeartbeatEvery: getDuration("ARENA_HEARTBEAT", 2*time.Second),
		DisconnectIn:   getDuration("ARENA_DISCONNECT_AFTER", 15*time.Second),
		ReadTimeout:    getDuration("ARENA_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:   getDuration("ARENA_WRITE_TIMEOUT", 15*time.Second),
		AllowedOrigins: []string{getEnv("ARENA_ALLOWED_ORIGIN", "*")},
		LogJSONPath:    getEnv("ARENA_LOG_JSON", ""),
		LogColor:       getBool("ARENA_LOG_COLOR", true),
		LogSeverity:    getEnv("ARENA_LOG_SEVERITY", "info"),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
