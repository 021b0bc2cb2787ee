package world

import "strings"

// DefaultSeed is the root seed used when none is configured.
const DefaultSeed = "arena"

// Config captures the world construction parameters.
type Config struct {
	Seed        string `json:"seed"`
	WidthTiles  int    `json:"widthTiles"`
	HeightTiles int    `json:"heightTiles"`
	Containers  int    `json:"containers"`
	Scatter     bool   `json:"scatter"`
	RockCount   int    `json:"rockCount"`
}

func (cfg Config) normalized() Config {
	normalized := cfg
	normalized.Seed = strings.TrimSpace(normalized.Seed)
	if normalized.Seed == "" {
		normalized.Seed = DefaultSeed
	}
	if normalized.WidthTiles <= 0 {
		normalized.WidthTiles = DefaultWidthTiles
	}
	if normalized.HeightTiles <= 0 {
		normalized.HeightTiles = DefaultHeightTiles
	}
	if normalized.Containers < 0 {
		normalized.Containers = 0
	}
	if normalized.RockCount < 0 {
		normalized.RockCount = 0
	}
	return normalized
}

// Normalized returns the configuration with defaults applied.
func (cfg Config) Normalized() Config {
	return cfg.normalized()
}

// DefaultConfig is the configuration used by the standalone server.
func DefaultConfig() Config {
	return Config{
		Seed:        DefaultSeed,
		WidthTiles:  DefaultWidthTiles,
		HeightTiles: DefaultHeightTiles,
		Containers:  2,
		Scatter:     true,
		RockCount:   24,
	}
}
