// Package config loads rfr.toml, the manifest describing a recording
// session: where it writes, how often it rotates chunks, what happens
// under backpressure, and how the engine traces its own behavior.
//
// The loading idiom is the teacher's: decode with BurntSushi/toml into
// a plain struct, then walk the decoded MetaData to tell "absent"
// apart from "present but zero", the way cmd/surge's project manifest
// distinguished a missing [run] table from an empty one.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"rfr/internal/trace"
)

// Backpressure selects whether `rfr record` waits for the final chunk
// write to be confirmed before exiting. It is not applied per Record
// call: the engine itself never drops or blocks a record because of it.
type Backpressure uint8

const (
	// BackpressureDrop makes `rfr record` return as soon as the final
	// chunk write has been requested, without waiting on
	// Writer.WaitFlush.
	BackpressureDrop Backpressure = iota
	// BackpressureBlock makes `rfr record` wait on Writer.WaitFlush
	// after the scenario finishes, until the final write is confirmed.
	BackpressureBlock
)

func (b Backpressure) String() string {
	switch b {
	case BackpressureBlock:
		return "block"
	default:
		return "drop"
	}
}

func parseBackpressure(s string) (Backpressure, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "drop":
		return BackpressureDrop, nil
	case "block":
		return BackpressureBlock, nil
	default:
		return BackpressureDrop, fmt.Errorf("invalid backpressure: %q (expected: drop|block)", s)
	}
}

// chunkPeriods enumerates the granularities spec.md allows; a
// recording session cannot pick an arbitrary duration, matching the
// discrete intervals demonstrated in the original's chunk-rotation
// tests.
var chunkPeriods = map[string]uint64{
	"250ms": 250_000,
	"500ms": 500_000,
	"1s":    1_000_000,
	"5s":    5_000_000,
}

// EngineConfig is the decoded [engine] table.
type EngineConfig struct {
	ChunkPeriod       string       `toml:"chunk_period"`
	ChunkPeriodMicros uint64       `toml:"-"`
	BackpressureRaw   string       `toml:"backpressure"`
	Backpressure      Backpressure `toml:"-"`
	RootDir           string       `toml:"root_dir"`
}

// TraceConfig is the decoded [trace] table. Field names mirror
// trace.Config so the values can be handed to trace.New directly.
type TraceConfig struct {
	Level       string `toml:"level"`
	Format      string `toml:"format"`
	Output      string `toml:"output"`
	Mode        string `toml:"mode"`
	RingSize    int    `toml:"ring_size"`
	HeartbeatMS int    `toml:"heartbeat_ms"`
}

// Config is the fully decoded and validated rfr.toml.
type Config struct {
	Engine EngineConfig `toml:"engine"`
	Trace  TraceConfig  `toml:"trace"`
}

// LoadFile reads and validates rfr.toml at path.
func LoadFile(path string) (Config, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("config: decode %s: %w", path, err)
	}

	if !meta.IsDefined("engine") {
		return Config{}, fmt.Errorf("config: %s: missing [engine] table", path)
	}
	if !meta.IsDefined("engine", "chunk_period") || strings.TrimSpace(cfg.Engine.ChunkPeriod) == "" {
		return Config{}, fmt.Errorf("config: %s: [engine].chunk_period is required", path)
	}
	micros, ok := chunkPeriods[cfg.Engine.ChunkPeriod]
	if !ok {
		return Config{}, fmt.Errorf("config: %s: invalid chunk_period %q (expected: 250ms|500ms|1s|5s)", path, cfg.Engine.ChunkPeriod)
	}
	cfg.Engine.ChunkPeriodMicros = micros

	if !meta.IsDefined("engine", "root_dir") || strings.TrimSpace(cfg.Engine.RootDir) == "" {
		return Config{}, fmt.Errorf("config: %s: [engine].root_dir is required", path)
	}

	bp, err := parseBackpressure(cfg.Engine.BackpressureRaw)
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: [engine].%w", path, err)
	}
	cfg.Engine.Backpressure = bp

	if meta.IsDefined("trace") && !meta.IsDefined("trace", "level") {
		cfg.Trace.Level = "off"
	}

	return cfg, nil
}

// TraceOptions converts the decoded [trace] table into a trace.Config
// ready for trace.New. A blank or absent [trace] table produces a
// disabled tracer (Level: trace.LevelOff).
func (c Config) TraceOptions() (trace.Config, error) {
	levelStr := c.Trace.Level
	if levelStr == "" {
		levelStr = "off"
	}
	level, err := trace.ParseLevel(levelStr)
	if err != nil {
		return trace.Config{}, fmt.Errorf("config: [trace].%w", err)
	}

	mode := trace.ModeStream
	if c.Trace.Mode != "" {
		mode, err = trace.ParseMode(c.Trace.Mode)
		if err != nil {
			return trace.Config{}, fmt.Errorf("config: [trace].%w", err)
		}
	}

	format := trace.FormatAuto
	switch strings.ToLower(strings.TrimSpace(c.Trace.Format)) {
	case "", "auto":
		format = trace.FormatAuto
	case "text":
		format = trace.FormatText
	case "ndjson":
		format = trace.FormatNDJSON
	case "chrome":
		format = trace.FormatChrome
	default:
		return trace.Config{}, fmt.Errorf("config: [trace].format: invalid value %q (expected: auto|text|ndjson|chrome)", c.Trace.Format)
	}

	var heartbeat time.Duration
	if c.Trace.HeartbeatMS > 0 {
		heartbeat = time.Duration(c.Trace.HeartbeatMS) * time.Millisecond
	}

	return trace.Config{
		Level:      level,
		Mode:       mode,
		Format:     format,
		OutputPath: c.Trace.Output,
		RingSize:   c.Trace.RingSize,
		Heartbeat:  heartbeat,
	}, nil
}
