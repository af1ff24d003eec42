package config

import (
	"os"
	"runtime"
	"strconv"
)

// Config holds the tunables that govern decoding and search concurrency
// (§5 Concurrency Model). Every field has a usable default; environment
// variables only override it.
type Config struct {
	// Workers bounds the number of goroutines used by unordered treebank
	// iteration. Defaults to the logical CPU count.
	Workers int
	// QueueDepth bounds the channel used to hand decoded trees back to
	// the consumer in unordered mode, providing backpressure.
	QueueDepth int
	// MaxLineBytes bounds a single CoNLL-U line read by the decoder.
	MaxLineBytes int
}

// LoadConfig loads configuration from environment variables, falling
// back to defaults for anything unset or invalid.
func LoadConfig() *Config {
	cfg := &Config{
		Workers:      runtime.NumCPU(),
		QueueDepth:   64,
		MaxLineBytes: 1 << 20,
	}

	if workersStr := os.Getenv("CONLLU_WORKERS"); workersStr != "" {
		if workers, err := strconv.Atoi(workersStr); err == nil && workers > 0 {
			cfg.Workers = workers
		}
	}

	if queueDepthStr := os.Getenv("CONLLU_QUEUE_DEPTH"); queueDepthStr != "" {
		if queueDepth, err := strconv.Atoi(queueDepthStr); err == nil && queueDepth > 0 {
			cfg.QueueDepth = queueDepth
		}
	}

	if maxLineStr := os.Getenv("CONLLU_MAX_LINE_BYTES"); maxLineStr != "" {
		if maxLine, err := strconv.Atoi(maxLineStr); err == nil && maxLine > 0 {
			cfg.MaxLineBytes = maxLine
		}
	}

	return cfg
}
