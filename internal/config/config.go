package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Load reads the .env file specified by RWSE_ENV (or .env by default),
// then loads the corresponding .secret file if it exists.
// All config is flat env vars read via os.Getenv after loading.
func Load() error {
	envFile := os.Getenv("RWSE_ENV")
	if envFile == "" {
		envFile = ".env"
	}

	// Load main env file (ignore error if file doesn't exist)
	_ = godotenv.Load(envFile)

	// Load secret sidecar if it exists
	_ = godotenv.Load(envFile + ".secret")

	return nil
}

func ServerPort() int {
	port, err := strconv.Atoi(os.Getenv("SERVER_PORT"))
	if err != nil {
		return 8080
	}
	return port
}

func ServerAddr() string {
	return fmt.Sprintf(":%d", ServerPort())
}

// LogLevel returns the log level (debug, info, warn, error).
// Defaults to "info" if not set.
func LogLevel() string {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		return "info"
	}
	return level
}

// MLMProvider returns the configured masked-language-model provider.
// Valid values: hf, onnx, mock. Defaults to "hf".
func MLMProvider() string {
	p := os.Getenv("MLM_PROVIDER")
	if p == "" {
		return "hf"
	}
	return p
}

func HFAPIKey() string {
	return os.Getenv("HF_API_KEY")
}

// HFModel returns the Hugging Face model id to score with.
// Defaults to "bert-base-uncased".
func HFModel() string {
	m := os.Getenv("HF_MODEL")
	if m == "" {
		return "bert-base-uncased"
	}
	return m
}

// MaskToken returns the model's native mask token.
// Defaults to the BERT-style "[MASK]".
func MaskToken() string {
	t := os.Getenv("MASK_TOKEN")
	if t == "" {
		return "[MASK]"
	}
	return t
}

func ONNXLibraryPath() string {
	return os.Getenv("ONNX_LIBRARY_PATH")
}

func ONNXModelPath() string {
	return os.Getenv("ONNX_MODEL_PATH")
}

func ONNXTokenizerPath() string {
	return os.Getenv("ONNX_TOKENIZER_PATH")
}

// ConfusionSetsSource returns where confusion sets are loaded from at
// startup. Valid values: file, postgres. Defaults to "file".
func ConfusionSetsSource() string {
	s := os.Getenv("CONFUSION_SETS_SOURCE")
	if s == "" {
		return "file"
	}
	return s
}

// ConfusionSetsPath returns the comma-separated confusion sets file used
// by the file source. Defaults to "confusion_sets.csv".
func ConfusionSetsPath() string {
	p := os.Getenv("CONFUSION_SETS_PATH")
	if p == "" {
		return "confusion_sets.csv"
	}
	return p
}

func DatabaseURL() string {
	return os.Getenv("DATABASE_URL")
}

// RedisAddr returns the Redis address for the score cache.
// Empty disables caching.
func RedisAddr() string {
	return os.Getenv("REDIS_ADDR")
}

// ScoreCacheTTL returns how long cached provider scores stay valid.
// Defaults to 1 hour.
func ScoreCacheTTL() time.Duration {
	ttl, err := time.ParseDuration(os.Getenv("SCORE_CACHE_TTL"))
	if err != nil || ttl <= 0 {
		return time.Hour
	}
	return ttl
}

// RateLimitRPS returns requests per second limit.
// Defaults to 100 if not set.
func RateLimitRPS() float64 {
	rps, err := strconv.ParseFloat(os.Getenv("RATE_LIMIT_RPS"), 64)
	if err != nil || rps <= 0 {
		return 100
	}
	return rps
}

// RateLimitBurst returns the burst size for rate limiting.
// Defaults to 20 if not set.
func RateLimitBurst() int {
	burst, err := strconv.Atoi(os.Getenv("RATE_LIMIT_BURST"))
	if err != nil || burst <= 0 {
		return 20
	}
	return burst
}
