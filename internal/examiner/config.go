// Package examiner drives the LLM examination of quiz sentences:
// batching, prompt assembly, verdict merging, checkpointing and
// reporting.
package examiner

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds examiner run settings. Values come from the environment
// (and may be overridden by CLI flags on top).
type Config struct {
	CSVPath  string `yaml:"csv_path"  env:"EXAMINE_CSV_PATH"`
	SpecPath string `yaml:"spec_path" env:"EXAMINE_SPEC_PATH"`

	Model   string `yaml:"model"    env:"EXAMINE_MODEL"   env-default:"gemma3"`
	BaseURL string `yaml:"base_url" env:"OLLAMA_BASE_URL" env-default:"http://localhost:11434"`

	TimeoutSec  int     `yaml:"timeout_sec" env:"EXAMINE_TIMEOUT_SEC" env-default:"300"`
	Temperature float64 `yaml:"temperature" env:"EXAMINE_TEMPERATURE" env-default:"0"`
	BatchSize   int     `yaml:"batch_size"  env:"EXAMINE_BATCH_SIZE"  env-default:"5"`
	MaxWords    int     `yaml:"max_words"   env:"EXAMINE_MAX_WORDS"   env-default:"0"`
	Retries     int     `yaml:"retries"     env:"EXAMINE_RETRIES"     env-default:"2"`
	SleepMS     int     `yaml:"sleep_ms"    env:"EXAMINE_SLEEP_MS"    env-default:"0"`

	CheckpointPath string `yaml:"checkpoint_path" env:"EXAMINE_CHECKPOINT" env-default:"examine_checkpoint.jsonl"`
	Resume         bool   `yaml:"resume"          env:"EXAMINE_RESUME"     env-default:"false"`
	Debug          bool   `yaml:"debug"           env:"EXAMINE_DEBUG"      env-default:"false"`

	OutputJSON string `yaml:"output_json" env:"EXAMINE_OUTPUT_JSON" env-default:"examine_report.json"`
	OutputMD   string `yaml:"output_md"   env:"EXAMINE_OUTPUT_MD"   env-default:"examine_report.md"`

	// ScoreFloor is the lowest rubric score that still passes. Any score
	// below it fails the sentence.
	ScoreFloor int `yaml:"score_floor" env:"EXAMINE_SCORE_FLOOR" env-default:"4"`

	// ExpectedRows is the number of quiz sentences every word must have.
	ExpectedRows int `yaml:"expected_rows" env:"EXAMINE_EXPECTED_ROWS" env-default:"10"`
}

// LoadConfig reads examiner settings from the environment.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("examine config: read env: %w", err)
	}
	return &cfg, nil
}

// Validate checks the settings that would make the run impossible.
// Failures here are configuration errors: the caller exits non-zero
// before any network call.
func (c *Config) Validate() error {
	if c.CSVPath == "" {
		return fmt.Errorf("examine config: csv path is required")
	}
	if c.SpecPath == "" {
		return fmt.Errorf("examine config: spec path is required")
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("examine config: batch size must be >= 1, got %d", c.BatchSize)
	}
	if c.Retries < 0 {
		return fmt.Errorf("examine config: retries must be >= 0, got %d", c.Retries)
	}
	if c.TimeoutSec < 1 {
		return fmt.Errorf("examine config: timeout must be >= 1s, got %d", c.TimeoutSec)
	}
	if c.ScoreFloor < 1 || c.ScoreFloor > 5 {
		return fmt.Errorf("examine config: score floor must be in 1..5, got %d", c.ScoreFloor)
	}
	if c.ExpectedRows < 1 {
		return fmt.Errorf("examine config: expected rows must be >= 1, got %d", c.ExpectedRows)
	}
	if c.CheckpointPath == "" {
		return fmt.Errorf("examine config: checkpoint path is required")
	}
	return nil
}
