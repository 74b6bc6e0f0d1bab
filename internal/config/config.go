package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"disinfowatch/internal/common"
)

// EnvConfigPath names the environment variable that overrides the config
// file location when no explicit path is given.
const EnvConfigPath = "DISINFOWATCH_CONFIG"

// Config is the root configuration loaded from YAML. Every binary shares one
// file so that file paths stay consistent between the dashboard, the
// scheduler, and the spawned jobs.
type Config struct {
	Server         ServerConfig         `yaml:"server"`
	Logging        LoggingConfig        `yaml:"logging"`
	Paths          PathsConfig          `yaml:"paths"`
	Scheduler      SchedulerConfig      `yaml:"scheduler"`
	ActiveLearning ActiveLearningConfig `yaml:"activeLearning"`
	Classifier     ClassifierConfig     `yaml:"classifier"`
}

// ServerConfig holds HTTP server settings for the dashboard API.
type ServerConfig struct {
	Addr          string        `yaml:"address"`
	ReadTimeout   time.Duration `yaml:"readTimeout"`
	WriteTimeout  time.Duration `yaml:"writeTimeout"`
	IdleTimeout   time.Duration `yaml:"idleTimeout"`
	ShutdownGrace time.Duration `yaml:"shutdownGrace"`
	APIKey        string        `yaml:"apiKey"` // optional static API key header (X-API-Key)
}

// LoggingConfig controls the shared slog setup.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug|info|warn|error
	File  string `yaml:"file"`  // optional JSON log sink; empty disables the file sink
}

// PathsConfig anchors the on-disk state tree. All persisted stores derive
// their locations from these three directories.
type PathsConfig struct {
	DataDir   string `yaml:"dataDir"`
	LogsDir   string `yaml:"logsDir"`
	LabelsDir string `yaml:"labelsDir"`
}

// ProcessedDir is where the extraction stage deposits metadata records.
func (p PathsConfig) ProcessedDir() string { return filepath.Join(p.DataDir, "processed") }

// JobStatusFile backs the job registry.
func (p PathsConfig) JobStatusFile() string { return filepath.Join(p.LogsDir, "job_status.json") }

// ScheduleFile backs the schedule store.
func (p PathsConfig) ScheduleFile() string { return filepath.Join(p.LogsDir, "scheduler_config.json") }

// InferenceLogFile is the append-only classifier result log.
func (p PathsConfig) InferenceLogFile() string { return filepath.Join(p.LogsDir, "inference_log.jsonl") }

// LabelLogFile is the append-only manual label log.
func (p PathsConfig) LabelLogFile() string { return filepath.Join(p.LabelsDir, "manual_labels.jsonl") }

// ReviewQueueFile holds the most recent review queue snapshot.
func (p PathsConfig) ReviewQueueFile() string { return filepath.Join(p.LabelsDir, "review_queue.jsonl") }

// SchedulerConfig drives the polling loop and the commands it launches.
type SchedulerConfig struct {
	Tick time.Duration `yaml:"tick"`
	// Commands maps a task name to the shell command the job controller
	// launches for it. Tasks absent from the map fall back to
	// CommandTemplate with the task name substituted in.
	Commands        map[string]string `yaml:"commands"`
	CommandTemplate string            `yaml:"commandTemplate"`
}

// Command derives the launch command for a task.
func (s SchedulerConfig) Command(task string) string {
	if cmd, ok := s.Commands[task]; ok && strings.TrimSpace(cmd) != "" {
		return cmd
	}
	return fmt.Sprintf(s.CommandTemplate, task)
}

// ActiveLearningConfig parameterizes the uncertainty queue builder.
type ActiveLearningConfig struct {
	UncertaintyThreshold float64 `yaml:"uncertaintyThreshold"`
	SampleLimit          int     `yaml:"sampleLimit"`
	TextPreviewLen       int     `yaml:"textPreviewLen"`
}

// ClassifierConfig selects the classifier backend for the inference job.
type ClassifierConfig struct {
	Provider  string            `yaml:"provider"` // "heuristic" or "http"
	Heuristic HeuristicSettings `yaml:"heuristic"`
	HTTP      HTTPSettings      `yaml:"http"`
}

// HeuristicSettings tunes the built-in rule-based classifier.
type HeuristicSettings struct {
	EntityFlagThreshold int `yaml:"entityFlagThreshold"`
}

// HTTPSettings configures the remote inference service client.
type HTTPSettings struct {
	Endpoint string        `yaml:"endpoint"`
	APIKey   string        `yaml:"apiKey"`
	Timeout  time.Duration `yaml:"timeout"`
}

// Load reads YAML config from path, expands environment variables in the raw
// file, applies defaults, and validates. An empty path falls back to
// DISINFOWATCH_CONFIG and then "config.yaml"; only an explicitly given path
// is required to exist, otherwise defaults are used.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if path == "" {
		if env := os.Getenv(EnvConfigPath); env != "" {
			path = env
			explicit = true
		} else {
			path = "config.yaml"
		}
	}

	var cfg Config
	data, err := os.ReadFile(filepath.Clean(path)) // #nosec G304 - reading the operator-chosen config file is expected
	switch {
	case err == nil:
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	case os.IsNotExist(err) && !explicit:
		// No config file is fine; everything has a default.
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30 * time.Second
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = 60 * time.Second
	}
	if cfg.Server.ShutdownGrace == 0 {
		cfg.Server.ShutdownGrace = 15 * time.Second
	}

	if strings.TrimSpace(cfg.Logging.Level) == "" {
		cfg.Logging.Level = "info"
	}

	if cfg.Paths.DataDir == "" {
		cfg.Paths.DataDir = "data"
	}
	if cfg.Paths.LogsDir == "" {
		cfg.Paths.LogsDir = "logs"
	}
	if cfg.Paths.LabelsDir == "" {
		cfg.Paths.LabelsDir = "labels"
	}
	if cfg.Logging.File == "" {
		cfg.Logging.File = filepath.Join(cfg.Paths.LogsDir, "disinfowatch.log")
	}

	if cfg.Scheduler.Tick == 0 {
		cfg.Scheduler.Tick = time.Minute
	}
	if cfg.Scheduler.CommandTemplate == "" {
		cfg.Scheduler.CommandTemplate = "bin/%s"
	}
	if cfg.Scheduler.Commands == nil {
		cfg.Scheduler.Commands = map[string]string{
			common.TaskActiveLearning: "bin/activelearning",
			common.TaskInference:      "bin/infer",
		}
	}

	if cfg.ActiveLearning.UncertaintyThreshold == 0 {
		cfg.ActiveLearning.UncertaintyThreshold = common.DefaultUncertaintyThreshold
	}
	if cfg.ActiveLearning.SampleLimit == 0 {
		cfg.ActiveLearning.SampleLimit = common.DefaultSampleLimit
	}
	if cfg.ActiveLearning.TextPreviewLen == 0 {
		cfg.ActiveLearning.TextPreviewLen = common.DefaultTextPreviewLen
	}

	if cfg.Classifier.Provider == "" {
		cfg.Classifier.Provider = "heuristic"
	}
	if cfg.Classifier.Heuristic.EntityFlagThreshold == 0 {
		cfg.Classifier.Heuristic.EntityFlagThreshold = 5
	}
	if cfg.Classifier.HTTP.Timeout == 0 {
		cfg.Classifier.HTTP.Timeout = 15 * time.Second
	}
}

func validate(cfg *Config) error {
	if cfg.Scheduler.Tick < time.Second {
		return fmt.Errorf("scheduler.tick must be at least 1s, got %s", cfg.Scheduler.Tick)
	}
	if cfg.ActiveLearning.UncertaintyThreshold < 0 || cfg.ActiveLearning.UncertaintyThreshold > 1 {
		return fmt.Errorf("activeLearning.uncertaintyThreshold must be in [0,1], got %g",
			cfg.ActiveLearning.UncertaintyThreshold)
	}
	if cfg.ActiveLearning.SampleLimit < 1 {
		return fmt.Errorf("activeLearning.sampleLimit must be positive, got %d", cfg.ActiveLearning.SampleLimit)
	}
	if cfg.ActiveLearning.TextPreviewLen < 0 {
		return fmt.Errorf("activeLearning.textPreviewLen must not be negative")
	}
	switch cfg.Classifier.Provider {
	case "heuristic":
	case "http":
		if strings.TrimSpace(cfg.Classifier.HTTP.Endpoint) == "" {
			return fmt.Errorf("classifier.http.endpoint is required for the http provider")
		}
	default:
		return fmt.Errorf("unsupported classifier provider %q", cfg.Classifier.Provider)
	}
	if !strings.Contains(cfg.Scheduler.CommandTemplate, "%s") {
		return fmt.Errorf("scheduler.commandTemplate must contain %%s")
	}
	return nil
}
