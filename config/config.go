// Package config loads the experiment configuration the advisor worker is
// embedded in: GP search parameters, data handling, LLM interaction
// settings, output paths, and the per-task threshold sweeps.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// GPConfig holds genetic programming parameters. The advisor only consumes
// them for reporting; the search itself runs in the driver.
type GPConfig struct {
	NumGenerations int     `yaml:"num_generations"`
	PopulationSize int     `yaml:"population_size"`
	MaxTreeHeight  int     `yaml:"max_tree_height"`
	SelectTourSize int     `yaml:"select_tour_size"`
	HofMaxSize     int     `yaml:"hof_max_size"`
	CrossoverProb  float64 `yaml:"crossover_prob"`
	MutationProb   float64 `yaml:"mutation_prob"`
	GenerationStep int     `yaml:"generation_step"`
}

// DataConfig holds data processing parameters.
type DataConfig struct {
	TTRatio     float64  `yaml:"tt_ratio"`
	SearchScale int      `yaml:"search_scale"`
	Labels      []string `yaml:"labels"`
}

// LLMConfig holds the advisory interaction settings.
type LLMConfig struct {
	EnableLLM           bool    `yaml:"enable_llm"`
	InteractionInterval int     `yaml:"interaction_interval"`
	MaxRetries          int     `yaml:"max_retries"`
	TopKIndividuals     int     `yaml:"top_k_individuals"`
	ResponseTimeout     float64 `yaml:"response_timeout"`
}

// PathConfig holds output locations, composed from the base directory.
type PathConfig struct {
	OutputBaseDir  string `yaml:"output_base_dir"`
	OutputSubdir   string `yaml:"output_dir"`
	MetricSubdir   string `yaml:"metric_save_path"`
	outputDir      string
	metricSavePath string
	tempDir        string
}

// TaskConfig configures one task scenario.
type TaskConfig struct {
	Path             string    `yaml:"path"`
	PriorExpressions []string  `yaml:"prior_expressions"`
	Thresholds       []float64 `yaml:"thresholds"`
}

// TaskSettings groups the scenario list with the shared threshold default.
type TaskSettings struct {
	DefaultThresholds []float64    `yaml:"default_thresholds"`
	TaskList          []TaskConfig `yaml:"task_list"`
}

// Config is the root experiment configuration.
type Config struct {
	GP                GPConfig     `yaml:"gp"`
	Data              DataConfig   `yaml:"data"`
	Paths             PathConfig   `yaml:"paths"`
	LLM               LLMConfig    `yaml:"llm"`
	Tasks             TaskSettings `yaml:"tasks"`
	IsRearrangeResult bool         `yaml:"is_rearrange_result"`
	Debug             bool         `yaml:"debug"`
}

// Default returns the configuration used when a field is omitted.
func Default() Config {
	thresholds := make([]float64, 10)
	for i := range thresholds {
		thresholds[i] = float64(i)*0.02 + 0.01
	}
	return Config{
		GP: GPConfig{
			NumGenerations: 500,
			PopulationSize: 50,
			MaxTreeHeight:  4,
			SelectTourSize: 4,
			HofMaxSize:     10,
			CrossoverProb:  0.5,
			MutationProb:   0.3,
			GenerationStep: 40,
		},
		Data: DataConfig{
			TTRatio:     0.1,
			SearchScale: 200,
		},
		Paths: PathConfig{
			OutputBaseDir: "output/",
			OutputSubdir:  "sr_generation_special/",
			MetricSubdir:  "a_4metric_result/",
		},
		LLM: LLMConfig{
			EnableLLM:           true,
			InteractionInterval: 20,
			MaxRetries:          3,
			TopKIndividuals:     5,
			ResponseTimeout:     60.0,
		},
		Tasks: TaskSettings{DefaultThresholds: thresholds},
	}
}

// Load reads and validates the YAML configuration at path.
func Load(path string) (Config, error) {
	if path == "" {
		return Config{}, errors.New("configuration path is empty")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates YAML configuration bytes, filling defaults
// for omitted fields.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse YAML config: %w", err)
	}

	// Tasks without their own thresholds inherit the defaults.
	for i, task := range cfg.Tasks.TaskList {
		if len(task.Thresholds) == 0 {
			cfg.Tasks.TaskList[i].Thresholds = cfg.Tasks.DefaultThresholds
		}
	}

	cfg.Paths.compose()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (p *PathConfig) compose() {
	p.outputDir = filepath.Join(p.OutputBaseDir, p.OutputSubdir)
	p.metricSavePath = filepath.Join(p.OutputBaseDir, p.MetricSubdir)
	p.tempDir = filepath.Join(p.OutputBaseDir, "temp")
}

// OutputDir returns the composed experiment output directory.
func (p *PathConfig) OutputDir() string { return p.outputDir }

// MetricSavePath returns the composed metric output directory.
func (p *PathConfig) MetricSavePath() string { return p.metricSavePath }

// TempDir returns the composed temporary directory.
func (p *PathConfig) TempDir() string { return p.tempDir }

// Validate checks configuration bounds.
func (c *Config) Validate() error {
	if c.GP.NumGenerations <= 0 {
		return errors.New("num_generations must be greater than 0")
	}
	if c.GP.PopulationSize <= 0 {
		return errors.New("population_size must be greater than 0")
	}
	if c.GP.MaxTreeHeight <= 0 {
		return errors.New("max_tree_height must be greater than 0")
	}
	if c.GP.CrossoverProb < 0 || c.GP.CrossoverProb > 1 {
		return errors.New("crossover_prob must be between 0 and 1")
	}
	if c.GP.MutationProb < 0 || c.GP.MutationProb > 1 {
		return errors.New("mutation_prob must be between 0 and 1")
	}
	if c.Data.SearchScale <= 0 {
		return errors.New("search_scale must be greater than 0")
	}
	if c.Paths.OutputBaseDir == "" {
		return errors.New("output_base_dir cannot be empty")
	}
	if c.LLM.MaxRetries <= 0 {
		return errors.New("llm max_retries must be greater than 0")
	}
	return nil
}

// EnsureDirectories creates the composed output directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.OutputDir(), c.Paths.MetricSavePath(), c.Paths.TempDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// ExperimentPath returns the output path for a named experiment.
func (c *Config) ExperimentPath(name string) string {
	return filepath.Join(c.Paths.OutputDir(), name)
}

// MetricPath returns the output path for a named metric.
func (c *Config) MetricPath(name string) string {
	return filepath.Join(c.Paths.MetricSavePath(), name)
}
