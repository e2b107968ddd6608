package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	UserName   string  `yaml:"user_name"`
	MemoryFile string  `yaml:"memory_file"`
	Brain      Brain   `yaml:"brain"`
	STT        STT     `yaml:"stt"`
	TTS        TTS     `yaml:"tts"`
	Capture    Capture `yaml:"capture"`
	Apps       []App   `yaml:"apps"`
	API        API     `yaml:"api"`
	Cue        Cue     `yaml:"cue"`
}

type Brain struct {
	Kind    string   `yaml:"kind"` // rules, process, ollama, openai
	Command []string `yaml:"command"`
	Model   string   `yaml:"model"`
	Host    string   `yaml:"host"`
	APIKey  string   `yaml:"-"`
}

type STT struct {
	ModelPath string `yaml:"model_path"`
	Language  string `yaml:"language"`
	Threads   int    `yaml:"threads"`
}

type TTS struct {
	Engine      string `yaml:"engine"` // espeak, piper
	Voice       string `yaml:"voice"`
	PiperBinary string `yaml:"piper_binary"`
	PiperModel  string `yaml:"piper_model"`
	Speaker     int    `yaml:"speaker"`
}

type Capture struct {
	SampleRate       int           `yaml:"sample_rate"`
	FrameSize        int           `yaml:"frame_size"`
	StartThreshold   float64       `yaml:"start_threshold"`
	SilenceThreshold float64       `yaml:"silence_threshold"`
	SilenceDuration  time.Duration `yaml:"silence_duration"`
	MaxDuration      time.Duration `yaml:"max_duration"`
	PreRoll          time.Duration `yaml:"pre_roll"`
	Duck             bool          `yaml:"duck"`
}

type App struct {
	Name   string `yaml:"name"`
	Target string `yaml:"target"`
}

type API struct {
	Addr      string `yaml:"addr"`
	MaxUpload int64  `yaml:"max_upload"`
	TempDir   string `yaml:"temp_dir"`
}

type Cue struct {
	Sound   string `yaml:"sound"`
	Desktop bool   `yaml:"desktop"`
}

func Default() Config {
	return Config{
		UserName:   "Swanand",
		MemoryFile: "memory.json",
		Brain: Brain{
			Kind:    "process",
			Command: []string{"ollama", "run", "mistral"},
		},
		STT: STT{
			ModelPath: "third_party/whisper.cpp/models/ggml-small.en.bin",
			Language:  "en",
		},
		TTS: TTS{
			Engine:      "espeak",
			Voice:       "en-us",
			PiperBinary: "piper",
			PiperModel:  "voices/en_GB-vctk-medium.onnx",
		},
		Capture: Capture{
			SampleRate:       16000,
			FrameSize:        320,
			StartThreshold:   0.015,
			SilenceThreshold: 0.01,
			SilenceDuration:  600 * time.Millisecond,
			MaxDuration:      10 * time.Second,
			PreRoll:          300 * time.Millisecond,
		},
		API: API{
			Addr:      "0.0.0.0:8000",
			MaxUpload: 25 << 20,
		},
		Cue: Cue{
			Sound:   "beep.mp3",
			Desktop: true,
		},
	}
}

// Load reads the YAML file at path over the defaults. A missing file is not
// an error. Environment variables are applied last.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("JARVIS_MEMORY_FILE"); v != "" {
		c.MemoryFile = v
	}
	if v := os.Getenv("JARVIS_BRAIN"); v != "" {
		c.Brain.Kind = v
	}
	if v := os.Getenv("OLLAMA_HOST"); v != "" && c.Brain.Host == "" {
		c.Brain.Host = v
	}
	c.Brain.APIKey = os.Getenv("OPENAI_API_KEY")
}

func (c Config) Validate() error {
	switch strings.ToLower(c.Brain.Kind) {
	case "rules", "ollama", "openai":
	case "process":
		if len(c.Brain.Command) == 0 {
			return errors.New("brain.command is required for the process brain")
		}
	default:
		return fmt.Errorf("unknown brain kind %q", c.Brain.Kind)
	}

	if c.Capture.SampleRate <= 0 || c.Capture.FrameSize <= 0 {
		return errors.New("capture.sample_rate and capture.frame_size must be positive")
	}
	if c.Capture.SilenceThreshold > c.Capture.StartThreshold {
		return errors.New("capture.silence_threshold must not exceed capture.start_threshold")
	}

	for i, a := range c.Apps {
		if a.Name == "" || a.Target == "" {
			return fmt.Errorf("apps[%d]: name and target are required", i)
		}
	}

	return nil
}
