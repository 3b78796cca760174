package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/overtone-labs/voxd/internal/vad"
	"gopkg.in/yaml.v3"
)

type TelemetryConfig struct {
	LogLevel     string `yaml:"log_level"`
	OTLPEndpoint string `yaml:"otlp_endpoint"`
	OTLPInsecure bool   `yaml:"otlp_insecure"`
}

type HTTPConfig struct {
	Bind string `yaml:"bind"`
	Port int    `yaml:"port"`
}

type BusConfig struct {
	Embedded       bool     `yaml:"embedded"`
	Port           int      `yaml:"port"`
	StoreDir       string   `yaml:"store_dir"`
	Servers        []string `yaml:"servers"`
	Username       string   `yaml:"username"`
	Password       string   `yaml:"password"`
	Token          string   `yaml:"token"`
	TLSInsecure    bool     `yaml:"tls_insecure"`
	ConnectTimeout int      `yaml:"connect_timeout_ms"`
}

// PipelineConfig holds the segmentation parameters shared by every audio
// connection. Loaded once at construction and never mutated afterwards.
type PipelineConfig struct {
	SampleRate                int     `yaml:"sample_rate"`
	WindowSize                int     `yaml:"window_size"`
	SpeechThreshold           float64 `yaml:"speech_threshold"`
	MinSpeechMS               int     `yaml:"min_speech_ms"`
	MinSilenceMS              int     `yaml:"min_silence_ms"`
	MaxSpeechMS               int     `yaml:"max_speech_ms"`
	MaxParallelTranscriptions int     `yaml:"max_parallel_transcriptions"`
}

type STTConfig struct {
	Mode        string  `yaml:"mode"` // mock, exec, whisper
	Command     string  `yaml:"command"`
	ModelPath   string  `yaml:"model_path"`
	Language    string  `yaml:"language"`
	Temperature float64 `yaml:"temperature"`
}

type StoreConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Path          string `yaml:"path"`
	RetentionMode string `yaml:"retention_mode"`
	RetentionDays int    `yaml:"retention_days"`
	MaxSessions   int    `yaml:"max_sessions"`
	VacuumOnStart bool   `yaml:"vacuum_on_start"`
}

type Config struct {
	RuntimeName string          `yaml:"runtime_name"`
	Environment string          `yaml:"environment"`
	HTTP        HTTPConfig      `yaml:"http"`
	Telemetry   TelemetryConfig `yaml:"telemetry"`
	Bus         BusConfig       `yaml:"bus"`
	Pipeline    PipelineConfig  `yaml:"pipeline"`
	STT         STTConfig       `yaml:"stt"`
	Store       StoreConfig     `yaml:"store"`
}

func Default() Config {
	return Config{
		RuntimeName: "voxd",
		Environment: "development",
		HTTP: HTTPConfig{
			Bind: "0.0.0.0",
			Port: 8080,
		},
		Telemetry: TelemetryConfig{
			LogLevel:     "info",
			OTLPEndpoint: "",
			OTLPInsecure: true,
		},
		Bus: BusConfig{
			Embedded:       true,
			Port:           4222,
			StoreDir:       "./data/nats",
			Servers:        []string{"nats://localhost:4222"},
			ConnectTimeout: 2000,
		},
		Pipeline: PipelineConfig{
			SampleRate:                16000,
			WindowSize:                512,
			SpeechThreshold:           0.5,
			MinSpeechMS:               300,
			MinSilenceMS:              550,
			MaxSpeechMS:               15000,
			MaxParallelTranscriptions: 2,
		},
		STT: STTConfig{
			Mode:     "mock",
			Language: "en",
		},
		Store: StoreConfig{
			Enabled:       true,
			Path:          "./data/voxd-transcripts.db",
			RetentionMode: "session",
			RetentionDays: 30,
			MaxSessions:   10000,
		},
	}
}

func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return cfg, fmt.Errorf("config file not found: %w", err)
			}
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	if err := validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	overrideString(&cfg.RuntimeName, "VOXD_RUNTIME_NAME")
	overrideString(&cfg.Environment, "VOXD_ENVIRONMENT")
	overrideString(&cfg.HTTP.Bind, "VOXD_HTTP_BIND")
	overrideInt(&cfg.HTTP.Port, "VOXD_HTTP_PORT")
	overrideString(&cfg.Telemetry.LogLevel, "VOXD_TELEMETRY_LOG_LEVEL")
	overrideString(&cfg.Telemetry.OTLPEndpoint, "VOXD_TELEMETRY_OTLP_ENDPOINT")
	overrideBool(&cfg.Telemetry.OTLPInsecure, "VOXD_TELEMETRY_OTLP_INSECURE")
	overrideBool(&cfg.Bus.Embedded, "VOXD_BUS_EMBEDDED")
	overrideInt(&cfg.Bus.Port, "VOXD_BUS_PORT")
	overrideString(&cfg.Bus.StoreDir, "VOXD_BUS_STORE_DIR")
	overrideStringSlice(&cfg.Bus.Servers, "VOXD_BUS_SERVERS")
	overrideString(&cfg.Bus.Username, "VOXD_BUS_USERNAME")
	overrideString(&cfg.Bus.Password, "VOXD_BUS_PASSWORD")
	overrideString(&cfg.Bus.Token, "VOXD_BUS_TOKEN")
	overrideBool(&cfg.Bus.TLSInsecure, "VOXD_BUS_TLS_INSECURE")
	overrideInt(&cfg.Bus.ConnectTimeout, "VOXD_BUS_CONNECT_TIMEOUT_MS")
	overrideInt(&cfg.Pipeline.SampleRate, "VOXD_PIPELINE_SAMPLE_RATE")
	overrideInt(&cfg.Pipeline.WindowSize, "VOXD_PIPELINE_WINDOW_SIZE")
	overrideFloat(&cfg.Pipeline.SpeechThreshold, "VOXD_PIPELINE_SPEECH_THRESHOLD")
	overrideInt(&cfg.Pipeline.MinSpeechMS, "VOXD_PIPELINE_MIN_SPEECH_MS")
	overrideInt(&cfg.Pipeline.MinSilenceMS, "VOXD_PIPELINE_MIN_SILENCE_MS")
	overrideInt(&cfg.Pipeline.MaxSpeechMS, "VOXD_PIPELINE_MAX_SPEECH_MS")
	overrideInt(&cfg.Pipeline.MaxParallelTranscriptions, "VOXD_PIPELINE_MAX_PARALLEL_TRANSCRIPTIONS")
	overrideString(&cfg.STT.Mode, "VOXD_STT_MODE")
	overrideString(&cfg.STT.Command, "VOXD_STT_COMMAND")
	overrideString(&cfg.STT.ModelPath, "VOXD_STT_MODEL_PATH")
	overrideString(&cfg.STT.Language, "VOXD_STT_LANGUAGE")
	overrideFloat(&cfg.STT.Temperature, "VOXD_STT_TEMPERATURE")
	overrideBool(&cfg.Store.Enabled, "VOXD_STORE_ENABLED")
	overrideString(&cfg.Store.Path, "VOXD_STORE_PATH")
	overrideString(&cfg.Store.RetentionMode, "VOXD_STORE_RETENTION_MODE")
	overrideInt(&cfg.Store.RetentionDays, "VOXD_STORE_RETENTION_DAYS")
	overrideInt(&cfg.Store.MaxSessions, "VOXD_STORE_MAX_SESSIONS")
	overrideBool(&cfg.Store.VacuumOnStart, "VOXD_STORE_VACUUM_ON_START")
}

func overrideString(target *string, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok && strings.TrimSpace(value) != "" {
		*target = value
	}
}

func overrideInt(target *int, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			*target = parsed
		}
	}
}

func overrideBool(target *bool, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		if parsed, err := strconv.ParseBool(value); err == nil {
			*target = parsed
		}
	}
}

func overrideFloat(target *float64, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			*target = parsed
		}
	}
}

func overrideStringSlice(target *[]string, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		parts := strings.Split(value, ",")
		var trimmed []string
		for _, p := range parts {
			if s := strings.TrimSpace(p); s != "" {
				trimmed = append(trimmed, s)
			}
		}
		if len(trimmed) > 0 {
			*target = trimmed
		}
	}
}

func validate(cfg Config) error {
	if cfg.RuntimeName == "" {
		return errors.New("runtime_name must not be empty")
	}
	if cfg.HTTP.Port <= 0 || cfg.HTTP.Port > 65535 {
		return errors.New("http.port must be between 1 and 65535")
	}
	if cfg.Bus.Embedded {
		if cfg.Bus.Port <= 0 || cfg.Bus.Port > 65535 {
			return errors.New("bus.port must be between 1 and 65535 when embedded mode is enabled")
		}
	} else {
		if len(cfg.Bus.Servers) == 0 {
			return errors.New("bus.servers must not be empty when embedded mode is disabled")
		}
	}
	if cfg.Pipeline.SampleRate <= 0 {
		return errors.New("pipeline.sample_rate must be positive")
	}
	if err := vad.ValidateWindowSize(cfg.Pipeline.SampleRate, cfg.Pipeline.WindowSize); err != nil {
		return fmt.Errorf("pipeline.window_size: %w", err)
	}
	if cfg.Pipeline.SpeechThreshold <= 0 || cfg.Pipeline.SpeechThreshold >= 1 {
		return errors.New("pipeline.speech_threshold must be in (0, 1)")
	}
	if cfg.Pipeline.MinSpeechMS < 0 {
		return errors.New("pipeline.min_speech_ms must be >= 0")
	}
	if cfg.Pipeline.MinSilenceMS <= 0 {
		return errors.New("pipeline.min_silence_ms must be positive")
	}
	if cfg.Pipeline.MaxSpeechMS <= cfg.Pipeline.MinSpeechMS {
		return errors.New("pipeline.max_speech_ms must exceed min_speech_ms")
	}
	if cfg.Pipeline.MaxParallelTranscriptions <= 0 {
		return errors.New("pipeline.max_parallel_transcriptions must be >= 1")
	}
	switch cfg.STT.Mode {
	case "mock", "exec", "whisper":
	default:
		return errors.New("stt.mode must be one of mock|exec|whisper")
	}
	if cfg.STT.Mode == "exec" && cfg.STT.Command == "" {
		return errors.New("stt.command must be set when mode=exec")
	}
	if cfg.STT.Mode == "whisper" && cfg.STT.ModelPath == "" {
		return errors.New("stt.model_path must be set when mode=whisper")
	}
	if cfg.Store.Enabled {
		if cfg.Store.Path == "" {
			return errors.New("store.path must not be empty")
		}
		switch cfg.Store.RetentionMode {
		case "ephemeral", "session", "persistent":
			// ok
		default:
			return errors.New("store.retention_mode must be one of ephemeral|session|persistent")
		}
		if cfg.Store.RetentionDays < 0 {
			return errors.New("store.retention_days must be >= 0")
		}
	}
	return nil
}
