package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Distance metrics supported by the identity matcher.
const (
	MetricEuclidean = "euclidean"
	MetricCosine    = "cosine"
)

type Config struct {
	Environment string            `yaml:"environment"`
	Liveness    LivenessConfig    `yaml:"liveness"`
	Recognition RecognitionConfig `yaml:"recognition"`
	Brightness  BrightnessConfig  `yaml:"brightness"`
	Storage     StorageConfig     `yaml:"storage"`
	Recognizer  RecognizerConfig  `yaml:"recognizer"`
	Database    DatabaseConfig    `yaml:"database"`
}

type LivenessConfig struct {
	MotionHistorySize    int     `yaml:"motion_history_size"`    // sliding window length (frames)
	LivenessThreshold    float64 `yaml:"liveness_threshold"`     // average changed-pixel count per frame pair
	MotionPixelThreshold int     `yaml:"motion_pixel_threshold"` // per-pixel intensity delta that counts as motion
	MinFacePresence      int     `yaml:"min_face_presence"`      // frames a face must be tracked before display reports it stable
}

type RecognitionConfig struct {
	RecognitionThreshold     float64 `yaml:"recognition_threshold"` // lower = stricter
	ConfidenceThreshold      float64 `yaml:"confidence_threshold"`
	DuplicateDetectionWindow int     `yaml:"duplicate_detection_window"` // seconds
	Metric                   string  `yaml:"metric"`                     // euclidean or cosine
}

// Window returns the duplicate detection window as a duration.
func (c *RecognitionConfig) Window() time.Duration {
	return time.Duration(c.DuplicateDetectionWindow) * time.Second
}

type BrightnessConfig struct {
	LowThreshold    float64 `yaml:"low_threshold"`
	MediumThreshold float64 `yaml:"medium_threshold"`
}

type StorageConfig struct {
	EncodingPath   string `yaml:"encoding_path"`   // directory of per-identity embedding files
	AttendanceFile string `yaml:"attendance_file"` // CSV ledger path
}

type RecognizerConfig struct {
	URL string `yaml:"url"` // base URL of the external face-recognition service
}

type DatabaseConfig struct {
	URL           string `yaml:"url"`             // PostgreSQL connection URL (optional enrollment backend)
	MaxOpenConns  int    `yaml:"max_open_conns"`  // default 25
	MaxIdleConns  int    `yaml:"max_idle_conns"`  // default 5
	LegacyDSN     string `yaml:"legacy_dsn"`      // MariaDB DSN for the legacy attendance import
	HNSWIndexPath string `yaml:"hnsw_index_path"` // path to persist the enrollment HNSW index (optional)
}

// Default returns the configuration with all documented defaults applied.
func Default() *Config {
	return &Config{
		Environment: "development",
		Liveness: LivenessConfig{
			MotionHistorySize:    10,
			LivenessThreshold:    15,
			MotionPixelThreshold: 10,
			MinFacePresence:      5,
		},
		Recognition: RecognitionConfig{
			RecognitionThreshold:     0.6,
			ConfidenceThreshold:      0.55,
			DuplicateDetectionWindow: 5,
			Metric:                   MetricEuclidean,
		},
		Brightness: BrightnessConfig{
			LowThreshold:    85,
			MediumThreshold: 170,
		},
		Storage: StorageConfig{
			EncodingPath:   "encodings",
			AttendanceFile: "attendance.csv",
		},
		Recognizer: RecognizerConfig{
			URL: "http://localhost:8000",
		},
		Database: DatabaseConfig{
			MaxOpenConns: 25,
			MaxIdleConns: 5,
		},
	}
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads an environment variable and parses it as a float.
// Unlike envInt it keeps whatever value parses - range checks belong to Validate,
// which must fail fast instead of silently falling back.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return defaultVal
}

func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

// Load builds the configuration from defaults, an optional YAML file and
// environment variable overrides, then validates it. The file path comes from
// PUNCHCLOCK_CONFIG; when unset, punchclock.yaml is used if it exists.
func Load() (*Config, error) {
	cfg := Default()

	path := os.Getenv("PUNCHCLOCK_CONFIG")
	if path == "" {
		if _, err := os.Stat("punchclock.yaml"); err == nil {
			path = "punchclock.yaml"
		}
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Environment = envString("ENV", c.Environment)

	c.Liveness.MotionHistorySize = envInt("MOTION_HISTORY_SIZE", c.Liveness.MotionHistorySize)
	c.Liveness.LivenessThreshold = envFloat("LIVENESS_THRESHOLD", c.Liveness.LivenessThreshold)
	c.Liveness.MotionPixelThreshold = envInt("MOTION_PIXEL_THRESHOLD", c.Liveness.MotionPixelThreshold)
	c.Liveness.MinFacePresence = envInt("MIN_FACE_PRESENCE", c.Liveness.MinFacePresence)

	c.Recognition.RecognitionThreshold = envFloat("RECOGNITION_THRESHOLD", c.Recognition.RecognitionThreshold)
	c.Recognition.ConfidenceThreshold = envFloat("CONFIDENCE_THRESHOLD", c.Recognition.ConfidenceThreshold)
	c.Recognition.DuplicateDetectionWindow = envInt("DUPLICATE_DETECTION_WINDOW", c.Recognition.DuplicateDetectionWindow)
	c.Recognition.Metric = envString("DISTANCE_METRIC", c.Recognition.Metric)

	c.Brightness.LowThreshold = envFloat("BRIGHTNESS_LOW_THRESHOLD", c.Brightness.LowThreshold)
	c.Brightness.MediumThreshold = envFloat("BRIGHTNESS_MEDIUM_THRESHOLD", c.Brightness.MediumThreshold)

	c.Storage.EncodingPath = envString("ENCODING_PATH", c.Storage.EncodingPath)
	c.Storage.AttendanceFile = envString("ATTENDANCE_FILE", c.Storage.AttendanceFile)

	c.Recognizer.URL = envString("RECOGNIZER_URL", c.Recognizer.URL)

	c.Database.URL = envString("DATABASE_URL", c.Database.URL)
	c.Database.MaxOpenConns = envInt("DATABASE_MAX_OPEN_CONNS", c.Database.MaxOpenConns)
	c.Database.MaxIdleConns = envInt("DATABASE_MAX_IDLE_CONNS", c.Database.MaxIdleConns)
	c.Database.LegacyDSN = envString("LEGACY_DATABASE_DSN", c.Database.LegacyDSN)
	c.Database.HNSWIndexPath = envString("HNSW_INDEX_PATH", c.Database.HNSWIndexPath)
}

// Validate checks threshold ranges and rejects the configuration outright on
// the first violation. Values are never clamped.
func (c *Config) Validate() error {
	if c.Liveness.MotionHistorySize < 1 {
		return fmt.Errorf("motion_history_size must be at least 1, got %d", c.Liveness.MotionHistorySize)
	}
	if c.Liveness.MotionPixelThreshold < 0 || c.Liveness.MotionPixelThreshold > 255 {
		return fmt.Errorf("motion_pixel_threshold must be between 0-255, got %d", c.Liveness.MotionPixelThreshold)
	}
	if c.Liveness.LivenessThreshold < 0 {
		return fmt.Errorf("liveness_threshold must not be negative, got %g", c.Liveness.LivenessThreshold)
	}
	if c.Recognition.RecognitionThreshold < 0 || c.Recognition.RecognitionThreshold > 1 {
		return fmt.Errorf("recognition_threshold must be between 0-1, got %g", c.Recognition.RecognitionThreshold)
	}
	if c.Recognition.ConfidenceThreshold < 0 || c.Recognition.ConfidenceThreshold > 1 {
		return fmt.Errorf("confidence_threshold must be between 0-1, got %g", c.Recognition.ConfidenceThreshold)
	}
	if c.Recognition.DuplicateDetectionWindow < 0 {
		return fmt.Errorf("duplicate_detection_window must not be negative, got %d", c.Recognition.DuplicateDetectionWindow)
	}
	if c.Recognition.Metric != MetricEuclidean && c.Recognition.Metric != MetricCosine {
		return fmt.Errorf("unknown distance metric: %s (supported: %s, %s)", c.Recognition.Metric, MetricEuclidean, MetricCosine)
	}
	if c.Brightness.LowThreshold >= c.Brightness.MediumThreshold {
		return fmt.Errorf("brightness low_threshold (%g) must be less than medium_threshold (%g)",
			c.Brightness.LowThreshold, c.Brightness.MediumThreshold)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
