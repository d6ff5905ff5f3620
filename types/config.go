package types

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fioncat/gbrowse/osutils"
	"gopkg.in/yaml.v3"
)

const (
	configMinimalDuration = time.Millisecond * 100
	configMaximalDuration = time.Minute * 10

	configMaximalWriteTimeout = time.Hour

	configDefaultListen          = ":8080"
	configDefaultOpenBoltTimeout = time.Second * 3
	configDefaultReadTimeout     = time.Second * 30
	configDefaultWriteTimeout    = time.Minute * 5
	configDefaultThumbnailSize   = 256
)

type Config struct {
	BaseDir string `yaml:"-"`
	Path    string `yaml:"-"`

	Listen        string `yaml:"listen"`
	MetricsListen string `yaml:"metricsListen"`

	MountDirs  []string `yaml:"mounts"`
	BrowseRoot string   `yaml:"browseRoot"`

	Handlers Handlers `yaml:"handlers"`

	Auth *AuthConfig `yaml:"auth"`

	PidFile string `yaml:"pidFile"`
	LogFile string `yaml:"logFile"`

	Debug bool `yaml:"debug"`
	Zstd  bool `yaml:"zstd"`

	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	OpenBoltTimeout time.Duration `yaml:"openBoltTimeout"`

	ThumbnailSize int `yaml:"thumbnailSize"`
}

// Handlers maps a file extension (with the leading dot) to a handler kind name.
type Handlers map[string]string

type AuthConfig struct {
	Username string `yaml:"username"`
	// Password is a bcrypt hash, see `gbrowse passwd`.
	Password string `yaml:"password"`
}

func (a *AuthConfig) Enabled() bool {
	return a != nil && a.Username != ""
}

func LoadConfig() (*Config, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	path := getConfigPath(homeDir)

	baseDir := os.Getenv("GBROWSE_BASE_PATH")
	if baseDir == "" {
		baseDir = filepath.Join(homeDir, ".local", "share", "gbrowse")
	}
	err = osutils.EnsureDir(baseDir)
	if err != nil {
		return nil, fmt.Errorf("ensure basedir: %w", err)
	}

	if path == "" {
		return newDefaultConfig(baseDir), nil
	}

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return newDefaultConfig(baseDir), nil
		}

		return nil, fmt.Errorf("open config file: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	var cfg Config
	err = decoder.Decode(&cfg)
	if err != nil {
		return nil, fmt.Errorf("decode config yaml file: %w", err)
	}

	cfg.BaseDir = baseDir
	cfg.Path = path

	err = cfg.validate()
	if err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

func getConfigPath(homeDir string) string {
	path := os.Getenv("GBROWSE_CONFIG_PATH")
	if path != "" {
		return path
	}
	dir := filepath.Join(homeDir, ".config", "gbrowse")
	ents, err := os.ReadDir(dir)
	if err == nil {
		for _, ent := range ents {
			switch ent.Name() {
			case "config.yaml", "config.yml":
				return filepath.Join(dir, ent.Name())
			}
		}
	}
	return ""
}

// newDefaultConfig leaves Path empty, so relative mounts are taken from the
// working directory.
func newDefaultConfig(baseDir string) *Config {
	return &Config{
		BaseDir: baseDir,

		Listen: configDefaultListen,

		MountDirs: []string{"."},

		Handlers: newDefaultHandlers(),

		PidFile: filepath.Join(baseDir, "gbrowse.pid"),
		LogFile: filepath.Join(baseDir, "logs", "gbrowse.log"),

		Zstd: true,

		ReadTimeout:     configDefaultReadTimeout,
		WriteTimeout:    configDefaultWriteTimeout,
		OpenBoltTimeout: configDefaultOpenBoltTimeout,

		ThumbnailSize: configDefaultThumbnailSize,
	}
}

func newDefaultHandlers() Handlers {
	return Handlers{
		".txt":  "text",
		".log":  "text",
		".md":   "markdown",
		".png":  "image",
		".jpg":  "image",
		".jpeg": "image",
		".gif":  "image",
		".webp": "image",
	}
}

func (c *Config) validate() error {
	if c.Listen == "" {
		c.Listen = configDefaultListen
	}

	if len(c.MountDirs) == 0 {
		return errors.New("at least one mount is required")
	}
	for i, dir := range c.MountDirs {
		if dir == "" {
			return fmt.Errorf("mounts[%d] is empty", i)
		}
	}
	if c.BrowseRoot != "" {
		mounts, err := c.Mounts()
		if err != nil {
			return err
		}
		root, err := c.resolveDir(c.BrowseRoot)
		if err != nil {
			return fmt.Errorf("resolve browseRoot: %w", err)
		}
		var found bool
		for _, mount := range mounts {
			if mount == root {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("browseRoot %q is not one of the mounts", c.BrowseRoot)
		}
	}

	if c.Handlers == nil {
		c.Handlers = newDefaultHandlers()
	}

	if c.Auth != nil {
		c.Auth.Password = os.ExpandEnv(c.Auth.Password)
		if c.Auth.Username != "" && c.Auth.Password == "" {
			return errors.New("auth.password is required when auth.username is set")
		}
	}

	if c.PidFile == "" {
		c.PidFile = filepath.Join(c.BaseDir, "gbrowse.pid")
	}
	if c.LogFile == "" {
		c.LogFile = filepath.Join(c.BaseDir, "logs", "gbrowse.log")
	}

	var err error
	c.OpenBoltTimeout, err = c.durationOrDefault(c.OpenBoltTimeout, configDefaultOpenBoltTimeout, configMaximalDuration)
	if err != nil {
		return fmt.Errorf("invalid openBoltTimeout: %w", err)
	}
	c.ReadTimeout, err = c.durationOrDefault(c.ReadTimeout, configDefaultReadTimeout, configMaximalDuration)
	if err != nil {
		return fmt.Errorf("invalid readTimeout: %w", err)
	}
	c.WriteTimeout, err = c.durationOrDefault(c.WriteTimeout, configDefaultWriteTimeout, configMaximalWriteTimeout)
	if err != nil {
		return fmt.Errorf("invalid writeTimeout: %w", err)
	}

	if c.ThumbnailSize <= 0 {
		c.ThumbnailSize = configDefaultThumbnailSize
	}

	return nil
}

// Mounts returns the absolute mount directories in configured order.
func (c *Config) Mounts() ([]string, error) {
	mounts := make([]string, len(c.MountDirs))
	for i, dir := range c.MountDirs {
		abs, err := c.resolveDir(dir)
		if err != nil {
			return nil, fmt.Errorf("resolve mounts[%d]: %w", i, err)
		}
		mounts[i] = abs
	}
	return mounts, nil
}

// BrowseRootPath returns the absolute path of the mount browsed as "/".
func (c *Config) BrowseRootPath() (string, error) {
	if c.BrowseRoot == "" {
		if len(c.MountDirs) == 0 {
			return "", errors.New("no mount configured")
		}
		return c.resolveDir(c.MountDirs[0])
	}
	return c.resolveDir(c.BrowseRoot)
}

// resolveDir makes dir absolute. Relative dirs are taken from the directory
// holding the config file, or the working directory without one.
func (c *Config) resolveDir(dir string) (string, error) {
	dir = os.ExpandEnv(dir)
	if filepath.IsAbs(dir) {
		return filepath.Clean(dir), nil
	}
	if c.Path != "" {
		configDir, err := filepath.Abs(filepath.Dir(c.Path))
		if err != nil {
			return "", err
		}
		return filepath.Join(configDir, dir), nil
	}
	return filepath.Abs(dir)
}

func (c *Config) durationOrDefault(d, def, max time.Duration) (time.Duration, error) {
	if d <= 0 {
		return def, nil
	}
	if d < configMinimalDuration {
		return 0, fmt.Errorf("duration %v is too small, it should >= %v", d, configMinimalDuration)
	}
	if d > max {
		return 0, fmt.Errorf("duration %v is too big, it should <= %v", d, max)
	}
	return d, nil
}
