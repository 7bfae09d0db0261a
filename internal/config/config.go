package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/cannon-dev/cannon/internal/errors"
	"github.com/cannon-dev/cannon/pkg/router"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "cannon.json"

	// FoundryFileName marks a foundry project root.
	FoundryFileName = "foundry.toml"

	// DefaultArtifacts is the default compiler output directory.
	DefaultArtifacts = "out"

	// DefaultOutput is the default directory for generated routers.
	DefaultOutput = "src/generated/routers"

	// DefaultDefinitions is the default router definition file.
	DefaultDefinitions = "routers.toml"

	// DefaultVariant is the default router variant.
	DefaultVariant = "deterministic"

	// DefaultPort is the default dev server port.
	DefaultPort = 4545

	// DefaultHost is the default dev server host.
	DefaultHost = "localhost"

	// DefaultInterval is the default artifact polling interval.
	DefaultInterval = "500ms"
)

// Config represents the complete cannon.json configuration.
type Config struct {
	// Paths contains project directories and files.
	Paths PathsConfig `json:"paths"`

	// Router contains generation settings.
	Router RouterConfig `json:"router"`

	// Output contains additional output targets.
	Output OutputConfig `json:"output,omitempty"`

	// Dev contains dev server settings.
	Dev DevConfig `json:"dev"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// PathsConfig contains path configuration relative to the project root.
type PathsConfig struct {
	// Artifacts is the forge output directory.
	Artifacts string `json:"artifacts,omitempty"`

	// Output is the directory generated routers are written to.
	Output string `json:"output,omitempty"`

	// Definitions is the TOML router definition file.
	Definitions string `json:"definitions,omitempty"`
}

// RouterConfig contains router generation settings.
type RouterConfig struct {
	// Variant is the default router variant.
	Variant string `json:"variant,omitempty"`

	// Deployer is the CREATE2 deployer address for the deterministic variant.
	Deployer string `json:"deployer,omitempty"`

	// Salt is the CREATE2 salt as hex, left-padded to 32 bytes.
	Salt string `json:"salt,omitempty"`

	// MaxLeafWidth is the maximum number of selectors per switch block.
	MaxLeafWidth int `json:"maxLeafWidth,omitempty"`

	// Compile runs forge build before generating.
	Compile bool `json:"compile,omitempty"`

	// Concurrency bounds parallel router generation. Zero means one
	// worker per CPU.
	Concurrency int `json:"concurrency,omitempty"`
}

// OutputConfig contains additional output targets.
type OutputConfig struct {
	// S3 uploads generated routers to a bucket when Bucket is set.
	S3 S3Config `json:"s3,omitempty"`
}

// S3Config contains S3 upload settings.
type S3Config struct {
	Bucket    string `json:"bucket,omitempty"`
	Prefix    string `json:"prefix,omitempty"`
	Region    string `json:"region,omitempty"`
	Endpoint  string `json:"endpoint,omitempty"`
	PathStyle bool   `json:"pathStyle,omitempty"`
}

// DevConfig contains dev server settings.
type DevConfig struct {
	// Host is the host to bind to.
	Host string `json:"host,omitempty"`

	// Port is the port to run the dev server on.
	Port int `json:"port,omitempty"`

	// Interval is how often artifacts are polled for changes.
	Interval string `json:"interval,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Paths: PathsConfig{
			Artifacts:   DefaultArtifacts,
			Output:      DefaultOutput,
			Definitions: DefaultDefinitions,
		},
		Router: RouterConfig{
			Variant:      DefaultVariant,
			Deployer:     router.DefaultDeployer.Hex(),
			Salt:         common.Hash{}.Hex(),
			MaxLeafWidth: router.DefaultMaxLeafWidth,
		},
		Dev: DevConfig{
			Host:     DefaultHost,
			Port:     DefaultPort,
			Interval: DefaultInterval,
		},
	}
}

// Load reads configuration from the specified directory. A directory
// holding only foundry.toml yields the defaults.
func Load(dir string) (*Config, error) {
	configPath := filepath.Join(dir, ConfigFileName)
	if !fileExists(configPath) && fileExists(filepath.Join(dir, FoundryFileName)) {
		cfg := New()
		cfg.configPath = configPath
		return cfg, nil
	}
	return LoadFile(configPath)
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E122").
				WithDetail("No cannon.json found in " + filepath.Dir(path)).
				WithSuggestion("Run 'cannon init' to create one")
		}
		return nil, errors.New("E120").Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("E120").
			WithDetail("Failed to parse cannon.json: " + err.Error()).
			WithSuggestion("Check that cannon.json is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("E120").Wrap(err)
	}

	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E120").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Paths.Artifacts == "" {
		c.Paths.Artifacts = DefaultArtifacts
	}
	if c.Paths.Output == "" {
		c.Paths.Output = DefaultOutput
	}
	if c.Paths.Definitions == "" {
		c.Paths.Definitions = DefaultDefinitions
	}

	if c.Router.Variant == "" {
		c.Router.Variant = DefaultVariant
	}
	if c.Router.Deployer == "" {
		c.Router.Deployer = router.DefaultDeployer.Hex()
	}
	if c.Router.Salt == "" {
		c.Router.Salt = common.Hash{}.Hex()
	}
	if c.Router.MaxLeafWidth == 0 {
		c.Router.MaxLeafWidth = router.DefaultMaxLeafWidth
	}

	if c.Dev.Host == "" {
		c.Dev.Host = DefaultHost
	}
	if c.Dev.Port == 0 {
		c.Dev.Port = DefaultPort
	}
	if c.Dev.Interval == "" {
		c.Dev.Interval = DefaultInterval
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, err := router.Lookup(c.Router.Variant); err != nil {
		return errors.New("E121").
			WithDetail("router.variant: " + err.Error())
	}
	if _, err := c.Deployment(); err != nil {
		return err
	}
	if c.Router.MaxLeafWidth < 1 {
		return errors.New("E121").
			WithDetail("router.maxLeafWidth must be at least 1")
	}
	if c.Router.Concurrency < 0 {
		return errors.New("E121").
			WithDetail("router.concurrency must not be negative")
	}
	if c.Dev.Port < 0 || c.Dev.Port > 65535 {
		return errors.New("E121").
			WithDetail("dev.port must be between 0 and 65535")
	}
	if d, err := time.ParseDuration(c.Dev.Interval); err != nil || d <= 0 {
		return errors.New("E121").
			WithDetail("dev.interval must be a positive duration such as \"500ms\"")
	}
	if c.Output.S3.Bucket != "" && c.Output.S3.Region == "" {
		return errors.New("E121").
			WithDetail("output.s3.region is required when output.s3.bucket is set")
	}
	return nil
}

// Deployment returns the CREATE2 parameters of the router section.
func (c *Config) Deployment() (router.Deployment, error) {
	return ParseDeployment(c.Router.Deployer, c.Router.Salt)
}

// ParseDeployment parses a deployer address and a hex salt. Empty values
// select the defaults.
func ParseDeployment(deployer, salt string) (router.Deployment, error) {
	d := router.DefaultDeployment()

	if deployer != "" {
		if !common.IsHexAddress(deployer) {
			return d, errors.New("E121").
				WithDetail("invalid deployer address " + strconv.Quote(deployer))
		}
		d.Deployer = common.HexToAddress(deployer)
	}

	if salt != "" {
		raw := strings.TrimPrefix(strings.TrimPrefix(salt, "0x"), "0X")
		if len(raw)%2 == 1 {
			raw = "0" + raw
		}
		b, err := hexutil.Decode("0x" + raw)
		if err != nil || len(b) > common.HashLength {
			return d, errors.New("E121").
				WithDetail("invalid salt " + strconv.Quote(salt) + ": want at most 32 bytes of hex")
		}
		d.Salt = common.BytesToHash(b)
	}

	return d, nil
}

// PollInterval returns the dev polling interval, falling back to the
// default when unset or invalid.
func (c *Config) PollInterval() time.Duration {
	if d, err := time.ParseDuration(c.Dev.Interval); err == nil && d > 0 {
		return d
	}
	d, _ := time.ParseDuration(DefaultInterval)
	return d
}

// DevAddress returns the address string for the dev server.
func (c *Config) DevAddress() string {
	return c.Dev.Host + ":" + strconv.Itoa(c.Dev.Port)
}

// DevURL returns the full URL for the dev server.
func (c *Config) DevURL() string {
	return "http://" + c.DevAddress()
}

// ArtifactsPath returns the absolute path to the artifacts directory.
func (c *Config) ArtifactsPath() string {
	return c.resolve(c.Paths.Artifacts)
}

// OutputPath returns the absolute path to the router output directory.
func (c *Config) OutputPath() string {
	return c.resolve(c.Paths.Output)
}

// DefinitionsPath returns the absolute path to the router definition file.
func (c *Config) DefinitionsPath() string {
	return c.resolve(c.Paths.Definitions)
}

// HasS3 reports whether routers are uploaded to S3.
func (c *Config) HasS3() bool {
	return c.Output.S3.Bucket != ""
}

func (c *Config) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Dir(), path)
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	return fileExists(filepath.Join(dir, ConfigFileName))
}

// IsProjectRoot reports whether dir holds cannon.json or foundry.toml.
func IsProjectRoot(dir string) bool {
	return Exists(dir) || fileExists(filepath.Join(dir, FoundryFileName))
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// FindProjectRoot walks up directories to find the project root.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if IsProjectRoot(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("E122").
				WithDetail("No cannon.json or foundry.toml found in " + startDir + " or any parent directory").
				WithSuggestion("Run 'cannon init' in your foundry project")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the current working directory.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		return nil, err
	}

	return Load(root)
}
