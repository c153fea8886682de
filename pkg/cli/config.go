/*
Package cli facilitates building command-line applications around the Tessie tool server. It
defines a [Config] type that can be used to register common command-line flags (using
[pflag]) and environment variable equivalents, optionally read from a .env file.

The package uses [keyring]'s platform-agnostic interface for storing the Tessie API token in an
OS-dependent credential store.

# Examples

	config, err := cli.NewConfig(cli.FlagAll)
	if err != nil {
		panic(err)
	}
	config.RegisterCommandLineFlags(pflag.CommandLine) // Adds --vin, --token-file, --interval, etc.
	pflag.Parse()
	config.LoadEnvFile("")          // Reads ./.env, if present
	config.ReadFromEnvironment()    // Fills in missing fields using environment variables
	config.LoadCredentials()        // Prompt for keyring password if needed

	acct, err := config.Account()

Values given on the command line always win over the environment, and the process environment
always wins over the .env file.
*/
package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/99designs/keyring"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/tessiemcp/tessie-mcp/internal/log"
	"github.com/tessiemcp/tessie-mcp/pkg/cache"
	"github.com/tessiemcp/tessie-mcp/pkg/tessie"
)

// Environment variable names used by [Config.ReadFromEnvironment] to set common parameters.
const (
	EnvTessieToken          = "TESSIE_TOKEN"
	EnvTessieTokenFile      = "TESSIE_TOKEN_FILE"
	EnvTessieTokenName      = "TESSIE_TOKEN_NAME"
	EnvVehicleVIN           = "VEHICLE_VIN"
	EnvTelemetryInterval    = "TELEMETRY_INTERVAL"
	EnvTessieBaseURL        = "TESSIE_BASE_URL"
	EnvTessieTimeout        = "TESSIE_TIMEOUT"
	EnvTessieEnableControls = "TESSIE_ENABLE_CONTROLS"
	EnvTessieVerbose        = "TESSIE_VERBOSE"
	EnvMCPHost              = "TESSIE_MCP_HOST"
	EnvMCPPort              = "TESSIE_MCP_PORT"
	EnvMCPJWTSecret         = "TESSIE_MCP_JWT_SECRET"
	EnvKeyringType          = "TESSIE_KEYRING_TYPE"
	EnvKeyringPass          = "TESSIE_KEYRING_PASSWORD"
	EnvKeyringPath          = "TESSIE_KEYRING_PATH"
	EnvKeyringDebug         = "TESSIE_KEYRING_DEBUG"
)

const (
	DefaultInterval = "5"
	DefaultHost     = "0.0.0.0"
	DefaultPort     = 8000
	DefaultEnvFile  = ".env"
)

// Flag controls what options should be scanned from the command line and/or environment variables.
type Flag int

func (f Flag) isSet(other Flag) bool {
	return (f & other) == other
}

const (
	FlagVIN       Flag = 1 // Enable VIN option.
	FlagToken     Flag = 2 // Enable Tessie token and gateway options.
	FlagTelemetry Flag = 4 // Enable telemetry interval and control options.
	FlagServer    Flag = 8 // Enable HTTP transport options.
	FlagAll       Flag = FlagVIN | FlagToken | FlagTelemetry | FlagServer
)

var (
	ErrNoVIN         = errors.New("vehicle VIN not provided (set --vin or $VEHICLE_VIN)")
	ErrNoToken       = errors.New("Tessie token not provided (set $TESSIE_TOKEN, --token-file or store one in the keyring)")
	ErrKeyNotFound   = keyring.ErrKeyNotFound
	errInvalidSwitch = errors.New("expected true/false/1/0")
)

// Config fields determine how the server reaches Tessie and how it listens for clients.
type Config struct {
	Flags Flag // Controls which set of environment variables/CLI flags to use.

	VIN              string
	TokenFilename    string
	KeyringTokenName string // Username for the Tessie token in the system keyring
	BaseURL          string
	Timeout          time.Duration
	Interval         string // Minutes, or "realtime".
	EnableControls   bool
	Verbose          bool

	Host      string
	Port      int
	JWTSecret string

	Backend     keyring.Config
	BackendType backendType
	Debug       bool // Enable keyring debug messages

	flags       *pflag.FlagSet
	dotenv      *viper.Viper
	password    *string
	tessieToken string
}

func NewConfig(flags Flag) (*Config, error) {
	c := Config{
		Flags:    flags,
		BaseURL:  tessie.DefaultBaseURL,
		Timeout:  tessie.DefaultTimeout,
		Interval: DefaultInterval,
		Host:     DefaultHost,
		Port:     DefaultPort,
		Backend: keyring.Config{
			ServiceName:              keyringServiceName,
			KeychainTrustApplication: true,
			KeyCtlScope:              "user",
		},
	}
	c.BackendType = backendType{&c}
	c.Backend.KeychainPasswordFunc = c.getPassword
	c.Backend.FilePasswordFunc = c.getPassword

	return &c, nil
}

func (c *Config) RegisterCommandLineFlags(flags *pflag.FlagSet) {
	c.flags = flags
	flags.BoolVarP(&c.Verbose, "verbose", "v", false, "Enable debug logging. Defaults to $TESSIE_VERBOSE.")
	if c.Flags.isSet(FlagVIN) {
		flags.StringVar(&c.VIN, "vin", "", "Vehicle Identification Number. Defaults to $VEHICLE_VIN.")
	}
	if c.Flags.isSet(FlagToken) {
		flags.StringVar(&c.TokenFilename, "token-file", "", "`File` containing the Tessie API token. Defaults to $TESSIE_TOKEN_FILE.")
		flags.StringVar(&c.KeyringTokenName, "token-name", "", "System keyring `name` for the Tessie token. Defaults to $TESSIE_TOKEN_NAME.")
		flags.StringVar(&c.BaseURL, "base-url", c.BaseURL, "Tessie API base `url`. Defaults to $TESSIE_BASE_URL.")
		flags.DurationVar(&c.Timeout, "timeout", c.Timeout, "Per-request timeout for Tessie API calls. Defaults to $TESSIE_TIMEOUT.")

		var names []string
		for _, name := range keyring.AvailableBackends() {
			names = append(names, string(name))
		}
		sort.Strings(names)
		flags.Var(&c.BackendType, "keyring-type", "Keyring `type` ("+strings.Join(names, "|")+"). Defaults to $TESSIE_KEYRING_TYPE.")
		flags.StringVar(&c.Backend.FileDir, "keyring-file-dir", keyringDirectory, "keyring `directory` for file-backed keyring types")
		flags.BoolVar(&c.Debug, "keyring-debug", false, "Enable keyring debug logging")
	}
	if c.Flags.isSet(FlagTelemetry) {
		flags.StringVar(&c.Interval, "interval", c.Interval, "Telemetry cache lifetime in `minutes`, or \"realtime\". Defaults to $TELEMETRY_INTERVAL.")
		flags.BoolVar(&c.EnableControls, "enable-controls", false, "Enable every control command, not only honk and flash. Defaults to $TESSIE_ENABLE_CONTROLS.")
	}
	if c.Flags.isSet(FlagServer) {
		flags.StringVar(&c.Host, "host", c.Host, "HTTP listen `address`. Defaults to $TESSIE_MCP_HOST.")
		flags.IntVar(&c.Port, "port", c.Port, "HTTP listen `port`. Defaults to $TESSIE_MCP_PORT.")
	}
}

// changed reports whether name was given explicitly on the command line.
func (c *Config) changed(name string) bool {
	return c.flags != nil && c.flags.Lookup(name) != nil && c.flags.Changed(name)
}

// LoadEnvFile reads KEY=VALUE pairs from path (DefaultEnvFile if empty). A missing file is not an
// error. Values from the file are only used for variables absent from the process environment.
func (c *Config) LoadEnvFile(path string) error {
	if path == "" {
		path = DefaultEnvFile
	}
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.Is(err, fs.ErrNotExist) || errors.As(err, &notFound) {
			log.Debug("No environment file at %s", path)
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	log.Debug("Loaded environment file %s", path)
	c.dotenv = v
	return nil
}

func (c *Config) getenv(name string) string {
	if value, ok := os.LookupEnv(name); ok {
		return value
	}
	if c.dotenv != nil {
		return c.dotenv.GetString(name)
	}
	return ""
}

func (c *Config) lookupSwitch(name string) (value, ok bool, err error) {
	raw := strings.TrimSpace(c.getenv(name))
	if raw == "" {
		return false, false, nil
	}
	value, err = strconv.ParseBool(raw)
	if err != nil {
		return false, false, fmt.Errorf("$%s: %w", name, errInvalidSwitch)
	}
	return value, true, nil
}

func (c *Config) setString(flagName string, dst *string, env string) {
	if c.changed(flagName) {
		return
	}
	if value := c.getenv(env); value != "" {
		*dst = value
		log.Debug("Set %s from $%s", flagName, env)
	}
}

// ReadFromEnvironment populates c using environment variables. Values that were given on the
// command line are not overwritten.
//
// Calling ReadFromEnvironment after the flag set is parsed (or other initialization method)
// prevents the environment from overriding explicit command-line parameters.
func (c *Config) ReadFromEnvironment() error {
	// Anything other than false/0 turns on verbose logging.
	if !c.changed("verbose") {
		if raw := strings.TrimSpace(c.getenv(EnvTessieVerbose)); raw != "" {
			c.Verbose = raw != "false" && raw != "0"
		}
	}
	if c.Flags.isSet(FlagVIN) {
		c.setString("vin", &c.VIN, EnvVehicleVIN)
		c.VIN = strings.TrimSpace(c.VIN)
		if c.VIN != "" {
			log.Debug("Set VIN to '%s'", tessie.SanitizeVIN(c.VIN))
		}
	}
	if c.Flags.isSet(FlagToken) {
		if c.TokenFilename == "" {
			if token := strings.TrimSpace(c.getenv(EnvTessieToken)); token != "" {
				c.tessieToken = token
				log.Debug("Using Tessie token from $%s", EnvTessieToken)
			} else {
				c.TokenFilename = c.getenv(EnvTessieTokenFile)
				log.Debug("Set token file to '%s'", c.TokenFilename)
			}
		}
		c.setString("token-name", &c.KeyringTokenName, EnvTessieTokenName)
		c.setString("base-url", &c.BaseURL, EnvTessieBaseURL)
		if !c.changed("timeout") {
			if raw := c.getenv(EnvTessieTimeout); raw != "" {
				timeout, err := parseTimeout(raw)
				if err != nil {
					return fmt.Errorf("$%s: %w", EnvTessieTimeout, err)
				}
				c.Timeout = timeout
			}
		}
		if c.BackendType.String() == string(keyring.InvalidBackend) {
			if err := c.BackendType.Set(c.getenv(EnvKeyringType)); err == nil {
				log.Debug("Set keyring type to '%s'", c.BackendType)
			}
		}
		if c.password == nil {
			password := c.getenv(EnvKeyringPass)
			c.password = &password
			if len(password) > 0 {
				log.Debug("Set keyring File Password to %s", strings.Repeat("*", len("hunter2")))
			}
		}
		if !c.changed("keyring-file-dir") {
			if dir := c.getenv(EnvKeyringPath); dir != "" {
				c.Backend.FileDir = dir
				log.Debug("Set keyring File Path to '%s'", c.Backend.FileDir)
			}
		}
		if !c.Debug {
			_, c.Debug = os.LookupEnv(EnvKeyringDebug)
		}
	}
	if c.Flags.isSet(FlagTelemetry) {
		c.setString("interval", &c.Interval, EnvTelemetryInterval)
		if !c.changed("enable-controls") {
			if value, ok, err := c.lookupSwitch(EnvTessieEnableControls); err != nil {
				return err
			} else if ok {
				c.EnableControls = value
			}
		}
	}
	if c.Flags.isSet(FlagServer) {
		c.setString("host", &c.Host, EnvMCPHost)
		if !c.changed("port") {
			if raw := c.getenv(EnvMCPPort); raw != "" {
				port, err := strconv.Atoi(strings.TrimSpace(raw))
				if err != nil {
					return fmt.Errorf("$%s: invalid port %q", EnvMCPPort, raw)
				}
				c.Port = port
			}
		}
		c.JWTSecret = c.getenv(EnvMCPJWTSecret)
	}
	return nil
}

// parseTimeout accepts a Go duration ("45s") or a bare number of seconds.
func parseTimeout(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if seconds, err := strconv.ParseFloat(raw, 64); err == nil {
		if seconds <= 0 {
			return 0, fmt.Errorf("timeout must be positive")
		}
		return time.Duration(seconds * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q", raw)
	}
	if d <= 0 {
		return 0, fmt.Errorf("timeout must be positive")
	}
	return d, nil
}

// Validate checks the options enabled by c.Flags. An unusual VIN only logs a warning.
func (c *Config) Validate() error {
	if c.Flags.isSet(FlagVIN) {
		if c.VIN == "" {
			return ErrNoVIN
		}
		if !tessie.ValidVIN(c.VIN) {
			log.Warning("VIN %s does not look like a 17-character VIN", tessie.SanitizeVIN(c.VIN))
		}
	}
	if c.Flags.isSet(FlagTelemetry) {
		if _, err := c.Policy(); err != nil {
			return err
		}
	}
	if c.Flags.isSet(FlagServer) && (c.Port <= 0 || c.Port > 65535) {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	return nil
}

// Policy returns the telemetry cache policy selected by c.Interval.
func (c *Config) Policy() (cache.Policy, error) {
	policy, err := cache.ParsePolicy(c.Interval)
	if err != nil {
		return cache.Policy{}, fmt.Errorf("invalid telemetry interval: %w", err)
	}
	return policy, nil
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// LoadCredentials resolves the Tessie token, prompting for a keyring password if needed. Call this
// method before starting network work to prevent interactive prompts from counting against
// timeouts.
func (c *Config) LoadCredentials() error {
	if c.Flags.isSet(FlagToken) {
		if _, err := c.token(); err != nil {
			return err
		}
	}
	return nil
}

// token resolves the Tessie token. ReadFromEnvironment only consults $TESSIE_TOKEN when no token
// file was given on the command line, so the order is --token-file, $TESSIE_TOKEN,
// $TESSIE_TOKEN_FILE, then the system keyring.
func (c *Config) token() (string, error) {
	if c.tessieToken != "" {
		return c.tessieToken, nil
	}
	if c.TokenFilename != "" {
		token, err := readToken(c.TokenFilename)
		if err == nil {
			c.tessieToken = token
			return c.tessieToken, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		// If the token file doesn't exist, fall through to trying to load from the system keyring.
		log.Debug("Token file %s does not exist", c.TokenFilename)
	}
	token, err := c.LoadTokenFromKeyring()
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) || errors.Is(err, keyring.ErrNoAvailImpl) {
			return "", ErrNoToken
		}
		return "", err
	}
	c.tessieToken = token
	return c.tessieToken, nil
}

func readToken(filename string) (string, error) {
	raw, err := os.ReadFile(filename)
	if err != nil {
		return "", err
	}
	token := strings.TrimSpace(string(raw))
	if token == "" {
		return "", fmt.Errorf("token file %s is empty", filename)
	}
	return token, nil
}

// Account returns a gateway client for the configured Tessie token.
func (c *Config) Account() (*tessie.Account, error) {
	token, err := c.token()
	if err != nil {
		return nil, err
	}
	acct, err := tessie.New(token, "")
	if err != nil {
		return nil, err
	}
	acct.BaseURL = c.BaseURL
	acct.Timeout = c.Timeout
	return acct, nil
}
