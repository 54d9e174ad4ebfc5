package config

import (
	"net/url"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
)

// App holds application-level settings: the calendar authorization URL
// handed to users who have not connected yet, and an optional TOML config
// file that can carry the same values for deployments that prefer files
// over flags. Flags take precedence over the file.
type App struct {
	configPath string
	installURL string
}

// AppConfig is the TOML file schema
type AppConfig struct {
	InstallURL string `toml:"install_url"`
}

func (x *App) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Usage:       "Path to TOML configuration file",
			Sources:     cli.EnvVars("CTS_CONFIG"),
			Destination: &x.configPath,
		},
		&cli.StringFlag{
			Name:        "install-url",
			Usage:       "Calendar authorization URL sent to users who have not connected yet",
			Sources:     cli.EnvVars("CTS_INSTALL_URL"),
			Destination: &x.installURL,
		},
	}
}

// Configure merges the config file (if any) with the flags and validates
// the result.
func (x *App) Configure() (*AppConfig, error) {
	var cfg AppConfig

	if x.configPath != "" {
		// #nosec G304 - path is expected to be provided by CLI argument
		data, err := os.ReadFile(x.configPath)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read config file", goerr.V("path", x.configPath))
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, goerr.Wrap(err, "failed to parse TOML config", goerr.V("path", x.configPath))
		}
	}

	if x.installURL != "" {
		cfg.InstallURL = x.installURL
	}

	if err := cfg.Validate(); err != nil {
		return nil, goerr.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// Validate checks if the AppConfig is valid
func (c *AppConfig) Validate() error {
	if c.InstallURL == "" {
		return goerr.New("install URL is required: set --install-url or install_url in the config file")
	}
	if _, err := url.ParseRequestURI(c.InstallURL); err != nil {
		return goerr.Wrap(err, "invalid install URL", goerr.V("url", c.InstallURL))
	}
	return nil
}
