package console

import (
	"fmt"
	"io/ioutil"
	"time"

	"gopkg.in/yaml.v3"
)

// Config containing all the configuration values for a service.
type Config struct {
	// RepositoryServer is the address of the gogs server users log in to.
	RepositoryServer string `yaml:"repository_server"`
	// BotUsername and BotPassword are the credentials of the service user.
	BotUsername string `yaml:"bot_username"`
	BotPassword string `yaml:"bot_password"`
	// Port of the web server; 0 picks a free port.
	Port       uint16 `yaml:"port"`
	CookieName string `yaml:"cookie_name"`
	DBPath     string `yaml:"db_path"`
	// Language of the validation messages.
	Language    string `yaml:"language"`
	QueueLength int    `yaml:"queue_length"`
	// SessionMaxAge limits the age of login sessions; 0 keeps them forever.
	SessionMaxAge time.Duration `yaml:"session_max_age"`
}

// DefaultConfig returns the configuration used for values missing from a
// configuration file.
func DefaultConfig() Config {
	return Config{
		Port:          3000,
		CookieName:    "console-session",
		DBPath:        "./console.db",
		Language:      "en",
		QueueLength:   100,
		SessionMaxAge: 7 * 24 * time.Hour,
	}
}

// LoadConfig reads a YAML configuration file.  Keys missing from the file
// keep their default values.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return config, fmt.Errorf("failed to read configuration: %w", err)
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("failed to parse configuration %q: %w", path, err)
	}
	return config, nil
}

// withDefaults fills the fields the service cannot run without.  The port is
// left alone.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.CookieName == "" {
		c.CookieName = def.CookieName
	}
	if c.DBPath == "" {
		c.DBPath = def.DBPath
	}
	if c.Language == "" {
		c.Language = def.Language
	}
	if c.QueueLength <= 0 {
		c.QueueLength = def.QueueLength
	}
	return c
}
