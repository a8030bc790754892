package app

import (
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	coreconfig "github.com/bazumi/promobot/core/config"
	"github.com/bazumi/promobot/core/database"
)

// Section holds the bot-specific settings layered on top of the core
// transport configuration.
type Section struct {
	// ChannelUsername is the broadcast channel, "@name" form.
	ChannelUsername string `yaml:"channel_username" envconfig:"APP_CHANNEL"`
	// SuperOperatorID is seeded into the operator roster on startup
	// and is the only user allowed to manage the roster itself.
	SuperOperatorID int64 `yaml:"super_operator_id" envconfig:"APP_SUPER_OPERATOR"`
	// ManagerContact is shown in the support section, "@name" or URL.
	ManagerContact string `yaml:"manager_contact" envconfig:"APP_MANAGER_CONTACT"`

	PlaylistMain  string `yaml:"playlist_main" envconfig:"APP_PLAYLIST_MAIN"`
	PlaylistExtra string `yaml:"playlist_extra" envconfig:"APP_PLAYLIST_EXTRA"`
}

// Config is everything the bot needs to start.
type Config struct {
	Core     *coreconfig.Config
	Database *database.Config
	App      Section
}

// LoadConfig reads the shared YAML file (core sections plus the "app"
// section) and applies environment overrides to each layer.
func LoadConfig(path string) (*Config, error) {
	core, err := coreconfig.Load(path)
	if err != nil {
		return nil, err
	}
	db, err := database.LoadConfig()
	if err != nil {
		return nil, err
	}

	var wrapper struct {
		App Section `yaml:"app"`
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &wrapper); err != nil {
				return nil, fmt.Errorf("config: parse %s: %w", path, err)
			}
		case os.IsNotExist(err):
			// Env-only configuration is allowed.
		default:
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}
	if err := envconfig.Process("", &wrapper.App); err != nil {
		return nil, fmt.Errorf("config: app env overrides: %w", err)
	}

	cfg := &Config{Core: core, Database: db, App: wrapper.App}
	cfg.App.normalize()
	if err := cfg.App.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (s *Section) normalize() {
	s.ChannelUsername = strings.TrimSpace(s.ChannelUsername)
	if s.ChannelUsername != "" && !strings.HasPrefix(s.ChannelUsername, "@") {
		s.ChannelUsername = "@" + s.ChannelUsername
	}
	s.ManagerContact = strings.TrimSpace(s.ManagerContact)
}

func (s *Section) validate() error {
	if s.ChannelUsername == "" {
		return fmt.Errorf("config: APP_CHANNEL is required")
	}
	if s.SuperOperatorID == 0 {
		return fmt.Errorf("config: APP_SUPER_OPERATOR is required")
	}
	return nil
}
