package app

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// DefaultDeployHour is the hour deploys are scheduled for when the tracker sets a time.
	DefaultDeployHour = 21
	// NoDeployHour disables the hour check and keeps every deploy scheduled for today.
	NoDeployHour = -1
)

// Config captures runtime parameters for an announcement run.
type Config struct {
	FilterID        string
	ListFile        string
	Organization    string
	Flow            string
	DisplayName     string
	FlowdockURL     string
	JiraURL         string
	DeployTimeField string
	DeployHour      int
	Hashtag         bool
	PostsPerSecond  float64
	CredentialsFile string
	Debug           bool
	Version         string
}

// ConfigOption mutates a Config during construction.
type ConfigOption func(*Config)

// NewConfig creates a Config with defaults, applies provided options and validates the result.
func NewConfig(opts ...ConfigOption) (Config, error) {
	cfg := Config{
		DeployHour: DefaultDeployHour,
		Hashtag:    true,
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) validate() error {
	if c.FilterID == "" && c.ListFile == "" {
		return ErrNoInput
	}
	if strings.TrimSpace(c.Organization) == "" {
		return errors.New("flowdock organization must be provided")
	}
	if strings.TrimSpace(c.Flow) == "" {
		return errors.New("flowdock flow must be provided")
	}
	if c.FilterID != "" && strings.TrimSpace(c.JiraURL) == "" {
		return errors.New("jira URL must be provided when querying a filter")
	}
	if c.DeployHour < NoDeployHour || c.DeployHour > 23 {
		return fmt.Errorf("deploy hour %d must be between 0 and 23, or %d to disable", c.DeployHour, NoDeployHour)
	}
	if c.PostsPerSecond < 0 {
		return fmt.Errorf("posts per second must not be negative, got %v", c.PostsPerSecond)
	}
	return nil
}

// deployHour returns the hour filter, or nil when the hour check is disabled.
func (c Config) deployHour() *int {
	if c.DeployHour == NoDeployHour {
		return nil
	}
	hour := c.DeployHour
	return &hour
}

// WithFilterID selects the saved tracker filter to announce.
func WithFilterID(id string) ConfigOption {
	return func(cfg *Config) {
		cfg.FilterID = strings.TrimSpace(id)
	}
}

// WithListFile selects a deploy list file or glob pattern to announce.
func WithListFile(path string) ConfigOption {
	return func(cfg *Config) {
		cfg.ListFile = path
	}
}

// WithFlow sets the Flowdock organization and flow receiving the messages.
func WithFlow(organization, flow string) ConfigOption {
	return func(cfg *Config) {
		cfg.Organization = organization
		cfg.Flow = flow
	}
}

// WithDisplayName sets the external user name shown on each message.
func WithDisplayName(name string) ConfigOption {
	return func(cfg *Config) {
		cfg.DisplayName = name
	}
}

// WithFlowdockURL overrides the Flowdock API base URL.
func WithFlowdockURL(url string) ConfigOption {
	return func(cfg *Config) {
		cfg.FlowdockURL = url
	}
}

// WithJiraURL sets the Jira base URL used for queries and issue links.
func WithJiraURL(url string) ConfigOption {
	return func(cfg *Config) {
		cfg.JiraURL = url
	}
}

// WithDeployTimeField overrides the Jira field holding the deploy time.
func WithDeployTimeField(field string) ConfigOption {
	return func(cfg *Config) {
		cfg.DeployTimeField = field
	}
}

// WithDeployHour sets the required deploy hour; NoDeployHour disables the check.
func WithDeployHour(hour int) ConfigOption {
	return func(cfg *Config) {
		cfg.DeployHour = hour
	}
}

// WithHashtag toggles the dated deploy hashtag appended to each message.
func WithHashtag(enabled bool) ConfigOption {
	return func(cfg *Config) {
		cfg.Hashtag = enabled
	}
}

// WithPostsPerSecond paces messages; zero means unlimited.
func WithPostsPerSecond(rate float64) ConfigOption {
	return func(cfg *Config) {
		cfg.PostsPerSecond = rate
	}
}

// WithCredentialsFile overrides the location of the stored credentials.
func WithCredentialsFile(path string) ConfigOption {
	return func(cfg *Config) {
		cfg.CredentialsFile = path
	}
}

// WithDebug toggles verbose logging.
func WithDebug(enabled bool) ConfigOption {
	return func(cfg *Config) {
		cfg.Debug = enabled
	}
}

// WithVersion sets the application version used in log output.
func WithVersion(version string) ConfigOption {
	return func(cfg *Config) {
		cfg.Version = version
	}
}
