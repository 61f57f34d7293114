package box

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spf13/afero"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// Default endpoints and limits.
const (
	DefaultBaseURL    = "https://api.box.com/2.0"
	DefaultTokenURL   = "https://api.box.com/oauth2/token"
	DefaultTimeout    = 60 * time.Second
	DefaultMaxRetries = 5
	DefaultRetryDelay = time.Second

	DefaultAccount = "default"
)

// Subject types for the client credentials grant.
const (
	SubjectEnterprise = "enterprise"
	SubjectUser       = "user"
)

// Config holds the settings for one Box account.
type Config struct {
	BaseURL        string        `yaml:"base_url"`
	TokenURL       string        `yaml:"token_url"`
	DeveloperToken string        `yaml:"developer_token"`
	ClientID       string        `yaml:"client_id"`
	ClientSecret   string        `yaml:"client_secret"`
	SubjectType    string        `yaml:"subject_type"`
	SubjectID      string        `yaml:"subject_id"`
	Timeout        time.Duration `yaml:"timeout"`
	MaxRetries     *uint         `yaml:"max_retries"`
	RetryDelay     time.Duration `yaml:"retry_delay"`
}

// File is the on-disk configuration. Accounts are keyed by name.
type File struct {
	Accounts map[string]Config `yaml:"accounts"`
}

// DefaultConfig returns a Config with default endpoints and limits and no credentials.
func DefaultConfig() Config {
	return Config{
		BaseURL:     DefaultBaseURL,
		TokenURL:    DefaultTokenURL,
		SubjectType: SubjectEnterprise,
		Timeout:     DefaultTimeout,
		RetryDelay:  DefaultRetryDelay,
	}
}

// Retries returns the number of retries after a failed request. An unset
// MaxRetries means DefaultMaxRetries; an explicit 0 disables retries.
func (c Config) Retries() uint {
	if c.MaxRetries == nil {
		return DefaultMaxRetries
	}
	return *c.MaxRetries
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/boxmcp/config.yaml or its
// platform equivalent.
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(dir, "boxmcp", "config.yaml")
}

// LoadFile reads a configuration file. When path is empty the default
// location is used and a missing file yields an empty File.
func LoadFile(path string) (*File, error) {
	return LoadFileFS(afero.NewOsFs(), path)
}

// LoadFileFS is LoadFile on the given filesystem.
func LoadFileFS(fsys afero.Fs, path string) (*File, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath()
	}

	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return &File{Accounts: map[string]Config{}}, nil
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if f.Accounts == nil {
		f.Accounts = map[string]Config{}
	}
	return &f, nil
}

// Account returns the named account merged over the defaults. The default
// account is further overridden by BOX_* environment variables.
func (f *File) Account(name string) (Config, error) {
	if name == "" {
		name = DefaultAccount
	}

	cfg := DefaultConfig()
	entry, ok := f.Accounts[name]
	if !ok && name != DefaultAccount {
		return Config{}, fmt.Errorf("account %q is not configured", name)
	}
	cfg.merge(entry)

	if name == DefaultAccount {
		cfg.applyEnv()
	}
	return cfg, nil
}

// AccountNames lists the accounts declared in the file.
func (f *File) AccountNames() []string {
	names := make([]string, 0, len(f.Accounts))
	for name := range f.Accounts {
		names = append(names, name)
	}
	return names
}

// LoadAccountConfig loads the file at path and returns the named account.
func LoadAccountConfig(path, account string) (Config, error) {
	f, err := LoadFile(path)
	if err != nil {
		return Config{}, err
	}
	return f.Account(account)
}

// merge copies every non-zero field of o into c. MaxRetries is copied
// whenever it is set, including to 0.
func (c *Config) merge(o Config) {
	if o.BaseURL != "" {
		c.BaseURL = o.BaseURL
	}
	if o.TokenURL != "" {
		c.TokenURL = o.TokenURL
	}
	if o.DeveloperToken != "" {
		c.DeveloperToken = o.DeveloperToken
	}
	if o.ClientID != "" {
		c.ClientID = o.ClientID
	}
	if o.ClientSecret != "" {
		c.ClientSecret = o.ClientSecret
	}
	if o.SubjectType != "" {
		c.SubjectType = o.SubjectType
	}
	if o.SubjectID != "" {
		c.SubjectID = o.SubjectID
	}
	if o.Timeout != 0 {
		c.Timeout = o.Timeout
	}
	if o.MaxRetries != nil {
		c.MaxRetries = o.MaxRetries
	}
	if o.RetryDelay != 0 {
		c.RetryDelay = o.RetryDelay
	}
}

func (c *Config) applyEnv() {
	c.merge(Config{
		BaseURL:        os.Getenv("BOX_API_BASE_URL"),
		TokenURL:       os.Getenv("BOX_TOKEN_URL"),
		DeveloperToken: os.Getenv("BOX_DEVELOPER_TOKEN"),
		ClientID:       os.Getenv("BOX_CLIENT_ID"),
		ClientSecret:   os.Getenv("BOX_CLIENT_SECRET"),
		SubjectType:    os.Getenv("BOX_SUBJECT_TYPE"),
		SubjectID:      os.Getenv("BOX_SUBJECT_ID"),
		Timeout:        getEnvDuration("BOX_TIMEOUT"),
		MaxRetries:     getEnvUint("BOX_MAX_RETRIES"),
	})
}

// HasCredentials reports whether a developer token or client credentials are set.
func (c Config) HasCredentials() bool {
	return c.DeveloperToken != "" || (c.ClientID != "" && c.ClientSecret != "")
}

// Validate checks that the configuration can be used to build a Client.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.BaseURL, validation.Required, validation.By(absoluteURL)),
		validation.Field(&c.TokenURL, validation.When(c.ClientID != "", validation.Required, validation.By(absoluteURL))),
		validation.Field(&c.DeveloperToken,
			validation.When(c.ClientID == "", validation.Required.Error("a developer token or client credentials are required"))),
		validation.Field(&c.ClientSecret, validation.When(c.ClientID != "", validation.Required)),
		validation.Field(&c.SubjectType, validation.In(SubjectEnterprise, SubjectUser)),
		validation.Field(&c.SubjectID, validation.When(c.ClientID != "", validation.Required)),
		validation.Field(&c.Timeout, validation.Min(time.Duration(0))),
	)
}

func absoluteURL(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	u, err := url.Parse(s)
	if err != nil {
		return err
	}
	if u.Scheme == "" || u.Host == "" {
		return errors.New("must be an absolute URL")
	}
	return nil
}

func getEnvDuration(key string) time.Duration {
	d, err := cast.ToDurationE(os.Getenv(key))
	if err != nil {
		return 0
	}
	return d
}

// getEnvUint returns nil when key is unset or not a number.
func getEnvUint(key string) *uint {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := cast.ToUintE(v)
	if err != nil {
		return nil
	}
	return &n
}
