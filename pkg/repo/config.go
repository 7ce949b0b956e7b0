package repo

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// DefaultTagPrefix is used when a repository does not configure
// release.tag_prefix.
const DefaultTagPrefix = "v"

// Config stores repository-local settings.
type Config struct {
	Remotes map[string]string `toml:"remotes,omitempty"`
	Release ReleaseConfig     `toml:"release"`
}

// ReleaseConfig holds the per-repository release tagging settings.
type ReleaseConfig struct {
	// TagPrefix is prepended to the version; nil means DefaultTagPrefix and
	// an explicit empty string means no prefix.
	TagPrefix  *string `toml:"tag_prefix,omitempty"`
	Remote     string  `toml:"remote,omitempty"`
	Annotate   bool    `toml:"annotate,omitempty"`
	Message    string  `toml:"message,omitempty"`
	Tagger     string  `toml:"tagger,omitempty"`
	SigningKey string  `toml:"signing_key,omitempty"`
}

// Prefix returns the effective tag prefix.
func (c ReleaseConfig) Prefix() string {
	if c.TagPrefix == nil {
		return DefaultTagPrefix
	}
	return *c.TagPrefix
}

func (r *Repo) configPath() string {
	return filepath.Join(r.GotDir, "config.toml")
}

// ReadConfig reads .got/config.toml. Missing config returns an empty config.
func (r *Repo) ReadConfig() (*Config, error) {
	cfg := &Config{Remotes: make(map[string]string)}
	data, err := os.ReadFile(r.configPath())
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("read config: decode: %w", err)
	}
	if cfg.Remotes == nil {
		cfg.Remotes = make(map[string]string)
	}
	return cfg, nil
}

// WriteConfig atomically writes .got/config.toml.
func (r *Repo) WriteConfig(cfg *Config) error {
	if cfg == nil {
		cfg = &Config{}
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("write config: encode: %w", err)
	}
	return writeFileAtomic(r.GotDir, r.configPath(), ".config-tmp-*", buf.Bytes())
}

// SetRemote stores/updates a named remote URL in repository config.
func (r *Repo) SetRemote(name, remoteURL string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("set remote: remote name is required")
	}
	remoteURL = strings.TrimSpace(remoteURL)
	if remoteURL == "" {
		return fmt.Errorf("set remote: remote URL is required")
	}

	cfg, err := r.ReadConfig()
	if err != nil {
		return err
	}
	cfg.Remotes[name] = remoteURL
	return r.WriteConfig(cfg)
}

// RemoteURL returns the configured URL for the given remote name.
func (r *Repo) RemoteURL(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("remote name is required")
	}

	cfg, err := r.ReadConfig()
	if err != nil {
		return "", err
	}
	url, ok := cfg.Remotes[name]
	if !ok || strings.TrimSpace(url) == "" {
		return "", fmt.Errorf("remote %q is not configured", name)
	}
	return url, nil
}

// SetConfigValue sets a dotted key such as "release.tag_prefix".
func (r *Repo) SetConfigValue(key, value string) error {
	cfg, err := r.ReadConfig()
	if err != nil {
		return err
	}

	section, name, ok := strings.Cut(strings.TrimSpace(key), ".")
	if !ok {
		return fmt.Errorf("config: key %q must be <section>.<name>", key)
	}
	switch section {
	case "remotes":
		cfg.Remotes[name] = value
	case "release":
		if err := setReleaseValue(&cfg.Release, name, value); err != nil {
			return err
		}
	default:
		return fmt.Errorf("config: unknown section %q", section)
	}
	return r.WriteConfig(cfg)
}

func setReleaseValue(rc *ReleaseConfig, name, value string) error {
	switch name {
	case "tag_prefix":
		v := value
		rc.TagPrefix = &v
	case "remote":
		rc.Remote = value
	case "annotate":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("config: release.annotate: %w", err)
		}
		rc.Annotate = b
	case "message":
		rc.Message = value
	case "tagger":
		rc.Tagger = value
	case "signing_key":
		rc.SigningKey = value
	default:
		return fmt.Errorf("config: unknown key release.%s", name)
	}
	return nil
}

func writeFileAtomic(dir, dest, pattern string, data []byte) error {
	tmp, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return fmt.Errorf("write %s: tmpfile: %w", filepath.Base(dest), err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", filepath.Base(dest), err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write %s: close: %w", filepath.Base(dest), err)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write %s: rename: %w", filepath.Base(dest), err)
	}
	return nil
}
