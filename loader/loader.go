// Package loader resolves bridge configuration from a file, playing the
// role a build-time virtual module plays in bundler ecosystems: application
// code asks for one fixed logical name and gets whatever configuration file
// the deployment provides, wherever it lives on disk.
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	bridge "github.com/goliatone/go-auth-bridge"
	"github.com/goliatone/go-errors"
	"github.com/spf13/viper"
)

// Specifier is the fixed logical name configuration is requested under.
const Specifier = "auth:config"

// marker prefixes the specifier with a non-printable sentinel so a resolved
// id can never collide with a real filesystem path.
const marker = "\x00" + Specifier

// DefaultConfigFile is the logical path tried when none is given. The
// extension is discovered, see extensions.
const DefaultConfigFile = "./auth.config"

// extensions are tried in order when the configured path has none.
var extensions = []string{".yaml", ".yml", ".json", ".toml"}

// ErrConfigNotResolved is the only error kind this package originates:
// the named configuration file could not be found. It is fatal; there is
// no fallback configuration.
var ErrConfigNotResolved = errors.New("auth config file not resolved", errors.CategoryNotFound).
	WithTextCode("auth_config_not_resolved")

// Resolve maps the virtual specifier to its internal marker id. Every other
// id returns empty, signalling "not handled" so callers fall through to
// their normal resolution.
func Resolve(id string) string {
	if id == Specifier {
		return marker
	}
	return ""
}

// IsMarker reports whether an id is the internal marker produced by Resolve.
func IsMarker(id string) bool {
	return id == marker
}

// Loader reads bridge configuration files.
type Loader struct {
	configFile string
}

// Option configures a Loader.
type Option func(*Loader)

// WithConfigFile overrides the logical configuration file path.
func WithConfigFile(path string) Option {
	return func(l *Loader) {
		if path != "" {
			l.configFile = path
		}
	}
}

// New builds a Loader with the default config file path.
func New(opts ...Option) *Loader {
	l := &Loader{
		configFile: DefaultConfigFile,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load resolves an id previously returned by Resolve and reads the
// configuration file. Ids other than the marker are not handled and return
// a nil config with no error, mirroring Resolve's fall-through contract.
func (l *Loader) Load(id string) (*bridge.Config, error) {
	if !IsMarker(id) {
		return nil, nil
	}
	return l.Read()
}

// Read locates and parses the configuration file. The raw, unnormalized
// configuration is returned; DefineConfig runs at request-handling setup,
// not at load time.
func (l *Loader) Read() (*bridge.Config, error) {
	path, err := l.resolvePath()
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrap(err, errors.CategoryBadInput, "failed to parse auth config").
			WithMetadata(map[string]any{"path": path})
	}

	var cfg bridge.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, errors.CategoryBadInput, "failed to decode auth config").
			WithMetadata(map[string]any{"path": path})
	}

	return &cfg, nil
}

// resolvePath finds the concrete file behind the logical config path,
// trying known extensions when the path has none.
func (l *Loader) resolvePath() (string, error) {
	path := l.configFile

	if filepath.Ext(path) != "" {
		if fileExists(path) {
			return path, nil
		}
		return "", notResolved(path)
	}

	for _, ext := range extensions {
		candidate := path + ext
		if fileExists(candidate) {
			return candidate, nil
		}
	}

	return "", notResolved(path + "{" + strings.Join(extensions, ",") + "}")
}

func notResolved(path string) error {
	return errors.Wrap(ErrConfigNotResolved, errors.CategoryNotFound, fmt.Sprintf("could not resolve %q", path)).
		WithMetadata(map[string]any{"path": path})
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
