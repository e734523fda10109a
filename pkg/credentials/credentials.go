// Package credentials stores per-host login details for the translation
// service. The store is a YAML file under the user's XDG config
// directory; environment variables override individual fields.
package credentials

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/adrg/xdg"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/goccy/go-yaml"
	"github.com/spf13/viper"

	"github.com/agentstation/txsync/pkg/constants"
	"github.com/agentstation/txsync/pkg/errors"
)

// RelPath is the store location relative to the XDG config home.
const RelPath = "txsync/credentials.yaml"

// Credentials for one host.
type Credentials struct {
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
	Token    string `yaml:"token,omitempty"`
	// Hostname is the API host when it differs from the key host.
	Hostname string `yaml:"hostname,omitempty"`
}

// Empty reports whether no secret is set.
func (c Credentials) Empty() bool {
	return c.Token == "" && (c.Username == "" || c.Password == "")
}

type file struct {
	Hosts map[string]Credentials `yaml:"hosts"`
}

// Store is a host -> credentials table. It is read-only during a sync pass.
type Store struct {
	fs   billy.Filesystem
	path string
	env  *viper.Viper

	mu    sync.RWMutex
	hosts map[string]Credentials
}

// DefaultPath returns the store path under the XDG config home, creating
// parent directories.
func DefaultPath() (string, error) {
	path, err := xdg.ConfigFile(RelPath)
	if err != nil {
		return "", errors.WrapIO("create", RelPath, err)
	}
	return path, nil
}

// newEnv binds the override variables.
func newEnv() *viper.Viper {
	v := viper.New()
	_ = v.BindEnv("token", "TXSYNC_TOKEN", "TX_TOKEN")
	_ = v.BindEnv("username", "TXSYNC_USERNAME")
	_ = v.BindEnv("password", "TXSYNC_PASSWORD")
	return v
}

// Load reads the store at path. A missing file is an empty store.
func Load(fs billy.Filesystem, path string) (*Store, error) {
	s := &Store{fs: fs, path: path, env: newEnv(), hosts: map[string]Credentials{}}

	data, err := util.ReadFile(fs, path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}

	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.WrapParse("yaml", path, err)
	}
	for host, c := range f.Hosts {
		s.hosts[normalize(host)] = c
	}
	return s, nil
}

// Path returns the store file location.
func (s *Store) Path() string {
	return s.path
}

// Get returns the credentials for host with environment overrides
// applied. A host without usable credentials is a CredentialsError.
func (s *Store) Get(host string) (Credentials, error) {
	s.mu.RLock()
	c, ok := s.hosts[normalize(host)]
	s.mu.RUnlock()

	if token := s.env.GetString("token"); token != "" {
		c.Token = token
		ok = true
	}
	if username := s.env.GetString("username"); username != "" {
		c.Username = username
	}
	if password := s.env.GetString("password"); password != "" {
		c.Password = password
	}

	if !ok && c.Empty() {
		return Credentials{}, errors.NewCredentialsError(host, "run 'txsync init' or set TXSYNC_TOKEN", nil)
	}
	if c.Empty() {
		return Credentials{}, errors.NewCredentialsError(host, "no token or username/password", nil)
	}
	if c.Hostname == "" {
		c.Hostname = host
	}
	return c, nil
}

// Set stores credentials for host.
func (s *Store) Set(host string, c Credentials) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hosts[normalize(host)] = c
}

// Hosts returns the configured hosts, sorted.
func (s *Store) Hosts() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	hosts := make([]string, 0, len(s.hosts))
	for h := range s.hosts {
		hosts = append(hosts, h)
	}
	sort.Strings(hosts)
	return hosts
}

// Save writes the store with owner-only permissions.
func (s *Store) Save() error {
	s.mu.RLock()
	data, err := yaml.Marshal(file{Hosts: s.hosts})
	s.mu.RUnlock()
	if err != nil {
		return errors.WrapParse("yaml", s.path, err)
	}

	if err := s.fs.MkdirAll(filepath.Dir(s.path), constants.DirPermissions); err != nil {
		return errors.WrapIO("create", filepath.Dir(s.path), err)
	}
	if err := util.WriteFile(s.fs, s.path, data, constants.SecureFilePermissions); err != nil {
		return errors.WrapIO("write", s.path, err)
	}
	return nil
}

func normalize(host string) string {
	return strings.TrimRight(strings.TrimSpace(host), "/")
}
