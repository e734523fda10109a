// Package project loads and saves a txsync project: the .tx directory at
// the project root, its config file, and the translation files the
// config describes.
package project

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"

	"github.com/agentstation/txsync/pkg/constants"
	"github.com/agentstation/txsync/pkg/errors"
	"github.com/agentstation/txsync/pkg/langmap"
	"github.com/agentstation/txsync/pkg/resources"
)

// Project is an opened project. Paths handed to its filesystem are
// absolute.
type Project struct {
	Root string

	fs         billy.Filesystem
	configPath string
	format     Format

	mu     sync.RWMutex
	saveMu sync.Mutex
	config *Config
}

// OSFilesystem returns the host filesystem rooted at "/".
func OSFilesystem() billy.Filesystem {
	return osfs.New("/")
}

// FindRoot walks up from start until it finds a directory containing .tx.
func FindRoot(fs billy.Filesystem, start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", errors.WrapIO("stat", start, err)
	}
	for {
		info, err := fs.Stat(filepath.Join(dir, constants.ProjectDir))
		if err == nil && info.IsDir() {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.NewNotInitializedError(start, "no "+constants.ProjectDir+" directory found")
		}
		dir = parent
	}
}

// Open finds the project containing start and loads its config.
func Open(fs billy.Filesystem, start string) (*Project, error) {
	root, err := FindRoot(fs, start)
	if err != nil {
		return nil, err
	}

	for _, name := range []string{constants.ConfigFileYAML, constants.ConfigFileTOML} {
		configPath := filepath.Join(root, constants.ProjectDir, name)
		data, err := util.ReadFile(fs, configPath)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, errors.WrapIO("read", configPath, err)
		}

		format := formatForFile(name)
		cfg, err := decodeConfig(format, configPath, data)
		if err != nil {
			return nil, errors.NewConfigError("project", "cannot parse "+configPath, err)
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return &Project{Root: root, fs: fs, configPath: configPath, format: format, config: cfg}, nil
	}

	return nil, errors.NewNotInitializedError(root, "no config file in "+constants.ProjectDir)
}

// Init creates .tx and an empty config under root. An existing config is
// an error.
func Init(fs billy.Filesystem, root string, host string, format Format) (*Project, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.WrapIO("stat", root, err)
	}
	if format == "" {
		format = FormatYAML
	}
	name := constants.ConfigFileYAML
	if format == FormatTOML {
		name = constants.ConfigFileTOML
	}

	for _, existing := range []string{constants.ConfigFileYAML, constants.ConfigFileTOML} {
		if _, err := fs.Stat(filepath.Join(root, constants.ProjectDir, existing)); err == nil {
			return nil, errors.NewConfigError("project", "already initialized at "+root, nil)
		}
	}

	if host == "" {
		host = constants.DefaultHost
	}
	p := &Project{
		Root:       root,
		fs:         fs,
		configPath: filepath.Join(root, constants.ProjectDir, name),
		format:     format,
		config:     &Config{Main: Main{Host: host}},
	}
	if err := p.Save(); err != nil {
		return nil, err
	}
	return p, nil
}

// Format returns the encoding of the config file.
func (p *Project) Format() Format {
	return p.format
}

// ConfigPath returns the absolute config file path.
func (p *Project) ConfigPath() string {
	return p.configPath
}

// Filesystem returns the filesystem the project lives on.
func (p *Project) Filesystem() billy.Filesystem {
	return p.fs
}

// Save writes the config back in its original format.
func (p *Project) Save() error {
	p.saveMu.Lock()
	defer p.saveMu.Unlock()

	p.mu.RLock()
	data, err := encodeConfig(p.format, p.config)
	p.mu.RUnlock()
	if err != nil {
		return errors.NewConfigError("project", "cannot encode config", err)
	}
	return p.WriteFile(p.configPath, data)
}

// IDs returns the configured resource IDs in config order.
func (p *Project) IDs() []resources.ID {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.config.IDs()
}

// Resource returns a copy of the resource configuration.
func (p *Project) Resource(id resources.ID) (Resource, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	r, ok := p.config.Resource(id)
	if !ok {
		return Resource{}, false
	}
	c := *r
	c.Translations = make(map[string]string, len(r.Translations))
	for k, v := range r.Translations {
		c.Translations[k] = v
	}
	return c, true
}

// Option looks up key for resource id, falling back to the main section.
func (p *Project) Option(id resources.ID, key string) (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.config.Option(id, key)
}

// Host returns the service host for a resource.
func (p *Project) Host(id resources.ID) string {
	if host, ok := p.Option(id, KeyHost); ok {
		return host
	}
	return constants.DefaultHost
}

// MinimumPerc returns the resource or project minimum_perc, if set.
func (p *Project) MinimumPerc(id resources.ID) *int {
	v, ok := p.Option(id, KeyMinimumPerc)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil
	}
	return &n
}

// LangMap builds the effective language map of a resource: the project
// map overridden by the resource map.
func (p *Project) LangMap(id resources.ID) (*langmap.Map, error) {
	p.mu.RLock()
	global := p.config.Main.LangMap
	local := ""
	if r, ok := p.config.Resource(id); ok {
		local = r.LangMap
	}
	p.mu.RUnlock()

	projectMap, err := langmap.Parse(global)
	if err != nil {
		return nil, err
	}
	resourceMap, err := langmap.Parse(local)
	if err != nil {
		return nil, errors.NewConfigError(string(id), "invalid lang_map", err)
	}
	return langmap.Merged(projectMap, resourceMap), nil
}

// FullPath resolves a config path against the project root.
func (p *Project) FullPath(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(p.Root, filepath.FromSlash(path))
}

// RelPath returns path relative to the root when it lies inside it.
func (p *Project) RelPath(path string) string {
	rel, err := filepath.Rel(p.Root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return filepath.ToSlash(rel)
}

// Exists reports whether path exists.
func (p *Project) Exists(path string) bool {
	_, err := p.fs.Stat(p.FullPath(path))
	return err == nil
}

// ModTime returns the modification time of path.
func (p *Project) ModTime(path string) (time.Time, bool) {
	info, err := p.fs.Stat(p.FullPath(path))
	if err != nil {
		return time.Time{}, false
	}
	return info.ModTime(), true
}

// ReadFile reads path.
func (p *Project) ReadFile(path string) ([]byte, error) {
	full := p.FullPath(path)
	data, err := util.ReadFile(p.fs, full)
	if err != nil {
		return nil, errors.WrapIO("read", full, err)
	}
	return data, nil
}

// WriteFile writes data through a temporary file in the target directory
// and renames it into place, creating parent directories as needed.
func (p *Project) WriteFile(path string, data []byte) error {
	full := p.FullPath(path)
	dir := filepath.Dir(full)
	if err := p.fs.MkdirAll(dir, constants.DirPermissions); err != nil {
		return errors.WrapIO("create", dir, err)
	}

	tmp, err := util.TempFile(p.fs, dir, ".txsync-")
	if err != nil {
		return errors.WrapIO("create", dir, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = p.fs.Remove(tmpName)
		return errors.WrapIO("write", full, err)
	}
	if err := tmp.Close(); err != nil {
		_ = p.fs.Remove(tmpName)
		return errors.WrapIO("write", full, err)
	}

	if err := p.fs.Rename(tmpName, full); err != nil {
		// Some filesystems refuse to rename onto an existing file.
		if rmErr := p.fs.Remove(full); rmErr == nil {
			err = p.fs.Rename(tmpName, full)
		}
		if err != nil {
			_ = p.fs.Remove(tmpName)
			return errors.WrapIO("write", full, err)
		}
	}
	return nil
}
