package project

import (
	"path"
	"strconv"

	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"

	"github.com/agentstation/txsync/pkg/constants"
	"github.com/agentstation/txsync/pkg/errors"
	"github.com/agentstation/txsync/pkg/remote"
	"github.com/agentstation/txsync/pkg/resources"
)

// Format is the encoding of the project config file.
type Format string

// Supported config formats.
const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// Option keys accepted by Config.Option.
const (
	KeyHost        = "host"
	KeyLangMap     = "lang_map"
	KeyMinimumPerc = "minimum_perc"
	KeyMode        = "mode"
	KeyType        = "type"
	KeySourceLang  = "source_lang"
	KeySourceFile  = "source_file"
	KeyFileFilter  = "file_filter"
)

// Config is the content of .tx/config.yaml or .tx/config.toml.
type Config struct {
	Main      Main        `yaml:"main" toml:"main"`
	Resources []*Resource `yaml:"resources,omitempty" toml:"resources,omitempty"`
}

// Main holds project wide defaults.
type Main struct {
	Host        string `yaml:"host,omitempty" toml:"host,omitempty"`
	LangMap     string `yaml:"lang_map,omitempty" toml:"lang_map,omitempty"`
	MinimumPerc *int   `yaml:"minimum_perc,omitempty" toml:"minimum_perc,omitempty"`
	Mode        string `yaml:"mode,omitempty" toml:"mode,omitempty"`
	Type        string `yaml:"type,omitempty" toml:"type,omitempty"`
}

// Resource is one configured resource.
type Resource struct {
	ID          resources.ID `yaml:"id" toml:"id"`
	SourceLang  string       `yaml:"source_lang,omitempty" toml:"source_lang,omitempty"`
	SourceFile  string       `yaml:"source_file,omitempty" toml:"source_file,omitempty"`
	FileFilter  string       `yaml:"file_filter,omitempty" toml:"file_filter,omitempty"`
	Type        string       `yaml:"type,omitempty" toml:"type,omitempty"`
	Host        string       `yaml:"host,omitempty" toml:"host,omitempty"`
	LangMap     string       `yaml:"lang_map,omitempty" toml:"lang_map,omitempty"`
	MinimumPerc *int         `yaml:"minimum_perc,omitempty" toml:"minimum_perc,omitempty"`
	Mode        string       `yaml:"mode,omitempty" toml:"mode,omitempty"`
	// Translations maps a local language code to an explicit file path.
	Translations map[string]string `yaml:"translations,omitempty" toml:"translations,omitempty"`
}

// Resource returns the resource with id.
func (c *Config) Resource(id resources.ID) (*Resource, bool) {
	for _, r := range c.Resources {
		if r.ID == id {
			return r, true
		}
	}
	return nil, false
}

// IDs returns the configured resource IDs in file order.
func (c *Config) IDs() []resources.ID {
	ids := make([]resources.ID, len(c.Resources))
	for i, r := range c.Resources {
		ids[i] = r.ID
	}
	return ids
}

// Option returns key for the resource, falling back to the main section.
// Keys that only exist on resources have no fallback.
func (c *Config) Option(id resources.ID, key string) (string, bool) {
	r, _ := c.Resource(id)
	if r == nil {
		r = &Resource{}
	}

	var local, global string
	switch key {
	case KeyHost:
		local, global = r.Host, c.Main.Host
	case KeyLangMap:
		local, global = r.LangMap, c.Main.LangMap
	case KeyMode:
		local, global = r.Mode, c.Main.Mode
	case KeyType:
		local, global = r.Type, c.Main.Type
	case KeyMinimumPerc:
		if r.MinimumPerc != nil {
			return strconv.Itoa(*r.MinimumPerc), true
		}
		if c.Main.MinimumPerc != nil {
			return strconv.Itoa(*c.Main.MinimumPerc), true
		}
		return "", false
	case KeySourceLang:
		local = r.SourceLang
	case KeySourceFile:
		local = r.SourceFile
	case KeyFileFilter:
		local = r.FileFilter
	default:
		return "", false
	}

	if local != "" {
		return local, true
	}
	if global != "" {
		return global, true
	}
	return "", false
}

// Validate checks resource ids, duplicates and option values.
func (c *Config) Validate() error {
	if err := validateOptions("main", c.Main.MinimumPerc, c.Main.Mode); err != nil {
		return err
	}
	seen := make(map[resources.ID]bool, len(c.Resources))
	for _, r := range c.Resources {
		if _, err := resources.ParseID(string(r.ID)); err != nil {
			return errors.NewConfigError("resources", "invalid resource id "+string(r.ID), err)
		}
		if seen[r.ID] {
			return errors.NewConfigError("resources", "duplicate resource "+string(r.ID), nil)
		}
		seen[r.ID] = true
		if r.SourceLang == "" {
			return errors.NewConfigError(string(r.ID), "source_lang is required", nil)
		}
		if err := validateOptions(string(r.ID), r.MinimumPerc, r.Mode); err != nil {
			return err
		}
	}
	return nil
}

func validateOptions(section string, perc *int, mode string) error {
	if perc != nil && (*perc < 0 || *perc > constants.MaxPercentage) {
		return errors.NewConfigError(section, "minimum_perc "+strconv.Itoa(*perc)+" is not between 0 and 100", nil)
	}
	if _, err := remote.ParseMode(mode); err != nil {
		return errors.NewConfigError(section, "invalid mode "+strconv.Quote(mode), err)
	}
	return nil
}

// decodeConfig parses data in the given format.
func decodeConfig(format Format, name string, data []byte) (*Config, error) {
	cfg := &Config{}
	var err error
	switch format {
	case FormatTOML:
		err = toml.Unmarshal(data, cfg)
	default:
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, errors.WrapParse(string(format), name, err)
	}
	return cfg, nil
}

// encodeConfig renders cfg in the given format.
func encodeConfig(format Format, cfg *Config) ([]byte, error) {
	switch format {
	case FormatTOML:
		return toml.Marshal(cfg)
	default:
		return yaml.Marshal(cfg)
	}
}

// formatForFile picks the format from a config file name.
func formatForFile(name string) Format {
	if path.Ext(name) == ".toml" {
		return FormatTOML
	}
	return FormatYAML
}
