package config

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/a8m/envsubst"
	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
	"github.com/yosuke-furukawa/json5/encoding/json5"
)

// Format is the encoding of a config file.
type Format string

const (
	// FormatJSON is a .json file. Comments and trailing commas are allowed.
	FormatJSON Format = "json"
	// FormatTOML is a .toml file.
	FormatTOML Format = "toml"
)

// FormatFromPath picks the format from the file extension.
func FormatFromPath(filePath string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", errors.Errorf("unsupported config file extension %q", filepath.Ext(filePath))
	}
}

// Read reads and validates an axis config from the given file. Environment variables in
// the file are expanded first.
func Read(filePath string) (*Axis, error) {
	format, err := FormatFromPath(filePath)
	if err != nil {
		return nil, err
	}
	buf, err := envsubst.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	conf, err := FromReader(bytes.NewReader(buf), format)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %q", filePath)
	}
	conf.ConfigFilePath = filePath
	return conf, nil
}

// FromReader decodes and validates an axis config.
func FromReader(r io.Reader, format Format) (*Axis, error) {
	attrs := map[string]interface{}{}
	switch format {
	case FormatJSON:
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		if err := json5.Unmarshal(data, &attrs); err != nil {
			return nil, errors.Wrap(err, "failed to decode config from json")
		}
	case FormatTOML:
		if _, err := toml.NewDecoder(r).Decode(&attrs); err != nil {
			return nil, errors.Wrap(err, "failed to decode config from toml")
		}
	default:
		return nil, errors.Errorf("unknown config format %q", format)
	}

	conf, err := FromAttributes(attrs)
	if err != nil {
		return nil, err
	}
	if err := conf.Validate("axis"); err != nil {
		return nil, err
	}
	return conf, nil
}

// FromAttributes converts a raw attribute map into an Axis. Integers are accepted where
// floats are expected. Unknown keys are rejected.
func FromAttributes(attrs map[string]interface{}) (*Axis, error) {
	var conf Axis
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           &conf,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(attrs); err != nil {
		return nil, errors.Wrap(err, "failed to decode axis config")
	}
	return &conf, nil
}
