// Package config merges CLI flags with an optional YAML settings file,
// the way sqldef's database.ParseGeneratorConfig layers a --config file
// on top of flag-parsed options. CLI flags always win: the YAML file
// only fills in fields the user did not set on the command line.
package config

import (
	"os"

	"gopkg.in/yaml.v2"
)

// File is the on-disk shape of a fieldflow config file.
type File struct {
	IFS            string `yaml:"ifs"`
	IRS            string `yaml:"irs"`
	Quote          string `yaml:"quote"`
	ImplicitHeader bool   `yaml:"implicit_header"`
	OutputFormat   string `yaml:"output_format"`
}

// Load reads and parses a YAML config file. An empty path is not an
// error: it returns a zero-value File, so callers can unconditionally
// merge it in.
func Load(path string) (File, error) {
	var f File
	if path == "" {
		return f, nil
	}
	buf, err := os.ReadFile(path)
	if err != nil {
		return f, err
	}
	if err := yaml.Unmarshal(buf, &f); err != nil {
		return f, err
	}
	return f, nil
}

// MergeString returns flagVal if it is non-empty, else fileVal.
func MergeString(flagVal, fileVal string) string {
	if flagVal != "" {
		return flagVal
	}
	return fileVal
}
