// Package datasets holds the dataset-type lookup table shared by the client
// commands and the backend copy handler.
package datasets

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Layout selects how source keys map to destination keys during a copy.
type Layout string

const (
	// LayoutKeep copies keys unchanged.
	LayoutKeep Layout = ""
	// LayoutStripPrefix removes the dataset prefix from each key once.
	LayoutStripPrefix Layout = "strip-prefix"
)

// Descriptor describes where a dataset lives and where it is copied to.
type Descriptor struct {
	Name       string `yaml:"name" json:"name"`
	MainBucket string `yaml:"main_bucket" json:"main_bucket"`
	SubBucket  string `yaml:"sub_bucket" json:"sub_bucket"`
	Prefix     string `yaml:"prefix" json:"prefix"`
	Layout     Layout `yaml:"layout,omitempty" json:"layout,omitempty"`
	// Include, when set, keeps only keys containing one of these fragments.
	Include []string `yaml:"include,omitempty" json:"include,omitempty"`
}

// Matches reports whether a source key belongs to the dataset.
func (d Descriptor) Matches(key string) bool {
	if !strings.HasPrefix(key, d.Prefix) {
		return false
	}
	if len(d.Include) == 0 {
		return true
	}
	for _, fragment := range d.Include {
		if strings.Contains(key, fragment) {
			return true
		}
	}
	return false
}

// DestinationKey maps a source key to its key in the sub bucket.
func (d Descriptor) DestinationKey(key string) string {
	if d.Layout == LayoutStripPrefix {
		return strings.Replace(key, d.Prefix, "", 1)
	}
	return key
}

// Table maps dataset-type identifiers to descriptors. Treat it as read-only.
type Table map[string]Descriptor

var builtin = Table{
	"audio": {
		Name:       "Audio Dataset",
		MainBucket: "eira1-general-datasets",
		SubBucket:  "eira1-audio-datasets",
		Prefix:     "audio/",
		Layout:     LayoutStripPrefix,
	},
	"video": {
		Name:       "Video Dataset",
		MainBucket: "eira1-general-datasets",
		SubBucket:  "eira1-video-datasets",
		Prefix:     "video/",
		Layout:     LayoutStripPrefix,
	},
	"images-transcripts": {
		Name:       "Images + Transcripts",
		MainBucket: "eira1-general-datasets",
		SubBucket:  "eira1-seg.images-seg.transcripts-datasets",
		Prefix:     "pairs/",
		Layout:     LayoutStripPrefix,
		Include:    []string{"/chunked_images/", "/chunked_transcripts/"},
	},
}

// Builtin returns a copy of the compiled-in table.
func Builtin() Table {
	table := make(Table, len(builtin))
	for key, d := range builtin {
		d.Include = append([]string(nil), d.Include...)
		table[key] = d
	}
	return table
}

// Lookup returns the descriptor for a dataset type.
func (t Table) Lookup(datasetType string) (Descriptor, bool) {
	d, ok := t[datasetType]
	return d, ok
}

// Types returns the dataset-type identifiers in sorted order.
func (t Table) Types() []string {
	types := make([]string, 0, len(t))
	for key := range t {
		types = append(types, key)
	}
	sort.Strings(types)
	return types
}

// DisplayName falls back to the raw type when it is not in the table.
func (t Table) DisplayName(datasetType string) string {
	if d, ok := t[datasetType]; ok && d.Name != "" {
		return d.Name
	}
	return datasetType
}

// Load returns the builtin table, or the table defined in path when set.
func Load(path string) (Table, error) {
	if path == "" {
		return Builtin(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read datasets file: %w", err)
	}

	var table Table
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to parse datasets file: %w", err)
	}
	if len(table) == 0 {
		return nil, fmt.Errorf("datasets file %s defines no datasets", path)
	}
	for key, d := range table {
		if d.MainBucket == "" || d.SubBucket == "" {
			return nil, fmt.Errorf("dataset %q: main_bucket and sub_bucket are required", key)
		}
	}

	return table, nil
}
