package metadata

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"assetsync/internal/classify"
	"assetsync/internal/services"
)

// Record is a fully decoded sidecar, image or file.
type Record struct {
	Kind    classify.Kind `yaml:"-"`
	Path    string        `yaml:"-"`
	Date    string        `yaml:"date"`
	UID     string        `yaml:"uid"`
	Width   int           `yaml:"width,omitempty"`
	Height  int           `yaml:"height,omitempty"`
	Format  string        `yaml:"format"`
	Alt     string        `yaml:"alt,omitempty"`
	Caption string        `yaml:"caption,omitempty"`
	Credit  string        `yaml:"credit,omitempty"`
}

// RecordError names a record that failed to decode.
type RecordError struct {
	Path string
	Err  error
}

func (e RecordError) Error() string { return fmt.Sprintf("%s: %v", e.Path, e.Err) }

// LoadRecords decodes every *.yml file in dir, sorted by uid. Files that fail
// to decode are reported in the second return value and otherwise skipped. A
// missing directory yields no records and no error.
func LoadRecords(dir string, kind classify.Kind) ([]Record, []RecordError, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, nil
		}
		return nil, nil, services.Wrap(services.ErrIO, "metadata", "load records", dir, err)
	}
	var (
		records []Record
		bad     []RecordError
	)
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".yml" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			bad = append(bad, RecordError{Path: path, Err: err})
			continue
		}
		var rec Record
		if err := yaml.Unmarshal(data, &rec); err != nil {
			bad = append(bad, RecordError{Path: path, Err: err})
			continue
		}
		rec.Kind = kind
		rec.Path = path
		records = append(records, rec)
	}
	sort.SliceStable(records, func(i, j int) bool { return records[i].UID < records[j].UID })
	return records, bad, nil
}
