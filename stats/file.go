package stats

import (
	"os"

	"gopkg.in/yaml.v2"
)

// fileDoc is the on-disk shape of a statistics fixture file, e.g.:
//
//	relations:
//	  employees:
//	    nr: 50000
//	    lr: 120
//	    fr: 80
//	    distinct:
//	      dept_id: 25
type fileDoc struct {
	Relations map[string]struct {
		NR       int64            `yaml:"nr"`
		LR       int64            `yaml:"lr"`
		BR       int64            `yaml:"br"`
		FR       int64            `yaml:"fr"`
		Distinct map[string]int64 `yaml:"distinct"`
	} `yaml:"relations"`
}

// FileProvider loads relation statistics from a YAML document, a
// storage-catalog fixture format. The demo drivers under cmd/ do not use
// it; they build a MemoryProvider directly.
type FileProvider struct {
	*MemoryProvider
}

// LoadFileProvider reads and parses a YAML statistics file.
func LoadFileProvider(path string) (*FileProvider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseFileProvider(data)
}

// ParseFileProvider parses a YAML statistics document already in memory.
func ParseFileProvider(data []byte) (*FileProvider, error) {
	var doc fileDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	mp := NewMemoryProvider()
	for name, rel := range doc.Relations {
		mp.AddRelation(name, TableStats{
			NR:       rel.NR,
			LR:       rel.LR,
			BR:       rel.BR,
			FR:       rel.FR,
			Distinct: rel.Distinct,
		})
	}
	return &FileProvider{MemoryProvider: mp}, nil
}
