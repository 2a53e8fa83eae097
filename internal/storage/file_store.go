// Package storage keeps the zoning documents as JSON files in one directory.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"cdc_zoning/internal/model"
	"cdc_zoning/internal/zoning"
)

// Document file names inside the data directory
const (
	ZonesFile      = "zones_data.json"
	AliasFile      = "alias_data.json"
	ZoneGroupFile  = "zonegroup_data.json"
	ZoneConfigFile = "zone_config.json"
	NodesFile      = "nodes.json"
)

const indent = "    "

// FileStore implements zoning.Repository on a data directory
type FileStore struct {
	dir string
	log *logrus.Entry
}

// NewFileStore creates dir if needed and returns a store on it
func NewFileStore(dir string, log *logrus.Entry) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &FileStore{dir: dir, log: log.WithField("component", "storage")}, nil
}

// Dir returns the data directory
func (s *FileStore) Dir() string {
	return s.dir
}

// Load reads and validates every document. Missing or empty files load as
// empty documents.
func (s *FileStore) Load(ctx context.Context) (*zoning.State, error) {
	st := zoning.NewState()
	if err := readInto(s, AliasFile, &st.Aliases); err != nil {
		return nil, err
	}
	if err := readInto(s, ZonesFile, &st.Zones); err != nil {
		return nil, err
	}
	if err := readInto(s, ZoneGroupFile, &st.Groups); err != nil {
		return nil, err
	}
	if err := readInto(s, NodesFile, &st.Nodes); err != nil {
		return nil, err
	}
	if st.Nodes.Nodes == nil {
		st.Nodes.Nodes = []model.RegisteredNode{}
	}
	if err := st.Validate(); err != nil {
		return nil, err
	}
	return st, nil
}

// LoadConfig reads zone_config.json. It returns nil when the file does not exist yet.
func (s *FileStore) LoadConfig(ctx context.Context) (*model.ZoneConfig, error) {
	var cfg *model.ZoneConfig
	if err := readInto(s, ZoneConfigFile, &cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// readInto decodes name into a fresh document and stores it in dst. dst is
// left untouched when the file is missing or empty.
func readInto[T any](s *FileStore, name string, dst **T) error {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	var doc *T
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("%w: %s: %v", zoning.ErrInvalidDocument, name, err)
	}
	if doc == nil {
		return fmt.Errorf("%w: %s: null document", zoning.ErrInvalidDocument, name)
	}
	*dst = doc
	return nil
}

// Commit writes the four documents and the zone config. Every file is staged
// next to its target first and renamed into place only once all of them were
// written.
func (s *FileStore) Commit(ctx context.Context, st *zoning.State, cfg *model.ZoneConfig) error {
	docs := []struct {
		name string
		v    interface{}
	}{
		{AliasFile, st.Aliases},
		{ZonesFile, st.Zones},
		{ZoneGroupFile, st.Groups},
		{NodesFile, st.Nodes},
		{ZoneConfigFile, cfg},
	}

	staged := make(map[string]string, len(docs))
	cleanup := func() {
		for _, tmp := range staged {
			os.Remove(tmp)
		}
	}
	for _, d := range docs {
		tmp, err := s.stage(d.name, d.v)
		if err != nil {
			cleanup()
			return err
		}
		staged[d.name] = tmp
	}

	for _, d := range docs {
		if err := os.Rename(staged[d.name], filepath.Join(s.dir, d.name)); err != nil {
			cleanup()
			return fmt.Errorf("failed to replace %s: %w", d.name, err)
		}
		delete(staged, d.name)
	}
	s.log.WithField("dir", s.dir).Debug("Documents committed")
	return nil
}

// WriteConfig writes only zone_config.json
func (s *FileStore) WriteConfig(cfg *model.ZoneConfig) error {
	tmp, err := s.stage(ZoneConfigFile, cfg)
	if err != nil {
		return err
	}
	if err := os.Rename(tmp, filepath.Join(s.dir, ZoneConfigFile)); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace %s: %w", ZoneConfigFile, err)
	}
	return nil
}

func (s *FileStore) stage(name string, v interface{}) (string, error) {
	data, err := Encode(v)
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", name, err)
	}

	f, err := os.CreateTemp(s.dir, "."+name+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("stage %s: %w", name, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("stage %s: %w", name, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("stage %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("stage %s: %w", name, err)
	}
	return f.Name(), nil
}

// Encode renders v the way the documents are stored: 4-space indent, no HTML escaping
func Encode(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", indent)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
