package config

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/feitianbubu/aigen"
)

// ErrProviderNotFound is returned when no provider has the requested id.
var ErrProviderNotFound = errors.New("provider not found")

// Store keeps providers in the "providers" section of a config file. Edits rewrite only that
// section, keep other sections and comments, and never write expanded ${VAR} values back.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore returns a store backed by the YAML file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// List returns every provider, validated and with environment references expanded.
func (s *Store) List() ([]aigen.ProviderConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list()
}

func (s *Store) list() ([]aigen.ProviderConfig, error) {
	cfg, err := Load(s.path)
	if err != nil {
		return nil, err
	}
	return cfg.ProviderConfigs()
}

// Get returns the provider with id.
func (s *Store) Get(id string) (aigen.ProviderConfig, error) {
	configs, err := s.List()
	if err != nil {
		return aigen.ProviderConfig{}, err
	}
	for _, c := range configs {
		if c.ID == id {
			return c, nil
		}
	}
	return aigen.ProviderConfig{}, errors.Wrapf(ErrProviderNotFound, "id %s", id)
}

// Default returns the default provider for a capability.
func (s *Store) Default(capability aigen.Capability) (aigen.ProviderConfig, bool, error) {
	configs, err := s.List()
	if err != nil {
		return aigen.ProviderConfig{}, false, err
	}
	cfg, ok := aigen.SelectDefault(configs, capability)
	return cfg, ok, nil
}

// Put inserts or replaces a provider, assigning an id when it has none. A provider marked
// default becomes the only default for its capability.
func (s *Store) Put(p Provider) (Provider, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	expanded := p
	expanded.Endpoint = expandEnv(p.Endpoint)
	expanded.Credential = expandEnv(p.Credential)
	if _, err := aigen.NewProviderConfig(expanded.Spec()); err != nil {
		return Provider{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, providers, err := s.readRaw()
	if err != nil {
		return Provider{}, err
	}
	replaced := false
	for i := range providers {
		if providers[i].ID == p.ID {
			providers[i] = p
			replaced = true
		}
	}
	if !replaced {
		providers = append(providers, p)
	}
	if p.Default {
		for i := range providers {
			if providers[i].ID != p.ID && providers[i].Capability == p.Capability {
				providers[i].Default = false
			}
		}
	}
	return p, s.writeRaw(doc, providers)
}

// Delete removes the provider with id.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, providers, err := s.readRaw()
	if err != nil {
		return err
	}
	kept := providers[:0]
	for _, p := range providers {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(providers) {
		return errors.Wrapf(ErrProviderNotFound, "id %s", id)
	}
	return s.writeRaw(doc, kept)
}

// SetDefault makes id the only default of its capability. The file is replaced in one rename,
// so readers see either the old or the new defaults.
func (s *Store) SetDefault(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	configs, err := s.list()
	if err != nil {
		return err
	}
	marked, err := aigen.MarkDefault(configs, id)
	if err != nil {
		return errors.Wrapf(ErrProviderNotFound, "id %s", id)
	}
	isDefault := make(map[string]bool, len(marked))
	for _, c := range marked {
		isDefault[c.ID] = c.IsDefault
	}

	doc, providers, err := s.readRaw()
	if err != nil {
		return err
	}
	for i := range providers {
		providers[i].Default = isDefault[providers[i].ID]
	}
	return s.writeRaw(doc, providers)
}

// readRaw returns the document and its unexpanded providers.
func (s *Store) readRaw() (*yaml.Node, []Provider, error) {
	doc := &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}}}

	data, err := os.ReadFile(s.path)
	if err != nil && !os.IsNotExist(err) {
		return nil, nil, errors.Wrap(err, "read provider store")
	}
	if len(data) > 0 {
		var parsed yaml.Node
		if err := yaml.Unmarshal(data, &parsed); err != nil {
			return nil, nil, errors.Wrap(err, "parse provider store")
		}
		if len(parsed.Content) > 0 && parsed.Content[0].Kind == yaml.MappingNode {
			doc = &parsed
		}
	}

	var providers []Provider
	if node := mappingValue(doc.Content[0], "providers"); node != nil {
		if err := node.Decode(&providers); err != nil {
			return nil, nil, errors.Wrap(err, "decode providers")
		}
	}
	return doc, providers, nil
}

// writeRaw replaces the providers section and swaps the file in atomically.
func (s *Store) writeRaw(doc *yaml.Node, providers []Provider) error {
	var value yaml.Node
	if err := value.Encode(providers); err != nil {
		return errors.Wrap(err, "encode providers")
	}

	root := doc.Content[0]
	if node := mappingValue(root, "providers"); node != nil {
		*node = value
	} else {
		root.Content = append(root.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: "providers"},
			&value,
		)
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, "marshal provider store")
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "create store dir")
	}
	tmp, err := os.CreateTemp(dir, ".providers-*.yaml")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "write temp file")
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return errors.Wrap(err, "chmod temp file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close temp file")
	}
	return errors.Wrap(os.Rename(tmp.Name(), s.path), "replace provider store")
}

func mappingValue(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}
