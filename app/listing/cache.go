// Package listing loads conference listing sources from a directory of
// YAML files, one conference per file.
package listing

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

type Cache struct {
	listingsDir string
	cache       map[string]*Source
	mu          sync.RWMutex
}

func NewCache(listingsDir string) *Cache {
	return &Cache{
		listingsDir: listingsDir,
		cache:       make(map[string]*Source),
	}
}

// Run loads every *.yml / *.yaml file in the listings directory. A missing
// directory is not an error: the HTTP ingest endpoint works without files.
func (c *Cache) Run() error {
	if _, err := os.Stat(c.listingsDir); os.IsNotExist(err) {
		return nil
	}

	files, err := filepath.Glob(filepath.Join(c.listingsDir, "*.yml"))
	if err != nil {
		return fmt.Errorf("failed to find YML files: %w", err)
	}
	yamlFiles, err := filepath.Glob(filepath.Join(c.listingsDir, "*.yaml"))
	if err != nil {
		return fmt.Errorf("failed to find YAML files: %w", err)
	}
	files = append(files, yamlFiles...)

	for _, file := range files {
		name := sourceName(file)

		source, err := c.LoadSource(name, file)
		if err != nil {
			return fmt.Errorf("error loading %s: %w", file, err)
		}

		slog.Debug("Listing loaded", "source", name, "acronym", source.Conference.Acronym, "enabled", source.IsEnabled())
	}

	return nil
}

func (c *Cache) LoadSource(name, file string) (*Source, error) {
	source, err := c.parseSource(file)
	if err != nil {
		return nil, err
	}

	source.Name = name

	if err := c.validateSource(source); err != nil {
		return nil, fmt.Errorf("invalid listing %s: %w", file, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache[source.Name] = source

	return source, nil
}

func (c *Cache) GetSource(name string) (*Source, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	source, ok := c.cache[name]
	if !ok {
		return nil, fmt.Errorf("listing source with name '%s' not found", name)
	}
	return source, nil
}

func (c *Cache) GetSources() map[string]*Source {
	c.mu.RLock()
	defer c.mu.RUnlock()

	sourcesCopy := make(map[string]*Source, len(c.cache))
	for k, v := range c.cache {
		sourcesCopy[k] = v
	}
	return sourcesCopy
}

func (c *Cache) GetEnabledSources() map[string]*Source {
	c.mu.RLock()
	defer c.mu.RUnlock()

	enabled := make(map[string]*Source)
	for k, v := range c.cache {
		if v.IsEnabled() {
			enabled[k] = v
		}
	}
	return enabled
}

func (c *Cache) GetSourceCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

func (c *Cache) parseSource(file string) (*Source, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var source Source
	if err := yaml.Unmarshal(data, &source); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	return &source, nil
}

func (c *Cache) validateSource(source *Source) error {
	if source == nil {
		return fmt.Errorf("source is nil")
	}

	requiredFields := map[string]string{
		"conference name":    source.Conference.Name,
		"conference acronym": source.Conference.Acronym,
		"conference dates":   source.Conference.Dates,
	}

	for fieldName, fieldValue := range requiredFields {
		if strings.TrimSpace(fieldValue) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
	}

	return nil
}

func sourceName(file string) string {
	base := filepath.Base(file)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
