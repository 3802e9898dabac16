// Package store loads and saves the user's tag definitions.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"fjacquet/moneyview/internal/logging"
	"fjacquet/moneyview/internal/models"
	"fjacquet/moneyview/internal/parsererror"
)

// DefaultTagsFile is used when no tag file is configured.
const DefaultTagsFile = "tags.yaml"

// TagsConfig is the layout of the tag file.
type TagsConfig struct {
	Tags []models.Tag `yaml:"tags"`
}

// TagStore manages loading and saving of tag data
type TagStore struct {
	TagsFile string

	logger logging.Logger
	mu     sync.Mutex
}

// NewTagStore creates a new store for the tag file
func NewTagStore(tagsFile string, logger logging.Logger) *TagStore {
	return &TagStore{
		TagsFile: tagsFile,
		logger:   logging.OrDefault(logger),
	}
}

func (s *TagStore) filename() string {
	if s.TagsFile == "" {
		return DefaultTagsFile
	}
	return s.TagsFile
}

// FindConfigFile looks for a configuration file in standard locations
func (s *TagStore) FindConfigFile(filename string) (string, error) {
	if filepath.IsAbs(filename) {
		if _, err := os.Stat(filename); err == nil {
			return filename, nil
		}
		return "", os.ErrNotExist
	}

	locations := []string{
		filename,
		filepath.Join("config", filename),
		filepath.Join("database", filename),
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location, nil
		}
	}

	// Then the user's ~/.config/moneyview/
	if homeDir, err := os.UserHomeDir(); err == nil {
		configPath := filepath.Join(homeDir, ".config", "moneyview", filename)
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}
	}

	return "", os.ErrNotExist
}

// LoadTags reads the tag file. A missing file yields only the default tag;
// the default tag is present in every result.
func (s *TagStore) LoadTags() ([]models.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *TagStore) load() ([]models.Tag, error) {
	filename := s.filename()
	filePath, err := s.FindConfigFile(filename)
	if errors.Is(err, os.ErrNotExist) {
		s.logger.Warn("Tags file not found, using default tag only",
			logging.Field{Key: logging.FieldFile, Value: filename})
		return []models.Tag{models.DefaultTag()}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error resolving tags file: %w", err)
	}

	data, err := os.ReadFile(filePath) // #nosec G304 -- path comes from configuration
	if err != nil {
		return nil, fmt.Errorf("error reading tags file: %w", err)
	}

	var cfg TagsConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &parsererror.ValidationError{FilePath: filePath, Reason: err.Error()}
	}
	if err := validateTags(filePath, cfg.Tags); err != nil {
		return nil, err
	}

	tags := withDefault(cfg.Tags)
	s.logger.Debug("Loaded tags",
		logging.Field{Key: logging.FieldFile, Value: filePath},
		logging.Field{Key: logging.FieldCount, Value: len(tags)})
	return tags, nil
}

// SaveTags writes tags to the tag file, creating it when needed.
func (s *TagStore) SaveTags(tags []models.Tag) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(tags)
}

func (s *TagStore) save(tags []models.Tag) error {
	filename := s.filename()
	if err := validateTags(filename, tags); err != nil {
		return err
	}

	filePath, err := s.FindConfigFile(filename)
	if errors.Is(err, os.ErrNotExist) {
		filePath = filename
		if !filepath.IsAbs(filename) {
			filePath = filepath.Join("config", filename)
		}
	} else if err != nil {
		return fmt.Errorf("error resolving tags file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(filePath), models.PermissionDirectory); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}

	data, err := yaml.Marshal(TagsConfig{Tags: tags})
	if err != nil {
		return fmt.Errorf("error marshaling tags: %w", err)
	}
	if err := os.WriteFile(filePath, data, models.PermissionConfigFile); err != nil {
		return fmt.Errorf("error writing tags: %w", err)
	}

	s.logger.Debug("Saved tags",
		logging.Field{Key: logging.FieldFile, Value: filePath},
		logging.Field{Key: logging.FieldCount, Value: len(tags)})
	return nil
}

// UpsertTag replaces the tag with the same id or appends a new one. A tag
// without id gets a fresh UUID. The stored tag is returned.
func (s *TagStore) UpsertTag(tag models.Tag) (models.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tag.ID == "" {
		tag.ID = uuid.NewString()
	}

	tags, err := s.load()
	if err != nil {
		return models.Tag{}, err
	}

	replaced := false
	for i := range tags {
		if tags[i].ID == tag.ID {
			tags[i] = tag
			replaced = true
			break
		}
	}
	if !replaced {
		tags = append(tags, tag)
	}

	if err := s.save(tags); err != nil {
		return models.Tag{}, err
	}
	return tag, nil
}

func validateTags(path string, tags []models.Tag) error {
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		if tag.ID == "" {
			return &parsererror.ValidationError{FilePath: path, Reason: fmt.Sprintf("tag '%s' has no id", tag.Name)}
		}
		if seen[tag.ID] {
			return &parsererror.ValidationError{FilePath: path, Reason: fmt.Sprintf("duplicate tag id '%s'", tag.ID)}
		}
		seen[tag.ID] = true
	}
	return nil
}

func withDefault(tags []models.Tag) []models.Tag {
	for _, tag := range tags {
		if tag.ID == models.DefaultTagID {
			return tags
		}
	}
	return append([]models.Tag{models.DefaultTag()}, tags...)
}
