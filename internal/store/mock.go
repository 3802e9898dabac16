package store

import (
	"fjacquet/moneyview/internal/models"
)

// MockTagStore is an in-memory tag store for testing.
type MockTagStore struct {
	Tags []models.Tag

	// Error flags for testing error conditions
	LoadTagsError error
	SaveTagsError error
}

// LoadTags returns a copy of the mock tags, default tag included.
func (m *MockTagStore) LoadTags() ([]models.Tag, error) {
	if m.LoadTagsError != nil {
		return nil, m.LoadTagsError
	}
	out := make([]models.Tag, len(m.Tags))
	copy(out, m.Tags)
	return withDefault(out), nil
}

// SaveTags replaces the mock tags.
func (m *MockTagStore) SaveTags(tags []models.Tag) error {
	if m.SaveTagsError != nil {
		return m.SaveTagsError
	}
	m.Tags = append([]models.Tag(nil), tags...)
	return nil
}

// UpsertTag replaces or appends tag. Unlike TagStore it does not assign ids.
func (m *MockTagStore) UpsertTag(tag models.Tag) (models.Tag, error) {
	if m.SaveTagsError != nil {
		return models.Tag{}, m.SaveTagsError
	}
	for i := range m.Tags {
		if m.Tags[i].ID == tag.ID {
			m.Tags[i] = tag
			return tag, nil
		}
	}
	m.Tags = append(m.Tags, tag)
	return tag, nil
}
