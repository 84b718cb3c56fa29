package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSettings_Valid(t *testing.T) {
	s := DefaultSettings()
	require.NoError(t, s.Validate())
	assert.Equal(t, DefaultPartSize, s.PartSize)
	assert.Equal(t, DefaultBaseURL, s.BaseURL)
}

func TestSettings_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"missing engine", func(s *Settings) { s.Engine = "" }},
		{"missing model", func(s *Settings) { s.Model = "" }},
		{"missing embedding model", func(s *Settings) { s.EmbeddingModel = "" }},
		{"missing base URL", func(s *Settings) { s.BaseURL = "" }},
		{"zero part size", func(s *Settings) { s.PartSize = 0 }},
		{"negative part size", func(s *Settings) { s.PartSize = -5 }},
		{"unknown storage backend", func(s *Settings) { s.Storage = "redis" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.mutate(&s)
			err := s.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}
