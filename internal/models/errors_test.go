package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainErrorClassification(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("analyze: %w", NewTransportError("model request failed", cause))

	assert.True(t, IsType(err, ErrorTypeTransport))
	assert.False(t, IsType(err, ErrorTypeIngestion))
	assert.ErrorIs(t, err, cause)
	assert.False(t, IsType(nil, ErrorTypeTransport))
}

func TestMalformedPayloadErrorMessage(t *testing.T) {
	err := NewMalformedPayloadError("failed to parse model response", "{not json", errors.New("invalid character"))

	assert.Equal(t, "{not json", err.Excerpt)
	assert.Contains(t, err.Error(), "[malformed_payload] failed to parse model response")
	assert.Contains(t, err.Error(), "Raw response: {not json")
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		mediaType string
		kind      MediaKind
		ok        bool
	}{
		{"application/pdf", MediaPDF, true},
		{"Application/PDF; charset=binary", MediaPDF, true},
		{"image/png", MediaImage, true},
		{"image/jpeg", MediaImage, true},
		{"text/plain; charset=utf-8", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.mediaType, func(t *testing.T) {
			kind, ok := KindOf(tt.mediaType)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.kind, kind)
		})
	}
}

func TestCountNodes(t *testing.T) {
	r := AnalysisResult{Hierarchy: []HierarchyNode{
		{ID: "1", Children: []HierarchyNode{{ID: "1.1"}, {ID: "1.2", Children: []HierarchyNode{{ID: "1.2.1"}}}}},
		{ID: "2"},
	}}
	assert.Equal(t, 5, r.CountNodes())
}
