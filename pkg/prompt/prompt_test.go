package prompt

import (
	"strings"
	"testing"

	"github.com/Adithya-charan/docuExtract/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestRenderReplacesEveryPlaceholder(t *testing.T) {
	out := Render("Answer in {{LANGUAGE}}. Only {{LANGUAGE}}.", "ko")
	assert.Equal(t, "Answer in Korean. Only Korean.", out)
}

func TestRenderUnknownLocale(t *testing.T) {
	assert.Equal(t, "use English", Render("use {{LANGUAGE}}", "xx"))
}

func TestAssemble(t *testing.T) {
	content := &models.Content{Kind: models.MediaPDF, Text: "\n--- Page 1 ---\nhello", Pages: 1}

	p := Assemble(content, "ja")

	assert.Same(t, content, p.Content)
	assert.NotContains(t, p.System, Placeholder)
	assert.Equal(t, 2, strings.Count(p.System, "Japanese"))
	assert.Equal(t, 2, strings.Count(SystemInstruction, Placeholder))
}
