package pipeline

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/Adithya-charan/docuExtract/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExport(t *testing.T) {
	r := &models.AnalysisResult{ID: "r1", FileName: "report.pdf", Hierarchy: []models.HierarchyNode{}, Issues: []string{}}

	var buf bytes.Buffer
	require.NoError(t, Export(&buf, r))
	assert.Contains(t, buf.String(), "{\n  \"id\": \"r1\",\n  \"fileName\": \"report.pdf\",")

	assert.Equal(t, "report.pdf.json", ExportFileName(r))
	assert.Equal(t, "scan.png.json", ExportFileName(&models.AnalysisResult{FileName: "uploads/scan.png"}))
	assert.Equal(t, "analysis.json", ExportFileName(&models.AnalysisResult{}))

	dir := t.TempDir()
	path, err := WriteExport(dir, r)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "report.pdf.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, buf.String(), string(data))
}
