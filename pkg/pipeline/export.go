package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Adithya-charan/docuExtract/internal/models"
)

// Export writes r as two-space indented JSON.
func Export(w io.Writer, r *models.AnalysisResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("failed to encode analysis: %w", err)
	}
	return nil
}

// ExportFileName names the artifact after the analyzed file.
func ExportFileName(r *models.AnalysisResult) string {
	name := filepath.Base(r.FileName)
	if name == "." || name == string(filepath.Separator) || name == "" {
		name = "analysis"
	}
	return name + ".json"
}

// WriteExport writes the artifact into dir and returns its path.
func WriteExport(dir string, r *models.AnalysisResult) (string, error) {
	path := filepath.Join(dir, ExportFileName(r))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if err := Export(f, r); err != nil {
		return "", err
	}
	return path, f.Close()
}
