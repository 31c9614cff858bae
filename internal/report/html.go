package report

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"

	"statreporter/internal/logger"
	"statreporter/internal/snapshot"
)

//go:embed templates/report.html.tmpl
var templateFS embed.FS

var reportTemplate = template.Must(template.ParseFS(templateFS, "templates/report.html.tmpl"))

// Render writes snap as an HTML document to w.
func Render(w io.Writer, snap *snapshot.Snapshot) error {
	if err := reportTemplate.Execute(w, Build(snap)); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	return nil
}

// WriteFile renders snap and writes it to path, replacing any previous
// report. The file is written next to its destination and renamed into
// place so a reader never sees a partial report.
func WriteFile(path string, snap *snapshot.Snapshot) error {
	var buf bytes.Buffer
	if err := Render(&buf, snap); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".report-*.html")
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set report permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move report into place: %w", err)
	}

	log := logger.WithComponent("report")
	log.Info().Str("path", path).Int("bytes", buf.Len()).Msg("Report written")
	return nil
}
