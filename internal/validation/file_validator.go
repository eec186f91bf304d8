// Package validation checks local input and output paths before the
// command line tool touches them.
package validation

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"ricecast/internal/dataset"
)

var (
	// ErrNotAFile is returned for directories and other non-regular paths.
	ErrNotAFile = errors.New("not a regular file")
	// ErrEmptyFile is returned for zero-byte inputs.
	ErrEmptyFile = errors.New("file is empty")
	// ErrTempFile is returned for Excel lock files such as ~$harga.xlsx.
	ErrTempFile = errors.New("temporary Excel file")
	// ErrExtension is returned when an output path has an unexpected extension.
	ErrExtension = errors.New("unexpected file extension")
)

// FileValidator validates spreadsheet inputs and report outputs.
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger,
	}
}

// ValidateSpreadsheet checks that path is a readable, non-empty xlsx or csv
// file and returns its format.
func (v *FileValidator) ValidateSpreadsheet(path string) (dataset.Format, error) {
	if strings.HasPrefix(filepath.Base(path), "~$") {
		v.logger.Warn("Skipping temporary Excel file", slog.String("file", path))
		return "", fmt.Errorf("%w: %s", ErrTempFile, path)
	}

	format, err := dataset.DetectFormat(path)
	if err != nil {
		v.logger.Error("Unsupported spreadsheet",
			slog.String("file", path),
			slog.String("extension", filepath.Ext(path)))
		return "", err
	}

	info, err := os.Stat(path)
	if err != nil {
		v.logger.Error("Failed to stat file",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return "", fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		v.logger.Error("Path is not a file", slog.String("path", path))
		return "", fmt.Errorf("%w: %s", ErrNotAFile, path)
	}
	if info.Size() == 0 {
		return "", fmt.Errorf("%w: %s", ErrEmptyFile, path)
	}

	v.logger.Debug("Spreadsheet validated",
		slog.String("file", path),
		slog.String("format", string(format)),
		slog.Int64("size", info.Size()))
	return format, nil
}

// ValidateOutputFile checks the extension of an output path against allowed
// (lower case, without the dot) and creates its parent directory. An empty
// allowed list accepts any extension.
func (v *FileValidator) ValidateOutputFile(path string, allowed ...string) error {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if len(allowed) > 0 && !slices.Contains(allowed, ext) {
		return fmt.Errorf("%w: %s (want %s)", ErrExtension, path, strings.Join(allowed, ", "))
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	info, err := os.Stat(path)
	if err == nil && info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNotAFile, path)
	}
	return nil
}
