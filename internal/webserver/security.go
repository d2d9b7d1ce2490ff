package webserver

import (
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"sort"
	"strings"
)

const (
	// MaxFormSize limits in-memory multipart form data to 1MB; larger parts spill to disk
	MaxFormSize = 1 * 1024 * 1024
	// DefaultMaxUploadBytes caps the request body when the config does not set a limit
	DefaultMaxUploadBytes = 16 * 1024 * 1024
)

// AllowedFileExtensions defines the allowed file extensions for drawing uploads
var AllowedFileExtensions = map[string]bool{
	".svg": true,
	".xml": true,
}

// ValidateFileUpload checks the name and size of an uploaded drawing and that its content is text
func ValidateFileUpload(file multipart.File, header *multipart.FileHeader, maxSize int64) error {
	if strings.TrimSpace(header.Filename) == "" {
		return fmt.Errorf("filename cannot be empty")
	}

	if maxSize > 0 && header.Size > maxSize {
		return fmt.Errorf("file too large: %d bytes (max %d)", header.Size, maxSize)
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !AllowedFileExtensions[ext] {
		return fmt.Errorf("invalid file type: %s (allowed: %v)", ext, getAllowedExtensions())
	}

	if strings.Contains(header.Filename, "..") || strings.ContainsAny(header.Filename, `/\`) {
		return fmt.Errorf("invalid filename: contains path traversal characters")
	}

	buffer := make([]byte, 512)

	n, err := file.Read(buffer)
	if err != nil && n == 0 {
		return fmt.Errorf("cannot read file content")
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("cannot rewind uploaded file: %w", err)
	}

	for i := range n {
		b := buffer[i]
		// printable ASCII, UTF-8 continuation bytes, newlines, carriage returns and tabs
		if b < 32 && b != '\n' && b != '\r' && b != '\t' {
			return fmt.Errorf("file contains invalid characters (not a text file)")
		}
	}

	return nil
}

// SanitizeFilename strips path separators and shell-hostile characters from filename
func SanitizeFilename(filename string) string {
	filename = strings.NewReplacer(
		"/", "",
		"\\", "",
		"..", "",
		":", "",
		"*", "",
		"?", "",
		"<", "",
		">", "",
		"|", "",
		"\"", "",
	).Replace(filename)
	filename = strings.TrimSpace(filename)

	if filename == "" {
		filename = "drawing"
	}

	return filename
}

// GCodeFilename derives the download name for the result of an uploaded drawing
func GCodeFilename(upload string) string {
	base := SanitizeFilename(upload)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	if base == "" {
		base = "drawing"
	}

	return base + ".gcode"
}

func getAllowedExtensions() []string {
	exts := make([]string, 0, len(AllowedFileExtensions))
	for ext := range AllowedFileExtensions {
		exts = append(exts, ext)
	}

	sort.Strings(exts)

	return exts
}
