package background

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
)

// ErrNotImage is returned by ReadImageFile for files that are not images.
var ErrNotImage = errors.New("file is not an image")

// ReadImageFile reads an image from disk and returns it as a data URI.
// The type is sniffed from the content, not the extension.
func ReadImageFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}

	mime := http.DetectContentType(data)
	mime, _, _ = strings.Cut(mime, ";")
	if !strings.HasPrefix(mime, "image/") {
		return "", fmt.Errorf("%s (%s): %w", path, mime, ErrNotImage)
	}

	return DataURI(mime, data), nil
}
