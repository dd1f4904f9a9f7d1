// Package imagefile loads plant photos from disk into the inline payload the
// model gateway accepts.
package imagefile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/sukyumee/lettuce-diagnosis-app/internal/gateway"
)

// maxImageBytes caps the inline payload size. Larger photos should be resized
// before diagnosis.
const maxImageBytes = 20 * 1024 * 1024

// supportedExtensions maps file extensions to their media types.
var supportedExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// Load reads an image file and returns it as an inline payload. The media
// type is derived from the file extension.
func Load(path string) (gateway.Image, error) {
	mediaType, err := MediaTypeForPath(path)
	if err != nil {
		return gateway.Image{}, err
	}

	fi, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return gateway.Image{}, fmt.Errorf("image file not found: %s", path)
		}
		return gateway.Image{}, fmt.Errorf("failed to access image file: %w", err)
	}
	if fi.IsDir() {
		return gateway.Image{}, fmt.Errorf("path is a directory, not an image: %s", path)
	}
	if fi.Size() > maxImageBytes {
		return gateway.Image{}, fmt.Errorf("image file %s is %d bytes; the limit is %d", path, fi.Size(), maxImageBytes)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return gateway.Image{}, fmt.Errorf("failed to read image file: %w", err)
	}

	log.Debug().
		Str("path", path).
		Str("media_type", mediaType).
		Int("bytes", len(data)).
		Msg("Loaded image file")

	return gateway.Image{Data: data, MIMEType: mediaType}, nil
}

// MediaTypeForPath returns the media type for a file path based on its
// extension.
func MediaTypeForPath(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	mediaType, ok := supportedExtensions[ext]
	if !ok {
		return "", fmt.Errorf("unsupported image extension %q (supported: jpg, jpeg, png, gif, webp)", ext)
	}
	return mediaType, nil
}
