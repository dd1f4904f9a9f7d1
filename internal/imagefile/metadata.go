package imagefile

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/evanoberholster/imagemeta"
	"github.com/rs/zerolog/log"
)

// Metadata holds the capture context extracted from a photo's EXIF block.
// Knowing when and where a plant photo was taken helps interpret symptoms
// (season, time of day), so the diagnosis output surfaces it when present.
type Metadata struct {
	DateTaken time.Time
	HasDate   bool

	Latitude  float64
	Longitude float64
	HasGPS    bool

	CameraMake  string
	CameraModel string
}

// ExtractMetadata reads EXIF metadata from an image file. Only metadata bytes
// are read, not the whole file. Photos without an EXIF block (common for
// screenshots and PNG exports) return an error the caller should treat as
// "no metadata", not as a failure.
func ExtractMetadata(path string) (*Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image file: %w", err)
	}
	defer f.Close()

	exif, err := imagemeta.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode EXIF metadata: %w", err)
	}

	md := &Metadata{
		CameraMake:  strings.TrimSpace(exif.Make),
		CameraModel: strings.TrimSpace(exif.Model),
	}

	if gps := exif.GPS; gps.Latitude() != 0 || gps.Longitude() != 0 {
		md.Latitude = gps.Latitude()
		md.Longitude = gps.Longitude()
		md.HasGPS = true
	}

	// DateTimeOriginal is preferred; fall back to the create date.
	switch {
	case !exif.DateTimeOriginal().IsZero():
		md.DateTaken = exif.DateTimeOriginal()
		md.HasDate = true
	case !exif.CreateDate().IsZero():
		md.DateTaken = exif.CreateDate()
		md.HasDate = true
	}

	log.Debug().
		Str("path", path).
		Bool("has_date", md.HasDate).
		Bool("has_gps", md.HasGPS).
		Msg("Extracted image metadata")

	return md, nil
}
