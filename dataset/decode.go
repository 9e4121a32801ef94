package dataset

import (
	"bytes"
	"fmt"
	"image"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/veyra/abyss/tiles"
)

// DecodeTile decodes tile bytes. WebP is the primary format; PNG and
// JPEG registrations cover datasets rendered before the WebP switch
func DecodeTile(b []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("decode tile: %w", err)
	}
	return img, nil
}

// TilePath builds the static tile object path for a dataset tile
func TilePath(dsID string, id tiles.ID) string {
	return "datasets/" + dsID + "/" + id.Key() + ".webp"
}

// LivePath builds the backend live-render endpoint path for a tile
func LivePath(id tiles.ID) string {
	return "/live/" + id.Dataset + "/" + id.Key() + ".webp"
}
