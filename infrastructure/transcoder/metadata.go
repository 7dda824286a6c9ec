package transcoder

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/AzielCF/piebot/domains/sticker"
	"github.com/chai2010/webp"
)

// exifHeader is a little-endian TIFF header with a single IFD entry (tag
// 0x5741) pointing at the JSON payload that WhatsApp reads for pack info.
var exifHeader = []byte{
	0x49, 0x49, 0x2A, 0x00, 0x08, 0x00, 0x00, 0x00,
	0x01, 0x00, 0x41, 0x57, 0x07, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x16, 0x00, 0x00, 0x00,
}

type packPayload struct {
	ID        string   `json:"sticker-pack-id"`
	Name      string   `json:"sticker-pack-name"`
	Publisher string   `json:"sticker-pack-publisher"`
	Emojis    []string `json:"emojis,omitempty"`
}

// MetadataWriter embeds sticker pack info as the WebP EXIF chunk.
type MetadataWriter struct{}

func NewMetadataWriter() *MetadataWriter {
	return &MetadataWriter{}
}

func (w *MetadataWriter) Embed(data []byte, pack sticker.PackInfo) ([]byte, error) {
	exif, err := BuildStickerExif(pack)
	if err != nil {
		return nil, err
	}
	out, err := webp.SetMetadata(data, exif, "EXIF")
	if err != nil {
		return nil, fmt.Errorf("failed to set webp exif: %w", err)
	}
	return out, nil
}

// BuildStickerExif serialises the pack info into the EXIF blob WhatsApp expects.
func BuildStickerExif(pack sticker.PackInfo) ([]byte, error) {
	payload, err := json.Marshal(packPayload{
		ID:        pack.ID,
		Name:      pack.Name,
		Publisher: pack.Publisher,
		Emojis:    pack.Emojis,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal sticker pack: %w", err)
	}

	exif := make([]byte, len(exifHeader), len(exifHeader)+len(payload))
	copy(exif, exifHeader)
	binary.LittleEndian.PutUint32(exif[14:18], uint32(len(payload)))
	return append(exif, payload...), nil
}
