package server

import (
	"encoding/binary"
	"fmt"

	"github.com/golang/snappy"

	"github.com/df07/go-sphere-pathtracer/pkg/output"
	"github.com/df07/go-sphere-pathtracer/pkg/renderer"
)

// pixelRecordSize is the wire size of one pixel: little-endian uint32 index then R, G, B
const pixelRecordSize = 7

// PixelRecord is a finished pixel as sent to the browser
type PixelRecord struct {
	Index uint32
	RGB   uint32 // packed 0x00RRGGBB
}

// newPixelRecord converts a render result into its wire form
func newPixelRecord(result renderer.PixelResult) PixelRecord {
	return PixelRecord{Index: uint32(result.Index), RGB: output.PackRGB(result.RGBA)}
}

// EncodePixelFrame packs a batch of pixels into one snappy-compressed binary frame
func EncodePixelFrame(records []PixelRecord) []byte {
	raw := make([]byte, len(records)*pixelRecordSize)
	for i, record := range records {
		offset := i * pixelRecordSize
		binary.LittleEndian.PutUint32(raw[offset:], record.Index)
		raw[offset+4] = byte(record.RGB >> 16)
		raw[offset+5] = byte(record.RGB >> 8)
		raw[offset+6] = byte(record.RGB)
	}
	return snappy.Encode(nil, raw)
}

// DecodePixelFrame reverses EncodePixelFrame
func DecodePixelFrame(frame []byte) ([]PixelRecord, error) {
	raw, err := snappy.Decode(nil, frame)
	if err != nil {
		return nil, fmt.Errorf("decompress pixel frame: %w", err)
	}
	if len(raw)%pixelRecordSize != 0 {
		return nil, fmt.Errorf("pixel frame length %d is not a multiple of %d", len(raw), pixelRecordSize)
	}

	records := make([]PixelRecord, len(raw)/pixelRecordSize)
	for i := range records {
		offset := i * pixelRecordSize
		records[i] = PixelRecord{
			Index: binary.LittleEndian.Uint32(raw[offset:]),
			RGB:   uint32(raw[offset+4])<<16 | uint32(raw[offset+5])<<8 | uint32(raw[offset+6]),
		}
	}
	return records, nil
}
