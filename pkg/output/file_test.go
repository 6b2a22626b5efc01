package output

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func testImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			img.SetRGBA(x, y, color.RGBA{uint8(40 * x), uint8(100 * y), 200, 255})
		}
	}
	return img
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected Format
		wantErr  bool
	}{
		{"ppm", FormatPPM, false},
		{"PNG", FormatPNG, false},
		{"jpeg", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.expected {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestFormatExtension(t *testing.T) {
	if ext := FormatPPM.Extension(false); ext != ".ppm" {
		t.Errorf("Expected .ppm, got %s", ext)
	}
	if ext := FormatPNG.Extension(true); ext != ".png.zst" {
		t.Errorf("Expected .png.zst, got %s", ext)
	}
}

func TestEncodeCompressedRoundTrip(t *testing.T) {
	img := testImage()

	var plain bytes.Buffer
	if err := Encode(&plain, img, FormatPPM); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	var compressed bytes.Buffer
	if err := EncodeCompressed(&compressed, img, FormatPPM); err != nil {
		t.Fatalf("EncodeCompressed failed: %v", err)
	}

	reader, err := DecodeCompressed(&compressed)
	if err != nil {
		t.Fatalf("DecodeCompressed failed: %v", err)
	}
	defer reader.Close()

	decoded, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("Reading decompressed stream failed: %v", err)
	}
	if !bytes.Equal(decoded, plain.Bytes()) {
		t.Errorf("Decompressed bytes differ from plain PPM:\n%s\nvs\n%s", decoded, plain.Bytes())
	}
}

func TestSaveImagePNG(t *testing.T) {
	img := testImage()
	path := filepath.Join(t.TempDir(), "nested", "render.png")

	if err := SaveImage(path, img, FormatPNG, false); err != nil {
		t.Fatalf("SaveImage failed: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("Opening saved file failed: %v", err)
	}
	defer file.Close()

	decoded, err := png.Decode(file)
	if err != nil {
		t.Fatalf("Decoding saved png failed: %v", err)
	}
	if decoded.Bounds() != img.Bounds() {
		t.Fatalf("Expected bounds %v, got %v", img.Bounds(), decoded.Bounds())
	}
	r, g, b, _ := decoded.At(2, 1).RGBA()
	if r>>8 != 80 || g>>8 != 100 || b>>8 != 200 {
		t.Errorf("Expected pixel (80,100,200), got (%d,%d,%d)", r>>8, g>>8, b>>8)
	}
}

func TestSaveImageCompressedPPM(t *testing.T) {
	img := testImage()
	path := filepath.Join(t.TempDir(), "render"+FormatPPM.Extension(true))

	if err := SaveImage(path, img, FormatPPM, true); err != nil {
		t.Fatalf("SaveImage failed: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("Opening saved file failed: %v", err)
	}
	defer file.Close()

	reader, err := DecodeCompressed(file)
	if err != nil {
		t.Fatalf("DecodeCompressed failed: %v", err)
	}
	defer reader.Close()

	decoded, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("Reading decompressed file failed: %v", err)
	}
	if !bytes.HasPrefix(decoded, []byte("P3\n3 2\n255\n")) {
		t.Errorf("Unexpected decompressed header: %q", decoded[:min(len(decoded), 16)])
	}
}
