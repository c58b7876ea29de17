package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"

	"github.com/EdlinOrg/prominentcolor"
	"github.com/nfnt/resize"
	_ "golang.org/x/image/webp"
)

var errArtworkPanic = errors.New("artwork processing panicked")

// kittyImageID is the fixed placement id; each new image replaces the last
const kittyImageID = 42

// artworkRows is the image height in cells, matching the bar content
const artworkRows = 2

// fetchArtwork downloads the artwork at url. file:// URLs are read from disk.
func fetchArtwork(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("no artwork URL")
	}

	if strings.HasPrefix(url, "file://") {
		data, err := os.ReadFile(strings.TrimPrefix(url, "file://"))
		if err != nil {
			return nil, fmt.Errorf("failed to read artwork file: %w", err)
		}
		return data, nil
	}

	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return nil, fmt.Errorf("unsupported artwork URL scheme: %s", url)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build artwork request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download artwork: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("artwork download failed with status: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read artwork data: %w", err)
	}
	return data, nil
}

// decodeArtworkData decodes base64-encoded or raw image data into an image.Image
func decodeArtworkData(imgData []byte) (image.Image, error) {
	imageData := imgData
	if decoded, err := base64.StdEncoding.DecodeString(string(imgData)); err == nil {
		imageData = decoded
	}

	if len(imageData) == 0 {
		return nil, fmt.Errorf("empty image data")
	}

	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	return img, nil
}

// lightnessSaturation returns HSL lightness and saturation for 8-bit RGB
func lightnessSaturation(r, g, b uint8) (float64, float64) {
	rf, gf, bf := float64(r)/255, float64(g)/255, float64(b)/255
	hi := max(rf, gf, bf)
	lo := min(rf, gf, bf)

	lightness := (hi + lo) / 2
	if hi == lo {
		return lightness, 0
	}
	if lightness > 0.5 {
		return lightness, (hi - lo) / (2 - hi - lo)
	}
	return lightness, (hi - lo) / (hi + lo)
}

// extractDominantColor picks a vibrant, readable accent color from img as
// #rrggbb. Sampled pixels are scored on saturation and lightness; K-means
// is the fallback when no pixel qualifies.
func extractDominantColor(img image.Image) (string, error) {
	if img == nil {
		return "", fmt.Errorf("nil image")
	}

	const sampleRate = 5
	bounds := img.Bounds()
	counts := make(map[uint32]int)

	for y := bounds.Min.Y; y < bounds.Max.Y; y += sampleRate {
		for x := bounds.Min.X; x < bounds.Max.X; x += sampleRate {
			r, g, b, a := img.At(x, y).RGBA()
			if a < 0x8000 {
				continue
			}
			counts[(r>>8)<<16|(g>>8)<<8|b>>8]++
		}
	}

	type candidate struct {
		rgb   uint32
		score float64
	}
	var candidates []candidate

	for rgb, count := range counts {
		lightness, saturation := lightnessSaturation(uint8(rgb>>16), uint8(rgb>>8), uint8(rgb))

		// Too dark, washed out, or grey reads badly on a dark terminal
		if lightness < 0.3 || lightness > 0.85 || saturation < 0.25 {
			continue
		}

		lightnessScore := lightness
		if lightness > 0.7 {
			lightnessScore = 1.4 - lightness
		}
		score := saturation*2.5 + lightnessScore*1.5 + float64(count)/1000
		candidates = append(candidates, candidate{rgb: rgb, score: score})
	}

	if len(candidates) == 0 {
		colors, err := prominentcolor.Kmeans(img)
		if err != nil || len(colors) == 0 {
			return "", fmt.Errorf("no suitable colors found")
		}
		c := colors[0].Color
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B), nil
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].rgb < candidates[j].rgb
	})

	return fmt.Sprintf("#%06x", candidates[0].rgb), nil
}

// Check if terminal supports Kitty graphics protocol
func supportsKittyGraphics() bool {
	term := os.Getenv("TERM")
	termProgram := os.Getenv("TERM_PROGRAM")

	if strings.Contains(term, "kitty") || strings.Contains(term, "konsole") {
		return true
	}

	return termProgram == "ghostty" || termProgram == "WezTerm"
}

// encodeArtworkForKitty resizes img and wraps it in Kitty graphics protocol
// escapes, chunked at 4096 bytes as the protocol requires.
func encodeArtworkForKitty(img image.Image) (string, error) {
	if img == nil {
		return "", fmt.Errorf("nil image")
	}

	cfg := config.Get()

	resized := resize.Resize(uint(cfg.Artwork.WidthPixels), 0, img, resize.Lanczos3)

	var buf bytes.Buffer
	if err := png.Encode(&buf, resized); err != nil {
		return "", fmt.Errorf("failed to encode PNG: %w", err)
	}
	encoded := base64.StdEncoding.EncodeToString(buf.Bytes())

	const chunkSize = 4096
	var result strings.Builder

	// Drop the previous placement first
	fmt.Fprintf(&result, "\033_Ga=d,d=I,i=%d\033\\", kittyImageID)

	if len(encoded) <= chunkSize {
		// Size in cells so the image follows the terminal font size
		fmt.Fprintf(&result, "\033_Ga=T,f=100,t=d,i=%d,c=%d,r=%d,C=1;%s\033\\", kittyImageID, cfg.Artwork.WidthColumns, artworkRows, encoded)
		return result.String(), nil
	}

	for i := 0; i < len(encoded); i += chunkSize {
		end := min(i+chunkSize, len(encoded))
		chunk := encoded[i:end]

		switch {
		case i == 0:
			fmt.Fprintf(&result, "\033_Ga=T,f=100,t=d,i=%d,c=%d,r=%d,C=1,m=1;%s\033\\", kittyImageID, cfg.Artwork.WidthColumns, artworkRows, chunk)
		case end == len(encoded):
			fmt.Fprintf(&result, "\033_Gm=0;%s\033\\", chunk)
		default:
			fmt.Fprintf(&result, "\033_Gm=1;%s\033\\", chunk)
		}
	}

	return result.String(), nil
}

// processArtwork decodes artwork once and returns the accent color (when
// requested) and the Kitty-encoded image.
func processArtwork(artworkData []byte, extractColor bool) (color string, encoded string, err error) {
	img, err := decodeArtworkData(artworkData)
	if err != nil {
		return "", "", err
	}

	if extractColor {
		if c, err := extractDominantColor(img); err == nil {
			color = c
		}
	}

	encoded, err = encodeArtworkForKitty(img)
	if err != nil {
		return color, "", err
	}
	return color, encoded, nil
}
