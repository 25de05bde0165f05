package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/klauspost/compress/zip"

	"github.com/unalkalkan/Prompter/pkg/types"
)

// ArchiveVersion is the layout version written to manifest.json
const ArchiveVersion = "1.0"

// Manifest represents the top-level deck manifest inside an archive
type Manifest struct {
	DeckID      string           `json:"deck_id"`
	Title       string           `json:"title"`
	Thresholds  types.Thresholds `json:"thresholds"`
	TotalLines  int              `json:"total_lines"`
	TotalSlides int              `json:"total_slides"`
	CreatedAt   time.Time        `json:"created_at"`
	Version     string           `json:"version"`
	Files       []string         `json:"files"`
}

// ArchiveEncoder bundles a deck into a ZIP archive:
//
//	manifest.json
//	deck.txt
//	deck.html
//	slides/001.json ...
type ArchiveEncoder struct{}

func (ArchiveEncoder) Encode(w io.Writer, deck *types.Deck) error {
	zipWriter := zip.NewWriter(w)

	files := []string{"deck.txt", "deck.html"}
	for _, slide := range deck.Slides {
		files = append(files, slidePath(slide.Number))
	}

	manifest := &Manifest{
		DeckID:      deck.ID,
		Title:       deck.Title,
		Thresholds:  deck.Thresholds,
		TotalLines:  deck.TotalLines,
		TotalSlides: len(deck.Slides),
		CreatedAt:   deck.CreatedAt,
		Version:     ArchiveVersion,
		Files:       files,
	}
	if err := addJSONFile(zipWriter, "manifest.json", manifest); err != nil {
		return fmt.Errorf("failed to add manifest: %w", err)
	}

	if err := addEncoded(zipWriter, "deck.txt", TextEncoder{}, deck); err != nil {
		return err
	}
	if err := addEncoded(zipWriter, "deck.html", HTMLEncoder{}, deck); err != nil {
		return err
	}

	for _, slide := range deck.Slides {
		if err := addJSONFile(zipWriter, slidePath(slide.Number), slide); err != nil {
			return fmt.Errorf("failed to add slide %d: %w", slide.Number, err)
		}
	}

	if err := zipWriter.Close(); err != nil {
		return fmt.Errorf("failed to close zip: %w", err)
	}
	return nil
}

func (ArchiveEncoder) ContentType() string { return "application/zip" }
func (ArchiveEncoder) Extension() string   { return "zip" }
func (ArchiveEncoder) Binary() bool        { return true }

func slidePath(number int) string {
	return path.Join("slides", fmt.Sprintf("%03d.json", number))
}

// addJSONFile adds a JSON file to the ZIP
func addJSONFile(zipWriter *zip.Writer, name string, data any) error {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	writer, err := zipWriter.Create(name)
	if err != nil {
		return fmt.Errorf("failed to create zip entry: %w", err)
	}

	if _, err := writer.Write(jsonData); err != nil {
		return fmt.Errorf("failed to write data: %w", err)
	}

	return nil
}

// addEncoded adds the output of another encoder to the ZIP
func addEncoded(zipWriter *zip.Writer, name string, enc Encoder, deck *types.Deck) error {
	var buf bytes.Buffer
	if err := enc.Encode(&buf, deck); err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}

	writer, err := zipWriter.Create(name)
	if err != nil {
		return fmt.Errorf("failed to create zip entry: %w", err)
	}

	if _, err := io.Copy(writer, &buf); err != nil {
		return fmt.Errorf("failed to copy data: %w", err)
	}

	return nil
}
