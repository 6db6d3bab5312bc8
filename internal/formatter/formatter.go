// package formatter exports catalog listings to CSV, Markdown, plain text, YAML and JSON
package formatter

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/mixradio/internal/models"
	"github.com/desertthunder/mixradio/internal/shared"
)

// Format names an export encoding.
type Format string

const (
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "txt"
	FormatYAML     Format = "yaml"
)

// ParseFormat accepts the format names plus "md", "text" and "yml".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "txt", "text":
		return FormatText, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidFlag, s)
}

// Ext is the file extension for f.
func (f Format) Ext() string {
	switch f {
	case FormatMarkdown:
		return ".md"
	case FormatCSV:
		return ".csv"
	case FormatText:
		return ".txt"
	case FormatYAML:
		return ".yaml"
	}
	return ".json"
}

// Chart is a titled list of products, the unit every exporter works on.
type Chart struct {
	ID          string           `json:"id" yaml:"id"`
	Title       string           `json:"title" yaml:"title"`
	Description string           `json:"description,omitempty" yaml:"description,omitempty"`
	Products    []models.Product `json:"products" yaml:"-"`
	CoverURL    string           `json:"cover,omitempty" yaml:"cover,omitempty"`
}

// ExportToCSV writes one row per product: ID, Name, Category, Performers, Genres, Released,
// Duration, Price.
func ExportToCSV(chart *Chart) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Name", "Category", "Performers", "Genres", "Released", "Duration", "Price"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, p := range chart.Products {
		record := []string{
			p.ID,
			p.Name,
			p.Category.String(),
			p.PerformerNames(),
			genreNames(p.Genres),
			releaseDate(p),
			strconv.Itoa(p.Duration),
			price(p),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

// ArtistsToCSV writes one row per artist: ID, Name, Country, Genres.
func ArtistsToCSV(artists []models.Artist) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"ID", "Name", "Country", "Genres"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}
	for _, a := range artists {
		if err := writer.Write([]string{a.ID, a.Name, a.Country, genreNames(a.Genres)}); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportToMarkdown renders chart as a numbered list with an optional cover image.
func ExportToMarkdown(chart *Chart, imageFilename string) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", chart.Title)
	if imageFilename != "" {
		fmt.Fprintf(&buf, "![Cover](%s)\n\n", imageFilename)
	}
	if chart.Description != "" {
		fmt.Fprintf(&buf, "**Description**: %s\n\n", chart.Description)
	}
	fmt.Fprintf(&buf, "**Items**: %d\n\n", len(chart.Products))

	buf.WriteString("## Products\n\n")
	for i, p := range chart.Products {
		suffix := ""
		if p.Duration > 0 {
			suffix = fmt.Sprintf(" [%s]", shared.FormatDuration(p.Duration))
		}
		if released := releaseDate(p); released != "" {
			suffix += fmt.Sprintf(" (%s)", released)
		}
		fmt.Fprintf(&buf, "%d. %s - %s%s\n", i+1, performerOrUnknown(p), p.Name, suffix)
	}
	return buf.Bytes(), nil
}

// ExportToText renders chart as plain numbered lines.
func ExportToText(chart *Chart) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Chart: %s\n", chart.Title)
	if chart.Description != "" {
		fmt.Fprintf(&buf, "Description: %s\n", chart.Description)
	}
	fmt.Fprintf(&buf, "Items: %d\n\n", len(chart.Products))

	for i, p := range chart.Products {
		fmt.Fprintf(&buf, "%d. %s - %s\n", i+1, performerOrUnknown(p), p.Name)
	}
	return buf.Bytes(), nil
}

// ArtistsToText renders one "N. Name (country)" line per artist.
func ArtistsToText(artists []models.Artist) []byte {
	var buf bytes.Buffer
	for i, a := range artists {
		if a.Country != "" {
			fmt.Fprintf(&buf, "%d. %s (%s)\n", i+1, a.Name, a.Country)
			continue
		}
		fmt.Fprintf(&buf, "%d. %s\n", i+1, a.Name)
	}
	return buf.Bytes()
}

// Export encodes chart in format.
func Export(chart *Chart, format Format) ([]byte, error) {
	switch format {
	case FormatCSV:
		return ExportToCSV(chart)
	case FormatMarkdown:
		return ExportToMarkdown(chart, "")
	case FormatText:
		return ExportToText(chart)
	case FormatYAML:
		return ExportToYAML(chart)
	}
	return shared.MarshalJSON(chart, true)
}

var unsafeNameChars = strings.NewReplacer("/", "_", "\\", "_", ":", "_", "\x00", "")

// SafeFileName turns a service supplied id into a single path element. It returns "" when
// nothing usable is left.
func SafeFileName(name string) string {
	name = filepath.Base(unsafeNameChars.Replace(strings.TrimSpace(name)))
	name = strings.TrimLeft(name, ".")
	if name == "" || name == string(filepath.Separator) {
		return ""
	}
	return name
}

// WriteExport writes chart to dir/{base}{ext} and returns the path. An empty base uses the
// chart id.
func WriteExport(chart *Chart, format Format, dir, base string) (string, error) {
	if base == "" {
		base = chart.ID
	}
	base = SafeFileName(base)
	if base == "" {
		return "", fmt.Errorf("%w: export needs a file name", shared.ErrMissingArgument)
	}

	data, err := Export(chart, format)
	if err != nil {
		return "", fmt.Errorf("failed to generate %s: %w", format, err)
	}

	if dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}
	path := filepath.Join(dir, base+format.Ext())
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s file: %w", format, err)
	}
	return path, nil
}

// MarkdownExportResult lists the files WriteMarkdownExport created.
type MarkdownExportResult struct {
	Directory  string
	Files      []string
	CoverImage string
}

// WriteMarkdownExport writes {dir}/README.md plus {dir}/cover.jpg when chart has a cover URL.
// A cover that cannot be fetched is skipped.
func WriteMarkdownExport(ctx context.Context, client *http.Client, chart *Chart, outputDir string) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = SafeFileName(chart.ID)
	}
	if outputDir == "" {
		return nil, fmt.Errorf("%w: export needs a directory", shared.ErrMissingArgument)
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &MarkdownExportResult{Directory: outputDir}

	var coverFilename string
	if chart.CoverURL != "" {
		if data, err := DownloadImage(ctx, client, chart.CoverURL); err == nil {
			coverPath := filepath.Join(outputDir, "cover.jpg")
			if err := os.WriteFile(coverPath, data, 0644); err == nil {
				coverFilename = "cover.jpg"
				result.CoverImage = coverPath
				result.Files = append(result.Files, coverPath)
			}
		}
	}

	data, err := ExportToMarkdown(chart, coverFilename)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}
	mdFile := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(mdFile, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}
	result.Files = append(result.Files, mdFile)
	return result, nil
}

// DownloadImage fetches url with client (nil uses a 30s timeout client).
func DownloadImage(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty URL provided")
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create image request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}
	return data, nil
}

// Manifest summarises a multi-chart export.
type Manifest struct {
	CreatedAt time.Time       `json:"created_at"`
	Format    Format          `json:"format"`
	Directory string          `json:"directory"`
	Succeeded int             `json:"succeeded"`
	Failed    int             `json:"failed"`
	Entries   []ManifestEntry `json:"entries"`
}

// ManifestEntry is one chart of a [Manifest].
type ManifestEntry struct {
	ID    string   `json:"id"`
	Title string   `json:"title"`
	Files []string `json:"files,omitempty"`
	Error string   `json:"error,omitempty"`
}

// WriteManifest writes m as indented JSON to path.
func WriteManifest(m *Manifest, path string) error {
	data, err := shared.MarshalJSON(m, true)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

func genreNames(genres []models.Genre) string {
	names := make([]string, 0, len(genres))
	for _, g := range genres {
		names = append(names, g.Name)
	}
	return strings.Join(names, "; ")
}

func releaseDate(p models.Product) string {
	if p.ReleaseDate == nil {
		return ""
	}
	return p.ReleaseDate.Format("2006-01-02")
}

func price(p models.Product) string {
	if p.Price == nil {
		return ""
	}
	return strconv.FormatFloat(p.Price.Value, 'f', 2, 64) + " " + p.Price.Currency
}

func performerOrUnknown(p models.Product) string {
	if names := p.PerformerNames(); names != "" {
		return names
	}
	return "Unknown Artist"
}
