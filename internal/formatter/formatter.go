// package formatter provides functions to export discovery runs to various formats (CSV, Markdown, plain text, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/desertthunder/lfx/internal/models"
	"github.com/desertthunder/lfx/internal/shared"
)

// defaultBase returns the fallback base filename for a run export
func defaultBase(export *models.RunExport) string {
	generated := export.GeneratedAt
	if generated.IsZero() {
		generated = time.Now()
	}
	return fmt.Sprintf("lfx_run_%s", generated.Format("2006-01-02"))
}

// ExportToCSV converts a RunExport to CSV format with columns: Position, Artist, Album, Matched, Via, Track URI.
//
// The match columns stay empty when the run stopped at discovery.
func ExportToCSV(export *models.RunExport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Position", "Artist", "Album", "Matched", "Via", "Track URI"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i, rec := range export.Recommendations {
		matched, via, uri := "", "", ""
		if i < len(export.Matches) {
			match := export.Matches[i]
			matched = strconv.FormatBool(match.Matched)
			via = string(match.Via)
			uri = match.TrackURI
		}

		record := []string{
			strconv.Itoa(i + 1),
			rec.ArtistName,
			rec.AlbumName,
			matched,
			via,
			uri,
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

// ExportToMarkdown converts a RunExport to Markdown format
func ExportToMarkdown(export *models.RunExport) ([]byte, error) {
	var buf bytes.Buffer

	generated := export.GeneratedAt
	if generated.IsZero() {
		generated = time.Now()
	}

	buf.WriteString(fmt.Sprintf("# Last.fm Discoveries - %s\n\n", generated.Format("2006-01-02")))

	buf.WriteString(fmt.Sprintf("**Listener**: %s\n", export.Username))
	buf.WriteString(fmt.Sprintf("**Period**: %s\n", export.Period))
	buf.WriteString(fmt.Sprintf("**Recommendations**: %d\n\n", len(export.Recommendations)))

	if export.Playlist != nil && export.Playlist.PublicURL != "" {
		buf.WriteString(fmt.Sprintf("**Playlist**: %s\n\n", export.Playlist.PublicURL))
	}

	buf.WriteString("## Recommendations\n\n")
	for i, rec := range export.Recommendations {
		note := ""
		if i < len(export.Matches) {
			if export.Matches[i].Matched {
				note = fmt.Sprintf(" [matched via %s]", export.Matches[i].Via)
			} else {
				note = " [no match]"
			}
		}
		buf.WriteString(fmt.Sprintf("%d. %s - %s%s\n", i+1, rec.ArtistName, rec.AlbumName, note))
	}

	return buf.Bytes(), nil
}

// ExportToText converts a RunExport to plain text format
func ExportToText(export *models.RunExport) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Last.fm Discoveries for %s (%s)\n", export.Username, export.Period))
	if export.Playlist != nil && export.Playlist.PublicURL != "" {
		buf.WriteString(fmt.Sprintf("Playlist: %s\n", export.Playlist.PublicURL))
	}
	buf.WriteString(fmt.Sprintf("Recommendations: %d\n\n", len(export.Recommendations)))

	for i, rec := range export.Recommendations {
		buf.WriteString(fmt.Sprintf("%d. %s - %s\n", i+1, rec.ArtistName, rec.AlbumName))
	}

	return buf.Bytes(), nil
}

// ExportToJSON converts a RunExport to indented JSON
func ExportToJSON(export *models.RunExport) ([]byte, error) {
	return shared.MarshalJSON(export, true)
}

// runMetadata is the {base}_run.json sidecar: run facts without the lists
type runMetadata struct {
	Username        string    `json:"username"`
	Period          string    `json:"period"`
	GeneratedAt     time.Time `json:"generated_at"`
	Recommendations int       `json:"recommendations"`
	Matched         int       `json:"matched"`
	PlaylistURL     string    `json:"playlist_url,omitempty"`
}

// ToRunJSON generates a JSON representation of run metadata (without the recommendation list)
func ToRunJSON(export *models.RunExport) ([]byte, error) {
	meta := runMetadata{
		Username:        export.Username,
		Period:          export.Period,
		GeneratedAt:     export.GeneratedAt,
		Recommendations: len(export.Recommendations),
	}

	for _, match := range export.Matches {
		if match.Matched {
			meta.Matched++
		}
	}

	if export.Playlist != nil {
		meta.PlaylistURL = export.Playlist.PublicURL
	}

	return shared.MarshalJSON(meta, true)
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	RecommendationsFile string
	RunFile             string
}

// WriteCSVExport exports a run to CSV format with an accompanying run metadata JSON file.
//
// Defaults to lfx_run_{date} as the base filename & creates {base}_recommendations.csv and {base}_run.json
func WriteCSVExport(export *models.RunExport, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = defaultBase(export)
	}

	csvData, err := ExportToCSV(export)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	recommendationsFile := baseFilepath + "_recommendations.csv"
	if err := os.WriteFile(recommendationsFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	runJSON, err := ToRunJSON(export)
	if err != nil {
		return nil, fmt.Errorf("failed to generate run JSON: %w", err)
	}

	runFile := baseFilepath + "_run.json"
	if err := os.WriteFile(runFile, runJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write run metadata file: %w", err)
	}

	return &CSVExportResult{
		RecommendationsFile: recommendationsFile,
		RunFile:             runFile,
	}, nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory string
	Files     []string
}

// WriteMarkdownExport exports a run to Markdown format in a dedicated directory.
//
// Directory name defaults to lfx_run_{date}. Creates {dir}/README.md.
func WriteMarkdownExport(export *models.RunExport, outputDir string) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = defaultBase(export)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &MarkdownExportResult{
		Directory: outputDir,
		Files:     []string{},
	}

	mdData, err := ExportToMarkdown(export)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := fmt.Sprintf("%s/README.md", outputDir)
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	result.Files = append(result.Files, mdFile)

	return result, nil
}

// WriteTextExport exports a run to plain text format.
//
// Defaults to lfx_run_{date}_recommendations.txt as the filename.
func WriteTextExport(export *models.RunExport, filepath string) (string, error) {
	if filepath == "" {
		filepath = fmt.Sprintf("%s_recommendations.txt", defaultBase(export))
	}

	textData, err := ExportToText(export)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(filepath, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return filepath, nil
}

// WriteJSONExport exports a full run to a JSON file.
//
// Defaults to lfx_run_{date}.json as the filename.
func WriteJSONExport(export *models.RunExport, filepath string) (string, error) {
	if filepath == "" {
		filepath = fmt.Sprintf("%s.json", defaultBase(export))
	}

	jsonData, err := ExportToJSON(export)
	if err != nil {
		return "", fmt.Errorf("failed to generate JSON: %w", err)
	}

	if err := os.WriteFile(filepath, jsonData, 0644); err != nil {
		return "", fmt.Errorf("failed to write JSON file: %w", err)
	}

	return filepath, nil
}
