package metrics

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Report formats accepted by Result.Write.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatCSV  = "csv"
)

// ImageResult is the outcome for one image.
type ImageResult struct {
	Path       string        `json:"path" yaml:"path"`
	Offsets    []int         `json:"offsets,omitempty" yaml:"offsets,omitempty"`
	WordnetIDs []string      `json:"wordnet_ids,omitempty" yaml:"wordnet_ids,omitempty"`
	Matched    bool          `json:"matched" yaml:"matched"`
	Error      string        `json:"error,omitempty" yaml:"error,omitempty"`
	Elapsed    time.Duration `json:"elapsed_ns" yaml:"elapsed"`
	Err        error         `json:"-" yaml:"-"`
}

// Result is the tally of one run.
type Result struct {
	Total      int           `json:"total" yaml:"total"`
	Matched    int           `json:"matched" yaml:"matched"`
	Failed     int           `json:"failed" yaml:"failed"`
	Percentage float64       `json:"percentage" yaml:"percentage"`
	Strict     bool          `json:"strict" yaml:"strict"`
	ExpectedID string        `json:"expected_id" yaml:"expected_id"`
	Duration   time.Duration `json:"duration_ns" yaml:"duration"`
	Images     []ImageResult `json:"images" yaml:"images"`
}

// FormatPercentage renders p without trailing zeros ("30", "12.5").
func FormatPercentage(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}

// Write renders the result in the given format. An empty format means text.
func (r *Result) Write(w io.Writer, format string) error {
	switch strings.ToLower(format) {
	case "", FormatText:
		_, err := fmt.Fprintf(w, "The match percentage is at %s%%\n", FormatPercentage(r.Percentage))
		return err
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	case FormatCSV:
		return r.writeCSV(w)
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

func (r *Result) writeCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"path", "matched", "wordnet_ids", "offsets", "error"}); err != nil {
		return err
	}
	for _, img := range r.Images {
		offsets := make([]string, len(img.Offsets))
		for i, o := range img.Offsets {
			offsets[i] = strconv.Itoa(o)
		}
		row := []string{
			img.Path,
			strconv.FormatBool(img.Matched),
			strings.Join(img.WordnetIDs, " "),
			strings.Join(offsets, " "),
			img.Error,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
