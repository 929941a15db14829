// Package catalog imports products from spreadsheet exports of the
// competition catalog (.csv, .xls, .xlsx).
package catalog

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/poiesic/wheretobuy/core"
)

// Header aliases, matched case-insensitively ignoring spaces, '_' and '-'.
var aliases = map[string][]string{
	"id":       {"competitionsubmissionsid", "id", "productid"},
	"name":     {"brandname", "productname", "name"},
	"producer": {"producername", "producer", "brand"},
	"varietal": {"variety1name", "varietal", "variety", "grape"},
	"vintage":  {"vintagename", "vintage", "year"},
	"category": {"maincategoryname", "category"},
	"image":    {"labelfile", "imageurl", "image", "label"},
}

// Options controls row mapping.
type Options struct {
	// HeaderRow is the 1-based header line. Default: 1
	HeaderRow int

	// ImageBaseURL is prepended to label file names that are not URLs.
	ImageBaseURL string
}

// Report summarizes an import.
type Report struct {
	Rows    int
	Skipped []string // one message per row that could not be imported
}

// LoadFile reads products from a catalog file.
func LoadFile(path string, opts Options) ([]*core.Product, *Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	return Load(f, path, opts)
}

// Load reads products from r, choosing the parser by filename extension.
func Load(r io.Reader, filename string, opts Options) ([]*core.Product, *Report, error) {
	rows, err := ReadRows(r, filename, opts.HeaderRow)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", filename, err)
	}
	products, report := Products(rows, opts)
	slog.Info("catalog loaded",
		"file", filename,
		"rows", report.Rows,
		"products", len(products),
		"skipped", len(report.Skipped))
	return products, report, nil
}

// Products maps header -> value rows onto catalog products. Rows without a
// product name or with a malformed ID are skipped and reported.
func Products(rows []map[string]string, opts Options) ([]*core.Product, *Report) {
	report := &Report{Rows: len(rows)}
	products := make([]*core.Product, 0, len(rows))
	headerRow := opts.HeaderRow
	if headerRow < 1 {
		headerRow = 1
	}

	for i, row := range rows {
		line := headerRow + i + 1
		fields := resolve(row)

		p := &core.Product{
			Name:     fields["name"],
			Producer: fields["producer"],
			Varietal: fields["varietal"],
			Vintage:  fields["vintage"],
			Category: fields["category"],
			ImageURL: imageURL(opts.ImageBaseURL, fields["image"]),
		}
		if raw := fields["id"]; raw != "" {
			id, err := strconv.ParseUint(strings.TrimSuffix(raw, ".0"), 10, 64)
			if err != nil {
				report.Skipped = append(report.Skipped, fmt.Sprintf("row %d: invalid id %q", line, raw))
				continue
			}
			p.Id = core.ID(id)
		}
		if err := core.ValidateProduct(p); err != nil {
			report.Skipped = append(report.Skipped, fmt.Sprintf("row %d: %v", line, err))
			continue
		}
		products = append(products, p)
	}
	return products, report
}

// resolve maps a row onto canonical field names. The first non-empty
// aliased column wins.
func resolve(row map[string]string) map[string]string {
	byKey := make(map[string]string, len(row))
	for header, value := range row {
		k := headerKey(header)
		if _, seen := byKey[k]; !seen || byKey[k] == "" {
			byKey[k] = value
		}
	}

	out := make(map[string]string, len(aliases))
	for field, names := range aliases {
		for _, name := range names {
			if v := strings.TrimSpace(byKey[name]); v != "" {
				out[field] = v
				break
			}
		}
	}
	return out
}

func headerKey(h string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(h) {
		switch r {
		case ' ', '_', '-', '\t':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func imageURL(base, label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return ""
	}
	lower := strings.ToLower(label)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return label
	}
	if base == "" {
		return ""
	}
	if strings.HasSuffix(base, "/") || strings.HasPrefix(label, "/") {
		return base + label
	}
	return base + "/" + label
}
