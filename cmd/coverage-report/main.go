// coverage-report summarizes ASIN discovery coverage across the helmet
// catalog, broken down by brand, category, and price band.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/helmwise/helmwise-backend/internal/catalog"
	"github.com/helmwise/helmwise-backend/internal/cli"
	"github.com/helmwise/helmwise-backend/internal/discovery"
	"github.com/helmwise/helmwise-backend/internal/infrastructure/blobstore"
	"github.com/helmwise/helmwise-backend/internal/infrastructure/config"
	"github.com/helmwise/helmwise-backend/internal/infrastructure/logging"
)

const toolName = "coverage-report"

// Breakdown is coverage within one group of products.
type Breakdown struct {
	Group      string  `json:"group"`
	Products   int     `json:"products"`
	Covered    int     `json:"covered"`
	Verified   int     `json:"verified"`
	CoveredPct float64 `json:"coveredPct"`
}

// Report is the full export payload.
type Report struct {
	Products   int                        `json:"products"`
	Covered    int                        `json:"covered"`
	Verified   int                        `json:"verified"`
	ByBrand    []Breakdown                `json:"byBrand"`
	ByCategory []Breakdown                `json:"byCategory"`
	ByBand     []Breakdown                `json:"byBand"`
	Gaps       []string                   `json:"gaps"`
	Entries    []discovery.CoverageEntry  `json:"entries"`
}

func main() {
	flags := cli.ParseToolFlags()

	path := flags.ConfigPath
	if path == "" {
		path = "config.yaml"
	}
	cfg := config.LoadOrEnvWithPath(path)
	logger := logging.NewToolLogger(cfg.Observability.Logging, toolName)

	if err := run(cfg, flags, logger); err != nil {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, flags cli.ToolFlags, logger *slog.Logger) error {
	cat, err := catalog.Load()
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	blobs, err := blobstore.NewFileStore(filepath.Join(cfg.Storage.DataDir, "stores"))
	if err != nil {
		return fmt.Errorf("open blob store: %w", err)
	}
	asins := discovery.NewStore(blobs)

	report := build(cat, asins)
	printReport(report)

	if flags.Out != "" {
		if err := export(report, flags.Out, flags.Format); err != nil {
			return fmt.Errorf("export report: %w", err)
		}
		logger.Info("report exported", "path", flags.Out, "format", flags.Format)
	}
	return nil
}

func build(cat *catalog.Catalog, asins *discovery.Store) Report {
	entries := asins.Coverage()
	covered := map[string]discovery.CoverageEntry{}
	for _, e := range entries {
		covered[e.ProductID] = e
	}

	report := Report{Products: cat.Len(), Entries: entries}

	type bucket struct{ products, covered, verified int }
	brands := map[string]*bucket{}
	categories := map[string]*bucket{}
	bands := map[string]*bucket{}
	tally := func(m map[string]*bucket, key string, e discovery.CoverageEntry, hit bool) {
		b := m[key]
		if b == nil {
			b = &bucket{}
			m[key] = b
		}
		b.products++
		if hit {
			b.covered++
			if e.Verified {
				b.verified++
			}
		}
	}

	for _, p := range cat.All() {
		e, hit := covered[p.ID]
		if hit {
			report.Covered++
			if e.Verified {
				report.Verified++
			}
		} else {
			report.Gaps = append(report.Gaps, p.ID)
		}
		tally(brands, p.Brand, e, hit)
		tally(categories, p.Category, e, hit)
		tally(bands, p.PriceBand(), e, hit)
	}

	collect := func(m map[string]*bucket) []Breakdown {
		out := make([]Breakdown, 0, len(m))
		for group, b := range m {
			pct := 0.0
			if b.products > 0 {
				pct = float64(b.covered) / float64(b.products) * 100
			}
			out = append(out, Breakdown{
				Group:      group,
				Products:   b.products,
				Covered:    b.covered,
				Verified:   b.verified,
				CoveredPct: pct,
			})
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Group < out[j].Group })
		return out
	}
	report.ByBrand = collect(brands)
	report.ByCategory = collect(categories)
	report.ByBand = collect(bands)
	sort.Strings(report.Gaps)

	return report
}

func printReport(r Report) {
	fmt.Printf("ASIN coverage: %d/%d products (%d verified)\n\n",
		r.Covered, r.Products, r.Verified)

	section := func(name string, rows []Breakdown) {
		fmt.Printf("%s:\n", name)
		for _, b := range rows {
			fmt.Printf("  %-20s %d/%d (%.0f%%), %d verified\n",
				b.Group, b.Covered, b.Products, b.CoveredPct, b.Verified)
		}
		fmt.Println()
	}
	section("By brand", r.ByBrand)
	section("By category", r.ByCategory)
	section("By price band", r.ByBand)

	if len(r.Gaps) > 0 {
		fmt.Println("Products without candidates:")
		for _, id := range r.Gaps {
			fmt.Printf("  - %s\n", id)
		}
	}
}

func export(r Report, out, format string) error {
	switch format {
	case "json":
		return cli.ExportJSON(out, r)
	case "csv":
		var rows [][]string
		add := func(kind string, bs []Breakdown) {
			for _, b := range bs {
				rows = append(rows, []string{
					kind, b.Group,
					strconv.Itoa(b.Products),
					strconv.Itoa(b.Covered),
					strconv.Itoa(b.Verified),
					strconv.FormatFloat(b.CoveredPct, 'f', 1, 64),
				})
			}
		}
		add("brand", r.ByBrand)
		add("category", r.ByCategory)
		add("band", r.ByBand)
		return cli.ExportCSV(out,
			[]string{"kind", "group", "products", "covered", "verified", "covered_pct"}, rows)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}
