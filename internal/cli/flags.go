package cli

import "flag"

// ToolFlags are common flags for all batch tools
type ToolFlags struct {
	Limit      int
	Offset     int
	BatchSize  int
	Headless   bool
	DryRun     bool
	Resume     bool
	Verbose    bool
	ConfigPath string
	Out        string
	Format     string
}

// ParseToolFlags parses common batch tool flags from the command line
func ParseToolFlags() ToolFlags {
	var flags ToolFlags
	flag.IntVar(&flags.Limit, "limit", 0, "Maximum products to process (0 = all)")
	flag.IntVar(&flags.Offset, "offset", 0, "Catalog index to start from")
	flag.IntVar(&flags.BatchSize, "batch-size", 10, "Products per batch")
	flag.BoolVar(&flags.Headless, "headless", false, "Use a headless browser for page fetches")
	flag.BoolVar(&flags.DryRun, "dry-run", false, "Run without persisting results")
	flag.BoolVar(&flags.Resume, "resume", false, "Resume from the last processed index")
	flag.BoolVar(&flags.Verbose, "verbose", false, "Verbose output")
	flag.StringVar(&flags.ConfigPath, "config", "", "Path to config file (default config.yaml, then env)")
	flag.StringVar(&flags.Out, "out", "", "Output file path for exports")
	flag.StringVar(&flags.Format, "format", "json", "Export format: json or csv")
	flag.Parse()
	return flags
}
