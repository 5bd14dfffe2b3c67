package config

import (
	"flag"
	"strings"
)

var (
	flagConfig      = flag.String("config", "", "Path to config file")
	flagDebug       = flag.Bool("debug", false, "Enable debug logging")
	flagLogFile     = flag.String("log-file", "", "Write JSON logs to this file")
	flagEncoding    = flag.String("encoding", "", "Layer data encoding for encode (xml, csv, base64)")
	flagCompression = flag.String("compression", "", "Layer data compression for encode (none, zlib, gzip, zstd)")
	flagAssets      = flag.String("assets", "", "Comma-separated asset roots (directories or zip packs)")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the arguments left after the global flags.
func Args() []string {
	return flag.Args()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
	if *flagEncoding != "" {
		cfg.Encode.Encoding = *flagEncoding
	}
	if *flagCompression != "" {
		cfg.Encode.Compression = *flagCompression
	}
	if *flagAssets != "" {
		for _, root := range strings.Split(*flagAssets, ",") {
			if root = strings.TrimSpace(root); root != "" {
				cfg.Assets.Roots = append(cfg.Assets.Roots, root)
			}
		}
	}
}
