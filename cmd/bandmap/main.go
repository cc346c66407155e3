package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/chrissnell/bandmap/internal/app"
	"github.com/chrissnell/bandmap/internal/constants"
	"github.com/chrissnell/bandmap/internal/log"
	"github.com/chrissnell/bandmap/pkg/config"
	"github.com/chrissnell/bandmap/pkg/responseformat"
)

func main() {
	cfgFile := flag.String("config", "config.yaml", "Path to YAML configuration. When the file is absent, credentials are read\n\t\t\t  from SH_CLIENT_ID and SH_CLIENT_SECRET")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	format := flag.String("format", "json", "Output format: 'json' or 'msgpack'")
	outFile := flag.String("out", "", "Write results to this file instead of stdout")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Usage = usage
	flag.Parse()

	if *showVersion {
		fmt.Printf("bandmap %s\n", constants.Version)
		os.Exit(0)
	}

	provider, source, err := loadConfig(*cfgFile, isFlagSet("config"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logCfg, err := provider.GetLogConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		provider.Close()
		os.Exit(1)
	}

	// Set up logging
	err = log.Init(log.Options{
		Debug:      *debug || logCfg.Debug,
		File:       logCfg.File,
		MaxSizeMB:  logCfg.MaxSizeMB,
		MaxBackups: logCfg.MaxBackups,
	})
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		provider.Close()
		os.Exit(1)
	}

	log.Debugf("configuration loaded from %s", source)

	if err := run(provider, *format, *outFile); err != nil {
		log.Errorf("%s: %v", flag.Arg(0), err)
		log.Sync()
		os.Exit(1)
	}
	log.Sync()
}

// run executes the command named on the command line and releases the
// config provider once it returns
func run(provider config.ConfigProvider, format, outFile string) error {
	defer provider.Close()

	log.Debugw("starting bandmap", "version", constants.Version, "command", flag.Arg(0))

	formatter, err := responseformat.NewFormatter(format)
	if err != nil {
		return err
	}

	var out io.Writer = os.Stdout
	if outFile != "" {
		f, err := os.Create(outFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	application := app.New(provider, log.GetSugaredLogger(), formatter, out)
	if err := application.Run(context.Background(), flag.Arg(0), flag.Args()[min(1, flag.NArg()):]); err != nil {
		return err
	}

	if outFile != "" {
		log.Infof("results written to %s", outFile)
	}
	return nil
}

func loadConfig(cfgFile string, explicit bool) (config.ConfigProvider, string, error) {
	filename, _ := filepath.Abs(cfgFile)

	if _, err := os.Stat(filename); errors.Is(err, fs.ErrNotExist) && !explicit {
		return config.NewEnvProvider(), "environment", nil
	}

	provider := config.NewYAMLProvider(filename)
	if _, err := provider.LoadConfig(); err != nil {
		return nil, "", fmt.Errorf("error reading config file. Did you pass the -config flag? Run with -h for help: %w", err)
	}
	return provider, filename, nil
}

func isFlagSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <command> [args]\n\nCommands:\n  %s\n\nFlags:\n",
		os.Args[0], strings.Join(app.Commands, "\n  "))
	flag.PrintDefaults()
}
