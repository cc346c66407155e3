package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/chrissnell/bandmap/internal/sentinelhub"
	"github.com/chrissnell/bandmap/pkg/config"
	"github.com/chrissnell/bandmap/pkg/responseformat"
	"go.uber.org/zap"
)

// App represents the main application
type App struct {
	configProvider config.ConfigProvider
	logger         *zap.SugaredLogger
	formatter      *responseformat.Formatter
	out            io.Writer
	newClient      func(ctx context.Context) (*sentinelhub.Client, error)
}

// New creates a new application instance writing results to out
func New(configProvider config.ConfigProvider, logger *zap.SugaredLogger, formatter *responseformat.Formatter, out io.Writer) *App {
	a := &App{
		configProvider: configProvider,
		logger:         logger,
		formatter:      formatter,
		out:            out,
	}
	a.newClient = a.sentinelHubClient
	return a
}

// Commands lists every command Run accepts
var Commands = []string{
	"describe", "evalscript", "raw-evalscript", "transform", "transform-csv",
	"datasets", "bands", "tokeninfo", "request", "process",
}

// Run executes one command. Remote commands are cancelled on SIGINT/SIGTERM.
func (a *App) Run(ctx context.Context, command string, args []string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Set up signal handling
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)
	go func() {
		select {
		case <-sigs:
			a.logger.Info("shutdown signal received, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	switch command {
	case "describe":
		return a.Describe()
	case "evalscript":
		return a.Evalscript()
	case "raw-evalscript":
		return a.RawEvalscript(args)
	case "transform":
		return a.Transform(args)
	case "transform-csv":
		return a.transformCSVFile(args)
	case "datasets":
		return a.Datasets(ctx)
	case "bands":
		return a.Bands(ctx, args)
	case "tokeninfo":
		return a.TokenInfo(ctx)
	case "request":
		return a.Request(args)
	case "process":
		return a.Process(ctx, args)
	case "":
		return fmt.Errorf("no command given, expected one of %v", Commands)
	}
	return fmt.Errorf("unknown command %q, expected one of %v", command, Commands)
}

func (a *App) sentinelHubClient(ctx context.Context) (*sentinelhub.Client, error) {
	sh, err := a.configProvider.GetSentinelHubConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading sentinel hub configuration: %w", err)
	}

	return sentinelhub.New(ctx, sentinelhub.Options{
		ClientID:     sh.ClientID,
		ClientSecret: sh.ClientSecret,
		APIURL:       sh.APIURL,
		OAuth2URL:    sh.OAuth2URL,
		Timeout:      sh.Timeout,
		Logger:       a.logger,
	})
}
