package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	ipk "github.com/hashicorp/go-ipk"
)

// CLI are the cli parameters for go-ipk binary
type CLI struct {
	Command      string           `arg:"" name:"command" enum:"control,data,files,cat,info" help:"One of: control (extract control files), data (extract data files), files (list data file names), cat (print control entry), info (print parsed control fields)."`
	Package      string           `arg:"" name:"package" help:"Path to package file." type:"existing file"`
	Destination  string           `arg:"" name:"destination" optional:"" default:"." help:"Output directory for control and data."`
	BufferSize   int              `optional:"" default:"4096" help:"Buffer size for copying entry data (in bytes)."`
	MaxInputSize int64            `optional:"" default:"-1" help:"Maximum input size that allowed is (in bytes). (disable check: -1)"`
	Prefix       string           `optional:"" help:"File name prefix for extracted control files."`
	Telemetry    bool             `short:"T" optional:"" default:"false" help:"Print telemetry data to log after extraction."`
	Verbose      bool             `short:"v" optional:"" help:"Verbose logging."`
	Version      kong.VersionFlag `short:"V" optional:"" help:"Print release version information."`
}

// Run the entrypoint into go-ipk as a cli tool
func Run(version, commit, date string) {
	ctx := context.Background()
	var cli CLI
	kong.Parse(&cli,
		kong.Description("An ipk package inspection and extraction utility"),
		kong.UsageOnError(),
		kong.Vars{
			"version": fmt.Sprintf("%s (%s), commit %s, built at %s", filepath.Base(os.Args[0]), version, commit, date),
		},
	)

	// Check for verbose output
	logLevel := slog.LevelError
	if cli.Verbose {
		logLevel = slog.LevelDebug
	}

	// setup logger
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))

	// setup telemetry hook
	telemetryToLog := func(ctx context.Context, td *ipk.TelemetryData) {
		if cli.Telemetry {
			logger.Info("extraction finished", "telemetry", td)
		}
	}

	// process cli params
	cfg := ipk.NewConfig(
		ipk.WithBufferSize(cli.BufferSize),
		ipk.WithLogger(logger),
		ipk.WithMaxInputSize(cli.MaxInputSize),
		ipk.WithTelemetryHook(telemetryToLog),
	)

	pkg := ipk.NewPackage(cli.Package)

	var err error
	switch cli.Command {
	case "control":
		err = ipk.ExtractControlFilesWithPrefix(ctx, ipk.NewTargetDisk(), pkg, cli.Destination, cli.Prefix, cfg)
	case "data":
		// the destination is handed to the extraction as a raw name
		// prefix, a trailing separator makes it act as a directory
		dst := cli.Destination
		if !strings.HasSuffix(dst, "/") {
			dst += "/"
		}
		err = ipk.ExtractDataFiles(ctx, ipk.NewTargetDisk(), pkg, dst, cfg)
	case "files":
		err = ipk.ExtractDataFileNames(ctx, pkg, os.Stdout, cfg)
	case "cat":
		err = ipk.ExtractControlFile(ctx, pkg, os.Stdout, cfg)
	case "info":
		err = printControl(ctx, pkg, os.Stdout, cfg)
	}

	if err != nil {
		log.Println(fmt.Errorf("error during extraction: %w", err))
		os.Exit(-1)
	}
}

// printControl parses the control data of pkg and prints the fields in
// order of appearance.
func printControl(ctx context.Context, pkg *ipk.Package, w io.Writer, cfg *ipk.Config) error {
	c, err := ipk.ReadControl(ctx, pkg, cfg)
	if err != nil {
		return err
	}
	for _, f := range c.Fields {
		fmt.Fprintf(w, "%s: %s\n", f.Name, f.Value)
	}
	return nil
}
