package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// ErrVersionRequested indicates the user requested the CLI version and no further work should be done.
var ErrVersionRequested = errors.New("version requested")

// ServerRunner is the dependency required to run the serve command.
type ServerRunner interface {
	Run(ctx context.Context) error
}

// Overrides carries flag values that take precedence over the loaded
// configuration.
type Overrides struct {
	Port       int
	ConfigFile string
	Debug      bool

	// PortSet and DebugSet distinguish "flag left at default" from "flag
	// explicitly set to the default value".
	PortSet  bool
	DebugSet bool
}

// ServerFactory builds the fully wired server for the serve command. It runs
// lazily so flag parsing errors surface before any config is loaded.
type ServerFactory func(overrides Overrides) (ServerRunner, error)

// Arguments encapsulates IO writers injected from the host process.
type Arguments struct {
	OutWriter io.Writer
	ErrWriter io.Writer
}

// Dependencies captures the collaborators for the CLI.
type Dependencies struct {
	NewServer ServerFactory
	Args      Arguments
	Version   string
}

// NewRootCommand constructs the root Cobra command.
func NewRootCommand(deps Dependencies) *cobra.Command {
	versionString := deps.Version
	if versionString == "" {
		versionString = "v0.0.0"
	}

	root := &cobra.Command{
		Use:   "prsentry",
		Short: "AI-powered pull request review webhook service",
	}
	root.SilenceUsage = true
	root.SilenceErrors = true

	outWriter := deps.Args.OutWriter
	if outWriter == nil {
		outWriter = os.Stdout
	}
	errWriter := deps.Args.ErrWriter
	if errWriter == nil {
		errWriter = os.Stderr
	}
	root.SetOut(outWriter)
	root.SetErr(errWriter)

	root.AddCommand(serveCommand(deps.NewServer))

	var showVersion bool
	root.PersistentFlags().BoolVarP(&showVersion, "version", "v", false, "Show version and exit")
	versionHandler := func(cmd *cobra.Command, args []string) error {
		if showVersion {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), versionString)
			return ErrVersionRequested
		}
		return nil
	}
	root.PersistentPreRunE = versionHandler
	root.PreRunE = versionHandler
	root.RunE = func(cmd *cobra.Command, args []string) error {
		if err := versionHandler(cmd, args); err != nil {
			return err
		}
		return cmd.Help()
	}

	return root
}

func serveCommand(newServer ServerFactory) *cobra.Command {
	var port int
	var configFile string
	var debug bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the webhook server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if newServer == nil {
				return fmt.Errorf("server factory not configured")
			}

			srv, err := newServer(Overrides{
				Port:       port,
				ConfigFile: configFile,
				Debug:      debug,
				PortSet:    cmd.Flags().Changed("port"),
				DebugSet:   cmd.Flags().Changed("debug"),
			})
			if err != nil {
				return fmt.Errorf("initialize server: %w", err)
			}
			return srv.Run(cmd.Context())
		},
	}

	cmd.Flags().IntVar(&port, "port", 8080, "Port to listen on (overrides config)")
	cmd.Flags().StringVar(&configFile, "config", "", "Path to a configuration file")
	cmd.Flags().BoolVar(&debug, "debug", false, "Enable debug request logging (overrides config)")

	return cmd
}
