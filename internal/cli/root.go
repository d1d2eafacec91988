package cli

import (
	"io"

	"github.com/ralt/ypm/internal/config"
	"github.com/ralt/ypm/internal/fetcher"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// app carries the settings resolved for the running command
type app struct {
	configPath    string
	indexDir      string
	defaultSource string
	installRoot   string
	quiet         bool
	verbose       bool

	config *config.Config
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "ypm",
		Short: "Discover, resolve and install packages from remote sources",
		Long: `ypm reads the sources configured in the local index, follows every
source those sources declare and installs packages by name, version and
architecture.

Supported package archives:
  - tar (.tar, .tar.gz, .tgz, .tar.xz, .tar.zst)
  - RPM (.rpm)`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Path to the YAML config file")
	flags.StringVar(&a.indexDir, "index", "", "Directory holding the local packages.ini")
	flags.StringVar(&a.defaultSource, "default-source", "", "Source used when the index configures none")
	flags.StringVar(&a.installRoot, "root", "", "Directory packages are installed into")
	flags.BoolVar(&a.quiet, "quiet", false, "Disable download progress bars")
	flags.BoolVar(&a.verbose, "verbose", false, "Enable verbose logging")

	// Add subcommands
	rootCmd.AddCommand(newRemoteCmd(a))
	rootCmd.AddCommand(newInstallCmd(a))
	rootCmd.AddCommand(newIndexCmd(a))

	return rootCmd
}

// setup loads the config file and applies flag overrides
func (a *app) setup(cmd *cobra.Command) error {
	path := a.configPath
	if path == "" {
		path = config.FindConfigFile()
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("index") {
		cfg.IndexDir = a.indexDir
	}
	if flags.Changed("default-source") {
		cfg.DefaultSource = a.defaultSource
	}
	if flags.Changed("root") {
		cfg.InstallRoot = a.installRoot
	}
	if flags.Changed("quiet") {
		cfg.Quiet = a.quiet
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Setup logging
	if a.verbose {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(cfg.LogLevel())
	}
	logrus.Debugf("Configuration: %+v", *cfg)

	a.config = cfg
	return nil
}

// materializer returns the fetcher used for package lists and archives
func (a *app) materializer(cmd *cobra.Command) *fetcher.HTTPMaterializer {
	var progress io.Writer
	if !a.config.Quiet {
		progress = cmd.ErrOrStderr()
	}
	return fetcher.New(a.config.StagingDir, progress)
}
