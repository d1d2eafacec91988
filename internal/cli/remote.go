package cli

import (
	"fmt"

	"github.com/ralt/ypm/internal/installer"
	"github.com/ralt/ypm/internal/models"
	"github.com/ralt/ypm/internal/remote"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newRemoteCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remote",
		Short: "Work with packages offered by remote sources",
	}

	cmd.AddCommand(newRemoteListCmd(a))
	cmd.AddCommand(newRemoteSourcesCmd(a))
	cmd.AddCommand(newRemoteInstallCmd(a))

	return cmd
}

func (a *app) discover(cmd *cobra.Command) (*remote.Discovery, error) {
	driver := remote.NewDriver(a.config.IndexLookup(), a.materializer(cmd), a.config.DefaultSource)
	found, err := driver.CollectAll(cmd.Context())
	if err != nil {
		return nil, err
	}
	logrus.Debugf("Discovered %d packages from %d sources", len(found.Packages), len(found.Sources))
	return found, nil
}

func newRemoteListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every package offered by the reachable sources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			found, err := a.discover(cmd)
			if err != nil {
				return err
			}
			return remote.ListPackages(cmd.OutOrStdout(), found.Packages)
		},
	}
}

func newRemoteSourcesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List every reachable source",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			found, err := a.discover(cmd)
			if err != nil {
				return err
			}
			return remote.ListSources(cmd.OutOrStdout(), found.Sources)
		},
	}
}

func newRemoteInstallCmd(a *app) *cobra.Command {
	var req models.Request

	cmd := &cobra.Command{
		Use:   "install [flags] name...",
		Short: "Install packages by name from the reachable sources",
		Long: `Installs the highest version of each named package. Without --arch the
first of amd64 (64-bit hosts only), win32 and noarch offered is installed.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			found, err := a.discover(cmd)
			if err != nil {
				return err
			}

			req.Names = args
			m := a.materializer(cmd)
			resolver := remote.NewResolver(installer.New(a.config.InstallRoot, m))
			installed := resolver.InstallByName(cmd.Context(), remote.NewCatalog(found.Packages), req)

			return reportInstalled(cmd, installed, len(args))
		},
	}

	cmd.Flags().StringVarP(&req.Architecture, "arch", "a", "", "Architecture to install (noarch, win32, amd64)")
	cmd.Flags().StringVarP(&req.Version, "version", "v", "", "Version to install instead of the highest")

	return cmd
}

// reportInstalled prints the install summary and fails when anything was
// left out
func reportInstalled(cmd *cobra.Command, installed, requested int) error {
	fmt.Fprintf(cmd.OutOrStdout(), "%d packages installed (%d not installed)\n", installed, requested-installed)
	if installed < requested {
		return &models.YpmError{
			Type: models.ErrInstall,
			Err:  fmt.Errorf("%d of %d packages not installed", requested-installed, requested),
		}
	}
	return nil
}
