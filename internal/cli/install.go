package cli

import (
	"github.com/ralt/ypm/internal/installer"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newInstallCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "install file-or-url...",
		Short: "Install package archives directly",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inst := installer.New(a.config.InstallRoot, a.materializer(cmd))

			installed := 0
			for _, location := range args {
				if err := inst.Install(cmd.Context(), location); err != nil {
					logrus.Errorf("Failed to install %s: %v", location, err)
					continue
				}
				installed++
			}

			return reportInstalled(cmd, installed, len(args))
		},
	}
}
