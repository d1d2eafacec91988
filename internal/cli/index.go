package cli

import (
	"context"
	"fmt"

	"github.com/ralt/ypm/internal/generator/index"
	"github.com/ralt/ypm/internal/generator/rpm"
	"github.com/ralt/ypm/internal/generator/tarball"
	"github.com/ralt/ypm/internal/models"
	"github.com/ralt/ypm/internal/scanner"
	"github.com/ralt/ypm/internal/signer"
	"github.com/ralt/ypm/internal/utils"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newIndexCmd(a *app) *cobra.Command {
	var config models.IndexConfig

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Build a package source from a directory of archives",
		Long: `Scans the input directory for package archives and lays out a source:
archives are copied under one directory per architecture and listed in
pkglist.ini, optionally signed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Validate configuration
			if err := validateIndexConfig(&config); err != nil {
				return err
			}

			logrus.Info("Starting source generation...")
			logrus.Debugf("Configuration: %+v", config)

			return runIndex(cmd.Context(), &config)
		},
	}

	// Input/Output flags
	cmd.Flags().StringVarP(&config.InputDir, "input-dir", "i", ".", "Input directory to scan")
	cmd.Flags().StringVarP(&config.OutputDir, "output-dir", "o", "./source", "Output directory")

	cmd.Flags().StringVar(&config.Compression, "compress", "", "Also write a compressed copy of pkglist.ini (gz, xz, zst)")

	// Further sources advertised by the generated list
	cmd.Flags().StringSliceVar(&config.Sources, "source", nil, "Source location to list in pkglist.ini (repeatable)")

	// GPG signing flags
	cmd.Flags().StringVarP(&config.GPGKeyPath, "gpg-key", "k", "", "Path to GPG private key")
	cmd.Flags().StringVarP(&config.GPGPassphrase, "gpg-passphrase", "p", "", "GPG key passphrase")

	return cmd
}

func validateIndexConfig(config *models.IndexConfig) error {
	if config.InputDir == "" {
		return &models.YpmError{
			Type: models.ErrInvalidConfig,
			Err:  fmt.Errorf("input-dir is required"),
		}
	}

	if config.OutputDir == "" {
		return &models.YpmError{
			Type: models.ErrInvalidConfig,
			Err:  fmt.Errorf("output-dir is required"),
		}
	}

	switch config.Compression {
	case "", "gz", "xz", "zst":
	default:
		return &models.YpmError{
			Type: models.ErrInvalidConfig,
			Err:  fmt.Errorf("unsupported compression: %s", config.Compression),
		}
	}

	return nil
}

func runIndex(ctx context.Context, config *models.IndexConfig) error {
	// Step 1: Scan for packages
	logrus.Infof("Scanning directory: %s", config.InputDir)
	sc := scanner.NewFileSystemScanner(config.OutputDir)
	scannedPackages, err := sc.Scan(ctx, config.InputDir)
	if err != nil {
		return &models.YpmError{
			Type:    models.ErrFileOp,
			Subject: config.InputDir,
			Err:     fmt.Errorf("failed to scan directory: %w", err),
		}
	}

	if len(scannedPackages) == 0 {
		logrus.Warn("No packages found in input directory")
		return nil
	}

	logrus.Infof("Found %d packages", len(scannedPackages))

	// Step 2: Read archive metadata
	var archives []models.Archive
	for _, scanned := range scannedPackages {
		var pkg *models.Archive
		var parseErr error

		logrus.Debugf("Parsing %s package: %s", scanned.Type, scanned.Path)

		switch {
		case scanned.Type == scanner.TypeRpm:
			pkg, parseErr = rpm.ParsePackage(scanned.Path)
		case scanned.Type.IsTar():
			pkg, parseErr = tarball.ParsePackage(scanned.Path, scanned.Type)
		default:
			logrus.Warnf("Unknown package type: %s", scanned.Type)
			continue
		}

		if parseErr != nil {
			logrus.Warnf("Failed to parse %s: %v", scanned.Path, parseErr)
			continue
		}

		archives = append(archives, *pkg)
	}

	// Step 3: Drop duplicate archives, first one wins
	archives = dropConflicts(archives)

	// Step 4: Initialize signer
	var s signer.Signer
	if config.GPGKeyPath != "" {
		gpgSigner, err := signer.NewGPGSigner(config.GPGKeyPath, config.GPGPassphrase)
		if err != nil {
			return &models.YpmError{
				Type: models.ErrSigning,
				Err:  fmt.Errorf("failed to initialize GPG signer: %w", err),
			}
		}
		s = gpgSigner
		logrus.Info("GPG signer initialized")
	}

	// Step 5: Generate the source
	gen := index.NewGenerator(s)
	if err := gen.ValidatePackages(archives); err != nil {
		return &models.YpmError{
			Type: models.ErrInvalidConfig,
			Err:  fmt.Errorf("package validation failed: %w", err),
		}
	}

	if err := gen.Generate(ctx, config, archives); err != nil {
		return err
	}

	logrus.Info("Source generation completed successfully!")
	logrus.Infof("Output directory: %s", config.OutputDir)

	return nil
}

func dropConflicts(archives []models.Archive) []models.Archive {
	conflicts := utils.DetectConflicts(nil, archives)
	if len(conflicts) == 0 {
		return archives
	}

	skip := make(map[string]bool, len(conflicts))
	for _, c := range conflicts {
		logrus.Warnf("Skipping %s: %s is already provided", c.Filename, utils.PackageIdentity(c))
		skip[c.Filename] = true
	}

	kept := archives[:0]
	for _, pkg := range archives {
		if !skip[pkg.Filename] {
			kept = append(kept, pkg)
		}
	}
	return kept
}
