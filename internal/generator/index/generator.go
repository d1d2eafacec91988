// Package index lays out a package source: archives are copied under one
// directory per architecture and described by a pkglist.ini.
package index

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/ralt/ypm/internal/generator"
	"github.com/ralt/ypm/internal/models"
	"github.com/ralt/ypm/internal/pkglist"
	"github.com/ralt/ypm/internal/remote"
	"github.com/ralt/ypm/internal/signer"
	"github.com/ralt/ypm/internal/utils"
	"github.com/sirupsen/logrus"
)

// PublicKeyFile is written next to a signed package list
const PublicKeyFile = "pkglist.pub.asc"

// Generator implements the generator.Generator interface for ypm sources
type Generator struct {
	signer signer.Signer
}

// NewGenerator creates a new source generator. s may be nil.
func NewGenerator(s signer.Signer) generator.Generator {
	return &Generator{
		signer: s,
	}
}

// ValidatePackages checks that every archive can be listed
func (g *Generator) ValidatePackages(packages []models.Archive) error {
	for _, pkg := range packages {
		if pkg.Name == "" {
			return fmt.Errorf("%s: package name is empty", pkg.Filename)
		}
		if pkg.Version == "" {
			return fmt.Errorf("%s: package %s has no version", pkg.Filename, pkg.Name)
		}
		if !isKnownArchitecture(pkg.Architecture) {
			return fmt.Errorf("%s: unsupported architecture %q", pkg.Filename, pkg.Architecture)
		}
	}
	return nil
}

// Generate copies the archives into the output directory and writes the
// package list. Only the highest version of each name is listed.
func (g *Generator) Generate(ctx context.Context, config *models.IndexConfig, packages []models.Archive) error {
	logrus.Info("Generating package source...")

	if err := g.ValidatePackages(packages); err != nil {
		return err
	}

	selected := selectLatest(packages)

	names := make([]string, 0, len(selected))
	for name := range selected {
		names = append(names, name)
	}
	sort.Strings(names)

	w := pkglist.NewWriter()
	if err := w.AddSources(config.Sources); err != nil {
		return err
	}

	// Provides first so readers see every name before the detail sections
	for _, name := range names {
		pkgs := selected[name]
		if err := w.Set(pkglist.SectionProvides, pkgs[0].Name, pkgs[0].Version); err != nil {
			return err
		}
	}

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return err
		}

		pkgs := selected[name]
		if err := w.Set(pkgs[0].Name, pkglist.KeyVersion, pkgs[0].Version); err != nil {
			return err
		}
		if desc := describe(pkgs); desc != "" {
			if err := w.Set(pkgs[0].Name, pkglist.KeyDescription, desc); err != nil {
				return err
			}
		}
		for _, pkg := range pkgs {
			rel, err := copyArchive(config.OutputDir, pkg)
			if err != nil {
				return err
			}
			if err := writeArchiveKeys(w, pkg, rel); err != nil {
				return err
			}
			logrus.Debugf("Listed %s %s %s as %s", pkg.Name, pkg.Version, pkg.Architecture, rel)
		}
	}

	data, err := w.Bytes()
	if err != nil {
		return fmt.Errorf("failed to serialize %s: %w", models.PackageListFile, err)
	}

	listPath := filepath.Join(config.OutputDir, models.PackageListFile)
	if err := utils.WriteFile(listPath, data, 0644); err != nil {
		return &models.YpmError{Type: models.ErrFileOp, Subject: listPath, Err: err}
	}

	if config.Compression != "" {
		if err := writeCompressed(listPath+"."+config.Compression, data, config.Compression); err != nil {
			return &models.YpmError{Type: models.ErrFileOp, Subject: listPath, Err: err}
		}
	}

	if g.signer != nil {
		if err := g.sign(config.OutputDir, listPath, data); err != nil {
			return &models.YpmError{Type: models.ErrSigning, Subject: listPath, Err: err}
		}
		logrus.Info("Package list signed successfully")
	}

	logrus.Infof("Package source generated successfully (%d packages)", len(names))
	return nil
}

func (g *Generator) sign(outputDir, listPath string, data []byte) error {
	sig, err := g.signer.SignDetached(data)
	if err != nil {
		return err
	}
	if err := utils.WriteFile(listPath+signer.SignatureSuffix, sig, 0644); err != nil {
		return fmt.Errorf("failed to write signature: %w", err)
	}

	pub, err := g.signer.GetPublicKey()
	if err != nil {
		return fmt.Errorf("failed to export public key: %w", err)
	}
	if err := utils.WriteFile(filepath.Join(outputDir, PublicKeyFile), pub, 0644); err != nil {
		return fmt.Errorf("failed to write public key: %w", err)
	}
	return nil
}

func writeCompressed(path string, data []byte, compression string) error {
	var buf bytes.Buffer
	w, err := utils.Compress(&buf, compression)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return utils.WriteFile(path, buf.Bytes(), 0644)
}

// selectLatest groups archives by name, case-insensitively, and keeps the
// archives carrying the highest version. One archive per architecture.
func selectLatest(packages []models.Archive) map[string][]models.Archive {
	byName := make(map[string][]models.Archive)
	for _, pkg := range packages {
		key := strings.ToLower(pkg.Name)
		byName[key] = append(byName[key], pkg)
	}

	selected := make(map[string][]models.Archive, len(byName))
	for key, pkgs := range byName {
		latest := pkgs[0].Version
		for _, pkg := range pkgs[1:] {
			if remote.CompareVersions(pkg.Version, latest) > 0 {
				latest = pkg.Version
			}
		}

		seenArch := make(map[string]bool)
		for _, pkg := range pkgs {
			if remote.CompareVersions(pkg.Version, latest) != 0 {
				logrus.Warnf("Skipping %s %s: %s is newer", pkg.Name, pkg.Version, latest)
				continue
			}
			if seenArch[pkg.Architecture] {
				logrus.Warnf("Skipping %s: %s %s %s is already listed", pkg.Filename, pkg.Name, pkg.Version, pkg.Architecture)
				continue
			}
			seenArch[pkg.Architecture] = true
			selected[key] = append(selected[key], pkg)
		}
	}
	return selected
}

// writeArchiveKeys lists one architecture of a package: its location plus
// the size and digest of the archive
func writeArchiveKeys(w *pkglist.Writer, pkg models.Archive, rel string) error {
	if err := w.Set(pkg.Name, pkg.Architecture, rel); err != nil {
		return err
	}
	if pkg.Size > 0 {
		if err := w.Set(pkg.Name, pkg.Architecture+pkglist.SizeSuffix, strconv.FormatInt(pkg.Size, 10)); err != nil {
			return err
		}
	}
	if pkg.SHA256Sum != "" {
		if err := w.Set(pkg.Name, pkg.Architecture+pkglist.SHA256Suffix, pkg.SHA256Sum); err != nil {
			return err
		}
	}
	return nil
}

// describe returns the first non-empty description among pkgs
func describe(pkgs []models.Archive) string {
	for _, pkg := range pkgs {
		if pkg.Description != "" {
			return pkg.Description
		}
	}
	return ""
}

// copyArchive places an archive under <arch>/ and returns its location
// relative to the source root
func copyArchive(outputDir string, pkg models.Archive) (string, error) {
	base := filepath.Base(pkg.Filename)
	dst := filepath.Join(outputDir, pkg.Architecture, base)
	if err := utils.CopyFile(pkg.Filename, dst); err != nil {
		return "", &models.YpmError{Type: models.ErrFileOp, Subject: pkg.Filename, Err: err}
	}
	return path.Join(pkg.Architecture, base), nil
}

func isKnownArchitecture(arch string) bool {
	for _, known := range models.KnownArchitectures {
		if arch == known {
			return true
		}
	}
	return false
}
