// Package installer unpacks package archives into an install root.
package installer

import (
	"archive/tar"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ralt/ypm/internal/generator/tarball"
	"github.com/ralt/ypm/internal/models"
	"github.com/ralt/ypm/internal/remote"
	"github.com/ralt/ypm/internal/scanner"
	"github.com/ralt/ypm/internal/utils"
	"github.com/sassoftware/go-rpmutils"
	"github.com/sirupsen/logrus"
)

// ArchiveInstaller implements remote.Installer by extracting archives under Root
type ArchiveInstaller struct {
	Root         string
	Materializer remote.Materializer
}

// New creates an installer writing into root
func New(root string, m remote.Materializer) *ArchiveInstaller {
	return &ArchiveInstaller{Root: root, Materializer: m}
}

// Install fetches the archive at location and unpacks it
func (i *ArchiveInstaller) Install(ctx context.Context, location string) error {
	localPath, temporary, err := i.Materializer.LocalCopy(ctx, location)
	if err != nil {
		return &models.YpmError{Type: models.ErrMaterialize, Subject: location, Err: err}
	}
	if temporary {
		defer func() {
			if err := utils.RemoveTemp(localPath); err != nil {
				logrus.Warnf("Failed to remove temporary file %s: %v", localPath, err)
			}
		}()
	}

	if err := i.installFile(ctx, localPath); err != nil {
		return &models.YpmError{Type: models.ErrInstall, Subject: location, Err: err}
	}

	logrus.Infof("Installed %s", location)
	return nil
}

func (i *ArchiveInstaller) installFile(ctx context.Context, path string) error {
	pkgType, err := scanner.DetectPackageType(path)
	if err != nil {
		return err
	}
	logrus.Debugf("Installing %s (%s) into %s", path, pkgType, i.Root)

	if err := utils.EnsureDir(i.Root); err != nil {
		return fmt.Errorf("failed to create install root: %w", err)
	}

	switch {
	case pkgType.IsTar():
		return i.extractTar(ctx, path, pkgType.Compression())
	case pkgType == scanner.TypeRpm:
		return i.extractRpm(path)
	default:
		return fmt.Errorf("unsupported package type for %s", path)
	}
}

func (i *ArchiveInstaller) extractTar(ctx context.Context, path, compression string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r, err := utils.Decompress(f, compression)
	if err != nil {
		return fmt.Errorf("failed to open %s stream: %w", compression, err)
	}
	defer r.Close()

	tr := tar.NewReader(r)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		header, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read archive: %w", err)
		}

		if tarball.IsPackageInfo(header.Name) {
			continue
		}

		target, err := utils.SafeJoin(i.Root, header.Name)
		if err != nil {
			return err
		}

		// Links extracted earlier must not carry later entries out of the root
		checked := filepath.Dir(target)
		if header.Typeflag == tar.TypeDir {
			checked = target
		}
		if err := utils.CheckSymlinks(i.Root, checked); err != nil {
			return fmt.Errorf("refusing to extract %s: %w", header.Name, err)
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := writeMember(target, tr, header.FileInfo().Mode().Perm()); err != nil {
				return fmt.Errorf("failed to extract %s: %w", header.Name, err)
			}
		case tar.TypeSymlink:
			// Links may only point inside the install root
			linkTarget := header.Linkname
			if !filepath.IsAbs(linkTarget) {
				linkTarget = filepath.Join(filepath.Dir(header.Name), linkTarget)
			}
			if _, err := utils.SafeJoin(i.Root, linkTarget); err != nil || filepath.IsAbs(header.Linkname) {
				return fmt.Errorf("symlink %s points outside the install root", header.Name)
			}
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return err
			}
			if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
				return err
			}
			if err := os.Symlink(header.Linkname, target); err != nil {
				return err
			}
		default:
			logrus.Debugf("Skipping %s: unsupported entry type %c", header.Name, header.Typeflag)
		}
	}
}

func writeMember(target string, r io.Reader, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}
	if perm == 0 {
		perm = 0644
	}

	// Replace a link left at target instead of writing through it
	if info, err := os.Lstat(target); err == nil && info.Mode()&os.ModeSymlink != 0 {
		if err := os.Remove(target); err != nil {
			return err
		}
	}

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func (i *ArchiveInstaller) extractRpm(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	rpm, err := rpmutils.ReadRpm(f)
	if err != nil {
		return fmt.Errorf("failed to read RPM: %w", err)
	}

	if err := rpm.ExpandPayload(i.Root); err != nil {
		return fmt.Errorf("failed to expand RPM payload: %w", err)
	}
	return nil
}
