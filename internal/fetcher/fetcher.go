// Package fetcher makes local copies of package lists and archives that may
// live on a web server.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"runtime"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"
)

// HTTPMaterializer downloads http and https locations into temporary files
// and serves local paths in place
type HTTPMaterializer struct {
	// StagingDir receives downloaded files; empty means os.TempDir()
	StagingDir string
	Client     *http.Client
	// Progress receives the download progress bar; nil disables it
	Progress io.Writer
}

// New creates a materializer staging downloads in stagingDir
func New(stagingDir string, progress io.Writer) *HTTPMaterializer {
	return &HTTPMaterializer{
		StagingDir: stagingDir,
		Client:     &http.Client{Timeout: 5 * time.Minute},
		Progress:   progress,
	}
}

// LocalCopy returns a readable local path for location. temporary is true
// when the file was downloaded and must be removed by the caller.
func (m *HTTPMaterializer) LocalCopy(ctx context.Context, location string) (string, bool, error) {
	switch {
	case hasScheme(location, "http://"), hasScheme(location, "https://"):
		p, err := m.download(ctx, location)
		if err != nil {
			return "", false, err
		}
		return p, true, nil
	case hasScheme(location, "file://"):
		p, err := fileURLPath(location, runtime.GOOS)
		if err != nil {
			return "", false, err
		}
		location = p
	}

	if _, err := os.Stat(location); err != nil {
		return "", false, fmt.Errorf("cannot access %s: %w", location, err)
	}
	return location, false, nil
}

// fileURLPath converts a file:// URL to a path for the goos platform
func fileURLPath(location, goos string) (string, error) {
	u, err := url.Parse(location)
	if err != nil {
		return "", fmt.Errorf("invalid file URL %s: %w", location, err)
	}

	host := u.Host
	if strings.EqualFold(host, "localhost") {
		host = ""
	}
	p := u.Path

	if goos != "windows" {
		if host != "" {
			return "", fmt.Errorf("file URL %s names remote host %s", location, host)
		}
		return p, nil
	}

	switch {
	case len(host) == 2 && host[1] == ':':
		// file://C:/dir
		p = host + p
	case host != "":
		// file://server/share
		p = "//" + host + p
	case len(p) >= 3 && p[0] == '/' && p[2] == ':':
		// file:///C:/dir
		p = p[1:]
	}
	return strings.ReplaceAll(p, "/", `\`), nil
}

func hasScheme(location, scheme string) bool {
	return len(location) >= len(scheme) && strings.EqualFold(location[:len(scheme)], scheme)
}

func (m *HTTPMaterializer) download(ctx context.Context, url string) (string, error) {
	client := m.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("failed to create request for %s: %w", url, err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch %s: bad status: %s", url, resp.Status)
	}

	if m.StagingDir != "" {
		if err := os.MkdirAll(m.StagingDir, 0755); err != nil {
			return "", fmt.Errorf("failed to create staging dir %s: %w", m.StagingDir, err)
		}
	}

	out, err := os.CreateTemp(m.StagingDir, "ypm-*-"+path.Base(req.URL.Path))
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}

	var dst io.Writer = out
	if m.Progress != nil {
		bar := progressbar.NewOptions64(resp.ContentLength,
			progressbar.OptionSetWriter(m.Progress),
			progressbar.OptionSetDescription(path.Base(req.URL.Path)),
			progressbar.OptionShowBytes(true),
			progressbar.OptionSetWidth(30),
			progressbar.OptionThrottle(200*time.Millisecond),
			progressbar.OptionClearOnFinish(),
		)
		defer func() {
			if err := bar.Finish(); err != nil {
				logrus.Debugf("Failed to finish progress bar: %v", err)
			}
		}()
		dst = io.MultiWriter(out, bar)
	}

	if _, err := io.Copy(dst, resp.Body); err != nil {
		out.Close()
		os.Remove(out.Name())
		return "", fmt.Errorf("failed to download %s: %w", url, err)
	}
	if err := out.Close(); err != nil {
		os.Remove(out.Name())
		return "", fmt.Errorf("failed to write %s: %w", out.Name(), err)
	}

	logrus.Debugf("Downloaded %s to %s", url, out.Name())
	return out.Name(), nil
}
