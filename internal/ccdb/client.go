// Package ccdb retrieves run-level calibration objects and ML model
// blobs from a condition-database service. Objects are addressed by
// path and timestamp; retrieval happens once per processing run,
// outside the hot path, and any failure is fatal to the run.
package ccdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/hadron-data/hfskim/internal/hffilter"
	"github.com/hadron-data/hfskim/internal/monitoring"
	"github.com/hadron-data/hfskim/internal/security"
)

// Client talks to one condition-database endpoint.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 60 * time.Second},
	}
}

// calibPayload is the wire form of one species' calibration pair.
type calibPayload struct {
	Mean  *hffilter.CalibTable `json:"mean"`
	Sigma *hffilter.CalibTable `json:"sigma"`
}

func (c *Client) objectURL(path string, timestamp int64) string {
	return fmt.Sprintf("%s/%s/%d", c.baseURL, url.PathEscape(path), timestamp)
}

func (c *Client) get(ctx context.Context, path string, timestamp int64) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.objectURL(path, timestamp), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s @ %d: %w", path, timestamp, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch %s @ %d: unexpected status %s", path, timestamp, resp.Status)
	}
	return resp, nil
}

// fetchCalibPair retrieves one (mean, sigma) calibration table pair.
func (c *Client) fetchCalibPair(ctx context.Context, path string, timestamp int64) (*hffilter.CalibTable, *hffilter.CalibTable, error) {
	resp, err := c.get(ctx, path, timestamp)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	var payload calibPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if !payload.Mean.Valid() || !payload.Sigma.Valid() {
		return nil, nil, fmt.Errorf("calibration object %s has inconsistent binning", path)
	}
	return payload.Mean, payload.Sigma, nil
}

// FetchPIDCalib retrieves the proton and pion post-calibration pairs
// under basePath (expected children: "Proton", "Pion") and assembles an
// enabled PIDCalib.
func (c *Client) FetchPIDCalib(ctx context.Context, basePath string, timestamp int64) (*hffilter.PIDCalib, error) {
	prMean, prSigma, err := c.fetchCalibPair(ctx, basePath+"/Proton", timestamp)
	if err != nil {
		return nil, err
	}
	piMean, piSigma, err := c.fetchCalibPair(ctx, basePath+"/Pion", timestamp)
	if err != nil {
		return nil, err
	}
	monitoring.Logf("loaded PID post-calibration tables from %s @ %d", basePath, timestamp)
	return &hffilter.PIDCalib{
		Enabled:     true,
		ProtonMean:  prMean,
		ProtonSigma: prSigma,
		PionMean:    piMean,
		PionSigma:   piSigma,
	}, nil
}

// FetchModel downloads the model blob at path into destDir and returns
// the local file path for the inference backend to open.
func (c *Client) FetchModel(ctx context.Context, path string, timestamp int64, destDir string) (string, error) {
	resp, err := c.get(ctx, path, timestamp)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("create model dir: %w", err)
	}
	name := security.SanitizeFilename(filepath.Base(path))
	dest := filepath.Join(destDir, fmt.Sprintf("%s_%d.onnx", name, timestamp))
	if err := security.ValidatePathWithinDirectory(dest, destDir); err != nil {
		return "", err
	}

	f, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("create model file: %w", err)
	}
	defer f.Close()

	n, err := io.Copy(f, resp.Body)
	if err != nil {
		return "", fmt.Errorf("download model %s: %w", path, err)
	}
	monitoring.Logf("fetched model %s @ %d (%d bytes) -> %s", path, timestamp, n, dest)
	return dest, nil
}
