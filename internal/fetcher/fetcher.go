// Package fetcher downloads source files and reads the tabular formats the
// scrapers consume: CSV, XLSX, zipped shapefiles.
package fetcher

import (
	"context"
	"io"
)

// Fetcher downloads remote data.
type Fetcher interface {
	// Download fetches the URL and returns the response body.
	Download(ctx context.Context, url string) (io.ReadCloser, error)

	// DownloadToFile fetches the URL and writes it to path. Returns bytes written.
	DownloadToFile(ctx context.Context, url string, path string) (int64, error)
}
