// Package wacz opens WACZ containers, which bundle a record-at-a-time
// gzipped WARC (and sibling index/text files, not relevant here) inside
// a zip archive described by a datapackage.json manifest. This is
// external container glue: no parsing logic lives here, it only locates
// the inner .warc.gz and hands back a reader over it.
package wacz

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// manifest is the subset of datapackage.json this package needs.
type manifest struct {
	Resources []struct {
		Path string `json:"path"`
	} `json:"resources"`
}

// Archive is an opened WACZ container.
type Archive struct {
	zr       *zip.ReadCloser
	warcPath string
}

// Open opens the WACZ file at path and locates its inner .warc.gz
// member via datapackage.json.
func Open(path string) (*Archive, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("wacz: opening %s: %w", path, err)
	}

	var manifestFile *zip.File
	for _, f := range zr.File {
		if f.Name == "datapackage.json" {
			manifestFile = f
			break
		}
	}
	if manifestFile == nil {
		zr.Close()
		return nil, fmt.Errorf("wacz: %s has no datapackage.json", path)
	}

	rc, err := manifestFile.Open()
	if err != nil {
		zr.Close()
		return nil, fmt.Errorf("wacz: reading datapackage.json: %w", err)
	}
	defer rc.Close()

	var m manifest
	if err := json.NewDecoder(rc).Decode(&m); err != nil {
		zr.Close()
		return nil, fmt.Errorf("wacz: parsing datapackage.json: %w", err)
	}

	var warcPath string
	for _, r := range m.Resources {
		if strings.HasSuffix(r.Path, ".warc.gz") {
			warcPath = r.Path
			break
		}
	}
	if warcPath == "" {
		zr.Close()
		return nil, fmt.Errorf("wacz: %s lists no .warc.gz resource", path)
	}

	return &Archive{zr: zr, warcPath: warcPath}, nil
}

// WARCPath returns the path, relative to the container root, of the
// inner gzipped WARC.
func (a *Archive) WARCPath() string { return a.warcPath }

// OpenWARC returns a reader over the inner gzipped WARC's bytes. The
// reader must be closed by the caller when done.
func (a *Archive) OpenWARC() (io.ReadCloser, error) {
	for _, f := range a.zr.File {
		if f.Name == a.warcPath {
			return f.Open()
		}
	}
	return nil, fmt.Errorf("wacz: member %s not found in archive", a.warcPath)
}

// Close closes the underlying zip archive.
func (a *Archive) Close() error { return a.zr.Close() }
