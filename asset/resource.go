// Package asset loads scene inputs from local or remote resources and writes
// rendered frames back out.
package asset

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// Remote scene inputs that take longer than this to download fail to load.
const fetchTimeout = 30 * time.Second

var httpClient = &http.Client{Timeout: fetchTimeout}

// A Resource is an open scene input: either a local file or a document
// served over http(s).
type Resource struct {
	io.ReadCloser
	loc *url.URL
}

// The file path for local resources or the URL for remote ones.
func (r *Resource) Path() string {
	if r.IsRemote() {
		return r.loc.String()
	}
	return r.loc.Path
}

// The last element of the resource location.
func (r *Resource) Name() string {
	return path.Base(r.loc.Path)
}

func (r *Resource) IsRemote() bool {
	return r.loc.Scheme != ""
}

// Open the resource at location. Relative locations are resolved against
// the directory that holds relTo, so a file referenced from a remote scene
// is fetched from the same server. The caller must close the returned
// Resource.
func NewResource(location string, relTo *Resource) (*Resource, error) {
	loc, err := resolveLocation(location, relTo)
	if err != nil {
		return nil, err
	}

	stream, err := openLocation(loc)
	if err != nil {
		return nil, err
	}
	return &Resource{ReadCloser: stream, loc: loc}, nil
}

// Wrap an in-memory stream as a resource. Relative references from it are
// resolved against the working directory.
func NewResourceFromStream(name string, source io.Reader) *Resource {
	return &Resource{
		ReadCloser: io.NopCloser(source),
		loc:        &url.URL{Path: name},
	}
}

func resolveLocation(location string, relTo *Resource) (*url.URL, error) {
	location = strings.ReplaceAll(location, `\`, `/`)

	// Only locations with a scheme are URLs; everything else is a file path
	// and may contain characters with a special meaning in URLs.
	if strings.Contains(location, "://") {
		loc, err := url.Parse(location)
		if err != nil {
			return nil, fmt.Errorf("resource: invalid location '%s': %w", location, err)
		}
		return loc, nil
	}

	ref := &url.URL{Path: location}
	switch {
	case relTo == nil || filepath.IsAbs(location):
		return ref, nil
	case relTo.IsRemote():
		return relTo.loc.ResolveReference(ref), nil
	}

	dir, err := filepath.Abs(filepath.Dir(relTo.loc.Path))
	if err != nil {
		return nil, fmt.Errorf("resource: could not detect abs path for '%s': %w", relTo.Path(), err)
	}
	return &url.URL{Path: filepath.Join(dir, location)}, nil
}

func openLocation(loc *url.URL) (io.ReadCloser, error) {
	switch loc.Scheme {
	case "":
		return os.Open(filepath.Clean(loc.Path))
	case "http", "https":
	default:
		return nil, fmt.Errorf("resource: unsupported scheme '%s'", loc.Scheme)
	}

	resp, err := httpClient.Get(loc.String())
	if err != nil {
		return nil, fmt.Errorf("resource: could not fetch '%s': %w", loc, err)
	}
	if resp.StatusCode >= 400 {
		resp.Body.Close()
		return nil, fmt.Errorf("resource: could not fetch '%s': status %d", loc, resp.StatusCode)
	}
	return resp.Body, nil
}
