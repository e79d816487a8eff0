/*
   Copyright (C) 2023 eLife Sciences

   This program is free software: you can redistribute it and/or modify
   it under the terms of the GNU Affero General Public License as
   published by the Free Software Foundation, either version 3 of the
   License, or (at your option) any later version.

   This program is distributed in the hope that it will be useful,
   but WITHOUT ANY WARRANTY; without even the implied warranty of
   MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
   GNU Affero General Public License for more details.

   You should have received a copy of the GNU Affero General Public License
   along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

package dataset

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"k8s.io/klog/v2"
)

// DefaultSource is where the page loads its data from.
const DefaultSource = "data/data.csv"

var ErrUnsupportedSource = errors.New("unsupported data source")

// Loader fetches the dataset once per call. There is no retry: a failed load is
// returned to the caller, who leaves its charts unrendered.
type Loader struct {
	// Token is sent as a bearer token to http(s) sources and used for the GitHub API.
	Token string

	HTTPClient *http.Client

	// GitHub is used for `github:` sources. When nil a client is built from Token.
	GitHub ContentsClient
}

// Load reads and parses the table at `source`:
//
//	data/data.csv                              local file
//	https://example.org/data.csv               http(s) GET
//	github:owner/repo/data/data.csv@main       GitHub contents API
func (l *Loader) Load(ctx context.Context, source string) ([]RawRecord, error) {
	log := klog.FromContext(ctx)
	if source == "" {
		source = DefaultSource
	}

	body, err := l.fetch(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", source, err)
	}

	rows, err := Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", source, err)
	}
	log.V(1).Info("loaded dataset", "source", source, "rows", len(rows))
	return rows, nil
}

func (l *Loader) fetch(ctx context.Context, source string) ([]byte, error) {
	switch {
	case strings.HasPrefix(source, "github:"):
		ref, err := ParseGitHubRef(strings.TrimPrefix(source, "github:"))
		if err != nil {
			return nil, err
		}
		client := l.GitHub
		if client == nil {
			client = NewGitHubClient(ctx, l.Token)
		}
		return fetchGitHub(ctx, client, ref)
	case strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "https://"):
		return l.fetchURL(ctx, source)
	case strings.Contains(source, "://"):
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSource, source)
	default:
		return os.ReadFile(source)
	}
}

func (l *Loader) fetchURL(ctx context.Context, url string) ([]byte, error) {
	client := l.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if l.Token != "" {
		req.Header.Add("Authorization", "Bearer "+l.Token)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("non-200 response from URL: %s (%d)", url, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
