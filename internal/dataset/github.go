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
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/go-github/v55/github"
	"golang.org/x/oauth2"
)

// ContentsClient is the slice of the GitHub repositories API the loader needs.
type ContentsClient interface {
	GetContents(ctx context.Context, owner, repo, path string, opts *github.RepositoryContentGetOptions) (*github.RepositoryContent, []*github.RepositoryContent, *github.Response, error)
	DownloadContents(ctx context.Context, owner, repo, path string, opts *github.RepositoryContentGetOptions) (io.ReadCloser, *github.Response, error)
}

// NewGitHubClient returns the repositories service of a GitHub client.
// An empty token gives an anonymous client, which is enough for public repositories.
func NewGitHubClient(ctx context.Context, token string) ContentsClient {
	if token == "" {
		return github.NewClient(nil).Repositories
	}
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)
	return github.NewClient(tc).Repositories
}

// GitHubRef points at a file in a repository: "owner/repo/path/to/file.csv@ref".
type GitHubRef struct {
	Owner string
	Repo  string
	Path  string
	Ref   string
}

func ParseGitHubRef(s string) (GitHubRef, error) {
	var ref GitHubRef
	if at := strings.LastIndex(s, "@"); at >= 0 {
		ref.Ref = s[at+1:]
		s = s[:at]
	}
	parts := strings.SplitN(s, "/", 3)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return GitHubRef{}, fmt.Errorf("%w: expected github:owner/repo/path[@ref], got %q", ErrUnsupportedSource, s)
	}
	ref.Owner, ref.Repo, ref.Path = parts[0], parts[1], parts[2]
	return ref, nil
}

func fetchGitHub(ctx context.Context, client ContentsClient, ref GitHubRef) ([]byte, error) {
	var opts *github.RepositoryContentGetOptions
	if ref.Ref != "" {
		opts = &github.RepositoryContentGetOptions{Ref: ref.Ref}
	}

	file, dir, _, err := client.GetContents(ctx, ref.Owner, ref.Repo, ref.Path, opts)
	if err != nil {
		return nil, fmt.Errorf("fetching %s/%s/%s: %w", ref.Owner, ref.Repo, ref.Path, err)
	}
	if file == nil {
		return nil, fmt.Errorf("%s/%s/%s is a directory with %d entries", ref.Owner, ref.Repo, ref.Path, len(dir))
	}

	// the contents API only inlines files up to 1MB, larger ones need the raw download.
	if file.GetEncoding() == "none" || file.Content == nil {
		rc, _, err := client.DownloadContents(ctx, ref.Owner, ref.Repo, ref.Path, opts)
		if err != nil {
			return nil, fmt.Errorf("downloading %s/%s/%s: %w", ref.Owner, ref.Repo, ref.Path, err)
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}

	content, err := file.GetContent()
	if err != nil {
		return nil, fmt.Errorf("decoding %s/%s/%s: %w", ref.Owner, ref.Repo, ref.Path, err)
	}
	return []byte(content), nil
}
