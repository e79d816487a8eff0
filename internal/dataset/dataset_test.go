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
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-github/v55/github"
)

const sample = "\ufeffInstitution,CDS_Year,AcceptanceRate_FTFY,StickerCOA\n" +
	"Harvard,2020-2021,0.05,\"79,450\"\n" +
	"Yale,2021-22,0.06\n"

func TestParse(t *testing.T) {
	rows, err := Parse(strings.NewReader(sample))
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows", len(rows))
	}
	if got := rows[0].Field(ColInstitution); got != "Harvard" {
		t.Errorf("institution = %q (BOM not stripped?)", got)
	}
	if got := rows[0].Field(ColStickerCOA); got != "79,450" {
		t.Errorf("quoted cell = %q", got)
	}
	if got := rows[1].Field(ColStickerCOA); got != "" {
		t.Errorf("short row cell = %q, want empty", got)
	}
	if got := rows[1].Field("NoSuchColumn"); got != "" {
		t.Errorf("missing column = %q", got)
	}
}

func TestParseEmpty(t *testing.T) {
	if _, err := Parse(strings.NewReader("")); err == nil {
		t.Fatal("expected error for empty input")
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.csv")
	if err := os.WriteFile(path, []byte(sample), 0644); err != nil {
		t.Fatal(err)
	}
	rows, err := (&Loader{}).Load(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Errorf("got %d rows", len(rows))
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := (&Loader{}).Load(context.Background(), filepath.Join(t.TempDir(), "nope.csv"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestLoadURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer s3cret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		io.WriteString(w, sample)
	}))
	defer srv.Close()

	rows, err := (&Loader{Token: "s3cret"}).Load(context.Background(), srv.URL+"/data.csv")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Errorf("got %d rows", len(rows))
	}

	if _, err := (&Loader{}).Load(context.Background(), srv.URL+"/data.csv"); err == nil {
		t.Error("expected non-200 to fail")
	}
}

func TestLoadUnsupportedScheme(t *testing.T) {
	_, err := (&Loader{}).Load(context.Background(), "ftp://example.org/data.csv")
	if !errors.Is(err, ErrUnsupportedSource) {
		t.Fatalf("got %v", err)
	}
}

type mockContents struct {
	content    *github.RepositoryContent
	download   string
	gotRef     string
	downloaded bool
}

func (m *mockContents) GetContents(ctx context.Context, owner, repo, path string, opts *github.RepositoryContentGetOptions) (*github.RepositoryContent, []*github.RepositoryContent, *github.Response, error) {
	if opts != nil {
		m.gotRef = opts.Ref
	}
	if owner != "acme" || repo != "ivy" || path != "data/data.csv" {
		return nil, nil, nil, errors.New("404 Not Found")
	}
	return m.content, nil, nil, nil
}

func (m *mockContents) DownloadContents(ctx context.Context, owner, repo, path string, opts *github.RepositoryContentGetOptions) (io.ReadCloser, *github.Response, error) {
	m.downloaded = true
	return io.NopCloser(strings.NewReader(m.download)), nil, nil
}

func TestLoadGitHub(t *testing.T) {
	mock := &mockContents{content: &github.RepositoryContent{
		Encoding: github.String("base64"),
		Content:  github.String(base64.StdEncoding.EncodeToString([]byte(sample))),
	}}
	rows, err := (&Loader{GitHub: mock}).Load(context.Background(), "github:acme/ivy/data/data.csv@main")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 || mock.gotRef != "main" {
		t.Errorf("rows=%d ref=%q", len(rows), mock.gotRef)
	}
	if mock.downloaded {
		t.Error("inline content should not trigger a download")
	}
}

func TestLoadGitHubLargeFile(t *testing.T) {
	mock := &mockContents{
		content:  &github.RepositoryContent{Encoding: github.String("none")},
		download: sample,
	}
	rows, err := (&Loader{GitHub: mock}).Load(context.Background(), "github:acme/ivy/data/data.csv")
	if err != nil {
		t.Fatal(err)
	}
	if !mock.downloaded || len(rows) != 2 {
		t.Errorf("downloaded=%v rows=%d", mock.downloaded, len(rows))
	}
}

func TestParseGitHubRef(t *testing.T) {
	ref, err := ParseGitHubRef("acme/ivy/data/data.csv@v1.2")
	if err != nil {
		t.Fatal(err)
	}
	want := GitHubRef{Owner: "acme", Repo: "ivy", Path: "data/data.csv", Ref: "v1.2"}
	if ref != want {
		t.Errorf("got %+v", ref)
	}
	if _, err := ParseGitHubRef("acme/ivy"); err == nil {
		t.Error("expected error without a path")
	}
}
