// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package profile

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prashantv/gostub"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubFs(t *testing.T, files map[string]string) {
	t.Helper()

	fs := afero.NewMemMapFs()
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(content), 0o644))
	}

	stubs := gostub.Stub(&FsFactory, func() afero.Fs {
		return fs
	})
	t.Cleanup(stubs.Reset)
}

func TestLoad_Local(t *testing.T) {
	stubFs(t, map[string]string{
		"/profiles/cluster.yml": "scheduler: mosixbash\nremote_host: head\n",
		"/profiles/cluster.hcl": "scheduler = \"mosix\"\npriority = 30\n",
	})

	p, err := Load(context.Background(), "/profiles/cluster.yml")
	require.NoError(t, err)
	assert.Equal(t, "mosixbash", p.Scheduler)
	assert.Equal(t, "head", p.RemoteHost)

	p, err = Load(context.Background(), "/profiles/cluster.hcl")
	require.NoError(t, err)
	assert.Equal(t, "mosix", p.Scheduler)
	require.NotNil(t, p.Priority)
	assert.Equal(t, 30, *p.Priority)
}

func TestLoad_Errors(t *testing.T) {
	stubFs(t, map[string]string{
		"/invalid.yaml": "scheduler: none\npriority: 3\n",
		"/profile.ini":  "scheduler=none\n",
	})

	tests := []struct {
		name    string
		src     string
		wantErr error
	}{
		{name: "empty source", src: "", wantErr: ErrGetProfile},
		{name: "missing file", src: "/nope.yaml", wantErr: ErrGetProfile},
		{name: "unsupported extension", src: "/profile.ini", wantErr: ErrUnsupportedFormat},
		{name: "fails validation", src: "/invalid.yaml", wantErr: ErrInvalidProfile},
		{name: "remote fetch fails", src: "git::http://notexist//crun.yaml", wantErr: ErrGetProfile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Load(context.Background(), tt.src)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, p)
		})
	}
}

func TestLoad_Remote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/profiles/remote.yaml" {
			http.NotFound(w, r)
			return
		}

		_, _ = w.Write([]byte("scheduler: mosix\nhost_constraint: node9\n"))
	}))
	t.Cleanup(srv.Close)

	p, err := Load(context.Background(), srv.URL+"/profiles/remote.yaml")
	require.NoError(t, err)
	assert.Equal(t, "mosix", p.Scheduler)
	assert.Equal(t, "node9", p.HostConstraint)
}

func TestIsRemote(t *testing.T) {
	assert.False(t, isRemote("./crun.yaml"))
	assert.False(t, isRemote("/etc/crun/crun.hcl"))
	assert.True(t, isRemote("https://example.com/crun.yaml"))
	assert.True(t, isRemote("git::github.com/org/repo//crun.yaml"))
}

func TestFileNameFromURL(t *testing.T) {
	assert.Equal(t, "crun.yaml", fileNameFromURL("https://example.com/p/crun.yaml?archive=false"))
	assert.Equal(t, "crun.hcl", fileNameFromURL("s3::https://bucket.s3.amazonaws.com/crun.hcl"))
	assert.Empty(t, fileNameFromURL("https:"))
}

func TestSplitFileNameFromGetterURL(t *testing.T) {
	tests := []struct {
		src      string
		wantURL  string
		wantFile string
	}{
		{
			src:      "git::https://github.com/org/repo//crun.yaml?ref=v1.0.0",
			wantURL:  "git::https://github.com/org/repo?ref=v1.0.0",
			wantFile: "crun.yaml",
		},
		{
			src:      "git::https://github.com/org/repo//profiles/cluster.hcl",
			wantURL:  "git::https://github.com/org/repo//profiles",
			wantFile: "cluster.hcl",
		},
		{src: "https://example.com/crun.yaml"},
		{src: "git::https://github.com/org/repo//"},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			gotURL, gotFile := splitFileNameFromGetterURL(tt.src)
			assert.Equal(t, tt.wantURL, gotURL)
			assert.Equal(t, tt.wantFile, gotFile)
		})
	}
}
