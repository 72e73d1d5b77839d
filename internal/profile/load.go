// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package profile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-getter/v2"
	"github.com/matt-FFFFFF/crun/internal/ctxlog"
	"github.com/spf13/afero"
)

const (
	goGetterForceSeparator = "::"
	goGetterSchemeSuffix   = "://"
	goGetterPathSeparator  = "//"
	goGetterRefSeparator   = "?"
	minimumGetterParts     = 3 // scheme, host and path
)

var (
	// ErrGetProfile is returned when the profile cannot be read or fetched.
	ErrGetProfile = errors.New("failed to get profile")
)

// Load reads, decodes and validates the profile at src.
func Load(ctx context.Context, src string) (*Profile, error) {
	if src == "" {
		return nil, ErrGetProfile
	}

	var (
		data []byte
		name string
		err  error
	)

	if isRemote(src) {
		data, name, err = getURL(ctx, src)
	} else {
		name = src
		data, err = afero.ReadFile(FsFactory(), src)
	}

	if err != nil {
		return nil, errors.Join(ErrGetProfile, err)
	}

	ctxlog.Debug(ctx, "profile read", "source", src, "bytes", len(data))

	p, err := Decode(name, data)
	if err != nil {
		return nil, err
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}

	return p, nil
}

func isRemote(src string) bool {
	return strings.Contains(src, goGetterForceSeparator) || strings.Contains(src, goGetterSchemeSuffix)
}

// getURL fetches src with go-getter and returns its content and file name.
// URLs using the go-getter subdirectory syntax are fetched as a directory,
// everything else as a single file.
func getURL(ctx context.Context, src string) ([]byte, string, error) {
	tmpDir, err := os.MkdirTemp("", "crun-getter-*")
	if err != nil {
		return nil, "", err
	}

	defer os.RemoveAll(tmpDir) //nolint:errcheck

	wd, err := os.Getwd()
	if err != nil {
		return nil, "", err
	}

	cli := getter.Client{
		DisableSymlinks: true,
	}

	req := &getter.Request{
		Src:     src,
		Pwd:     wd,
		GetMode: getter.ModeFile,
	}

	fileName := fileNameFromURL(src)

	if dirURL, subFile := splitFileNameFromGetterURL(src); dirURL != "" && subFile != "" {
		req.Src = dirURL
		req.GetMode = getter.ModeDir
		req.Dst = filepath.Join(tmpDir, "g")
		fileName = subFile
	} else {
		if fileName == "" {
			return nil, "", fmt.Errorf("invalid URL format: %s", src)
		}

		req.Dst = filepath.Join(tmpDir, fileName)
	}

	res, err := cli.Get(ctx, req)
	if err != nil {
		return nil, "", err
	}

	dst := res.Dst
	if req.GetMode == getter.ModeDir {
		dst = filepath.Join(res.Dst, fileName)
	}

	data, err := os.ReadFile(dst)
	if err != nil {
		return nil, "", err
	}

	return data, fileName, nil
}

// fileNameFromURL returns the last path element of src, without query string.
func fileNameFromURL(src string) string {
	if i := strings.Index(src, goGetterRefSeparator); i >= 0 {
		src = src[:i]
	}

	name := path.Base(src)
	if name == "." || name == "/" || strings.HasSuffix(name, ":") {
		return ""
	}

	return name
}

// splitFileNameFromGetterURL splits a go-getter subdirectory URL into the
// directory URL (with any ref query kept) and the file name.
// It returns empty strings when src does not use the subdirectory syntax.
func splitFileNameFromGetterURL(src string) (string, string) {
	var ref string

	parts := strings.Split(src, goGetterPathSeparator)
	if len(parts) < minimumGetterParts {
		return "", ""
	}

	last := parts[len(parts)-1]

	if before, after, ok := strings.Cut(last, goGetterRefSeparator); ok {
		ref = after
		last = before
	}

	if last == "" || filepath.Clean(last) == filepath.Dir(last) {
		return "", ""
	}

	fileName := path.Base(last)
	parts[len(parts)-1] = path.Dir(last)

	if parts[len(parts)-1] == "." {
		parts = parts[:len(parts)-1]
	}

	newURL := strings.Join(parts, goGetterPathSeparator)

	if ref != "" {
		newURL += goGetterRefSeparator + ref
	}

	return newURL, fileName
}
