// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package source loads SQL scripts from local paths or any storage URL
// supported by viant/afs.
package source

import (
	"bytes"
	"context"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"

	apperrors "dbprovision/cli/internal/errors"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Loader reads SQL scripts.
type Loader struct {
	fs afs.Service
}

// New creates a Loader backed by fs, or by afs.New() when fs is nil.
func New(fs afs.Service) *Loader {
	if fs == nil {
		fs = afs.New()
	}
	return &Loader{fs: fs}
}

// Load reads the script at location. Relative paths resolve against the
// working directory. A missing script yields an errors.FileMissing error and
// content that is not valid UTF-8 yields errors.FileUnreadable.
func (l *Loader) Load(ctx context.Context, location string) (string, error) {
	URL := url.Normalize(location, file.Scheme)
	exists, err := l.fs.Exists(ctx, URL)
	if err != nil {
		return "", apperrors.Wrap(apperrors.FileUnreadable, "cannot access "+location, err)
	}
	if !exists {
		return "", apperrors.New(apperrors.FileMissing, "file "+location+" does not exist")
	}

	data, err := l.fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return "", apperrors.Wrap(apperrors.FileUnreadable, "cannot read "+location, errors.Wrapf(err, "failed to download: %v", URL))
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return "", apperrors.New(apperrors.FileUnreadable, location+" is not valid UTF-8")
	}
	return string(data), nil
}

// Load reads the script at location with the default file system.
func Load(ctx context.Context, location string) (string, error) {
	return New(nil).Load(ctx, location)
}
