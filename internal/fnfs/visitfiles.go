// Copyright 2024 Laminar Inc; All rights reserved.
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package fnfs

import (
	"context"
	"io"
	"io/fs"
)

// ByteStream is a re-openable view over a file's contents.
type ByteStream interface {
	ContentLength() uint64
	Reader() (io.ReadCloser, error)
}

// VisitFiles walks fsys depth-first and invokes visitor for every regular
// file, honoring context cancellation between entries.
func VisitFiles(ctx context.Context, fsys fs.FS, visitor func(string, ByteStream, fs.DirEntry) error) error {
	return fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		if d.IsDir() {
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			return err
		}

		return visitor(path, reader{fsys, path, fi.Size()}, d)
	})
}

type reader struct {
	fsys fs.FS
	path string
	size int64
}

func (b reader) ContentLength() uint64 { return uint64(b.size) }
func (b reader) Reader() (io.ReadCloser, error) {
	return b.fsys.Open(b.path)
}
