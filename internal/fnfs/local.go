// Copyright 2024 Laminar Inc; All rights reserved.
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package fnfs

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/laminarhq/laminar/internal/fnerrors"
)

// LocalFS is a read-only view over a local directory.
type LocalFS interface {
	fs.ReadDirFS
	fs.StatFS
}

func Local(path string) LocalFS {
	return local{root: path}
}

type local struct {
	root string
}

func (l local) Open(path string) (fs.File, error) {
	return os.DirFS(l.root).Open(path)
}

func (l local) ReadDir(path string) ([]fs.DirEntry, error) {
	if !fs.ValidPath(path) {
		return nil, &fs.PathError{Op: "readdir", Path: path, Err: fnerrors.New("invalid name")}
	}

	return os.ReadDir(filepath.Join(l.root, path))
}

func (l local) Stat(path string) (fs.FileInfo, error) {
	if !fs.ValidPath(path) {
		return nil, &fs.PathError{Op: "stat", Path: path, Err: fnerrors.New("invalid name")}
	}

	return os.Stat(filepath.Join(l.root, path))
}
