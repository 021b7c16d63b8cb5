// Copyright 2024 Laminar Inc; All rights reserved.
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package aws

import (
	"archive/zip"
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/require"

	"github.com/laminarhq/laminar/internal/schema"
)

func TestContentTypeFor(t *testing.T) {
	cases := map[string]string{
		"index.html":     "text/html; charset=utf-8",
		"assets/app.css": "text/css; charset=utf-8",
		"data.bin":       "application/octet-stream",
	}

	for key, expected := range cases {
		require.Equal(t, expected, contentTypeFor(key), key)
	}
}

func TestCacheControlSelection(t *testing.T) {
	defaults := "public,max-age=0,s-maxage=86400"

	require.Equal(t, immutableCacheControl,
		cacheControlFor(schema.CopySpec{From: "client", Cached: true}, defaults))
	require.Equal(t, defaults,
		cacheControlFor(schema.CopySpec{From: "client"}, defaults))
}

type fakeObjectStore struct {
	etags map[string]string // key -> stored content MD5

	puts []*s3.PutObjectInput
}

func (f *fakeObjectStore) HeadObject(ctx context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	etag, ok := f.etags[*in.Key]
	if !ok {
		return nil, &noSuchKey{}
	}
	return &s3.HeadObjectOutput{ETag: aws.String(`"` + etag + `"`)}, nil
}

func (f *fakeObjectStore) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.puts = append(f.puts, in)
	return &s3.PutObjectOutput{}, nil
}

type noSuchKey struct{}

func (noSuchKey) Error() string { return "NotFound" }

type memoryBlob []byte

func (b memoryBlob) ContentLength() uint64 { return uint64(len(b)) }
func (b memoryBlob) Reader() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(b)), nil
}

func TestUploadIfChangedSkipsMatchingETag(t *testing.T) {
	contents := []byte("body { margin: 0; }")
	sum := md5.Sum(contents)

	store := &fakeObjectStore{etags: map[string]string{
		"app.css": hex.EncodeToString(sum[:]),
	}}
	s := &syncer{client: store, defaultCacheControl: "public,max-age=0,s-maxage=86400"}

	wrote, err := s.uploadIfChanged(t.Context(), "bucket", "app.css", immutableCacheControl, memoryBlob(contents))
	require.NoError(t, err)
	require.False(t, wrote)
	require.Empty(t, store.puts)
}

func TestUploadIfChangedWritesWithHeaders(t *testing.T) {
	store := &fakeObjectStore{}
	s := &syncer{client: store, defaultCacheControl: "public,max-age=0,s-maxage=86400"}

	wrote, err := s.uploadIfChanged(t.Context(), "bucket", "app.css", immutableCacheControl, memoryBlob([]byte("body {}")))
	require.NoError(t, err)
	require.True(t, wrote)

	require.Len(t, store.puts, 1)
	require.Equal(t, immutableCacheControl, *store.puts[0].CacheControl)
	require.Equal(t, "text/css; charset=utf-8", *store.puts[0].ContentType)
}

func TestZipBundle(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "chunks"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.mjs"), []byte("export const handler = () => {};"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "chunks", "app.mjs"), []byte("//"), 0644))

	raw, err := zipBundle(dir)
	require.NoError(t, err)

	r, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	require.NoError(t, err)

	var names []string
	for _, f := range r.File {
		names = append(names, f.Name)
	}
	require.ElementsMatch(t, []string{"index.mjs", "chunks/app.mjs"}, names)
}
