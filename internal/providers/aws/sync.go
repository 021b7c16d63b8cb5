// Copyright 2024 Laminar Inc; All rights reserved.
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package aws

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"golang.org/x/sync/errgroup"

	"github.com/laminarhq/laminar/internal/console"
	"github.com/laminarhq/laminar/internal/fnfs"
	"github.com/laminarhq/laminar/internal/schema"
)

const uploadParallelism = 8

// Versioned build assets never change under the same name, so edges and
// browsers may hold them for a year.
const immutableCacheControl = "public,max-age=31536000,immutable"

// objectStore is the slice of the S3 API the syncer needs; *s3.Client
// satisfies it.
type objectStore interface {
	HeadObject(context.Context, *s3.HeadObjectInput, ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	PutObject(context.Context, *s3.PutObjectInput, ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type syncer struct {
	client              objectStore
	defaultCacheControl string
}

// cacheControlFor picks the header one copy spec's objects carry: content
// under a cached spec never changes in place, everything else takes the
// plan's default.
func cacheControlFor(spec schema.CopySpec, defaultCacheControl string) string {
	if spec.Cached {
		return immutableCacheControl
	}
	return defaultCacheControl
}

// syncCopySpec uploads one storage copy spec into bucket, skipping objects
// whose content already matches. Returns how many objects were written.
func (s *syncer) syncCopySpec(ctx context.Context, bucket, outputRoot string, spec schema.CopySpec) (int, error) {
	src := fnfs.Local(filepath.Join(outputRoot, spec.From))

	cacheControl := cacheControlFor(spec, s.defaultCacheControl)

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(uploadParallelism)

	uploaded := make(chan string, 128)
	done := make(chan int)
	go func() {
		count := 0
		for range uploaded {
			count++
		}
		done <- count
	}()

	err := fnfs.VisitFiles(ctx, src, func(filePath string, blob fnfs.ByteStream, _ fs.DirEntry) error {
		key := path.Join(spec.To, filePath)

		eg.Go(func() error {
			wrote, err := s.uploadIfChanged(ctx, bucket, key, cacheControl, blob)
			if err != nil {
				return fmt.Errorf("failed to sync %q: %w", key, err)
			}
			if wrote {
				uploaded <- key
			}
			return nil
		})
		return nil
	})

	egErr := eg.Wait()
	close(uploaded)
	count := <-done

	if err == nil {
		err = egErr
	}
	return count, err
}

func (s *syncer) uploadIfChanged(ctx context.Context, bucket, key, cacheControl string, blob fnfs.ByteStream) (bool, error) {
	r, err := blob.Reader()
	if err != nil {
		return false, err
	}
	defer r.Close()

	contents, err := io.ReadAll(r)
	if err != nil {
		return false, err
	}

	sum := md5.Sum(contents)
	digest := hex.EncodeToString(sum[:])

	head, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err == nil && head.ETag != nil && strings.Trim(*head.ETag, `"`) == digest {
		fmt.Fprintf(console.Debug(ctx), "sync: %s unchanged\n", key)
		return false, nil
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(contents),
		CacheControl: aws.String(cacheControl),
		ContentType:  aws.String(contentTypeFor(key)),
	})
	if err != nil {
		return false, err
	}

	return true, nil
}

func contentTypeFor(key string) string {
	if ct := mime.TypeByExtension(filepath.Ext(key)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
