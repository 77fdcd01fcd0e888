// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package artifact stores rendered charts.
package artifact

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// A Sink stores named artifacts.
type Sink interface {
	// Put stores data under name, replacing any previous artifact
	// with that name. name is slash-separated and relative.
	Put(ctx context.Context, name string, data []byte) error

	// Location returns where Put stores name, for display.
	Location(name string) string
}

// Dir is a Sink that writes artifacts below a local directory,
// creating directories as needed.
type Dir string

func (d Dir) Location(name string) string {
	return filepath.Join(string(d), filepath.FromSlash(name))
}

func (d Dir) Put(ctx context.Context, name string, data []byte) error {
	file := d.Location(name)
	if err := os.MkdirAll(filepath.Dir(file), 0777); err != nil {
		return err
	}
	return os.WriteFile(file, data, 0666)
}

// GCS is a Sink that uploads artifacts to a Google Cloud Storage
// bucket.
type GCS struct {
	client *storage.Client
	bucket string
	prefix string
}

// NewGCS returns a Sink for url, which has the form
// gs://bucket/prefix. If credentialsFile is empty, the default
// application credentials are used.
func NewGCS(ctx context.Context, url, credentialsFile string) (*GCS, error) {
	bucket, prefix, err := parseGCSURL(url)
	if err != nil {
		return nil, err
	}
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gcs: %w", err)
	}
	return &GCS{client: client, bucket: bucket, prefix: prefix}, nil
}

func parseGCSURL(url string) (bucket, prefix string, err error) {
	rest, ok := strings.CutPrefix(url, "gs://")
	if !ok {
		return "", "", fmt.Errorf("gcs: %q does not start with gs://", url)
	}
	bucket, prefix, _ = strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", fmt.Errorf("gcs: %q has no bucket", url)
	}
	return bucket, strings.Trim(prefix, "/"), nil
}

func (g *GCS) object(name string) string {
	if g.prefix == "" {
		return name
	}
	return path.Join(g.prefix, name)
}

func (g *GCS) Location(name string) string {
	return "gs://" + g.bucket + "/" + g.object(name)
}

func (g *GCS) Put(ctx context.Context, name string, data []byte) error {
	w := g.client.Bucket(g.bucket).Object(g.object(name)).NewWriter(ctx)
	w.ContentType = mime.TypeByExtension(path.Ext(name))
	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("gcs: writing %s: %w", g.Location(name), err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("gcs: writing %s: %w", g.Location(name), err)
	}
	return nil
}

// Close releases the client's resources.
func (g *GCS) Close() error {
	return g.client.Close()
}
