// Package local reads site files from disk.
package local

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"sort"

	"github.com/a9b3/aws-site-deploy/internal/domain/s3"
	"github.com/a9b3/aws-site-deploy/internal/ports"
)

// FileSource enumerates regular files under a directory.
type FileSource struct{}

var _ ports.FileSource = FileSource{}

func NewFileSource() FileSource {
	return FileSource{}
}

// Files returns every regular file under root, sorted by key. Keys are
// slash-separated paths relative to root.
func (FileSource) Files(ctx context.Context, root string) ([]s3.Object, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", root, err)
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to read source directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source %s is not a directory", root)
	}

	var objects []s3.Object
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(absRoot, path)
		if err != nil {
			return err
		}
		fi, err := d.Info()
		if err != nil {
			return err
		}

		objects = append(objects, s3.Object{
			Path:        path,
			Key:         filepath.ToSlash(rel),
			ContentType: ContentType(path),
			Size:        fi.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}

	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })
	return objects, nil
}

func (FileSource) Open(path string) (io.ReadCloser, error) {
	return os.Open(path)
}

// ContentType guesses the MIME type from the file extension, empty when
// unknown.
func ContentType(path string) string {
	return mime.TypeByExtension(filepath.Ext(path))
}
