package memory

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/a9b3/aws-site-deploy/internal/domain/s3"
	"github.com/a9b3/aws-site-deploy/internal/ports"
)

// Files is a site held in memory, keyed by slash-separated path.
type Files map[string]string

var _ ports.FileSource = Files(nil)

// Files returns every file under root ("." or "" for all of them).
func (f Files) Files(_ context.Context, root string) ([]s3.Object, error) {
	prefix := strings.Trim(root, "/")
	if prefix == "." {
		prefix = ""
	}

	var objects []s3.Object
	for name, body := range f {
		key := name
		if prefix != "" {
			rest, ok := strings.CutPrefix(name, prefix+"/")
			if !ok {
				continue
			}
			key = rest
		}
		objects = append(objects, s3.Object{
			Path:        name,
			Key:         key,
			ContentType: contentType(key),
			Size:        int64(len(body)),
		})
	}
	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })
	return objects, nil
}

func (f Files) Open(name string) (io.ReadCloser, error) {
	body, ok := f[name]
	if !ok {
		return nil, fmt.Errorf("open %s: %w", name, fs.ErrNotExist)
	}
	return io.NopCloser(strings.NewReader(body)), nil
}

var contentTypes = map[string]string{
	".html": "text/html; charset=utf-8",
	".css":  "text/css; charset=utf-8",
	".js":   "text/javascript; charset=utf-8",
	".json": "application/json",
	".png":  "image/png",
	".svg":  "image/svg+xml",
}

func contentType(key string) string {
	return contentTypes[path.Ext(key)]
}
