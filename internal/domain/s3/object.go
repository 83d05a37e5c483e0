package s3

// Object is a local file scheduled for upload.
type Object struct {
	// Path is the absolute path on disk.
	Path string
	// Key is Path relative to the source root, with forward slashes.
	Key string
	// ContentType is empty when the extension is unknown.
	ContentType string
	Size        int64
}
