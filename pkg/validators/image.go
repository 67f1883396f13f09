package validators

import (
	"errors"
	"io"
	"mime/multipart"
	"slices"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrNoFile              = errors.New("no file provided")
	ErrFileTooLarge        = errors.New("file too large")
	ErrFileTypeUnsupported = errors.New("unsupported file type")
)

var allowedImageTypes = []string{"image/png", "image/jpeg", "image/webp", "image/gif"}

// ImageValidator checks the declared size and the sniffed content type of an
// uploaded image. It returns the opened file rewound to the start and the
// detected MIME type. The caller must close the file.
func ImageValidator(fh *multipart.FileHeader, maxSize int64) (multipart.File, string, error) {
	if fh == nil {
		return nil, "", ErrNoFile
	}

	if fh.Size > maxSize {
		return nil, "", ErrFileTooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return nil, "", err
	}

	// Headers are easy to spoof so look at the actual bytes
	mime, err := mimetype.DetectReader(f)
	if err != nil {
		f.Close()
		return nil, "", err
	}

	if !slices.ContainsFunc(allowedImageTypes, mime.Is) {
		f.Close()
		return nil, "", ErrFileTypeUnsupported
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return nil, "", err
	}

	return f, mime.String(), nil
}
