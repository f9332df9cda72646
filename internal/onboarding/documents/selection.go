package documents

import (
	"bufio"
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"onboarding/internal/onboarding/models"
	dErrors "onboarding/pkg/domain-errors"
	"onboarding/pkg/platform/strings"
)

// sniffLen is how many bytes http.DetectContentType considers.
const sniffLen = 512

// Selection is a set of files picked in one multipart request. Close releases
// every opened part and temporary file; it is safe to call more than once
// and must be deferred right after a successful Select.
type Selection struct {
	form   *multipart.Form
	field  string
	opened []multipart.File
	closed bool
}

// Select parses the multipart body of r and scopes the files of field.
func Select(r *http.Request, field string, maxMemory int64) (*Selection, error) {
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid multipart body")
	}
	s := &Selection{form: r.MultipartForm, field: field}
	if len(s.form.File[field]) == 0 {
		_ = s.Close()
		return nil, dErrors.New(dErrors.CodeBadRequest, "no files in field "+field)
	}
	return s, nil
}

// Len returns the number of selected files.
func (s *Selection) Len() int {
	return len(s.form.File[s.field])
}

// Files opens every selected file. The MIME type comes from the part header
// and falls back to content sniffing when the client sent none.
func (s *Selection) Files() ([]models.UploadFile, error) {
	if s.closed {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "selection already closed")
	}
	headers := s.form.File[s.field]
	files := make([]models.UploadFile, 0, len(headers))
	for _, h := range headers {
		f, err := h.Open()
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "failed to open "+h.Filename)
		}
		s.opened = append(s.opened, f)

		content := bufio.NewReaderSize(f, sniffLen)
		mimeType := strings.MediaType(h.Header.Get("Content-Type"))
		if mimeType == "" || mimeType == "application/octet-stream" {
			head, err := content.Peek(sniffLen)
			if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
				return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "failed to read "+h.Filename)
			}
			mimeType = strings.MediaType(http.DetectContentType(head))
		}
		files = append(files, models.UploadFile{
			Name:     h.Filename,
			MimeType: mimeType,
			Size:     h.Size,
			Content:  content,
		})
	}
	return files, nil
}

// Close releases every resource held by the selection.
func (s *Selection) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	var errs []error
	for _, f := range s.opened {
		errs = append(errs, f.Close())
	}
	s.opened = nil
	errs = append(errs, s.form.RemoveAll())
	return errors.Join(errs...)
}
