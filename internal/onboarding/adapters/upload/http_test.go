package upload

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	"onboarding/internal/onboarding/models"
	dErrors "onboarding/pkg/domain-errors"
)

type HTTPUploaderSuite struct {
	suite.Suite
	server *httptest.Server
	status int

	mu       sync.Mutex
	received map[string][]byte
	types    map[string]string
}

func TestHTTPUploaderSuite(t *testing.T) {
	suite.Run(t, new(HTTPUploaderSuite))
}

func (s *HTTPUploaderSuite) SetupTest() {
	s.status = http.StatusCreated
	s.received = map[string][]byte{}
	s.types = map[string]string{}
	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		body, _ := io.ReadAll(r.Body)
		s.mu.Lock()
		s.received[r.URL.Path] = body
		s.types[r.URL.Path] = r.Header.Get("Content-Type")
		s.mu.Unlock()
		w.WriteHeader(s.status)
	}))
}

func (s *HTTPUploaderSuite) TearDownTest() {
	s.server.Close()
}

func (s *HTTPUploaderSuite) TestUpload() {
	u, err := NewHTTPUploader(s.server.URL + "/documents")
	s.Require().NoError(err)

	content := []byte("\x89PNG scan")
	sum := sha256.Sum256(content)

	res, err := u.Upload(context.Background(), models.UploadFile{
		Name:     "../../id card.png",
		MimeType: "image/png",
		Size:     int64(len(content)),
		Content:  bytes.NewReader(content),
	})
	s.Require().NoError(err)
	s.Equal(hex.EncodeToString(sum[:]), res.Hash)
	s.True(strings.HasPrefix(res.URL, s.server.URL+"/documents/"))
	s.True(strings.HasSuffix(res.URL, "/id%20card.png"))

	s.Require().Len(s.received, 1)
	for p, body := range s.received {
		s.True(strings.HasPrefix(p, "/documents/"), "path stays under the base: %s", p)
		s.Equal(content, body)
		s.Equal("image/png", s.types[p])
	}
}

func (s *HTTPUploaderSuite) TestRejectedUpload() {
	s.status = http.StatusInsufficientStorage
	u, err := NewHTTPUploader(s.server.URL)
	s.Require().NoError(err)

	_, err = u.Upload(context.Background(), models.UploadFile{
		Name:    "passport.pdf",
		Content: strings.NewReader("pdf"),
	})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
}

func (s *HTTPUploaderSuite) TestInvalidBaseURL() {
	_, err := NewHTTPUploader("not a url")
	s.Error(err)
}
