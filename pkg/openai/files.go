package openai

import (
	"context"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
)

// FilePurpose is the intended use of an uploaded file.
type FilePurpose string

const (
	PurposeAssistants FilePurpose = "assistants"
	PurposeBatch      FilePurpose = "batch"
	PurposeFineTune   FilePurpose = "fine-tune"
	PurposeVision     FilePurpose = "vision"
	PurposeUserData   FilePurpose = "user_data"
	PurposeEvals      FilePurpose = "evals"
)

// Valid reports whether p may be used for an upload.
func (p FilePurpose) Valid() bool {
	switch p {
	case PurposeAssistants, PurposeBatch, PurposeFineTune, PurposeVision, PurposeUserData, PurposeEvals:
		return true
	}
	return false
}

// File is an uploaded file object.
type File struct {
	ID            string `json:"id"`
	Object        string `json:"object"`
	Bytes         int64  `json:"bytes"`
	CreatedAt     int64  `json:"created_at"`
	ExpiresAt     int64  `json:"expires_at,omitzero"`
	Filename      string `json:"filename"`
	Purpose       string `json:"purpose"`
	Status        string `json:"status,omitzero"`
	StatusDetails string `json:"status_details,omitzero"`
}

// FilesService manages uploaded files.
type FilesService struct {
	client *Client
}

func newFilesService(client *Client) *FilesService {
	return &FilesService{client: client}
}

// Upload streams r to the server as a multipart upload.
func (s *FilesService) Upload(ctx context.Context, r io.Reader, filename string, purpose FilePurpose) (*File, error) {
	if r == nil {
		return nil, configErrorf("file reader is required")
	}
	if filename == "" {
		return nil, configErrorf("file name is required")
	}
	if !purpose.Valid() {
		return nil, configErrorf("invalid file purpose %q", purpose)
	}
	var resp File
	err := s.client.http.doJSON(ctx, &request{
		op:     "files.upload",
		method: http.MethodPost,
		path:   "files",
		form: []formPart{
			textField("purpose", string(purpose)),
			fileField("file", r, filename, mime.TypeByExtension(filepath.Ext(filename))),
		},
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// UploadPath uploads a local file.
func (s *FilesService) UploadPath(ctx context.Context, path string, purpose FilePurpose) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, configErrorf("open upload file: %v", err)
	}
	defer f.Close()
	return s.Upload(ctx, f, filepath.Base(path), purpose)
}

// List returns uploaded files, optionally filtered by purpose.
func (s *FilesService) List(ctx context.Context, purpose FilePurpose) (*List[*File], error) {
	var q query
	q = q.add("purpose", string(purpose))
	var resp List[*File]
	err := s.client.http.doJSON(ctx, &request{
		op:     "files.list",
		method: http.MethodGet,
		path:   "files",
		query:  q,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Retrieve returns file metadata.
func (s *FilesService) Retrieve(ctx context.Context, id string) (*File, error) {
	if id == "" {
		return nil, configErrorf("file id is required")
	}
	var resp File
	err := s.client.http.doJSON(ctx, &request{
		op:     "files.retrieve",
		method: http.MethodGet,
		path:   "files/" + url.PathEscape(id),
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Delete deletes a file.
func (s *FilesService) Delete(ctx context.Context, id string) (*DeleteResponse, error) {
	if id == "" {
		return nil, configErrorf("file id is required")
	}
	var resp DeleteResponse
	err := s.client.http.doJSON(ctx, &request{
		op:     "files.delete",
		method: http.MethodDelete,
		path:   "files/" + url.PathEscape(id),
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Content returns the raw bytes of a file.
func (s *FilesService) Content(ctx context.Context, id string) ([]byte, error) {
	if id == "" {
		return nil, configErrorf("file id is required")
	}
	return s.client.http.do(ctx, &request{
		op:     "files.content",
		method: http.MethodGet,
		path:   "files/" + url.PathEscape(id) + "/content",
	})
}
