package openai

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFilesUploadPath(t *testing.T) {
	names := make(chan string, 1)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		_, hdr, err := r.FormFile("file")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		names <- hdr.Filename + " " + r.FormValue("purpose")
		writeJSON(w, 200, `{"id":"file-2","object":"file","bytes":3,"filename":"train.jsonl","purpose":"fine-tune"}`)
	})

	path := filepath.Join(t.TempDir(), "train.jsonl")
	if err := os.WriteFile(path, []byte("{}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	f, err := c.Files.UploadPath(context.Background(), path, PurposeFineTune)
	if err != nil {
		t.Fatalf("UploadPath: %v", err)
	}
	if f.ID != "file-2" {
		t.Errorf("ID = %q", f.ID)
	}
	if got := <-names; got != "train.jsonl fine-tune" {
		t.Errorf("upload = %q", got)
	}

	_, err = c.Files.UploadPath(context.Background(), filepath.Join(t.TempDir(), "missing"), PurposeBatch)
	if KindOf(err) != KindConfig {
		t.Errorf("missing file: KindOf = %v, want config", KindOf(err))
	}
}

func TestFilesUploadValidation(t *testing.T) {
	c := NewClient(NewOpenAIAuth("k", "http://127.0.0.1:1"))
	ctx := context.Background()
	if _, err := c.Files.Upload(ctx, strings.NewReader("x"), "a.jsonl", "training"); KindOf(err) != KindConfig {
		t.Errorf("bad purpose: KindOf = %v", KindOf(err))
	}
	if _, err := c.Files.Upload(ctx, strings.NewReader("x"), "", PurposeBatch); KindOf(err) != KindConfig {
		t.Errorf("no name: KindOf = %v", KindOf(err))
	}
	if _, err := c.Files.Upload(ctx, nil, "a.jsonl", PurposeBatch); KindOf(err) != KindConfig {
		t.Errorf("nil reader: KindOf = %v", KindOf(err))
	}
	if _, err := c.Files.Retrieve(ctx, ""); KindOf(err) != KindConfig {
		t.Errorf("empty id: KindOf = %v", KindOf(err))
	}
}

func TestFilesCRUD(t *testing.T) {
	reqs := make(chan string, 4)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		reqs <- r.Method + " " + r.URL.Path
		switch {
		case r.Method == http.MethodDelete:
			writeJSON(w, 200, `{"id":"file-1","object":"file","deleted":true}`)
		case strings.HasSuffix(r.URL.Path, "/content"):
			w.Write([]byte("line1\nline2\n"))
		case r.URL.Path == "/v1/files":
			writeJSON(w, 200, `{"object":"list","data":[{"id":"file-1","object":"file","filename":"a","purpose":"batch"}],"has_more":false}`)
		default:
			writeJSON(w, 200, `{"id":"file-1","object":"file","bytes":12,"filename":"a","purpose":"batch"}`)
		}
	})
	ctx := context.Background()

	list, err := c.Files.List(ctx, "")
	if err != nil || len(list.Data) != 1 {
		t.Fatalf("List = %+v, %v", list, err)
	}
	if f, err := c.Files.Retrieve(ctx, "file-1"); err != nil || f.Bytes != 12 {
		t.Fatalf("Retrieve = %+v, %v", f, err)
	}
	content, err := c.Files.Content(ctx, "file-1")
	if err != nil || string(content) != "line1\nline2\n" {
		t.Fatalf("Content = %q, %v", content, err)
	}
	if del, err := c.Files.Delete(ctx, "file-1"); err != nil || !del.Deleted {
		t.Fatalf("Delete = %+v, %v", del, err)
	}

	for _, want := range []string{
		"GET /v1/files",
		"GET /v1/files/file-1",
		"GET /v1/files/file-1/content",
		"DELETE /v1/files/file-1",
	} {
		if got := <-reqs; got != want {
			t.Errorf("request = %q, want %q", got, want)
		}
	}
}
