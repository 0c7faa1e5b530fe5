package handlers_test

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NuvaGit/CaitlinPortfolio/internal/handlers"
	"github.com/NuvaGit/CaitlinPortfolio/internal/media"
)

type fakeUploader struct {
	lastPath    string
	stagedBytes []byte
	fail        bool
}

func (f *fakeUploader) UploadImage(_ context.Context, path string) (*media.Upload, error) {
	return f.record(path, "image")
}

func (f *fakeUploader) UploadPDF(_ context.Context, path string) (*media.Upload, error) {
	return f.record(path, "raw")
}

func (f *fakeUploader) record(path, kind string) (*media.Upload, error) {
	if f.fail {
		return nil, errors.New("upstream unavailable")
	}
	f.lastPath = path
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f.stagedBytes = data
	return &media.Upload{URL: "https://cdn.example.com/" + kind + "/asset", PublicID: kind + "/asset"}, nil
}

func multipartRequest(t *testing.T, path, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestUploadImage_RelaysAndCleansStagingFile(t *testing.T) {
	dir := t.TempDir()
	uploader := &fakeUploader{}
	handler := handlers.NewUploadHandler(uploader, dir)

	rec := httptest.NewRecorder()
	handler.Image(rec, multipartRequest(t, "/api/upload", "photo.jpg", []byte("jpeg bytes")))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody[map[string]string](t, rec)
	assert.Equal(t, "https://cdn.example.com/image/asset", body["url"])
	assert.Equal(t, "image/asset", body["public_id"])
	assert.Equal(t, []byte("jpeg bytes"), uploader.stagedBytes)

	// staging file is removed on the success path
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUploadImage_CleansStagingFileOnUpstreamError(t *testing.T) {
	dir := t.TempDir()
	handler := handlers.NewUploadHandler(&fakeUploader{fail: true}, dir)

	rec := httptest.NewRecorder()
	handler.Image(rec, multipartRequest(t, "/api/upload", "photo.jpg", []byte("jpeg bytes")))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody[map[string]string](t, rec)
	assert.Equal(t, "Failed to upload image", body["error"])
	assert.Equal(t, "upstream unavailable", body["details"])

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUploadImage_NoFile(t *testing.T) {
	handler := handlers.NewUploadHandler(&fakeUploader{}, t.TempDir())

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.Close())
	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	rec := httptest.NewRecorder()
	handler.Image(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadPDF_RejectsNonPDFFilename(t *testing.T) {
	dir := t.TempDir()
	uploader := &fakeUploader{}
	handler := handlers.NewUploadHandler(uploader, dir)

	rec := httptest.NewRecorder()
	handler.PDF(rec, multipartRequest(t, "/api/upload-pdf", "notes.txt", []byte("text")))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "File must be a PDF", decodeBody[map[string]string](t, rec)["error"])
	assert.Empty(t, uploader.lastPath)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUploadPDF_Relays(t *testing.T) {
	uploader := &fakeUploader{}
	handler := handlers.NewUploadHandler(uploader, t.TempDir())

	rec := httptest.NewRecorder()
	handler.PDF(rec, multipartRequest(t, "/api/upload-pdf", "paper.pdf", []byte("%PDF-1.4")))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "raw/asset", decodeBody[map[string]string](t, rec)["public_id"])
}
