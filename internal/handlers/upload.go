package handlers

import (
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/NuvaGit/CaitlinPortfolio/internal/media"
)

const maxUploadMemory = 32 << 20 // 32 MiB before spilling to disk

// UploadHandler stages uploaded files locally and relays them to the
// media host.
type UploadHandler struct {
	uploader media.Uploader
	dir      string
}

func NewUploadHandler(uploader media.Uploader, dir string) *UploadHandler {
	return &UploadHandler{uploader: uploader, dir: dir}
}

func (h *UploadHandler) Image(w http.ResponseWriter, r *http.Request) {
	file, header, ok := h.formFile(w, r)
	if !ok {
		return
	}
	defer file.Close()

	path, cleanup, err := h.stage(file, header.Filename)
	if err != nil {
		log.Printf("stage upload: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to upload image")
		return
	}
	defer cleanup()

	result, err := h.uploader.UploadImage(r.Context(), path)
	if err != nil {
		log.Printf("upload image: %v", err)
		respondErrorDetails(w, http.StatusInternalServerError, "Failed to upload image", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *UploadHandler) PDF(w http.ResponseWriter, r *http.Request) {
	file, header, ok := h.formFile(w, r)
	if !ok {
		return
	}
	defer file.Close()

	if !strings.HasSuffix(header.Filename, ".pdf") {
		respondError(w, http.StatusBadRequest, "File must be a PDF")
		return
	}

	path, cleanup, err := h.stage(file, header.Filename)
	if err != nil {
		log.Printf("stage upload: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to upload PDF")
		return
	}
	defer cleanup()

	result, err := h.uploader.UploadPDF(r.Context(), path)
	if err != nil {
		log.Printf("upload pdf: %v", err)
		respondErrorDetails(w, http.StatusInternalServerError, "Failed to upload PDF", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *UploadHandler) formFile(w http.ResponseWriter, r *http.Request) (multipart.File, *multipart.FileHeader, bool) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		respondError(w, http.StatusBadRequest, "invalid form")
		return nil, nil, false
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "No file provided")
		return nil, nil, false
	}
	return file, header, true
}

// stage writes the upload to a local staging file. The returned cleanup
// removes it on every exit path; the media host keeps the durable copy.
func (h *UploadHandler) stage(file multipart.File, filename string) (string, func(), error) {
	name := fmt.Sprintf("upload-%s-%s", uuid.NewString(), filepath.Base(filename))
	path := filepath.Join(h.dir, name)

	dst, err := os.Create(path)
	if err != nil {
		return "", nil, fmt.Errorf("create staging file: %w", err)
	}
	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		os.Remove(path)
		return "", nil, fmt.Errorf("write staging file: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(path)
		return "", nil, fmt.Errorf("close staging file: %w", err)
	}
	return path, func() { os.Remove(path) }, nil
}
