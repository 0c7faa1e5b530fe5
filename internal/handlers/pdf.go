package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/NuvaGit/CaitlinPortfolio/internal/pdftext"
)

type PDFHandler struct {
	extractor *pdftext.Extractor
}

func NewPDFHandler(extractor *pdftext.Extractor) *PDFHandler {
	return &PDFHandler{extractor: extractor}
}

type ExtractRequest struct {
	PDFURL string `json:"pdfUrl"`
}

func (h *PDFHandler) Extract(w http.ResponseWriter, r *http.Request) {
	var req ExtractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if req.PDFURL == "" {
		respondError(w, http.StatusBadRequest, "No PDF URL provided")
		return
	}

	text, err := h.extractor.ExtractFromURL(r.Context(), req.PDFURL)
	if err != nil {
		if errors.Is(err, pdftext.ErrFetch) {
			respondError(w, http.StatusBadRequest, "Failed to fetch PDF file")
			return
		}
		log.Printf("extract pdf: %v", err)
		respondErrorDetails(w, http.StatusInternalServerError, "Failed to extract text from PDF", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"text": text})
}
