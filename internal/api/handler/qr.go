package handler

import (
	"log/slog"
	"net/http"

	"github.com/skip2/go-qrcode"

	"github.com/mcoot/drawit/internal/api/response"
)

// qrSize is the PNG edge length in pixels
const qrSize = 320

// QRHandler renders the lobby join link as a QR code
type QRHandler struct {
	publicURL string
	logger    *slog.Logger
}

// NewQRHandler creates a QR handler. An empty publicURL is derived from each request.
func NewQRHandler(publicURL string, logger *slog.Logger) *QRHandler {
	return &QRHandler{
		publicURL: publicURL,
		logger:    logger,
	}
}

// Code handles GET /api/v1/qr
func (h *QRHandler) Code(w http.ResponseWriter, r *http.Request) {
	url := h.publicURL
	if url == "" {
		url = requestURL(r)
	}

	png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
	if err != nil {
		h.logger.Error("qr generation failed", slog.String("url", url), slog.String("error", err.Error()))
		WriteError(w, NewInternalError())
		return
	}

	response.PNG(w, http.StatusOK, png)
}

// requestURL derives the site root, respecting TLS and X-Forwarded-Proto
func requestURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + r.Host + "/"
}
