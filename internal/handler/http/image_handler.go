package http

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/hlog"

	"github.com/vasiliy-maslov/user-directory/internal/media"
)

const imageFormField = "image"

func (h *UserHandler) handleUploadImage(w http.ResponseWriter, r *http.Request) {
	id, ok := identityFrom(r)
	if !ok {
		respondError(w, http.StatusForbidden, msgInvalidToken)
		return
	}
	logger := hlog.FromRequest(r).With().Str("user_id", id.UserID).Logger()

	r.Body = http.MaxBytesReader(w, r.Body, h.upload.MaxBytes)
	file, header, err := r.FormFile(imageFormField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			respondError(w, http.StatusOK, msgNoImage)
			return
		}
		logger.Warn().Err(err).Msg("Failed to read uploaded image")
		respondError(w, http.StatusOK, msgInvalidRequest)
		return
	}
	defer file.Close()
	if r.MultipartForm != nil {
		defer func() { _ = r.MultipartForm.RemoveAll() }()
	}

	tmpPath, err := h.saveTemp(file, filepath.Ext(header.Filename))
	if err != nil {
		logger.Error().Err(err).Msg("Failed to store uploaded image")
		respondError(w, http.StatusOK, msgInternal)
		return
	}
	// Временный файл удаляется при любом исходе.
	defer func() {
		if err := os.Remove(tmpPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Warn().Err(err).Str("path", tmpPath).Msg("Failed to remove temp upload")
		}
	}()

	uploaded, err := h.media.Upload(r.Context(), tmpPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to upload image to media host")
		respondError(w, http.StatusOK, msgInternal)
		return
	}

	if err := h.service.SetProfileImage(r.Context(), id.UserID, uploaded.PublicID); err != nil {
		logger.Error().Err(err).Str("public_id", uploaded.PublicID).Msg("Failed to save profile image via service")
		respondError(w, http.StatusOK, msgInternal)
		return
	}

	respondSuccess(w, msgImageUploaded, uploaded.PublicID)
}

func (h *UserHandler) saveTemp(src io.Reader, ext string) (string, error) {
	tmp, err := os.CreateTemp(h.upload.Dir, "upload-*"+ext)
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(tmp, src); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}

func (h *UserHandler) handleGetImage(w http.ResponseWriter, r *http.Request) {
	publicID := r.URL.Query().Get("public_id")
	if publicID == "" {
		respondError(w, http.StatusOK, msgMissingPublicID)
		return
	}

	url, err := h.media.ImageURL(r.Context(), publicID, media.DisplaySize, media.DisplaySize)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Str("public_id", publicID).Msg("Failed to build image url")
		respondError(w, http.StatusOK, msgInternal)
		return
	}

	respondSuccess(w, msgImageURL, url)
}
