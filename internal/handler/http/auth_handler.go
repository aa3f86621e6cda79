package http

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/hlog"

	"github.com/vasiliy-maslov/user-directory/internal/user"
)

type SignInRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type SignUpRequest struct {
	FirstName   string `json:"first_name" validate:"required"`
	LastName    string `json:"last_name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required"`
	PhoneNumber string `json:"phone_number" validate:"required"`
	UserName    string `json:"user_name" validate:"required"`
}

func (req *SignInRequest) normalize() {
	req.Email = strings.TrimSpace(req.Email)
}

func (req *SignUpRequest) normalize() {
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Email = strings.TrimSpace(req.Email)
	req.PhoneNumber = strings.TrimSpace(req.PhoneNumber)
	req.UserName = strings.TrimSpace(req.UserName)
}

type TokenResult struct {
	Token string `json:"token"`
}

// maxFormMemory limits how much of a multipart credentials form is held in memory.
const maxFormMemory = 1 << 20

// decodeBody accepts a JSON body, a url-encoded form or a multipart form.
func decodeBody(r *http.Request, dst interface{}, fromForm func(get func(string) string)) error {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return err
		}
		fromForm(r.PostForm.Get)
		return nil
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxFormMemory); err != nil {
			return err
		}
		defer func() { _ = r.MultipartForm.RemoveAll() }()
		fromForm(r.PostForm.Get)
		return nil
	default:
		return json.NewDecoder(r.Body).Decode(dst)
	}
}

// validateRequest responds on failure and reports whether handling may continue.
func (h *UserHandler) validateRequest(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	err := h.validate.Struct(req)
	if err == nil {
		return true
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		respondError(w, http.StatusOK, Message{Title: msgInvalidRequest.Title, Description: formatValidationErrors(validationErrors)})
		return false
	}

	hlog.FromRequest(r).Error().Err(err).Msg("Unexpected error type during validation")
	respondError(w, http.StatusOK, msgInternal)
	return false
}

func (h *UserHandler) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	err := decodeBody(r, &req, func(get func(string) string) {
		req.Email = get("email")
		req.Password = get("password")
	})
	if err != nil {
		hlog.FromRequest(r).Warn().Err(err).Msg("Failed to decode sign-in body")
		respondError(w, http.StatusOK, msgInvalidRequest)
		return
	}
	req.normalize()
	if !h.validateRequest(w, r, req) {
		return
	}

	token, err := h.service.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrUserNotFound):
			respondError(w, http.StatusOK, msgUserNotFound)
		case errors.Is(err, user.ErrIncorrectPassword):
			respondError(w, http.StatusOK, msgIncorrectPassword)
		default:
			hlog.FromRequest(r).Error().Err(err).Msg("Failed to sign in via service")
			respondError(w, http.StatusOK, msgInternal)
		}
		return
	}

	respondSuccess(w, msgSignIn, TokenResult{Token: token})
}

func (h *UserHandler) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req SignUpRequest
	err := decodeBody(r, &req, func(get func(string) string) {
		req.FirstName = get("first_name")
		req.LastName = get("last_name")
		req.Email = get("email")
		req.Password = get("password")
		req.PhoneNumber = get("phone_number")
		req.UserName = get("user_name")
	})
	if err != nil {
		hlog.FromRequest(r).Warn().Err(err).Msg("Failed to decode sign-up body")
		respondError(w, http.StatusOK, msgInvalidRequest)
		return
	}
	req.normalize()
	if !h.validateRequest(w, r, req) {
		return
	}

	token, err := h.service.SignUp(r.Context(), user.SignUpInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Password:    req.Password,
		PhoneNumber: req.PhoneNumber,
		UserName:    req.UserName,
	})
	if err != nil {
		if errors.Is(err, user.ErrUserExists) {
			respondError(w, http.StatusOK, msgUserExists)
			return
		}
		hlog.FromRequest(r).Error().Err(err).Msg("Failed to sign up via service")
		respondError(w, http.StatusOK, msgInternal)
		return
	}

	respondSuccess(w, msgSignUp, TokenResult{Token: token})
}
