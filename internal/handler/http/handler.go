package http

import (
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/vasiliy-maslov/user-directory/internal/auth"
	"github.com/vasiliy-maslov/user-directory/internal/config"
	"github.com/vasiliy-maslov/user-directory/internal/media"
	"github.com/vasiliy-maslov/user-directory/internal/user"
)

type UserHandler struct {
	service  user.Service
	media    media.Service
	verifier auth.TokenVerifier
	upload   config.UploadConfig
	validate *validator.Validate
}

func NewUserHandler(service user.Service, mediaService media.Service, verifier auth.TokenVerifier, upload config.UploadConfig) *UserHandler {
	validate := validator.New()
	// В сообщениях об ошибках используем имена полей из JSON.
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	return &UserHandler{
		service:  service,
		media:    mediaService,
		verifier: verifier,
		upload:   upload,
		validate: validate,
	}
}

func (h *UserHandler) RegisterRoutes(router chi.Router) {
	router.Post("/sign-in", h.handleSignIn)
	router.Post("/sign-up", h.handleSignUp)
	router.Get("/count", h.handleCount)

	router.Group(func(r chi.Router) {
		r.Use(Authenticate(h.verifier))
		r.Get("/dashboard", h.handleDashboard)
		r.Get("/check-token", h.handleCheckToken)
		r.Get("/current-user", h.handleCurrentUser)
		r.Post("/upload-image", h.handleUploadImage)
		r.Get("/get-image", h.handleGetImage)
	})
}

func HandleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
