package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Response - единый конверт для всех ответов API.
type Response struct {
	Status      string      `json:"status"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Result      interface{} `json:"result,omitempty"`
}

// Message is a title/description pair shown to the client.
type Message struct {
	Title       string
	Description string
}

var (
	msgInternal          = Message{"Internal Server Error", "Something went wrong. Please try again later."}
	msgInvalidRequest    = Message{"Invalid request", "The request body could not be parsed"}
	msgAuthRequired      = Message{"Authentication required", "The authorization header is missing"}
	msgInvalidToken      = Message{"Invalid or expired token", "The token is invalid or expired"}
	msgUserExists        = Message{"User already exists", "The user already exists"}
	msgUserNotFound      = Message{"User does not exist", "The user does not exist"}
	msgIncorrectPassword = Message{"Incorrect Password", "The password you entered is incorrect"}
	msgSignUp            = Message{"Sign up successful", "The sign up was successful"}
	msgSignIn            = Message{"Sign in successful", "The sign in was successful"}
	msgCount             = Message{"User Count", "The user count was retrieved successfully"}
	msgUserData          = Message{"User Data", "The user data was retrieved successfully"}
	msgCurrentUser       = Message{"Current User", "The current user was retrieved successfully"}
	msgTokenValid        = Message{"Token is valid", "The token is valid"}
	msgNoImage           = Message{"No image provided", "The request must contain an image file in the \"image\" field"}
	msgImageUploaded     = Message{"Image uploaded successfully", "The image was uploaded successfully"}
	msgMissingPublicID   = Message{"Missing public_id", "The public_id query parameter is required"}
	msgImageURL          = Message{"Image URL", "The image URL was generated successfully"}
)

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"status":"error","title":"Internal Server Error","description":"Something went wrong. Please try again later."}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		log.Error().Err(err).Msg("Failed to write JSON response")
	}
}

func respondSuccess(w http.ResponseWriter, msg Message, result interface{}) {
	respondWithJSON(w, http.StatusOK, Response{
		Status:      StatusSuccess,
		Title:       msg.Title,
		Description: msg.Description,
		Result:      result,
	})
}

// respondError пишет конверт с ошибкой. Доменные ошибки идут с кодом 200,
// отличные от 200 коды используются только для аутентификации.
func respondError(w http.ResponseWriter, code int, msg Message) {
	respondWithJSON(w, code, Response{
		Status:      StatusError,
		Title:       msg.Title,
		Description: msg.Description,
	})
}

func formatValidationErrors(errs validator.ValidationErrors) string {
	details := make([]string, 0, len(errs))
	for _, fe := range errs {
		switch fe.Tag() {
		case "required":
			details = append(details, fe.Field()+" is required")
		case "email":
			details = append(details, fe.Field()+" must be a valid email address")
		default:
			details = append(details, fe.Field()+" is invalid")
		}
	}
	return strings.Join(details, "; ")
}
