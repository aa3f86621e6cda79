package user

import "time"

// IDPrefix предшествует UUID в идентификаторе пользователя.
const IDPrefix = "user_"

// User - запись пользователя. Password хранит только bcrypt-хеш.
type User struct {
	UserID        string    `json:"user_id" bson:"user_id"`
	FirstName     string    `json:"first_name" bson:"first_name"`
	LastName      string    `json:"last_name" bson:"last_name"`
	Email         string    `json:"email" bson:"email"`
	Password      string    `json:"-" bson:"password"`
	PhoneNumber   string    `json:"phone_number" bson:"phone_number"`
	UserName      string    `json:"user_name" bson:"user_name"`
	ImagePublicID *string   `json:"image_public_id,omitempty" bson:"image_public_id,omitempty"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at"`
}

// Summary is the dashboard projection of a user.
type Summary struct {
	UserID        string  `json:"user_id" bson:"user_id"`
	UserName      string  `json:"user_name" bson:"user_name"`
	FirstName     string  `json:"first_name" bson:"first_name"`
	ImagePublicID *string `json:"image_public_id,omitempty" bson:"image_public_id,omitempty"`
}

// Profile is what the current user sees about themselves.
type Profile struct {
	UserID        string  `json:"user_id" bson:"user_id"`
	Email         string  `json:"email" bson:"email"`
	ImagePublicID *string `json:"image_public_id,omitempty" bson:"image_public_id,omitempty"`
}

type SignUpInput struct {
	FirstName   string
	LastName    string
	Email       string
	Password    string
	PhoneNumber string
	UserName    string
}

func (u *User) Summary() Summary {
	return Summary{
		UserID:        u.UserID,
		UserName:      u.UserName,
		FirstName:     u.FirstName,
		ImagePublicID: u.ImagePublicID,
	}
}

func (u *User) Profile() Profile {
	return Profile{
		UserID:        u.UserID,
		Email:         u.Email,
		ImagePublicID: u.ImagePublicID,
	}
}
