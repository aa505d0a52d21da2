package models

import (
	"time"

	"github.com/google/uuid"
)

// Kid is a child profile owned by a user
type Kid struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	OwnerID   uuid.UUID  `json:"owner_id" db:"owner_id"`
	Name      string     `json:"name" db:"name"`
	Birthdate *time.Time `json:"birthdate" db:"birthdate"`
	AvatarURL *string    `json:"avatar_url" db:"avatar_url"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`

	Sizes       *KidSizes       `json:"sizes,omitempty"`
	Preferences *KidPreferences `json:"preferences,omitempty"`
}

// AgeYears returns the kid's age in whole years at now, or -1 without a
// birthdate.
func (k *Kid) AgeYears(now time.Time) int {
	if k.Birthdate == nil {
		return -1
	}
	b := *k.Birthdate
	age := now.Year() - b.Year()
	if now.YearDay() < b.YearDay() {
		age--
	}
	return age
}

// KidSizes holds clothing sizes, one row per kid.
type KidSizes struct {
	KidID     uuid.UUID `json:"kid_id" db:"kid_id"`
	Shirt     *string   `json:"shirt" db:"shirt"`
	Pants     *string   `json:"pants" db:"pants"`
	Shoe      *string   `json:"shoe" db:"shoe"`
	Dress     *string   `json:"dress" db:"dress"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// KidPreferences holds interests and dislikes, one row per kid.
type KidPreferences struct {
	KidID          uuid.UUID `json:"kid_id" db:"kid_id"`
	FavoriteColors []string  `json:"favorite_colors" db:"favorite_colors"`
	Interests      []string  `json:"interests" db:"interests"`
	Dislikes       []string  `json:"dislikes" db:"dislikes"`
	Notes          *string   `json:"notes" db:"notes"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}
