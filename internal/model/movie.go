package model

import "time"

// AgeRating is the Spanish age classification printed on posters and
// listings. An empty value means the movie has not been rated yet.
type AgeRating string

const (
	RatingAll    AgeRating = "TP"  // todos los públicos
	RatingOver7  AgeRating = "+7"
	RatingOver12 AgeRating = "+12"
	RatingOver16 AgeRating = "+16"
	RatingOver18 AgeRating = "+18"
)

// Valid reports whether the rating is one of the known classifications.
// The empty string is accepted since a rating is optional.
func (r AgeRating) Valid() bool {
	switch r {
	case "", RatingAll, RatingOver7, RatingOver12, RatingOver16, RatingOver18:
		return true
	}
	return false
}

// Display returns a human readable description of the rating, matching
// the labels used on the public listings.
func (r AgeRating) Display() string {
	switch r {
	case RatingAll:
		return "Todos los públicos"
	case RatingOver7:
		return "Mayores de 7"
	case RatingOver12:
		return "Mayores de 12"
	case RatingOver16:
		return "Mayores de 16"
	case RatingOver18:
		return "Mayores de 18"
	}
	return ""
}

// Movie is a film in the catalog. Sessions reference movies and are
// removed in cascade when the movie is deleted.
type Movie struct {
	ID          uint64    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DurationMin uint32    `json:"duration_min"`
	Rating      AgeRating `json:"rating"`
	PosterURL   string    `json:"poster_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
