package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/cinebook/booking-api/internal/model"
	"github.com/cinebook/booking-api/internal/repository"
)

// MovieHandler serves the movie catalog. Reads are public; create,
// update and delete sit behind the JWT middleware.
type MovieHandler struct {
	Movies *repository.MovieRepo
}

// NewMovieHandler constructs a MovieHandler.
func NewMovieHandler(movies *repository.MovieRepo) *MovieHandler {
	if movies == nil {
		panic("nil repository passed to NewMovieHandler")
	}
	return &MovieHandler{Movies: movies}
}

type movieRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	DurationMin uint32          `json:"duration_min"`
	Rating      model.AgeRating `json:"rating"`
	PosterURL   string          `json:"poster_url"`
}

func (r *movieRequest) validate() string {
	if r.Title == "" {
		return "title is required"
	}
	if r.DurationMin < 1 {
		return "duration_min must be at least 1"
	}
	if !r.Rating.Valid() {
		return "rating must be one of TP, +7, +12, +16, +18"
	}
	return ""
}

// movieResponse adds the human readable rating label to the entity.
type movieResponse struct {
	model.Movie
	RatingDisplay string `json:"rating_display,omitempty"`
}

func movieOut(m *model.Movie) movieResponse {
	return movieResponse{Movie: *m, RatingDisplay: m.Rating.Display()}
}

// Create handles POST /v1/movies.
func (h *MovieHandler) Create(c echo.Context) error {
	var body movieRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if msg := body.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	m := &model.Movie{
		Title:       body.Title,
		Description: body.Description,
		DurationMin: body.DurationMin,
		Rating:      body.Rating,
		PosterURL:   body.PosterURL,
	}
	if err := h.Movies.Create(c.Request().Context(), m); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusCreated, movieOut(m))
}

// List handles GET /v1/movies with optional ?q= title search and
// ?order=title|duration.
func (h *MovieHandler) List(c echo.Context) error {
	movies, err := h.Movies.List(c.Request().Context(), c.QueryParam("q"), c.QueryParam("order"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]movieResponse, 0, len(movies))
	for i := range movies {
		out = append(out, movieOut(&movies[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// Get handles GET /v1/movies/:id.
func (h *MovieHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}
	m, err := h.Movies.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrMovieNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, movieOut(m))
}

// Update handles PUT /v1/movies/:id.
func (h *MovieHandler) Update(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}
	var body movieRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if msg := body.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	m := &model.Movie{
		ID:          id,
		Title:       body.Title,
		Description: body.Description,
		DurationMin: body.DurationMin,
		Rating:      body.Rating,
		PosterURL:   body.PosterURL,
	}
	if err := h.Movies.Update(c.Request().Context(), m); err != nil {
		if errors.Is(err, repository.ErrMovieNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	updated, err := h.Movies.GetByID(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, movieOut(updated))
}

// Delete handles DELETE /v1/movies/:id. Sessions of the movie and their
// tickets are removed in cascade.
func (h *MovieHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}
	if err := h.Movies.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrMovieNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.NoContent(http.StatusNoContent)
}
