package service

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/stemsi/school-directory/internal/model"
	"github.com/stemsi/school-directory/internal/repository"
)

// User-facing messages for the add-school and list flows.
const (
	MsgSchoolAdded   = "School added successfully!"
	MsgDuplicateName = "A school with this name already exists."
	MsgInvalidInput  = "Please check your input and try again."
	MsgAddFailed     = "Failed to add school. Please try again."
	MsgNetworkError  = "Network error. Please check your connection and try again."
	MsgUnexpected    = "An unexpected error occurred. Please try again."
	MsgLoadFailed    = "Failed to load schools. Please try again later."
)

// Alert types.
const (
	AlertSuccess = "success"
	AlertError   = "error"
)

// Form field names that can carry server-side errors.
const (
	FieldName  = "name"
	FieldImage = "image"
)

// SchoolStore is the persistence the service needs; the API-backed
// repository.SchoolRepository satisfies it.
type SchoolStore interface {
	List(ctx context.Context) ([]model.School, error)
	Create(ctx context.Context, form *model.SchoolForm, image *model.ImageUpload) (*model.School, error)
	ImageURL(filename string) string
}

// Alert is a page-level message.
type Alert struct {
	Type    string
	Message string
}

// SubmitResult describes how the form page should be re-rendered after a
// submission attempt.
type SubmitResult struct {
	Status      int
	Alert       *Alert
	FieldErrors map[string]string
	// Reset is true when the form should be rendered empty.
	Reset bool
}

// SchoolCard is a school prepared for the list grid.
type SchoolCard struct {
	ID       int64
	Name     string
	Address  string
	City     string
	ImageURL string
}

// SchoolService handles the add-school and list flows.
type SchoolService struct {
	store SchoolStore
	log   zerolog.Logger
}

// NewSchoolService creates a new SchoolService.
func NewSchoolService(store SchoolStore, log zerolog.Logger) *SchoolService {
	return &SchoolService{
		store: store,
		log:   log.With().Str("component", "school_service").Logger(),
	}
}

// Submit forwards a validated form to the API and classifies the outcome.
func (s *SchoolService) Submit(ctx context.Context, form *model.SchoolForm, image *model.ImageUpload) SubmitResult {
	_, err := s.store.Create(ctx, form, image)
	if err == nil {
		s.log.Info().Str("name", form.Name).Bool("image", image != nil).Msg("school added")
		return SubmitResult{
			Status: http.StatusOK,
			Alert:  &Alert{Type: AlertSuccess, Message: MsgSchoolAdded},
			Reset:  true,
		}
	}

	var apiErr *repository.APIError
	switch {
	case errors.As(err, &apiErr):
		s.log.Warn().Err(err).Int("status", apiErr.StatusCode).Str("name", form.Name).Msg("school rejected by api")
		return classifyAPIError(apiErr)

	case errors.Is(err, repository.ErrUnreachable):
		s.log.Error().Err(err).Msg("schools api unreachable")
		return SubmitResult{
			Status: http.StatusBadGateway,
			Alert:  &Alert{Type: AlertError, Message: MsgNetworkError},
		}

	default:
		s.log.Error().Err(err).Msg("failed to submit school")
		return SubmitResult{
			Status: http.StatusInternalServerError,
			Alert:  &Alert{Type: AlertError, Message: MsgUnexpected},
		}
	}
}

func classifyAPIError(apiErr *repository.APIError) SubmitResult {
	switch apiErr.StatusCode {
	case http.StatusConflict:
		return SubmitResult{
			Status:      http.StatusConflict,
			Alert:       &Alert{Type: AlertError, Message: orDefault(apiErr.Message, MsgDuplicateName)},
			FieldErrors: map[string]string{FieldName: MsgDuplicateName},
		}
	case http.StatusBadRequest:
		return SubmitResult{
			Status: http.StatusBadRequest,
			Alert:  &Alert{Type: AlertError, Message: orDefault(apiErr.Message, MsgInvalidInput)},
		}
	default:
		return SubmitResult{
			Status: http.StatusBadGateway,
			Alert:  &Alert{Type: AlertError, Message: orDefault(apiErr.Message, MsgAddFailed)},
		}
	}
}

// List fetches all schools and prepares them for display.
func (s *SchoolService) List(ctx context.Context) ([]SchoolCard, error) {
	schools, err := s.store.List(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list schools")
		return nil, err
	}

	cards := make([]SchoolCard, 0, len(schools))
	for _, sc := range schools {
		cards = append(cards, SchoolCard{
			ID:       sc.ID,
			Name:     sc.Name,
			Address:  sc.Address,
			City:     sc.City,
			ImageURL: s.store.ImageURL(sc.Image),
		})
	}
	return cards, nil
}

func orDefault(msg, fallback string) string {
	if msg == "" {
		return fallback
	}
	return msg
}
