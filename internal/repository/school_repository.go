package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/stemsi/school-directory/internal/config"
	"github.com/stemsi/school-directory/internal/model"
)

// maxErrorBody caps how much of an error response is read.
const maxErrorBody = 64 << 10

// ErrUnreachable wraps transport failures where no response was received.
var ErrUnreachable = errors.New("schools api unreachable")

// APIError is a non-2xx response from the schools API.
type APIError struct {
	StatusCode int
	// Message is the API's "error" field with markup stripped. May be empty.
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("schools api returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("schools api returned status %d: %s", e.StatusCode, e.Message)
}

type errorBody struct {
	Error string `json:"error"`
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// SchoolRepository reads and writes schools through the REST API.
type SchoolRepository struct {
	baseURL string
	client  *http.Client
	policy  *bluemonday.Policy
}

// NewSchoolRepository creates a new SchoolRepository.
func NewSchoolRepository(cfg *config.Config) *SchoolRepository {
	return &SchoolRepository{
		baseURL: cfg.APIBaseURL,
		client:  &http.Client{Timeout: cfg.APITimeout},
		policy:  bluemonday.StrictPolicy(),
	}
}

// List retrieves all schools.
func (r *SchoolRepository) List(ctx context.Context) ([]model.School, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/api/schools", nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, r.readError(resp)
	}

	var schools []model.School
	if err := json.NewDecoder(resp.Body).Decode(&schools); err != nil {
		return nil, fmt.Errorf("decode schools: %w", err)
	}
	if schools == nil {
		schools = []model.School{}
	}
	return schools, nil
}

// Create submits a new school as multipart/form-data. The image part is
// only written when image is non-nil.
func (r *SchoolRepository) Create(ctx context.Context, form *model.SchoolForm, image *model.ImageUpload) (*model.School, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	for _, f := range form.Fields() {
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return nil, fmt.Errorf("write field %s: %w", f[0], err)
		}
	}

	if image != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name="image"; filename="%s"`, quoteEscaper.Replace(image.Filename)))
		h.Set("Content-Type", image.ContentType)
		part, err := mw.CreatePart(h)
		if err != nil {
			return nil, fmt.Errorf("create image part: %w", err)
		}
		if _, err := part.Write(image.Data); err != nil {
			return nil, fmt.Errorf("write image part: %w", err)
		}
	}

	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/api/schools", &body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, r.readError(resp)
	}

	// The created record is informational; an unparseable body is not a failure.
	var created model.School
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, nil
	}
	return &created, nil
}

// ImageURL returns the public URL of an uploaded school image, or "" when
// the school has none.
func (r *SchoolRepository) ImageURL(filename string) string {
	if filename == "" {
		return ""
	}
	return r.baseURL + "/uploads/" + url.PathEscape(filename)
}

func (r *SchoolRepository) readError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return apiErr
	}

	var eb errorBody
	if json.Unmarshal(raw, &eb) == nil {
		// StrictPolicy strips tags but entity-encodes text; templates escape again.
		apiErr.Message = strings.TrimSpace(html.UnescapeString(r.policy.Sanitize(eb.Error)))
	}
	return apiErr
}
