package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/school-directory/internal/config"
	"github.com/stemsi/school-directory/internal/model"
	"github.com/stemsi/school-directory/internal/response"
	"github.com/stemsi/school-directory/internal/service"
	"github.com/stemsi/school-directory/internal/validator"
)

// multipartOverhead is the allowance for text fields and part headers on
// top of the image size limit.
const multipartOverhead = 1 << 20

// addSchoolView is the data for add_school.html.
type addSchoolView struct {
	Title       string
	Description string
	Form        model.SchoolForm
	Errors      map[string]string
	Alert       *service.Alert
	MaxUploadMB int64
}

// schoolListView is the data for the school_list.html fragment.
type schoolListView struct {
	Schools []service.SchoolCard
	Error   string
}

// SchoolHandler serves the add-school form and the school list.
type SchoolHandler struct {
	schoolService *service.SchoolService
	mediaService  *service.MediaService
	maxBody       int64
	maxUploadMB   int64
	log           zerolog.Logger
}

// NewSchoolHandler creates a new SchoolHandler.
func NewSchoolHandler(
	schoolService *service.SchoolService,
	mediaService *service.MediaService,
	cfg *config.Config,
	log zerolog.Logger,
) *SchoolHandler {
	return &SchoolHandler{
		schoolService: schoolService,
		mediaService:  mediaService,
		maxBody:       cfg.MaxUploadBytes + multipartOverhead,
		maxUploadMB:   cfg.MaxUploadBytes / (1024 * 1024),
		log:           log.With().Str("component", "school_handler").Logger(),
	}
}

// AddSchoolPage godoc
// GET /addSchool
// Renders an empty add-school form.
func (h *SchoolHandler) AddSchoolPage(c *gin.Context) {
	c.HTML(http.StatusOK, "add_school.html", h.formView(model.SchoolForm{}))
}

// AddSchool godoc
// POST /addSchool
// Validates the form, forwards it to the schools API and re-renders the
// form with the outcome. Invalid input never reaches the API.
func (h *SchoolHandler) AddSchool(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBody)

	var form model.SchoolForm
	fields, err := validator.BindForm(c, &form)
	if err != nil {
		view := h.formView(form)
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			view.Errors = map[string]string{service.FieldImage: response.GetMessage(response.ErrFileTooLarge)}
			c.HTML(http.StatusRequestEntityTooLarge, "add_school.html", view)
			return
		}
		h.log.Warn().Err(err).Str("request_id", response.RequestID(c)).Msg("unreadable add-school form")
		view.Alert = &service.Alert{Type: service.AlertError, Message: service.MsgInvalidInput}
		c.HTML(http.StatusBadRequest, "add_school.html", view)
		return
	}

	image, imageErr := h.readImage(c)
	if imageErr != "" {
		if fields == nil {
			fields = make(map[string]string)
		}
		fields[service.FieldImage] = imageErr
	}

	if len(fields) > 0 {
		view := h.formView(form)
		view.Errors = fields
		c.HTML(http.StatusUnprocessableEntity, "add_school.html", view)
		return
	}

	res := h.schoolService.Submit(c.Request.Context(), &form, image)

	view := h.formView(form)
	if res.Reset {
		view.Form = model.SchoolForm{}
	}
	view.Alert = res.Alert
	view.Errors = res.FieldErrors
	c.HTML(res.Status, "add_school.html", view)
}

// readImage returns the validated image, nil when none was attached, or a
// user-facing message when the attachment is rejected.
func (h *SchoolHandler) readImage(c *gin.Context) (*model.ImageUpload, string) {
	header, err := c.FormFile(service.FieldImage)
	if err != nil {
		// No file part, or a url-encoded submission.
		return nil, ""
	}

	image, err := h.mediaService.PrepareImage(header)
	switch {
	case err == nil:
		return image, ""
	case errors.Is(err, service.ErrFileTooLarge):
		return nil, response.GetMessage(response.ErrFileTooLarge)
	case errors.Is(err, service.ErrUnsupportedFileType):
		return nil, response.GetMessage(response.ErrUnsupportedFile)
	default:
		h.log.Error().Err(err).Str("request_id", response.RequestID(c)).Msg("failed to read image upload")
		return nil, response.GetMessage(response.ErrInternal)
	}
}

func (h *SchoolHandler) formView(form model.SchoolForm) addSchoolView {
	return addSchoolView{
		Title:       "Add School",
		Description: "Add a new school to the database",
		Form:        form,
		MaxUploadMB: h.maxUploadMB,
	}
}

// ShowSchoolsPage godoc
// GET /showSchools
// Renders the list page in its loading state; HTMX then fetches the list.
func (h *SchoolHandler) ShowSchoolsPage(c *gin.Context) {
	c.HTML(http.StatusOK, "show_schools.html", pageView{
		Title:       "Schools List",
		Description: "Browse all schools in our database",
	})
}

// SchoolList godoc
// GET /showSchools/list
// Renders the error, empty or populated list fragment. Always 200 so HTMX
// swaps every state in.
func (h *SchoolHandler) SchoolList(c *gin.Context) {
	cards, err := h.schoolService.List(c.Request.Context())

	view := schoolListView{Schools: cards}
	if err != nil {
		view.Error = service.MsgLoadFailed
	}

	c.HTML(http.StatusOK, "school_list.html", view)
}
