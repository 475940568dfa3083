package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/school-directory/internal/response"
)

// pageView is the data for pages that only need head metadata.
type pageView struct {
	Title       string
	Description string
}

// PageHandler serves static pages.
type PageHandler struct{}

// NewPageHandler creates a new PageHandler.
func NewPageHandler() *PageHandler {
	return &PageHandler{}
}

// Home godoc
// GET /
func (h *PageHandler) Home(c *gin.Context) {
	c.HTML(http.StatusOK, "home.html", pageView{
		Title:       "School Management System",
		Description: "Manage school information efficiently",
	})
}

// NotFound renders the 404 page for unknown routes.
func (h *PageHandler) NotFound(c *gin.Context) {
	response.Fail(c, http.StatusNotFound, response.ErrNotFound)
}
