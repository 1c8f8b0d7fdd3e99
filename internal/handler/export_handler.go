package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"net/url"

	"smsnotes/internal/middleware"
	"smsnotes/internal/service"
	"smsnotes/internal/utils"

	"github.com/gin-gonic/gin"
)

// ExportHandler serves account data exports
type ExportHandler struct {
	service service.NoteService
}

// NewExportHandler creates a new ExportHandler
func NewExportHandler(s service.NoteService) *ExportHandler {
	return &ExportHandler{service: s}
}

// Export streams the authenticated account and all of its notes as a CSV
// download
func (h *ExportHandler) Export(c *gin.Context) {
	token := c.GetString(middleware.AuthTokenKey)
	user, notes, err := h.service.ExportData(c.Request.Context(), token)
	if err != nil {
		writeError(c, err, "Failed to export account data")
		return
	}

	var buf bytes.Buffer
	if err := utils.WriteAccountCSV(&buf, user, notes); err != nil {
		writeError(c, err, "Failed to generate csv export")
		return
	}

	filename := fmt.Sprintf("%s_user_data.csv", url.QueryEscape(user.Username))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}

// RegisterExportRoutes registers the export route behind the auth middleware
func (h *ExportHandler) RegisterExportRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	rg.GET("/account/export", authMW, h.Export)
}
