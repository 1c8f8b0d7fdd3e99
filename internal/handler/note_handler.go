package handler

import (
	"net/http"
	"strconv"

	"smsnotes/internal/middleware"
	"smsnotes/internal/service"

	"github.com/gin-gonic/gin"
)

// NoteHandler handles note requests
type NoteHandler struct {
	service service.NoteService
}

// NewNoteHandler creates a new NoteHandler
func NewNoteHandler(s service.NoteService) *NoteHandler {
	return &NoteHandler{service: s}
}

func (h *NoteHandler) Create(c *gin.Context) {
	// Text deliberately has no binding tag: the store owns the empty-text
	// rule and reports it as a validation error.
	var req struct {
		Text string `json:"text"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	token := c.GetString(middleware.AuthTokenKey)
	note, err := h.service.CreateNote(c.Request.Context(), token, req.Text)
	if err != nil {
		writeError(c, err, "Failed to create note")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Note created",
		"note":    note,
	})
}

func (h *NoteHandler) List(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "0"))
	if err != nil || page < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid page parameter"})
		return
	}

	token := c.GetString(middleware.AuthTokenKey)
	notes, hasMore, err := h.service.ListNotes(c.Request.Context(), token, page)
	if err != nil {
		writeError(c, err, "Failed to list notes")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"notes":    notes,
		"has_more": hasMore,
	})
}

func (h *NoteHandler) Latest(c *gin.Context) {
	token := c.GetString(middleware.AuthTokenKey)
	note, err := h.service.LatestNote(c.Request.Context(), token)
	if err != nil {
		writeError(c, err, "Failed to fetch latest note")
		return
	}

	c.JSON(http.StatusOK, gin.H{"note": note})
}

// RegisterNoteRoutes registers note routes, all behind the auth middleware
func (h *NoteHandler) RegisterNoteRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	noteGroup := rg.Group("/notes")
	noteGroup.Use(authMW)
	{
		noteGroup.POST("", h.Create)
		noteGroup.GET("", h.List)
		noteGroup.GET("/latest", h.Latest)
	}
}
