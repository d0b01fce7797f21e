package handler

import (
	"embed"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/haint/paperlens/types"
)

//go:embed index.html
var webFS embed.FS

type WebHandler struct{}

func NewWebHandler() *WebHandler {
	return &WebHandler{}
}

// ServeIndex serves the single-page upload UI.
func (h *WebHandler) ServeIndex(c *gin.Context) {
	page, err := webFS.ReadFile("index.html")
	if err != nil {
		c.String(http.StatusInternalServerError, "page unavailable")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}

// HandleHealth is a liveness probe.
func (h *WebHandler) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, types.DataResponse{
		Status:  true,
		Message: "ok",
	})
}
