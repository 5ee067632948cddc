package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/docchat-io/docchat-be/service"
	"github.com/docchat-io/docchat-be/types"
)

type UploadHandler struct {
	ingestService *service.IngestService
}

func NewUploadHandler(ingestService *service.IngestService) *UploadHandler {
	return &UploadHandler{ingestService: ingestService}
}

// Upload receives a PDF as multipart form field "pdf" together with a
// "country" form value and runs the full ingestion pipeline.
func (h *UploadHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("pdf")
	if err != nil {
		sendError(c, fmt.Errorf("%w: missing pdf file", types.ErrInvalidUpload))
		return
	}
	if !strings.HasSuffix(strings.ToLower(file.Filename), ".pdf") {
		sendError(c, fmt.Errorf("%w: only pdf files are accepted", types.ErrInvalidUpload))
		return
	}
	country := strings.TrimSpace(c.PostForm("country"))
	if country == "" {
		sendError(c, fmt.Errorf("%w: country is required", types.ErrInvalidUpload))
		return
	}

	res, err := h.ingestService.IngestUpload(c.Request.Context(), types.UploadRequest{
		Filename: file.Filename,
		Country:  country,
	}, file)
	if err != nil {
		sendError(c, err)
		return
	}
	sendSuccess(c, http.StatusCreated, res)
}
