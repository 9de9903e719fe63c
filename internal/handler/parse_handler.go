package handler

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"

	"labparse/internal/domain"
	"labparse/internal/export"
	"labparse/internal/logging"
	"labparse/internal/service"
)

// Export formats accepted by ParseExport.
const (
	ExportCSV  = "csv"
	ExportXLSX = "xlsx"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ParseHandler handles document parsing endpoints.
type ParseHandler struct {
	parseService    service.ParseService
	maxUploadBytes  int64
	reviewThreshold float64
	log             logging.Logger
}

// NewParseHandler creates a new ParseHandler.
func NewParseHandler(parseService service.ParseService, maxUploadBytes int64, reviewThreshold float64, log logging.Logger) *ParseHandler {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &ParseHandler{
		parseService:    parseService,
		maxUploadBytes:  maxUploadBytes,
		reviewThreshold: reviewThreshold,
		log:             log.Named("parse_handler"),
	}
}

// Parse handles POST /api/v1/parse
// @Summary Parse a lab report
// @Description Upload a PDF or text lab report and receive the extracted markers
// @Tags parse
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Lab report (PDF or TXT)"
// @Param adapter formData string false "Force a specific adapter"
// @Success 200 {object} APIResponse{data=domain.ParseResult}
// @Failure 400 {object} APIResponse "Missing file or unknown adapter"
// @Failure 413 {object} APIResponse "File too large"
// @Router /parse [post]
func (h *ParseHandler) Parse(c *gin.Context) {
	input, ok := h.readUpload(c)
	if !ok {
		return
	}
	res, err := h.parseService.Parse(c.Request.Context(), input)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}
	RespondOK(c, res)
}

// ParseExport handles POST /api/v1/parse/export?format=csv|xlsx
// @Summary Parse a lab report into a review sheet
// @Tags parse
// @Accept multipart/form-data
// @Produce text/csv
// @Param file formData file true "Lab report (PDF or TXT)"
// @Param format query string false "csv (default) or xlsx"
// @Router /parse/export [post]
func (h *ParseHandler) ParseExport(c *gin.Context) {
	format := c.DefaultQuery("format", ExportCSV)
	if format != ExportCSV && format != ExportXLSX {
		RespondError(c, http.StatusBadRequest, "INVALID_FORMAT", "format must be csv or xlsx")
		return
	}
	input, ok := h.readUpload(c)
	if !ok {
		return
	}
	res, err := h.parseService.Parse(c.Request.Context(), input)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}
	docs := []export.Document{{Name: input.Filename, Result: res}}
	base := input.Filename[:len(input.Filename)-len(filepath.Ext(input.Filename))]
	filename := export.BuildFilename(base, format, time.Now())

	if format == ExportXLSX {
		data, err := export.XLSX(docs, h.reviewThreshold)
		if err != nil {
			HandleError(c, h.log, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
		c.Data(http.StatusOK, xlsxContentType, data)
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Status(http.StatusOK)
	_, _ = c.Writer.Write(export.BOM)
	w := export.NewWriter(c.Writer, h.reviewThreshold)
	if err := w.WriteHeader(); err != nil {
		h.log.Error("http.export.write_failed", logging.Err(err))
		return
	}
	if err := w.WriteDocuments(docs); err != nil {
		h.log.Error("http.export.write_failed", logging.Err(err))
		return
	}
	w.Flush()
	if err := w.Error(); err != nil {
		h.log.Error("http.export.flush_failed", logging.Err(err))
	}
}

// Formats handles GET /api/v1/formats
// @Summary List supported report formats
// @Tags parse
// @Produce json
// @Success 200 {object} APIResponse{data=[]service.FormatInfo}
// @Router /formats [get]
func (h *ParseHandler) Formats(c *gin.Context) {
	RespondOK(c, h.parseService.Formats())
}

func (h *ParseHandler) readUpload(c *gin.Context) (service.ParseInput, bool) {
	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+1<<20)
	}
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			HandleError(c, h.log, domain.ErrFileTooLarge)
			return service.ParseInput{}, false
		}
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return service.ParseInput{}, false
	}
	defer func() { _ = file.Close() }()

	if h.maxUploadBytes > 0 && header.Size > h.maxUploadBytes {
		HandleError(c, h.log, domain.ErrFileTooLarge)
		return service.ParseInput{}, false
	}
	data, err := io.ReadAll(file)
	if err != nil {
		HandleError(c, h.log, err)
		return service.ParseInput{}, false
	}
	if len(data) == 0 {
		HandleError(c, h.log, domain.ErrEmptyText)
		return service.ParseInput{}, false
	}

	// Magic-byte sniffing; the client's declared content type is not trusted.
	detected, _, _ := mime.ParseMediaType(http.DetectContentType(data))
	if _, ok := domain.AllowedContentTypes[detected]; !ok {
		h.log.Debug("http.upload_rejected",
			logging.String("filename", header.Filename),
			logging.String("detected_type", detected),
		)
		HandleError(c, h.log, domain.ErrUnsupportedFileType)
		return service.ParseInput{}, false
	}
	return service.ParseInput{
		Filename: filepath.Base(header.Filename),
		Data:     data,
		Adapter:  c.PostForm("adapter"),
	}, true
}
