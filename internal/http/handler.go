package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"vinscan-service/internal/domain/vehicle"
	"vinscan-service/internal/imaging"
	"vinscan-service/internal/service"
)

// User-facing boundary messages. Raw transport and model errors never
// reach the client.
const (
	msgMethodNotAllowed = "Méthode non autorisée"
	msgMissingAPIKey    = "Clé API Gemini manquante. Configurez API_KEY."
	msgServerProblem    = "Le serveur a rencontré un problème. Vérifiez la connexion."
	msgUnreadableImage  = "Image illisible ou format non supporté."
)

type Handler struct {
	scanService      *service.ScanService
	inventoryService *service.InventoryService
	log              zerolog.Logger
}

func NewHandler(
	scanService *service.ScanService,
	inventoryService *service.InventoryService,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		scanService:      scanService,
		inventoryService: inventoryService,
		log:              log,
	}
}

func (h *Handler) Register(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		api.POST("/scan", h.scan)
		api.POST("/scan/upload", h.scanUpload)

		api.GET("/history", h.searchHistory)
		api.POST("/history", h.saveRecord)
		api.DELETE("/history", h.clearHistory)
		api.DELETE("/history/:index", h.removeRecord)
		api.GET("/history/:index/share", h.shareRecord)

		// Not nested under /history: a static segment cannot share a
		// position with the :index wildcard in the route tree.
		api.GET("/export", h.exportCSV)

		api.GET("/settings", h.getSettings)
		api.PUT("/settings", h.updateSettings)
	}

	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, errorResponse(msgMethodNotAllowed))
	})
}

// scan is the recognition relay: one outbound inference call, no
// retries, stateless per request.
func (h *Handler) scan(c *gin.Context) {
	if !h.scanService.Configured() {
		c.JSON(http.StatusInternalServerError, errorResponse(msgMissingAPIKey))
		return
	}

	var req vehicle.ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	result, err := h.scanService.Extract(c.Request.Context(), req)
	if err != nil {
		h.handleScanError(c, err)
		return
	}

	// A soft failure travels in the body with a success status; it is
	// recoverable by a fresh user action, not a system fault.
	c.JSON(http.StatusOK, result)
}

// scanUpload accepts a raw photo, normalizes it server-side, then runs
// the same relay pipeline.
func (h *Handler) scanUpload(c *gin.Context) {
	if !h.scanService.Configured() {
		c.JSON(http.StatusInternalServerError, errorResponse(msgMissingAPIKey))
		return
	}

	file, _, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("image file is required"))
		return
	}
	defer file.Close()

	normalized, err := imaging.Normalize(file)
	if err != nil {
		if errors.Is(err, imaging.ErrDecode) {
			c.JSON(http.StatusBadRequest, errorResponse(msgUnreadableImage))
			return
		}
		h.log.Error().Err(err).Msg("image normalization failed")
		c.JSON(http.StatusInternalServerError, errorResponse(msgServerProblem))
		return
	}

	req := vehicle.ScanRequest{
		Image:        normalized.Base64,
		Mode:         c.PostForm("mode"),
		BusinessType: c.PostForm("businessType"),
		MimeType:     normalized.MimeType,
	}
	result, err := h.scanService.Extract(c.Request.Context(), req)
	if err != nil {
		h.handleScanError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) searchHistory(c *gin.Context) {
	term := strings.TrimSpace(c.Query("q"))
	c.JSON(http.StatusOK, successResponse(h.inventoryService.Search(term)))
}

type saveRecordRequest struct {
	vehicle.Draft
	Location string `json:"location"`
	Remarks  string `json:"remarks"`
}

func (h *Handler) saveRecord(c *gin.Context) {
	var req saveRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	rec, err := h.inventoryService.Save(req.Draft, req.Location, req.Remarks)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(rec))
}

func (h *Handler) removeRecord(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid index"))
		return
	}
	if err := h.inventoryService.Remove(index); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) clearHistory(c *gin.Context) {
	h.inventoryService.Clear()
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) exportCSV(c *gin.Context) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+h.inventoryService.ExportFilename()+`"`)
	if err := h.inventoryService.ExportCSV(c.Writer); err != nil {
		h.log.Error().Err(err).Msg("csv export failed")
	}
}

func (h *Handler) shareRecord(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid index"))
		return
	}
	text, link, err := h.inventoryService.ShareText(index)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(gin.H{"text": text, "link": link}))
}

func (h *Handler) getSettings(c *gin.Context) {
	c.JSON(http.StatusOK, successResponse(h.inventoryService.Settings()))
}

func (h *Handler) updateSettings(c *gin.Context) {
	var settings vehicle.Settings
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}
	if err := h.inventoryService.UpdateSettings(settings); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(h.inventoryService.Settings()))
}

func (h *Handler) handleScanError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
	default:
		// Missing credential and inference faults alike surface as the
		// generic technical message; the cause stays in the logs.
		h.log.Error().Err(err).Msg("scan failed")
		c.JSON(http.StatusInternalServerError, errorResponse(msgServerProblem))
	}
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse(err.Error()))
	default:
		h.log.Error().Err(err).Msg("handler error")
		c.JSON(http.StatusInternalServerError, errorResponse("internal error"))
	}
}

func successResponse(data interface{}) gin.H {
	return gin.H{
		"data": data,
	}
}

func errorResponse(message string) gin.H {
	return gin.H{
		"error": message,
	}
}
