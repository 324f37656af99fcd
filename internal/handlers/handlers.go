package handlers

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/example/ink-check/internal/auth"
	"github.com/example/ink-check/internal/usecase"
)

// MaxUploadSize caps sample uploads; typical phone photos stay well
// under this.
const MaxUploadSize = 8 << 20

// RegisterRoutes wires the HTTP handlers to the Gin router.
func RegisterRoutes(router *gin.Engine, uc *usecase.SampleUseCase, authMiddleware gin.HandlerFunc) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authed := router.Group("/", authMiddleware)
	authed.POST("/samples", submitSample(uc))
	authed.GET("/samples/:id", getSample(uc))
	authed.GET("/samples/:id/duplicates", getDuplicates(uc))
	authed.GET("/metrics", getMetrics(uc))
}

func submitSample(uc *usecase.SampleUseCase) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > MaxUploadSize {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "upload exceeds size limit"})
			return
		}

		userID, ok := auth.GetUserID(c.Request.Context())
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing user identity"})
			return
		}

		file, err := c.FormFile("image")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
			return
		}
		if file.Size > MaxUploadSize {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "upload exceeds size limit"})
			return
		}
		if contentType := file.Header.Get("Content-Type"); contentType != "" && !strings.HasPrefix(contentType, "image/") {
			c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": "only image uploads are supported"})
			return
		}

		src, err := file.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unable to open image"})
			return
		}
		defer src.Close()

		data, err := io.ReadAll(src)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read image"})
			return
		}

		result, err := uc.SubmitSample(c.Request.Context(), userID, data)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process sample"})
			return
		}

		if !result.Accepted {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"request_id": result.RequestID,
				"accepted":   false,
				"reason":     string(result.Reason),
				"message":    result.Message,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"request_id": result.RequestID,
			"accepted":   true,
			"prediction": result.Prediction,
			"label":      result.Label,
			"confidence": result.Confidence,
		})
	}
}

func getSample(uc *usecase.SampleUseCase) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.GetUserID(c.Request.Context())
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing user identity"})
			return
		}

		requestID := c.Param("id")
		log, err := uc.GetResult(c.Request.Context(), userID, requestID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "result not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"request_id": log.RequestID,
			"user_id":    log.UserID,
			"accepted":   log.Accepted,
			"reason":     log.RejectReason,
			"prediction": log.Prediction,
			"label":      log.Label,
			"confidence": log.Confidence,
			"details":    log.Details,
			"created_at": log.CreatedAt,
		})
	}
}

func getDuplicates(uc *usecase.SampleUseCase) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.GetUserID(c.Request.Context())
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing user identity"})
			return
		}

		requestID := c.Param("id")
		report, err := uc.GetDuplicateReport(c.Request.Context(), userID, requestID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "result not found"})
			return
		}

		duplicates := make([]gin.H, 0, len(report.Duplicates))
		for _, d := range report.Duplicates {
			duplicates = append(duplicates, gin.H{
				"request_id": d.RequestID,
				"accepted":   d.Accepted,
				"created_at": d.CreatedAt,
			})
		}

		c.JSON(http.StatusOK, gin.H{
			"request_id":      report.Request.RequestID,
			"sha1_hash":       report.Request.SHA1Hash,
			"duplicate_count": len(report.Duplicates),
			"duplicates":      duplicates,
		})
	}
}

func getMetrics(uc *usecase.SampleUseCase) gin.HandlerFunc {
	return func(c *gin.Context) {
		summary, err := uc.GetMetricsSummary(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to aggregate metrics"})
			return
		}
		c.JSON(http.StatusOK, summary)
	}
}
