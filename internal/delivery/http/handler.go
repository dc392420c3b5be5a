package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/agrihope/backend/internal/domain"
	"github.com/agrihope/backend/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Assistant is the pipeline the handler delegates to
type Assistant interface {
	HandleQuery(ctx context.Context, request *domain.AssistantRequest) (*domain.AssistantResponse, error)
	SelfTest(ctx context.Context) *domain.SelfTestResult
}

// ProductCatalog serves the market page listing
type ProductCatalog interface {
	Filter(filter domain.ProductFilter) []domain.Product
	FindByID(id string) (domain.Product, bool)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	assistant Assistant
	catalog   ProductCatalog
	logger    zerolog.Logger
}

// NewHandler creates a new HTTP handler. A nil assistant or catalog makes the
// matching endpoints answer 503.
func NewHandler(assistant Assistant, catalog ProductCatalog, logger zerolog.Logger) *Handler {
	return &Handler{
		assistant: assistant,
		catalog:   catalog,
		logger:    logger,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "agrihope-backend",
		"version": "1.0.0",
	})
}

// QueryAssistant handles chat messages from the assistant widget
func (h *Handler) QueryAssistant(c *gin.Context) {
	if h.assistant == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Assistant service not configured",
		})
		return
	}

	var req domain.AssistantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	resp, err := h.assistant.HandleQuery(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyMessage) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Message is required",
			})
			return
		}

		requestLogger(c, h.logger).Error().Err(err).Msg("assistant query failed")
		c.JSON(http.StatusOK, apologyPayload())
		return
	}

	c.JSON(http.StatusOK, resp)
}

// SelfTest runs the canned assistant query against static data
func (h *Handler) SelfTest(c *gin.Context) {
	if h.assistant == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Assistant service not configured",
		})
		return
	}

	result := h.assistant.SelfTest(c.Request.Context())
	status := http.StatusOK
	if result.Status != "success" {
		status = http.StatusInternalServerError
	}
	c.JSON(status, result)
}

// ListProducts returns catalog products filtered by category, organic and featured
func (h *Handler) ListProducts(c *gin.Context) {
	if h.catalog == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Product catalog not configured",
		})
		return
	}

	filter := domain.ProductFilter{Category: c.Query("category")}

	var err error
	if filter.Organic, err = optionalBool(c, "organic"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if filter.Featured, err = optionalBool(c, "featured"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	products := h.catalog.Filter(filter)
	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"count":    len(products),
	})
}

// GetProduct returns a single catalog product
func (h *Handler) GetProduct(c *gin.Context) {
	if h.catalog == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Product catalog not configured",
		})
		return
	}

	product, ok := h.catalog.FindByID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Product not found",
		})
		return
	}
	c.JSON(http.StatusOK, product)
}

// optionalBool parses a tri-state query flag
func optionalBool(c *gin.Context, name string) (*bool, error) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be true or false", domain.ErrInvalidRequest, name)
	}
	return &v, nil
}

// apologyPayload is the assistant answer used when the pipeline itself fails
func apologyPayload() *domain.AssistantResponse {
	return &domain.AssistantResponse{
		Response:  usecase.ApologyResponse,
		ModelUsed: usecase.FallbackModel,
		Products:  []domain.Product{},
		QueryType: domain.QueryTypeGeneral,
	}
}
