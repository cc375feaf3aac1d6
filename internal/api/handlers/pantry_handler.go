// internal/api/handlers/pantry_handler.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/mercadofacil/backend-go/internal/cart"
	"github.com/mercadofacil/backend-go/internal/service"
	"github.com/mercadofacil/backend-go/internal/store"
)

// PantryHandler exposes the pantry operations. The cart is transient UI
// state owned here, not by the core: one in-memory cart per server process,
// guarded because gin serves requests concurrently.
type PantryHandler struct {
	service *service.PantryService

	mu   sync.Mutex
	cart *cart.Cart
}

func NewPantryHandler(svc *service.PantryService) *PantryHandler {
	return &PantryHandler{service: svc, cart: cart.New()}
}

type registerRequest struct {
	Name         string          `json:"name" binding:"required"`
	Brand        string          `json:"brand"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	MinStock     int             `json:"min_stock"`
	InitialStock int             `json:"initial_stock"`
}

type cartEntryRequest struct {
	ProductID int64           `json:"product_id" binding:"required"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type auditRequest struct {
	Counts []auditCount `json:"counts" binding:"required"`
}

type auditCount struct {
	ProductID int64 `json:"product_id"`
	Counted   int   `json:"counted"`
}

// GET /products
func (h *PantryHandler) ListProducts(c *gin.Context) {
	products, err := h.service.Products(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

// POST /products
func (h *PantryHandler) RegisterProduct(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	p, err := h.service.Register(c.Request.Context(), service.RegisterInput{
		Name:         req.Name,
		Brand:        req.Brand,
		UnitPrice:    req.UnitPrice,
		MinStock:     req.MinStock,
		InitialStock: req.InitialStock,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// DELETE /products/:id
func (h *PantryHandler) DeleteProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /products/:id/history
func (h *PantryHandler) ProductHistory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	events, err := h.service.ProductHistory(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

// GET /suggestions
func (h *PantryHandler) GetShoppingList(c *gin.Context) {
	list, err := h.service.ShoppingList(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GET /cart
func (h *PantryHandler) GetCart(c *gin.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{
		"items": h.cart.Entries(),
		"total": h.cart.Total(),
	})
}

// PUT /cart/items
func (h *PantryHandler) PutCartEntry(c *gin.Context) {
	var req cartEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Quantity < 0 {
		errorResponse(c, http.StatusBadRequest, "quantity must not be negative")
		return
	}
	if req.UnitPrice.IsNegative() {
		errorResponse(c, http.StatusBadRequest, "unit price must not be negative")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.cart.Put(cart.Entry{ProductID: req.ProductID, Quantity: req.Quantity, UnitPrice: req.UnitPrice})
	c.JSON(http.StatusOK, gin.H{
		"items": h.cart.Entries(),
		"total": h.cart.Total(),
	})
}

// DELETE /cart/items/:id
func (h *PantryHandler) RemoveCartEntry(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.cart.Remove(id) {
		errorResponse(c, http.StatusNotFound, "no cart entry for this product")
		return
	}
	c.Status(http.StatusNoContent)
}

// DELETE /cart
func (h *PantryHandler) ClearCart(c *gin.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cart.Clear()
	c.Status(http.StatusNoContent)
}

// POST /cart/checkout
func (h *PantryHandler) Checkout(c *gin.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()

	result, err := h.service.Checkout(c.Request.Context(), h.cart)
	if err != nil {
		handleError(c, err)
		return
	}
	if result.Committed == 0 {
		c.JSON(http.StatusOK, gin.H{"status": "nothing to commit"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "committed",
		"items":  result.Committed,
		"total":  result.Total,
	})
}

// POST /audit
func (h *PantryHandler) ApplyAudit(c *gin.Context) {
	var req auditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	counts := make(map[int64]int, len(req.Counts))
	for _, ct := range req.Counts {
		counts[ct.ProductID] = ct.Counted
	}

	changed, err := h.service.ApplyAudit(c.Request.Context(), counts)
	if err != nil {
		handleError(c, err)
		return
	}
	if !changed {
		c.JSON(http.StatusOK, gin.H{"status": "no changes"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid product id")
		return 0, false
	}
	return id, true
}

func handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEmptyName), errors.Is(err, service.ErrNegativePrice):
		errorResponse(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrDuplicateName):
		errorResponse(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrProductNotFound):
		errorResponse(c, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrConnection):
		errorResponse(c, http.StatusServiceUnavailable, err.Error())
	default:
		errorResponse(c, http.StatusInternalServerError, err.Error())
	}
}

func errorResponse(c *gin.Context, statusCode int, message string) {
	log.Error().Msg(message)
	c.JSON(statusCode, gin.H{"error": message})
}
