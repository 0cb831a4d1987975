package httpserver

import (
	"net/http"

	ordersvc "dutyfree/internal/service/order"
	"github.com/gin-gonic/gin"
)

func (h *handlers) checkout(c *gin.Context) {
	var in ordersvc.CheckoutInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid body")
		return
	}
	o, err := h.deps.OrderSvc.Place(c.Request.Context(), identityFrom(c), guestIDFrom(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, o)
}

func (h *handlers) trackOrder(c *gin.Context) {
	o, err := h.deps.OrderSvc.Track(c.Request.Context(), c.Param("id"), c.Query("email"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *handlers) myOrders(c *gin.Context) {
	orders, err := h.deps.OrderSvc.ListMine(c.Request.Context(), identityFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *handlers) cancelOrder(c *gin.Context) {
	o, err := h.deps.OrderSvc.Cancel(c.Request.Context(), identityFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *handlers) listWishlist(c *gin.Context) {
	items, err := h.deps.WishlistSvc.List(c.Request.Context(), identityFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

type wishlistRequest struct {
	ProductID string `json:"product_id"`
}

func (h *handlers) addWishlist(c *gin.Context) {
	var req wishlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}
	if err := h.deps.WishlistSvc.Add(c.Request.Context(), identityFrom(c), req.ProductID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) removeWishlist(c *gin.Context) {
	if err := h.deps.WishlistSvc.Remove(c.Request.Context(), identityFrom(c), c.Param("productId")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
