package httpserver

import (
	"net/http"
	"time"

	"dutyfree/internal/domain"
	"dutyfree/internal/logging"
	cartsvc "dutyfree/internal/service/cart"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPingPeriod = 30 * time.Second
)

func newUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     func(*http.Request) bool { return true },
	}
}

func (h *handlers) cartFor(c *gin.Context) cartsvc.Store {
	return h.deps.CartSvc.For(identityFrom(c), guestIDFrom(c))
}

func (h *handlers) writeCart(c *gin.Context, status int) {
	store := h.cartFor(c)
	lines, err := store.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(status, gin.H{"items": lines, "count": domain.CountItems(lines)})
}

func (h *handlers) getCart(c *gin.Context) {
	h.writeCart(c, http.StatusOK)
}

func (h *handlers) cartCount(c *gin.Context) {
	n, err := h.cartFor(c).Count(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": n})
}

type addCartItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func (h *handlers) addCartItem(c *gin.Context) {
	var req addCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}
	ctx := c.Request.Context()
	snap, err := h.deps.ProductSvc.Snapshot(ctx, req.ProductID)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.cartFor(c).Add(ctx, snap, req.Quantity); err != nil {
		respondError(c, err)
		return
	}
	h.writeCart(c, http.StatusCreated)
}

type updateCartItemRequest struct {
	Quantity *int `json:"quantity"`
}

func (h *handlers) updateCartItem(c *gin.Context) {
	var req updateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Quantity == nil {
		badRequest(c, "quantity required")
		return
	}
	if err := h.cartFor(c).UpdateQuantity(c.Request.Context(), c.Param("id"), *req.Quantity); err != nil {
		respondError(c, err)
		return
	}
	h.writeCart(c, http.StatusOK)
}

func (h *handlers) removeCartItem(c *gin.Context) {
	if err := h.cartFor(c).Remove(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	h.writeCart(c, http.StatusOK)
}

func (h *handlers) clearCart(c *gin.Context) {
	if err := h.cartFor(c).Clear(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// cartEvents streams the caller's cart count over a websocket. The current
// count is sent first, then one message per change.
func (h *handlers) cartEvents(c *gin.Context) {
	if h.deps.CartEvents == nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "cart events disabled"})
		return
	}
	id, guestID := identityFrom(c), guestIDFrom(c)
	owner := cartsvc.Owner(id, guestID)
	initial, err := h.deps.CartSvc.For(id, guestID).Count(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logging.FromGin(c).Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	updates, cancel := h.deps.CartEvents.Subscribe(owner)
	defer cancel()

	// Reads only detect the client going away.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	send := func(count int) error {
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		return conn.WriteJSON(gin.H{"type": "cart_changed", "count": count})
	}
	if err := send(initial); err != nil {
		return
	}

	ping := time.NewTicker(wsPingPeriod)
	defer ping.Stop()
	for {
		select {
		case ev, ok := <-updates:
			if !ok {
				return
			}
			if err := send(ev.Count); err != nil {
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return
			}
		case <-closed:
			return
		case <-c.Request.Context().Done():
			return
		}
	}
}
