package httpserver

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"dutyfree/internal/domain"
	"dutyfree/internal/export"
	"dutyfree/internal/service/collection"
	productsvc "dutyfree/internal/service/product"
	"github.com/gin-gonic/gin"
)

// registerCollection mounts list/add/remove/move/toggle for one ordered
// collection. payloadBased collections take name and image_url instead of a product id.
func registerCollection(g *gin.RouterGroup, editor CollectionEditor, payloadBased bool) {
	g.GET("", func(c *gin.Context) {
		items, err := editor.List(c.Request.Context(), "")
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, items)
	})
	g.POST("", func(c *gin.Context) {
		var req addItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid body")
			return
		}
		in := collection.AddInput{Inactive: req.IsActive != nil && !*req.IsActive}
		if payloadBased {
			in.Payload = map[string]interface{}{"name": req.Name, "image_url": req.ImageURL}
		} else {
			in.RefID = req.ProductID
		}
		item, err := editor.Add(c.Request.Context(), in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, item)
	})
	g.DELETE("/:id", func(c *gin.Context) {
		if err := editor.Remove(c.Request.Context(), c.Param("id")); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})
	g.POST("/:id/move", moveItem(editor))
	g.POST("/:id/toggle", toggleItem(editor))
}

type addItemRequest struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	ImageURL  string `json:"image_url"`
	IsActive  *bool  `json:"is_active"`
}

type moveRequest struct {
	Direction string `json:"direction"`
	// Group narrows the move to one partition, e.g. a product category.
	Group string `json:"group"`
}

// moveItem swaps the item with its neighbour and responds with the re-read list.
func moveItem(editor CollectionEditor) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req moveRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid body")
			return
		}
		dir, err := collection.ParseDirection(req.Direction)
		if err != nil {
			respondError(c, err)
			return
		}
		items, err := editor.Move(c.Request.Context(), c.Param("id"), dir, req.Group)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, items)
	}
}

type toggleRequest struct {
	Current *bool `json:"current"`
}

func toggleItem(editor CollectionEditor) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req toggleRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Current == nil {
			badRequest(c, "current required")
			return
		}
		if err := editor.ToggleActive(c.Request.Context(), c.Param("id"), *req.Current); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "active": !*req.Current})
	}
}

func (h *handlers) cmsListProducts(c *gin.Context) {
	products, err := h.deps.ProductSvc.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *handlers) createProduct(c *gin.Context) {
	var in productsvc.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid body")
		return
	}
	p, err := h.deps.ProductSvc.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *handlers) updateProduct(c *gin.Context) {
	var in productsvc.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid body")
		return
	}
	p, err := h.deps.ProductSvc.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *handlers) deleteProduct(c *gin.Context) {
	if err := h.deps.ProductSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type productImageRequest struct {
	ImageURL  string `json:"image_url"`
	IsPrimary bool   `json:"is_primary"`
}

func (h *handlers) addProductImage(c *gin.Context) {
	var req productImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}
	img, err := h.deps.ProductSvc.AddImage(c.Request.Context(), c.Param("id"), req.ImageURL, req.IsPrimary)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, img)
}

func (h *handlers) deleteProductImage(c *gin.Context) {
	if err := h.deps.ProductSvc.DeleteImage(c.Request.Context(), c.Param("imageId")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func writeSpreadsheet(c *gin.Context, name string, render func(*bytes.Buffer) error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		respondError(c, err)
		return
	}
	filename := fmt.Sprintf("%s-%s.xlsx", name, time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, export.ContentType, buf.Bytes())
}

func (h *handlers) exportProducts(c *gin.Context) {
	products, err := h.deps.ProductSvc.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	writeSpreadsheet(c, "products", func(buf *bytes.Buffer) error { return export.Products(buf, products) })
}

func (h *handlers) cmsListOrders(c *gin.Context) {
	orders, err := h.deps.OrderSvc.AdminList(c.Request.Context(), c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *handlers) exportOrders(c *gin.Context) {
	orders, err := h.deps.OrderSvc.AdminList(c.Request.Context(), c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	writeSpreadsheet(c, "orders", func(buf *bytes.Buffer) error { return export.Orders(buf, orders) })
}

type orderStatusRequest struct {
	Status string `json:"status"`
}

func (h *handlers) updateOrderStatus(c *gin.Context) {
	var req orderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}
	if err := h.deps.OrderSvc.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "status": strings.ToLower(strings.TrimSpace(req.Status))})
}

type orderTotalRequest struct {
	// Total is kept raw so non-numeric input gets the validation message.
	Total interface{} `json:"total"`
}

func (h *handlers) updateOrderTotal(c *gin.Context) {
	var req orderTotalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}
	raw := ""
	switch v := req.Total.(type) {
	case string:
		raw = v
	case float64:
		raw = strconv.FormatFloat(v, 'f', -1, 64)
	}
	total, err := h.deps.OrderSvc.UpdateTotal(c.Request.Context(), c.Param("id"), raw)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "total": total})
}

func (h *handlers) saveContent(c *gin.Context) {
	var in domain.WebsiteContent
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid body")
		return
	}
	saved, err := h.deps.ContentSvc.Save(c.Request.Context(), c.Param("section"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

func (h *handlers) deleteContent(c *gin.Context) {
	if err := h.deps.ContentSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) createHeroSection(c *gin.Context) {
	block, err := h.deps.ContentSvc.CreateHeroSection(c.Request.Context(), c.Param("section"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, block)
}

func (h *handlers) fileSvc(c *gin.Context) (fileService, bool) {
	if h.deps.FileSvc == nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "file storage not configured"})
		return nil, false
	}
	return h.deps.FileSvc, true
}

func (h *handlers) listFiles(c *gin.Context) {
	svc, ok := h.fileSvc(c)
	if !ok {
		return
	}
	files, err := svc.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, files)
}

func (h *handlers) uploadFile(c *gin.Context) {
	svc, ok := h.fileSvc(c)
	if !ok {
		return
	}
	header, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "file required")
		return
	}
	f, err := header.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer f.Close()

	stored, err := svc.Upload(c.Request.Context(), header.Filename, header.Header.Get("Content-Type"), f, header.Size)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, stored)
}

func (h *handlers) deleteFile(c *gin.Context) {
	svc, ok := h.fileSvc(c)
	if !ok {
		return
	}
	if err := svc.Delete(c.Request.Context(), c.Param("name")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
