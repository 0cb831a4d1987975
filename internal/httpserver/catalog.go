package httpserver

import (
	"net/http"

	"dutyfree/internal/domain"
	"github.com/gin-gonic/gin"
)

func (h *handlers) listProducts(c *gin.Context) {
	products, err := h.deps.ProductSvc.List(c.Request.Context(), c.Query("category"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *handlers) getProduct(c *gin.Context) {
	p, err := h.deps.ProductSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *handlers) search(c *gin.Context) {
	products, err := h.deps.ProductSvc.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"query": c.Query("q"), "results": products, "total": len(products)})
}

func (h *handlers) listCategories(c *gin.Context) {
	categories, err := h.deps.CategorySvc.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

// getCategory resolves a slug and returns the category with its visible products.
func (h *handlers) getCategory(c *gin.Context) {
	ctx := c.Request.Context()
	category, err := h.deps.CategorySvc.Resolve(ctx, c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	products, err := h.deps.ProductSvc.List(ctx, category.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": category, "products": products})
}

func (h *handlers) featured(c *gin.Context) {
	entries, err := h.deps.ProductSvc.Featured(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (h *handlers) dutyFree(c *gin.Context) {
	entries, err := h.deps.ProductSvc.DutyFree(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (h *handlers) brandLogos(c *gin.Context) {
	items, err := h.deps.Collections[CollectionBrandLogos].Active(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	logos := make([]domain.BrandLogo, 0, len(items))
	for _, it := range items {
		name, _ := it.Payload["name"].(string)
		imageURL, _ := it.Payload["image_url"].(string)
		logos = append(logos, domain.BrandLogo{
			ID:           it.ID,
			Name:         name,
			ImageURL:     imageURL,
			DisplayOrder: it.DisplayOrder,
			IsActive:     it.Active,
			CreatedAt:    it.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, logos)
}

func (h *handlers) listContent(c *gin.Context) {
	blocks, err := h.deps.ContentSvc.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, blocks)
}

func (h *handlers) hero(c *gin.Context) {
	hero, err := h.deps.ContentSvc.Hero(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, hero)
}
