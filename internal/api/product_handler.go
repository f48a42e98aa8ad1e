package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nikolayk812/ecomall/internal/dto"
)

type ProductHandler struct {
	catalog Catalog
}

func NewProductHandler(catalog Catalog) *ProductHandler {
	return &ProductHandler{catalog: catalog}
}

func (h *ProductHandler) ListProducts(c *gin.Context) {
	products, err := h.catalog.ListProducts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProducts(products))
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req dto.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "body", err.Error())
		return
	}

	product, err := req.ToDomain(uuid.Nil, h.catalog.Currency())
	if err != nil {
		respondError(c, err)
		return
	}

	created, err := h.catalog.CreateProduct(c.Request.Context(), product)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToProduct(created))
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	productID, ok := pathID(c)
	if !ok {
		return
	}

	var req dto.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "body", err.Error())
		return
	}

	product, err := req.ToDomain(productID, h.catalog.Currency())
	if err != nil {
		respondError(c, err)
		return
	}

	updated, err := h.catalog.UpdateProduct(c.Request.Context(), product)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProduct(updated))
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	productID, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.catalog.DeleteProduct(c.Request.Context(), productID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}

func (h *ProductHandler) Seed(c *gin.Context) {
	products, err := h.catalog.Seed(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Sample products added successfully",
		"products": dto.ToProducts(products),
	})
}

func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "id", "id is not a valid uuid")
		return uuid.Nil, false
	}
	return id, true
}
