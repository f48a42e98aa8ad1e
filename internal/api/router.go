package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, products *ProductHandler, orders *OrderHandler, adminToken string) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.GET("/products", products.ListProducts)
		api.POST("/orders", orders.CreateOrder)
	}

	admin := api.Group("", AdminAuth(adminToken))
	{
		admin.POST("/products", products.CreateProduct)
		admin.PUT("/products/:id", products.UpdateProduct)
		admin.DELETE("/products/:id", products.DeleteProduct)
		admin.POST("/seed", products.Seed)

		admin.GET("/orders", orders.ListOrders)
		admin.GET("/orders/:id", orders.GetOrder)
		admin.PATCH("/orders/:id/status", orders.UpdateStatus)
		admin.DELETE("/orders/:id", orders.DeleteOrder)
	}
}
