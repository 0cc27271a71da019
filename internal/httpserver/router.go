package httpserver

import (
	"github.com/labstack/echo/v4"

	"github.com/beautyshop/backend/internal/handlers"
	"github.com/beautyshop/backend/internal/handlers/cart"
	"github.com/beautyshop/backend/internal/handlers/order"
	authmw "github.com/beautyshop/backend/internal/middleware/auth"
	"github.com/beautyshop/backend/internal/models"
)

type Deps struct {
	Auth            *authmw.Middleware
	AuthHandler     *handlers.AuthHandler
	UserHandler     *handlers.UserHandler
	ProductHandler  *handlers.ProductHandler
	CategoryHandler *handlers.CategoryHandler
	CartHandler     *cart.CartHandler
	OrderHandler    *order.OrderHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	manageOnly := d.Auth.RequireRoles(models.RoleAdmin, models.RoleOrderManager)
	adminOnly := d.Auth.RequireRoles(models.RoleAdmin)

	auth := e.Group("/auth")
	auth.POST("/register", d.AuthHandler.Register)
	auth.POST("/login", d.AuthHandler.Login)
	auth.POST("/logout", d.AuthHandler.Logout, d.Auth.RequireAuth)

	products := e.Group("/products")
	products.GET("", d.ProductHandler.GetProducts)
	products.GET("/search", d.ProductHandler.SearchProducts)
	products.GET("/:id", d.ProductHandler.GetProduct)
	products.POST("", d.ProductHandler.CreateProduct, d.Auth.RequireAuth, manageOnly)
	products.PUT("/:id", d.ProductHandler.UpdateProduct, d.Auth.RequireAuth, manageOnly)
	products.DELETE("/:id", d.ProductHandler.DeleteProduct, d.Auth.RequireAuth, manageOnly)

	categories := e.Group("/categories")
	categories.GET("", d.CategoryHandler.ListCategories)
	categories.POST("", d.CategoryHandler.CreateCategory, d.Auth.RequireAuth, manageOnly)
	categories.PUT("/:id", d.CategoryHandler.UpdateCategory, d.Auth.RequireAuth, manageOnly)
	categories.DELETE("/:id", d.CategoryHandler.DeleteCategory, d.Auth.RequireAuth, manageOnly)

	cartGroup := e.Group("/cart", d.Auth.RequireAuth)
	cartGroup.GET("", d.CartHandler.GetCart)
	cartGroup.POST("", d.CartHandler.AddToCart)
	cartGroup.PUT("/:id", d.CartHandler.UpdateItem)
	cartGroup.DELETE("/clear", d.CartHandler.ClearCart)
	cartGroup.DELETE("/:id", d.CartHandler.RemoveItem)

	orders := e.Group("/orders", d.Auth.RequireAuth)
	orders.POST("/checkout", d.OrderHandler.Checkout)
	orders.GET("", d.OrderHandler.ListOrders)
	orders.GET("/:id", d.OrderHandler.GetOrder)
	orders.GET("/:id/invoice", d.OrderHandler.GetInvoice)
	orders.PATCH("/:id/status", d.OrderHandler.UpdateStatus, adminOnly)

	users := e.Group("/users", d.Auth.RequireAuth)
	users.GET("/me", d.UserHandler.Me)
	users.PATCH("/me/password", d.UserHandler.ChangePassword)
	users.GET("", d.UserHandler.ListUsers, adminOnly)
	users.DELETE("/:id", d.UserHandler.DeleteUser, adminOnly)
	users.PATCH("/:id/block", d.UserHandler.ToggleBlock, adminOnly)
	users.POST("/register/order_manager", d.UserHandler.RegisterOrderManager, adminOnly)
}
