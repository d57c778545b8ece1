package httpserver

import (
	"github.com/labstack/echo/v4"

	"github.com/avdeenko/bookshelf/internal/handlers"
	authmw "github.com/avdeenko/bookshelf/internal/middleware/auth"
)

type Deps struct {
	Auth    *handlers.AuthHandler
	Authors *handlers.AuthorHandler
	Books   *handlers.BookHandler
	Guard   *authmw.Guard
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	auth := e.Group("/auth")

	auth.POST("/registration", d.Auth.Register)
	auth.POST("/login", d.Auth.Login)
	auth.POST("/logout/access", d.Auth.LogoutAccess, d.Guard.RequireAccess)
	auth.POST("/logout/refresh", d.Auth.LogoutRefresh, d.Guard.RequireRefresh)
	auth.POST("/token/refresh", d.Auth.RefreshToken, d.Guard.RequireRefresh)

	users := auth.Group("/users", d.Guard.AdminOnly)

	users.GET("", d.Auth.ListUsers)
	users.GET("/:id", d.Auth.GetUser)
	users.DELETE("/:id", d.Auth.DeleteUser)

	v1 := e.Group("/api/v1")

	authors := v1.Group("/authors")

	authors.GET("", d.Authors.List)
	authors.POST("", d.Authors.Create, d.Guard.RequireAccess)
	authors.GET("/:id", d.Authors.Get)
	authors.PATCH("/:id", d.Authors.Patch, d.Guard.RequireAccess)
	authors.DELETE("/:id", d.Authors.Delete, d.Guard.RequireAccess)

	books := v1.Group("/books")

	books.GET("", d.Books.List)
	books.POST("", d.Books.Create, d.Guard.RequireAccess)
	books.GET("/:id", d.Books.Get)
	books.PATCH("/:id", d.Books.Patch, d.Guard.RequireAccess)
	books.DELETE("/:id", d.Books.Delete, d.Guard.RequireAccess)
}
