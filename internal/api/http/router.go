package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/blog-service/internal/api/http/handlers"
	"github.com/spec-kit/blog-service/internal/auth"
	"github.com/spec-kit/blog-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Articles       *handlers.ArticlesHandler
	Comments       *handlers.CommentsHandler
	Categories     *handlers.CategoriesHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/user/register", cfg.Users.Register)
	app.Post("/user/login", cfg.Users.Login)

	// Public reads resolve identity when a token is presented so liked and
	// collected flags can be filled in, but never reject the request.
	app.Get("/article/home", cfg.AuthMiddleware.OptionalHandle, cfg.Articles.Home)
	app.Get("/article/public/:id", cfg.AuthMiddleware.OptionalHandle, cfg.Articles.PublicDetail)
	app.Get("/category/list", cfg.AuthMiddleware.OptionalHandle, cfg.Categories.List)
	app.Get("/comment/article/:id", cfg.AuthMiddleware.OptionalHandle, cfg.Comments.ListByArticle)

	user := app.Group("/user", cfg.AuthMiddleware.Handle)
	user.Get("/info", cfg.Users.UserInfo)
	user.Put("/profile", cfg.Users.UpdateProfile)
	user.Patch("/avatar", cfg.Users.UpdateAvatar)
	user.Patch("/password", cfg.Users.ChangePassword)
	user.Post("/logout", cfg.Users.Logout)
	user.Post("/follow/:id", cfg.Users.ToggleFollow)
	user.Get("/following", cfg.Users.Following)
	user.Get("/followers", cfg.Users.Followers)
	user.Get("/collections", cfg.Users.Collections)

	article := app.Group("/article", cfg.AuthMiddleware.Handle)
	article.Post("", auth.RequireRole(domain.RoleAdmin, domain.RoleAuthor), cfg.Articles.Create)
	article.Put("/:id", auth.RequireRole(domain.RoleAdmin, domain.RoleAuthor), cfg.Articles.Update)
	article.Delete("/:id", auth.RequireRole(domain.RoleAdmin, domain.RoleAuthor), cfg.Articles.Delete)
	article.Get("/list", cfg.Articles.List)
	article.Get("/detail/:id", cfg.Articles.Detail)
	article.Post("/like/:id", cfg.Articles.ToggleLike)
	article.Post("/collect/:id", cfg.Articles.ToggleCollect)

	category := app.Group("/category", cfg.AuthMiddleware.Handle)
	category.Post("", auth.RequireRole(domain.RoleAdmin, domain.RoleAuthor), cfg.Categories.Create)
	category.Put("/:id", auth.RequireRole(domain.RoleAdmin, domain.RoleAuthor), cfg.Categories.Update)
	category.Delete("/:id", auth.RequireRole(domain.RoleAdmin, domain.RoleAuthor), cfg.Categories.Delete)

	comment := app.Group("/comment", cfg.AuthMiddleware.Handle)
	comment.Post("", cfg.Comments.Add)
	comment.Delete("/:id", cfg.Comments.Delete)
	comment.Post("/like/:id", cfg.Comments.ToggleLike)
}
