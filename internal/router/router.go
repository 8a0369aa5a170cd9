package router

import (
	"time"

	"newsdesk/internal/auth"
	"newsdesk/internal/config"
	"newsdesk/internal/handlers"
	"newsdesk/internal/middleware"
	"newsdesk/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const sessionName = "newsdesk_session"

// New 组装中间件和全部 API 路由
func New(cfg *config.Config, conn *gorm.DB, portal *services.Portal, tokens *auth.TokenService) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestLogger(), gin.Recovery())

	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
			ExposeHeaders:    []string{middleware.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.TokenTTL.Seconds()),
		HttpOnly: true,
	})
	r.Use(sessions.Sessions(sessionName, store))
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.LoadUser(tokens, portal))

	RegisterRoutes(r, conn, portal, tokens)
	return r
}

func RegisterRoutes(r *gin.Engine, conn *gorm.DB, portal *services.Portal, tokens *auth.TokenService) {
	// Handlers
	articleHandler := handlers.NewArticleHandler(portal)
	engagementHandler := handlers.NewEngagementHandler(portal)
	taxonomyHandler := handlers.NewTaxonomyHandler(portal)
	userHandler := handlers.NewUserHandler(portal, tokens)
	searchHandler := handlers.NewSearchHandler(portal)

	api := r.Group("/api")

	// 公共路由 (Public Routes)
	api.GET("/health", handlers.Health(conn))                      // 健康检查
	api.POST("/auth/signup", userHandler.Signup)                   // 注册
	api.POST("/auth/login", userHandler.Login)                     // 登录
	api.POST("/auth/logout", userHandler.Logout)                   // 退出登录
	api.GET("/users/:ref", userHandler.Profile)                    // 用户主页
	api.GET("/articles", articleHandler.List)                      // 文章列表
	api.GET("/articles/:ref", articleHandler.Detail)               // 文章详情
	api.GET("/articles/:ref/comments", engagementHandler.Comments) // 评论树
	api.GET("/categories", taxonomyHandler.ListCategories)         // 分类列表
	api.GET("/categories/:ref", taxonomyHandler.Category)          // 分类详情
	api.GET("/tags", taxonomyHandler.ListTags)                     // 标签列表
	api.GET("/tags/:ref", taxonomyHandler.Tag)                     // 标签详情
	api.GET("/search", searchHandler.Search)                       // 搜索

	// 受保护路由 (Protected Routes)
	authorized := api.Group("")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.GET("/auth/me", userHandler.Me)          // 当前用户
		authorized.PATCH("/users/me", userHandler.UpdateMe) // 修改个人资料
		authorized.PATCH("/users/:ref", userHandler.Update) // 编辑管理用户

		authorized.POST("/articles", articleHandler.Create)                      // 发布文章
		authorized.PATCH("/articles/:ref", articleHandler.Update)                // 编辑文章
		authorized.DELETE("/articles/:ref", articleHandler.Delete)               // 删除文章
		authorized.POST("/articles/:ref/like", engagementHandler.Like)           // 点赞
		authorized.POST("/articles/:ref/bookmark", engagementHandler.Bookmark)   // 收藏
		authorized.POST("/articles/:ref/comments", engagementHandler.AddComment) // 发表评论
		authorized.DELETE("/comments/:ref", engagementHandler.DeleteComment)     // 删除评论
		authorized.GET("/bookmarks", engagementHandler.Bookmarks)                // 我的收藏

		authorized.POST("/categories", taxonomyHandler.CreateCategory)        // 创建分类
		authorized.PATCH("/categories/:ref", taxonomyHandler.UpdateCategory)  // 修改分类
		authorized.DELETE("/categories/:ref", taxonomyHandler.DeleteCategory) // 删除分类
		authorized.POST("/tags", taxonomyHandler.CreateTag)                   // 创建标签
	}
}
