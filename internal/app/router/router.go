package router

import (
	"github.com/gin-gonic/gin"

	posthandler "stock_bot/internal/feature/post/transport/handler"
	"stock_bot/internal/platform/http/handler"
	jwtmw "stock_bot/internal/platform/jwt"
)

func NewRouter(health *handler.HealthHandler, posts *posthandler.PostHandler, jwtSecret string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// 認証不要
	// 導通確認用
	r.GET("/healthz", health.Health)
	r.HEAD("/healthz", health.Health)

	// 認証必須のルート
	// jwtmw.AuthRequired() ミドルウェアを適用
	// → リクエストヘッダーに JWT が必要になる
	v1 := r.Group("/v1")
	v1.Use(jwtmw.AuthRequired(jwtSecret))
	{
		v1.GET("/posts", posts.ListPosts)
	}

	return r
}
