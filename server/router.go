package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/photolog-app/photolog/server/api"
	"github.com/photolog-app/photolog/server/middlewares"
	"github.com/photolog-app/photolog/utils/flag"
	gintrace "gopkg.in/DataDog/dd-trace-go.v1/contrib/gin-gonic/gin"
)

// NewRouter wires every route onto a gin engine. useAuth disables the JWT
// middleware for local development and tests.
func NewRouter(a *api.API, useAuth bool) *gin.Engine {
	router := gin.Default()
	router.Use(cors.Default())
	router.Use(gintrace.Middleware(flag.ServiceName))

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// Endpoints reachable without a token.
	router.POST("/auth/signup", a.SignUp)
	router.POST("/auth/signin", a.SignIn)
	router.POST("/auth/signout", a.SignOut)
	router.POST("/deeplink", a.CaptureDeepLink)

	authed := router.Group("/")
	if useAuth {
		authed.Use(middlewares.JWT())
	}

	authed.GET("/me", a.Me)

	authed.GET("/photos", a.ListPhotos)
	authed.POST("/photos", a.UploadPhoto)
	authed.GET("/photos/:id", a.GetPhoto)
	authed.POST("/photos/:id/view", a.ViewPhoto)
	authed.PATCH("/photos/:id/description", a.UpdateDesc)
	authed.PATCH("/photos/:id/year", a.UpdateYear)
	authed.PUT("/photos/:id/tags", a.UpdateTags)
	authed.POST("/photos/:id/like", a.ToggleLike)
	authed.DELETE("/photos/:id", a.DeletePhoto)

	authed.GET("/photos/:id/comments", a.ListComments)
	authed.POST("/photos/:id/comments", a.CreateComment)
	authed.DELETE("/comments/:id", a.DeleteComment)
	authed.POST("/comments/:id/like", a.ToggleCommentLike)

	authed.GET("/albums", a.ListAlbums)
	authed.POST("/albums", a.CreateAlbum)
	authed.PATCH("/albums/:id", a.RenameAlbum)
	authed.DELETE("/albums/:id", a.DeleteAlbum)
	authed.POST("/albums/:id/photos/:photoId", a.ToggleAlbumPhoto)
	authed.GET("/albums/:id/photos", a.AlbumPhotos)

	authed.GET("/members", a.ListMembers)
	authed.GET("/members/:id/photos", a.MemberPhotos)
	authed.PATCH("/members/:id/role", a.ToggleRole)

	authed.GET("/rankings", a.Rankings)
	authed.GET("/rankings/me", a.MyRanking)
	authed.GET("/rankings/summary", a.RankingsSummary)
	authed.POST("/admin/resync", a.Resync)

	authed.POST("/deeplink/consume", a.ConsumeDeepLink)
	authed.GET("/realtime", a.Realtime)

	return router
}
