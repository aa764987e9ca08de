// Package httpapi exposes the server's HTTP/JSON surface.
package httpapi

import (
	"github.com/gin-gonic/gin"

	"secureshare/internal/logging"
	"secureshare/internal/rbac"
	"secureshare/internal/server/services"
)

type Server struct {
	auth   *services.AuthService
	files  *services.FileService
	shares *services.ShareService
	log    logging.Logger
}

func NewServer(auth *services.AuthService, files *services.FileService, shares *services.ShareService, log logging.Logger) *Server {
	return &Server{auth: auth, files: files, shares: shares, log: log}
}

// Router builds the gin engine with all routes attached.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	api := r.Group("/api")

	// public surface
	api.POST("/register", s.handleRegister)
	api.POST("/login", s.handleLogin)
	api.POST("/verify", s.handleVerify)
	api.GET("/shares/:token", s.handleResolveShare)

	// session required
	authed := api.Group("")
	authed.Use(s.requireAuth())
	authed.POST("/logout", s.handleLogout)

	files := authed.Group("/files")
	files.GET("", s.requirePermission(rbac.PermFileDownload, rbac.PermManageFiles), s.handleListFiles)
	files.POST("", s.requirePermission(rbac.PermFileUpload), s.handleUpload)
	files.GET("/:id", s.requirePermission(rbac.PermFileDownload, rbac.PermManageFiles), s.handleDownload)
	files.DELETE("/:id", s.handleDeleteFile)

	authed.POST("/shares", s.requirePermission(rbac.PermFileShare), s.handleCreateShare)

	authed.GET("/users", s.requirePermission(rbac.PermManageUsers), s.handleListUsers)

	admin := authed.Group("/admin")
	admin.Use(s.requirePermission(rbac.PermManageUsers))
	admin.DELETE("/users/:id", s.handleDeleteUser)

	return r
}
