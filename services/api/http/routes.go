package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// registerRoutes mirrors the tree inventory REST surface:
// reference data, tree CRUD and account endpoints.
func (s *Server) registerRoutes() {
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))

	// Reference data
	s.engine.GET("/cities", s.handleListCities)
	s.engine.GET("/streets/:city", s.handleListStreets)

	// Trees
	s.engine.GET("/trees", s.handleListTrees)
	s.engine.GET("/tree/:id", s.handleGetTree)
	s.engine.GET("/tree/custom/:custom_id", s.handleGetTreeByCustomID)

	mutate := s.engine.Group("/", s.requireAuth())
	{
		mutate.POST("/add_tree", s.handleAddTree)
		mutate.PATCH("/tree/:id", s.handleUpdateTree)
		mutate.DELETE("/tree/:id", s.handleDeleteTree)
	}

	// Accounts
	s.engine.POST("/register", s.handleRegister)
	s.engine.POST("/login", s.handleLogin)
	s.engine.POST("/logout", s.handleLogout)
}
