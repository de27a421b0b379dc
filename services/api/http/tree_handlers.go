package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/02loveslollipop/arbor-inventory/services/api/db"
)

const invalidNextCheckMsg = "Invalid date format for next_check. Use YYYY-MM-DD"

// handleListCities returns the distinct cities
// GET /cities
func (s *Server) handleListCities(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	cities, err := s.store.ListCities(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, cities)
}

// handleListStreets returns the distinct addresses of a city
// GET /streets/:city
func (s *Server) handleListStreets(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	streets, err := s.store.ListStreets(ctx, c.Param("city"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, streets)
}

// handleListTrees returns trees filtered by city and partial address
// GET /trees?city=Torino&address=roma
func (s *Server) handleListTrees(c *gin.Context) {
	filter := db.TreeFilter{
		City:    strings.TrimSpace(c.Query("city")),
		Address: strings.TrimSpace(c.Query("address")),
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	trees, err := s.store.ListTrees(ctx, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, trees)
}

// handleGetTree returns one tree by server id
// GET /tree/:id
func (s *Server) handleGetTree(c *gin.Context) {
	id, ok := treeID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	tree, err := s.store.GetTree(ctx, id)
	s.respondTree(c, tree, err)
}

// handleGetTreeByCustomID returns one tree by its custom identifier
// GET /tree/custom/:custom_id
func (s *Server) handleGetTreeByCustomID(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	tree, err := s.store.GetTreeByCustomID(ctx, c.Param("custom_id"))
	s.respondTree(c, tree, err)
}

func (s *Server) respondTree(c *gin.Context, tree *db.Tree, err error) {
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	if tree == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Tree not found"})
		return
	}
	c.JSON(http.StatusOK, tree)
}

// handleAddTree creates a tree
// POST /add_tree
func (s *Server) handleAddTree(c *gin.Context) {
	var tree db.Tree
	if err := c.ShouldBindJSON(&tree); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid JSON body"})
		return
	}
	tree.ID = 0
	normalizeTree(&tree)

	if missing := missingRequired(tree); len(missing) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing required fields: " + strings.Join(missing, ", ")})
		return
	}
	if !validNextCheck(tree.NextCheck) {
		c.JSON(http.StatusBadRequest, gin.H{"message": invalidNextCheckMsg})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	s.fillCoordinates(ctx, &tree)

	id, err := s.store.CreateTree(ctx, tree)
	if errors.Is(err, db.ErrDuplicateCustomID) {
		c.JSON(http.StatusConflict, gin.H{"message": fmt.Sprintf("Tree with custom_id %s already exists", tree.CustomID)})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Tree added successfully!", "id": id})
}

// fillCoordinates geocodes "address, city" when either coordinate is unknown. Failures
// leave the tree without a map position.
func (s *Server) fillCoordinates(ctx context.Context, tree *db.Tree) {
	if s.geocoder == nil || hasPosition(*tree) || tree.Address == "" {
		return
	}
	query := tree.Address
	if tree.City != "" {
		query += ", " + tree.City
	}
	lat, lon, ok, err := s.geocoder.Geocode(ctx, query)
	if err != nil {
		s.logger.Warn("geocoding failed", zap.String("query", query), zap.Error(err))
		return
	}
	if !ok {
		s.logger.Debug("address not found by geocoder", zap.String("query", query))
		return
	}
	tree.Latitude = &lat
	tree.Longitude = &lon
}

// handleUpdateTree applies a partial update
// PATCH /tree/:id
func (s *Server) handleUpdateTree(c *gin.Context) {
	id, ok := treeID(c)
	if !ok {
		return
	}

	var patch map[string]json.RawMessage
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid JSON body"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	tree, err := s.store.GetTree(ctx, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	if tree == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Tree not found"})
		return
	}

	if err := applyPatch(tree, patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	tree.ID = id
	normalizeTree(tree)

	if missing := missingRequired(*tree); len(missing) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing required fields: " + strings.Join(missing, ", ")})
		return
	}
	if !validNextCheck(tree.NextCheck) {
		c.JSON(http.StatusBadRequest, gin.H{"message": invalidNextCheckMsg})
		return
	}

	switch err := s.store.UpdateTree(ctx, *tree); {
	case errors.Is(err, db.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Tree not found"})
	case errors.Is(err, db.ErrDuplicateCustomID):
		c.JSON(http.StatusConflict, gin.H{"message": fmt.Sprintf("Tree with custom_id %s already exists", tree.CustomID)})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
	default:
		c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Tree %d updated successfully!", id)})
	}
}

// handleDeleteTree removes a tree
// DELETE /tree/:id
func (s *Server) handleDeleteTree(c *gin.Context) {
	id, ok := treeID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	switch err := s.store.DeleteTree(ctx, id); {
	case errors.Is(err, db.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Tree not found"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
	default:
		c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Tree %d deleted successfully!", id)})
	}
}

func treeID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid tree id"})
		return 0, false
	}
	return id, true
}
