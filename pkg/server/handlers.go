package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/smith-xyz/golang-component-map/pkg/graph"
	"github.com/smith-xyz/golang-component-map/pkg/models"
	"github.com/smith-xyz/golang-component-map/pkg/output"
	"github.com/smith-xyz/golang-component-map/pkg/version"
)

// Handlers serves graph queries from a store.
type Handlers struct {
	logger *slog.Logger
	store  *graph.Store
	view   View
}

// NewHandlers creates a new handler set.
func NewHandlers(logger *slog.Logger, store *graph.Store, view View) *Handlers {
	return &Handlers{
		logger: logger,
		store:  store,
		view:   view,
	}
}

// RegisterRoutes registers the graph endpoints on rg (typically /api/v1).
//
//	GET  /graph                  full report
//	GET  /roots?reverse=&tag=    entry points
//	GET  /nodes/:id/neighbors    dependencies, or consumers with reverse=true
//	GET  /issues                 detected problems
//	POST /refresh                rebuild the graph
func RegisterRoutes(rg *gin.RouterGroup, h *Handlers) {
	rg.GET("/graph", h.HandleGraph)
	rg.GET("/roots", h.HandleRoots)
	rg.GET("/nodes/:id/neighbors", h.HandleNeighbors)
	rg.GET("/issues", h.HandleIssues)
	rg.POST("/refresh", h.HandleRefresh)
}

// HandleGraph returns the full report for the requested view.
func (h *Handlers) HandleGraph(c *gin.Context) {
	view, ok := h.parseView(c)
	if !ok {
		return
	}
	g, ok := h.current(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, output.BuildReport(g, view.Filter, view.Reverse))
}

// HandleRoots returns the roots for the requested view.
func (h *Handlers) HandleRoots(c *gin.Context) {
	view, ok := h.parseView(c)
	if !ok {
		return
	}
	g, ok := h.current(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, RootsResponse{
		TagFilter: view.Filter,
		Reverse:   view.Reverse,
		Roots:     graph.Roots(g, view.Reverse, view.Filter),
	})
}

// HandleNeighbors returns the links of one node.
func (h *Handlers) HandleNeighbors(c *gin.Context) {
	view, ok := h.parseView(c)
	if !ok {
		return
	}
	g, ok := h.current(c)
	if !ok {
		return
	}

	id := models.TypeID(c.Param("id"))
	links, err := graph.Neighbors(g, id, view.Reverse)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, graph.ErrNodeNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, ErrorResponse{
			Error: err.Error(),
			Code:  CodeNodeNotFound,
		})
		return
	}

	c.JSON(http.StatusOK, NeighborsResponse{
		ID:        id,
		Reverse:   view.Reverse,
		Neighbors: output.LinkReports(links),
	})
}

// HandleIssues returns the detected problems in report order.
func (h *Handlers) HandleIssues(c *gin.Context) {
	g, ok := h.current(c)
	if !ok {
		return
	}
	issues := append([]models.Issue{}, g.Issues...)
	c.JSON(http.StatusOK, IssuesResponse{
		Count:  len(issues),
		Issues: issues,
	})
}

// HandleRefresh rebuilds the graph. A failed rebuild keeps the previous graph.
func (h *Handlers) HandleRefresh(c *gin.Context) {
	start := time.Now()
	g, err := h.store.Refresh(c.Request.Context())
	if err != nil {
		h.logger.Warn("Graph refresh failed", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: fmt.Sprintf("refresh failed: %v", err),
			Code:  CodeRefreshFailed,
		})
		return
	}

	c.JSON(http.StatusOK, RefreshResponse{
		Nodes:      len(g.Nodes),
		Edges:      g.EdgeCount(),
		Issues:     len(g.Issues),
		BuiltAt:    h.store.BuiltAt(),
		DurationMs: time.Since(start).Milliseconds(),
	})
}

// HandleHealth reports liveness and whether a graph has been published.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:  "healthy",
		Version: version.GetVersion(),
		Ready:   h.store.Peek() != nil,
		BuiltAt: h.store.BuiltAt(),
	})
}

func (h *Handlers) current(c *gin.Context) (*models.Graph, bool) {
	g, err := h.store.Current(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error: fmt.Sprintf("graph unavailable: %v", err),
			Code:  CodeGraphUnavailable,
		})
		return nil, false
	}
	return g, true
}

// parseView reads the tag and reverse query parameters over the defaults.
func (h *Handlers) parseView(c *gin.Context) (View, bool) {
	view := h.view

	if raw, ok := c.GetQuery("tag"); ok {
		tag, err := models.ParseTag(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error: fmt.Sprintf("invalid tag: %v", err),
				Code:  CodeInvalidQuery,
			})
			return View{}, false
		}
		view.Filter = tag
	}

	if raw := c.Query("reverse"); raw != "" {
		reverse, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error: fmt.Sprintf("invalid reverse value %q", raw),
				Code:  CodeInvalidQuery,
			})
			return View{}, false
		}
		view.Reverse = reverse
	}
	return view, true
}
