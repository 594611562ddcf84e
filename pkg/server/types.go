package server

import (
	"time"

	"github.com/smith-xyz/golang-component-map/pkg/models"
	"github.com/smith-xyz/golang-component-map/pkg/output"
)

// Error codes returned in ErrorResponse.Code.
const (
	CodeInvalidQuery     = "invalid_query"
	CodeNodeNotFound     = "node_not_found"
	CodeGraphUnavailable = "graph_unavailable"
	CodeRefreshFailed    = "refresh_failed"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	// Error is the error message.
	Error string `json:"error"`

	// Code is the machine readable error code.
	Code string `json:"code,omitempty"`
}

// HealthResponse is returned by /healthz.
type HealthResponse struct {
	Status  string    `json:"status"`
	Version string    `json:"version"`
	Ready   bool      `json:"ready"`
	BuiltAt time.Time `json:"built_at,omitzero"`
}

// RootsResponse lists the entry points of the graph for one view.
type RootsResponse struct {
	TagFilter models.Tag     `json:"tag_filter"`
	Reverse   bool           `json:"reverse"`
	Roots     []*models.Node `json:"roots"`
}

// NeighborsResponse lists the dependencies (or consumers when reversed) of one node.
type NeighborsResponse struct {
	ID        models.TypeID       `json:"id"`
	Reverse   bool                `json:"reverse"`
	Neighbors []output.LinkReport `json:"neighbors"`
}

// IssuesResponse lists the detected problems.
type IssuesResponse struct {
	Count  int            `json:"count"`
	Issues []models.Issue `json:"issues"`
}

// RefreshResponse summarizes a rebuilt graph.
type RefreshResponse struct {
	Nodes      int       `json:"nodes"`
	Edges      int       `json:"edges"`
	Issues     int       `json:"issues"`
	BuiltAt    time.Time `json:"built_at"`
	DurationMs int64     `json:"duration_ms"`
}
