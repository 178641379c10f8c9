// Package api exposes the HTTP entry points of the preview service: the
// platform route /api/article/{id}, the edge route <edge_path>?id=, and the
// health and metrics endpoints.
package api
