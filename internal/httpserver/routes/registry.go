package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/linkdeck/linkdeck/internal/httpserver/deps"
)

// Registrar mounts one route group on the router.
type Registrar func(r chi.Router, d deps.Deps)

var registry []Registrar

// Register queues a registrar; each route file registers itself from
// init so server.New only has to call RegisterAll.
func Register(reg Registrar) {
	registry = append(registry, reg)
}

// RegisterAll mounts every registered route group.
func RegisterAll(r chi.Router, d deps.Deps) {
	for _, reg := range registry {
		reg(r, d)
	}
}
