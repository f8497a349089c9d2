package server

import "github.com/gorilla/mux"

// Registrar is a common interface for all HTTP service registrars. Each
// service package wires its own routes onto the shared router.
type Registrar interface {
	Register(r *mux.Router, auth mux.MiddlewareFunc)
}
