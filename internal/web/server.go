package web

import (
	"encoding/json"
	"log"
	"net/http"

	"school-meal/internal/app"
	"school-meal/internal/meal"

	"github.com/gorilla/mux"
)

// Server wires HTTP endpoints to the meal query controller.
type Server struct {
	controller *app.Controller
	page       *Page
	router     *mux.Router
}

// NewServer creates the server. page must be the renderer the controller
// was built with.
func NewServer(controller *app.Controller, page *Page) *Server {
	s := &Server{
		controller: controller,
		page:       page,
		router:     mux.NewRouter(),
	}
	s.router.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	s.router.HandleFunc("/search", s.handleSearch).Methods(http.MethodPost)
	s.router.HandleFunc("/api/state", s.handleState).Methods(http.MethodGet)
	s.router.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods(http.MethodGet)
	return s
}

// Router exposes the router so other surfaces can mount their handlers.
func (s *Server) Router() *mux.Router {
	return s.router
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	// each page load may start the default query for today
	s.controller.Mount()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.page.Execute(w, s.controller.LastDate()); err != nil {
		log.Printf("Error rendering page: %v", err)
	}
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	s.controller.SubmitAsync(r.PostForm.Get("date"))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

type stateResponse struct {
	Kind  meal.Kind  `json:"kind"`
	Date  string     `json:"date"`
	State meal.State `json:"state,omitempty"`
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	resp := stateResponse{Date: s.controller.LastDate()}
	if st := s.controller.State(); st != nil {
		resp.Kind = st.Kind()
		resp.State = st
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("Error encoding state: %v", err)
	}
}
