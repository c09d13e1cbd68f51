package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/deskfolio/deskfolio/internal/contact"
	"github.com/deskfolio/deskfolio/internal/content"
	"github.com/deskfolio/deskfolio/internal/gallery"
	"github.com/deskfolio/deskfolio/internal/tts"
)

const (
	maxFormBytes = 64 << 10
	maxTTSBytes  = 16 << 10
)

// Handler returns the HTTP API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /api/gallery", s.handleGallery)
	mux.HandleFunc("GET /api/portfolio-files", s.handlePosts)
	mux.HandleFunc("GET /api/portfolio-files/{id}", s.handlePost)
	mux.HandleFunc("POST /api/tts", s.handleTTS)
	mux.HandleFunc("POST /contact", s.handleContact)
	if root := s.gallery.Root(); root != "" {
		mux.Handle("GET /img/", http.StripPrefix("/img/", noListing(http.FileServer(http.Dir(root)))))
	}
	return s.withRequestLog(mux)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// noListing hides directory indexes of the image tree.
func noListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"posts":  len(s.library.Posts()),
		"images": s.gallery.Len(),
	})
}

func (s *Server) handleGallery(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("pageSize"))

	writeJSON(w, http.StatusOK, s.gallery.Query(gallery.Query{
		Page:     page,
		PageSize: pageSize,
		Folder:   q.Get("folder"),
	}))
}

func (s *Server) handlePosts(w http.ResponseWriter, _ *http.Request) {
	posts := s.library.Posts()
	out := make([]content.PostMeta, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.PostMeta())
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	post, err := s.library.Post(id)
	if errors.Is(err, content.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Post not found: "+id)
		return
	}
	if err != nil {
		s.requestLogger(r).Error("failed to load post", "id", id, "err", err)
		writeError(w, http.StatusInternalServerError, "Failed to load post")
		return
	}
	writeJSON(w, http.StatusOK, post.PostMeta())
}

type ttsRequest struct {
	Text string `json:"text"`
}

// handleTTS relays the upstream NDJSON stream line by line, flushing after
// each so the client can start playback early.
func (s *Server) handleTTS(w http.ResponseWriter, r *http.Request) {
	logger := s.requestLogger(r)
	if s.tts == nil {
		writeError(w, http.StatusServiceUnavailable, "Text to speech is not configured")
		return
	}

	var req ttsRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxTTSBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	stream, err := s.tts.Stream(r.Context(), req.Text)
	if errors.Is(err, tts.ErrEmptyText) {
		writeError(w, http.StatusBadRequest, "Text is required")
		return
	}
	if err != nil {
		logger.Error("tts request failed", "err", err)
		writeError(w, http.StatusBadGateway, "Speech synthesis failed")
		return
	}
	defer stream.Close()

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)

	rc := http.NewResponseController(w)
	flush := func() { _ = rc.Flush() }
	timings := r.URL.Query().Get("timings") == "1"
	if err := tts.Copy(w, stream, flush, timings); err != nil {
		logger.Warn("tts stream interrupted", "err", err)
	}
}

type contactSuccess struct {
	Success bool `json:"success"`
}

type contactFailure struct {
	Error      string `json:"error"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Message    string `json:"message"`
	Newsletter bool   `json:"newsletter"`
}

// handleContact accepts the contact form. Failures echo the submitted
// fields back so the form can be refilled.
func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	var err error
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		err = r.ParseMultipartForm(maxFormBytes)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		writeJSON(w, http.StatusBadRequest, contactFailure{Error: contact.MsgMissingFields})
		return
	}

	sub := contact.FromForm(r.PostForm)
	err = s.contact.Submit(r.Context(), sub)
	if err == nil {
		writeJSON(w, http.StatusOK, contactSuccess{Success: true})
		return
	}

	status := http.StatusInternalServerError
	if errors.Is(err, contact.ErrInvalid) {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, contactFailure{
		Error:      contact.PublicMessage(err),
		Name:       sub.Name,
		Email:      sub.Email,
		Message:    sub.Message,
		Newsletter: sub.Newsletter,
	})
}
