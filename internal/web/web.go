// Package web is the thin HTTP surface: landing and lobby pages, room
// creation and validation, the question API, and QR join codes. All game
// state flows through the realtime gateway, not these handlers.
package web

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"

	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/jacdylngab/quizwire/internal/room"
	"github.com/jacdylngab/quizwire/internal/store"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Server holds the dependencies of the HTTP handlers.
type Server struct {
	log   *logrus.Logger
	store store.GameRecordStore
	codes *room.CodeGenerator
	tmpl  *template.Template
}

// NewServer parses the embedded templates and returns a ready Server.
func NewServer(logger *logrus.Logger, st store.GameRecordStore, codes *room.CodeGenerator) (*Server, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Server{
		log:   logger,
		store: st,
		codes: codes,
		tmpl:  tmpl,
	}, nil
}

// Register attaches all page and API routes to the router. The websocket
// handler is mounted by the caller alongside these.
func (s *Server) Register(router *httprouter.Router) {
	router.GET("/", s.home)
	router.GET("/new/", s.newGame)
	router.GET("/join/", s.joinQuery)
	router.GET("/join/:game_id/", s.lobby)
	router.GET("/api/questions/", s.apiQuestions)
	router.GET("/qr/:game_id", s.qr)
}

// home renders the landing page. An optional "message" query parameter is
// shown inline, e.g. after a failed join.
func (s *Server) home(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	s.render(w, "main.html", map[string]interface{}{
		"Message": r.URL.Query().Get("message"),
	})
}

// newGame creates a unique room code, persists its record, and redirects
// straight into the lobby. A concurrent request can claim a generated code
// before it is persisted, so that collision draws a fresh code rather than
// failing the request.
func (s *Server) newGame(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var code string
	for attempt := 0; ; attempt++ {
		var err error
		code, err = s.codes.Generate(r.Context())
		if err != nil {
			s.log.Errorf("room code generation failed: %v", err)
			http.Error(w, "could not create game", http.StatusInternalServerError)
			return
		}
		err = s.store.CreateGame(r.Context(), code)
		if err == nil {
			break
		}
		if errors.Is(err, store.ErrCodeExists) && attempt < 3 {
			continue
		}
		s.log.WithField("game", code).Errorf("failed to persist game record: %v", err)
		http.Error(w, "could not create game", http.StatusInternalServerError)
		return
	}
	s.log.WithField("game", code).Info("game created")
	http.Redirect(w, r, "/join/"+code+"/", http.StatusSeeOther)
}

// joinQuery validates a user-entered room code and either redirects to the
// lobby or bounces back to the landing page with an error message.
func (s *Server) joinQuery(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	code := r.URL.Query().Get("game_id")
	exists := false
	if code != "" {
		var err error
		exists, err = s.store.GameExists(r.Context(), code)
		if err != nil {
			s.log.WithField("game", code).Errorf("record lookup failed: %v", err)
			http.Error(w, "could not validate game", http.StatusInternalServerError)
			return
		}
	}
	if !exists {
		msg := url.QueryEscape("The game ID you entered does not exist!")
		http.Redirect(w, r, "/?message="+msg, http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/join/"+code+"/", http.StatusSeeOther)
}

// lobby renders the lobby/game page for a room code.
func (s *Server) lobby(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	s.render(w, "lobby.html", map[string]interface{}{
		"GameID": p.ByName("game_id"),
	})
}

// apiQuestions returns the full question bank as JSON.
func (s *Server) apiQuestions(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	qs, err := s.store.Questions(r.Context())
	if err != nil {
		s.log.Errorf("question bank fetch failed: %v", err)
		http.Error(w, "could not load questions", http.StatusInternalServerError)
		return
	}
	if qs == nil {
		qs = []store.Question{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(qs)
}

// qr serves a PNG QR code for the room's join URL, so a host can put the
// lobby on a shared screen and let players scan in.
func (s *Server) qr(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	code := p.ByName("game_id")
	exists, err := s.store.GameExists(r.Context(), code)
	if err != nil {
		s.log.WithField("game", code).Errorf("record lookup failed: %v", err)
		http.Error(w, "could not validate game", http.StatusInternalServerError)
		return
	}
	if !exists {
		http.NotFound(w, r)
		return
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	joinURL := fmt.Sprintf("%s://%s/join/%s/", scheme, r.Host, code)

	png, err := qrcode.Encode(joinURL, qrcode.Medium, 256)
	if err != nil {
		s.log.WithField("game", code).Errorf("qr encode failed: %v", err)
		http.Error(w, "could not generate qr code", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

func (s *Server) render(w http.ResponseWriter, name string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, name, data); err != nil {
		s.log.Errorf("template %s: %v", name, err)
	}
}
