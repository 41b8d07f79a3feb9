package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"

	"fincalc/internal/auth"
	"fincalc/internal/calculator"
	postfixnotation "fincalc/pkg/postfix_notation"

	"github.com/go-chi/chi/v5"
)

// session is one remote keypad. Presses on the same session are serialised.
type session struct {
	id    int32
	mu    sync.Mutex
	state *calculator.State
}

func (s *Server) newKeypad(w http.ResponseWriter, r *http.Request) {
	var req KeypadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "invalid data", http.StatusUnprocessableEntity)
		return
	}

	opts := []calculator.Option{calculator.WithAngle(postfixnotation.ParseAngleMode(req.Angle))}
	if req.Scientific {
		opts = append(opts, calculator.WithScientific())
	}
	if login, ok := auth.LoginFrom(r.Context()); ok {
		opts = append(opts, calculator.WithRecorder(calculator.RecorderFunc(func(e calculator.Entry) {
			s.record(context.Background(), login, e)
		})))
	}

	sess := &session{
		id:    atomic.AddInt32(&s.counter, 1),
		state: calculator.New(opts...),
	}
	view := s.keypadView(sess)
	s.sessions.Set(sess.id, sess)
	s.log.Debug("keypad session created", "id", sess.id, "scientific", req.Scientific)

	writeJSON(w, http.StatusCreated, view)
}

func (s *Server) getKeypad(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	writeJSON(w, http.StatusOK, s.keypadView(sess))
}

func (s *Server) pressKey(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	var req KeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Key == "" {
		http.Error(w, "invalid data", http.StatusUnprocessableEntity)
		return
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	accepted := sess.state.Press(req.Key)
	writeJSON(w, http.StatusOK, PressResponse{Accepted: accepted, KeypadResponse: s.keypadView(sess)})
}

func (s *Server) session(r *http.Request) (*session, error) {
	param := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(param, 10, 32)
	if err != nil {
		return nil, errors.New("invalid keypad id: " + param)
	}
	v, ok := s.sessions.Get(int32(id))
	if !ok {
		return nil, errors.New("no keypad session with such id found: " + param)
	}
	return v.(*session), nil
}

// keypadView must be called with sess.mu held.
func (s *Server) keypadView(sess *session) KeypadResponse {
	st := sess.state
	return KeypadResponse{
		Id:         sess.id,
		Mode:       st.Mode().String(),
		Scientific: st.Scientific(),
		Angle:      st.Angle().String(),
		Memory:     st.Memory(),
		Display:    st.View(s.formatter),
	}
}

type KeypadRequest struct {
	Scientific bool   `json:"scientific"`
	Angle      string `json:"angle"`
}

type KeyRequest struct {
	Key string `json:"key"`
}

type KeypadResponse struct {
	Id         int32              `json:"id"`
	Mode       string             `json:"mode"`
	Scientific bool               `json:"scientific"`
	Angle      string             `json:"angle"`
	Memory     float64            `json:"memory"`
	Display    calculator.Display `json:"display"`
}

type PressResponse struct {
	Accepted bool `json:"accepted"`
	KeypadResponse
}
