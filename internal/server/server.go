package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"fincalc/internal/auth"
	"fincalc/internal/calculator"
	"fincalc/internal/storage"
	postfixnotation "fincalc/pkg/postfix_notation"

	"github.com/dustinxie/lockfree"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Config struct {
	Port              int    `json:"port"`                //если не задан - 8080
	GRPCPort          int    `json:"grpc_port"`           //0 - без gRPC
	DBPath            string `json:"db_path"`             //по-умолчанию fincalc.db
	HistoryLimit      int    `json:"history_limit"`       //сколько записей хранить на пользователя
	Locale            string `json:"locale"`              //локаль вывода, по-умолчанию en-IN
	MaxFractionDigits int    `json:"max_fraction_digits"` //знаков после точки в результате
	StaticDir         string `json:"static_dir"`          //если пустой - /static/ не отдаём
	CacheVersion      string `json:"cache_version"`
	Secret            string `json:"secret"`
	TokenTTLHours     int    `json:"token_ttl_hours"`
	LogLevel          string `json:"log_level"`
}

// Normalize fills unset fields with defaults.
func (c Config) Normalize() Config {
	if c.Port <= 0 {
		c.Port = 8080
	}
	if c.DBPath == "" {
		c.DBPath = "fincalc.db"
	}
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = storage.DefaultHistoryLimit
	}
	if c.Locale == "" {
		c.Locale = calculator.DefaultLocale
	}
	if c.MaxFractionDigits <= 0 {
		c.MaxFractionDigits = calculator.DefaultMaxFractionDigits
	}
	if c.CacheVersion == "" {
		c.CacheVersion = "v1"
	}
	if c.TokenTTLHours <= 0 {
		c.TokenTTLHours = int(auth.DefaultTokenTTL / time.Hour)
	}
	return c
}

type Server struct {
	Config    Config
	store     *storage.Storage
	auth      *auth.Authenticator
	formatter *calculator.Formatter
	log       *slog.Logger
	sessions  lockfree.HashMap //сессии кейпада по айди
	counter   int32            //считать айди сессий
}

func New(config Config, store *storage.Storage, log *slog.Logger) (*Server, error) {
	config = config.Normalize()
	if config.Secret == "" {
		return nil, errors.New("token secret is not set")
	}
	formatter, err := calculator.NewFormatter(config.Locale, config.MaxFractionDigits)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		Config:    config,
		store:     store,
		auth:      auth.New(config.Secret, time.Duration(config.TokenTTLHours)*time.Hour, store),
		formatter: formatter,
		log:       log,
		sessions:  lockfree.NewHashMap(),
	}, nil
}

// Auth exposes the authenticator so other transports share the same tokens.
func (s *Server) Auth() *auth.Authenticator {
	return s.auth
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.URLFormat)

	r.Route("/api", func(r chi.Router) {
		r.Post("/register", s.register)
		r.Post("/login", s.login)

		r.Group(func(r chi.Router) {
			r.Use(s.auth.Middleware(false))
			r.Post("/calculate", s.calculate)
			r.Post("/keypad", s.newKeypad)
			r.Get("/keypad/{id}", s.getKeypad)
			r.Post("/keypad/{id}", s.pressKey)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.auth.Middleware(true))
			r.Get("/expressions", s.getExpressions)
			r.Get("/expressions/{id}", s.getExpression)
			r.Delete("/expressions", s.clearExpressions)
			r.Post("/history", s.addHistory)
		})
	})

	r.Post("/calculate_interest", s.calculateInterest)

	if s.Config.StaticDir != "" {
		r.Handle("/static/*", s.static())
	}
	return r
}

// Run serves HTTP until ctx is cancelled and in-flight requests are done.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(s.Config.Port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Error("http server shutdown", "err", err)
		}
	}()
	s.log.Info("http server started", "port", s.Config.Port)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-stopped
	return nil
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid data", http.StatusUnprocessableEntity)
		return
	}
	err := s.auth.Register(r.Context(), req.Login, req.Password)
	switch {
	case errors.Is(err, auth.ErrEmptyCredentials):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, storage.ErrUserExists):
		http.Error(w, err.Error(), http.StatusConflict)
	case err != nil:
		s.log.Error("register", "login", req.Login, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	default:
		w.WriteHeader(http.StatusCreated)
	}
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid data", http.StatusUnprocessableEntity)
		return
	}
	token, err := s.auth.Login(r.Context(), req.Login, req.Password)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, LoginResponse{Token: token})
}

func (s *Server) calculate(w http.ResponseWriter, r *http.Request) {
	var req CalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid data", http.StatusUnprocessableEntity)
		return
	}
	opts := postfixnotation.Options{Angle: postfixnotation.ParseAngleMode(req.Angle)}
	if req.Scientific {
		opts.Grammar = postfixnotation.Scientific
	}
	v, err := calculator.Evaluate(req.Expression, opts)
	if err != nil {
		s.log.Debug("calculate", "expression", req.Expression, "err", err)
		writeJSON(w, http.StatusUnprocessableEntity, CalculateResponse{Error: calculator.Message(err)})
		return
	}
	if login, ok := auth.LoginFrom(r.Context()); ok {
		s.record(r.Context(), login, calculator.Entry{Expression: req.Expression, Result: calculator.FormatResult(v)})
	}
	writeJSON(w, http.StatusOK, CalculateResponse{Result: &v, Display: s.formatter.Number(v)})
}

func (s *Server) record(ctx context.Context, login string, e calculator.Entry) {
	_, err := s.store.AddEntry(ctx, login, storage.Entry{
		Expression: e.Expression,
		Result:     e.Result,
		Summary:    e.Summary(),
	})
	if err != nil {
		s.log.Error("record history", "login", login, "err", err)
	}
}

func (s *Server) getExpressions(w http.ResponseWriter, r *http.Request) {
	login, _ := auth.LoginFrom(r.Context())
	entries, err := s.store.Entries(r.Context(), login)
	if err != nil {
		s.log.Error("list history", "login", login, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, ExpressionsResponse{Expressions: entries})
}

func (s *Server) getExpression(w http.ResponseWriter, r *http.Request) {
	login, _ := auth.LoginFrom(r.Context())
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	entry, err := s.store.EntryById(r.Context(), login, id)
	if errors.Is(err, storage.ErrNotFound) {
		http.Error(w, "no expression with such id found: "+chi.URLParam(r, "id"), http.StatusNotFound)
		return
	}
	if err != nil {
		s.log.Error("get history entry", "login", login, "id", id, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]storage.Entry{"expression": entry})
}

func (s *Server) clearExpressions(w http.ResponseWriter, r *http.Request) {
	login, _ := auth.LoginFrom(r.Context())
	if err := s.store.ClearEntries(r.Context(), login); err != nil {
		s.log.Error("clear history", "login", login, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// addHistory accepts calculations committed by a remote keypad.
func (s *Server) addHistory(w http.ResponseWriter, r *http.Request) {
	login, _ := auth.LoginFrom(r.Context())
	var req HistoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Expression == "" {
		http.Error(w, "invalid data", http.StatusUnprocessableEntity)
		return
	}
	id, err := s.store.AddEntry(r.Context(), login, storage.Entry{Expression: req.Expression, Result: req.Result})
	if err != nil {
		s.log.Error("add history", "login", login, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (s *Server) static() http.Handler {
	files := http.StripPrefix("/static/", http.FileServer(http.Dir(s.Config.StaticDir)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=86400")
		w.Header().Set("X-Cache-Version", s.Config.CacheVersion)
		files.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("write response", "err", err)
	}
}

type CredentialsRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

type CalculateRequest struct {
	Expression string `json:"expression"`
	Scientific bool   `json:"scientific"`
	Angle      string `json:"angle"`
}

type CalculateResponse struct {
	Result  *float64 `json:"result,omitempty"`
	Display string   `json:"display,omitempty"`
	Error   string   `json:"error,omitempty"`
}

type ExpressionsResponse struct {
	Expressions []storage.Entry `json:"expressions"`
}

type HistoryRequest struct {
	Expression string `json:"expression"`
	Result     string `json:"result"`
}
