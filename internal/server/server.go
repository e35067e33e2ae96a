// Package server is the FormDrop relay: it accepts browser form posts, runs
// them through a form controller and, in dev, proxies /n8n/* to the webhook
// tunnel so the dev endpoints resolve through the same origin.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dharsanguruparan/FormDrop/internal/config"
	"github.com/dharsanguruparan/FormDrop/internal/form"
	"github.com/dharsanguruparan/FormDrop/internal/logger"
	"github.com/dharsanguruparan/FormDrop/internal/shell"
)

// ProxyPrefix is where the dev webhook proxy is mounted.
const ProxyPrefix = "/n8n"

// Server hosts the relay routes.
type Server struct {
	cfg       *config.Config
	titles    form.JobTitleSource
	submitter form.Submitter
	log       logger.Logger
}

// New constructs a Server. titles may be nil, in which case the job title list
// is always empty.
func New(cfg *config.Config, titles form.JobTitleSource, submitter form.Submitter, log logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	return &Server{cfg: cfg, titles: titles, submitter: submitter, log: log}
}

// Serve starts the HTTP server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	handler, err := s.Handler()
	if err != nil {
		return err
	}
	// A fresh http.Server per call: once Shutdown has run, a server cannot be
	// started again.
	httpServer := &http.Server{
		Addr:              s.cfg.Address,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		// When the context is cancelled we gracefully shutdown with a timeout so
		// in-flight submissions can still report their outcome.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()
	s.log.Infof("relay listening on %s (env %s)", s.cfg.Address, s.cfg.Env)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Handler builds the router.
func (s *Server) Handler() (http.Handler, error) {
	r := chi.NewRouter()
	r.Use(s.recoverMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(corsMiddleware)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/job-titles", s.handleJobTitles)
		r.Post("/forms/{type}", s.handleSubmit)
	})

	if s.cfg.IsDev() {
		// The dev endpoints default to this relay's own /n8n prefix, so the
		// route is always mounted in dev. Without a target it answers 503
		// instead of a bare 404 that would look like a missing webhook.
		if s.cfg.ProxyTarget == "" {
			s.log.Warnf("proxy_target not configured: %s/* will answer 503 (set FORMDROP_PROXY_TARGET)", ProxyPrefix)
			r.Handle(ProxyPrefix+"/*", http.HandlerFunc(proxyNotConfigured))
		} else {
			proxy, err := newDevProxy(s.cfg.ProxyTarget, s.cfg.Headers)
			if err != nil {
				return nil, err
			}
			// StripPrefix removes /n8n so the tunnel sees /webhook/... paths.
			r.Handle(ProxyPrefix+"/*", http.StripPrefix(ProxyPrefix, proxy))
		}
	}
	return r, nil
}

// ProxyNotConfiguredMessage is returned by the dev proxy route when no target
// is set.
const ProxyNotConfiguredMessage = "proxy_target not configured"

func proxyNotConfigured(w http.ResponseWriter, r *http.Request) {
	http.Error(w, ProxyNotConfiguredMessage, http.StatusServiceUnavailable)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok", "env": s.cfg.Env})
}

type jobTitlesResponse struct {
	Titles        []string            `json:"titles"`
	Notifications []form.Notification `json:"notifications"`
}

func (s *Server) handleJobTitles(w http.ResponseWriter, r *http.Request) {
	sh := shell.New(shell.ViewJobApplication, nil)
	titles := form.FetchJobTitles(r.Context(), s.titles, sh)
	respondJSON(w, http.StatusOK, jobTitlesResponse{
		Titles:        titles,
		Notifications: notificationsOf(sh),
	})
}

// SubmitResponse is the relay's reply to a form post.
type SubmitResponse struct {
	Type          string              `json:"type"`
	State         string              `json:"state"`
	SubmissionID  string              `json:"submission_id,omitempty"`
	Errors        map[string]string   `json:"errors,omitempty"`
	Notifications []form.Notification `json:"notifications"`
	View          string              `json:"view"`
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	// chi.URLParam reads the {type} segment matched by the router.
	t, err := form.ParseType(chi.URLParam(r, "type"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	sh := shell.New(shell.ViewFor(t), nil)
	var titles []string
	if t == form.JobApplication {
		titles = form.FetchJobTitles(ctx, s.titles, sh)
	}
	def, err := form.Lookup(t, titles)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	// http.MaxBytesReader wraps the Body to protect against oversized payloads;
	// the extra MiB leaves room for the text parts next to the file.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxFileSize+1024*1024)
	fields, err := readFields(r, def.Schema, s.cfg.MaxFileSize)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	endpoint, err := s.cfg.Endpoint(t)
	if err != nil {
		// Field errors never depend on where the form would be sent, so they
		// are reported ahead of a missing endpoint.
		if errs := form.Validate(fields, def.Schema); errs.HasErrors() {
			respondJSON(w, http.StatusUnprocessableEntity, SubmitResponse{
				Type:          string(t),
				State:         form.Idle.String(),
				Errors:        errs.AsMap(),
				Notifications: notificationsOf(sh),
				View:          sh.View().String(),
			})
			return
		}
		s.log.Errorf("resolve endpoint: %v", err)
		http.Error(w, "form endpoint not configured", http.StatusServiceUnavailable)
		return
	}

	ctrl := form.NewController(def, endpoint, s.submitter, sh, form.WithLogger(s.log))
	for name, v := range fields {
		ctrl.Set(name, v)
	}
	out, err := ctrl.Submit(ctx)
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	status := http.StatusOK
	switch out.State {
	case form.Idle:
		status = http.StatusUnprocessableEntity
	case form.Failed:
		status = http.StatusBadGateway
	}
	respondJSON(w, status, SubmitResponse{
		Type:          string(ctrl.Definition().Type),
		State:         out.State.String(),
		SubmissionID:  out.SubmissionID,
		Errors:        out.Errors.AsMap(),
		Notifications: notificationsOf(sh),
		View:          sh.View().String(),
	})
}

// readFields decodes an urlencoded or multipart body into form fields. Only the
// first value of a repeated key is kept. A declared file field only accepts an
// upload and a declared text field only accepts text; undeclared names pass
// through and are ignored by validation.
func readFields(r *http.Request, schema form.Schema, maxFile int64) (form.Fields, error) {
	fields := form.Fields{}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		if err := r.ParseMultipartForm(maxFile); err != nil {
			return nil, fmt.Errorf("parse multipart form: %w", err)
		}
		for name, values := range r.MultipartForm.Value {
			if len(values) == 0 {
				continue
			}
			if err := expectText(schema, name); err != nil {
				return nil, err
			}
			fields[name] = form.Text(values[0])
		}
		for name, headers := range r.MultipartForm.File {
			if len(headers) == 0 {
				continue
			}
			if declared, ok := schema.Field(name); ok && !declared.IsFile() {
				return nil, fmt.Errorf("%s does not accept a file", name)
			}
			f, err := readUpload(headers[0], maxFile)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			fields[name] = form.Attach(f)
		}
		return fields, nil
	}
	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("parse form: %w", err)
	}
	// PostForm holds only body values, unlike Form which also merges the query.
	for name := range r.PostForm {
		if err := expectText(schema, name); err != nil {
			return nil, err
		}
		fields[name] = form.Text(r.PostForm.Get(name))
	}
	return fields, nil
}

func expectText(schema form.Schema, name string) error {
	if declared, ok := schema.Field(name); ok && declared.IsFile() {
		return fmt.Errorf("%s expects a file upload", name)
	}
	return nil
}

func readUpload(h *multipart.FileHeader, maxFile int64) (*form.File, error) {
	if h.Size > maxFile {
		return nil, fmt.Errorf("file exceeds limit (%d bytes)", maxFile)
	}
	src, err := h.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	return &form.File{Name: h.Filename, ContentType: h.Header.Get("Content-Type"), Data: data}, nil
}

// newDevProxy forwards to target with the prefix already stripped, adding the
// configured webhook headers (the ngrok browser-warning bypass by default).
func newDevProxy(target string, headers map[string]string) (http.Handler, error) {
	u, err := url.Parse(target)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid proxy target %q", target)
	}
	proxy := httputil.NewSingleHostReverseProxy(u)
	direct := proxy.Director
	proxy.Director = func(req *http.Request) {
		direct(req)
		req.Host = u.Host
		for k, v := range headers {
			req.Header.Set(k, v)
		}
	}
	return proxy, nil
}

func notificationsOf(sh *shell.Shell) []form.Notification {
	n := sh.Notifications()
	if n == nil {
		return []form.Notification{}
	}
	return n
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization,ngrok-skip-browser-warning")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Infof("%s %s (%s)", r.Method, r.URL.Path, time.Since(start))
	})
}

func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.log.Errorf("panic serving %s: %v", r.URL.Path, rec)
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
