package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/mikey/mail-screen/internal/core"
	"go.uber.org/zap"
)

const (
	// SendEmailPath is the form submission endpoint
	SendEmailPath = "/send_email"

	// maxFormBytes bounds the size of a submitted form body
	maxFormBytes = 1 << 20

	internalErrorBody = "Internal server error."
)

// redirects maps each outcome to the page the client is sent to
var redirects = map[core.Outcome]string{
	core.OutcomeRejected: "/",
	core.OutcomeFiltered: "/email_filtered.html",
	core.OutcomeSent:     "/email_sent.html",
}

// SubmissionProcessor runs the submission pipeline
type SubmissionProcessor interface {
	Process(ctx context.Context, sub core.Submission) core.Outcome
}

// HTTPServer serves the submission form endpoint and the static site
type HTTPServer struct {
	processor       SubmissionProcessor
	logger          *zap.Logger
	listenAddr      string
	staticDir       string
	readTimeout     time.Duration
	writeTimeout    time.Duration
	shutdownTimeout time.Duration

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
}

// NewHTTPServer creates a new HTTP front end
func NewHTTPServer(
	processor SubmissionProcessor,
	logger *zap.Logger,
	listenAddr string,
	staticDir string,
	readTimeout time.Duration,
	writeTimeout time.Duration,
	shutdownTimeout time.Duration,
) *HTTPServer {
	return &HTTPServer{
		processor:       processor,
		logger:          logger,
		listenAddr:      listenAddr,
		staticDir:       staticDir,
		readTimeout:     readTimeout,
		writeTimeout:    writeTimeout,
		shutdownTimeout: shutdownTimeout,
	}
}

// Handler returns the complete HTTP handler chain
func (s *HTTPServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("POST "+SendEmailPath, s.handle(s.sendEmail))
	mux.Handle("/", http.FileServer(http.Dir(s.staticDir)))

	return s.recoverPanics(allowAllOrigins(mux))
}

// Start starts the HTTP server in the background
func (s *HTTPServer) Start() error {
	l, err := net.Listen("tcp", s.listenAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.listenAddr, err)
	}

	srv := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.readTimeout,
		WriteTimeout: s.writeTimeout,
		ErrorLog:     zap.NewStdLog(s.logger),
	}

	s.mu.Lock()
	s.server = srv
	s.listener = l
	s.mu.Unlock()

	s.logger.Info("Server started", zap.String("address", l.Addr().String()))

	go func() {
		if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	return nil
}

// Addr returns the address the server is listening on, or nil before Start
func (s *HTTPServer) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stop gracefully stops the HTTP server
func (s *HTTPServer) Stop() error {
	s.mu.Lock()
	srv := s.server
	s.mu.Unlock()
	if srv == nil {
		return nil
	}

	ctx := context.Background()
	if s.shutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.shutdownTimeout)
		defer cancel()
	}
	return srv.Shutdown(ctx)
}

// sendEmail handles POST /send_email
func (s *HTTPServer) sendEmail(w http.ResponseWriter, r *http.Request) error {
	form, err := readForm(w, r)
	if err != nil {
		return err
	}

	sub := core.Submission{
		Recipient: form["to"],
		Subject:   form["sub"],
		Body:      form["eml"],
	}

	outcome := s.processor.Process(r.Context(), sub)
	location, ok := redirects[outcome]
	if !ok {
		return fmt.Errorf("no redirect for outcome %s", outcome)
	}

	http.Redirect(w, r, location, http.StatusFound)
	return nil
}

// handle adapts an error-returning handler, answering errors with a generic 500
func (s *HTTPServer) handle(h func(http.ResponseWriter, *http.Request) error) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := h(w, r); err != nil {
			s.logger.Error("Request failed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Error(err))
			writeInternalError(w)
		}
	})
}

// recoverPanics turns a panicking request into a 500 and keeps the server alive
func (s *HTTPServer) recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			s.logger.Error("Recovered from panic",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Any("panic", rec),
				zap.Stack("stack"))
			writeInternalError(w)
		}()
		next.ServeHTTP(w, r)
	})
}

// allowAllOrigins permits cross-origin requests from any origin
func allowAllOrigins(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")

		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			h.Set("Access-Control-Allow-Methods", "GET,HEAD,PUT,PATCH,POST,DELETE")
			if reqHeaders := r.Header.Get("Access-Control-Request-Headers"); reqHeaders != "" {
				h.Set("Access-Control-Allow-Headers", reqHeaders)
				h.Add("Vary", "Access-Control-Request-Headers")
			}
			h.Set("Content-Length", "0")
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeInternalError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusInternalServerError)
	io.WriteString(w, internalErrorBody)
}
