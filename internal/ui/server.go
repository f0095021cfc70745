package ui

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/pkg/browser"

	"ytscribe/internal/logging"
	"ytscribe/internal/retrieval"
)

//go:embed static/index.html
var indexHTML string

var indexTemplate = template.Must(template.New("index").Parse(indexHTML))

// watchInterval is how often the session watchdog looks for a close or idle window.
const watchInterval = 250 * time.Millisecond

// ErrAlreadyRunning reports that another window holds the instance lock.
var ErrAlreadyRunning = errors.New("another ytscribe window is already open")

// Retriever is the part of the retrieval service the window calls.
type Retriever interface {
	Check(ctx context.Context, input string) (*retrieval.Listing, error)
	Obtain(ctx context.Context, req retrieval.Request) (*retrieval.Result, error)
}

// Options configures the window server.
type Options struct {
	Bind        string
	OpenBrowser bool
	IdleTimeout time.Duration
	// CloseGrace is how long a close beacon waits for a reload before ending the session.
	CloseGrace    time.Duration
	LockPath      string
	DefaultFormat string
	DefaultSave   bool
	// OpenURL opens the window; nil means the system browser.
	OpenURL func(url string) error
}

// Server hosts the window for one session.
type Server struct {
	opts    Options
	svc     Retriever
	logger  *slog.Logger
	token   string
	session *session
	handler http.Handler

	mu       sync.Mutex
	listener net.Listener
	server   *http.Server
	url      string
}

// New constructs a Server. Nothing is started and no network calls are made.
func New(svc Retriever, opts Options, logger *slog.Logger) *Server {
	if strings.TrimSpace(opts.Bind) == "" {
		opts.Bind = "127.0.0.1:0"
	}
	if opts.CloseGrace <= 0 {
		opts.CloseGrace = 3 * time.Second
	}
	if opts.OpenURL == nil {
		opts.OpenURL = browser.OpenURL
	}
	s := &Server{
		opts:    opts,
		svc:     svc,
		logger:  logging.NewComponentLogger(logger, "ui"),
		token:   uuid.NewString(),
		session: newSession(opts.IdleTimeout, opts.CloseGrace),
	}
	s.handler = s.routes()
	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /api/formats", requireToken(s.token, s.handleFormats))
	mux.HandleFunc("POST /api/transcripts/check", requireToken(s.token, s.handleCheck))
	mux.HandleFunc("POST /api/transcripts/obtain", requireToken(s.token, s.handleObtain))
	mux.HandleFunc("POST /api/session/heartbeat", requireToken(s.token, s.handleHeartbeat))
	mux.HandleFunc("POST /api/session/close", requireToken(s.token, s.handleClose))
	return mux
}

// Handler exposes the HTTP routes.
func (s *Server) Handler() http.Handler { return s.handler }

// Token returns the session token the page must present.
func (s *Server) Token() string { return s.token }

// URL returns the window address once Run has started listening.
func (s *Server) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.url
}

// Done is closed when the window session ends.
func (s *Server) Done() <-chan struct{} { return s.session.Done() }

// Run holds the instance lock, serves the window, and blocks until the window
// is closed, goes idle, or ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	unlock, err := s.acquireLock()
	if err != nil {
		return err
	}
	defer unlock()

	listener, err := net.Listen("tcp", s.opts.Bind)
	if err != nil {
		return fmt.Errorf("ui listen: %w", err)
	}
	if !isLoopback(listener.Addr()) {
		logging.WarnWithContext(s.logger, "window bound to a non-loopback address", "ui_bind_exposed",
			"other machines can reach the transcript window",
			logging.String("address", listener.Addr().String()),
		)
	}

	server := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	s.mu.Lock()
	s.listener = listener
	s.server = server
	s.url = "http://" + listener.Addr().String() + "/"
	s.mu.Unlock()

	serveErr := make(chan error, 1)
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	stopWatch := make(chan struct{})
	defer close(stopWatch)
	go s.session.watch(watchInterval, stopWatch)

	s.logger.Info("transcript window ready", logging.String("url", s.URL()))
	if s.opts.OpenBrowser {
		if err := s.opts.OpenURL(s.URL()); err != nil {
			logging.WarnWithContext(s.logger, "could not open browser; open the url manually", "browser_open_failed",
				"window must be opened by hand",
				logging.String("url", s.URL()),
				logging.Error(err),
			)
		}
	}

	var runErr error
	select {
	case <-ctx.Done():
		s.logger.Info("window session interrupted")
	case <-s.session.Done():
		s.logger.Info("window session ended", logging.String("reason", string(s.session.Reason())))
	case err, ok := <-serveErr:
		if ok {
			runErr = fmt.Errorf("ui serve: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)
	return runErr
}

func (s *Server) acquireLock() (func(), error) {
	if strings.TrimSpace(s.opts.LockPath) == "" {
		return func() {}, nil
	}
	lock := flock.New(s.opts.LockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire window lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w (lock %s)", ErrAlreadyRunning, s.opts.LockPath)
	}
	return func() {
		if err := lock.Unlock(); err != nil {
			s.logger.Warn("failed to release window lock", logging.Error(err))
		}
	}, nil
}

func isLoopback(addr net.Addr) bool {
	tcp, ok := addr.(*net.TCPAddr)
	return ok && tcp.IP.IsLoopback()
}
