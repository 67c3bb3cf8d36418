package tlscert

import (
	"crypto/tls"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/foteam/sessionstore/internal/telemetry/logger"
)

// DefaultDebounce collapses the burst of events a single rewrite produces.
const DefaultDebounce = 500 * time.Millisecond

// Reloader holds the current key pair and swaps it when the files change.
type Reloader struct {
	certFile string
	keyFile  string
	logger   logger.Logger
	debounce time.Duration

	mu   sync.RWMutex
	cert *tls.Certificate

	reloadMu   sync.Mutex
	lastReload time.Time

	watcher  *fsnotify.Watcher
	done     chan struct{}
	stopOnce sync.Once
}

// Option configures a Reloader.
type Option func(*Reloader)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(r *Reloader) {
		r.logger = l
	}
}

// WithDebounce sets the minimum interval between reloads.
func WithDebounce(d time.Duration) Option {
	return func(r *Reloader) {
		r.debounce = d
	}
}

// New loads the key pair once. A pair that cannot be loaded is an error
// here; later reload failures keep the previous certificate.
func New(certFile, keyFile string, opts ...Option) (*Reloader, error) {
	r := &Reloader{
		certFile: certFile,
		keyFile:  keyFile,
		logger:   logger.Default(),
		debounce: DefaultDebounce,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	if err := r.Reload(); err != nil {
		return nil, fmt.Errorf("tlscert: initial load: %w", err)
	}
	return r, nil
}

// Reload reads the key pair from disk.
func (r *Reloader) Reload() error {
	cert, err := tls.LoadX509KeyPair(r.certFile, r.keyFile)
	if err != nil {
		return fmt.Errorf("load key pair: %w", err)
	}

	r.mu.Lock()
	r.cert = &cert
	r.mu.Unlock()

	r.logger.Info("tls certificate loaded", "cert_file", r.certFile)
	return nil
}

// GetCertificate implements tls.Config.GetCertificate.
func (r *Reloader) GetCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cert, nil
}

// TLSConfig returns a server config backed by the reloader.
func (r *Reloader) TLSConfig() *tls.Config {
	return &tls.Config{
		MinVersion:     tls.VersionTLS12,
		GetCertificate: r.GetCertificate,
	}
}

// Start watches the directories holding the pair. It blocks until Stop.
// Directories rather than files are watched so rename-based rotation
// (certbot, kubelet secret mounts) is seen.
func (r *Reloader) Start() error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("tlscert: create watcher: %w", err)
	}
	r.watcher = w

	certDir, keyDir := filepath.Dir(r.certFile), filepath.Dir(r.keyFile)
	if err := w.Add(certDir); err != nil {
		w.Close()
		return fmt.Errorf("tlscert: watch %s: %w", certDir, err)
	}
	if keyDir != certDir {
		if err := w.Add(keyDir); err != nil {
			w.Close()
			return fmt.Errorf("tlscert: watch %s: %w", keyDir, err)
		}
	}

	certBase, keyBase := filepath.Base(r.certFile), filepath.Base(r.keyFile)
	r.logger.Debug("tls certificate watcher started", "cert_file", r.certFile, "key_file", r.keyFile)

	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			base := filepath.Base(ev.Name)
			if base != certBase && base != keyBase {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if err := r.debouncedReload(); err != nil {
				r.logger.Error("tls certificate reload failed", "cert_file", r.certFile, "error", err)
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			r.logger.Error("tls certificate watcher error", "error", err)

		case <-r.done:
			return w.Close()
		}
	}
}

// StartAsync runs Start in a goroutine.
func (r *Reloader) StartAsync() {
	go func() {
		if err := r.Start(); err != nil {
			r.logger.Error("tls certificate watcher stopped", "error", err)
		}
	}()
}

// Stop ends Start. It is safe to call more than once.
func (r *Reloader) Stop() {
	r.stopOnce.Do(func() { close(r.done) })
}

func (r *Reloader) debouncedReload() error {
	r.reloadMu.Lock()
	defer r.reloadMu.Unlock()

	now := time.Now()
	if now.Sub(r.lastReload) < r.debounce {
		return nil
	}
	r.lastReload = now

	// let the writer finish the second file of the pair
	time.Sleep(100 * time.Millisecond)
	return r.Reload()
}
