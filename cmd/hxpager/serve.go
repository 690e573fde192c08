package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pthm/hxpager"
	"github.com/pthm/hxpager/hxhost"
	"github.com/pthm/hxpager/lib/encoding"
	"github.com/pthm/hxpager/lib/rx"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a demo paginator",
		Long: `Serve a demo paginator with four numbered pages.

Each click on "add page" appends a page and displays it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			v := viper.New()
			if err := v.BindPFlag("pager.addr", cmd.Flags().Lookup("addr")); err != nil {
				return err
			}
			if file, _ := cmd.Flags().GetString("config"); file != "" {
				v.SetConfigFile(file)
				if err := v.ReadInConfig(); err != nil {
					return fmt.Errorf("read config: %w", err)
				}
			}

			cfg, err := hxpager.GetConfig(v)
			if err != nil {
				return err
			}
			if err := cfg.Apply(); err != nil {
				return err
			}

			if v.ConfigFileUsed() != "" {
				v.OnConfigChange(func(e fsnotify.Event) {
					reload(v, e)
				})
				v.WatchConfig()
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}

	cmd.Flags().String("addr", ":8080", "listen address")
	return cmd
}

// reload re-applies logging and debug settings after the config file
// changes. The listen address and key only take effect on restart.
func reload(v *viper.Viper, e fsnotify.Event) {
	log := hxpager.Logger().WithField("file", e.Name)
	if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
		return
	}

	cfg, err := hxpager.GetConfig(v)
	if err != nil {
		log.WithError(err).Warn("hxpager: ignoring invalid config change")
		return
	}
	if err := cfg.Apply(); err != nil {
		log.WithError(err).Warn("hxpager: could not apply config change")
		return
	}
	hxpager.Logger().WithField("file", e.Name).Info("hxpager: config reloaded")
}

// numberPage is a demo page showing its number.
type numberPage struct {
	n int
}

func (p *numberPage) Render(ctx context.Context, w io.Writer) error {
	_, err := io.WriteString(w, `<section class="page"><h1>`+strconv.Itoa(p.n)+`</h1></section>`)
	return err
}

// pageStore is the growing page list the paginator is bound to.
type pageStore struct {
	mu    sync.Mutex
	pages *rx.Relay[[]*numberPage]
}

func newPageStore(n int) *pageStore {
	pages := make([]*numberPage, n)
	for i := range pages {
		pages[i] = &numberPage{n: i + 1}
	}
	return &pageStore{pages: rx.NewRelay(pages)}
}

func (s *pageStore) add() {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.pages.Value()
	next := make([]*numberPage, len(current), len(current)+1)
	copy(next, current)
	s.pages.Accept(append(next, &numberPage{n: len(current) + 1}))
}

func serve(ctx context.Context, cfg *hxpager.Config) error {
	log := hxpager.Logger()

	key := []byte(cfg.Key)
	if len(key) == 0 {
		log.Warn("hxpager: no pager.key configured, navigation links use a development key")
		key = []byte("hxpager-development-key")
	}
	codec, err := encoding.NewCodec(key)
	if err != nil {
		return err
	}

	pager := hxhost.New[*numberPage]("pager", codec)
	if cfg.SealCursors {
		pager.Sensitive()
	}
	defer pager.Close()

	store := newPageStore(4)
	ds := hxpager.NewReactiveDataSource(hxpager.Bounded[*numberPage](), hxpager.Automatic[*numberPage]())

	binding := hxpager.Rx[*numberPage](pager).Items(ds).BindUpdates(ctx, store.pages, hxpager.ShowLast[*numberPage](),
		hxpager.WithScheduler(pager.Scheduler()))
	defer binding.Dispose()

	sub := hxpager.Rx[*numberPage](pager).DidFinishAnimating().Subscribe(rx.ObserverFuncs[hxpager.DidFinishAnimatingEvent[*numberPage]]{
		Next: func(e hxpager.DidFinishAnimatingEvent[*numberPage]) {
			log.WithField("completed", e.Completed).Debug("hxpager: page turned")
		},
	})
	defer sub.Dispose()

	mux := newMux(pager, store, log)

	srv := &http.Server{Addr: cfg.Addr, Handler: mux}
	errc := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.Addr).Info("hxpager: listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// newMux routes the demo page, the add endpoint and the paginator.
func newMux(pager *hxhost.Paginator[*numberPage], store *pageStore, log *logrus.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle(pager.Prefix()+"/", pager.Handler())
	mux.HandleFunc("/add", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if !hxhost.IsHTMX(r) {
			http.Error(w, "Forbidden: HTMX request required", http.StatusForbidden)
			return
		}
		store.add()
		if err := hxhost.Render(w, r, pager.Render()); err != nil {
			log.WithError(err).Error("hxpager: render failed")
		}
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if _, err := io.WriteString(w, layoutHead); err != nil {
			log.WithError(err).Error("hxpager: write failed")
			return
		}
		if err := pager.Render().Render(r.Context(), w); err != nil {
			log.WithError(err).Error("hxpager: render failed")
			return
		}
		if _, err := io.WriteString(w, layoutTail); err != nil {
			log.WithError(err).Error("hxpager: write failed")
		}
	})
	return mux
}

const layoutHead = `<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>hxpager</title>
<script src="https://unpkg.com/htmx.org@2.0.4"></script>
</head>
<body>
<button hx-post="/add" hx-target="#pager" hx-swap="outerHTML">add page</button>
`

const layoutTail = `
</body>
</html>
`
