// ABOUTME: serve subcommand running the chat proxy
// ABOUTME: Wires config, provider, rate limiter and gin server with graceful shutdown
package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/harperreed/nudge/provider"
	"github.com/harperreed/nudge/ratelimit"
	"github.com/harperreed/nudge/web"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the chat proxy (POST /api/chat)",
		Long: `Run the chat proxy (POST /api/chat).

Requests may name a model only if it appears in ALLOWED_MODELS, a
comma-separated list. When ALLOWED_MODELS is unset, only MODEL is
accepted and any other requested model gets a 400.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			p, err := provider.New(ctx, provider.Settings{
				Name:    a.cfg.Provider,
				APIKey:  a.cfg.APIKey(),
				BaseURL: a.cfg.ProviderBaseURL,
			})
			if err != nil {
				return err
			}

			ln, err := net.Listen("tcp", a.cfg.Addr())
			if err != nil {
				return fmt.Errorf("failed to listen on %s: %w", a.cfg.Addr(), err)
			}
			return a.serve(ctx, ln, p)
		},
	}
}

// serve runs the proxy on ln until ctx ends, then drains in-flight requests.
func (a *app) serve(ctx context.Context, ln net.Listener, p provider.Provider) error {
	limiter := ratelimit.NewWindow(a.cfg.RateLimitMax, a.cfg.RateLimitWindow)
	srv := web.NewServer(a.cfg, p, limiter, a.logger).HTTPServer()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("chat proxy listening",
			zap.String("addr", ln.Addr().String()),
			zap.String("provider", a.cfg.Provider),
			zap.String("model", a.cfg.Model),
			zap.String("cors_origin", a.cfg.CORSOrigin),
		)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("chat proxy: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down chat proxy")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
