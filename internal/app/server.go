package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/poofware/housing-service/internal/utils"
)

// Serve runs srv on ln until ctx is done, then shuts it down, giving in-flight
// requests up to timeout to finish. It returns only once Shutdown has
// returned, so the caller may release the stores afterwards.
func Serve(ctx context.Context, srv *http.Server, ln net.Listener, timeout time.Duration) error {
	shutdownErr := make(chan error, 1)
	go func() {
		<-ctx.Done()
		utils.Logger.Info("Shutting down HTTP server")
		sctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		shutdownErr <- srv.Shutdown(sctx)
	}()

	if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	if err := <-shutdownErr; err != nil {
		return err
	}
	utils.Logger.Info("HTTP server drained")
	return nil
}
