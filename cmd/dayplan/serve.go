package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/td0m/dayplan/pkg/relay"
	"go.uber.org/zap"
)

func (c *cli) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the chat relay",
		Long: `Run the chat relay.

The relay accepts POST /api/chat and forwards the body to the upstream
messages API with the configured API key, so the key never reaches clients.
Set it with relay.api_key in the config file or DAYPLAN_RELAY_API_KEY.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rc := c.cfg.Relay
			if rc.APIKey == "" {
				c.log.Warn("relay.api_key is empty, upstream calls will be rejected")
			}
			server, err := relay.NewServer(relay.Config{
				Host:        rc.Host,
				Port:        rc.Port,
				UpstreamURL: rc.UpstreamURL,
				APIKey:      rc.APIKey,
				APIVersion:  rc.APIVersion,
			}, c.log.Named("relay"))
			if err != nil {
				return err
			}

			errc := make(chan error, 1)
			go func() {
				errc <- server.Start()
			}()

			select {
			case err := <-errc:
				return err
			case <-cmd.Context().Done():
			}
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(ctx); err != nil {
				return err
			}
			if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
				c.log.Error("relay stopped", zap.Error(err))
				return err
			}
			return nil
		},
	}
}
