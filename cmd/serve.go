package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KaramelBytes/pulseboard/internal/dashboard"
	"github.com/KaramelBytes/pulseboard/internal/render"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the browser dashboard",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := currentConfig()
		addr := c.ListenAddr
		if cmd.Flags().Changed("addr") && serveAddr != "" {
			addr = serveAddr
		}
		srv := dashboard.NewServer(dashboard.Config{
			Address:        addr,
			MaxUploadBytes: int64(c.MaxUploadMB) << 20,
			PreviewRows:    c.PreviewRows,
			CacheEntries:   c.CacheEntries,
			SessionTTL:     time.Duration(c.SessionTTLMin) * time.Minute,
			Render: render.Options{
				Bins:     c.HistogramBins,
				WidthIn:  c.ChartWidthIn,
				HeightIn: c.ChartHeightIn,
			},
			AssetsHost: c.EchartsAssetsHost,
		})

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		fmt.Fprintf(cmd.OutOrStdout(), "Dashboard listening on %s (Ctrl+C to stop)\n", addr)
		return srv.Start(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides listen_addr)")
}
