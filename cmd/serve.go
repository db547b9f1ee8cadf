package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/photo-collage/internal/constants"
	"github.com/kozaktomas/photo-collage/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	Long: `Start the Photo Collage HTTP API.
Folders below the images root (COLLAGE_IMAGES_ROOT or --images-root) can be
laid out and rendered to PDF over HTTP.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 0, "Port to listen on (default from WEB_PORT or 8080)")
	serveCmd.Flags().String("host", "", "Host to bind to (default from WEB_HOST or 0.0.0.0)")
	serveCmd.Flags().String("images-root", "", "Directory that request folders are resolved against")
}

// resolveServeHostPort resolves port and host from flags, falling back to config.
func resolveServeHostPort(cmd *cobra.Command, defaultHost string, defaultPort int) (string, int) {
	host := mustGetString(cmd, "host")
	port := mustGetInt(cmd, "port")
	if host == "" {
		host = defaultHost
	}
	if port == 0 {
		port = defaultPort
	}
	return host, port
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if root := mustGetString(cmd, "images-root"); root != "" {
		cfg.Web.ImagesRoot = root
	}
	if info, err := os.Stat(cfg.Web.ImagesRoot); err != nil || !info.IsDir() {
		return fmt.Errorf("images root %q is not a directory", cfg.Web.ImagesRoot)
	}

	host, port := resolveServeHostPort(cmd, cfg.Web.Host, cfg.Web.Port)
	logger := loggerFromContext(cmd.Context())
	server := web.NewServer(cfg, host, port, logger)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(ctx, constants.ShutdownTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("Error during shutdown", "err", err)
		}
	}()

	fmt.Printf("Starting Photo Collage API on http://%s:%d\n", host, port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
