package servecmder

import (
	"context"
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/seclist/pkg/logger"
	"github.com/papercomputeco/seclist/server"
)

const serveLongDesc string = `Serve an in-memory tamper-evident chain over HTTP.

Configuration is read from SECLIST_LISTEN_ADDR, SECLIST_DIGEST and
SECLIST_DEBUG; flags take precedence over the environment.

Endpoints:
  GET    /chain               chain contents, head digest and validity
  GET    /chain/verify        verification result and mismatches
  GET    /chain/nodes/:index  a single node
  POST   /chain/nodes         {"value": "...", "index": n} (index omitted adds at the head)
  DELETE /chain/nodes/:index  remove a node

Examples:
  seclist serve
  seclist serve --listen 127.0.0.1:9000 --digest sha512`

const serveShortDesc string = "Serve a chain over HTTP"

type serveCommander struct {
	listenAddr string
	digest     string
}

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd)
		},
	}

	cmd.Flags().StringVarP(&cmder.listenAddr, "listen", "l", ":8080", "Address to listen on")
	cmd.Flags().StringVarP(&cmder.digest, "digest", "d", "sha256", "Digest algorithm (sha256, sha384, sha512)")

	return cmd
}

func (c *serveCommander) config(cmd *cobra.Command) (server.Config, error) {
	var cfg server.Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("could not load configuration: %w", err)
	}

	if cmd.Flags().Changed("listen") {
		cfg.ListenAddr = c.listenAddr
	}
	if cmd.Flags().Changed("digest") {
		cfg.Digest = c.digest
	}
	if debug, err := cmd.Flags().GetBool("debug"); err == nil && debug {
		cfg.Debug = true
	}

	return cfg, nil
}

func (c *serveCommander) run(ctx context.Context, cmd *cobra.Command) error {
	cfg, err := c.config(cmd)
	if err != nil {
		return err
	}

	log := logger.NewLogger(cfg.Debug)
	defer log.Sync()

	srv, err := server.New(cfg, log)
	if err != nil {
		return fmt.Errorf("could not create server: %w", err)
	}

	go func() {
		<-ctx.Done()
		log.Info("shutting down chain server")
		if err := srv.Shutdown(); err != nil {
			log.Error("shutdown failed", zap.Error(err))
		}
	}()

	if err := srv.Run(); err != nil {
		return fmt.Errorf("chain server failed: %w", err)
	}

	return nil
}
