package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"tsload/internal/config"
	"tsload/internal/server"
)

func newServeCmd() *cobra.Command {
	var addr, root string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve compiled modules over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			defer s.finish()

			if addr == "" {
				addr = s.cfg.Serve.Addr
			}
			if root == "" {
				root = s.cfg.Serve.Root
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			metrics := server.NewMetrics(reg)

			chain, err := s.chain(metrics)
			if err != nil {
				return err
			}
			srv, err := server.New(server.Options{
				Root:     root,
				Chain:    chain,
				Gatherer: reg,
				Metrics:  metrics,
				Logger:   s.log.Named("server"),
			})
			if err != nil {
				return err
			}
			return srv.ListenAndServe(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from tsload.toml or "+config.DefaultAddr+")")
	cmd.Flags().StringVar(&root, "root", "", "directory to serve (default: current directory)")
	return cmd
}
