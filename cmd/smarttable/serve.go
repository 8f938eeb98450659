package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/smart-table/smart-table-server/internal/cli"
	httpadapter "github.com/smart-table/smart-table-server/pkg/adapters/http"
	"github.com/smart-table/smart-table-server/pkg/adapters/memory"
	redisadapter "github.com/smart-table/smart-table-server/pkg/adapters/redis"
	"github.com/smart-table/smart-table-server/pkg/observability"
	"github.com/smart-table/smart-table-server/pkg/ports"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP query server",
	Long: `Serves the records of a data file over HTTP: POST a table state to /query
to get the matching page. Prometheus metrics are exposed on /metrics.

With --redis, answers are cached in Redis and shared between instances.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger(cmd)
		if err != nil {
			return err
		}
		dataPath, _ := cmd.Flags().GetString("data")
		port, _ := cmd.Flags().GetString("port")
		redisAddr, _ := cmd.Flags().GetString("redis")
		cacheTTL, _ := cmd.Flags().GetDuration("cache-ttl")

		records, err := loadRecords(dataPath)
		if err != nil {
			return err
		}
		source := memory.NewSource(records, memory.WithLogger[cli.Record](logger))

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics := observability.NewCollector(reg)

		var query ports.QueryFunc[cli.Record] = source.QueryFunc()
		if redisAddr != "" {
			client := redis.NewClient(&redis.Options{Addr: redisAddr})
			defer client.Close()
			cache := redisadapter.NewCache(client,
				redisadapter.WithTTL(cacheTTL),
				redisadapter.WithLogger(logger),
				redisadapter.WithFillLock(5*time.Second),
			)
			// A restarted server may serve different records.
			if err := cache.Invalidate(cmd.Context()); err != nil {
				logger.Warn("could not clear query cache", "error", err)
			}
			query = redisadapter.Cached(cache, query)
		}
		query = observability.Instrument(metrics, "http", query)

		handler := httpadapter.NewHandler(query,
			httpadapter.WithLogger(logger),
			httpadapter.WithMount("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
		)
		srv := &http.Server{
			Addr:              ":" + port,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("starting smarttable server", "address", srv.Addr, "records", source.Len())
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(shutdown)

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case sig := <-shutdown:
			logger.Info("shutting down", "signal", sig.String())

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				logger.Error("graceful shutdown did not complete", "error", err)
				return srv.Close()
			}
			logger.Info("smarttable server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("data", "d", "", "JSON or YAML file with a list of records, or - for stdin")
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().String("redis", "", "Redis address (host:port) to cache answers in")
	serveCmd.Flags().Duration("cache-ttl", time.Minute, "Lifetime of cached answers")
}
