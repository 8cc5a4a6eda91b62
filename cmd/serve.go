package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/placelist-cli/internal/model"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP resolution server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initResolver(ctx, "serve")
		if err != nil {
			return err
		}
		defer env.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(env),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// newRouter builds the HTTP surface over an initialized resolver environment.
func newRouter(env *resolverEnv) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/v1/resolve", func(w http.ResponseWriter, r *http.Request) {
		var q model.ResolutionQuery
		if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		if q.Name == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
			return
		}
		if _, ok := model.ParseScope(string(q.Scope)); !ok {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid scope"})
			return
		}

		result := env.Resolver.Resolve(r.Context(), q)
		writeJSON(w, http.StatusOK, map[string]any{
			"result":      result,
			"publishable": env.Resolver.IsPublishable(result),
		})
	})

	r.Post("/v1/curate", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Results   []*model.ResolutionResult `json:"results"`
			KeepRatio float64                   `json:"keep_ratio,omitempty"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}

		cuCfg := curateConfig()
		if req.KeepRatio > 0 && req.KeepRatio <= 1 {
			cuCfg.KeepRatio = req.KeepRatio
		}

		// Only publishable results participate in curation.
		resCfg := resolverConfig()
		var publishable []*model.ResolutionResult
		for _, res := range req.Results {
			if resCfg.IsPublishable(res) {
				publishable = append(publishable, res)
			}
		}

		items := cuCfg.Curate(publishable)
		writeJSON(w, http.StatusOK, map[string]any{
			"items":     items,
			"submitted": len(req.Results),
			"kept":      len(items),
		})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
