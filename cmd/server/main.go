package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"lintang/routedescription/api"
	_ "lintang/routedescription/docs"
	"lintang/routedescription/pkg/config"
	"lintang/routedescription/pkg/datastructure"
	"lintang/routedescription/pkg/geodata"
	"lintang/routedescription/pkg/guidance"
	"lintang/routedescription/pkg/kv"
	"lintang/routedescription/pkg/logger"
	"lintang/routedescription/pkg/server/rest"
	"lintang/routedescription/pkg/server/rest/service"

	"github.com/cockroachdb/pebble"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	_ "net/http/pprof"
)

var (
	listenAddr = flag.String("listenaddr", ":5000", "server listen address")
	configFile = flag.String("config", "", "yaml config pipeline & database, kosong = default")
	debug      = flag.Bool("debug", false, "log level debug")
)

//	@title			routedescription lintangbs API
//	@version		1.0
//	@description	route description postprocessing for openstreetmap routes

//	@contact.name	lintang birda saputra
//	@description 	route description postprocessing for openstreetmap routes. Turns a node list from a router into per node descriptions (way names, crossings, turns, motorway and roundabout instructions, lanes).

//	@license.name	GNU Affero General Public License v3.0
//	@license.url	https://www.gnu.org/licenses/gpl-3.0.en.html

// @host		localhost:5000
// @BasePath	/api
// @schemes	http
func main() {
	flag.Parse()

	cfg := config.Default()
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			log.Fatal(err)
		}
	}

	zapLog, err := logger.New(*debug || cfg.Debug)
	if err != nil {
		log.Fatal(err)
	}
	defer zapLog.Sync()
	sugar := zapLog.Sugar()

	databases := make(map[datastructure.DatabaseID]geodata.Database, len(cfg.Databases))
	for _, dbCfg := range cfg.Databases {
		db, err := pebble.Open(dbCfg.Path, &pebble.Options{})
		if err != nil {
			sugar.Fatalf("open pebble db %s: %v", dbCfg.Path, err)
		}
		kvDB, err := kv.NewKVDB(db, kv.WithLogger(zapLog))
		if err != nil {
			sugar.Fatalf("open kv db %s: %v", dbCfg.Path, err)
		}
		defer kvDB.Close()
		databases[dbCfg.ID] = kvDB
		zapLog.Info("database opened", zap.Uint32("id", uint32(dbCfg.ID)), zap.String("path", dbCfg.Path))
	}

	reg := prometheus.NewRegistry()
	m := api.NewMetrics(reg)
	pipelineMetrics := api.NewPipelineMetrics(reg)

	svc, err := service.NewDescriptionService(cfg, databases, zapLog, guidance.WithStageObserver(pipelineMetrics))
	if err != nil {
		sugar.Fatalf("create description service: %v", err)
	}

	r := chi.NewRouter()

	r.Use(middleware.Logger)

	r.Use(api.PromeHttpMiddleware(m)) // prometheus http middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Mount("/debug", middleware.Profiler())

	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("http://localhost:5000/swagger/doc.json"), //The url pointing to API definition
	))

	rest.DescriptionRouter(r, svc)

	srv := &http.Server{Addr: *listenAddr, Handler: r}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			zapLog.Error("shutdown server", zap.Error(err))
		}
	}()

	sugar.Infof("server started at %s", *listenAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		zapLog.Error("server stopped", zap.Error(err))
	}
}
