package actions

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/rs/xid"

	"github.com/bricklake/bricksync/databricks"
	"github.com/bricklake/bricksync/logger"
	"github.com/bricklake/bricksync/orchestrator"
)

// WarehouseAPI is the slice of the Databricks client the web layer serves.
type WarehouseAPI interface {
	ListWarehouses() ([]databricks.Warehouse, error)
	ListCatalogs() ([]string, error)
	ListTables(opts databricks.ListTablesOptions) ([]databricks.TableInfo, error)
	ListSampleSchemas() (*databricks.QueryResult, error)
	ExecuteStatement(sql string) (*databricks.QueryResult, error)
	QueryAccuWeather(opts databricks.AccuWeatherQueryOptions) (*databricks.QueryResult, error)
	TriggerJobRun(jobId int64, params map[string]string, idempotencyToken string) (*databricks.JobRunResult, error)
	GetRunStatus(runId int64) (*databricks.RunStatus, error)
}

// SyncAPI is the orchestrator surface the web layer serves.
type SyncAPI interface {
	Start(req orchestrator.SyncRequest) (string, error)
	GetRun(id string) (orchestrator.SyncRun, bool)
	ListRuns() []orchestrator.SyncRun
}

type WebServerConfig struct {
	Log        logger.Logger
	Port       int `errorTxt:"listen port" mandatory:"yes"`
	Production bool
	Databricks WarehouseAPI
	Sync       SyncAPI
}

// RunWebServer starts the HTTP API and blocks until SIGINT, then shuts the
// server down gracefully.
func RunWebServer(web *WebServerConfig) error {
	if web == nil {
		return errors.New("nil pointer to web server config supplied")
	}
	if web.Log == nil || web.Databricks == nil || web.Sync == nil {
		return errors.New("web server requires a logger, Databricks client and sync service")
	}
	if web.Port <= 0 {
		return errors.Errorf("invalid listen port %v", web.Port)
	}
	srv := runServer(web)
	return waitForServer(web.Log, srv)
}

// NewRouter builds the API routes. Split out so tests can drive the handlers
// without a listening socket.
func NewRouter(web *WebServerConfig) *mux.Router {
	log := web.Log
	r := mux.NewRouter()
	r.Use(getRequestLogMiddleware(log))
	r.Path("/health").Methods(http.MethodGet).HandlerFunc(GetHandlerHealth(log))
	r.Path("/warehouses").Methods(http.MethodGet).HandlerFunc(GetHandlerWarehouses(log, web))
	r.Path("/catalogs").Methods(http.MethodGet).HandlerFunc(GetHandlerCatalogs(log, web))
	r.Path("/tables").Methods(http.MethodGet).HandlerFunc(GetHandlerTables(log, web))
	r.Path("/samples/schemas").Methods(http.MethodGet).HandlerFunc(GetHandlerSampleSchemas(log, web))
	r.Path("/query").Methods(http.MethodPost).HandlerFunc(GetHandlerQuery(log, web))
	r.Path("/accuweather").Methods(http.MethodGet).HandlerFunc(GetHandlerAccuWeather(log, web))
	r.Path("/jobs/{jobId}/run").Methods(http.MethodPost).HandlerFunc(GetHandlerJobRun(log, web))
	r.Path("/jobs/runs/{runId}").Methods(http.MethodGet).HandlerFunc(GetHandlerJobRunStatus(log, web))
	r.Path("/sync").Methods(http.MethodPost).HandlerFunc(GetHandlerSyncStart(log, web))
	r.Path("/sync").Methods(http.MethodGet).HandlerFunc(GetHandlerSyncList(log, web))
	r.Path("/sync/{id}").Methods(http.MethodGet).HandlerFunc(GetHandlerSyncGet(log, web))
	return r
}

// runServer starts the HTTP server non-blocking and returns it.
func runServer(web *WebServerConfig) *http.Server {
	log := web.Log
	srv := &http.Server{ // Good practice to set timeouts to avoid Slowloris attacks.
		Addr:         fmt.Sprintf(":%v", web.Port),
		WriteTimeout: time.Second * 120, // warehouse queries can be slow to first byte.
		ReadTimeout:  time.Second * 15,
		IdleTimeout:  time.Second * 60,
		Handler:      NewRouter(web),
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil {
			if err == http.ErrServerClosed {
				log.Info(err)
			} else {
				log.Panic(err)
			}
		}
	}()
	log.Info(fmt.Sprintf("Listening on http://0.0.0.0:%v", web.Port))
	return srv
}

func waitForServer(log logger.Logger, srv *http.Server) error {
	// Block & wait for shutdown signals.
	// Accept graceful shutdowns when quit via SIGINT (Ctrl+C)
	// SIGKILL, SIGQUIT or SIGTERM (Ctrl+\) will not be caught.
	chanOS := make(chan os.Signal, 1)
	signal.Notify(chanOS, os.Interrupt)
	<-chanOS
	fmt.Println() // print new line char for clean looking CLI.
	log.Info("Shutting down web server...")
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*15)
	defer cancel()
	return srv.Shutdown(ctx) // waits for in-flight requests up to the deadline.
}

// getRequestLogMiddleware tags each request with an id and logs its outcome.
func getRequestLogMiddleware(log logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestId := xid.New().String()
			w.Header().Set("X-Request-Id", requestId)
			start := time.Now()
			next.ServeHTTP(w, r)
			log.Info("request ", requestId, " ", r.Method, " ", r.URL.Path, " served in ", time.Since(start))
		})
	}
}
