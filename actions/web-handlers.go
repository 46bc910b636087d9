package actions

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/bricklake/bricksync/databricks"
	"github.com/bricklake/bricksync/logger"
	"github.com/bricklake/bricksync/orchestrator"
)

// Stable error codes returned in the error envelope.
const (
	CodeInvalidRequest        = "INVALID_REQUEST"
	CodeNotFound              = "NOT_FOUND"
	CodeWarehousesFetchFailed = "WAREHOUSES_FETCH_FAILED"
	CodeCatalogsFetchFailed   = "CATALOGS_FETCH_FAILED"
	CodeTablesFetchFailed     = "TABLES_FETCH_FAILED"
	CodeSamplesSchemasFailed  = "SAMPLES_SCHEMAS_FAILED"
	CodeQueryFailed           = "QUERY_FAILED"
	CodeAccuWeatherFailed     = "ACCUWEATHER_QUERY_FAILED"
	CodeJobTriggerFailed      = "JOB_TRIGGER_FAILED"
	CodeJobStatusFailed       = "JOB_STATUS_FAILED"
	CodeSyncStartFailed       = "SYNC_START_FAILED"
	CodeSyncListFailed        = "SYNC_LIST_FAILED"
	CodeSyncGetFailed         = "SYNC_GET_FAILED"
)

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

type errorResponse struct {
	Error apiError `json:"error"`
}

func GetHandlerHealth(log logger.Logger) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		respond(log, w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func GetHandlerWarehouses(log logger.Logger, web *WebServerConfig) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		warehouses, err := web.Databricks.ListWarehouses()
		if err != nil {
			respondError(log, web, w, http.StatusInternalServerError, CodeWarehousesFetchFailed, "unable to list warehouses", err)
			return
		}
		respond(log, w, http.StatusOK, map[string]interface{}{"warehouses": warehouses})
	}
}

func GetHandlerCatalogs(log logger.Logger, web *WebServerConfig) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		catalogs, err := web.Databricks.ListCatalogs()
		if err != nil {
			respondError(log, web, w, http.StatusInternalServerError, CodeCatalogsFetchFailed, "unable to list catalogs", err)
			return
		}
		respond(log, w, http.StatusOK, map[string]interface{}{"catalogs": catalogs})
	}
}

func GetHandlerTables(log logger.Logger, web *WebServerConfig) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		catalog, ok := singleQueryValue(r, "catalog")
		if !ok {
			respondError(log, web, w, http.StatusBadRequest, CodeInvalidRequest, "catalog must be a single value", nil)
			return
		}
		schema, ok := singleQueryValue(r, "schema")
		if !ok {
			respondError(log, web, w, http.StatusBadRequest, CodeInvalidRequest, "schema must be a single value", nil)
			return
		}
		tables, err := web.Databricks.ListTables(databricks.ListTablesOptions{Catalog: catalog, Schema: schema})
		if err != nil {
			respondError(log, web, w, http.StatusInternalServerError, CodeTablesFetchFailed, "unable to list tables", err)
			return
		}
		respond(log, w, http.StatusOK, map[string]interface{}{"tables": tables})
	}
}

func GetHandlerSampleSchemas(log logger.Logger, web *WebServerConfig) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := web.Databricks.ListSampleSchemas()
		if err != nil {
			respondError(log, web, w, http.StatusInternalServerError, CodeSamplesSchemasFailed, "unable to list sample schemas", err)
			return
		}
		respond(log, w, http.StatusOK, map[string]interface{}{"schemas": result.Rows})
	}
}

func GetHandlerQuery(log logger.Logger, web *WebServerConfig) func(w http.ResponseWriter, r *http.Request) {
	type queryRequest struct {
		Sql string `json:"sql"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		req := queryRequest{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(log, web, w, http.StatusBadRequest, CodeInvalidRequest, "request body must be JSON", err)
			return
		}
		if strings.TrimSpace(req.Sql) == "" {
			respondError(log, web, w, http.StatusBadRequest, CodeInvalidRequest, "sql is required", nil)
			return
		}
		result, err := web.Databricks.ExecuteStatement(req.Sql)
		if err != nil {
			respondError(log, web, w, http.StatusInternalServerError, CodeQueryFailed, "query execution failed", err)
			return
		}
		respond(log, w, http.StatusOK, map[string]interface{}{"result": result})
	}
}

func GetHandlerAccuWeather(log logger.Logger, web *WebServerConfig) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		opts := databricks.AccuWeatherQueryOptions{}
		for _, key := range []string{"city", "startDate", "endDate", "limit"} {
			if _, ok := singleQueryValue(r, key); !ok {
				respondError(log, web, w, http.StatusBadRequest, CodeInvalidRequest, fmt.Sprintf("%v must be a single value", key), nil)
				return
			}
		}
		opts.City = r.URL.Query().Get("city")
		opts.StartDate = r.URL.Query().Get("startDate")
		opts.EndDate = r.URL.Query().Get("endDate")
		if v := r.URL.Query().Get("limit"); v != "" {
			limit, err := strconv.Atoi(v)
			if err != nil || limit <= 0 {
				respondError(log, web, w, http.StatusBadRequest, CodeInvalidRequest, "limit must be a positive integer", err)
				return
			}
			opts.Limit = limit
		}
		result, err := web.Databricks.QueryAccuWeather(opts)
		if err != nil {
			respondError(log, web, w, http.StatusInternalServerError, CodeAccuWeatherFailed, "weather query failed", err)
			return
		}
		respond(log, w, http.StatusOK, map[string]interface{}{"result": result})
	}
}

func GetHandlerJobRun(log logger.Logger, web *WebServerConfig) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		jobId, err := strconv.ParseInt(mux.Vars(r)["jobId"], 10, 64)
		if err != nil {
			respondError(log, web, w, http.StatusBadRequest, CodeInvalidRequest, "jobId must be numeric", err)
			return
		}
		run, err := web.Databricks.TriggerJobRun(jobId, nil, "")
		if err != nil {
			respondError(log, web, w, http.StatusInternalServerError, CodeJobTriggerFailed, "unable to trigger job run", err)
			return
		}
		respond(log, w, http.StatusOK, run)
	}
}

func GetHandlerJobRunStatus(log logger.Logger, web *WebServerConfig) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		runId, err := strconv.ParseInt(mux.Vars(r)["runId"], 10, 64)
		if err != nil {
			respondError(log, web, w, http.StatusBadRequest, CodeInvalidRequest, "runId must be numeric", err)
			return
		}
		status, err := web.Databricks.GetRunStatus(runId)
		if err != nil {
			respondError(log, web, w, http.StatusInternalServerError, CodeJobStatusFailed, "unable to fetch job run status", err)
			return
		}
		respond(log, w, http.StatusOK, map[string]interface{}{"status": status})
	}
}

func GetHandlerSyncStart(log logger.Logger, web *WebServerConfig) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		req := orchestrator.SyncRequest{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(log, web, w, http.StatusBadRequest, CodeSyncStartFailed, "request body must be JSON", err)
			return
		}
		runId, err := web.Sync.Start(req)
		if err != nil {
			respondError(log, web, w, http.StatusBadRequest, CodeSyncStartFailed, err.Error(), nil)
			return
		}
		respond(log, w, http.StatusAccepted, map[string]string{"runId": runId})
	}
}

func GetHandlerSyncList(log logger.Logger, web *WebServerConfig) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		respond(log, w, http.StatusOK, map[string]interface{}{"runs": web.Sync.ListRuns()})
	}
}

func GetHandlerSyncGet(log logger.Logger, web *WebServerConfig) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		run, ok := web.Sync.GetRun(id)
		if !ok { // if the run doesn't exist...
			respondError(log, web, w, http.StatusNotFound, CodeNotFound, fmt.Sprintf("sync run %v does not exist", id), nil)
			return
		}
		respond(log, w, http.StatusOK, map[string]interface{}{"run": run})
	}
}

// singleQueryValue returns the query parameter value and false when the
// parameter was supplied more than once.
func singleQueryValue(r *http.Request, key string) (string, bool) {
	values := r.URL.Query()[key]
	if len(values) > 1 {
		return "", false
	}
	if len(values) == 0 {
		return "", true
	}
	return values[0], true
}

// respondError logs the cause and writes the error envelope. Details carry
// the underlying error text only outside production deployments.
func respondError(log logger.Logger, web *WebServerConfig, w http.ResponseWriter, httpStatus int, code string, message string, err error) {
	if err != nil {
		log.Error(code, ": ", message, ": ", err)
	} else {
		log.Error(code, ": ", message)
	}
	e := apiError{Code: code, Message: message}
	if err != nil && !web.Production { // if details are safe to expose...
		e.Details = err.Error()
	}
	respond(log, w, httpStatus, errorResponse{Error: e})
}

// respond marshals i and writes it to w with the given status.
func respond(log logger.Logger, w http.ResponseWriter, httpStatus int, i interface{}) {
	j, err := json.MarshalIndent(i, "", "  ")
	if err != nil {
		log.Panic(err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	if _, err = fmt.Fprint(w, string(j)); err != nil {
		log.Error("unable to write response: ", err)
	}
}
