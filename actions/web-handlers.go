package actions

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/relloyd/ctadmin/helper"
	"github.com/relloyd/ctadmin/logger"
	"github.com/relloyd/ctadmin/tracking"
)

const maxRequestBodyBytes = 1 << 20

type WebServerResponse uint32

const (
	Okay WebServerResponse = iota + 1
	Error
	Success
)

func (w WebServerResponse) MarshalJSON() ([]byte, error) {
	var retval string
	switch w {
	case Okay:
		retval = "ok"
	case Error:
		retval = "error"
	case Success:
		retval = "success"
	default:
		err := fmt.Errorf("unhandled WebServerResponse value in MarshalJSON() conversion")
		return nil, err
	}
	return json.Marshal(retval)
}

type ResponseSimple struct {
	ServerStatus WebServerResponse `json:"status"`
}

type ResponseError struct {
	Status  WebServerResponse `json:"status"`
	Message string            `json:"message"`
}

type ResponseConnections struct {
	Status      WebServerResponse `json:"status"`
	Connections []string          `json:"connections"`
}

type ResponseDatabases struct {
	Status    WebServerResponse `json:"status"`
	Databases []string          `json:"databases"`
}

type ResponseProjects struct {
	Status   WebServerResponse  `json:"status"`
	Projects []tracking.Project `json:"projects"`
}

type ResponseProject struct {
	Status  WebServerResponse `json:"status"`
	Project tracking.Project  `json:"project"`
}

type ResponseProjectDelete struct {
	Status    WebServerResponse `json:"status"`
	ProjectId string            `json:"ct_project_id"`
}

type ResponseTables struct {
	Status WebServerResponse       `json:"status"`
	Tables []tracking.TrackedTable `json:"tables"`
}

// ResponseFetchData is the result of a sync: all tables of the project as rows keyed by column name.
type ResponseFetchData struct {
	Status   WebServerResponse       `json:"status"`
	Columns  []string                `json:"columns"`
	Results  []tracking.TrackedTable `json:"results"`
	Inserted int                     `json:"inserted"`
	Skipped  int                     `json:"skipped"`
	Failed   int                     `json:"failed"`
}

// fetchDataRequest holds the parameters of /fetch_data.
// The camel case fields are accepted for callers using the older names.
type fetchDataRequest struct {
	Connection             string `json:"connection"`
	SourceDatabase         string `json:"source_database"`
	SourceDatabaseCamel    string `json:"sourceDatabase"`
	ProjectId              string `json:"project_id"`
	ProjectIdentifierCamel string `json:"projectIdentifier"`
}

type fieldChange struct {
	Field    string      `json:"field"`
	NewValue interface{} `json:"newValue"`
}

type tableChanges struct {
	TableName string        `json:"table_name"`
	Changes   []fieldChange `json:"changes"`
}

type updateDataRequest struct {
	ProjectId string         `json:"project_id"`
	Data      []tableChanges `json:"data"`
}

func GetHandlerHealth(log logger.Logger) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		respondWithStatus(requestLogger(r, log), w, http.StatusOK, ResponseSimple{ServerStatus: Okay})
	}
}

func GetHandlerStopServer(log logger.Logger, chanStop chan string) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		l := requestLogger(r, log)
		select {
		case chanStop <- "stop":
			l.Info("Stop signal sent")
		default:
			l.Info("Stop signal already pending")
		}
		respondWithStatus(l, w, http.StatusOK, ResponseSimple{ServerStatus: Okay})
	}
}

func GetHandlerConnectionList(log logger.Logger, s ProjectStore) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		l := requestLogger(r, log)
		c, err := s.Registry().ListConnections(r.URL.Query().Get("database_type"))
		if err != nil {
			logAndRespond(l, err, w)
			return
		}
		if c == nil {
			c = make([]string, 0)
		}
		respondWithStatus(l, w, http.StatusOK, ResponseConnections{Status: Success, Connections: c})
	}
}

func GetHandlerDatabaseList(log logger.Logger, s ProjectStore) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		l := requestLogger(r, log)
		conn := r.URL.Query().Get("connection")
		if conn == "" {
			logAndRespond(l, validationError("list databases", "no connection selected"), w)
			return
		}
		d, err := s.ListDatabases(r.Context(), conn)
		if err != nil {
			logAndRespond(l, err, w)
			return
		}
		respondWithStatus(l, w, http.StatusOK, ResponseDatabases{Status: Success, Databases: d})
	}
}

func GetHandlerProjectList(log logger.Logger, s ProjectStore) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		l := requestLogger(r, log)
		p, err := s.ListOrdered(r.Context())
		if err != nil {
			logAndRespond(l, err, w)
			return
		}
		respondWithStatus(l, w, http.StatusOK, ResponseProjects{Status: Okay, Projects: p})
	}
}

func GetHandlerProjectCreate(log logger.Logger, s ProjectStore) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		l := requestLogger(r, log)
		p := tracking.Project{}
		if err := decodeBody(r, &p); err != nil {
			logAndRespond(l, err, w)
			return
		}
		if err := s.Create(r.Context(), p); err != nil {
			logAndRespond(l, err, w)
			return
		}
		l.WithFields(map[string]interface{}{"project": p.ID}).Info("project created")
		respondWithStatus(l, w, http.StatusCreated, ResponseProject{Status: Okay, Project: p})
	}
}

func GetHandlerProjectGet(log logger.Logger, s ProjectStore) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		l := requestLogger(r, log)
		p, err := s.Get(r.Context(), mux.Vars(r)["projectId"])
		if err != nil {
			logAndRespond(l, err, w)
			return
		}
		respondWithStatus(l, w, http.StatusOK, ResponseProject{Status: Okay, Project: p})
	}
}

// GetHandlerProjectUpdate rewrites the project named in the URL with the body.
// The body may carry a new project id.
func GetHandlerProjectUpdate(log logger.Logger, s ProjectStore) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		l := requestLogger(r, log)
		id := mux.Vars(r)["projectId"]
		p := tracking.Project{}
		if err := decodeBody(r, &p); err != nil {
			logAndRespond(l, err, w)
			return
		}
		if p.ID == "" {
			p.ID = id
		}
		if err := s.Update(r.Context(), id, p); err != nil {
			logAndRespond(l, err, w)
			return
		}
		l.WithFields(map[string]interface{}{"project": id, "newProject": p.ID}).Info("project updated")
		respondWithStatus(l, w, http.StatusOK, ResponseProject{Status: Okay, Project: p})
	}
}

func GetHandlerProjectDelete(log logger.Logger, s ProjectStore) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		l := requestLogger(r, log)
		id := mux.Vars(r)["projectId"]
		opts := tracking.DeleteOptions{}
		if v := r.URL.Query().Get("cascade"); v != "" {
			b, err := helper.ParseBool(v)
			if err != nil {
				logAndRespond(l, validationError("delete project", err.Error()), w)
				return
			}
			opts.Cascade = b
		}
		if err := s.Delete(r.Context(), id, opts); err != nil {
			logAndRespond(l, err, w)
			return
		}
		l.WithFields(map[string]interface{}{"project": id, "cascade": opts.Cascade}).Info("project deleted")
		respondWithStatus(l, w, http.StatusOK, ResponseProjectDelete{Status: Okay, ProjectId: id})
	}
}

func GetHandlerTableList(log logger.Logger, s ProjectStore) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		l := requestLogger(r, log)
		t, err := s.ListTables(r.Context(), mux.Vars(r)["projectId"])
		if err != nil {
			logAndRespond(l, err, w)
			return
		}
		respondWithStatus(l, w, http.StatusOK, ResponseTables{Status: Okay, Tables: t})
	}
}

// GetHandlerFetchData discovers the tables of a source database, registers them under a project and responds with
// every table of the project.
// Parameters are read from the query string and, for POST, a JSON body.
// When only a project id is given the project's source connection and database are used.
func GetHandlerFetchData(log logger.Logger, s ProjectStore) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "fetch data"
		l := requestLogger(r, log)
		req, err := getFetchDataRequest(r)
		if err != nil {
			logAndRespond(l, err, w)
			return
		}
		if req.ProjectId == "" {
			logAndRespond(l, validationError(op, "no project selected"), w)
			return
		}
		res, err := syncProject(r.Context(), s, req.ProjectId, req.Connection, req.SourceDatabase)
		if err != nil {
			logAndRespond(l, err, w)
			return
		}
		respondWithStatus(l, w, http.StatusOK, ResponseFetchData{
			Status:   Success,
			Columns:  res.Columns(),
			Results:  res.Tables,
			Inserted: res.Inserted,
			Skipped:  res.Skipped,
			Failed:   res.Failed,
		})
	}
}

// GetHandlerUpdateDataIsLoad applies field changes to tracked tables in one transaction.
// The body is either {"project_id": "...", "data": [...]} or the bare data array.
func GetHandlerUpdateDataIsLoad(log logger.Logger, s ProjectStore) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		l := requestLogger(r, log)
		req, err := getUpdateDataRequest(r)
		if err != nil {
			logAndRespond(l, err, w)
			return
		}
		updates := make([]tracking.FieldUpdate, 0)
		for _, t := range req.Data {
			for _, c := range t.Changes {
				updates = append(updates, tracking.FieldUpdate{TableName: t.TableName, Field: c.Field, NewValue: c.NewValue})
			}
		}
		if len(updates) == 0 {
			logAndRespond(l, validationError("update tables", "no data provided"), w)
			return
		}
		if err := s.ApplyFieldUpdates(r.Context(), req.ProjectId, updates); err != nil {
			logAndRespond(l, err, w)
			return
		}
		respondWithStatus(l, w, http.StatusOK, ResponseSimple{ServerStatus: Success})
	}
}

func getFetchDataRequest(r *http.Request) (*fetchDataRequest, error) {
	req := &fetchDataRequest{}
	if r.Method == http.MethodPost && r.ContentLength != 0 {
		if err := decodeBody(r, req); err != nil {
			return nil, err
		}
	}
	q := r.URL.Query()
	for _, v := range []struct {
		dst  *string
		keys []string
	}{
		{&req.Connection, []string{"connection"}},
		{&req.SourceDatabase, []string{"source_database", "sourceDatabase"}},
		{&req.ProjectId, []string{"project_id", "projectIdentifier"}},
	} {
		for _, k := range v.keys {
			if *v.dst == "" {
				*v.dst = strings.TrimSpace(q.Get(k))
			}
		}
	}
	if req.SourceDatabase == "" {
		req.SourceDatabase = req.SourceDatabaseCamel
	}
	if req.ProjectId == "" {
		req.ProjectId = req.ProjectIdentifierCamel
	}
	return req, nil
}

func getUpdateDataRequest(r *http.Request) (*updateDataRequest, error) {
	const op = "update tables"
	b, err := ioutil.ReadAll(http.MaxBytesReader(nil, r.Body, maxRequestBodyBytes))
	if err != nil {
		return nil, validationError(op, fmt.Sprintf("error reading request body: %v", err))
	}
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return nil, validationError(op, "no data provided")
	}
	req := &updateDataRequest{}
	if b[0] == '[' {
		err = json.Unmarshal(b, &req.Data)
	} else {
		err = json.Unmarshal(b, req)
	}
	if err != nil {
		return nil, validationError(op, fmt.Sprintf("error unmarshalling JSON: %v", err))
	}
	if req.ProjectId == "" {
		req.ProjectId = r.URL.Query().Get("project_id")
	}
	return req, nil
}

// decodeBody unmarshals the JSON request body into out.
func decodeBody(r *http.Request, out interface{}) error {
	b, err := ioutil.ReadAll(http.MaxBytesReader(nil, r.Body, maxRequestBodyBytes))
	if err != nil {
		return validationError("read request", fmt.Sprintf("error reading request body: %v", err))
	}
	if err := json.Unmarshal(b, out); err != nil {
		return validationError("read request", fmt.Sprintf("error unmarshalling JSON: %v", err))
	}
	return nil
}

func validationError(op string, msg string) error {
	return &tracking.Error{Kind: tracking.ValidationError, Op: op, Err: errors.New(msg)}
}

// statusForError maps the kind of err to an HTTP status code.
func statusForError(err error) int {
	switch tracking.KindOf(err) {
	case tracking.ValidationError, tracking.InvalidColumn:
		return http.StatusBadRequest
	case tracking.NotFound:
		return http.StatusNotFound
	case tracking.DuplicateKey:
		return http.StatusConflict
	case tracking.SourceUnavailable:
		return http.StatusBadGateway
	case tracking.TrackingStoreUnavailable:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// logAndRespond will log the error and write the status code for it plus an error response to w.
func logAndRespond(log logger.Logger, err error, w http.ResponseWriter) {
	status := statusForError(err)
	l := log.WithFields(map[string]interface{}{"status": status, "kind": tracking.KindOf(err).String()})
	if status >= http.StatusInternalServerError {
		l.Error(err)
	} else {
		l.Info(err)
	}
	respondWithStatus(log, w, status, ResponseError{Status: Error, Message: err.Error()})
}

// respondWithStatus writes the JSON content type and status code before the body.
func respondWithStatus(log logger.Logger, w http.ResponseWriter, status int, i interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	respond(log, w, i)
}

// respond will marshal i to a string and write it to w.
func respond(log logger.Logger, w http.ResponseWriter, i interface{}) {
	j, err := json.MarshalIndent(i, "", "  ")
	if err != nil {
		log.Error(err)
		return
	}
	_, err = fmt.Fprint(w, string(j))
	if err != nil {
		log.Error(err)
	}
}
