package actions

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/relloyd/ctadmin/constants"
	"github.com/relloyd/ctadmin/helper"
	"github.com/relloyd/ctadmin/logger"
)

type WebServerConfig struct {
	LogLevel         string `errorTxt:"log level" mandatory:"yes"`
	Scheme           string `errorTxt:"scheme" mandatory:"no"`
	Addr             net.IP `errorTxt:"address" mandatory:"no"`
	Port             int    `errorTxt:"port" mandatory:"no"`
	Tracking         TrackingConfig
	EnsureSchema     bool
	StackDumpOnPanic bool
}

func RunWebServer(web *WebServerConfig) error {
	// Setup logging.
	if web == nil {
		return errors.New("nil pointer to web server config supplied")
	}
	log := logger.NewLogger(constants.ServiceName, web.LogLevel, web.StackDumpOnPanic)
	// Check if we have valid input params.
	err := helper.ValidateStructIsPopulated(web)
	if err != nil {
		return err
	}
	s, err := newProjectStore(log, &web.Tracking)
	if err != nil {
		return err
	}
	if web.EnsureSchema {
		if err = s.EnsureSchema(context.Background()); err != nil {
			return err
		}
	}
	// Start the web server.
	srv, chanStopServer := runServer(log, web, s)
	// Block & wait for completion.
	return waitForServer(log, srv, chanStopServer)
}

// newRouter returns the routes served by the web server.
// Requests to chanStopServer stop the server.
func newRouter(log logger.Logger, s ProjectStore, chanStopServer chan string) *mux.Router {
	r := mux.NewRouter()
	r.Use(requestIdMiddleware(log))
	r.HandleFunc("/stop", GetHandlerStopServer(log, chanStopServer)).Methods(http.MethodPost)
	r.Path("/health").HandlerFunc(GetHandlerHealth(log))
	r.Path("/api/connections").Methods(http.MethodGet).HandlerFunc(GetHandlerConnectionList(log, s))
	r.Path("/api/databases").Methods(http.MethodGet).HandlerFunc(GetHandlerDatabaseList(log, s))
	r.Path("/projects").Methods(http.MethodGet).HandlerFunc(GetHandlerProjectList(log, s))
	r.Path("/projects").Methods(http.MethodPost).HandlerFunc(GetHandlerProjectCreate(log, s))
	r.Path("/projects/{projectId}").Methods(http.MethodGet).HandlerFunc(GetHandlerProjectGet(log, s))
	r.Path("/projects/{projectId}").Methods(http.MethodPut).HandlerFunc(GetHandlerProjectUpdate(log, s))
	r.Path("/projects/{projectId}").Methods(http.MethodDelete).HandlerFunc(GetHandlerProjectDelete(log, s))
	r.Path("/projects/{projectId}/tables").Methods(http.MethodGet).HandlerFunc(GetHandlerTableList(log, s))
	r.Path("/fetch_data").Methods(http.MethodGet, http.MethodPost).HandlerFunc(GetHandlerFetchData(log, s))
	r.Path("/update_data_is_load").Methods(http.MethodPost).HandlerFunc(GetHandlerUpdateDataIsLoad(log, s))
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondWithStatus(log, w, http.StatusNotFound, ResponseError{Status: Error, Message: "not found"})
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondWithStatus(log, w, http.StatusMethodNotAllowed, ResponseError{Status: Error, Message: "method not allowed"})
	})
	return r
}

// runServer starts a web server and returns:
// 1) the server; and
// 2) a channel that can be used to stop the web server
func runServer(log logger.Logger, web *WebServerConfig, s ProjectStore) (*http.Server, chan string) {
	chanStopServer := make(chan string, 1)
	// Configure HTTP server.
	srv := &http.Server{ // Good practice to set timeouts to avoid Slowloris attacks.
		Addr:         fmt.Sprintf("%v:%v", web.Addr, web.Port),
		WriteTimeout: time.Second * 60, // sync waits on the source catalog.
		ReadTimeout:  time.Second * 15,
		IdleTimeout:  time.Second * 60,
		Handler:      newRouter(log, s, chanStopServer), // supply our instance of gorilla/mux.
	}
	// Run HTTP server non-blocking.
	go func() {
		if err := srv.ListenAndServe(); err != nil {
			if err == http.ErrServerClosed {
				log.Info(err)
			} else {
				log.Error(err)
				select {
				case chanStopServer <- "error":
				default:
				}
			}
		}
	}()
	log.Info(fmt.Sprintf("Listening on %v://%v:%v", strings.ToLower(web.Scheme), web.Addr, web.Port))
	return srv, chanStopServer
}

func waitForServer(log logger.Logger, srv *http.Server, chanStopServer chan string) error {
	// Block & wait for shutdown signals.
	// Accept graceful shutdowns when quit via SIGINT (Ctrl+C)
	// SIGKILL, SIGQUIT or SIGTERM (Ctrl+\) will not be caught.
	chanOS := make(chan os.Signal, 1)
	signal.Notify(chanOS, os.Interrupt) // request signals be sent to chanOS.
	defer signal.Stop(chanOS)
	select {
	case <-chanStopServer:
	case <-chanOS:
		fmt.Println() // print new line char for clean looking CLI.
	}
	log.Info("Shutting down web server...")
	wait := time.Second * 15                                       // duration
	ctx, cancel := context.WithTimeout(context.Background(), wait) // create a timeout to wait for.
	defer cancel()                                                 // cancel the timeout.
	err := srv.Shutdown(ctx)                                       // Doesn't block if no connections, but will otherwise wait until the timeout deadline.
	return err
}
