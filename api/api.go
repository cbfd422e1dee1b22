package api

import (
	"context"
	"github.com/go-errors/errors"
	"github.com/gorilla/mux"
	"github.com/the-lightning-land/portald/network"
	"net"
	"net/http"
	"sync"
)

// Commander submits a command to the network loop and waits for its reply.
type Commander interface {
	Send(ctx context.Context, command network.Command) (network.Response, error)
}

type Config struct {
	Commander Commander
	Log       Logger
}

type Api struct {
	commander    Commander
	router       *mux.Router
	server       *http.Server
	log          Logger
	shutdown     chan struct{}
	shutdownOnce sync.Once
}

func New(config *Config) *Api {
	api := &Api{
		commander: config.Commander,
		router:    mux.NewRouter(),
		shutdown:  make(chan struct{}),
	}

	if config.Log != nil {
		api.log = config.Log
	} else {
		api.log = noopLogger{}
	}

	api.router.Use(api.logRequests)

	api.router.Handle("/", api.handleUsage()).Methods(http.MethodGet)
	api.router.Handle("/check-connectivity", api.handleCommand(network.CheckConnectivity)).Methods(http.MethodGet)
	api.router.Handle("/list-connections", api.handleCommand(network.ListConnections)).Methods(http.MethodGet)
	api.router.Handle("/list-wifi-networks", api.handleCommand(network.ListWiFiNetworks)).Methods(http.MethodGet)
	api.router.Handle("/shutdown", api.handleShutdown()).Methods(http.MethodGet)
	api.router.Handle("/stop", api.handleCommand(network.Stop)).Methods(http.MethodGet)

	api.server = &http.Server{Handler: api.router}

	return api
}

func (a *Api) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// ShutdownRequested is closed once a client has asked the daemon to shut down.
func (a *Api) ShutdownRequested() <-chan struct{} {
	return a.shutdown
}

func (a *Api) requestShutdown() {
	a.shutdownOnce.Do(func() {
		a.log.Infof("Shutdown requested through the api")
		close(a.shutdown)
	})
}

// Serve accepts connections on l until Shutdown is called.
func (a *Api) Serve(l net.Listener) error {
	err := a.server.Serve(l)
	if err != nil && err != http.ErrServerClosed {
		return errors.Errorf("Unable to serve api: %v", err)
	}

	return nil
}

// Shutdown stops accepting connections and waits for active requests to finish.
func (a *Api) Shutdown(ctx context.Context) error {
	err := a.server.Shutdown(ctx)
	if err != nil {
		return errors.Errorf("Unable to shut down api: %v", err)
	}

	return nil
}

func (a *Api) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a.log.Debugf("%s %s from %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
	})
}
