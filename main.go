package main

import (
	"context"
	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/the-lightning-land/portald/api"
	"github.com/the-lightning-land/portald/network"
	"github.com/the-lightning-land/portald/nm"
	"golang.org/x/sys/unix"
	"net"
	"os"
	"os/signal"
	"time"
)

var (
	// Commit stores the current commit hash of this build. This should be set using -ldflags during compilation.
	Commit string
	// Version stores the version string of this build. This should be set using -ldflags during compilation.
	Version string
	// Date stores the date of this build. This should be set using -ldflags during compilation.
	Date string
)

const apiShutdownTimeout = 5 * time.Second

// portaldMain is the true entry point for portald. This is required since defers
// created in the top-level scope of a main method aren't executed if os.Exit() is called.
func portaldMain() error {
	log.SetOutput(os.Stdout)
	log.SetLevel(log.InfoLevel)

	// Load configuration from defaults, environment and command line
	cfg, err := loadConfig(os.Args[1:])
	if e, ok := err.(*flags.Error); ok && e.Type == flags.ErrHelp {
		return nil
	} else if err != nil {
		return errors.Errorf("Failed parsing arguments: %v", err)
	}

	// Set logger into debug mode if called with --debug
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
		log.Info("Setting debug mode.")
	}

	log.Debug("Loaded config.")

	// Print version of the daemon
	log.Infof("Version %s (commit %s)", Version, Commit)
	log.Infof("Built on %s", Date)

	// Stop here if only version was requested
	if cfg.ShowVersion {
		return nil
	}

	gateway := nm.New(&nm.Config{
		Logger: log.WithField("system", "nm"),
	})

	manager := network.NewManager(&network.ManagerConfig{
		Gateway:    gateway,
		SSID:       cfg.SSID,
		Passphrase: cfg.Passphrase,
		Address:    cfg.Gateway,
		Interface:  cfg.Interface,
		Logger:     log.WithField("system", "network"),
	})

	dispatcher := network.NewDispatcher(&network.DispatcherConfig{
		Manager: manager,
		Gateway: gateway,
		Logger:  log.WithField("system", "network"),
	})

	// The loop owns the network state for the lifetime of the process
	go dispatcher.Run(context.Background())

	log.Infof("Starting captive portal %v...", cfg.SSID)

	err = dispatcher.Initialize(context.Background())
	if err != nil {
		for _, line := range network.ErrorChain(err) {
			log.Error(line)
		}

		phase := manager.Phase()

		var startupErr *network.StartupError
		if errors.As(err, &startupErr) {
			phase = startupErr.Phase
		}

		return errors.Wrapf(err, "Could not initialize network after phase %v", phase)
	}

	log.Infof("Captive portal %v is up", cfg.SSID)

	sender := dispatcher.Sender()

	a := api.New(&api.Config{
		Commander: sender,
		Log:       log.WithField("system", "api"),
	})

	listener, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		return errors.Errorf("Could not listen on %v: %v", cfg.Listen, err)
	}

	served := make(chan error, 1)

	go func() {
		log.Infof("Listening on %v", listener.Addr())
		served <- a.Serve(listener)
	}()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, unix.SIGINT, unix.SIGTERM, unix.SIGQUIT, unix.SIGHUP)
	defer signal.Stop(signals)

	// Blocks until asked to shut down through a signal or the api
	select {
	case sig := <-signals:
		log.Infof("Received %v, shutting down...", sig)
	case <-a.ShutdownRequested():
		log.Info("Shutting down...")
	case err := <-served:
		if err != nil {
			return errors.Wrap(err, "Api stopped")
		}
	}

	// Take the portal down before the process exits
	_, err = sender.Send(context.Background(), network.Stop)
	if err != nil {
		log.WithError(err).Error("Could not stop captive portal.")
	} else {
		log.Info("Stopped captive portal.")
	}

	ctx, cancel := context.WithTimeout(context.Background(), apiShutdownTimeout)
	defer cancel()

	err = a.Shutdown(ctx)
	if err != nil {
		log.Errorf("Could not properly shut down api: %v", err)
	} else {
		log.Info("Stopped api.")
	}

	log.Info("Quit.")

	// finish with no error
	return nil
}

func main() {
	// Call the "real" main in a nested manner so the defers will properly
	// be executed in the case of a graceful shutdown.
	if err := portaldMain(); err != nil {
		log.WithError(err).Println("Failed running portald.")
		os.Exit(1)
	}
}
