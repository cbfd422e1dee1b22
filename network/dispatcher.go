package network

import (
	"context"
	"github.com/pkg/errors"
)

type DispatcherConfig struct {
	Manager *Manager
	Gateway Gateway
	Logger  Logger
}

type replyFunc func(Response, error)

// Dispatcher owns the network State. All reads and writes of the state
// happen on the goroutine running Run. Commands that need to call into
// NetworkManager do so from a helper goroutine and continue on the loop
// once the call returns, so a slow command never holds up the next one.
type Dispatcher struct {
	manager  *Manager
	gateway  Gateway
	log      Logger
	requests chan *CommandRequest
	tasks    chan func()
	done     chan struct{}

	// owned by the loop
	state       *State
	stopWaiters []replyFunc
}

func NewDispatcher(config *DispatcherConfig) *Dispatcher {
	d := &Dispatcher{
		manager:  config.Manager,
		gateway:  config.Gateway,
		requests: make(chan *CommandRequest),
		tasks:    make(chan func(), 16),
		done:     make(chan struct{}),
	}

	if config.Logger != nil {
		d.log = config.Logger
	} else {
		d.log = noopLogger{}
	}

	return d
}

// Sender returns a handle for submitting commands to this dispatcher.
func (d *Dispatcher) Sender() Sender {
	return Sender{requests: d.requests, done: d.done}
}

// Run is the dispatcher loop. It returns when ctx is done; work already
// handed to NetworkManager is not cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	defer close(d.done)

	for {
		select {
		case <-ctx.Done():
			return
		case req := <-d.requests:
			d.dispatch(req)
		case task := <-d.tasks:
			task()
		}
	}
}

// Initialize runs the manager's startup sequence and hands the resulting
// state to the loop. It blocks until startup has finished.
func (d *Dispatcher) Initialize(ctx context.Context) error {
	initialized := make(chan error, 1)

	var state *State
	var err error

	d.spawn(func() {
		state, err = d.manager.Start(ctx)
	}, func() {
		if err == nil {
			d.state = state
			d.log.Infof("Network initialized")
		}

		initialized <- err
	})

	select {
	case err := <-initialized:
		return err
	case <-d.done:
		return errors.Wrap(ErrLoopStopped, "failed to initialize network")
	}
}

// spawn runs work off the loop and then schedules then on the loop.
func (d *Dispatcher) spawn(work func(), then func()) {
	go func() {
		work()

		select {
		case d.tasks <- then:
		case <-d.done:
		}
	}()
}

func (d *Dispatcher) dispatch(req *CommandRequest) {
	d.log.Debugf("Received command to %v", req.Command)

	command := req.Command
	reply := func(response Response, err error) {
		if err != nil {
			d.log.Debugf("Could not %v: %v", command, err)
		}

		req.reply <- result{response: response, err: err}
	}

	if d.state == nil {
		reply(nil, errors.WithStack(ErrStateNotInitialized))
		return
	}

	switch command {
	case CheckConnectivity:
		d.checkConnectivity(reply)
	case ListConnections:
		d.listConnections(reply)
	case ListWiFiNetworks:
		d.listWiFiNetworks(reply)
	case Shutdown:
		reply(&ShutdownAck{Shutdown: "ok"}, nil)
	case Stop:
		d.stop(reply)
	default:
		reply(nil, errors.Errorf("unknown command %v", command))
	}
}

func (d *Dispatcher) checkConnectivity(reply replyFunc) {
	client := d.state.client

	var connectivity string
	var err error

	d.spawn(func() {
		connectivity, err = d.gateway.CheckConnectivity(client)
	}, func() {
		if err != nil {
			reply(nil, &UpstreamError{Action: CheckConnectivity.String(), Err: err})
			return
		}

		reply(&Connectivity{Connectivity: connectivity}, nil)
	})
}

func (d *Dispatcher) listConnections(reply replyFunc) {
	client := d.state.client

	list := &ConnectionList{Connections: []ConnectionDetails{}}
	var err error

	d.spawn(func() {
		connections, e := d.gateway.ListConnections(client)
		if e != nil {
			err = e
			return
		}

		for _, connection := range connections {
			id, ok := connection.Settings.ID()
			if !ok {
				continue
			}

			uuid, ok := connection.Settings.UUID()
			if !ok {
				continue
			}

			list.Connections = append(list.Connections, ConnectionDetails{ID: id, UUID: uuid})
		}
	}, func() {
		if err != nil {
			reply(nil, &UpstreamError{Action: ListConnections.String(), Err: err})
			return
		}

		reply(list, nil)
	})
}

func (d *Dispatcher) listWiFiNetworks(reply replyFunc) {
	stations := make([]Station, len(d.state.stations))
	copy(stations, d.state.stations)

	reply(&NetworkList{Stations: stations}, nil)
}

// stop tears the portal down. Stops that arrive while a teardown is already
// running wait for it and share its outcome.
func (d *Dispatcher) stop(reply replyFunc) {
	portal := d.state.portal
	if portal == nil {
		reply(&StopAck{Stop: "ok"}, nil)
		return
	}

	d.stopWaiters = append(d.stopWaiters, reply)
	if len(d.stopWaiters) > 1 {
		d.log.Debugf("Portal teardown already in progress")
		return
	}

	client := d.state.client

	var err error

	d.spawn(func() {
		err = d.manager.StopPortal(client, portal)
	}, func() {
		if err == nil && d.state.portal == portal {
			d.state.portal = nil
		}

		waiters := d.stopWaiters
		d.stopWaiters = nil

		for _, waiter := range waiters {
			if err != nil {
				waiter(nil, &UpstreamError{Action: Stop.String(), Err: err})
			} else {
				waiter(&StopAck{Stop: "ok"}, nil)
			}
		}
	})
}
