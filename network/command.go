package network

import (
	"context"
	"fmt"
	"github.com/pkg/errors"
)

type Command int

const (
	CheckConnectivity Command = iota
	ListConnections
	ListWiFiNetworks
	Shutdown
	Stop
)

// String returns the action the command performs, as used in error messages.
func (c Command) String() string {
	switch c {
	case CheckConnectivity:
		return "check connectivity"
	case ListConnections:
		return "list connections"
	case ListWiFiNetworks:
		return "list WiFi networks"
	case Shutdown:
		return "shutdown"
	case Stop:
		return "stop"
	default:
		return fmt.Sprintf("command %d", int(c))
	}
}

// Response is the result of a successful command. Its concrete type depends
// on the command that was sent.
type Response interface {
	command() Command
}

type Connectivity struct {
	Connectivity string `json:"connectivity"`
}

type ConnectionList struct {
	Connections []ConnectionDetails `json:"connections"`
}

type NetworkList struct {
	Stations []Station `json:"stations"`
}

type ShutdownAck struct {
	Shutdown string `json:"shutdown"`
}

type StopAck struct {
	Stop string `json:"stop"`
}

func (*Connectivity) command() Command   { return CheckConnectivity }
func (*ConnectionList) command() Command { return ListConnections }
func (*NetworkList) command() Command    { return ListWiFiNetworks }
func (*ShutdownAck) command() Command    { return Shutdown }
func (*StopAck) command() Command        { return Stop }

type result struct {
	response Response
	err      error
}

// CommandRequest is a command together with the channel its single reply
// is delivered on. The channel has room for the reply, so answering never
// blocks even when the sender has gone away.
type CommandRequest struct {
	Command Command
	reply   chan<- result
}

// Sender submits commands to a dispatcher. It is a plain value and may be
// copied and used from any number of goroutines.
type Sender struct {
	requests chan<- *CommandRequest
	done     <-chan struct{}
}

// Send delivers command to the loop and waits for its reply. It fails with
// ErrLoopStopped once the loop has exited.
func (s Sender) Send(ctx context.Context, command Command) (Response, error) {
	reply := make(chan result, 1)

	select {
	case s.requests <- &CommandRequest{Command: command, reply: reply}:
	case <-s.done:
		return nil, errors.WithStack(ErrLoopStopped)
	case <-ctx.Done():
		return nil, errors.Wrap(ctx.Err(), "failed to send command to network loop")
	}

	select {
	case r := <-reply:
		return r.response, r.err
	case <-s.done:
		select {
		case r := <-reply:
			return r.response, r.err
		default:
			return nil, errors.WithStack(ErrLoopStopped)
		}
	case <-ctx.Done():
		return nil, errors.Wrap(ctx.Err(), "failed to receive network loop response")
	}
}
