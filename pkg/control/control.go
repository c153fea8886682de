// Package control sends one-shot commands to a vehicle through the Tessie API.
//
// Commands are never cached or retried here: the gateway retries transport-level failures, and a
// command the vehicle rejects (result false) is reported as a failed [Outcome].
//
// In the default configuration only the horn and lights are live. Other commands answer with a
// fixed "not enabled yet" outcome without contacting the network until [Executor.EnableAll] is
// called.
package control

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/tessiemcp/tessie-mcp/internal/log"
	"github.com/tessiemcp/tessie-mcp/pkg/tessie"
)

// ErrNotEnabled is returned by [Outcome.Err] for commands that are disabled in the current
// configuration.
var ErrNotEnabled = errors.New("control action is not enabled")

// UnknownErrorReason is reported when the vehicle rejects a command without giving a reason.
const UnknownErrorReason = "Unknown error"

//go:generate mockgen -destination=../../mocks/control_commander.go -package=mocks -mock_names=Commander=ControlCommander . Commander

// Commander is the subset of the Tessie API used to issue commands. It is implemented by
// *tessie.Account.
type Commander interface {
	Command(ctx context.Context, vin, endpoint string, params url.Values) (map[string]interface{}, error)
}

// Call performs the API request for a command.
type Call func(ctx context.Context) (map[string]interface{}, error)

// Outcome is the result of a command the vehicle answered.
type Outcome struct {
	Command    Command
	Succeeded  bool
	Reason     string // Set when the vehicle rejected the command.
	NotEnabled bool   // The command was short-circuited and never sent.
}

// Message renders the outcome as a sentence, e.g. "Successfully honked the horn!".
func (o Outcome) Message() string {
	switch {
	case o.NotEnabled:
		return fmt.Sprintf("Control action '%s' is not enabled yet. Control endpoints will ship later this week.", o.Command.Name)
	case o.Succeeded:
		return "Successfully " + o.Command.done + "!"
	}
	return fmt.Sprintf("Failed to %s: %s", o.Command.verb, o.Reason)
}

// Err returns nil for a successful outcome.
func (o Outcome) Err() error {
	switch {
	case o.NotEnabled:
		return fmt.Errorf("%w: %s", ErrNotEnabled, o.Command.Name)
	case o.Succeeded:
		return nil
	}
	return &CommandFailedError{Command: o.Command, Reason: o.Reason}
}

// CommandFailedError indicates the vehicle received a command but refused to carry it out.
type CommandFailedError struct {
	Command Command
	Reason  string
}

func (e *CommandFailedError) Error() string {
	return fmt.Sprintf("Failed to %s: %s", e.Command.verb, e.Reason)
}

// RequestError indicates a command could not be delivered, for example because the API rejected
// the token or kept rate limiting the request.
type RequestError struct {
	Command Command
	Err     error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("Error %s: %s", e.Command.gerund, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// Executor issues commands to one vehicle.
type Executor struct {
	vin       string
	commander Commander
	enableAll bool
	logger    *log.Logger
}

// New returns an Executor in the minimal configuration.
func New(vin string, commander Commander) *Executor {
	return &Executor{
		vin:       vin,
		commander: commander,
		logger:    log.With("component", "control", "vin", tessie.SanitizeVIN(vin)),
	}
}

// EnableAll turns on every command, not just the ones that are live by default.
func (e *Executor) EnableAll() {
	e.enableAll = true
}

// Enabled reports whether cmd will be sent to the vehicle.
func (e *Executor) Enabled(cmd Command) bool {
	return cmd.live || e.enableAll
}

// Execute runs call on behalf of cmd and interprets the response's result and reason fields.
// Disabled commands return a NotEnabled outcome without invoking call. A non-nil error means the
// request itself failed and is always a *RequestError.
func (e *Executor) Execute(ctx context.Context, cmd Command, call Call) (Outcome, error) {
	if !e.Enabled(cmd) {
		e.logger.Debug("Skipping disabled command %s", cmd.Name)
		return Outcome{Command: cmd, NotEnabled: true}, nil
	}
	e.logger.Debug("Executing %s", cmd.Name)
	response, err := call(ctx)
	if err != nil {
		e.logger.Warning("Command %s failed: %s", cmd.Name, err)
		return Outcome{Command: cmd}, &RequestError{Command: cmd, Err: err}
	}
	if succeeded, _ := response["result"].(bool); succeeded {
		return Outcome{Command: cmd, Succeeded: true}, nil
	}
	reason := UnknownErrorReason
	switch r := response["reason"].(type) {
	case string:
		reason = r
	case nil:
	default:
		reason = fmt.Sprint(r)
	}
	e.logger.Warning("Vehicle rejected %s: %s", cmd.Name, reason)
	return Outcome{Command: cmd, Reason: reason}, nil
}

func (e *Executor) send(ctx context.Context, cmd Command, params url.Values) (Outcome, error) {
	return e.Execute(ctx, cmd, func(ctx context.Context) (map[string]interface{}, error) {
		return e.commander.Command(ctx, e.vin, cmd.endpoint, params)
	})
}

func (e *Executor) HonkHorn(ctx context.Context) (Outcome, error) {
	return e.send(ctx, HonkHorn, nil)
}

func (e *Executor) FlashLights(ctx context.Context) (Outcome, error) {
	return e.send(ctx, FlashLights, nil)
}

func (e *Executor) LockDoors(ctx context.Context) (Outcome, error) {
	return e.send(ctx, LockDoors, nil)
}

func (e *Executor) UnlockDoors(ctx context.Context) (Outcome, error) {
	return e.send(ctx, UnlockDoors, nil)
}

func (e *Executor) StartClimate(ctx context.Context) (Outcome, error) {
	return e.send(ctx, StartClimate, nil)
}

func (e *Executor) StopClimate(ctx context.Context) (Outcome, error) {
	return e.send(ctx, StopClimate, nil)
}

// SetTemperature sets the driver and passenger cabin temperature. If waitForCompletion is true,
// the API answers only after the vehicle has applied the setting.
func (e *Executor) SetTemperature(ctx context.Context, celsius float64, waitForCompletion bool) (Outcome, error) {
	return e.send(ctx, SetTemperature, tessie.SetTemperatureParams(celsius, waitForCompletion))
}
