package tools

import (
	"context"

	"github.com/tessiemcp/tessie-mcp/pkg/control"
)

// outcomeText turns a command outcome into a tool result. Rejected commands are errors so that the
// protocol layer flags them; a disabled command is an ordinary answer.
func outcomeText(outcome control.Outcome, err error) (string, error) {
	if err != nil {
		return "", err
	}
	if outcome.Succeeded || outcome.NotEnabled {
		return outcome.Message(), nil
	}
	return "", outcome.Err()
}

func command(run func(context.Context) (control.Outcome, error)) Handler {
	return func(ctx context.Context, _ Arguments) (string, error) {
		return outcomeText(run(ctx))
	}
}

func controlHandlers(e *control.Executor) map[string]Handler {
	return map[string]Handler{
		LockDoors:    command(e.LockDoors),
		UnlockDoors:  command(e.UnlockDoors),
		HonkHorn:     command(e.HonkHorn),
		FlashLights:  command(e.FlashLights),
		StartClimate: command(e.StartClimate),
		StopClimate:  command(e.StopClimate),
		SetTemperature: func(ctx context.Context, args Arguments) (string, error) {
			celsius, err := args.Number(SetTemperature, ArgTemperature)
			if err != nil {
				return "", err
			}
			wait, err := args.OptionalBool(SetTemperature, ArgWaitForCompletion, false)
			if err != nil {
				return "", err
			}
			return outcomeText(e.SetTemperature(ctx, celsius, wait))
		},
	}
}
