package control

import "github.com/tessiemcp/tessie-mcp/pkg/tessie"

// Command describes a control action.
type Command struct {
	Name     string
	endpoint string
	live     bool // Enabled in the minimal configuration.

	// Phrases used to build messages: "Successfully <done>!", "Failed to <verb>: ...",
	// "Error <gerund>: ...".
	done   string
	verb   string
	gerund string
}

var (
	HonkHorn = Command{
		Name:     "honk_horn",
		endpoint: tessie.EndpointCommandHonk,
		live:     true,
		done:     "honked the horn",
		verb:     "honk horn",
		gerund:   "honking horn",
	}
	FlashLights = Command{
		Name:     "flash_lights",
		endpoint: tessie.EndpointCommandFlash,
		live:     true,
		done:     "flashed the lights",
		verb:     "flash lights",
		gerund:   "flashing lights",
	}
	LockDoors = Command{
		Name:     "lock_doors",
		endpoint: tessie.EndpointCommandLock,
		done:     "locked the doors",
		verb:     "lock doors",
		gerund:   "locking doors",
	}
	UnlockDoors = Command{
		Name:     "unlock_doors",
		endpoint: tessie.EndpointCommandUnlock,
		done:     "unlocked the doors",
		verb:     "unlock doors",
		gerund:   "unlocking doors",
	}
	StartClimate = Command{
		Name:     "start_climate",
		endpoint: tessie.EndpointCommandStartAC,
		done:     "started climate control",
		verb:     "start climate",
		gerund:   "starting climate",
	}
	StopClimate = Command{
		Name:     "stop_climate",
		endpoint: tessie.EndpointCommandStopAC,
		done:     "stopped climate control",
		verb:     "stop climate",
		gerund:   "stopping climate",
	}
	SetTemperature = Command{
		Name:     "set_temperature",
		endpoint: tessie.EndpointCommandSetTemp,
		done:     "set the cabin temperature",
		verb:     "set temperature",
		gerund:   "setting temperature",
	}
)

// Commands lists every command in tool order.
var Commands = []Command{LockDoors, UnlockDoors, HonkHorn, FlashLights, StartClimate, StopClimate, SetTemperature}
