package farmware

import (
	"log"

	"github.com/ironleaf-farm/farmcore/internal/farmproc"
)

// HyperSignal names the two out-of-band hyper calls of spec.md §6.
type HyperSignal string

const (
	HyperEmergencyLock   HyperSignal = "emergency_lock"
	HyperEmergencyUnlock HyperSignal = "emergency_unlock"
)

// HyperIOLayer is the external collaborator contract for hyper calls:
// `hyper_io_layer(:emergency_lock | :emergency_unlock) -> any`, invoked
// synchronously from the supervisor (spec.md §6).
type HyperIOLayer func(signal HyperSignal) (any, error)

// NoopHyperIO is the default hyper I/O layer: it has no physical
// firmware to signal, so it just logs, matching the teacher's stdlib
// `log` usage (internal/extensibility/actionrunner.go's LoggingActionRunner)
// rather than pulling in a structured logging library the teacher itself
// never reaches for.
func NoopHyperIO(signal HyperSignal) (any, error) {
	log.Printf("farmware: hyper signal %s", signal)
	return nil, nil
}

// NoopProcessIO is the default process_io_layer: it logs the instruction
// it was handed and reports success. Real deployments substitute a
// callback that actually drives the robot's firmware.
func NoopProcessIO(instr farmproc.Instruction) (any, error) {
	log.Printf("farmware: step %s %v", instr.Kind, instr.Args)
	return nil, nil
}
