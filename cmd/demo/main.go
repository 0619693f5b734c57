// Command demo runs a Supervisor with several concurrent farm processes and
// prints a telemetry snapshot every second until interrupted.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ironleaf-farm/farmcore/builder"
	"github.com/ironleaf-farm/farmcore/internal/supervisor"
	"github.com/ironleaf-farm/farmcore/internal/telemetry"
)

func main() {
	events := make(chan telemetry.TickEvent, 256)
	obs := telemetry.NewChannelObserver(events)

	sv := supervisor.New(
		supervisor.WithTickPeriod(20*time.Millisecond),
		supervisor.WithObserver(obs),
	)
	sv.Start()
	defer sv.Stop()

	seed := []struct {
		label string
		page  int64
	}{
		{"harvest-row-1", 1},
		{"harvest-row-2", 2},
		{"calibrate-arm", 3},
	}
	for _, s := range seed {
		prog := builder.Sequence(
			builder.New("find_home"),
			builder.New("move_absolute", builder.WithArgs(map[string]any{"row": s.page})),
			builder.New("read_status"),
		)
		if _, err := sv.QueueProgram(prog, s.page); err != nil {
			fmt.Fprintf(os.Stderr, "queue %s: %v\n", s.label, err)
		}
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	fmt.Println("demo running, ctrl-c to stop")
	for {
		select {
		case ev := <-events:
			fmt.Printf("tick: job=%d kind=%s status=%s skipped=%v\n", ev.JobID, ev.Kind, ev.Status, ev.Skipped)
		case <-ticker.C:
			snap, err := sv.Snapshot()
			if err != nil {
				continue
			}
			out, _ := json.MarshalIndent(snap, "", "  ")
			fmt.Println(string(out))
		case <-sig:
			fmt.Println("shutting down")
			return
		}
	}
}
