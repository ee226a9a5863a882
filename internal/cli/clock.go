package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/revue"
)

// ClockModel counts timer ticks.
type ClockModel struct {
	Ticks int
	Last  time.Time
}

// ClockMsg is the clock's closed message set.
type ClockMsg interface {
	clockMsg()
}

// Tick is one timer elapse.
type Tick struct {
	At time.Time
}

func (Tick) clockMsg() {}

// ClockSubscriptions describes the repeating tick. The subscription is torn
// down and re-established on every tick, since every tick changes the
// model - which is exactly the runtime's rebuild contract at work.
func ClockSubscriptions(interval time.Duration) revue.Subscriptions[ClockModel, ClockMsg] {
	return func(ClockModel) revue.Sub[ClockMsg] {
		return revue.Every("clock-tick", interval, func(now time.Time) ClockMsg {
			return Tick{At: now}
		})
	}
}

// NewClockCommand creates the ticking clock demo.
func NewClockCommand(opts *RootOptions) *cobra.Command {
	var interval time.Duration
	var count int

	cmd := &cobra.Command{
		Use:   "clock",
		Short: "Timer subscription demo",
		Long:  "Runs a component whose only input is a repeating timer subscription.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClock(cmd, interval, count)
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", time.Second, "tick interval")
	cmd.Flags().IntVar(&count, "count", 5, "number of ticks before exiting")
	return cmd
}

func runClock(cmd *cobra.Command, interval time.Duration, count int) error {
	loop := revue.NewRunLoop()
	out := cmd.OutOrStdout()

	update := func(msg ClockMsg, model ClockModel) (ClockModel, revue.Cmd[ClockMsg]) {
		switch m := msg.(type) {
		case Tick:
			model.Ticks++
			model.Last = m.At
			if model.Ticks >= count {
				return model, revue.OfEffect[ClockMsg](loop.Close)
			}
		}
		return model, nil
	}

	var component *revue.Component[ClockModel, ClockMsg]
	render := func() {
		m := component.State()
		if m.Ticks > 0 {
			fmt.Fprintf(out, "tick %d at %s\n", m.Ticks, m.Last.Format(time.TimeOnly))
		}
	}

	component = revue.New(
		func() (ClockModel, revue.Cmd[ClockMsg]) { return ClockModel{}, nil },
		update,
		revue.WithScheduler[ClockModel, ClockMsg](loop),
		revue.WithSubscriptions(ClockSubscriptions(interval)),
		revue.WithConfig[ClockModel, ClockMsg](runtimeConfig()),
		revue.WithRender[ClockModel, ClockMsg](render),
	)
	if err := component.Run(); err != nil {
		return err
	}
	defer component.Dispose()

	return ignoreCancel(loop.Run(cmd.Context()))
}
