package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/revue"
	"github.com/roach88/revue/storage"
)

// CounterModel is the demo counter's state.
type CounterModel struct {
	Count  int
	Status string
}

// CounterMsg is the counter's closed message set.
type CounterMsg interface {
	counterMsg()
}

// Increment adds one to the count.
type Increment struct{}

// Decrement subtracts one from the count.
type Decrement struct{}

// CountLoaded carries the persisted count back from storage.
type CountLoaded struct {
	Result revue.Result[[]byte]
}

// CountSaved confirms a persisted save.
type CountSaved struct {
	Result revue.Result[string]
}

func (Increment) counterMsg()   {}
func (Decrement) counterMsg()   {}
func (CountLoaded) counterMsg() {}
func (CountSaved) counterMsg()  {}

const counterKey = "counter"

// CounterInit returns the init contract for the counter. With a store, the
// persisted count is loaded through a task command; until it resolves the
// model reads "loading".
func CounterInit(store *storage.Store) revue.Init[CounterModel, CounterMsg] {
	return func() (CounterModel, revue.Cmd[CounterMsg]) {
		if store == nil {
			return CounterModel{Status: "ready"}, nil
		}
		return CounterModel{Status: "loading"},
			storage.LoadCmd(store, counterKey, func(r revue.Result[[]byte]) CounterMsg {
				return CountLoaded{Result: r}
			})
	}
}

// CounterUpdate returns the counter's reducer. A non-nil store makes every
// change queue a write-behind save.
func CounterUpdate(store *storage.Store) revue.Update[CounterModel, CounterMsg] {
	persist := func(count int) revue.Cmd[CounterMsg] {
		if store == nil {
			return nil
		}
		return storage.QueueCmd[CounterMsg](store, counterKey, []byte(strconv.Itoa(count)))
	}

	return func(msg CounterMsg, model CounterModel) (CounterModel, revue.Cmd[CounterMsg]) {
		switch m := msg.(type) {
		case Increment:
			model.Count++
			return model, persist(model.Count)

		case Decrement:
			model.Count--
			return model, persist(model.Count)

		case CountLoaded:
			if err := m.Result.Err(); err != nil {
				if errors.Is(err, storage.ErrNotFound) {
					model.Status = "ready"
					return model, nil
				}
				model.Status = fmt.Sprintf("load failed: %v", err)
				return model, nil
			}
			count, err := strconv.Atoi(string(m.Result.Value()))
			if err != nil {
				model.Status = fmt.Sprintf("corrupt snapshot: %v", err)
				return model, nil
			}
			model.Count = count
			model.Status = "ready"
			return model, nil

		case CountSaved:
			if err := m.Result.Err(); err != nil {
				model.Status = fmt.Sprintf("save failed: %v", err)
			} else {
				model.Status = "saved"
			}
			return model, nil
		}
		return model, nil
	}
}

// NewCounterCommand creates the interactive counter demo.
func NewCounterCommand(opts *RootOptions) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "counter",
		Short: "Interactive counter component",
		Long: "Runs the counter component on a run loop. Input: + increment, - decrement,\n" +
			"b/f travel back/forward, r resume live, q quit.",
		RunE: func(cmd *cobra.Command, args []string) error {
			var store *storage.Store
			if dbPath != "" {
				s, err := storage.Open(dbPath)
				if err != nil {
					return err
				}
				defer s.Close()
				store = s
			}
			return runCounter(cmd, store)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "sqlite database for persisting the count")
	return cmd
}

func runCounter(cmd *cobra.Command, store *storage.Store) error {
	loop := revue.NewRunLoop()
	out := cmd.OutOrStdout()

	component := revue.New(
		CounterInit(store),
		CounterUpdate(store),
		revue.WithScheduler[CounterModel, CounterMsg](loop),
		revue.WithConfig[CounterModel, CounterMsg](runtimeConfig()),
		revue.WithMiddleware(revue.Logger[CounterModel, CounterMsg](slog.Default())),
	)
	if err := component.Run(); err != nil {
		return err
	}
	defer component.Dispose()

	render := func() {
		m := component.State()
		fmt.Fprintf(out, "count=%d status=%s\n", m.Count, m.Status)
	}
	render()

	// stdin reader runs off-turn; every action marshals onto the loop.
	go func() {
		scanner := bufio.NewScanner(cmd.InOrStdin())
		for scanner.Scan() {
			line := scanner.Text()
			loop.Marshal(func() {
				switch line {
				case "+":
					component.Dispatch(Increment{})
				case "-":
					component.Dispatch(Decrement{})
				case "b":
					component.TravelBack()
				case "f":
					component.TravelForward()
				case "r":
					component.ResumeLive()
				case "q":
					loop.Close()
					return
				default:
					fmt.Fprintf(out, "unknown input %q\n", line)
					return
				}
				render()
			})
			if line == "q" {
				return
			}
		}
		loop.Close()
	}()

	return ignoreCancel(loop.Run(cmd.Context()))
}

func ignoreCancel(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
