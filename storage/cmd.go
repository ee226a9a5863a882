package storage

import (
	"context"

	"github.com/roach88/revue"
)

// LoadCmd describes loading key as a task command. The outcome - the stored
// bytes or the load error (including ErrNotFound) - is wrapped into a
// Result and carried by the message toMsg builds, so the reducer handles
// failure like any other message.
func LoadCmd[TMsg any](s *Store, key string, toMsg func(revue.Result[[]byte]) TMsg) revue.Cmd[TMsg] {
	return revue.OfTaskResult(func(ctx context.Context) ([]byte, error) {
		return s.Load(ctx, key)
	}, toMsg)
}

// SaveCmd describes saving value under key. On success the Result carries
// the key back.
func SaveCmd[TMsg any](s *Store, key string, value []byte, toMsg func(revue.Result[string]) TMsg) revue.Cmd[TMsg] {
	return revue.OfTaskResult(func(ctx context.Context) (string, error) {
		if err := s.Save(ctx, key, value); err != nil {
			return "", err
		}
		return key, nil
	}, toMsg)
}

// QueueCmd describes a fire-and-forget write-behind save. Failures escape
// to the runtime's unhandled-error hook; use SaveCmd when the reducer
// needs to observe the outcome.
func QueueCmd[TMsg any](s *Store, key string, value []byte) revue.Cmd[TMsg] {
	return revue.OfTaskUnit[TMsg](func(ctx context.Context) error {
		return s.Queue(ctx, key, value)
	})
}

// FlushCmd describes applying the write-behind queue. On success the
// Result carries the number of writes applied.
func FlushCmd[TMsg any](s *Store, toMsg func(revue.Result[int]) TMsg) revue.Cmd[TMsg] {
	return revue.OfTaskResult(func(ctx context.Context) (int, error) {
		return s.Flush(ctx)
	}, toMsg)
}
