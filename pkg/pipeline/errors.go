package pipeline

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

var (
	ErrPipelineMustBeSet = errors.New("pipeline must be set")
	ErrInputMustBeSet    = errors.New("input step must be set")
	ErrSplitterTotal     = errors.New("splitter needs at least one branch")
)

// stepErrors holds the error channel of every registered step, keyed by step name.
type stepErrors struct {
	mu    sync.Mutex
	names []string
	chans []<-chan error
}

func (se *stepErrors) add(name string, c <-chan error) {
	se.mu.Lock()
	defer se.mu.Unlock()

	se.names = append(se.names, name)
	se.chans = append(se.chans, c)
}

// merge fans every step channel into one, wrapping each error with its step name.
// The result is closed once all step channels are closed. Nil channels are skipped.
func (se *stepErrors) merge() <-chan error {
	se.mu.Lock()
	names, chans := se.names, se.chans
	se.mu.Unlock()

	out := make(chan error, len(chans))

	var wg sync.WaitGroup

	for i, c := range chans {
		if c == nil {
			continue
		}

		wg.Add(1)

		go func() {
			defer wg.Done()

			for err := range c {
				if err != nil {
					out <- errors.Wrap(err, names[i])
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(out)
	}()

	return out
}

// wait blocks until every step is done. The first error cancels the pipeline and is returned;
// the errors that follow, mostly cancellations, are drained so that no step blocks on its channel.
func (se *stepErrors) wait(cancel context.CancelFunc) error {
	merged := se.merge()

	err, ok := <-merged
	if !ok {
		return nil
	}

	cancel()

	go func() {
		for range merged { //nolint:revive // drain
		}
	}()

	return err
}
