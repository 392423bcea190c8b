package export

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"natteescraper/lib/scrapers/nattee"
)

// Record is one element of the aggregate output: either a fully
// resolved task or an error record keyed by the task id. A failed
// resolution is always visible in the output, never a missing entry.
type Record struct {
	Task   *nattee.Task
	TaskId string
	Err    error
}

func (r Record) MarshalJSON() ([]byte, error) {
	if r.Err != nil {
		return json.Marshal(struct {
			Error  string `json:"error"`
			TaskId string `json:"task_id"`
		}{
			Error:  r.Err.Error(),
			TaskId: r.TaskId,
		})
	}
	return json.Marshal(r.Task)
}

type Options struct {
	// upper bound on concurrent workers; the descriptor list is split
	// into at most this many contiguous slices, each resolved by its
	// own worker
	Workers int
	// called once per completed item from worker goroutines; a
	// best-effort side channel, never required for correctness
	Progress func()
}

// Run resolves every descriptor, fanning the list out across workers.
// Each worker gets its own clone of the session before it starts, so
// no session object is ever touched by two goroutines. Results come
// back in slice order within a worker and worker order across the
// aggregate; per-item failures become error records instead of
// stopping the worker's remaining items.
func Run(ctx context.Context, client *nattee.Client, descs []nattee.TaskDescriptor, opts Options) ([]Record, error) {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if len(descs) == 0 {
		return nil, nil
	}

	chunks := chunkDescriptors(descs, opts.Workers)
	results := make([][]Record, len(chunks))
	wg := sync.WaitGroup{}

	for i, chunk := range chunks {
		worker, err := client.Clone()
		if err != nil {
			return nil, err
		}

		wg.Add(1)
		go func(i int, worker *nattee.Client, chunk []nattee.TaskDescriptor) {
			defer wg.Done()

			records := make([]Record, 0, len(chunk))
			for _, desc := range chunk {
				task, err := worker.ResolveTask(ctx, desc)
				if err != nil {
					slog.WarnContext(ctx, "failed to resolve task", "task_id", desc.Id, "err", err)
					records = append(records, Record{TaskId: desc.Id, Err: err})
				} else {
					records = append(records, Record{Task: &task, TaskId: desc.Id})
				}
				if opts.Progress != nil {
					opts.Progress()
				}
			}
			results[i] = records
		}(i, worker, chunk)
	}

	wg.Wait()

	var all []Record
	for _, records := range results {
		all = append(all, records...)
	}
	return all, nil
}

// chunkDescriptors splits the list into at most workers contiguous
// slices. Rounding the chunk size up keeps the chunk count within the
// worker budget when the list does not divide evenly.
func chunkDescriptors(descs []nattee.TaskDescriptor, workers int) [][]nattee.TaskDescriptor {
	chunkSize := (len(descs) + workers - 1) / workers
	var chunks [][]nattee.TaskDescriptor
	for start := 0; start < len(descs); start += chunkSize {
		end := min(start+chunkSize, len(descs))
		chunks = append(chunks, descs[start:end])
	}
	return chunks
}
