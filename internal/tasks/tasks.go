package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/fishmad/grokstatev3-sub001/internal/export"
)

// TaskType defines the type of a background task.
const (
	TypeListingExport = "listing:export"
)

// Queue names. Exports get their own queue so a backlog of listing pushes
// cannot starve other background work.
const (
	QueueExports = "exports"
	QueueDefault = "default"
)

// ListingExportPayload is the job state for one export attempt. The
// attempt number rides in the payload so a retry knows where the chain is
// up to.
type ListingExportPayload struct {
	PropertyID    int64 `json:"property_id"`
	AttemptNumber int   `json:"attempt"`
}

// NewListingExportTask builds an asynq task for one export attempt.
func NewListingExportTask(propertyID int64, attemptNumber int) (*asynq.Task, error) {
	payload, err := json.Marshal(ListingExportPayload{PropertyID: propertyID, AttemptNumber: attemptNumber})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal export task payload: %w", err)
	}
	return asynq.NewTask(TypeListingExport, payload), nil
}

// --- Task Client (Enqueuing tasks) ---

func NewClient(rdb *redis.Client) *asynq.Client {
	clientOpt := asynq.RedisClientOpt{
		Addr:     rdb.Options().Addr,
		Password: rdb.Options().Password,
		DB:       rdb.Options().DB,
	}
	return asynq.NewClient(clientOpt)
}

// --- Retry scheduling ---

// RetryScheduler implements export.IRetryScheduler by re-enqueuing the
// export task with a delay. The queue guarantees the task runs no earlier
// than now+delay; the orchestrator does not block on the outcome.
type RetryScheduler struct {
	client *asynq.Client
}

// NewRetryScheduler creates a scheduler over the given task client.
func NewRetryScheduler(client *asynq.Client) *RetryScheduler {
	return &RetryScheduler{client: client}
}

// ScheduleRetry enqueues a delayed export attempt.
func (s *RetryScheduler) ScheduleRetry(ctx context.Context, propertyID int64, attemptNumber int, delay time.Duration) error {
	task, err := NewListingExportTask(propertyID, attemptNumber)
	if err != nil {
		return err
	}
	info, err := s.client.EnqueueContext(ctx, task, asynq.Queue(QueueExports), asynq.ProcessIn(delay))
	if err != nil {
		return fmt.Errorf("failed to enqueue export retry for property %d: %w", propertyID, err)
	}
	log.Printf("Scheduled export retry: task=%s property=%d attempt=%d runs_in=%v", info.ID, propertyID, attemptNumber, delay)
	return nil
}

// EnqueueExport dispatches a first export attempt for a property.
func EnqueueExport(ctx context.Context, client *asynq.Client, propertyID int64) (string, error) {
	task, err := NewListingExportTask(propertyID, 1)
	if err != nil {
		return "", err
	}
	info, err := client.EnqueueContext(ctx, task, asynq.Queue(QueueExports))
	if err != nil {
		return "", fmt.Errorf("failed to enqueue export for property %d: %w", propertyID, err)
	}
	return info.ID, nil
}

// --- Task Server (Processing tasks) ---

// TaskProcessor handles the processing of tasks.
// It holds dependencies needed by task handlers.
type TaskProcessor struct {
	orchestrator export.IOrchestrator
}

func NewTaskProcessor(orchestrator export.IOrchestrator) *TaskProcessor {
	return &TaskProcessor{orchestrator: orchestrator}
}

// HandleListingExportTask runs one export attempt. The orchestrator
// converts every failure into a terminal or retrying state, so the
// handler itself never fails except for an undecodable payload; retries
// are driven through the RetryScheduler, never through asynq's own
// failure retry.
func (p *TaskProcessor) HandleListingExportTask(ctx context.Context, t *asynq.Task) error {
	var payload ListingExportPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal export task payload: %v: %w", err, asynq.SkipRetry)
	}
	if payload.AttemptNumber < 1 {
		payload.AttemptNumber = 1
	}

	attempt := p.orchestrator.ExportProperty(ctx, payload.PropertyID, payload.AttemptNumber)
	log.Printf("Export task finished: property=%d attempt=%d state=%s", attempt.PropertyID, attempt.AttemptNumber, attempt.State)
	return nil
}

// SetupServer configures an Asynq server instance and the handler mux to
// run it with. Returns nils without creating a server when isWorker is
// false (API-only mode still enqueues tasks but does not process them).
func SetupServer(rdb *redis.Client, processor *TaskProcessor, isWorker bool) (*asynq.Server, *asynq.ServeMux) {
	if !isWorker {
		log.Println("Running in API mode, no task server started.")
		return nil, nil
	}

	serverOpt := asynq.RedisClientOpt{
		Addr:     rdb.Options().Addr,
		Password: rdb.Options().Password,
		DB:       rdb.Options().DB,
	}

	srv := asynq.NewServer(
		serverOpt,
		asynq.Config{
			Queues: map[string]int{
				QueueExports: 6,
				QueueDefault: 3,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				log.Printf("[Asynq Error] Task Type: %s, Payload: %s, Error: %v", task.Type(), string(task.Payload()), err)
			}),
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeListingExport, processor.HandleListingExportTask)
	log.Println("Registered listing export task handler.")

	return srv, mux
}
