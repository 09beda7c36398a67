// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"vehicle-search/internal/common/errors"
	"vehicle-search/internal/common/logger"
	"vehicle-search/internal/common/metrics"
	"vehicle-search/internal/common/observability"
	"vehicle-search/internal/common/validation"
)

// JobHandler completes or fails the job itself and returns the error it
// reported, if any, so the wrapper can count it.
type JobHandler interface {
	Handle(client worker.JobClient, job entities.Job) error
}

type WorkerOptions struct {
	MaxJobsActive int
	Timeout       time.Duration
	// Validator checks job variables before the handler runs. Optional.
	Validator     *validation.Validator
	Observability *observability.Observability
}

type CamundaWorker struct {
	client   zbc.Client
	worker   worker.JobWorker
	logger   *zap.Logger
	taskType string
}

func NewWorker(
	client zbc.Client,
	taskType string,
	handler JobHandler,
	log *zap.Logger,
	opts WorkerOptions,
) *CamundaWorker {
	if opts.MaxJobsActive <= 0 {
		opts.MaxJobsActive = 5
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	wrapped := wrapHandler(taskType, handler, log, opts)

	jobWorker := client.NewJobWorker().
		JobType(taskType).
		Handler(wrapped).
		MaxJobsActive(opts.MaxJobsActive).
		Timeout(opts.Timeout).
		Open()

	return &CamundaWorker{
		client:   client,
		worker:   jobWorker,
		logger:   log,
		taskType: taskType,
	}
}

func wrapHandler(taskType string, handler JobHandler, log *zap.Logger, opts WorkerOptions) worker.JobHandler {
	errHandler := errors.NewErrorHandler(logger.NewZapAdapter(log))
	return func(client worker.JobClient, job entities.Job) {
		ctx, span := opts.Observability.StartSpan(context.Background(), "job "+taskType,
			attribute.String("task_type", taskType),
			attribute.Int64("job_key", job.Key),
		)
		defer span.End()

		metrics.WorkerJobsActive.WithLabelValues(taskType).Inc()
		defer metrics.WorkerJobsActive.WithLabelValues(taskType).Dec()
		start := time.Now()

		err := checkVariables(opts.Validator, job.Variables)
		if err != nil {
			errHandler.HandleJobError(ctx, client, job, err)
		} else {
			err = handler.Handle(client, job)
		}

		elapsed := time.Since(start)
		metrics.WorkerJobDuration.WithLabelValues(taskType).Observe(elapsed.Seconds())
		status := "completed"
		if err != nil {
			status = "failed"
			metrics.WorkerJobsFailed.WithLabelValues(taskType, errorCode(err)).Inc()
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			log.Error("Handler returned error", zap.Error(err), zap.Int64("jobKey", job.Key))
		} else {
			metrics.WorkerJobsCompleted.WithLabelValues(taskType).Inc()
		}
		opts.Observability.RecordJobProcessed(ctx, taskType, status)
		opts.Observability.RecordJobDuration(ctx, taskType, elapsed, status)
	}
}

// checkVariables validates the raw job variables. A nil validator accepts anything.
func checkVariables(v *validation.Validator, variables string) error {
	if v == nil {
		return nil
	}
	if variables == "" {
		variables = "{}"
	}
	var doc map[string]interface{}
	if err := json.Unmarshal([]byte(variables), &doc); err != nil {
		return errors.NewInvalidInputError(fmt.Sprintf("job variables: %v", err))
	}
	if res := v.Validate(doc); !res.Valid {
		return errors.NewInvalidInputError(res.Error())
	}
	return nil
}

func errorCode(err error) string {
	if stdErr, ok := errors.AsStandardError(err); ok {
		return string(stdErr.Code)
	}
	return string(errors.ErrCodeInternal)
}

func (w *CamundaWorker) TaskType() string { return w.taskType }

func (w *CamundaWorker) Start() {
	w.logger.Info("worker started", zap.String("taskType", w.taskType))
}

// Stop closes the job worker. The shared zbc client is closed by its owner.
func (w *CamundaWorker) Stop(ctx context.Context) {
	w.logger.Info("stopping worker", zap.String("taskType", w.taskType))
	w.worker.Close()
	w.worker.AwaitClose()
}
