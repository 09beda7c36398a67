// internal/workers/data-access/query-vehicles/handler.go
package queryvehicles

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"vehicle-search/internal/common/errors"
	"vehicle-search/internal/common/logger"
	"vehicle-search/internal/common/metrics"
	"vehicle-search/internal/common/validation"
	"vehicle-search/internal/models"
	"vehicle-search/internal/queryservice"
)

const TaskType = "query-vehicles"

type Handler struct {
	config     *Config
	store      queryservice.Store
	logger     logger.Logger
	errHandler *errors.ErrorHandler
}

func NewHandler(config *Config, store queryservice.Store, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		store:      store,
		logger:     log,
		errHandler: errors.NewErrorHandler(log),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		err = errors.NewInvalidFilterFormatError(fmt.Sprintf("parse input: %v", err))
		h.errHandler.HandleJobError(ctx, client, job, err)
		return err
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.errHandler.HandleJobError(context.Background(), client, job, err)
		return err
	}

	return h.completeJob(ctx, client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil || input.Filters == nil {
		return nil, errors.NewInvalidFilterFormatError("filters is required")
	}

	query, err := decodeQuery(input.Filters)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	vehicles, err := h.store.Query(ctx, query)
	elapsed := time.Since(start)
	if err != nil {
		metrics.RecordQuery(elapsed, 0, err)
		if stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, errors.NewQueryTimeoutError(TaskType)
		}
		if _, ok := errors.AsStandardError(err); ok {
			return nil, err
		}
		return nil, errors.NewQueryExecutionFailedError("store", err)
	}

	result := models.NewQueryResult(vehicles)
	metrics.RecordQuery(elapsed, result.Total, nil)

	h.logger.Info("vehicles queried", map[string]interface{}{
		"filters": query.FilterSet.String(),
		"total":   result.Total,
		"elapsed": elapsed.String(),
	})

	return &Output{
		Items:              result.Items,
		Total:              result.Total,
		QueryExecutionTime: elapsed.Milliseconds(),
	}, nil
}

// decodeQuery checks the raw filter map against the filter schema and
// decodes it into a query.
func decodeQuery(filters map[string]interface{}) (models.VehicleQuery, error) {
	var q models.VehicleQuery
	if res := validation.ValidateFilters(filters); !res.Valid {
		return q, errors.NewInvalidFilterFormatError(res.Error())
	}
	raw, err := json.Marshal(filters)
	if err != nil {
		return q, errors.NewInvalidFilterFormatError(err.Error())
	}
	if err := json.Unmarshal(raw, &q); err != nil {
		return q, errors.NewInvalidFilterFormatError(err.Error())
	}
	return q, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) error {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return errors.NewInternalError(err)
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
		return errors.NewTransportFailureError(err)
	}
	return nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
