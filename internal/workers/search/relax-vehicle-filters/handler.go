// internal/workers/search/relax-vehicle-filters/handler.go
package relaxvehiclefilters

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"vehicle-search/internal/common/errors"
	"vehicle-search/internal/common/logger"
	"vehicle-search/internal/relax"
	"vehicle-search/internal/search"
)

const TaskType = "relax-vehicle-filters"

type Handler struct {
	config     *Config
	engine     *relax.Engine
	logger     logger.Logger
	errHandler *errors.ErrorHandler
}

func NewHandler(config *Config, engine *relax.Engine, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		engine:     engine,
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
		h.errHandler.HandleJobError(ctx, client, job, err)
		return err
	}

	return h.completeJob(ctx, client, job, output)
}

// execute runs one automated pass. Round counts passes that changed the
// filters; a pass that changes nothing reports exhausted.
func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	if input == nil || input.Filters == nil {
		return nil, errors.NewInvalidFilterFormatError("filters is required")
	}
	if input.Round < 0 {
		return nil, errors.NewInvalidFilterFormatError(fmt.Sprintf("round must be >= 0, got %d", input.Round))
	}

	current := input.Filters.Clone()
	if h.config.MaxRounds > 0 && input.Round >= h.config.MaxRounds {
		h.logger.Info("round limit reached", map[string]interface{}{
			"round":     input.Round,
			"maxRounds": h.config.MaxRounds,
		})
		return &Output{Filters: current, AppliedSteps: []relax.StepName{}, Round: input.Round, Exhausted: true}, nil
	}

	relaxed, report := h.engine.Automated(current)
	search.RecordReport(report)

	output := &Output{
		Filters:      relaxed,
		AppliedSteps: report.Applied(),
		Round:        input.Round,
		Exhausted:    !report.Changed() || relaxed.Equal(current),
	}
	if !output.Exhausted {
		output.Round++
	}

	h.logger.Info("filters relaxed", map[string]interface{}{
		"appliedSteps": output.AppliedSteps,
		"round":        output.Round,
		"exhausted":    output.Exhausted,
		"filters":      relaxed.String(),
	})
	return output, nil
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
