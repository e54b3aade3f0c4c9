package createanalysis

import (
	"context"
	"fmt"
	"time"

	"iedi-workers/internal/analysis"
	"iedi-workers/internal/common/config"
	"iedi-workers/internal/common/errors"
	"iedi-workers/internal/common/logger"
	"iedi-workers/internal/common/metrics"
	"iedi-workers/internal/common/observability"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType   = "analysis.create"
	WorkerName = "create-analysis"
)

type Handler struct {
	config   *Config
	logger   logger.Logger
	service  *Service
	errors   *errors.ErrorHandler
	observer *observability.Observability
}

type HandlerOptions struct {
	AppConfig     *config.Config
	CustomConfig  *Config
	Dependencies  ServiceDependencies
	Observability *observability.Observability
	Logger        logger.Logger
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	workerConfig := createConfigFromAppConfig(opts.AppConfig, opts.CustomConfig)

	if err := workerConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", WorkerName, err)
	}
	if opts.Dependencies.Backend == nil {
		return nil, fmt.Errorf("%s requires a backend client", WorkerName)
	}

	loggerInstance := opts.Logger
	if loggerInstance == nil {
		loggerInstance = logger.NewStructured("info", "json")
	}
	loggerInstance = loggerInstance.WithFields(map[string]interface{}{"worker": TaskType})

	deps := opts.Dependencies
	deps.Logger = loggerInstance

	return &Handler{
		config:   workerConfig,
		logger:   loggerInstance,
		service:  NewService(deps, workerConfig),
		errors:   errors.NewErrorHandler(loggerInstance),
		observer: opts.Observability,
	}, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	startTime := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	h.logger.Info("Processing analysis create request", map[string]interface{}{
		"jobKey":             job.GetKey(),
		"processInstanceKey": job.GetProcessInstanceKey(),
	})

	output, err := h.process(ctx, job)
	h.observer.RecordJob(ctx, TaskType, startTime, err)
	if err != nil {
		if sendErr := h.errors.HandleJobError(ctx, client, job, err); sendErr != nil {
			h.logger.Error("Failed to report job failure", map[string]interface{}{
				"jobKey": job.GetKey(),
				"error":  sendErr.Error(),
			})
		}
		return
	}

	h.completeJob(ctx, client, job, output)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(startTime).Seconds())
}

func (h *Handler) process(ctx context.Context, job entities.Job) (*Output, error) {
	input, err := h.parseInput(job)
	if err != nil {
		return nil, err
	}
	return h.Execute(ctx, input)
}

func (h *Handler) parseInput(job entities.Job) (*Input, error) {
	variables, err := job.GetVariablesAsMap()
	if err != nil {
		return nil, errors.NewInvalidInputError(err.Error())
	}

	result, err := GetInputSchema().Validate(variables)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	if !result.Valid {
		return nil, errors.NewInvalidInputError(fmt.Sprintf("%v", result.GetErrorMessages()))
	}

	var input Input
	if err := job.GetVariablesAs(&input); err != nil {
		return nil, errors.NewInvalidInputError(err.Error())
	}

	mode, err := analysis.ParseDateMode(string(input.Mode))
	if err != nil {
		return nil, errors.NewInvalidInputError(err.Error())
	}
	input.Mode = mode

	return &input, nil
}

// Execute runs the create flow for already parsed variables.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.service.Execute(ctx, input)
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	request, err := client.NewCompleteJobCommand().JobKey(job.GetKey()).VariablesFromMap(output.variables())
	if err != nil {
		h.logger.Error("Failed to create complete job command", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
		})
		return
	}

	sendCtx, cancel := errors.CommandContext(ctx)
	defer cancel()
	if _, err := request.Send(sendCtx); err != nil {
		h.logger.Error("Failed to complete job", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
		})
		return
	}

	h.logger.Info("Analysis created", map[string]interface{}{
		"jobKey":     job.GetKey(),
		"analysisId": output.AnalysisID,
		"status":     string(output.AnalysisStatus),
	})
}

func (o *Output) variables() map[string]interface{} {
	return map[string]interface{}{
		"analysisId":     o.AnalysisID,
		"analysisName":   o.AnalysisName,
		"analysisStatus": string(o.AnalysisStatus),
		"isCustomDates":  o.IsCustomDates,
		"banks":          o.Banks,
	}
}

func (h *Handler) GetTaskType() string {
	return TaskType
}

func (h *Handler) IsEnabled() bool {
	return h.config.Enabled
}

func (h *Handler) GetConfig() *Config {
	return h.config
}

func createConfigFromAppConfig(appConfig *config.Config, customConfig *Config) *Config {
	if customConfig != nil {
		return customConfig
	}

	cfg := DefaultConfig()
	if appConfig == nil {
		return cfg
	}

	if workerCfg, exists := appConfig.Workers[WorkerName]; exists {
		cfg.Enabled = workerCfg.Enabled
		if workerCfg.MaxJobsActive > 0 {
			cfg.MaxJobsActive = workerCfg.MaxJobsActive
		}
		if workerCfg.Timeout > 0 {
			cfg.Timeout = config.GetDuration(workerCfg.Timeout)
		}
		if workerCfg.CheckBanks != nil {
			cfg.CheckBanks = *workerCfg.CheckBanks
		}
	}
	return cfg
}
