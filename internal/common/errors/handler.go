package errors

import (
	"context"
	"encoding/json"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

// ErrorHandler reports a failed job back to Zeebe: technical errors fail the
// job with retries, business errors are thrown as BPMN errors.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Decision is how a job error will be reported.
type Decision struct {
	Standard *StandardError
	BPMN     *BPMNError
	// Retries is the retry budget passed to the fail command; zero means throw.
	Retries int
}

// Throw reports whether the error is raised as a BPMN error.
func (d Decision) Throw() bool {
	return d.Retries == 0
}

// Decide normalizes err and picks the failure path for a job with
// jobRetries retries remaining.
func Decide(err error, jobRetries int32) Decision {
	stdErr := normalizeError(err)
	bpmnErr := ConvertToBPMNError(stdErr)

	retries := bpmnErr.Retries
	if retries > 0 && jobRetries <= 0 {
		retries = 0
	}
	if jobRetries > 0 && int(jobRetries) < retries {
		retries = int(jobRetries)
	}
	return Decision{Standard: stdErr, BPMN: bpmnErr, Retries: retries}
}

func (h *ErrorHandler) HandleJobError(ctx context.Context, client worker.JobClient, job entities.Job, err error) Decision {
	d := Decide(err, job.Retries)
	h.logError(job, d)

	if d.Throw() {
		h.throwBPMNError(ctx, client, job, d.BPMN)
	} else {
		h.failJobWithRetries(ctx, client, job, d.BPMN, d.Retries)
	}
	return d
}

func normalizeError(err error) *StandardError {
	if stdErr, ok := AsStandardError(err); ok {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func (h *ErrorHandler) failJobWithRetries(ctx context.Context, client worker.JobClient, job entities.Job, bpmnErr *BPMNError, retries int) {
	cmd := client.NewFailJobCommand().
		JobKey(job.Key).
		Retries(int32(retries - 1)).
		ErrorMessage(bpmnErr.Message)

	if varsJSON, err := json.Marshal(bpmnErr.ToErrorVariables()); err == nil {
		if withVars, err := cmd.VariablesFromString(string(varsJSON)); err == nil {
			if _, err := withVars.Send(ctx); err != nil {
				h.logger.Error("failed to fail job", map[string]interface{}{"jobKey": job.Key, "error": err.Error()})
			}
			return
		}
	}

	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to fail job", map[string]interface{}{"jobKey": job.Key, "error": err.Error()})
	}
}

func (h *ErrorHandler) throwBPMNError(ctx context.Context, client worker.JobClient, job entities.Job, bpmnErr *BPMNError) {
	cmd := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(bpmnErr.Code).
		ErrorMessage(bpmnErr.Message)

	if varsJSON, err := json.Marshal(bpmnErr.ToErrorVariables()); err == nil {
		if withVars, err := cmd.VariablesFromString(string(varsJSON)); err == nil {
			if _, err := withVars.Send(ctx); err != nil {
				h.logger.Error("failed to throw error", map[string]interface{}{"jobKey": job.Key, "error": err.Error()})
			}
			return
		}
	}

	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to throw error", map[string]interface{}{"jobKey": job.Key, "error": err.Error()})
	}
}

func (h *ErrorHandler) logError(job entities.Job, d Decision) {
	fields := map[string]interface{}{
		"jobKey":        job.Key,
		"jobType":       job.Type,
		"errorCode":     string(d.Standard.Code),
		"bpmnErrorCode": d.BPMN.Code,
		"message":       d.BPMN.Message,
		"details":       d.Standard.Details,
		"retryable":     d.Standard.Retryable,
		"retries":       d.Retries,
		"errorCategory": GetErrorCategory(d.Standard.Code),
		"workflowKey":   job.ProcessInstanceKey,
	}
	if d.Throw() {
		h.logger.Error("job failed", fields)
		return
	}
	h.logger.Warn("job failed, retrying", fields)
}
