package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/swagger2rtk/internal/emitter/rtkemitter"
	"github.com/mark3labs/swagger2rtk/internal/pipeline"
	"github.com/mark3labs/swagger2rtk/internal/spec"
)

var ErrUsage = errors.New("cli usage error")

type usageError struct {
	msg string
}

func newUsageError(msg string) error {
	return usageError{msg: msg}
}

func (e usageError) Error() string {
	return e.msg
}

func (e usageError) Is(target error) bool {
	return target == ErrUsage
}

// reportError carries a user-facing message while keeping the underlying
// error reachable through errors.As.
type reportError struct {
	msg string
	err error
}

func (e *reportError) Error() string { return e.msg }
func (e *reportError) Unwrap() error { return e.err }

// describeError turns pipeline failures into messages with the document
// location and a hint where one helps.
func describeError(err error, outDir string) error {
	var se *spec.SpecError
	if errors.As(err, &se) {
		msg := "spec: " + strings.TrimPrefix(se.Message, "spec: ")
		if se.Location != "" {
			msg = fmt.Sprintf("%s\nLocation: %s", msg, se.Location)
		}
		if se.JSONPointer != "" {
			msg = fmt.Sprintf("%s\nPointer: %s", msg, se.JSONPointer)
		}
		if se.Code == spec.FetchError {
			msg += "\nHint: check the URL and the SWAGGER_AUTH_USERNAME/SWAGGER_AUTH_PASSWORD credentials."
		}
		return &reportError{msg: msg, err: err}
	}

	var ee *rtkemitter.EmissionError
	if errors.As(err, &ee) {
		return &reportError{msg: fmt.Sprintf("emit: %v\nNo files were written to %s.", ee, outDir), err: err}
	}

	var stageErr *pipeline.StageError
	if errors.As(err, &stageErr) && stageErr.Stage == pipeline.Writing {
		msg := stageErr.Err.Error()
		lower := strings.ToLower(msg)
		if strings.Contains(lower, "permission") || strings.Contains(lower, "read-only") || strings.Contains(lower, "mkdir") {
			msg += "\nHint: choose a different --out or check directory permissions."
		}
		return &reportError{msg: fmt.Sprintf("output error for %s: %s", outDir, msg), err: err}
	}
	return err
}
