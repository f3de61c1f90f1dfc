package errutil

import (
	"context"
	"errors"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/uxlens/pkg/utils/logging"
)

// Handle logs the error with a message and reports it to Sentry.
// The error is returned unchanged so callers can keep propagating it.
func Handle(ctx context.Context, err error, msg string) error {
	if err == nil {
		return nil
	}

	logger := logging.From(ctx)

	var ge *goerr.Error
	if errors.As(err, &ge) {
		logger.Error(msg,
			"error", err.Error(),
			"values", ge.Values(),
			"stack", ge.Stacks(),
		)
	} else {
		logger.Error(msg, "error", err.Error())
	}

	report(ctx, err)
	return err
}

// HandleHTTP logs the error and writes an appropriate HTTP error response.
// Only 5xx errors are forwarded to Sentry; 4xx are caller mistakes.
func HandleHTTP(ctx context.Context, w http.ResponseWriter, err error, statusCode int) {
	if err == nil {
		return
	}

	logger := logging.From(ctx)

	var ge *goerr.Error
	if errors.As(err, &ge) {
		logger.Error("HTTP error",
			"status", statusCode,
			"error", err.Error(),
			"values", ge.Values(),
			"stack", ge.Stacks(),
		)
	} else {
		logger.Error("HTTP error",
			"status", statusCode,
			"error", err.Error(),
		)
	}

	if statusCode >= http.StatusInternalServerError {
		report(ctx, err)
	}

	http.Error(w, err.Error(), statusCode)
}

func report(ctx context.Context, err error) {
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}

	var ge *goerr.Error
	if errors.As(err, &ge) {
		hub.WithScope(func(scope *sentry.Scope) {
			scope.SetContext("goerr", sentry.Context(ge.Values()))
			hub.CaptureException(err)
		})
		return
	}
	hub.CaptureException(err)
}
