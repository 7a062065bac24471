package store

import (
	"context"
	"log/slog"
	"net/http"
)

// Reply is implemented by every envelope so transport code can render any
// operation result without knowing its payload type.
type Reply interface {
	// Status is the HTTP status the result maps to.
	Status() int
	// OK reports whether the operation succeeded.
	OK() bool
	// Msg is the user-facing message.
	Msg() string
	// Payload is the data carried by the envelope.
	Payload() any
}

// Envelope is the uniform result of a single-record or batch operation.
type Envelope[T any] struct {
	Success    bool   `json:"success"`
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Data       T      `json:"data"`
}

func (e Envelope[T]) Status() int  { return e.StatusCode }
func (e Envelope[T]) OK() bool     { return e.Success }
func (e Envelope[T]) Msg() string  { return e.Message }
func (e Envelope[T]) Payload() any { return e.Data }

// Page is the result of a list operation with its pagination metadata.
type Page[T any] struct {
	Success        bool   `json:"success"`
	StatusCode     int    `json:"statusCode"`
	Message        string `json:"message"`
	CurrentPage    int    `json:"currentPage"`
	TotalPages     int    `json:"totalPages"`
	TotalDataCount int64  `json:"totalDataCount"`
	Data           []T    `json:"data"`
}

func (p Page[T]) Status() int  { return p.StatusCode }
func (p Page[T]) OK() bool     { return p.Success }
func (p Page[T]) Msg() string  { return p.Message }
func (p Page[T]) Payload() any { return p.Data }

// Batch is the payload of bulk operations. Existing carries the rows that
// blocked a guarded bulk insert.
type Batch[T any] struct {
	Count    int64 `json:"count"`
	Existing []T   `json:"existing,omitempty"`
}

// Messages holds the user-facing wording of an operation's outcomes.
type Messages struct {
	NotFound  string
	Success   string
	NoChanges string
	Conflict  string
	Failed    string
}

// Respond builds an envelope and logs logMessage: info when ok, error otherwise.
// logMessage is for operators and may carry detail message must not.
func Respond[T any](ctx context.Context, log *slog.Logger, ok bool, status int, logMessage, message string, data T) Envelope[T] {
	logResult(ctx, log, ok, logMessage)
	return Envelope[T]{
		Success:    ok,
		StatusCode: status,
		Message:    message,
		Data:       data,
	}
}

// Fail builds a failed envelope without data.
func Fail(ctx context.Context, log *slog.Logger, status int, logMessage, message string) Envelope[any] {
	return Respond[any](ctx, log, false, status, logMessage, message, nil)
}

func respondPage[T any](ctx context.Context, log *slog.Logger, ok bool, status int, logMessage, message string, page, totalPages int, total int64, data []T) Page[T] {
	logResult(ctx, log, ok, logMessage)
	if data == nil {
		data = []T{}
	}
	return Page[T]{
		Success:        ok,
		StatusCode:     status,
		Message:        message,
		CurrentPage:    page,
		TotalPages:     totalPages,
		TotalDataCount: total,
		Data:           data,
	}
}

// Internal wraps an unexpected error into a 500 envelope. The error is
// logged in full; the client only sees a generic message.
func Internal(ctx context.Context, log *slog.Logger, op string, err error) Envelope[any] {
	if log == nil {
		log = slog.Default()
	}
	log.ErrorContext(ctx, "unexpected error", slog.String("op", op), slog.Any("error", err))
	return Envelope[any]{
		Success:    false,
		StatusCode: http.StatusInternalServerError,
		Message:    "Internal server error",
	}
}

func logResult(ctx context.Context, log *slog.Logger, ok bool, msg string) {
	if log == nil {
		log = slog.Default()
	}
	if ok {
		log.InfoContext(ctx, msg)
		return
	}
	log.ErrorContext(ctx, msg)
}
