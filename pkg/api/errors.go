package api

import (
	"context"
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/go-chi/render"

	"github.com/pierre-ernst/ghnet/pkg/errors"
	"github.com/pierre-ernst/ghnet/pkg/integrations"
	"github.com/pierre-ernst/ghnet/pkg/network"
	"github.com/pierre-ernst/ghnet/pkg/store"
)

// ErrorResponse is the body of every error answer.
type ErrorResponse struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

// Classify maps err onto a coded error. Coded errors pass through; package
// sentinels get their code; anything else is internal.
func Classify(err error) *errors.Error {
	var coded *errors.Error
	if stderrors.As(err, &coded) {
		return coded
	}

	code := errors.ErrCodeInternal
	switch {
	case errors.GetCode(err) == errors.ErrCodeRateLimited,
		stderrors.Is(err, integrations.ErrRateLimited):
		code = errors.ErrCodeRateLimited
	case stderrors.Is(err, integrations.ErrNotFound),
		stderrors.Is(err, store.ErrNotFound):
		code = errors.ErrCodeNotFound
	case stderrors.Is(err, network.ErrLayout):
		code = errors.ErrCodeLayoutChanged
	case stderrors.Is(err, context.DeadlineExceeded):
		code = errors.ErrCodeTimeout
	case stderrors.Is(err, integrations.ErrNetwork):
		code = errors.ErrCodeNetwork
	}
	return errors.Wrap(code, err, "%s", err.Error())
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	e := Classify(err)
	status := errors.HTTPStatus(e.Code)

	msg := e.Message
	if status >= http.StatusInternalServerError {
		s.logger.Error("Request failed", "path", r.URL.Path, "request_id", RequestID(r.Context()), "err", err)
		if e.Code == errors.ErrCodeInternal {
			msg = "internal error"
		}
	}

	var rl *errors.RateLimitedError
	if stderrors.As(err, &rl) && rl.RetryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(rl.RetryAfter))
	}

	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Code: e.Code, Message: msg})
}
