package api

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/taskdesk/taskdesk-api/internal/api/shared"
	"github.com/taskdesk/taskdesk-api/internal/domain"
	"github.com/taskdesk/taskdesk-api/internal/pipeline"
	"github.com/taskdesk/taskdesk-api/internal/ratelimit"
)

// Runner executes a pipeline request. *pipeline.Pipeline implements it.
type Runner interface {
	Run(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)
}

// newRequest builds the pipeline request common to every route. Bodies are
// only read for ops that take one.
func newRequest(w http.ResponseWriter, r *http.Request, op pipeline.Op) (pipeline.Request, error) {
	req := pipeline.Request{
		Op:            op,
		TaskID:        chi.URLParam(r, "id"),
		StatusFilter:  r.URL.Query().Get("status"),
		Authorization: r.Header.Get("Authorization"),
		ClientAddr:    clientAddr(r),
	}

	switch op {
	case pipeline.CreateTask, pipeline.UpdateTask, pipeline.Register, pipeline.Login:
		body, err := shared.ReadBody(w, r)
		if err != nil {
			return req, err
		}
		req.Body = body
	}
	return req, nil
}

// clientAddr strips the port from RemoteAddr. chi's RealIP middleware has
// already applied any forwarding headers.
func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// respondWithResult writes rate limit headers and the success body.
func respondWithResult(w http.ResponseWriter, r *http.Request, res *pipeline.Result, status int, body any) {
	shared.SetRateLimitHeaders(w, res.RateLimit)
	shared.RespondWithJSON(w, r, status, body)
}

// handleError writes the single response for a failed run.
func handleError(w http.ResponseWriter, r *http.Request, res *pipeline.Result, err error) {
	var exceeded *ratelimit.ExceededError
	if errors.As(err, &exceeded) {
		shared.RespondRateLimited(w, r, exceeded)
		return
	}
	if res != nil {
		shared.SetRateLimitHeaders(w, res.RateLimit)
	}

	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)

	var opts []shared.ResponseOption
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		opts = append(opts, shared.WithDetails(verr.FieldMap()))
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err, opts...)
}
