package httpserver

import (
	"bytes"
	"context"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"
)

type afterKey struct{}

// pendingTask holds at most one unit of work registered during request
// handling. Each response gets its own slot, so concurrent requests
// never share one. The slot is only touched from the request's own
// goroutine: the handler registers, the middleware fires.
type pendingTask struct {
	fn func()
}

// AfterResponse registers fn to run after the current request's response
// has been fully sent to the client. At most one task is pending per
// response; registering again replaces the previous one. Calling this
// outside a route wrapped by [afterResponse] is a no-op.
func AfterResponse(ctx context.Context, fn func()) {
	if p, ok := ctx.Value(afterKey{}).(*pendingTask); ok {
		p.fn = fn
	}
}

// afterResponse lets handlers defer slow work until the client already
// has its acknowledgement. The handler's status and body are buffered
// and sent with an explicit Content-Length, so the client can finish
// reading the response as soon as it is flushed, instead of waiting on
// a terminal chunk that would only arrive once the deferred work is
// done. The send is best-effort: the task fires even when writing the
// response failed.
func afterResponse(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := &pendingTask{}
		r = r.WithContext(context.WithValue(r.Context(), afterKey{}, p))

		buf := &bufferedResponse{dst: w}
		next(buf, r)

		l := zerolog.Ctx(r.Context())
		buf.send(l)
		p.fire(l)
	}
}

// bufferedResponse holds back the handler's status and body so the
// middleware can send them with a Content-Length header. Header
// mutations pass straight through to the destination writer, since
// nothing is on the wire until send.
type bufferedResponse struct {
	dst    http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (b *bufferedResponse) Header() http.Header {
	return b.dst.Header()
}

func (b *bufferedResponse) WriteHeader(statusCode int) {
	if b.status == 0 {
		b.status = statusCode
	}
}

func (b *bufferedResponse) Write(p []byte) (int, error) {
	b.WriteHeader(http.StatusOK)
	return b.body.Write(p)
}

func (b *bufferedResponse) send(l *zerolog.Logger) {
	if b.status == 0 {
		b.status = http.StatusOK
	}

	h := b.dst.Header()
	if h.Get("Content-Length") == "" {
		h.Set("Content-Length", strconv.Itoa(b.body.Len()))
	}

	b.dst.WriteHeader(b.status)
	if b.body.Len() > 0 {
		if _, err := b.dst.Write(b.body.Bytes()); err != nil {
			l.Warn().Err(err).Msg("failed to write response")
		}
	}
	if f, ok := b.dst.(http.Flusher); ok {
		f.Flush()
	}
}

// fire invokes the pending task at most once. A failing task is logged
// and swallowed: the response is already on the wire, so there is
// nothing left to report to the client.
func (p *pendingTask) fire(l *zerolog.Logger) {
	if p.fn == nil {
		return
	}
	fn := p.fn
	p.fn = nil

	defer func() {
		if v := recover(); v != nil {
			l.Error().Any("panic", v).Msg("deferred task failed")
		}
	}()
	fn()
}
