// Package gatewaytest provides an in-memory stand-in for the gateway client.
package gatewaytest

import (
	"context"
	"net/http"
	"sync"

	"github.com/abduss/storefront/internal/gateway"
)

// Reply is a canned response. A non-nil Err is returned instead of a response.
type Reply struct {
	Status int
	Header http.Header
	Body   string
	Err    error
}

// Fake records requests and answers them from routes keyed by "METHOD path".
// Unmatched requests get Default.
type Fake struct {
	mu       sync.Mutex
	routes   map[string]Reply
	Default  Reply
	requests []gateway.Request
}

// New returns a Fake whose default reply is an empty 200 envelope.
func New() *Fake {
	return &Fake{
		routes:  make(map[string]Reply),
		Default: Reply{Status: http.StatusOK, Body: `{"success":true}`},
	}
}

// On registers a reply for method and path.
func (f *Fake) On(method, path string, reply Reply) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[method+" "+path] = reply
	return f
}

// OK registers a 200 reply with body.
func (f *Fake) OK(method, path, body string) *Fake {
	return f.On(method, path, Reply{Status: http.StatusOK, Body: body})
}

func (f *Fake) Do(_ context.Context, req *gateway.Request) (*gateway.Response, error) {
	f.mu.Lock()
	f.requests = append(f.requests, *req)
	reply, ok := f.routes[req.Method+" "+req.Path]
	if !ok {
		reply = f.Default
	}
	f.mu.Unlock()

	if reply.Err != nil {
		return nil, reply.Err
	}
	status := reply.Status
	if status == 0 {
		status = http.StatusOK
	}
	resp := &gateway.Response{Status: status, Header: reply.Header, Body: []byte(reply.Body)}
	if resp.Header == nil {
		resp.Header = http.Header{}
	}
	if status >= http.StatusBadRequest {
		return nil, &gateway.APIError{Status: status, Body: resp.Body, Kind: gateway.KindHTTP}
	}
	return resp, nil
}

// Requests returns every request seen so far.
func (f *Fake) Requests() []gateway.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]gateway.Request(nil), f.requests...)
}

// Last returns the most recent request.
func (f *Fake) Last() gateway.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return gateway.Request{}
	}
	return f.requests[len(f.requests)-1]
}

// Count returns how many requests matched method and path.
func (f *Fake) Count(method, path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.requests {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}
