package gateway

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Response is a successful backend reply with its body fully read.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// envelope is the backend's standard wrapper.
type envelope struct {
	Success *bool           `json:"success"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

func (r *Response) envelope() (envelope, bool) {
	var env envelope
	if len(r.Body) == 0 || json.Unmarshal(r.Body, &env) != nil {
		return envelope{}, false
	}
	return env, true
}

// Decode unmarshals the envelope's data field into dst, or the whole body when
// the response is not enveloped. An empty body or a null data field leaves dst
// untouched.
func (r *Response) Decode(dst any) error {
	if len(r.Body) == 0 {
		return nil
	}
	if env, ok := r.envelope(); ok {
		switch {
		case string(env.Data) == "null" && env.Success != nil:
			return nil
		case len(env.Data) > 0 && string(env.Data) != "null":
			if err := json.Unmarshal(env.Data, dst); err != nil {
				return fmt.Errorf("decode response data: %w", err)
			}
			return nil
		}
	}
	if err := json.Unmarshal(r.Body, dst); err != nil {
		return fmt.Errorf("decode response body: %w", err)
	}
	return nil
}

// Message returns the envelope's message, if any.
func (r *Response) Message() string {
	env, _ := r.envelope()
	return env.Message
}

// Filename returns the filename parameter of Content-Disposition.
func (r *Response) Filename() string {
	cd := r.Header.Get("Content-Disposition")
	if cd == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(cd)
	if err != nil {
		return ""
	}
	return params["filename"]
}

func (r *Response) errorMessage() string {
	env, ok := r.envelope()
	if !ok {
		return ""
	}
	if env.Message != "" {
		return env.Message
	}
	return env.Error
}

// Page is the backend's paginated list shape.
type Page[T any] struct {
	Content       []T   `json:"content"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	Number        int   `json:"number"`
	Size          int   `json:"size"`
	Last          bool  `json:"last"`
}

// PageQuery carries pagination and sorting parameters.
type PageQuery struct {
	Page    int
	Size    int
	SortBy  string
	SortDir string
}

// DefaultPageSize applies when PageQuery.Size is zero.
const DefaultPageSize = 10

// Values encodes q as query parameters. Empty sort fields are omitted.
func (q PageQuery) Values() url.Values {
	size := q.Size
	if size <= 0 {
		size = DefaultPageSize
	}
	v := url.Values{}
	v.Set("page", strconv.Itoa(max(q.Page, 0)))
	v.Set("size", strconv.Itoa(size))
	if q.SortBy != "" {
		v.Set("sortBy", q.SortBy)
	}
	if dir := strings.ToLower(q.SortDir); dir == "asc" || dir == "desc" {
		v.Set("sortDir", dir)
	}
	return v
}
