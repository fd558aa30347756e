package form

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"bfhlform/internal/contract"
	"bfhlform/internal/httpclient"
	"bfhlform/internal/model"
)

var (
	ErrMalformedJSON = errors.New("malformed json")
	ErrMissingData   = errors.New("request lacks data")
	ErrBackend       = errors.New("backend error")
)

// Request is a decoded and contract-checked form input, ready to post.
type Request struct {
	Body []byte
}

// Prepare decodes raw as exactly one JSON value and checks it against the
// request contract. data must also be truthy: null, false, 0 and "" are
// refused while empty arrays and objects pass.
func Prepare(raw string, c *contract.Contract) (Request, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	var v any
	if err := dec.Decode(&v); err != nil {
		return Request{}, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return Request{}, fmt.Errorf("%w: trailing data after json value", ErrMalformedJSON)
	}

	obj, ok := v.(map[string]any)
	if !ok {
		return Request{}, fmt.Errorf("%w: input is not an object", ErrMissingData)
	}
	if c != nil {
		if err := c.ValidateRequest(obj); err != nil {
			return Request{}, fmt.Errorf("%w: %v", ErrMissingData, err)
		}
	}
	if !truthy(obj["data"]) {
		return Request{}, fmt.Errorf("%w: data is empty", ErrMissingData)
	}

	var body bytes.Buffer
	if err := json.Compact(&body, []byte(raw)); err != nil {
		return Request{}, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}
	return Request{Body: body.Bytes()}, nil
}

func truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case float64:
		return val != 0
	case string:
		return val != ""
	default:
		return true
	}
}

// Outcome is what a successful submit hands back to the reducer.
type Outcome struct {
	Response model.Response
	Meta     Meta
}

type ExecuteFunc func(context.Context, httpclient.RequestSpec) (httpclient.Result, error)

type Submitter struct {
	endpoint string
	contract *contract.Contract
	log      *zap.Logger
	execute  ExecuteFunc
}

func NewSubmitter(endpoint string, c *contract.Contract, log *zap.Logger) *Submitter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Submitter{endpoint: endpoint, contract: c, log: log, execute: httpclient.Execute}
}

// WithExecutor swaps the transport, mainly for tests.
func (s *Submitter) WithExecutor(fn ExecuteFunc) *Submitter {
	s.execute = fn
	return s
}

func (s *Submitter) Endpoint() string { return s.endpoint }

// Do runs one submit of raw: prepare, POST, decode. The returned error
// wraps one of ErrMalformedJSON, ErrMissingData or ErrBackend.
func (s *Submitter) Do(ctx context.Context, raw string) (Outcome, error) {
	req, err := Prepare(raw, s.contract)
	if err != nil {
		fields := []zap.Field{zap.Error(err)}
		if s.contract != nil {
			fields = append(fields, zap.Strings("required", s.contract.Required()))
		}
		s.log.Debug("input rejected", fields...)
		return Outcome{}, err
	}

	spec, err := httpclient.BuildRequest(s.endpoint, req.Body)
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: %v", ErrBackend, err)
	}
	log := s.log.With(zap.String("request_id", spec.Headers["X-Request-ID"]), zap.String("url", spec.URL))
	log.Debug("posting", zap.Int("bytes", len(spec.Body)))

	res, err := s.execute(ctx, spec)
	if err != nil {
		log.Warn("request failed", zap.Error(err))
		return Outcome{}, fmt.Errorf("%w: %v", ErrBackend, err)
	}
	if !res.OK() {
		log.Warn("backend returned error status", zap.Int("status", res.StatusCode))
		return Outcome{}, fmt.Errorf("%w: %s", ErrBackend, res.Status)
	}

	resp, err := model.DecodeResponse(res.Body)
	if err != nil {
		log.Warn("undecodable response", zap.Error(err))
		return Outcome{}, fmt.Errorf("%w: %v", ErrBackend, err)
	}
	log.Debug("response stored", zap.Int("status", res.StatusCode), zap.Duration("elapsed", res.Elapsed))

	return Outcome{
		Response: resp,
		Meta: Meta{
			Status:    res.Status,
			Size:      len(res.Body),
			Elapsed:   res.Elapsed,
			RequestID: res.RequestID,
		},
	}, nil
}

// Submit is the synchronous form of a submit: the state it returns has
// either the new response or the error message set.
func (s *Submitter) Submit(ctx context.Context, st State) State {
	out, err := s.Do(ctx, st.Input)
	if err != nil {
		return Failed(st)
	}
	return Succeeded(st, out)
}
