package core

import (
	"context"
	"encoding/json"
	"math/big"

	"github.com/onyx-protocol/txfilter/errors"
	"github.com/onyx-protocol/txfilter/filter"
)

// A filterStep is one builder operation of a compile-filter request.
// Op selects the operation; the remaining fields carry its argument,
// when it takes one.
type filterStep struct {
	Op       string   `json:"op"`
	Address  string   `json:"address,omitempty"`
	Selector string   `json:"selector,omitempty"`
	Value    *big.Int `json:"value,omitempty"`
}

type compileFilterRequest struct {
	Steps  []filterStep `json:"steps"`
	Pretty bool         `json:"pretty,omitempty"`
}

type compileFilterResponse struct {
	Filter json.RawMessage `json:"filter"`
	Pretty string          `json:"pretty,omitempty"`
}

// compileFilter replays the request's steps through a filter.Builder
// and returns the serialized document. The first failing step aborts
// the compilation.
func (a *API) compileFilter(ctx context.Context, in compileFilterRequest) (*compileFilterResponse, error) {
	b := filter.NewBuilder()
	for _, step := range in.Steps {
		switch step.Op {
		case "to":
			b.To(step.Address)
		case "from":
			b.From(step.Address)
		case "method":
			b.Method(step.Selector)
		case "value":
			b.Value(step.Value)
		case "and":
			b.And()
		case "or":
			b.Or()
		case "exit":
			b.Exit()
		default:
			return nil, errors.WithDetailf(errBadStep, "op %q", step.Op)
		}
	}
	if err := b.Err(); err != nil {
		return nil, err
	}

	doc, err := b.Encode()
	if err != nil {
		return nil, err
	}

	resp := &compileFilterResponse{Filter: doc}
	if in.Pretty {
		resp.Pretty, err = b.EncodePretty()
		if err != nil {
			return nil, err
		}
	}
	return resp, nil
}
