package core

import (
	"context"

	"github.com/onyx-protocol/txfilter/database/pg"
	"github.com/onyx-protocol/txfilter/errors"
	"github.com/onyx-protocol/txfilter/feed"
	"github.com/onyx-protocol/txfilter/filter"
	"github.com/onyx-protocol/txfilter/net/http/httperror"
	"github.com/onyx-protocol/txfilter/net/http/httpjson"
)

var (
	errNotFound = errors.New("not found")
	errBadStep  = errors.New("unknown compile step")
)

func isTemporary(info httperror.Info, _ error) bool {
	switch info.Code {
	case "TF000": // internal server error
		return true
	case "TF001": // request timed out
		return true
	default:
		return false
	}
}

// Map error values to standard error codes. Missing entries
// map to the default internal error info.
var errorFormatter = httperror.Formatter{
	Default:     httperror.Info{HTTPStatus: 500, Code: "TF000", Message: "Filter API Error"},
	IsTemporary: isTemporary,
	Errors: map[error]httperror.Info{
		// General error namespace (0xx)
		context.DeadlineExceeded: {HTTPStatus: 408, Code: "TF001", Message: "Request timed out"},
		pg.ErrUserInputNotFound:  {HTTPStatus: 400, Code: "TF002", Message: "Not found"},
		httpjson.ErrBadRequest:   {HTTPStatus: 400, Code: "TF003", Message: "Invalid request body"},
		errNotFound:              {HTTPStatus: 404, Code: "TF006", Message: "Not found"},
		feed.ErrDuplicateAlias:   {HTTPStatus: 400, Code: "TF050", Message: "Alias already exists"},

		// Filter error namespace (6xx)
		filter.ErrBadFilter:     {HTTPStatus: 400, Code: "TF600", Message: "Malformed filter document"},
		filter.ErrBadAddress:    {HTTPStatus: 400, Code: "TF601", Message: "Malformed address"},
		filter.ErrBadHex:        {HTTPStatus: 400, Code: "TF602", Message: "Malformed method selector"},
		filter.ErrBadValue:      {HTTPStatus: 400, Code: "TF603", Message: "Negative or invalid value"},
		filter.ErrInvalidAttach: {HTTPStatus: 400, Code: "TF604", Message: "Invalid filter structure"},
		errBadStep:              {HTTPStatus: 400, Code: "TF605", Message: "Unknown compile step"},
	},
}
