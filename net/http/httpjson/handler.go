package httpjson

import (
	"context"
	"net/http"
	"reflect"

	"github.com/onyx-protocol/txfilter/errors"
)

// ErrorWriter writes the error value to the response,
// setting a response status appropriate for the error.
type ErrorWriter func(context.Context, http.ResponseWriter, error)

// handler calls a function for each request.
// The function signature determines how the request body
// is decoded and how the response is encoded; see Handler.
type handler struct {
	fv      reflect.Value
	inType  reflect.Type // nil means no request body
	hasCtx  bool
	errFunc ErrorWriter
}

var (
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
)

// Handler returns an HTTP handler for function f.
// See the package doc for details on allowed signatures for f.
// If f returns a non-nil error, the handler calls errFunc.
func Handler(f interface{}, errFunc ErrorWriter) (http.Handler, error) {
	fv := reflect.ValueOf(f)
	hasCtx, inType, err := funcInputType(fv.Type())
	if err != nil {
		return nil, err
	}
	return &handler{fv, inType, hasCtx, errFunc}, nil
}

func (h *handler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	ctx = WithRequest(ctx, req)
	ctx = WithResponseWriter(ctx, w)

	var a []reflect.Value
	if h.hasCtx {
		a = append(a, reflect.ValueOf(ctx))
	}
	if h.inType != nil {
		inPtr := reflect.New(h.inType)
		err := Read(ctx, req.Body, inPtr.Interface())
		if err != nil {
			h.errFunc(ctx, w, err)
			return
		}
		a = append(a, inPtr.Elem())
	}

	rv := h.fv.Call(a)

	// If the last return value is an error, it determines
	// success or failure of the call.
	if n := len(rv); n > 0 && h.fv.Type().Out(n-1) == errorType {
		if !rv[n-1].IsNil() {
			h.errFunc(ctx, w, rv[n-1].Interface().(error))
			return
		}
		rv = rv[:n-1]
	}

	if len(rv) > 0 {
		Write(ctx, w, http.StatusOK, rv[0].Interface())
	} else {
		Write(ctx, w, http.StatusOK, DefaultResponse)
	}
}

// funcInputType validates the signature of f and reports
// whether its first parameter is a Context and the type of
// its request-body parameter, if any.
func funcInputType(ft reflect.Type) (hasCtx bool, inType reflect.Type, err error) {
	if ft.Kind() != reflect.Func || ft.IsVariadic() {
		return false, nil, errors.New("need nonvariadic func in " + ft.String())
	}

	off := 0
	if ft.NumIn() > 0 && ft.In(0).Implements(contextType) {
		hasCtx = true
		off = 1
	}

	switch {
	case ft.NumIn() > off+1:
		return false, nil, errors.New("too many parameters in " + ft.String())
	case ft.NumIn() == off+1:
		inType = ft.In(off)
	}

	switch n := ft.NumOut(); {
	case n > 2:
		return false, nil, errors.New("too many return values in " + ft.String())
	case n == 2 && ft.Out(1) != errorType:
		return false, nil, errors.New("second return value must be error in " + ft.String())
	}

	return hasCtx, inType, nil
}
