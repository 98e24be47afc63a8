package log

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

func setTestLogWriter(w io.Writer) func() {
	logWriterMu.Lock()
	old := logWriter
	logWriter = w
	logWriterMu.Unlock()

	return func() {
		logWriterMu.Lock()
		logWriter = old
		logWriterMu.Unlock()
	}
}

func TestPrintkv(t *testing.T) {
	examples := []struct {
		keyvals []interface{}
		want    []string
	}{
		// Basic example
		{
			keyvals: []interface{}{"msg", "hello world"},
			want: []string{
				"at=log_test.go:",
				"t=",
				`msg="hello world"`,
			},
		},

		// Duplicate keys
		{
			keyvals: []interface{}{"msg", "hello world", "msg", "goodbye world"},
			want: []string{
				"at=log_test.go:",
				"t=",
				`msg="hello world"`,
				`msg="goodbye world"`,
			},
		},

		// Zero log params
		{
			keyvals: nil,
			want: []string{
				"at=log_test.go:",
				"t=",
			},
		},

		// Odd number of log params
		{
			keyvals: []interface{}{"k1", "v1", "k2"},
			want: []string{
				"at=log_test.go:",
				"t=",
				"k1=v1",
				"k2=",
				`log-error="odd number of log params"`,
			},
		},
	}

	for i, ex := range examples {
		t.Log("Example", i)

		buf := new(bytes.Buffer)
		reset := setTestLogWriter(buf)

		Printkv(context.Background(), ex.keyvals...)

		got := buf.String()

		for _, w := range ex.want {
			if !strings.Contains(got, w) {
				t.Errorf("Result did not contain string:\ngot:  %s\nwant: %s", got, w)
			}
		}

		reset()
	}
}

func TestPrefixContext(t *testing.T) {
	buf := new(bytes.Buffer)
	reset := setTestLogWriter(buf)
	defer reset()

	ctx := AddPrefixkv(context.Background(), "reqid", "example-request-id")
	Printkv(ctx, "msg", "hi")

	got := buf.String()
	want := "reqid=example-request-id"

	if !strings.Contains(got, want) {
		t.Errorf("Result did not contain string:\ngot:  %s\nwant: %s", got, want)
	}
}

func TestPrefixContextNested(t *testing.T) {
	buf := new(bytes.Buffer)
	reset := setTestLogWriter(buf)
	defer reset()

	ctx := AddPrefixkv(context.Background(), "reqid", "abc")
	ctx = AddPrefixkv(ctx, "feed", "gold-txs")
	Printkv(ctx)

	got := buf.String()
	for _, want := range []string{"reqid=abc", "feed=gold-txs"} {
		if !strings.Contains(got, want) {
			t.Errorf("Result did not contain string:\ngot:  %s\nwant: %s", got, want)
		}
	}
}

func TestPrintf(t *testing.T) {
	buf := new(bytes.Buffer)
	reset := setTestLogWriter(buf)
	defer reset()

	Printf(context.Background(), "test round %d", 0)

	got := buf.String()
	want := []string{
		"at=log_test.go:",
		`message="test round 0"`,
	}

	for _, w := range want {
		if !strings.Contains(got, w) {
			t.Errorf("Result did not contain string:\ngot:  %s\nwant: %s", got, w)
		}
	}
}

func TestError(t *testing.T) {
	buf := new(bytes.Buffer)
	reset := setTestLogWriter(buf)
	defer reset()

	Error(context.Background(), errors.New("boo"), "failure x ", 0)

	got := buf.String()
	want := []string{
		"at=log_test.go:",
		`error="failure x 0: boo"`,
	}

	for _, w := range want {
		if !strings.Contains(got, w) {
			t.Errorf("Result did not contain string:\ngot:  %s\nwant: %s", got, w)
		}
	}
}

func TestFormatKey(t *testing.T) {
	examples := []struct {
		key  interface{}
		want string
	}{
		{"hello", "hello"},
		{"hello world", "hello-world"},
		{"", "?"},
		{true, "true"},
		{"a b\"c\nd;e\tf龜g", "a-b-c-d-e-f龜g"},
	}

	for i, ex := range examples {
		t.Log("Example", i)
		got := formatKey(ex.key)
		if got != ex.want {
			t.Errorf("formatKey(%#v) = %q want %q", ex.key, got, ex.want)
		}
	}
}

func TestFormatValue(t *testing.T) {
	examples := []struct {
		value interface{}
		want  string
	}{
		{"hello", "hello"},
		{"hello world", `"hello world"`},
		{1.5, "1.5"},
		{true, "true"},
		{errors.New("this is an error"), `"this is an error"`},
		{[]byte{'a', 'b', 'c'}, `"[97 98 99]"`},
		{bytes.NewBuffer([]byte{'a', 'b', 'c'}), "abc"},
		{"a b\"c\nd;e\tf龜g", `"a b\"c\nd;e\tf龜g"`},
	}

	for i, ex := range examples {
		t.Log("Example", i)
		got := formatValue(ex.value)
		if got != ex.want {
			t.Errorf("formatValue(%#v) = %q want %q", ex.value, got, ex.want)
		}
	}
}
