package env

import (
	"os"
	"testing"
	"time"
)

func TestInt(t *testing.T) {
	result := Int("nonexistent", 15)
	Parse()

	if *result != 15 {
		t.Fatalf("expected result=15, got result=%d", *result)
	}

	err := os.Setenv("int-key", "25")
	if err != nil {
		t.Fatal("unexpected error", err)
	}

	result = Int("int-key", 15)
	Parse()

	if *result != 25 {
		t.Fatalf("expected result=25, got result=%d", *result)
	}
}

func TestIntVar(t *testing.T) {
	var result int
	IntVar(&result, "nonexistent", 15)
	Parse()

	if result != 15 {
		t.Fatalf("expected result=15, got result=%d", result)
	}

	err := os.Setenv("int-key", "25")
	if err != nil {
		t.Fatal("unexpected error", err)
	}

	IntVar(&result, "int-key", 15)
	Parse()

	if result != 25 {
		t.Fatalf("expected result=25, got result=%d", result)
	}
}

func TestBool(t *testing.T) {
	result := Bool("nonexistent", true)
	Parse()

	if *result != true {
		t.Fatalf("expected result=true, got result=%t", *result)
	}

	err := os.Setenv("bool-key", "true")
	if err != nil {
		t.Fatal("unexpected error", err)
	}

	result = Bool("bool-key", false)
	Parse()

	if *result != true {
		t.Fatalf("expected result=true, got result=%t", *result)
	}
}

func TestBoolVar(t *testing.T) {
	var result bool
	BoolVar(&result, "nonexistent", true)
	Parse()

	if result != true {
		t.Fatalf("expected result=true, got result=%t", result)
	}

	err := os.Setenv("bool-key", "true")
	if err != nil {
		t.Fatal("unexpected error", err)
	}

	BoolVar(&result, "bool-key", false)
	Parse()

	if result != true {
		t.Fatalf("expected result=true, got result=%t", true)
	}
}

func TestDuration(t *testing.T) {
	result := Duration("nonexistent", 15*time.Second)

	if result != 15*time.Second {
		t.Fatalf("expected result=15s, got result=%v", result)
	}

	err := os.Setenv("duration-key", "25s")
	if err != nil {
		t.Fatal("unexpected error", err)
	}

	result = Duration("duration-key", 15*time.Second)

	if result != 25*time.Second {
		t.Fatalf("expected result=25s, got result=%v", result)
	}
}

func TestString(t *testing.T) {
	result := String("nonexistent", "default")
	Parse()

	if *result != "default" {
		t.Fatalf("expected result=default, got result=%s", *result)
	}

	err := os.Setenv("string-key", "something-new")
	if err != nil {
		t.Fatal("unexpected error", err)
	}

	result = String("string-key", "default")
	Parse()

	if *result != "something-new" {
		t.Fatalf("expected result=something-new, got result=%s", *result)
	}
}

func TestStringVar(t *testing.T) {
	var result string
	StringVar(&result, "nonexistent", "default")
	Parse()

	if result != "default" {
		t.Fatalf("expected result=default, got result=%s", result)
	}

	err := os.Setenv("string-key", "something-new")
	if err != nil {
		t.Fatal("unexpected error", err)
	}

	StringVar(&result, "string-key", "default")
	Parse()

	if result != "something-new" {
		t.Fatalf("expected result=something-new, got result=%s", result)
	}
}
