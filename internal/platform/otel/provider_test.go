package otel

import (
	"context"
	"testing"
)

func TestSetupDisabledByDefault(t *testing.T) {
	t.Setenv("EMBERFALL_OTEL_ENDPOINT", "")

	shutdown, err := Setup(context.Background(), "emberfall-test")
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown error = %v", err)
	}
}

func TestSetupExplicitlyDisabled(t *testing.T) {
	t.Setenv("EMBERFALL_OTEL_ENDPOINT", "http://localhost:4318")
	t.Setenv("EMBERFALL_OTEL_ENABLED", "false")

	shutdown, err := Setup(context.Background(), "emberfall-test")
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown error = %v", err)
	}
}
