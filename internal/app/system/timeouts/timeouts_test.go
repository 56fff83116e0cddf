package timeouts

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestConfigure_IgnoresZero(t *testing.T) {
	defer Reset()

	Configure(Config{Call: 3 * time.Second})
	if Call() != 3*time.Second {
		t.Errorf("Call: got %v", Call())
	}
	if Bulk() != DefaultBulk {
		t.Errorf("Bulk: got %v, want default", Bulk())
	}

	Reset()
	if Current() != defaults() {
		t.Errorf("Reset: got %+v", Current())
	}
}

func TestWithTimeout_LogsDeadline(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	log := zap.New(core)

	ctx, cancel := WithTimeout(context.Background(), time.Millisecond, log, "bulk delete")
	<-ctx.Done()
	cancel()

	if logs.Len() != 1 {
		t.Fatalf("expected one warning, got %d", logs.Len())
	}
	if got := logs.All()[0].ContextMap()["operation"]; got != "bulk delete" {
		t.Errorf("operation: got %v", got)
	}
}

func TestWithTimeout_QuietOnCancel(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	_, cancel := WithTimeout(context.Background(), time.Hour, zap.New(core), "call")
	cancel()
	if logs.Len() != 0 {
		t.Errorf("expected no warnings, got %d", logs.Len())
	}
}
