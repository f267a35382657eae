package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func newBufferLogger(component string) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.Component = component
	cfg.Handler = slog.NewTextHandler(&buf, nil)
	return New(cfg), &buf
}

func TestLoggerTagsComponent(t *testing.T) {
	logger, buf := newBufferLogger(ComponentStore)
	logger.Info("record written", FieldTransactionID, "tx-1")

	out := buf.String()
	if !strings.Contains(out, "component=store") {
		t.Errorf("expected component tag, got %q", out)
	}
	if !strings.Contains(out, "transaction_id=tx-1") {
		t.Errorf("expected transaction id field, got %q", out)
	}
}

func TestWithComponentSwitchesTag(t *testing.T) {
	logger, buf := newBufferLogger(ComponentApp)
	logger.WithComponent(ComponentExport).Warn("append failed")

	out := buf.String()
	if !strings.Contains(out, "component=export") {
		t.Errorf("expected export component, got %q", out)
	}
	if logger.Component() != ComponentApp {
		t.Errorf("original logger component changed to %q", logger.Component())
	}
}

func TestFieldsBuilder(t *testing.T) {
	fields := NewFields().
		WithComponent(ComponentHTTP).
		WithOperation(OpCreate).
		WithTransaction("tx-1", "owner-1", "expense", 1250)

	slice := fields.ToSlice()
	if len(slice) != len(fields)*2 {
		t.Fatalf("expected %d elements, got %d", len(fields)*2, len(slice))
	}
	if fields[FieldAmountCents] != int64(1250) {
		t.Errorf("amount field = %v", fields[FieldAmountCents])
	}
}
