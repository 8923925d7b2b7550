package lsp

import (
	"testing"

	"github.com/tombi-toml/tombi/internal/diagnostic"
	"go.lsp.dev/protocol"
)

func TestServerInitialization(t *testing.T) {
	server := NewServer()
	if server == nil {
		t.Fatal("NewServer() returned nil")
	}

	if server.docs == nil {
		t.Error("Server document store is nil")
	}

	if server.logger == nil {
		t.Error("Server logger is nil")
	}

	caps := server.capabilities
	if caps.CompletionProvider == nil {
		t.Error("CompletionProvider is nil")
	}
	if caps.HoverProvider != true {
		t.Error("HoverProvider should be true")
	}
	if caps.DocumentSymbolProvider != true {
		t.Error("DocumentSymbolProvider should be true")
	}
	if caps.DocumentFormattingProvider == nil {
		t.Error("DocumentFormattingProvider is nil")
	}
}

func TestConvertSeverity(t *testing.T) {
	tests := []struct {
		name     string
		input    diagnostic.Severity
		expected protocol.DiagnosticSeverity
	}{
		{"error severity", diagnostic.SeverityError, protocol.DiagnosticSeverityError},
		{"warn severity", diagnostic.SeverityWarn, protocol.DiagnosticSeverityWarning},
		{"off severity", diagnostic.SeverityOff, protocol.DiagnosticSeverityHint},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := convertSeverity(tt.input); got != tt.expected {
				t.Errorf("convertSeverity(%v): expected %v, got %v", tt.input, tt.expected, got)
			}
		})
	}
}

func TestStdRWC(t *testing.T) {
	rwc := stdrwc{}
	_ = rwc.Read
	_ = rwc.Write
	_ = rwc.Close
}
