package lsp

// This file documents the LSP package's testing approach.
//
// jsonrpc2.Request's unexported fields make constructing one directly
// impractical, so handler dispatch itself isn't unit tested here. The
// pure functions handlers.go builds its responses from — findAtOffset,
// scanForOffset, tableContextAt, symbolKindFor, describeValueKind — are
// tested directly against real parsed/projected documents instead (see
// handlers_test.go's mustProject helper).
//
// Full request/response round-trips need a real LSP client speaking
// stdio JSON-RPC against a running server.
