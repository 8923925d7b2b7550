// Package lsp implements a Language Server Protocol server for Tombi. It
// serves the same diagnostics, hover, documentSymbol, and formatting
// results the CLI prints, keyed by open document instead of file
// argument.
package lsp

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"path/filepath"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
	"go.uber.org/zap"

	"github.com/tombi-toml/tombi/internal/config"
	"github.com/tombi-toml/tombi/internal/schema"
)

// Server implements the LSP server for Tombi.
type Server struct {
	docs  *documentStore
	store *schema.Store

	conn   jsonrpc2.Conn
	client protocol.Client
	logger *log.Logger

	workspaceRoot string
	capabilities  protocol.ServerCapabilities

	cancel context.CancelFunc
}

// NewServer creates a new LSP server instance. The schema store is
// primed lazily on initialize, once the workspace root (and therefore
// its tombi.toml) is known.
func NewServer() *Server {
	return &Server{
		docs:   newDocumentStore(),
		logger: log.New(os.Stderr, "[LSP] ", log.LstdFlags),
		capabilities: protocol.ServerCapabilities{
			TextDocumentSync: protocol.TextDocumentSyncOptions{
				OpenClose: true,
				Change:    protocol.TextDocumentSyncKindFull,
				Save: &protocol.SaveOptions{
					IncludeText: false,
				},
			},
			CompletionProvider: &protocol.CompletionOptions{
				TriggerCharacters: []string{".", "\""},
			},
			HoverProvider:          true,
			DocumentSymbolProvider: true,
			DocumentFormattingProvider: &protocol.DocumentFormattingOptions{
				WorkDoneProgressOptions: protocol.WorkDoneProgressOptions{},
			},
		},
	}
}

// Run starts the LSP server, serving over stdin/stdout until ctx is
// cancelled or the client sends `exit`.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Println("Starting Tombi Language Server")

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	stream := jsonrpc2.NewStream(stdrwc{})
	conn := jsonrpc2.NewConn(stream)
	s.conn = conn

	zapLogger, err := zap.NewDevelopment()
	if err != nil {
		s.logger.Printf("Warning: Failed to create zap logger: %v", err)
		zapLogger = zap.NewNop()
	}
	s.client = protocol.ClientDispatcher(conn, zapLogger)

	conn.Go(ctx, s.handler())

	<-ctx.Done()

	s.logger.Println("Shutting down Tombi Language Server")
	return conn.Close()
}

func (s *Server) handler() jsonrpc2.Handler {
	return func(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
		s.logger.Printf("Received: %s", req.Method())

		switch req.Method() {
		case protocol.MethodInitialize:
			return s.handleInitialize(ctx, reply, req)
		case protocol.MethodInitialized:
			return reply(ctx, nil, nil)
		case protocol.MethodShutdown:
			return reply(ctx, nil, nil)
		case protocol.MethodExit:
			return s.handleExit(ctx, reply, req)
		case protocol.MethodTextDocumentDidOpen:
			return s.handleTextDocumentDidOpen(ctx, reply, req)
		case protocol.MethodTextDocumentDidChange:
			return s.handleTextDocumentDidChange(ctx, reply, req)
		case protocol.MethodTextDocumentDidClose:
			return s.handleTextDocumentDidClose(ctx, reply, req)
		case protocol.MethodTextDocumentDidSave:
			return s.handleTextDocumentDidSave(ctx, reply, req)
		case protocol.MethodTextDocumentCompletion:
			return s.handleTextDocumentCompletion(ctx, reply, req)
		case protocol.MethodTextDocumentHover:
			return s.handleTextDocumentHover(ctx, reply, req)
		case protocol.MethodTextDocumentDocumentSymbol:
			return s.handleTextDocumentDocumentSymbol(ctx, reply, req)
		case protocol.MethodTextDocumentFormatting:
			return s.handleTextDocumentFormatting(ctx, reply, req)
		default:
			return reply(ctx, nil, jsonrpc2.ErrMethodNotFound)
		}
	}
}

func (s *Server) handleInitialize(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.InitializeParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return s.replyWithError(ctx, reply, jsonrpc2.InvalidParams, "failed to parse initialize params")
	}

	switch {
	case len(params.WorkspaceFolders) > 0:
		s.workspaceRoot = uri.URI(params.WorkspaceFolders[0].URI).Filename()
	case params.RootURI != "":
		s.workspaceRoot = params.RootURI.Filename()
	case params.RootPath != "":
		s.workspaceRoot = params.RootPath
	}
	s.logger.Printf("Workspace root: %s", s.workspaceRoot)

	if err := s.initSchemaStore(ctx); err != nil {
		s.logger.Printf("Warning: schema store init failed: %v", err)
	}

	return reply(ctx, protocol.InitializeResult{
		Capabilities: s.capabilities,
		ServerInfo: &protocol.ServerInfo{
			Name:    "tombi-lsp",
			Version: "0.1.0",
		},
	}, nil)
}

// initSchemaStore loads workspaceRoot/tombi.toml (if present) and primes
// a schema Store from its [[schemas]]/schema-catalogs entries, mirroring
// the CLI's checkPipeline construction for one-shot invocations.
func (s *Server) initSchemaStore(ctx context.Context) error {
	configPath := "tombi.toml"
	if s.workspaceRoot != "" {
		configPath = filepath.Join(s.workspaceRoot, "tombi.toml")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	cacheDir, err := os.UserCacheDir()
	if err != nil {
		cacheDir = os.TempDir()
	}
	fetcher := schema.NewFetcher(filepath.Join(cacheDir, "tombi", "schemas"), false)
	store := schema.NewStore(fetcher)

	explicit := make([]schema.Association, 0, len(cfg.Schemas))
	for _, e := range cfg.Schemas {
		a := schema.Association{Pattern: e.Path, URI: schema.SchemaUri(e.URI)}
		if e.Root != "" {
			a.At = schema.AccessorPath{schema.KeyAccessor(e.Root)}
		}
		explicit = append(explicit, a)
	}
	catalogURLs := make([]schema.SchemaUri, 0, len(cfg.CatalogURLs))
	for _, u := range cfg.CatalogURLs {
		catalogURLs = append(catalogURLs, schema.SchemaUri(u))
	}

	if err := store.LoadConfig(ctx, explicit, catalogURLs); err != nil {
		return err
	}
	s.store = store
	return nil
}

func (s *Server) handleExit(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	if err := reply(ctx, nil, nil); err != nil {
		s.logger.Printf("Error replying to exit: %v", err)
	}
	if s.cancel != nil {
		s.cancel()
	}
	return nil
}

func (s *Server) handleTextDocumentDidOpen(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DidOpenTextDocumentParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return s.replyWithError(ctx, reply, jsonrpc2.InvalidParams, "failed to parse didOpen params")
	}

	docURI := string(params.TextDocument.URI)
	s.docs.update(ctx, s.store, docURI, params.TextDocument.Text, int(params.TextDocument.Version))
	s.publishDiagnostics(ctx, docURI)

	return reply(ctx, nil, nil)
}

func (s *Server) handleTextDocumentDidChange(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DidChangeTextDocumentParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return s.replyWithError(ctx, reply, jsonrpc2.InvalidParams, "failed to parse didChange params")
	}
	if len(params.ContentChanges) == 0 {
		return reply(ctx, nil, nil)
	}

	docURI := string(params.TextDocument.URI)
	content := params.ContentChanges[len(params.ContentChanges)-1].Text
	s.docs.update(ctx, s.store, docURI, content, int(params.TextDocument.Version))
	s.publishDiagnostics(ctx, docURI)

	return reply(ctx, nil, nil)
}

func (s *Server) handleTextDocumentDidClose(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DidCloseTextDocumentParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return s.replyWithError(ctx, reply, jsonrpc2.InvalidParams, "failed to parse didClose params")
	}
	s.docs.close(string(params.TextDocument.URI))
	return reply(ctx, nil, nil)
}

func (s *Server) handleTextDocumentDidSave(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DidSaveTextDocumentParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return s.replyWithError(ctx, reply, jsonrpc2.InvalidParams, "failed to parse didSave params")
	}
	s.publishDiagnostics(ctx, string(params.TextDocument.URI))
	return reply(ctx, nil, nil)
}

// publishDiagnostics re-publishes a document's cached analysis. An
// unknown/closed document publishes an empty list, clearing the
// client's view rather than leaving stale diagnostics behind.
func (s *Server) publishDiagnostics(ctx context.Context, docURI string) {
	doc := s.docs.get(docURI)
	var diags []protocol.Diagnostic
	if doc != nil {
		diags = convertDiagnostics(doc)
	}

	params := protocol.PublishDiagnosticsParams{
		URI:         protocol.DocumentURI(docURI),
		Diagnostics: diags,
	}
	if err := s.client.PublishDiagnostics(ctx, &params); err != nil {
		s.logger.Printf("Error publishing diagnostics: %v", err)
	}
}

func (s *Server) replyWithError(ctx context.Context, reply jsonrpc2.Replier, code jsonrpc2.Code, message string) error {
	return reply(ctx, nil, &jsonrpc2.Error{Code: code, Message: message})
}

// stdrwc implements io.ReadWriteCloser over stdin/stdout.
type stdrwc struct{}

func (stdrwc) Read(p []byte) (int, error)  { return os.Stdin.Read(p) }
func (stdrwc) Write(p []byte) (int, error) { return os.Stdout.Write(p) }
func (stdrwc) Close() error {
	if err := os.Stdin.Close(); err != nil {
		return err
	}
	return os.Stdout.Close()
}
