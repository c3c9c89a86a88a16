package lsp

import (
	"context"
	"encoding/json"
	"net/url"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf16"

	lsp "github.com/sourcegraph/go-lsp"
	"github.com/sourcegraph/jsonrpc2"

	"github.com/izreit/sifon/pkg/compiler"
	"github.com/izreit/sifon/pkg/config"
	"github.com/izreit/sifon/pkg/diag"
	"github.com/izreit/sifon/pkg/logutil"
	"github.com/izreit/sifon/pkg/macros"
	"github.com/izreit/sifon/pkg/parse"
)

var logger = logutil.GetLogger("[lsp] ")

var (
	errMethodNotFound = &jsonrpc2.Error{
		Code: jsonrpc2.CodeMethodNotFound, Message: "method not found"}
	errInvalidParams = &jsonrpc2.Error{
		Code: jsonrpc2.CodeInvalidParams, Message: "invalid params"}
)

type server struct {
	content map[lsp.DocumentURI]string
}

func newServer() *server {
	return &server{make(map[lsp.DocumentURI]string)}
}

func handler(s *server) jsonrpc2.Handler {
	return routingHandler(map[string]method{
		"initialize":              s.initialize,
		"textDocument/didOpen":    s.didOpen,
		"textDocument/didChange":  s.didChange,
		"textDocument/didClose":   s.didClose,
		"textDocument/hover":      s.hover,
		"textDocument/completion": s.completion,
		"shutdown":                noop,
		"exit":                    exit,

		// Required by the protocol.
		"initialized": noop,
		// Called by clients even when server doesn't advertise support:
		// https://microsoft.github.io/language-server-protocol/specification#workspace_didChangeWatchedFiles
		"workspace/didChangeWatchedFiles": noop,
	})
}

type method func(context.Context, jsonrpc2.JSONRPC2, json.RawMessage) (any, error)

func noop(_ context.Context, _ jsonrpc2.JSONRPC2, _ json.RawMessage) (any, error) {
	return nil, nil
}

func exit(_ context.Context, conn jsonrpc2.JSONRPC2, _ json.RawMessage) (any, error) {
	return nil, conn.Close()
}

func routingHandler(methods map[string]method) jsonrpc2.Handler {
	return jsonrpc2.HandlerWithError(func(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (any, error) {
		fn, ok := methods[req.Method]
		if !ok {
			return nil, errMethodNotFound
		}
		var params json.RawMessage
		if req.Params != nil {
			params = *req.Params
		}
		return fn(ctx, conn, params)
	})
}

// Handler implementations. These are all called synchronously.

func (s *server) initialize(_ context.Context, _ jsonrpc2.JSONRPC2, _ json.RawMessage) (any, error) {
	return &lsp.InitializeResult{
		Capabilities: lsp.ServerCapabilities{
			TextDocumentSync: &lsp.TextDocumentSyncOptionsOrKind{
				Options: &lsp.TextDocumentSyncOptions{
					OpenClose: true,
					Change:    lsp.TDSKFull,
				},
			},
			CompletionProvider: &lsp.CompletionOptions{},
		},
	}, nil
}

func (s *server) didOpen(ctx context.Context, conn jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params lsp.DidOpenTextDocumentParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}

	uri, content := params.TextDocument.URI, params.TextDocument.Text
	s.content[uri] = content
	go publishDiagnostics(ctx, conn, uri, content)
	return nil, nil
}

func (s *server) didChange(ctx context.Context, conn jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params lsp.DidChangeTextDocumentParams
	if json.Unmarshal(rawParams, &params) != nil || len(params.ContentChanges) == 0 {
		return nil, errInvalidParams
	}

	// ContentChanges includes full text since the server is only advertised to
	// support that; see the initialize method.
	uri, content := params.TextDocument.URI, params.ContentChanges[0].Text
	s.content[uri] = content
	go publishDiagnostics(ctx, conn, uri, content)
	return nil, nil
}

func (s *server) didClose(_ context.Context, _ jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params lsp.DidCloseTextDocumentParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}
	delete(s.content, params.TextDocument.URI)
	return nil, nil
}

func (s *server) hover(_ context.Context, _ jsonrpc2.JSONRPC2, _ json.RawMessage) (any, error) {
	return lsp.Hover{}, nil
}

// Identifiers end at these runes.
const delimiters = " \t\r\n()[]{},.:'@`\""

func (s *server) completion(_ context.Context, _ jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params lsp.CompletionParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}
	content := s.content[params.TextDocument.URI]
	return completeMacros(content, params.Position), nil
}

// completeMacros completes the identifier before pos to the names of the
// built-in macros.
func completeMacros(content string, pos lsp.Position) []lsp.CompletionItem {
	dot := lspPositionToIdx(content, pos)
	start := strings.LastIndexAny(content[:dot], delimiters) + 1
	prefix := content[start:dot]
	replace := lsp.Range{Start: lspPositionFromIdx(content, start), End: pos}

	names := macros.Names()
	sort.Strings(names)
	items := []lsp.CompletionItem{}
	for _, name := range names {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		items = append(items, lsp.CompletionItem{
			Label:    name,
			Kind:     lsp.CIKKeyword,
			TextEdit: &lsp.TextEdit{Range: replace, NewText: name},
		})
	}
	return items
}

func publishDiagnostics(ctx context.Context, conn jsonrpc2.JSONRPC2, uri lsp.DocumentURI, content string) {
	conn.Notify(ctx, "textDocument/publishDiagnostics",
		lsp.PublishDiagnosticsParams{URI: uri, Diagnostics: diagnostics(uri, content)})
}

// diagnostics compiles content with the configuration found next to the
// document. Each call uses a Compiler of its own, since they are made from
// different goroutines.
func diagnostics(uri lsp.DocumentURI, content string) []lsp.Diagnostic {
	opts := compiler.Options{}
	if cfg, err := config.Load(documentDir(uri)); err == nil {
		opts = cfg.Options()
	} else {
		logger.Println("loading configuration:", err)
	}
	res, _ := compiler.New(opts).Compile(parse.Source{Name: string(uri), Code: content})

	diags := make([]lsp.Diagnostic, 0, len(res.Messages))
	for _, m := range res.Messages {
		diags = append(diags, lsp.Diagnostic{
			Range:    lspRangeFromMessage(content, m),
			Severity: severity(m.Kind),
			Code:     m.Name,
			Source:   "sifon",
			Message:  m.Text,
		})
	}
	return diags
}

func severity(k diag.Kind) lsp.DiagnosticSeverity {
	switch k {
	case diag.Warning:
		return lsp.Warning
	case diag.Info:
		return lsp.Hint
	default:
		return lsp.Error
	}
}

func documentDir(uri lsp.DocumentURI) string {
	u, err := url.Parse(string(uri))
	if err != nil || u.Scheme != "file" {
		return "."
	}
	return filepath.Dir(filepath.FromSlash(u.Path))
}

// lspRangeFromMessage returns the range of the identifier a message points
// at. Messages without a line are put at the start of the document.
func lspRangeFromMessage(s string, m *diag.Message) lsp.Range {
	if m.Pos.Line < 0 {
		return lsp.Range{}
	}
	lines := strings.Split(s, "\n")
	if m.Pos.Line >= len(lines) {
		p := lspPositionFromIdx(s, len(s))
		return lsp.Range{Start: p, End: p}
	}
	line := []rune(strings.TrimSuffix(lines[m.Pos.Line], "\r"))
	col := m.Pos.Col
	if col < 0 || col > len(line) {
		col = 0
	}
	end := col
	for end < len(line) && !strings.ContainsRune(delimiters, line[end]) {
		end++
	}
	return lsp.Range{
		Start: lsp.Position{Line: m.Pos.Line, Character: utf16Len(line[:col])},
		End:   lsp.Position{Line: m.Pos.Line, Character: utf16Len(line[:end])},
	}
}

func utf16Len(rs []rune) int { return len(utf16.Encode(rs)) }

func lspPositionToIdx(s string, pos lsp.Position) int {
	var idx int
	walkString(s, func(i int, p lsp.Position) bool {
		idx = i
		return p.Line < pos.Line || (p.Line == pos.Line && p.Character < pos.Character)
	})
	return idx
}

func lspPositionFromIdx(s string, idx int) lsp.Position {
	var pos lsp.Position
	walkString(s, func(i int, p lsp.Position) bool {
		pos = p
		return i < idx
	})
	return pos
}

// Generates (index, lspPosition) pairs in s, stopping if f returns false.
func walkString(s string, f func(i int, p lsp.Position) bool) {
	var p lsp.Position
	lastCR := false

	for i, r := range s {
		if !f(i, p) {
			return
		}
		switch {
		case r == '\r':
			p.Line++
			p.Character = 0
		case r == '\n':
			if lastCR {
				// Ignore \n if it's part of a \r\n sequence
			} else {
				p.Line++
				p.Character = 0
			}
		case r <= 0xFFFF:
			// Encoded in UTF-16 with one unit
			p.Character++
		default:
			// Encoded in UTF-16 with two units
			p.Character += 2
		}
		lastCR = r == '\r'
	}
	f(len(s), p)
}
