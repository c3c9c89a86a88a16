package lsp

import (
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	lsp "github.com/sourcegraph/go-lsp"
	"github.com/sourcegraph/jsonrpc2"

	"github.com/izreit/sifon/pkg/diag"
	"github.com/izreit/sifon/pkg/term"
	"github.com/izreit/sifon/pkg/testutil"
	"github.com/izreit/sifon/pkg/tt"
)

func TestLspPositionConversion(t *testing.T) {
	tt.Test(t, tt.Fn("lspPositionFromIdx", lspPositionFromIdx), tt.Table{
		tt.Args("foo", 1).Rets(lsp.Position{Line: 0, Character: 1}),
		tt.Args("foo\nbar", 5).Rets(lsp.Position{Line: 1, Character: 1}),
		tt.Args("foo\r\nbar", 6).Rets(lsp.Position{Line: 1, Character: 1}),
		tt.Args("\U0001F600x", 4).Rets(lsp.Position{Line: 0, Character: 2}),
	})
	tt.Test(t, tt.Fn("lspPositionToIdx", lspPositionToIdx), tt.Table{
		tt.Args("foo\nbar", lsp.Position{Line: 1, Character: 1}).Rets(5),
		tt.Args("foo", lsp.Position{Line: 0, Character: 3}).Rets(3),
	})
}

func TestLspRangeFromMessage(t *testing.T) {
	msg := func(line, col int) *diag.Message {
		return &diag.Message{Pos: term.Pos{Line: line, Col: col}}
	}
	tt.Test(t, tt.Fn("lspRangeFromMessage", lspRangeFromMessage), tt.Table{
		tt.Args("foo bar", msg(0, 4)).Rets(lsp.Range{
			Start: lsp.Position{Line: 0, Character: 4},
			End:   lsp.Position{Line: 0, Character: 7}}),
		tt.Args("a\n  (bar.baz)", msg(1, 3)).Rets(lsp.Range{
			Start: lsp.Position{Line: 1, Character: 3},
			End:   lsp.Position{Line: 1, Character: 6}}),
		tt.Args("foo", msg(-1, -1)).Rets(lsp.Range{}),
	})
}

func TestDiagnostics(t *testing.T) {
	testutil.InTempDir(t)

	if got := diagnostics("file:///x.sifon", "x .= 3"); len(got) != 0 {
		t.Errorf("got %v, want no diagnostics", got)
	}

	got := diagnostics("file:///x.sifon", "(,)")
	if len(got) == 0 || got[0].Severity != lsp.Error || got[0].Source != "sifon" {
		t.Errorf("got %v, want an error", got)
	}

	got = diagnostics("file:///x.sifon", "foo[1]")
	if len(got) != 1 || got[0].Severity != lsp.Warning {
		t.Errorf("got %v, want one warning", got)
	}
}

func TestCompleteMacros(t *testing.T) {
	items := completeMacros("x .= unl", lsp.Position{Line: 0, Character: 8})
	want := []lsp.CompletionItem{{
		Label: "unless",
		Kind:  lsp.CIKKeyword,
		TextEdit: &lsp.TextEdit{
			Range: lsp.Range{
				Start: lsp.Position{Line: 0, Character: 5},
				End:   lsp.Position{Line: 0, Character: 8}},
			NewText: "unless",
		},
	}}
	if diff := cmp.Diff(want, items); diff != "" {
		t.Errorf("completeMacros (-want +got):\n%s", diff)
	}

	if items := completeMacros("x .= zzz", lsp.Position{Line: 0, Character: 8}); len(items) != 0 {
		t.Errorf("got %v, want none", items)
	}
}

type client struct {
	conn        *jsonrpc2.Conn
	diagnostics chan lsp.PublishDiagnosticsParams
}

func setup(t *testing.T) *client {
	t.Helper()
	testutil.InTempDir(t)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	serverSide, clientSide := net.Pipe()

	go serve(ctx, serverSide)

	c := &client{diagnostics: make(chan lsp.PublishDiagnosticsParams, 10)}
	c.conn = jsonrpc2.NewConn(ctx,
		jsonrpc2.NewBufferedStream(clientSide, jsonrpc2.VSCodeObjectCodec{}),
		jsonrpc2.HandlerWithError(func(_ context.Context, _ *jsonrpc2.Conn, req *jsonrpc2.Request) (any, error) {
			if req.Method == "textDocument/publishDiagnostics" && req.Params != nil {
				var params lsp.PublishDiagnosticsParams
				if json.Unmarshal(*req.Params, &params) == nil {
					c.diagnostics <- params
				}
			}
			return nil, nil
		}))
	t.Cleanup(func() { c.conn.Close() })
	return c
}

func (c *client) nextDiagnostics(t *testing.T) lsp.PublishDiagnosticsParams {
	t.Helper()
	select {
	case p := <-c.diagnostics:
		return p
	case <-time.After(testutil.Scaled(5 * time.Second)):
		t.Fatal("timed out waiting for diagnostics")
		return lsp.PublishDiagnosticsParams{}
	}
}

func TestServer(t *testing.T) {
	c := setup(t)
	ctx := context.Background()
	const uri = lsp.DocumentURI("file:///test.sifon")

	var init lsp.InitializeResult
	if err := c.conn.Call(ctx, "initialize", lsp.InitializeParams{}, &init); err != nil {
		t.Fatal(err)
	}
	if init.Capabilities.CompletionProvider == nil {
		t.Errorf("completion not advertised")
	}

	c.conn.Notify(ctx, "textDocument/didOpen", lsp.DidOpenTextDocumentParams{
		TextDocument: lsp.TextDocumentItem{URI: uri, Text: "(,)"}})
	if p := c.nextDiagnostics(t); p.URI != uri || len(p.Diagnostics) == 0 {
		t.Errorf("got %+v, want errors", p)
	}

	c.conn.Notify(ctx, "textDocument/didChange", lsp.DidChangeTextDocumentParams{
		TextDocument:   lsp.VersionedTextDocumentIdentifier{TextDocumentIdentifier: lsp.TextDocumentIdentifier{URI: uri}},
		ContentChanges: []lsp.TextDocumentContentChangeEvent{{Text: "x .= 3\nunl"}}})
	if p := c.nextDiagnostics(t); len(p.Diagnostics) != 0 {
		t.Errorf("got %+v, want no diagnostics", p)
	}

	var items []lsp.CompletionItem
	err := c.conn.Call(ctx, "textDocument/completion", lsp.CompletionParams{
		TextDocumentPositionParams: lsp.TextDocumentPositionParams{
			TextDocument: lsp.TextDocumentIdentifier{URI: uri},
			Position:     lsp.Position{Line: 1, Character: 3}}}, &items)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].Label != "unless" {
		t.Errorf("got completion %v", items)
	}

	err = c.conn.Call(ctx, "no/such/method", nil, nil)
	if rpcErr, ok := err.(*jsonrpc2.Error); !ok || rpcErr.Code != jsonrpc2.CodeMethodNotFound {
		t.Errorf("got error %v, want method not found", err)
	}
}
