// Package lsp implements a language server for sifon. It reports the
// diagnostics of compiling open documents and completes built-in macro names.
package lsp

import (
	"context"
	"io"
	"os"

	"github.com/sourcegraph/jsonrpc2"

	"github.com/izreit/sifon/pkg/prog"
)

// Program runs the language server on stdin and stdout when -lsp is given.
type Program struct {
	run bool
}

func (p *Program) RegisterFlags(fs *prog.FlagSet) {
	fs.BoolVar(&p.run, "lsp", false, "Run the language server instead of compiling")
}

func (p *Program) Run(fds [3]*os.File, _ []string) error {
	if !p.run {
		return prog.ErrNextProgram
	}
	serve(context.Background(), stdio{fds[0], fds[1]})
	return nil
}

// serve answers requests on rwc until the client disconnects.
func serve(ctx context.Context, rwc io.ReadWriteCloser) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	logger.Println("serving")
	conn := jsonrpc2.NewConn(ctx,
		jsonrpc2.NewBufferedStream(rwc, jsonrpc2.VSCodeObjectCodec{}),
		handler(newServer()))
	<-conn.DisconnectNotify()
	logger.Println("client disconnected")
}

type stdio struct {
	io.ReadCloser
	io.WriteCloser
}

func (s stdio) Close() error {
	err := s.ReadCloser.Close()
	if werr := s.WriteCloser.Close(); err == nil {
		err = werr
	}
	return err
}
