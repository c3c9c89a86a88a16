package shell

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/izreit/sifon/pkg/buildinfo"
	"github.com/izreit/sifon/pkg/diag"
	"github.com/izreit/sifon/pkg/parse"
	"github.com/izreit/sifon/pkg/store"
	"github.com/izreit/sifon/pkg/store/storedefs"
)

// compileFile compiles the named file. The code is written to out, or to
// stdout if out is empty. It reports whether compilation succeeded.
func (s *session) compileFile(fds [3]*os.File, fname, out string) bool {
	name, err := filepath.Abs(fname)
	if err != nil {
		fmt.Fprintf(fds[2], "cannot get full path of %q: %v\n", fname, err)
		return false
	}
	code, err := readFileUTF8(name)
	if err != nil {
		fmt.Fprintf(fds[2], "cannot read %q: %v\n", name, err)
		return false
	}
	return s.compileSource(fds, parse.Source{Name: name, Code: code}, out)
}

func (s *session) compileSource(fds [3]*os.File, src parse.Source, out string) bool {
	code, ok := s.compile(fds[2], src)
	if !ok {
		return false
	}
	if !strings.HasSuffix(code, "\n") {
		code += "\n"
	}
	if out == "" {
		fds[1].WriteString(code)
		return true
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		fmt.Fprintln(fds[2], "cannot write output:", err)
		return false
	}
	if err := os.WriteFile(out, []byte(code), 0o644); err != nil {
		fmt.Fprintln(fds[2], "cannot write output:", err)
		return false
	}
	return true
}

// compile compiles src, looking it up in the cache first. Only successful
// compilations are cached, and cached ones report no messages. Debug
// compilations bypass the cache since their point is the messages.
func (s *session) compile(stderr io.Writer, src parse.Source) (string, bool) {
	var key storedefs.Key
	useCache := s.store != nil && !s.opts.Debug
	if useCache {
		key = store.KeyOf(buildinfo.Value.Version, fmt.Sprintf("%+v", s.opts), src.Name, src.Code)
		code, err := s.store.Code(key)
		if err == nil {
			logger.Printf("cache hit for %s", src.Name)
			return code, true
		}
		if !errors.Is(err, storedefs.ErrNoCode) {
			logger.Println("reading the compile cache:", err)
		}
	}

	res, _ := s.c.Compile(src)
	showMessages(stderr, res.Messages, src, s.json)
	if res.Failed() {
		return "", false
	}
	if useCache {
		if err := s.store.PutCode(key, res.Code); err != nil {
			logger.Println("writing the compile cache:", err)
		}
	}
	return res.Code, true
}

// outputPath returns where -c writes the code compiled from fname.
func (s *session) outputPath(fname, out string) string {
	if out != "" {
		return out
	}
	js := strings.TrimSuffix(fname, filepath.Ext(fname)) + ".js"
	if s.cfg.OutDir != "" {
		return filepath.Join(s.cfg.OutDir, filepath.Base(js))
	}
	return js
}

func showMessages(w io.Writer, msgs []*diag.Message, src parse.Source, asJSON bool) {
	if len(msgs) == 0 {
		return
	}
	if asJSON {
		fmt.Fprintf(w, "%s\n", messagesToJSON(msgs))
		return
	}
	for _, m := range msgs {
		if m.Pos.File == src.Name {
			fmt.Fprintln(w, m.ShowWithSource("", src.Code))
		} else {
			fmt.Fprintln(w, m.Show(""))
		}
	}
}

var errSourceNotUTF8 = errors.New("source is not UTF-8")

func readFileUTF8(fname string) (string, error) {
	f, err := os.Open(fname)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return readUTF8(f)
}

func readUTF8(r io.Reader) (string, error) {
	bytes, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(bytes) {
		return "", errSourceNotUTF8
	}
	return string(bytes), nil
}

// An auxiliary struct for converting messages to JSON. Line and column are
// one-based, and zero when unknown.
type messageInJSON struct {
	FileName string `json:"fileName"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
	Kind     string `json:"kind"`
	Name     string `json:"name,omitempty"`
	Message  string `json:"message"`
}

// Converts messages into JSON.
func messagesToJSON(msgs []*diag.Message) []byte {
	converted := make([]messageInJSON, len(msgs))
	for i, m := range msgs {
		converted[i] = messageInJSON{
			FileName: m.Pos.File,
			Line:     m.Pos.Line + 1,
			Column:   m.Pos.Col + 1,
			Kind:     strings.ToLower(m.Kind.String()),
			Name:     m.Name,
			Message:  m.Text,
		}
	}
	jsonMessages, errMarshal := json.Marshal(converted)
	if errMarshal != nil {
		return []byte(`[{"message":"Unable to convert the messages to JSON"}]`)
	}
	return jsonMessages
}
