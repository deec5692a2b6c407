package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-chat/internal/api"
	"github.com/jonathan/resume-chat/internal/export"
	"github.com/jonathan/resume-chat/internal/session"
	"github.com/jonathan/resume-chat/internal/types"
)

const chatHelp = `Type an answer and press Enter. Commands:
  /chip N             click suggestion N
  /send               send the current input
  /edit FIELD VALUE   edit a form field (full_name, email, phone, experience_level,
                      domain, job_title, skills, summary)
  /upload PATH        upload a résumé and discard collected answers
  /export [DIR]       save the résumé as PDF
  /submit             submit the profile
  /form               show the form
  /status             show session status
  /reset              start over
  /quit               leave (progress is kept)`

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive résumé interview",
	Long:  "Restores the saved session, or opens a new one, and reads answers and commands from standard input.",
	Args:  cobra.NoArgs,
	RunE:  runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck

	r := newREPL(a, cmd.InOrStdin(), cmd.OutOrStdout())
	return r.run(ctx)
}

// repl drives the controller from line-based input. Transcript entries are echoed as they
// appear, including questions delivered after a delay.
type repl struct {
	app *app
	in  io.Reader
	out io.Writer

	mu   sync.Mutex
	seen map[string]bool
}

func newREPL(a *app, in io.Reader, out io.Writer) *repl {
	r := &repl{app: a, in: in, out: out, seen: make(map[string]bool)}
	a.ctl.Transcript().OnChange(r.echo)
	return r
}

func (r *repl) echo(entries []types.TranscriptEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range entries {
		if e.Typing || r.seen[e.ID] {
			continue
		}
		r.seen[e.ID] = true
		r.app.printer.PrintEntry(e)
	}
}

func (r *repl) printf(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, format, args...) //nolint:errcheck
}

func (r *repl) run(ctx context.Context) error {
	if err := r.app.ctl.Start(ctx); err != nil {
		r.app.logger.Debug("[CLI] start", "error", err)
	}
	r.showPrompt()

	sc := bufio.NewScanner(r.in)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		if r.app.ctl.State().ModalVisible {
			if err := r.app.ctl.Dispatch(ctx, session.ModalClosed{}); err != nil {
				r.app.logger.Debug("[CLI] new session", "error", err)
			}
			r.showPrompt()
			continue
		}

		quit, err := r.handle(ctx, strings.TrimSpace(sc.Text()))
		if err != nil {
			r.report(err)
		}
		if quit {
			return nil
		}
		r.showPrompt()
	}
	return sc.Err()
}

// report prints errors the transcript or an alert has not already shown.
func (r *repl) report(err error) {
	if errors.Is(err, session.ErrInputDisabled) {
		r.printf("Input is disabled. Use /submit, /export or /reset.\n")
		return
	}
	r.app.logger.Debug("[CLI] command failed", "error", err)
	if !surfaced(err) {
		r.printf("%v\n", err)
	}
}

func surfaced(err error) bool {
	var (
		serverErr    *session.ServerError
		missingErr   *session.MissingFieldsError
		validErr     *session.ValidationError
		transportErr *api.TransportError
		renderErr    *export.RenderError
		templateErr  *export.TemplateError
	)
	switch {
	case errors.As(err, &serverErr), errors.As(err, &missingErr), errors.As(err, &transportErr),
		errors.As(err, &renderErr), errors.As(err, &templateErr):
		return true
	case errors.As(err, &validErr):
		return slices.Contains(types.FormFields, validErr.Field)
	}
	return false
}

func (r *repl) showPrompt() {
	s := r.app.ctl.State()
	if s.ModalVisible {
		r.mu.Lock()
		r.app.printer.PrintModal()
		r.mu.Unlock()
		r.printf("Press Enter to start a new session.\n")
		return
	}
	r.mu.Lock()
	if s.Step >= 0 {
		r.app.printer.PrintProgress(s.Step, s.Progress)
	}
	r.app.printer.PrintChips(s.Chips)
	r.mu.Unlock()
	if s.Input.Value != "" {
		r.printf("input: %s\n", s.Input.Value)
	}
	if s.Input.Disabled {
		r.printf("(%s)\n", s.Input.Placeholder)
	}
}

// handle runs one input line and reports whether the loop should stop.
func (r *repl) handle(ctx context.Context, line string) (bool, error) {
	ctl := r.app.ctl
	if line == "" {
		return false, nil
	}
	if !strings.HasPrefix(line, "/") {
		ctl.SetInput(line)
		return false, ctl.Dispatch(ctx, session.UserSend{})
	}

	name, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch name {
	case "/quit", "/exit":
		return true, nil
	case "/help":
		r.printf("%s\n", chatHelp)
	case "/send":
		return false, ctl.Dispatch(ctx, session.UserSend{})
	case "/chip":
		n, err := strconv.Atoi(rest)
		if err != nil {
			return false, fmt.Errorf("usage: /chip N")
		}
		return false, ctl.Dispatch(ctx, session.ChipClick{Index: n - 1})
	case "/edit":
		field, value, ok := strings.Cut(rest, " ")
		if !ok || field == "" {
			return false, fmt.Errorf("usage: /edit FIELD VALUE")
		}
		return false, ctl.Dispatch(ctx, session.FieldEdit{Field: field, Value: value})
	case "/upload":
		if rest == "" {
			return false, fmt.Errorf("usage: /upload PATH")
		}
		f, err := os.Open(rest)
		if err != nil {
			return false, fmt.Errorf("cannot open %s: %w", rest, err)
		}
		defer f.Close() //nolint:errcheck
		return false, ctl.Dispatch(ctx, session.FileSelected{Name: filepath.Base(rest), Content: f})
	case "/export":
		dir := rest
		if dir == "" {
			dir = r.app.cfg.ExportDir
		}
		if err := ctl.Dispatch(ctx, session.ExportRequested{OutputDir: dir}); err != nil {
			return false, err
		}
		r.printf("Saved %s\n", filepath.Join(dir, exportName(ctl.State().Form)))
	case "/submit":
		return false, ctl.Dispatch(ctx, session.FormSubmit{})
	case "/form":
		s := ctl.State()
		r.mu.Lock()
		r.app.printer.PrintForm(s.Form, s.Flashing)
		r.mu.Unlock()
	case "/status":
		r.mu.Lock()
		r.app.printer.PrintStatus(ctl.State())
		r.mu.Unlock()
	case "/reset":
		r.printf("Starting over...\n")
		return false, ctl.Dispatch(ctx, session.ResetRequested{})
	default:
		return false, fmt.Errorf("unknown command %s (try /help)", name)
	}
	return false, nil
}

func exportName(form map[string]string) string {
	return export.Filename(types.NewResumeExport(form).FullName)
}
