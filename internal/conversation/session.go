// Package conversation is the interactive chat loop: read a request,
// show what was understood, query, and when nothing matches offer to
// relax the filters one question at a time.
package conversation

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"vehicle-search/internal/common/errors"
	"vehicle-search/internal/common/logger"
	"vehicle-search/internal/models"
	"vehicle-search/internal/parser"
	"vehicle-search/internal/relax"
	"vehicle-search/internal/render"
	"vehicle-search/internal/search"
)

const (
	greeting = "Bem-vindo! Me diga o que você procura. Ex.: 'Quero um sedan flex até 80.000, de 2018 pra cima'."
	commands = "Comandos: :tests para rodar perguntas corretas e falsas; :q para sair"
	prompt   = "Você> "
	askHint  = "(s/N)> "
)

var (
	boldColor  = color.New(color.Bold)
	dimColor   = color.New(color.Faint)
	errColor   = color.New(color.FgRed)
	warnColor  = color.New(color.FgYellow)
	greenColor = color.New(color.FgGreen)
	cyanColor  = color.New(color.FgCyan)
)

// Session holds one chat. It is not safe for concurrent use.
type Session struct {
	parser  *parser.Parser
	engine  *relax.Engine
	querier search.Querier
	search  *search.Service
	in      *bufio.Scanner
	out     io.Writer
	logger  logger.Logger
}

func NewSession(p *parser.Parser, e *relax.Engine, q search.Querier, in io.Reader, out io.Writer, log logger.Logger) *Session {
	return &Session{
		parser:  p,
		engine:  e,
		querier: q,
		search:  search.NewService(p, e, q, log),
		in:      bufio.NewScanner(in),
		out:     out,
		logger:  log.WithFields(map[string]interface{}{"component": "conversation"}),
	}
}

// Run loops until a quit command, end of input or ctx is done.
func (s *Session) Run(ctx context.Context) error {
	boldColor.Fprintln(s.out, greeting)
	dimColor.Fprintln(s.out, commands)

	for ctx.Err() == nil {
		line, ok := s.readLine("\n" + cyanColor.Sprint(prompt))
		if !ok {
			errColor.Fprintln(s.out, "\nEncerrando…")
			return s.in.Err()
		}
		if quit := s.Handle(ctx, line); quit {
			return nil
		}
	}
	return ctx.Err()
}

// Handle processes one line and reports whether the session should end.
func (s *Session) Handle(ctx context.Context, line string) bool {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case ":q", "sair", "exit", "quit":
		return true
	case ":tests":
		s.RunScenarios(ctx)
		return false
	case "":
		return false
	}
	return s.converse(ctx, line)
}

func (s *Session) converse(ctx context.Context, text string) bool {
	filters := s.parser.Parse(text)
	s.logger.Debug("parsed", map[string]interface{}{"text": text, "filters": filters.String()})
	s.label("Consultando com filtros:", filters)

	res, err := s.querier.Query(ctx, filters)
	if err != nil {
		s.printError(err)
		return false
	}
	if res.Total > 0 {
		s.render(res.Items)
		return false
	}

	warnColor.Fprintln(s.out, "Nenhum veículo encontrado.")
	if model, ok := s.parser.Suggestion(text, filters); ok {
		fmt.Fprintf(s.out, "Você quis dizer %s?\n", boldColor.Sprint(model))
	}

	cur := filters
	for round := 0; round < s.engine.Config().MaxRounds; round++ {
		next, report, err := s.engine.Interactive(cur, relax.ConfirmFunc(s.Confirm))
		search.RecordReport(report)
		if err != nil {
			// input ended while a question was open
			errColor.Fprintln(s.out, "\nEncerrando…")
			return true
		}
		if next.Equal(cur) {
			dimColor.Fprintln(s.out, "Nada mais para relaxar.")
			return false
		}
		cur = next

		s.label("Reconsultando:", cur)
		res, err = s.querier.Query(ctx, cur)
		if err != nil {
			s.printError(err)
			return false
		}
		s.render(res.Items)
		if res.Total > 0 {
			return false
		}
	}
	return false
}

// Confirm asks a yes/no question. Only "s" and "sim" count as yes.
func (s *Session) Confirm(question string) (bool, error) {
	fmt.Fprintln(s.out, question)
	answer, ok := s.readLine(cyanColor.Sprint(askHint))
	if !ok {
		if err := s.in.Err(); err != nil {
			return false, err
		}
		return false, io.EOF
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "s", "sim":
		return true, nil
	}
	return false, nil
}

// RunScenarios runs the built-in requests with one automated relaxation.
func (s *Session) RunScenarios(ctx context.Context) {
	boldColor.Fprintln(s.out, "Rodando testes (corretas e falsas)…")
	for _, q := range search.Scenarios {
		if ctx.Err() != nil {
			errColor.Fprintln(s.out, "\nTeste interrompido pelo usuário.")
			return
		}
		greenColor.Fprintf(s.out, "\n> %s\n", q)
		WriteOutcome(ctx, s.out, s.search, q)
	}
}

// WriteOutcome runs one automated search and prints every round.
func WriteOutcome(ctx context.Context, w io.Writer, svc *search.Service, text string) {
	out, err := svc.SearchRounds(ctx, text, 1)
	fmt.Fprintf(w, "%s %s\n", dimColor.Sprint("Filtros:"), out.Parsed.String())
	for _, r := range out.Rounds[min(1, len(out.Rounds)):] {
		warnColor.Fprintln(w, "Sem resultados. Tentando relaxar…")
		fmt.Fprintf(w, "%s %s\n", dimColor.Sprint("Novos filtros:"), r.Filters.String())
	}
	if err != nil {
		fmt.Fprintf(w, "%s %s\n", errColor.Sprint("Erro:"), errors.UserMessage(err))
		return
	}
	_ = render.Results(w, out.Items)
}

func (s *Session) readLine(p string) (string, bool) {
	fmt.Fprint(s.out, p)
	if !s.in.Scan() {
		return "", false
	}
	return s.in.Text(), true
}

func (s *Session) label(text string, f models.FilterSet) {
	fmt.Fprintf(s.out, "%s %s\n", dimColor.Sprint(text), f.String())
}

func (s *Session) render(items []models.VehicleDTO) {
	if err := render.Results(s.out, items); err != nil {
		s.logger.Warn("render failed", map[string]interface{}{"error": err.Error()})
	}
}

func (s *Session) printError(err error) {
	fmt.Fprintf(s.out, "%s %s\n", errColor.Sprint("Erro:"), errors.UserMessage(err))
	s.logger.Warn("query failed", map[string]interface{}{"error": err.Error()})
}
