package client

import (
	"fmt"
	"io"
	"net"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

var (
	getRegex     = "^get\\s+(\\S+)$"
	putRegex     = "^put\\s+(\\S+)$"
	timeoutRegex = "^timeout\\s+(\\d+)$"
	connectRegex = "^connect\\s+(\\S+)\\s+(\\d+)$"
	traceRegex   = "^trace$"
	quitRegex    = "^quit$"
	helpRegex    = "^help$"
)

const helpText = `Commands:
	connect <host> <port>
	get <file>
	put <file>
	timeout <seconds>
	trace
	quit`

type Evaluator struct {
	l             *zap.SugaredLogger
	client        Connector
	out           io.Writer
	line          string
	regexPatterns map[string]*regexp.Regexp
}

func NewEvaluator(l *zap.SugaredLogger, client Connector, out io.Writer) *Evaluator {
	e := &Evaluator{
		l:      l,
		client: client,
		out:    out,
	}

	e.regexPatterns = make(map[string]*regexp.Regexp)

	e.regexPatterns["get"] = regexp.MustCompile(getRegex)
	e.regexPatterns["put"] = regexp.MustCompile(putRegex)
	e.regexPatterns["timeout"] = regexp.MustCompile(timeoutRegex)
	e.regexPatterns["connect"] = regexp.MustCompile(connectRegex)
	e.regexPatterns["trace"] = regexp.MustCompile(traceRegex)
	e.regexPatterns["quit"] = regexp.MustCompile(quitRegex)
	e.regexPatterns["help"] = regexp.MustCompile(helpRegex)

	return e
}

func (e *Evaluator) evaluate() (bool, error) {
	e.line = strings.TrimSpace(e.line)

	if e.line == "" {
		return false, nil
	}

	if matches := e.regexPatterns["get"].FindStringSubmatch(e.line); len(matches) == 2 {
		return false, e.client.Get(matches[1])
	}

	if matches := e.regexPatterns["put"].FindStringSubmatch(e.line); len(matches) == 2 {
		return false, e.client.Put(matches[1])
	}

	if matches := e.regexPatterns["timeout"].FindStringSubmatch(e.line); len(matches) == 2 {
		n, err := strconv.ParseUint(matches[1], 10, 32)
		if err != nil {
			return false, fmt.Errorf("timeout value can not be parsed: %w", err)
		}

		e.client.SetTimeout(uint(n))

		return false, nil
	}

	if matches := e.regexPatterns["connect"].FindStringSubmatch(e.line); len(matches) == 3 {
		return false, e.client.Connect(net.JoinHostPort(matches[1], matches[2]))
	}

	if e.regexPatterns["trace"].MatchString(e.line) {
		e.client.SetTrace()

		return false, nil
	}

	if e.regexPatterns["help"].MatchString(e.line) {
		fmt.Fprintln(e.out, helpText)

		return false, nil
	}

	if e.regexPatterns["quit"].MatchString(e.line) {
		return true, nil
	}

	return false, fmt.Errorf("unknown command arguments: %s", e.line)
}
