package logger

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/rs/zerolog"
	"os"
	"os/exec"
	"runtime/debug"
	"strings"
)

// WrapProcess re-runs the given executable with its stderr piped through
// this process, so that JSON log lines pass through untouched while panic
// traces are collected and reported as a single fatal record.
func WrapProcess(executable string, arg ...string) {
	hmmLogger := NewLogger("Logs wrapper")
	defer handlePanic(hmmLogger)

	r, w, err := os.Pipe()
	if err != nil {
		hmmLogger.Fatal().Err(err).Msg("Could not create pipe for logs")
		os.Exit(1)
	}

	cmd := exec.Command(executable, arg...)
	cmd.Stderr = w
	cmd.Stdout = os.Stdout

	if err = cmd.Start(); err != nil {
		hmmLogger.Fatal().Err(err).Msg("Could not launch main process")
		os.Exit(1)
	}
	exitCodeCh := make(chan int)
	logsCh := make(chan []byte)

	go waitForCommandToExit(cmd, hmmLogger, exitCodeCh)
	go collectLogs(r, hmmLogger, logsCh)

	panicLogsBuilder := strings.Builder{}
	foundPanic := false
	for {
		select {
		case exitCode := <-exitCodeCh:
			handleExit(exitCode, panicLogsBuilder.String(), hmmLogger)
		case logsLineBytes := <-logsCh:
			foundPanic = handleLogLine(logsLineBytes, foundPanic, &panicLogsBuilder, hmmLogger)
		}
	}
}

func waitForCommandToExit(cmd *exec.Cmd, hmmLogger zerolog.Logger, exitCodeCh chan<- int) {
	defer handlePanic(hmmLogger)
	err := cmd.Wait()
	if err == nil {
		exitCodeCh <- 0
		return
	}
	exitErr, ok := err.(*exec.ExitError)
	if !ok {
		exitCodeCh <- 1
		return
	}
	exitCodeCh <- exitErr.ExitCode()
}

func collectLogs(r *os.File, hmmLogger zerolog.Logger, logsCh chan<- []byte) {
	defer handlePanic(hmmLogger)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		logsCh <- scanner.Bytes()
	}
	if err := scanner.Err(); err != nil {
		hmmLogger.Fatal().Err(err).Msg("Error scanning piped main process's Stderr")
		os.Exit(1)
	}
}

func handleExit(exitCode int, panicLogs string, hmmLogger zerolog.Logger) {
	if exitCode == 0 {
		hmmLogger.Info().Msg("Exited with code 0")
	} else {
		hmmLogger.
			Fatal().
			Err(errors.New(panicLogs)).
			Msgf("Panicked and exited with code: %d", exitCode)
	}
	os.Exit(exitCode)
}

func handleLogLine(logsLineBytes []byte, foundPanic bool, builder *strings.Builder, hmmLogger zerolog.Logger) bool {
	logsLine := string(logsLineBytes)
	if !foundPanic && strings.HasPrefix(logsLine, "panic") {
		foundPanic = true
	}
	switch {
	case len(logsLineBytes) == 0:
		return foundPanic
	case foundPanic:
		builder.WriteString(fmt.Sprintf("%s\n", logsLine))
	case isJSON(logsLineBytes):
		println(logsLine)
	default:
		hmmLogger.Error().Msgf("Got log line that is not JSON formatted: '%s'", logsLine)
	}
	return foundPanic
}

func handlePanic(hmmLogger zerolog.Logger) {
	r := recover()
	if r == nil {
		return
	}
	hmmLogger.
		Fatal().
		Str("stacktrace", string(debug.Stack())).
		Msgf("Logs wrapper panicked: %v", r)
	os.Exit(1)
}

func isJSON(line []byte) bool {
	var js json.RawMessage
	return json.Unmarshal(line, &js) == nil
}
