package tools

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
)

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, onLine func(string)) error
}

// CommandExecutor runs binaries through os/exec, streaming combined
// stdout/stderr output line by line to the supplied callback.
type CommandExecutor struct{}

func (CommandExecutor) Run(ctx context.Context, binary string, args []string, onLine func(string)) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start command: %w", err)
	}

	var wg sync.WaitGroup
	var scanErr error
	var once sync.Once

	scan := func(r io.Reader, forward func(string)) {
		defer wg.Done()
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			forward(scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			once.Do(func() {
				scanErr = err
			})
		}
	}

	forward := func(line string) {
		if onLine != nil {
			onLine(line)
			return
		}
		fmt.Fprintln(os.Stderr, line)
	}

	wg.Add(2)
	go scan(stdout, forward)
	go scan(stderr, forward)

	wg.Wait()
	if scanErr != nil {
		_ = cmd.Process.Kill()
		return fmt.Errorf("scan output: %w", scanErr)
	}

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("wait command: %w", err)
	}
	return nil
}
