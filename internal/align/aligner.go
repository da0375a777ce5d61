package align

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"phrasecut/internal/services"
)

// CommandAligner invokes an external forced-alignment tool per recording when
// no pre-generated alignment file exists. The tool is expected to write its
// alignment output (TextGrid or word-level JSON) next to, or in place of, the
// destination path, which a DirProvider then picks up.
type CommandAligner struct {
	// Binary is the aligner executable (e.g. an mfa or whisperx wrapper).
	Binary string
	// Args are the command arguments; the placeholders {audio}, {transcript},
	// and {dest} are substituted per invocation.
	Args []string
	// Timeout bounds one alignment run. Expiry fails the recording's request
	// group with a timeout error; it never aborts the batch.
	Timeout time.Duration

	runner func(ctx context.Context, name string, args ...string) error
}

// WithRunner sets a custom command runner (for testing).
func (a *CommandAligner) WithRunner(runner func(ctx context.Context, name string, args ...string) error) {
	a.runner = runner
}

// Generate aligns one recording's audio against its transcript.
func (a *CommandAligner) Generate(ctx context.Context, audioPath, transcriptPath, destPath string) error {
	if strings.TrimSpace(a.Binary) == "" {
		return services.Wrap(services.ErrConfiguration, "align", "generate", "aligner binary not configured", nil)
	}

	runCtx := ctx
	if a.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, a.Timeout)
		defer cancel()
	}

	args := make([]string, 0, len(a.Args))
	replacer := strings.NewReplacer("{audio}", audioPath, "{transcript}", transcriptPath, "{dest}", destPath)
	for _, arg := range a.Args {
		args = append(args, replacer.Replace(arg))
	}

	err := a.run(runCtx, a.Binary, args...)
	if err == nil {
		return nil
	}
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return services.Wrap(services.ErrTimeout, "align", "generate",
			fmt.Sprintf("aligner exceeded %s for %s", a.Timeout, audioPath), err)
	}
	return services.Wrap(services.ErrExternalTool, "align", "generate", audioPath, err)
}

func (a *CommandAligner) run(ctx context.Context, name string, args ...string) error {
	if a.runner != nil {
		return a.runner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}
