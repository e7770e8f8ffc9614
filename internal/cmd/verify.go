package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/unpackhq/unpack/internal/ailink"
	"github.com/unpackhq/unpack/internal/ailink/prompt"
	"github.com/unpackhq/unpack/internal/core/engine"
	"github.com/unpackhq/unpack/internal/observability"
	"github.com/unpackhq/unpack/internal/output"
)

const verifySentence = "The utilization of the mechanism was executed with high efficiency."

type verifyTarget struct {
	Label    string
	Selector string
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check provider connectivity with a sample sentence",
	Long: fmt.Sprintf(`Send a sample sentence through the default provider and through Gemini,
and report each outcome. Every check runs even when an earlier one fails.

Sample: %q`, verifySentence),
	RunE: runVerify,
}

func runVerify(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	format, err := resolveOutputFormat(cmd)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	prompts, err := prompt.NewRegistry(cfg.AILink.PromptsDir)
	if err != nil {
		return fmt.Errorf("load prompts: %w", err)
	}
	dispatcher := ailink.NewDispatcher(cfg.AILink, prompts, observability.CLILogger)

	provider, _ := cmd.Flags().GetString("provider")
	targets, err := verifyTargets(provider)
	if err != nil {
		return err
	}

	results := runVerifyChecks(ctx, dispatcher, targets)

	rendered, err := output.NewFormatter(format).FormatVerify(results)
	if err != nil {
		return err
	}
	if err := writeRendered(cmd, rendered); err != nil {
		return err
	}

	failed := 0
	for _, r := range results {
		if !r.OK {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d provider checks failed", failed, len(results))
	}
	return nil
}

// verifyTargets returns the default+gemini pair, or a single named provider.
func verifyTargets(provider string) ([]verifyTarget, error) {
	if provider == "" {
		return []verifyTarget{
			{Label: "default", Selector: ""},
			{Label: "gemini", Selector: string(ailink.ProviderGemini)},
		}, nil
	}
	id, ok := ailink.ParseProvider(provider)
	if !ok {
		return nil, fmt.Errorf("unknown provider %q (valid: %v)", provider, ailink.Providers())
	}
	return []verifyTarget{{Label: id.String(), Selector: id.String()}}, nil
}

func runVerifyChecks(ctx context.Context, d engine.Dispatcher, targets []verifyTarget) []output.VerifyResult {
	logger := observability.CLILogger
	results := make([]output.VerifyResult, 0, len(targets))

	for _, target := range targets {
		res := output.VerifyResult{
			Label:    target.Label,
			Provider: d.Resolve(target.Selector).String(),
			Model:    d.Model(target.Selector),
		}

		start := time.Now()
		out, err := d.Simplify(ctx, verifySentence, target.Selector)
		res.DurationMs = time.Since(start).Milliseconds()

		if err != nil {
			res.Error = err.Error()
			if logger != nil {
				logger.Debug("Provider check failed",
					zap.String("label", target.Label),
					zap.String("provider", res.Provider),
					zap.Error(err))
			}
		} else {
			res.OK = true
			res.Output = out.Text
		}
		results = append(results, res)
	}
	return results
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().String("provider", "", "Check only this provider: anthropic|gemini")
	addOutputFlags(verifyCmd)
}
