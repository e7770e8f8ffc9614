package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/unpackhq/unpack/internal/client"
	"github.com/unpackhq/unpack/internal/config"
	"github.com/unpackhq/unpack/internal/core"
	"github.com/unpackhq/unpack/internal/observability"
	"github.com/unpackhq/unpack/internal/output"
)

var simplifyCmd = &cobra.Command{
	Use:   "simplify [text]",
	Short: "Rewrite text in plain language",
	Long: `Rewrite text in plain language.

Text comes from the arguments, --file, or stdin when neither is given.
By default the request goes to a running server (--url or client.url).
Use --local to call the provider directly from this process.`,
	Example: `  unpack simplify "The aforementioned stipulations shall be effectuated forthwith."
  pbpaste | unpack simplify --provider gemini
  unpack simplify --file notice.txt --local --output-format json`,
	RunE: runSimplify,
}

func runSimplify(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	format, err := resolveOutputFormat(cmd)
	if err != nil {
		return err
	}

	filePath, _ := cmd.Flags().GetString("file")
	text, err := readInputText(args, filePath, cmd.InOrStdin())
	if err != nil {
		return err
	}

	provider, _ := cmd.Flags().GetString("provider")
	local, _ := cmd.Flags().GetBool("local")
	req := core.SimplifyRequest{Text: text, Provider: provider}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	var report *output.SimplifyReport
	if local {
		report, err = simplifyLocal(ctx, cfg, req)
	} else {
		report, err = simplifyRemote(ctx, cfg, req)
	}
	if err != nil {
		return err
	}

	rendered, err := output.NewFormatter(format).FormatSimplify(report)
	if err != nil {
		return err
	}
	return writeRendered(cmd, rendered)
}

// simplifyRemote posts to a running server.
func simplifyRemote(ctx context.Context, cfg *config.Config, req core.SimplifyRequest) (*output.SimplifyReport, error) {
	api := client.New(cfg.Client.URL)
	if cfg.Client.Timeout > 0 {
		api.Timeout = cfg.Client.Timeout
	}

	start := time.Now()
	resp, err := api.SimplifyWith(ctx, req)
	if err != nil {
		if msg := client.ErrorMessage(err); msg != "" {
			return nil, fmt.Errorf("%s (%s)", msg, api.BaseURL)
		}
		return nil, fmt.Errorf("call %s: %w", api.BaseURL, err)
	}
	return output.NewSimplifyReport(req.Text, resp, "api", time.Since(start)), nil
}

// simplifyLocal runs the same pipeline the server uses, in-process.
func simplifyLocal(ctx context.Context, cfg *config.Config, req core.SimplifyRequest) (*output.SimplifyReport, error) {
	logger := observability.CLILogger
	pipe, err := buildPipeline(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	defer func() { _ = pipe.Close() }()

	start := time.Now()
	result, err := pipe.Simplifier.Simplify(ctx, req)
	if err != nil {
		return nil, err
	}
	took := time.Since(start)

	if logger != nil {
		logger.Debug("Simplified locally",
			zap.String("provider", result.Provider),
			zap.String("model", result.Model),
			zap.Bool("cached", result.FromCache),
			zap.Duration("took", took))
	}

	resp := result.Response()
	report := output.NewSimplifyReport(req.Text, &resp, "local", took)
	report.Model = result.Model
	report.Cached = result.FromCache
	return report, nil
}

// readInputText picks the text from args, then the file ("-" is stdin),
// then stdin.
func readInputText(args []string, filePath string, stdin io.Reader) (string, error) {
	if len(args) > 0 && strings.TrimSpace(filePath) != "" {
		return "", fmt.Errorf("pass text as an argument or with --file, not both")
	}
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}

	var (
		data []byte
		err  error
	)
	switch strings.TrimSpace(filePath) {
	case "":
		if stdin == nil {
			return "", fmt.Errorf("no text provided")
		}
		data, err = io.ReadAll(stdin)
	case "-":
		data, err = io.ReadAll(stdin)
	default:
		data, err = os.ReadFile(filePath)
	}
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}

	text := string(data)
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("no text provided")
	}
	return text, nil
}

func init() {
	rootCmd.AddCommand(simplifyCmd)

	simplifyCmd.Flags().StringP("file", "f", "", "Read text from a file (- for stdin)")
	simplifyCmd.Flags().String("provider", "", "Provider: anthropic|gemini (default from config)")
	simplifyCmd.Flags().Bool("local", false, "Call the provider directly instead of a running server")
	simplifyCmd.Flags().String("url", "", "API base URL (default from client.url)")
	addOutputFlags(simplifyCmd)

	_ = viper.BindPFlag("client.url", simplifyCmd.Flags().Lookup("url"))
}
