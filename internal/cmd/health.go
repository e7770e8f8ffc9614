package cmd

import (
	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/unpackhq/unpack/internal/ailink"
	"github.com/unpackhq/unpack/internal/ailink/prompt"
	errwrap "github.com/unpackhq/unpack/internal/errors"
	"github.com/unpackhq/unpack/internal/observability"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Run self-health check",
	Long: `Run a self-health check: version info, configuration, embedded prompts and
provider credentials. No provider is called; use "unpack verify" for that.`,
	Run: func(cmd *cobra.Command, args []string) {
		logger := observability.CLILogger
		if logger == nil {
			ExitWithCodeStderr(foundry.ExitConfigInvalid, "Logger not initialized", errwrap.NewConfigInvalidError("Logger not initialized"))
			return
		}
		logger.Info("Running health check...")

		if versionInfo.Version == "" {
			logger.Error("❌ FAIL: Version information missing")
			ExitWithCode(logger, foundry.ExitConfigInvalid, "Version information missing", errwrap.NewConfigInvalidError("Version information missing"))
			return
		}
		logger.Debug("Version check passed", zap.String("version", versionInfo.Version))
		logger.Info("✅ Version information available")

		cfg, err := loadConfig()
		if err != nil {
			logger.Error("❌ FAIL: Configuration invalid")
			ExitWithCode(logger, foundry.ExitConfigInvalid, "Configuration invalid", errwrap.WrapConfigInvalid(cmd.Context(), err, "configuration invalid"))
			return
		}
		logger.Info("✅ Configuration loaded")

		prompts, err := prompt.NewRegistry(cfg.AILink.PromptsDir)
		if err == nil {
			_, err = prompts.Get(prompt.SlugSimplify)
		}
		if err != nil {
			logger.Error("❌ FAIL: Simplify prompt unavailable")
			ExitWithCode(logger, foundry.ExitConfigInvalid, "Simplify prompt unavailable", errwrap.WrapConfigInvalid(cmd.Context(), err, "prompt load failed"))
			return
		}
		logger.Info("✅ Simplify prompt loaded")

		dispatcher := ailink.NewDispatcher(cfg.AILink, prompts, logger)
		registry := dispatcher.Providers
		for _, id := range ailink.Providers() {
			marker := "  "
			if id == dispatcher.DefaultProvider() {
				marker = "* "
			}
			if registry.HasCredentials(id) {
				logger.Info("✅ "+marker+id.String()+" credentials configured", zap.String("model", registry.Model(id)))
			} else {
				logger.Warn("⚠️  " + marker + id.String() + " has no API key")
			}
		}
		if !registry.HasCredentials(dispatcher.DefaultProvider()) {
			ExitWithCode(logger, foundry.ExitConfigInvalid, "Default provider has no API key",
				errwrap.NewConfigInvalidError("no API key for "+dispatcher.DefaultProvider().String()))
			return
		}

		logger.Info("")
		logger.Info("✅ All health checks passed")
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
