package main

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/xun404/dify-agent-skill-plugin/pkg/agent"
	"github.com/xun404/dify-agent-skill-plugin/pkg/llm"
	"github.com/xun404/dify-agent-skill-plugin/pkg/skills"
	"github.com/xun404/dify-agent-skill-plugin/pkg/tools"
)

var runCmd = &cobra.Command{
	Use:   "run [query]",
	Short: "Run a single query through the skill agent",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		query := strings.Join(args, " ")

		provider, err := buildProvider()
		if err != nil {
			return err
		}

		customYAML, err := readCustomSkills(viper.GetString("custom_skills_file"))
		if err != nil {
			return err
		}

		opts := []agent.StrategyOption{}
		if viper.GetBool("discover_local_skills") {
			discovery, err := skills.NewDiscovery()
			if err != nil {
				return errors.Wrap(err, "failed to set up skill discovery")
			}
			opts = append(opts, agent.WithExtraSkills(discovery.DiscoverSkills(ctx)...))
		}

		strategy := agent.NewStrategy(
			provider,
			tools.NewRegistry(tools.NewClockTool(), tools.NewEchoTool()),
			&llm.ConsoleMessageHandler{},
			opts...,
		)

		_, err = strategy.Invoke(ctx, agent.Params{
			Query:             query,
			EnabledSkills:     viper.GetString("enabled_skills"),
			CustomSkills:      customYAML,
			MaximumIterations: viper.GetInt("maximum_iterations"),
			MaxActiveSkills:   viper.GetInt("max_active_skills"),
			Debug:             viper.GetBool("debug"),
		})
		return err
	},
}

func init() {
	runCmd.Flags().String("provider", "openai", "Model provider (openai, anthropic)")
	runCmd.Flags().String("model", "", "Model name (provider default when empty)")
	runCmd.Flags().Int("max-tokens", 4096, "Maximum response tokens")
	runCmd.Flags().String("enabled-skills", skills.FilterAll, "Enabled skills: 'all' or comma-separated names")
	runCmd.Flags().String("custom-skills-file", "", "Path to a YAML file with additional skill definitions")
	runCmd.Flags().Int("maximum-iterations", agent.DefaultMaximumIterations, "Maximum model/tool round trips")
	runCmd.Flags().Int("max-active-skills", 0, "Cap on activated skills per query (0 = unlimited)")
	runCmd.Flags().Bool("discover-local-skills", false, "Also load skills from ./.skillagent/skills and ~/.skillagent/skills")
	runCmd.Flags().Bool("debug", false, "Print the skill match trace")

	_ = viper.BindPFlag("provider", runCmd.Flags().Lookup("provider"))
	_ = viper.BindPFlag("model", runCmd.Flags().Lookup("model"))
	_ = viper.BindPFlag("max_tokens", runCmd.Flags().Lookup("max-tokens"))
	_ = viper.BindPFlag("enabled_skills", runCmd.Flags().Lookup("enabled-skills"))
	_ = viper.BindPFlag("custom_skills_file", runCmd.Flags().Lookup("custom-skills-file"))
	_ = viper.BindPFlag("maximum_iterations", runCmd.Flags().Lookup("maximum-iterations"))
	_ = viper.BindPFlag("max_active_skills", runCmd.Flags().Lookup("max-active-skills"))
	_ = viper.BindPFlag("discover_local_skills", runCmd.Flags().Lookup("discover-local-skills"))
	_ = viper.BindPFlag("debug", runCmd.Flags().Lookup("debug"))

	_ = viper.BindEnv("openai_api_key", "OPENAI_API_KEY")
	_ = viper.BindEnv("anthropic_api_key", "ANTHROPIC_API_KEY")
}

func buildProvider() (llm.Provider, error) {
	providerName := viper.GetString("provider")

	options := llm.ProviderOptions{
		Model:     viper.GetString("model"),
		MaxTokens: viper.GetInt("max_tokens"),
	}

	switch providerName {
	case "openai":
		options.APIKey = viper.GetString("openai_api_key")
	case "anthropic":
		options.APIKey = viper.GetString("anthropic_api_key")
	}

	provider, err := llm.NewProvider(providerName, options)
	if err != nil {
		return nil, err
	}

	return llm.WithRetry(provider, llm.DefaultRetryConfig), nil
}

func readCustomSkills(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrapf(err, "failed to read custom skills file %q", path)
	}
	return string(content), nil
}
