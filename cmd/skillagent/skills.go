package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/xun404/dify-agent-skill-plugin/pkg/skills"
)

var skillsCmd = &cobra.Command{
	Use:   "skills",
	Short: "Inspect the merged skill registry",
}

var skillsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List eligible skills in registry order",
	RunE: func(cmd *cobra.Command, _ []string) error {
		registry, err := buildInspectionRegistry(cmd)
		if err != nil {
			return err
		}

		bold := color.New(color.Bold)
		faint := color.New(color.Faint)
		for _, s := range registry.Skills() {
			bold.Printf("%s", s.Name)
			fmt.Printf(" (priority %d, %s)\n", s.Priority, s.Source)
			fmt.Printf("  %s\n", s.Description)
			faint.Printf("  triggers: %s\n", strings.Join(s.Triggers, ", "))
			if s.AllowedTools != nil {
				faint.Printf("  allowed tools: %s\n", strings.Join(s.AllowedTools, ", "))
			}
		}

		if warnings := registry.Warnings(); warnings != nil {
			color.Yellow("warnings: %v", warnings)
		}
		return nil
	},
}

var skillsShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show one skill's full definition and instructions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := buildInspectionRegistry(cmd)
		if err != nil {
			return err
		}

		skill, ok := registry.Get(args[0])
		if !ok {
			return errors.Errorf("skill %q not found", args[0])
		}

		color.New(color.Bold).Printf("%s\n", skill.Name)
		fmt.Printf("description: %s\n", skill.Description)
		fmt.Printf("priority:    %d\n", skill.Priority)
		if skill.Category != "" {
			fmt.Printf("category:    %s\n", skill.Category)
		}
		fmt.Printf("source:      %s\n", skill.Source)
		fmt.Printf("triggers:    %s\n", strings.Join(skill.Triggers, ", "))
		if skill.AllowedTools != nil {
			fmt.Printf("allowed tools: %s\n", strings.Join(skill.AllowedTools, ", "))
		}
		fmt.Printf("\n%s\n", skill.Instructions)
		return nil
	},
}

func init() {
	skillsCmd.PersistentFlags().String("custom-skills-file", "", "Path to a YAML file with additional skill definitions")
	skillsCmd.PersistentFlags().String("enabled-skills", skills.FilterAll, "Enabled skills: 'all' or comma-separated names")
	skillsCmd.AddCommand(skillsListCmd)
	skillsCmd.AddCommand(skillsShowCmd)
}

func buildInspectionRegistry(cmd *cobra.Command) (*skills.Registry, error) {
	builtins, err := skills.BuiltinSkills()
	if err != nil {
		return nil, err
	}

	if viper.GetBool("discover_local_skills") {
		discovery, err := skills.NewDiscovery()
		if err != nil {
			return nil, err
		}
		builtins = append(builtins, discovery.DiscoverSkills(cmd.Context())...)
	}

	customFile, _ := cmd.Flags().GetString("custom-skills-file")
	customYAML, err := readCustomSkills(customFile)
	if err != nil {
		return nil, err
	}

	filter, _ := cmd.Flags().GetString("enabled-skills")
	registry, err := skills.BuildRegistry(cmd.Context(), builtins, customYAML, filter)
	if err != nil {
		color.Yellow("%v", err)
	}
	return registry, nil
}
