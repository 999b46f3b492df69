package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/algotutor/internal/topicgraph"
)

var topicCmd = &cobra.Command{
	Use:   "topic",
	Short: "Browse the topic catalog",
}

var topicListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all topics (optionally filtered by category)",
	RunE: func(cmd *cobra.Command, args []string) error {
		category, _ := cmd.Flags().GetString("category")

		g, err := loadCatalog(cmd)
		if err != nil {
			return err
		}

		var topics []topicgraph.Topic
		for _, t := range g.Topics() {
			if category != "" && !strings.EqualFold(string(t.Category), category) {
				continue
			}
			topics = append(topics, t)
		}
		if len(topics) == 0 {
			return fmt.Errorf("no topics found for category %q", category)
		}

		fmt.Printf("%-36s  %-12s  %-20s  %s\n", "ID", "Category", "Family", "Related")
		fmt.Println(strings.Repeat("─", 100))

		for _, t := range topics {
			fmt.Printf("%-36s  %-12s  %-20s  %d\n",
				truncate(t.ID, 36), t.Category, truncate(t.Family, 20), len(g.Related(t.ID)))
		}

		fmt.Printf("\n%d topics\n", len(topics))
		return nil
	},
}

var topicShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a topic and its related topics",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := loadCatalog(cmd)
		if err != nil {
			return err
		}
		t, err := g.Get(args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Topic:     %s\n", t.ID)
		if c := t.Classification(); c != "" {
			fmt.Printf("Class:     %s\n", c)
		}
		if t.Description != "" {
			fmt.Printf("About:     %s\n", t.Description)
		}
		related := g.Related(t.ID)
		if len(related) == 0 {
			fmt.Println("Related:   (none)")
			return nil
		}
		fmt.Println("Related:")
		for _, r := range related {
			fmt.Printf("  - %s\n", r)
		}
		return nil
	},
}

var topicExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the active catalog as JSON to stdout",
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := loadCatalog(cmd)
		if err != nil {
			return err
		}
		data, err := g.MarshalCatalog()
		if err != nil {
			return fmt.Errorf("marshal catalog: %w", err)
		}
		_, err = fmt.Fprintln(os.Stdout, string(data))
		return err
	},
}

func init() {
	topicListCmd.Flags().String("category", "", "Filter by category (uninformed or informed)")

	topicCmd.AddCommand(topicListCmd)
	topicCmd.AddCommand(topicShowCmd)
	topicCmd.AddCommand(topicExportCmd)
}
