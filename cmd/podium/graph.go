package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/orchestra-dev/podium"
	"github.com/orchestra-dev/podium/internal/logging"
	"github.com/orchestra-dev/podium/internal/presentation/graph"
	"github.com/orchestra-dev/podium/pkg/adapters/memory"
	"github.com/orchestra-dev/podium/pkg/config"
	"github.com/orchestra-dev/podium/pkg/domain"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the command hierarchy visualization",
	Long: `Builds the command forest from the configuration and outputs either an
indented tree or a Mermaid diagram (graph TD).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfgPath, _ := cmd.Flags().GetString("config")
		format, _ := cmd.Flags().GetString("format")

		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		orch := memory.New(cfg.Commands)
		defer orch.Close()

		ctrl, err := podium.New(cfg, orch, podium.WithLogger(logging.NewNop()))
		if err != nil {
			return err
		}

		overlay := &graph.Overlay{}
		seen := make(map[string]bool)
		domain.WalkForest(ctrl.Forest(), func(node *domain.CommandNode, depth int) {
			if ctrl.IsDuplicate(node.Name()) && !seen[node.Name()] {
				seen[node.Name()] = true
				overlay.Duplicates = append(overlay.Duplicates, node.Name())
			}
		})

		switch format {
		case "tree":
			fmt.Print(graph.Tree(ctrl.Forest(), overlay))
		case "mermaid":
			fmt.Print(graph.Mermaid(ctrl.Forest(), overlay))
		default:
			return fmt.Errorf("unknown format %q (supported: tree, mermaid)", format)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("format", "tree", "Output format: 'tree' or 'mermaid'")
}
