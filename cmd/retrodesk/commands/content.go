package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/bryanchriswhite/RetroDesk/internal/config"
	"github.com/bryanchriswhite/RetroDesk/internal/content"
	"github.com/spf13/cobra"
)

var contentCmd = &cobra.Command{
	Use:   "content",
	Short: "Inspect desktop content",
	Long:  `Inspect the desktop content tree the server would load.`,
}

var contentTreeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Print the desktop tree",
	Long: `Print every item of the desktop tree in display order.

The tree comes from content_file in the configuration, or the built-in
desktop when none is set.`,
	Example: `  # Print the tree as a table (default)
  retrodesk content tree

  # Print the tree as JSON
  retrodesk content tree --format json

  # Validate a content file
  retrodesk content tree --file desktop.yaml`,
	RunE: runContentTree,
}

var (
	contentFormat string
	contentFile   string
)

func init() {
	rootCmd.AddCommand(contentCmd)
	contentCmd.AddCommand(contentTreeCmd)

	contentTreeCmd.Flags().StringVarP(&contentFormat, "format", "f", "table", "output format (table or json)")
	contentTreeCmd.Flags().StringVar(&contentFile, "file", "", "content file to load instead of the configured one")
}

func runContentTree(cmd *cobra.Command, args []string) error {
	var tree *content.Tree
	var err error
	if contentFile != "" {
		tree, err = content.Load(contentFile)
	} else {
		configMgr, cerr := config.NewManager(GetConfigFile())
		if cerr != nil {
			return fmt.Errorf("failed to load config: %w", cerr)
		}
		tree, err = loadTree(configMgr.Get())
	}
	if err != nil {
		return err
	}

	switch contentFormat {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(map[string]interface{}{
			"config":  tree.Identity(),
			"desktop": tree.Desktop(),
		})
	case "table":
		id := tree.Identity()
		fmt.Printf("%s - %s\n\n", id.Name, id.Tagline)

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tID\tKIND\tAPP")
		tree.Walk(func(item *content.Item, depth int) {
			fmt.Fprintf(w, "%s%s\t%s\t%s\t%s\n",
				strings.Repeat("  ", depth), item.DisplayName(), item.ID, item.Kind, item.App)
		})
		return w.Flush()
	default:
		return fmt.Errorf("unsupported format: %s (use 'table' or 'json')", contentFormat)
	}
}
