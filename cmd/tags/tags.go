// Package tags provides the tags command for listing and editing tag
// definitions.
package tags

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"fjacquet/moneyview/cmd/root"
	"fjacquet/moneyview/internal/models"
)

var (
	tagID       string
	tagName     string
	tagKeywords string
	noRetag     bool
)

// Cmd represents the tags command
var Cmd = &cobra.Command{
	Use:   "tags",
	Short: "List or edit tag definitions",
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the tag definitions in priority order",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.RequireContainer()
		if err != nil {
			return err
		}
		tags, err := c.GetStore().LoadTags()
		if err != nil {
			return err
		}
		sort.Slice(tags, func(i, j int) bool { return tags[i].ID < tags[j].ID })

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tKEYWORDS")
		for _, tag := range tags {
			fmt.Fprintf(w, "%s\t%s\t%s\n", tag.ID, tag.Name, strings.Join(tag.Keywords, ", "))
		}
		return w.Flush()
	},
}

var setCmd = &cobra.Command{
	Use:   "set",
	Short: "Create or replace a tag and retag the ledger",
	Long: `Create or replace a tag. Without --id a new id is generated. Unless
--no-retag is given, every stored transaction is retagged afterwards.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.RequireContainer()
		if err != nil {
			return err
		}
		if strings.TrimSpace(tagName) == "" {
			return fmt.Errorf("tag name is required (--name)")
		}

		saved, err := c.GetStore().UpsertTag(models.Tag{ID: tagID, Name: tagName, Keywords: splitKeywords(tagKeywords)})
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Saved tag %s (%s)\n", saved.ID, saved.Name)

		if noRetag {
			return nil
		}
		n, err := c.GetService().Retag(root.Context(cmd))
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Retagged %d transactions\n", n)
		return nil
	},
}

func init() {
	setCmd.Flags().StringVar(&tagID, "id", "", "Tag id (generated when empty)")
	setCmd.Flags().StringVar(&tagName, "name", "", "Tag name")
	setCmd.Flags().StringVar(&tagKeywords, "keywords", "", "Comma-separated keywords")
	setCmd.Flags().BoolVar(&noRetag, "no-retag", false, "Do not retag stored transactions")

	Cmd.AddCommand(listCmd, setCmd)
}

// splitKeywords splits a comma-separated list, dropping blank entries.
func splitKeywords(s string) []string {
	var keywords []string
	for _, kw := range strings.Split(s, ",") {
		if kw = strings.TrimSpace(kw); kw != "" {
			keywords = append(keywords, kw)
		}
	}
	return keywords
}
