package cmd

import (
	"github.com/spf13/cobra"

	"github.com/orgspace-systems/orgspace-stack/common/listquery"
)

// addListFlags registers the search, sort and paging flags shared by list commands.
func addListFlags(c *cobra.Command) {
	c.Flags().StringP("search", "s", "", "case-insensitive text search")
	c.Flags().String("sort", "", "sort field; prefix with - for descending")
	c.Flags().Bool("desc", false, "sort descending")
	c.Flags().Int("offset", 0, "skip this many results")
	c.Flags().Int("limit", 0, "show at most this many results (0 for all)")
}

func sortFlag(cmd *cobra.Command) listquery.SortState {
	field, _ := cmd.Flags().GetString("sort")
	dir := string(listquery.Asc)
	if desc, _ := cmd.Flags().GetBool("desc"); desc {
		dir = string(listquery.Desc)
	}
	return listquery.ParseSortState(field, dir)
}

func limitFlag[T any](cmd *cobra.Command, items []T) []T {
	offset, _ := cmd.Flags().GetInt("offset")
	limit, _ := cmd.Flags().GetInt("limit")
	return listquery.Page(items, offset, limit)
}
