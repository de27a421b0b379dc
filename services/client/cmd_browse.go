package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/02loveslollipop/arbor-inventory/services/client/internal/models"
	"github.com/02loveslollipop/arbor-inventory/services/client/internal/ui"
)

func addFilterFlags(cmd *cobra.Command, f *models.Filter) {
	cmd.Flags().StringVar(&f.City, "city", "", "Only trees in this city (case-insensitive)")
	cmd.Flags().StringVar(&f.Address, "address", "", "Only trees whose address contains this text")
}

func parseTreeID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid tree id %q", arg)
	}
	return id, nil
}

func newCitiesCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "cities",
		Short: "List the cities that have trees",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.Refs.Activate(cmd.Context()); err != nil {
				return &reportedError{err: err}
			}
			for _, city := range c.app.Refs.Cities.Values() {
				fmt.Fprintln(cmd.OutOrStdout(), city)
			}
			return nil
		},
	}
}

func newStreetsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "streets CITY",
		Short: "List the streets recorded for a city",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.Refs.SelectCity(cmd.Context(), args[0]); err != nil {
				return &reportedError{err: err}
			}
			for _, street := range c.app.Refs.Streets.Values() {
				fmt.Fprintln(cmd.OutOrStdout(), street)
			}
			return nil
		},
	}
}

func newListCmd(c *cli) *cobra.Command {
	var filter models.Filter
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the trees matching a filter as a table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.dispatch(cmd.Context(), ui.Command{Intent: ui.IntentFilter, Filter: filter}); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.RenderList(c.styles, c.app.List.Rows()))
			return nil
		},
	}
	addFilterFlags(cmd, &filter)
	return cmd
}

func newMapCmd(c *cli) *cobra.Command {
	var filter models.Filter
	cmd := &cobra.Command{
		Use:   "map",
		Short: "Plot the trees matching a filter",
		Long: `Plot the trees matching a filter. Trees without both coordinates are skipped.
The view centres on the first plotted tree.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := c.dispatch(ctx, ui.Command{Intent: ui.IntentFilter, Filter: filter}); err != nil {
				return err
			}
			if err := c.dispatch(ctx, ui.Command{Intent: ui.IntentShowMap}); err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), ui.RenderMap(c.styles, c.app.Map))
			return nil
		},
	}
	addFilterFlags(cmd, &filter)
	return cmd
}

func newShowCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show every field of one tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTreeID(args[0])
			if err != nil {
				return err
			}
			if err := c.dispatch(cmd.Context(), ui.Command{Intent: ui.IntentView, ID: id}); err != nil {
				return err
			}
			tree, _ := c.app.Detail()
			fmt.Fprint(cmd.OutOrStdout(), ui.RenderDetail(c.styles, tree))
			return nil
		},
	}
}

func newLookupCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup CUSTOM_ID",
		Short: "Find a tree by its custom id",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var customID string
			if len(args) == 1 {
				customID = args[0]
			}
			return c.dispatch(cmd.Context(), ui.Command{Intent: ui.IntentLookup, Value: customID})
		},
	}
}
