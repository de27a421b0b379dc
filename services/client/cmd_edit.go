package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/02loveslollipop/arbor-inventory/services/client/internal/models"
	"github.com/02loveslollipop/arbor-inventory/services/client/internal/ui"
)

// parseSets turns repeated --set key=value flags into form inputs.
func parseSets(sets []string) (map[string]string, error) {
	fields := make(map[string]string, len(sets))
	for _, s := range sets {
		key, value, ok := strings.Cut(s, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --set %q: want key=value", s)
		}
		fields[key] = value
	}
	return fields, nil
}

func fieldsHelp() string {
	names := append([]string(nil), models.FieldNames...)
	sort.Strings(names)
	return "Fields: " + strings.Join(names, ", ")
}

func newAddCmd(c *cli) *cobra.Command {
	var sets []string
	cmd := &cobra.Command{
		Use:   "add --set key=value...",
		Short: "Add a tree",
		Long: `Add a tree. custom_id, city, species and condition are required.
Numeric fields that do not parse are stored as unknown.

` + fieldsHelp(),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := parseSets(sets)
			if err != nil {
				return err
			}
			return c.dispatch(cmd.Context(), ui.Command{Intent: ui.IntentSubmit, Fields: fields})
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "Field value as key=value (repeatable)")
	return cmd
}

func newEditCmd(c *cli) *cobra.Command {
	var sets []string
	cmd := &cobra.Command{
		Use:   "edit ID [--set key=value...]",
		Short: "Edit a tree",
		Long: `Load a tree into the form, apply the given fields and save it.
Without --set the loaded form is printed and nothing is saved.

` + fieldsHelp(),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTreeID(args[0])
			if err != nil {
				return err
			}
			fields, err := parseSets(sets)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if err := c.dispatch(ctx, ui.Command{Intent: ui.IntentEdit, ID: id}); err != nil {
				return err
			}
			if len(fields) == 0 {
				fmt.Fprint(cmd.OutOrStdout(), ui.RenderForm(c.styles, c.app.Form))
				return nil
			}
			return c.dispatch(ctx, ui.Command{Intent: ui.IntentSubmit, Fields: fields})
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "Field value as key=value (repeatable)")
	return cmd
}

func newDeleteCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTreeID(args[0])
			if err != nil {
				return err
			}
			return c.dispatch(cmd.Context(), ui.Command{Intent: ui.IntentDelete, ID: id})
		},
	}
	cmd.Flags().BoolVarP(&c.assume, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}
