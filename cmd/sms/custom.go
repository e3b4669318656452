package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"skysms.org/internal/checklist"
)

func newCustomCmd(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "custom",
		Short: "Manage user-defined checklists (local only)",
	}
	cmd.AddCommand(
		newCustomCreateCmd(cfgPath),
		newCustomListCmd(cfgPath),
		newCustomShowCmd(cfgPath),
		newCustomAddItemCmd(cfgPath),
		newCustomToggleCmd(cfgPath),
		newCustomRemoveItemCmd(cfgPath),
		newCustomRenameCmd(cfgPath),
		newCustomDeleteCmd(cfgPath),
	)
	return cmd
}

func newCustomCreateCmd(cfgPath *string) *cobra.Command {
	var items []string
	cmd := &cobra.Command{
		Use:   "create [title]",
		Short: "Create a checklist",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cfgPath, func(a *app) error {
				title := ""
				if len(args) == 1 {
					title = args[0]
				}
				c := a.custom.Create(title)
				for _, text := range items {
					a.custom.AddItem(&c, text)
				}
				if err := a.custom.Save(cmd.Context(), &c); err != nil {
					return err
				}
				fmt.Printf("criado %s (%s)\n", c.Title, c.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringArrayVar(&items, "item", nil, "Item text (repeatable)")
	return cmd
}

func newCustomListCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List checklists",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cfgPath, func(a *app) error {
				lists, err := a.custom.List(cmd.Context())
				if err != nil {
					return err
				}
				for _, c := range lists {
					fmt.Printf("%s  %s  (%d itens, atualizado %s)\n",
						c.ID, c.Title, len(c.Items), c.UpdatedAt.Local().Format("02/01/2006 15:04"))
				}
				return nil
			})
		},
	}
}

func newCustomShowCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a checklist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cfgPath, func(a *app) error {
				c, err := a.custom.Load(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				printCustom(c)
				return nil
			})
		},
	}
}

func newCustomAddItemCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "add-item <id> <text>",
		Short: "Append an item",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cfgPath, func(a *app) error {
				c, err := a.custom.Load(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				a.custom.AddItem(&c, args[1])
				return a.custom.Save(cmd.Context(), &c)
			})
		},
	}
}

func newCustomToggleCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id> <item-id>",
		Short: "Flip an item's checked state",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cfgPath, func(a *app) error {
				c, err := a.custom.Load(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if err := a.custom.ToggleItem(&c, args[1]); err != nil {
					return err
				}
				return a.custom.Save(cmd.Context(), &c)
			})
		},
	}
}

func newCustomRemoveItemCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "remove-item <id> <item-id>",
		Short: "Delete an item",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cfgPath, func(a *app) error {
				c, err := a.custom.Load(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				a.custom.RemoveItem(&c, args[1])
				return a.custom.Save(cmd.Context(), &c)
			})
		},
	}
}

func newCustomRenameCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <title>",
		Short: "Rename a checklist",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cfgPath, func(a *app) error {
				c, err := a.custom.Load(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				a.custom.Rename(&c, args[1])
				return a.custom.Save(cmd.Context(), &c)
			})
		},
	}
}

func newCustomDeleteCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a checklist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cfgPath, func(a *app) error {
				return a.custom.Delete(cmd.Context(), args[0])
			})
		},
	}
}

func printCustom(c checklist.CustomChecklist) {
	fmt.Printf("%s (%s)\n", c.Title, c.ID)
	for _, it := range c.Items {
		mark := " "
		if it.Checked {
			mark = "x"
		}
		fmt.Printf("  [%s] %s  %s\n", mark, it.ID, it.Text)
	}
}
