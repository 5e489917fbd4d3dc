package main

import (
	"context"
	"fmt"
	"io"

	"github.com/matt-steen/todo-relay/pkg/client"
	"github.com/matt-steen/todo-relay/pkg/dispatch"
	"github.com/matt-steen/todo-relay/pkg/store"
	"github.com/matt-steen/todo-relay/pkg/todo"
	"github.com/matt-steen/todo-relay/pkg/view"
	"github.com/spf13/cobra"
)

func listCmd() *cobra.Command {
	var reminder bool

	cmd := &cobra.Command{
		Use:   "list [my|in|out]",
		Short: "Print a list of todos",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}

			list, err := todo.ParseListName(name)
			if err != nil {
				return err
			}

			c := client.NewClient(cfg.Client.URL, cfg.Client.User)
			s := store.New()

			if err := store.NewRefresher(s, c).RefreshAll(cmd.Context(), reminder); err != nil {
				return err
			}

			printList(cmd.OutOrStdout(), view.NewSelector(s), list)

			return nil
		},
	}

	cmd.Flags().BoolVar(&reminder, "reminder", false, "ask the server for the daily reminder")

	return cmd
}

func printList(w io.Writer, selector *view.Selector, list todo.ListName) {
	fmt.Fprintf(w, "%s (%s)\n", view.Heading(list), selector.TabTitle(list))

	for _, row := range selector.RowsOf(list) {
		fmt.Fprintf(w, "%d. %s\n", row.Item.Position+1, row.Item.Message)

		if row.Item.Description != "" {
			fmt.Fprintf(w, "   %s\n", row.Item.Description)
		}

		fmt.Fprintf(w, "   %s %s\n", row.Created, row.Status)
	}
}

func addCmd() *cobra.Command {
	var description, sendTo string

	cmd := &cobra.Command{
		Use:   "add <message>",
		Short: "Add a todo, or send it to someone with --to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(cmd.Context(), cmd.OutOrStdout(), args[0], description, sendTo)
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "todo description")
	cmd.Flags().StringVar(&sendTo, "to", "", "user to send the todo to")

	return cmd
}

func runAdd(ctx context.Context, w io.Writer, message, description, sendTo string) error {
	c := client.NewClient(cfg.Client.URL, cfg.Client.User)
	s := store.New()

	if err := dispatch.New(c, store.NewRefresher(s, c)).Add(ctx, message, description, sendTo, ""); err != nil {
		return err
	}

	if sendTo != "" {
		fmt.Fprintf(w, "Todo sent to %s\n", sendTo)

		return nil
	}

	fmt.Fprintln(w, "Todo added")

	return nil
}
