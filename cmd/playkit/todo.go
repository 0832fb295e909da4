package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/minjae-ko/playkit/i18n"
	"github.com/minjae-ko/playkit/store"
)

var todoCmd = &cobra.Command{
	Use:   "todo",
	Short: "Manage todos",
}

var todoListCmd = &cobra.Command{
	Use:   "list",
	Short: "List todos",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		if err := app.requireSignIn(); err != nil {
			return err
		}

		todos := store.NewTodoStore(app.API, app.Session, nil)
		if err := todos.Fetch(cmd.Context()); err != nil {
			return err
		}

		items := todos.Todos()
		if len(items) == 0 {
			fmt.Println(app.Locale.T("todo.empty"))
			return nil
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		for _, todo := range items {
			mark := " "
			if todo.Completed {
				mark = "x"
			}
			fmt.Fprintf(w, "[%s]\t%s\t%s\t%s\n", mark, todo.ID, todo.Priority, todo.Title)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Println(app.Locale.T("todo.count", i18n.Vars{"count": fmt.Sprint(len(items))}))
		return nil
	},
}

var todoAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a todo",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		if err := app.requireSignIn(); err != nil {
			return err
		}

		priority, _ := cmd.Flags().GetString("priority")
		description, _ := cmd.Flags().GetString("description")
		todos := store.NewTodoStore(app.API, app.Session, nil)
		created, err := todos.Add(cmd.Context(), store.TodoInput{
			Title:       args[0],
			Description: description,
			Priority:    priority,
		})
		if err != nil {
			return err
		}
		fmt.Printf("%s (%s)\n", created.Title, created.ID)
		return nil
	},
}

var todoDoneCmd = &cobra.Command{
	Use:   "done <id>",
	Short: "Toggle a todo's completion",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		if err := app.requireSignIn(); err != nil {
			return err
		}

		todos := store.NewTodoStore(app.API, app.Session, nil)
		toggled, err := todos.Toggle(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		state := app.Locale.T("todo.pending")
		if toggled.Completed {
			state = app.Locale.T("todo.completed")
		}
		fmt.Printf("%s: %s\n", toggled.Title, state)
		return nil
	},
}

var todoRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a todo",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		if err := app.requireSignIn(); err != nil {
			return err
		}

		todos := store.NewTodoStore(app.API, app.Session, nil)
		return todos.Remove(cmd.Context(), args[0])
	},
}

func init() {
	todoAddCmd.Flags().String("priority", "", "Priority: low|medium|high")
	todoAddCmd.Flags().String("description", "", "Longer description")
	todoCmd.AddCommand(todoListCmd, todoAddCmd, todoDoneCmd, todoRmCmd)
	rootCmd.AddCommand(todoCmd)
}
