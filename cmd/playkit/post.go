package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/minjae-ko/playkit/i18n"
	"github.com/minjae-ko/playkit/store"
)

var postCmd = &cobra.Command{
	Use:   "post",
	Short: "Browse community posts",
}

var postListCmd = &cobra.Command{
	Use:   "list",
	Short: "List posts, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		if err := app.requireSignIn(); err != nil {
			return err
		}

		posts := store.NewPostStore(app.API, app.Session, nil)
		if err := posts.Fetch(cmd.Context()); err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		for _, post := range posts.Posts() {
			byline := app.Locale.T("post.by_author", i18n.Vars{"author": post.AuthorName})
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				post.CreatedAt.Local().Format("2006-01-02"), post.ID, post.Title, byline)
		}
		return w.Flush()
	},
}

func init() {
	postCmd.AddCommand(postListCmd)
	rootCmd.AddCommand(postCmd)
}
