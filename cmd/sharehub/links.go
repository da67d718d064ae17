package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eringen/sharehub"
	"github.com/eringen/sharehub/content"
	"github.com/eringen/sharehub/meta"
)

func newLinksCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "links",
		Short: "List generated links, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := siteConfigFromEnv()
			if err != nil {
				return err
			}
			app := sharehub.New(cfg)
			store, err := sharehub.NewStore(app.Config.DatabaseDriver, app.Config.DatabaseURL)
			if err != nil {
				return err
			}
			defer store.Close()

			links, err := store.ListLinks(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(links) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No links yet.")
				return nil
			}
			base := meta.NewResolver(app.Config.ResolverConfig()).ResolveCurrentDomain(meta.RequestContext{})
			fmt.Fprintln(cmd.OutOrStdout(), linksTable(links, base.Value))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of links (0 for all)")
	return cmd
}

func linksTable(links []content.GeneratedLink, base string) string {
	rows := make([][]string, 0, len(links))
	for _, l := range links {
		rows = append(rows, []string{
			l.LinkID,
			content.Truncate(l.Title, 40),
			meta.JoinURL(base, l.Path()),
			l.CreatedAt.Format("2006-01-02 15:04"),
		})
	}
	return renderTable([]string{"Link", "Title", "URL", "Created"}, rows, nil)
}
