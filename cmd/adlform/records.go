package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-adlform/pkg/record"
)

func (a *app) saveCmd() *cobra.Command {
	var (
		id     string
		public bool
	)
	cmd := &cobra.Command{
		Use:   "save <file.yaml>",
		Short: "Store a document as an assistant record",
		Long: `Store a document as an assistant record. Without --id a new record is
created; with --id the existing record is updated. The record id is printed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := a.loadSession(ctx, args[0], id)
			if err != nil {
				return err
			}
			data, recordID, err := s.SaveRequest()
			if err != nil {
				return err
			}
			if public {
				data.IsPublic = true
			}

			store, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			rec, err := record.Save(ctx, store, recordID, a.cfg.Owner, data)
			if err != nil {
				return err
			}
			s.MarkSaved(rec.ID)
			a.logger.Info("record saved", "id", rec.ID, "title", rec.Title, "public", rec.IsPublic)
			fmt.Fprintln(a.stdout, rec.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "update this record instead of creating one")
	cmd.Flags().BoolVar(&public, "public", false, "publish the record regardless of metadata.visibility")
	return cmd
}

func (a *app) listCmd() *cobra.Command {
	var opts record.ListOptions
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored assistant records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			if !opts.PublicOnly {
				opts.Owner = a.cfg.Owner
			}
			records, err := store.List(ctx, opts)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tOWNER\tPUBLIC\tUPDATED")
			for _, rec := range records {
				fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%s\n",
					rec.ID, rec.Title, rec.Owner, rec.IsPublic, rec.UpdatedAt.Local().Format(time.DateTime))
			}
			return w.Flush()
		},
	}
	flags := cmd.Flags()
	flags.BoolVar(&opts.IncludePublic, "include-public", false, "also list other owners' public records")
	flags.BoolVar(&opts.PublicOnly, "public", false, "list only public records, from any owner")
	flags.StringVar(&opts.Search, "search", "", "filter by title or description")
	flags.IntVar(&opts.Offset, "offset", 0, "records to skip")
	flags.IntVar(&opts.Limit, "limit", record.DefaultListLimit, "maximum records to list")
	return cmd
}

func (a *app) exportCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Write a stored record's YAML to a file",
		Long: `Write a stored record's YAML. Without -o the YAML is printed; when -o names
a directory the file is named after the assistant title.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			rec, err := store.Get(ctx, args[0])
			if err != nil {
				return err
			}
			if info, err := os.Stat(output); err == nil && info.IsDir() {
				mode, _ := a.cfg.Mode()
				s, err := a.session(ctx, mode)
				if err != nil {
					return err
				}
				if err := s.LoadFromRecord(rec.YAMLContent, rec.ID); err != nil {
					return err
				}
				output = filepath.Join(output, s.ExportFilename())
			}
			if err := a.writeOutput(output, rec.YAMLContent); err != nil {
				return err
			}
			if output != "" && output != "-" {
				fmt.Fprintln(a.stdout, output)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file or directory (stdout if empty)")
	return cmd
}

func (a *app) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a stored assistant record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Delete(ctx, args[0]); err != nil {
				return err
			}
			a.logger.Info("record deleted", "id", args[0])
			return nil
		},
	}
}
