package main

import (
	"fmt"

	"github.com/caseark/caseark/internal/bookmarks"
	"github.com/spf13/cobra"
)

func bookmarkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bookmark",
		Short: "Manage bookmarks of the active archive",
	}

	cmd.AddCommand(bookmarkAddCmd())
	cmd.AddCommand(bookmarkListCmd())
	cmd.AddCommand(bookmarkRemoveCmd())
	cmd.AddCommand(bookmarkFolderCmd())

	return cmd
}

func bookmarkAddCmd() *cobra.Command {
	var page int
	var name, description, note, folder string
	var tags []string

	cmd := &cobra.Command{
		Use:   "add [document-path]",
		Short: "Bookmark a page of a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, done, err := newEngine()
			if err != nil {
				return err
			}
			defer done()

			store, err := e.Bookmarks()
			if err != nil {
				return err
			}

			bcmd := bookmarks.CreateBookmarkCommand{
				DocumentPath: args[0],
				PageNumber:   page,
				Name:         name,
				Description:  description,
				Note:         note,
				Tags:         tags,
			}

			if folder != "" {
				// Convention: one folder per document. Reuse an existing
				// folder before creating a new one.
				for _, f := range store.FoldersByDocument(args[0]) {
					if f.Name == folder {
						bcmd.FolderID = &f.ID
						break
					}
				}
				if bcmd.FolderID == nil {
					created, err := store.CreateFolder(bookmarks.CreateFolderCommand{
						Name:         folder,
						DocumentPath: args[0],
					})
					if err != nil {
						return err
					}
					bcmd.FolderID = &created.ID
				}
			}

			b, err := store.CreateBookmark(bcmd)
			if err != nil {
				return err
			}

			fmt.Println(b.ID)
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().StringVar(&name, "name", "", "bookmark name")
	cmd.Flags().StringVar(&description, "description", "", "bookmark description")
	cmd.Flags().StringVar(&note, "note", "", "bookmark note")
	cmd.Flags().StringVar(&folder, "folder", "", "bookmark folder name")
	cmd.Flags().StringSliceVar(&tags, "tags", nil, "bookmark tags")
	return cmd
}

func bookmarkListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List bookmarks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, done, err := newEngine()
			if err != nil {
				return err
			}
			defer done()

			store, err := e.Bookmarks()
			if err != nil {
				return err
			}

			storage := store.Load()
			folderNames := make(map[string]string, len(storage.Folders))
			for _, f := range storage.Folders {
				folderNames[f.ID] = f.Name
			}

			for _, b := range storage.Bookmarks {
				location := ""
				if b.FolderID != nil {
					location = " [" + folderNames[*b.FolderID] + "]"
				}
				fmt.Printf("%s  %s p.%d  %s%s\n", b.ID, b.DocumentPath, b.PageNumber, b.Name, location)
			}
			return nil
		},
	}
}

func bookmarkRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm [id]",
		Short: "Delete a bookmark",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, done, err := newEngine()
			if err != nil {
				return err
			}
			defer done()

			store, err := e.Bookmarks()
			if err != nil {
				return err
			}

			deleted, err := store.DeleteBookmark(args[0])
			if err != nil {
				return err
			}
			if !deleted {
				fmt.Println("No such bookmark")
			}
			return nil
		},
	}
}

func bookmarkFolderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "folder",
		Short: "Manage bookmark folders",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "rm [id]",
		Short: "Delete a bookmark folder, keeping its bookmarks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, done, err := newEngine()
			if err != nil {
				return err
			}
			defer done()

			store, err := e.Bookmarks()
			if err != nil {
				return err
			}

			deleted, err := store.DeleteFolder(args[0])
			if err != nil {
				return err
			}
			if !deleted {
				fmt.Println("No such folder")
			}
			return nil
		},
	})

	return cmd
}
