package main

import (
	"fmt"
	"os"

	"github.com/caseark/caseark/internal/extract"
	"github.com/caseark/caseark/internal/reader"
	"github.com/docker/go-units"
	"github.com/spf13/cobra"
)

func extractCmd() *cobra.Command {
	var folderName string
	var pages []string

	cmd := &cobra.Command{
		Use:   "extract [document] [case-path]",
		Short: "Extract pages of a PDF into a new extraction folder",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, done, err := newEngine()
			if err != nil {
				return err
			}
			defer done()

			folder, err := e.ExtractPages(cmd.Context(), extract.Request{
				DocumentPath: args[0],
				CasePath:     args[1],
				FolderName:   folderName,
				Pages:        pages,
			})
			if err != nil {
				return err
			}

			fmt.Println(folder)
			return nil
		},
	}

	cmd.Flags().StringVar(&folderName, "folder", "", "extraction folder name (default derived from the document)")
	cmd.Flags().StringSliceVar(&pages, "pages", nil, "page selection, e.g. 1-3,7 (default all)")
	return cmd
}

func docCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doc",
		Short: "Read documents",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "size [path]",
		Short: "Print the document size",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, done, err := newEngine()
			if err != nil {
				return err
			}
			defer done()

			size, err := e.DocumentSize(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Printf("%d (%s)\n", size, units.HumanSize(float64(size)))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "read [path]",
		Short: "Read a document whole, inline or by path depending on size",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, done, err := newEngine()
			if err != nil {
				return err
			}
			defer done()

			doc, err := e.ReadDocument(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if doc.Type == reader.TypeFilePath {
				fmt.Printf("file-path %s\n", doc.Path)
			} else {
				fmt.Printf("inline %d encoded bytes\n", len(doc.Data))
			}
			return nil
		},
	})

	chunkCmd := &cobra.Command{
		Use:   "chunk [path] [offset] [length]",
		Short: "Read a byte range of a document to stdout",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			var offset int64
			var length int
			if _, err := fmt.Sscan(args[1], &offset); err != nil {
				return fmt.Errorf("invalid offset: %w", err)
			}
			if _, err := fmt.Sscan(args[2], &length); err != nil {
				return fmt.Errorf("invalid length: %w", err)
			}

			e, done, err := newEngine()
			if err != nil {
				return err
			}
			defer done()

			chunk, err := e.ReadChunk(cmd.Context(), args[0], offset, length)
			if err != nil {
				return err
			}

			_, err = os.Stdout.Write(chunk)
			return err
		},
	}
	cmd.AddCommand(chunkCmd)

	return cmd
}
