package main

import (
	"fmt"

	"github.com/caseark/caseark/internal/cases"
	"github.com/docker/go-units"
	"github.com/spf13/cobra"
)

func caseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "case",
		Short: "Manage case folders",
	}

	cmd.AddCommand(caseCreateCmd())
	cmd.AddCommand(caseListCmd())
	cmd.AddCommand(caseFilesCmd())
	cmd.AddCommand(caseAddCmd())
	cmd.AddCommand(caseDeleteCmd())
	cmd.AddCommand(caseRenameCmd())

	return cmd
}

func caseCreateCmd() *cobra.Command {
	var description, categoryTag string

	cmd := &cobra.Command{
		Use:   "create [name]",
		Short: "Create a case under the archive root",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, done, err := newEngine()
			if err != nil {
				return err
			}
			defer done()

			path, err := e.CreateCase(cmd.Context(), cases.CreateCaseCommand{
				Name:          args[0],
				Description:   description,
				CategoryTagID: categoryTag,
			})
			if err != nil {
				return err
			}

			fmt.Println(path)
			return nil
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "case description")
	cmd.Flags().StringVar(&categoryTag, "category", "", "category tag id")
	return cmd
}

func caseListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, done, err := newEngine()
			if err != nil {
				return err
			}
			defer done()

			list, err := e.ListCases(cmd.Context())
			if err != nil {
				return err
			}

			for _, c := range list {
				line := c.Name
				if c.Description != "" {
					line += "  -  " + c.Description
				}
				fmt.Println(line)
			}
			return nil
		},
	}
}

func caseFilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "files [case-path]",
		Short: "List the visible entries of a case",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, done, err := newEngine()
			if err != nil {
				return err
			}
			defer done()

			files, err := e.ListCaseFiles(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			for _, f := range files {
				switch {
				case f.FolderType == "extraction":
					fmt.Printf("%-40s  extraction of %s\n", f.Name+"/", f.ParentDocument)
				case f.IsFolder:
					fmt.Printf("%-40s\n", f.Name+"/")
				case f.PageCount != nil:
					fmt.Printf("%-40s  %8s  %d pages\n", f.Name, units.HumanSize(float64(f.SizeBytes)), *f.PageCount)
				default:
					fmt.Printf("%-40s  %8s\n", f.Name, units.HumanSize(float64(f.SizeBytes)))
				}
			}
			return nil
		},
	}
}

func caseAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add [case-path] [file...]",
		Short: "Copy documents into a case",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, done, err := newEngine()
			if err != nil {
				return err
			}
			defer done()

			copied, err := e.AddFilesToCase(cmd.Context(), args[0], args[1:])
			if err != nil {
				return err
			}

			for _, path := range copied {
				fmt.Println(path)
			}
			if skipped := len(args) - 1 - len(copied); skipped > 0 {
				fmt.Printf("%d file(s) skipped\n", skipped)
			}
			return nil
		},
	}
}

func caseDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [case-path]",
		Short: "Delete a case recursively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, done, err := newEngine()
			if err != nil {
				return err
			}
			defer done()
			return e.DeleteCase(cmd.Context(), args[0])
		},
	}
}

func caseRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename [path] [new-name]",
		Short: "Rename a file or folder",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, done, err := newEngine()
			if err != nil {
				return err
			}
			defer done()

			newPath, err := e.RenameFile(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}

			fmt.Println(newPath)
			return nil
		},
	}
}
