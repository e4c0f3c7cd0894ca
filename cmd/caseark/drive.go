package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func driveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drive",
		Short: "Manage the archive root selection",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "select [path]",
		Short: "Designate a directory as the archive root",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, done, err := newEngine()
			if err != nil {
				return err
			}
			defer done()

			sel, err := e.SelectDrive(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if sel.AutoDetected {
				fmt.Printf("Recognized existing archive %s at %s\n", sel.Marker.ArchiveID, sel.Path)
			} else {
				fmt.Printf("Initialized new archive %s at %s\n", sel.Marker.ArchiveID, sel.Path)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the selected archive root",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, done, err := newEngine()
			if err != nil {
				return err
			}
			defer done()

			root, ok := e.ArchiveDrive()
			if !ok {
				fmt.Println("No archive root selected")
				return nil
			}

			fmt.Println(root)
			if valid, marker := e.ValidateArchive(cmd.Context(), root); valid {
				fmt.Printf("Archive %s, last modified %s\n", marker.ArchiveID, marker.LastModified.Format("2006-01-02 15:04"))
			} else {
				fmt.Println("Warning: selected root is not a valid archive")
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Clear the archive root selection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, done, err := newEngine()
			if err != nil {
				return err
			}
			defer done()
			return e.ClearArchiveDrive()
		},
	})

	return cmd
}
