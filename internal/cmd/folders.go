package cmd

import (
	"errors"
	"fmt"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/gravitrone/quill/internal/ui/components"
	"github.com/gravitrone/quill/internal/workspace"
)

// FoldersCmd returns the `quill folders` command group.
func FoldersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "folders",
		Short: "Create, rename and delete folders",
	}
	cmd.AddCommand(foldersNewCmd())
	cmd.AddCommand(foldersRenameCmd())
	cmd.AddCommand(foldersRemoveCmd())
	return cmd
}

func foldersNewCmd() *cobra.Command {
	var parent int64
	cmd := &cobra.Command{
		Use:   "new <name>",
		Short: "Create a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession()
			if err != nil {
				return err
			}
			defer s.close()
			ws, err := s.workspace(cmd.Context())
			if err != nil {
				return fmt.Errorf("create folder: %w", err)
			}
			defer ws.Close()

			f, err := ws.CreateFolder(cmd.Context(), args[0], folderRef(parent))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "folder %d created: %s\n", f.ID, components.SanitizeOneLine(f.Name))
			return nil
		},
	}
	cmd.Flags().Int64VarP(&parent, "parent", "p", 0, "parent folder id (default: top level)")
	return cmd
}

func foldersRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <folder-id> <name>",
		Short: "Rename a folder",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("folder", args[0])
			if err != nil {
				return err
			}
			s, err := openSession()
			if err != nil {
				return err
			}
			defer s.close()
			ws, err := s.workspace(cmd.Context())
			if err != nil {
				return fmt.Errorf("rename folder: %w", err)
			}
			defer ws.Close()

			f, err := ws.RenameFolder(cmd.Context(), id, args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "folder %d renamed to %s\n", f.ID, components.SanitizeOneLine(f.Name))
			return nil
		},
	}
}

func foldersRemoveCmd() *cobra.Command {
	var recursive bool
	cmd := &cobra.Command{
		Use:     "rm <folder-id>",
		Aliases: []string{"delete"},
		Short:   "Delete a folder",
		Long: heredoc.Doc(`
			Deletes an empty folder. A folder holding subfolders or notes is
			only deleted with --recursive, which removes everything in it.
		`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("folder", args[0])
			if err != nil {
				return err
			}
			s, err := openSession()
			if err != nil {
				return err
			}
			defer s.close()
			ws, err := s.workspace(cmd.Context())
			if err != nil {
				return fmt.Errorf("delete folder: %w", err)
			}
			defer ws.Close()

			err = ws.DeleteFolder(cmd.Context(), id, recursive)
			if errors.Is(err, workspace.ErrConfirmationRequired) {
				return fmt.Errorf("folder %d is not empty. pass --recursive to delete it with its contents", id)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "folder %d deleted\n", id)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "also delete subfolders and notes")
	return cmd
}
