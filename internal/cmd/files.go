package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/gravitrone/quill/internal/ui/components"
)

// FilesCmd returns the `quill files` command group.
func FilesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "files",
		Short: "Upload and manage attachments",
	}
	cmd.AddCommand(filesUploadCmd())
	cmd.AddCommand(filesListCmd())
	cmd.AddCommand(filesRemoveCmd())
	return cmd
}

func filesUploadCmd() *cobra.Command {
	var (
		folder    int64
		plaintext bool
	)
	cmd := &cobra.Command{
		Use:   "upload <path>",
		Short: "Upload a file, encrypted by default",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open %s: %w", args[0], err)
			}
			defer f.Close()

			s, err := openSession()
			if err != nil {
				return err
			}
			defer s.close()
			ws, err := s.workspace(cmd.Context())
			if err != nil {
				return fmt.Errorf("upload: %w", err)
			}
			defer ws.Close()

			dest := folderRef(folder)
			if dest != nil {
				if _, ok := ws.Folder(*dest); !ok {
					return fmt.Errorf("folder %d not found", *dest)
				}
			}
			uploaded, err := ws.UploadFile(cmd.Context(), filepath.Base(args[0]), f, dest, !plaintext)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "file %d uploaded: %s (%d bytes)\n",
				uploaded.ID, components.SanitizeOneLine(uploaded.Filename), uploaded.Size)
			return nil
		},
	}
	cmd.Flags().Int64VarP(&folder, "folder", "f", 0, "folder id (default: no folder)")
	cmd.Flags().BoolVar(&plaintext, "plaintext", false, "store the file unencrypted")
	return cmd
}

func filesListCmd() *cobra.Command {
	var folder int64
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List uploaded files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession()
			if err != nil {
				return err
			}
			defer s.close()

			files, err := s.client.ListFiles(cmd.Context(), folderRef(folder))
			if err != nil {
				return fmt.Errorf("list files: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(files) == 0 {
				fmt.Fprintln(out, "no files found")
				return nil
			}
			columns := []components.TableColumn{
				{Header: "ID", Width: 6, Align: lipgloss.Right},
				{Header: "Name", Width: 34},
				{Header: "Size", Width: 10, Align: lipgloss.Right},
				{Header: "Enc", Width: 4},
				{Header: "Uploaded", Width: 10},
			}
			rows := make([][]string, 0, len(files))
			for _, f := range files {
				enc := "no"
				if f.IsEncrypted {
					enc = "yes"
				}
				rows = append(rows, []string{
					strconv.FormatInt(f.ID, 10),
					f.Filename,
					strconv.FormatInt(f.Size, 10),
					enc,
					f.CreatedAt.Format(dateLayout),
				})
			}
			fmt.Fprintln(out, components.TableGrid(columns, rows, tableWidth))
			return nil
		},
	}
	cmd.Flags().Int64VarP(&folder, "folder", "f", 0, "only files in this folder")
	return cmd
}

func filesRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <file-id>",
		Aliases: []string{"delete"},
		Short:   "Delete an uploaded file",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("file", args[0])
			if err != nil {
				return err
			}
			s, err := openSession()
			if err != nil {
				return err
			}
			defer s.close()

			if err := s.client.DeleteFile(cmd.Context(), id); err != nil {
				return fmt.Errorf("delete file: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "file %d deleted\n", id)
			return nil
		},
	}
}
