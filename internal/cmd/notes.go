package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/gravitrone/quill/internal/api"
	"github.com/gravitrone/quill/internal/ui/components"
	"github.com/gravitrone/quill/internal/workspace"
)

const (
	tableWidth = 80
	dateLayout = "2006-01-02"
)

// NotesCmd returns the `quill notes` command group.
func NotesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notes",
		Short: "List and manage notes",
	}
	cmd.AddCommand(notesListCmd())
	cmd.AddCommand(notesTreeCmd())
	cmd.AddCommand(notesSearchCmd())
	cmd.AddCommand(notesShowCmd())
	cmd.AddCommand(notesNewCmd())
	cmd.AddCommand(notesRemoveCmd())
	cmd.AddCommand(notesMoveCmd())
	return cmd
}

func notesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List notes grouped by their first tag",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession()
			if err != nil {
				return err
			}
			defer s.close()
			ws, err := s.workspace(cmd.Context())
			if err != nil {
				return fmt.Errorf("list notes: %w", err)
			}
			defer ws.Close()

			writeGroups(cmd.OutOrStdout(), ws, ws.Notes())
			return nil
		},
	}
}

func notesTreeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tree",
		Short: "Print the folder tree with every folder expanded",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession()
			if err != nil {
				return err
			}
			defer s.close()
			ws, err := s.workspace(cmd.Context())
			if err != nil {
				return fmt.Errorf("load tree: %w", err)
			}
			defer ws.Close()

			for _, f := range ws.Folders() {
				ws.SetExpanded(f.ID, true)
			}
			writeTree(cmd.OutOrStdout(), ws.Tree())
			return nil
		},
	}
}

func notesSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Find notes whose title or content contains a phrase",
		Long: heredoc.Doc(`
			Matches the query against titles and content, ignoring case.
			Encrypted content is matched as stored, so only titles are
			useful targets for encrypted notes.
		`),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession()
			if err != nil {
				return err
			}
			defer s.close()
			ws, err := s.workspace(cmd.Context())
			if err != nil {
				return fmt.Errorf("search notes: %w", err)
			}
			defer ws.Close()

			ws.SetQuery(strings.Join(args, " "))
			results := ws.SearchResults()
			out := cmd.OutOrStdout()
			if len(results) == 0 {
				fmt.Fprintln(out, "no matching notes")
				return nil
			}
			fmt.Fprintln(out, noteTable(ws, results))
			return nil
		},
	}
}

func notesShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <note-id>",
		Short: "Print a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("note", args[0])
			if err != nil {
				return err
			}
			s, err := openSession()
			if err != nil {
				return err
			}
			defer s.close()

			n, err := s.client.GetNote(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("get note: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, components.SanitizeOneLine(workspace.DisplayTitle(n.Title)))
			fmt.Fprintln(out, components.InfoRow("Updated", n.LastTouched().Format(dateLayout)))
			if len(n.Tags) > 0 {
				fmt.Fprintln(out, components.InfoRow("Tags", strings.Join(n.Tags, ", ")))
			}
			if body := components.SanitizeText(workspace.DisplayContent(n.Content)); body != "" {
				fmt.Fprintln(out)
				fmt.Fprintln(out, body)
			}
			return nil
		},
	}
}

func notesNewCmd() *cobra.Command {
	var folder int64
	cmd := &cobra.Command{
		Use:   "new [title]",
		Short: "Create an empty encrypted note",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession()
			if err != nil {
				return err
			}
			defer s.close()
			ws, err := s.workspace(cmd.Context())
			if err != nil {
				return fmt.Errorf("create note: %w", err)
			}
			defer ws.Close()

			n, err := ws.CreateNote(cmd.Context(), strings.Join(args, " "), folderRef(folder))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "note %d created: %s\n", n.ID, components.SanitizeOneLine(n.Title))
			return nil
		},
	}
	cmd.Flags().Int64VarP(&folder, "folder", "f", 0, "folder id (default: no folder)")
	return cmd
}

func notesRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <note-id>",
		Aliases: []string{"delete"},
		Short:   "Delete a note",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("note", args[0])
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
				return fmt.Errorf("delete note: %w", err)
			}
			defer ws.Close()

			if err := ws.DeleteNote(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "note %d deleted\n", id)
			return nil
		},
	}
}

func notesMoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mv <note-id> <folder-id|root>",
		Short: "Move a note to a folder or out of all folders",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("note", args[0])
			if err != nil {
				return err
			}
			var dest *int64
			if args[1] != "root" {
				folder, err := parseID("folder", args[1])
				if err != nil {
					return err
				}
				dest = &folder
			}
			s, err := openSession()
			if err != nil {
				return err
			}
			defer s.close()
			ws, err := s.workspace(cmd.Context())
			if err != nil {
				return fmt.Errorf("move note: %w", err)
			}
			defer ws.Close()

			if err := ws.MoveNote(cmd.Context(), id, dest); err != nil {
				return err
			}
			where := workspace.UncategorizedLabel
			if dest != nil {
				where = folderLabel(ws, dest)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "note %d moved to %s\n", id, components.SanitizeOneLine(where))
			return nil
		},
	}
}

// --- Output ---

func writeGroups(out io.Writer, ws *workspace.Workspace, notes []api.Note) {
	if len(notes) == 0 {
		fmt.Fprintln(out, "no notes yet")
		return
	}
	for i, g := range workspace.GroupByFirstTag(notes) {
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "%s (%d)\n", components.SanitizeOneLine(g.Tag), len(g.Notes))
		fmt.Fprintln(out, noteTable(ws, g.Notes))
	}
}

func noteTable(ws *workspace.Workspace, notes []api.Note) string {
	columns := []components.TableColumn{
		{Header: "ID", Width: 6, Align: lipgloss.Right},
		{Header: "Title", Width: 36},
		{Header: "Folder", Width: 16},
		{Header: "Updated", Width: 10},
	}
	rows := make([][]string, 0, len(notes))
	for _, n := range notes {
		rows = append(rows, []string{
			strconv.FormatInt(n.ID, 10),
			workspace.DisplayTitle(n.Title),
			folderLabel(ws, n.FolderID),
			n.LastTouched().Format(dateLayout),
		})
	}
	return components.TableGrid(columns, rows, tableWidth)
}

func writeTree(out io.Writer, rows []workspace.TreeRow) {
	if len(rows) == 0 {
		fmt.Fprintln(out, "no folders or notes yet")
		return
	}
	for _, r := range rows {
		indent := strings.Repeat("  ", r.Depth)
		label := components.SanitizeOneLine(r.Label)
		switch r.Kind {
		case workspace.RowFolder:
			fmt.Fprintf(out, "%s%s/  [%d]\n", indent, label, r.ID)
		case workspace.RowBucket:
			fmt.Fprintf(out, "%s%s\n", indent, label)
		default:
			fmt.Fprintf(out, "%s  %s  #%d\n", indent, label, r.ID)
		}
	}
}
