package main

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/nikbrunner/quill/internal/exporter"
	"github.com/nikbrunner/quill/internal/importer"
	"github.com/nikbrunner/quill/internal/logging"
	"github.com/nikbrunner/quill/internal/model"
	"github.com/nikbrunner/quill/internal/notify"
	"github.com/nikbrunner/quill/internal/picker"
	"github.com/nikbrunner/quill/internal/search"
	"github.com/nikbrunner/quill/internal/storage"
	"github.com/nikbrunner/quill/internal/tui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// cli carries what every command shares: flags, config and the logger.
type cli struct {
	configPath string
	verbose    bool

	cfg    *storage.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "quill",
		Short: "quill - a binder and trunk for long-form writing",
		Long: `quill keeps a writing project as a binder (a tree of folders and
documents) and a trunk (a flat list of attachments).

Run without arguments to open the interactive outline.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd.Root() == cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
		RunE: c.runTUI,
	}

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "Config file (default ~/.config/quill/config.json)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		c.newProjectCmd(),
		c.treeCmd(),
		c.addCmd(),
		c.attachCmd(),
		c.rmCmd(),
		c.editCmd(),
		c.mvCmd(),
		c.exportCmd(),
		c.importCmd(),
		c.importHTMLCmd(),
		c.compileCmd(),
		c.findCmd(),
	)
	return root
}

// setup loads config and builds the logger. The interactive outline owns the
// terminal, so it only logs when a log file is configured.
func (c *cli) setup(interactive bool) error {
	path := c.configPath
	if path == "" {
		var err error
		if path, err = storage.DefaultConfigFilePath(); err != nil {
			return fmt.Errorf("config path: %w", err)
		}
	}

	cfg, err := storage.LoadConfig(path)
	if err != nil {
		return fmt.Errorf("load config %s: %w", path, err)
	}
	c.cfg = cfg

	if interactive && cfg.LogFile == "" {
		c.logger = zap.NewNop()
		return nil
	}

	level := cfg.LogLevel
	if c.verbose {
		level = "debug"
	}
	c.logger, err = logging.New(level, cfg.LogFile)
	return err
}

// openProject opens the configured storage and loads the project from it.
// The caller must call the returned close function.
func (c *cli) openProject() (*model.Project, storage.Storage, func(), error) {
	store, err := storage.OpenStorage(c.cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	closeFn := func() {
		if closer, ok := store.(io.Closer); ok {
			_ = closer.Close()
		}
	}

	p := model.NewProject(model.ProjectParams{Logger: c.logger})
	if err := store.Load(p); err != nil {
		closeFn()
		return nil, nil, nil, fmt.Errorf("load %s: %w", store.Path(), err)
	}
	c.logger.Debug("project loaded",
		zap.String("path", store.Path()),
		zap.Int("binderRoots", len(p.Binder)),
		zap.Int("trunk", len(p.Trunk)),
	)
	return p, store, closeFn, nil
}

// withProject loads the project, runs fn and saves when save is set and fn
// succeeded.
func (c *cli) withProject(save bool, fn func(p *model.Project) error) error {
	p, store, closeFn, err := c.openProject()
	if err != nil {
		return err
	}
	defer closeFn()

	if err := fn(p); err != nil {
		return err
	}
	if !save {
		return nil
	}
	if err := store.Save(p); err != nil {
		return fmt.Errorf("save %s: %w", store.Path(), err)
	}
	c.logger.Debug("project saved", zap.String("path", store.Path()))
	return nil
}

// runTUI runs the full interactive outline.
func (c *cli) runTUI(cmd *cobra.Command, args []string) error {
	p, store, closeFn, err := c.openProject()
	if err != nil {
		return err
	}
	defer closeFn()

	if len(p.Binder) == 0 && len(p.Trunk) == 0 {
		p.Seed()
		if err := store.Save(p); err != nil {
			return fmt.Errorf("save %s: %w", store.Path(), err)
		}
	}

	notices := notify.NewCenter(notify.CenterParams{})
	defer notices.Clear()

	app := tui.NewApp(tui.AppParams{
		Project:   p,
		Storage:   store,
		Notices:   notices,
		NoticeFor: time.Duration(c.cfg.NotificationMillis) * time.Millisecond,
		Logger:    c.logger,
	})
	if _, err := tea.NewProgram(app, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("running app: %w", err)
	}
	return nil
}

func (c *cli) newProjectCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "new",
		Short: "Start a project with a Draft folder and a first chapter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withProject(true, func(p *model.Project) error {
				if (len(p.Binder) > 0 || len(p.Trunk) > 0) && !force {
					return errors.New("project is not empty (use --force to replace it)")
				}
				if err := p.Restore(model.Snapshot{}); err != nil {
					return err
				}
				p.Seed()
				fmt.Fprintln(cmd.OutOrStdout(), "Created a new project")
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Replace an existing project")
	return cmd
}

func (c *cli) treeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tree",
		Short: "Print the binder and trunk",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withProject(false, func(p *model.Project) error {
				printTree(cmd.OutOrStdout(), p)
				return nil
			})
		},
	}
}

// printTree writes one line per node: indent, title, status and id.
func printTree(w io.Writer, p *model.Project) {
	var walk func(nodes []*model.Node, depth int)
	walk = func(nodes []*model.Node, depth int) {
		for _, n := range nodes {
			title := n.Title
			if n.IsFolder {
				title += "/"
			}
			fmt.Fprintf(w, "%s%s [%s] (%s)\n", strings.Repeat("  ", depth+1), title, n.Status, n.ID)
			walk(n.Children, depth+1)
		}
	}

	fmt.Fprintln(w, "Binder")
	walk(p.Binder, 0)
	fmt.Fprintln(w, "Trunk")
	for _, n := range p.Trunk {
		fmt.Fprintf(w, "  %s (%s) (%s)\n", n.Title, n.FileType, n.ID)
	}
}

func (c *cli) addCmd() *cobra.Command {
	var (
		parent   string
		isFolder bool
	)
	cmd := &cobra.Command{
		Use:   "add [title]",
		Short: "Add a document or folder to the binder",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withProject(true, func(p *model.Project) error {
				var parentID *string
				if parent != "" {
					parentID = &parent
				}
				n, err := p.AddNode(parentID, isFolder)
				if err != nil {
					return err
				}
				if len(args) == 1 {
					title := args[0]
					p.UpdateNode(n.ID, model.NodePatch{Title: &title})
				}
				fmt.Fprintln(cmd.OutOrStdout(), n.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&parent, "parent", "", "Parent node id (default: binder root)")
	cmd.Flags().BoolVar(&isFolder, "folder", false, "Create a folder")
	return cmd
}

func (c *cli) attachCmd() *cobra.Command {
	var title string
	cmd := &cobra.Command{
		Use:   "attach <file>",
		Short: "Add a file to the trunk",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read attachment: %w", err)
			}
			att := model.Attachment{
				Name:     filepath.Base(args[0]),
				MimeType: detectMimeType(args[0], data),
				Data:     base64.StdEncoding.EncodeToString(data),
			}
			if title != "" {
				att.Name = title
			}
			return c.withProject(true, func(p *model.Project) error {
				n := p.AddTrunkNode(att)
				fmt.Fprintln(cmd.OutOrStdout(), n.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Title (default: file name)")
	return cmd
}

// detectMimeType prefers the file extension and falls back to sniffing.
func detectMimeType(path string, data []byte) string {
	if t := mime.TypeByExtension(filepath.Ext(path)); t != "" {
		return t
	}
	return http.DetectContentType(data)
}

func (c *cli) rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a node and everything under it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withProject(true, func(p *model.Project) error {
				if !p.DeleteNode(args[0]) {
					return fmt.Errorf("delete %q: %w", args[0], model.ErrNotFound)
				}
				return nil
			})
		},
	}
}

// parseStatus accepts a status name in any case.
func parseStatus(s string) (model.Status, error) {
	for _, st := range []model.Status{model.StatusDraft, model.StatusRevised, model.StatusFinal} {
		if strings.EqualFold(s, string(st)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown status %q (want Draft, Revised or Final)", s)
}

func (c *cli) editCmd() *cobra.Command {
	var title, synopsis, status, body string
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of a node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch model.NodePatch
			flags := cmd.Flags()
			if flags.Changed("title") {
				patch.Title = &title
			}
			if flags.Changed("synopsis") {
				patch.Synopsis = &synopsis
			}
			if flags.Changed("body") {
				patch.Body = &body
			}
			if flags.Changed("status") {
				st, err := parseStatus(status)
				if err != nil {
					return err
				}
				patch.Status = &st
			}

			return c.withProject(true, func(p *model.Project) error {
				if !p.UpdateNode(args[0], patch) {
					return fmt.Errorf("edit %q: %w", args[0], model.ErrNotFound)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&synopsis, "synopsis", "", "New synopsis")
	cmd.Flags().StringVar(&status, "status", "", "New status: Draft, Revised or Final")
	cmd.Flags().StringVar(&body, "body", "", "New body markup")
	return cmd
}

func (c *cli) mvCmd() *cobra.Command {
	var pos string
	cmd := &cobra.Command{
		Use:   "mv <id> [target]",
		Short: "Move a node before, after or inside a target",
		Long: `Moves a node together with everything under it. Without a target the
node goes to the end of its collection's root. Nodes never move between
the binder and the trunk.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			position, err := model.ParsePosition(pos)
			if err != nil {
				return err
			}
			var target *string
			if len(args) == 2 {
				target = &args[1]
			}
			return c.withProject(true, func(p *model.Project) error {
				return p.MoveNode(args[0], target, position)
			})
		},
	}
	cmd.Flags().StringVar(&pos, "pos", string(model.PositionAfter), "Position relative to target: before, after or inside")
	return cmd
}

func (c *cli) exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [path]",
		Short: "Write the project snapshot as JSON (stdout by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withProject(false, func(p *model.Project) error {
				data, err := p.Export()
				if err != nil {
					return err
				}
				if len(args) == 0 {
					_, err = cmd.OutOrStdout().Write(data)
					return err
				}
				if err := os.WriteFile(args[0], data, 0644); err != nil {
					return fmt.Errorf("write export: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d binder roots, %d trunk nodes to %s\n",
					len(p.Binder), len(p.Trunk), args[0])
				return nil
			})
		},
	}
}

func (c *cli) importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <path>",
		Short: "Replace the project with a JSON snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read import: %w", err)
			}
			return c.withProject(true, func(p *model.Project) error {
				if err := p.Import(data); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d binder roots, %d trunk nodes\n",
					len(p.Binder), len(p.Trunk))
				return nil
			})
		},
	}
}

func (c *cli) importHTMLCmd() *cobra.Command {
	var parent string
	cmd := &cobra.Command{
		Use:   "import-html <file>",
		Short: "Turn the headings of an HTML file into binder nodes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open html: %w", err)
			}
			defer file.Close()

			sections, err := importer.ParseOutline(file)
			if err != nil {
				return fmt.Errorf("parse html: %w", err)
			}

			return c.withProject(true, func(p *model.Project) error {
				var parentID *string
				if parent != "" {
					parentID = &parent
				}
				created, err := importer.Apply(p, parentID, sections)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d nodes\n", created)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&parent, "parent", "", "Parent node id (default: binder root)")
	return cmd
}

func (c *cli) compileCmd() *cobra.Command {
	var title string
	cmd := &cobra.Command{
		Use:   "compile [path]",
		Short: "Compile the binder into one HTML manuscript",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputPath := ""
			if len(args) == 1 {
				outputPath = args[0]
			} else {
				var err error
				if outputPath, err = exporter.DefaultCompilePath(); err != nil {
					return fmt.Errorf("default compile path: %w", err)
				}
			}
			if title == "" {
				title = c.cfg.CompileTitle
			}

			return c.withProject(false, func(p *model.Project) error {
				html := exporter.CompileHTML(p, title)
				if err := os.WriteFile(outputPath, []byte(html), 0644); err != nil {
					return fmt.Errorf("write manuscript: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Compiled %s to %s\n", title, outputPath)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Manuscript title (default from config)")
	return cmd
}

func (c *cli) findCmd() *cobra.Command {
	var list bool
	cmd := &cobra.Command{
		Use:   "find <query>",
		Short: "Fuzzy-find nodes by title",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return c.withProject(false, func(p *model.Project) error {
				out := cmd.OutOrStdout()
				results := search.FuzzySearchNodes(p, query)
				if len(results) == 0 {
					fmt.Fprintf(out, "No nodes found for '%s'\n", query)
					return nil
				}

				if list {
					for _, r := range results {
						printResult(out, r)
					}
					return nil
				}

				selected := results[0].Node
				if len(results) > 1 {
					finalModel, err := tea.NewProgram(picker.New(results, query)).Run()
					if err != nil {
						return fmt.Errorf("running picker: %w", err)
					}
					selected = finalModel.(picker.Picker).SelectedNode()
				}
				if selected == nil {
					return nil
				}

				for _, r := range results {
					if r.Node == selected {
						printResult(out, r)
					}
				}
				if selected.Synopsis != "" {
					fmt.Fprintf(out, "  %s\n", selected.Synopsis)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&list, "list", false, "Print all matches instead of picking one")
	return cmd
}

func printResult(w io.Writer, r search.SearchResult) {
	where := r.Collection.String()
	if r.Path != "" {
		where += ": " + r.Path
	}
	fmt.Fprintf(w, "%s\t%s\t(%s)\n", r.Node.ID, r.Node.Title, where)
}
