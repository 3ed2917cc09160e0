package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"trackcore/internal/core"
	"trackcore/pkg/domain"
)

type openFunc func(ctx context.Context, envFile string) (*core.Service, error)

type app struct {
	open    openFunc
	envFile string
	svc     *core.Service
}

// newRootCmd builds the command tree. The returned func releases the service
// opened for the command and must be called after Execute.
func newRootCmd(open openFunc) (*cobra.Command, func() error) {
	a := &app{open: open}
	root := &cobra.Command{
		Use:          "trackctl",
		Short:        "Track time against workspaces, projects and tags",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := a.open(cmd.Context(), a.envFile)
			if err != nil {
				return err
			}
			a.svc = svc
			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "dotenv file with TRACKCORE_* settings")
	root.AddCommand(
		a.workspaceCmd(),
		a.clientCmd(),
		a.projectCmd(),
		a.tagCmd(),
		a.entryCmd(),
		a.showCmd(),
	)
	return root, a.close
}

func (a *app) close() error {
	if a.svc == nil {
		return nil
	}
	svc := a.svc
	a.svc = nil
	return svc.Close()
}

func (a *app) workspaceCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "workspace", Short: "Manage workspaces"}
	cmd.AddCommand(&cobra.Command{
		Use:   "create <name>",
		Short: "Create a workspace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := a.svc.CreateWorkspace(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), ws)
		},
	})
	return cmd
}

func (a *app) clientCmd() *cobra.Command {
	var workspace string
	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a client",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wsID, err := parseID("workspace", workspace)
			if err != nil {
				return err
			}
			c, err := a.svc.CreateClient(cmd.Context(), wsID, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), c)
		},
	}
	create.Flags().StringVar(&workspace, "workspace", "", "workspace id (required)")
	_ = create.MarkFlagRequired("workspace")
	cmd := &cobra.Command{Use: "client", Short: "Manage clients"}
	cmd.AddCommand(create)
	return cmd
}

func (a *app) projectCmd() *cobra.Command {
	var (
		workspace, client string
		color             int
		billable          bool
	)
	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wsID, err := parseID("workspace", workspace)
			if err != nil {
				return err
			}
			clientID, err := parseID("client", client)
			if err != nil {
				return err
			}
			p, err := a.svc.CreateProject(cmd.Context(), core.ProjectInput{
				Workspace: wsID,
				Client:    clientID,
				Name:      args[0],
				Color:     color,
				Billable:  billable,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), p)
		},
	}
	create.Flags().StringVar(&workspace, "workspace", "", "workspace id (required)")
	create.Flags().StringVar(&client, "client", "", "client id")
	create.Flags().IntVar(&color, "color", 0, "palette index 0-23")
	create.Flags().BoolVar(&billable, "billable", false, "bill time on this project")
	_ = create.MarkFlagRequired("workspace")
	cmd := &cobra.Command{Use: "project", Short: "Manage projects"}
	cmd.AddCommand(create)
	return cmd
}

func (a *app) tagCmd() *cobra.Command {
	var workspace string
	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wsID, err := parseID("workspace", workspace)
			if err != nil {
				return err
			}
			tag, err := a.svc.CreateTag(cmd.Context(), wsID, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), tag)
		},
	}
	create.Flags().StringVar(&workspace, "workspace", "", "workspace id (required)")
	_ = create.MarkFlagRequired("workspace")
	cmd := &cobra.Command{Use: "tag", Short: "Manage tags"}
	cmd.AddCommand(create)
	return cmd
}

func (a *app) entryCmd() *cobra.Command {
	var (
		workspace, project string
		billable           bool
	)
	start := &cobra.Command{
		Use:   "start <description...>",
		Short: "Start a running time entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			wsID, err := parseID("workspace", workspace)
			if err != nil {
				return err
			}
			projectID, err := parseID("project", project)
			if err != nil {
				return err
			}
			e, err := a.svc.StartEntry(cmd.Context(), core.EntryInput{
				Workspace:   wsID,
				Project:     projectID,
				Description: strings.Join(args, " "),
				Billable:    billable,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), e)
		},
	}
	start.Flags().StringVar(&workspace, "workspace", "", "workspace id (required)")
	start.Flags().StringVar(&project, "project", "", "project id")
	start.Flags().BoolVar(&billable, "billable", false, "bill this entry")
	_ = start.MarkFlagRequired("workspace")

	stop := &cobra.Command{
		Use:   "stop <entry>",
		Short: "Stop a running time entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("entry", args[0])
			if err != nil {
				return err
			}
			e, err := a.svc.StopEntry(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), e)
		},
	}

	tag := &cobra.Command{
		Use:   "tag <entry> <tag>",
		Short: "Attach a tag to a time entry",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			entryID, err := parseID("entry", args[0])
			if err != nil {
				return err
			}
			tagID, err := parseID("tag", args[1])
			if err != nil {
				return err
			}
			link, err := a.svc.TagEntry(cmd.Context(), entryID, tagID)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), link)
		},
	}

	describe := &cobra.Command{
		Use:   "describe <entry>",
		Short: "Show an entry with its workspace and project names",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("entry", args[0])
			if err != nil {
				return err
			}
			s, err := a.svc.DescribeEntry(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), entryView{
				Entry:     s.Entry,
				Workspace: s.Workspace,
				Project:   s.Project,
				Duration:  s.Duration.String(),
			})
		},
	}

	cmd := &cobra.Command{Use: "entry", Short: "Manage time entries"}
	cmd.AddCommand(start, stop, tag, describe)
	return cmd
}

type entryView struct {
	Entry     domain.TimeEntry `json:"entry"`
	Workspace string           `json:"workspace,omitempty"`
	Project   string           `json:"project,omitempty"`
	Duration  string           `json:"duration"`
}

func (a *app) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <entity> <id>",
		Short: "Print a stored record as JSON",
		Long:  "Entities: workspace, client, project, tag, time_entry, time_entry_tag.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], args[1])
			if err != nil {
				return err
			}
			rec, err := a.svc.Show(cmd.Context(), domain.EntityType(args[0]), id)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), rec)
		},
	}
}

func parseID(what, raw string) (domain.Identity, error) {
	id, err := domain.ParseIdentity(raw)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("invalid %s id: %w", what, err)
	}
	return id, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
