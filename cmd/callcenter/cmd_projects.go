package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"callcenter-go/internal/admin"
	"callcenter-go/internal/types"
)

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func parseIDs(args []string) ([]int64, error) {
	out := make([]int64, len(args))
	for i, s := range args {
		id, err := parseID(s)
		if err != nil {
			return nil, err
		}
		out[i] = id
	}
	return out, nil
}

func (a *app) admin() *admin.Service {
	return admin.New(a.client, a.log)
}

func (a *app) projectsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "projects",
		Aliases: []string{"project"},
		Short:   "List and edit projects, questions and choices",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := a.identity(); err != nil {
				return err
			}
			projects, err := a.client.ListProjects(cmd.Context())
			if err != nil {
				return err
			}
			if a.asJSON {
				return a.printJSON(projects)
			}
			t := a.table("ID", "NAME", "QUESTIONS", "DESCRIPTION")
			for _, p := range projects {
				t.row(p.ID, p.Name, len(p.Questions), p.Description)
			}
			return t.flush()
		},
	}

	show := &cobra.Command{
		Use:   "show <project-id>",
		Short: "Show a project with its questions as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.identity(); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			p, err := a.client.GetProject(cmd.Context(), id)
			if err != nil {
				return err
			}
			if a.asJSON {
				return a.printJSON(p)
			}
			enc := yaml.NewEncoder(a.out)
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(p)
		},
	}

	var name, description string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create an empty project",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := a.identity(); err != nil {
				return err
			}
			p, err := a.admin().SaveProject(cmd.Context(), types.Project{Name: name, Description: description})
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Created project %d.\n", p.ID)
			return nil
		},
	}
	create.Flags().StringVar(&name, "name", "", "project name")
	create.Flags().StringVar(&description, "description", "", "project description")

	var file string
	save := &cobra.Command{
		Use:   "save",
		Short: "Create or update a project with its questions and choices from YAML",
		Long: `Save a project edited as YAML (see "projects show").

Items with an id are updated, items without one are created. Every item is
attempted; failures are reported together at the end.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := a.identity(); err != nil {
				return err
			}
			data, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			var p types.Project
			if err := yaml.Unmarshal(data, &p); err != nil {
				return fmt.Errorf("parse %s: %w", file, err)
			}
			saved, err := a.admin().SaveProject(cmd.Context(), p)
			fmt.Fprintf(a.out, "Saved project %d (%d questions).\n", saved.ID, len(saved.Questions))
			return err
		},
	}
	save.Flags().StringVarP(&file, "file", "f", "", "project YAML file")
	_ = save.MarkFlagRequired("file")

	del := &cobra.Command{
		Use:   "delete <project-id>",
		Short: "Delete a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.identity(); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.admin().DeleteProject(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Deleted project %d.\n", id)
			return nil
		},
	}

	delQuestion := &cobra.Command{
		Use:   "delete-question <project-id> <question-id>",
		Short: "Delete a question immediately",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.identity(); err != nil {
				return err
			}
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			if err := a.admin().DeleteQuestion(cmd.Context(), ids[0], ids[1]); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Deleted question %d.\n", ids[1])
			return nil
		},
	}

	delChoice := &cobra.Command{
		Use:   "delete-choice <project-id> <question-id> <choice-id>",
		Short: "Delete a choice immediately",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.identity(); err != nil {
				return err
			}
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			if err := a.admin().DeleteChoice(cmd.Context(), ids[0], ids[1], ids[2]); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Deleted choice %d.\n", ids[2])
			return nil
		},
	}

	cmd.AddCommand(list, show, create, save, del, delQuestion, delChoice)
	return cmd
}
