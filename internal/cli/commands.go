package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/BuzzLyutic/tasks-client/internal/horizon"
	"github.com/BuzzLyutic/tasks-client/internal/model"
	"github.com/BuzzLyutic/tasks-client/internal/tasklist"
)

func newSignInCmd(stdout io.Writer, a *app) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "signin",
		Short: "Sign in and keep the session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.session.SignIn(cmd.Context(), email, password); err != nil {
				return friendly(err)
			}
			fmt.Fprintf(stdout, "Olá, %s!\n", a.session.Username())
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "E-mail")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password")
	return cmd
}

func newSignUpCmd(stdout io.Writer, a *app) *cobra.Command {
	var name, email, password, confirm string
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.session.SignUp(cmd.Context(), name, email, password, confirm); err != nil {
				return friendly(err)
			}
			fmt.Fprintln(stdout, "Usuário cadastrado!")
			return nil
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "Display name")
	cmd.Flags().StringVarP(&email, "email", "e", "", "E-mail")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password")
	cmd.Flags().StringVar(&confirm, "confirm", "", "Password confirmation")
	return cmd
}

func newSignOutCmd(stdout io.Writer, a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "signout",
		Short: "Forget the session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.session.SignOut(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(stdout, "Sessão encerrada.")
			return nil
		},
	}
}

func newWhoAmICmd(stdout io.Writer, a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.session.Authenticated() {
				return errSignedOut
			}
			fmt.Fprintln(stdout, a.session.Username())
			return nil
		},
	}
}

func newListCmd(stdout io.Writer, a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list [hoje|amanha|semana|mes]",
		Short: "List the tasks of a horizon",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h := horizon.Today
			if len(args) == 1 {
				var err error
				if h, err = horizon.Parse(args[0]); err != nil {
					return err
				}
			}
			c, err := a.controller(cmd.Context(), h)
			if err != nil {
				return err
			}
			fmt.Fprint(stdout, renderList(stdout, c, a.now()))
			return nil
		},
	}
}

func newAddCmd(stdout io.Writer, a *app) *cobra.Command {
	var desc, at string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := model.TaskInput{Desc: desc, EstimateAt: a.now()}
			if at != "" {
				t, ok := model.ParseTime(at)
				if !ok {
					return fmt.Errorf("invalid date %q", at)
				}
				in.EstimateAt = t
			}

			c, err := a.controller(cmd.Context(), horizon.Today)
			if err != nil {
				return err
			}
			if err := c.Add(cmd.Context(), in); err != nil {
				return friendly(err)
			}
			fmt.Fprintf(stdout, "Tarefa criada: %s\n", desc)
			return nil
		},
	}
	cmd.Flags().StringVarP(&desc, "desc", "d", "", "Description")
	cmd.Flags().StringVar(&at, "at", "", "Estimated date (YYYY-MM-DD or RFC 3339), defaults to now")
	return cmd
}

func newEditCmd(stdout io.Writer, a *app) *cobra.Command {
	var desc, at string
	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change description or estimated date of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			c, err := a.controller(cmd.Context(), horizon.Today)
			if err != nil {
				return err
			}
			task, ok := lookup(c, id)
			if !ok {
				return fmt.Errorf("task %d: %w", id, tasklist.ErrTaskNotFound)
			}

			// незаданные поля берём из текущей версии задачи
			in := model.TaskInput{Desc: task.Desc}
			if task.EstimateAt.Valid {
				in.EstimateAt = task.EstimateAt.Time
			}
			if cmd.Flags().Changed("desc") {
				in.Desc = desc
			}
			if at != "" {
				t, ok := model.ParseTime(at)
				if !ok {
					return fmt.Errorf("invalid date %q", at)
				}
				in.EstimateAt = t
			}

			if err := c.Edit(cmd.Context(), id, in); err != nil {
				return friendly(err)
			}
			fmt.Fprintf(stdout, "Tarefa %d atualizada.\n", id)
			return nil
		},
	}
	cmd.Flags().StringVarP(&desc, "desc", "d", "", "New description")
	cmd.Flags().StringVar(&at, "at", "", "New estimated date")
	return cmd
}

func newToggleCmd(stdout io.Writer, a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle ID",
		Short: "Mark a task done or pending",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			c, err := a.controller(cmd.Context(), horizon.Today)
			if err != nil {
				return err
			}
			if err := c.Toggle(cmd.Context(), id); err != nil {
				return friendly(err)
			}

			task, _ := lookup(c, id)
			if task.Done() {
				fmt.Fprintf(stdout, "Tarefa %d concluída.\n", id)
			} else {
				fmt.Fprintf(stdout, "Tarefa %d pendente.\n", id)
			}
			return nil
		},
	}
}

func newDeleteCmd(stdout io.Writer, a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			c, err := a.controller(cmd.Context(), horizon.Today)
			if err != nil {
				return err
			}
			if err := c.Delete(cmd.Context(), id); err != nil {
				return friendly(err)
			}
			fmt.Fprintf(stdout, "Tarefa %d excluída.\n", id)
			return nil
		},
	}
}

func newVisibilityCmd(stdout io.Writer, a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "visibility [on|off|toggle]",
		Short:     "Show or hide completed tasks",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"on", "off", "toggle"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if len(args) == 1 {
				switch args[0] {
				case "on":
					a.visibility.Set(ctx, true)
				case "off":
					a.visibility.Set(ctx, false)
				case "toggle":
					a.visibility.Toggle(ctx)
				}
			}
			if a.visibility.Get() {
				fmt.Fprintln(stdout, "Tarefas concluídas: visíveis")
			} else {
				fmt.Fprintln(stdout, "Tarefas concluídas: ocultas")
			}
			return nil
		},
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(s, "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid task id %q", s)
	}
	return id, nil
}

func lookup(c *tasklist.Controller, id int64) (model.Task, bool) {
	for _, t := range c.All() {
		if t.ID == id {
			return t, true
		}
	}
	return model.Task{}, false
}
