package main

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	isatty "github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	uiview "github.com/owtui/owt/ui"
	"github.com/spf13/cobra"
)

func newRootCommand(args []string) *cobra.Command {
	var showVersion bool
	root := &cobra.Command{
		Use:           "owt",
		Short:         "Interactive manager for bare repository + worktrees layouts",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			if showVersion {
				fmt.Println("owt " + currentVersion())
				return nil
			}
			return runInteractive()
		},
	}
	root.Flags().BoolVarP(&showVersion, "version", "v", false, "Print owt version and exit")

	root.AddCommand(
		newCloneCommand(),
		newInitCommand(),
		newSetupCommand(),
		newShellCommand(),
		newVersionCommand(),
	)

	if len(args) > 1 {
		root.SetArgs(args[1:])
	}
	return root
}

func newCloneCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clone <url> [dir]",
		Short: "Clone a repository into the bare + worktrees layout",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(_ *cobra.Command, cmdArgs []string) error {
			dir := ""
			if len(cmdArgs) > 1 {
				dir = cmdArgs[1]
			}
			target, err := CloneBare(NewExecRunner(), cmdArgs[0], dir)
			if err != nil {
				return err
			}
			fmt.Fprintln(os.Stderr, "Created worktree", target)
			return nil
		},
	}
}

func newInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init <dir>",
		Short: "Create an empty repository in the bare + worktrees layout",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, cmdArgs []string) error {
			barePath, err := InitBare(NewExecRunner(), cmdArgs[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(os.Stderr, "Initialized bare repository at", barePath)
			return nil
		},
	}
}

func newSetupCommand() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Convert the current standard clone into the bare + worktrees layout",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return err
			}
			if !yes {
				ok, err := confirmSetup(
					"Convert this repository?",
					"The .git directory becomes a bare repository and the default branch gets its own worktree directory. Working files stay in place.",
				)
				if err != nil {
					return err
				}
				if !ok {
					return nil
				}
			}
			target, err := ConvertToBareLayout(NewExecRunner(), cwd)
			if err != nil {
				return err
			}
			fmt.Fprintln(os.Stderr, "Created worktree", target)
			fmt.Fprintln(os.Stderr, "Move your uncommitted files into it, then remove the old checkout files.")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Convert without asking")
	return cmd
}

func newShellCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "shell <bash|zsh|fish>",
		Short: "Print the shell wrapper that makes worktree selection cd",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, cmdArgs []string) error {
			wrapper, err := shellWrapper(cmdArgs[0])
			if err != nil {
				return err
			}
			fmt.Print(wrapper)
			return nil
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print owt version",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			fmt.Println("owt " + currentVersion())
			return nil
		},
	}
}

func runInteractive() error {
	runner := NewExecRunner()
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	bareRoot, err := findBareRoot(runner, cwd)
	if err != nil {
		return err
	}

	cfg, err := LoadConfig(bareRoot)
	if err != nil {
		return err
	}
	records, err := BuildInventory(runner, bareRoot)
	if err != nil {
		return err
	}
	session := NewSessionState(records, resolveCurrentWorktree(cwd, records))

	output := termenv.NewOutput(os.Stderr)
	styles := uiview.NewStyles(termenv.HasDarkBackground())
	clipboard := func(text string) error {
		output.Copy(text)
		return nil
	}

	m := newModel(runner, bareRoot, cfg, session, styles, clipboard)

	// The list renders on stderr so stdout stays clean for the shell
	// wrapper, which reads the selected path from it.
	p := tea.NewProgram(m, tea.WithOutput(os.Stderr), tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return err
	}
	if final, ok := finalModel.(model); ok {
		path := strings.TrimSpace(final.ExitPath())
		if path == "" {
			return nil
		}
		fmt.Println(path)
		if !shellIntegrationActive() && isatty.IsTerminal(os.Stdout.Fd()) {
			fmt.Fprintln(os.Stderr, "Run `owt shell bash` (or zsh/fish) and add the output to your shell rc so selection changes directory.")
		}
	}
	return nil
}
