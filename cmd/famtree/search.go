package main

import (
	"context"
	"fmt"
	"io"
	"log"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/recera/famtree/cmd/famtree/internal/config"
	"github.com/recera/famtree/cmd/famtree/internal/ui"
	"github.com/recera/famtree/pkg/family"
)

func newSearchCommand(configPath *string) *cobra.Command {
	var data string
	var focus string
	var logFile string

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search people in the terminal",
		Long:  `Opens the person search in the terminal, next to the card of the selected person.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("data") {
				cfg.Data.Path = data
			}
			return runSearch(cfg, family.ID(focus), logFile)
		},
	}

	cmd.Flags().StringVarP(&data, "data", "d", "data.json", "Dataset file (json or yaml)")
	cmd.Flags().StringVarP(&focus, "main", "m", "", "Id of the person shown first")
	cmd.Flags().StringVar(&logFile, "log-file", "", "Write debug logs to this file")

	return cmd
}

func runSearch(cfg *config.Config, main family.ID, logFile string) error {
	// The terminal belongs to the UI: logs go to a file or nowhere.
	var w io.Writer = io.Discard
	if logFile != "" {
		f, err := tea.LogToFile(logFile, "famtree")
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
		w = f
	} else {
		log.SetOutput(io.Discard)
	}
	logger := newLogger(w, cfg.Log)

	people, err := family.Load(cfg.Data.Path)
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}
	store := family.NewStore(people)

	model, err := ui.New(people, store, ui.Options{
		Limit:       cfg.Search.Limit,
		GraceDelay:  cfg.Search.GraceDelay,
		Placeholder: cfg.Search.Placeholder,
		Main:        main,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	p := tea.NewProgram(model, tea.WithAltScreen())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if cfg.Data.Watch {
		go func() {
			err := watchDataset(ctx, store, cfg.Data.Path, cfg.Data.Debounce, func(c family.Change) {
				p.Send(ui.DatasetMsg{Change: c})
			})
			if err != nil {
				log.Printf("dataset watcher stopped: %v", err)
			}
		}()
	}

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("search: %w", err)
	}
	return nil
}
