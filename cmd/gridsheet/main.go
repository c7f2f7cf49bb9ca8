// Command gridsheet is a terminal-driven integer spreadsheet. It takes the
// grid's dimensions as positional arguments and then reads commands from
// standard input, one per line, until "q" or EOF.
package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/gridsheet/gridsheet"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gridsheet <rows> <cols>",
		Short: "Run a terminal integer spreadsheet over the given grid size",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := strconv.Atoi(args[0])
			if err != nil || rows <= 0 {
				return fmt.Errorf("rows must be a positive integer, got %q", args[0])
			}
			cols, err := strconv.Atoi(args[1])
			if err != nil || cols <= 0 {
				return fmt.Errorf("cols must be a positive integer, got %q", args[1])
			}
			runREPL(rows, cols)
			return nil
		},
	}
}

func runREPL(rows, cols int) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	sheet := spreadsheet.NewSheet(rows, cols, spreadsheet.RealClock{}, logger)

	pageRows, pageCols := spreadsheet.TerminalPageSize()
	sheet.SetPageSize(pageRows, pageCols)

	logger.Info("gridsheet starting", "rows", rows, "cols", cols)

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := scanner.Text()

		start := time.Now()
		result := spreadsheet.RunCommand(sheet, line)
		elapsed := time.Since(start).Seconds()

		if sheet.OutputEnabled {
			fmt.Print(sheet.Render())
		}
		fmt.Print(spreadsheet.PromptLine(elapsed, result.Status))

		if result.Quit {
			logger.Info("gridsheet exiting")
			return
		}
	}
	if err := scanner.Err(); err != nil {
		logger.Error("stdin read failed", "error", err)
	}
}
