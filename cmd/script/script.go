package script

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alexmaris/gribble"
	"github.com/alexmaris/gribble/cmd/util"
	"github.com/alexmaris/gribble/internal/exec"
	"github.com/alexmaris/gribble/internal/include"
)

var (
	execConn util.ConnectionFlags
	execFile string
)

var ExecCmd = &cobra.Command{
	Use:   "exec",
	Short: "Run a script of GO separated batches",
	Long: "Run each batch of a T-SQL script in order, stopping at the first failure. Batches are separated by " +
		"a line holding only GO. Lines of the form :r <file> are replaced by that file's content. " +
		"Use --file - to read the script from standard input.",
	RunE: runExec,
}

func init() {
	util.AddConnectionFlags(ExecCmd, &execConn)
	ExecCmd.Flags().StringVar(&execFile, "file", "", "Script file to run, or - for standard input (required)")
	ExecCmd.MarkFlagRequired("file")
}

func runExec(cmd *cobra.Command, args []string) error {
	script, err := ReadScript(execFile, cmd.InOrStdin())
	if err != nil {
		return err
	}

	ctx := context.Background()
	conn, err := util.Connect(ctx, &execConn.Config)
	if err != nil {
		return err
	}
	defer conn.Close()

	result, err := gribble.New(conn).ExecuteScript(ctx, script)
	if err != nil {
		return err
	}

	batches := len(exec.SplitBatches(script))
	if affected, err := result.RowsAffected(); err == nil {
		fmt.Fprintf(cmd.OutOrStdout(), "Executed %d batch(es); last batch affected %d row(s).\n", batches, affected)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Executed %d batch(es).\n", batches)
	}
	return nil
}

// ReadScript reads a script file, or stdin when path is "-", and inlines
// its :r includes. Line endings are left untouched because the batch
// separator is CR LF GO CR LF.
func ReadScript(path string, stdin io.Reader) (string, error) {
	var (
		script string
		err    error
	)
	if path == "-" {
		data, readErr := io.ReadAll(stdin)
		if readErr != nil {
			return "", fmt.Errorf("failed to read script: %w", readErr)
		}
		script, err = include.NewProcessor(".").ProcessContent(string(data))
	} else {
		script, err = include.NewProcessor(filepath.Dir(path)).ProcessFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read script: %w", err)
	}
	if strings.TrimSpace(script) == "" {
		return "", fmt.Errorf("script %s is empty", path)
	}
	return script, nil
}
