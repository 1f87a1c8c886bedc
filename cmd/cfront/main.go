// Command cfront is the pipeline's CLI driver (SPEC_FULL.md §A.1): it
// reads one translation unit, runs every core pass, and either emits the
// lowered TAC text, runs the reference interpreter, or (on failure)
// prints the one diagnostic line spec.md §6 specifies and exits with the
// failing phase's code.
//
// Grounded on the teacher's cmd/ccompiler/main.go for the
// read-file-then-run-pipeline shape, and on the urfave/cli/v2 flag/command
// structure nspcc-dev-neo-go's cli/server uses in place of the teacher's
// raw os.Args handling.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"ccfront/internal/pipeline"
	"ccfront/pkg/diag"
	"ccfront/pkg/interp"

	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "cfront",
		Usage: "parse, resolve, typecheck, and lower a C-subset source file to TAC",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "interp", Usage: "run the TAC interpreter and print main's return value"},
			&cli.BoolFlag{Name: "emit-tac", Usage: "print the lowered TAC program text"},
		},
		Args:      true,
		ArgsUsage: "<file.c|->",
		Action:    run,
	}
	if err := app.Run(os.Args); err != nil {
		var de *diag.Error
		if errors.As(err, &de) {
			fmt.Fprintln(os.Stderr, de.Error())
			os.Exit(de.Phase.ExitCode())
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one source file argument")
	}
	path := c.Args().Get(0)

	var src []byte
	var err error
	if path == "-" {
		src, err = io.ReadAll(os.Stdin)
	} else {
		src, err = os.ReadFile(path)
	}
	if err != nil {
		return err
	}

	logger, err := pipeline.NewLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	result, err := pipeline.Run(logger, path, string(src))
	if err != nil {
		return err
	}

	if c.Bool("emit-tac") {
		fmt.Print(result.TAC.Text())
	}
	if c.Bool("interp") {
		it := interp.New(result.TAC)
		fmt.Println(it.Run())
	}
	return nil
}
