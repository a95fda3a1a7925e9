package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kcl-lang/kcl-sub002/ast"
	"github.com/kcl-lang/kcl-sub002/failed"
	"github.com/kcl-lang/kcl-sub002/internal/log"
	"github.com/kcl-lang/kcl-sub002/resolver"
)

var CheckCmd = &cobra.Command{
	Use:          "check program.json",
	Short:        "Type check a parsed program and report its diagnostics",
	RunE:         runCheck,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
}

var (
	checkFormat   *string
	checkNoWarn   *bool
	checkNoLint   *bool
	checkLogLevel *int
)

func init() {
	checkFormat = CheckCmd.Flags().StringP("format", "f", "text", "output format: text or yaml")
	checkNoWarn = CheckCmd.Flags().Bool("no-warnings", false, "suppress warning diagnostics")
	checkNoLint = CheckCmd.Flags().Bool("no-lint", false, "skip the import style checks")
	checkLogLevel = CheckCmd.Flags().IntP("log-level", "l", int(slog.LevelError), "log level")
}

func runCheck(cmd *cobra.Command, args []string) error {
	log.SetLevel(slog.Level(*checkLogLevel))

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("could not read program: %w", err)
	}
	program, err := ast.DecodeProgram(data)
	if err != nil {
		return fmt.Errorf("could not decode program (this is a parser bug and not a compile error): %w", err)
	}

	scope := resolver.Resolve(program, resolver.Options{LintCheck: !*checkNoLint})
	diagnostics := scope.Handler.Sorted()
	if *checkNoWarn {
		diagnostics = errorsOnly(diagnostics)
	}

	switch *checkFormat {
	case "text":
		for _, d := range diagnostics {
			fmt.Fprintln(cmd.OutOrStdout(), d.Error())
		}
	case "yaml":
		if err := writeYAML(cmd, diagnostics); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown output format %q, expected text or yaml", *checkFormat)
	}

	if scope.Handler.HasErrors() {
		return fmt.Errorf("found %v error(s)", scope.Handler.ErrorCount())
	}
	return nil
}

func errorsOnly(diagnostics []*failed.Diagnostic) []*failed.Diagnostic {
	out := make([]*failed.Diagnostic, 0, len(diagnostics))
	for _, d := range diagnostics {
		if d.Severity == failed.SeverityError {
			out = append(out, d)
		}
	}
	return out
}

type yamlDiagnostic struct {
	Severity string   `yaml:"severity"`
	Code     string   `yaml:"code"`
	Messages []string `yaml:"messages"`
}

func writeYAML(cmd *cobra.Command, diagnostics []*failed.Diagnostic) error {
	out := make([]yamlDiagnostic, 0, len(diagnostics))
	for _, d := range diagnostics {
		msgs := make([]string, 0, len(d.Messages))
		for _, m := range d.Messages {
			msgs = append(msgs, m.String())
		}
		out = append(out, yamlDiagnostic{
			Severity: d.Severity.String(),
			Code:     d.Code.String(),
			Messages: msgs,
		})
	}
	enc := yaml.NewEncoder(cmd.OutOrStdout())
	defer func() { _ = enc.Close() }()
	return enc.Encode(out)
}
