package terminal

import (
	"io"
	"os"
	"time"

	"github.com/de-tools/data-lens/pkg/runtime/terminal/commands"
	"github.com/de-tools/data-lens/pkg/runtime/terminal/export"

	"github.com/de-tools/data-lens/pkg/services/charts"
	"github.com/de-tools/data-lens/pkg/services/config"
	"github.com/de-tools/data-lens/pkg/services/dataset"
	svcexport "github.com/de-tools/data-lens/pkg/services/export"
	"github.com/de-tools/data-lens/pkg/services/insight"
	"github.com/de-tools/data-lens/pkg/services/locale"
	"github.com/spf13/cobra"
)

// CLI represents the command-line interface
type CLI struct {
	deps    commands.Dependencies
	rootCmd *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	Config   *config.App
	Producer insight.Producer
	Output   io.Writer
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Producer == nil {
		opts.Producer = insight.NewStaticProducer()
	}

	timeout := opts.Config.InsightTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	translator := locale.NewLoader(opts.Config.LocaleDir, opts.Config.DefaultLocale).
		Language(opts.Config.DefaultLocale)

	cli := &CLI{
		deps: commands.Dependencies{
			Parsers:        dataset.NewRegistry(),
			Renderer:       charts.NewRenderer(opts.Config.ChartDir),
			Producer:       opts.Producer,
			Assembler:      svcexport.NewAssembler(opts.Config.ExportDir, translator),
			Reporter:       export.NewReporter(opts.Output),
			InsightTimeout: timeout,
		},
	}

	cli.rootCmd = cli.newRootCmd()
	return cli
}

func (cli *CLI) Execute() error {
	return cli.rootCmd.Execute()
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "datalens",
		Short: "Dataset analysis and report export tool",
	}

	cmd.AddCommand(commands.NewAnalyzeCmd(cli.deps))
	cmd.AddCommand(commands.NewExportCmd(cli.deps))

	return cmd
}
