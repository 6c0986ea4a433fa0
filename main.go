package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/petervdpas/codeseed/internal/app"
	"github.com/petervdpas/codeseed/internal/config"
	"github.com/petervdpas/codeseed/internal/errs"
)

var (
	showHelp    = flag.Bool("h", false, "Show help")
	version     = flag.Bool("version", false, "Show version")
	openBrowser = flag.Bool("open", false, "Open the viewer in the default browser")
)

// appVersion is set at build time via -ldflags "-X main.appVersion=x.y.z"
var appVersion = "dev"

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("codeseed v%s\n", appVersion)
		return
	}
	if *showHelp {
		showUsage()
		return
	}

	args := flag.Args()
	if len(args) == 0 {
		args = []string{"serve", "."}
	}
	command := args[0]
	if len(args) < 2 {
		fatalf(2, "Error: %s command requires directory path\n", command)
	}

	dir, err := filepath.Abs(args[1])
	if err != nil {
		fatalf(1, "Invalid directory: %v\n", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		fatalf(1, "Cannot create directory: %v\n", err)
	}

	cfgPath := configPath(dir)
	if command == "init" {
		runInit(cfgPath)
		return
	}
	cfg, created, err := config.Ensure(cfgPath)
	if err != nil {
		fatalf(1, "Failed to load config: %v\n", err)
	}
	if created {
		fmt.Printf("Created %s with defaults\n", cfgPath)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opt := app.Options{Dir: dir, CfgPath: cfgPath, Cfg: cfg, Open: *openBrowser}
	rest := args[2:]

	switch command {
	case "serve":
		printBanner(opt)
		err = app.Run(ctx, opt)

	case "export":
		if len(rest) < 1 {
			fatalf(2, "Usage: codeseed export <directory> <project> [out.zip]\n")
		}
		var out string
		var n int
		out, n, err = app.Export(ctx, opt, rest[0], arg(rest, 1))
		if err == nil {
			fmt.Printf("Exported %d files to %s\n", n, out)
		}

	case "checkout":
		if len(rest) < 1 {
			fatalf(2, "Usage: codeseed checkout <directory> <project> [dest]\n")
		}
		var n int
		n, err = app.Checkout(ctx, opt, rest[0], arg(rest, 1))
		if err == nil {
			fmt.Printf("Wrote %d files\n", n)
		}

	case "watch":
		project := arg(rest, 0)
		if project == "new" {
			project = ""
		}
		printBanner(opt)
		err = app.Watch(ctx, opt, project, arg(rest, 1))

	case "generate":
		prompt := strings.Join(rest, " ")
		var id, url string
		id, url, err = app.Generate(ctx, opt, prompt)
		if err == nil {
			if id != "" {
				fmt.Printf("Project: %s\n", id)
			}
			if url != "" {
				fmt.Printf("Preview: %s\n", url)
			}
		}

	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command '%s'\n\n", command)
		showUsage()
		os.Exit(2)
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		fatalf(exitCode(err), "%s failed: %v\n", command, err)
	}
}

// configPath prefers an existing YAML config over the JSON default.
func configPath(dir string) string {
	for _, name := range []string{"codeseed.yaml", "codeseed.yml"} {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return filepath.Join(dir, "codeseed.json")
}

func runInit(cfgPath string) {
	cfg, err := config.LoadPartial(cfgPath)
	if err != nil {
		cfg = config.Default()
	}
	cfg = app.PromptInteractive(os.Stdin, os.Stdout, cfgPath, cfg)
	if err := config.Save(cfgPath, cfg); err != nil {
		fatalf(1, "Failed to save config: %v\n", err)
	}
	fmt.Printf("Saved %s\n", cfgPath)
}

func arg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

func exitCode(err error) int {
	if errs.IsValidation(err) {
		return 2
	}
	return 1
}

func fatalf(code int, format string, a ...any) {
	fmt.Fprintf(os.Stderr, format, a...)
	os.Exit(code)
}

func showUsage() {
	fmt.Println("codeseed - generate, edit and preview small websites")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  codeseed [options] <command> <directory> [args]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  serve <directory>")
	fmt.Println("        Serve the API, editor sessions and previews (default)")
	fmt.Println("  init <directory>")
	fmt.Println("        Write codeseed.json interactively")
	fmt.Println("  generate <directory> <prompt...>")
	fmt.Println("        Generate a site and store it as a new project")
	fmt.Println("  export <directory> <project> [out.zip]")
	fmt.Println("        Download a project as a ZIP archive")
	fmt.Println("  checkout <directory> <project> [dest]")
	fmt.Println("        Write a project's files to disk (default paths.workspace_dir)")
	fmt.Println("  watch <directory> <project|new> [src]")
	fmt.Println("        Sync a folder into a project and push live previews")
	fmt.Println()
	fmt.Println("The directory holds codeseed.json (or codeseed.yaml); relative paths")
	fmt.Println("in the config resolve against it.")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -h        Show this help message")
	fmt.Println("  -version  Show version information")
	fmt.Println("  -open     Open the viewer in the default browser")
}

func printBanner(opt app.Options) {
	_, url := app.NormalizeLocalViewer(opt.Cfg.Viewer.HTTPAddr)
	fmt.Println("╔════════════════════════════════════════════════════════╗")
	fmt.Println("║                        codeseed                        ║")
	fmt.Println("╚════════════════════════════════════════════════════════╝")
	fmt.Println()
	fmt.Printf("Directory:   %s\n", opt.Dir)
	fmt.Printf("Config File: %s\n", opt.CfgPath)
	fmt.Printf("Viewer:      %s\n", url)
	if opt.Cfg.Generator.URL != "" {
		fmt.Printf("Generator:   %s%s\n", opt.Cfg.Generator.URL, opt.Cfg.Generator.Path)
	}
	fmt.Println()
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println("────────────────────────────────────────────────────────")
	fmt.Println()
}
