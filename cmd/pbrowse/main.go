package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"project-browser/internal/api"
	"project-browser/internal/auth"
	"project-browser/internal/browser"
	"project-browser/internal/config"
	"project-browser/internal/infra/logx"
	"project-browser/internal/ui"
)

func main() {
	configPath := flag.String("config", config.DefaultPath(), "rc file (KEY=VALUE, or .yaml)")
	printOnly := flag.Bool("print", false, "print the project list and exit")
	search := flag.String("search", "", "with -print: only names containing this")
	sortBy := flag.String("sort", "name", "with -print: name or date")
	desc := flag.Bool("desc", false, "with -print: descending order")
	flag.Parse()

	field, err := browser.ParseSortField(*sortBy)
	if err != nil {
		fmt.Println("invalid -sort:", err)
		os.Exit(2)
	}

	_ = godotenv.Load()

	// Enable debug logging when DEBUG environment variable is set
	if len(os.Getenv("DEBUG")) > 0 {
		f, err := tea.LogToFile("debug.log", "debug")
		if err != nil {
			fmt.Println("fatal:", err)
			os.Exit(1)
		}
		defer f.Close()
		level := logx.LevelDebug
		if v := os.Getenv("PB_LOG_LEVEL"); v != "" {
			level = logx.ParseLevel(v)
		}
		logx.SetOutput(f)
		logx.SetMinLevel(level)
		log.SetOutput(logx.StdlogWriter(logx.LevelDebug, f))
		fmt.Println("Debug logging enabled. Run 'tail -f debug.log' to view logs.")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Println("invalid config:", err)
		os.Exit(1)
	}
	logx.RegisterSecret(cfg.Token)
	if cfg.UserID == "" && cfg.Token != "" {
		if id, err := auth.UserIDFromToken(cfg.Token); err == nil {
			cfg.UserID = id
		}
	}

	session := browser.NewSession(func(token string) browser.API {
		return api.New(cfg.BaseURL, token)
	}, cfg.Depth)

	if *printOnly {
		if err := printProjects(session, cfg, *search, field, !*desc); err != nil {
			fmt.Println("error:", err)
			os.Exit(1)
		}
		return
	}

	if _, err := tea.NewProgram(
		ui.InitialModel(cfg, session),
		tea.WithAltScreen(),
	).Run(); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func printProjects(session *browser.Session, cfg config.Config, search string, field browser.SortField, ascending bool) error {
	creds := browser.Credentials{Token: cfg.Token, UserID: cfg.UserID}
	if !creds.Complete() {
		return fmt.Errorf("token and user id are required (%s, %s)", config.KeyToken, config.KeyUserID)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	b := browser.New(session)
	b.SetCredentials(ctx, creds)
	if err := b.Err(); err != nil {
		return err
	}
	b.Search(search)
	if b.State().Sort.Field != field {
		b.SortBy(field)
	}
	if b.State().Sort.Ascending != ascending {
		b.SortBy(field)
	}
	for _, p := range b.Visible() {
		printTree(p, 0)
	}
	return nil
}

func printTree(p api.Project, depth int) {
	indent := strings.Repeat("  ", depth)
	line := indent + p.Name
	if p.Surname != "" {
		line += " (" + p.Surname + ")"
	}
	if p.LatestStatusUpdate != "" {
		line += "  " + p.LatestStatusUpdate
	}
	fmt.Println(line)
	for _, f := range p.Files {
		fmt.Println(indent + "  - " + f.Filename)
	}
	for _, c := range p.NestedProjects {
		printTree(c, depth+1)
	}
}
