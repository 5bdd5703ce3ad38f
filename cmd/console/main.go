package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/jwebster45206/arena-engine/pkg/arena"
)

type ConsoleConfig struct {
	APIBaseURL string
	Timeout    time.Duration
}

// Usage: console [session-id]
// Without a session ID a comp is picked and a new session is started.
func main() {
	cfg := &ConsoleConfig{
		APIBaseURL: getEnv("API_BASE_URL", "http://localhost:8080"),
		Timeout:    30 * time.Second,
	}

	client := &http.Client{
		Timeout: cfg.Timeout,
	}

	if !testConnection(client, cfg.APIBaseURL) {
		fmt.Fprintf(os.Stderr, "Could not connect to API. Please ensure the API is running.\nTry: docker-compose up -d\n")
		os.Exit(1)
	}

	var (
		s   *arena.Session
		err error
	)
	if len(os.Args) > 1 {
		id, parseErr := uuid.Parse(os.Args[1])
		if parseErr != nil {
			fmt.Fprintf(os.Stderr, "Invalid session ID: %v\n", parseErr)
			os.Exit(1)
		}
		s, err = getSession(client, cfg.APIBaseURL, id)
	} else {
		s, err = pickComp(client, cfg.APIBaseURL)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open session: %v\n", err)
		os.Exit(1)
	}

	// The event stream outlives any single request
	streamClient := &http.Client{}

	p := tea.NewProgram(NewConsoleUI(cfg, client, streamClient, s),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}

func pickComp(client *http.Client, baseURL string) (*arena.Session, error) {
	orderedNames, compMap, err := listComps(client, baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to list comps: %w", err)
	}
	if len(orderedNames) == 0 {
		return nil, fmt.Errorf("no comps available")
	}

	fmt.Println("Available Comps:")
	for i := range orderedNames {
		fmt.Printf("  %d - %s (%s)\n", i+1, orderedNames[i], compMap[orderedNames[i]])
	}
	fmt.Print("\nSelect a comp by number: ")

	var choice int
	if _, err := fmt.Scanf("%d", &choice); err != nil || choice < 1 || choice > len(orderedNames) {
		return nil, fmt.Errorf("invalid selection")
	}

	return createSession(client, baseURL, compMap[orderedNames[choice-1]])
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
