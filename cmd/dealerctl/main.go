package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spec-kit/dealer-service/pkg/client"
)

func main() {
	baseURL := flag.String("api", envOr("DEALER_API_URL", "http://127.0.0.1:8080"), "API base URL")
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}

	c, err := newClient(*baseURL)
	if err != nil {
		fatal(err)
	}

	ctx := context.Background()
	switch flag.Arg(0) {
	case "login":
		if flag.NArg() != 3 {
			fatal(fmt.Errorf("usage: dealerctl login <email> <password>"))
		}
		user, err := c.Login(ctx, flag.Arg(1), flag.Arg(2))
		if err != nil {
			fatal(err)
		}
		fmt.Printf("logged in as %s %s (%s)\n", user.FirstName, user.LastName, user.Role)

	case "logout":
		if err := c.Logout(ctx); err != nil {
			fatal(err)
		}
		fmt.Println("logged out")

	case "me":
		user, err := c.Me(ctx)
		if err != nil {
			fatal(err)
		}
		fmt.Printf("%s %s <%s> role=%s\n", user.FirstName, user.LastName, user.Email, user.Role)

	case "search":
		if flag.NArg() != 2 {
			fatal(fmt.Errorf("usage: dealerctl search <email>"))
		}
		candidates, err := c.SearchCustomers(ctx, flag.Arg(1))
		if err != nil {
			fatal(err)
		}
		for _, candidate := range candidates {
			fmt.Printf("%s\t%s %s\t%s\n", candidate.Email, candidate.FirstName, candidate.LastName, candidate.PhoneNumber)
		}

	case "vehicles":
		vehicles, err := c.Vehicles(ctx)
		if err != nil {
			fatal(err)
		}
		for _, vehicle := range vehicles {
			fmt.Printf("%s\t%d %s %s\t%s\t%.2f\n", vehicle.VIN, vehicle.Year, vehicle.Make, vehicle.Model, vehicle.Status, vehicle.Price)
		}

	case "locations":
		for _, loc := range c.VehicleLocations(ctx) {
			fmt.Printf("%s\t%s %s\t%.6f,%.6f\n", loc.VIN, loc.Make, loc.Model, loc.Latitude, loc.Longitude)
		}

	case "activities":
		for _, activity := range c.RecentActivities(ctx) {
			fmt.Printf("%s\t%s\t%s\n", activity.Action, activity.EntityType, activity.ActorName)
		}

	default:
		usage()
		os.Exit(2)
	}
}

func newClient(baseURL string) (*client.Client, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	storage, err := client.NewFileStorage(filepath.Join(home, ".dealerctl", "session.json"))
	if err != nil {
		return nil, err
	}
	return client.New(client.Config{
		BaseURL: baseURL,
		Storage: storage,
		OnUnauthenticated: func() {
			fmt.Fprintln(os.Stderr, "session expired; run: dealerctl login <email> <password>")
		},
	})
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: dealerctl [-api URL] <login|logout|me|search|vehicles|locations|activities> [args]")
}

func envOr(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "dealerctl:", err)
	os.Exit(1)
}
