package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"meal_planner_backend/internal/storefinder"
	"meal_planner_backend/internal/storefinder/mapbox"
	"meal_planner_backend/internal/storefinder/service"
	"meal_planner_backend/internal/storefinder/transport"
	"meal_planner_backend/platform/config"
	"meal_planner_backend/platform/logger"
	"meal_planner_backend/platform/validator"
)

func main() {
	restaurants := flag.Bool("restaurants", false, "search restaurants instead of grocery stores")
	region := flag.String("region", "", "ISO country code filter (defaults to STORE_FINDER_REGION)")
	lat := flag.Float64("lat", 0, "proximity latitude")
	lng := flag.Float64("lng", 0, "proximity longitude")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}
	if err := cfg.RequireMapbox(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.New(cfg.Env)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc := storefinder.NewModule(cfg, nil, validator.New(), log).Service()

	base := service.Query{Region: *region, Profile: service.GroceryProfile}
	if *restaurants {
		base.Profile = service.RestaurantProfile
	}
	if *lat != 0 || *lng != 0 {
		base.Proximity = &mapbox.Coordinate{Latitude: *lat, Longitude: *lng}
	}

	fmt.Println("Mapbox store search. Enter a query (blank line to quit).")
	runLoop(ctx, os.Stdin, os.Stdout, func(ctx context.Context, text string) (transport.SearchResponse, error) {
		q := base
		q.Text = text
		return svc.Search(ctx, q)
	})
}

type searchFunc func(ctx context.Context, text string) (transport.SearchResponse, error)

func runLoop(ctx context.Context, in io.Reader, out io.Writer, search searchFunc) {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			return
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" || ctx.Err() != nil {
			return
		}

		resp, err := search(ctx, text)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		printStores(out, resp)
	}
}

func printStores(out io.Writer, resp transport.SearchResponse) {
	if len(resp.Stores) == 0 {
		fmt.Fprintln(out, "No results.")
		return
	}
	if resp.Fallback {
		fmt.Fprintln(out, "(no category match; showing all regional results)")
	}

	for i, store := range resp.Stores {
		fmt.Fprintf(out, "%d. %s\n", i+1, store.Name)
		fmt.Fprintf(out, "   address: %s\n", store.Address)
		fmt.Fprintf(out, "   lon/lat: [%g, %g]\n", store.Longitude, store.Latitude)
		if store.DistanceM != nil {
			fmt.Fprintf(out, "   distance_m: %.0f\n", *store.DistanceM)
		}
		fmt.Fprintf(out, "   category: %s\n", store.Category)
		fmt.Fprintf(out, "   categories: %s\n", strings.Join(store.Categories, ", "))
		if store.Brand != "" {
			fmt.Fprintf(out, "   brand: %s\n", store.Brand)
		}
		fmt.Fprintln(out, "---")
	}
}
