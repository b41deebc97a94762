package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"stockwatch/internal/aggregate"
	"stockwatch/internal/calendar"
	"stockwatch/internal/config"
	"stockwatch/internal/httpx"
	"stockwatch/internal/manager"
	"stockwatch/internal/provider"
	"stockwatch/internal/provider/ratelimit"
	"stockwatch/internal/provider/sina"
	"stockwatch/internal/scheduler"
	"stockwatch/internal/search"
	"stockwatch/internal/symbol"
	"stockwatch/internal/util"
	"stockwatch/internal/watchlist"
)

type app struct {
	cfg      config.Config
	store    *watchlist.Store
	fetcher  provider.Fetcher
	searcher search.Searcher
	mgr      *manager.Manager
}

func newApp(cfgPath string) (*app, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	util.SetDefault(util.NewLogger(cfg.Logging.Level))

	store, err := watchlist.Open(cfg.Storage.WatchlistPath)
	if err != nil {
		return nil, err
	}

	httpClient := httpx.New(cfg.RequestTimeout())
	var fetcher provider.Fetcher = sina.New(sina.Config{URL: cfg.Quotes.Endpoint}, httpClient)
	if cfg.Quotes.MinFetchIntervalSec > 0 {
		fetcher = &ratelimit.MinInterval{F: fetcher, Interval: time.Duration(cfg.Quotes.MinFetchIntervalSec) * time.Second}
	}

	opts := []search.Option{search.WithHTTPClient(httpClient.HTTP), search.WithTimeout(cfg.SearchTimeout())}
	primaryOpts := opts
	if cfg.Search.SuggestEndpoint != "" {
		primaryOpts = append(primaryOpts, search.WithBaseURL(cfg.Search.SuggestEndpoint))
	}
	fallbackOpts := opts
	if cfg.Search.SmartboxEndpoint != "" {
		fallbackOpts = append(fallbackOpts, search.WithBaseURL(cfg.Search.SmartboxEndpoint))
	}
	searcher := search.NewChain(search.NewSinaSuggest(primaryOpts...), search.NewSmartbox(fallbackOpts...))

	return &app{
		cfg:      cfg,
		store:    store,
		fetcher:  fetcher,
		searcher: searcher,
		mgr:      &manager.Manager{Store: store, Fetcher: fetcher, Searcher: searcher},
	}, nil
}

func (a *app) fetchOnce(ctx context.Context, codes []symbol.Code) (aggregate.Snapshot, error) {
	cctx, cancel := context.WithTimeout(ctx, a.cfg.RequestTimeout())
	defer cancel()
	fetched, err := a.fetcher.Fetch(cctx, codes)
	if err != nil {
		return aggregate.Snapshot{}, err
	}
	board := aggregate.NewBoard()
	return board.Update(codes, fetched, time.Now()), nil
}

func main() {
	var cfgPath string
	var intervalSec int
	var allHours bool

	rootCmd := &cobra.Command{
		Use:           "stockwatch",
		Short:         "Watch A-share quotes from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", os.Getenv("CONFIG_FILE"), "path to config.yaml (optional)")

	addCmd := &cobra.Command{
		Use:   "add <code or name>",
		Short: "Add a stock to the watch-list, by code or fuzzy name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			a, err := newApp(cfgPath)
			if err != nil {
				return err
			}
			q, err := a.mgr.Add(c.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Printf("added %s %s\n", q.FullCode, q.Name)
			return nil
		},
	}

	removeCmd := &cobra.Command{
		Use:   "remove <code>",
		Short: "Remove a stock from the watch-list",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			a, err := newApp(cfgPath)
			if err != nil {
				return err
			}
			removed, err := a.mgr.Remove(c.Context(), args[0])
			if err != nil {
				return err
			}
			if !removed {
				return fmt.Errorf("%s is not on the watch-list", args[0])
			}
			fmt.Printf("removed %s\n", args[0])
			return nil
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Print the watch-list",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			a, err := newApp(cfgPath)
			if err != nil {
				return err
			}
			for _, s := range a.store.Strings() {
				fmt.Println(s)
			}
			return nil
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Empty the watch-list",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			a, err := newApp(cfgPath)
			if err != nil {
				return err
			}
			return a.store.Clear()
		},
	}

	searchCmd := &cobra.Command{
		Use:   "search <keyword>",
		Short: "Look up a stock code by name or pinyin",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			a, err := newApp(cfgPath)
			if err != nil {
				return err
			}
			code, err := a.searcher.Search(c.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Println(code)
			return nil
		},
	}

	quoteCmd := &cobra.Command{
		Use:   "quote [code or name ...]",
		Short: "Fetch quotes once; no arguments means the whole watch-list",
		RunE: func(c *cobra.Command, args []string) error {
			a, err := newApp(cfgPath)
			if err != nil {
				return err
			}
			codes := a.store.Codes()
			if len(args) > 0 {
				codes = codes[:0]
				for _, arg := range args {
					code, err := a.mgr.Resolve(c.Context(), arg)
					if err != nil {
						return err
					}
					codes = append(codes, code)
				}
			}
			if len(codes) == 0 {
				return fmt.Errorf("watch-list is empty; add a stock first")
			}
			snap, err := a.fetchOnce(c.Context(), codes)
			if err != nil {
				return err
			}
			fmt.Print(renderSnapshot(snap, a.cfg.Quotes.MaxDisplay))
			return nil
		},
	}

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Refresh the watch-list on a timer and print each snapshot",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			a, err := newApp(cfgPath)
			if err != nil {
				return err
			}

			board := aggregate.NewBoard()
			board.OnRefresh(func(s aggregate.Snapshot) {
				fmt.Print(renderSnapshot(s, a.cfg.Quotes.MaxDisplay))
				fmt.Println()
			})

			run := func(ctx context.Context) {
				codes := a.store.Codes()
				if len(codes) == 0 {
					return
				}
				cctx, cancel := context.WithTimeout(ctx, a.cfg.RequestTimeout())
				defer cancel()
				fetched, err := a.fetcher.Fetch(cctx, codes)
				if err != nil {
					fmt.Fprintf(os.Stderr, "fetch: %v\n", err)
					return
				}
				board.Update(codes, fetched, time.Now())
			}

			interval := a.cfg.RefreshInterval()
			if intervalSec > 0 {
				interval = time.Duration(intervalSec) * time.Second
			}
			predicate := calendar.IsTradingTime
			if allHours {
				predicate = nil
			}
			sched := scheduler.New(interval, predicate, run, nil)

			ctx, stop := signal.NotifyContext(c.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			sched.Start(ctx)
			sched.RefreshNow(ctx)
			<-ctx.Done()
			sched.Stop()
			return nil
		},
	}
	watchCmd.Flags().IntVar(&intervalSec, "interval", 0, "refresh interval in seconds (overrides config)")
	watchCmd.Flags().BoolVar(&allHours, "all-hours", false, "refresh outside trading hours too")

	rootCmd.AddCommand(addCmd, removeCmd, listCmd, clearCmd, searchCmd, quoteCmd, watchCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
