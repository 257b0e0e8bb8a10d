package commands

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/go-playground/validator/v10"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/retailops/loadboard/internal/client"
	"github.com/retailops/loadboard/internal/dashboard"
	"github.com/retailops/loadboard/internal/domain/entities"
	"github.com/retailops/loadboard/internal/infrastructure/config"
	"github.com/retailops/loadboard/internal/infrastructure/logger"
)

const clearScreen = "\x1b[H\x1b[2J"

// clientEnv is what every dashboard-side command needs
type clientEnv struct {
	cfg    *config.Config
	logger *logger.Logger
	cache  *client.Cache
	board  *dashboard.Dashboard
}

func newClientEnv() *clientEnv {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Keep stdout for the rendered view.
	cfg.Logger.Output = "stderr"
	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	api := client.New(client.Options{
		BaseURL:    cfg.Client.BaseURL,
		Token:      cfg.Client.Token,
		Timeout:    cfg.Client.Timeout,
		RetryCount: cfg.Client.RetryCount,
	})
	cache := client.NewCache(api, cfg.Client.Timeout, appLogger)

	return &clientEnv{
		cfg:    cfg,
		logger: appLogger,
		cache:  cache,
		board:  dashboard.New(api, cache, validator.New(), appLogger),
	}
}

// NewDashboardCommand creates the dashboard command
func NewDashboardCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show the task dashboard",
		Long:  "Fetch tasks from the API, apply the load type and status filters, sort, and render them. With --watch the view refreshes on the configured interval.",
		Run: func(cmd *cobra.Command, args []string) {
			runDashboard(cmd)
		},
	}

	cmd.Flags().String("search", "", "Retailer substring, case-insensitive")
	cmd.Flags().String("day", entities.FilterAll, "Day substring, or all")
	cmd.Flags().String("load-type", entities.FilterAll, "Direct load, Indirect load or all")
	cmd.Flags().String("status", entities.FilterAll, "completed, pending or all")
	cmd.Flags().String("sort", string(dashboard.SortByRetailer), "retailer, day, fileCount or updatedAt")
	cmd.Flags().String("order", string(dashboard.Ascending), "asc or desc")
	cmd.Flags().Bool("select-all", false, "Select every visible task")
	cmd.Flags().Bool("watch", false, "Keep refreshing until interrupted")
	cmd.Flags().Bool("no-color", false, "Disable colored output")

	return cmd
}

func runDashboard(cmd *cobra.Command) {
	env := newClientEnv()
	defer env.logger.Close()

	search, _ := cmd.Flags().GetString("search")
	day, _ := cmd.Flags().GetString("day")
	loadType, _ := cmd.Flags().GetString("load-type")
	status, _ := cmd.Flags().GetString("status")
	sortFlag, _ := cmd.Flags().GetString("sort")
	orderFlag, _ := cmd.Flags().GetString("order")
	selectAll, _ := cmd.Flags().GetBool("select-all")
	watch, _ := cmd.Flags().GetBool("watch")

	key, err := dashboard.ParseSortKey(sortFlag)
	if err != nil {
		log.Fatal(err)
	}
	order, err := dashboard.ParseSortOrder(orderFlag)
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	board := env.board
	board.SetView(dashboard.DefaultViewState().
		WithLoadType(loadType).
		WithStatus(status).
		WithSort(key, order))
	board.Query(ctx, search, day)
	if selectAll {
		board.SelectAll(true)
	}

	opts := renderOptions(cmd)

	if !watch {
		m := board.Model()
		if err := dashboard.Render(os.Stdout, m, opts); err != nil {
			log.Fatalf("Failed to render dashboard: %v", err)
		}
		if m.Err != nil {
			os.Exit(1)
		}
		return
	}

	var mu sync.Mutex
	draw := func() {
		mu.Lock()
		defer mu.Unlock()
		fmt.Print(clearScreen)
		if err := dashboard.Render(os.Stdout, board.Model(), opts); err != nil {
			env.logger.Errorw("Failed to render dashboard", "error", err)
		}
	}
	draw()

	scheduler := client.NewCronScheduler()
	defer scheduler.Stop()

	revalidator := client.NewRevalidator(env.cache, scheduler, env.cfg.Client.RefreshInterval,
		board.Key, func(client.Snapshot) { draw() }, env.logger)
	stopRefresh, err := revalidator.Start(ctx)
	if err != nil {
		log.Fatalf("Failed to start background refresh: %v", err)
	}
	defer stopRefresh()

	<-ctx.Done()
}

func renderOptions(cmd *cobra.Command) dashboard.RenderOptions {
	noColor, _ := cmd.Flags().GetBool("no-color")
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		noColor = true
	}
	tty := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	return dashboard.RenderOptions{Color: !noColor && tty && !strings.EqualFold(os.Getenv("TERM"), "dumb")}
}
